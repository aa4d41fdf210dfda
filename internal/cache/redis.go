package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"KWatch/internal/model"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const keyPrefix = "kwatch:series:"

// Redis shares cached series between processes. Redis errors are logged and
// treated as misses so a broken cache never blocks a refresh.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedis connects to addr and verifies the connection with a PING.
func NewRedis(ctx context.Context, addr string, db int, ttl time.Duration, log *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Redis{client: client, ttl: ttl, log: log}, nil
}

func seriesKey(symbol string) string {
	return keyPrefix + strings.ToUpper(symbol)
}

func (r *Redis) Get(ctx context.Context, symbol string) (model.PriceSeries, bool) {
	data, err := r.client.Get(ctx, seriesKey(symbol)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn("redis get failed", zap.String("symbol", symbol), zap.Error(err))
		}
		return model.PriceSeries{}, false
	}
	var series model.PriceSeries
	if err := json.Unmarshal(data, &series); err != nil {
		r.log.Warn("redis entry undecodable", zap.String("symbol", symbol), zap.Error(err))
		return model.PriceSeries{}, false
	}
	return series, true
}

func (r *Redis) Set(ctx context.Context, series model.PriceSeries) {
	data, err := json.Marshal(series)
	if err != nil {
		r.log.Warn("encode series", zap.String("symbol", series.Symbol), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, seriesKey(series.Symbol), data, r.ttl).Err(); err != nil {
		r.log.Warn("redis set failed", zap.String("symbol", series.Symbol), zap.Error(err))
	}
}

// Clear deletes every cached series under the key prefix.
func (r *Redis) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete cache keys: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
