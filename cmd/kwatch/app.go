package main

import (
	"context"
	"fmt"

	"KWatch/internal/cache"
	"KWatch/internal/collector"
	"KWatch/internal/config"
	"KWatch/internal/logger"
	"KWatch/internal/metrics"
	"KWatch/internal/recorder"
	"KWatch/internal/watchlist"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// app holds the components shared by every subcommand.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	metrics   *metrics.Metrics
	collector *collector.Collector
	watchlist *watchlist.Store
	recorder  recorder.Recorder

	closers []func() error
}

// setup builds the shared components. On error everything acquired so far is
// released.
func setup(ctx context.Context, cfgPath string) (_ *app, err error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Dev)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}
	a.closers = append(a.closers, func() error { _ = log.Sync(); return nil })
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(reg)

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "polygon":
		pf, err := collector.NewPolygonFetcher(cfg.DataSource.APIKey)
		if err != nil {
			return nil, err
		}
		fetcher = pf
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Info("data source selected", zap.String("provider", fetcher.Name()))

	// Init cache: shared redis when configured, in-process otherwise.
	var c cache.Cache = cache.NewMemory(cfg.Cache.TTL)
	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisDB, cfg.Cache.TTL, logger.Component(log, "cache"))
		if err != nil {
			log.Warn("redis cache unavailable, using memory cache", zap.Error(err))
		} else {
			c = rc
			a.closers = append(a.closers, rc.Close)
		}
	}

	a.collector = collector.NewCollector(fetcher, c, a.metrics, logger.Component(log, "collector"))
	a.collector.LookbackDays = cfg.DataSource.LookbackDays
	a.collector.Concurrency = cfg.Collector.Concurrency

	a.watchlist, err = watchlist.Load(cfg.Watchlist.File, cfg.Watchlist.Items)
	if err != nil {
		return nil, err
	}

	// Init recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger.Component(log, "recorder"))
		if err != nil {
			log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			a.recorder = recorder.NewNoopRecorder()
		} else {
			a.recorder = sr
			a.closers = append(a.closers, sr.Close)
		}
	} else {
		a.recorder = recorder.NewNoopRecorder()
	}

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close", zap.Error(err))
		}
	}
}
