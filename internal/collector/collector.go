package collector

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"KWatch/internal/cache"
	"KWatch/internal/calculator"
	"KWatch/internal/metrics"
	"KWatch/internal/model"
	"KWatch/internal/strategy"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  map[string][]model.PriceBar // per-symbol fixed bars
	Errs  map[string]error            // per-symbol failures

	mu    sync.Mutex
	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, days int) ([]model.PriceBar, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return bars, nil
	}
	return generateMockBars(m.Price, days*5/7), nil
}

// Calls reports how many fetches were made.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

// SetBars replaces the fixed bars of one symbol.
func (m *MockFetcher) SetBars(symbol string, bars []model.PriceBar) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Bars == nil {
		m.Bars = make(map[string][]model.PriceBar)
	}
	m.Bars[symbol] = bars
}

func generateMockBars(basePrice float64, count int) []model.PriceBar {
	bars := make([]model.PriceBar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.PriceBar{
			Date:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector fetches price series and turns them into dashboard readings.
type Collector struct {
	Fetcher      Fetcher
	Cache        cache.Cache
	Metrics      *metrics.Metrics
	LookbackDays int
	Concurrency  int

	log *zap.Logger
	now func() time.Time
}

// NewCollector creates a new Collector. A nil cache disables caching and nil
// metrics get a private registry.
func NewCollector(fetcher Fetcher, c cache.Cache, m *metrics.Metrics, log *zap.Logger) *Collector {
	if c == nil {
		c = cache.Nop{}
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{
		Fetcher:      fetcher,
		Cache:        c,
		Metrics:      m,
		LookbackDays: 60,
		Concurrency:  4,
		log:          log,
		now:          time.Now,
	}
}

// Series returns the price series of symbol, from cache when possible.
func (c *Collector) Series(ctx context.Context, symbol string) (model.PriceSeries, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if s, ok := c.Cache.Get(ctx, symbol); ok {
		c.Metrics.CacheHits.Inc()
		return s, nil
	}
	c.Metrics.CacheMisses.Inc()

	start := c.now()
	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, c.LookbackDays)
	c.Metrics.FetchDur.Observe(time.Since(start).Seconds())
	if err != nil {
		c.Metrics.FetchTotal.WithLabelValues(c.Fetcher.Name(), "error").Inc()
		return model.PriceSeries{}, fmt.Errorf("fetch %s from %s: %w", symbol, c.Fetcher.Name(), err)
	}
	c.Metrics.FetchTotal.WithLabelValues(c.Fetcher.Name(), "ok").Inc()

	series := model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: c.now()}
	if len(bars) > 0 {
		c.Cache.Set(ctx, series)
	}
	return series, nil
}

// Read produces the reading of one watchlist item. It never fails: any
// problem yields an unavailable reading carrying the reason.
func (c *Collector) Read(ctx context.Context, item model.WatchItem) model.Reading {
	r := model.Reading{
		Symbol: strings.ToUpper(item.Symbol),
		Name:   item.DisplayName(),
		At:     c.now(),
	}

	series, err := c.Series(ctx, item.Symbol)
	if err != nil {
		return c.unavailable(r, fmt.Errorf("%w: %w", calculator.ErrUpstreamFailure, err))
	}

	res := calculator.ComputeK(series.Bars)
	if res.IsNone() {
		_, reason := calculator.Diagnose(series.Bars)
		return c.unavailable(r, reason)
	}

	k := res.Unwrap()
	r.Price = k.Price
	r.K = k.K
	r.Available = true
	strategy.Evaluate(&r)

	c.Metrics.KValue.WithLabelValues(r.Symbol).Set(r.K)
	c.log.Debug("k value computed",
		zap.String("symbol", r.Symbol),
		zap.Float64("price", r.Price),
		zap.Float64("k", r.K),
		zap.Int("steps", k.Steps),
		zap.String("signal", string(r.Signal)))
	return r
}

func (c *Collector) unavailable(r model.Reading, reason error) model.Reading {
	r.Available = false
	r.Err = reason.Error()
	c.Metrics.UnavailableTotal.WithLabelValues(r.Symbol).Inc()
	c.Forget(r.Symbol)
	c.log.Warn("reading unavailable", zap.String("symbol", r.Symbol), zap.Error(reason))
	return r
}

// Forget stops exporting the last K value of symbol.
func (c *Collector) Forget(symbol string) {
	c.Metrics.KValue.DeleteLabelValues(strings.ToUpper(strings.TrimSpace(symbol)))
}

// Collect reads every item concurrently and returns readings in watchlist order.
// One failing ticker never affects the others.
func (c *Collector) Collect(ctx context.Context, items []model.WatchItem) []model.Reading {
	readings := make([]model.Reading, len(items))

	var g errgroup.Group
	limit := c.Concurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			readings[i] = c.Read(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	return readings
}

// Refresh drops every cached series so the next read hits the data source.
func (c *Collector) Refresh(ctx context.Context) error {
	if err := c.Cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	c.log.Info("series cache cleared")
	return nil
}
