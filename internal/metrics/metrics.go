package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics of the watchlist refresh pipeline.
type Metrics struct {
	FetchTotal       *prometheus.CounterVec // labels: source, result
	FetchDur         prometheus.Histogram
	KValue           *prometheus.GaugeVec   // labels: symbol
	UnavailableTotal *prometheus.CounterVec // labels: symbol
	RefreshDur       prometheus.Histogram
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates the metrics and registers them on reg.
// A nil reg uses a fresh private registry, which keeps tests independent.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kwatch_fetch_total",
			Help: "Price series fetches by data source and result",
		}, []string{"source", "result"}),
		FetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kwatch_fetch_duration_seconds",
			Help:    "Price series fetch latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		KValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kwatch_k_value",
			Help: "Latest K(9,3,3) value per ticker",
		}, []string{"symbol"}),
		UnavailableTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kwatch_unavailable_total",
			Help: "Readings that could not produce a K value",
		}, []string{"symbol"}),
		RefreshDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kwatch_refresh_duration_seconds",
			Help:    "Duration of a full watchlist refresh",
			Buckets: prometheus.DefBuckets,
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kwatch_cache_hits_total",
			Help: "Price series served from cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kwatch_cache_misses_total",
			Help: "Price series not found in cache",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.FetchTotal,
		m.FetchDur,
		m.KValue,
		m.UnavailableTotal,
		m.RefreshDur,
		m.CacheHits,
		m.CacheMisses,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
