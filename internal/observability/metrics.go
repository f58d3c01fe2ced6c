package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors shared by the HTTP layer, the
// response cache, and the sync workers.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	SyncRuns        *prometheus.CounterVec
	SyncDuration    *prometheus.HistogramVec
	SyncItems       *prometheus.CounterVec
	WSConnections   prometheus.Gauge
	FeedDecodeSkips prometheus.Counter
}

// NewMetrics registers all collectors on the given registerer
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "marketdata_http_requests_total",
			Help: "HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketdata_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "marketdata_cache_hits_total",
			Help: "Current-candle response cache hits.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "marketdata_cache_misses_total",
			Help: "Current-candle response cache misses.",
		}),
		SyncRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "marketdata_sync_runs_total",
			Help: "Sync worker runs by type and terminal status.",
		}, []string{"type", "status"}),
		SyncDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketdata_sync_duration_seconds",
			Help:    "Sync worker run duration.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"type"}),
		SyncItems: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "marketdata_sync_items_total",
			Help: "Items written by sync workers.",
		}, []string{"type"}),
		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "marketdata_ws_connections",
			Help: "Active websocket client connections.",
		}),
		FeedDecodeSkips: factory.NewCounter(prometheus.CounterOpts{
			Name: "marketdata_feed_decode_skips_total",
			Help: "Feed packets skipped because their shape could not be decoded.",
		}),
	}
}

// NewDefaultMetrics registers on the default Prometheus registry
func NewDefaultMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}
