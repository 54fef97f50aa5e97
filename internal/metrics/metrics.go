package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Calculation metrics
	CalculationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stableswap_calculation_requests_total",
			Help: "Total number of engine calculations",
		},
		[]string{"operation", "status"},
	)

	CalculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stableswap_calculation_duration_seconds",
			Help:    "Engine calculation duration in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
		[]string{"operation"},
	)

	// Invariant cache
	InvariantCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stableswap_invariant_cache_hits_total",
		Help: "Total number of invariant cache hits",
	})

	InvariantCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stableswap_invariant_cache_misses_total",
		Help: "Total number of invariant cache misses",
	})

	InvariantCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stableswap_invariant_cache_size",
		Help: "Current number of entries in the invariant cache",
	})

	// Pool registry
	PoolCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stableswap_pool_count",
		Help: "Number of registered pools",
	})

	PoolUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stableswap_pool_updates_total",
		Help: "Total number of pool snapshot updates",
	})

	PoolPersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stableswap_pool_persist_failures_total",
		Help: "Total number of failed pool persistence batches",
	})

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stableswap_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stableswap_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stableswap_http_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter",
	})
)
