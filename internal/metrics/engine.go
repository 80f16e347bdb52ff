package metrics

import "github.com/prometheus/client_golang/prometheus"

// Engine and cache Prometheus metrics.
var (
	EngineQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simplesearch",
			Name:      "engine_queries_total",
			Help:      "Total number of queries sent to the search engine",
		},
		[]string{"status"}, // "success" / "error"
	)

	EngineQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "simplesearch",
			Name:      "engine_query_duration_seconds",
			Help:      "Search engine query duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simplesearch",
			Name:      "search_cache_total",
			Help:      "Search result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var engineMetricsRegistered bool

// RegisterEngineMetrics registers the engine and cache metrics. Must be
// called once from main.
func RegisterEngineMetrics() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(EngineQueriesTotal)
	prometheus.MustRegister(EngineQueryDuration)
	prometheus.MustRegister(SearchCacheTotal)
	engineMetricsRegistered = true
}
