package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and sync Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "decky",
			Name:      "search_requests_total",
			Help:      "Total number of search requests by kind",
		},
		[]string{"kind", "status"}, // kind: search / suggestions / autocomplete
	)

	SearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "decky",
			Name:      "search_request_duration_seconds",
			Help:      "Search request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"kind"},
	)

	SyncEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "decky",
			Name:      "sync_events_total",
			Help:      "Total card change events consumed",
		},
		[]string{"subject", "status"},
	)

	SyncDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "decky",
			Name:      "sync_documents_total",
			Help:      "Total documents written to the index by sync operations",
		},
		[]string{"operation", "status"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search and sync metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchRequestDuration)
	prometheus.MustRegister(SyncEventsTotal)
	prometheus.MustRegister(SyncDocumentsTotal)
	searchMetricsRegistered = true
}
