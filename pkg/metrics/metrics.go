// Package metrics provides Prometheus metrics for the cookbook service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cookbook",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cookbook",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// StoreOperationsTotal counts document store operations by outcome.
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cookbook",
			Name:      "docstore_operations_total",
			Help:      "Total number of document store operations",
		},
		[]string{"operation", "outcome"},
	)

	// StoreOperationDuration measures document store operation duration.
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cookbook",
			Name:      "docstore_operation_duration_seconds",
			Help:      "Duration of document store operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// CounterEventsTotal counts creation events applied to aggregate counters.
	CounterEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cookbook",
			Name:      "counter_events_total",
			Help:      "Total number of creation events applied to aggregate counters",
		},
		[]string{"status"},
	)

	// FeedClients tracks connected change feed clients.
	FeedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cookbook",
			Name:      "feed_clients",
			Help:      "Number of connected change feed clients",
		},
	)
)

// RecordRequest records a completed HTTP request.
func RecordRequest(method, route, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration)
}

// RecordStoreOperation records a document store operation.
func RecordStoreOperation(operation, outcome string, duration float64) {
	StoreOperationsTotal.WithLabelValues(operation, outcome).Inc()
	StoreOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordCounterEvent records the outcome of applying a creation event.
func RecordCounterEvent(status string) {
	CounterEventsTotal.WithLabelValues(status).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
