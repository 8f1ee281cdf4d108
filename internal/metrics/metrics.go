// Package metrics holds the service's prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthOperations counts auth service calls by operation and outcome.
	AuthOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "userauth",
			Name:      "auth_operations_total",
			Help:      "Total number of auth operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	// HTTPRequestDuration observes HTTP request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "userauth",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route", "status"},
	)
)

// RecordAuthOperation increments the outcome counter for operation.
func RecordAuthOperation(operation, outcome string) {
	AuthOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordHTTPRequest observes one served request.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}
