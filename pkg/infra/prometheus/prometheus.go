package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds
	latencyBuckets = []float64{
		25, 50, 100, // Fast responses
		250, 500, 1000, // Normal responses
		2500, 5000, 10000, 30000, // Slow/timeout
	}

	ClientRequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "safecomms_client_requests_total",
			Help: "Total number of API requests issued by the client",
		},
		[]string{"operation", "status"},
	)

	ClientRequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "safecomms_client_latency_ms",
			Help:    "API request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"operation"},
	)
)

// Registry returns the registry holding the client collectors, for callers
// that expose their own metrics endpoint.
func Registry() *prometheus.Registry {
	return registry
}

// StatusClass returns the class of an HTTP status code (e.g., "2xx")
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "5xx"
	}
	return fmt.Sprintf("%dxx", status/100)
}
