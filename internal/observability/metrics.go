// File: internal/observability/metrics.go
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "quickstart"

// Metrics groups the Prometheus collectors shared by the app. One instance is
// created per process (or per test) against its own registry.
type Metrics struct {
	Registry *prometheus.Registry

	// RemoteRequests counts calls to the BigID and backup APIs.
	// Labels: service (bigid, backup), method, code (HTTP status or "error").
	RemoteRequests *prometheus.CounterVec
	// RemoteDuration observes the latency of those calls.
	RemoteDuration *prometheus.HistogramVec
	// Actions counts dispatched actions by outcome.
	// Labels: app, action, status (COMPLETED, ERROR).
	Actions *prometheus.CounterVec
}

// NewMetrics registers a fresh set of collectors on a new registry,
// including the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RemoteRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "remote_requests_total",
			Help:      "Total requests made to remote APIs",
		}, []string{"service", "method", "code"}),
		RemoteDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "remote_request_duration_seconds",
			Help:      "Latency of requests made to remote APIs",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"service", "method"}),
		Actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "actions_total",
			Help:      "Total actions dispatched, by outcome",
		}, []string{"app", "action", "status"}),
	}
}
