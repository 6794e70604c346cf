package metrics

import (
	"strconv"

	"simulateur-hq/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ProviderMetrics tracks upstream provider calls.
//
// Metrics:
//   - simulateur_relay_upstream_connect_seconds: Time until upstream response headers
//   - simulateur_relay_upstream_errors_total: Upstream failures by type
//   - simulateur_relay_forward_requests_total: Buffered calls by client status
type ProviderMetrics struct {
	// Upstream connect latency histogram
	connect *prometheus.HistogramVec

	// Upstream error counter
	errors *prometheus.CounterVec

	// Buffered call counter
	forwards *prometheus.CounterVec
}

// NewProviderMetrics creates and registers provider metrics with the provided registry.
func NewProviderMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		connect: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_connect_seconds",
				Help:      "Time until the upstream answered with response headers",
				Buckets:   cfg.LatencyBuckets,
			},
			[]string{"service"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_errors_total",
				Help:      "Total number of upstream failures by type",
			},
			[]string{"service", "error_type"},
		),

		forwards: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "forward_requests_total",
				Help:      "Total number of buffered provider calls by client status",
			},
			[]string{"service", "status"},
		),
	}

	registry.MustRegister(
		pm.connect,
		pm.errors,
		pm.forwards,
	)

	return pm
}

// RecordConnect records the connect latency of an upstream call.
func (pm *ProviderMetrics) RecordConnect(service string, latencySeconds float64) {
	pm.connect.WithLabelValues(service).Observe(latencySeconds)
}

// RecordError records an error from a provider.
//
// Common error types:
//   - "timeout": Connect timeout
//   - "network": Upstream unreachable
//   - "status": Non-2xx upstream status
//   - "stream": Failure after the stream started
//   - "parse": Malformed upstream payload
func (pm *ProviderMetrics) RecordError(service, errorType string) {
	pm.errors.WithLabelValues(service, errorType).Inc()
}

// RecordForward records a buffered call.
func (pm *ProviderMetrics) RecordForward(service string, status int) {
	pm.forwards.WithLabelValues(service, strconv.Itoa(status)).Inc()
}
