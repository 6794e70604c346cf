package metrics

import (
	"time"

	"simulateur-hq/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the single entry point for the relay's Prometheus metrics.
// A nil *Collector and a disabled one both record nothing, so components
// can take it as an optional dependency.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Stream metrics
	streamMetrics *StreamMetrics

	// Upstream provider metrics
	providerMetrics *ProviderMetrics
}

// Stream outcomes recorded in streams_total.
const (
	OutcomeDone         = "done"
	OutcomeFailed       = "failed"
	OutcomeDisconnected = "disconnected"
	OutcomeRejected     = "rejected"
)

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a new registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "simulateur",
//		Subsystem: "relay",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = append([]float64(nil), config.DefaultLatencyBuckets...)
	}

	return &Collector{
		config:          cfg,
		registry:        registry,
		streamMetrics:   NewStreamMetrics(cfg, registry),
		providerMetrics: NewProviderMetrics(cfg, registry),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// Registry returns the registry the collector registers into.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// StreamStarted marks a stream as open for the given service.
func (c *Collector) StreamStarted(service string) {
	if !c.enabled() {
		return
	}
	c.streamMetrics.active.WithLabelValues(service).Inc()
}

// StreamFinished records the terminal outcome of an opened stream.
//
// Parameters:
//   - service: routed service name (e.g., "openaiSimulateur")
//   - outcome: OutcomeDone, OutcomeFailed or OutcomeDisconnected
//   - fragments: number of fragments written to the client
func (c *Collector) StreamFinished(service, outcome string, fragments int) {
	if !c.enabled() {
		return
	}
	c.streamMetrics.active.WithLabelValues(service).Dec()
	c.streamMetrics.RecordStream(service, outcome, fragments)
}

// StreamRejected records a stream refused before any byte was written
// (validation, configuration or connect failure).
func (c *Collector) StreamRejected(service string) {
	if !c.enabled() {
		return
	}
	c.streamMetrics.RecordStream(service, OutcomeRejected, 0)
}

// RecordFirstFragment records the time from request start to the first
// fragment written.
func (c *Collector) RecordFirstFragment(service string, latency time.Duration) {
	if !c.enabled() {
		return
	}
	c.streamMetrics.firstFragment.WithLabelValues(service).Observe(latency.Seconds())
}

// RecordTokens records the total tokens a completion reported.
func (c *Collector) RecordTokens(service string, tokens int) {
	if !c.enabled() || tokens <= 0 {
		return
	}
	c.streamMetrics.tokens.WithLabelValues(service).Add(float64(tokens))
}

// RecordConnect records how long the upstream took to answer with headers.
func (c *Collector) RecordConnect(service string, latency time.Duration) {
	if !c.enabled() {
		return
	}
	c.providerMetrics.RecordConnect(service, latency.Seconds())
}

// RecordProviderError records an upstream failure.
//
// Parameters:
//   - service: routed service name
//   - errorType: see ProviderMetrics.RecordError
func (c *Collector) RecordProviderError(service, errorType string) {
	if !c.enabled() {
		return
	}
	c.providerMetrics.RecordError(service, errorType)
}

// RecordForward records a buffered call and the status sent to the client.
func (c *Collector) RecordForward(service string, status int) {
	if !c.enabled() {
		return
	}
	c.providerMetrics.RecordForward(service, status)
}
