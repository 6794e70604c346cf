package metrics

import (
	"simulateur-hq/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// StreamMetrics tracks client-facing SSE streams.
//
// Metrics:
//   - simulateur_relay_streams_total: Streams by service and terminal outcome
//   - simulateur_relay_fragments_total: Fragments written to clients
//   - simulateur_relay_active_streams: Streams currently open
//   - simulateur_relay_first_fragment_seconds: Time to first fragment
//   - simulateur_relay_tokens_total: Tokens reported by completion streams
type StreamMetrics struct {
	streams       *prometheus.CounterVec
	fragments     *prometheus.CounterVec
	active        *prometheus.GaugeVec
	firstFragment *prometheus.HistogramVec
	tokens        *prometheus.CounterVec
}

// NewStreamMetrics creates and registers stream metrics with the provided registry.
func NewStreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *StreamMetrics {
	sm := &StreamMetrics{
		streams: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "streams_total",
				Help:      "Total number of client streams by terminal outcome",
			},
			[]string{"service", "outcome"},
		),

		fragments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "fragments_total",
				Help:      "Total number of fragments written to clients",
			},
			[]string{"service"},
		),

		active: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "active_streams",
				Help:      "Number of client streams currently open",
			},
			[]string{"service"},
		),

		firstFragment: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "first_fragment_seconds",
				Help:      "Time from request start to the first fragment written",
				Buckets:   cfg.LatencyBuckets,
			},
			[]string{"service"},
		),

		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "tokens_total",
				Help:      "Total tokens reported by completion streams",
			},
			[]string{"service"},
		),
	}

	registry.MustRegister(
		sm.streams,
		sm.fragments,
		sm.active,
		sm.firstFragment,
		sm.tokens,
	)

	return sm
}

// RecordStream records one finished stream.
func (sm *StreamMetrics) RecordStream(service, outcome string, fragments int) {
	sm.streams.WithLabelValues(service, outcome).Inc()
	if fragments > 0 {
		sm.fragments.WithLabelValues(service).Add(float64(fragments))
	}
}
