// Package metrics provides Prometheus metrics collection for the relay.
//
// # Overview
//
// The collector records how client streams end, how long upstream providers
// take to answer, and how buffered calls resolve. All metrics are registered
// in a dedicated registry exposed through Handler.
//
// # Metrics Categories
//
//   - Stream Metrics: Streams by outcome, fragments, active streams, time to first fragment, tokens
//   - Provider Metrics: Upstream connect latency, upstream errors, buffered calls by status
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	collector.StreamStarted("openaiSimulateur")
//	collector.RecordFirstFragment("openaiSimulateur", 420*time.Millisecond)
//	collector.StreamFinished("openaiSimulateur", metrics.OutcomeDone, 37)
//
//	collector.RecordForward("elevenlabs", http.StatusOK)
//
//	r.Handle("/metrics", collector.Handler())
//
// # Disabled Collection
//
// When MetricsConfig.Enabled is false, or the collector is nil, every Record
// method returns immediately. The registry is still created so the handler can
// be mounted unconditionally.
//
// # Labels
//
// Labels are limited to the routed service name, the stream outcome, the
// upstream error type and the HTTP status code. All of them come from closed
// sets, so label cardinality is bounded.
package metrics
