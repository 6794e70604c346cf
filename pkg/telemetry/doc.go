// Package telemetry groups the observability packages of the relay.
//
// # Components
//
//   - logging: slog handler with request/service context fields and
//     credential redaction
//   - metrics: Prometheus counters and histograms for streams and upstream calls
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, cfg.Providers.Secrets()))
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
//	router.Method(http.MethodGet, cfg.Telemetry.Metrics.Path, collector.Handler())
package telemetry
