package metrics

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scrape limits of the metrics endpoint. Streams hold their own connections,
// so a slow scraper never competes with them for more than this.
const (
	scrapeTimeout     = 10 * time.Second
	maxScrapeInFlight = 4
)

// Handler returns the Prometheus endpoint for the collector's registry.
//
// Scrapes are themselves counted in the registry
// (promhttp_metric_handler_requests_total{code}); gathering errors are logged
// and whatever could be gathered is still served.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	r.Method(http.MethodGet, cfg.Telemetry.Metrics.Path, collector.Handler())
func (c *Collector) Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(c.registry, promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics:   true,
			ErrorHandling:       promhttp.ContinueOnError,
			ErrorLog:            scrapeErrorLog{},
			Timeout:             scrapeTimeout,
			MaxRequestsInFlight: maxScrapeInFlight,
		},
	))
}

// scrapeErrorLog forwards promhttp errors to the process logger.
type scrapeErrorLog struct{}

func (scrapeErrorLog) Println(v ...interface{}) {
	slog.Warn("metrics scrape error", "error", fmt.Sprint(v...))
}
