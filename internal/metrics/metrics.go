// Package metrics defines the Prometheus counters recorded during a search
// run and writes them out for the node_exporter textfile collector.
//
// Metrics:
//   - gh_search_requests_total{status}: search HTTP responses by status code
//   - gh_search_transport_retries_total{reason}: retried HTTP attempts
//   - gh_search_pages_total{outcome}: page fetches by outcome
//     (ok, empty, rate_limited, terminal, cached)
//   - gh_search_cooldowns_total: rate-limit cooldown waits
//   - gh_search_records_collected: records in the last collection
//   - gh_search_translations_total{result}: translate calls by result
//   - gh_search_exports_total{format,result}: exports by format and result
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry collects every gh-search metric. It is separate from the default
// registry so textfiles only carry this tool's series.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	Requests = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "gh_search_requests_total",
		Help: "Search HTTP responses by status code",
	}, []string{"status"})

	TransportRetries = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "gh_search_transport_retries_total",
		Help: "HTTP attempts retried by the transport, by reason",
	}, []string{"reason"})

	Pages = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "gh_search_pages_total",
		Help: "Page fetches by outcome",
	}, []string{"outcome"})

	Cooldowns = factory.NewCounter(prometheus.CounterOpts{
		Name: "gh_search_cooldowns_total",
		Help: "Rate-limit cooldown waits",
	})

	RecordsCollected = factory.NewGauge(prometheus.GaugeOpts{
		Name: "gh_search_records_collected",
		Help: "Records returned by the last collection",
	})

	Translations = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "gh_search_translations_total",
		Help: "Translation calls by result",
	}, []string{"result"})

	Exports = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "gh_search_exports_total",
		Help: "Exports by format and result",
	}, []string{"format", "result"})
)

// WriteTextfile writes the current metric values to filename atomically.
func WriteTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, Registry)
}
