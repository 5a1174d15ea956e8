package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	threatsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cybershield_threat_mutations_total",
		Help: "Threat records written through the API, by operation",
	}, []string{"op"})
	ingestAddedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cybershield_ingest_added_total",
		Help: "Threats added by feed ingest",
	}, []string{"source"})
	ingestFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cybershield_ingest_failures_total",
		Help: "Feed ingest runs that failed to fetch or store",
	}, []string{"source"})
	fallbackServedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cybershield_fallback_served_total",
		Help: "Times the feed dashboard substituted sample data, by dataset",
	}, []string{"dataset"})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(threatsTotal, ingestAddedTotal, ingestFailuresTotal, fallbackServedTotal)
}

// Handler exposes the registry in the Prometheus text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// IncThreat counts a create, update or delete.
func IncThreat(op string) { threatsTotal.WithLabelValues(op).Inc() }

// AddIngested counts threats added by a feed.
func AddIngested(source string, n int) { ingestAddedTotal.WithLabelValues(source).Add(float64(n)) }

// IncIngestFailure counts a failed ingest run.
func IncIngestFailure(source string) { ingestFailuresTotal.WithLabelValues(source).Inc() }

// IncFallback counts a sample-data substitution.
func IncFallback(dataset string) { fallbackServedTotal.WithLabelValues(dataset).Inc() }
