// Package metrics provides Prometheus metrics collection for the PMML exporter.
// It defines the export, publishing and storage metrics exposed via the
// Prometheus metrics endpoint of the export service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the exporter.
type Metrics struct {
	// Export metrics
	ExportsTotal   prometheus.Counter   // Total number of successful exports
	ExportFailures prometheus.Counter   // Total number of rejected or failed exports
	Advisories     prometheus.Counter   // Total number of advisories raised by exports
	ExportLatency  prometheus.Histogram // Duration of one export in seconds
	DocumentBytes  prometheus.Histogram // Size of rendered documents

	// Scoring engine metrics
	PublishTotal    prometheus.Counter // Total number of documents deployed
	PublishFailures prometheus.Counter // Total number of failed deployments

	// Storage metrics
	StoredExports prometheus.Counter // Total number of export records written
}

// New creates and registers all Prometheus metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		ExportsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pmml_exports_total",
			Help: "Total number of successful PMML exports",
		}),
		ExportFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "pmml_export_failures_total",
			Help: "Total number of rejected or failed PMML exports",
		}),
		Advisories: factory.NewCounter(prometheus.CounterOpts{
			Name: "pmml_advisories_total",
			Help: "Total number of advisories raised while exporting",
		}),
		ExportLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pmml_export_latency_seconds",
			Help:    "PMML export latency in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}),
		DocumentBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pmml_document_bytes",
			Help:    "Size of rendered PMML documents in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		}),
		PublishTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pmml_publish_total",
			Help: "Total number of documents deployed to the scoring engine",
		}),
		PublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "pmml_publish_failures_total",
			Help: "Total number of failed deployments to the scoring engine",
		}),
		StoredExports: factory.NewCounter(prometheus.CounterOpts{
			Name: "pmml_stored_exports_total",
			Help: "Total number of export records written to the history store",
		}),
	}
}
