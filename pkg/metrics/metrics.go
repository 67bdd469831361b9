// Package metrics records run counters on a private Prometheus registry so
// they can be exported for a node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for scanned files.
const (
	OutcomeEmbedded  = "embedded"
	OutcomeOversized = "oversized"
	OutcomeIgnored   = "ignored"
	OutcomeBinary    = "binary"
	OutcomeFailed    = "failed"
	OutcomeHidden    = "hidden"
)

// Metrics groups the collectors of one run.
type Metrics struct {
	Registry *prometheus.Registry

	// FilesScanned counts matched files by scan outcome.
	FilesScanned *prometheus.CounterVec
	// FilesCombined counts files rendered into the combined document by status.
	FilesCombined *prometheus.CounterVec
	// DocumentBytes is the size of the last combined document.
	DocumentBytes prometheus.Gauge
	// DocumentChunks is the chunk count of the last combined document.
	DocumentChunks prometheus.Gauge
	// PassDuration tracks how long each pass took.
	PassDuration *prometheus.HistogramVec
}

// New registers a fresh set of collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		FilesScanned: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "docweave_files_scanned_total",
			Help: "Matched files seen by the scanner, by outcome",
		}, []string{"outcome"}),
		FilesCombined: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "docweave_files_combined_total",
			Help: "Files processed by the combiner, by status",
		}, []string{"status"}),
		DocumentBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "docweave_document_bytes",
			Help: "Size in bytes of the combined document",
		}),
		DocumentChunks: factory.NewGauge(prometheus.GaugeOpts{
			Name: "docweave_document_chunks",
			Help: "Number of statistic chunks in the combined document",
		}),
		PassDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docweave_pass_duration_seconds",
			Help:    "Time spent in each pass",
			Buckets: prometheus.DefBuckets,
		}, []string{"pass"}),
	}
}

// WriteTextfile writes all collected metrics in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics file %s: %w", path, err)
	}
	return nil
}
