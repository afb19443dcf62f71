// Package metrics exposes batch metrics in Prometheus format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"

	"github.com/sells-group/rfscore-cli/internal/model"
)

// BatchMetrics holds the metrics of document processing.
type BatchMetrics struct {
	DocumentsTotal   *prometheus.CounterVec
	DocumentDuration prometheus.Histogram
	ScoreTotal       *prometheus.CounterVec
	InFlight         prometheus.Gauge

	registry *prometheus.Registry
}

// New creates the batch metrics and registers them with a fresh registry.
func New() (*BatchMetrics, error) {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates the batch metrics on registry.
func NewWithRegistry(registry *prometheus.Registry) (*BatchMetrics, error) {
	m := &BatchMetrics{
		DocumentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rfscore_documents_total",
				Help: "Documents processed, partitioned by outcome status.",
			},
			[]string{"status"},
		),
		DocumentDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rfscore_document_duration_seconds",
				Help:    "Time taken to build one document record.",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
			},
		),
		ScoreTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rfscore_batch_score_total",
				Help: "Sum of document scores, partitioned by photo tier.",
			},
			[]string{"tier"},
		),
		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "rfscore_documents_in_flight",
				Help: "Documents currently being processed.",
			},
		),
		registry: registry,
	}

	for _, c := range []prometheus.Collector{m.DocumentsTotal, m.DocumentDuration, m.ScoreTotal, m.InFlight} {
		if err := registry.Register(c); err != nil {
			return nil, eris.Wrap(err, "metrics: register collector")
		}
	}
	return m, nil
}

// Registry returns the registry holding the metrics.
func (m *BatchMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveDocument records one finished document.
func (m *BatchMetrics) ObserveDocument(status model.Status, d time.Duration) {
	m.DocumentsTotal.WithLabelValues(string(status)).Inc()
	m.DocumentDuration.Observe(d.Seconds())
}

// AddScore adds a document score to its tier.
func (m *BatchMetrics) AddScore(tier model.YesNo, score float64) {
	if score <= 0 {
		return
	}
	m.ScoreTotal.WithLabelValues(tierLabel(tier)).Add(score)
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (m *BatchMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return eris.Wrapf(err, "metrics: write textfile %s", path)
	}
	return nil
}

// tierLabel keeps label values ASCII.
func tierLabel(tier model.YesNo) string {
	if tier == model.Yes {
		return "with_photos"
	}
	return "without_photos"
}
