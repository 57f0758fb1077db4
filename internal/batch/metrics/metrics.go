package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the batch decisioning module.
type Metrics struct {
	// Per-document outcomes by status
	DocumentOutcome *prometheus.CounterVec

	// Cumulative batch outcomes by status and risk bucket
	BatchOutcome *prometheus.CounterVec

	// Full batch evaluation latency
	EvaluateLatency prometheus.Histogram

	// Documents per submitted batch
	BatchSize prometheus.Histogram
}

// New creates a new Metrics instance with all batch module metrics registered.
func New() *Metrics {
	return &Metrics{
		DocumentOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_batch_document_outcomes_total",
			Help: "Total per-document validation outcomes by status",
		}, []string{"status"}),

		BatchOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_batch_outcomes_total",
			Help: "Total cumulative batch outcomes by status and risk bucket",
		}, []string{"status", "bucket"}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veridoc_batch_evaluate_duration_seconds",
			Help:    "Duration of full batch evaluation including extraction",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veridoc_batch_size_documents",
			Help:    "Number of documents submitted per batch",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		}),
	}
}

// IncrementDocumentOutcome records one per-document outcome.
func (m *Metrics) IncrementDocumentOutcome(status string) {
	if m != nil {
		m.DocumentOutcome.WithLabelValues(status).Inc()
	}
}

// IncrementBatchOutcome records one cumulative batch outcome.
func (m *Metrics) IncrementBatchOutcome(status, bucket string) {
	if m != nil {
		m.BatchOutcome.WithLabelValues(status, bucket).Inc()
	}
}

// ObserveEvaluateLatency records the total batch evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// ObserveBatchSize records the document count of a submitted batch.
func (m *Metrics) ObserveBatchSize(n int) {
	if m != nil {
		m.BatchSize.Observe(float64(n))
	}
}
