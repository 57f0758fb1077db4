package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the extraction module.
type Metrics struct {
	// Generative call latency
	GenerateLatency prometheus.Histogram

	// Structuring outcomes by path: "parsed", "repaired", "fallback", "diagnostic"
	Outcome *prometheus.CounterVec

	// Responses rejected before parsing: "too_long", "reasoning"
	Degraded *prometheus.CounterVec

	// Record cache hits and misses
	CacheLookup *prometheus.CounterVec

	// Breaker transitions: "opened", "closed"
	BreakerTransition *prometheus.CounterVec
}

// New creates a new Metrics instance with all extraction module metrics registered.
func New() *Metrics {
	return &Metrics{
		GenerateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veridoc_extraction_generate_duration_seconds",
			Help:    "Duration of generative structuring calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		Outcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_extraction_outcomes_total",
			Help: "Total structuring outcomes by resolution path",
		}, []string{"path"}),

		Degraded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_extraction_degraded_responses_total",
			Help: "Responses discarded before parsing by degradation signal",
		}, []string{"signal"}),

		CacheLookup: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_extraction_cache_lookups_total",
			Help: "Record cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss", "error"

		BreakerTransition: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_extraction_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		}, []string{"transition"}),
	}
}

// ObserveGenerateLatency records the duration of one generative call.
func (m *Metrics) ObserveGenerateLatency(d time.Duration) {
	if m != nil {
		m.GenerateLatency.Observe(d.Seconds())
	}
}

// IncrementOutcome records which path resolved a document.
func (m *Metrics) IncrementOutcome(path string) {
	if m != nil {
		m.Outcome.WithLabelValues(path).Inc()
	}
}

// IncrementDegraded records a response rejected before any parse attempt.
func (m *Metrics) IncrementDegraded(signal string) {
	if m != nil {
		m.Degraded.WithLabelValues(signal).Inc()
	}
}

// IncrementCacheLookup records a cache lookup result.
func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookup.WithLabelValues(result).Inc()
	}
}

// IncrementBreakerTransition records a breaker state change.
func (m *Metrics) IncrementBreakerTransition(transition string) {
	if m != nil {
		m.BreakerTransition.WithLabelValues(transition).Inc()
	}
}
