package metrics

import "github.com/prometheus/client_golang/prometheus"

// Question answering metrics.
var (
	// AskTotal counts finished questions. path: shortcut|synthesis, outcome: answered|failed.
	AskTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ask_total",
			Help:      "Total questions answered, by path and outcome",
		},
		[]string{"path", "outcome"},
	)

	SynthesisAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "synthesis_attempts",
			Help:      "Generation attempts used per synthesized question",
			Buckets:   []float64{1, 2, 3, 4, 5, 8},
		},
	)

	// AttemptFailuresTotal counts failed attempts. kind: generation|policy|execution|verbalize.
	AttemptFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempt_failures_total",
			Help:      "Failed synthesis attempts by failure kind",
		},
		[]string{"kind"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Language model request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80, 120},
		},
		[]string{"provider", "model", "status"},
	)

	SPARQLRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sparql_request_duration_seconds",
			Help:      "SPARQL endpoint request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"status"},
	)
)
