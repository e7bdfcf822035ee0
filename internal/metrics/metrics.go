// Package metrics provides Prometheus metrics for the QA service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "robocall_qa"

// Outcome labels for EvaluationsTotal.
const (
	OutcomeScored     = "scored"
	OutcomeParseError = "parse_error"
	OutcomeCallError  = "call_error"
	OutcomeSkipped    = "skipped"
)

type Metrics struct {
	EvaluationsTotal   *prometheus.CounterVec
	ZeroTolerance      prometheus.Counter
	TotalScore         prometheus.Histogram
	EvaluationDuration prometheus.Histogram
	TurnsFormatted     prometheus.Counter
	ExternalLatency    *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EvaluationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Scorecard evaluations by outcome",
		}, []string{"outcome"}),
		ZeroTolerance: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "zero_tolerance_total",
			Help:      "Evaluations zeroed by a zero-tolerance violation",
		}),
		TotalScore: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "total_score",
			Help:      "Distribution of scorecard totals",
			Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		EvaluationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_duration_seconds",
			Help:      "Wall time of one fetch-format-score run",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120},
		}),
		TurnsFormatted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_formatted_total",
			Help:      "Transcript lines produced by the formatter",
		}),
		ExternalLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "external_call_duration_seconds",
			Help:      "Latency of calls to the conversation platform and the LLM",
			Buckets:   prometheus.DefBuckets,
		}, []string{"target"}),
	}
}

// ObserveOutcome records the result of one evaluation.
func (m *Metrics) ObserveOutcome(outcome string, score float64, zeroTolerance bool) {
	m.EvaluationsTotal.WithLabelValues(outcome).Inc()
	if outcome != OutcomeScored {
		return
	}
	m.TotalScore.Observe(score)
	if zeroTolerance {
		m.ZeroTolerance.Inc()
	}
}
