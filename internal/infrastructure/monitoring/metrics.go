package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type EligibilityMetrics struct {
	EvaluationsTotal        *prometheus.CounterVec
	EvaluationDuration      prometheus.Histogram
	RuleFailuresTotal       *prometheus.CounterVec
	ValidationFailuresTotal *prometheus.CounterVec
}

type DeliveryMetrics struct {
	NarrationsTotal         *prometheus.CounterVec
	EventsPublishedTotal    *prometheus.CounterVec
	NarrationsConsumedTotal *prometheus.CounterVec
}

var (
	Eligibility = EligibilityMetrics{
		EvaluationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_eligibility_evaluations_total",
				Help: "Total number of completed eligibility evaluations by outcome.",
			},
			[]string{"outcome"},
		),
		EvaluationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "loan_eligibility_evaluation_duration_seconds",
				Help:    "Histogram of eligibility evaluation latencies.",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
		),
		RuleFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_eligibility_rule_failures_total",
				Help: "Total number of rule violations by rule.",
			},
			[]string{"rule"},
		),
		ValidationFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_eligibility_validation_failures_total",
				Help: "Total number of rejected applications by offending field.",
			},
			[]string{"field"},
		),
	}

	Delivery = DeliveryMetrics{
		NarrationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_eligibility_narrations_total",
				Help: "Total number of narration hand-offs by status.",
			},
			[]string{"status"},
		),
		EventsPublishedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_eligibility_events_published_total",
				Help: "Total number of broker publishes by routing key and status.",
			},
			[]string{"routing_key", "status"},
		),
		NarrationsConsumedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_eligibility_narrations_consumed_total",
				Help: "Total number of narration messages handled by the worker, by outcome.",
			},
			[]string{"outcome"},
		),
	}
)

func RecordEvaluation(eligible bool, duration time.Duration) {
	outcome := "ineligible"
	if eligible {
		outcome = "eligible"
	}
	Eligibility.EvaluationsTotal.WithLabelValues(outcome).Inc()
	Eligibility.EvaluationDuration.Observe(duration.Seconds())
}

func RecordRuleFailure(rule string) {
	Eligibility.RuleFailuresTotal.WithLabelValues(rule).Inc()
}

func RecordValidationFailure(field string) {
	if field == "" {
		field = "unknown"
	}
	Eligibility.ValidationFailuresTotal.WithLabelValues(field).Inc()
}

func RecordNarration(status string) {
	Delivery.NarrationsTotal.WithLabelValues(status).Inc()
}

func RecordEventPublished(routingKey, status string) {
	Delivery.EventsPublishedTotal.WithLabelValues(routingKey, status).Inc()
}

func RecordNarrationConsumed(outcome string) {
	Delivery.NarrationsConsumedTotal.WithLabelValues(outcome).Inc()
}
