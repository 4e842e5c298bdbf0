package event

import (
	"context"
	"time"

	"loan-eligibility/internal/domain/eligibility"
)

type EligibilityEvaluatedEvent struct {
	EvaluationID string    `json:"evaluationId"`
	Eligible     bool      `json:"eligible"`
	Score        int       `json:"score"`
	Reasons      []string  `json:"reasons"`
	MaxLoan      int64     `json:"maxLoan"`
	EMI          int64     `json:"emi"`
	Ratio        *string   `json:"ratio"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewEligibilityEvaluatedEvent omits applicant contact details; only the verdict leaves the service.
func NewEligibilityEvaluatedEvent(d eligibility.Decision) EligibilityEvaluatedEvent {
	var ratio *string
	if d.Result.Ratio.Valid {
		s := eligibility.FormatRatio(d.Result.Ratio)
		ratio = &s
	}
	return EligibilityEvaluatedEvent{
		EvaluationID: d.ID.String(),
		Eligible:     d.Result.Eligible,
		Score:        d.Result.Score,
		Reasons:      append([]string(nil), d.Result.Reasons...),
		MaxLoan:      d.Result.MaxLoan,
		EMI:          d.Result.EMI,
		Ratio:        ratio,
		Timestamp:    d.EvaluatedAt,
	}
}

func (p *RabbitMQEventPublisher) PublishEligibilityEvaluated(ctx context.Context, decision eligibility.Decision) error {
	return p.publish(ctx, routingKeyEligibilityEvaluated, NewEligibilityEvaluatedEvent(decision))
}
