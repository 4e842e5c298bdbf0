package event

import (
	"context"
	"time"

	"loan-eligibility/internal/narration"
)

type NarrationRequestedEvent struct {
	EvaluationID string          `json:"evaluationId"`
	Text         string          `json:"text"`
	Voice        narration.Voice `json:"voice"`
	Timestamp    time.Time       `json:"timestamp"`
}

func NewNarrationRequestedEvent(n narration.Narration, at time.Time) NarrationRequestedEvent {
	return NarrationRequestedEvent{
		EvaluationID: n.EvaluationID,
		Text:         n.Text,
		Voice:        n.Voice,
		Timestamp:    at,
	}
}

// Narrate publishes the narration for a speech consumer.
func (p *RabbitMQEventPublisher) Narrate(ctx context.Context, n narration.Narration) error {
	return p.publish(ctx, routingKeyNarrationRequested, NewNarrationRequestedEvent(n, time.Now().UTC()))
}
