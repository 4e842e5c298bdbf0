package event

import (
	"context"
	"encoding/json"
	"log/slog"

	"loan-eligibility/internal/infrastructure/monitoring"
	"loan-eligibility/internal/narration"

	amqp "github.com/rabbitmq/amqp091-go"
)

// NarrationRoutingKeys are the keys a narration worker binds to.
var NarrationRoutingKeys = []string{routingKeyNarrationRequested}

// NarrationEventHandler hands published narrations to a local Narrator.
type NarrationEventHandler struct {
	narrator narration.Narrator
	logger   *slog.Logger
}

func NewNarrationEventHandler(narrator narration.Narrator, logger *slog.Logger) *NarrationEventHandler {
	return &NarrationEventHandler{
		narrator: narrator,
		logger:   logger.With("component", "NarrationEventHandler"),
	}
}

// HandleDelivery acks narrated messages, rejects unknown keys and dead-letters
// bodies it cannot decode. A failed narration is requeued once.
func (h *NarrationEventHandler) HandleDelivery(ctx context.Context, d amqp.Delivery) {
	logCtx := h.logger.With(slog.Uint64("deliveryTag", d.DeliveryTag), slog.String("routingKey", d.RoutingKey))

	if d.RoutingKey != routingKeyNarrationRequested {
		logCtx.WarnContext(ctx, "Received message with unknown routing key. Discarding.")
		monitoring.RecordNarrationConsumed("rejected")
		_ = d.Reject(false)
		return
	}

	var evt NarrationRequestedEvent
	if err := json.Unmarshal(d.Body, &evt); err != nil || evt.Text == "" {
		logCtx.ErrorContext(ctx, "Failed to decode NarrationRequestedEvent", "error", err, "body", string(d.Body))
		monitoring.RecordNarrationConsumed("malformed")
		_ = d.Nack(false, false)
		return
	}

	logCtx = logCtx.With(slog.String("evaluationID", evt.EvaluationID))
	err := h.narrator.Narrate(ctx, narration.Narration{
		EvaluationID: evt.EvaluationID,
		Text:         evt.Text,
		Voice:        evt.Voice,
	})
	if err != nil {
		logCtx.ErrorContext(ctx, "Narration failed", "error", err, "redelivered", d.Redelivered)
		monitoring.RecordNarrationConsumed("failed")
		_ = d.Nack(false, !d.Redelivered)
		return
	}

	if err := d.Ack(false); err != nil {
		logCtx.ErrorContext(ctx, "Failed to acknowledge message after narration", "error", err)
	}
	monitoring.RecordNarrationConsumed("narrated")
}
