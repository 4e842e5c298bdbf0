package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"loan-eligibility/internal/infrastructure/monitoring"
	"loan-eligibility/internal/narration"

	"github.com/prometheus/client_golang/prometheus/testutil"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAcknowledger struct {
	mock.Mock
}

func (m *MockAcknowledger) Ack(tag uint64, multiple bool) error {
	return m.Called(tag, multiple).Error(0)
}

func (m *MockAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	return m.Called(tag, multiple, requeue).Error(0)
}

func (m *MockAcknowledger) Reject(tag uint64, requeue bool) error {
	return m.Called(tag, requeue).Error(0)
}

type MockNarrator struct {
	mock.Mock
}

func (m *MockNarrator) Narrate(ctx context.Context, n narration.Narration) error {
	return m.Called(ctx, n).Error(0)
}

func narrationDelivery(t *testing.T, ack amqp.Acknowledger, routingKey string, redelivered bool) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(NewNarrationRequestedEvent(narration.Narration{
		EvaluationID: "eval-1",
		Text:         "Asha, here are your loan eligibility details.",
		Voice:        narration.DefaultVoice(),
	}, time.Now()))
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 7, RoutingKey: routingKey, Body: body, Redelivered: redelivered}
}

func TestNarrationEventHandler(t *testing.T) {
	expected := narration.Narration{
		EvaluationID: "eval-1",
		Text:         "Asha, here are your loan eligibility details.",
		Voice:        narration.DefaultVoice(),
	}

	t.Run("narrates and acks", func(t *testing.T) {
		monitoring.Delivery.NarrationsConsumedTotal.Reset()
		ack := new(MockAcknowledger)
		narrator := new(MockNarrator)
		ack.On("Ack", uint64(7), false).Return(nil)
		narrator.On("Narrate", mock.Anything, expected).Return(nil)

		NewNarrationEventHandler(narrator, logger).HandleDelivery(context.Background(), narrationDelivery(t, ack, routingKeyNarrationRequested, false))

		ack.AssertExpectations(t)
		narrator.AssertExpectations(t)
		assert.Equal(t, 1.0, testutil.ToFloat64(monitoring.Delivery.NarrationsConsumedTotal.WithLabelValues("narrated")))
	})

	t.Run("requeues a first failure", func(t *testing.T) {
		ack := new(MockAcknowledger)
		narrator := new(MockNarrator)
		ack.On("Nack", uint64(7), false, true).Return(nil)
		narrator.On("Narrate", mock.Anything, expected).Return(errors.New("speaker busy"))

		NewNarrationEventHandler(narrator, logger).HandleDelivery(context.Background(), narrationDelivery(t, ack, routingKeyNarrationRequested, false))

		ack.AssertExpectations(t)
	})

	t.Run("drops a redelivered failure", func(t *testing.T) {
		ack := new(MockAcknowledger)
		narrator := new(MockNarrator)
		ack.On("Nack", uint64(7), false, false).Return(nil)
		narrator.On("Narrate", mock.Anything, expected).Return(errors.New("speaker busy"))

		NewNarrationEventHandler(narrator, logger).HandleDelivery(context.Background(), narrationDelivery(t, ack, routingKeyNarrationRequested, true))

		ack.AssertExpectations(t)
	})

	t.Run("rejects unknown routing keys", func(t *testing.T) {
		ack := new(MockAcknowledger)
		narrator := new(MockNarrator)
		ack.On("Reject", uint64(7), false).Return(nil)

		NewNarrationEventHandler(narrator, logger).HandleDelivery(context.Background(), narrationDelivery(t, ack, routingKeyEligibilityEvaluated, false))

		ack.AssertExpectations(t)
		narrator.AssertNotCalled(t, "Narrate", mock.Anything, mock.Anything)
	})

	t.Run("dead-letters malformed bodies", func(t *testing.T) {
		ack := new(MockAcknowledger)
		narrator := new(MockNarrator)
		ack.On("Nack", uint64(7), false, false).Return(nil)

		d := amqp.Delivery{Acknowledger: ack, DeliveryTag: 7, RoutingKey: routingKeyNarrationRequested, Body: []byte("{not json")}
		NewNarrationEventHandler(narrator, logger).HandleDelivery(context.Background(), d)

		ack.AssertExpectations(t)
		narrator.AssertNotCalled(t, "Narrate", mock.Anything, mock.Anything)
	})
}

func TestNewConsumerRejectsNilConnection(t *testing.T) {
	c, err := NewConsumer(nil, "loan-eligibility", "narrations", "worker", NarrationRoutingKeys, func(context.Context, amqp.Delivery) {}, logger)

	assert.Nil(t, c)
	assert.Error(t, err)
}
