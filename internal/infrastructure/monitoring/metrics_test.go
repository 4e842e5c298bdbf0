package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordEvaluation(t *testing.T) {
	Eligibility.EvaluationsTotal.Reset()

	RecordEvaluation(true, time.Millisecond)
	RecordEvaluation(false, time.Millisecond)
	RecordEvaluation(false, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(Eligibility.EvaluationsTotal.WithLabelValues("eligible")))
	assert.Equal(t, 2.0, testutil.ToFloat64(Eligibility.EvaluationsTotal.WithLabelValues("ineligible")))
}

func TestRecordValidationFailure(t *testing.T) {
	Eligibility.ValidationFailuresTotal.Reset()

	RecordValidationFailure("age")
	RecordValidationFailure("")

	assert.Equal(t, 1.0, testutil.ToFloat64(Eligibility.ValidationFailuresTotal.WithLabelValues("age")))
	assert.Equal(t, 1.0, testutil.ToFloat64(Eligibility.ValidationFailuresTotal.WithLabelValues("unknown")))
}

func TestRecordDelivery(t *testing.T) {
	Delivery.NarrationsTotal.Reset()
	Delivery.EventsPublishedTotal.Reset()
	Delivery.NarrationsConsumedTotal.Reset()

	RecordNarration("success")
	RecordEventPublished("eligibility.evaluated", "failure")
	RecordNarrationConsumed("rejected")

	assert.Equal(t, 1.0, testutil.ToFloat64(Delivery.NarrationsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(Delivery.EventsPublishedTotal.WithLabelValues("eligibility.evaluated", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(Delivery.NarrationsConsumedTotal.WithLabelValues("rejected")))
}
