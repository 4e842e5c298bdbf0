package eligibility

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"loan-eligibility/internal/infrastructure/monitoring"
	"loan-eligibility/internal/narration"
	"loan-eligibility/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishEligibilityEvaluated(ctx context.Context, decision Decision) error {
	args := m.Called(ctx, decision)
	return args.Error(0)
}

type MockNarrationScheduler struct {
	mock.Mock
}

func (m *MockNarrationScheduler) Schedule(n narration.Narration) {
	m.Called(n)
}

var (
	fixedID   = uuid.MustParse("6f1c2d1e-4b1a-4c55-9d0e-2f3a4b5c6d7e")
	fixedTime = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
)

func newTestService(pub Publisher, sched NarrationScheduler) *eligibilityService {
	svc := NewEligibilityService(pub, sched, narration.DefaultVoice(), logger).(*eligibilityService)
	svc.newID = func() uuid.UUID { return fixedID }
	svc.now = func() time.Time { return fixedTime }
	return svc
}

func TestServiceEvaluatePublishesAndNarrates(t *testing.T) {
	pub := new(MockPublisher)
	sched := new(MockNarrationScheduler)
	svc := newTestService(pub, sched)
	ctx := context.Background()

	pub.On("PublishEligibilityEvaluated", ctx, mock.MatchedBy(func(d Decision) bool {
		return d.ID == fixedID && d.Result.Eligible
	})).Return(nil)
	sched.On("Schedule", mock.MatchedBy(func(n narration.Narration) bool {
		return n.EvaluationID == fixedID.String() &&
			n.Voice == narration.DefaultVoice() &&
			n.Text != ""
	})).Return()

	decision, err := svc.Evaluate(ctx, formApplication())

	require.NoError(t, err)
	assert.Equal(t, fixedID, decision.ID)
	assert.Equal(t, fixedTime, decision.EvaluatedAt)
	assert.True(t, decision.Result.Eligible)
	assert.Equal(t, 100, decision.Result.Score)
	pub.AssertExpectations(t)
	sched.AssertExpectations(t)
}

func TestServiceEvaluateIgnoresPublishFailure(t *testing.T) {
	pub := new(MockPublisher)
	sched := new(MockNarrationScheduler)
	svc := newTestService(pub, sched)
	ctx := context.Background()

	pub.On("PublishEligibilityEvaluated", ctx, mock.Anything).Return(errors.New("connection reset"))
	sched.On("Schedule", mock.Anything).Return()

	decision, err := svc.Evaluate(ctx, formApplication())

	require.NoError(t, err)
	assert.NotNil(t, decision)
	sched.AssertNumberOfCalls(t, "Schedule", 1)
}

func TestServiceEvaluateValidationFailure(t *testing.T) {
	monitoring.Eligibility.ValidationFailuresTotal.Reset()
	pub := new(MockPublisher)
	sched := new(MockNarrationScheduler)
	svc := newTestService(pub, sched)

	raw := formApplication()
	delete(raw, FieldPhone)

	decision, err := svc.Evaluate(context.Background(), raw)

	assert.Nil(t, decision)
	assert.ErrorIs(t, err, apperrors.ErrMissingField)
	assert.Equal(t, 1.0, testutil.ToFloat64(monitoring.Eligibility.ValidationFailuresTotal.WithLabelValues(FieldPhone)))
	pub.AssertNotCalled(t, "PublishEligibilityEvaluated", mock.Anything, mock.Anything)
	sched.AssertNotCalled(t, "Schedule", mock.Anything)
}

func TestServiceEvaluateRecordsRuleFailures(t *testing.T) {
	monitoring.Eligibility.RuleFailuresTotal.Reset()
	svc := newTestService(nil, nil)

	raw := formApplication()
	raw[FieldAge] = "70"
	raw[FieldLoanAmount] = "9000000"

	decision, err := svc.Evaluate(context.Background(), raw)

	require.NoError(t, err)
	assert.False(t, decision.Result.Eligible)
	assert.Equal(t, []string{ReasonAge, "Exceeds max ₹7,200,000"}, decision.Result.Reasons)
	assert.Equal(t, 1.0, testutil.ToFloat64(monitoring.Eligibility.RuleFailuresTotal.WithLabelValues(string(RuleAge))))
	assert.Equal(t, 1.0, testutil.ToFloat64(monitoring.Eligibility.RuleFailuresTotal.WithLabelValues(string(RuleLoanCeiling))))
}

func TestServiceRequirements(t *testing.T) {
	svc := NewEligibilityService(nil, nil, narration.DefaultVoice(), nil)

	assert.Equal(t, ListRequirements(), svc.Requirements())
}
