package eligibility

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"loan-eligibility/internal/infrastructure/monitoring"
	"loan-eligibility/internal/narration"
	"loan-eligibility/internal/pkg/apperrors"

	"github.com/google/uuid"
)

// Decision is a Result stamped with an evaluation id and time.
type Decision struct {
	ID          uuid.UUID
	Result      Result
	EvaluatedAt time.Time
}

type EligibilityService interface {
	Evaluate(ctx context.Context, raw RawApplication) (*Decision, error)
	Requirements() Requirements
}

// Publisher announces completed evaluations to other services.
type Publisher interface {
	PublishEligibilityEvaluated(ctx context.Context, decision Decision) error
}

type NarrationScheduler interface {
	Schedule(n narration.Narration)
}

var _ EligibilityService = (*eligibilityService)(nil)

type eligibilityService struct {
	publisher Publisher
	narrator  NarrationScheduler
	voice     narration.Voice
	logger    *slog.Logger
	now       func() time.Time
	newID     func() uuid.UUID
}

// NewEligibilityService wires the engine to its surfaces. publisher and
// narrator are optional.
func NewEligibilityService(publisher Publisher, narrator NarrationScheduler, voice narration.Voice, logger *slog.Logger) EligibilityService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewEligibilityService, using default stderr handler")
	}
	return &eligibilityService{
		publisher: publisher,
		narrator:  narrator,
		voice:     voice,
		logger:    logger.With(slog.String("component", "eligibilityService")),
		now:       time.Now,
		newID:     uuid.New,
	}
}

func (s *eligibilityService) Evaluate(ctx context.Context, raw RawApplication) (*Decision, error) {
	start := time.Now()
	s.logger.DebugContext(ctx, "Evaluating application")

	applicant, err := Validate(raw)
	if err != nil {
		field := apperrors.FieldOf(err)
		monitoring.RecordValidationFailure(field)
		if errors.Is(err, apperrors.ErrMissingField) {
			s.logger.WarnContext(ctx, "Application is missing a required field", slog.String("field", field))
		} else {
			s.logger.WarnContext(ctx, "Application failed validation", slog.String("field", field), slog.Any("error", err))
		}
		return nil, err
	}

	assessment := Assess(*applicant)
	Size(&assessment)
	result := Explain(&assessment)

	decision := &Decision{
		ID:          s.newID(),
		Result:      result,
		EvaluatedAt: s.now(),
	}

	for _, rule := range assessment.FailedRules() {
		monitoring.RecordRuleFailure(string(rule))
	}
	monitoring.RecordEvaluation(result.Eligible, time.Since(start))

	logCtx := s.logger.With(slog.String("evaluationID", decision.ID.String()))
	logCtx.InfoContext(ctx, "Application evaluated",
		slog.Bool("eligible", result.Eligible),
		slog.Int("score", result.Score),
		slog.Int64("maxLoan", result.MaxLoan),
		slog.String("ratio", FormatRatio(result.Ratio)),
		slog.Int("reasons", len(result.Reasons)),
	)
	for _, r := range assessment.Rules {
		logCtx.DebugContext(ctx, "Rule outcome", slog.String("rule", string(r.Rule)), slog.Bool("passed", r.Passed), slog.Int("points", r.Points), slog.String("note", r.Note))
	}

	s.publish(ctx, logCtx, *decision)
	s.scheduleNarration(*decision)

	return decision, nil
}

func (s *eligibilityService) Requirements() Requirements {
	return ListRequirements()
}

func (s *eligibilityService) publish(ctx context.Context, logCtx *slog.Logger, decision Decision) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEligibilityEvaluated(ctx, decision); err != nil {
		logCtx.ErrorContext(ctx, "Failed to publish evaluation event", slog.Any("error", err))
	}
}

func (s *eligibilityService) scheduleNarration(decision Decision) {
	if s.narrator == nil {
		return
	}
	s.narrator.Schedule(narration.Narration{
		EvaluationID: decision.ID.String(),
		Text:         decision.Result.Summary,
		Voice:        s.voice,
	})
}
