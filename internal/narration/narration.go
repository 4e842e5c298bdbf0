// Package narration hands result summaries to whatever speaks or displays them.
package narration

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"loan-eligibility/internal/infrastructure/monitoring"
)

// Voice carries the speech settings a narration surface should use.
type Voice struct {
	Language string  `json:"language"`
	Rate     float64 `json:"rate"`
	Pitch    float64 `json:"pitch"`
}

func DefaultVoice() Voice {
	return Voice{Language: "en-IN", Rate: 0.95, Pitch: 1}
}

type Narration struct {
	EvaluationID string
	Text         string
	Voice        Voice
}

type Narrator interface {
	Narrate(ctx context.Context, n Narration) error
}

// Dispatcher runs each narration as a detached task after a fixed delay.
// Tasks are never cancelled; Wait blocks until all scheduled tasks finish.
type Dispatcher struct {
	narrator Narrator
	delay    time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func NewDispatcher(narrator Narrator, delay time.Duration, logger *slog.Logger) *Dispatcher {
	if narrator == nil {
		panic("narrator cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Dispatcher{
		narrator: narrator,
		delay:    delay,
		timeout:  10 * time.Second,
		logger:   logger.With("component", "NarrationDispatcher"),
	}
}

func (d *Dispatcher) Schedule(n Narration) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if d.delay > 0 {
			time.Sleep(d.delay)
		}

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		logCtx := d.logger.With(slog.String("evaluationID", n.EvaluationID))
		if err := d.narrator.Narrate(ctx, n); err != nil {
			monitoring.RecordNarration("failure")
			logCtx.ErrorContext(ctx, "Narration hand-off failed", slog.Any("error", err))
			return
		}
		monitoring.RecordNarration("success")
		logCtx.DebugContext(ctx, "Narration handed off")
	}()
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// LogNarrator writes narrations to the log. It stands in when no broker is configured.
type LogNarrator struct {
	logger *slog.Logger
}

func NewLogNarrator(logger *slog.Logger) *LogNarrator {
	return &LogNarrator{logger: logger.With("component", "LogNarrator")}
}

func (l *LogNarrator) Narrate(ctx context.Context, n Narration) error {
	l.logger.InfoContext(ctx, "Narration",
		slog.String("evaluationID", n.EvaluationID),
		slog.String("language", n.Voice.Language),
		slog.String("text", n.Text),
	)
	return nil
}
