package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/duetchat/duet/internal/backend"
	"github.com/duetchat/duet/internal/chat"
	"github.com/duetchat/duet/internal/events"
)

// Backend names used for circuit breaker identity.
const (
	backendReasoner = "reasoner"
	backendPi       = "pi"
)

// TurnResult is the outcome of one successful turn.
type TurnResult struct {
	TurnID   string
	Draft    backend.Response // the reasoning backend's output
	Reply    string           // Pi's user-facing reply, committed to the transcript
	Duration time.Duration
}

// TurnRunnerConfig configures the turn runner.
type TurnRunnerConfig struct {
	Reasoner backend.Reasoner
	Styler   backend.Styler
	Bus      *events.Bus // optional; nil disables event publishing
	Retry    RetryConfig // zero value selects DefaultRetryConfig
}

// TurnRunner executes one user turn: reasoning draft first, then the
// conversational restyle, then a single atomic transcript commit.
type TurnRunner struct {
	cfg      TurnRunnerConfig
	breakers *BreakerRegistry
}

// NewTurnRunner creates a turn runner.
func NewTurnRunner(cfg TurnRunnerConfig) *TurnRunner {
	if cfg.Retry == (RetryConfig{}) {
		cfg.Retry = DefaultRetryConfig()
	}
	return &TurnRunner{
		cfg:      cfg,
		breakers: NewBreakerRegistry(),
	}
}

// RunTurn processes one user input against the given transcript. The
// transcript is only appended to after both backend calls succeed; a
// failed turn leaves it byte-for-byte as it was.
func (r *TurnRunner) RunTurn(ctx context.Context, transcript *chat.Transcript, input string) (TurnResult, error) {
	turnID := uuid.NewString()
	start := time.Now()

	r.publish(events.TurnStartedEvent{ID: turnID, Input: input, Timestamp: start})

	// Working snapshot: backends see the committed history plus the new
	// input, never a partially mutated transcript.
	history := transcript.Messages()

	var draft, styled backend.Response

	pipe, err := NewPipeline(
		&Stage{
			ID: events.StageReason,
			Run: func(ctx context.Context) error {
				stageStart := time.Now()
				r.publish(events.StageStartedEvent{ID: turnID, Stage: events.StageReason, Timestamp: stageStart})

				var err error
				draft, err = callWithRetry(ctx, r.breakers.Get(backendReasoner), r.cfg.Retry, func(ctx context.Context) (backend.Response, error) {
					return r.cfg.Reasoner.Complete(ctx, history, input)
				})
				if err != nil {
					return err
				}

				r.publish(events.StageCompletedEvent{
					ID:        turnID,
					Stage:     events.StageReason,
					Preview:   preview(draft.Answer),
					Duration:  time.Since(stageStart),
					Timestamp: time.Now(),
				})
				return nil
			},
		},
		&Stage{
			ID:        events.StageRestyle,
			DependsOn: []string{events.StageReason},
			Run: func(ctx context.Context) error {
				stageStart := time.Now()
				r.publish(events.StageStartedEvent{ID: turnID, Stage: events.StageRestyle, Timestamp: stageStart})

				var err error
				styled, err = callWithRetry(ctx, r.breakers.Get(backendPi), r.cfg.Retry, func(ctx context.Context) (backend.Response, error) {
					return r.cfg.Styler.Complete(ctx, history, input, draft)
				})
				if err != nil {
					return err
				}

				r.publish(events.StageCompletedEvent{
					ID:        turnID,
					Stage:     events.StageRestyle,
					Preview:   preview(styled.Answer),
					Duration:  time.Since(stageStart),
					Timestamp: time.Now(),
				})
				return nil
			},
		},
	)
	if err != nil {
		return TurnResult{}, fmt.Errorf("building turn pipeline: %w", err)
	}

	if err := pipe.Execute(ctx); err != nil {
		r.publish(events.TurnFailedEvent{ID: turnID, Err: err, Duration: time.Since(start), Timestamp: time.Now()})
		return TurnResult{}, err
	}

	if err := transcript.Commit(chat.User(input), chat.Assistant(styled.Answer)); err != nil {
		r.publish(events.TurnFailedEvent{ID: turnID, Err: err, Duration: time.Since(start), Timestamp: time.Now()})
		return TurnResult{}, fmt.Errorf("committing turn: %w", err)
	}

	elapsed := time.Since(start)
	r.publish(events.TurnCompletedEvent{ID: turnID, Reply: styled.Answer, Duration: elapsed, Timestamp: time.Now()})

	return TurnResult{
		TurnID:   turnID,
		Draft:    draft,
		Reply:    styled.Answer,
		Duration: elapsed,
	}, nil
}

func (r *TurnRunner) publish(ev events.Event) {
	if r.cfg.Bus != nil {
		r.cfg.Bus.Publish(ev)
	}
}

// preview truncates stage output for event consumers.
func preview(s string) string {
	const limit = 80
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
