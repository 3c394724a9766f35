package events

import (
	"time"
)

// Event is the base interface for all turn lifecycle events.
type Event interface {
	EventType() string
	TurnID() string
}

// Event type constants
const (
	EventTypeTurnStarted    = "turn.started"
	EventTypeStageStarted   = "turn.stage.started"
	EventTypeStageCompleted = "turn.stage.completed"
	EventTypeTurnCompleted  = "turn.completed"
	EventTypeTurnFailed     = "turn.failed"
)

// Stage identifiers used in stage events.
const (
	StageReason  = "reason"
	StageRestyle = "restyle"
)

// TurnStartedEvent is published when a user turn begins processing.
type TurnStartedEvent struct {
	ID        string
	Input     string
	Timestamp time.Time
}

func (e TurnStartedEvent) EventType() string { return EventTypeTurnStarted }
func (e TurnStartedEvent) TurnID() string    { return e.ID }

// StageStartedEvent is published when a backend call begins.
type StageStartedEvent struct {
	ID        string
	Stage     string
	Timestamp time.Time
}

func (e StageStartedEvent) EventType() string { return EventTypeStageStarted }
func (e StageStartedEvent) TurnID() string    { return e.ID }

// StageCompletedEvent is published when a backend call succeeds.
// Preview carries a short excerpt of the stage output for display.
type StageCompletedEvent struct {
	ID        string
	Stage     string
	Preview   string
	Duration  time.Duration
	Timestamp time.Time
}

func (e StageCompletedEvent) EventType() string { return EventTypeStageCompleted }
func (e StageCompletedEvent) TurnID() string    { return e.ID }

// TurnCompletedEvent is published after the assistant reply is committed.
type TurnCompletedEvent struct {
	ID        string
	Reply     string
	Duration  time.Duration
	Timestamp time.Time
}

func (e TurnCompletedEvent) EventType() string { return EventTypeTurnCompleted }
func (e TurnCompletedEvent) TurnID() string    { return e.ID }

// TurnFailedEvent is published when either backend call fails. The
// transcript is untouched on failure.
type TurnFailedEvent struct {
	ID        string
	Err       error
	Duration  time.Duration
	Timestamp time.Time
}

func (e TurnFailedEvent) EventType() string { return EventTypeTurnFailed }
func (e TurnFailedEvent) TurnID() string    { return e.ID }
