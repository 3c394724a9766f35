package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/duetchat/duet/internal/backend"
	"github.com/duetchat/duet/internal/chat"
	"github.com/duetchat/duet/internal/orchestrator"
)

// State describes where the interactive loop is in its lifecycle.
type State int

const (
	// AwaitingInput means the loop is idle, waiting for the next line.
	AwaitingInput State = iota
	// ProcessingTurn means a turn is in flight against the backends.
	ProcessingTurn
	// Closed means the loop has exited and accepts no further input.
	Closed
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting_input"
	case ProcessingTurn:
		return "processing_turn"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Runner executes a single turn. Satisfied by *orchestrator.TurnRunner.
type Runner interface {
	RunTurn(ctx context.Context, transcript *chat.Transcript, input string) (orchestrator.TurnResult, error)
}

// LoopConfig configures the line-oriented session loop.
type LoopConfig struct {
	Runner     Runner
	Transcript *chat.Transcript
	Input      io.Reader
	Output     io.Writer

	// PiVersion is shown in the greeting banner.
	PiVersion string
	// ShowReasoning prints the analytical draft before each reply.
	ShowReasoning bool
}

// Loop is the plain-terminal session surface: one line in, one turn
// out, no screen management. Suited to pipes and dumb terminals.
type Loop struct {
	cfg   LoopConfig
	state State
}

// NewLoop creates a session loop.
func NewLoop(cfg LoopConfig) (*Loop, error) {
	if cfg.Runner == nil {
		return nil, errors.New("session: runner is required")
	}
	if cfg.Transcript == nil {
		return nil, errors.New("session: transcript is required")
	}
	if cfg.Input == nil || cfg.Output == nil {
		return nil, errors.New("session: input and output streams are required")
	}
	return &Loop{cfg: cfg, state: AwaitingInput}, nil
}

// State reports the loop's current lifecycle state.
func (l *Loop) State() State {
	return l.state
}

// Run reads lines until "exit", EOF, or context cancellation. A failed
// turn prints a notice and returns to the prompt; the conversation so
// far stays intact either way.
func (l *Loop) Run(ctx context.Context) error {
	out := l.cfg.Output

	fmt.Fprintf(out, "Duet chat session (Pi version: %s). Type 'exit' to quit.\n\n", l.cfg.PiVersion)

	scanner := bufio.NewScanner(l.cfg.Input)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if err := ctx.Err(); err != nil {
			l.state = Closed
			return err
		}

		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			l.state = Closed
			fmt.Fprintln(out, "\nGoodbye.")
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") {
			l.state = Closed
			fmt.Fprintln(out, "Goodbye.")
			return nil
		}

		l.state = ProcessingTurn
		fmt.Fprintln(out, "🧠 thinking...")

		result, err := l.cfg.Runner.RunTurn(ctx, l.cfg.Transcript, line)
		if err != nil {
			if ctx.Err() != nil {
				l.state = Closed
				return ctx.Err()
			}
			fmt.Fprintf(out, "⚠ %s\n\n", turnErrorNotice(err))
			l.state = AwaitingInput
			continue
		}

		if l.cfg.ShowReasoning && result.Draft.Answer != "" {
			fmt.Fprintf(out, "\n[draft] %s\n", result.Draft.Answer)
		}
		fmt.Fprintf(out, "\npi> %s\n\n", result.Reply)

		l.state = AwaitingInput
	}
}

// turnErrorNotice maps a turn failure to a one-line user notice.
func turnErrorNotice(err error) string {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return fmt.Sprintf("a backend rejected its credentials; check PI_API_KEY and VLLM_API_KEY (%v)", err)
	case errors.Is(err, backend.ErrUnavailable):
		return fmt.Sprintf("a backend is unreachable; this turn was not recorded (%v)", err)
	case errors.Is(err, backend.ErrProtocol):
		return fmt.Sprintf("a backend returned an unusable response; this turn was not recorded (%v)", err)
	default:
		return fmt.Sprintf("turn failed; this turn was not recorded (%v)", err)
	}
}
