// Package backend implements the HTTP clients for the two model
// backends: the self-hosted reasoning server and the hosted
// conversational API.
package backend

import (
	"context"

	"github.com/duetchat/duet/internal/chat"
)

// Reasoner produces an analytical draft for a user turn.
type Reasoner interface {
	// Complete sends the conversation history plus the new user input
	// and returns the reasoning/answer pair.
	Complete(ctx context.Context, history []chat.Message, userInput string) (Response, error)
}

// Styler produces the final user-facing reply, conditioned on the
// reasoning draft. Requiring the draft as a parameter makes the
// reason-before-restyle ordering structural rather than conventional.
type Styler interface {
	Complete(ctx context.Context, history []chat.Message, userInput string, draft Response) (Response, error)
}

// Response is the parsed output of one backend call.
type Response struct {
	// Answer is the final answer segment.
	Answer string

	// Reasoning is the internal reasoning trace, empty when the backend
	// does not separate one.
	Reasoning string

	// Model echoes the model identifier the server reported.
	Model string
}
