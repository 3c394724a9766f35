package backend

import (
	"fmt"

	"github.com/duetchat/duet/internal/chat"
)

// FoldStrategy decides how the reasoning draft is folded into the
// conversational request. It returns the messages that follow the
// persona system prompt. An empty draft answer means the user message
// passes through untouched.
type FoldStrategy interface {
	Name() string
	Fold(history []chat.Message, userInput string, draft Response) []chat.Message
}

// FoldByName resolves a strategy from its configured name.
func FoldByName(name string) (FoldStrategy, error) {
	switch name {
	case "user":
		return UserFold{}, nil
	case "system":
		return SystemFold{}, nil
	default:
		return nil, fmt.Errorf("unknown fold strategy: %q", name)
	}
}

// UserFold embeds the draft in the outgoing user message, pairing the
// original question with the factual text to restyle.
type UserFold struct{}

func (UserFold) Name() string { return "user" }

func (UserFold) Fold(history []chat.Message, userInput string, draft Response) []chat.Message {
	out := append([]chat.Message(nil), history...)
	if draft.Answer == "" {
		return append(out, chat.User(userInput))
	}
	folded := fmt.Sprintf("Original user question: %s\n\nQwen's factual response to restyle:\n%s", userInput, draft.Answer)
	return append(out, chat.User(folded))
}

// SystemFold carries the draft as an extra system message and sends the
// user message verbatim.
type SystemFold struct{}

func (SystemFold) Name() string { return "system" }

func (SystemFold) Fold(history []chat.Message, userInput string, draft Response) []chat.Message {
	out := append([]chat.Message(nil), history...)
	if draft.Answer != "" {
		hint := fmt.Sprintf("An analytical engine already answered the user's question. Restyle this draft in your own voice, keeping every fact:\n%s", draft.Answer)
		out = append(out, chat.System(hint))
	}
	return append(out, chat.User(userInput))
}
