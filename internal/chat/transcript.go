package chat

import (
	"fmt"
)

// Transcript is the ordered conversation history for one session.
// It lives only for the lifetime of the process and is mutated solely by
// appending a completed user/assistant pair at the end of a turn.
// Roles strictly alternate user/assistant after the optional leading
// system message.
type Transcript struct {
	msgs []Message
}

// NewTranscript creates an empty transcript. A non-empty systemPrompt
// becomes the leading system message.
func NewTranscript(systemPrompt string) *Transcript {
	t := &Transcript{}
	if systemPrompt != "" {
		t.msgs = append(t.msgs, System(systemPrompt))
	}
	return t
}

// Messages returns a copy of the transcript. Callers may append to the
// result freely without affecting the transcript.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

// Len returns the number of messages in the transcript.
func (t *Transcript) Len() int {
	return len(t.msgs)
}

// Last returns the most recent message, or false on an empty transcript.
func (t *Transcript) Last() (Message, bool) {
	if len(t.msgs) == 0 {
		return Message{}, false
	}
	return t.msgs[len(t.msgs)-1], true
}

// Commit appends a completed turn: the user message followed by the
// assistant reply. It rejects pairs that would break the alternation
// invariant.
func (t *Transcript) Commit(user, assistant Message) error {
	if user.Role != RoleUser {
		return fmt.Errorf("commit: first message must have role %q, got %q", RoleUser, user.Role)
	}
	if assistant.Role != RoleAssistant {
		return fmt.Errorf("commit: second message must have role %q, got %q", RoleAssistant, assistant.Role)
	}

	if last, ok := t.Last(); ok && last.Role == RoleUser {
		return fmt.Errorf("commit: transcript already ends with an uncommitted user message")
	}

	t.msgs = append(t.msgs, user, assistant)
	return nil
}
