package backend

import "errors"

// Error taxonomy for backend calls. Callers classify with errors.Is;
// the wrapped message carries the backend name and HTTP detail.
var (
	// ErrUnavailable covers connection failures, timeouts, DNS errors,
	// and HTTP 429/5xx. Transient: the turn failed but the next may
	// succeed.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrUnauthorized covers HTTP 401/403. A rejected credential will
	// not self-correct, so callers should not retry within a turn.
	ErrUnauthorized = errors.New("backend rejected credential")

	// ErrProtocol covers response bodies that do not match the expected
	// chat-completions shape, and 4xx statuses other than auth ones.
	ErrProtocol = errors.New("backend protocol error")
)
