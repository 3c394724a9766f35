package config

import "time"

// Config is the resolved startup configuration. The core packages never
// read the environment themselves; main resolves this once and passes
// it down.
type Config struct {
	// Conversational backend (Pi).
	PiAPIKey  string
	PiVersion string

	// Reasoning backend (vLLM-served Qwen).
	ReasonerURL    string
	ReasonerAPIKey string
	ReasonerModel  string

	// How the reasoning draft is folded into the conversational request:
	// "user" or "system".
	FoldStrategy string

	// Session surface: "tui" or "plain".
	UI string

	// Whether the analytical draft is shown alongside Pi's reply.
	ShowReasoning bool

	// Transport timeouts per backend.
	ReasonerTimeout time.Duration
	PiTimeout       time.Duration
}
