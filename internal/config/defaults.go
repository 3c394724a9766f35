package config

import "time"

// Recognized values for enum-like settings.
const (
	PiVersion31         = "Pi-3.1"
	PiVersionInflection = "inflection_3_pi"

	FoldUser   = "user"
	FoldSystem = "system"

	UITUI   = "tui"
	UIPlain = "plain"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultPiVersion     = PiVersion31
	DefaultReasonerModel = "Qwen/Qwen3-32B"
	DefaultFoldStrategy  = FoldUser
	DefaultUI            = UITUI

	// The reasoner generates long analytical output; give it room.
	DefaultReasonerTimeout = 5 * time.Minute
	DefaultPiTimeout       = 2 * time.Minute
)

// Sampling parameters for the two backends.
const (
	ReasonerMaxTokens   = 32768
	ReasonerTemperature = 0.0
	PiMaxTokens         = 1024
	PiTemperature       = 0.7
)
