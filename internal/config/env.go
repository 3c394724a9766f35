package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variable names. PI_* and VLLM_* match the names the chat
// deployment already exports; DUET_* are this client's own knobs.
const (
	EnvPiAPIKey      = "PI_API_KEY"
	EnvPiVersion     = "PI_VERSION"
	EnvReasonerURL   = "VLLM_URL"
	EnvReasonerKey   = "VLLM_API_KEY"
	EnvReasonerModel = "VLLM_MODEL_NAME"
	EnvFoldStrategy  = "DUET_FOLD"
	EnvUI            = "DUET_UI"
	EnvShowReasoning = "DUET_SHOW_REASONING"
)

// ErrMissing marks a required configuration value that is absent.
// Startup treats it as fatal before any turn is processed.
var ErrMissing = errors.New("required configuration missing")

// ErrInvalid marks a configuration value outside its recognized set.
var ErrInvalid = errors.New("invalid configuration value")

// FromEnv resolves the configuration from the process environment.
// PI_API_KEY and VLLM_URL are required; everything else has a default.
func FromEnv() (*Config, error) {
	cfg := &Config{
		PiAPIKey:        strings.TrimSpace(os.Getenv(EnvPiAPIKey)),
		PiVersion:       envOr(EnvPiVersion, DefaultPiVersion),
		ReasonerURL:     strings.TrimSpace(os.Getenv(EnvReasonerURL)),
		ReasonerAPIKey:  strings.TrimSpace(os.Getenv(EnvReasonerKey)),
		ReasonerModel:   envOr(EnvReasonerModel, DefaultReasonerModel),
		FoldStrategy:    envOr(EnvFoldStrategy, DefaultFoldStrategy),
		UI:              envOr(EnvUI, DefaultUI),
		ShowReasoning:   envBool(EnvShowReasoning, true),
		ReasonerTimeout: DefaultReasonerTimeout,
		PiTimeout:       DefaultPiTimeout,
	}

	if cfg.PiAPIKey == "" {
		return nil, fmt.Errorf("%s is not set: %w", EnvPiAPIKey, ErrMissing)
	}
	if cfg.ReasonerURL == "" {
		return nil, fmt.Errorf("%s is not set: %w", EnvReasonerURL, ErrMissing)
	}

	switch cfg.PiVersion {
	case PiVersion31, PiVersionInflection:
	default:
		return nil, fmt.Errorf("%s must be %q or %q, got %q: %w",
			EnvPiVersion, PiVersion31, PiVersionInflection, cfg.PiVersion, ErrInvalid)
	}

	switch cfg.FoldStrategy {
	case FoldUser, FoldSystem:
	default:
		return nil, fmt.Errorf("%s must be %q or %q, got %q: %w",
			EnvFoldStrategy, FoldUser, FoldSystem, cfg.FoldStrategy, ErrInvalid)
	}

	switch cfg.UI {
	case UITUI, UIPlain:
	default:
		return nil, fmt.Errorf("%s must be %q or %q, got %q: %w",
			EnvUI, UITUI, UIPlain, cfg.UI, ErrInvalid)
	}

	return cfg, nil
}

// envOr returns the trimmed value of the variable, or fallback when the
// variable is unset or blank.
func envOr(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

// envBool parses the variable as a boolean, falling back on unset or
// unparseable values.
func envBool(name string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
