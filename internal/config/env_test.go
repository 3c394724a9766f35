package config

import (
	"errors"
	"testing"
)

// setRequired sets the two required variables so individual tests can
// focus on the value under test.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv(EnvPiAPIKey, "test-key")
	t.Setenv(EnvReasonerURL, "http://localhost:8000/v1/chat/completions")
}

// clearOptional blanks every optional variable so defaults apply.
func clearOptional(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvPiVersion, EnvReasonerKey, EnvReasonerModel, EnvFoldStrategy, EnvUI, EnvShowReasoning} {
		t.Setenv(name, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequired(t)
	clearOptional(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	if cfg.PiVersion != DefaultPiVersion {
		t.Errorf("expected default Pi version %q, got %q", DefaultPiVersion, cfg.PiVersion)
	}
	if cfg.ReasonerModel != DefaultReasonerModel {
		t.Errorf("expected default reasoner model %q, got %q", DefaultReasonerModel, cfg.ReasonerModel)
	}
	if cfg.FoldStrategy != FoldUser {
		t.Errorf("expected default fold strategy %q, got %q", FoldUser, cfg.FoldStrategy)
	}
	if cfg.UI != UITUI {
		t.Errorf("expected default UI %q, got %q", UITUI, cfg.UI)
	}
	if !cfg.ShowReasoning {
		t.Error("expected ShowReasoning to default to true")
	}
	if cfg.ReasonerTimeout != DefaultReasonerTimeout {
		t.Errorf("unexpected reasoner timeout %v", cfg.ReasonerTimeout)
	}
}

func TestFromEnv_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"missing Pi key", EnvPiAPIKey},
		{"missing reasoner URL", EnvReasonerURL},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			clearOptional(t)
			t.Setenv(tc.unset, "")

			_, err := FromEnv()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrMissing) {
				t.Errorf("expected ErrMissing, got: %v", err)
			}
		})
	}
}

func TestFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
	}{
		{"bad Pi version", EnvPiVersion, "Pi-9000"},
		{"bad fold strategy", EnvFoldStrategy, "concat"},
		{"bad UI", EnvUI, "gui"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			clearOptional(t)
			t.Setenv(tc.env, tc.value)

			_, err := FromEnv()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got: %v", err)
			}
		})
	}
}

func TestFromEnv_ExplicitValues(t *testing.T) {
	setRequired(t)
	clearOptional(t)
	t.Setenv(EnvPiVersion, PiVersionInflection)
	t.Setenv(EnvReasonerModel, "Qwen/Qwen3-30B-A3B")
	t.Setenv(EnvFoldStrategy, FoldSystem)
	t.Setenv(EnvUI, UIPlain)
	t.Setenv(EnvShowReasoning, "false")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	if cfg.PiVersion != PiVersionInflection {
		t.Errorf("unexpected Pi version %q", cfg.PiVersion)
	}
	if cfg.ReasonerModel != "Qwen/Qwen3-30B-A3B" {
		t.Errorf("unexpected reasoner model %q", cfg.ReasonerModel)
	}
	if cfg.FoldStrategy != FoldSystem {
		t.Errorf("unexpected fold strategy %q", cfg.FoldStrategy)
	}
	if cfg.UI != UIPlain {
		t.Errorf("unexpected UI %q", cfg.UI)
	}
	if cfg.ShowReasoning {
		t.Error("expected ShowReasoning false")
	}
}

func TestFromEnv_ShowReasoningUnparseable(t *testing.T) {
	setRequired(t)
	clearOptional(t)
	t.Setenv(EnvShowReasoning, "maybe")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if !cfg.ShowReasoning {
		t.Error("unparseable boolean should fall back to default true")
	}
}
