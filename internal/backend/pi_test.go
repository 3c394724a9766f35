package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/duetchat/duet/internal/chat"
)

func newTestPi(t *testing.T, url string, fold FoldStrategy) *PiClient {
	t.Helper()
	c, err := NewPi(PiConfig{
		APIKey:      "pi-key",
		Version:     "Pi-3.1",
		BaseURL:     url,
		Fold:        fold,
		MaxTokens:   64,
		Temperature: 0.7,
		Timeout:     5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewPi failed: %v", err)
	}
	return c
}

func TestResolvePiURL(t *testing.T) {
	tests := []struct {
		version string
		want    string
		wantErr bool
	}{
		{"Pi-3.1", piURL31, false},
		{"inflection_3_pi", piURLInflection, false},
		{"Pi-2", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.version, func(t *testing.T) {
			got, err := ResolvePiURL(tc.version)
			if tc.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

// TestPi_FoldedRequest verifies the default fold embeds the draft in
// the user message after the persona prompt and the threaded history.
func TestPi_FoldedRequest(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer pi-key" {
			t.Errorf("expected bearer credential, got %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(completionBody("Hello! How can I help?", "")))
	}))
	defer srv.Close()

	c := newTestPi(t, srv.URL, UserFold{})
	history := []chat.Message{chat.User("old q"), chat.Assistant("old a")}
	draft := Response{Answer: "greet politely"}

	resp, err := c.Complete(context.Background(), history, "Hello", draft)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Answer != "Hello! How can I help?" {
		t.Errorf("unexpected answer %q", resp.Answer)
	}

	if got.Model != "Pi-3.1" {
		t.Errorf("unexpected model %q", got.Model)
	}
	if len(got.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(got.Messages))
	}
	if got.Messages[0].Role != "system" {
		t.Errorf("expected leading persona prompt, got role %q", got.Messages[0].Role)
	}
	if got.Messages[1].Content != "old q" || got.Messages[2].Content != "old a" {
		t.Errorf("history not threaded: %+v", got.Messages[1:3])
	}
	last := got.Messages[3]
	if last.Role != "user" {
		t.Errorf("expected trailing user message, got role %q", last.Role)
	}
	if !strings.Contains(last.Content, "Original user question: Hello") ||
		!strings.Contains(last.Content, "greet politely") {
		t.Errorf("draft not folded into user message: %q", last.Content)
	}
}

// TestPi_Unauthorized verifies a rejected credential maps to
// ErrUnauthorized.
func TestPi_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer srv.Close()

	c := newTestPi(t, srv.URL, nil)
	_, err := c.Complete(context.Background(), nil, "Hello", Response{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got: %v", err)
	}
}

// TestPi_SetVersion verifies runtime version switching and rejection of
// unknown versions.
func TestPi_SetVersion(t *testing.T) {
	c, err := NewPi(PiConfig{APIKey: "k", Version: "Pi-3.1"})
	if err != nil {
		t.Fatalf("NewPi failed: %v", err)
	}
	if c.url != piURL31 {
		t.Errorf("expected %q, got %q", piURL31, c.url)
	}

	if err := c.SetVersion("inflection_3_pi"); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	if c.Version() != "inflection_3_pi" || c.url != piURLInflection {
		t.Errorf("version switch did not take: %q / %q", c.Version(), c.url)
	}

	if err := c.SetVersion("Pi-0"); err == nil {
		t.Error("expected error for unknown version")
	}
	if c.Version() != "inflection_3_pi" {
		t.Errorf("failed switch must not change version, got %q", c.Version())
	}
}

// TestNewPi_RejectsUnknownVersion verifies construction fails without a
// BaseURL override.
func TestNewPi_RejectsUnknownVersion(t *testing.T) {
	_, err := NewPi(PiConfig{APIKey: "k", Version: "Pi-9000"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
