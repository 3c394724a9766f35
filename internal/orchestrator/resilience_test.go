package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/duetchat/duet/internal/backend"
)

// scriptedCall replays a fixed sequence of outcomes.
type scriptedCall struct {
	responses []any // backend.Response or error
	calls     int
}

func (s *scriptedCall) fn(ctx context.Context) (backend.Response, error) {
	if s.calls >= len(s.responses) {
		return backend.Response{}, fmt.Errorf("unexpected call %d (only %d scripted)", s.calls+1, len(s.responses))
	}
	out := s.responses[s.calls]
	s.calls++

	switch v := out.(type) {
	case backend.Response:
		return v, nil
	case error:
		return backend.Response{}, v
	default:
		return backend.Response{}, fmt.Errorf("invalid scripted outcome: %T", v)
	}
}

func fastRetry() RetryConfig {
	return RetryConfig{
		InitialInterval:     5 * time.Millisecond,
		MaxInterval:         20 * time.Millisecond,
		MaxElapsedTime:      time.Second,
		Multiplier:          2.0,
		RandomizationFactor: 0.5,
	}
}

// TestCallWithRetry_TransientThenSuccess verifies transient
// unavailability is retried until success.
func TestCallWithRetry_TransientThenSuccess(t *testing.T) {
	script := &scriptedCall{responses: []any{
		fmt.Errorf("dial refused: %w", backend.ErrUnavailable),
		fmt.Errorf("dial refused: %w", backend.ErrUnavailable),
		backend.Response{Answer: "recovered"},
	}}

	cb := NewBreakerRegistry().Get("test")
	resp, err := callWithRetry(context.Background(), cb, fastRetry(), script.fn)
	if err != nil {
		t.Fatalf("expected success after retries, got: %v", err)
	}
	if resp.Answer != "recovered" {
		t.Errorf("expected answer 'recovered', got %q", resp.Answer)
	}
	if script.calls != 3 {
		t.Errorf("expected 3 calls (2 failures + 1 success), got %d", script.calls)
	}
}

// TestCallWithRetry_UnauthorizedNotRetried verifies a rejected
// credential fails the call immediately.
func TestCallWithRetry_UnauthorizedNotRetried(t *testing.T) {
	script := &scriptedCall{responses: []any{
		fmt.Errorf("pi: status 401: %w", backend.ErrUnauthorized),
		backend.Response{Answer: "must not reach"},
	}}

	cb := NewBreakerRegistry().Get("test")
	_, err := callWithRetry(context.Background(), cb, fastRetry(), script.fn)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, backend.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got: %v", err)
	}
	if script.calls != 1 {
		t.Errorf("expected exactly 1 call, got %d", script.calls)
	}
}

// TestCallWithRetry_UnauthorizedDoesNotTripBreaker verifies auth
// failures do not count against backend availability.
func TestCallWithRetry_UnauthorizedDoesNotTripBreaker(t *testing.T) {
	registry := NewBreakerRegistry()
	cb := registry.Get("pi")

	for i := 0; i < 8; i++ {
		script := &scriptedCall{responses: []any{
			fmt.Errorf("pi: status 401: %w", backend.ErrUnauthorized),
		}}
		if _, err := callWithRetry(context.Background(), cb, fastRetry(), script.fn); err == nil {
			t.Fatalf("call %d: expected error", i+1)
		}
	}

	if state := cb.State(); state != gobreaker.StateClosed {
		t.Errorf("expected closed breaker after auth failures, got %v", state)
	}
}

// TestCallWithRetry_BreakerOpensOnPersistentUnavailability verifies the
// circuit opens and subsequent calls fail fast.
func TestCallWithRetry_BreakerOpensOnPersistentUnavailability(t *testing.T) {
	script := &scriptedCall{responses: make([]any, 50)}
	for i := range script.responses {
		script.responses[i] = fmt.Errorf("down %d: %w", i+1, backend.ErrUnavailable)
	}

	cb := NewBreakerRegistry().Get("dead-backend")
	retryCfg := fastRetry()
	retryCfg.MaxElapsedTime = 200 * time.Millisecond

	for i := 0; i < 6; i++ {
		_, err := callWithRetry(context.Background(), cb, retryCfg, script.fn)
		if err == nil {
			t.Fatalf("call %d: expected error", i+1)
		}
		if errors.Is(err, gobreaker.ErrOpenState) {
			t.Logf("circuit opened after %d outer calls", i+1)
			return
		}
	}

	if state := cb.State(); state != gobreaker.StateOpen {
		t.Errorf("expected open breaker after persistent failures, got %v", state)
	}
}

// TestCallWithRetry_ContextCancelledStopsRetry verifies cancellation
// cuts the retry loop short.
func TestCallWithRetry_ContextCancelledStopsRetry(t *testing.T) {
	script := &scriptedCall{responses: make([]any, 100)}
	for i := range script.responses {
		script.responses[i] = fmt.Errorf("down: %w", backend.ErrUnavailable)
	}

	cb := NewBreakerRegistry().Get("test")
	retryCfg := fastRetry()
	retryCfg.MaxElapsedTime = 10 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := callWithRetry(ctx, cb, retryCfg, script.fn)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected error")
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("retry loop ran %v past cancellation", elapsed)
	}
}

// TestBreakerRegistry_PerBackend verifies breakers are shared per name.
func TestBreakerRegistry_PerBackend(t *testing.T) {
	registry := NewBreakerRegistry()

	a1 := registry.Get("reasoner")
	a2 := registry.Get("reasoner")
	b := registry.Get("pi")

	if a1 != a2 {
		t.Error("expected same breaker instance for 'reasoner'")
	}
	if a1 == b {
		t.Error("expected distinct breakers for 'reasoner' and 'pi'")
	}
	if a1.Name() != "reasoner" || b.Name() != "pi" {
		t.Errorf("unexpected breaker names %q / %q", a1.Name(), b.Name())
	}
}
