package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"
)

// TestSignalContextCancellation verifies that signal.NotifyContext produces
// a context that cancels correctly when a signal is received.
func TestSignalContextCancellation(t *testing.T) {
	// Use SIGUSR1 as a safe test signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGUSR1)
	defer stop()

	// Send SIGUSR1 to self
	if err := syscall.Kill(os.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatalf("Failed to send SIGUSR1: %v", err)
	}

	// Verify context cancels within 1 second
	select {
	case <-ctx.Done():
		// Success - context cancelled
	case <-time.After(1 * time.Second):
		t.Fatal("Context did not cancel after SIGUSR1")
	}

	// Verify context error is as expected
	if err := ctx.Err(); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

// TestShutdownUnblocksOnStop verifies the runTUI watcher pattern: once
// the signal context is released, a goroutine blocked on its Done
// channel proceeds.
func TestShutdownUnblocksOnStop(t *testing.T) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGUSR1)

	unblocked := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(unblocked)
	}()

	stop()

	select {
	case <-unblocked:
		// Success - watcher released
	case <-time.After(1 * time.Second):
		t.Fatal("Watcher did not unblock after stop()")
	}
}
