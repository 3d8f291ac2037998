package watchdog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mco-dev/mco/internal/runner"
	"github.com/mco-dev/mco/internal/types"
)

// transitionLog records onTransition calls under a mutex; Supervise's
// doc comment requires onTransition not block, but nothing stops two
// calls racing from different ticks in theory, so tests that read it
// must synchronize too.
type transitionLog struct {
	mu   sync.Mutex
	seen []types.RunState
}

func (l *transitionLog) record(s types.RunState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = append(l.seen, s)
}

func (l *transitionLog) contains(s types.RunState) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, v := range l.seen {
		if v == s {
			return true
		}
	}
	return false
}

func startRunner(t *testing.T, argv ...string) *runner.Runner {
	t.Helper()
	r := runner.New("claude", 0, nil)
	if err := r.Start(context.Background(), runner.Invocation{Argv: argv}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return r
}

func TestSuperviseCancelsOnRealStall(t *testing.T) {
	r := startRunner(t, "/bin/sh", "-c", "sleep 2")

	wd := New(120*time.Millisecond, 0)
	log := &transitionLog{}

	done := make(chan struct{})
	go func() {
		wd.Supervise(context.Background(), r, log.record)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Supervise did not return within 3s of a 120ms stall window")
	}

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("runner did not reach Done after stall cancellation")
	}

	if reason := r.CancelReason(); reason != runner.CancelStall {
		t.Errorf("CancelReason() = %q, want %q", reason, runner.CancelStall)
	}
	if !log.contains(types.StateStalling) {
		t.Error("onTransition was never called with StateStalling")
	}
	if !log.contains(types.StateCancelling) {
		t.Error("onTransition was never called with StateCancelling")
	}
}

func TestSuperviseCancelsOnRealHardDeadlineDespiteProgress(t *testing.T) {
	// Produces output every 20ms so it never looks stalled against a
	// generous window; only the hard deadline should fire.
	r := startRunner(t, "/bin/sh", "-c", "for i in $(seq 1 100); do echo $i; sleep 0.02; done")

	wd := New(5*time.Second, 150*time.Millisecond)
	log := &transitionLog{}

	done := make(chan struct{})
	go func() {
		wd.Supervise(context.Background(), r, log.record)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Supervise did not return within 3s of a 150ms hard deadline")
	}

	if reason := r.CancelReason(); reason != runner.CancelHardDeadline {
		t.Errorf("CancelReason() = %q, want %q", reason, runner.CancelHardDeadline)
	}
	if log.contains(types.StateStalling) {
		t.Error("a continuously-producing runner should never report StateStalling")
	}
}

func TestSuperviseExternalCancelDoesNotBusySpin(t *testing.T) {
	r := startRunner(t, "/bin/sh", "-c", "sleep 5")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	wd := New(time.Minute, 0)
	done := make(chan struct{})
	go func() {
		wd.Supervise(ctx, r, func(types.RunState) {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Supervise did not return promptly after external cancellation")
	}

	if reason := r.CancelReason(); reason != runner.CancelExternal {
		t.Errorf("CancelReason() = %q, want %q", reason, runner.CancelExternal)
	}
}
