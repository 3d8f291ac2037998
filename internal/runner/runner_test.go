package runner

import (
	"context"
	"testing"
	"time"
)

func TestRunnerHappyPath(t *testing.T) {
	r := New("claude", 0, nil)
	inv := Invocation{Argv: []string{"/bin/sh", "-c", "echo hi; echo err >&2"}}
	if err := r.Start(context.Background(), inv); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-r.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not reach done within 5s")
	}

	if code := r.ExitCode(); code != 0 {
		t.Errorf("ExitCode() = %d, want 0", code)
	}
	if got := string(r.StdoutBuffer().Content()); got != "hi\n" {
		t.Errorf("stdout = %q, want %q", got, "hi\n")
	}
	if got := string(r.StderrBuffer().Content()); got != "err\n" {
		t.Errorf("stderr = %q, want %q", got, "err\n")
	}
}

func TestRunnerProgressSnapshotMonotonic(t *testing.T) {
	r := New("claude", 0, nil)
	inv := Invocation{Argv: []string{"/bin/sh", "-c", "for i in 1 2 3; do echo $i; sleep 0.05; done"}}
	if err := r.Start(context.Background(), inv); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var last int64
	for i := 0; i < 3; i++ {
		time.Sleep(60 * time.Millisecond)
		out, _, _ := r.ProgressSnapshot()
		if out < last {
			t.Fatalf("stdout byte count went backwards: %d -> %d", last, out)
		}
		last = out
	}

	select {
	case <-r.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not reach done within 5s")
	}
}

func TestRunnerCancelIsIdempotentAndReapsChild(t *testing.T) {
	r := New("claude", 0, nil)
	inv := Invocation{Argv: []string{"/bin/sh", "-c", "sleep 30"}}
	if err := r.Start(context.Background(), inv); err != nil {
		t.Fatalf("Start: %v", err)
	}

	r.Cancel(CancelStall)
	r.Cancel(CancelStall) // must not panic or deadlock

	select {
	case <-r.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("cancelled runner did not reach done within grace + epsilon")
	}

	if reason := r.CancelReason(); reason != CancelStall {
		t.Errorf("CancelReason() = %q, want %q", reason, CancelStall)
	}
}

func TestRunnerSpawnFailure(t *testing.T) {
	r := New("claude", 0, nil)
	inv := Invocation{Argv: []string{"/nonexistent/binary/path"}}
	err := r.Start(context.Background(), inv)
	if err == nil {
		t.Fatal("expected Start to fail for a nonexistent binary")
	}
	if !IsSpawnError(err) {
		t.Errorf("IsSpawnError(%v) = false, want true", err)
	}
	if IsStallError(err) || IsHardDeadlineError(err) || IsExternalCancelError(err) {
		t.Error("spawn failure should not classify as a cancellation error")
	}
}
