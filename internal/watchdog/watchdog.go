// Package watchdog implements the Stall Watchdog: a per-runner timer
// that cancels a runner when progress has not advanced for the
// configured stall window, or when the hard deadline (review mode)
// elapses, per the state machine in the spec.
//
// Grounded on the teacher's statsRecorder atomic-counter discipline
// (policy/policy.go), generalized from accumulating stat counters to
// sampling a single monotonic progress counter on a ticker.
package watchdog

import (
	"context"
	"time"

	"github.com/mco-dev/mco/internal/runner"
	"github.com/mco-dev/mco/internal/types"
)

// MaxTickInterval bounds the watchdog's sampling interval regardless of
// how long the stall window is.
const MaxTickInterval = 5 * time.Second

// Watchdog supervises one runner's progress against a stall window and
// an optional hard deadline.
type Watchdog struct {
	window       time.Duration
	hardDeadline time.Duration // 0 disables
}

// New creates a Watchdog. hardDeadline of 0 disables the hard-deadline
// check (it is only ever evaluated in review mode per the spec).
func New(window, hardDeadline time.Duration) *Watchdog {
	return &Watchdog{window: window, hardDeadline: hardDeadline}
}

// tickInterval is min(5s, window/30), per the spec's sampling rule.
func (w *Watchdog) tickInterval() time.Duration {
	candidate := w.window / 30
	if candidate <= 0 || candidate > MaxTickInterval {
		return MaxTickInterval
	}
	return candidate
}

// Supervise watches r until it reaches a terminal state or ctx is
// cancelled (external interrupt). onTransition is called, from this
// goroutine, each time the observed state changes; it must not block.
//
// Supervise returns once r.Done() closes. It does not itself classify
// the final RunState — the caller reads r.CancelReason() and r.ExitCode()
// after Done() closes to do that, per the dispatcher's responsibility
// for result assembly.
func (w *Watchdog) Supervise(ctx context.Context, r *runner.Runner, onTransition func(types.RunState)) {
	ticker := time.NewTicker(w.tickInterval())
	defer ticker.Stop()

	var lastTotal int64 = -1
	lastProgressAt := time.Now()
	cancelling := false
	reportedStalling := false

	// ctxDone is nilled out once the external cancel has been issued:
	// ctx.Done()'s channel stays closed (permanently ready) for the rest
	// of Supervise's life, so selecting on it unconditionally would spin
	// the loop with no blocking wait until r.Done() closes. A nil channel
	// is never ready, so the select falls through to ticker.C/r.Done()
	// as intended.
	ctxDone := ctx.Done()

	for {
		select {
		case <-r.Done():
			return
		case <-ctxDone:
			ctxDone = nil
			r.Cancel(runner.CancelExternal)
			// Keep watching for Done; an external cancel still has to
			// go through the graceful-then-kill sequence.
			continue
		case <-ticker.C:
			if cancelling {
				continue
			}

			stdoutBytes, stderrBytes, elapsed := r.ProgressSnapshot()
			total := stdoutBytes + stderrBytes

			if total > lastTotal {
				lastTotal = total
				lastProgressAt = time.Now()
				if reportedStalling {
					reportedStalling = false
					onTransition(types.StateRunning)
				}
			}

			hardFired := w.hardDeadline > 0 && elapsed >= w.hardDeadline
			stallFired := time.Since(lastProgressAt) >= w.window

			switch {
			case hardFired:
				// Tie-break: hard deadline wins when both fire in the
				// same tick.
				cancelling = true
				onTransition(types.StateCancelling)
				r.Cancel(runner.CancelHardDeadline)
			case stallFired:
				if !reportedStalling {
					reportedStalling = true
					onTransition(types.StateStalling)
				}
				cancelling = true
				onTransition(types.StateCancelling)
				r.Cancel(runner.CancelStall)
			}
		}
	}
}
