// Package dispatcher implements the top-level orchestrator: it runs the
// detect phase, admits providers under the parallelism cap, owns one
// Runner and one Watchdog per admitted provider, enforces wait-all, and
// hands the per-provider results to the aggregator.
//
// Grounded on the teacher's fan-out Operator (runtime/fanout.go): a
// semaphore-bounded worker pool with a WaitGroup join, generalized from
// a dynamic work queue with dedup to a fixed provider list known up
// front, since Task.ProviderIDs is closed at dispatch entry.
package dispatcher

import (
	"context"
	"sync"
	"time"

	"github.com/mco-dev/mco/internal/adapter"
	"github.com/mco-dev/mco/internal/aggregate"
	"github.com/mco-dev/mco/internal/log"
	"github.com/mco-dev/mco/internal/runner"
	"github.com/mco-dev/mco/internal/types"
	"github.com/mco-dev/mco/internal/watchdog"
)

// RawOutput holds one provider's final retained stdout/stderr bytes, for
// the artifact writer to flush to raw/<id>.stdout and raw/<id>.stderr.
type RawOutput struct {
	Stdout []byte
	Stderr []byte
}

// DispatchResult is the Dispatcher's full output: the RunResult plus the
// raw captured bytes the artifact writer needs but which ProviderResult
// itself does not carry.
type DispatchResult struct {
	RunResult types.RunResult
	Raw       map[string]RawOutput
}

// ProviderSnapshot is a read-only, point-in-time view of one provider's
// progress, for the TUI's tea.Tick polling loop.
type ProviderSnapshot struct {
	ProviderID  string
	RunState    types.RunState
	StdoutBytes int64
	StderrBytes int64
	Elapsed     time.Duration
}

// snapshotTickInterval is how often runOne refreshes its provider's
// live byte counters while running, independent of the watchdog's own
// (coarser) sampling cadence.
const snapshotTickInterval = 250 * time.Millisecond

// Dispatcher is the top-level orchestrator.
type Dispatcher struct {
	registry *adapter.Registry
	bufCap   int
	logger   *log.Logger

	mu   sync.Mutex
	live map[string]ProviderSnapshot
}

// New creates a Dispatcher over the given adapter registry. bufCap <= 0
// uses runner.DefaultBufferCap for every provider's OutputBuffers.
func New(registry *adapter.Registry, bufCap int, logger *log.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, bufCap: bufCap, logger: logger, live: make(map[string]ProviderSnapshot)}
}

// Snapshot returns the current progress of every provider admitted so
// far, for a TUI to render while Dispatch is in flight. Safe to call
// concurrently with Dispatch.
func (d *Dispatcher) Snapshot() []ProviderSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]ProviderSnapshot, 0, len(d.live))
	for _, s := range d.live {
		out = append(out, s)
	}
	return out
}

func (d *Dispatcher) setLive(s ProviderSnapshot) {
	d.mu.Lock()
	d.live[s.ProviderID] = s
	d.mu.Unlock()
}

// setLiveState replaces providerID's RunState in place under a single
// lock, preserving whatever byte counters pollProgress last recorded.
// Used by the watchdog callback, which only knows about state
// transitions, not byte counts; a separate read-then-write would race
// with pollProgress's own concurrent writes to the same entry.
func (d *Dispatcher) setLiveState(providerID string, s types.RunState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	snap := d.live[providerID]
	snap.ProviderID = providerID
	snap.RunState = s
	d.live[providerID] = snap
}

// pollProgress refreshes providerID's live byte counters and elapsed
// time every snapshotTickInterval until r finishes.
func (d *Dispatcher) pollProgress(r *runner.Runner, providerID string) {
	ticker := time.NewTicker(snapshotTickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Done():
			return
		case <-ticker.C:
			stdoutBytes, stderrBytes, elapsed := r.ProgressSnapshot()
			d.mu.Lock()
			snap := d.live[providerID]
			snap.ProviderID = providerID
			snap.StdoutBytes = stdoutBytes
			snap.StderrBytes = stderrBytes
			snap.Elapsed = elapsed
			d.live[providerID] = snap
			d.mu.Unlock()
		}
	}
}

// Dispatch runs task to completion and returns its result. It blocks
// until every admitted provider has reached a terminal state
// (wait-all), or ctx is cancelled, in which case every non-terminal
// runner is cancelled with reason external and Dispatch still blocks
// for wait-all before returning.
func (d *Dispatcher) Dispatch(ctx context.Context, task types.Task) DispatchResult {
	startedAt := time.Now()

	results := make(map[string]types.ProviderResult, len(task.ProviderIDs))
	raw := make(map[string]RawOutput, len(task.ProviderIDs))
	var resultsMu sync.Mutex

	var admitted []string
	specs := make(map[string]types.ProviderSpec, len(task.ProviderIDs))
	for _, id := range task.ProviderIDs {
		a, ok := d.registry.Lookup(id)
		if !ok {
			results[id] = notAdmittedResult(id, types.ErrorNotDetected, "unknown provider_id")
			continue
		}
		spec := a.Detect(ctx)
		if !spec.Detected {
			results[id] = skippedResult(id)
			d.setLive(ProviderSnapshot{ProviderID: id, RunState: types.StateSkippedUndetected})
			continue
		}
		specs[id] = spec
		admitted = append(admitted, id)
		d.setLive(ProviderSnapshot{ProviderID: id, RunState: types.StateAdmitted})
	}

	var sem chan struct{}
	if task.Policy.MaxProviderParallelism > 0 {
		sem = make(chan struct{}, task.Policy.MaxProviderParallelism)
	}

	var wg sync.WaitGroup
	for _, id := range admitted {
		a, _ := d.registry.Lookup(id)
		spec := specs[id]

		if sem != nil {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				resultsMu.Lock()
				results[id] = notAdmittedResult(id, types.ErrorCancelledExternal, "task cancelled before admission")
				resultsMu.Unlock()
				continue
			}
		}

		wg.Add(1)
		go func(providerID string, a adapter.Adapter, spec types.ProviderSpec) {
			defer wg.Done()
			if sem != nil {
				defer func() { <-sem }()
			}
			pr, rawOut := d.runOne(ctx, task, a, spec)
			resultsMu.Lock()
			results[providerID] = pr
			raw[providerID] = rawOut
			resultsMu.Unlock()
		}(id, a, spec)
	}
	wg.Wait()

	endedAt := time.Now()
	runResult := aggregate.BuildRunResult(task.TaskID, task.Mode, startedAt, endedAt, task.ProviderIDs, results)
	return DispatchResult{RunResult: runResult, Raw: raw}
}

func (d *Dispatcher) runOne(ctx context.Context, task types.Task, a adapter.Adapter, spec types.ProviderSpec) (types.ProviderResult, RawOutput) {
	startedAt := time.Now()

	inv, err := a.BuildInvocation(task, spec)
	if err != nil {
		kind := types.ErrorPermissionUnmet
		detail := err.Error()
		return types.ProviderResult{
			ProviderID:  spec.ID,
			RunState:    types.StateSpawnFailed,
			StartedAt:   startedAt,
			EndedAt:     time.Now(),
			ExitCode:    nil,
			ErrorKind:   &kind,
			ErrorDetail: &detail,
		}, RawOutput{}
	}

	r := runner.New(spec.ID, d.bufCap, d.logger)
	if err := r.Start(ctx, inv); err != nil {
		kind := types.ErrorInternal
		if runner.IsSpawnError(err) {
			kind = types.ErrorSpawnFailed
		}
		detail := err.Error()
		return types.ProviderResult{
			ProviderID:  spec.ID,
			RunState:    types.StateSpawnFailed,
			StartedAt:   startedAt,
			EndedAt:     time.Now(),
			ErrorKind:   &kind,
			ErrorDetail: &detail,
		}, RawOutput{}
	}

	window := time.Duration(task.Policy.StallWindowFor(spec.ID)) * time.Second
	var hardDeadline time.Duration
	if task.Mode == types.ModeReview && task.Policy.ReviewHardTimeoutSeconds > 0 {
		hardDeadline = time.Duration(task.Policy.ReviewHardTimeoutSeconds) * time.Second
	}
	d.setLive(ProviderSnapshot{ProviderID: spec.ID, RunState: types.StateRunning})

	wd := watchdog.New(window, hardDeadline)
	go wd.Supervise(ctx, r, func(s types.RunState) {
		d.setLiveState(spec.ID, s)
	})
	go d.pollProgress(r, spec.ID)

	<-r.Done()

	exitCode := r.ExitCode()
	cancelReason := r.CancelReason()
	state := classifyRunState(cancelReason, exitCode)

	stdout := r.StdoutBuffer().Content()
	stderr := r.StderrBuffer().Content()

	findingsList, payload, parseDiagnostic := a.Parse(task.Mode, stdout, stderr, exitCode)

	errKind, errDetail := classifyError(task.Mode, cancelReason, exitCode, findingsList, payload)

	pr := types.ProviderResult{
		ProviderID:      spec.ID,
		RunState:        state,
		StartedAt:       r.StartedAt(),
		EndedAt:         r.EndedAt(),
		ExitCode:        intPtr(exitCode),
		StdoutBytes:     r.StdoutBuffer().Bytes(),
		StderrBytes:     r.StderrBuffer().Bytes(),
		Findings:        findingsList,
		Payload:         payload,
		ErrorKind:       errKind,
		ErrorDetail:     errDetail,
		ParseDiagnostic: parseDiagnostic,
	}
	d.setLive(ProviderSnapshot{
		ProviderID:  spec.ID,
		RunState:    state,
		StdoutBytes: pr.StdoutBytes,
		StderrBytes: pr.StderrBytes,
		Elapsed:     pr.EndedAt.Sub(pr.StartedAt),
	})
	return pr, RawOutput{Stdout: stdout, Stderr: stderr}
}

// classifyRunState derives the terminal RunState from whether and why
// the runner was cancelled and its final exit code. Stall and hard
// deadline cancellation each have a dedicated terminal bucket in the
// state machine; an externally cancelled runner is classified purely by
// its exit status (the external cancellation reason still surfaces
// through ProviderResult.ErrorKind).
func classifyRunState(reason runner.CancelReason, exitCode int) types.RunState {
	switch reason {
	case runner.CancelStall:
		return types.StateCancelledStall
	case runner.CancelHardDeadline:
		return types.StateCancelledHard
	}
	if exitCode == 0 {
		return types.StateExitedOK
	}
	return types.StateExitedErr
}

func classifyError(mode types.Mode, reason runner.CancelReason, exitCode int, findings []types.Finding, payload string) (*types.ErrorKind, *string) {
	if reason != "" {
		k := errorKindFromCancelReason(reason)
		return &k, nil
	}
	if exitCode != 0 {
		k := types.ErrorExitNonzero
		return &k, nil
	}
	if mode == types.ModeReview && len(findings) == 0 {
		k := types.ErrorParseEmpty
		return &k, nil
	}
	return nil, nil
}

// errorKindFromCancelReason classifies a cancellation via runner's
// RunnerError/Is*Error helpers rather than switching on CancelReason
// directly, so a caller holding only the wrapped error (as
// runOne's spawn-failure path does for ErrorSpawnFailed) classifies the
// same way a caller holding the raw reason does.
func errorKindFromCancelReason(reason runner.CancelReason) types.ErrorKind {
	err := runner.NewCancelError(reason)
	switch {
	case runner.IsStallError(err):
		return types.ErrorCancelledStall
	case runner.IsHardDeadlineError(err):
		return types.ErrorCancelledHard
	case runner.IsExternalCancelError(err):
		return types.ErrorCancelledExternal
	default:
		return types.ErrorInternal
	}
}

func notAdmittedResult(id string, kind types.ErrorKind, detail string) types.ProviderResult {
	k := kind
	d := detail
	now := time.Now()
	state := types.StateSkippedUndetected
	if kind != types.ErrorNotDetected {
		state = types.StateSpawnFailed
	}
	return types.ProviderResult{
		ProviderID:  id,
		RunState:    state,
		StartedAt:   now,
		EndedAt:     now,
		ErrorKind:   &k,
		ErrorDetail: &d,
	}
}

func skippedResult(id string) types.ProviderResult {
	k := types.ErrorNotDetected
	now := time.Now()
	return types.ProviderResult{
		ProviderID: id,
		RunState:   types.StateSkippedUndetected,
		StartedAt:  now,
		EndedAt:    now,
		ErrorKind:  &k,
	}
}

func intPtr(v int) *int { return &v }
