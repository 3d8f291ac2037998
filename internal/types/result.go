package types

import "time"

// Decision is the aggregate verdict derived from all provider results.
type Decision string

// Decisions, per the aggregator's decision function.
const (
	DecisionPass     Decision = "PASS"
	DecisionFail     Decision = "FAIL"
	DecisionEscalate Decision = "ESCALATE"
	DecisionPartial  Decision = "PARTIAL"
)

// ProviderResult is materialized once a runner reaches a terminal
// state. Exactly one exists per provider_id in the task's provider
// list.
type ProviderResult struct {
	ProviderID  string     `json:"provider_id"`
	RunState    RunState   `json:"run_state"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     time.Time  `json:"ended_at"`
	ExitCode    *int       `json:"exit_code"`
	StdoutBytes int64      `json:"stdout_bytes"`
	StderrBytes int64      `json:"stderr_bytes"`
	Findings    []Finding  `json:"findings"`
	Payload     string     `json:"payload,omitempty"`
	ErrorKind   *ErrorKind `json:"error_kind"`
	ErrorDetail *string    `json:"error_detail,omitempty"`
	// ParseDiagnostic carries the adapter's non-fatal parse diagnostic,
	// set when zero findings were recovered from otherwise-valid output.
	ParseDiagnostic string `json:"parse_diagnostic,omitempty"`
}

// Duration returns EndedAt minus StartedAt.
func (r ProviderResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// RunResult is materialized once every runner in the task has reached a
// terminal state.
type RunResult struct {
	TaskID         string                    `json:"task_id"`
	Mode           Mode                      `json:"mode"`
	StartedAt      time.Time                 `json:"started_at"`
	EndedAt        time.Time                 `json:"ended_at"`
	Decision       Decision                  `json:"decision"`
	ProviderResults map[string]ProviderResult `json:"provider_results"`
	Findings       []Finding                 `json:"findings"`
}

// DurationSeconds returns the whole-second run duration, per the
// run.json schema ("durations are whole seconds").
func (r RunResult) DurationSeconds() int64 {
	return int64(r.EndedAt.Sub(r.StartedAt).Seconds())
}
