// Package types defines the core domain entities of the orchestration
// engine: Task, Policy, ProviderSpec, RunState, Finding, ProviderResult,
// and RunResult.
package types

// Mode selects the behavior of a dispatch: review mode recovers
// structured findings from provider output, run mode treats provider
// output as free-form payload.
type Mode string

const (
	// ModeReview runs providers against a repo and normalizes their
	// output into Findings.
	ModeReview Mode = "review"
	// ModeRun runs providers and captures free-text payload only.
	ModeRun Mode = "run"
)

// EnforcementMode controls how strictly path constraints are applied
// when an adapter cannot honor a requested permission.
type EnforcementMode string

const (
	// EnforcementStrict requires every permission option to be
	// honorable; an adapter that cannot express one must refuse to
	// build an invocation.
	EnforcementStrict EnforcementMode = "strict"
	// EnforcementLenient allows an adapter to proceed best-effort when
	// a permission option cannot be expressed.
	EnforcementLenient EnforcementMode = "lenient"
)

// PathConstraints scopes where a provider is allowed to read and write.
type PathConstraints struct {
	// AllowPaths lists paths the provider may read or write.
	AllowPaths []string `json:"allow_paths,omitempty"`
	// TargetPaths lists paths the task is specifically about.
	TargetPaths []string `json:"target_paths,omitempty"`
	// EnforcementMode controls strictness when a permission can't be honored.
	EnforcementMode EnforcementMode `json:"enforcement_mode"`
}

// Task is one invocation of the orchestrator: a frozen prompt, provider
// set, and policy. Immutable once constructed.
type Task struct {
	// TaskID is an opaque, sortable identifier, stable across the run.
	TaskID string `json:"task_id"`
	// Mode selects review or run behavior.
	Mode Mode `json:"mode"`
	// Prompt is the user's instruction, sent to every provider.
	Prompt string `json:"prompt"`
	// RepoPath is the absolute path to the repository under test.
	RepoPath string `json:"repo_path"`
	// ProviderIDs is the ordered, unique list of providers to dispatch.
	ProviderIDs []string `json:"provider_ids"`
	// Policy governs timeouts, parallelism, and permissions for this task.
	Policy Policy `json:"policy"`
	// PathConstraints scopes where providers may read and write.
	PathConstraints PathConstraints `json:"path_constraints"`
}

// Policy governs per-task timeouts, concurrency, and permission
// passthrough. Immutable for the lifetime of a task.
type Policy struct {
	// StallTimeoutSeconds is the default stall window; must be >= 1.
	StallTimeoutSeconds int `json:"stall_timeout_seconds" yaml:"stall_timeout_seconds"`
	// ReviewHardTimeoutSeconds is the review-mode hard deadline; 0 disables it.
	ReviewHardTimeoutSeconds int `json:"review_hard_timeout_seconds" yaml:"review_hard_timeout_seconds"`
	// MaxProviderParallelism caps concurrent admitted providers; 0 = unbounded.
	MaxProviderParallelism int `json:"max_provider_parallelism" yaml:"max_provider_parallelism"`
	// EnforcementMode is the default enforcement mode for permission options.
	EnforcementMode EnforcementMode `json:"enforcement_mode" yaml:"enforcement_mode"`
	// ProviderTimeouts overrides StallTimeoutSeconds per provider_id.
	ProviderTimeouts map[string]int `json:"provider_timeouts,omitempty" yaml:"provider_timeouts,omitempty"`
	// ProviderPermissions carries free-form options through to each adapter.
	ProviderPermissions map[string]map[string]any `json:"provider_permissions,omitempty" yaml:"provider_permissions,omitempty"`
	// Notify carries optional completion-notification passthrough config.
	Notify NotifyPolicy `json:"notify,omitempty" yaml:"notify,omitempty"`
}

// NotifyPolicy configures the optional completion notification that the
// review/run command fires once the result has been written out as
// artifacts, to stdout, or both. Off by default; CLI
// flags (--webhook-url, --redis-addr) override these when set.
type NotifyPolicy struct {
	WebhookURL string `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty"`
	RedisAddr  string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
}

// DefaultPolicy returns the policy defaults named in the spec:
// a 900s stall timeout, no hard deadline, unbounded parallelism, strict
// enforcement.
func DefaultPolicy() Policy {
	return Policy{
		StallTimeoutSeconds:      900,
		ReviewHardTimeoutSeconds: 0,
		MaxProviderParallelism:   0,
		EnforcementMode:          EnforcementStrict,
	}
}

// StallWindowFor returns the effective stall window for a provider:
// the per-provider override if present, else the task default.
func (p Policy) StallWindowFor(providerID string) int {
	if p.ProviderTimeouts != nil {
		if v, ok := p.ProviderTimeouts[providerID]; ok {
			return v
		}
	}
	return p.StallTimeoutSeconds
}
