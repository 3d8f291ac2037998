package adapter

import (
	"context"

	"github.com/mco-dev/mco/internal/runner"
	"github.com/mco-dev/mco/internal/types"
)

// codexAdapter wraps OpenAI's Codex CLI.
type codexAdapter struct{}

// NewCodex returns the Codex CLI adapter.
func NewCodex() Adapter { return codexAdapter{} }

func (codexAdapter) ID() string { return "codex" }

var codexSupportedPermissions = map[string]bool{
	"sandbox":         true,
	"full_auto":       true,
	"approval_policy": true,
	"env":             true,
}

func (codexAdapter) Detect(ctx context.Context) types.ProviderSpec {
	return probeBinary(ctx, "codex", "codex", "--version")
}

func (codexAdapter) BuildInvocation(task types.Task, spec types.ProviderSpec) (runner.Invocation, error) {
	perms := task.Policy.ProviderPermissions["codex"]
	if err := checkPermissions(task.PathConstraints.EnforcementMode, codexSupportedPermissions, perms); err != nil {
		return runner.Invocation{}, err
	}

	argv := []string{"codex", "exec", "--json", "--cd", task.RepoPath}
	if v, ok := perms["sandbox"].(string); ok && v != "" {
		argv = append(argv, "--sandbox", v)
	}
	if v, ok := perms["approval_policy"].(string); ok && v != "" {
		argv = append(argv, "--ask-for-approval", v)
	}
	if v, ok := perms["full_auto"].(bool); ok && v {
		argv = append(argv, "--full-auto")
	}
	argv = append(argv, scopedPrompt(task, true))

	return runner.Invocation{
		Argv: argv,
		Env:  envWithOverrides(perms),
		Dir:  task.RepoPath,
	}, nil
}

func (codexAdapter) Parse(mode types.Mode, stdout, stderr []byte, exitCode int) ([]types.Finding, string, string) {
	if mode == types.ModeRun {
		payload, diag := parseRunOutput(stdout)
		return nil, payload, diag
	}
	fs, diag := parseReviewOutput(stdout)
	return fs, "", diag
}
