package adapter

import (
	"context"

	"github.com/mco-dev/mco/internal/runner"
	"github.com/mco-dev/mco/internal/types"
)

// claudeAdapter wraps the Claude Code CLI.
type claudeAdapter struct{}

// NewClaude returns the Claude Code adapter.
func NewClaude() Adapter { return claudeAdapter{} }

func (claudeAdapter) ID() string { return "claude" }

var claudeSupportedPermissions = map[string]bool{
	"allowed_tools":                true,
	"dangerously_skip_permissions": true,
	"env":                          true,
}

func (claudeAdapter) Detect(ctx context.Context) types.ProviderSpec {
	return probeBinary(ctx, "claude", "claude", "--version")
}

func (claudeAdapter) BuildInvocation(task types.Task, spec types.ProviderSpec) (runner.Invocation, error) {
	perms := task.Policy.ProviderPermissions["claude"]
	if err := checkPermissions(task.PathConstraints.EnforcementMode, claudeSupportedPermissions, perms); err != nil {
		return runner.Invocation{}, err
	}

	argv := []string{"claude", "-p", scopedPrompt(task, false), "--output-format", "json"}
	for _, p := range task.PathConstraints.AllowPaths {
		argv = append(argv, "--add-dir", p)
	}
	if v, ok := perms["allowed_tools"].(string); ok && v != "" {
		argv = append(argv, "--allowed-tools", v)
	}
	if v, ok := perms["dangerously_skip_permissions"].(bool); ok && v {
		argv = append(argv, "--dangerously-skip-permissions")
	}

	return runner.Invocation{
		Argv: argv,
		Env:  envWithOverrides(perms),
		Dir:  task.RepoPath,
	}, nil
}

func (claudeAdapter) Parse(mode types.Mode, stdout, stderr []byte, exitCode int) ([]types.Finding, string, string) {
	if mode == types.ModeRun {
		payload, diag := parseRunOutput(stdout)
		return nil, payload, diag
	}
	fs, diag := parseReviewOutput(stdout)
	return fs, "", diag
}
