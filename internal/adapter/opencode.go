package adapter

import (
	"context"

	"github.com/mco-dev/mco/internal/runner"
	"github.com/mco-dev/mco/internal/types"
)

// opencodeAdapter wraps the OpenCode CLI.
type opencodeAdapter struct{}

// NewOpenCode returns the OpenCode adapter.
func NewOpenCode() Adapter { return opencodeAdapter{} }

func (opencodeAdapter) ID() string { return "opencode" }

var opencodeSupportedPermissions = map[string]bool{
	"agent": true,
	"env":   true,
}

func (opencodeAdapter) Detect(ctx context.Context) types.ProviderSpec {
	return probeBinary(ctx, "opencode", "opencode", "--version")
}

func (opencodeAdapter) BuildInvocation(task types.Task, spec types.ProviderSpec) (runner.Invocation, error) {
	perms := task.Policy.ProviderPermissions["opencode"]
	if err := checkPermissions(task.PathConstraints.EnforcementMode, opencodeSupportedPermissions, perms); err != nil {
		return runner.Invocation{}, err
	}

	argv := []string{"opencode", "run", scopedPrompt(task, true)}
	if v, ok := perms["agent"].(string); ok && v != "" {
		argv = append(argv, "--agent", v)
	}

	return runner.Invocation{
		Argv: argv,
		Env:  envWithOverrides(perms),
		Dir:  task.RepoPath,
	}, nil
}

func (opencodeAdapter) Parse(mode types.Mode, stdout, stderr []byte, exitCode int) ([]types.Finding, string, string) {
	if mode == types.ModeRun {
		payload, diag := parseRunOutput(stdout)
		return nil, payload, diag
	}
	fs, diag := parseReviewOutput(stdout)
	return fs, "", diag
}
