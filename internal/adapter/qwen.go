package adapter

import (
	"context"
	"strings"

	"github.com/mco-dev/mco/internal/runner"
	"github.com/mco-dev/mco/internal/types"
)

// qwenAdapter wraps the Qwen Code CLI.
type qwenAdapter struct{}

// NewQwen returns the Qwen Code adapter.
func NewQwen() Adapter { return qwenAdapter{} }

func (qwenAdapter) ID() string { return "qwen" }

var qwenSupportedPermissions = map[string]bool{
	"yolo": true,
	"env":  true,
}

func (qwenAdapter) Detect(ctx context.Context) types.ProviderSpec {
	return probeBinary(ctx, "qwen", "qwen", "--version")
}

func (qwenAdapter) BuildInvocation(task types.Task, spec types.ProviderSpec) (runner.Invocation, error) {
	perms := task.Policy.ProviderPermissions["qwen"]
	if err := checkPermissions(task.PathConstraints.EnforcementMode, qwenSupportedPermissions, perms); err != nil {
		return runner.Invocation{}, err
	}

	argv := []string{"qwen", "-p", scopedPrompt(task, false)}
	if len(task.PathConstraints.AllowPaths) > 0 {
		argv = append(argv, "--include-directories", strings.Join(task.PathConstraints.AllowPaths, ","))
	}
	if v, ok := perms["yolo"].(bool); ok && v {
		argv = append(argv, "--yolo")
	}

	return runner.Invocation{
		Argv: argv,
		Env:  envWithOverrides(perms),
		Dir:  task.RepoPath,
	}, nil
}

func (qwenAdapter) Parse(mode types.Mode, stdout, stderr []byte, exitCode int) ([]types.Finding, string, string) {
	if mode == types.ModeRun {
		payload, diag := parseRunOutput(stdout)
		return nil, payload, diag
	}
	fs, diag := parseReviewOutput(stdout)
	return fs, "", diag
}
