package adapter

import (
	"context"
	"strings"

	"github.com/mco-dev/mco/internal/runner"
	"github.com/mco-dev/mco/internal/types"
)

// geminiAdapter wraps Google's Gemini CLI.
type geminiAdapter struct{}

// NewGemini returns the Gemini CLI adapter.
func NewGemini() Adapter { return geminiAdapter{} }

func (geminiAdapter) ID() string { return "gemini" }

var geminiSupportedPermissions = map[string]bool{
	"yolo":        true,
	"allowed_mcp": true,
	"env":         true,
}

func (geminiAdapter) Detect(ctx context.Context) types.ProviderSpec {
	return probeBinary(ctx, "gemini", "gemini", "--version")
}

func (geminiAdapter) BuildInvocation(task types.Task, spec types.ProviderSpec) (runner.Invocation, error) {
	perms := task.Policy.ProviderPermissions["gemini"]
	if err := checkPermissions(task.PathConstraints.EnforcementMode, geminiSupportedPermissions, perms); err != nil {
		return runner.Invocation{}, err
	}

	argv := []string{"gemini", "-p", scopedPrompt(task, false)}
	if len(task.PathConstraints.AllowPaths) > 0 {
		argv = append(argv, "--include-directories", strings.Join(task.PathConstraints.AllowPaths, ","))
	}
	if v, ok := perms["yolo"].(bool); ok && v {
		argv = append(argv, "--yolo")
	}
	if v, ok := perms["allowed_mcp"].(string); ok && v != "" {
		argv = append(argv, "--allowed-mcp-server-names", v)
	}

	return runner.Invocation{
		Argv: argv,
		Env:  envWithOverrides(perms),
		Dir:  task.RepoPath,
	}, nil
}

func (geminiAdapter) Parse(mode types.Mode, stdout, stderr []byte, exitCode int) ([]types.Finding, string, string) {
	if mode == types.ModeRun {
		payload, diag := parseRunOutput(stdout)
		return nil, payload, diag
	}
	fs, diag := parseReviewOutput(stdout)
	return fs, "", diag
}
