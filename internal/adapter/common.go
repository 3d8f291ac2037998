package adapter

import (
	"os"
	"strings"

	"github.com/mco-dev/mco/internal/findings"
	"github.com/mco-dev/mco/internal/types"
)

// checkPermissions validates that every key in requested is present in
// supported. Under strict enforcement an unsupported key is
// ErrPermissionUnmet; under lenient it is silently dropped by the caller
// (BuildInvocation simply won't translate it into an argv flag).
func checkPermissions(mode types.EnforcementMode, supported map[string]bool, requested map[string]any) error {
	if mode != types.EnforcementStrict {
		return nil
	}
	for k := range requested {
		if !supported[k] {
			return ErrPermissionUnmet
		}
	}
	return nil
}

// parseReviewOutput is the shared Parse path for review mode, used by
// every adapter: recover findings from stdout, and treat a non-zero exit
// with zero recovered findings as exit_nonzero-worthy (the caller
// classifies error_kind; this just reports the diagnostic).
func parseReviewOutput(stdout []byte) (fs []types.Finding, diagnostic string) {
	return findings.Recover(stdout)
}

// parseRunOutput is the shared Parse path for run mode.
func parseRunOutput(stdout []byte) (payload string, diagnostic string) {
	p, err := findings.ExtractPayload(stdout)
	if err != nil {
		return "", err.Error()
	}
	return p, ""
}

// scopedPrompt appends focus/allow-path hints to the task prompt for
// adapters whose CLI has no native flag for them. target_paths has no
// native flag in any of the five provider CLIs. allow_paths does on
// claude (--add-dir) and on gemini and qwen (--include-directories), so
// callers that already emit a structural flag
// for it should pass includeAllowPaths=false to avoid saying the same
// thing twice.
func scopedPrompt(task types.Task, includeAllowPaths bool) string {
	var b strings.Builder
	b.WriteString(task.Prompt)

	if includeAllowPaths && len(task.PathConstraints.AllowPaths) > 0 {
		b.WriteString("\n\nYou may read or write these paths: ")
		b.WriteString(strings.Join(task.PathConstraints.AllowPaths, ", "))
	}
	if len(task.PathConstraints.TargetPaths) > 0 {
		b.WriteString("\n\nFocus specifically on these paths: ")
		b.WriteString(strings.Join(task.PathConstraints.TargetPaths, ", "))
	}
	return b.String()
}

func callerEnv() []string {
	return os.Environ()
}

// envWithOverrides builds the child process environment: the caller's
// own environment, plus any per-provider overrides set via the "env"
// permission key (e.g. to inject a provider-specific API key without
// mutating the orchestrator's own environment).
func envWithOverrides(perms map[string]any) []string {
	raw, _ := perms["env"].(map[string]interface{})
	if len(raw) == 0 {
		return callerEnv()
	}
	overrides := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			overrides[k] = s
		}
	}
	if len(overrides) == 0 {
		return callerEnv()
	}
	return buildEnv(callerEnv(), overrides)
}
