// Package adapter defines the uniform per-provider contract: probe for
// the CLI binary, build its argument vector from a task, and parse its
// captured output into normalized findings or a free-text payload.
//
// Adapters are a closed set keyed by provider_id (claude, codex, gemini,
// opencode, qwen) rather than an open-ended plugin registry, per the
// orchestration engine's scope. Grounded on the teacher's adapter.Adapter
// boundary (adapter/adapter.go) — generalized from a single Publish/Close
// event-bus contract to detect/build_invocation/parse, and on
// runtime.ValidateScript's pattern of a short-budget subprocess probe
// (runtime/executor.go) for Detect.
package adapter

import (
	"context"
	"errors"
	"os/exec"
	"sort"
	"time"

	"github.com/mco-dev/mco/internal/runner"
	"github.com/mco-dev/mco/internal/types"
)

// DetectTimeout bounds the version-probe subprocess per the adapter
// contract's "must not block on network" rule.
const DetectTimeout = 5 * time.Second

// ErrPermissionUnmet is returned by BuildInvocation when enforcement_mode
// is strict and a requested permission option cannot be expressed in the
// provider's own invocation surface.
var ErrPermissionUnmet = errors.New("adapter: permission option unmet under strict enforcement")

// Adapter is the uniform per-provider contract. Implementations are pure
// with respect to the Task: no per-run state is held between calls.
type Adapter interface {
	// ID returns the provider_id this adapter serves.
	ID() string

	// Detect probes for the CLI binary on PATH and, if found, runs a
	// fast version-like subcommand to establish AuthOK. Side-effect-free
	// beyond that probe.
	Detect(ctx context.Context) types.ProviderSpec

	// BuildInvocation encodes prompt, repo_path, path constraints, and
	// provider-specific permission options into a runner.Invocation. If
	// task.Policy.ProviderPermissions holds options for this provider
	// that it cannot honor and task.PathConstraints.EnforcementMode is
	// strict, it returns ErrPermissionUnmet.
	BuildInvocation(task types.Task, spec types.ProviderSpec) (runner.Invocation, error)

	// Parse recovers findings (review mode) or a free-text payload (run
	// mode) from the captured buffers and exit status. Unparseable
	// output is not an error: it yields zero findings/empty payload and
	// a non-empty diagnostic.
	Parse(mode types.Mode, stdout, stderr []byte, exitCode int) (findings []types.Finding, payload string, diagnostic string)
}

// Registry is the closed set of adapters keyed by provider_id.
type Registry struct {
	byID map[string]Adapter
}

// NewRegistry builds the registry with one adapter per supported
// provider.
func NewRegistry() *Registry {
	all := []Adapter{
		NewClaude(),
		NewCodex(),
		NewGemini(),
		NewOpenCode(),
		NewQwen(),
	}
	byID := make(map[string]Adapter, len(all))
	for _, a := range all {
		byID[a.ID()] = a
	}
	return &Registry{byID: byID}
}

// NewRegistryFrom builds a registry from an explicit adapter set. Used by
// tests that need to substitute fakes for real provider CLIs.
func NewRegistryFrom(adapters ...Adapter) *Registry {
	byID := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		byID[a.ID()] = a
	}
	return &Registry{byID: byID}
}

// Lookup returns the adapter for providerID, or false if providerID is
// not one of the closed set of supported providers.
func (r *Registry) Lookup(providerID string) (Adapter, bool) {
	a, ok := r.byID[providerID]
	return a, ok
}

// IDs returns the supported provider_ids, sorted alphabetically (not
// the task's provider order).
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// probeBinary looks up binaryName on PATH, and if found, runs it with
// versionArgs under DetectTimeout to establish AuthOK. A clean exit (0)
// is treated as an authenticated, working install; a non-zero exit still
// counts as Detected but not AuthOK, surfaced via Diagnostic.
func probeBinary(ctx context.Context, providerID, binaryName string, versionArgs ...string) types.ProviderSpec {
	path, err := exec.LookPath(binaryName)
	if err != nil {
		return types.ProviderSpec{
			ID:         providerID,
			BinaryName: binaryName,
			Detected:   false,
			Diagnostic: "binary not found on PATH: " + err.Error(),
		}
	}

	probeCtx, cancel := context.WithTimeout(ctx, DetectTimeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, path, versionArgs...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return types.ProviderSpec{
			ID:         providerID,
			BinaryName: binaryName,
			Detected:   true,
			AuthOK:     false,
			Diagnostic: "version probe failed: " + firstLine(out, err),
		}
	}

	return types.ProviderSpec{
		ID:         providerID,
		BinaryName: binaryName,
		Detected:   true,
		AuthOK:     true,
		Diagnostic: firstLine(out, nil),
	}
}

func firstLine(out []byte, err error) string {
	line := ""
	for _, b := range out {
		if b == '\n' {
			break
		}
		line += string(b)
	}
	if line == "" && err != nil {
		return err.Error()
	}
	return line
}

// buildEnv starts from the caller's own environment and appends
// overrides, later entries winning per os/exec's own last-wins lookup
// semantics. Per the spec, the caller's environment is passed through to
// child adapters unchanged except for variables an adapter explicitly
// overrides.
func buildEnv(base []string, overrides map[string]string) []string {
	env := make([]string, len(base), len(base)+len(overrides))
	copy(env, base)
	for k, v := range overrides {
		env = append(env, k+"="+v)
	}
	return env
}
