package adapter

import (
	"strings"
	"testing"

	"github.com/mco-dev/mco/internal/types"
)

func TestRegistryHasAllFiveProviders(t *testing.T) {
	r := NewRegistry()
	want := []string{"claude", "codex", "gemini", "opencode", "qwen"}
	for _, id := range want {
		if _, ok := r.Lookup(id); !ok {
			t.Errorf("registry missing adapter for %q", id)
		}
	}
	if _, ok := r.Lookup("not-a-real-provider"); ok {
		t.Error("registry should not resolve unknown provider_ids")
	}
}

func TestBuildInvocationStrictRejectsUnsupportedPermission(t *testing.T) {
	task := types.Task{
		Prompt:   "review this repo",
		RepoPath: "/tmp/repo",
		Policy: types.Policy{
			EnforcementMode: types.EnforcementStrict,
			ProviderPermissions: map[string]map[string]any{
				"claude": {"not_a_real_option": true},
			},
		},
		PathConstraints: types.PathConstraints{EnforcementMode: types.EnforcementStrict},
	}

	_, err := NewClaude().BuildInvocation(task, types.ProviderSpec{ID: "claude"})
	if err != ErrPermissionUnmet {
		t.Fatalf("err = %v, want ErrPermissionUnmet", err)
	}
}

func TestBuildInvocationLenientAllowsUnsupportedPermission(t *testing.T) {
	task := types.Task{
		Prompt:   "review this repo",
		RepoPath: "/tmp/repo",
		Policy: types.Policy{
			ProviderPermissions: map[string]map[string]any{
				"claude": {"not_a_real_option": true},
			},
		},
		PathConstraints: types.PathConstraints{EnforcementMode: types.EnforcementLenient},
	}

	inv, err := NewClaude().BuildInvocation(task, types.ProviderSpec{ID: "claude"})
	if err != nil {
		t.Fatalf("BuildInvocation: %v", err)
	}
	if len(inv.Argv) == 0 || inv.Argv[0] != "claude" {
		t.Errorf("Argv = %v, want to start with claude", inv.Argv)
	}
}

func TestBuildInvocationEncodesPromptAndRepo(t *testing.T) {
	task := types.Task{
		Prompt:          "find bugs",
		RepoPath:        "/repo",
		PathConstraints: types.PathConstraints{AllowPaths: []string{"/repo/src"}},
	}
	inv, err := NewGemini().BuildInvocation(task, types.ProviderSpec{ID: "gemini"})
	if err != nil {
		t.Fatalf("BuildInvocation: %v", err)
	}
	if inv.Dir != "/repo" {
		t.Errorf("Dir = %q, want /repo", inv.Dir)
	}
	found := false
	for _, a := range inv.Argv {
		if a == "find bugs" {
			found = true
		}
	}
	if !found {
		t.Errorf("Argv = %v, expected prompt to appear", inv.Argv)
	}
	joined := strings.Join(inv.Argv, " ")
	if !strings.Contains(joined, "--include-directories") || !strings.Contains(joined, "/repo/src") {
		t.Errorf("Argv = %v, want --include-directories /repo/src", inv.Argv)
	}
}

func TestBuildInvocationAllowPathsReachesEachAdapter(t *testing.T) {
	task := types.Task{
		Prompt:          "find bugs",
		RepoPath:        "/repo",
		PathConstraints: types.PathConstraints{AllowPaths: []string{"/repo/src"}},
	}

	cases := []struct {
		name    string
		adapter Adapter
	}{
		{"claude", NewClaude()},
		{"codex", NewCodex()},
		{"gemini", NewGemini()},
		{"opencode", NewOpenCode()},
		{"qwen", NewQwen()},
	}
	for _, tc := range cases {
		inv, err := tc.adapter.BuildInvocation(task, types.ProviderSpec{ID: tc.name})
		if err != nil {
			t.Fatalf("%s: BuildInvocation: %v", tc.name, err)
		}
		if !strings.Contains(strings.Join(inv.Argv, " "), "/repo/src") {
			t.Errorf("%s: Argv = %v, want /repo/src to reach argv somehow", tc.name, inv.Argv)
		}
	}
}

func TestBuildInvocationIncludesTargetPathsHint(t *testing.T) {
	task := types.Task{
		Prompt:          "review this repo",
		RepoPath:        "/repo",
		PathConstraints: types.PathConstraints{TargetPaths: []string{"internal/auth", "cmd/server"}},
	}
	inv, err := NewQwen().BuildInvocation(task, types.ProviderSpec{ID: "qwen"})
	if err != nil {
		t.Fatalf("BuildInvocation: %v", err)
	}
	joined := strings.Join(inv.Argv, " ")
	if !strings.Contains(joined, "internal/auth") || !strings.Contains(joined, "cmd/server") {
		t.Errorf("Argv = %v, want target paths mentioned", inv.Argv)
	}
}

func TestBuildInvocationEnvOverridePassesThrough(t *testing.T) {
	task := types.Task{
		Prompt:   "review this repo",
		RepoPath: "/repo",
		Policy: types.Policy{
			ProviderPermissions: map[string]map[string]any{
				"codex": {"env": map[string]interface{}{"OPENAI_API_KEY": "test-key"}},
			},
		},
	}
	inv, err := NewCodex().BuildInvocation(task, types.ProviderSpec{ID: "codex"})
	if err != nil {
		t.Fatalf("BuildInvocation: %v", err)
	}
	found := false
	for _, kv := range inv.Env {
		if kv == "OPENAI_API_KEY=test-key" {
			found = true
		}
	}
	if !found {
		t.Errorf("Env = %v, expected OPENAI_API_KEY=test-key override", inv.Env)
	}
}

func TestBuildInvocationNoEnvOverrideUsesCallerEnv(t *testing.T) {
	task := types.Task{Prompt: "review this repo", RepoPath: "/repo"}
	inv, err := NewQwen().BuildInvocation(task, types.ProviderSpec{ID: "qwen"})
	if err != nil {
		t.Fatalf("BuildInvocation: %v", err)
	}
	if len(inv.Env) == 0 {
		t.Error("Env should default to the caller's own environment")
	}
}
