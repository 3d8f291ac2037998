package artifact

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mco-dev/mco/internal/dispatcher"
	"github.com/mco-dev/mco/internal/types"
)

func sampleDispatchResult() dispatcher.DispatchResult {
	now := time.Unix(1700000000, 0).UTC()
	exitCode := 0
	rr := types.RunResult{
		TaskID:    "task-1",
		Mode:      types.ModeReview,
		StartedAt: now,
		EndedAt:   now.Add(5 * time.Second),
		Decision:  types.DecisionEscalate,
		ProviderResults: map[string]types.ProviderResult{
			"claude": {
				ProviderID: "claude",
				RunState:   types.StateExitedOK,
				StartedAt:  now,
				EndedAt:    now.Add(5 * time.Second),
				ExitCode:   &exitCode,
				Findings: []types.Finding{
					{Severity: types.SeverityHigh, Title: "missing auth check", ProviderID: "claude"},
				},
			},
		},
		Findings: []types.Finding{
			{Severity: types.SeverityHigh, Title: "missing auth check", ProviderID: "claude"},
		},
	}
	return dispatcher.DispatchResult{
		RunResult: rr,
		Raw: map[string]dispatcher.RawOutput{
			"claude": {Stdout: []byte("stdout content"), Stderr: []byte("stderr content")},
		},
	}
}

func TestWriterEmitsFullArtifactTree(t *testing.T) {
	dir := t.TempDir()
	sink := NewFSSink(dir)
	w := NewWriter(sink)

	dr := sampleDispatchResult()
	if err := w.Write(context.Background(), "task-1", dr); err != nil {
		t.Fatalf("Write: %v", err)
	}

	for _, rel := range []string{
		"task-1/run.json",
		"task-1/decision.md",
		"task-1/findings.json",
		"task-1/summary.md",
		"task-1/providers/claude.json",
		"task-1/raw/claude.stdout",
		"task-1/raw/claude.stderr",
	} {
		path := filepath.Join(dir, rel)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected artifact %s to exist: %v", rel, err)
		}
	}

	decision, err := os.ReadFile(filepath.Join(dir, "task-1", "decision.md"))
	if err != nil {
		t.Fatalf("ReadFile decision.md: %v", err)
	}
	if string(decision) != "ESCALATE\n" {
		t.Errorf("decision.md = %q, want %q", decision, "ESCALATE\n")
	}

	var rr types.RunResult
	runJSON, err := os.ReadFile(filepath.Join(dir, "task-1", "run.json"))
	if err != nil {
		t.Fatalf("ReadFile run.json: %v", err)
	}
	if err := json.Unmarshal(runJSON, &rr); err != nil {
		t.Fatalf("unmarshal run.json: %v", err)
	}
	if rr.Decision != types.DecisionEscalate {
		t.Errorf("run.json Decision = %q, want ESCALATE", rr.Decision)
	}
}

func TestWriterSkipsFindingsJSONInRunMode(t *testing.T) {
	dir := t.TempDir()
	sink := NewFSSink(dir)
	w := NewWriter(sink)

	dr := sampleDispatchResult()
	dr.RunResult.Mode = types.ModeRun

	if err := w.Write(context.Background(), "task-2", dr); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "task-2", "findings.json")); !os.IsNotExist(err) {
		t.Errorf("expected findings.json to be absent in run mode, stat err = %v", err)
	}
}

func TestFSSinkWriteIsAtomicNoLeftoverTemp(t *testing.T) {
	dir := t.TempDir()
	sink := NewFSSink(dir)

	if err := sink.Write(context.Background(), "a/b.json", []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "a"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "b.json" {
		t.Errorf("entries = %v, want exactly [b.json]", entries)
	}
}
