package clicmd

import (
	"context"
	"flag"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/mco-dev/mco/internal/artifact"
	"github.com/mco-dev/mco/internal/types"
)

func newTestCLIContext(t *testing.T, values map[string]string) *cli.Context {
	t.Helper()
	app := &cli.App{}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	for name, val := range values {
		fs.String(name, val, "")
	}
	return cli.NewContext(app, fs, nil)
}

func TestReadOnlyFlagsIncludesFormatAndNoColor(t *testing.T) {
	flags := ReadOnlyFlags()
	var names []string
	for _, f := range flags {
		names = append(names, f.Names()[0])
	}
	if !contains(names, "format") || !contains(names, "no-color") {
		t.Errorf("ReadOnlyFlags() = %v, want format and no-color", names)
	}
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func TestGenerateTaskIDIsUniqueAndSortable(t *testing.T) {
	a := GenerateTaskID()
	b := GenerateTaskID()
	if a == b {
		t.Errorf("GenerateTaskID produced a duplicate: %q", a)
	}
	if len(a) < len("20060102T150405-") {
		t.Errorf("GenerateTaskID produced a too-short id: %q", a)
	}
}

func TestDecisionExitCode(t *testing.T) {
	tests := []struct {
		decision types.Decision
		want     int
	}{
		{types.DecisionPass, ExitPass},
		{types.DecisionFail, ExitFail},
		{types.DecisionEscalate, ExitEscalate},
		{types.DecisionPartial, ExitPartial},
		{types.Decision("unknown"), ExitInternal},
	}
	for _, tt := range tests {
		if got := decisionExitCode(tt.decision); got != tt.want {
			t.Errorf("decisionExitCode(%q) = %d, want %d", tt.decision, got, tt.want)
		}
	}
}

func TestCsvFlagSplitsAndTrims(t *testing.T) {
	c := newTestCLIContext(t, map[string]string{"providers": "claude, codex ,gemini"})
	got := csvFlag(c, "providers")
	want := []string{"claude", "codex", "gemini"}
	if len(got) != len(want) {
		t.Fatalf("csvFlag = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("csvFlag[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCsvFlagEmptyReturnsNil(t *testing.T) {
	c := newTestCLIContext(t, map[string]string{"providers": ""})
	if got := csvFlag(c, "providers"); got != nil {
		t.Errorf("csvFlag() = %v, want nil", got)
	}
}

func TestResolvePromptRejectsBothFlags(t *testing.T) {
	c := newTestCLIContext(t, map[string]string{"prompt": "hi", "prompt-file": "/tmp/x"})
	if _, err := resolvePrompt(c); err == nil {
		t.Fatal("expected an error when both --prompt and --prompt-file are set")
	}
}

func TestResolvePromptRequiresOne(t *testing.T) {
	c := newTestCLIContext(t, map[string]string{})
	if _, err := resolvePrompt(c); err == nil {
		t.Fatal("expected an error when neither --prompt nor --prompt-file is set")
	}
}

func TestResolvePromptUsesInlineValue(t *testing.T) {
	c := newTestCLIContext(t, map[string]string{"prompt": "review this repo"})
	got, err := resolvePrompt(c)
	if err != nil {
		t.Fatalf("resolvePrompt: %v", err)
	}
	if got != "review this repo" {
		t.Errorf("resolvePrompt = %q", got)
	}
}

func TestResolveSinkDefaultsToFSSink(t *testing.T) {
	sink, err := resolveSink(context.Background(), "reports/review")
	if err != nil {
		t.Fatalf("resolveSink: %v", err)
	}
	if _, ok := sink.(*artifact.FSSink); !ok {
		t.Errorf("resolveSink() = %T, want *artifact.FSSink", sink)
	}
}

func TestResolveSinkParsesS3Prefix(t *testing.T) {
	sink, err := resolveSink(context.Background(), "s3://my-bucket/some/prefix")
	if err != nil {
		t.Fatalf("resolveSink: %v", err)
	}
	if _, ok := sink.(*artifact.S3Sink); !ok {
		t.Errorf("resolveSink() = %T, want *artifact.S3Sink", sink)
	}
}
