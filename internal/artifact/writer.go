package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mco-dev/mco/internal/dispatcher"
	"github.com/mco-dev/mco/internal/types"
)

// findingsDocument is the on-disk shape of findings.json.
type findingsDocument struct {
	Findings []types.Finding `json:"findings"`
}

// Writer assembles the files named in the spec's artifact layout and
// writes them through a Sink, one atomic write per file.
type Writer struct {
	sink Sink
}

// NewWriter creates a Writer over the given Sink.
func NewWriter(sink Sink) *Writer {
	return &Writer{sink: sink}
}

// Write emits summary.md, decision.md, findings.json (review mode only),
// run.json, providers/<id>.json, and raw/<id>.stdout/.stderr under
// <task_id>/, per §6.
func (w *Writer) Write(ctx context.Context, taskID string, dr dispatcher.DispatchResult) error {
	rr := dr.RunResult

	runJSON, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run.json: %w", err)
	}
	if err := w.sink.Write(ctx, join(taskID, "run.json"), runJSON); err != nil {
		return err
	}

	if err := w.sink.Write(ctx, join(taskID, "decision.md"), []byte(string(rr.Decision)+"\n")); err != nil {
		return err
	}

	if rr.Mode == types.ModeReview {
		doc := findingsDocument{Findings: rr.Findings}
		if doc.Findings == nil {
			doc.Findings = []types.Finding{}
		}
		fJSON, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal findings.json: %w", err)
		}
		if err := w.sink.Write(ctx, join(taskID, "findings.json"), fJSON); err != nil {
			return err
		}
	}

	if err := w.sink.Write(ctx, join(taskID, "summary.md"), []byte(w.summaryMarkdown(rr))); err != nil {
		return err
	}

	for id, pr := range rr.ProviderResults {
		prJSON, err := json.MarshalIndent(pr, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal providers/%s.json: %w", id, err)
		}
		if err := w.sink.Write(ctx, join(taskID, "providers", id+".json"), prJSON); err != nil {
			return err
		}
	}

	for id, raw := range dr.Raw {
		if raw.Stdout != nil {
			if err := w.sink.Write(ctx, join(taskID, "raw", id+".stdout"), raw.Stdout); err != nil {
				return err
			}
		}
		if raw.Stderr != nil {
			if err := w.sink.Write(ctx, join(taskID, "raw", id+".stderr"), raw.Stderr); err != nil {
				return err
			}
		}
	}

	return nil
}

// summaryMarkdown renders a human-readable overview listing each
// provider with its run state and error kind, per §7's user-visible
// failure behavior.
func (w *Writer) summaryMarkdown(rr types.RunResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Run %s\n\n", rr.TaskID)
	fmt.Fprintf(&b, "Mode: %s\n", rr.Mode)
	fmt.Fprintf(&b, "Decision: %s\n", rr.Decision)
	fmt.Fprintf(&b, "Duration: %ds\n\n", rr.DurationSeconds())

	b.WriteString("## Providers\n\n")
	ids := make([]string, 0, len(rr.ProviderResults))
	for id := range rr.ProviderResults {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		pr := rr.ProviderResults[id]
		kind := "-"
		if pr.ErrorKind != nil {
			kind = string(*pr.ErrorKind)
		}
		fmt.Fprintf(&b, "- **%s**: %s (error_kind: %s, findings: %d)\n", id, pr.RunState, kind, len(pr.Findings))
	}

	if rr.Mode == types.ModeReview {
		fmt.Fprintf(&b, "\n## Findings (%d)\n\n", len(rr.Findings))
		for _, f := range rr.Findings {
			fmt.Fprintf(&b, "- [%s] %s (%s)\n", f.Severity, f.Title, f.ProviderID)
		}
	}

	return b.String()
}

func join(parts ...string) string {
	return strings.Join(parts, "/")
}
