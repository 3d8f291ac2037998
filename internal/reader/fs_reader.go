package reader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mco-dev/mco/internal/aggregate"
	"github.com/mco-dev/mco/internal/types"
)

// FSReader reads completed task artifacts from a local directory tree
// laid out by internal/artifact.FSSink.
type FSReader struct {
	baseDir string
}

// NewFSReader creates an FSReader rooted at baseDir.
func NewFSReader(baseDir string) *FSReader {
	return &FSReader{baseDir: baseDir}
}

// InspectTask implements Reader.
func (r *FSReader) InspectTask(taskID string) (*InspectTaskResponse, error) {
	runPath := filepath.Join(r.baseDir, taskID, "run.json")
	data, err := os.ReadFile(runPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", runPath, err)
	}

	var rr types.RunResult
	if err := json.Unmarshal(data, &rr); err != nil {
		return nil, fmt.Errorf("decode %s: %w", runPath, err)
	}

	resp := &InspectTaskResponse{
		TaskID:          rr.TaskID,
		Mode:            string(rr.Mode),
		Decision:        string(rr.Decision),
		StartedAt:       rr.StartedAt,
		EndedAt:         rr.EndedAt,
		DurationSeconds: rr.DurationSeconds(),
		FindingCount:    len(rr.Findings),
	}

	for _, id := range aggregate.SortedProviderIDs(rr.ProviderResults) {
		pr := rr.ProviderResults[id]
		summary := ProviderSummary{
			ProviderID:   pr.ProviderID,
			RunState:     string(pr.RunState),
			ExitCode:     pr.ExitCode,
			FindingCount: len(pr.Findings),
		}
		if pr.ErrorKind != nil {
			kind := string(*pr.ErrorKind)
			summary.ErrorKind = &kind
		}
		resp.Providers = append(resp.Providers, summary)
	}

	return resp, nil
}

// ListTasks implements Reader.
func (r *FSReader) ListTasks(opts ListTasksOptions) ([]ListTaskItem, error) {
	entries, err := os.ReadDir(r.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read artifact base %s: %w", r.baseDir, err)
	}

	var taskIDs []string
	for _, e := range entries {
		if e.IsDir() {
			taskIDs = append(taskIDs, e.Name())
		}
	}
	// task_id is a sortable identifier (timestamp prefix); descending
	// string sort gives newest-first without a separate index.
	sort.Sort(sort.Reverse(sort.StringSlice(taskIDs)))

	items := make([]ListTaskItem, 0, len(taskIDs))
	for _, id := range taskIDs {
		resp, err := r.InspectTask(id)
		if err != nil {
			continue
		}
		items = append(items, ListTaskItem{
			TaskID:   resp.TaskID,
			Mode:     resp.Mode,
			Decision: resp.Decision,
			EndedAt:  resp.EndedAt,
		})
		if opts.Limit > 0 && len(items) >= opts.Limit {
			break
		}
	}

	return items, nil
}

var _ Reader = (*FSReader)(nil)
