// Package reader provides read-only access to the artifact tree for the
// mco inspect/list commands. MCO has a single backing store — the
// artifact tree itself — so, unlike the teacher's cli/reader, there is
// no stub/real split: FSReader is the only implementation.
package reader

// Reader abstracts read-only access to completed task artifacts.
// Implementations must not mutate the artifact tree.
type Reader interface {
	// InspectTask loads a single task's run.json and per-provider
	// summaries. Returns an error if the task directory or run.json
	// is missing or unreadable.
	InspectTask(taskID string) (*InspectTaskResponse, error)

	// ListTasks lists known task_ids under the artifact base, newest
	// first.
	ListTasks(opts ListTasksOptions) ([]ListTaskItem, error)
}
