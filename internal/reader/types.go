package reader

import "time"

// ProviderSummary is one provider's entry in InspectTaskResponse.
type ProviderSummary struct {
	ProviderID   string  `json:"provider_id"`
	RunState     string  `json:"run_state"`
	ExitCode     *int    `json:"exit_code"`
	FindingCount int     `json:"finding_count"`
	ErrorKind    *string `json:"error_kind,omitempty"`
}

// InspectTaskResponse is the shape returned by `mco inspect`.
type InspectTaskResponse struct {
	TaskID          string            `json:"task_id"`
	Mode            string            `json:"mode"`
	Decision        string            `json:"decision"`
	StartedAt       time.Time         `json:"started_at"`
	EndedAt         time.Time         `json:"ended_at"`
	DurationSeconds int64             `json:"duration_seconds"`
	Providers       []ProviderSummary `json:"providers"`
	FindingCount    int               `json:"finding_count"`
}

// ListTaskItem is one row returned by `mco list`.
type ListTaskItem struct {
	TaskID   string    `json:"task_id"`
	Mode     string    `json:"mode"`
	Decision string    `json:"decision"`
	EndedAt  time.Time `json:"ended_at"`
}

// ListTasksOptions filters/limits ListTasks results.
type ListTasksOptions struct {
	// Limit caps the number of returned items. Zero means no limit.
	Limit int
}
