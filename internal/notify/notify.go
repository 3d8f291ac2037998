// Package notify publishes a run-completed event to a downstream system
// once the Aggregator has produced a RunResult. Grounded on the
// teacher's adapter.Adapter event-bus boundary (adapter/adapter.go),
// generalized from Quarry's scrape-run completion payload to MCO's
// RunResult summary, with the webhook and Redis transports ported from
// adapter/webhook and adapter/redis.
package notify

import (
	"context"
	"time"

	"github.com/mco-dev/mco/internal/types"
)

// RunCompletedEvent is the payload published when a dispatch finishes.
type RunCompletedEvent struct {
	TaskID          string    `json:"task_id"`
	Mode            string    `json:"mode"`
	Decision        string    `json:"decision"`
	ProviderCount   int       `json:"provider_count"`
	FindingCount    int       `json:"finding_count"`
	DurationSeconds int64     `json:"duration_seconds"`
	ArtifactPath    string    `json:"artifact_path,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// EventFromRunResult builds a RunCompletedEvent from a finished run.
func EventFromRunResult(rr types.RunResult, artifactPath string) RunCompletedEvent {
	return RunCompletedEvent{
		TaskID:          rr.TaskID,
		Mode:            string(rr.Mode),
		Decision:        string(rr.Decision),
		ProviderCount:   len(rr.ProviderResults),
		FindingCount:    len(rr.Findings),
		DurationSeconds: rr.DurationSeconds(),
		ArtifactPath:    artifactPath,
		Timestamp:       rr.EndedAt,
	}
}

// Notifier publishes a run-completed event to a downstream system.
// Implementations must be safe for single-use per run.
type Notifier interface {
	// Notify sends a run completion event. Must respect context
	// cancellation and deadlines.
	Notify(ctx context.Context, event RunCompletedEvent) error

	// Close releases notifier resources.
	Close() error
}
