// Package artifact writes the per-task artifact tree described in the
// spec's external interfaces section: summary.md, decision.md,
// findings.json, run.json, providers/<id>.json, and raw/<id>.stdout/.stderr.
//
// Grounded on the teacher's lode.Sink boundary (lode/sink.go) for the
// Sink interface shape, and on lode/client_s3.go for the S3
// configuration surface (bucket/prefix/region/endpoint/path-style),
// generalized from Lode's Hive-partitioned event/chunk writes to plain
// keyed object writes of a fixed artifact tree.
package artifact

import "context"

// Sink persists one named artifact's bytes. Implementations must make
// each Write atomic with respect to concurrent readers: no reader may
// ever observe a partially written object.
type Sink interface {
	// Write persists data under relPath, relative to the sink's own
	// artifact-base root (e.g. "<task_id>/run.json").
	Write(ctx context.Context, relPath string, data []byte) error
}
