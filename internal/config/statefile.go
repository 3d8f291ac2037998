package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/mco-dev/mco/internal/types"
)

// StateMarker is the best-effort last-run marker written to
// Config.StateFile after every dispatch. It is a convenience for
// scripts polling "did the last run pass", not a source of truth: the
// artifact tree is authoritative, and a failure to write this file
// never affects the command's exit code.
type StateMarker struct {
	TaskID   string        `json:"task_id"`
	Mode     types.Mode    `json:"mode"`
	Decision types.Decision `json:"decision"`
	EndedAt  time.Time     `json:"ended_at"`
}

// WriteStateFile writes marker to path atomically, following the same
// temp-file-then-rename discipline as artifact.FSSink.Write. Errors are
// returned for callers that want to log them, but are never fatal: the
// marker is advisory.
func WriteStateFile(path string, marker StateMarker) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
