package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FSSink writes artifacts under a local directory, atomically: each
// Write goes to a temp file in the same directory as the destination,
// then os.Rename into place, so a concurrent reader never observes a
// partially written file.
type FSSink struct {
	baseDir string
}

// NewFSSink creates a filesystem sink rooted at baseDir.
func NewFSSink(baseDir string) *FSSink {
	return &FSSink{baseDir: baseDir}
}

// Write implements Sink.
func (s *FSSink) Write(ctx context.Context, relPath string, data []byte) error {
	dest := filepath.Join(s.baseDir, relPath)
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmpName, dest, err)
	}
	return nil
}

// EnsureProviderDir creates the task's shared <task_id>/providers
// directory under the base directory. providerID is not used in the
// path.
func (s *FSSink) EnsureProviderDir(taskID, providerID string) error {
	dir := filepath.Join(s.baseDir, taskID, "providers")
	return os.MkdirAll(dir, 0o755)
}
