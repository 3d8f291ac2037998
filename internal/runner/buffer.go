package runner

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// DefaultBufferCap is the default in-memory cap per stream before
// further bytes are dropped from the in-memory copy. The byte counter
// keeps counting regardless; it is the Watchdog's source of truth, not
// the buffer's retained content.
const DefaultBufferCap = 4 * 1024 * 1024

// OutputBuffer is a bounded byte buffer for one subprocess stream
// (stdout or stderr). It tracks a monotonically increasing total-bytes
// counter independent of how much content it actually retains, per the
// data model: "the counter is the source of truth for progress."
//
// Safe for one writer goroutine and any number of concurrent readers of
// Bytes/Content.
type OutputBuffer struct {
	cap     int
	total   atomic.Int64
	mu      sync.Mutex
	buf     bytes.Buffer
	dropped bool
}

// NewOutputBuffer creates an OutputBuffer retaining at most capBytes of
// content in memory. capBytes <= 0 uses DefaultBufferCap.
func NewOutputBuffer(capBytes int) *OutputBuffer {
	if capBytes <= 0 {
		capBytes = DefaultBufferCap
	}
	return &OutputBuffer{cap: capBytes}
}

// Write implements io.Writer. Every call advances the total-bytes
// counter by len(p) regardless of whether the content is retained.
func (b *OutputBuffer) Write(p []byte) (int, error) {
	n := len(p)
	b.total.Add(int64(n))

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buf.Len() >= b.cap {
		if !b.dropped {
			b.buf.WriteString("\n...[output truncated]...\n")
			b.dropped = true
		}
		return n, nil
	}
	remaining := b.cap - b.buf.Len()
	if remaining < len(p) {
		b.buf.Write(p[:remaining])
		b.buf.WriteString("\n...[output truncated]...\n")
		b.dropped = true
		return n, nil
	}
	b.buf.Write(p)
	return n, nil
}

// Bytes returns the total bytes written so far. Non-blocking: reads an
// atomic counter, never touches the content mutex. This is the call the
// Watchdog polls.
func (b *OutputBuffer) Bytes() int64 {
	return b.total.Load()
}

// Content returns a copy of the retained (possibly truncated) buffer
// content. Safe to call after the writer goroutine has stopped.
func (b *OutputBuffer) Content() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, b.buf.Len())
	copy(out, b.buf.Bytes())
	return out
}

// Spill writes the retained content to dir/name via write-temp-then-rename,
// so a concurrent reader never observes a partially written file. Returns
// the final path.
func (b *OutputBuffer) Spill(dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create raw dir %s: %w", dir, err)
	}
	final := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp for %s: %w", final, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b.Content()); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write temp for %s: %w", final, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp for %s: %w", final, err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return "", fmt.Errorf("rename into place %s: %w", final, err)
	}
	return final, nil
}
