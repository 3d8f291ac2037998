//go:build !windows

package runner

import (
	"bytes"
	"io"
	"syscall"
)

// newProcessGroupAttr returns SysProcAttr that puts the child in its
// own process group, so Cancel can signal the whole subtree (a provider
// CLI that itself forks children, e.g. a language server) rather than
// just the immediate child.
func newProcessGroupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// terminateProcessGroup sends SIGTERM to the process group rooted at
// pid. Falls back to signaling the pid directly if the group lookup
// fails (process already gone, or Setpgid didn't take).
func terminateProcessGroup(pid int) {
	if pgid, err := syscall.Getpgid(pid); err == nil {
		_ = syscall.Kill(-pgid, syscall.SIGTERM)
		return
	}
	_ = syscall.Kill(pid, syscall.SIGTERM)
}

// killProcessGroup sends SIGKILL to the process group rooted at pid.
func killProcessGroup(pid int) {
	if pgid, err := syscall.Getpgid(pid); err == nil {
		_ = syscall.Kill(-pgid, syscall.SIGKILL)
		return
	}
	_ = syscall.Kill(pid, syscall.SIGKILL)
}

func newBytesReader(p []byte) io.Reader {
	return bytes.NewReader(p)
}
