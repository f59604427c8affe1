//go:build windows

// Package osutil holds platform specific process helpers.
package osutil

import (
	"os"
	"os/exec"
)

// SetProcessGroup is a no-op on Windows
func SetProcessGroup(_ *exec.Cmd) {}

// SetProcessGroupKill makes context cancellation terminate the process.
// Child processes may survive as Windows has no Unix-style process groups.
func SetProcessGroupKill(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Kill)
	}
}
