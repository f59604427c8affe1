//go:build unix

// Package osutil holds platform specific process helpers.
package osutil

import (
	"os/exec"
	"syscall"
)

// SetProcessGroup runs the command in its own process group so that the
// whole tree can be killed on timeout.
func SetProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// SetProcessGroupKill makes context cancellation kill the entire process
// group. Must be called after SetProcessGroup and before cmd.Start().
func SetProcessGroupKill(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
