//go:build unix

package dispatch

import (
	"errors"
	"os/exec"
	"syscall"
)

// exitCode converts a Wait error into a shell-style exit code: the process
// exit status, or 128 plus the signal number for a killed process.
func exitCode(err error) int {
	if err == nil || errors.Is(err, exec.ErrWaitDelay) {
		return 0
	}
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return 1
	}
	if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return exitCodeSignalBase + int(ws.Signal())
	}
	return ee.ExitCode()
}

func isSignaled(err error) bool {
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return false
	}
	ws, ok := ee.Sys().(syscall.WaitStatus)
	return ok && ws.Signaled()
}
