//go:build unix

package dispatch

import (
	"errors"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// processGroup places every stage of one pipeline in a shared process group
// led by the first stage that starts, and kills the group on cancellation.
type processGroup struct {
	enabled bool
	mu      sync.Mutex
	pgid    int
}

func newProcessGroup(enabled bool) *processGroup {
	return &processGroup{enabled: enabled}
}

// prepare must be called before cmd.Start.
func (g *processGroup) prepare(cmd *exec.Cmd) {
	if !g.enabled {
		return
	}
	g.mu.Lock()
	pgid := g.pgid
	g.mu.Unlock()

	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: pgid}
	cmd.Cancel = func() error {
		if err := g.kill(); err == nil {
			return nil
		}
		return cmd.Process.Kill()
	}
}

// add records pid as the group leader if no stage has started yet.
func (g *processGroup) add(pid int) {
	if !g.enabled {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pgid == 0 {
		g.pgid = pid
	}
}

func (g *processGroup) kill() error {
	g.mu.Lock()
	pgid := g.pgid
	g.mu.Unlock()
	if pgid <= 0 {
		return errors.New("no process group")
	}
	err := unix.Kill(-pgid, unix.SIGKILL)
	if errors.Is(err, unix.ESRCH) {
		return os.ErrProcessDone
	}
	return err
}
