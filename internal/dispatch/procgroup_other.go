//go:build !unix

package dispatch

import "os/exec"

// processGroup is a no-op where process groups are unavailable; cancellation
// falls back to killing each stage process individually.
type processGroup struct{}

func newProcessGroup(bool) *processGroup {
	return &processGroup{}
}

func (g *processGroup) prepare(*exec.Cmd) {}

func (g *processGroup) add(int) {}
