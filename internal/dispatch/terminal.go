package dispatch

import (
	"io"
	"os"

	"golang.org/x/term"
)

// isTerminal reports whether r is an interactive terminal. Pipelines reading
// a terminal stay in the dispatcher's foreground process group so that they
// can read from it and receive the terminal's signals.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
