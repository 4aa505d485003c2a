package dispatch

import (
	"context"
	"errors"
	"fmt"
)

// Exit codes used when a stage has no exit status of its own.
const (
	ExitCodeTimeout       = 124 // same convention as timeout(1)
	ExitCodeNotExecutable = 126
	ExitCodeNotFound      = 127
	exitCodeSignalBase    = 128
)

// ErrPipelineFailed is matched by every *PipelineExecutionError.
var ErrPipelineFailed = errors.New("pipeline failed")

// PipelineExecutionError reports a pipeline that finished with a non-zero
// exit code. Stage and Program identify the stage the code came from.
type PipelineExecutionError struct {
	Entry   string
	RunID   string
	Stage   int
	Program string
	Code    int
	Err     error
}

func (e *PipelineExecutionError) Error() string {
	msg := fmt.Sprintf("%s: stage %d (%s) exited with code %d", e.Entry, e.Stage, e.Program, e.Code)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying stage or context error.
func (e *PipelineExecutionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrPipelineFailed.
func (e *PipelineExecutionError) Is(target error) bool {
	return target == ErrPipelineFailed
}

// ExitCode returns the exit code the dispatcher's own process should use.
func (e *PipelineExecutionError) ExitCode() int {
	return e.Code
}

// Interrupted reports whether the pipeline was killed by a timeout or
// cancellation rather than exiting on its own.
func (e *PipelineExecutionError) Interrupted() bool {
	return errors.Is(e.Err, context.DeadlineExceeded) || errors.Is(e.Err, context.Canceled)
}
