package dispatch

// StageStatus represents how a pipeline stage ended.
type StageStatus int

const (
	// StatusPending indicates the stage has not been started.
	StatusPending StageStatus = iota
	// StatusCompleted indicates the stage exited with code 0.
	StatusCompleted
	// StatusFailed indicates the stage exited non-zero.
	StatusFailed
	// StatusNotStarted indicates the stage process could not be spawned.
	StatusNotStarted
	// StatusCancelled indicates the stage was killed by cancellation or timeout.
	StatusCancelled
)

// String returns a human-readable string representation of the status.
func (s StageStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusNotStarted:
		return "not-started"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if this is a terminal status.
func (s StageStatus) IsTerminal() bool {
	return s != StatusPending
}
