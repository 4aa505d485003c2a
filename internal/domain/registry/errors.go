package registry

import (
	"errors"
	"fmt"
)

// Registry errors
var (
	ErrNotFound         = errors.New("command not found")
	ErrDuplicateName    = errors.New("duplicate command name")
	ErrEmptyName        = errors.New("command name cannot be empty")
	ErrInvalidName      = errors.New("invalid command name")
	ErrEmptyInvocation  = errors.New("command invocation cannot be empty")
	ErrEmptyDescription = errors.New("command description cannot be empty")
	ErrInvalidTag       = errors.New("invalid tag")
	ErrInvalidPipeline  = errors.New("invalid pipeline")
)

// NotFoundError is returned by Lookup for names that were never registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Name)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DuplicateNameError is returned by a strict Builder when a name is registered twice.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("command %q already registered", e.Name)
}

// Is reports whether target is ErrDuplicateName.
func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// SyntaxError describes a malformed invocation. Offset is the byte offset
// into Invocation where parsing stopped.
type SyntaxError struct {
	Invocation string
	Offset     int
	Msg        string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid pipeline %q at offset %d: %s", e.Invocation, e.Offset, e.Msg)
}

// Is reports whether target is ErrInvalidPipeline.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrInvalidPipeline
}
