package registry

import "strings"

// Source indicates where an entry originated from.
type Source int

const (
	// SourceBuiltIn indicates an entry bundled with the application.
	SourceBuiltIn Source = iota
	// SourceUser indicates an entry from a user catalog file.
	SourceUser
)

// String returns a human-readable representation of the Source.
func (s Source) String() string {
	switch s {
	case SourceBuiltIn:
		return "built-in"
	case SourceUser:
		return "user"
	default:
		return "unknown"
	}
}

// Stage is a single process in a pipeline.
type Stage struct {
	program string
	args    []string
}

// NewStage creates a stage running program with args.
func NewStage(program string, args ...string) Stage {
	return Stage{program: program, args: append([]string{}, args...)}
}

// Program returns the executable name or path.
func (s Stage) Program() string {
	return s.program
}

// Args returns a copy of the stage arguments (excluding the program).
func (s Stage) Args() []string {
	return append([]string{}, s.args...)
}

// Argv returns the program followed by its arguments.
func (s Stage) Argv() []string {
	argv := make([]string, 0, len(s.args)+1)
	argv = append(argv, s.program)
	return append(argv, s.args...)
}

// String renders the stage as shell words that ParsePipeline reads back unchanged.
func (s Stage) String() string {
	argv := s.Argv()
	words := make([]string, len(argv))
	for i, w := range argv {
		words[i] = Quote(w)
	}
	return strings.Join(words, " ")
}

// Entry represents a registered command.
type Entry struct {
	name        string  // e.g., "who"
	invocation  string  // e.g., "who | ebin/who"
	description string  // e.g., "Pipe stdin to various plugins to produce json"
	stages      []Stage // parsed from invocation at registration time
	tags        []string
	source      Source
}

// Name returns the command name.
func (e *Entry) Name() string {
	return e.name
}

// Invocation returns the shell command line as registered.
func (e *Entry) Invocation() string {
	return e.invocation
}

// Description returns the human-readable description.
func (e *Entry) Description() string {
	return e.description
}

// Stages returns a copy of the parsed pipeline stages.
func (e *Entry) Stages() []Stage {
	return append([]Stage{}, e.stages...)
}

// Tags returns a copy of the entry tags.
func (e *Entry) Tags() []string {
	return append([]string{}, e.tags...)
}

// Source returns where the entry was loaded from.
func (e *Entry) Source() Source {
	return e.source
}

// HasTag reports whether the entry carries tag.
func (e *Entry) HasTag(tag string) bool {
	for _, t := range e.tags {
		if t == tag {
			return true
		}
	}
	return false
}
