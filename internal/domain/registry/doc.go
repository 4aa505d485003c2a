// Package registry implements the domain layer for the command registry.
//
// This package follows the same layering as the rest of the internal tree:
//   - Contains only pure Go code with standard library imports (no external dependencies)
//   - Defines the entity types (Entry, Stage) and the frozen Registry collection
//   - Implements domain logic (name validation, pipeline parsing, duplicate policy, tag selection)
//   - Has no knowledge of infrastructure concerns (file I/O, YAML parsing, process spawning)
//
// # Core Types
//
// Entry represents a registered command: a unique name, the shell invocation it runs,
// a human-readable description and optional deployment tags. The invocation is parsed
// into an ordered list of Stage values when the entry is registered, so dispatchers never
// re-parse shell text.
//
// Stage is one process in a pipeline: a program and its arguments.
//
// # Construction
//
// Builder accumulates registrations. Duplicate names are handled by the builder's
// Policy: PolicyOverride (the default) replaces the earlier entry in place, keeping its
// list position; PolicyStrict rejects the duplicate with a *DuplicateNameError.
//
// Build freezes the accumulated entries into a Registry. A Registry has no mutation
// methods, so it is safe for concurrent readers without locking.
//
// # Registry Collection
//
// Registry provides:
//   - Lookup for name-based access (returns *NotFoundError for unknown names)
//   - List/Names for enumeration in registration order
//   - Tags/Select for per-deployment subsets
//
// Provider is the read-only interface that Registry implements, enabling dependency
// injection and mock substitution in tests.
package registry
