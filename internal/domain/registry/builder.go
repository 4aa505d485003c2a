package registry

import (
	"strings"
	"unicode"
)

// Policy decides what happens when a name is registered twice.
type Policy int

const (
	// PolicyOverride replaces the earlier entry in place. The entry keeps the
	// list position of the first registration.
	PolicyOverride Policy = iota
	// PolicyStrict rejects the second registration with a *DuplicateNameError.
	PolicyStrict
)

func (p Policy) String() string {
	switch p {
	case PolicyOverride:
		return "override"
	case PolicyStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithPolicy sets the duplicate name policy.
func WithPolicy(p Policy) BuilderOption {
	return func(b *Builder) {
		b.policy = p
	}
}

// Strict is shorthand for WithPolicy(PolicyStrict).
func Strict() BuilderOption {
	return WithPolicy(PolicyStrict)
}

// Builder accumulates entries until Build freezes them into a Registry.
// A Builder is not safe for concurrent use.
type Builder struct {
	policy  Policy
	entries []*Entry
	index   map[string]int
}

// NewBuilder creates an empty builder. The default policy is PolicyOverride.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		policy:  PolicyOverride,
		entries: make([]*Entry, 0),
		index:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Policy returns the builder's duplicate name policy.
func (b *Builder) Policy() Policy {
	return b.policy
}

// Definition is the raw input for one registration.
type Definition struct {
	Name        string
	Invocation  string
	Description string
	Tags        []string
	Source      Source
}

// Register validates and adds a built-in entry. The invocation is parsed into
// pipeline stages here so that a malformed command line fails at load time.
func (b *Builder) Register(name, invocation, description string, tags ...string) error {
	return b.RegisterDefinition(Definition{
		Name:        name,
		Invocation:  invocation,
		Description: description,
		Tags:        tags,
		Source:      SourceBuiltIn,
	})
}

// RegisterDefinition validates and adds an entry described by def.
func (b *Builder) RegisterDefinition(def Definition) error {
	entry, err := newEntry(def)
	if err != nil {
		return err
	}

	if i, exists := b.index[entry.name]; exists {
		if b.policy == PolicyStrict {
			return &DuplicateNameError{Name: entry.name}
		}
		b.entries[i] = entry
		return nil
	}

	b.index[entry.name] = len(b.entries)
	b.entries = append(b.entries, entry)
	return nil
}

// Has reports whether name has been registered on the builder.
func (b *Builder) Has(name string) bool {
	_, ok := b.index[name]
	return ok
}

// Len returns the number of unique names registered so far.
func (b *Builder) Len() int {
	return len(b.entries)
}

// Build returns a frozen registry holding the entries registered so far.
// Later registrations on the builder do not affect the returned registry.
func (b *Builder) Build() *Registry {
	return newRegistry(b.entries)
}

func newEntry(def Definition) (*Entry, error) {
	name, invocation, description := def.Name, def.Invocation, def.Description
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(invocation) == "" {
		return nil, ErrEmptyInvocation
	}
	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}

	stages, err := ParsePipeline(invocation)
	if err != nil {
		return nil, err
	}

	tags, err := normalizeTags(def.Tags)
	if err != nil {
		return nil, err
	}

	return &Entry{
		name:        name,
		invocation:  invocation,
		description: description,
		stages:      stages,
		tags:        tags,
		source:      def.Source,
	}, nil
}

// ValidateName checks that name can be used as a command name: non-empty,
// printable, free of whitespace, not starting with '-' (it would read as a
// flag) and free of ':' (reserved for built-in commands).
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if strings.HasPrefix(name, "-") || strings.Contains(name, ":") {
		return ErrInvalidName
	}
	for _, r := range name {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return ErrInvalidName
		}
	}
	return nil
}

func normalizeTags(tags []string) ([]string, error) {
	result := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || strings.ContainsFunc(tag, unicode.IsSpace) {
			return nil, ErrInvalidTag
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	return result, nil
}
