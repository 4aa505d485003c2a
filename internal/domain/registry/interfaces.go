package registry

// Provider defines read-only access to a command registry.
// This interface enables dependency injection and facilitates testing by
// allowing mock implementations to be substituted for the concrete Registry.
type Provider interface {
	// Lookup returns the entry registered under name.
	// Returns a *NotFoundError if no entry matches.
	Lookup(name string) (*Entry, error)

	// List returns all entries in registration order.
	List() []*Entry

	// Names returns all command names in registration order.
	Names() []string

	// Tags returns all unique tags across all entries, sorted alphabetically.
	Tags() []string
}

// Compile-time check that Registry implements Provider.
var _ Provider = (*Registry)(nil)
