package registry

import "sort"

// Registry is a frozen, ordered collection of entries. It has no mutation
// methods and is safe for concurrent use.
type Registry struct {
	entries []*Entry
	index   map[string]*Entry
}

func newRegistry(entries []*Entry) *Registry {
	r := &Registry{
		entries: make([]*Entry, len(entries)),
		index:   make(map[string]*Entry, len(entries)),
	}
	copy(r.entries, entries)
	for _, e := range r.entries {
		r.index[e.name] = e
	}
	return r
}

// Lookup returns the entry registered under name.
// Returns a *NotFoundError (matching ErrNotFound) for unknown names.
func (r *Registry) Lookup(name string) (*Entry, error) {
	if e, ok := r.index[name]; ok {
		return e, nil
	}
	return nil, &NotFoundError{Name: name}
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// List returns all entries in registration order. Each call returns a new slice.
func (r *Registry) List() []*Entry {
	result := make([]*Entry, len(r.entries))
	copy(result, r.entries)
	return result
}

// Names returns all command names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Tags returns all unique tags across all entries, sorted alphabetically
func (r *Registry) Tags() []string {
	tagSet := make(map[string]bool)
	for _, e := range r.entries {
		for _, tag := range e.tags {
			tagSet[tag] = true
		}
	}

	tags := make([]string, 0, len(tagSet))
	for tag := range tagSet {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Select returns a registry restricted to untagged entries and entries that
// carry at least one of tags. With no tags the registry itself is returned.
func (r *Registry) Select(tags ...string) *Registry {
	if len(tags) == 0 {
		return r
	}
	selected := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if len(e.tags) == 0 || hasAnyTag(e, tags) {
			selected = append(selected, e)
		}
	}
	return newRegistry(selected)
}

func hasAnyTag(e *Entry, tags []string) bool {
	for _, tag := range tags {
		if e.HasTag(tag) {
			return true
		}
	}
	return false
}
