// Package flags holds sbin's feature flags. Flags are read-only once built
// and unknown flags read as disabled.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/sbin/internal/log"
)

const (
	// FlagPipefail makes a pipeline's exit code the rightmost non-zero stage
	// code instead of the last stage's code.
	FlagPipefail = "pipefail"

	// FlagStrictRegistry rejects duplicate command names in catalogs instead
	// of letting the later definition override the earlier one.
	FlagStrictRegistry = "strict-registry"
)

// Known lists every flag sbin reads.
func Known() []string {
	return []string{FlagPipefail, FlagStrictRegistry}
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New copies flags into a Registry. A nil map disables everything.
func New(flags map[string]bool) *Registry {
	r := &Registry{flags: make(map[string]bool, len(flags))}
	maps.Copy(r.flags, flags)
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(r.flags), "flags", r.All())
	return r
}

// Enabled reports whether name is set. Unknown flags and a nil Registry
// report false.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unset flag accessed", "flag", name)
		return false
	}
	return value
}

// All returns a copy of every configured flag.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return map[string]bool{}
	}
	return maps.Clone(r.flags)
}

// Unknown returns the configured flag names sbin does not read, sorted.
func (r *Registry) Unknown() []string {
	if r == nil {
		return nil
	}
	known := Known()
	var unknown []string
	for name := range r.flags {
		if !slices.Contains(known, name) {
			unknown = append(unknown, name)
		}
	}
	slices.Sort(unknown)
	return unknown
}
