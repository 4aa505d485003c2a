package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"

	registry "github.com/zjrosen/sbin/internal/domain/registry"
	"github.com/zjrosen/sbin/internal/log"
)

// ErrReservedName is returned for catalog commands named like a built-in
// CLI command such as "help".
var ErrReservedName = errors.New("reserved command name")

// Options configures NewRegistryService.
type Options struct {
	// BuiltinFS holds the built-in catalog at BuiltinPath. Nil skips it.
	BuiltinFS   fs.FS
	BuiltinPath string

	// User is layered over the built-in catalog.
	User UserCatalog

	// Strict rejects duplicate names instead of letting later records
	// override earlier ones.
	Strict bool

	// Tags selects a deployment subset. Empty keeps every entry.
	Tags []string

	// Reserved names cannot be used by catalog commands.
	Reserved []string
}

// RegistryService owns the registry built from the configured catalogs.
type RegistryService struct {
	registry *registry.Registry
	all      *registry.Registry
	sources  []string
}

var _ registry.Provider = (*RegistryService)(nil)

// NewRegistryService loads the built-in catalog, then the user catalog, and
// freezes the result. Any invalid record fails the whole load.
func NewRegistryService(opts Options) (*RegistryService, error) {
	var builderOpts []registry.BuilderOption
	if opts.Strict {
		builderOpts = append(builderOpts, registry.Strict())
	}
	b := registry.NewBuilder(builderOpts...)
	svc := &RegistryService{}

	if opts.BuiltinFS != nil {
		file, err := LoadCatalog(opts.BuiltinFS, opts.BuiltinPath)
		if err != nil {
			return nil, fmt.Errorf("load built-in catalog: %w", err)
		}
		if err := register(b, file.Definitions(registry.SourceBuiltIn), opts.BuiltinPath, opts.Reserved); err != nil {
			return nil, err
		}
		svc.sources = append(svc.sources, "built-in")
	}

	file, found, err := opts.User.Load()
	if err != nil {
		return nil, err
	}
	if found {
		if err := register(b, file.Definitions(registry.SourceUser), opts.User.Path, opts.Reserved); err != nil {
			return nil, err
		}
		svc.sources = append(svc.sources, opts.User.Path)
	}

	svc.all = b.Build()
	svc.registry = svc.all.Select(opts.Tags...)
	log.Info(log.CatRegistry, "Registry built",
		"entries", svc.registry.Len(),
		"total", svc.all.Len(),
		"policy", b.Policy(),
		"tags", opts.Tags)
	return svc, nil
}

func register(b *registry.Builder, defs []registry.Definition, source string, reserved []string) error {
	for _, def := range defs {
		if slices.Contains(reserved, def.Name) {
			return fmt.Errorf("%s: command %q: %w", source, def.Name, ErrReservedName)
		}
		overrides := b.Has(def.Name)
		if err := b.RegisterDefinition(def); err != nil {
			return fmt.Errorf("%s: command %q: %w", source, def.Name, err)
		}
		if overrides {
			log.Debug(log.CatRegistry, "Command overridden", "name", def.Name, "source", source)
		}
	}
	return nil
}

// Registry returns the tag-selected registry.
func (s *RegistryService) Registry() *registry.Registry {
	return s.registry
}

// All returns every loaded entry, ignoring tag selection.
func (s *RegistryService) All() *registry.Registry {
	return s.all
}

// Sources lists the catalogs that were loaded, in load order.
func (s *RegistryService) Sources() []string {
	return slices.Clone(s.sources)
}

// Lookup returns the entry registered under name.
func (s *RegistryService) Lookup(name string) (*registry.Entry, error) {
	return s.registry.Lookup(name)
}

// List returns entries in registration order.
func (s *RegistryService) List() []*registry.Entry {
	return s.registry.List()
}

// Names returns entry names in registration order.
func (s *RegistryService) Names() []string {
	return s.registry.Names()
}

// Tags returns the sorted tags used by the selected entries.
func (s *RegistryService) Tags() []string {
	return s.registry.Tags()
}
