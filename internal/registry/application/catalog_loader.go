// Package registry loads command catalogs into a frozen command registry.
package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	registry "github.com/zjrosen/sbin/internal/domain/registry"
)

// CatalogFile is the root structure of a commands.yaml file.
type CatalogFile struct {
	Commands []CommandDef `yaml:"commands"`
}

// CommandDef is one record of a catalog file.
type CommandDef struct {
	Name        string   `yaml:"name"`
	Cmd         string   `yaml:"cmd"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags,omitempty"`
}

// ParseCatalog decodes a catalog. Unknown keys and records missing a
// required field are errors; source only labels error messages.
func ParseCatalog(data []byte, source string) (CatalogFile, error) {
	var file CatalogFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return CatalogFile{}, nil
		}
		return CatalogFile{}, fmt.Errorf("parse %s: %w", source, err)
	}

	for i, def := range file.Commands {
		var missing []string
		if strings.TrimSpace(def.Name) == "" {
			missing = append(missing, "name")
		}
		if strings.TrimSpace(def.Cmd) == "" {
			missing = append(missing, "cmd")
		}
		if strings.TrimSpace(def.Description) == "" {
			missing = append(missing, "description")
		}
		if len(missing) > 0 {
			return CatalogFile{}, fmt.Errorf("%s: command %d (%s): missing %s",
				source, i, displayName(def.Name), strings.Join(missing, ", "))
		}
	}
	return file, nil
}

// Definitions converts the catalog's records for a registry.Builder.
func (f CatalogFile) Definitions(src registry.Source) []registry.Definition {
	defs := make([]registry.Definition, len(f.Commands))
	for i, c := range f.Commands {
		defs[i] = registry.Definition{
			Name:        c.Name,
			Invocation:  c.Cmd,
			Description: c.Description,
			Tags:        c.Tags,
			Source:      src,
		}
	}
	return defs
}

// LoadCatalog reads and parses the catalog at path inside fsys.
func LoadCatalog(fsys fs.FS, path string) (CatalogFile, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return CatalogFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseCatalog(data, path)
}

func displayName(name string) string {
	if name == "" {
		return "unnamed"
	}
	return name
}
