package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/zjrosen/sbin/internal/log"
	"github.com/zjrosen/sbin/internal/paths"
)

// UserCatalog locates an optional catalog file on disk.
type UserCatalog struct {
	// Path is the catalog file. Empty means no user catalog.
	Path string
	// Required makes a missing file an error. It is set when the user named
	// the file explicitly rather than relying on the default location.
	Required bool
}

// DefaultUserCatalog returns ~/.config/sbin/commands.yaml as an optional
// catalog.
func DefaultUserCatalog() UserCatalog {
	return UserCatalog{Path: paths.UserCatalogFile()}
}

// ConfiguredUserCatalog returns the catalog named by the catalog config key,
// falling back to DefaultUserCatalog when it is empty.
func ConfiguredUserCatalog(path string) UserCatalog {
	if path == "" {
		return DefaultUserCatalog()
	}
	return UserCatalog{Path: paths.ExpandHome(path), Required: true}
}

// Load reads the catalog. An optional catalog that does not exist yields an
// empty CatalogFile and found == false.
func (u UserCatalog) Load() (file CatalogFile, found bool, err error) {
	if u.Path == "" {
		return CatalogFile{}, false, nil
	}

	info, err := os.Stat(u.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !u.Required:
		log.Debug(log.CatRegistry, "No user catalog", "path", u.Path)
		return CatalogFile{}, false, nil
	case err != nil:
		return CatalogFile{}, false, fmt.Errorf("user catalog: %w", err)
	case info.IsDir():
		return CatalogFile{}, false, fmt.Errorf("user catalog %s is a directory", u.Path)
	}

	data, err := os.ReadFile(u.Path)
	if err != nil {
		return CatalogFile{}, false, fmt.Errorf("user catalog: %w", err)
	}
	file, err = ParseCatalog(data, u.Path)
	if err != nil {
		return CatalogFile{}, true, fmt.Errorf("user catalog: %w", err)
	}
	log.Debug(log.CatRegistry, "Loaded user catalog", "path", u.Path, "commands", len(file.Commands))
	return file, true, nil
}
