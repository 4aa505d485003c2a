// Package testutil builds throwaway work directories for tests: fake
// executables, catalogs and plain files under t.TempDir().
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// CatalogEntry is one record of a catalog file.
type CatalogEntry struct {
	Name        string   `yaml:"name"`
	Cmd         string   `yaml:"cmd"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags,omitempty"`
}

type fileData struct {
	rel     string
	content []byte
	mode    os.FileMode
}

// Builder accumulates files and writes them on Build.
type Builder struct {
	t     testing.TB
	dir   string
	files []fileData
}

// NewBuilder creates a builder rooted at a fresh temp directory.
func NewBuilder(t testing.TB) *Builder {
	t.Helper()
	return &Builder{t: t, dir: t.TempDir()}
}

// Dir returns the root directory, which exists before Build.
func (b *Builder) Dir() string {
	return b.dir
}

// WithScript adds an executable /bin/sh script at rel.
func (b *Builder) WithScript(rel, body string) *Builder {
	return b.WithFile(rel, "#!/bin/sh\n"+body+"\n", 0o755)
}

// WithFile adds a file at rel with the given mode.
func (b *Builder) WithFile(rel, content string, mode os.FileMode) *Builder {
	b.files = append(b.files, fileData{rel: rel, content: []byte(content), mode: mode})
	return b
}

// WithCatalog adds a catalog file at rel holding entries.
func (b *Builder) WithCatalog(rel string, entries ...CatalogEntry) *Builder {
	b.t.Helper()
	data, err := yaml.Marshal(map[string][]CatalogEntry{"commands": entries})
	require.NoError(b.t, err)
	return b.WithFile(rel, string(data), 0o644)
}

// Build writes every file and returns the root directory.
func (b *Builder) Build() string {
	b.t.Helper()
	for _, f := range b.files {
		path := filepath.Join(b.dir, f.rel)
		require.NoError(b.t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(b.t, os.WriteFile(path, f.content, f.mode))
		// WriteFile keeps the mode of an existing file and is subject to umask.
		require.NoError(b.t, os.Chmod(path, f.mode))
	}
	return b.dir
}

// Path joins rel onto the root directory.
func (b *Builder) Path(rel string) string {
	return filepath.Join(b.dir, rel)
}
