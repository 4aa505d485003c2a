package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestBuilder_WritesFiles(t *testing.T) {
	b := NewBuilder(t).
		WithScript("ebin/hello", "echo hello").
		WithFile("notes/readme.txt", "hi", 0o600)
	dir := b.Build()
	require.Equal(t, b.Dir(), dir)

	info, err := os.Stat(filepath.Join(dir, "ebin/hello"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	data, err := os.ReadFile(b.Path("ebin/hello"))
	require.NoError(t, err)
	require.Equal(t, "#!/bin/sh\necho hello\n", string(data))

	info, err = os.Stat(b.Path("notes/readme.txt"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestBuilder_WithCatalog(t *testing.T) {
	b := NewBuilder(t).WithCatalog("commands.yaml", StandardCatalog()...)
	b.Build()

	data, err := os.ReadFile(b.Path("commands.yaml"))
	require.NoError(t, err)

	var parsed struct {
		Commands []CatalogEntry `yaml:"commands"`
	}
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	require.Equal(t, StandardCatalog(), parsed.Commands)
}

func TestBuilder_WithEbin(t *testing.T) {
	b := NewBuilder(t).WithEbin()
	b.Build()

	for _, name := range []string{"echo", "args", "upper", "who", "pwd", "fail"} {
		info, err := os.Stat(b.Path("ebin/" + name))
		require.NoError(t, err, name)
		require.NotZero(t, info.Mode().Perm()&0o100, name)
	}
	info, err := os.Stat(b.Path("ebin/noexec"))
	require.NoError(t, err)
	require.Zero(t, info.Mode().Perm()&0o111)
}
