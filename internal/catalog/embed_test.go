package catalog

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFS_ContainsCatalog(t *testing.T) {
	data, err := fs.ReadFile(FS(), FileName)
	require.NoError(t, err)
	require.NotEmpty(t, data)
}

func TestCatalog_BuiltinNames(t *testing.T) {
	data, err := fs.ReadFile(FS(), FileName)
	require.NoError(t, err)

	var doc struct {
		Commands []struct {
			Name string `yaml:"name"`
			Cmd  string `yaml:"cmd"`
		} `yaml:"commands"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))

	names := make([]string, 0, len(doc.Commands))
	for _, c := range doc.Commands {
		names = append(names, c.Name)
		require.NotEmpty(t, c.Cmd, "command %s must have a cmd", c.Name)
	}
	require.Equal(t, []string{"echo", "file", "lscat", "pwd", "whoami", "who"}, names)
}
