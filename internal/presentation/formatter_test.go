package presentation

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	registry "github.com/zjrosen/sbin/internal/domain/registry"
)

func TestFormatEntries(t *testing.T) {
	b := registry.NewBuilder()
	require.NoError(t, b.Register("echo", "ebin/echo", "Execute commands in series"))
	require.NoError(t, b.Register("who", "who | ebin/who 'a b'", "Pipe stdin", "linux"))

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf).FormatEntries(FromEntries(b.Build().List())))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)

	require.Equal(t, "echo", got[0]["name"])
	require.Equal(t, "ebin/echo", got[0]["cmd"])
	require.Equal(t, []any{}, got[0]["tags"], "tags are always present")
	require.Equal(t, "built-in", got[0]["source"])

	require.Equal(t, []any{"linux"}, got[1]["tags"])
	require.Equal(t, []any{
		map[string]any{"program": "who", "args": []any{}},
		map[string]any{"program": "ebin/who", "args": []any{"a b"}},
	}, got[1]["stages"])
}

func TestFormatProblems_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf).FormatProblems(nil))
	require.Equal(t, "[]\n", buf.String())
}
