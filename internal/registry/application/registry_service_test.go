package registry

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/sbin/internal/catalog"
	registry "github.com/zjrosen/sbin/internal/domain/registry"
	"github.com/zjrosen/sbin/internal/testutil"
)

func builtinOptions() Options {
	return Options{BuiltinFS: catalog.FS(), BuiltinPath: catalog.FileName}
}

func TestNewRegistryService_Builtin(t *testing.T) {
	svc, err := NewRegistryService(builtinOptions())
	require.NoError(t, err)

	require.Equal(t, []string{"echo", "file", "lscat", "pwd", "whoami", "who"}, svc.Names())
	require.Equal(t, []string{"built-in"}, svc.Sources())
	require.Equal(t, []string{"linux"}, svc.Tags())

	who, err := svc.Lookup("who")
	require.NoError(t, err)
	require.Equal(t, "who | ebin/who", who.Invocation())
	require.Equal(t, "Pipe stdin to various plugins to produce json", who.Description())
	require.Len(t, who.Stages(), 2)
	require.Equal(t, registry.SourceBuiltIn, who.Source())

	echo, err := svc.Lookup("echo")
	require.NoError(t, err)
	require.Equal(t, "ebin/echo", echo.Invocation())
	require.Equal(t, "Execute commands in series", echo.Description())

	_, err = svc.Lookup("nope")
	require.ErrorIs(t, err, registry.ErrNotFound)
}

func TestNewRegistryService_UserOverridesBuiltin(t *testing.T) {
	b := testutil.NewBuilder(t).WithCatalog("commands.yaml",
		testutil.CatalogEntry{Name: "who", Cmd: "who | ebin/who --pretty", Description: "Pretty who"},
		testutil.CatalogEntry{Name: "hello", Cmd: "ebin/echo hello", Description: "Say hello"},
	)
	b.Build()

	opts := builtinOptions()
	opts.User = UserCatalog{Path: b.Path("commands.yaml"), Required: true}
	svc, err := NewRegistryService(opts)
	require.NoError(t, err)

	require.Equal(t, []string{"echo", "file", "lscat", "pwd", "whoami", "who", "hello"}, svc.Names(),
		"overrides keep the original position")
	who, err := svc.Lookup("who")
	require.NoError(t, err)
	require.Equal(t, "Pretty who", who.Description())
	require.Equal(t, registry.SourceUser, who.Source())
	require.Empty(t, who.Tags(), "the override replaces the whole entry")
	require.Equal(t, []string{"built-in", b.Path("commands.yaml")}, svc.Sources())
}

func TestNewRegistryService_StrictRejectsDuplicates(t *testing.T) {
	b := testutil.NewBuilder(t).WithCatalog("commands.yaml",
		testutil.CatalogEntry{Name: "echo", Cmd: "ebin/echo2", Description: "Other echo"},
	)
	b.Build()

	opts := builtinOptions()
	opts.User = UserCatalog{Path: b.Path("commands.yaml")}
	opts.Strict = true
	_, err := NewRegistryService(opts)
	require.ErrorIs(t, err, registry.ErrDuplicateName)
	require.ErrorContains(t, err, `command "echo"`)
}

func TestNewRegistryService_TagSelection(t *testing.T) {
	fsys := fstest.MapFS{"c.yaml": {Data: []byte(`commands:
  - name: common
    cmd: ebin/common
    description: Everywhere
  - name: lin
    cmd: ebin/lin
    description: Linux only
    tags: [linux]
  - name: mac
    cmd: ebin/mac
    description: Darwin only
    tags: [darwin]
`)}}

	tests := []struct {
		tags []string
		want []string
	}{
		{nil, []string{"common", "lin", "mac"}},
		{[]string{"linux"}, []string{"common", "lin"}},
		{[]string{"darwin", "linux"}, []string{"common", "lin", "mac"}},
		{[]string{"windows"}, []string{"common"}},
	}
	for _, tt := range tests {
		svc, err := NewRegistryService(Options{BuiltinFS: fsys, BuiltinPath: "c.yaml", Tags: tt.tags})
		require.NoError(t, err)
		require.Equal(t, tt.want, svc.Names(), "tags %v", tt.tags)
		require.Equal(t, 3, svc.All().Len())
	}
}

func TestNewRegistryService_Errors(t *testing.T) {
	tests := []struct {
		name     string
		catalog  string
		reserved []string
		want     string
	}{
		{"reserved name", "commands:\n  - name: help\n    cmd: ebin/help\n    description: h\n", []string{"help", "pick"}, "reserved command name"},
		{"bad pipeline", "commands:\n  - name: x\n    cmd: a ; b\n    description: d\n", nil, "invalid pipeline"},
		{"bad name", "commands:\n  - name: registry:list\n    cmd: a\n    description: d\n", nil, "invalid command name"},
		{"empty stage", "commands:\n  - name: x\n    cmd: a | | b\n    description: d\n", nil, "empty pipeline stage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"c.yaml": {Data: []byte(tt.catalog)}}
			_, err := NewRegistryService(Options{BuiltinFS: fsys, BuiltinPath: "c.yaml", Reserved: tt.reserved})
			require.ErrorContains(t, err, tt.want)
			require.ErrorContains(t, err, "c.yaml")
		})
	}
}

func TestNewRegistryService_NoCatalogs(t *testing.T) {
	svc, err := NewRegistryService(Options{})
	require.NoError(t, err)
	require.Empty(t, svc.List())
	require.Empty(t, svc.Sources())
}
