package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStage_Getters(t *testing.T) {
	s := NewStage("ebin/pluck", "--field", "name")

	require.Equal(t, "ebin/pluck", s.Program())
	require.Equal(t, []string{"--field", "name"}, s.Args())
	require.Equal(t, []string{"ebin/pluck", "--field", "name"}, s.Argv())
}

func TestStage_ArgsReturnsCopy(t *testing.T) {
	s := NewStage("ebin/echo", "a")

	args := s.Args()
	args[0] = "mutated"

	require.Equal(t, []string{"a"}, s.Args())
}

func TestStage_String_QuotesUnsafeWords(t *testing.T) {
	s := NewStage("ebin/echo", "hello world", "it's", "")

	require.Equal(t, `ebin/echo 'hello world' 'it'\''s' ''`, s.String())
}

func TestEntry_Getters(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Register("who", "who | ebin/who", "Pipe stdin to various plugins to produce json", "linux"))
	e, err := b.Build().Lookup("who")
	require.NoError(t, err)

	require.Equal(t, "who", e.Name())
	require.Equal(t, "who | ebin/who", e.Invocation())
	require.Equal(t, "Pipe stdin to various plugins to produce json", e.Description())
	require.Equal(t, []string{"linux"}, e.Tags())
	require.True(t, e.HasTag("linux"))
	require.False(t, e.HasTag("darwin"))
	require.Len(t, e.Stages(), 2)
}

func TestEntry_StagesReturnsCopy(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Register("who", "who | ebin/who", "Pipe stdin"))
	e, err := b.Build().Lookup("who")
	require.NoError(t, err)

	stages := e.Stages()
	stages[0] = NewStage("rm", "-rf", "/")

	require.Equal(t, "who", e.Stages()[0].Program())
}

func TestSource_String(t *testing.T) {
	require.Equal(t, "built-in", SourceBuiltIn.String())
	require.Equal(t, "user", SourceUser.String())
	require.Equal(t, "unknown", Source(99).String())
}

func TestEntry_Source(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Register("echo", "ebin/echo", "built in"))
	require.NoError(t, b.RegisterDefinition(Definition{
		Name:        "lscat",
		Invocation:  "ebin/lscat",
		Description: "from a user catalog",
		Source:      SourceUser,
	}))
	reg := b.Build()

	echo, err := reg.Lookup("echo")
	require.NoError(t, err)
	require.Equal(t, SourceBuiltIn, echo.Source())

	lscat, err := reg.Lookup("lscat")
	require.NoError(t, err)
	require.Equal(t, SourceUser, lscat.Source())
}
