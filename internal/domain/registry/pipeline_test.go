package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func argvs(stages []Stage) [][]string {
	result := make([][]string, len(stages))
	for i, s := range stages {
		result[i] = s.Argv()
	}
	return result
}

func TestParsePipeline(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{"single program", "ebin/echo", [][]string{{"ebin/echo"}}},
		{"two stages", "who | ebin/who", [][]string{{"who"}, {"ebin/who"}}},
		{"no spaces around pipe", "who|ebin/who", [][]string{{"who"}, {"ebin/who"}}},
		{"three stages with args", "ls -la | grep go | wc -l", [][]string{{"ls", "-la"}, {"grep", "go"}, {"wc", "-l"}}},
		{"extra whitespace", "  ebin/echo \t a   b  ", [][]string{{"ebin/echo", "a", "b"}}},
		{"single quotes", "ebin/echo 'a | b'", [][]string{{"ebin/echo", "a | b"}}},
		{"double quotes", `ebin/echo "hello world"`, [][]string{{"ebin/echo", "hello world"}}},
		{"double quote escapes", `ebin/echo "say \"hi\" \\ \$x"`, [][]string{{"ebin/echo", `say "hi" \ $x`}}},
		{"double quote keeps other backslashes", `ebin/echo "a\nb"`, [][]string{{"ebin/echo", `a\nb`}}},
		{"backslash outside quotes", `ebin/echo a\ b \|`, [][]string{{"ebin/echo", "a b", "|"}}},
		{"adjacent quoted parts join", `ebin/echo 'a'"b"c`, [][]string{{"ebin/echo", "abc"}}},
		{"empty quoted argument", "ebin/echo '' x", [][]string{{"ebin/echo", "", "x"}}},
		{"escaped single quote", `ebin/echo 'it'\''s'`, [][]string{{"ebin/echo", "it's"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stages, err := ParsePipeline(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, argvs(stages))
		})
	}
}

func TestParsePipeline_Errors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantOffset int
		wantMsg    string
	}{
		{"empty", "", 0, "empty pipeline stage"},
		{"leading pipe", "| ebin/who", 0, "empty pipeline stage"},
		{"trailing pipe", "who |", 5, "empty pipeline stage"},
		{"double pipe", "who || ebin/who", 5, "empty pipeline stage"},
		{"unterminated single", "ebin/echo 'abc", 10, "unterminated single quote"},
		{"unterminated double", `ebin/echo "abc`, 10, "unterminated double quote"},
		{"trailing backslash", `ebin/echo \`, 10, "trailing backslash"},
		{"redirect", "ebin/echo > out", 10, "unsupported shell operator >"},
		{"command list", "who; ebin/who", 3, "unsupported shell operator ;"},
		{"background", "who &", 4, "unsupported shell operator &"},
		{"variable", "ebin/echo $HOME", 10, "unsupported shell operator $"},
		{"expansion in double quotes", `ebin/echo "$HOME"`, 11, "unsupported expansion $"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePipeline(tt.input)
			require.ErrorIs(t, err, ErrInvalidPipeline)

			var syn *SyntaxError
			require.ErrorAs(t, err, &syn)
			require.Equal(t, tt.input, syn.Invocation)
			require.Equal(t, tt.wantOffset, syn.Offset)
			require.Equal(t, tt.wantMsg, syn.Msg)
		})
	}
}

func TestFormatPipeline(t *testing.T) {
	stages := []Stage{
		NewStage("who"),
		NewStage("ebin/who", "--format", "json pretty"),
	}

	require.Equal(t, "who | ebin/who --format 'json pretty'", FormatPipeline(stages))
}

func TestQuote(t *testing.T) {
	require.Equal(t, "ebin/echo", Quote("ebin/echo"))
	require.Equal(t, "--x=1,2", Quote("--x=1,2"))
	require.Equal(t, "''", Quote(""))
	require.Equal(t, "'a b'", Quote("a b"))
	require.Equal(t, "'a|b'", Quote("a|b"))
	require.Equal(t, `'it'\''s'`, Quote("it's"))
}
