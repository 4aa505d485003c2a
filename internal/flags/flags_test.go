package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		registry *Registry
		flag     string
		expected bool
	}{
		{"enabled flag", New(map[string]bool{FlagPipefail: true}), FlagPipefail, true},
		{"disabled flag", New(map[string]bool{FlagPipefail: false}), FlagPipefail, false},
		{"unset flag", New(map[string]bool{FlagPipefail: true}), FlagStrictRegistry, false},
		{"nil registry", nil, FlagPipefail, false},
		{"nil map", New(nil), FlagStrictRegistry, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.registry.Enabled(tt.flag))
		})
	}
}

func TestNew_CopiesInput(t *testing.T) {
	in := map[string]bool{FlagStrictRegistry: true}
	r := New(in)
	in[FlagStrictRegistry] = false

	require.True(t, r.Enabled(FlagStrictRegistry))
}

func TestRegistry_All_ReturnsCopy(t *testing.T) {
	r := New(map[string]bool{FlagPipefail: true})

	all := r.All()
	all[FlagPipefail] = false
	all["extra"] = true

	require.Equal(t, map[string]bool{FlagPipefail: true}, r.All())
	require.Equal(t, map[string]bool{}, (*Registry)(nil).All())
}

func TestRegistry_Unknown(t *testing.T) {
	r := New(map[string]bool{
		FlagPipefail: true,
		"zeta":       true,
		"alpha":      false,
	})
	require.Equal(t, []string{"alpha", "zeta"}, r.Unknown())
	require.Empty(t, New(map[string]bool{FlagStrictRegistry: true}).Unknown())
	require.Nil(t, (*Registry)(nil).Unknown())
}
