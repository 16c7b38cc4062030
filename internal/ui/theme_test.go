package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/whisker/internal/state"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	require.Len(t, names, 3)
	for _, name := range names {
		assert.Equal(t, name, GetTheme(name).Name)
	}
}

func TestGetTheme_FallsBackToNightfox(t *testing.T) {
	assert.Equal(t, "Nightfox", GetTheme("Solarized").Name)
}

func TestNextTheme_Cycles(t *testing.T) {
	seen := map[string]bool{}
	name := "Nightfox"
	for range ThemeNames() {
		seen[name] = true
		name = NextTheme(name)
	}

	assert.Equal(t, "Nightfox", name)
	assert.Len(t, seen, 3)
	assert.Equal(t, "Nightfox", NextTheme("missing"))
}

func TestThemes_DefineEveryStatus(t *testing.T) {
	statuses := []string{"idle", "loading", "loaded", "failed", "favorite", "offline"}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, s := range statuses {
			assert.NotEmpty(t, th.StatusColors[s], "%s: status color %q", name, s)
		}
	}
}

func TestPhaseColor(t *testing.T) {
	th := GetTheme("Slate")
	assert.Equal(t, th.StatusColors["failed"], th.PhaseColor(state.Failed))
	assert.Equal(t, th.StatusColors["loaded"], th.StatusColor("  LOADED "), "case and space are normalised")
	assert.Equal(t, th.Muted, th.StatusColor("unknown"))
}
