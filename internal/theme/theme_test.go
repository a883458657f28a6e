package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePrefersStoredTheme(t *testing.T) {
	never := func() bool { t.Fatal("background probed despite stored theme"); return false }
	assert.Equal(t, Light, Resolve(Light, never))
	assert.Equal(t, Dark, Resolve(Dark, never))
}

func TestResolveFallsBackToBackground(t *testing.T) {
	assert.Equal(t, Dark, Resolve("", func() bool { return true }))
	assert.Equal(t, Light, Resolve("", func() bool { return false }))
	assert.Equal(t, Light, Resolve("sepia", func() bool { return false }))
}

func TestForAndToggle(t *testing.T) {
	assert.Equal(t, Dark, For("sepia").Name)
	assert.Equal(t, lightPalette, For(Light).Palette)
	assert.Equal(t, Light, Toggle(Dark))
	assert.Equal(t, Dark, Toggle(Light))
	assert.Equal(t, "☀", Glyph(Dark))
	assert.Equal(t, "◑", Glyph(Light))
}
