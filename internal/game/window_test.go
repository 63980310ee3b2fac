//go:build !android

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowSettings(t *testing.T) {
	ws := Options{}.window()
	assert.Equal(t, DefaultSamples, ws.samples)
	assert.True(t, ws.resizable)
	assert.Equal(t, WindowWidth, ws.width)
	assert.Equal(t, WindowTitle, ws.title)

	ws = Options{Samples: -1, FixedSize: true}.window()
	assert.Zero(t, ws.samples)
	assert.False(t, ws.resizable)

	assert.Equal(t, 8, Options{Samples: 8}.window().samples)
}
