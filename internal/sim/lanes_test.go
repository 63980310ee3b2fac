package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLaneOffsets(t *testing.T) {
	g := NewLaneGeometry(14, 0.8)
	// usable 11.2, lane width 2.8
	assert.InDelta(t, 2.8, g.LaneWidth(), 1e-12)
	assert.InDelta(t, -4.2, g.Offset(0), 1e-12)
	assert.InDelta(t, -1.4, g.Offset(1), 1e-12)
	assert.InDelta(t, 1.4, g.Offset(2), 1e-12)
	assert.InDelta(t, 4.2, g.Offset(3), 1e-12)

	assert.Equal(t, g.Offset(0), g.Offset(-3))
	assert.Equal(t, g.Offset(3), g.Offset(9))

	for i := 1; i < LaneCount; i++ {
		assert.Greater(t, g.Offset(i), g.Offset(i-1))
	}
}

func TestLaneRebuild(t *testing.T) {
	g := NewLaneGeometry(14, 0.8)
	g.Rebuild(28, 0.5)
	assert.Equal(t, 28.0, g.Width())
	assert.Equal(t, 0.5, g.Fraction())
	assert.InDelta(t, LaneOffset(2, 28, 0.5), g.Offset(2), 1e-12)
	assert.InDelta(t, -g.Offset(0), g.Offset(3), 1e-12)
}
