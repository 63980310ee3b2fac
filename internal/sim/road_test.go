package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStreamer(n int, scale float64) (*RoadStreamer, *testScene) {
	scene := newTestScene()
	rs := NewRoadStreamer(&RoadConfig{Scale: scale, VisibleSegments: n}, scene)
	return rs, scene
}

func requireContiguous(t *testing.T, rs *RoadStreamer) {
	t.Helper()
	segs := rs.Segments()
	require.NotEmpty(t, segs)
	L := rs.SegmentLength()
	seen := make(map[int]bool, len(segs))
	for i, s := range segs {
		require.False(t, seen[s.Slot], "duplicate slot %d", s.Slot)
		seen[s.Slot] = true
		if i == 0 {
			continue
		}
		require.Equal(t, segs[i-1].Slot-1, s.Slot, "gap at index %d", i)
		require.InDelta(t, L, segs[i-1].Position-s.Position, 1e-6)
	}
}

func TestRoadInitialWindow(t *testing.T) {
	rs, scene := newTestStreamer(30, 1)
	rs.SetAsset(testRoad)
	rs.Resync(0)

	fwd, back := rs.Counts()
	assert.Equal(t, 21, fwd)
	assert.Equal(t, 9, back)

	segs := rs.Segments()
	require.Len(t, segs, 31)
	assert.InDelta(t, 9*18.5, segs[0].Position, 1e-9)
	assert.InDelta(t, -21*18.5, segs[len(segs)-1].Position, 1e-9)
	requireContiguous(t, rs)

	ahead, behind := 0, 0
	for _, s := range segs {
		switch {
		case s.Position < 0:
			ahead++
		case s.Position > 0:
			behind++
		}
	}
	assert.Equal(t, 21, ahead)
	assert.Equal(t, 9, behind)
	assert.Len(t, scene.live, 31)
}

func TestRoadNotReadyIsNoop(t *testing.T) {
	rs, scene := newTestStreamer(30, 1)
	rs.Resync(0)
	rs.Resync(-500)
	assert.Zero(t, rs.Len())
	assert.Zero(t, scene.created)

	t.Run("zero length asset", func(t *testing.T) {
		rs.SetAsset(RoadAsset{Model: 1, Extent: Extent{Width: 10}})
		rs.Resync(0)
		assert.False(t, rs.Ready())
		assert.Zero(t, rs.Len())
	})
}

func TestRoadContiguityWhileDriving(t *testing.T) {
	rs, scene := newTestStreamer(30, 1)
	rs.SetAsset(testRoad)

	for ref := 0.0; ref > -5000; ref -= 7.3 {
		rs.Resync(ref)
		requireContiguous(t, rs)
		require.Contains(t, []int{30, 31}, rs.Len())
		require.Len(t, scene.live, rs.Len())

		segs := rs.Segments()
		L := rs.SegmentLength()
		require.GreaterOrEqual(t, segs[len(segs)-1].Position, ref-21*L-1e-6)
		require.LessOrEqual(t, segs[len(segs)-1].Position, ref-20*L+1e-6)
	}

	t.Run("reverse", func(t *testing.T) {
		for ref := -5000.0; ref < 0; ref += 11.1 {
			rs.Resync(ref)
			requireContiguous(t, rs)
			require.Contains(t, []int{30, 31}, rs.Len())
		}
	})
}

func TestRoadJumpReseeds(t *testing.T) {
	rs, scene := newTestStreamer(10, 1)
	rs.SetAsset(testRoad)
	rs.Resync(0)
	first := rs.Segments()[0].Handle

	rs.Resync(-100000)
	requireContiguous(t, rs)
	assert.NotContains(t, scene.live, first)
	assert.Len(t, scene.live, rs.Len())
}

func TestRoadResetRecomputesLength(t *testing.T) {
	rs, scene := newTestStreamer(30, 1)
	rs.SetAsset(testRoad)
	rs.Resync(0)
	require.InDelta(t, 18.5, rs.SegmentLength(), 1e-9)

	rs.cfg.Scale = 2
	rs.Reset(0)
	assert.InDelta(t, 37.0, rs.SegmentLength(), 1e-9)
	assert.InDelta(t, 28.0, rs.Width(), 1e-9)
	requireContiguous(t, rs)
	assert.Len(t, scene.live, rs.Len())
	assert.Equal(t, 31, scene.destroyed)

	rs.Clear()
	assert.Empty(t, scene.live)
}

func TestRoadSmallWindow(t *testing.T) {
	rs, _ := newTestStreamer(1, 1)
	rs.SetAsset(testRoad)
	for ref := 0.0; ref > -200; ref -= 3 {
		rs.Resync(ref)
		requireContiguous(t, rs)
		require.LessOrEqual(t, rs.Len(), 2)
	}
}
