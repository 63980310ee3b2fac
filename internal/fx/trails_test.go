package fx

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"highway/internal/sim"
)

func poseAt(x, z, yaw float64) sim.Transform {
	return sim.Transform{Position: mgl64.Vec3{x, 0.4, z}, Yaw: yaw, Scale: 1}
}

func TestTrailsEmitBySpacing(t *testing.T) {
	tr := NewTrails(0)
	assert.Equal(t, MaxTrailMarks, tr.Max)

	assert.Zero(t, tr.Emit(poseAt(0, 0, 0)), "first pose only primes")
	assert.Zero(t, tr.Emit(poseAt(0, -TrailSpacing/2, 0)))
	assert.Equal(t, 2, tr.Emit(poseAt(0, -TrailSpacing*1.1, 0)))
	require.Len(t, tr.M, 2)

	l, r := tr.M[0].Pos, tr.M[1].Pos
	assert.InDelta(t, -HalfTrack, l.X(), 1e-9)
	assert.InDelta(t, HalfTrack, r.X(), 1e-9)
	assert.InDelta(t, -TrailSpacing*1.1+RearAxle, l.Z(), 1e-9)
	assert.Zero(t, l.Y())
	assert.InDelta(t, TrailBaseAlpha, tr.M[0].Alpha, 1e-12)
}

func TestTrailsSteeringDarkensMarks(t *testing.T) {
	tr := NewTrails(16)
	tr.Emit(poseAt(0, 0, 0.1))
	tr.Emit(poseAt(0, -1, 0.1))
	require.NotEmpty(t, tr.M)
	assert.Greater(t, tr.M[0].Alpha, TrailBaseAlpha)
	assert.LessOrEqual(t, tr.M[0].Alpha, 1.0)
}

func TestWheelPositionsFollowYaw(t *testing.T) {
	l, r := WheelPositions(poseAt(0, 0, 0.3))
	// Turning right swings the rear axle toward -X.
	mid := l.Add(r).Mul(0.5)
	assert.Less(t, mid.X(), 0.0)
	assert.InDelta(t, 2*HalfTrack, r.Sub(l).Len(), 1e-9)
}

func TestTrailsRingOverwrite(t *testing.T) {
	tr := NewTrails(6)
	tr.Emit(poseAt(0, 0, 0))
	for i := 1; i <= 10; i++ {
		tr.Emit(poseAt(0, -float64(i), 0))
	}
	assert.Len(t, tr.M, 6)

	newest := -10 + RearAxle
	found := false
	for _, m := range tr.M {
		if m.Pos.Z() == newest {
			found = true
		}
	}
	assert.True(t, found, "newest marks overwrite the oldest slots")
}

func TestTrailsFade(t *testing.T) {
	tr := NewTrails(32)
	tr.Emit(poseAt(0, 0, 0))
	tr.Emit(poseAt(0, -1, 0))
	require.Len(t, tr.M, 2)

	buf := tr.RenderData(nil)
	require.Len(t, buf, 10)
	a0 := buf[4]

	tr.Update(TrailLife / 2)
	buf = tr.RenderData(buf)
	require.Len(t, buf, 10)
	assert.Less(t, buf[4], a0)

	tr.Update(TrailLife)
	assert.Empty(t, tr.M)
	assert.Empty(t, tr.RenderData(buf))

	tr.Emit(poseAt(0, -2, 0))
	tr.Clear()
	assert.Empty(t, tr.M)
	assert.Zero(t, tr.Emit(poseAt(0, -50, 0)))
}
