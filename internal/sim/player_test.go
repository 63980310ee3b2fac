package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tick = 1.0 / 60

func newTestPlayer() *Player {
	cfg := DefaultConfig().Player
	return NewPlayer(&cfg, NewLaneGeometry(14, DefaultLaneFraction))
}

func TestPlayerLaneChangeToCurrentLaneIsNoop(t *testing.T) {
	p := newTestPlayer()
	before := *p
	assert.False(t, p.RequestLaneChange(p.CurrentLane))
	assert.Equal(t, before, *p)
	assert.Equal(t, Straight, p.State())
}

func TestPlayerLaneChangeCompletes(t *testing.T) {
	for _, target := range []int{0, 1, 3} {
		p := newTestPlayer()
		require.True(t, p.RequestLaneChange(target))
		require.Equal(t, ChangingLane, p.State())

		prevPhase := 0.0
		for i := 0; i < 600 && p.IsChangingLane(); i++ {
			p.Update(tick, Controls{})
			if p.IsChangingLane() {
				require.GreaterOrEqual(t, p.Phase, prevPhase)
				require.LessOrEqual(t, p.Phase, 1.0)
				prevPhase = p.Phase
			}
		}

		assert.False(t, p.IsChangingLane())
		assert.Equal(t, target, p.CurrentLane)
		assert.Equal(t, target, p.TargetLane)
		assert.Zero(t, p.Phase)
		assert.True(t, p.AtRest())
		assert.InDelta(t, p.lanes.Offset(target), p.Lateral, 1e-9)
	}
}

func TestPlayerIgnoresRequestWhileChanging(t *testing.T) {
	p := newTestPlayer()
	require.True(t, p.RequestLaneChange(3))
	p.Update(tick, Controls{})
	assert.False(t, p.RequestLaneChange(1))
	assert.Equal(t, 3, p.TargetLane)
}

func TestPlayerSteeringFollowsTurn(t *testing.T) {
	p := newTestPlayer()
	require.True(t, p.RequestLaneChange(3)) // to the right, +X
	sawPositive, sawOvershoot := false, false
	for p.IsChangingLane() {
		p.Update(tick, Controls{})
		if !p.IsChangingLane() {
			break
		}
		if p.Phase < SteerWindowOut {
			require.GreaterOrEqual(t, p.Steer, 0.0)
			sawPositive = sawPositive || p.Steer > 0
		} else {
			require.LessOrEqual(t, p.Steer, 0.0)
			sawOvershoot = sawOvershoot || p.Steer < 0
		}
	}
	assert.True(t, sawPositive)
	assert.True(t, sawOvershoot)
}

func TestSteerAngleWindows(t *testing.T) {
	const max, over = 0.2, 0.05
	assert.InDelta(t, 0, SteerAngle(0, 1, max, over), 1e-12)
	assert.InDelta(t, max*0.5, SteerAngle(0.15, 1, max, over), 1e-12)
	assert.InDelta(t, max, SteerAngle(0.3, 1, max, over), 1e-12)
	assert.InDelta(t, max*0.5, SteerAngle(0.5, 1, max, over), 1e-12)
	assert.InDelta(t, -over, SteerAngle(0.85, 1, max, over), 1e-12)
	assert.InDelta(t, 0, SteerAngle(1, 1, max, over), 1e-12)
	assert.InDelta(t, -max*0.5, SteerAngle(0.15, -1, max, over), 1e-12)
}

func TestPlayerEasesToRest(t *testing.T) {
	p := newTestPlayer()
	p.Steer = 0.2
	p.Tilt = -0.05
	p.Update(tick, Controls{})
	assert.Greater(t, p.Steer, 0.0)
	assert.Less(t, p.Steer, 0.2)
	assert.Less(t, p.Tilt, 0.0)
	assert.Greater(t, p.Tilt, -0.05)

	for i := 0; i < 600; i++ {
		p.Update(tick, Controls{})
	}
	assert.True(t, p.AtRest())
}

func TestPlayerSpeedClamping(t *testing.T) {
	p := newTestPlayer()
	for i := 0; i < 1000; i++ {
		p.Update(tick, Controls{Accelerate: true})
		require.LessOrEqual(t, p.Speed, p.cfg.MaxSpeed)
	}
	assert.Equal(t, p.cfg.MaxSpeed, p.Speed)

	for i := 0; i < 1000; i++ {
		p.Update(tick, Controls{Decelerate: true})
		require.GreaterOrEqual(t, p.Speed, p.cfg.MinSpeed)
	}
	assert.Equal(t, p.cfg.MinSpeed, p.Speed)

	r := NewRand(7)
	for i := 0; i < 2000; i++ {
		p.Update(tick, Controls{Accelerate: r.Intn(2) == 0, Decelerate: r.Intn(3) == 0})
		require.GreaterOrEqual(t, p.Speed, p.cfg.MinSpeed)
		require.LessOrEqual(t, p.Speed, p.cfg.MaxSpeed)
	}
}

func TestPlayerAdvancesAlongTravelAxis(t *testing.T) {
	p := newTestPlayer()
	speed := p.Speed
	p.Update(tick, Controls{})
	assert.InDelta(t, -speed*p.cfg.SpeedFactor*tick, p.Position, 1e-12)
	assert.True(t, math.Signbit(p.WorldPosition().Z()))
}
