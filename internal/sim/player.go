package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// LaneShift is a discrete lane-change request from input.
type LaneShift int

const (
	ShiftLeft  LaneShift = -1
	ShiftRight LaneShift = 1
)

// Controls are the held input signals sampled once per tick.
type Controls struct {
	Accelerate bool
	Decelerate bool
}

// LocomotionState is either Straight or ChangingLane.
type LocomotionState int

const (
	Straight LocomotionState = iota
	ChangingLane
)

// Player is the locomotion state machine. Position is the reference
// position published to streaming and traffic.
type Player struct {
	cfg   *PlayerConfig
	lanes *LaneGeometry

	CurrentLane int
	TargetLane  int
	Position    float64 // longitudinal, decreasing while driving
	Lateral     float64
	Speed       float64
	Phase       float64 // lane-change phase in [0,1]

	// Orientation offsets from straight ahead.
	Steer float64
	Tilt  float64

	changing     bool
	startLateral float64
	turnDir      float64
}

// NewPlayer places the player at the origin in its start lane. World.Reset
// leaves the player where it is, so this is the only place that happens.
func NewPlayer(cfg *PlayerConfig, lanes *LaneGeometry) *Player {
	return &Player{
		cfg:         cfg,
		lanes:       lanes,
		CurrentLane: cfg.StartLane,
		TargetLane:  cfg.StartLane,
		Lateral:     lanes.Offset(cfg.StartLane),
		Speed:       clampF(cfg.StartSpeed, cfg.MinSpeed, cfg.MaxSpeed),
	}
}

func (p *Player) State() LocomotionState {
	if p.changing {
		return ChangingLane
	}
	return Straight
}

func (p *Player) IsChangingLane() bool { return p.changing }

// RequestLaneChange starts a transition to target. Requests while already
// changing lane, or naming the current lane, are ignored. target must be
// a valid lane; the request handler clamps it.
func (p *Player) RequestLaneChange(target int) bool {
	if p.changing || target == p.CurrentLane {
		return false
	}
	p.TargetLane = target
	p.changing = true
	p.Phase = 0
	p.startLateral = p.Lateral
	p.turnDir = 1
	if p.lanes.Offset(target) < p.Lateral {
		p.turnDir = -1
	}
	return true
}

// Update advances one tick. It reports whether a lane change completed.
func (p *Player) Update(dt float64, ctl Controls) bool {
	if ctl.Accelerate {
		p.Speed = approach(p.Speed, p.cfg.MaxSpeed, p.cfg.SpeedDelta)
	}
	if ctl.Decelerate {
		p.Speed = approach(p.Speed, p.cfg.MinSpeed, p.cfg.SpeedDelta)
	}
	p.Speed = clampF(p.Speed, p.cfg.MinSpeed, p.cfg.MaxSpeed)

	p.Position -= p.Speed * p.cfg.SpeedFactor * dt

	if !p.changing {
		p.Lateral = p.lanes.Offset(p.CurrentLane)
		k := smoothing(RestBlend, dt)
		p.Steer = easeToRest(p.Steer, k)
		p.Tilt = easeToRest(p.Tilt, k)
		return false
	}

	target := p.lanes.Offset(p.TargetLane)
	step := p.cfg.LaneChangeRate * dt * FrameNormalization
	remaining := math.Abs(target - p.Lateral)
	total := math.Abs(target - p.startLateral)
	if remaining <= step || total <= 0 {
		p.finishLaneChange(target)
		return true
	}

	if target > p.Lateral {
		p.Lateral += step
	} else {
		p.Lateral -= step
	}
	p.Phase = clampF(1-(remaining-step)/total, 0, 1)
	p.Steer = SteerAngle(p.Phase, p.turnDir, p.cfg.MaxSteer, p.cfg.SteerOvershoot)
	p.Tilt = math.Sin(2*math.Pi*p.Phase) * p.cfg.MaxTilt * p.turnDir
	return false
}

func (p *Player) finishLaneChange(target float64) {
	p.Lateral = target
	p.CurrentLane = p.TargetLane
	p.Phase = 0
	p.changing = false
	p.Steer = 0
	p.Tilt = 0
}

// SteerAngle is the phase-driven steering animation: ramp in toward the
// turn, ramp back out, then a small half-sine overshoot the other way.
func SteerAngle(phase, dir, maxSteer, overshoot float64) float64 {
	switch {
	case phase < SteerWindowIn:
		return maxSteer * (phase / SteerWindowIn) * dir
	case phase < SteerWindowOut:
		t := (phase - SteerWindowIn) / (SteerWindowOut - SteerWindowIn)
		return maxSteer * (1 - t) * dir
	default:
		t := (phase - SteerWindowOut) / (1 - SteerWindowOut)
		return -overshoot * math.Sin(math.Pi*t) * dir
	}
}

func easeToRest(v, k float64) float64 {
	if v == 0 {
		return 0
	}
	v -= v * k
	if math.Abs(v) < RestEpsilon {
		return 0
	}
	return v
}

// AtRest reports whether the orientation is straight ahead.
func (p *Player) AtRest() bool { return p.Steer == 0 && p.Tilt == 0 }

// WorldPosition is the player's position in world space.
func (p *Player) WorldPosition() mgl64.Vec3 {
	return mgl64.Vec3{p.Lateral, 0, p.Position}
}

// Pose is the player's transform for rendering and cosmetic consumers.
func (p *Player) Pose() Transform {
	return Transform{
		Position: p.WorldPosition(),
		Yaw:      p.Steer,
		Tilt:     p.Tilt,
		Scale:    1,
	}
}
