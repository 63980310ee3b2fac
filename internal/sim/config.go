package sim

import (
	"errors"
	"fmt"
)

// Travel axis is world Z; the player drives toward negative Z.
// Lateral axis is X, vertical is Y.

// Frame normalization: per-frame tuning values are authored at 60 Hz.
const FrameNormalization = 60.0

// Lanes.
const (
	LaneCount           = 4
	DefaultLaneFraction = 0.8
)

// Road streaming.
const (
	DefaultVisibleSegments = 30
	ForwardSharePercent    = 70   // share of the window kept ahead of the player
	DefaultRoadWidth       = 14.0 // used until the road asset is loaded
	slotEpsilon            = 1e-9
)

// Traffic.
const (
	DefaultTrafficCap  = 30
	SafeSpawnDistance  = 14.0 // per-lane clearance around the spawn point
	HeadingNudgeChance = 0.02
	HeadingNudgeMax    = 0.035 // rad
	AgentScaleMin      = 0.9
	AgentScaleMax      = 1.1
)

// Player locomotion.
const (
	SteerWindowIn   = 0.3
	SteerWindowOut  = 0.7
	RestBlend       = 0.15 // per-tick ratio toward rest orientation
	RestEpsilon     = 1e-4
	DefaultMinSpeed = 0.2
	DefaultMaxSpeed = 1.6
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// RoadConfig controls the segment window. Changing Scale or VisibleSegments
// requires World.Reset.
type RoadConfig struct {
	Scale           float64 `toml:"scale"`
	VisibleSegments int     `toml:"visible_segments"`
}

// LaneConfig controls lateral placement.
type LaneConfig struct {
	AreaFraction float64 `toml:"area_fraction"`
}

// DirectionConfig is the spawn/despawn policy of one direction group.
type DirectionConfig struct {
	Lanes            []int   `toml:"lanes"`
	Cap              int     `toml:"cap"`
	Speed            float64 `toml:"speed"`
	SpawnDistance    float64 `toml:"spawn_distance"`
	DespawnDistance  float64 `toml:"despawn_distance"`
	AheadMultiplier  float64 `toml:"ahead_multiplier"` // same-direction only
	Density          float64 `toml:"density"`
	MinSpawnInterval float64 `toml:"min_spawn_interval"`
	MaxSpawnInterval float64 `toml:"max_spawn_interval"`
	JitterMin        float64 `toml:"jitter_min"`
	JitterMax        float64 `toml:"jitter_max"`
}

// TrafficConfig holds both direction groups.
type TrafficConfig struct {
	Seed     uint64          `toml:"seed"`
	Incoming DirectionConfig `toml:"incoming"`
	Outgoing DirectionConfig `toml:"outgoing"`
}

// PlayerConfig drives locomotion.
type PlayerConfig struct {
	StartLane      int     `toml:"start_lane"`
	StartSpeed     float64 `toml:"start_speed"`
	MinSpeed       float64 `toml:"min_speed"`
	MaxSpeed       float64 `toml:"max_speed"`
	SpeedDelta     float64 `toml:"speed_delta"` // per tick while a pedal is held
	SpeedFactor    float64 `toml:"speed_factor"`
	LaneChangeRate float64 `toml:"lane_change_rate"` // lateral units per normalized frame
	MaxSteer       float64 `toml:"max_steer"`        // rad
	SteerOvershoot float64 `toml:"steer_overshoot"`  // rad
	MaxTilt        float64 `toml:"max_tilt"`         // rad
}

// CameraPreset is one named camera configuration.
type CameraPreset struct {
	Height      float64 `toml:"height"`
	Distance    float64 `toml:"distance"`
	FieldOfView float64 `toml:"fov"` // degrees
}

// CameraConfig blends between two presets around SpeedThreshold.
type CameraConfig struct {
	LowSpeed        CameraPreset `toml:"low_speed"`
	HighSpeed       CameraPreset `toml:"high_speed"`
	SpeedThreshold  float64      `toml:"speed_threshold"`
	BlendRate       float64      `toml:"blend_rate"`    // per-tick ratio
	PositionRate    float64      `toml:"position_rate"` // per-tick ratio
	LookAheadOffset float64      `toml:"look_ahead"`
}

// Config is shared by reference between the simulation and the tuning
// collaborator.
type Config struct {
	Road    RoadConfig    `toml:"road"`
	Lanes   LaneConfig    `toml:"lanes"`
	Traffic TrafficConfig `toml:"traffic"`
	Player  PlayerConfig  `toml:"player"`
	Camera  CameraConfig  `toml:"camera"`
}

func DefaultConfig() *Config {
	return &Config{
		Road: RoadConfig{
			Scale:           1.0,
			VisibleSegments: DefaultVisibleSegments,
		},
		Lanes: LaneConfig{AreaFraction: DefaultLaneFraction},
		Traffic: TrafficConfig{
			Seed: 0x5EED,
			Incoming: DirectionConfig{
				Lanes:            []int{0, 1},
				Cap:              DefaultTrafficCap,
				Speed:            0.9,
				SpawnDistance:    360,
				DespawnDistance:  60,
				AheadMultiplier:  1,
				Density:          0.6,
				MinSpawnInterval: 0.4,
				MaxSpawnInterval: 2.5,
				JitterMin:        0.8,
				JitterMax:        1.2,
			},
			Outgoing: DirectionConfig{
				Lanes:            []int{2, 3},
				Cap:              DefaultTrafficCap,
				Speed:            0.4,
				SpawnDistance:    300,
				DespawnDistance:  200,
				AheadMultiplier:  2,
				Density:          0.5,
				MinSpawnInterval: 0.8,
				MaxSpawnInterval: 3.5,
				JitterMin:        0.7,
				JitterMax:        1.3,
			},
		},
		Player: PlayerConfig{
			StartLane:      2,
			StartSpeed:     0.8,
			MinSpeed:       DefaultMinSpeed,
			MaxSpeed:       DefaultMaxSpeed,
			SpeedDelta:     0.01,
			SpeedFactor:    FrameNormalization,
			LaneChangeRate: 0.12,
			MaxSteer:       0.22,
			SteerOvershoot: 0.05,
			MaxTilt:        0.06,
		},
		Camera: CameraConfig{
			LowSpeed:        CameraPreset{Height: 3.2, Distance: 7.5, FieldOfView: 60},
			HighSpeed:       CameraPreset{Height: 2.4, Distance: 9.5, FieldOfView: 78},
			SpeedThreshold:  1.0,
			BlendRate:       0.04,
			PositionRate:    0.12,
			LookAheadOffset: 12,
		},
	}
}

// Validate checks the invariants the simulation assumes callers enforce.
func (c *Config) Validate() error {
	if c.Road.Scale <= 0 {
		return fmt.Errorf("%w: road scale %g must be positive", ErrInvalidConfig, c.Road.Scale)
	}
	if c.Road.VisibleSegments < 1 {
		return fmt.Errorf("%w: visible segments %d must be at least 1", ErrInvalidConfig, c.Road.VisibleSegments)
	}
	if c.Lanes.AreaFraction <= 0 || c.Lanes.AreaFraction > 1 {
		return fmt.Errorf("%w: lane area fraction %g outside (0,1]", ErrInvalidConfig, c.Lanes.AreaFraction)
	}
	if err := c.Traffic.Incoming.validate("incoming"); err != nil {
		return err
	}
	if err := c.Traffic.Outgoing.validate("outgoing"); err != nil {
		return err
	}
	for _, a := range c.Traffic.Incoming.Lanes {
		for _, b := range c.Traffic.Outgoing.Lanes {
			if a == b {
				return fmt.Errorf("%w: lane %d assigned to both directions", ErrInvalidConfig, a)
			}
		}
	}
	if out := c.Traffic.Outgoing; out.SpawnDistance >= out.AheadMultiplier*out.DespawnDistance {
		return fmt.Errorf("%w: outgoing spawn distance %g is beyond the ahead cutoff", ErrInvalidConfig, out.SpawnDistance)
	}
	p := c.Player
	if p.MinSpeed > p.MaxSpeed {
		return fmt.Errorf("%w: player min speed %g above max %g", ErrInvalidConfig, p.MinSpeed, p.MaxSpeed)
	}
	if p.StartLane < 0 || p.StartLane >= LaneCount {
		return fmt.Errorf("%w: player start lane %d", ErrInvalidConfig, p.StartLane)
	}
	if p.LaneChangeRate <= 0 {
		return fmt.Errorf("%w: lane change rate must be positive", ErrInvalidConfig)
	}
	return nil
}

func (d *DirectionConfig) validate(name string) error {
	if len(d.Lanes) == 0 {
		return fmt.Errorf("%w: %s lane subset is empty", ErrInvalidConfig, name)
	}
	seen := make(map[int]bool, len(d.Lanes))
	for _, l := range d.Lanes {
		if l < 0 || l >= LaneCount {
			return fmt.Errorf("%w: %s lane %d out of range", ErrInvalidConfig, name, l)
		}
		if seen[l] {
			return fmt.Errorf("%w: %s lane %d listed twice", ErrInvalidConfig, name, l)
		}
		seen[l] = true
	}
	if d.Cap < 1 {
		return fmt.Errorf("%w: %s cap %d must be at least 1", ErrInvalidConfig, name, d.Cap)
	}
	if d.Density < 0 || d.Density > 1 {
		return fmt.Errorf("%w: %s density %g outside [0,1]", ErrInvalidConfig, name, d.Density)
	}
	if d.MinSpawnInterval <= 0 || d.MinSpawnInterval > d.MaxSpawnInterval {
		return fmt.Errorf("%w: %s spawn interval [%g,%g]", ErrInvalidConfig, name, d.MinSpawnInterval, d.MaxSpawnInterval)
	}
	if d.JitterMin <= 0 || d.JitterMin > d.JitterMax {
		return fmt.Errorf("%w: %s jitter range [%g,%g]", ErrInvalidConfig, name, d.JitterMin, d.JitterMax)
	}
	if d.DespawnDistance <= 0 || d.AheadMultiplier <= 0 {
		return fmt.Errorf("%w: %s despawn distance and ahead multiplier must be positive", ErrInvalidConfig, name)
	}
	return nil
}
