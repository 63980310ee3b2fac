package sim

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/toml"
)

// LoadConfig reads a TOML tuning file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return finishConfig(cfg, md)
}

// ParseConfig is LoadConfig for in-memory TOML.
func ParseConfig(data string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return finishConfig(cfg, md)
}

func finishConfig(cfg *Config, md toml.MetaData) (*Config, error) {
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("%w: unknown keys %v", ErrInvalidConfig, keys)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Tuner is the surface exposed to live tuning panels and hotkeys. Setters
// that change the segment length or window size reset the world.
type Tuner struct {
	w *World
}

func (w *World) Tuner() *Tuner { return &Tuner{w: w} }

func (t *Tuner) RoadScale() float64 { return t.w.Config.Road.Scale }

func (t *Tuner) SetRoadScale(v float64) error {
	if v <= 0 {
		return fmt.Errorf("%w: road scale %g must be positive", ErrInvalidConfig, v)
	}
	if v == t.w.Config.Road.Scale {
		return nil
	}
	t.w.Config.Road.Scale = v
	t.w.Log.Info("road scale changed", "scale", v)
	t.w.Reset()
	return nil
}

func (t *Tuner) VisibleSegments() int { return t.w.Config.Road.VisibleSegments }

func (t *Tuner) SetVisibleSegments(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: visible segments %d must be at least 1", ErrInvalidConfig, n)
	}
	if n == t.w.Config.Road.VisibleSegments {
		return nil
	}
	t.w.Config.Road.VisibleSegments = n
	t.w.Log.Info("visible segments changed", "segments", n)
	t.w.Reset()
	return nil
}

func (t *Tuner) LaneAreaFraction() float64 { return t.w.Config.Lanes.AreaFraction }

// SetLaneAreaFraction only re-lays lanes; segments stay in place.
func (t *Tuner) SetLaneAreaFraction(f float64) error {
	if f <= 0 || f > 1 {
		return fmt.Errorf("%w: lane area fraction %g outside (0,1]", ErrInvalidConfig, f)
	}
	t.w.Config.Lanes.AreaFraction = f
	t.w.rebuildLanes()
	return nil
}

func (t *Tuner) direction(d Direction) *DirectionConfig {
	if d == Incoming {
		return &t.w.Config.Traffic.Incoming
	}
	return &t.w.Config.Traffic.Outgoing
}

func (t *Tuner) Density(d Direction) float64 { return t.direction(d).Density }

func (t *Tuner) SetDensity(d Direction, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: %s density %g outside [0,1]", ErrInvalidConfig, d, v)
	}
	t.direction(d).Density = v
	return nil
}

func (t *Tuner) TrafficSpeed(d Direction) float64 { return t.direction(d).Speed }

// SetTrafficSpeed affects agents spawned from now on.
func (t *Tuner) SetTrafficSpeed(d Direction, v float64) error {
	if v < 0 {
		return fmt.Errorf("%w: %s speed %g is negative", ErrInvalidConfig, d, v)
	}
	t.direction(d).Speed = v
	return nil
}

func (t *Tuner) SpawnInterval(d Direction) (min, max float64) {
	c := t.direction(d)
	return c.MinSpawnInterval, c.MaxSpawnInterval
}

func (t *Tuner) SetSpawnInterval(d Direction, min, max float64) error {
	if min <= 0 || min > max {
		return fmt.Errorf("%w: %s spawn interval [%g,%g]", ErrInvalidConfig, d, min, max)
	}
	c := t.direction(d)
	c.MinSpawnInterval, c.MaxSpawnInterval = min, max
	return nil
}

func (t *Tuner) PlayerSpeedBounds() (min, max float64) {
	return t.w.Config.Player.MinSpeed, t.w.Config.Player.MaxSpeed
}

func (t *Tuner) SetPlayerSpeedBounds(min, max float64) error {
	if min < 0 || min > max {
		return fmt.Errorf("%w: player speed bounds [%g,%g]", ErrInvalidConfig, min, max)
	}
	t.w.Config.Player.MinSpeed, t.w.Config.Player.MaxSpeed = min, max
	t.w.Player.Speed = clampF(t.w.Player.Speed, min, max)
	return nil
}

// Apply replaces the whole configuration. The world resets only when a
// reset-bound field changed; a new traffic seed restarts traffic, and new
// caps or lane subsets trim the live agents to fit.
func (t *Tuner) Apply(next *Config) error {
	if err := next.Validate(); err != nil {
		return err
	}
	cur := t.w.Config
	needsReset := next.Road.Scale != cur.Road.Scale ||
		next.Road.VisibleSegments != cur.Road.VisibleSegments
	reseed := next.Traffic.Seed != cur.Traffic.Seed
	conform := !sameSpawnLimits(&cur.Traffic.Incoming, &next.Traffic.Incoming) ||
		!sameSpawnLimits(&cur.Traffic.Outgoing, &next.Traffic.Outgoing)

	*cur = *next
	cur.Traffic.Incoming.Lanes = slices.Clone(next.Traffic.Incoming.Lanes)
	cur.Traffic.Outgoing.Lanes = slices.Clone(next.Traffic.Outgoing.Lanes)

	switch {
	case needsReset:
		t.w.Reset()
	case reseed:
		t.w.rebuildLanes()
		t.w.Traffic.Reset()
	default:
		t.w.rebuildLanes()
		if conform {
			t.w.Traffic.Conform(t.w.Player.Position)
		}
	}
	t.w.Log.Info("tuning applied", "reset", needsReset, "reseed", reseed, "conform", conform)
	return nil
}

func sameSpawnLimits(a, b *DirectionConfig) bool {
	return a.Cap == b.Cap && slices.Equal(a.Lanes, b.Lanes)
}
