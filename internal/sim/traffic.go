package sim

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// Direction is a traffic direction group.
type Direction int

const (
	Incoming Direction = iota // oncoming, moves toward +Z
	Outgoing                  // same way as the player, toward -Z
)

func (d Direction) String() string {
	if d == Incoming {
		return "incoming"
	}
	return "outgoing"
}

// sign is the longitudinal direction of motion.
func (d Direction) sign() float64 {
	if d == Incoming {
		return 1
	}
	return -1
}

// heading is the rest yaw of an agent; oncoming cars face the player.
func (d Direction) heading() float64 {
	if d == Incoming {
		return math.Pi
	}
	return 0
}

type TrafficAgent struct {
	Lane     int
	Dir      Direction
	Speed    float64
	Position float64 // longitudinal
	Yaw      float64 // offset from the rest heading
	Scale    float64
	Model    ModelID
	Handle   Handle
}

// spawnTimer is the per-direction spawn clock.
type spawnTimer struct {
	elapsed  float64
	interval float64
}

// TrafficSystem spawns, advances and culls agents of both direction groups.
type TrafficSystem struct {
	Agents []TrafficAgent

	cfg        *TrafficConfig
	scene      Scene
	lanes      *LaneGeometry
	archetypes Archetypes
	events     *EventBus
	rng        *Rand

	timers [2]spawnTimer

	// ScaleFactor multiplies agent speeds; the world keeps it at the road scale.
	ScaleFactor float64
}

func NewTrafficSystem(cfg *TrafficConfig, scene Scene, lanes *LaneGeometry, events *EventBus) *TrafficSystem {
	ts := &TrafficSystem{
		Agents:      make([]TrafficAgent, 0, cfg.Incoming.Cap+cfg.Outgoing.Cap),
		cfg:         cfg,
		scene:       scene,
		lanes:       lanes,
		events:      events,
		rng:         NewRand(cfg.Seed),
		ScaleFactor: 1,
	}
	ts.timers[Incoming].interval = ts.nextInterval(Incoming)
	ts.timers[Outgoing].interval = ts.nextInterval(Outgoing)
	return ts
}

// SetArchetypes is the ready signal for vehicle models.
func (ts *TrafficSystem) SetArchetypes(a Archetypes) {
	ts.archetypes = a
}

func (ts *TrafficSystem) config(d Direction) *DirectionConfig {
	if d == Incoming {
		return &ts.cfg.Incoming
	}
	return &ts.cfg.Outgoing
}

// Count returns the live population of a direction group.
func (ts *TrafficSystem) Count(d Direction) int {
	n := 0
	for i := range ts.Agents {
		if ts.Agents[i].Dir == d {
			n++
		}
	}
	return n
}

// Tick runs spawn, advance and despawn for one simulation step.
func (ts *TrafficSystem) Tick(dt, ref float64) {
	if dt <= 0 {
		return
	}
	for _, d := range [2]Direction{Incoming, Outgoing} {
		t := &ts.timers[d]
		t.elapsed += dt
		if t.elapsed >= t.interval {
			t.elapsed = 0
			t.interval = ts.nextInterval(d)
			ts.Spawn(d, ref)
		}
	}
	ts.Advance(dt)
	ts.Cull(ref)
}

// nextInterval draws the delay until the next spawn attempt.
func (ts *TrafficSystem) nextInterval(d Direction) float64 {
	c := ts.config(d)
	base := lerp(c.MaxSpawnInterval, c.MinSpawnInterval, clampF(c.Density, 0, 1))
	return base * ts.rng.RangeF(c.JitterMin, c.JitterMax)
}

// Spawn makes one spawn attempt for direction d. It reports whether an
// agent was placed.
func (ts *TrafficSystem) Spawn(d Direction, ref float64) bool {
	model, ok := ts.archetypes.Pick(ts.rng)
	if !ok {
		return false
	}
	c := ts.config(d)
	if ts.Count(d) >= c.Cap {
		ts.evictFarthest(d, ref)
	}

	spawnAt := ref - c.SpawnDistance
	candidates := make([]int, 0, len(c.Lanes))
	for _, lane := range c.Lanes {
		if ts.laneClear(lane, spawnAt) {
			candidates = append(candidates, lane)
		}
	}
	if len(candidates) == 0 {
		return false
	}

	lane := candidates[ts.rng.Intn(len(candidates))]
	a := TrafficAgent{
		Lane:     lane,
		Dir:      d,
		Speed:    c.Speed,
		Position: spawnAt,
		Scale:    ts.rng.RangeF(AgentScaleMin, AgentScaleMax),
		Model:    model,
	}
	a.Handle = ts.scene.Create(model, ts.transform(&a))
	ts.Agents = append(ts.Agents, a)
	ts.events.Emit(Event{Type: EventAgentSpawned, Position: spawnAt, Lane: lane, Dir: d})
	return true
}

// laneClear reports whether no agent on lane sits within the safe window
// around pos.
func (ts *TrafficSystem) laneClear(lane int, pos float64) bool {
	for i := range ts.Agents {
		a := &ts.Agents[i]
		if a.Lane == lane && math.Abs(a.Position-pos) < SafeSpawnDistance {
			return false
		}
	}
	return true
}

// evictFarthest removes the single agent of d farthest from ref in the
// away sense: farthest ahead for oncoming traffic, farthest behind for
// same-direction traffic.
func (ts *TrafficSystem) evictFarthest(d Direction, ref float64) {
	best := -1
	bestDist := math.Inf(-1)
	for i := range ts.Agents {
		a := &ts.Agents[i]
		if a.Dir != d {
			continue
		}
		var dist float64
		if d == Incoming {
			dist = ref - a.Position
		} else {
			dist = a.Position - ref
		}
		if dist > bestDist {
			bestDist = dist
			best = i
		}
	}
	if best < 0 {
		return
	}
	pos, lane := ts.Agents[best].Position, ts.Agents[best].Lane
	ts.remove(best)
	ts.events.Emit(Event{Type: EventAgentEvicted, Position: pos, Lane: lane, Dir: d})
}

// Advance moves every agent along its direction. The occasional heading
// nudge is cosmetic and leaves the longitudinal step untouched.
func (ts *TrafficSystem) Advance(dt float64) {
	for i := range ts.Agents {
		a := &ts.Agents[i]
		a.Position += a.Dir.sign() * a.Speed * ts.ScaleFactor * dt * FrameNormalization
		if ts.rng.Float64() < HeadingNudgeChance {
			a.Yaw = ts.rng.RangeF(-HeadingNudgeMax, HeadingNudgeMax)
		}
		ts.scene.SetTransform(a.Handle, ts.transform(a))
	}
}

// Cull removes agents outside their despawn window.
func (ts *TrafficSystem) Cull(ref float64) {
	for i := 0; i < len(ts.Agents); {
		a := &ts.Agents[i]
		if ts.outOfRange(a, ref) {
			pos, lane, d := a.Position, a.Lane, a.Dir
			ts.remove(i)
			ts.events.Emit(Event{Type: EventAgentDespawned, Position: pos, Lane: lane, Dir: d})
			continue
		}
		i++
	}
}

func (ts *TrafficSystem) outOfRange(a *TrafficAgent, ref float64) bool {
	c := ts.config(a.Dir)
	if a.Position > ref+c.DespawnDistance {
		return true
	}
	if a.Dir == Outgoing && a.Position < ref-c.AheadMultiplier*c.DespawnDistance {
		return true
	}
	return false
}

// remove destroys agent i using swap-remove.
func (ts *TrafficSystem) remove(i int) {
	ts.scene.Destroy(ts.Agents[i].Handle)
	last := len(ts.Agents) - 1
	ts.Agents[i] = ts.Agents[last]
	ts.Agents = ts.Agents[:last]
}

// Reset drops every agent, reseeds from the configured seed and restarts
// both spawn clocks.
func (ts *TrafficSystem) Reset() {
	for i := range ts.Agents {
		ts.scene.Destroy(ts.Agents[i].Handle)
	}
	ts.Agents = ts.Agents[:0]
	ts.rng = NewRand(ts.cfg.Seed)
	for _, d := range [2]Direction{Incoming, Outgoing} {
		ts.timers[d] = spawnTimer{interval: ts.nextInterval(d)}
	}
}

// Conform brings live agents back inside the configured lane subsets and
// caps. Agents on a lane their group no longer owns go first, then the
// farthest agents are evicted until each group fits its cap.
func (ts *TrafficSystem) Conform(ref float64) {
	for i := 0; i < len(ts.Agents); {
		a := &ts.Agents[i]
		if !slices.Contains(ts.config(a.Dir).Lanes, a.Lane) {
			pos, lane, d := a.Position, a.Lane, a.Dir
			ts.remove(i)
			ts.events.Emit(Event{Type: EventAgentEvicted, Position: pos, Lane: lane, Dir: d})
			continue
		}
		i++
	}
	for _, d := range [2]Direction{Incoming, Outgoing} {
		for ts.Count(d) > max(ts.config(d).Cap, 0) {
			ts.evictFarthest(d, ref)
		}
	}
}

// Relayout re-applies lateral placement after lane geometry changed.
func (ts *TrafficSystem) Relayout() {
	for i := range ts.Agents {
		ts.scene.SetTransform(ts.Agents[i].Handle, ts.transform(&ts.Agents[i]))
	}
}

func (ts *TrafficSystem) transform(a *TrafficAgent) Transform {
	return Transform{
		Position: mgl64.Vec3{ts.lanes.Offset(a.Lane), 0, a.Position},
		Yaw:      a.Dir.heading() + a.Yaw,
		Scale:    a.Scale * ts.ScaleFactor,
	}
}
