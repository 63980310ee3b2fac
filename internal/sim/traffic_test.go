package sim

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTraffic(cfg *TrafficConfig) (*TrafficSystem, *testScene) {
	scene := newTestScene()
	lanes := NewLaneGeometry(14, DefaultLaneFraction)
	ts := NewTrafficSystem(cfg, scene, lanes, NewEventBus())
	ts.SetArchetypes(Archetypes{1, 2, 3})
	return ts, scene
}

func addAgent(ts *TrafficSystem, d Direction, lane int, pos float64) Handle {
	a := TrafficAgent{Lane: lane, Dir: d, Speed: ts.config(d).Speed, Position: pos, Scale: 1, Model: 1}
	a.Handle = ts.scene.Create(a.Model, ts.transform(&a))
	ts.Agents = append(ts.Agents, a)
	return a.Handle
}

func TestTrafficPopulationAndLanes(t *testing.T) {
	cfg := DefaultConfig().Traffic
	cfg.Incoming.Cap = 4
	cfg.Outgoing.Cap = 3
	cfg.Incoming.Density = 1
	cfg.Outgoing.Density = 1
	cfg.Incoming.MinSpawnInterval = 0.05
	cfg.Outgoing.MinSpawnInterval = 0.05
	ts, scene := newTestTraffic(&cfg)

	const dt = 1.0 / 60
	ref := 0.0
	for i := 0; i < 6000; i++ {
		ref -= 0.8 * FrameNormalization * dt
		ts.Tick(dt, ref)

		require.LessOrEqual(t, ts.Count(Incoming), cfg.Incoming.Cap)
		require.LessOrEqual(t, ts.Count(Outgoing), cfg.Outgoing.Cap)
		for _, a := range ts.Agents {
			own := ts.config(a.Dir).Lanes
			require.True(t, slices.Contains(own, a.Lane), "agent lane %d not in %s subset", a.Lane, a.Dir)
			other := cfg.Outgoing.Lanes
			if a.Dir == Outgoing {
				other = cfg.Incoming.Lanes
			}
			require.False(t, slices.Contains(other, a.Lane))
		}
		require.Len(t, scene.live, len(ts.Agents))
	}
	assert.Positive(t, scene.created)
}

func TestTrafficEvictsFarthestAtCap(t *testing.T) {
	cfg := DefaultConfig().Traffic
	ts, scene := newTestTraffic(&cfg)
	ref := 0.0
	spawnAt := ref - cfg.Incoming.SpawnDistance

	// 30 oncoming agents spread between the spawn window and the player.
	var farthest Handle
	for i := 0; i < cfg.Incoming.Cap; i++ {
		pos := spawnAt + SafeSpawnDistance + 1 + float64(i)*10
		h := addAgent(ts, Incoming, cfg.Incoming.Lanes[i%2], pos)
		if i == 0 {
			farthest = h
		}
	}
	require.Equal(t, 30, ts.Count(Incoming))

	require.True(t, ts.Spawn(Incoming, ref))
	assert.Equal(t, 30, ts.Count(Incoming))
	assert.NotContains(t, scene.live, farthest)
	for _, a := range ts.Agents {
		assert.NotEqual(t, farthest, a.Handle)
	}
}

func TestTrafficEvictsFarthestBehindForOutgoing(t *testing.T) {
	cfg := DefaultConfig().Traffic
	cfg.Outgoing.Cap = 3
	ts, scene := newTestTraffic(&cfg)

	addAgent(ts, Outgoing, 2, -50)
	behind := addAgent(ts, Outgoing, 3, 120)
	addAgent(ts, Outgoing, 2, -10)

	require.True(t, ts.Spawn(Outgoing, 0))
	assert.Equal(t, 3, ts.Count(Outgoing))
	assert.NotContains(t, scene.live, behind)
}

func TestTrafficSkipsWhenNoSafeLane(t *testing.T) {
	cfg := DefaultConfig().Traffic
	ts, _ := newTestTraffic(&cfg)
	spawnAt := -cfg.Incoming.SpawnDistance
	addAgent(ts, Incoming, 0, spawnAt+2)
	addAgent(ts, Incoming, 1, spawnAt-3)

	assert.False(t, ts.Spawn(Incoming, 0))
	assert.Equal(t, 2, ts.Count(Incoming))

	t.Run("picks the free lane", func(t *testing.T) {
		ts.Agents[1].Position = spawnAt - SafeSpawnDistance - 1
		require.True(t, ts.Spawn(Incoming, 0))
		last := ts.Agents[len(ts.Agents)-1]
		assert.Equal(t, 1, last.Lane)
		assert.Equal(t, spawnAt, last.Position)
		assert.Equal(t, cfg.Incoming.Speed, last.Speed)
		assert.GreaterOrEqual(t, last.Scale, AgentScaleMin)
		assert.LessOrEqual(t, last.Scale, AgentScaleMax)
	})
}

func TestTrafficSpawnWithoutArchetypes(t *testing.T) {
	cfg := DefaultConfig().Traffic
	ts, scene := newTestTraffic(&cfg)
	ts.SetArchetypes(nil)
	assert.False(t, ts.Spawn(Incoming, 0))
	for i := 0; i < 600; i++ {
		ts.Tick(1.0/60, 0)
	}
	assert.Empty(t, ts.Agents)
	assert.Zero(t, scene.created)

	t.Run("no eviction at cap", func(t *testing.T) {
		cfg.Outgoing.Cap = 2
		addAgent(ts, Outgoing, 2, -10)
		addAgent(ts, Outgoing, 3, 50)
		assert.False(t, ts.Spawn(Outgoing, 0))
		assert.Equal(t, 2, ts.Count(Outgoing))
	})
}

func TestTrafficDespawn(t *testing.T) {
	cfg := DefaultConfig().Traffic
	ts, _ := newTestTraffic(&cfg)
	ref := -1000.0
	in, out := cfg.Incoming.DespawnDistance, cfg.Outgoing.DespawnDistance

	goneIn := addAgent(ts, Incoming, 0, ref+in+1)
	keepInAhead := addAgent(ts, Incoming, 1, ref-10*in)
	goneOutAhead := addAgent(ts, Outgoing, 2, ref-2*out-1)
	keepOutAhead := addAgent(ts, Outgoing, 3, ref-2*out+1)
	goneOutBehind := addAgent(ts, Outgoing, 2, ref+out+1)
	keepOutBehind := addAgent(ts, Outgoing, 3, ref+out-1)

	ts.Cull(ref)

	live := make(map[Handle]bool)
	for _, a := range ts.Agents {
		live[a.Handle] = true
	}
	assert.False(t, live[goneIn])
	assert.False(t, live[goneOutAhead])
	assert.False(t, live[goneOutBehind])
	assert.True(t, live[keepInAhead])
	assert.True(t, live[keepOutAhead])
	assert.True(t, live[keepOutBehind])
}

func TestTrafficAdvance(t *testing.T) {
	cfg := DefaultConfig().Traffic
	ts, scene := newTestTraffic(&cfg)
	hIn := addAgent(ts, Incoming, 0, 0)
	hOut := addAgent(ts, Outgoing, 2, 0)

	const dt = 1.0 / 60
	const ticks = 600
	for i := 0; i < ticks; i++ {
		ts.Advance(dt)
	}
	for _, a := range ts.Agents {
		step := a.Speed * dt * FrameNormalization * ticks
		switch a.Handle {
		case hIn:
			assert.InDelta(t, step, a.Position, 1e-6)
		case hOut:
			assert.InDelta(t, -step, a.Position, 1e-6)
		}
		assert.LessOrEqual(t, a.Yaw, HeadingNudgeMax)
		assert.GreaterOrEqual(t, a.Yaw, -HeadingNudgeMax)
		assert.InDelta(t, a.Position, scene.live[a.Handle].Position.Z(), 1e-9)
	}
}

func TestTrafficSpawnInterval(t *testing.T) {
	cfg := DefaultConfig().Traffic
	ts, _ := newTestTraffic(&cfg)
	for _, d := range []Direction{Incoming, Outgoing} {
		c := ts.config(d)
		base := lerp(c.MaxSpawnInterval, c.MinSpawnInterval, c.Density)
		for i := 0; i < 200; i++ {
			v := ts.nextInterval(d)
			require.GreaterOrEqual(t, v, base*c.JitterMin)
			require.LessOrEqual(t, v, base*c.JitterMax)
		}
	}

	t.Run("full density uses the minimum", func(t *testing.T) {
		cfg.Incoming.Density = 1
		v := ts.nextInterval(Incoming)
		assert.LessOrEqual(t, v, cfg.Incoming.MinSpawnInterval*cfg.Incoming.JitterMax)
	})
}

func TestTrafficReset(t *testing.T) {
	cfg := DefaultConfig().Traffic
	ts, scene := newTestTraffic(&cfg)
	addAgent(ts, Incoming, 0, -10)
	addAgent(ts, Outgoing, 3, -20)
	ts.Reset()
	assert.Empty(t, ts.Agents)
	assert.Empty(t, scene.live)
}

func TestTrafficResetReseeds(t *testing.T) {
	cfgA := DefaultConfig().Traffic
	a, _ := newTestTraffic(&cfgA)
	cfgB := DefaultConfig().Traffic
	cfgB.Seed = 99
	b, _ := newTestTraffic(&cfgB)

	const dt = 1.0 / 60
	for i := 0; i < 300; i++ {
		b.Tick(dt, 0)
	}
	cfgB.Seed = cfgA.Seed
	a.Reset()
	b.Reset()

	ref := 0.0
	for i := 0; i < 1200; i++ {
		ref -= 0.8 * FrameNormalization * dt
		a.Tick(dt, ref)
		b.Tick(dt, ref)
	}
	require.NotEmpty(t, a.Agents)
	require.Len(t, b.Agents, len(a.Agents))
	for i := range a.Agents {
		x, y := a.Agents[i], b.Agents[i]
		x.Handle, y.Handle = 0, 0
		assert.Equal(t, x, y)
	}
}

func TestTrafficConform(t *testing.T) {
	cfg := DefaultConfig().Traffic
	ts, scene := newTestTraffic(&cfg)
	for i := 0; i < 5; i++ {
		addAgent(ts, Incoming, i%2, -float64(20*i))
	}
	addAgent(ts, Outgoing, 2, -30)
	addAgent(ts, Outgoing, 3, 40)

	evicted := 0
	ts.events.Subscribe(EventAgentEvicted, func(Event) { evicted++ })

	cfg.Incoming.Cap = 2
	cfg.Outgoing.Lanes = []int{3}
	ts.Conform(0)

	assert.Equal(t, 2, ts.Count(Incoming))
	assert.Equal(t, 1, ts.Count(Outgoing))
	assert.Equal(t, 4, evicted)
	assert.Len(t, scene.live, len(ts.Agents))
	for _, a := range ts.Agents {
		if a.Dir == Incoming {
			// Farthest ahead went first; the two nearest stay.
			assert.GreaterOrEqual(t, a.Position, -20.0)
		} else {
			assert.Equal(t, 3, a.Lane)
		}
	}
}
