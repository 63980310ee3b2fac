package fx

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"highway/internal/sim"
)

const (
	MaxTrailMarks  = 2048
	TrailSpacing   = 0.6 // world units of travel between mark pairs
	TrailLife      = 2.5 // seconds
	TrailBaseAlpha = 0.25
	TrailSteerGain = 3.0 // extra alpha per radian of yaw

	RearAxle  = 1.4 // behind the body centre
	HalfTrack = 0.75
	MarkSize  = 0.35
)

// Mark is one tire print on the road surface.
type Mark struct {
	Pos   mgl64.Vec3
	Age   float64
	Alpha float64 // at birth
}

// Trails is a bounded ring of tire marks fed from the final player pose.
type Trails struct {
	Max    int
	M      []Mark
	ovrIdx int // circular overwrite index when full

	last    mgl64.Vec3
	hasLast bool
	travel  float64
}

func NewTrails(maxMarks int) *Trails {
	if maxMarks <= 0 {
		maxMarks = MaxTrailMarks
	}
	return &Trails{
		Max: maxMarks,
		M:   make([]Mark, 0, maxMarks),
	}
}

func (t *Trails) Clear() {
	t.M = t.M[:0]
	t.ovrIdx = 0
	t.hasLast = false
	t.travel = 0
}

func (t *Trails) Add(m Mark) {
	if len(t.M) < t.Max {
		t.M = append(t.M, m)
		return
	}
	if t.ovrIdx >= t.Max {
		t.ovrIdx = 0
	}
	t.M[t.ovrIdx] = m
	t.ovrIdx++
}

// Emit drops a pair of marks under the rear wheels for every TrailSpacing
// the pose has moved since the last call.
func (t *Trails) Emit(pose sim.Transform) int {
	if !t.hasLast {
		t.last = pose.Position
		t.hasLast = true
		return 0
	}
	t.travel += pose.Position.Sub(t.last).Len()
	t.last = pose.Position

	added := 0
	if t.travel < TrailSpacing {
		return 0
	}
	t.travel = math.Mod(t.travel, TrailSpacing)

	left, right := WheelPositions(pose)
	a := math.Min(1, TrailBaseAlpha+math.Abs(pose.Yaw)*TrailSteerGain)
	for _, p := range [2]mgl64.Vec3{left, right} {
		t.Add(Mark{Pos: p, Alpha: a})
		added++
	}
	return added
}

// WheelPositions returns the rear wheel contact points. Yaw 0 faces -Z and
// positive yaw turns toward +X.
func WheelPositions(pose sim.Transform) (left, right mgl64.Vec3) {
	s := pose.Scale
	if s == 0 {
		s = 1
	}
	sin, cos := math.Sincos(pose.Yaw)
	fwd := mgl64.Vec3{sin, 0, -cos}
	side := mgl64.Vec3{cos, 0, sin}
	rear := pose.Position.Sub(fwd.Mul(RearAxle * s))
	rear[1] = 0
	left = rear.Sub(side.Mul(HalfTrack * s))
	right = rear.Add(side.Mul(HalfTrack * s))
	return left, right
}

// Update ages marks and drops the expired ones.
func (t *Trails) Update(dt float64) {
	if dt <= 0 {
		return
	}
	kept := t.M[:0]
	for _, m := range t.M {
		m.Age += dt
		if m.Age < TrailLife {
			kept = append(kept, m)
		}
	}
	t.M = kept
	if t.ovrIdx > len(t.M) {
		t.ovrIdx = 0
	}
}

// RenderData appends [x, y, z, size, alpha] per visible mark.
func (t *Trails) RenderData(buf []float32) []float32 {
	buf = buf[:0]
	for _, m := range t.M {
		a := m.Alpha * (1 - m.Age/TrailLife)
		if a <= 0 {
			continue
		}
		buf = append(buf,
			float32(m.Pos.X()), float32(m.Pos.Y())+0.01, float32(m.Pos.Z()),
			MarkSize, float32(a))
	}
	return buf
}
