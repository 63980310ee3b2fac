package sim

import (
	"cmp"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// RoadSegment is one placed road piece. Positions are Slot*L, so a run of
// consecutive slots is contiguous by construction.
type RoadSegment struct {
	Slot     int
	Position float64
	Handle   Handle
}

// RoadStreamer keeps a contiguous window of segments around the reference
// position. Segments are ordered by position, descending: index 0 is the
// most-behind piece, the last one is the most-ahead.
type RoadStreamer struct {
	cfg   *RoadConfig
	scene Scene

	asset  RoadAsset
	ready  bool
	length float64 // L; zero until the road asset is loaded

	segments []RoadSegment
}

func NewRoadStreamer(cfg *RoadConfig, scene Scene) *RoadStreamer {
	return &RoadStreamer{
		cfg:      cfg,
		scene:    scene,
		segments: make([]RoadSegment, 0, cfg.VisibleSegments+2),
	}
}

// SetAsset is the ready signal from asset loading. It does not touch the
// placed segments; callers follow up with Reset.
func (rs *RoadStreamer) SetAsset(a RoadAsset) {
	rs.asset = a
	rs.ready = true
	rs.length = a.Extent.Length * rs.cfg.Scale
}

func (rs *RoadStreamer) Ready() bool { return rs.ready && rs.length > 0 }

// SegmentLength returns L, or zero while not ready.
func (rs *RoadStreamer) SegmentLength() float64 { return rs.length }

// Width is the scaled road width shared with the lane geometry.
func (rs *RoadStreamer) Width() float64 {
	if !rs.ready || rs.asset.Extent.Width <= 0 {
		return DefaultRoadWidth * rs.cfg.Scale
	}
	return rs.asset.Extent.Width * rs.cfg.Scale
}

// Counts splits the visible-segment budget into ahead and behind parts.
func (rs *RoadStreamer) Counts() (forward, backward int) {
	n := rs.cfg.VisibleSegments
	if n < 1 {
		n = 1
	}
	forward = n * ForwardSharePercent / 100
	return forward, n - forward
}

// Segments returns the live window, most-behind first.
func (rs *RoadStreamer) Segments() []RoadSegment { return rs.segments }

func (rs *RoadStreamer) Len() int { return len(rs.segments) }

// Resync adds and removes segments so the window matches ref. It is a no-op
// until the segment length is known.
func (rs *RoadStreamer) Resync(ref float64) {
	if !rs.Ready() {
		return
	}
	L := rs.length
	fwd, back := rs.Counts()
	forwardBound := ref - float64(fwd)*L
	backwardBound := ref + float64(back)*L
	minSlot := int(math.Ceil(forwardBound/L - slotEpsilon))
	maxSlot := int(math.Floor(backwardBound/L + slotEpsilon))

	// Drop pieces that fell out behind, then ahead.
	drop := 0
	for drop < len(rs.segments) && rs.segments[drop].Slot > maxSlot {
		rs.scene.Destroy(rs.segments[drop].Handle)
		drop++
	}
	if drop > 0 {
		rs.segments = slices.Delete(rs.segments, 0, drop)
	}
	for len(rs.segments) > 0 && rs.segments[len(rs.segments)-1].Slot < minSlot {
		rs.scene.Destroy(rs.segments[len(rs.segments)-1].Handle)
		rs.segments = rs.segments[:len(rs.segments)-1]
	}

	slices.SortFunc(rs.segments, func(a, b RoadSegment) int {
		return cmp.Compare(b.Slot, a.Slot)
	})

	if len(rs.segments) == 0 {
		seed := clamp(int(math.Round(ref/L)), minSlot, maxSlot)
		rs.segments = append(rs.segments, rs.place(seed))
	}

	// Extend ahead (decreasing slots) from the front-most piece.
	for s := rs.segments[len(rs.segments)-1].Slot - 1; s >= minSlot; s-- {
		rs.segments = append(rs.segments, rs.place(s))
	}
	// Extend behind (increasing slots) from the back-most piece.
	var behind []RoadSegment
	for s := rs.segments[0].Slot + 1; s <= maxSlot; s++ {
		behind = append(behind, rs.place(s))
	}
	if len(behind) > 0 {
		slices.Reverse(behind)
		rs.segments = slices.Insert(rs.segments, 0, behind...)
	}
}

// Reset drops every segment, recomputes L from the asset and the current
// scale, and rebuilds the initial window around ref.
func (rs *RoadStreamer) Reset(ref float64) {
	rs.Clear()
	if rs.ready {
		rs.length = rs.asset.Extent.Length * rs.cfg.Scale
	}
	rs.Resync(ref)
}

// Clear destroys all placed instances.
func (rs *RoadStreamer) Clear() {
	for _, s := range rs.segments {
		rs.scene.Destroy(s.Handle)
	}
	rs.segments = rs.segments[:0]
}

func (rs *RoadStreamer) place(slot int) RoadSegment {
	pos := float64(slot) * rs.length
	h := rs.scene.Create(rs.asset.Model, Transform{
		Position: mgl64.Vec3{0, 0, pos},
		Scale:    rs.cfg.Scale,
	})
	return RoadSegment{Slot: slot, Position: pos, Handle: h}
}
