package sim

// LaneGeometry maps lane indices to lateral world offsets. Offsets are
// cached and only recomputed by Rebuild when road width or the usable
// fraction change.
type LaneGeometry struct {
	width    float64
	fraction float64
	offsets  [LaneCount]float64
}

func NewLaneGeometry(roadWidth, fraction float64) *LaneGeometry {
	g := &LaneGeometry{}
	g.Rebuild(roadWidth, fraction)
	return g
}

// LaneOffset is the pure mapping: lanes split the usable part of the road
// into equal strips, centred on the road axis.
func LaneOffset(lane int, roadWidth, fraction float64) float64 {
	usable := roadWidth * fraction
	laneWidth := usable / LaneCount
	return -usable*0.5 + laneWidth*(float64(lane)+0.5)
}

func (g *LaneGeometry) Rebuild(roadWidth, fraction float64) {
	g.width = roadWidth
	g.fraction = fraction
	for i := range g.offsets {
		g.offsets[i] = LaneOffset(i, roadWidth, fraction)
	}
}

// Offset returns the lateral offset of lane, clamped to the valid range.
func (g *LaneGeometry) Offset(lane int) float64 {
	return g.offsets[clamp(lane, 0, LaneCount-1)]
}

func (g *LaneGeometry) Width() float64    { return g.width }
func (g *LaneGeometry) Fraction() float64 { return g.fraction }

// LaneWidth is the lateral size of a single lane.
func (g *LaneGeometry) LaneWidth() float64 {
	return g.width * g.fraction / LaneCount
}
