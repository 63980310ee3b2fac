//go:build !android

package game

import (
	"github.com/go-gl/mathgl/mgl32"

	"highway/internal/scene"
	"highway/internal/sim"
)

// GroundSize is the footprint of the verge plane that follows the player.
const GroundSize = 1600.0

// DrawGround draws a flat verge under the road, centred on the player.
func (r *Renderer) DrawGround(player mgl32.Vec3) {
	r.DrawBox(mgl32.Vec3{player[0], -0.3, player[2]}, mgl32.Vec3{GroundSize, 0.2, GroundSize}, Palette.Ground)
}

// DrawLanePaint dashes the lane boundaries along every live segment.
// Paint is not a scene instance; it follows segments and lane geometry.
func (r *Renderer) DrawLanePaint(road *sim.RoadStreamer, lanes *sim.LaneGeometry) {
	L := road.SegmentLength()
	if L <= 0 {
		return
	}
	half := lanes.LaneWidth() * 0.5
	dashes := max(1, int(L/(MarkingDash*2)))
	step := L / float64(dashes)
	size := mgl32.Vec3{MarkingWidth, MarkingHeight, MarkingDash}

	for _, seg := range road.Segments() {
		start := seg.Position - L*0.5 + step*0.5
		for d := 0; d < dashes; d++ {
			z := float32(start + float64(d)*step)
			for lane := 0; lane < sim.LaneCount-1; lane++ {
				x := float32(lanes.Offset(lane) + half)
				r.DrawBox(mgl32.Vec3{x, MarkingHeight * 0.5, z}, size, Palette.Marking)
			}
		}
		// Solid edge lines.
		edge := float32(lanes.Offset(0) - half)
		for _, x := range [2]float32{edge, -edge} {
			r.DrawBox(mgl32.Vec3{x, MarkingHeight * 0.5, float32(seg.Position)},
				mgl32.Vec3{MarkingWidth, MarkingHeight, float32(L)}, Palette.Marking)
		}
	}
}

// ViewRect is the ground rectangle worth drawing around the reference
// position: the streamed window plus the traffic spawn horizon.
func ViewRect(w *sim.World) scene.RectF {
	ref := w.Player.Position
	L := w.Road.SegmentLength()
	fwd, back := w.Road.Counts()
	ahead := max(float64(fwd+1)*L, w.Config.Traffic.Incoming.SpawnDistance, w.Config.Traffic.Outgoing.SpawnDistance)
	behind := float64(back+1) * L
	hw := w.Road.Width()
	return scene.RectF{X0: -hw, Y0: ref - ahead, X1: hw, Y1: ref + behind}
}
