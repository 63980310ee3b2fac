package assets

import (
	"math"

	"highway/internal/sim"
)

// FloatsPerVertex is position (3) + normal (3).
const FloatsPerVertex = 6

// Mesh is an interleaved triangle list ready for upload.
type Mesh struct {
	Name     string
	Vertices []float32
	Color    [3]float32
	Bounds   sim.Extent
}

func (m *Mesh) VertexCount() int { return len(m.Vertices) / FloatsPerVertex }

// box is an axis-aligned part of a model, centred on (cx, cy, cz).
type box struct {
	cx, cy, cz float64
	w, h, l    float64
}

var faceNormals = [6][3]float32{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// appendBox emits 12 triangles.
func appendBox(dst []float32, b box) []float32 {
	x0, x1 := float32(b.cx-b.w/2), float32(b.cx+b.w/2)
	y0, y1 := float32(b.cy-b.h/2), float32(b.cy+b.h/2)
	z0, z1 := float32(b.cz-b.l/2), float32(b.cz+b.l/2)

	faces := [6][4][3]float32{
		{{x1, y0, z1}, {x1, y0, z0}, {x1, y1, z0}, {x1, y1, z1}},
		{{x0, y0, z0}, {x0, y0, z1}, {x0, y1, z1}, {x0, y1, z0}},
		{{x0, y1, z1}, {x1, y1, z1}, {x1, y1, z0}, {x0, y1, z0}},
		{{x0, y0, z0}, {x1, y0, z0}, {x1, y0, z1}, {x0, y0, z1}},
		{{x0, y0, z1}, {x1, y0, z1}, {x1, y1, z1}, {x0, y1, z1}},
		{{x1, y0, z0}, {x0, y0, z0}, {x0, y1, z0}, {x1, y1, z0}},
	}
	for f, q := range faces {
		n := faceNormals[f]
		for _, idx := range [6]int{0, 1, 2, 0, 2, 3} {
			p := q[idx]
			dst = append(dst, p[0], p[1], p[2], n[0], n[1], n[2])
		}
	}
	return dst
}

// bounds measures the vertex positions.
func bounds(verts []float32) sim.Extent {
	if len(verts) == 0 {
		return sim.Extent{}
	}
	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := 0; i+2 < len(verts); i += FloatsPerVertex {
		for k := 0; k < 3; k++ {
			v := float64(verts[i+k])
			lo[k] = math.Min(lo[k], v)
			hi[k] = math.Max(hi[k], v)
		}
	}
	return sim.Extent{Width: hi[0] - lo[0], Height: hi[1] - lo[1], Length: hi[2] - lo[2]}
}
