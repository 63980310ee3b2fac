//go:build !android

package game

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"highway/internal/assets"
	"highway/internal/scene"
	"highway/internal/sim"
)

const (
	LightAmbient = 0.42
	FogStart     = 140.0
	FogEnd       = 700.0
)

// glOffset converts a byte offset to unsafe.Pointer for OpenGL VBO offset params.
func glOffset(n int) unsafe.Pointer { return unsafe.Pointer(uintptr(n)) }

type gpuMesh struct {
	vao, vbo uint32
	count    int32
	color    [3]float32
}

type Renderer struct {
	// Mesh program.
	meshProg   uint32
	uViewProj  int32
	uModel     int32
	uColor     int32
	uLightDir  int32
	uAmbient   int32
	uEye       int32
	uFogColor  int32
	uFogStart  int32
	uFogEnd    int32
	meshes     map[sim.ModelID]*gpuMesh
	unitBox    sim.ModelID
	unitLoaded bool

	// Trail point-sprite program.
	trailProg     uint32
	trailVAO      uint32
	trailVBO      uint32
	trUViewProj   int32
	trUPointScale int32
	trUColor      int32

	viewProj mgl32.Mat4
	fbH      int

	// Plain models skip the per-instance tint (road pieces).
	Plain map[sim.ModelID]bool

	// Reusable per-frame buffers.
	visible []sim.Handle
}

func NewRenderer() (*Renderer, error) {
	meshProg, err := linkProgram(meshVertSrc, meshFragSrc)
	if err != nil {
		return nil, fmt.Errorf("mesh program: %w", err)
	}
	trailProg, err := linkProgram(trailVertSrc, trailFragSrc)
	if err != nil {
		gl.DeleteProgram(meshProg)
		return nil, fmt.Errorf("trail program: %w", err)
	}

	r := &Renderer{
		meshProg:  meshProg,
		trailProg: trailProg,
		meshes:    make(map[sim.ModelID]*gpuMesh),
		Plain:     make(map[sim.ModelID]bool),
	}

	gl.UseProgram(meshProg)
	r.uViewProj = gl.GetUniformLocation(meshProg, gl.Str("uViewProj\x00"))
	r.uModel = gl.GetUniformLocation(meshProg, gl.Str("uModel\x00"))
	r.uColor = gl.GetUniformLocation(meshProg, gl.Str("uColor\x00"))
	r.uLightDir = gl.GetUniformLocation(meshProg, gl.Str("uLightDir\x00"))
	r.uAmbient = gl.GetUniformLocation(meshProg, gl.Str("uAmbient\x00"))
	r.uEye = gl.GetUniformLocation(meshProg, gl.Str("uEye\x00"))
	r.uFogColor = gl.GetUniformLocation(meshProg, gl.Str("uFogColor\x00"))
	r.uFogStart = gl.GetUniformLocation(meshProg, gl.Str("uFogStart\x00"))
	r.uFogEnd = gl.GetUniformLocation(meshProg, gl.Str("uFogEnd\x00"))
	light := mgl32.Vec3{-0.35, -1, -0.45}.Normalize()
	gl.Uniform3f(r.uLightDir, light[0], light[1], light[2])
	gl.Uniform1f(r.uAmbient, LightAmbient)
	gl.Uniform1f(r.uFogStart, FogStart)
	gl.Uniform1f(r.uFogEnd, FogEnd)

	// Trail VAO/VBO: streaming buffer, 5 floats per mark (x, y, z, size, alpha).
	var tVAO, tVBO uint32
	gl.GenVertexArrays(1, &tVAO)
	gl.GenBuffers(1, &tVBO)
	gl.BindVertexArray(tVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, tVBO)
	stride := int32(5 * 4)
	gl.BufferData(gl.ARRAY_BUFFER, MaxTrailRender*int(stride), nil, gl.STREAM_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, glOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 1, gl.FLOAT, false, stride, glOffset(3*4))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 1, gl.FLOAT, false, stride, glOffset(4*4))
	r.trailVAO = tVAO
	r.trailVBO = tVBO

	gl.UseProgram(trailProg)
	r.trUViewProj = gl.GetUniformLocation(trailProg, gl.Str("uViewProj\x00"))
	r.trUPointScale = gl.GetUniformLocation(trailProg, gl.Str("uPointScale\x00"))
	r.trUColor = gl.GetUniformLocation(trailProg, gl.Str("uColor\x00"))
	tc := Palette.TrailMark.Vec()
	gl.Uniform3f(r.trUColor, tc[0], tc[1], tc[2])

	gl.BindVertexArray(0)
	return r, nil
}

// Upload copies every built mesh to the GPU.
func (r *Renderer) Upload(lib *assets.Library) {
	lib.Each(func(id sim.ModelID, m *assets.Mesh) {
		if _, ok := r.meshes[id]; ok || len(m.Vertices) == 0 {
			return
		}
		g := &gpuMesh{count: int32(m.VertexCount()), color: m.Color}
		gl.GenVertexArrays(1, &g.vao)
		gl.GenBuffers(1, &g.vbo)
		gl.BindVertexArray(g.vao)
		gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
		gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*4, gl.Ptr(m.Vertices), gl.STATIC_DRAW)
		stride := int32(assets.FloatsPerVertex * 4)
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, glOffset(0))
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, glOffset(3*4))
		r.meshes[id] = g
	})
	gl.BindVertexArray(0)
	if id, ok := lib.ID(assets.UnitBox); ok {
		r.unitBox = id
		r.unitLoaded = true
	}
}

func (r *Renderer) Destroy() {
	for _, g := range r.meshes {
		gl.DeleteBuffers(1, &g.vbo)
		gl.DeleteVertexArrays(1, &g.vao)
	}
	if r.trailVBO != 0 {
		gl.DeleteBuffers(1, &r.trailVBO)
	}
	if r.trailVAO != 0 {
		gl.DeleteVertexArrays(1, &r.trailVAO)
	}
	for _, id := range []uint32{r.meshProg, r.trailProg} {
		if id != 0 {
			gl.DeleteProgram(id)
		}
	}
}

// ViewProjection builds the camera matrices from a chase-camera pose.
func ViewProjection(pose sim.CameraPose, aspect float32) mgl32.Mat4 {
	eye := vec32(pose.Position)
	look := vec32(pose.LookAt)
	proj := mgl32.Perspective(mgl32.DegToRad(float32(pose.FieldOfView)), aspect, NearPlane, FarPlane)
	view := mgl32.LookAtV(eye, look, mgl32.Vec3{0, 1, 0})
	return proj.Mul4(view)
}

// ModelMatrix places a unit model. Yaw 0 faces -Z; positive yaw turns
// toward +X, which is a negative rotation about +Y.
func ModelMatrix(t sim.Transform) mgl32.Mat4 {
	s := float32(t.Scale)
	if s == 0 {
		s = 1
	}
	p := t.Position
	return mgl32.Translate3D(float32(p.X()), float32(p.Y()), float32(p.Z())).
		Mul4(mgl32.HomogRotate3DY(float32(-t.Yaw))).
		Mul4(mgl32.HomogRotate3DZ(float32(-t.Tilt))).
		Mul4(mgl32.Scale3D(s, s, s))
}

func vec32(v [3]float64) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

func (r *Renderer) BeginFrame(fbW, fbH int, pose sim.CameraPose, sky RGB) {
	gl.Viewport(0, 0, int32(fbW), int32(fbH))
	c := sky.Vec()
	gl.ClearColor(c[0], c[1], c[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.fbH = fbH
	r.viewProj = ViewProjection(pose, float32(fbW)/float32(max(fbH, 1)))
	eye := vec32(pose.Position)

	gl.Enable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)
	gl.UseProgram(r.meshProg)
	gl.UniformMatrix4fv(r.uViewProj, 1, false, &r.viewProj[0])
	gl.Uniform3f(r.uEye, eye[0], eye[1], eye[2])
	gl.Uniform3f(r.uFogColor, c[0], c[1], c[2])
}

func (r *Renderer) drawMesh(g *gpuMesh, model mgl32.Mat4, color [3]float32) {
	gl.UniformMatrix4fv(r.uModel, 1, false, &model[0])
	gl.Uniform3f(r.uColor, color[0], color[1], color[2])
	gl.BindVertexArray(g.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, g.count)
}

// DrawScene draws every registered instance whose footprint meets view.
func (r *Renderer) DrawScene(reg *scene.Registry, view scene.RectF) int {
	r.visible = reg.Query(view, r.visible[:0])
	drawn := 0
	for _, h := range r.visible {
		inst, ok := reg.Get(h)
		if !ok {
			continue
		}
		g, ok := r.meshes[inst.Model]
		if !ok {
			continue
		}
		col := g.color
		if !r.Plain[inst.Model] {
			col = tint(col, h)
		}
		r.drawMesh(g, ModelMatrix(inst.Transform), col)
		drawn++
	}
	return drawn
}

// tint varies shade per instance so identical archetypes read apart.
func tint(c [3]float32, h sim.Handle) [3]float32 {
	k := float32(0.82 + 0.3*unitHash(uint64(h)))
	return [3]float32{
		float32(math.Min(1, float64(c[0]*k))),
		float32(math.Min(1, float64(c[1]*k))),
		float32(math.Min(1, float64(c[2]*k))),
	}
}

// DrawBox draws the unit box stretched to size at centre.
func (r *Renderer) DrawBox(centre mgl32.Vec3, size mgl32.Vec3, col RGB) {
	if !r.unitLoaded {
		return
	}
	g, ok := r.meshes[r.unitBox]
	if !ok {
		return
	}
	model := mgl32.Translate3D(centre[0], centre[1], centre[2]).
		Mul4(mgl32.Scale3D(size[0], size[1], size[2]))
	r.drawMesh(g, model, col.Vec())
}

// DrawTrails draws tire marks as depth-tested, blended point sprites.
func (r *Renderer) DrawTrails(buf []float32) {
	n := len(buf) / 5
	if n == 0 {
		return
	}
	if n > MaxTrailRender {
		n = MaxTrailRender
	}
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	gl.UseProgram(r.trailProg)
	gl.UniformMatrix4fv(r.trUViewProj, 1, false, &r.viewProj[0])
	gl.Uniform1f(r.trUPointScale, float32(r.fbH)*0.9)
	gl.BindVertexArray(r.trailVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.trailVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, n*5*4, gl.Ptr(buf))
	gl.DrawArrays(gl.POINTS, 0, int32(n))

	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	gl.UseProgram(r.meshProg)
}
