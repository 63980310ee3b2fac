package scene

import (
	"highway/internal/sim"
)

// Instance is one placed renderable.
type Instance struct {
	Model     sim.ModelID
	Transform sim.Transform
}

// Registry is the bookkeeping half of the rendering collaborator. It hands
// out handles, stores transforms and answers visibility queries. Handle 0
// is never issued.
type Registry struct {
	next      sim.Handle
	instances map[sim.Handle]*Instance
	extents   map[sim.ModelID]sim.Extent

	index *QuadNode
	dirty bool
}

var _ sim.Scene = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		instances: make(map[sim.Handle]*Instance),
		extents:   make(map[sim.ModelID]sim.Extent),
		dirty:     true,
	}
}

// SetExtent registers the footprint used to cull instances of a model.
func (r *Registry) SetExtent(m sim.ModelID, e sim.Extent) {
	r.extents[m] = e
	r.dirty = true
}

func (r *Registry) Create(m sim.ModelID, t sim.Transform) sim.Handle {
	r.next++
	r.instances[r.next] = &Instance{Model: m, Transform: t}
	r.dirty = true
	return r.next
}

func (r *Registry) Destroy(h sim.Handle) {
	if _, ok := r.instances[h]; !ok {
		return
	}
	delete(r.instances, h)
	r.dirty = true
}

func (r *Registry) SetTransform(h sim.Handle, t sim.Transform) {
	inst, ok := r.instances[h]
	if !ok {
		return
	}
	inst.Transform = t
	r.dirty = true
}

func (r *Registry) Get(h sim.Handle) (Instance, bool) {
	inst, ok := r.instances[h]
	if !ok {
		return Instance{}, false
	}
	return *inst, true
}

func (r *Registry) Len() int { return len(r.instances) }

// Each visits every live instance. Order is unspecified.
func (r *Registry) Each(fn func(sim.Handle, Instance)) {
	for h, inst := range r.instances {
		fn(h, *inst)
	}
}

// Footprint is the XZ rectangle covered by an instance.
func (r *Registry) Footprint(inst Instance) RectF {
	e, ok := r.extents[inst.Model]
	if !ok {
		e = sim.Extent{Width: 1, Height: 1, Length: 1}
	}
	s := inst.Transform.Scale
	if s == 0 {
		s = 1
	}
	hw, hl := e.Width*s*0.5, e.Length*s*0.5
	p := inst.Transform.Position
	return RectF{X0: p.X() - hw, Y0: p.Z() - hl, X1: p.X() + hw, Y1: p.Z() + hl}
}

// Query appends the handles whose footprint intersects view.
func (r *Registry) Query(view RectF, out []sim.Handle) []sim.Handle {
	if r.dirty {
		r.rebuild()
	}
	r.index.Query(view, &out)
	return out
}

func (r *Registry) rebuild() {
	var bounds RectF
	first := true
	rects := make(map[sim.Handle]RectF, len(r.instances))
	for h, inst := range r.instances {
		fp := r.Footprint(*inst)
		rects[h] = fp
		if first {
			bounds = fp
			first = false
			continue
		}
		bounds = bounds.Union(fp)
	}
	r.index = NewQuadNode(bounds, 0)
	for h, fp := range rects {
		r.index.Insert(h, fp)
	}
	r.dirty = false
}
