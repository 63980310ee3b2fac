package sim

import "github.com/go-gl/mathgl/mgl64"

// Handle is an opaque reference to a placed renderable. The creating
// component owns it; the simulation never looks inside.
type Handle uint64

// ModelID identifies a loaded mesh in the rendering collaborator.
type ModelID int

// Transform places an instance in the world.
type Transform struct {
	Position mgl64.Vec3
	Yaw      float64 // rad, 0 = facing the travel direction (-Z)
	Tilt     float64 // rad, roll around the travel axis
	Scale    float64
}

// Scene is the rendering collaborator as seen by the simulation.
type Scene interface {
	Create(model ModelID, t Transform) Handle
	Destroy(h Handle)
	SetTransform(h Handle, t Transform)
}

// Extent is an axis-aligned model size.
type Extent struct {
	Width, Height, Length float64 // X, Y, Z
}

// RoadAsset is the loaded road piece used for every segment.
type RoadAsset struct {
	Model  ModelID
	Extent Extent
}

// Archetypes is the registry of interchangeable vehicle models. All entries
// share one behavioural contract; selection is uniform.
type Archetypes []ModelID

func (a Archetypes) Pick(r *Rand) (ModelID, bool) {
	if len(a) == 0 {
		return 0, false
	}
	return a[r.Intn(len(a))], true
}
