package assets

// Model paths known to the library.
const (
	RoadSegment = "road/segment"
	PlayerCar   = "car/player"
	Sedan       = "car/sedan"
	Hatchback   = "car/hatchback"
	Van         = "car/van"
	Truck       = "car/truck"
	UnitBox     = "prop/unit" // scaled per draw for paint and ground
)

// VehiclePaths lists every traffic archetype.
var VehiclePaths = []string{Sedan, Hatchback, Van, Truck}

type blueprint struct {
	parts []box
	color [3]float32
}

// Car bodies sit on y=0 and face -Z.
var catalog = map[string]blueprint{
	RoadSegment: {
		parts: []box{{cx: 0, cy: -0.1, cz: 0, w: 14, h: 0.2, l: 18.5}},
		color: [3]float32{0.24, 0.26, 0.31},
	},
	UnitBox: {
		parts: []box{{w: 1, h: 1, l: 1}},
		color: [3]float32{1, 1, 1},
	},
	PlayerCar: {
		parts: []box{
			{cy: 0.35, w: 1.8, h: 0.6, l: 4.2},
			{cy: 0.9, cz: 0.3, w: 1.5, h: 0.5, l: 2.0},
		},
		color: [3]float32{0.86, 0.2, 0.16},
	},
	Sedan: {
		parts: []box{
			{cy: 0.35, w: 1.8, h: 0.6, l: 4.4},
			{cy: 0.9, cz: 0.2, w: 1.5, h: 0.5, l: 2.2},
		},
		color: [3]float32{0.7, 0.72, 0.76},
	},
	Hatchback: {
		parts: []box{
			{cy: 0.35, w: 1.7, h: 0.6, l: 3.8},
			{cy: 0.9, cz: 0.5, w: 1.5, h: 0.55, l: 2.2},
		},
		color: [3]float32{0.2, 0.42, 0.78},
	},
	Van: {
		parts: []box{
			{cy: 0.5, w: 1.9, h: 0.9, l: 4.8},
			{cy: 1.25, cz: 0.4, w: 1.85, h: 0.6, l: 3.6},
		},
		color: [3]float32{0.92, 0.9, 0.84},
	},
	Truck: {
		parts: []box{
			{cy: 0.9, cz: -2.6, w: 2.3, h: 1.8, l: 2.0},
			{cy: 1.3, cz: 1.2, w: 2.4, h: 2.6, l: 5.6},
		},
		color: [3]float32{0.85, 0.62, 0.18},
	},
}

func build(path string, bp blueprint) *Mesh {
	var verts []float32
	for _, p := range bp.parts {
		verts = appendBox(verts, p)
	}
	return &Mesh{
		Name:     path,
		Vertices: verts,
		Color:    bp.color,
		Bounds:   bounds(verts),
	}
}
