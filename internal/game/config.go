package game

// Window defaults.
const (
	WindowWidth  = 1280
	WindowHeight = 720
	WindowTitle  = "Highway"
	MaxFrameDt   = 0.1 // seconds; longer frames are clamped
)

// Projection.
const (
	NearPlane = 0.1
	FarPlane  = 900.0
)

// Trail rendering.
const MaxTrailRender = 4096

// Lane paint.
const (
	MarkingWidth  = 0.15
	MarkingDash   = 3.0
	MarkingHeight = 0.01
)

// Tuning hotkey steps.
const (
	ScaleStep    = 0.25
	MinRoadScale = 0.25
	SegmentStep  = 5
	FractionStep = 0.05
	MinFraction  = 0.1
)

// Title bar refresh interval while driving.
const TitleInterval = 0.25
