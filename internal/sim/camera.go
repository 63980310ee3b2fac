package sim

import "github.com/go-gl/mathgl/mgl64"

// CameraPose is what the renderer consumes each frame.
type CameraPose struct {
	Position    mgl64.Vec3
	LookAt      mgl64.Vec3
	FieldOfView float64 // degrees
}

// CameraRig is the chase camera. It owns only smoothing state.
type CameraRig struct {
	cfg *CameraConfig

	CurrentPosition mgl64.Vec3
	TargetPosition  mgl64.Vec3
	CurrentLookAt   mgl64.Vec3
	TargetLookAt    mgl64.Vec3
	Blend           float64 // 0 = low-speed preset, 1 = high-speed preset
}

func NewCameraRig(cfg *CameraConfig) *CameraRig {
	return &CameraRig{cfg: cfg}
}

// Preset returns the presets interpolated by the live blend factor.
func (c *CameraRig) Preset() CameraPreset {
	lo, hi := c.cfg.LowSpeed, c.cfg.HighSpeed
	return CameraPreset{
		Height:      lerp(lo.Height, hi.Height, c.Blend),
		Distance:    lerp(lo.Distance, hi.Distance, c.Blend),
		FieldOfView: lerp(lo.FieldOfView, hi.FieldOfView, c.Blend),
	}
}

// BlendTarget is a hard cutoff on speed.
func (c *CameraRig) BlendTarget(speed float64) float64 {
	if speed > c.cfg.SpeedThreshold {
		return 1
	}
	return 0
}

func (c *CameraRig) targets(player mgl64.Vec3, p CameraPreset) (pos, look mgl64.Vec3) {
	pos = player.Add(mgl64.Vec3{0, p.Height, p.Distance})
	look = player.Add(mgl64.Vec3{0, 0, -c.cfg.LookAheadOffset})
	return pos, look
}

// Update eases the blend factor and the camera pose toward the player.
func (c *CameraRig) Update(dt float64, player mgl64.Vec3, speed float64) CameraPose {
	c.Blend += (c.BlendTarget(speed) - c.Blend) * smoothing(c.cfg.BlendRate, dt)
	c.Blend = clampF(c.Blend, 0, 1)

	p := c.Preset()
	c.TargetPosition, c.TargetLookAt = c.targets(player, p)

	k := smoothing(c.cfg.PositionRate, dt)
	c.CurrentPosition = c.CurrentPosition.Add(c.TargetPosition.Sub(c.CurrentPosition).Mul(k))
	c.CurrentLookAt = c.CurrentLookAt.Add(c.TargetLookAt.Sub(c.CurrentLookAt).Mul(k))

	return CameraPose{Position: c.CurrentPosition, LookAt: c.CurrentLookAt, FieldOfView: p.FieldOfView}
}

// Reset snaps the camera onto its targets for the given player state.
func (c *CameraRig) Reset(player mgl64.Vec3, speed float64) CameraPose {
	c.Blend = c.BlendTarget(speed)
	p := c.Preset()
	c.TargetPosition, c.TargetLookAt = c.targets(player, p)
	c.CurrentPosition = c.TargetPosition
	c.CurrentLookAt = c.TargetLookAt
	return CameraPose{Position: c.CurrentPosition, LookAt: c.CurrentLookAt, FieldOfView: p.FieldOfView}
}

// Pose returns the current pose without advancing.
func (c *CameraRig) Pose() CameraPose {
	return CameraPose{Position: c.CurrentPosition, LookAt: c.CurrentLookAt, FieldOfView: c.Preset().FieldOfView}
}
