package game

// RGB is an 8-bit per channel colour.
type RGB struct {
	R, G, B uint8
}

func (c RGB) Vec() [3]float32 {
	return [3]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
}

func lerpU8(a, b uint8, t float64) uint8 {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

func lerpRGB(a, b RGB, t float64) RGB {
	return RGB{R: lerpU8(a.R, b.R, t), G: lerpU8(a.G, b.G, t), B: lerpU8(a.B, b.B, t)}
}

var Palette = struct {
	SkyLow    RGB
	SkyHigh   RGB
	Ground    RGB
	Marking   RGB
	TrailMark RGB
}{
	SkyLow:    RGB{R: 186, G: 204, B: 222},
	SkyHigh:   RGB{R: 238, G: 196, B: 150},
	Ground:    RGB{R: 122, G: 120, B: 78},
	Marking:   RGB{R: 236, G: 232, B: 214},
	TrailMark: RGB{R: 20, G: 20, B: 22},
}
