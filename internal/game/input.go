//go:build !android

package game

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"highway/internal/sim"
)

type Input struct {
	prevKeys map[glfw.Key]bool
}

func NewInput() *Input {
	return &Input{
		prevKeys: make(map[glfw.Key]bool),
	}
}

func (in *Input) JustPressed(window *glfw.Window, key glfw.Key) bool {
	down := window.GetKey(key) == glfw.Press
	jp := down && !in.prevKeys[key]
	in.prevKeys[key] = down
	return jp
}

// anyJustPressed polls every key so none keeps a stale edge state.
func (in *Input) anyJustPressed(window *glfw.Window, keys ...glfw.Key) bool {
	hit := false
	for _, k := range keys {
		if in.JustPressed(window, k) {
			hit = true
		}
	}
	return hit
}

func held(window *glfw.Window, keys ...glfw.Key) bool {
	for _, k := range keys {
		if window.GetKey(k) == glfw.Press {
			return true
		}
	}
	return false
}

// Controls samples the held pedals.
func Controls(window *glfw.Window) sim.Controls {
	return sim.Controls{
		Accelerate: held(window, glfw.KeyUp, glfw.KeyW),
		Decelerate: held(window, glfw.KeyDown, glfw.KeyS),
	}
}

// LaneShift returns an edge-triggered lane change request, if any.
func (in *Input) LaneShift(window *glfw.Window) (sim.LaneShift, bool) {
	left := in.anyJustPressed(window, glfw.KeyLeft, glfw.KeyA)
	right := in.anyJustPressed(window, glfw.KeyRight, glfw.KeyD)
	switch {
	case left && !right:
		return sim.ShiftLeft, true
	case right && !left:
		return sim.ShiftRight, true
	}
	return 0, false
}
