//go:build !android

package game

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// DefaultSamples is the MSAA sample count when Options leaves it unset.
const DefaultSamples = 4

type windowSettings struct {
	width, height int
	title         string
	samples       int
	resizable     bool
}

// window resolves the window part of the front-end options.
func (o Options) window() windowSettings {
	ws := windowSettings{
		width:     WindowWidth,
		height:    WindowHeight,
		title:     WindowTitle,
		samples:   DefaultSamples,
		resizable: !o.FixedSize,
	}
	switch {
	case o.Samples < 0:
		ws.samples = 0
	case o.Samples > 0:
		ws.samples = o.Samples
	}
	return ws
}

func boolHint(v bool) int {
	if v {
		return glfw.True
	}
	return glfw.False
}

func initWindow(ws windowSettings) (*glfw.Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolHint(ws.resizable))
	glfw.WindowHint(glfw.Samples, ws.samples)

	window, err := glfw.CreateWindow(ws.width, ws.height, ws.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window %dx%d: %w", ws.width, ws.height, err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)
	return window, nil
}
