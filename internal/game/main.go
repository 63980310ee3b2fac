//go:build !android

package game

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"highway/internal/assets"
	"highway/internal/fx"
	"highway/internal/scene"
	"highway/internal/sim"
)

// Options configures the desktop front end.
type Options struct {
	Config     *sim.Config // nil = defaults
	ConfigPath string      // reloaded on F5 when set
	Mute       bool
	Volume     float64 // effects volume in [0,1]; 0 keeps the default
	Samples    int     // MSAA samples; 0 = DefaultSamples, negative disables
	FixedSize  bool
	Logger     *slog.Logger
}

func RunDesktop(opts Options) error {
	runtime.LockOSThread()

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = sim.DefaultConfig()
	}

	ws := opts.window()
	window, err := initWindow(ws)
	if err != nil {
		return err
	}
	defer glfw.Terminate()
	defer window.Destroy()

	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}
	log.Debug("gl ready", "version", gl.GoStr(gl.GetString(gl.VERSION)))

	if !opts.Mute {
		if err := InitAudio(); err != nil {
			log.Warn("audio init failed (continuing without sound)", "err", err)
		}
		if opts.Volume > 0 {
			SetSFXVolume(opts.Volume)
		}
	}
	defer StopAudio()

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	if ws.samples > 0 {
		gl.Enable(gl.MULTISAMPLE)
	}

	rend, err := NewRenderer()
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	defer rend.Destroy()

	// Models build in the background; the world ticks without them.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	lib := assets.NewLibrary()
	lib.LoadAsync(ctx, assets.DefaultPaths()...)

	reg := scene.NewRegistry()
	world := sim.NewWorld(cfg, reg, log)
	tuner := world.Tuner()
	trails := fx.NewTrails(fx.MaxTrailMarks)
	input := NewInput()

	world.Events.Subscribe(sim.EventLaneChangeStarted, func(sim.Event) { PlaySound(SoundWhoosh) })
	world.Events.Subscribe(sim.EventLaneChangeDone, func(sim.Event) { PlaySoundWithGain(SoundSettle, 0.6) })
	world.Events.Subscribe(sim.EventReset, func(sim.Event) {
		trails.Clear()
		PlaySoundWithGain(SoundReset, 0.5)
	})

	var trailBuf []float32
	titleTimer := 0.0

	last := glfw.GetTime()
	for !window.ShouldClose() {
		now := glfw.GetTime()
		dt := now - last
		last = now
		if dt > MaxFrameDt {
			dt = MaxFrameDt
		}

		glfw.PollEvents()
		if window.GetKey(glfw.KeyEscape) == glfw.Press {
			window.SetShouldClose(true)
			continue
		}

		if !world.Ready() {
			select {
			case <-lib.Ready():
				if err := lib.Err(); err != nil {
					return fmt.Errorf("assets: %w", err)
				}
				if err := attachAssets(world, reg, rend, lib); err != nil {
					return err
				}
				StartEngine()
			default:
			}
		}

		handleTuning(window, input, tuner, opts.ConfigPath, log)
		if shift, ok := input.LaneShift(window); ok {
			world.RequestLaneChange(shift)
		}

		pose := world.Update(dt, Controls(window))
		trails.Emit(world.PlayerPose())
		trails.Update(dt)

		minS, maxS := tuner.PlayerSpeedBounds()
		if maxS > minS {
			SetEngineLoad((world.PlayerSpeed() - minS) / (maxS - minS))
		}

		titleTimer -= dt
		if titleTimer <= 0 {
			titleTimer = TitleInterval
			window.SetTitle(fmt.Sprintf("%s  |  speed %.2f  lane %d  traffic %d",
				WindowTitle, world.PlayerSpeed(), world.Player.CurrentLane+1, len(world.Traffic.Agents)))
		}

		fbW, fbH := window.GetFramebufferSize()
		if fbW <= 0 || fbH <= 0 {
			continue
		}

		sky := lerpRGB(Palette.SkyLow, Palette.SkyHigh, world.Camera.Blend)
		rend.BeginFrame(fbW, fbH, pose, sky)
		rend.DrawGround(vec32(world.PlayerPosition()))
		rend.DrawScene(reg, ViewRect(world))
		rend.DrawLanePaint(world.Road, world.Lanes)
		trailBuf = trails.RenderData(trailBuf)
		rend.DrawTrails(trailBuf)

		window.SwapBuffers()
	}
	return nil
}

// attachAssets uploads meshes, registers cull extents and hands the models
// to the simulation.
func attachAssets(world *sim.World, reg *scene.Registry, rend *Renderer, lib *assets.Library) error {
	a, err := lib.Assets(assets.RoadSegment, assets.PlayerCar, assets.VehiclePaths...)
	if err != nil {
		return fmt.Errorf("assets: %w", err)
	}
	rend.Upload(lib)
	rend.Plain[a.Road.Model] = true
	lib.Each(func(id sim.ModelID, m *assets.Mesh) {
		reg.SetExtent(id, m.Bounds)
	})
	world.SetAssets(a)
	return nil
}

// handleTuning maps hotkeys onto the live tuning surface.
func handleTuning(window *glfw.Window, in *Input, t *sim.Tuner, path string, log *slog.Logger) {
	apply := func(what string, err error) {
		if err != nil {
			log.Warn("tuning rejected", "field", what, "err", err)
			PlaySound(SoundReject)
			return
		}
		PlaySound(SoundTune)
	}

	// Poll both keys of a pair every frame so edge state never goes stale.
	step := func(dec, inc glfw.Key) int {
		d, i := in.JustPressed(window, dec), in.JustPressed(window, inc)
		switch {
		case d && !i:
			return -1
		case i && !d:
			return 1
		}
		return 0
	}

	if s := step(glfw.KeyLeftBracket, glfw.KeyRightBracket); s != 0 {
		apply("road_scale", t.SetRoadScale(max(MinRoadScale, t.RoadScale()+float64(s)*ScaleStep)))
	}
	if s := step(glfw.KeyMinus, glfw.KeyEqual); s != 0 {
		apply("visible_segments", t.SetVisibleSegments(max(1, t.VisibleSegments()+s*SegmentStep)))
	}
	if s := step(glfw.KeyComma, glfw.KeyPeriod); s != 0 {
		f := clampF(t.LaneAreaFraction()+float64(s)*FractionStep, MinFraction, 1)
		apply("area_fraction", t.SetLaneAreaFraction(f))
	}

	if in.JustPressed(window, glfw.KeyF5) {
		if path == "" {
			log.Info("no tuning file to reload")
			return
		}
		next, err := sim.LoadConfig(path)
		if err == nil {
			err = t.Apply(next)
		}
		if err == nil {
			log.Info("tuning reloaded", "path", path)
		}
		apply("reload", err)
	}
}
