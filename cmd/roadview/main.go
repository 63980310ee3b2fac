// Command roadview runs the highway simulation in a terminal, seen from
// above. Arrow keys drive, r resets, q or Esc quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"highway/internal/assets"
	"highway/internal/scene"
	"highway/internal/sim"
)

const (
	frameInterval = 16 * time.Millisecond
	maxFrameDt    = 0.1
	// Terminals only send repeats for held keys, so a pedal stays down
	// this long after the last press.
	pedalHold = 180 * time.Millisecond

	maxRoadCols     = 56
	segmentsAhead   = 7
	playerRowFactor = 0.78
	dashLength      = 3.0
)

var (
	configFlag = flag.String("config", "", "TOML tuning file")
	seedFlag   = flag.Uint64("seed", 0, "traffic seed override")
	logFlag    = flag.String("log", "", "write logs to this file")
	muteFlag   = flag.Bool("mute", false, "disable lane-change blips")
)

var (
	styleRoad     = tcell.StyleDefault.Background(tcell.NewRGBColor(38, 38, 44)).Foreground(tcell.ColorGray)
	styleEdge     = styleRoad.Foreground(tcell.ColorWhite)
	styleSeam     = styleRoad.Foreground(tcell.NewRGBColor(70, 70, 80))
	styleIncome   = styleRoad.Foreground(tcell.ColorRed).Bold(true)
	styleOutgo    = styleRoad.Foreground(tcell.ColorGreen).Bold(true)
	stylePlayer   = styleRoad.Foreground(tcell.ColorYellow).Bold(true)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	styleShoulder = tcell.StyleDefault.Foreground(tcell.NewRGBColor(60, 90, 50))
)

type viewer struct {
	screen tcell.Screen
	world  *sim.World
	reg    *scene.Registry
	road   sim.ModelID
	player sim.ModelID

	accelUntil time.Time
	decelUntil time.Time

	audio bool
	rate  beep.SampleRate

	visible []sim.Handle
}

func main() {
	flag.Parse()

	logger, closeLog, err := openLogger(*logFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	cfg := sim.DefaultConfig()
	if *configFlag != "" {
		if cfg, err = sim.LoadConfig(*configFlag); err != nil {
			fmt.Fprintf(os.Stderr, "tuning file: %v\n", err)
			os.Exit(1)
		}
	}
	if *seedFlag != 0 {
		cfg.Traffic.Seed = *seedFlag
	}

	v, err := newViewer(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer v.cleanup()
	v.run()
}

// openLogger keeps log output off the terminal the viewer draws on.
func openLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h), func() { f.Close() }, nil
}

func newViewer(cfg *sim.Config, logger *slog.Logger) (*viewer, error) {
	lib := assets.NewLibrary()
	if err := lib.Load(context.Background(), assets.DefaultPaths()...); err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}
	a, err := lib.Assets(assets.RoadSegment, assets.PlayerCar, assets.VehiclePaths...)
	if err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}

	reg := scene.NewRegistry()
	lib.Each(func(id sim.ModelID, m *assets.Mesh) {
		reg.SetExtent(id, m.Bounds)
	})

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	v := &viewer{
		screen: screen,
		reg:    reg,
		world:  sim.NewWorld(cfg, reg, logger),
		road:   a.Road.Model,
		player: a.Player,
		rate:   beep.SampleRate(44100),
	}
	if !*muteFlag {
		if err := speaker.Init(v.rate, v.rate.N(time.Second/10)); err != nil {
			logger.Warn("audio init failed (continuing without sound)", "err", err)
		} else {
			v.audio = true
		}
	}

	v.world.Events.Subscribe(sim.EventLaneChangeStarted, func(e sim.Event) {
		v.blip(520+110*float64(e.Lane), 45*time.Millisecond, -1.5)
	})
	v.world.Events.Subscribe(sim.EventReset, func(sim.Event) {
		v.blip(330, 90*time.Millisecond, -1)
	})
	v.world.SetAssets(a)
	return v, nil
}

func (v *viewer) blip(freq float64, d time.Duration, volume float64) {
	if !v.audio {
		return
	}
	sine, err := generators.SineTone(v.rate, freq)
	if err != nil {
		return
	}
	speaker.Play(&effects.Volume{
		Streamer: beep.Take(v.rate.N(d), sine),
		Base:     2,
		Volume:   volume,
	})
}

func (v *viewer) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	last := time.Now()
	for {
		select {
		case ev := <-eventChan:
			if !v.handleInput(ev) {
				return
			}

		case now := <-ticker.C:
			dt := math.Min(now.Sub(last).Seconds(), maxFrameDt)
			last = now
			v.world.Update(dt, sim.Controls{
				Accelerate: now.Before(v.accelUntil),
				Decelerate: now.Before(v.decelUntil),
			})
			v.draw()
		}
	}
}

func (v *viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		now := time.Now()
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			v.world.RequestLaneChange(sim.ShiftLeft)
		case tcell.KeyRight:
			v.world.RequestLaneChange(sim.ShiftRight)
		case tcell.KeyUp:
			v.accelUntil, v.decelUntil = now.Add(pedalHold), time.Time{}
		case tcell.KeyDown:
			v.decelUntil, v.accelUntil = now.Add(pedalHold), time.Time{}
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'r':
				v.world.Reset()
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// layout maps world coordinates onto terminal cells around the player.
type layout struct {
	playerRow   int
	centreCol   int
	colsPerUnit float64
	unitsPerRow float64
	refZ        float64
}

func (l layout) row(z float64) int {
	return l.playerRow + int(math.Round((z-l.refZ)/l.unitsPerRow))
}

func (l layout) col(x float64) int {
	return l.centreCol + int(math.Round(x*l.colsPerUnit))
}

// z is the world position at the centre of a row.
func (l layout) z(row int) float64 {
	return l.refZ + float64(row-l.playerRow)*l.unitsPerRow
}

func (v *viewer) layout(w, h int) layout {
	road := v.world.Road
	roadCols := min(w-4, maxRoadCols)
	playerRow := int(float64(h-1) * playerRowFactor)
	return layout{
		playerRow:   playerRow,
		centreCol:   w / 2,
		colsPerUnit: float64(roadCols) / road.Width(),
		unitsPerRow: road.SegmentLength() * segmentsAhead / float64(max(playerRow, 1)),
		refZ:        v.world.PlayerPosition().Z(),
	}
}

func (v *viewer) draw() {
	s := v.screen
	s.Clear()
	w, h := s.Size()
	if w < 8 || h < 4 || !v.world.Ready() {
		s.Show()
		return
	}
	field := h - 1
	l := v.layout(w, h)
	road := v.world.Road
	lanes := v.world.Lanes

	half := road.Width() / 2
	left, right := l.col(-half), l.col(half)
	usable := lanes.Width() * lanes.Fraction() / 2
	dividers := make([]int, 0, sim.LaneCount-1)
	for i := 1; i < sim.LaneCount; i++ {
		dividers = append(dividers, l.col(-usable+lanes.LaneWidth()*float64(i)))
	}

	// Road surface only where streamed segments exist.
	segs := road.Segments()
	if len(segs) == 0 {
		s.Show()
		return
	}
	near := segs[0].Position + road.SegmentLength()/2
	far := segs[len(segs)-1].Position - road.SegmentLength()/2

	for y := 0; y < field; y++ {
		z := l.z(y)
		if z > near || z < far {
			continue
		}
		for x := 0; x < w; x++ {
			switch {
			case x < left || x > right:
				s.SetContent(x, y, '.', nil, styleShoulder)
			case x == left || x == right:
				s.SetContent(x, y, '|', nil, styleEdge)
			default:
				s.SetContent(x, y, ' ', nil, styleRoad)
			}
		}
		if int(math.Floor(z/dashLength))%2 == 0 {
			for _, x := range dividers {
				s.SetContent(x, y, ':', nil, styleRoad)
			}
		}
	}
	for _, seg := range segs {
		y := l.row(seg.Position + road.SegmentLength()/2)
		if y < 0 || y >= field {
			continue
		}
		for x := left + 1; x < right; x++ {
			s.SetContent(x, y, '-', nil, styleSeam)
		}
	}

	// Vehicles come from the scene side, culled to the visible window.
	view := scene.RectF{
		X0: -half - 1, X1: half + 1,
		Y0: l.z(0), Y1: l.z(field - 1),
	}
	v.visible = v.reg.Query(view, v.visible[:0])
	for _, hnd := range v.visible {
		inst, ok := v.reg.Get(hnd)
		if !ok || inst.Model == v.road || inst.Model == v.player {
			continue
		}
		p := inst.Transform.Position
		glyph, style := '^', styleOutgo
		if math.Cos(inst.Transform.Yaw) < 0 {
			glyph, style = 'v', styleIncome
		}
		v.putCar(l, p.X(), p.Z(), field, glyph, style)
	}
	pp := v.world.PlayerPosition()
	v.putCar(l, pp.X(), pp.Z(), field, '@', stylePlayer)

	v.drawStatus(w, h-1)
	s.Show()
}

func (v *viewer) putCar(l layout, x, z float64, field int, glyph rune, style tcell.Style) {
	y, c := l.row(z), l.col(x)
	if y < 0 || y >= field {
		return
	}
	v.screen.SetContent(c, y, glyph, nil, style)
}

func (v *viewer) drawStatus(w, y int) {
	wd := v.world
	text := fmt.Sprintf(" speed %.2f  lane %d/%d  incoming %d  outgoing %d  segments %d  camera %.2f ",
		wd.PlayerSpeed(), wd.Player.CurrentLane+1, sim.LaneCount,
		wd.Traffic.Count(sim.Incoming), wd.Traffic.Count(sim.Outgoing),
		wd.Road.Len(), wd.Camera.Blend)
	x := 0
	for _, r := range text {
		if x >= w {
			break
		}
		v.screen.SetContent(x, y, r, nil, styleStatus)
		x++
	}
	for ; x < w; x++ {
		v.screen.SetContent(x, y, ' ', nil, styleStatus)
	}
}

func (v *viewer) cleanup() {
	if v.audio {
		speaker.Close()
	}
	v.screen.Fini()
}
