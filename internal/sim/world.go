package sim

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
)

// Assets is the ready signal from the asset-loading collaborator.
type Assets struct {
	Road     RoadAsset
	Player   ModelID
	Vehicles Archetypes
}

// World owns every simulation component and runs them in a fixed order
// each tick. It is single-threaded: call it from one goroutine only.
type World struct {
	Config *Config
	Scene  Scene
	Events *EventBus
	Log    *slog.Logger

	Lanes   *LaneGeometry
	Road    *RoadStreamer
	Traffic *TrafficSystem
	Player  *Player
	Camera  *CameraRig

	ready        bool
	playerModel  ModelID
	playerHandle Handle
	pose         CameraPose
}

func NewWorld(cfg *Config, scene Scene, logger *slog.Logger) *World {
	if logger == nil {
		logger = slog.Default()
	}
	w := &World{
		Config: cfg,
		Scene:  scene,
		Events: NewEventBus(),
		Log:    logger,
	}
	w.Road = NewRoadStreamer(&cfg.Road, scene)
	w.Lanes = NewLaneGeometry(w.Road.Width(), cfg.Lanes.AreaFraction)
	w.Traffic = NewTrafficSystem(&cfg.Traffic, scene, w.Lanes, w.Events)
	w.Traffic.ScaleFactor = cfg.Road.Scale
	w.Player = NewPlayer(&cfg.Player, w.Lanes)
	w.Camera = NewCameraRig(&cfg.Camera)
	w.pose = w.Camera.Reset(w.Player.WorldPosition(), w.Player.Speed)
	return w
}

// SetAssets hands loaded models to the world. Until it is called the road
// and traffic stay empty.
func (w *World) SetAssets(a Assets) {
	w.Road.SetAsset(a.Road)
	w.Traffic.SetArchetypes(a.Vehicles)
	w.playerModel = a.Player
	w.ready = true
	w.Log.Info("assets ready",
		"segment_length", w.Road.SegmentLength(),
		"road_width", w.Road.Width(),
		"archetypes", len(a.Vehicles))
	w.Reset()
}

func (w *World) Ready() bool { return w.ready }

// RequestLaneChange is the input-side handler: it clamps the target lane
// to the road before handing it to the state machine.
func (w *World) RequestLaneChange(s LaneShift) bool {
	target := clamp(w.Player.CurrentLane+int(s), 0, LaneCount-1)
	if !w.Player.RequestLaneChange(target) {
		return false
	}
	w.Events.Emit(Event{Type: EventLaneChangeStarted, Position: w.Player.Position, Lane: target})
	return true
}

// Update runs one tick: locomotion, road resync, traffic, camera.
func (w *World) Update(dt float64, ctl Controls) CameraPose {
	if dt <= 0 {
		return w.pose
	}
	if w.Player.Update(dt, ctl) {
		w.Events.Emit(Event{Type: EventLaneChangeDone, Position: w.Player.Position, Lane: w.Player.CurrentLane})
	}
	ref := w.Player.Position

	w.Road.Resync(ref)
	w.Traffic.Tick(dt, ref)

	if w.playerHandle != 0 {
		w.Scene.SetTransform(w.playerHandle, w.Player.Pose())
	}
	w.pose = w.Camera.Update(dt, w.Player.WorldPosition(), w.Player.Speed)
	return w.pose
}

// Reset drops all owned instances and reseeds the road, traffic and
// camera around the current reference position.
func (w *World) Reset() {
	ref := w.Player.Position
	w.Traffic.ScaleFactor = w.Config.Road.Scale
	w.Road.Reset(ref)
	w.rebuildLanes()
	w.Traffic.Reset()

	if w.playerHandle != 0 {
		w.Scene.Destroy(w.playerHandle)
		w.playerHandle = 0
	}
	if w.ready {
		w.playerHandle = w.Scene.Create(w.playerModel, w.Player.Pose())
	}
	w.pose = w.Camera.Reset(w.Player.WorldPosition(), w.Player.Speed)
	w.Events.Emit(Event{Type: EventReset, Position: ref})
	w.Log.Debug("world reset",
		"ref", ref,
		"segments", w.Road.Len(),
		"scale", w.Config.Road.Scale)
}

func (w *World) rebuildLanes() {
	w.Lanes.Rebuild(w.Road.Width(), w.Config.Lanes.AreaFraction)
	w.Traffic.Relayout()
}

// PlayerPosition is the player's world position.
func (w *World) PlayerPosition() mgl64.Vec3 { return w.Player.WorldPosition() }

// PlayerSpeed is the player's current longitudinal speed.
func (w *World) PlayerSpeed() float64 { return w.Player.Speed }

// PlayerPose is the final player transform for cosmetic consumers.
func (w *World) PlayerPose() Transform { return w.Player.Pose() }

// CameraPose returns the pose from the latest tick.
func (w *World) CameraPose() CameraPose { return w.pose }
