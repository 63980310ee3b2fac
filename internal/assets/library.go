package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"highway/internal/sim"
)

var ErrUnknownModel = errors.New("unknown model")

// DefaultParallelism bounds concurrent mesh builds.
const DefaultParallelism = 4

// Library builds and owns meshes. Models get stable IDs in request order,
// starting at 1.
type Library struct {
	Parallelism int

	mu     sync.RWMutex
	ids    map[string]sim.ModelID
	meshes map[sim.ModelID]*Mesh

	ready     chan struct{}
	readyOnce sync.Once
	err       error
}

func NewLibrary() *Library {
	return &Library{
		Parallelism: DefaultParallelism,
		ids:         make(map[string]sim.ModelID),
		meshes:      make(map[sim.ModelID]*Mesh),
		ready:       make(chan struct{}),
	}
}

// Load builds every path concurrently and blocks until done. The first
// failure cancels the rest. Ready is closed once Load returns.
func (l *Library) Load(ctx context.Context, paths ...string) error {
	err := l.load(ctx, paths)
	l.readyOnce.Do(func() {
		l.mu.Lock()
		l.err = err
		l.mu.Unlock()
		close(l.ready)
	})
	return err
}

// LoadAsync is Load on a background goroutine; wait on Ready and check Err.
func (l *Library) LoadAsync(ctx context.Context, paths ...string) {
	go func() {
		if err := l.Load(ctx, paths...); err != nil {
			slog.Error("asset load failed", "err", err)
		}
	}()
}

func (l *Library) load(ctx context.Context, paths []string) error {
	for _, p := range paths {
		if _, ok := catalog[p]; !ok {
			return fmt.Errorf("load %q: %w", p, ErrUnknownModel)
		}
	}

	l.mu.Lock()
	ids := make([]sim.ModelID, len(paths))
	for i, p := range paths {
		id, ok := l.ids[p]
		if !ok {
			id = sim.ModelID(len(l.ids) + 1)
			l.ids[p] = id
		}
		ids[i] = id
	}
	l.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, l.Parallelism))
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("load %q: %w", p, err)
			}
			m := build(p, catalog[p])
			l.mu.Lock()
			l.meshes[ids[i]] = m
			l.mu.Unlock()
			slog.Debug("model built", "path", p, "id", ids[i], "vertices", m.VertexCount())
			return nil
		})
	}
	return g.Wait()
}

func (l *Library) Ready() <-chan struct{} { return l.ready }

// Err is the result of the first Load, valid after Ready is closed.
func (l *Library) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

func (l *Library) ID(path string) (sim.ModelID, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.ids[path]
	if !ok {
		return 0, false
	}
	_, built := l.meshes[id]
	return id, built
}

func (l *Library) Mesh(id sim.ModelID) (*Mesh, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.meshes[id]
	return m, ok
}

// Each visits every built mesh.
func (l *Library) Each(fn func(sim.ModelID, *Mesh)) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for id, m := range l.meshes {
		fn(id, m)
	}
}

// Extent returns the bounds of a built model.
func (l *Library) Extent(id sim.ModelID) (sim.Extent, bool) {
	m, ok := l.Mesh(id)
	if !ok {
		return sim.Extent{}, false
	}
	return m.Bounds, true
}

// Assets packages built models into the world's ready signal.
func (l *Library) Assets(road, player string, vehicles ...string) (sim.Assets, error) {
	var a sim.Assets
	id, ok := l.ID(road)
	if !ok {
		return a, fmt.Errorf("road %q: %w", road, ErrUnknownModel)
	}
	ext, _ := l.Extent(id)
	a.Road = sim.RoadAsset{Model: id, Extent: ext}

	if a.Player, ok = l.ID(player); !ok {
		return a, fmt.Errorf("player %q: %w", player, ErrUnknownModel)
	}
	for _, v := range vehicles {
		id, ok := l.ID(v)
		if !ok {
			return a, fmt.Errorf("vehicle %q: %w", v, ErrUnknownModel)
		}
		a.Vehicles = append(a.Vehicles, id)
	}
	return a, nil
}

// DefaultPaths is everything the game needs.
func DefaultPaths() []string {
	return append([]string{RoadSegment, PlayerCar, UnitBox}, VehiclePaths...)
}
