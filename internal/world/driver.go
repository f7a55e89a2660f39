package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/worldkit/internal/navmesh"
	"github.com/udisondev/worldkit/internal/scene"
	"github.com/udisondev/worldkit/internal/spawn"
)

// ErrShutdown is returned by Step once the driver was shut down.
var ErrShutdown = errors.New("world driver shut down")

// NavMeshStore persists baked navigation meshes.
type NavMeshStore interface {
	SaveBake(ctx context.Context, res navmesh.BakeResult) error
}

// StepReport summarizes one simulation tick.
type StepReport struct {
	Tick          uint64
	Spawned       int
	Baked         int
	ParentChanges int
	Duplications  int
}

// Driver runs the simulation tick: delayed spawns are released into the
// graph, newly labeled markers are baked and scene notices are handed to
// subscribers. Steps never overlap.
type Driver struct {
	graph   *scene.Graph
	spawns  *spawn.Manager
	deriver *navmesh.Deriver
	store   NavMeshStore

	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once

	stepMu sync.Mutex
	closed bool
	ticks  atomic.Uint64

	subMu         sync.RWMutex
	onParent      []func(spawn.ParentChangeEvent)
	onDuplication []func(spawn.DuplicationEvent)
	onBake        []func(navmesh.BakeResult)
}

// NewDriver creates tick driver. deriver must bake into graph.
func NewDriver(graph *scene.Graph, spawns *spawn.Manager, deriver *navmesh.Deriver, interval time.Duration) *Driver {
	return &Driver{
		graph:    graph,
		spawns:   spawns,
		deriver:  deriver,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// SetNavMeshStore enables persistence of baked meshes. Call before Start.
func (d *Driver) SetNavMeshStore(store NavMeshStore) {
	d.store = store
}

// OnParentChange subscribes fn to parent change notices.
func (d *Driver) OnParentChange(fn func(spawn.ParentChangeEvent)) {
	d.subMu.Lock()
	d.onParent = append(d.onParent, fn)
	d.subMu.Unlock()
}

// OnDuplication subscribes fn to duplication notices.
func (d *Driver) OnDuplication(fn func(spawn.DuplicationEvent)) {
	d.subMu.Lock()
	d.onDuplication = append(d.onDuplication, fn)
	d.subMu.Unlock()
}

// OnBake subscribes fn to finished bakes.
func (d *Driver) OnBake(fn func(navmesh.BakeResult)) {
	d.subMu.Lock()
	d.onBake = append(d.onBake, fn)
	d.subMu.Unlock()
}

// Ticks returns number of completed steps.
func (d *Driver) Ticks() uint64 {
	return d.ticks.Load()
}

// Start runs the tick loop (blocks until context is canceled or Stop is called).
func (d *Driver) Start(ctx context.Context) error {
	if d.interval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", d.interval)
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	slog.Info("world driver started", "interval", d.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("world driver stopping")
			return ctx.Err()

		case <-d.stopCh:
			slog.Info("world driver stopped")
			return nil

		case <-ticker.C:
			_, err := d.Step(ctx)
			if errors.Is(err, ErrShutdown) {
				return nil
			}
			if err != nil {
				slog.Error("world tick failed", "tick", d.Ticks(), "error", err)
			}
		}
	}
}

// Stop stops the tick loop. Safe to call more than once.
func (d *Driver) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })
}

// Shutdown stops the tick loop and saves the pending spawns. It waits for a
// step in progress and later steps return ErrShutdown, so an entry released
// by the last step is never saved as pending.
func (d *Driver) Shutdown(ctx context.Context) error {
	d.Stop()

	d.stepMu.Lock()
	defer d.stepMu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	if err := d.spawns.Save(ctx); err != nil {
		return err
	}
	slog.Info("world driver shut down", "ticks", d.Ticks())
	return nil
}

// Step runs one tick. Failures inside the tick are joined into the returned
// error; the rest of the tick still runs.
func (d *Driver) Step(ctx context.Context) (StepReport, error) {
	d.stepMu.Lock()
	defer d.stepMu.Unlock()

	if d.closed {
		return StepReport{}, ErrShutdown
	}

	var errs []error
	report := StepReport{Tick: d.ticks.Add(1)}

	spawned, err := d.spawns.Tick(ctx)
	report.Spawned = spawned
	if err != nil {
		errs = append(errs, err)
	}

	results, err := d.deriver.Derive(d.graph.DrainAdded())
	report.Baked = len(results)
	if err != nil {
		errs = append(errs, err)
	}
	for _, res := range results {
		if d.store != nil {
			if err := d.store.SaveBake(ctx, res); err != nil {
				errs = append(errs, fmt.Errorf("persisting navmesh of node %d: %w", res.Node, err))
			}
		}
		d.publishBake(res)
	}

	parents := d.graph.DrainParentChanges()
	dups := d.graph.DrainDuplications()
	report.ParentChanges = len(parents)
	report.Duplications = len(dups)
	d.publishNotices(parents, dups)

	if report.Spawned > 0 || report.Baked > 0 {
		slog.Debug("world tick",
			"tick", report.Tick,
			"spawned", report.Spawned,
			"baked", report.Baked)
	}

	return report, errors.Join(errs...)
}

func (d *Driver) publishBake(res navmesh.BakeResult) {
	d.subMu.RLock()
	defer d.subMu.RUnlock()

	for _, fn := range d.onBake {
		fn(res)
	}
}

func (d *Driver) publishNotices(parents []spawn.ParentChangeEvent, dups []spawn.DuplicationEvent) {
	d.subMu.RLock()
	defer d.subMu.RUnlock()

	for _, ev := range parents {
		for _, fn := range d.onParent {
			fn(ev)
		}
	}
	for _, ev := range dups {
		for _, fn := range d.onDuplication {
			fn(ev)
		}
	}
}
