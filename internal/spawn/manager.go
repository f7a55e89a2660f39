package spawn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Instantiator creates objects described by spawn events.
type Instantiator interface {
	Instantiate(ctx context.Context, ev SpawnEvent) error
}

// PendingStore persists the pending delayed spawns across restarts.
type PendingStore interface {
	LoadPending(ctx context.Context) ([]PendingSpawn, error)
	ReplacePending(ctx context.Context, pending []PendingSpawn) error
}

// Manager routes spawn requests to the instantiator, either immediately or
// through the delayed spawn scheduler.
type Manager struct {
	scheduler    *Scheduler
	instantiator Instantiator
	store        PendingStore
}

// NewManager creates new spawn manager. store may be nil.
func NewManager(scheduler *Scheduler, instantiator Instantiator, store PendingStore) *Manager {
	return &Manager{
		scheduler:    scheduler,
		instantiator: instantiator,
		store:        store,
	}
}

// Scheduler returns underlying delayed spawn scheduler
func (m *Manager) Scheduler() *Scheduler {
	return m.scheduler
}

// Spawn instantiates ev immediately
func (m *Manager) Spawn(ctx context.Context, ev SpawnEvent) error {
	if err := m.instantiator.Instantiate(ctx, ev); err != nil {
		return fmt.Errorf("spawning %s: %w", ev.Object, err)
	}

	slog.Debug("object spawned",
		"object", ev.Object,
		"translation", ev.Transform.Translation)
	return nil
}

// SpawnDelayed schedules ev for release after its tick delay
func (m *Manager) SpawnDelayed(ev DelayedSpawnEvent) uuid.UUID {
	return m.scheduler.Schedule(ev)
}

// Tick passes one simulation tick and instantiates every released spawn.
// A failed instantiation does not stop the others; failures are joined.
func (m *Manager) Tick(ctx context.Context) (int, error) {
	released := m.scheduler.PassTick()

	var errs []error
	spawned := 0
	for _, ev := range released {
		if err := m.Spawn(ctx, ev); err != nil {
			slog.Error("delayed spawn failed",
				"object", ev.Object,
				"error", err)
			errs = append(errs, err)
			continue
		}
		spawned++
	}

	return spawned, errors.Join(errs...)
}

// authoredNamespace scopes the identifiers of authored spawns.
var authoredNamespace = uuid.MustParse("5b0f3c1e-8d2a-4e6b-9c7f-2a1d4e8b6c30")

// AuthoredID returns the stable identifier of the index-th authored spawn.
// Authored identifiers are name-based (version 5); runtime ones are random.
func AuthoredID(index int, ev DelayedSpawnEvent) uuid.UUID {
	return uuid.NewSHA1(authoredNamespace, fmt.Appendf(nil, "%d/%s", index, ev.Event.Object))
}

func isAuthored(id uuid.UUID) bool {
	return id.Version() == 5
}

// Resume builds the pending set at startup. The scene is rebuilt on every
// boot, so every authored spawn is scheduled again: with the remaining delay
// the store holds for it, or with its authored delay when the store has none
// (first boot, or already released before the restart). Stored runtime
// entries are kept after the authored ones; stored authored entries that are
// no longer authored are dropped.
func (m *Manager) Resume(ctx context.Context, authored []DelayedSpawnEvent) error {
	var stored []PendingSpawn
	if m.store != nil {
		var err error
		if stored, err = m.store.LoadPending(ctx); err != nil {
			return fmt.Errorf("loading pending spawns: %w", err)
		}
	}

	remaining := make(map[uuid.UUID]uint, len(stored))
	for _, p := range stored {
		remaining[p.ID] = p.Delayed.TickDelay
	}

	entries := make([]PendingSpawn, 0, len(authored)+len(stored))
	resumed := 0
	for i, ev := range authored {
		id := AuthoredID(i, ev)
		if delay, ok := remaining[id]; ok {
			ev.TickDelay = delay
			resumed++
		}
		entries = append(entries, PendingSpawn{ID: id, Delayed: ev})
	}

	runtime := 0
	for _, p := range stored {
		if isAuthored(p.ID) {
			continue
		}
		entries = append(entries, p)
		runtime++
	}
	m.scheduler.Restore(entries)

	slog.Info("pending spawns resumed",
		"authored", len(authored),
		"resumed", resumed,
		"runtime", runtime)
	return nil
}

// Save writes pending spawns to the store
func (m *Manager) Save(ctx context.Context) error {
	if m.store == nil {
		return nil
	}

	pending := m.scheduler.Pending()
	if err := m.store.ReplacePending(ctx, pending); err != nil {
		return fmt.Errorf("saving pending spawns: %w", err)
	}

	slog.Info("pending spawns saved", "count", len(pending))
	return nil
}
