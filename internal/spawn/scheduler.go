package spawn

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// PendingSpawn is a scheduled delayed spawn with its identifier.
type PendingSpawn struct {
	ID      uuid.UUID
	Delayed DelayedSpawnEvent
}

// Scheduler holds delayed spawns and releases them as ticks pass.
// Entries are kept in insertion order; entries released in the same tick
// come out in that order.
type Scheduler struct {
	mu      sync.Mutex
	pending []*PendingSpawn
}

// NewScheduler creates empty scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{
		pending: make([]*PendingSpawn, 0, 16),
	}
}

// Schedule adds delayed spawn and returns its ID
func (s *Scheduler) Schedule(ev DelayedSpawnEvent) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	s.pending = append(s.pending, &PendingSpawn{ID: id, Delayed: ev})

	slog.Debug("delayed spawn scheduled",
		"id", id,
		"object", ev.Event.Object,
		"tickDelay", ev.TickDelay)

	return id
}

// Cancel removes pending spawn. Returns false if it was not pending
// (never scheduled or already released).
func (s *Scheduler) Cancel(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.pending {
		if p.ID == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			slog.Debug("delayed spawn cancelled", "id", id)
			return true
		}
	}
	return false
}

// PassTick advances every pending entry by one tick and removes the ones that
// are done. Returned events are released exactly once.
func (s *Scheduler) PassTick() []SpawnEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil
	}

	var released []SpawnEvent
	kept := s.pending[:0]
	for _, p := range s.pending {
		if p.Delayed.PassTick().IsDone() {
			released = append(released, p.Delayed.Event)
			continue
		}
		kept = append(kept, p)
	}

	// Clear the tail so released entries can be collected.
	for i := len(kept); i < len(s.pending); i++ {
		s.pending[i] = nil
	}
	s.pending = kept

	return released
}

// Len returns number of pending spawns
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Pending returns a snapshot of pending spawns in release order
func (s *Scheduler) Pending() []PendingSpawn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PendingSpawn, len(s.pending))
	for i, p := range s.pending {
		out[i] = *p
	}
	return out
}

// Restore replaces the pending set with entries (e.g. loaded from storage).
func (s *Scheduler) Restore(entries []PendingSpawn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = make([]*PendingSpawn, 0, len(entries))
	for i := range entries {
		p := entries[i]
		s.pending = append(s.pending, &p)
	}
}
