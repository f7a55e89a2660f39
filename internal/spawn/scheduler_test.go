package spawn

import (
	"testing"

	"github.com/google/uuid"

	"github.com/udisondev/worldkit/internal/model"
)

func TestScheduler_ReleaseAfterDelay(t *testing.T) {
	s := NewScheduler()
	e := NewSpawnEvent(model.GameObjectNpc, model.FromTranslation(17, 0, -35))
	s.Schedule(NewDelayedSpawnEvent(3, e))

	for tick := 1; tick <= 2; tick++ {
		if released := s.PassTick(); len(released) != 0 {
			t.Fatalf("tick %d: released %d events, want 0", tick, len(released))
		}
		if s.Len() != 1 {
			t.Fatalf("tick %d: Len() = %d, want 1", tick, s.Len())
		}
	}

	released := s.PassTick()
	if len(released) != 1 {
		t.Fatalf("tick 3: released %d events, want 1", len(released))
	}
	if released[0] != e {
		t.Errorf("released event = %+v, want %+v", released[0], e)
	}
	if s.Len() != 0 {
		t.Errorf("Len() after release = %d, want 0", s.Len())
	}

	// Never released twice.
	if again := s.PassTick(); len(again) != 0 {
		t.Errorf("tick 4: released %d events, want 0", len(again))
	}
}

func TestScheduler_ZeroDelayReleasedOnNextTick(t *testing.T) {
	s := NewScheduler()
	s.Schedule(NewDelayedSpawnEvent(0, NewSpawnEvent(model.GameObjectOrb, model.IdentityTransform())))

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	if released := s.PassTick(); len(released) != 1 {
		t.Fatalf("released %d events, want 1", len(released))
	}
}

func TestScheduler_InsertionOrderWithinTick(t *testing.T) {
	s := NewScheduler()
	objects := []model.GameObject{"a", "b", "c", "d"}
	for _, o := range objects {
		s.Schedule(NewDelayedSpawnEvent(2, NewSpawnEvent(o, model.IdentityTransform())))
	}
	s.Schedule(NewDelayedSpawnEvent(5, NewSpawnEvent("late", model.IdentityTransform())))

	s.PassTick()
	released := s.PassTick()
	if len(released) != len(objects) {
		t.Fatalf("released %d events, want %d", len(released), len(objects))
	}
	for i, ev := range released {
		if ev.Object != objects[i] {
			t.Errorf("released[%d].Object = %s, want %s", i, ev.Object, objects[i])
		}
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestScheduler_Cancel(t *testing.T) {
	s := NewScheduler()
	id := s.Schedule(NewDelayedSpawnEvent(10, SpawnEvent{Object: model.GameObjectNpc}))

	if !s.Cancel(id) {
		t.Fatal("Cancel() = false, want true")
	}
	if s.Len() != 0 {
		t.Errorf("Len() after cancel = %d, want 0", s.Len())
	}
	if s.Cancel(id) {
		t.Error("second Cancel() = true, want false")
	}
	if s.Cancel(uuid.New()) {
		t.Error("Cancel() of unknown id = true, want false")
	}
}

func TestScheduler_PendingSnapshotAndRestore(t *testing.T) {
	s := NewScheduler()
	id := s.Schedule(NewDelayedSpawnEvent(4, SpawnEvent{Object: model.GameObjectLevel}))
	s.PassTick()

	snapshot := s.Pending()
	if len(snapshot) != 1 {
		t.Fatalf("len(Pending()) = %d, want 1", len(snapshot))
	}
	if snapshot[0].ID != id || snapshot[0].Delayed.TickDelay != 3 {
		t.Errorf("snapshot = %+v, want id %s delay 3", snapshot[0], id)
	}

	// Mutating the snapshot must not touch the scheduler.
	snapshot[0].Delayed.TickDelay = 0
	if p, _ := findPending(s, id); p.Delayed.TickDelay != 3 {
		t.Errorf("scheduler delay = %d after snapshot mutation, want 3", p.Delayed.TickDelay)
	}

	restored := NewScheduler()
	restored.Restore(s.Pending())
	for range 2 {
		restored.PassTick()
	}
	if released := restored.PassTick(); len(released) != 1 || released[0].Object != model.GameObjectLevel {
		t.Errorf("restored scheduler released %+v, want one level", released)
	}
}

func TestScheduler_EmptyTick(t *testing.T) {
	s := NewScheduler()
	if released := s.PassTick(); released != nil {
		t.Errorf("PassTick() on empty scheduler = %v, want nil", released)
	}
}

func findPending(s *Scheduler, id uuid.UUID) (PendingSpawn, bool) {
	for _, p := range s.Pending() {
		if p.ID == id {
			return p, true
		}
	}
	return PendingSpawn{}, false
}
