package spawn

import "github.com/udisondev/worldkit/internal/model"

// SpawnEvent requests that Object be instantiated now at Transform
// (parent-local placement). Comparable with ==; the zero value is a placeholder.
type SpawnEvent struct {
	Object    model.GameObject
	Transform model.Transform
}

// NewSpawnEvent creates spawn event for object at transform.
func NewSpawnEvent(object model.GameObject, transform model.Transform) SpawnEvent {
	return SpawnEvent{
		Object:    object,
		Transform: transform,
	}
}

// DelayedSpawnEvent holds Event back for TickDelay simulation ticks.
type DelayedSpawnEvent struct {
	TickDelay uint
	Event     SpawnEvent
}

// NewDelayedSpawnEvent wraps ev with delay ticks.
func NewDelayedSpawnEvent(delay uint, ev SpawnEvent) DelayedSpawnEvent {
	return DelayedSpawnEvent{
		TickDelay: delay,
		Event:     ev,
	}
}

// PassTick consumes one tick of the delay. TickDelay never goes below zero.
func (e *DelayedSpawnEvent) PassTick() *DelayedSpawnEvent {
	if e.TickDelay > 0 {
		e.TickDelay--
	}
	return e
}

// IsDone reports whether the delay has run out.
func (e *DelayedSpawnEvent) IsDone() bool {
	return e.TickDelay == 0
}

// ParentChangeEvent is emitted after node Name was moved under NewParent.
// HasParent is false when the node was detached to the root; an attached
// node may still have an empty NewParent if its parent is unnamed.
type ParentChangeEvent struct {
	Name      string
	NewParent string
	HasParent bool
}

// IsDetached reports whether the node now has no parent.
func (e ParentChangeEvent) IsDetached() bool {
	return !e.HasParent
}

// DuplicationEvent is emitted after node Name was duplicated.
type DuplicationEvent struct {
	Name string
}
