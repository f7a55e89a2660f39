package scene

import "sync"

// Queue collects notifications during a tick; the driver drains it once per tick.
// Push is safe from any goroutine, Drain is meant for a single consumer.
type Queue[T any] struct {
	mu     sync.Mutex
	events []T
}

// Push appends event.
func (q *Queue[T]) Push(event T) {
	q.mu.Lock()
	q.events = append(q.events, event)
	q.mu.Unlock()
}

// Drain returns all queued events in FIFO order and empties the queue.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = nil
	return out
}

// Len returns number of queued events.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
