package engine

import (
	"sync"

	"github.com/roach88/semmeta/internal/ir"
)

// EventType distinguishes between item event kinds.
type EventType int

const (
	// EventAdded reports a newly added item.
	EventAdded EventType = iota + 1
	// EventUpdated reports a changed item; Old holds the previous snapshot.
	EventUpdated
	// EventRemoved reports a removed item.
	EventRemoved
)

// String returns the lowercase event name.
func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventUpdated:
		return "updated"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event wraps an item mutation for the event queue.
type Event struct {
	Type EventType
	Item ir.Item
	Old  ir.Item
}

// AddedEvent returns an event for a newly added item.
func AddedEvent(item ir.Item) Event {
	return Event{Type: EventAdded, Item: item}
}

// UpdatedEvent returns an event for a changed item.
func UpdatedEvent(old, item ir.Item) Event {
	return Event{Type: EventUpdated, Old: old, Item: item}
}

// RemovedEvent returns an event for a removed item.
func RemovedEvent(item ir.Item) Event {
	return Event{Type: EventRemoved, Item: item}
}

// eventQueue is a thread-safe FIFO queue for events.
//
// The queue is unbounded so producers (graph loaders, registry watchers)
// never block on a slow listener.
//
// Thread-safety is provided for external enqueuing while the Engine's Run
// loop dequeues.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop (prevents goroutine hangs on context cancellation).
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // Signals event availability (buffered, size 1)
}

// newEventQueue creates an empty event queue.
func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 64), // Pre-allocate for typical workloads
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Signal availability (non-blocking - buffer of 1 coalesces multiple signals)
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (Event{}, false) if queue is empty.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]

	// Zero the slot so the backing array drops the item slices.
	q.events[0] = Event{}

	// Fix memory retention: reset slice when empty
	if len(q.events) == 1 {
		// Last element - reset to empty slice with original capacity
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that signals when events may be available.
// Use with select for context-aware waiting:
//
//	select {
//	case <-ctx.Done():
//	    return ctx.Err()
//	case <-q.Wait():
//	    // Try TryDequeue
//	}
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close signals that no more events will be enqueued.
// Wakes any blocked waiters by closing the signal channel.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return // Already closed
	}

	q.closed = true
	close(q.signal) // Wakes all waiters
}

// Closed reports whether Close has been called.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
