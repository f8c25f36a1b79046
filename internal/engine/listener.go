package engine

import (
	"sync"

	"github.com/roach88/semmeta/internal/ir"
)

// Listener receives record change notifications.
//
// Notifications are delivered synchronously, in registration order, after
// the engine lock is released. Each record passed is a copy.
type Listener interface {
	Added(source string, md ir.Metadata)
	Updated(source string, old, md ir.Metadata)
	Removed(source string, md ir.Metadata)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	OnAdded   func(source string, md ir.Metadata)
	OnUpdated func(source string, old, md ir.Metadata)
	OnRemoved func(source string, md ir.Metadata)
}

func (f ListenerFuncs) Added(source string, md ir.Metadata) {
	if f.OnAdded != nil {
		f.OnAdded(source, md)
	}
}

func (f ListenerFuncs) Updated(source string, old, md ir.Metadata) {
	if f.OnUpdated != nil {
		f.OnUpdated(source, old, md)
	}
}

func (f ListenerFuncs) Removed(source string, md ir.Metadata) {
	if f.OnRemoved != nil {
		f.OnRemoved(source, md)
	}
}

type listenerEntry struct {
	id       int
	listener Listener
}

// AddListener registers l and returns a function that unregisters it.
// Safe to call from any goroutine, including from inside a listener. A
// listener added during a delivery first hears the next mutation.
func (e *Engine) AddListener(l Listener) (remove func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.addListener(l)
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, entry := range e.listeners {
			if entry.id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// addListener appends l. Caller must hold e.mu (or be constructing e).
func (e *Engine) addListener(l Listener) int {
	e.nextID++
	e.listeners = append(e.listeners, listenerEntry{id: e.nextID, listener: l})
	return e.nextID
}

// Clock stamps recorded changes with sequence numbers.
// Implemented by ir.Clock.
type Clock interface {
	Next() int64
}

// Recorder is a Listener that keeps every change in emission order.
//
// Thread-safety: Recorder is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	clock   Clock
	changes []ir.Change
}

// NewRecorder returns a recorder stamping changes from clock. A nil clock
// uses a fresh ir.Clock.
func NewRecorder(clock Clock) *Recorder {
	if clock == nil {
		clock = ir.NewClock()
	}
	return &Recorder{clock: clock}
}

func (r *Recorder) Added(source string, md ir.Metadata) {
	r.record(source, ir.ChangeAdded, nil, &md)
}

func (r *Recorder) Updated(source string, old, md ir.Metadata) {
	r.record(source, ir.ChangeUpdated, &old, &md)
}

func (r *Recorder) Removed(source string, md ir.Metadata) {
	r.record(source, ir.ChangeRemoved, &md, nil)
}

func (r *Recorder) record(source string, kind ir.ChangeKind, old, md *ir.Metadata) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := ir.Change{
		Seq:    r.clock.Next(),
		Source: source,
		Kind:   kind,
		Old:    old,
		New:    md,
	}
	c.ItemName = c.Record().UID.ItemName
	r.changes = append(r.changes, c)
}

// Changes returns a copy of the recorded changes.
func (r *Recorder) Changes() []ir.Change {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ir.Change, len(r.changes))
	copy(out, r.changes)
	return out
}

// Reset discards recorded changes.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = nil
}
