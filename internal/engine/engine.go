package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/roach88/semmeta/internal/ir"
)

// ItemGraph resolves item names to snapshots.
// Implemented by itemgraph.Memory.
type ItemGraph interface {
	Get(name string) (ir.Item, bool)
}

// TagRegistry classifies semantic tags.
// Implemented by tags.Registry.
type TagRegistry interface {
	Classify(tag string) (ir.Category, bool)
}

// Engine is the semantic metadata engine.
//
// Thread-safety model:
//   - Added/Updated/Removed/Get/GetAll: safe from any goroutine, serialized
//     behind one lock
//   - Enqueue(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//
// Listener notifications and cycle hooks are delivered after the lock is
// released, one mutation at a time in the order the mutations completed.
// Listeners may call Get, GetAll, Len, AddListener and Enqueue. A listener
// that calls Added, Updated or Removed blocks forever, since that mutation
// waits for the current delivery to finish.
type Engine struct {
	mu        sync.Mutex
	graph     ItemGraph
	registry  TagRegistry
	records   map[string]ir.Metadata
	listeners []listenerEntry
	nextID    int
	source    string
	logger    *slog.Logger
	cycleHook func(*RuntimeError)
	queue     *eventQueue

	// pending and issued are guarded by mu.
	pending  []notification
	issued   uint64
	dispatch *dispatcher
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSource sets the source identifier passed to listeners.
// Default: a fresh UUIDv7.
func WithSource(source string) EngineOption {
	return func(e *Engine) {
		e.source = source
	}
}

// WithSourceGenerator derives the source identifier from gen.
func WithSourceGenerator(gen SourceGenerator) EngineOption {
	return func(e *Engine) {
		e.source = gen.Generate()
	}
}

// WithListener registers a listener at construction.
func WithListener(l Listener) EngineOption {
	return func(e *Engine) {
		e.addListener(l)
	}
}

// WithCycleHook sets a function called for every recursive membership
// found during traversal, after it is logged.
func WithCycleHook(hook func(*RuntimeError)) EngineOption {
	return func(e *Engine) {
		e.cycleHook = hook
	}
}

// New creates an Engine resolving names against graph and classifying tags
// with registry. A nil graph resolves only the snapshots carried by events.
func New(graph ItemGraph, registry TagRegistry, opts ...EngineOption) *Engine {
	e := &Engine{
		graph:    graph,
		registry: registry,
		records:  make(map[string]ir.Metadata),
		logger:   slog.Default(),
		queue:    newEventQueue(),
		dispatch: newDispatcher(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.source == "" {
		e.source = UUIDv7Generator{}.Generate()
	}

	return e
}

// Source returns the identifier passed to listeners.
func (e *Engine) Source() string {
	return e.source
}

// Added processes a newly added item. If the item is a group, every member
// reachable without re-entering an ancestor is recomputed.
func (e *Engine) Added(item ir.Item) {
	e.mutate(func() { e.added(item) })
}

// Updated processes a changed item. Old and new must name the same item;
// otherwise the mismatch is logged and the call is handled as a removal of
// old followed by an addition of new.
func (e *Engine) Updated(old, item ir.Item) {
	e.mutate(func() { e.updated(old, item) })
}

// updated handles a change. Caller must hold e.mu.
func (e *Engine) updated(old, item ir.Item) {
	if old.Name != item.Name {
		err := NewIdentityMismatchError(old.Name, item.Name)
		e.logger.Warn(err.Message, "code", string(err.Code), "old", old.Name, "new", item.Name)
		e.removed(old)
		e.added(item)
		return
	}

	v := e.newView()
	v.override(item)
	e.process(v, item, nil)

	// Former members lose this group as an ancestor.
	if old.IsGroup() {
		for _, name := range old.Members {
			if slices.Contains(item.Members, name) {
				continue
			}
			if member, ok := v.get(name); ok {
				e.process(v, member, nil)
			}
		}
	}
}

// Removed processes a removed item. Its record, if any, is dropped. If the
// item is a group, its members are recomputed without it.
func (e *Engine) Removed(item ir.Item) {
	e.mutate(func() { e.removed(item) })
}

// added handles an addition. Caller must hold e.mu.
func (e *Engine) added(item ir.Item) {
	v := e.newView()
	v.override(item)
	e.process(v, item, nil)
}

// removed handles a removal. Caller must hold e.mu.
func (e *Engine) removed(item ir.Item) {
	v := e.newView()
	v.remove(item.Name)

	if old, ok := e.records[item.Name]; ok {
		delete(e.records, item.Name)
		e.emit(ir.ChangeRemoved, old, ir.Metadata{})
	}

	if !item.IsGroup() {
		return
	}
	for _, name := range item.Members {
		if member, ok := v.get(name); ok {
			e.process(v, member, nil)
		}
	}
}

// process recomputes item and, for groups, its members depth-first.
// path holds the groups above item. Caller must hold e.mu.
func (e *Engine) process(v *view, item ir.Item, path ancestorPath) {
	e.refresh(v, item)

	if !item.IsGroup() {
		return
	}

	childPath := path.with(item.Name)
	for _, name := range item.Members {
		if childPath.contains(name) {
			e.reportCycle(name, item.Name, childPath)
			continue
		}
		member, ok := v.get(name)
		if !ok {
			continue
		}
		e.process(v, member, childPath)
	}
}

// refresh derives the record for item and emits the difference against the
// stored record. Caller must hold e.mu.
func (e *Engine) refresh(v *view, item ir.Item) {
	old, had := e.records[item.Name]
	md, has := e.derive(v, item)

	switch {
	case !had && has:
		e.records[item.Name] = md
		e.emit(ir.ChangeAdded, ir.Metadata{}, md)
	case had && has && !old.Equal(md):
		e.records[item.Name] = md
		e.emit(ir.ChangeUpdated, old, md)
	case had && !has:
		delete(e.records, item.Name)
		e.emit(ir.ChangeRemoved, old, ir.Metadata{})
	}
}

// Get returns the record for uid. Only the semantics namespace holds
// records.
func (e *Engine) Get(uid ir.MetadataKey) (ir.Metadata, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if uid.Namespace != ir.MetadataNamespace {
		return ir.Metadata{}, false
	}
	md, ok := e.records[uid.ItemName]
	if !ok {
		return ir.Metadata{}, false
	}
	return md.Clone(), true
}

// GetAll returns a snapshot of every record, sorted by item name.
func (e *Engine) GetAll() []ir.Metadata {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]ir.Metadata, 0, len(e.records))
	for _, md := range e.records {
		out = append(out, md.Clone())
	}
	slices.SortFunc(out, func(a, b ir.Metadata) int {
		return strings.Compare(a.UID.ItemName, b.UID.ItemName)
	})
	return out
}

// Len returns the number of records.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.records)
}

// Enqueue submits an event for processing by the Run loop.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(ev Event) bool {
	return e.queue.Enqueue(ev)
}

// Run starts the single-writer event loop.
// Blocks until context is cancelled or Stop() is called and the queue is
// drained.
//
// CRITICAL: Must be called from exactly ONE goroutine.
//
// ERROR HANDLING: an event that cannot be processed is logged with its
// context and processing continues.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting", "source", e.source)

	for {
		event, ok := e.queue.TryDequeue()
		if ok {
			if err := e.processEvent(event); err != nil {
				e.logEventError(event, err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel closes when the queue is closed, so this
			// fires immediately once Stop has been called.
			if e.queue.Len() == 0 && e.queue.Closed() {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop gracefully shuts down the engine.
// Closes the event queue; Run returns once the queue is drained.
func (e *Engine) Stop() {
	e.queue.Close()
}

// processEvent routes an event to the appropriate handler.
func (e *Engine) processEvent(event Event) error {
	switch event.Type {
	case EventAdded:
		e.Added(event.Item)
	case EventUpdated:
		e.Updated(event.Old, event.Item)
	case EventRemoved:
		e.Removed(event.Item)
	default:
		return &RuntimeError{
			Code:    ErrCodeUnknownEvent,
			Message: fmt.Sprintf("unknown event type: %d", event.Type),
			Item:    event.Item.Name,
		}
	}
	return nil
}

// logEventError logs a failed event with its context.
func (e *Engine) logEventError(event Event, err error) {
	e.logger.Error("event processing failed",
		"error", err,
		"event_type", event.Type.String(),
		"item", event.Item.Name,
	)
}
