package engine

import (
	"slices"
	"sync"

	"github.com/roach88/semmeta/internal/ir"
)

// notification is one listener or cycle-hook call queued during a mutation.
// Exactly one of kind and cycle is set.
type notification struct {
	kind  ir.ChangeKind
	old   ir.Metadata
	md    ir.Metadata
	cycle *RuntimeError
}

// batch is everything one mutation produced, with the listeners registered
// when it was computed.
type batch struct {
	ticket    uint64
	notes     []notification
	listeners []listenerEntry
	hook      func(*RuntimeError)
	source    string
}

// dispatcher releases batches in ticket order. Waiting happens outside the
// engine lock, so listeners may query the engine while they run.
type dispatcher struct {
	mu   sync.Mutex
	cond *sync.Cond
	next uint64
}

func newDispatcher() *dispatcher {
	d := &dispatcher{}
	d.cond = sync.NewCond(&d.mu)
	return d
}

// acquire blocks until ticket is the next batch to deliver.
func (d *dispatcher) acquire(ticket uint64) {
	d.mu.Lock()
	for d.next != ticket {
		d.cond.Wait()
	}
	d.mu.Unlock()
}

// release lets the following ticket proceed.
func (d *dispatcher) release() {
	d.mu.Lock()
	d.next++
	d.mu.Unlock()
	d.cond.Broadcast()
}

// mutate runs fn under the engine lock and then delivers what it queued.
func (e *Engine) mutate(fn func()) {
	b := e.collect(fn)
	e.dispatch.acquire(b.ticket)
	defer e.dispatch.release()
	b.deliver()
}

// collect runs fn under the engine lock and takes its queued notifications.
// A ticket is issued only when fn returns, so a panicking mutation never
// stalls later deliveries.
func (e *Engine) collect(fn func()) batch {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pending = nil
	fn()

	b := batch{
		ticket:    e.issued,
		notes:     e.pending,
		listeners: slices.Clone(e.listeners),
		hook:      e.cycleHook,
		source:    e.source,
	}
	e.issued++
	e.pending = nil
	return b
}

// emit queues one change for listeners. Caller must hold e.mu.
func (e *Engine) emit(kind ir.ChangeKind, old, md ir.Metadata) {
	e.pending = append(e.pending, notification{kind: kind, old: old, md: md})
}

// queueCycle queues err for the cycle hook. Caller must hold e.mu.
func (e *Engine) queueCycle(err *RuntimeError) {
	e.pending = append(e.pending, notification{cycle: err})
}

func (b batch) deliver() {
	for _, n := range b.notes {
		if n.cycle != nil {
			if b.hook != nil {
				b.hook(n.cycle)
			}
			continue
		}
		for _, entry := range b.listeners {
			switch n.kind {
			case ir.ChangeAdded:
				entry.listener.Added(b.source, n.md.Clone())
			case ir.ChangeUpdated:
				entry.listener.Updated(b.source, n.old.Clone(), n.md.Clone())
			case ir.ChangeRemoved:
				entry.listener.Removed(b.source, n.old.Clone())
			}
		}
	}
}
