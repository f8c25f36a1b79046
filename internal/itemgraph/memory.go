// Package itemgraph provides item graphs the engine resolves names against.
package itemgraph

import (
	"slices"
	"sync"

	"github.com/roach88/semmeta/internal/ir"
)

// Memory is an in-memory item graph.
//
// Group membership is one relation seen from two sides: an item listing a
// group in GroupNames is a member of that group, and a group listing an item
// in Members is one of its groups. Get returns both sides merged, declared
// names first, then names contributed by the other side in insertion order.
//
// Thread-safety: Memory is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	items map[string]ir.Item
	order []string
}

// NewMemory returns a graph holding items, in order.
func NewMemory(items ...ir.Item) *Memory {
	m := &Memory{items: make(map[string]ir.Item, len(items))}
	for _, item := range items {
		m.Put(item)
	}
	return m
}

// Put stores an item snapshot, replacing any item with the same name. It
// returns the resolved previous snapshot when one existed.
func (m *Memory) Put(item ir.Item) (ir.Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, existed := m.items[item.Name]
	if existed {
		old = m.resolve(old)
	} else {
		m.order = append(m.order, item.Name)
	}
	m.items[item.Name] = item.Clone()
	return old, existed
}

// Remove deletes an item and returns its resolved snapshot as it was just
// before removal.
func (m *Memory) Remove(name string) (ir.Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[name]
	if !ok {
		return ir.Item{}, false
	}
	resolved := m.resolve(item)
	delete(m.items, name)
	m.order = slices.DeleteFunc(m.order, func(n string) bool { return n == name })
	return resolved, true
}

// Get returns the resolved snapshot for name.
func (m *Memory) Get(name string) (ir.Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[name]
	if !ok {
		return ir.Item{}, false
	}
	return m.resolve(item), true
}

// All returns resolved snapshots of every item in insertion order.
func (m *Memory) All() []ir.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ir.Item, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.resolve(m.items[name]))
	}
	return out
}

// Len returns the number of items.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// resolve merges the reverse side of the membership relation into a copy of
// item. Caller must hold the lock.
func (m *Memory) resolve(item ir.Item) ir.Item {
	out := item.Clone()
	for _, name := range m.order {
		if name == item.Name {
			continue
		}
		other := m.items[name]
		if item.IsGroup() && slices.Contains(other.GroupNames, item.Name) && !slices.Contains(out.Members, name) {
			out.Members = append(out.Members, name)
		}
		if other.IsGroup() && slices.Contains(other.Members, item.Name) && !slices.Contains(out.GroupNames, name) {
			out.GroupNames = append(out.GroupNames, name)
		}
	}
	return out
}
