package engine

import "github.com/roach88/semmeta/internal/ir"

// view resolves names for the duration of one event. The event snapshot
// overrides the graph for its own name; a removed name is absent.
type view struct {
	graph     ItemGraph
	overrides map[string]ir.Item
	removed   map[string]bool
}

func (e *Engine) newView() *view {
	return &view{
		graph:     e.graph,
		overrides: make(map[string]ir.Item, 1),
		removed:   make(map[string]bool, 1),
	}
}

func (v *view) override(item ir.Item) {
	v.overrides[item.Name] = item
	delete(v.removed, item.Name)
}

func (v *view) remove(name string) {
	v.removed[name] = true
	delete(v.overrides, name)
}

func (v *view) get(name string) (ir.Item, bool) {
	if v.removed[name] {
		return ir.Item{}, false
	}
	if item, ok := v.overrides[name]; ok {
		return item, true
	}
	if v.graph == nil {
		return ir.Item{}, false
	}
	return v.graph.Get(name)
}
