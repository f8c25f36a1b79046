package engine

import (
	"log/slog"
	"testing"

	"github.com/roach88/semmeta/internal/ir"
	"github.com/roach88/semmeta/internal/itemgraph"
	"github.com/roach88/semmeta/internal/tags"
	"github.com/roach88/semmeta/internal/testutil"
)

// fixture wires an engine to a memory graph, the default taxonomy, a change
// recorder and a log recorder.
type fixture struct {
	graph *itemgraph.Memory
	eng   *Engine
	rec   *Recorder
	logs  *testutil.LogRecorder
}

func newFixture(t *testing.T, opts ...EngineOption) *fixture {
	t.Helper()
	f := &fixture{
		graph: itemgraph.NewMemory(),
		rec:   NewRecorder(ir.NewClock()),
		logs:  testutil.NewLogRecorder(slog.LevelDebug),
	}
	opts = append([]EngineOption{
		WithSource("test"),
		WithLogger(f.logs.Logger()),
		WithListener(f.rec),
	}, opts...)
	f.eng = New(f.graph, tags.MustDefault(), opts...)
	return f
}

// add stores item and notifies the engine with the resolved snapshot.
func (f *fixture) add(item ir.Item) {
	f.graph.Put(item)
	snap, _ := f.graph.Get(item.Name)
	f.eng.Added(snap)
}

// update replaces item and notifies the engine with both snapshots.
func (f *fixture) update(item ir.Item) {
	old, _ := f.graph.Put(item)
	snap, _ := f.graph.Get(item.Name)
	f.eng.Updated(old, snap)
}

// remove deletes name and notifies the engine.
func (f *fixture) remove(name string) {
	snap, ok := f.graph.Remove(name)
	if ok {
		f.eng.Removed(snap)
	}
}

// put stores items without notifying the engine.
func (f *fixture) put(items ...ir.Item) {
	for _, item := range items {
		f.graph.Put(item)
	}
}

func (f *fixture) record(name string) (ir.Metadata, bool) {
	return f.eng.Get(ir.NewMetadataKey(name))
}

func (f *fixture) kinds() []ir.ChangeKind {
	var out []ir.ChangeKind
	for _, c := range f.rec.Changes() {
		out = append(out, c.Kind)
	}
	return out
}

func group(name string, tags []string, members ...string) ir.Item {
	return ir.Item{Name: name, Type: ir.ItemTypeGroup, Tags: tags, Members: members}
}

func item(name string, tags []string, groups ...string) ir.Item {
	return ir.Item{Name: name, Type: "Switch", Tags: tags, GroupNames: groups}
}

func md(name, value string, cfg map[string]string) ir.Metadata {
	if cfg == nil {
		cfg = map[string]string{}
	}
	return ir.Metadata{UID: ir.NewMetadataKey(name), Value: value, Configuration: cfg}
}
