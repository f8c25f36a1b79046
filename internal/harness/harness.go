package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/semmeta/internal/engine"
	"github.com/roach88/semmeta/internal/ir"
	"github.com/roach88/semmeta/internal/itemgraph"
	"github.com/roach88/semmeta/internal/store"
	"github.com/roach88/semmeta/internal/tags"
	"github.com/roach88/semmeta/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios with a deterministic clock and a fixed source.
type Harness struct {
	graph    *itemgraph.Memory
	registry *tags.Registry
	engine   *engine.Engine
	recorder *engine.Recorder
	logs     *testutil.LogRecorder
	journal  *store.Journal
	store    *store.Store
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh memory graph, the default taxonomy and
// an in-memory journal for isolation.
//
// Execution flow:
// 1. Build the engine with change recorder, log recorder and journal
// 2. Apply steps in order
// 3. Check the journal replays to the engine's record set
// 4. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	h, err := newHarness(ctx, scenario)
	if err != nil {
		return nil, err
	}
	defer h.store.Close()

	for i, step := range scenario.Steps {
		if err := h.apply(step); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Kind(), err)
		}
	}

	if err := h.journal.Err(); err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}

	result := NewResult()
	result.Trace = h.recorder.Changes()
	for _, entry := range h.logs.Entries() {
		result.Logs = append(result.Logs, LogLine{Level: entry.Level, Message: entry.Message})
	}
	result.Records = h.engine.GetAll()

	replayed, err := h.store.Replay(ctx)
	if err != nil {
		return nil, fmt.Errorf("replay journal: %w", err)
	}
	if !sameRecords(replayed, result.Records) {
		result.AddError("journal replay does not match the engine's record set")
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func newHarness(ctx context.Context, scenario *Scenario) (*Harness, error) {
	registry, err := tags.Default()
	if err != nil {
		return nil, fmt.Errorf("load default taxonomy: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}

	journal, err := store.NewJournal(ctx, st)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create journal: %w", err)
	}

	source := scenario.Source
	if source == "" {
		source = DefaultSource
	}

	h := &Harness{
		graph:    itemgraph.NewMemory(),
		registry: registry,
		recorder: engine.NewRecorder(ir.NewClock()),
		logs:     testutil.NewLogRecorder(slog.LevelDebug),
		journal:  journal,
		store:    st,
	}
	h.engine = engine.New(h.graph, h.registry,
		engine.WithSource(source),
		engine.WithLogger(h.logs.Logger()),
		engine.WithListener(h.recorder),
		engine.WithListener(h.journal),
	)
	return h, nil
}

// apply runs one step against the graph and the engine.
func (h *Harness) apply(step Step) error {
	switch step.Kind() {
	case StepAdd:
		h.graph.Put(*step.Add)
		snap, _ := h.graph.Get(step.Add.Name)
		h.engine.Added(snap)
	case StepUpdate:
		old, existed := h.graph.Put(*step.Update)
		if !existed {
			return fmt.Errorf("item %q does not exist", step.Update.Name)
		}
		snap, _ := h.graph.Get(step.Update.Name)
		h.engine.Updated(old, snap)
	case StepRemove:
		snap, ok := h.graph.Remove(step.Remove)
		if !ok {
			return fmt.Errorf("item %q does not exist", step.Remove)
		}
		h.engine.Removed(snap)
	case StepPut:
		h.graph.Put(*step.Put)
	case StepRegister:
		if _, err := h.registry.Add(*step.Register); err != nil {
			return err
		}
	default:
		return fmt.Errorf("exactly one step type must be set")
	}
	return nil
}

func sameRecords(a, b []ir.Metadata) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
