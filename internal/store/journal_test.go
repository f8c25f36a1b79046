package store

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semmeta/internal/engine"
	"github.com/roach88/semmeta/internal/ir"
	"github.com/roach88/semmeta/internal/itemgraph"
	"github.com/roach88/semmeta/internal/tags"
	"github.com/roach88/semmeta/internal/testutil"
)

var _ engine.Listener = (*Journal)(nil)

func TestJournal_RecordsEngineChanges(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	j, err := NewJournal(ctx, s)
	require.NoError(t, err)

	graph := itemgraph.NewMemory()
	eng := engine.New(graph, tags.MustDefault(), engine.WithSource("journal-test"), engine.WithListener(j))

	room := ir.Item{Name: "LivingRoom", Type: ir.ItemTypeGroup, Tags: []string{"LivingRoom"}}
	graph.Put(room)
	snap, _ := graph.Get("LivingRoom")
	eng.Added(snap)

	door := ir.Item{Name: "Door1", Type: "Contact", Tags: []string{"Door"}, GroupNames: []string{"LivingRoom"}}
	graph.Put(door)
	snap, _ = graph.Get("Door1")
	eng.Added(snap)

	removedSnap, ok := graph.Remove("Door1")
	require.True(t, ok)
	eng.Removed(removedSnap)

	require.NoError(t, j.Err())
	assert.Equal(t, int64(3), j.Seq())

	changes, err := s.ReadChanges(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 3)
	assert.Equal(t, "journal-test", changes[0].Source)
	assert.Equal(t, "LivingRoom", changes[1].New.Configuration[ir.ConfigHasLocation])
	assert.Equal(t, ir.ChangeRemoved, changes[2].Kind)

	records, err := s.Replay(ctx)
	require.NoError(t, err)
	assert.Equal(t, eng.GetAll(), records)
}

func TestJournal_ResumesSeq(t *testing.T) {
	s := openTestStore(t)
	seedJournal(t, s)
	ctx := context.Background()

	j, err := NewJournal(ctx, s)
	require.NoError(t, err)

	j.Added("test", *record("Bedroom", "Location_Bedroom", nil))
	require.NoError(t, j.Err())

	seq, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), seq)
}

func TestJournal_LogsWriteFailure(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	logs := testutil.NewLogRecorder(slog.LevelDebug)

	j, err := NewJournal(ctx, s, WithJournalLogger(logs.Logger()))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	j.Added("test", *record("Kitchen", "Location_Kitchen", nil))

	assert.Error(t, j.Err())
	assert.True(t, logs.Contains("journal write failed"))
}

func TestJournal_DefaultRunIsUnique(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, err := NewJournal(ctx, s)
	require.NoError(t, err)
	b, err := NewJournal(ctx, s)
	require.NoError(t, err)

	assert.NotEmpty(t, a.Run())
	assert.NotEqual(t, a.Run(), b.Run())

	a.Added("test", *record("Kitchen", "Location_Kitchen", nil))
	require.NoError(t, a.Err())
	changes, err := s.ReadChanges(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, a.Run(), changes[0].Run)
}
