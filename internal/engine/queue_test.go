package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semmeta/internal/ir"
)

func TestEventQueue_EnqueueDequeue(t *testing.T) {
	q := newEventQueue()

	ok := q.Enqueue(AddedEvent(ir.Item{Name: "a"}))
	require.True(t, ok, "enqueue should succeed")

	got, ok := q.TryDequeue()
	require.True(t, ok, "dequeue should succeed")
	assert.Equal(t, EventAdded, got.Type)
	assert.Equal(t, "a", got.Item.Name)
}

func TestEventQueue_FIFO(t *testing.T) {
	q := newEventQueue()

	for _, name := range []string{"A", "B", "C"} {
		q.Enqueue(AddedEvent(ir.Item{Name: name}))
	}

	for _, want := range []string{"A", "B", "C"} {
		e, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, e.Item.Name)
	}
}

func TestEventQueue_TryDequeue_Empty(t *testing.T) {
	q := newEventQueue()

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestEventQueue_Close(t *testing.T) {
	q := newEventQueue()
	q.Enqueue(AddedEvent(ir.Item{Name: "a"}))
	q.Close()
	q.Close() // idempotent

	assert.True(t, q.Closed())
	assert.False(t, q.Enqueue(AddedEvent(ir.Item{Name: "b"})), "enqueue after close should fail")

	_, ok := q.TryDequeue()
	assert.True(t, ok, "events enqueued before close are still delivered")

	select {
	case <-q.Wait():
	default:
		t.Fatal("wait channel should be closed")
	}
}

func TestEventQueue_ConcurrentEnqueue(t *testing.T) {
	q := newEventQueue()
	var wg sync.WaitGroup

	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				q.Enqueue(AddedEvent(ir.Item{Name: "x"}))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, q.Len())
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "added", EventAdded.String())
	assert.Equal(t, "updated", EventUpdated.String())
	assert.Equal(t, "removed", EventRemoved.String())
	assert.Equal(t, "unknown", EventType(42).String())
}

func TestEventConstructors(t *testing.T) {
	old := ir.Item{Name: "a", Tags: []string{"Door"}}
	cur := ir.Item{Name: "a", Tags: []string{"Window"}}

	assert.Equal(t, Event{Type: EventUpdated, Old: old, Item: cur}, UpdatedEvent(old, cur))
	assert.Equal(t, Event{Type: EventRemoved, Item: cur}, RemovedEvent(cur))
}
