package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annota/core/geometry"
)

func rect(x, y, w, h float64) geometry.Shape {
	return geometry.NewRectangle(x, y, w, h)
}

func TestAddGetDelete(t *testing.T) {
	s := New(nil)
	added, err := s.Add(Annotation{ID: "a", Shape: rect(0, 0, 10, 10)})
	require.NoError(t, err)
	assert.Equal(t, "a", added.ID)
	assert.False(t, added.CreatedAt.IsZero())

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, added, got)

	_, err = s.Delete("a")
	require.NoError(t, err)
	_, ok = s.Get("a")
	assert.False(t, ok)
}

func TestReAddPreservesTimestamps(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	timeNow = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Second) }
	defer func() { timeNow = time.Now }()

	s := New(nil)
	added, err := s.Add(Annotation{ID: "a", Shape: rect(0, 0, 10, 10)})
	require.NoError(t, err)

	removed, err := s.Delete("a")
	require.NoError(t, err)

	back, err := s.Add(removed)
	require.NoError(t, err)
	assert.True(t, back.CreatedAt.Equal(added.CreatedAt), "re-adding a deleted annotation must keep its CreatedAt")
	assert.True(t, back.UpdatedAt.Equal(added.UpdatedAt), "re-adding a deleted annotation must keep its UpdatedAt")
}

func TestUpdateRefreshesLiveEditButHonorsSnapshot(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	timeNow = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Second) }
	defer func() { timeNow = time.Now }()

	s := New(nil)
	orig, err := s.Add(Annotation{ID: "a", Shape: rect(0, 0, 10, 10)})
	require.NoError(t, err)

	// A live edit carries the stored UpdatedAt back in, so it refreshes.
	edited := orig
	edited.Shape = rect(0, 0, 20, 20)
	afterEdit, err := s.Update("a", edited)
	require.NoError(t, err)
	assert.True(t, afterEdit.UpdatedAt.After(orig.UpdatedAt))

	// Restoring the original snapshot carries a stamp that differs from
	// the stored one, so it is honored exactly.
	restored, err := s.Update("a", orig)
	require.NoError(t, err)
	assert.True(t, restored.UpdatedAt.Equal(orig.UpdatedAt))
	assert.True(t, restored.CreatedAt.Equal(orig.CreatedAt))
}

func TestAddDuplicateIDFails(t *testing.T) {
	s := New(nil)
	_, err := s.Add(Annotation{ID: "a", Shape: rect(0, 0, 1, 1)})
	require.NoError(t, err)
	_, err = s.Add(Annotation{ID: "a", Shape: rect(0, 0, 1, 1)})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestDeleteNotFound(t *testing.T) {
	s := New(nil)
	_, err := s.Delete("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestObserverFiresImmediatelyOutsideBatch(t *testing.T) {
	s := New(nil)
	var events []ChangeEvent
	s.Subscribe(func(e ChangeEvent) { events = append(events, e) })

	s.Add(Annotation{ID: "a", Shape: rect(0, 0, 1, 1)})
	s.Update("a", Annotation{Shape: rect(0, 0, 2, 2)})
	s.Delete("a")

	require.Len(t, events, 3)
	assert.Len(t, events[0].Created, 1)
	assert.Len(t, events[1].Updated, 1)
	assert.Len(t, events[2].Deleted, 1)
}

// TestBatchedObserverCallCount: inside one
// batch, add 50 and delete 10 of them; observers fire exactly once with
// created.length == 40 and the created-then-deleted ids cancel out.
func TestBatchedObserverCallCount(t *testing.T) {
	s := New(nil)
	var calls int
	var lastEvent ChangeEvent
	s.Subscribe(func(e ChangeEvent) {
		calls++
		lastEvent = e
	})

	s.BeginBatch()
	ids := make([]string, 50)
	for i := 0; i < 50; i++ {
		a, _ := s.Add(Annotation{Shape: rect(float64(i), 0, 1, 1)})
		ids[i] = a.ID
	}
	for i := 0; i < 10; i++ {
		s.Delete(ids[i])
	}
	s.EndBatch()

	assert.Equal(t, 1, calls)
	assert.Len(t, lastEvent.Created, 40)
	assert.Empty(t, lastEvent.Deleted)
}

func TestBatchDedupesUpdateAfterDeleteWithinBatch(t *testing.T) {
	s := New(nil)
	_, _ = s.Add(Annotation{ID: "a", Shape: rect(0, 0, 1, 1)})

	var events []ChangeEvent
	s.Subscribe(func(e ChangeEvent) { events = append(events, e) })

	s.BeginBatch()
	s.Update("a", Annotation{Shape: rect(0, 0, 5, 5)})
	s.Delete("a")
	s.EndBatch()

	require.Len(t, events, 1)
	assert.Empty(t, events[0].Updated)
	require.Len(t, events[0].Deleted, 1)
	// The delete must carry the pre-batch shape, not the mid-batch update.
	assert.Equal(t, 1.0, events[0].Deleted[0].Shape.Bounds().Width())
}

func TestEmptyBatchFiresNoEvent(t *testing.T) {
	s := New(nil)
	calls := 0
	s.Subscribe(func(ChangeEvent) { calls++ })

	s.BeginBatch()
	s.EndBatch()

	assert.Equal(t, 0, calls)
}

func TestObserverPanicDoesNotStopSiblingsOrMutation(t *testing.T) {
	s := New(nil)
	var secondCalled bool
	s.Subscribe(func(ChangeEvent) { panic("boom") })
	s.Subscribe(func(ChangeEvent) { secondCalled = true })

	assert.NotPanics(t, func() {
		s.Add(Annotation{ID: "a", Shape: rect(0, 0, 1, 1)})
	})
	assert.True(t, secondCalled)
	_, ok := s.Get("a")
	assert.True(t, ok)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := New(nil)
	calls := 0
	unsub := s.Subscribe(func(ChangeEvent) { calls++ })
	unsub()

	s.Add(Annotation{ID: "a", Shape: rect(0, 0, 1, 1)})
	assert.Equal(t, 0, calls)
}

func TestGetAtHitTestTolerance(t *testing.T) {
	s := New(nil)
	s.Add(Annotation{ID: "p", Shape: geometry.NewPoint(1000, 1000)})

	zoom := 2.0
	tol := 5 / zoom

	_, hit := s.GetAt(1000+4/zoom, 1000, tol, nil)
	assert.True(t, hit)

	_, miss := s.GetAt(1000+10/zoom, 1000, tol, nil)
	assert.False(t, miss)
}

func TestGetAtFilter(t *testing.T) {
	s := New(nil)
	s.Add(Annotation{ID: "a", Shape: rect(0, 0, 10, 10), Properties: map[string]any{PropertyLayer: "x"}})
	s.Add(Annotation{ID: "b", Shape: rect(0, 0, 10, 10), Properties: map[string]any{PropertyLayer: "y"}})

	onlyY := func(a Annotation) bool { return a.StringProperty(PropertyLayer) == "y" }
	got, ok := s.GetAt(5, 5, 0, onlyY)
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)
}

func TestBulkAddAtomicOnDuplicateID(t *testing.T) {
	s := New(nil)
	s.Add(Annotation{ID: "dup", Shape: rect(0, 0, 1, 1)})

	_, err := s.BulkAdd([]Annotation{
		{ID: "fresh", Shape: rect(0, 0, 1, 1)},
		{ID: "dup", Shape: rect(0, 0, 1, 1)},
	})
	assert.ErrorIs(t, err, ErrDuplicateID)
	_, ok := s.Get("fresh")
	assert.False(t, ok, "bulk add must not partially apply")
}

func TestClearFiresOneBatchedEvent(t *testing.T) {
	s := New(nil)
	s.Add(Annotation{ID: "a", Shape: rect(0, 0, 1, 1)})
	s.Add(Annotation{ID: "b", Shape: rect(0, 0, 1, 1)})

	calls := 0
	var lastEvent ChangeEvent
	s.Subscribe(func(e ChangeEvent) { calls++; lastEvent = e })

	s.Clear()

	assert.Equal(t, 1, calls)
	assert.Len(t, lastEvent.Deleted, 2)
	assert.Equal(t, 0, s.Size())
}

// TestIndexConsistency: for any
// id, store.Get(id) existing must match the spatial index having it, and
// Search must return everything overlapping the query bounds.
func TestIndexConsistency(t *testing.T) {
	s := New(nil)
	a, _ := s.Add(Annotation{ID: "a", Shape: rect(0, 0, 10, 10)})
	assert.True(t, s.index.Has(a.ID))

	s.Delete("a")
	assert.False(t, s.index.Has("a"))

	s.Add(Annotation{ID: "b", Shape: rect(100, 100, 10, 10)})
	overlap := s.Search(geometry.Bounds{MinX: 105, MinY: 105, MaxX: 106, MaxY: 106})
	require.Len(t, overlap, 1)
	assert.Equal(t, "b", overlap[0].ID)
}
