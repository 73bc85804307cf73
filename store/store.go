package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/annota/core/geometry"
	"github.com/annota/core/spatial"
)

// ErrNotFound is returned by operations addressing an id the store does
// not hold.
var ErrNotFound = errors.New("store: annotation not found")

// ErrDuplicateID is returned by Add when the id is already present.
var ErrDuplicateID = errors.New("store: duplicate annotation id")

// ChangeEvent is the batched change notification delivered to observers.
// Within one batch an id created and later deleted cancels out of both
// Created and Deleted.
type ChangeEvent struct {
	Created []Annotation
	Updated []Update
	Deleted []Annotation
}

// Update pairs the pre- and post-mutation annotation for one id.
type Update struct {
	Old Annotation
	New Annotation
}

// Empty reports whether the event carries no changes at all.
func (e ChangeEvent) Empty() bool {
	return len(e.Created) == 0 && len(e.Updated) == 0 && len(e.Deleted) == 0
}

// Observer receives a ChangeEvent. Observers are invoked synchronously in
// registration order; a panicking observer is recovered, logged, and does
// not prevent the remaining observers from running.
type Observer func(ChangeEvent)

type observerEntry struct {
	id uint64
	fn Observer
}

// Unsubscribe removes a previously registered observer.
type Unsubscribe func()

// Store is the sole mutable authority for annotation data: a keyed
// catalog plus a spatial index kept consistent with it on every
// mutation.
type Store struct {
	byID  map[string]Annotation
	index *spatial.RTree

	observers  []observerEntry
	nextObsID  uint64
	batchDepth int
	pending    ChangeEvent
	createdIdx map[string]int // id -> index in pending.Created
	updatedIdx map[string]int // id -> index in pending.Updated

	log *zap.SugaredLogger
}

// New creates an empty Store. A nil logger falls back to zap's no-op
// logger so callers that don't care about observability pay nothing.
func New(logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{
		byID:  make(map[string]Annotation),
		index: spatial.New(9),
		log:   logger,
	}
}

// Subscribe registers an observer and returns a function to remove it.
func (s *Store) Subscribe(obs Observer) Unsubscribe {
	id := s.nextObsID
	s.nextObsID++
	s.observers = append(s.observers, observerEntry{id: id, fn: obs})
	return func() {
		for i, e := range s.observers {
			if e.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// BeginBatch opens a batch. Mutations made before the matching EndBatch
// are aggregated into a single observer call. Batches may nest; only the
// outermost EndBatch flushes.
func (s *Store) BeginBatch() {
	if s.batchDepth == 0 {
		s.pending = ChangeEvent{}
		s.createdIdx = make(map[string]int)
		s.updatedIdx = make(map[string]int)
	}
	s.batchDepth++
}

// EndBatch closes a batch opened by BeginBatch. On the outermost call, the
// aggregated event (if non-empty) is delivered to observers exactly once.
func (s *Store) EndBatch() {
	if s.batchDepth == 0 {
		return
	}
	s.batchDepth--
	if s.batchDepth > 0 {
		return
	}
	event := s.pending
	s.pending = ChangeEvent{}
	s.createdIdx = nil
	s.updatedIdx = nil
	if !event.Empty() {
		s.notify(event)
	}
}

// InBatch reports whether a batch is currently open.
func (s *Store) InBatch() bool { return s.batchDepth > 0 }

func (s *Store) notify(event ChangeEvent) {
	for _, e := range s.observers {
		s.invokeObserver(e, event)
	}
}

func (s *Store) invokeObserver(e observerEntry, event ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("annotation store observer panicked", "observer_id", e.id, "panic", r)
		}
	}()
	e.fn(event)
}

// Add inserts a new annotation. Returns ErrDuplicateID if the id is
// already present. If ann.ID is empty, a uuid is generated.
func (s *Store) Add(ann Annotation) (Annotation, error) {
	if ann.ID == "" {
		ann.ID = uuid.NewString()
	}
	if _, exists := s.byID[ann.ID]; exists {
		return Annotation{}, ErrDuplicateID
	}
	// Stamp only annotations that have never been stored: re-adding a
	// previously stored annotation (a delete being undone) must keep its
	// original timestamps so undo/redo restores state exactly.
	now := timeNow()
	if ann.CreatedAt.IsZero() {
		ann.CreatedAt = now
	}
	if ann.UpdatedAt.IsZero() {
		ann.UpdatedAt = now
	}

	s.byID[ann.ID] = ann
	b := ann.Shape.Bounds()
	s.index.Insert(ann.ID, spatial.Bounds{MinX: b.MinX, MinY: b.MinY, MaxX: b.MaxX, MaxY: b.MaxY}, ann.ID)

	s.recordCreate(ann)
	return ann, nil
}

// BulkAdd adds many annotations as a single batch, matching the store's
// transactional-per-call contract: either all succeed or none are applied.
func (s *Store) BulkAdd(anns []Annotation) ([]Annotation, error) {
	for _, a := range anns {
		if a.ID != "" {
			if _, exists := s.byID[a.ID]; exists {
				return nil, ErrDuplicateID
			}
		}
	}
	s.BeginBatch()
	defer s.EndBatch()

	out := make([]Annotation, 0, len(anns))
	for _, a := range anns {
		added, err := s.Add(a)
		if err != nil {
			return nil, err
		}
		out = append(out, added)
	}
	return out, nil
}

// Update replaces the annotation stored at id with ann (ann.ID is forced
// to id). Returns ErrNotFound if id is absent.
func (s *Store) Update(id string, ann Annotation) (Annotation, error) {
	old, exists := s.byID[id]
	if !exists {
		return Annotation{}, ErrNotFound
	}
	ann.ID = id
	ann.CreatedAt = old.CreatedAt
	// A caller editing the live annotation passes it back carrying the
	// stored UpdatedAt, which refreshes. A caller restoring a snapshot
	// (undo/redo) passes a stamp that differs from the stored one, which
	// is honored so the restore is timestamp-exact.
	if ann.UpdatedAt.IsZero() || ann.UpdatedAt.Equal(old.UpdatedAt) {
		ann.UpdatedAt = timeNow()
	}

	s.byID[id] = ann
	b := ann.Shape.Bounds()
	s.index.Insert(id, spatial.Bounds{MinX: b.MinX, MinY: b.MinY, MaxX: b.MaxX, MaxY: b.MaxY}, id)

	s.recordUpdate(old, ann)
	return ann, nil
}

// Delete removes the annotation at id. Returns ErrNotFound if absent.
func (s *Store) Delete(id string) (Annotation, error) {
	old, exists := s.byID[id]
	if !exists {
		return Annotation{}, ErrNotFound
	}
	delete(s.byID, id)
	s.index.Remove(id)

	s.recordDelete(old)
	return old, nil
}

// Clear removes every annotation in one batch.
func (s *Store) Clear() {
	all := s.All()
	if len(all) == 0 {
		return
	}
	s.BeginBatch()
	defer s.EndBatch()
	for _, a := range all {
		s.Delete(a.ID)
	}
}

// Get returns the annotation for id.
func (s *Store) Get(id string) (Annotation, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// All returns every annotation, in no particular order.
func (s *Store) All() []Annotation {
	out := make([]Annotation, 0, len(s.byID))
	for _, a := range s.byID {
		out = append(out, a)
	}
	return out
}

// Size returns the number of annotations held.
func (s *Store) Size() int { return len(s.byID) }

// Search returns every annotation whose cached bounds intersect the given
// bounds, via the spatial index (O(log n + k)).
func (s *Store) Search(b geometry.Bounds) []Annotation {
	items := s.index.Search(spatial.Bounds{MinX: b.MinX, MinY: b.MinY, MaxX: b.MaxX, MaxY: b.MaxY})
	out := make([]Annotation, 0, len(items))
	for _, it := range items {
		if a, ok := s.byID[it.ID]; ok {
			out = append(out, a)
		}
	}
	return out
}

// GetAt hit-tests the store at image coordinates (x, y): it fetches a
// bbox candidate set expanded by tolerance, then refines per shape type
// via geometry.HitTest. filter, if non-nil, restricts candidates (e.g. to
// one layer). Among several hits it returns the last one in the spatial
// index's search order, which is not necessarily the most recently
// added; it returns false if nothing hit.
func (s *Store) GetAt(x, y, tolerance float64, filter func(Annotation) bool) (Annotation, bool) {
	query := geometry.Bounds{MinX: x - tolerance, MinY: y - tolerance, MaxX: x + tolerance, MaxY: y + tolerance}
	candidates := s.Search(query)

	var best Annotation
	found := false
	for _, a := range candidates {
		if filter != nil && !filter(a) {
			continue
		}
		if geometry.HitTest(a.Shape, x, y, tolerance) {
			best = a
			found = true
		}
	}
	return best, found
}

func (s *Store) recordCreate(ann Annotation) {
	if s.batchDepth == 0 {
		s.notify(ChangeEvent{Created: []Annotation{ann}})
		return
	}
	if idx, ok := s.createdIdx[ann.ID]; ok {
		s.pending.Created[idx] = ann
		return
	}
	s.createdIdx[ann.ID] = len(s.pending.Created)
	s.pending.Created = append(s.pending.Created, ann)
}

func (s *Store) recordUpdate(old, newAnn Annotation) {
	if s.batchDepth == 0 {
		s.notify(ChangeEvent{Updated: []Update{{Old: old, New: newAnn}}})
		return
	}
	if idx, ok := s.createdIdx[newAnn.ID]; ok {
		// Still just a create from the batch's point of view.
		s.pending.Created[idx] = newAnn
		return
	}
	if idx, ok := s.updatedIdx[newAnn.ID]; ok {
		s.pending.Updated[idx].New = newAnn
		return
	}
	s.updatedIdx[newAnn.ID] = len(s.pending.Updated)
	s.pending.Updated = append(s.pending.Updated, Update{Old: old, New: newAnn})
}

func (s *Store) recordDelete(old Annotation) {
	if s.batchDepth == 0 {
		s.notify(ChangeEvent{Deleted: []Annotation{old}})
		return
	}
	if idx, ok := s.createdIdx[old.ID]; ok {
		// Created and deleted within the same batch: both cancel.
		s.removeCreatedAt(idx)
		return
	}
	if idx, ok := s.updatedIdx[old.ID]; ok {
		// Emit a delete using the pre-batch value, drop the update.
		preBatch := s.pending.Updated[idx].Old
		s.removeUpdatedAt(idx)
		s.pending.Deleted = append(s.pending.Deleted, preBatch)
		return
	}
	s.pending.Deleted = append(s.pending.Deleted, old)
}

func (s *Store) removeCreatedAt(idx int) {
	removedID := s.pending.Created[idx].ID
	last := len(s.pending.Created) - 1
	s.pending.Created[idx] = s.pending.Created[last]
	s.pending.Created = s.pending.Created[:last]
	delete(s.createdIdx, removedID)
	if idx != last {
		s.createdIdx[s.pending.Created[idx].ID] = idx
	}
}

func (s *Store) removeUpdatedAt(idx int) {
	removedID := s.pending.Updated[idx].New.ID
	last := len(s.pending.Updated) - 1
	s.pending.Updated[idx] = s.pending.Updated[last]
	s.pending.Updated = s.pending.Updated[:last]
	delete(s.updatedIdx, removedID)
	if idx != last {
		s.updatedIdx[s.pending.Updated[idx].New.ID] = idx
	}
}

// timeNow is a thin indirection so tests can freeze time if ever needed;
// kept as a var rather than a stdlib call site to match the single
// suspension-free, allocation-light style of the rest of the store.
var timeNow = time.Now
