// Package layer implements the ordered layer catalog: visibility, opacity,
// z-ordering, and declarative filter predicates that assign annotations to
// rendering groups.
package layer

import (
	"errors"
	"sort"

	"github.com/annota/core/store"
)

// ErrNotFound is returned by operations addressing a layer id the manager
// does not hold.
var ErrNotFound = errors.New("layer: not found")

// ErrDuplicateID is returned by Create when the id is already present.
var ErrDuplicateID = errors.New("layer: duplicate id")

// ImageLayerID is the built-in pseudo-layer controlling the underlying
// image's visibility. Its zIndex is fixed at ImageLayerZIndex; a layer
// given a lower zIndex composes below it.
const ImageLayerID = "image"

// ImageLayerZIndex is the fixed stacking position of the image pseudo-layer.
const ImageLayerZIndex = -1

// Filter declares which annotations belong to a layer, overriding
// properties.layer when set.
type Filter func(store.Annotation) bool

// Layer is one rendering group.
type Layer struct {
	ID      string
	Name    string
	Visible bool
	Locked  bool
	Opacity float64
	ZIndex  int
	Filter  Filter

	order int // insertion sequence, used to break zIndex ties (stable sort)
}

// Accepts reports whether ann belongs to this layer: via l.Filter if set,
// otherwise by matching properties.layer against l.ID.
func (l Layer) Accepts(ann store.Annotation) bool {
	if l.Filter != nil {
		return l.Filter(ann)
	}
	return ann.StringProperty(store.PropertyLayer) == l.ID
}

// ChangeObserver is notified after any structural change to the layer set.
type ChangeObserver func()

// Manager stores layers by id and resolves composition order.
type Manager struct {
	byID      map[string]*Layer
	order     []string // insertion order, for stable ties and default iteration
	observers []ChangeObserver
	seq       int
}

// New creates a Manager pre-seeded with the built-in image pseudo-layer.
func New() *Manager {
	m := &Manager{byID: make(map[string]*Layer)}
	m.byID[ImageLayerID] = &Layer{
		ID: ImageLayerID, Name: "Image", Visible: true, Opacity: 1, ZIndex: ImageLayerZIndex,
	}
	m.order = append(m.order, ImageLayerID)
	return m
}

// Subscribe registers a change observer.
func (m *Manager) Subscribe(obs ChangeObserver) {
	m.observers = append(m.observers, obs)
}

func (m *Manager) notify() {
	for _, obs := range m.observers {
		obs()
	}
}

// Create adds a new layer. A zero Opacity defaults to 1; Visible is
// stored as given (the zero value is hidden).
func (m *Manager) Create(l Layer) (Layer, error) {
	if l.ID == "" {
		return Layer{}, errors.New("layer: id required")
	}
	if _, exists := m.byID[l.ID]; exists {
		return Layer{}, ErrDuplicateID
	}
	if l.Opacity == 0 {
		l.Opacity = 1
	}
	l.order = m.seq
	m.seq++
	stored := l
	m.byID[l.ID] = &stored
	m.order = append(m.order, l.ID)
	m.notify()
	return stored, nil
}

// Get returns the layer for id.
func (m *Manager) Get(id string) (Layer, bool) {
	l, ok := m.byID[id]
	if !ok {
		return Layer{}, false
	}
	return *l, true
}

// All returns every layer in insertion order.
func (m *Manager) All() []Layer {
	out := make([]Layer, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.byID[id])
	}
	return out
}

// Update replaces the layer at id with l (id is forced to match).
func (m *Manager) Update(id string, l Layer) (Layer, error) {
	existing, ok := m.byID[id]
	if !ok {
		return Layer{}, ErrNotFound
	}
	l.ID = id
	l.order = existing.order
	*existing = l
	m.notify()
	return *existing, nil
}

// Delete removes the layer at id. The built-in image layer cannot be deleted.
func (m *Manager) Delete(id string) error {
	if id == ImageLayerID {
		return errors.New("layer: the image pseudo-layer cannot be deleted")
	}
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.notify()
	return nil
}

// SetVisibility sets the layer's Visible flag.
func (m *Manager) SetVisibility(id string, visible bool) error {
	return m.mutate(id, func(l *Layer) { l.Visible = visible })
}

// SetLocked sets the layer's Locked flag.
func (m *Manager) SetLocked(id string, locked bool) error {
	return m.mutate(id, func(l *Layer) { l.Locked = locked })
}

// SetOpacity sets the layer's Opacity, clamped to [0, 1].
func (m *Manager) SetOpacity(id string, opacity float64) error {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return m.mutate(id, func(l *Layer) { l.Opacity = opacity })
}

// SetZIndex sets the layer's ZIndex. Changing the image pseudo-layer's
// ZIndex is rejected: it stays at ImageLayerZIndex.
func (m *Manager) SetZIndex(id string, z int) error {
	if id == ImageLayerID {
		return errors.New("layer: the image pseudo-layer's z-index is fixed")
	}
	return m.mutate(id, func(l *Layer) { l.ZIndex = z })
}

// SetFilter sets or clears (nil) the layer's filter predicate.
func (m *Manager) SetFilter(id string, filter Filter) error {
	return m.mutate(id, func(l *Layer) { l.Filter = filter })
}

func (m *Manager) mutate(id string, fn func(*Layer)) error {
	l, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	fn(l)
	m.notify()
	return nil
}

// CompositionOrder returns visible layers sorted ascending by ZIndex,
// stable by insertion order for ties, the order the rendering stage
// parents its layer-group containers in.
func (m *Manager) CompositionOrder() []Layer {
	var visible []Layer
	for _, id := range m.order {
		l := m.byID[id]
		if l.Visible {
			visible = append(visible, *l)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].ZIndex < visible[j].ZIndex
	})
	return visible
}

// LayersFor returns every visible layer (locked or not) that accepts ann, in
// composition order: an annotation renders inside every layer whose
// filter accepts it (or whose id matches properties.layer). An
// annotation no layer claims falls back to the image pseudo-layer, so a
// plain Add with no layer property still renders instead of vanishing.
func (m *Manager) LayersFor(ann store.Annotation) []Layer {
	var out []Layer
	for _, l := range m.CompositionOrder() {
		if l.Accepts(ann) {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		if img, ok := m.byID[ImageLayerID]; ok && img.Visible {
			out = append(out, *img)
		}
	}
	return out
}

// MaskPolarityFilters returns the (positive, negative) filters used to
// stack masks by classification: positive masks below negative masks, so
// negative annotations visually take precedence. isMaskShape identifies
// which annotations count as "mask shapes" in the caller's domain (e.g.
// polygon/multipolygon/freehand-closed).
func MaskPolarityFilters(isMaskShape func(store.Annotation) bool) (positive, negative Filter) {
	positive = func(a store.Annotation) bool {
		return isMaskShape(a) && a.StringProperty(store.PropertyClassification) == "positive"
	}
	negative = func(a store.Annotation) bool {
		return isMaskShape(a) && a.StringProperty(store.PropertyClassification) == "negative"
	}
	return positive, negative
}
