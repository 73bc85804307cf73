// Package render implements the GPU-backed annotation overlay: a retained
// scene graph of per-annotation nodes grouped by layer, transformed in
// sync with an external Viewer, and submitted via batched DrawTriangles
// calls.
package render

import (
	"log"
	"strconv"

	"github.com/annota/core/layer"
	"github.com/annota/core/store"
)

// Stage owns the node tree: a root transformed by the viewport, one
// container per visible layer (in composition order), and one shape node
// per live annotation. Draw coalesces many store/layer mutations
// between two frames into one transform pass and one batched submission.
type Stage struct {
	root        *Node
	layerGroups []*Node          // composition-ordered, rebuilt by SyncLayers
	byLayer     map[string]*Node // layer id -> its group container
	byID        map[string]*Node // annotation id -> its shape node

	viewport Viewport
	batch    batcher

	width, height float64

	hoveredID string
	selected  map[string]bool

	styleExpr  func(store.Annotation) *store.Style
	filterPred func(store.Annotation) bool

	// DefaultStrokeWidth/DefaultPointRadius are fallback style values used when an
	// annotation carries no explicit style.
	DefaultStrokeWidth float64
	DefaultPointRadius float64
}

// NewStage creates an empty stage.
func NewStage() *Stage {
	return &Stage{
		root:               NewContainer("stage-root"),
		byLayer:            make(map[string]*Node),
		byID:               make(map[string]*Node),
		selected:           make(map[string]bool),
		DefaultStrokeWidth: 2,
		DefaultPointRadius: 6,
	}
}

// SetViewport updates the transform driving the stage root. Callers call
// this once per frame from the external Viewer's zoom/pan/rotation state.
func (s *Stage) SetViewport(v Viewport) {
	s.viewport = v
	local := ComputeViewportTransform(v)
	s.root.worldTransform = local
	s.root.worldAlpha = 1
	for _, child := range s.root.children {
		child.transformDirty = true
	}
}

// SyncLayers rebuilds the layer-group container set from the layer
// manager's composition order. Groups of layers no longer in that order
// (deleted or hidden) are removed from the tree together with the
// annotation nodes under them. Annotation nodes are not reparented here;
// the caller re-upserts them afterwards (the annotator does so on every
// layer change).
func (s *Stage) SyncLayers(mgr *layer.Manager) {
	order := mgr.CompositionOrder()
	newGroups := make([]*Node, 0, len(order))
	newByLayer := make(map[string]*Node, len(order))

	for i, l := range order {
		group, ok := s.byLayer[l.ID]
		if !ok {
			group = NewContainer("layer:" + l.ID)
			s.root.AddChild(group)
		}
		group.SetAlpha(l.Opacity)
		group.Visible = l.Visible
		group.SetZIndex(i)
		newGroups = append(newGroups, group)
		newByLayer[l.ID] = group
	}

	for id, group := range s.byLayer {
		if _, still := newByLayer[id]; !still {
			s.root.RemoveChild(group)
		}
	}

	s.layerGroups = newGroups
	s.byLayer = newByLayer
}

// Upsert creates or updates the shape node for ann, tessellating its
// current geometry and reparenting it under the given layer's group
// (an annotation may logically belong to every layer that accepts it;
// this stage parents it under the first, primary layer and relies on
// the caller to have already resolved layer routing via layer.LayersFor).
func (s *Stage) Upsert(ann store.Annotation, layerID string) {
	group, ok := s.byLayer[layerID]
	if !ok {
		log.Printf("render: upsert %s references unknown layer %q, skipping", ann.ID, layerID)
		return
	}

	n, exists := s.byID[ann.ID]
	if !exists {
		n = NewShapeNode(ann.ID, ann.Shape.Kind)
		s.byID[ann.ID] = n
	}
	n.Kind = ann.Shape.Kind
	group.AddChild(n)

	style := ann.Style
	if s.styleExpr != nil {
		if override := s.styleExpr(ann); override != nil {
			style = override
		}
	}
	strokeWidth := s.DefaultStrokeWidth
	pointRadius := s.DefaultPointRadius
	filled := true
	if style != nil {
		if style.StrokeWidth > 0 {
			strokeWidth = style.StrokeWidth
		}
		if style.PointRadius > 0 {
			pointRadius = style.PointRadius
		}
		filled = style.Fill != ""
	}
	BuildMesh(n, ann.Shape, filled, strokeWidth, pointRadius)
	n.BaseColor = styleColor(style)
	n.Visible = s.filterPred == nil || s.filterPred(ann)
	n.State = s.visualStateFor(ann.ID)
}

func (s *Stage) visualStateFor(id string) VisualState {
	switch {
	case s.selected[id]:
		return VisualSelected
	case s.hoveredID == id:
		return VisualHover
	default:
		return VisualBase
	}
}

// Remove deletes the shape node for id, if any.
func (s *Stage) Remove(id string) {
	n, ok := s.byID[id]
	if !ok {
		return
	}
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	delete(s.byID, id)
}

// SetVisualState sets the hover/selected tint state for an annotation's node.
func (s *Stage) SetVisualState(id string, state VisualState) {
	if n, ok := s.byID[id]; ok {
		n.State = state
	}
}

// SetHovered marks id as the single hovered annotation, clearing any
// previous hover. An empty id clears hover entirely. A selected node
// keeps its selected tint; hover never downgrades it.
func (s *Stage) SetHovered(id string) {
	if s.hoveredID == id {
		return
	}
	prev := s.hoveredID
	s.hoveredID = id
	if prev != "" {
		s.SetVisualState(prev, s.visualStateFor(prev))
	}
	if id != "" {
		s.SetVisualState(id, s.visualStateFor(id))
	}
}

// SetSelected replaces the set of selected annotations, retinting nodes
// that entered or left the set.
func (s *Stage) SetSelected(ids []string) {
	next := make(map[string]bool, len(ids))
	for _, id := range ids {
		next[id] = true
	}
	for id := range s.selected {
		if !next[id] {
			delete(s.selected, id)
			s.SetVisualState(id, s.visualStateFor(id))
		}
	}
	for id := range next {
		if !s.selected[id] {
			s.selected[id] = true
			s.SetVisualState(id, VisualSelected)
		}
	}
}

// SetStyle installs a style expression consulted on every Upsert: a
// non-nil return overrides the annotation's own style. Pass nil to
// clear. The caller re-upserts live annotations for the change to take
// effect on existing nodes.
func (s *Stage) SetStyle(expr func(store.Annotation) *store.Style) {
	s.styleExpr = expr
}

// SetFilter installs a visibility predicate consulted on every Upsert:
// annotations it rejects keep their nodes but are not drawn. Pass nil to
// show everything. The caller re-upserts live annotations for the change
// to take effect on existing nodes.
func (s *Stage) SetFilter(pred func(store.Annotation) bool) {
	s.filterPred = pred
}

// SetVisible toggles the whole overlay.
func (s *Stage) SetVisible(visible bool) { s.root.Visible = visible }

// Resize records the container size backing the overlay canvas.
func (s *Stage) Resize(w, h float64) {
	s.width, s.height = w, h
}

// Size returns the container size last passed to Resize.
func (s *Stage) Size() (w, h float64) { return s.width, s.height }

// Destroy drops every node and resets the stage to empty. The stage may
// be reused after SyncLayers repopulates it.
func (s *Stage) Destroy() {
	s.root = NewContainer("stage-root")
	s.layerGroups = nil
	s.byLayer = make(map[string]*Node)
	s.byID = make(map[string]*Node)
	s.selected = make(map[string]bool)
	s.hoveredID = ""
}

// Node returns the shape node for an annotation id, for the editor
// overlay to share the same world transform.
func (s *Stage) Node(id string) (*Node, bool) {
	n, ok := s.byID[id]
	return n, ok
}

// Root returns the stage's root node.
func (s *Stage) Root() *Node { return s.root }

func styleColor(style *store.Style) Color {
	if style == nil || style.Fill == "" {
		return ColorWhite
	}
	c, ok := parseHexColor(style.Fill)
	if !ok {
		return ColorWhite
	}
	if style.FillOpacity > 0 {
		c.A = style.FillOpacity
	}
	return c
}

func parseHexColor(s string) (Color, bool) {
	if len(s) != 7 || s[0] != '#' {
		return Color{}, false
	}
	r, errR := strconv.ParseInt(s[1:3], 16, 32)
	g, errG := strconv.ParseInt(s[3:5], 16, 32)
	b, errB := strconv.ParseInt(s[5:7], 16, 32)
	if errR != nil || errG != nil || errB != nil {
		return Color{}, false
	}
	return Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: 1}, true
}
