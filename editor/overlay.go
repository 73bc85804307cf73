package editor

import (
	"github.com/annota/core/history"
	"github.com/annota/core/store"
)

// dragSession tracks one in-progress handle drag: the annotation id and
// handle being manipulated, the image-space origin where the drag
// started, and the unmutated shape snapshot Edit is always applied
// against (never the shape from the previous frame, which would let
// small per-frame errors accumulate).
type dragSession struct {
	annotationID string
	handleID     string
	originX      float64
	originY      float64
	original     store.Annotation
}

// Overlay drives the selected annotation's drag-handle lifecycle: handle
// layout, pure editing, and committing edits back through the store as
// one merged Update history step. It holds no rendering
// state of its own: a caller (ebiten draw pass, test, or any other
// consumer) reads Handles/InEditMode and draws however it likes, sharing
// render.ComputeViewportTransform to place them on screen.
type Overlay struct {
	Store   *store.Store
	History *history.Manager

	selected string // currently selected annotation id, or ""
	editMode map[string]bool

	drag *dragSession
}

// NewOverlay creates an overlay bound to st and hist.
func NewOverlay(st *store.Store, hist *history.Manager) *Overlay {
	return &Overlay{Store: st, History: hist, editMode: make(map[string]bool)}
}

// SetSelected sets which single annotation the overlay renders handles
// for. Selecting a different annotation cancels any in-progress drag and
// exits edit mode for the previous selection.
func (o *Overlay) SetSelected(id string) {
	o.CancelDrag()
	if id != o.selected {
		delete(o.editMode, o.selected)
	}
	o.selected = id
}

// Selected returns the currently selected annotation id, or "" if none.
func (o *Overlay) Selected() string { return o.selected }

// EnterEditMode switches a polygon/freehand annotation into per-vertex
// handle mode. Hosts call this on double-click.
func (o *Overlay) EnterEditMode(id string) { o.editMode[id] = true }

// ExitEditMode returns an annotation to body-handle-only mode.
func (o *Overlay) ExitEditMode(id string) { delete(o.editMode, id) }

// InEditMode reports whether id is currently in vertex-edit mode.
func (o *Overlay) InEditMode(id string) bool { return o.editMode[id] }

// Handles returns the current handle layout for the selected annotation,
// or nil if nothing is selected, if it carries the split-preview
// transient marker (the Open Question: "treat it as an opaque
// passthrough property; handles are not rendered for annotations carrying
// it"), or if the store no longer holds it.
func (o *Overlay) Handles() []Handle {
	if o.selected == "" {
		return nil
	}
	ann, ok := o.Store.Get(o.selected)
	if !ok || ann.HasProperty(store.PropertySplitPreview) {
		return nil
	}
	return Handles(ann.Shape, o.editMode[o.selected])
}

// BeginDrag captures the pointer: snapshots the selected annotation's
// current shape and the image-space origin of the drag. The caller is
// responsible for disabling viewer pan for the duration of the capture.
// Returns false if nothing is selected or the store no longer holds it.
func (o *Overlay) BeginDrag(handleID string, originX, originY float64) bool {
	if o.selected == "" {
		return false
	}
	ann, ok := o.Store.Get(o.selected)
	if !ok {
		return false
	}
	o.drag = &dragSession{annotationID: o.selected, handleID: handleID, originX: originX, originY: originY, original: ann}
	return true
}

// Dragging reports whether a handle drag is in progress.
func (o *Overlay) Dragging() bool { return o.drag != nil }

// UpdateDrag applies the pure per-kind edit against the drag's original
// snapshot and pushes the result through updateAnnotation, which merges
// into the in-flight history step so a whole drag gesture collapses to
// one undo entry.
func (o *Overlay) UpdateDrag(curX, curY float64) {
	if o.drag == nil {
		return
	}
	dx := curX - o.drag.originX
	dy := curY - o.drag.originY
	edited := Edit(o.drag.original.Shape, o.drag.handleID, dx, dy)

	current, ok := o.Store.Get(o.drag.annotationID)
	if !ok {
		return
	}
	next := current
	next.Shape = edited
	o.History.Execute(history.NewUpdate(o.Store, o.drag.annotationID, current, next))
}

// EndDrag releases pointer capture. The store already holds the final
// shape; callers re-enable viewer panning on their own side.
func (o *Overlay) EndDrag() {
	o.drag = nil
}

// CancelDrag aborts an in-progress drag without leaving history in an
// inconsistent state (the store already reflects the last UpdateDrag
// call. A genuine cancel-back-to-original is a caller choice to issue
// one more UpdateDrag at the origin before calling this).
func (o *Overlay) CancelDrag() {
	o.drag = nil
}

// DeleteVertex deletes vertex i of the selected annotation's shape,
// refusing below the 3-vertex minimum, and records one Update history
// step. Returns false if nothing is selected, it isn't a polygon/
// freehand, or the deletion was refused.
func (o *Overlay) DeleteVertex(i int) bool {
	if o.selected == "" {
		return false
	}
	ann, ok := o.Store.Get(o.selected)
	if !ok {
		return false
	}
	edited, ok := DeleteSelectedVertex(ann.Shape, i)
	if !ok {
		return false
	}
	next := ann
	next.Shape = edited
	o.History.Execute(history.NewUpdate(o.Store, o.selected, ann, next))
	return true
}
