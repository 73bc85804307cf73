package tool

import (
	"github.com/annota/core/geometry"
	"github.com/annota/core/history"
	"github.com/annota/core/store"
)

// RectangleID is the registry id for the rectangle tool.
const RectangleID = "rectangle"

// minRectangleArea is the abort threshold, in square image pixels, for
// an accidental click-sized drag.
const minRectangleArea = 4.0

// RectangleTool draws a rectangle by drag: press anchors one corner,
// drag updates the opposite corner live (store-visible but not
// undoable), release either aborts a too-small rectangle or commits the
// final bounds as one undo step.
type RectangleTool struct {
	baseTool
	ctx *Context

	drawing  bool
	draftID  string
	anchorX  float64
	anchorY  float64
}

// NewRectangleTool creates an unregistered rectangle tool.
func NewRectangleTool() *RectangleTool { return &RectangleTool{} }

func (t *RectangleTool) ID() string        { return RectangleID }
func (t *RectangleTool) Init(ctx *Context) { t.ctx = ctx }

// Destroy discards any in-progress draft rectangle so deactivation never
// leaves a half-committed shape in the store.
func (t *RectangleTool) Destroy() {
	if t.drawing {
		t.ctx.Store.Delete(t.draftID)
		t.drawing = false
	}
}

func (t *RectangleTool) OnPress(ev Event) bool {
	props := t.ctx.mergedProperties(map[string]any{store.PropertyDrawing: true})
	ann, err := t.ctx.Store.Add(store.Annotation{
		Shape:      geometry.NewRectangle(ev.ImageX, ev.ImageY, 0, 0),
		Properties: props,
		Style:      t.ctx.DefaultStyle,
	})
	if err != nil {
		return false
	}
	t.drawing = true
	t.draftID = ann.ID
	t.anchorX, t.anchorY = ev.ImageX, ev.ImageY
	return true
}

func (t *RectangleTool) OnDrag(ev Event) bool {
	if !t.drawing {
		return false
	}
	ann, ok := t.ctx.Store.Get(t.draftID)
	if !ok {
		return false
	}
	w := ev.ImageX - t.anchorX
	h := ev.ImageY - t.anchorY
	ann.Shape = geometry.NewRectangle(t.anchorX, t.anchorY, w, h)
	t.ctx.Store.Update(t.draftID, ann)
	return true
}

func (t *RectangleTool) OnRelease(ev Event) bool {
	if !t.drawing {
		return false
	}
	t.drawing = false

	ann, ok := t.ctx.Store.Get(t.draftID)
	if !ok {
		return false
	}
	t.ctx.Store.Delete(t.draftID)

	if ann.Shape.Width*ann.Shape.Height < minRectangleArea {
		return true
	}

	delete(ann.Properties, store.PropertyDrawing)
	ann.ID = t.draftID
	t.ctx.History.Execute(history.NewCreate(t.ctx.Store, ann))
	return true
}
