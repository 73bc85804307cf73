package tool

import (
	"github.com/annota/core/geometry"
	"github.com/annota/core/history"
	"github.com/annota/core/store"
)

// PolygonID is the registry id for the polygon tool.
const PolygonID = "polygon"

// PolygonTool builds a polygon one vertex per click. A click near the
// first vertex closes the shape. Event carries no timestamp to
// distinguish a double-click from two separate clicks, so
// closing-by-proximity is the only close mechanism implemented here.
type PolygonTool struct {
	baseTool
	ctx *Context

	drawing      bool
	draftID      string
	points       []geometry.Point
	firstScreenX float64
	firstScreenY float64
}

// NewPolygonTool creates an unregistered polygon tool.
func NewPolygonTool() *PolygonTool { return &PolygonTool{} }

func (t *PolygonTool) ID() string        { return PolygonID }
func (t *PolygonTool) Init(ctx *Context) { t.ctx = ctx }

func (t *PolygonTool) Destroy() {
	t.cancel()
}

func (t *PolygonTool) cancel() {
	if t.drawing {
		t.ctx.Store.Delete(t.draftID)
	}
	t.drawing = false
	t.points = nil
}

func (t *PolygonTool) updateDraft(preview geometry.Point, haveClone bool) {
	pts := t.points
	if haveClone {
		pts = append(append([]geometry.Point{}, t.points...), preview)
	}
	shape := geometry.Shape{Kind: geometry.KindPolygon, Points: pts}
	shape.Recompute()
	ann, _ := t.ctx.Store.Get(t.draftID)
	ann.Shape = shape
	t.ctx.Store.Update(t.draftID, ann)
}

// OnClick appends a vertex, or, when near the first vertex with at
// least 3 points already placed, closes and commits the polygon.
func (t *PolygonTool) OnClick(ev Event) bool {
	if t.drawing && len(t.points) >= 3 && !ExceedsDeadZone(t.firstScreenX, t.firstScreenY, ev.ScreenX, ev.ScreenY) {
		t.commit()
		return true
	}

	if !t.drawing {
		props := t.ctx.mergedProperties(map[string]any{store.PropertyDrawing: true})
		shape := geometry.Shape{Kind: geometry.KindPolygon, Points: []geometry.Point{{X: ev.ImageX, Y: ev.ImageY}}}
		shape.Recompute()
		ann, err := t.ctx.Store.Add(store.Annotation{Shape: shape, Properties: props, Style: t.ctx.DefaultStyle})
		if err != nil {
			return false
		}
		t.drawing = true
		t.draftID = ann.ID
		t.points = []geometry.Point{{X: ev.ImageX, Y: ev.ImageY}}
		t.firstScreenX, t.firstScreenY = ev.ScreenX, ev.ScreenY
		return true
	}

	t.points = append(t.points, geometry.Point{X: ev.ImageX, Y: ev.ImageY})
	t.updateDraft(geometry.Point{}, false)
	return true
}

// OnMove draws the rubber-band edge from the last placed vertex to the
// current cursor position.
func (t *PolygonTool) OnMove(ev Event) bool {
	if !t.drawing {
		return false
	}
	t.updateDraft(geometry.Point{X: ev.ImageX, Y: ev.ImageY}, true)
	return true
}

// OnKey cancels the in-progress polygon on Escape
func (t *PolygonTool) OnKey(key string) bool {
	if key != "Escape" || !t.drawing {
		return false
	}
	t.cancel()
	return true
}

func (t *PolygonTool) commit() {
	ann, ok := t.ctx.Store.Get(t.draftID)
	if !ok {
		t.drawing = false
		return
	}
	t.ctx.Store.Delete(t.draftID)

	shape, err := geometry.NewPolygon(t.points)
	if err != nil {
		t.drawing = false
		t.points = nil
		return
	}
	ann.Shape = shape
	ann.ID = t.draftID
	delete(ann.Properties, store.PropertyDrawing)

	t.ctx.History.Execute(history.NewCreate(t.ctx.Store, ann))
	t.drawing = false
	t.points = nil
}
