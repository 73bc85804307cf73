package tool

import (
	"github.com/annota/core/geometry"
	"github.com/annota/core/history"
	"github.com/annota/core/store"
)

// FreehandID is the registry id for the freehand tool.
const FreehandID = "freehand"

// defaultSmoothingTolerance is the RDP epsilon, in image pixels, applied
// on release.
const defaultSmoothingTolerance = 2.0

// FreehandTool records a raw pointer path while dragging and simplifies
// it via Ramer-Douglas-Peucker on release. Closed selects whether the
// simplified path commits as a closed polygon or an open freehand curve.
type FreehandTool struct {
	baseTool
	ctx *Context

	// Closed selects the tool's output kind: true commits a closed
	// polygon, false an open freehand curve.
	Closed bool
	// SmoothingTolerance is the RDP epsilon in image pixels. Zero uses
	// defaultSmoothingTolerance.
	SmoothingTolerance float64

	recording bool
	draftID   string
	points    []geometry.Point
}

// NewFreehandTool creates an unregistered freehand tool with the default
// smoothing tolerance and open-path output.
func NewFreehandTool() *FreehandTool {
	return &FreehandTool{SmoothingTolerance: defaultSmoothingTolerance}
}

func (t *FreehandTool) ID() string        { return FreehandID }
func (t *FreehandTool) Init(ctx *Context) { t.ctx = ctx }

func (t *FreehandTool) Destroy() {
	if t.recording {
		t.ctx.Store.Delete(t.draftID)
	}
	t.recording = false
	t.points = nil
}

func (t *FreehandTool) OnPress(ev Event) bool {
	pt := geometry.Point{X: ev.ImageX, Y: ev.ImageY}
	props := t.ctx.mergedProperties(map[string]any{store.PropertyDrawing: true})
	ann, err := t.ctx.Store.Add(store.Annotation{
		Shape:      geometry.NewFreehand([]geometry.Point{pt}, t.Closed),
		Properties: props,
		Style:      t.ctx.DefaultStyle,
	})
	if err != nil {
		return false
	}
	t.recording = true
	t.draftID = ann.ID
	t.points = []geometry.Point{pt}
	return true
}

func (t *FreehandTool) OnDrag(ev Event) bool {
	if !t.recording {
		return false
	}
	t.points = append(t.points, geometry.Point{X: ev.ImageX, Y: ev.ImageY})
	ann, ok := t.ctx.Store.Get(t.draftID)
	if !ok {
		return false
	}
	ann.Shape = geometry.NewFreehand(t.points, t.Closed)
	t.ctx.Store.Update(t.draftID, ann)
	return true
}

func (t *FreehandTool) OnRelease(ev Event) bool {
	if !t.recording {
		return false
	}
	t.recording = false

	ann, ok := t.ctx.Store.Get(t.draftID)
	if !ok {
		return false
	}
	t.ctx.Store.Delete(t.draftID)

	tolerance := t.SmoothingTolerance
	if tolerance <= 0 {
		tolerance = defaultSmoothingTolerance
	}
	simplified := geometry.SimplifyRDP(t.points, tolerance)
	t.points = nil

	var shape geometry.Shape
	if t.Closed {
		s, err := geometry.NewPolygon(simplified)
		if err != nil {
			return true // too few points after simplification: abort silently
		}
		shape = s
	} else {
		if len(simplified) < 2 {
			return true
		}
		shape = geometry.NewFreehand(simplified, false)
	}

	ann.Shape = shape
	ann.ID = t.draftID
	delete(ann.Properties, store.PropertyDrawing)
	t.ctx.History.Execute(history.NewCreate(t.ctx.Store, ann))
	return true
}
