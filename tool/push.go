package tool

import (
	"math"

	"github.com/annota/core/geometry"
	"github.com/annota/core/history"
	"github.com/annota/core/store"
)

// PushID is the registry id for the push (vertex sculpting) tool.
const PushID = "push"

// defaultPushRadius and defaultPushStrength are the push tool's fallback
// configuration: tens of image pixels of reach, gentle displacement.
const (
	defaultPushRadius   = 40.0
	defaultPushStrength = 0.6
)

// vertexHitTolerance is how close the cursor must be to an existing
// vertex, in image pixels, for a press to engage pushing on a polygon
// the cursor is inside rather than yielding to selection.
const vertexHitTolerance = 8.0

// PushTool radially displaces the vertices of every eligible polygon
// within PushRadius of the cursor while dragging. The displacement is a
// pure function of each vertex's position at press time, the press
// point, and the current cursor, not an accumulator, and it scales with
// the cursor's travel from the press point, so dragging back to where
// the press started restores every vertex exactly.
type PushTool struct {
	baseTool
	ctx *Context

	PushRadius   float64
	PushStrength float64
	// ShowCursor asks the renderer to draw a translucent disc of
	// PushRadius around the pointer while the tool is active.
	ShowCursor bool
	// Bounds returns the current viewport's image-space bounds, so press
	// only snapshots polygons actually on screen. A nil Bounds snapshots
	// every polygon in the store.
	Bounds func() geometry.Bounds
	// LayerFilter restricts which annotations are eligible, mirroring
	// the "optionally limited by layer".
	LayerFilter func(store.Annotation) bool

	pushing  bool
	original map[string]store.Annotation
	pressX   float64
	pressY   float64
	cursorX  float64
	cursorY  float64
}

// NewPushTool creates an unregistered push tool with default radius and strength.
func NewPushTool() *PushTool {
	return &PushTool{PushRadius: defaultPushRadius, PushStrength: defaultPushStrength}
}

func (t *PushTool) ID() string        { return PushID }
func (t *PushTool) Init(ctx *Context) { t.ctx = ctx }

func (t *PushTool) Destroy() {
	t.pushing = false
	t.original = nil
}

func (t *PushTool) eligible(ann store.Annotation) bool {
	if ann.Shape.Kind != geometry.KindPolygon && !(ann.Shape.Kind == geometry.KindFreehand && ann.Shape.Closed) {
		return false
	}
	if t.LayerFilter != nil && !t.LayerFilter(ann) {
		return false
	}
	return true
}

func (t *PushTool) candidates() []store.Annotation {
	if t.Bounds != nil {
		return t.ctx.Store.Search(t.Bounds())
	}
	return t.ctx.Store.All()
}

// OnPress snapshots every eligible polygon touching the viewport, unless
// the cursor lands inside a polygon's body without being near any of its
// vertices; in that case the tool yields to selection and does not
// engage (the special case).
func (t *PushTool) OnPress(ev Event) bool {
	near := false
	inside := false
	for _, ann := range t.candidates() {
		if !t.eligible(ann) {
			continue
		}
		for _, p := range ann.Shape.Points {
			if math.Hypot(p.X-ev.ImageX, p.Y-ev.ImageY) <= vertexHitTolerance {
				near = true
			}
		}
		if geometry.HitTest(ann.Shape, ev.ImageX, ev.ImageY, 0) {
			inside = true
		}
	}
	if inside && !near {
		return false
	}

	t.original = make(map[string]store.Annotation)
	for _, ann := range t.candidates() {
		if t.eligible(ann) {
			t.original[ann.ID] = ann
		}
	}
	t.pushing = true
	t.pressX, t.pressY = ev.ImageX, ev.ImageY
	t.cursorX, t.cursorY = ev.ImageX, ev.ImageY
	return true
}

// OnMove tracks the cursor while no button is held, so the cursor disc
// follows the pointer between pushes.
func (t *PushTool) OnMove(ev Event) bool {
	t.cursorX, t.cursorY = ev.ImageX, ev.ImageY
	return false
}

// Cursor returns the image-space center and radius of the cursor disc,
// and whether the renderer should draw it.
func (t *PushTool) Cursor() (x, y, radius float64, show bool) {
	return t.cursorX, t.cursorY, t.PushRadius, t.ShowCursor
}

func (t *PushTool) OnDrag(ev Event) bool {
	if !t.pushing {
		return false
	}
	t.cursorX, t.cursorY = ev.ImageX, ev.ImageY

	for id, orig := range t.original {
		newPoints := make([]geometry.Point, len(orig.Shape.Points))
		for i, p := range orig.Shape.Points {
			newPoints[i] = t.displace(p)
		}
		current, ok := t.ctx.Store.Get(id)
		if !ok {
			continue
		}
		current.Shape = geometry.Shape{Kind: orig.Shape.Kind, Points: newPoints, Closed: orig.Shape.Closed}
		current.Shape.Recompute()
		t.ctx.Store.Update(id, current)
	}
	return true
}

// displace returns p's position pushed radially outward from the
// current cursor, or p unchanged if it's outside PushRadius. The
// magnitude falls off linearly with distance from the cursor and scales
// with how far the cursor has traveled from the press point, so it is
// zero while the cursor sits on the press point.
func (t *PushTool) displace(p geometry.Point) geometry.Point {
	dx := p.X - t.cursorX
	dy := p.Y - t.cursorY
	d := math.Hypot(dx, dy)
	if d >= t.PushRadius || d < 1e-9 {
		return p
	}
	travel := math.Hypot(t.cursorX-t.pressX, t.cursorY-t.pressY)
	magnitude := t.PushStrength * (1 - d/t.PushRadius) * travel
	return geometry.Point{X: p.X + dx/d*magnitude, Y: p.Y + dy/d*magnitude}
}

// OnRelease commits the accumulated displacement of every touched
// polygon as one batch undo step.
func (t *PushTool) OnRelease(ev Event) bool {
	if !t.pushing {
		return false
	}
	t.pushing = false

	t.ctx.History.BeginBatch("push")
	for id, orig := range t.original {
		current, ok := t.ctx.Store.Get(id)
		if !ok {
			continue
		}
		if shapesEqual(orig.Shape, current.Shape) {
			continue
		}
		t.ctx.History.Execute(history.NewUpdate(t.ctx.Store, id, orig, current))
	}
	t.ctx.History.EndBatch()
	t.original = nil
	return true
}

func shapesEqual(a, b geometry.Shape) bool {
	if len(a.Points) != len(b.Points) {
		return false
	}
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			return false
		}
	}
	return true
}
