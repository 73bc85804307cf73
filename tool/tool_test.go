package tool

import (
	"testing"

	"github.com/annota/core/geometry"
	"github.com/annota/core/history"
	"github.com/annota/core/sam"
	"github.com/annota/core/store"
)

func newTestContext() *Context {
	return &Context{
		Store:   store.New(nil),
		History: history.New(history.Options{EnableMerging: true}, nil),
	}
}

func TestManagerActivateDeactivateIsExclusive(t *testing.T) {
	ctx := newTestContext()
	mgr := NewManager(ctx)
	mgr.Register(NewPointTool())
	mgr.Register(NewRectangleTool())

	mgr.Activate(PointID)
	if mgr.Active() != PointID {
		t.Fatalf("expected active tool %q, got %q", PointID, mgr.Active())
	}

	mgr.Activate(RectangleID)
	if mgr.Active() != RectangleID {
		t.Fatalf("expected active tool %q, got %q", RectangleID, mgr.Active())
	}

	mgr.Deactivate()
	if mgr.Active() != "" {
		t.Fatalf("expected no active tool, got %q", mgr.Active())
	}
}

func TestPointToolCreatesOnPress(t *testing.T) {
	ctx := newTestContext()
	mgr := NewManager(ctx)
	mgr.Register(NewPointTool())
	mgr.Activate(PointID)

	mgr.Press(Event{ImageX: 10, ImageY: 20})

	all := ctx.Store.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(all))
	}
	if all[0].Shape.Point.X != 10 || all[0].Shape.Point.Y != 20 {
		t.Fatalf("unexpected point location: %+v", all[0].Shape.Point)
	}
	if !ctx.History.CanUndo() {
		t.Fatal("expected an undoable step")
	}
}

// TestRectangleDrawAndUndo: press, drag, release leaves one normalized
// rectangle and one undoable step.
func TestRectangleDrawAndUndo(t *testing.T) {
	ctx := newTestContext()
	mgr := NewManager(ctx)
	mgr.Register(NewRectangleTool())
	mgr.Activate(RectangleID)

	mgr.Press(Event{ImageX: 100, ImageY: 100, ScreenX: 100, ScreenY: 100})
	mgr.Drag(Event{ImageX: 400, ImageY: 300, ScreenX: 400, ScreenY: 300})
	mgr.Release(Event{ImageX: 400, ImageY: 300, ScreenX: 400, ScreenY: 300})

	all := ctx.Store.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 rectangle, got %d", len(all))
	}
	got := all[0].Shape
	if got.X != 100 || got.Y != 100 || got.Width != 300 || got.Height != 200 {
		t.Fatalf("unexpected rectangle: %+v", got)
	}
	b := got.Bounds()
	if b.MinX != 100 || b.MinY != 100 || b.MaxX != 400 || b.MaxY != 300 {
		t.Fatalf("unexpected bounds: %+v", b)
	}

	if err := ctx.History.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if ctx.Store.Size() != 0 {
		t.Fatalf("expected empty store after undo, got %d", ctx.Store.Size())
	}

	if err := ctx.History.Redo(); err != nil {
		t.Fatalf("redo: %v", err)
	}
	all = ctx.Store.All()
	if len(all) != 1 || all[0].Shape.X != 100 {
		t.Fatalf("expected rectangle restored by redo, got %+v", all)
	}
}

func TestRectangleToolAbortsBelowMinimumArea(t *testing.T) {
	ctx := newTestContext()
	mgr := NewManager(ctx)
	mgr.Register(NewRectangleTool())
	mgr.Activate(RectangleID)

	mgr.Press(Event{ImageX: 0, ImageY: 0, ScreenX: 0, ScreenY: 0})
	mgr.Drag(Event{ImageX: 1, ImageY: 1, ScreenX: 1, ScreenY: 1})
	mgr.Release(Event{ImageX: 1, ImageY: 1, ScreenX: 1, ScreenY: 1})

	if ctx.Store.Size() != 0 {
		t.Fatalf("expected aborted draw to leave no annotation, got %d", ctx.Store.Size())
	}
	if ctx.History.CanUndo() {
		t.Fatal("expected no undo step for an aborted draw")
	}
}

// TestPolygonClosesByProximity: a click near the first vertex closes the
// polygon instead of appending a fifth vertex.
func TestPolygonClosesByProximity(t *testing.T) {
	ctx := newTestContext()
	mgr := NewManager(ctx)
	mgr.Register(NewPolygonTool())
	mgr.Activate(PolygonID)

	clicks := []Event{
		{ImageX: 0, ImageY: 0, ScreenX: 0, ScreenY: 0},
		{ImageX: 100, ImageY: 0, ScreenX: 100, ScreenY: 0},
		{ImageX: 100, ImageY: 100, ScreenX: 100, ScreenY: 100},
		{ImageX: 0, ImageY: 100, ScreenX: 0, ScreenY: 100},
		{ImageX: 2, ImageY: 1, ScreenX: 2, ScreenY: 1},
	}
	for _, ev := range clicks {
		mgr.Press(ev)
		mgr.Release(ev)
	}

	all := ctx.Store.All()
	if len(all) != 1 {
		t.Fatalf("expected exactly 1 polygon, got %d", len(all))
	}
	if len(all[0].Shape.Points) != 4 {
		t.Fatalf("expected 4 vertices (closed by proximity, not 5), got %d", len(all[0].Shape.Points))
	}
	if ctx.History.Status().UndoSize != 1 {
		t.Fatalf("expected a single undo step for the whole polygon, got %d", ctx.History.Status().UndoSize)
	}
}

func TestPolygonEscapeCancels(t *testing.T) {
	ctx := newTestContext()
	mgr := NewManager(ctx)
	mgr.Register(NewPolygonTool())
	mgr.Activate(PolygonID)

	ev := Event{ImageX: 0, ImageY: 0, ScreenX: 0, ScreenY: 0}
	mgr.Press(ev)
	mgr.Release(ev)
	mgr.Key("Escape")

	if ctx.Store.Size() != 0 {
		t.Fatalf("expected escape to discard the in-progress polygon, got %d annotations", ctx.Store.Size())
	}
}

func TestFreehandSimplifiesOnRelease(t *testing.T) {
	ctx := newTestContext()
	mgr := NewManager(ctx)
	ft := NewFreehandTool()
	ft.Closed = false
	mgr.Register(ft)
	mgr.Activate(FreehandID)

	mgr.Press(Event{ImageX: 0, ImageY: 0, ScreenX: 0, ScreenY: 0})
	for x := 1.0; x <= 10; x++ {
		mgr.Drag(Event{ImageX: x, ImageY: 0, ScreenX: x, ScreenY: 0}) // a straight line: RDP should collapse it
	}
	mgr.Release(Event{ImageX: 10, ImageY: 0, ScreenX: 10, ScreenY: 0})

	all := ctx.Store.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 freehand annotation, got %d", len(all))
	}
	if len(all[0].Shape.Points) != 2 {
		t.Fatalf("expected RDP to simplify a straight line to 2 points, got %d", len(all[0].Shape.Points))
	}
}

// TestPushRestoration: pushing then dragging back to the start restores
// the original vertices (the deformation is accumulator-free).
func TestPushRestoration(t *testing.T) {
	ctx := newTestContext()
	shape, err := geometry.NewPolygon([]geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}})
	if err != nil {
		t.Fatal(err)
	}
	ann, err := ctx.Store.Add(store.Annotation{Shape: shape})
	if err != nil {
		t.Fatal(err)
	}

	mgr := NewManager(ctx)
	push := NewPushTool()
	mgr.Register(push)
	mgr.Activate(PushID)

	mgr.Press(Event{ImageX: 5, ImageY: 5, ScreenX: 5, ScreenY: 5})
	mgr.Drag(Event{ImageX: 20, ImageY: 5, ScreenX: 20, ScreenY: 5})

	mid, ok := ctx.Store.Get(ann.ID)
	if !ok {
		t.Fatal("annotation vanished mid-drag")
	}
	if shapesEqual(shape, mid.Shape) {
		t.Fatal("expected the drag away from the press point to displace vertices")
	}

	mgr.Drag(Event{ImageX: 5, ImageY: 5, ScreenX: 5, ScreenY: 5})
	mgr.Release(Event{ImageX: 5, ImageY: 5, ScreenX: 5, ScreenY: 5})

	final, ok := ctx.Store.Get(ann.ID)
	if !ok {
		t.Fatal("annotation vanished")
	}
	orig := shape.Points
	for i, p := range final.Shape.Points {
		if diff := p.X - orig[i].X; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("vertex %d.X drifted: got %v want %v", i, p.X, orig[i].X)
		}
		if diff := p.Y - orig[i].Y; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("vertex %d.Y drifted: got %v want %v", i, p.Y, orig[i].Y)
		}
	}
}

func TestPushYieldsToSelectionInsideBodyAwayFromVertices(t *testing.T) {
	ctx := newTestContext()
	shape, _ := geometry.NewPolygon([]geometry.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}})
	ctx.Store.Add(store.Annotation{Shape: shape})

	mgr := NewManager(ctx)
	mgr.Register(NewPushTool())
	mgr.Activate(PushID)

	prevented := mgr.Press(Event{ImageX: 50, ImageY: 50, ScreenX: 50, ScreenY: 50})
	if prevented {
		t.Fatal("expected push to yield to selection when pressing inside a polygon body, away from any vertex")
	}
}

func TestSAMToolCommitsPredictedPolygon(t *testing.T) {
	ctx := newTestContext()
	predictor := &fakePredictor{poly: sam.Polygon{Points: []sam.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}}}
	session := sam.NewSession(predictor)
	session.BeginReload(100, 100)
	if err := session.CompleteReload(session.Generation(), nil); err != nil {
		t.Fatal(err)
	}

	mgr := NewManager(ctx)
	samTool := NewSAMTool(session)
	mgr.Register(samTool)
	mgr.Activate(SAMID)

	ev := Event{ImageX: 5, ImageY: 5, ScreenX: 5, ScreenY: 5}
	mgr.Press(ev)
	mgr.Release(ev)

	if ctx.Store.Size() != 1 {
		t.Fatalf("expected SAM click to commit one polygon, got %d", ctx.Store.Size())
	}
}

type fakePredictor struct {
	poly sam.Polygon
}

func (f *fakePredictor) SetEmbedding(tensor []float32, w, h int) error { return nil }
func (f *fakePredictor) Predict(points []sam.Point, w, h int) (sam.Polygon, error) {
	return f.poly, nil
}
