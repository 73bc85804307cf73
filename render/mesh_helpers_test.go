package render

import (
	"testing"

	"github.com/annota/core/geometry"
)

func TestBuildMeshPointProducesDisc(t *testing.T) {
	n := NewShapeNode("p1", geometry.KindPoint)
	shape := geometry.NewPoint(10, 10)
	BuildMesh(n, shape, true, 2, 5)

	if len(n.Vertices) != 25 { // hub + 24 segments
		t.Fatalf("len(Vertices) = %d, want 25", len(n.Vertices))
	}
	if len(n.Indices) != 24*3 {
		t.Fatalf("len(Indices) = %d, want %d", len(n.Indices), 24*3)
	}
}

func TestBuildMeshRectangleFilled(t *testing.T) {
	n := NewShapeNode("r1", geometry.KindRectangle)
	shape := geometry.NewRectangle(0, 0, 10, 20)
	BuildMesh(n, shape, true, 2, 5)

	if len(n.Vertices) != 4 {
		t.Fatalf("len(Vertices) = %d, want 4", len(n.Vertices))
	}
	if len(n.Indices) != 6 { // fan triangulation of a quad: 2 triangles
		t.Fatalf("len(Indices) = %d, want 6", len(n.Indices))
	}
}

func TestBuildMeshRectangleStroked(t *testing.T) {
	n := NewShapeNode("r2", geometry.KindRectangle)
	shape := geometry.NewRectangle(0, 0, 10, 20)
	BuildMesh(n, shape, false, 2, 5)

	if len(n.Vertices) == 0 {
		t.Fatal("stroked rectangle should produce a ribbon mesh")
	}
}

func TestBuildMeshPolygon(t *testing.T) {
	n := NewShapeNode("g1", geometry.KindPolygon)
	shape, err := geometry.NewPolygon([]geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}})
	if err != nil {
		t.Fatal(err)
	}
	BuildMesh(n, shape, true, 2, 5)
	if len(n.Vertices) != 4 {
		t.Fatalf("len(Vertices) = %d, want 4", len(n.Vertices))
	}
}

func TestBuildMeshFreehandOpenProducesStroke(t *testing.T) {
	n := NewShapeNode("f1", geometry.KindFreehand)
	shape := geometry.Shape{Kind: geometry.KindFreehand, Closed: false, Points: []geometry.Point{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 0}}}
	BuildMesh(n, shape, true, 3, 5)
	if len(n.Vertices) != 6 { // 2 per point for a ribbon
		t.Fatalf("len(Vertices) = %d, want 6", len(n.Vertices))
	}
}

func TestBuildMeshFreehandClosedFilled(t *testing.T) {
	n := NewShapeNode("f2", geometry.KindFreehand)
	shape := geometry.Shape{Kind: geometry.KindFreehand, Closed: true, Points: []geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}}
	BuildMesh(n, shape, true, 3, 5)
	if len(n.Vertices) != 3 {
		t.Fatalf("closed filled freehand should fan-triangulate, got %d verts", len(n.Vertices))
	}
}

func TestBuildMeshMultiPolygon(t *testing.T) {
	n := NewShapeNode("m1", geometry.KindMultiPolygon)
	ring1 := []geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	ring2 := []geometry.Point{{X: 3, Y: 3}, {X: 5, Y: 3}, {X: 5, Y: 5}}
	shape := geometry.Shape{Kind: geometry.KindMultiPolygon, Polygons: [][]geometry.Point{ring1, ring2}}
	BuildMesh(n, shape, true, 2, 5)

	if len(n.Vertices) != 7 { // 4 + 3
		t.Fatalf("len(Vertices) = %d, want 7", len(n.Vertices))
	}
	for _, idx := range n.Indices {
		if int(idx) >= len(n.Vertices) {
			t.Fatalf("index %d out of range for %d vertices", idx, len(n.Vertices))
		}
	}
}

func TestBuildMeshImageProducesBoundingQuad(t *testing.T) {
	n := NewShapeNode("img1", geometry.KindImage)
	shape := geometry.Shape{Kind: geometry.KindImage, X: 0, Y: 0, Width: 100, Height: 50}
	BuildMesh(n, shape, true, 0, 0)
	if len(n.Vertices) != 4 {
		t.Fatalf("len(Vertices) = %d, want 4", len(n.Vertices))
	}
}

func TestBuildMeshMarksAABBDirty(t *testing.T) {
	n := NewShapeNode("r3", geometry.KindRectangle)
	n.meshAABBDirty = false
	shape := geometry.NewRectangle(0, 0, 10, 10)
	BuildMesh(n, shape, true, 2, 5)
	if !n.meshAABBDirty {
		t.Error("BuildMesh should invalidate the cached mesh AABB")
	}
}

func TestBuildStrokeTooFewPointsReturnsNil(t *testing.T) {
	verts, inds := buildStroke([]geometry.Point{{X: 0, Y: 0}}, 2, false)
	if verts != nil || inds != nil {
		t.Error("buildStroke with < 2 points should return nil, nil")
	}
}

func TestBuildPolygonFanTooFewPointsReturnsNil(t *testing.T) {
	verts, inds := buildPolygonFan([]geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if verts != nil || inds != nil {
		t.Error("buildPolygonFan with < 3 points should return nil, nil")
	}
}

func TestBuildDiscClampsMinimumSegments(t *testing.T) {
	verts, inds := buildDisc(0, 0, 5, 1)
	if len(verts) != 4 { // clamped to 3 segments + hub
		t.Fatalf("len(verts) = %d, want 4", len(verts))
	}
	if len(inds) != 9 {
		t.Fatalf("len(inds) = %d, want 9", len(inds))
	}
}
