// Package editor implements the drag-handle overlay for the currently
// selected annotation: a second, lightweight node set
// transformed by the identical affine matrix render's scene uses
// (render.ComputeViewportTransform), so handles and filled shapes stay
// coregistered to sub-pixel precision without duplicating the transform
// algebra. Handle layout and the pure per-kind edit function are
// dispatched by geometry.Kind, mirroring the store's own "no
// variant-sensitive code outside the per-shape dispatch tables" rule.
package editor

import (
	"strconv"

	"github.com/annota/core/geometry"
)

// Kind tags what a drag handle manipulates.
type Kind uint8

const (
	KindBody Kind = iota
	KindCorner
	KindEdgeMidpoint
	KindVertex
	KindVertexMidpoint
)

// Handle is one drag point rendered over the selected annotation, in
// image pixel coordinates. ID is stable across re-layout (e.g.
// "vertex:3") so a drag session started on one handle stays addressed to
// the same semantic point even if the vertex list resizes mid-drag.
type Handle struct {
	ID    string
	Kind  Kind
	X, Y  float64
	Index int // vertex/ring index, meaningful for Vertex/VertexMidpoint/Corner/EdgeMidpoint
}

// rectCorners names the four rectangle corner handles in a fixed order,
// used both to lay out handles and to know which opposite corner a drag
// pivots around.
var rectCorners = [4]string{"corner:tl", "corner:tr", "corner:br", "corner:bl"}

// Handles returns the drag-handle layout for shape. Polygon/freehand
// vertex and midpoint handles are only returned when editMode is true
// (entered by double-click); outside edit mode only the body handle is
// offered.
func Handles(shape geometry.Shape, editMode bool) []Handle {
	switch shape.Kind {
	case geometry.KindPoint:
		return []Handle{{ID: "body", Kind: KindBody, X: shape.Point.X, Y: shape.Point.Y}}

	case geometry.KindRectangle:
		return rectangleHandles(shape)

	case geometry.KindPolygon:
		if !editMode {
			return []Handle{{ID: "body", Kind: KindBody, X: centroidX(shape.Points), Y: centroidY(shape.Points)}}
		}
		return vertexHandles(shape.Points, true)

	case geometry.KindFreehand:
		if !editMode {
			return []Handle{{ID: "body", Kind: KindBody, X: centroidX(shape.Points), Y: centroidY(shape.Points)}}
		}
		return vertexHandles(shape.Points, shape.Closed)

	default:
		return nil
	}
}

func rectangleHandles(shape geometry.Shape) []Handle {
	x0, y0 := shape.X, shape.Y
	x1, y1 := shape.X+shape.Width, shape.Y+shape.Height
	cx, cy := (x0+x1)/2, (y0+y1)/2

	corners := [4]geometry.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
	out := make([]Handle, 0, 9)
	for i, c := range corners {
		out = append(out, Handle{ID: rectCorners[i], Kind: KindCorner, X: c.X, Y: c.Y, Index: i})
	}
	edges := []struct {
		id   string
		x, y float64
	}{
		{"edge:top", cx, y0},
		{"edge:right", x1, cy},
		{"edge:bottom", cx, y1},
		{"edge:left", x0, cy},
	}
	for i, e := range edges {
		out = append(out, Handle{ID: e.id, Kind: KindEdgeMidpoint, X: e.x, Y: e.y, Index: i})
	}
	out = append(out, Handle{ID: "body", Kind: KindBody, X: cx, Y: cy})
	return out
}

// vertexHandles returns one handle per vertex plus, when closed (or
// polygon, which is implicitly closed), one midpoint handle per edge
// that inserts a new vertex when dragged.
func vertexHandles(points []geometry.Point, closed bool) []Handle {
	out := make([]Handle, 0, len(points)*2)
	for i, p := range points {
		out = append(out, Handle{ID: vertexID(i), Kind: KindVertex, X: p.X, Y: p.Y, Index: i})
	}
	segs := len(points) - 1
	if closed {
		segs = len(points)
	}
	for i := 0; i < segs; i++ {
		j := (i + 1) % len(points)
		mx := (points[i].X + points[j].X) / 2
		my := (points[i].Y + points[j].Y) / 2
		out = append(out, Handle{ID: midpointID(i), Kind: KindVertexMidpoint, X: mx, Y: my, Index: i})
	}
	return out
}

func vertexID(i int) string   { return "vertex:" + strconv.Itoa(i) }
func midpointID(i int) string { return "midpoint:" + strconv.Itoa(i) }

func centroidX(points []geometry.Point) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.X
	}
	return sum / float64(len(points))
}

func centroidY(points []geometry.Point) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Y
	}
	return sum / float64(len(points))
}
