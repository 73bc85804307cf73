package editor

import (
	"strconv"
	"strings"

	"github.com/annota/core/geometry"
)

// Edit applies a drag of (dx, dy) image pixels to handleID against the
// original, unmutated shape, returning the edited shape. It is a pure
// function of (shape, handleID, dx, dy), with no mutable state, so the
// caller's drag loop can call it every pointer-move against the
// press-time snapshot (the "pure edit(shape, handleId, dx, dy)
// → shape'" contract).
func Edit(shape geometry.Shape, handleID string, dx, dy float64) geometry.Shape {
	switch shape.Kind {
	case geometry.KindPoint:
		return editPoint(shape, dx, dy)
	case geometry.KindRectangle:
		return editRectangle(shape, handleID, dx, dy)
	case geometry.KindPolygon, geometry.KindFreehand:
		return editVertexShape(shape, handleID, dx, dy)
	default:
		return shape
	}
}

func editPoint(shape geometry.Shape, dx, dy float64) geometry.Shape {
	return geometry.NewPoint(shape.Point.X+dx, shape.Point.Y+dy)
}

// editRectangle moves the whole rectangle for the body handle, or
// resizes it for a corner/edge handle. Corner drags may flip width or
// height negative; geometry.NewRectangle normalizes that back to
// non-negative by swapping the anchor
func editRectangle(shape geometry.Shape, handleID string, dx, dy float64) geometry.Shape {
	x0, y0 := shape.X, shape.Y
	x1, y1 := shape.X+shape.Width, shape.Y+shape.Height

	switch handleID {
	case "body":
		return geometry.NewRectangle(x0+dx, y0+dy, shape.Width, shape.Height)
	case "corner:tl":
		x0 += dx
		y0 += dy
	case "corner:tr":
		x1 += dx
		y0 += dy
	case "corner:br":
		x1 += dx
		y1 += dy
	case "corner:bl":
		x0 += dx
		y1 += dy
	case "edge:top":
		y0 += dy
	case "edge:bottom":
		y1 += dy
	case "edge:left":
		x0 += dx
	case "edge:right":
		x1 += dx
	default:
		return shape
	}
	return geometry.NewRectangle(x0, y0, x1-x0, y1-y0)
}

// editVertexShape moves the whole shape for the body handle, drags a
// single vertex for a "vertex:N" handle, or inserts a new vertex at the
// dragged position for a "midpoint:N" handle.
func editVertexShape(shape geometry.Shape, handleID string, dx, dy float64) geometry.Shape {
	switch {
	case handleID == "body":
		pts := make([]geometry.Point, len(shape.Points))
		for i, p := range shape.Points {
			pts[i] = geometry.Point{X: p.X + dx, Y: p.Y + dy}
		}
		return rebuild(shape, pts)

	case strings.HasPrefix(handleID, "vertex:"):
		i, ok := parseIndex(handleID, "vertex:")
		if !ok || i < 0 || i >= len(shape.Points) {
			return shape
		}
		pts := append([]geometry.Point(nil), shape.Points...)
		pts[i] = geometry.Point{X: pts[i].X + dx, Y: pts[i].Y + dy}
		return rebuild(shape, pts)

	case strings.HasPrefix(handleID, "midpoint:"):
		i, ok := parseIndex(handleID, "midpoint:")
		if !ok || i < 0 || i >= len(shape.Points) {
			return shape
		}
		j := (i + 1) % len(shape.Points)
		mx := (shape.Points[i].X+shape.Points[j].X)/2 + dx
		my := (shape.Points[i].Y+shape.Points[j].Y)/2 + dy
		return geometry.InsertVertex(shape, i+1, geometry.Point{X: mx, Y: my})

	default:
		return shape
	}
}

func rebuild(shape geometry.Shape, points []geometry.Point) geometry.Shape {
	out := geometry.Shape{Kind: shape.Kind, Points: points, Closed: shape.Closed}
	out.Recompute()
	return out
}

func parseIndex(handleID, prefix string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(handleID, prefix))
	if err != nil {
		return 0, false
	}
	return n, true
}

// DeleteSelectedVertex removes vertex i from shape, refusing (returning
// shape, false) below the 3-vertex minimum; this is geometry.DeleteVertex
// exposed under the editor's own name since it is the handle-delete
// entry point callers reach for.
func DeleteSelectedVertex(shape geometry.Shape, i int) (geometry.Shape, bool) {
	return geometry.DeleteVertex(shape, i)
}
