package render

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/annota/core/geometry"
)

// BuildMesh tessellates an annotation's shape into n's Vertices/Indices,
// selecting the builder by n.Kind. strokeWidth and pointRadius come from
// the annotation's store.Style (already resolved by the caller so this
// package stays store-agnostic).
func BuildMesh(n *Node, shape geometry.Shape, filled bool, strokeWidth, pointRadius float64) {
	switch n.Kind {
	case geometry.KindPoint:
		n.Vertices, n.Indices = buildDisc(shape.Point.X, shape.Point.Y, pointRadius, 24)
	case geometry.KindRectangle:
		ring := []geometry.Point{
			{X: shape.X, Y: shape.Y},
			{X: shape.X + shape.Width, Y: shape.Y},
			{X: shape.X + shape.Width, Y: shape.Y + shape.Height},
			{X: shape.X, Y: shape.Y + shape.Height},
		}
		if filled {
			n.Vertices, n.Indices = buildPolygonFan(ring)
		} else {
			n.Vertices, n.Indices = buildStroke(ring, strokeWidth, true)
		}
	case geometry.KindPolygon:
		if filled {
			n.Vertices, n.Indices = buildPolygonFan(shape.Points)
		} else {
			n.Vertices, n.Indices = buildStroke(shape.Points, strokeWidth, true)
		}
	case geometry.KindFreehand:
		if shape.Closed && filled {
			n.Vertices, n.Indices = buildPolygonFan(shape.Points)
		} else {
			n.Vertices, n.Indices = buildStroke(shape.Points, strokeWidth, shape.Closed)
		}
	case geometry.KindMultiPolygon:
		n.Vertices, n.Indices = buildMultiPolygonFan(shape.Polygons)
	case geometry.KindImage:
		ring := []geometry.Point{
			{X: shape.X, Y: shape.Y},
			{X: shape.X + shape.Width, Y: shape.Y},
			{X: shape.X + shape.Width, Y: shape.Y + shape.Height},
			{X: shape.X, Y: shape.Y + shape.Height},
		}
		n.Vertices, n.Indices = buildPolygonFan(ring)
	}
	n.InvalidateMeshAABB()
}

// buildPolygonFan generates vertices and indices for a fan-triangulated
// polygon: N vertices, 3*(N-2) indices. Untextured: UVs map to the
// center of the shared white pixel, color comes from the node's tint.
func buildPolygonFan(points []geometry.Point) ([]ebiten.Vertex, []uint16) {
	n := len(points)
	if n < 3 {
		return nil, nil
	}
	verts := make([]ebiten.Vertex, n)
	inds := make([]uint16, (n-2)*3)
	for i, p := range points {
		verts[i] = ebiten.Vertex{DstX: float32(p.X), DstY: float32(p.Y), SrcX: 0.5, SrcY: 0.5, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1}
	}
	for i := 0; i < n-2; i++ {
		inds[i*3+0] = 0
		inds[i*3+1] = uint16(i + 1)
		inds[i*3+2] = uint16(i + 2)
	}
	return verts, inds
}

// buildMultiPolygonFan fan-triangulates every ring independently and
// concatenates the results, so exterior rings and holes each get their
// own local hub vertex (the store's per-polygon classification decides
// polarity elsewhere; rendering just draws every ring filled).
func buildMultiPolygonFan(rings [][]geometry.Point) ([]ebiten.Vertex, []uint16) {
	var verts []ebiten.Vertex
	var inds []uint16
	for _, ring := range rings {
		rv, ri := buildPolygonFan(ring)
		base := uint16(len(verts))
		for _, idx := range ri {
			inds = append(inds, idx+base)
		}
		verts = append(verts, rv...)
	}
	return verts, inds
}

// buildStroke generates a ribbon mesh of the given width following a
// polyline, used for rectangle/polygon outlines and freehand paths
// (open or closed). N points produce 2N vertices (2N+2 when closed) and 6(N-1 or N)
// indices.
func buildStroke(points []geometry.Point, width float64, closed bool) ([]ebiten.Vertex, []uint16) {
	n := len(points)
	if n < 2 {
		return nil, nil
	}
	segs := n - 1
	if closed {
		segs = n
	}
	numVerts := n * 2
	if closed {
		numVerts = (n + 1) * 2
	}
	verts := make([]ebiten.Vertex, 0, numVerts)
	half := width / 2

	path := points
	if closed {
		path = append(append([]geometry.Point{}, points...), points[0])
	}
	m := len(path)

	for i := 0; i < m; i++ {
		var nx, ny float64
		switch {
		case i == 0:
			nx, ny = perp(path[0], path[1])
		case i == m-1:
			nx, ny = perp(path[m-2], path[m-1])
		default:
			nx0, ny0 := perp(path[i-1], path[i])
			nx1, ny1 := perp(path[i], path[i+1])
			nx, ny = nx0+nx1, ny0+ny1
			l := math.Hypot(nx, ny)
			if l > 1e-10 {
				nx /= l
				ny /= l
			}
		}
		verts = append(verts,
			ebiten.Vertex{DstX: float32(path[i].X + nx*half), DstY: float32(path[i].Y + ny*half), SrcX: 0.5, SrcY: 0.5, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
			ebiten.Vertex{DstX: float32(path[i].X - nx*half), DstY: float32(path[i].Y - ny*half), SrcX: 0.5, SrcY: 0.5, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		)
	}

	inds := make([]uint16, 0, segs*6)
	for i := 0; i < segs; i++ {
		v := uint16(i * 2)
		inds = append(inds, v, v+1, v+2, v+1, v+3, v+2)
	}
	return verts, inds
}

func perp(a, b geometry.Point) (float64, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	l := math.Hypot(dx, dy)
	if l < 1e-10 {
		return 0, -1
	}
	return -dy / l, dx / l
}

// buildDisc generates a filled circle mesh (center hub + ring), used for
// point annotations.
func buildDisc(cx, cy, radius float64, segments int) ([]ebiten.Vertex, []uint16) {
	if segments < 3 {
		segments = 3
	}
	verts := make([]ebiten.Vertex, segments+1)
	verts[0] = ebiten.Vertex{DstX: float32(cx), DstY: float32(cy), SrcX: 0.5, SrcY: 0.5, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1}
	for i := 0; i < segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		verts[i+1] = ebiten.Vertex{
			DstX: float32(cx + radius*math.Cos(theta)), DstY: float32(cy + radius*math.Sin(theta)),
			SrcX: 0.5, SrcY: 0.5, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
		}
	}
	inds := make([]uint16, segments*3)
	for i := 0; i < segments; i++ {
		next := i + 1
		if next == segments {
			next = 0
		}
		inds[i*3+0] = 0
		inds[i*3+1] = uint16(i + 1)
		inds[i*3+2] = uint16(next + 1)
	}
	return verts, inds
}
