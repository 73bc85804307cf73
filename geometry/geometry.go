// Package geometry implements the shape primitives annotations are built
// from: points, bounds, the tagged Shape union, and the hit-test /
// simplification routines the rest of the module shares.
package geometry

import (
	"errors"
	"math"
)

// ErrTooFewVertices is returned when an edit would shrink a polygon below
// its three-vertex minimum.
var ErrTooFewVertices = errors.New("geometry: polygon requires at least 3 vertices")

// Point is a location in image pixel coordinates.
type Point struct {
	X, Y float64
}

// Bounds is an axis-aligned rectangle cached on every shape.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns MaxX - MinX.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns MaxY - MinY.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Empty reports whether the bounds are inverted (MaxX < MinX or
// MaxY < MinY). The zero value is not empty: it is a zero-area box at
// the origin.
func (b Bounds) Empty() bool {
	return b.MaxX < b.MinX || b.MaxY < b.MinY
}

// Intersects reports whether b and other overlap, including touching edges.
func (b Bounds) Intersects(other Bounds) bool {
	return b.MinX <= other.MaxX && b.MaxX >= other.MinX &&
		b.MinY <= other.MaxY && b.MaxY >= other.MinY
}

// Contains reports whether the point (x, y) lies inside or on b's edge.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Expand returns b grown by margin in every direction.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{b.MinX - margin, b.MinY - margin, b.MaxX + margin, b.MaxY + margin}
}

// Union returns the smallest bounds containing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	if b.Empty() {
		return other
	}
	if other.Empty() {
		return b
	}
	return Bounds{
		MinX: math.Min(b.MinX, other.MinX),
		MinY: math.Min(b.MinY, other.MinY),
		MaxX: math.Max(b.MaxX, other.MaxX),
		MaxY: math.Max(b.MaxY, other.MaxY),
	}
}

// BoundsOfPoints computes the tight AABB of a point list. Returns empty
// bounds for an empty slice.
func BoundsOfPoints(points []Point) Bounds {
	if len(points) == 0 {
		return Bounds{MinX: 1, MaxX: 0}
	}
	b := Bounds{MinX: points[0].X, MinY: points[0].Y, MaxX: points[0].X, MaxY: points[0].Y}
	for _, p := range points[1:] {
		if p.X < b.MinX {
			b.MinX = p.X
		}
		if p.X > b.MaxX {
			b.MaxX = p.X
		}
		if p.Y < b.MinY {
			b.MinY = p.Y
		}
		if p.Y > b.MaxY {
			b.MaxY = p.Y
		}
	}
	return b
}

// Kind tags a Shape variant.
type Kind uint8

const (
	KindPoint Kind = iota
	KindRectangle
	KindPolygon
	KindFreehand
	KindMultiPolygon
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindRectangle:
		return "rectangle"
	case KindPolygon:
		return "polygon"
	case KindFreehand:
		return "freehand"
	case KindMultiPolygon:
		return "multipolygon"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Shape is the tagged variant every annotation carries. Only the fields
// relevant to Kind are meaningful; the zero value of the others is ignored.
// The store never inspects which fields are set; that dispatch lives here
// and in the tool/render/editor packages via the Kind tag.
type Shape struct {
	Kind Kind

	// KindPoint
	Point Point

	// KindRectangle. Width/Height are always normalized non-negative.
	X, Y, Width, Height float64

	// KindPolygon, and the open/closed KindFreehand
	Points []Point
	Closed bool // meaningful only for KindFreehand; polygons are implicitly closed

	// KindMultiPolygon
	Polygons [][]Point

	// KindImage
	ImagePixels []byte // raw RGBA raster, Width*Height*4 bytes

	bounds Bounds
}

// Bounds returns the shape's cached tight AABB.
func (s Shape) Bounds() Bounds { return s.bounds }

// NewPoint builds a point shape at (x, y).
func NewPoint(x, y float64) Shape {
	s := Shape{Kind: KindPoint, Point: Point{x, y}}
	s.Recompute()
	return s
}

// NewRectangle builds a rectangle shape, normalizing negative width/height.
func NewRectangle(x, y, w, h float64) Shape {
	s := Shape{Kind: KindRectangle, X: x, Y: y, Width: w, Height: h}
	s.normalizeRect()
	s.Recompute()
	return s
}

// NewPolygon builds a polygon shape. Returns ErrTooFewVertices if points
// has fewer than 3 vertices.
func NewPolygon(points []Point) (Shape, error) {
	if len(points) < 3 {
		return Shape{}, ErrTooFewVertices
	}
	s := Shape{Kind: KindPolygon, Points: append([]Point(nil), points...)}
	s.Recompute()
	return s, nil
}

// NewFreehand builds a freehand polyline, open or closed.
func NewFreehand(points []Point, closed bool) Shape {
	s := Shape{Kind: KindFreehand, Points: append([]Point(nil), points...), Closed: closed}
	s.Recompute()
	return s
}

// NewMultiPolygon builds a multipolygon from a list of rings.
func NewMultiPolygon(rings [][]Point) Shape {
	cp := make([][]Point, len(rings))
	for i, r := range rings {
		cp[i] = append([]Point(nil), r...)
	}
	s := Shape{Kind: KindMultiPolygon, Polygons: cp}
	s.Recompute()
	return s
}

// NewImage builds a raster overlay shape.
func NewImage(x, y, w, h float64, pixels []byte) Shape {
	s := Shape{Kind: KindImage, X: x, Y: y, Width: w, Height: h, ImagePixels: pixels}
	s.Recompute()
	return s
}

// normalizeRect swaps width/height so both are non-negative, adjusting the
// anchor (X, Y) to keep the rectangle's footprint the same, so mutations
// that produce negative dimensions normalize by swapping.
func (s *Shape) normalizeRect() {
	if s.Width < 0 {
		s.X += s.Width
		s.Width = -s.Width
	}
	if s.Height < 0 {
		s.Y += s.Height
		s.Height = -s.Height
	}
}

// Recompute refreshes the cached bounds from the shape's current vertex
// data. Call after any in-place mutation (vertex edits, rectangle resize).
func (s *Shape) Recompute() {
	if s.Kind == KindRectangle {
		s.normalizeRect()
	}
	switch s.Kind {
	case KindPoint:
		s.bounds = Bounds{s.Point.X, s.Point.Y, s.Point.X, s.Point.Y}
	case KindRectangle:
		s.bounds = Bounds{s.X, s.Y, s.X + s.Width, s.Y + s.Height}
	case KindPolygon, KindFreehand:
		s.bounds = BoundsOfPoints(s.Points)
	case KindMultiPolygon:
		var b Bounds
		b.MinX, b.MaxX = 1, 0
		for _, ring := range s.Polygons {
			b = b.Union(BoundsOfPoints(ring))
		}
		s.bounds = b
	case KindImage:
		s.bounds = Bounds{s.X, s.Y, s.X + s.Width, s.Y + s.Height}
	}
}

// DeleteVertex removes vertex i from a polygon, refusing if that would leave
// fewer than 3 vertices. Returns the edited shape and true on success.
func DeleteVertex(s Shape, i int) (Shape, bool) {
	if s.Kind != KindPolygon && s.Kind != KindFreehand {
		return s, false
	}
	if len(s.Points) <= 3 {
		return s, false
	}
	if i < 0 || i >= len(s.Points) {
		return s, false
	}
	out := Shape{Kind: s.Kind, Closed: s.Closed}
	out.Points = make([]Point, 0, len(s.Points)-1)
	out.Points = append(out.Points, s.Points[:i]...)
	out.Points = append(out.Points, s.Points[i+1:]...)
	out.Recompute()
	return out, true
}

// InsertVertex inserts a new vertex at index i (before the existing
// vertex i) into a polygon or freehand path.
func InsertVertex(s Shape, i int, p Point) Shape {
	out := Shape{Kind: s.Kind, Closed: s.Closed}
	out.Points = make([]Point, 0, len(s.Points)+1)
	if i < 0 {
		i = 0
	}
	if i > len(s.Points) {
		i = len(s.Points)
	}
	out.Points = append(out.Points, s.Points[:i]...)
	out.Points = append(out.Points, p)
	out.Points = append(out.Points, s.Points[i:]...)
	out.Recompute()
	return out
}

// DistanceToPoint returns the Euclidean distance from (x, y) to p.
func DistanceToPoint(p Point, x, y float64) float64 {
	dx := p.X - x
	dy := p.Y - y
	return math.Hypot(dx, dy)
}

// DistanceToSegment returns the shortest distance from (x, y) to the
// segment a-b.
func DistanceToSegment(a, b Point, x, y float64) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return DistanceToPoint(a, x, y)
	}
	t := ((x-a.X)*dx + (y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	px := a.X + t*dx
	py := a.Y + t*dy
	return math.Hypot(x-px, y-py)
}

// PointInRing reports whether (x, y) lies inside the polygon ring using a
// standard even-odd ray cast. Works for convex and non-convex rings.
func PointInRing(ring []Point, x, y float64) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		pi, pj := ring[i], ring[j]
		if (pi.Y > y) != (pj.Y > y) {
			xIntersect := (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if x < xIntersect {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// DistanceToRing returns the shortest distance from (x, y) to any edge of
// the ring (used to refine a near-miss ray-cast hit-test near the boundary).
func DistanceToRing(ring []Point, x, y float64) float64 {
	n := len(ring)
	if n == 0 {
		return math.Inf(1)
	}
	best := math.Inf(1)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		d := DistanceToSegment(ring[i], ring[j], x, y)
		if d < best {
			best = d
		}
	}
	return best
}

// HitTest reports whether (x, y) hits s within tolerance image pixels,
// dispatching per the shape's kind:
//   - point: distance-to-point
//   - rectangle: bounds expanded by tolerance
//   - polygon/multipolygon: ray-cast, refined near the boundary by tolerance
//   - freehand: segment-distance along the polyline
func HitTest(s Shape, x, y, tolerance float64) bool {
	switch s.Kind {
	case KindPoint:
		return DistanceToPoint(s.Point, x, y) <= tolerance
	case KindRectangle:
		return s.Bounds().Expand(tolerance).Contains(x, y)
	case KindPolygon:
		if PointInRing(s.Points, x, y) {
			return true
		}
		return DistanceToRing(s.Points, x, y) <= tolerance
	case KindMultiPolygon:
		for _, ring := range s.Polygons {
			if PointInRing(ring, x, y) {
				return true
			}
			if DistanceToRing(ring, x, y) <= tolerance {
				return true
			}
		}
		return false
	case KindFreehand:
		pts := s.Points
		if len(pts) == 0 {
			return false
		}
		if s.Closed && PointInRing(pts, x, y) {
			return true
		}
		segCount := len(pts) - 1
		if s.Closed {
			segCount = len(pts)
		}
		for i := 0; i < segCount; i++ {
			j := (i + 1) % len(pts)
			if DistanceToSegment(pts[i], pts[j], x, y) <= tolerance {
				return true
			}
		}
		return false
	case KindImage:
		return s.Bounds().Contains(x, y)
	default:
		return false
	}
}

// SimplifyRDP applies Ramer-Douglas-Peucker simplification with the given
// epsilon (image pixels). Endpoints are always kept.
func SimplifyRDP(points []Point, epsilon float64) []Point {
	if len(points) < 3 || epsilon <= 0 {
		return append([]Point(nil), points...)
	}
	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true
	rdpRange(points, 0, len(points)-1, epsilon, keep)

	out := make([]Point, 0, len(points))
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

func rdpRange(points []Point, start, end int, epsilon float64, keep []bool) {
	if end <= start+1 {
		return
	}
	maxDist := -1.0
	maxIdx := -1
	a, b := points[start], points[end]
	for i := start + 1; i < end; i++ {
		d := DistanceToSegment(a, b, points[i].X, points[i].Y)
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}
	if maxDist > epsilon {
		keep[maxIdx] = true
		rdpRange(points, start, maxIdx, epsilon, keep)
		rdpRange(points, maxIdx, end, epsilon, keep)
	}
}
