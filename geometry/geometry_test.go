package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRectangleNormalizesNegativeDimensions(t *testing.T) {
	s := NewRectangle(100, 100, -300, -200)
	assert.Equal(t, -200.0, s.X)
	assert.Equal(t, -100.0, s.Y)
	assert.Equal(t, 300.0, s.Width)
	assert.Equal(t, 200.0, s.Height)
	assert.Equal(t, Bounds{-200, -100, 100, 100}, s.Bounds())
}

func TestNewPolygonRejectsFewerThanThreeVertices(t *testing.T) {
	_, err := NewPolygon([]Point{{0, 0}, {1, 1}})
	require.ErrorIs(t, err, ErrTooFewVertices)
}

func TestBoundsTightnessAfterMutation(t *testing.T) {
	s, err := NewPolygon([]Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}})
	require.NoError(t, err)
	assert.Equal(t, Bounds{0, 0, 10, 10}, s.Bounds())

	s.Points[2] = Point{20, 20}
	s.Recompute()
	assert.Equal(t, Bounds{0, 0, 20, 20}, s.Bounds())
}

func TestDeleteVertexRefusesBelowThree(t *testing.T) {
	s, err := NewPolygon([]Point{{0, 0}, {10, 0}, {10, 10}})
	require.NoError(t, err)

	_, ok := DeleteVertex(s, 0)
	assert.False(t, ok, "deleting down to 2 vertices must be refused")
}

func TestDeleteVertexSucceedsAboveThree(t *testing.T) {
	s, err := NewPolygon([]Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}})
	require.NoError(t, err)

	out, ok := DeleteVertex(s, 1)
	require.True(t, ok)
	assert.Len(t, out.Points, 3)
}

func TestHitTestPointTolerance(t *testing.T) {
	p := NewPoint(1000, 1000)
	zoom := 2.0
	tol := 5 / zoom

	assert.True(t, HitTest(p, 1000+4/zoom, 1000, tol))
	assert.False(t, HitTest(p, 1000+10/zoom, 1000, tol))
}

func TestHitTestRectangleExpandsByTolerance(t *testing.T) {
	r := NewRectangle(0, 0, 10, 10)
	assert.True(t, HitTest(r, 10.5, 5, 1))
	assert.False(t, HitTest(r, 12, 5, 1))
}

func TestHitTestPolygonInteriorAndEdge(t *testing.T) {
	s, err := NewPolygon([]Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}})
	require.NoError(t, err)

	assert.True(t, HitTest(s, 5, 5, 0), "interior point")
	assert.True(t, HitTest(s, 10.5, 5, 1), "near edge within tolerance")
	assert.False(t, HitTest(s, 15, 5, 1), "far outside")
}

func TestHitTestFreehandOpenPolyline(t *testing.T) {
	s := NewFreehand([]Point{{0, 0}, {10, 0}, {20, 0}}, false)
	assert.True(t, HitTest(s, 5, 0.5, 1))
	assert.False(t, HitTest(s, 5, 10, 1))
}

func TestSimplifyRDPReducesPointsOnStraightRun(t *testing.T) {
	pts := []Point{{0, 0}, {1, 0.01}, {2, -0.01}, {3, 0}, {10, 5}}
	out := SimplifyRDP(pts, 2)
	assert.Less(t, len(out), len(pts))
	assert.Equal(t, pts[0], out[0])
	assert.Equal(t, pts[len(pts)-1], out[len(out)-1])
}

func TestSimplifyRDPKeepsSharpCorners(t *testing.T) {
	pts := []Point{{0, 0}, {10, 0}, {10, 10}}
	out := SimplifyRDP(pts, 0.5)
	assert.Equal(t, pts, out)
}

func TestInsertVertexAtMidpoint(t *testing.T) {
	s, err := NewPolygon([]Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}})
	require.NoError(t, err)

	out := InsertVertex(s, 1, Point{10, -5})
	require.Len(t, out.Points, 5)
	assert.Equal(t, Point{10, -5}, out.Points[1])
}
