package ioformats

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/annota/core/geometry"
	"github.com/annota/core/store"
)

func TestExportImportGeoJSONRoundTripsRectangleAndPolygon(t *testing.T) {
	anns := []store.Annotation{
		{ID: "rect-1", Shape: geometry.NewRectangle(10, 20, 30, 40), Properties: map[string]any{"label": "tumor"}},
		{
			ID: "poly-1",
			Shape: func() geometry.Shape {
				s, err := geometry.NewPolygon([]geometry.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 5}})
				require.NoError(t, err)
				return s
			}(),
		},
	}

	data, err := ExportGeoJSON(anns)
	require.NoError(t, err)

	got, err := ImportGeoJSON(data)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, "rect-1", got[0].ID)
	require.Equal(t, geometry.KindPolygon, got[0].Shape.Kind)
	require.Equal(t, "tumor", got[0].Properties["label"])
	require.InDelta(t, 10, got[0].Shape.Bounds().MinX, 1e-9)
	require.InDelta(t, 60, got[0].Shape.Bounds().MaxY, 1e-9)

	require.Equal(t, "poly-1", got[1].ID)
	require.Len(t, got[1].Shape.Points, 3)
}

func TestExportGeoJSONPointAndOpenFreehand(t *testing.T) {
	anns := []store.Annotation{
		{Shape: geometry.NewPoint(1, 2)},
		{Shape: geometry.NewFreehand([]geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, false)},
	}
	data, err := ExportGeoJSON(anns)
	require.NoError(t, err)

	got, err := ImportGeoJSON(data)
	require.NoError(t, err)
	require.Equal(t, geometry.KindPoint, got[0].Shape.Kind)
	require.Equal(t, geometry.KindFreehand, got[1].Shape.Kind)
	require.False(t, got[1].Shape.Closed)
}

func TestExportGeoJSONClosedFreehandBecomesPolygon(t *testing.T) {
	shape := geometry.NewFreehand([]geometry.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 5}}, true)
	data, err := ExportGeoJSON([]store.Annotation{{Shape: shape}})
	require.NoError(t, err)

	got, err := ImportGeoJSON(data)
	require.NoError(t, err)
	require.Equal(t, geometry.KindPolygon, got[0].Shape.Kind)
	require.Len(t, got[0].Shape.Points, 3)
}

func TestImportGeoJSONMultiPolygonRing(t *testing.T) {
	shape := geometry.NewMultiPolygon([][]geometry.Point{
		{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}},
		{{X: 20, Y: 20}, {X: 30, Y: 20}, {X: 30, Y: 30}},
	})
	data, err := ExportGeoJSON([]store.Annotation{{Shape: shape}})
	require.NoError(t, err)

	got, err := ImportGeoJSON(data)
	require.NoError(t, err)
	require.Equal(t, geometry.KindMultiPolygon, got[0].Shape.Kind)
	require.Len(t, got[0].Shape.Polygons, 2)
}
