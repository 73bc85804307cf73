// Package ioformats implements pure byte<->annotation codecs: GeoJSON
// export/import, PNG label masks, NumPy .npy embeddings, and HDF5
// mask/coordinate datasets. Every decoder here is a narrow function (or
// interface, for formats with no pure-Go codec available) with no store
// or viewer dependency.
package ioformats

import (
	"encoding/json"
	"fmt"

	"github.com/annota/core/geometry"
	"github.com/annota/core/store"
)

// GeoJSON encode/decode is implemented directly on encoding/json; the
// subset of RFC 7946 this module needs is small enough that a dedicated
// GeoJSON library would not pay for itself.

// Feature is one GeoJSON Feature: a geometry plus a free-form properties
// bag, matching the RFC 7946 shape closely enough for this module's
// round-trip needs (it is not a general-purpose GeoJSON library).
type Feature struct {
	Type       string          `json:"type"`
	Geometry   Geometry        `json:"geometry"`
	Properties map[string]any  `json:"properties,omitempty"`
}

// Geometry is a GeoJSON geometry object. Exactly one of the coordinate
// fields (Point, LineString, Polygon, MultiPolygon) is populated,
// selected by Type.
type Geometry struct {
	Type string `json:"type"`

	Point            []float64     `json:"-"`
	LineString       [][]float64   `json:"-"`
	Polygon          [][][]float64 `json:"-"`
	MultiPolygon     [][][][]float64 `json:"-"`
}

// MarshalJSON emits the `coordinates` field shaped by Type.
func (g Geometry) MarshalJSON() ([]byte, error) {
	type wire struct {
		Type        string `json:"type"`
		Coordinates any    `json:"coordinates"`
	}
	w := wire{Type: g.Type}
	switch g.Type {
	case "Point":
		w.Coordinates = g.Point
	case "LineString":
		w.Coordinates = g.LineString
	case "Polygon":
		w.Coordinates = g.Polygon
	case "MultiPolygon":
		w.Coordinates = g.MultiPolygon
	default:
		return nil, fmt.Errorf("ioformats: unsupported geometry type %q", g.Type)
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses a geometry object, dispatching the coordinates
// shape by the declared type.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	g.Type = probe.Type
	switch probe.Type {
	case "Point":
		return json.Unmarshal(probe.Coordinates, &g.Point)
	case "LineString":
		return json.Unmarshal(probe.Coordinates, &g.LineString)
	case "Polygon":
		return json.Unmarshal(probe.Coordinates, &g.Polygon)
	case "MultiPolygon":
		return json.Unmarshal(probe.Coordinates, &g.MultiPolygon)
	default:
		return fmt.Errorf("ioformats: unsupported geometry type %q", probe.Type)
	}
}

// FeatureCollection is the top-level GeoJSON document exported/imported.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// ExportGeoJSON encodes annotations as a GeoJSON FeatureCollection:
// point -> Point, rectangle/polygon -> Polygon,
// multipolygon -> MultiPolygon, freehand(open) -> LineString,
// freehand(closed) -> Polygon.
func ExportGeoJSON(anns []store.Annotation) ([]byte, error) {
	fc := FeatureCollection{Type: "FeatureCollection"}
	for _, a := range anns {
		geom, err := shapeToGeometry(a.Shape)
		if err != nil {
			return nil, fmt.Errorf("ioformats: exporting annotation %s: %w", a.ID, err)
		}
		props := map[string]any{"id": a.ID}
		for k, v := range a.Properties {
			props[k] = v
		}
		fc.Features = append(fc.Features, Feature{Type: "Feature", Geometry: geom, Properties: props})
	}
	return json.Marshal(fc)
}

func shapeToGeometry(s geometry.Shape) (Geometry, error) {
	switch s.Kind {
	case geometry.KindPoint:
		return Geometry{Type: "Point", Point: []float64{s.Point.X, s.Point.Y}}, nil

	case geometry.KindRectangle:
		ring := [][]float64{
			{s.X, s.Y}, {s.X + s.Width, s.Y}, {s.X + s.Width, s.Y + s.Height}, {s.X, s.Y + s.Height}, {s.X, s.Y},
		}
		return Geometry{Type: "Polygon", Polygon: [][][]float64{ring}}, nil

	case geometry.KindPolygon:
		return Geometry{Type: "Polygon", Polygon: [][][]float64{closedRing(s.Points)}}, nil

	case geometry.KindFreehand:
		if s.Closed {
			return Geometry{Type: "Polygon", Polygon: [][][]float64{closedRing(s.Points)}}, nil
		}
		return Geometry{Type: "LineString", LineString: pointsToCoords(s.Points)}, nil

	case geometry.KindMultiPolygon:
		rings := make([][][]float64, len(s.Polygons))
		for i, ring := range s.Polygons {
			rings[i] = closedRing(ring)
		}
		return Geometry{Type: "MultiPolygon", MultiPolygon: [][][][]float64{rings}}, nil

	default:
		return Geometry{}, fmt.Errorf("ioformats: shape kind %s has no GeoJSON mapping", s.Kind)
	}
}

func pointsToCoords(points []geometry.Point) [][]float64 {
	out := make([][]float64, len(points))
	for i, p := range points {
		out[i] = []float64{p.X, p.Y}
	}
	return out
}

// closedRing returns points as a GeoJSON linear ring: explicitly closed
// (first coordinate repeated last), per RFC 7946 §3.1.6.
func closedRing(points []geometry.Point) [][]float64 {
	out := pointsToCoords(points)
	if len(out) > 0 {
		out = append(out, out[0])
	}
	return out
}

// ImportGeoJSON decodes a FeatureCollection into annotations, inverting
// ExportGeoJSON's mapping. Polygon features with a single ring become a
// polygon annotation; with holes (additional rings) become a
// multipolygon, each ring kept as an independent polygonal ring.
// Exterior/hole polarity is a classification property concern handled by
// the caller, not this decoder.
func ImportGeoJSON(data []byte) ([]store.Annotation, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("ioformats: decoding GeoJSON: %w", err)
	}
	out := make([]store.Annotation, 0, len(fc.Features))
	for _, f := range fc.Features {
		shape, err := geometryToShape(f.Geometry)
		if err != nil {
			return nil, err
		}
		id, _ := f.Properties["id"].(string)
		props := make(map[string]any, len(f.Properties))
		for k, v := range f.Properties {
			if k == "id" {
				continue
			}
			props[k] = v
		}
		out = append(out, store.Annotation{ID: id, Shape: shape, Properties: props})
	}
	return out, nil
}

func geometryToShape(g Geometry) (geometry.Shape, error) {
	switch g.Type {
	case "Point":
		if len(g.Point) < 2 {
			return geometry.Shape{}, fmt.Errorf("ioformats: Point geometry needs 2 coordinates")
		}
		return geometry.NewPoint(g.Point[0], g.Point[1]), nil

	case "LineString":
		return geometry.NewFreehand(coordsToPoints(g.LineString), false), nil

	case "Polygon":
		if len(g.Polygon) == 0 {
			return geometry.Shape{}, fmt.Errorf("ioformats: Polygon geometry has no rings")
		}
		if len(g.Polygon) == 1 {
			pts := openRing(coordsToPoints(g.Polygon[0]))
			return geometry.NewPolygon(pts)
		}
		rings := make([][]geometry.Point, len(g.Polygon))
		for i, ring := range g.Polygon {
			rings[i] = openRing(coordsToPoints(ring))
		}
		return geometry.NewMultiPolygon(rings), nil

	case "MultiPolygon":
		var rings [][]geometry.Point
		for _, poly := range g.MultiPolygon {
			for _, ring := range poly {
				rings = append(rings, openRing(coordsToPoints(ring)))
			}
		}
		return geometry.NewMultiPolygon(rings), nil

	default:
		return geometry.Shape{}, fmt.Errorf("ioformats: unsupported GeoJSON geometry type %q", g.Type)
	}
}

func coordsToPoints(coords [][]float64) []geometry.Point {
	out := make([]geometry.Point, len(coords))
	for i, c := range coords {
		if len(c) >= 2 {
			out[i] = geometry.Point{X: c[0], Y: c[1]}
		}
	}
	return out
}

// openRing drops a GeoJSON ring's explicit closing coordinate (first ==
// last) since this module's polygon/multipolygon shapes are implicitly
// closed.
func openRing(points []geometry.Point) []geometry.Point {
	if len(points) > 1 && points[0] == points[len(points)-1] {
		return points[:len(points)-1]
	}
	return points
}
