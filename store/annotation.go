// Package store implements the annotation catalog: a keyed map of
// Annotations backed by a spatial index, with a batched observer
// contract.
package store

import (
	"time"

	"github.com/annota/core/geometry"
)

// Style is an optional per-annotation visual override.
type Style struct {
	Fill          string
	FillOpacity   float64
	Stroke        string
	StrokeOpacity float64
	StrokeWidth   float64
	PointRadius   float64
	// Dashed requests a dashed stroke for open freehand paths. Passthrough
	// only; dash geometry is up to the renderer.
	Dashed bool
}

// Recognized Properties keys. Any other key is passed through opaquely.
const (
	PropertyLayer          = "layer"
	PropertyCategory       = "category"       // "positive" | "negative"
	PropertyClassification = "classification" // "positive" | "negative"
	PropertySource         = "source"
	PropertyTags           = "tags"
	PropertyLabel          = "label"
	// PropertySplitPreview marks an annotation as a transient preview from
	// the (partially implemented, in the source system) split tool. Treated
	// as an opaque passthrough; editors must not render handles for it.
	PropertySplitPreview = "_isSplitPreview"
	// PropertyDrawing marks an in-progress annotation a tool is still
	// drawing. It renders live like any other annotation; no store query
	// excludes it, and tools remove the marker when they commit.
	PropertyDrawing = "_drawing"
)

// Annotation is one vector or raster overlay entry.
type Annotation struct {
	ID         string
	Shape      geometry.Shape
	Properties map[string]any
	Style      *Style
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Clone returns a deep-enough copy for safe storage/comparison: Properties
// map and Style pointer are copied, Shape's slice fields are copied via
// geometry constructors by the caller when mutating (geometry.Shape
// mutation helpers already return fresh shapes).
func (a Annotation) Clone() Annotation {
	out := a
	if a.Properties != nil {
		out.Properties = make(map[string]any, len(a.Properties))
		for k, v := range a.Properties {
			out.Properties[k] = v
		}
	}
	if a.Style != nil {
		s := *a.Style
		out.Style = &s
	}
	return out
}

// HasProperty reports whether key is present, whatever its value.
func (a Annotation) HasProperty(key string) bool {
	if a.Properties == nil {
		return false
	}
	_, ok := a.Properties[key]
	return ok
}

// StringProperty returns Properties[key] as a string, or "" if absent or
// not a string.
func (a Annotation) StringProperty(key string) string {
	if a.Properties == nil {
		return ""
	}
	v, ok := a.Properties[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
