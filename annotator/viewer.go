// Package annotator is the public facade: it wires store, layer, history,
// render, editor, and tool together behind the external Viewer capability
// interface.
package annotator

import "errors"

// ErrViewerNotReady is returned by New when the viewer has not yet fired
// its "open" event (no canvas/GPU context exists yet).
var ErrViewerNotReady = errors.New("annotator: viewer is not ready (await its open event first)")

// Point is an image-pixel or viewport coordinate, depending on context.
type Point struct{ X, Y float64 }

// Size is a width/height pair in viewport pixels.
type Size struct{ X, Y float64 }

// ViewerRect is an axis-aligned rectangle, used both in viewport and
// image coordinate spaces by the Viewport sub-interface below.
type ViewerRect struct {
	X, Y, Width, Height float64
}

// ViewerEvent names one of the events a Viewer dispatches through
// AddHandler/RemoveHandler
type ViewerEvent string

const (
	EventAnimation      ViewerEvent = "animation"
	EventAnimationStart ViewerEvent = "animation-start"
	EventUpdateViewport ViewerEvent = "update-viewport"
	EventResize         ViewerEvent = "resize"
	EventOpen           ViewerEvent = "open"
	EventCanvasPress    ViewerEvent = "canvas-press"
	EventCanvasRelease  ViewerEvent = "canvas-release"
)

// ViewerHandler reacts to a dispatched ViewerEvent. data carries whatever
// payload that event type produces (a pointer Event for canvas-press/
// release, nil for most others); callers type-assert as needed.
type ViewerHandler func(data any)

// Viewport is the zoom/pan/rotation/coordinate-mapping surface a Viewer
// exposes's `viewport { ... }` block.
type Viewport interface {
	GetZoom(current bool) float64
	GetRotation() float64
	GetFlip() (flipX, flipY bool)
	GetContainerSize() Size
	GetBounds(current bool) ViewerRect
	ViewportToImageRectangle(r ViewerRect) ViewerRect
	ImageToViewportCoordinates(x, y float64) Point
	ViewportToWindowCoordinates(p Point) Point
	PointFromPixel(p Point) Point
	PixelFromPoint(p Point) Point
	ViewerElementToImageCoordinates(p Point) Point
}

// WorldItemSource describes one layer of the underlying tiled image:
// its full-resolution pixel dimensions and tile-source URL.
type WorldItemSource struct {
	Dimensions Size
	URL        string
}

// World exposes the loaded tile sources.
type World interface {
	GetItemAt(i int) (WorldItemSource, bool)
	GetContentFactor() float64
}

// Viewer is the external capability this module consumes: a deep-zoom
// image viewer supplying viewport math, tile sources, and pointer/resize
// events. Implemented by the host application; this module never creates
// its own window.
type Viewer interface {
	Viewport() Viewport
	World() World

	AddHandler(event ViewerEvent, fn ViewerHandler)
	RemoveHandler(event ViewerEvent, fn ViewerHandler)

	SetMouseNavEnabled(enabled bool)

	Open(tileSources []string) error
	Destroy()

	// Ready reports whether the viewer has already fired its "open"
	// event (has a live canvas/GPU context). New refuses to construct
	// an Annotator before this is true
	Ready() bool
}
