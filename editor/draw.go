package editor

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/annota/core/render"
)

// handleRadius and bodyHandleRadius are screen-pixel sizes for the small
// filled-circle handles this overlay draws; unlike annotation points
// (render.Stage), handle size never scales with zoom; they stay a
// constant, easily-grabbable screen size.
const (
	handleRadius     = 5
	bodyHandleRadius = 4
)

// HandleColor and EdgeColor are the overlay's fixed palette: a bright
// accent for draggable points, a thin line connecting them so vertex
// handles read as an outline rather than a scatter of dots.
var (
	HandleColor = color.RGBA{R: 0x33, G: 0x99, B: 0xff, A: 0xff}
	EdgeColor   = color.RGBA{R: 0x33, G: 0x99, B: 0xff, A: 0x80}
)

// Draw renders the overlay's handles for the current selection onto
// screen, transforming every handle's image-space position through
// transform, the exact same matrix render.Stage.SetViewport computes
// from the live Viewport, so handles land exactly on top of the filled
// shape render draws; one transform function is the single source of
// truth for both passes. This is a second, lightweight ebiten draw
// pass, not part of render's batched scene graph: handle counts are tiny
// (at most a few dozen per selected shape) so there is no benefit to
// sharing render's mesh/batch machinery here.
func (o *Overlay) Draw(screen *ebiten.Image, transform [6]float64) {
	handles := o.Handles()
	if len(handles) == 0 {
		return
	}

	if o.InEditMode(o.selected) {
		drawEdges(screen, handles, transform)
	}
	for _, h := range handles {
		sx, sy := render.TransformPoint(transform, h.X, h.Y)
		radius := float32(handleRadius)
		if h.Kind == KindBody {
			radius = bodyHandleRadius
		}
		vector.DrawFilledCircle(screen, float32(sx), float32(sy), radius, HandleColor, true)
	}
}

// drawEdges connects consecutive vertex handles with thin lines so the
// edit-mode outline is visible even where no fill is drawn underneath
// (e.g. an open freehand path).
func drawEdges(screen *ebiten.Image, handles []Handle, transform [6]float64) {
	var prev *Handle
	var first *Handle
	for i := range handles {
		h := &handles[i]
		if h.Kind != KindVertex {
			continue
		}
		if first == nil {
			first = h
		}
		if prev != nil {
			drawEdge(screen, *prev, *h, transform)
		}
		prev = h
	}
}

func drawEdge(screen *ebiten.Image, a, b Handle, transform [6]float64) {
	ax, ay := render.TransformPoint(transform, a.X, a.Y)
	bx, by := render.TransformPoint(transform, b.X, b.Y)
	vector.StrokeLine(screen, float32(ax), float32(ay), float32(bx), float32(by), 1, EdgeColor, true)
}
