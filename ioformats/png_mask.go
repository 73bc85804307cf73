package ioformats

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/annota/core/geometry"
	"github.com/annota/core/store"
)

// DecodePNGMask decodes an 8-bit label-image PNG (each distinct pixel
// value other than 0 is one instance) into one polygon annotation per
// labeled region, via Moore-neighbor contour tracing. The
// source decode goes through golang.org/x/image/draw to normalize
// whatever PNG color model the file uses (paletted, grayscale, or RGBA)
// into a single-channel label buffer before tracing: arbitrary-palette
// PNGs are common for mask exports and stdlib's image.Image interface
// alone doesn't give direct indexed-pixel access for every model.
func DecodePNGMask(data []byte) ([]store.Annotation, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ioformats: decoding PNG mask: %w", err)
	}
	labels, w, h := toLabelBuffer(img)
	return contoursToAnnotations(labels, w, h), nil
}

// toLabelBuffer normalizes img into a flat row-major []uint8 label
// buffer, using golang.org/x/image/draw to convert non-8-bit-gray models
// (paletted, RGBA) into a Gray image first.
func toLabelBuffer(img image.Image) ([]uint8, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	gray := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)

	out := make([]uint8, w*h)
	copy(out, gray.Pix)
	return out, w, h
}

// contoursToAnnotations traces the boundary of every distinct nonzero
// label in a row-major buffer and emits one polygon per label.
func contoursToAnnotations(labels []uint8, w, h int) []store.Annotation {
	visited := make([]bool, len(labels))
	var out []store.Annotation

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			label := labels[idx]
			if label == 0 || visited[idx] {
				continue
			}
			// Only start tracing at a region's top-left-most border
			// pixel (no same-label pixel directly above or to the left),
			// so each connected region is traced exactly once.
			if x > 0 && labels[idx-1] == label {
				continue
			}
			if y > 0 && labels[idx-w] == label {
				continue
			}
			ring := traceContour(labels, w, h, x, y, label, visited)
			if len(ring) < 3 {
				continue
			}
			shape, err := geometry.NewPolygon(ring)
			if err != nil {
				continue
			}
			out = append(out, store.Annotation{Shape: shape})
		}
	}
	return out
}

// moore8 lists the 8-connected neighbor offsets in clockwise order,
// starting "west", for the Moore-neighbor boundary-tracing algorithm.
var moore8 = [8][2]int{{-1, 0}, {-1, -1}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}}

// traceContour walks the outer boundary of the labeled region containing
// (startX, startY) using Moore-neighbor tracing, marking every boundary
// pixel visited so contoursToAnnotations never retraces it, and returns
// the boundary as an image-pixel polygon ring.
func traceContour(labels []uint8, w, h int, startX, startY int, label uint8, visited []bool) []geometry.Point {
	at := func(x, y int) uint8 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return labels[y*w+x]
	}

	var ring []geometry.Point
	cx, cy := startX, startY
	// backtrack starts the neighbor search from the direction we arrived
	// from, rotated one step, per the standard Moore-tracing algorithm.
	backtrack := 0

	for {
		visited[cy*w+cx] = true
		ring = append(ring, geometry.Point{X: float64(cx), Y: float64(cy)})

		found := false
		for i := 0; i < 8; i++ {
			dir := (backtrack + i) % 8
			nx, ny := cx+moore8[dir][0], cy+moore8[dir][1]
			if at(nx, ny) == label {
				cx, cy = nx, ny
				backtrack = (dir + 5) % 8 // next search starts just behind where we came from
				found = true
				break
			}
		}
		if !found {
			break // isolated single pixel
		}
		if cx == startX && cy == startY {
			break
		}
		if len(ring) > w*h {
			break // defensive: never loop past the image's total pixel count
		}
	}
	return ring
}
