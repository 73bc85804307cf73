package render

import "github.com/hajimehoshi/ebiten/v2"

// batchKey groups draw calls that can be coalesced into one DrawTriangles
// submission: same backing image, same blend mode.
type batchKey struct {
	image *ebiten.Image
	blend BlendMode
}

// drawCall is one node's contribution to a frame, queued for batching.
type drawCall struct {
	key   batchKey
	verts []ebiten.Vertex
	inds  []uint16
}

// batcher accumulates draw calls across a frame and flushes each
// consecutive same-(image, blend) run as a single DrawTriangles call.
type batcher struct {
	calls []drawCall
}

func (b *batcher) reset() {
	b.calls = b.calls[:0]
}

func (b *batcher) add(image *ebiten.Image, blend BlendMode, verts []ebiten.Vertex, inds []uint16) {
	if len(verts) == 0 || len(inds) == 0 {
		return
	}
	b.calls = append(b.calls, drawCall{key: batchKey{image: image, blend: blend}, verts: verts, inds: inds})
}

// flush submits accumulated draw calls to screen, coalescing consecutive
// calls that share a key into one DrawTriangles invocation.
func (b *batcher) flush(screen *ebiten.Image) {
	i := 0
	for i < len(b.calls) {
		key := b.calls[i].key
		verts := append([]ebiten.Vertex{}, b.calls[i].verts...)
		inds := append([]uint16{}, b.calls[i].inds...)
		j := i + 1
		for j < len(b.calls) && b.calls[j].key == key {
			base := uint16(len(verts))
			for _, idx := range b.calls[j].inds {
				inds = append(inds, idx+base)
			}
			verts = append(verts, b.calls[j].verts...)
			j++
		}

		opts := &ebiten.DrawTrianglesOptions{}
		opts.Blend = key.blend.EbitenBlend()
		img := key.image
		if img == nil {
			img = ensureWhitePixel()
		}
		screen.DrawTriangles(verts, inds, img, opts)

		i = j
	}
}
