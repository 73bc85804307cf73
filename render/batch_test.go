package render

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestBatcherAddSkipsEmpty(t *testing.T) {
	b := &batcher{}
	b.add(nil, BlendNormal, nil, nil)
	b.add(nil, BlendNormal, []ebiten.Vertex{{}}, nil)
	if len(b.calls) != 0 {
		t.Fatalf("len(calls) = %d, want 0 for empty verts/inds", len(b.calls))
	}
}

func TestBatcherAddAccumulates(t *testing.T) {
	b := &batcher{}
	verts := []ebiten.Vertex{{DstX: 0}, {DstX: 1}, {DstX: 2}}
	inds := []uint16{0, 1, 2}
	b.add(nil, BlendNormal, verts, inds)
	b.add(nil, BlendAdd, verts, inds)
	if len(b.calls) != 2 {
		t.Fatalf("len(calls) = %d, want 2", len(b.calls))
	}
}

func TestBatcherResetClears(t *testing.T) {
	b := &batcher{}
	b.add(nil, BlendNormal, []ebiten.Vertex{{}, {}, {}}, []uint16{0, 1, 2})
	b.reset()
	if len(b.calls) != 0 {
		t.Fatalf("len(calls) after reset = %d, want 0", len(b.calls))
	}
}

func TestBatcherCoalescesSameKey(t *testing.T) {
	b := &batcher{}
	verts := []ebiten.Vertex{{DstX: 0}, {DstX: 1}, {DstX: 2}}
	inds := []uint16{0, 1, 2}
	img := ensureWhitePixel()

	b.add(img, BlendNormal, verts, inds)
	b.add(img, BlendNormal, verts, inds)
	b.add(img, BlendAdd, verts, inds)

	// flush against a real small offscreen target to ensure it doesn't panic
	// and exercises the index-rebasing path for the coalesced run.
	screen := ebiten.NewImage(4, 4)
	b.flush(screen)

	if len(b.calls) != 3 {
		t.Fatalf("flush should not mutate the call queue in place, len = %d", len(b.calls))
	}
}

func TestBlendModeMapping(t *testing.T) {
	cases := map[BlendMode]ebiten.Blend{
		BlendNormal: ebiten.BlendSourceOver,
		BlendAdd:    ebiten.BlendLighter,
		BlendErase:  ebiten.BlendDestinationOut,
	}
	for mode, want := range cases {
		if got := mode.EbitenBlend(); got != want {
			t.Errorf("BlendMode(%d).EbitenBlend() = %v, want %v", mode, got, want)
		}
	}
}
