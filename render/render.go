package render

import "github.com/hajimehoshi/ebiten/v2"

// Draw recomputes world transforms (if dirty) and submits every visible,
// renderable node's mesh to screen, culling subtrees whose world-space
// AABB doesn't intersect viewBounds (image-space view rectangle). Batches
// are coalesced by (image, blend) across the whole traversal.
func (s *Stage) Draw(screen *ebiten.Image, viewBounds Rect) {
	updateWorldTransform(s.root, s.root.worldTransform, s.root.worldAlpha, false)

	s.batch.reset()
	traverseDraw(s.root, viewBounds, &s.batch)
	s.batch.flush(screen)
}

func traverseDraw(n *Node, viewBounds Rect, b *batcher) {
	if !n.Visible {
		return
	}
	if n.Renderable && len(n.Vertices) > 0 {
		// Hovered and selected nodes are never culled: their visual state
		// must survive a pan that clips them against the view edge.
		if n.State == VisualBase {
			aabb := meshWorldAABB(n, n.worldTransform)
			if aabb.Width > 0 || aabb.Height > 0 {
				if viewBounds.Width > 0 || viewBounds.Height > 0 {
					if !aabb.Intersects(viewBounds) {
						return
					}
				}
			}
		}
		dst := ensureTransformedVerts(n)
		transformVertices(n.Vertices, dst, n.worldTransform, withAlpha(n.Tint(), n.worldAlpha))
		b.add(n.MeshImage, n.BlendMode, dst, n.Indices)
	}
	for _, child := range n.Children() {
		traverseDraw(child, viewBounds, b)
	}
}

func withAlpha(c Color, worldAlpha float64) Color {
	c.A *= worldAlpha
	return c
}
