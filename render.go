package aspen

import "cmp"

// color32 is the tint carried on render commands, already collapsed to the
// float32 precision the vertex buffer wants.
type color32 struct {
	R, G, B, A float32
}

// RenderCommand is one sprite's draw request for the current frame. Sort keys
// and tint are frozen at traversal time; the quad corners come out of the
// sprite's vertex buffer only when the command is submitted.
type RenderCommand struct {
	Color       color32
	BlendMode   BlendMode
	RenderLayer uint8
	GlobalOrder int

	sprite    *Sprite
	treeOrder int // traversal sequence number, the final sort tiebreaker
}

// identityTransform32 mirrors identityTransform on the float32 render path.
var identityTransform32 = [6]float32{1, 0, 0, 1, 0, 0}

// affine32 narrows an affine matrix to the float32 layout vertices use.
func affine32(m [6]float64) (out [6]float32) {
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

// traverse walks the tree depth-first, refreshing world transforms that went
// stale and queueing a command per drawable sprite. World transforms stay
// camera independent; the view matrix is folded in per vertex at submission
// (see appendSpriteQuad).
func (s *Scene) traverse(n *Node, parentTransform [6]float64, parentAlpha float64, parentRecomputed bool, treeOrder *int) {
	if !n.Visible {
		return
	}

	stale := n.transformDirty || parentRecomputed
	if stale {
		recomputeWorld(n, parentTransform, parentAlpha)
	}

	if spr := n.drawableSprite(); spr != nil {
		spr.pollTextureReady()
		if spr.texture.IsReady() && !(s.cullActive && s.shouldCull(spr)) {
			s.emitSprite(spr, treeOrder)
		}
	}

	// Children are never pruned by culling or Renderable, only by Visible:
	// a child's world position can land far outside its parent's own quad.
	for _, child := range n.drawOrder() {
		s.traverse(child, n.worldTransform, n.worldAlpha, stale, treeOrder)
	}
}

// drawableSprite returns the node's sprite geometry if the node wants to be
// drawn, nil for containers and for nodes with Renderable switched off.
func (n *Node) drawableSprite() *Sprite {
	if !n.Renderable || n.geometry == nil {
		return nil
	}
	spr, _ := n.geometry.(*Sprite)
	return spr
}

// emitSprite queues the render command for one visible sprite.
func (s *Scene) emitSprite(spr *Sprite, treeOrder *int) {
	*treeOrder++
	s.commands = append(s.commands, RenderCommand{
		Color: color32{
			float32(spr.Color.R),
			float32(spr.Color.G),
			float32(spr.Color.B),
			float32(spr.Color.A * spr.worldAlpha),
		},
		BlendMode:   spr.BlendMode,
		RenderLayer: spr.RenderLayer,
		GlobalOrder: spr.GlobalOrder,
		sprite:      spr,
		treeOrder:   *treeOrder,
	})
}

// shouldCull reports whether the sprite's world AABB misses the cull bounds
// entirely. The AABB comes from the bounds quad, so a trimmed sprite is
// culled on its full logical frame rather than its surviving pixels.
func (s *Scene) shouldCull(spr *Sprite) bool {
	aabb, ok := spr.ComputeBounds()
	if !ok {
		return false
	}
	return !aabb.Intersects(s.cullBounds)
}

// drawOrder returns the children in traversal order, rebuilding the cached
// ZIndex order first when a child change invalidated it.
func (n *Node) drawOrder() []*Node {
	if len(n.children) == 0 {
		return nil
	}
	if n.childOrderDirty {
		n.sortChildren()
	}
	if n.sortedChildren != nil {
		return n.sortedChildren
	}
	return n.children
}

// sortChildren refreshes the cached ZIndex order. Insertion sort: stable,
// allocation free once the cache has grown, and linear in the usual case of
// children that are already ordered.
func (n *Node) sortChildren() {
	order := append(n.sortedChildren[:0], n.children...)
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && order[j].ZIndex < order[j-1].ZIndex; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	n.sortedChildren, n.childOrderDirty = order, false
}

// --- Command sort ---

// commandCompare orders commands by render layer, then global order, then
// traversal order. treeOrder is unique within a frame, so the order is total.
func commandCompare(a, b RenderCommand) int {
	return cmp.Or(
		cmp.Compare(a.RenderLayer, b.RenderLayer),
		cmp.Compare(a.GlobalOrder, b.GlobalOrder),
		cmp.Compare(a.treeOrder, b.treeOrder),
	)
}

// mergeSort sorts s.commands by layer, global order, and traversal order.
// Bottom-up merges ping-pong between s.commands and the persistent scratch
// buffer, so steady-state frames sort without allocating. On equal keys the
// merge takes from the left run, which keeps the sort stable.
func (s *Scene) mergeSort() {
	total := len(s.commands)
	if total <= 1 {
		return
	}
	if cap(s.sortBuf) < total {
		s.sortBuf = make([]RenderCommand, total)
	}
	src, dst := s.commands, s.sortBuf[:total]

	for width := 1; width < total; width *= 2 {
		for lo := 0; lo < total; lo += 2 * width {
			mid := min(lo+width, total)
			hi := min(lo+2*width, total)
			i, j := lo, mid
			for k := lo; k < hi; k++ {
				if j < hi && (i == mid || commandCompare(src[j], src[i]) < 0) {
					dst[k] = src[j]
					j++
				} else {
					dst[k] = src[i]
					i++
				}
			}
		}
		src, dst = dst, src
	}

	// An odd number of passes leaves the result in the scratch buffer.
	if &src[0] != &s.commands[0] {
		copy(s.commands, src)
	}
}
