package aspen

import "math"

// boundsGeneration is the global bounds epoch. Every mutation that can move
// world bounds advances it; each node memoizes its aggregated rect together
// with the epoch it was computed in and recomputes only on mismatch. Starts
// at 1 so a fresh node (boundsGen 0) is stale on its first query.
// No atomic; aspen is single-threaded.
var boundsGeneration uint64 = 1

// bumpBoundsGeneration invalidates every memoized Bounds rect. Called by
// transform setters and recomputation, child-set changes, geometry
// attachment, texture swaps, and texture readiness.
func bumpBoundsGeneration() {
	boundsGeneration++
}

// InvalidateBounds forces the next Bounds call on any node to recompute.
// Needed after writing bounds-affecting fields directly (X, Visible, ...)
// instead of going through a setter; MarkDirty implies it.
func InvalidateBounds() {
	bumpBoundsGeneration()
}

// --- Accumulator ---

// boundsAccum accumulates min/max extents over contributed quads and rects.
// Seeded at +/-Inf so an empty accumulation stays recognizably empty while a
// degenerate zero-area quad still contributes its point.
type boundsAccum struct {
	minX, minY float64
	maxX, maxY float64
}

func newBoundsAccum() boundsAccum {
	return boundsAccum{
		minX: math.Inf(1), minY: math.Inf(1),
		maxX: math.Inf(-1), maxY: math.Inf(-1),
	}
}

// addQuad folds the four corner points stored at v[base:base+8] (x,y pairs)
// into the running extents.
func (b *boundsAccum) addQuad(v *[16]float32, base int) {
	x0 := float64(v[base])
	y0 := float64(v[base+1])
	x1 := float64(v[base+2])
	y1 := float64(v[base+3])
	x2 := float64(v[base+4])
	y2 := float64(v[base+5])
	x3 := float64(v[base+6])
	y3 := float64(v[base+7])

	b.minX = math.Min(b.minX, math.Min(math.Min(x0, x1), math.Min(x2, x3)))
	b.minY = math.Min(b.minY, math.Min(math.Min(y0, y1), math.Min(y2, y3)))
	b.maxX = math.Max(b.maxX, math.Max(math.Max(x0, x1), math.Max(x2, x3)))
	b.maxY = math.Max(b.maxY, math.Max(math.Max(y0, y1), math.Max(y2, y3)))
}

// addPoint folds a single point into the running extents.
func (b *boundsAccum) addPoint(x, y float64) {
	b.minX = math.Min(b.minX, x)
	b.minY = math.Min(b.minY, y)
	b.maxX = math.Max(b.maxX, x)
	b.maxY = math.Max(b.maxY, y)
}

// addRect folds an axis-aligned rect into the running extents.
func (b *boundsAccum) addRect(r Rect) {
	b.minX = math.Min(b.minX, r.X)
	b.minY = math.Min(b.minY, r.Y)
	b.maxX = math.Max(b.maxX, r.X+r.Width)
	b.maxY = math.Max(b.maxY, r.Y+r.Height)
}

// rect converts the accumulated extents into a Rect. ok is false when
// nothing contributed.
func (b *boundsAccum) rect() (Rect, bool) {
	if b.minX > b.maxX {
		return Rect{}, false
	}
	return Rect{
		X:      b.minX,
		Y:      b.minY,
		Width:  b.maxX - b.minX,
		Height: b.maxY - b.minY,
	}, true
}

// --- Aggregation ---

// Bounds returns the node's world-space axis-aligned bounding box: the AABB
// of its own geometry (if it carries any) unioned with the bounds of every
// visible descendant. Nodes whose subtree contributes no geometry return a
// zero Rect.
//
// Bounds reflects world transforms as of the last update pass; like
// WorldTransform, transform setters take effect on the next Scene.Update.
// Results are memoized against a global generation counter, so repeated
// queries are cheap until the next bounds-affecting mutation. After writing
// bounds-affecting fields directly, call MarkDirty or InvalidateBounds.
func (n *Node) Bounds() Rect {
	r, _ := n.worldBounds()
	return r
}

// worldBounds is the memoized recursive aggregation behind Bounds.
// Mirrors render traversal semantics: an invisible node hides its whole
// subtree, a non-renderable node omits its own quad but not its children.
func (n *Node) worldBounds() (Rect, bool) {
	if n.boundsGen == boundsGeneration {
		return n.boundsRect, n.boundsHas
	}

	acc := newBoundsAccum()
	if n.geometry != nil && n.Renderable {
		if r, ok := n.geometry.ComputeBounds(); ok {
			acc.addRect(r)
		}
	}
	for _, child := range n.children {
		if !child.Visible {
			continue
		}
		if r, ok := child.worldBounds(); ok {
			acc.addRect(r)
		}
	}

	// Stamp after the walk: a child recomputing geometry during it may have
	// advanced the epoch (texture readiness), and the values folded in above
	// already reflect that state.
	n.boundsRect, n.boundsHas = acc.rect()
	n.boundsGen = boundsGeneration
	return n.boundsRect, n.boundsHas
}
