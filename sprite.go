package aspen

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Sprite is a textured quad node. It embeds a *Node for tree and transform
// behavior and carries the quad geometry the renderer consumes: a 16-slot
// vertex buffer holding the world-space render quad (slots 0-7) and bounds
// quad (slots 8-15), each four corners as x,y pairs in top-left, top-right,
// bottom-right, bottom-left order.
//
// The render quad covers the trimmed region of the texture when the atlas
// trimmed it; the bounds quad always covers the full logical frame, so
// layout and bounds behave the same no matter how an atlas packed the
// texture. Both quads are recomputed together, only when the world
// transform advanced or the texture/anchor changed.
type Sprite struct {
	*Node

	// Color tints the texture; multiplied per channel at submission.
	Color Color
	// BlendMode selects how the sprite composites over what's below it.
	BlendMode BlendMode

	texture          *Texture
	anchorX, anchorY float64

	vertexData [16]float32

	geomDirty   bool   // texture or anchor changed since last recompute
	vertexGen   uint64 // Node.worldGen the buffer was computed against
	geomUpdated bool   // recompute happened; cleared by ConsumeGeometryUpdated

	texReady bool // readiness observed at the last poll

	desiredW, desiredH       float64
	hasDesiredW, hasDesiredH bool
}

// NewSprite creates a sprite node displaying tex. The anchor starts at the
// top-left corner (0, 0).
func NewSprite(name string, tex *Texture) *Sprite {
	if tex == nil {
		panic("aspen: NewSprite called with nil texture")
	}
	s := &Sprite{
		Node:      NewContainer(name),
		Color:     ColorWhite,
		texture:   tex,
		geomDirty: true,
		texReady:  tex.IsReady(),
	}
	s.AttachGeometry(s)
	return s
}

// NewSpriteFromImage creates a sprite displaying a whole standalone image,
// outside any atlas.
func NewSpriteFromImage(name string, img *ebiten.Image) *Sprite {
	return NewSprite(name, NewTexture(img))
}

// Texture returns the sprite's current texture.
func (s *Sprite) Texture() *Texture {
	return s.texture
}

// SetTexture swaps the sprite's texture and marks its geometry stale. If the
// sprite has a remembered desired size (SetWidth/SetHeight) and the new
// texture is ready, the scale is re-derived against the new logical frame
// right away; for a pending texture that happens when it resolves.
func (s *Sprite) SetTexture(tex *Texture) {
	if tex == nil {
		panic("aspen: SetTexture called with nil texture")
	}
	s.texture = tex
	s.texReady = tex.IsReady()
	if s.texReady {
		s.reapplyDesiredSize()
	}
	s.geomDirty = true
	bumpBoundsGeneration()
}

// Anchor returns the normalized origin within the logical frame.
func (s *Sprite) Anchor() (ax, ay float64) {
	return s.anchorX, s.anchorY
}

// SetAnchor sets the normalized origin within the logical frame: (0,0) the
// top-left corner, (0.5,0.5) the center, (1,1) the bottom-right. The point
// (ax*width, ay*height) maps to the node's local origin. Values outside
// [0,1] are allowed and not clamped.
func (s *Sprite) SetAnchor(ax, ay float64) {
	if ax == s.anchorX && ay == s.anchorY {
		return
	}
	s.anchorX = ax
	s.anchorY = ay
	s.geomDirty = true
	bumpBoundsGeneration()
}

// --- Geometry ---

// pollTextureReady observes texture readiness and consumes a not-ready to
// ready transition exactly once: the remembered desired size is re-derived
// against the final frame, geometry is marked stale, and memoized bounds
// are invalidated. Called wherever geometry or size is about to be read.
func (s *Sprite) pollTextureReady() {
	if s.texReady || !s.texture.IsReady() {
		return
	}
	s.texReady = true
	s.reapplyDesiredSize()
	s.geomDirty = true
	bumpBoundsGeneration()
}

// updateGeometry refreshes both quads if the world transform advanced or
// the texture/anchor changed; otherwise the cached buffer is served.
func (s *Sprite) updateGeometry() {
	s.pollTextureReady()
	if !s.geomDirty && s.vertexGen == s.worldGen {
		return
	}
	s.calculateVertices()
	s.calculateBoundsQuad()
	s.vertexGen = s.worldGen
	s.geomDirty = false
	s.geomUpdated = true
}

// calculateVertices writes the render quad's world-space corners into
// slots 0-7. For trimmed textures the quad covers only the surviving
// pixels, shifted by the trim offset. Trim lying within the logical frame
// is a precondition, not checked here.
func (s *Sprite) calculateVertices() {
	wt := s.worldTransform
	a, b, c, d, tx, ty := wt[0], wt[1], wt[2], wt[3], wt[4], wt[5]

	frameW := s.texture.Width()
	frameH := s.texture.Height()

	var w0, w1, h0, h1 float64
	if trim, ok := s.texture.Trim(); ok {
		w1 = trim.X - s.anchorX*frameW
		w0 = w1 + trim.Width
		h1 = trim.Y - s.anchorY*frameH
		h0 = h1 + trim.Height
	} else {
		w0 = frameW * (1 - s.anchorX)
		w1 = -frameW * s.anchorX
		h0 = frameH * (1 - s.anchorY)
		h1 = -frameH * s.anchorY
	}

	s.vertexData[0] = float32(a*w1 + c*h1 + tx)
	s.vertexData[1] = float32(d*h1 + b*w1 + ty)
	s.vertexData[2] = float32(a*w0 + c*h1 + tx)
	s.vertexData[3] = float32(d*h1 + b*w0 + ty)
	s.vertexData[4] = float32(a*w0 + c*h0 + tx)
	s.vertexData[5] = float32(d*h0 + b*w0 + ty)
	s.vertexData[6] = float32(a*w1 + c*h0 + tx)
	s.vertexData[7] = float32(d*h0 + b*w1 + ty)
}

// calculateBoundsQuad writes the bounds quad into slots 8-15. When nothing
// was trimmed away the render quad already covers the full logical frame
// and is copied verbatim; otherwise the corners are recomputed with the
// untrimmed extents against the same transform.
func (s *Sprite) calculateBoundsQuad() {
	frameW := s.texture.Width()
	frameH := s.texture.Height()

	trim, trimmed := s.texture.Trim()
	if !trimmed || (trim.Width == frameW && trim.Height == frameH) {
		copy(s.vertexData[8:], s.vertexData[:8])
		return
	}

	wt := s.worldTransform
	a, b, c, d, tx, ty := wt[0], wt[1], wt[2], wt[3], wt[4], wt[5]

	w0 := frameW * (1 - s.anchorX)
	w1 := -frameW * s.anchorX
	h0 := frameH * (1 - s.anchorY)
	h1 := -frameH * s.anchorY

	s.vertexData[8] = float32(a*w1 + c*h1 + tx)
	s.vertexData[9] = float32(d*h1 + b*w1 + ty)
	s.vertexData[10] = float32(a*w0 + c*h1 + tx)
	s.vertexData[11] = float32(d*h1 + b*w0 + ty)
	s.vertexData[12] = float32(a*w0 + c*h0 + tx)
	s.vertexData[13] = float32(d*h0 + b*w0 + ty)
	s.vertexData[14] = float32(a*w1 + c*h0 + tx)
	s.vertexData[15] = float32(d*h0 + b*w1 + ty)
}

// ComputeVertices implements Geometry.
func (s *Sprite) ComputeVertices() {
	s.updateGeometry()
}

// ComputeBounds implements Geometry: the axis-aligned extent of the bounds
// quad, covering the full logical frame regardless of trim. A zero-size
// frame still contributes its position point.
func (s *Sprite) ComputeBounds() (Rect, bool) {
	s.updateGeometry()
	acc := newBoundsAccum()
	acc.addQuad(&s.vertexData, 8)
	return acc.rect()
}

// HitTest implements Geometry: reports whether the local-space point lies
// strictly inside the full logical frame. Points on the boundary are not
// hits, so adjacent sprites sharing an edge never both claim it. Trim
// never affects hit testing.
func (s *Sprite) HitTest(x, y float64) bool {
	s.pollTextureReady()
	w := s.texture.Width()
	x1 := -w * s.anchorX
	if !(x1 < x && x < x1+w) {
		return false
	}
	h := s.texture.Height()
	y1 := -h * s.anchorY
	return y1 < y && y < y1+h
}

// HitTestWorld inverse-transforms a world-space point into the sprite's
// local space and applies HitTest. Uses the world transform as of the last
// update pass.
func (s *Sprite) HitTestWorld(wx, wy float64) bool {
	lx, ly := s.WorldToLocal(wx, wy)
	return s.HitTest(lx, ly)
}

// LocalBounds returns the full logical box in local, untransformed space:
// x=-width*ax, y=-height*ay. Independent of trim and of the world
// transform; recomputed fresh on every call.
func (s *Sprite) LocalBounds() Rect {
	s.pollTextureReady()
	w := s.texture.Width()
	h := s.texture.Height()
	return Rect{X: -w * s.anchorX, Y: -h * s.anchorY, Width: w, Height: h}
}

// --- Sizing ---

// Width returns the sprite's on-screen width: |ScaleX| times the logical
// frame width. Zero while the texture is pending.
func (s *Sprite) Width() float64 {
	s.pollTextureReady()
	return math.Abs(s.ScaleX) * s.texture.Width()
}

// SetWidth adjusts ScaleX so the sprite renders v pixels wide, preserving
// the current flip direction (a negative ScaleX stays negative). The value
// is remembered: when a pending texture resolves, the scale is re-derived
// against the final frame width. While the frame width is zero the scale
// is left untouched.
func (s *Sprite) SetWidth(v float64) {
	s.pollTextureReady()
	s.applyWidth(v)
	s.desiredW = v
	s.hasDesiredW = true
}

// Height returns the sprite's on-screen height: |ScaleY| times the logical
// frame height. Zero while the texture is pending.
func (s *Sprite) Height() float64 {
	s.pollTextureReady()
	return math.Abs(s.ScaleY) * s.texture.Height()
}

// SetHeight adjusts ScaleY so the sprite renders v pixels tall. See
// SetWidth for the flip and pending-texture rules.
func (s *Sprite) SetHeight(v float64) {
	s.pollTextureReady()
	s.applyHeight(v)
	s.desiredH = v
	s.hasDesiredH = true
}

func (s *Sprite) applyWidth(v float64) {
	w := s.texture.Width()
	if w == 0 {
		return
	}
	sign := 1.0
	if s.ScaleX < 0 {
		sign = -1
	}
	s.ScaleX = sign * v / w
	s.transformDirty = true
	bumpBoundsGeneration()
}

func (s *Sprite) applyHeight(v float64) {
	h := s.texture.Height()
	if h == 0 {
		return
	}
	sign := 1.0
	if s.ScaleY < 0 {
		sign = -1
	}
	s.ScaleY = sign * v / h
	s.transformDirty = true
	bumpBoundsGeneration()
}

// reapplyDesiredSize re-derives the scale from the remembered desired
// width/height against the current logical frame.
func (s *Sprite) reapplyDesiredSize() {
	if s.hasDesiredW {
		s.applyWidth(s.desiredW)
	}
	if s.hasDesiredH {
		s.applyHeight(s.desiredH)
	}
}

// --- Renderer-facing surface ---

// VertexData refreshes and returns the sprite's geometry buffer: slots 0-7
// the render quad, slots 8-15 the bounds quad, four corners each as x,y
// pairs in top-left, top-right, bottom-right, bottom-left order. The
// returned pointer aliases sprite-owned storage rewritten in place by the
// next recomputation; copy the values to retain them across frames.
func (s *Sprite) VertexData() *[16]float32 {
	s.updateGeometry()
	return &s.vertexData
}

// ConsumeGeometryUpdated reports whether the buffer was recomputed since
// the last call, clearing the flag. The batcher feeds this into the
// per-frame debug stats.
func (s *Sprite) ConsumeGeometryUpdated() bool {
	u := s.geomUpdated
	s.geomUpdated = false
	return u
}
