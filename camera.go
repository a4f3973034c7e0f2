package aspen

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// followSpec records the node a camera tracks and how tightly it trails.
type followSpec struct {
	node       *Node
	offX, offY float64
	rate       float64
}

// axisScroll tweens the camera center toward a scroll destination, one
// tween per axis so each can finish and park independently.
type axisScroll struct {
	x, y         *gween.Tween
	xDone, yDone bool
}

// advance steps both axis tweens, writing the results into the camera.
// Reports true once both axes have reached their destination.
func (a *axisScroll) advance(c *Camera, dt float32) bool {
	if !a.xDone {
		v, done := a.x.Update(dt)
		c.X = float64(v)
		a.xDone = done
	}
	if !a.yDone {
		v, done := a.y.Update(dt)
		c.Y = float64(v)
		a.yDone = done
	}
	return a.xDone && a.yDone
}

// Camera maps a world region onto a screen viewport. The point (X, Y)
// lands on the viewport center with Zoom and Rotation applied around it.
// A scene always has at least one camera; additional cameras render the
// same tree into other viewports (split screen, minimaps).
type Camera struct {
	// X and Y are the world-space point the camera centers on.
	// Zoom scales world units to screen pixels (1 = 1:1, 2 = twice as
	// large); Rotation turns the view clockwise, in radians. Both apply
	// around the center point.
	X, Y           float64
	Zoom, Rotation float64

	Viewport Rect // screen-space rectangle this camera renders into

	CullEnabled   bool // skip sprites whose bounds miss the visible region
	BoundsEnabled bool // hold the camera center inside Bounds
	Bounds        Rect // world-space confinement rectangle

	follow *followSpec
	scroll *axisScroll

	view    [6]float64
	invView [6]float64
	dirty   bool
}

// newCamera builds a camera over vp. Cameras come from Scene.NewCamera so
// the scene can drive their per-frame updates.
func newCamera(vp Rect) *Camera {
	return &Camera{Zoom: 1, Viewport: vp, CullEnabled: true, dirty: true}
}

// Follow keeps the camera centered on n (plus offset), moving a lerp
// fraction of the remaining distance each frame. lerp 1 snaps immediately;
// smaller values trail the target smoothly.
func (c *Camera) Follow(n *Node, offX, offY, lerp float64) {
	c.follow = &followSpec{node: n, offX: offX, offY: offY, rate: lerp}
}

// Unfollow releases the tracked node.
func (c *Camera) Unfollow() { c.follow = nil }

// ScrollTo animates the camera center to the given world position over
// duration seconds. A new call replaces any scroll in progress.
func (c *Camera) ScrollTo(x, y float64, duration float32, fn ease.TweenFunc) {
	c.scroll = &axisScroll{
		x: gween.New(float32(c.X), float32(x), duration, fn),
		y: gween.New(float32(c.Y), float32(y), duration, fn),
	}
}

// ScrollBy animates the camera by a world-space offset over duration seconds.
func (c *Camera) ScrollBy(dx, dy float64, duration float32, fn ease.TweenFunc) {
	c.ScrollTo(c.X+dx, c.Y+dy, duration, fn)
}

// SetBounds confines the camera to a world rectangle.
func (c *Camera) SetBounds(r Rect) {
	c.Bounds, c.BoundsEnabled = r, true
}

// ClearBounds lifts the confinement set by SetBounds.
func (c *Camera) ClearBounds() { c.BoundsEnabled = false }

// ClampToBounds clamps the camera position right now instead of waiting
// for the next update. Call it after writing X/Y directly (e.g. in a drag
// callback) so no frame renders outside the bounds. No-op while
// BoundsEnabled is false.
func (c *Camera) ClampToBounds() {
	if !c.BoundsEnabled {
		return
	}
	hw, hh := c.Viewport.Width/(2*c.Zoom), c.Viewport.Height/(2*c.Zoom)
	c.X = clampAxis(c.X, c.Bounds.X, c.Bounds.Width, hw)
	c.Y = clampAxis(c.Y, c.Bounds.Y, c.Bounds.Height, hh)
}

// tick advances follow, scroll, and bounds clamping, and flags the view
// matrix stale if any of them moved the camera. Called from Scene.Update.
func (c *Camera) tick(dt float32) {
	before := [4]float64{c.X, c.Y, c.Zoom, c.Rotation}

	// World transforms are refreshed before cameras tick, so the follow
	// target's translation is current.
	if f := c.follow; f != nil && !f.node.IsDisposed() {
		c.X += (f.node.worldTransform[4] + f.offX - c.X) * f.rate
		c.Y += (f.node.worldTransform[5] + f.offY - c.Y) * f.rate
	}

	if c.scroll != nil && c.scroll.advance(c, dt) {
		c.scroll = nil
	}
	c.ClampToBounds()

	c.dirty = c.dirty || [4]float64{c.X, c.Y, c.Zoom, c.Rotation} != before
}

// clampAxis clamps a camera center coordinate so the view's half-extent
// stays inside [lo, lo+size]. A span narrower than the view centers on it.
func clampAxis(pos, lo, size, half float64) float64 {
	if size <= 2*half {
		return lo + size/2
	}
	return math.Max(lo+half, math.Min(pos, lo+size-half))
}

// refreshView recomputes the cached view matrix and its inverse if the
// camera moved since the last computation, and returns the matrix.
//
//	view = Translate(viewport center) * Scale(Zoom) * Rotate(-Rotation) * Translate(-X, -Y)
func (c *Camera) refreshView() [6]float64 {
	if c.dirty {
		c.dirty = false
		cx, cy := c.Viewport.X+c.Viewport.Width/2, c.Viewport.Y+c.Viewport.Height/2
		sin, cos := math.Sincos(-c.Rotation)

		c.view = multiplyAffine(
			[6]float64{c.Zoom, 0, 0, c.Zoom, cx, cy},
			multiplyAffine(
				[6]float64{cos, sin, -sin, cos, 0, 0},
				[6]float64{1, 0, 0, 1, -c.X, -c.Y},
			),
		)
		c.invView = invertAffine(c.view)
	}
	return c.view
}

// WorldToScreen converts a world-space point to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (float64, float64) {
	return transformPoint(c.refreshView(), wx, wy)
}

// ScreenToWorld converts a screen-space point to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (float64, float64) {
	c.refreshView()
	return transformPoint(c.invView, sx, sy)
}

// VisibleBounds returns the world-space AABB of the viewport: the box
// around the four unprojected viewport corners. With rotation this
// over-covers, which errs on the side of not culling.
func (c *Camera) VisibleBounds() Rect {
	c.refreshView()
	x0, y0 := c.Viewport.X, c.Viewport.Y
	x1, y1 := x0+c.Viewport.Width, y0+c.Viewport.Height

	acc := newBoundsAccum()
	acc.addPoint(transformPoint(c.invView, x0, y0))
	acc.addPoint(transformPoint(c.invView, x1, y0))
	acc.addPoint(transformPoint(c.invView, x1, y1))
	acc.addPoint(transformPoint(c.invView, x0, y1))
	r, _ := acc.rect()
	return r
}

// MarkDirty forces a recomputation of the view matrix on its next use.
func (c *Camera) MarkDirty() { c.dirty = true }
