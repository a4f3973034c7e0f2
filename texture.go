package aspen

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Texture describes a drawable region of a source image together with the
// sprite-sheet metadata that affects quad geometry: the logical (untrimmed)
// size, the optional trim rectangle, and whether the region is stored
// rotated in its source.
//
// A Texture is either ready at construction or pending: created with
// NewPendingTexture and completed later by a single Resolve call. Sprites
// poll readiness when they need geometry or size and pick up the final
// dimensions the moment they become available.
type Texture struct {
	source *ebiten.Image // nil until ready
	frame  Rect          // region within source, in source bounds coordinates

	origW, origH float64 // logical (untrimmed) size as authored

	trim    Rect // offset and size of the surviving pixels within the logical frame
	trimmed bool

	rotated bool // stored 90 degrees clockwise in source; affects UVs only, never geometry

	ready chan struct{} // non-nil only for pending textures; closed exactly once
}

// WhitePixel is a 1x1 white image used for solid color quads.
var WhitePixel *ebiten.Image

// WhiteTexture wraps WhitePixel. Tinting it with a sprite Color produces
// solid rectangles of any size via SetWidth/SetHeight.
var WhiteTexture *Texture

// textureReady is handed out by Ready for textures ready since construction.
var textureReady = make(chan struct{})

func init() {
	WhitePixel = ebiten.NewImage(1, 1)
	WhitePixel.Fill(ColorWhite.toRGBA())
	WhiteTexture = NewTexture(WhitePixel)
	close(textureReady)
}

// NewTexture creates a ready texture covering the whole source image.
func NewTexture(src *ebiten.Image) *Texture {
	b := src.Bounds()
	return &Texture{
		source: src,
		frame:  Rect{float64(b.Min.X), float64(b.Min.Y), float64(b.Dx()), float64(b.Dy())},
		origW:  float64(b.Dx()),
		origH:  float64(b.Dy()),
	}
}

// NewSubTexture creates a ready texture covering the frame rectangle within
// src. Frame coordinates are in src's bounds space, which is what the
// renderer feeds to DrawTriangles for sub-regions.
func NewSubTexture(src *ebiten.Image, frame Rect) *Texture {
	return &Texture{
		source: src,
		frame:  frame,
		origW:  frame.Width,
		origH:  frame.Height,
	}
}

// NewPendingTexture creates a texture whose pixels are not available yet.
// Width and Height report zero until Resolve is called; sprites using the
// texture produce degenerate quads until then.
func NewPendingTexture() *Texture {
	return &Texture{ready: make(chan struct{})}
}

// Resolve completes a pending texture with src, covering the frame rectangle
// within it. A zero frame means the whole image. The logical size becomes
// the frame size. Resolving a texture that is already ready is a programmer
// error and panics.
func (t *Texture) Resolve(src *ebiten.Image, frame Rect) {
	if t.source != nil {
		panic("aspen: Resolve called on a texture that is already ready")
	}
	if src == nil {
		panic("aspen: Resolve called with nil source")
	}
	if frame == (Rect{}) {
		b := src.Bounds()
		frame = Rect{float64(b.Min.X), float64(b.Min.Y), float64(b.Dx()), float64(b.Dy())}
	}
	t.source = src
	t.frame = frame
	t.origW = frame.Width
	t.origH = frame.Height
	if t.ready != nil {
		close(t.ready)
	}
}

// IsReady reports whether the texture's pixels are available.
func (t *Texture) IsReady() bool {
	return t.source != nil
}

// Ready returns a channel that is closed once the texture becomes ready.
// Textures ready since construction return an already-closed channel, so
// receiving from the result never blocks for them.
func (t *Texture) Ready() <-chan struct{} {
	if t.ready == nil {
		return textureReady
	}
	return t.ready
}

// Width returns the logical (untrimmed) width in pixels, or 0 while pending.
func (t *Texture) Width() float64 {
	return t.origW
}

// Height returns the logical (untrimmed) height in pixels, or 0 while pending.
func (t *Texture) Height() float64 {
	return t.origH
}

// Source returns the image the texture draws from, or nil while pending.
func (t *Texture) Source() *ebiten.Image {
	return t.source
}

// Frame returns the texture's region within Source, in pixels.
func (t *Texture) Frame() Rect {
	return t.frame
}

// Trim returns the trim rectangle (the offset and size of the pixels that
// survived trimming, within the logical frame) and whether the texture is
// trimmed at all.
func (t *Texture) Trim() (Rect, bool) {
	return t.trim, t.trimmed
}

// Rotated reports whether the region is stored rotated 90 degrees clockwise
// in its source. Rotation affects texture coordinates only.
func (t *Texture) Rotated() bool {
	return t.rotated
}
