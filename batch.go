package aspen

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// batchKey groups render commands that can be submitted in a single draw call:
// same source image, same blend.
type batchKey struct {
	source *ebiten.Image
	blend  BlendMode
}

func commandBatchKey(cmd *RenderCommand) batchKey {
	return batchKey{source: cmd.sprite.texture.Source(), blend: cmd.BlendMode}
}

// submitBatches iterates sorted commands, coalescing consecutive same-key
// sprites into a single DrawTriangles32 call.
func (s *Scene) submitBatches(target *ebiten.Image) {
	s.batchVerts, s.batchInds = s.batchVerts[:0], s.batchInds[:0]

	var run batchKey
	for i := range s.commands {
		c := &s.commands[i]
		switch key := commandBatchKey(c); {
		case i == 0:
			run = key
		case key != run:
			s.flushSpriteBatch(target, run)
			run = key
		}
		s.appendSpriteQuad(c)
	}
	s.flushSpriteBatch(target, run)
}

// appendSpriteQuad appends 4 vertices and 6 indices for one sprite. Corner
// positions come straight from the sprite's vertex buffer (slots 0-7, world
// space, already anchor- and trim-adjusted); only the camera view matrix is
// applied here. Texture coordinates come from the frame rect, with the
// rotated-region swap undoing the atlas's 90 degrees clockwise storage.
func (s *Scene) appendSpriteQuad(cmd *RenderCommand) {
	spr := cmd.sprite
	v := spr.VertexData()
	if spr.ConsumeGeometryUpdated() {
		s.geomRecomputed++
	}

	f := spr.texture.Frame()
	fx, fy := float32(f.X), float32(f.Y)
	fw, fh := float32(f.Width), float32(f.Height)

	// Source texel coordinates per corner, in buffer corner order:
	// top-left, top-right, bottom-right, bottom-left.
	su := [4]float32{fx, fx + fw, fx + fw, fx}
	sv := [4]float32{fy, fy, fy + fh, fy + fh}
	if spr.texture.Rotated() {
		// Stored rotated 90 degrees CW: the stored footprint is fh wide and
		// fw tall. Visual x+ walks down the stored rect, visual y+ walks
		// toward its left edge.
		su = [4]float32{fx + fh, fx + fh, fx, fx}
		sv = [4]float32{fy, fy + fw, fy + fw, fy}
	}

	// Premultiplied RGBA.
	a := cmd.Color.A
	r, g, b := cmd.Color.R*a, cmd.Color.G*a, cmd.Color.B*a

	va, vb, vc, vd, vtx, vty := s.view32[0], s.view32[1], s.view32[2], s.view32[3], s.view32[4], s.view32[5]

	first := uint32(len(s.batchVerts))

	for i := range 4 {
		wx, wy := v[i*2], v[i*2+1]
		s.batchVerts = append(s.batchVerts, ebiten.Vertex{
			DstX: va*wx + vc*wy + vtx, DstY: vb*wx + vd*wy + vty,
			SrcX: su[i], SrcY: sv[i],
			ColorR: r, ColorG: g, ColorB: b, ColorA: a,
		})
	}

	// Two triangles: TL-TR-BL, TR-BR-BL.
	s.batchInds = append(s.batchInds, first, first+1, first+3, first+1, first+2, first+3)
}

// flushSpriteBatch hands the accumulated run to one DrawTriangles32 call
// and resets the buffers.
func (s *Scene) flushSpriteBatch(target *ebiten.Image, key batchKey) {
	verts, inds := s.batchVerts, s.batchInds
	s.batchVerts, s.batchInds = verts[:0], inds[:0]

	// A nil source only happens when a command was built by hand; emission
	// gates on texture readiness. Drop the run rather than crash.
	if len(verts) == 0 || key.source == nil {
		return
	}

	var op ebiten.DrawTrianglesOptions
	op.Blend = key.blend.EbitenBlend()
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	target.DrawTriangles32(verts, inds, key.source, &op)
}
