package aspen

import "math"

// identityTransform leaves points where they are.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// computeLocalTransform builds the node's local affine matrix
// [a, b, c, d, tx, ty] from its transform fields, composing
//
//	Translate(-Pivot) -> Scale -> Skew -> Rotate -> Translate(X, Y)
func computeLocalTransform(n *Node) [6]float64 {
	sn, cs := math.Sincos(n.Rotation)

	var kx, ky float64
	if n.SkewX != 0 || n.SkewY != 0 {
		kx, ky = math.Tan(n.SkewX), math.Tan(n.SkewY)
	}

	// Scale and skew, with the pivot folded into the translation.
	a := n.ScaleX
	b := ky * n.ScaleX
	c := kx * n.ScaleY
	d := n.ScaleY
	tx := -n.PivotX*a - n.PivotY*c
	ty := -n.PivotX*b - n.PivotY*d

	// Rotate everything, then move to the node position.
	return [6]float64{
		cs*a - sn*b,
		sn*a + cs*b,
		cs*c - sn*d,
		sn*c + cs*d,
		cs*tx - sn*ty + n.X,
		sn*tx + cs*ty + n.Y,
	}
}

// multiplyAffine composes two affine matrices: result = l * r, so r is
// applied first. Layout [a, b, c, d, tx, ty] reads column-major:
//
//	[ a  c  tx ]
//	[ b  d  ty ]
//	[ 0  0   1 ]
func multiplyAffine(l, r [6]float64) [6]float64 {
	return [6]float64{
		l[0]*r[0] + l[2]*r[1],
		l[1]*r[0] + l[3]*r[1],
		l[0]*r[2] + l[2]*r[3],
		l[1]*r[2] + l[3]*r[3],
		l[0]*r[4] + l[2]*r[5] + l[4],
		l[1]*r[4] + l[3]*r[5] + l[5],
	}
}

// invertAffine inverts an affine matrix. Singular matrices (determinant
// within 1e-12 of zero) invert to the identity instead of blowing up, so
// degenerate transforms, like a zero scale, stay well defined downstream.
func invertAffine(t [6]float64) [6]float64 {
	det := t[0]*t[3] - t[2]*t[1]
	if math.Abs(det) < 1e-12 {
		return identityTransform
	}
	inv := 1 / det
	a, b := t[3]*inv, -t[1]*inv
	c, d := -t[2]*inv, t[0]*inv
	return [6]float64{a, b, c, d, -(a*t[4] + c*t[5]), -(b*t[4] + d*t[5])}
}

// transformPoint runs a point through an affine matrix.
func transformPoint(t [6]float64, x, y float64) (float64, float64) {
	return t[0]*x + t[2]*y + t[4], t[1]*x + t[3]*y + t[5]
}

// recomputeWorld refreshes one node's world matrix and alpha from its
// parent's and clears the dirty flag. Each recomputation advances the
// node's world generation, which is how dependent geometry (see sprite.go)
// notices the transform changed since it last read it, and the global
// bounds generation, which drops bounds memoized against the previous
// matrix. Shared by the update pass and the render traversal.
func recomputeWorld(n *Node, parentTransform [6]float64, parentAlpha float64) {
	local := computeLocalTransform(n)
	n.worldTransform = multiplyAffine(parentTransform, local)
	n.worldAlpha = parentAlpha * n.Alpha
	n.transformDirty = false
	n.worldGen++
	bumpBoundsGeneration()
}

// updateWorldTransform walks a subtree refreshing worldTransform and
// worldAlpha. A node recomputes when it is dirty or when its parent
// recomputed this frame; clean subtrees under clean parents are skipped
// entirely.
func updateWorldTransform(n *Node, parent [6]float64, alpha float64, parentDirty bool) {
	dirty := n.transformDirty || parentDirty
	if dirty {
		recomputeWorld(n, parent, alpha)
	}

	for _, c := range n.children {
		updateWorldTransform(c, n.worldTransform, n.worldAlpha, dirty)
	}
}

// touch marks the transform stale and bumps the global bounds generation.
func (n *Node) touch() {
	n.transformDirty = true
	bumpBoundsGeneration()
}

// SetPosition writes X and Y and flags the transform stale.
func (n *Node) SetPosition(x, y float64) {
	n.X, n.Y = x, y
	n.touch()
}

// SetScale writes ScaleX and ScaleY and flags the transform stale.
func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX, n.ScaleY = sx, sy
	n.touch()
}

// SetRotation writes the rotation, in radians, and flags the transform stale.
func (n *Node) SetRotation(radians float64) {
	n.Rotation = radians
	n.touch()
}

// SetSkew writes SkewX and SkewY and flags the transform stale.
func (n *Node) SetSkew(kx, ky float64) {
	n.SkewX, n.SkewY = kx, ky
	n.touch()
}

// SetPivot writes PivotX and PivotY and flags the transform stale.
func (n *Node) SetPivot(px, py float64) {
	n.PivotX, n.PivotY = px, py
	n.touch()
}

// SetAlpha writes the node's alpha. Alpha does not move bounds, so the
// bounds generation is left alone.
func (n *Node) SetAlpha(alpha float64) {
	n.Alpha = alpha
	n.transformDirty = true
}

// MarkDirty forces a transform recomputation on the next frame. Call it
// after bulk-writing transform fields directly.
func (n *Node) MarkDirty() { n.touch() }

// WorldTransform returns the node's current world affine matrix
// [a, b, c, d, tx, ty]. Valid after the last update pass; transform
// setters take effect on the next [Scene.Update] or updateWorldTransform.
func (n *Node) WorldTransform() [6]float64 {
	return n.worldTransform
}

// WorldToLocal converts a world-space point into this node's local space.
func (n *Node) WorldToLocal(wx, wy float64) (float64, float64) {
	return transformPoint(invertAffine(n.worldTransform), wx, wy)
}

// LocalToWorld converts a local-space point to world space.
func (n *Node) LocalToWorld(x, y float64) (float64, float64) {
	return transformPoint(n.worldTransform, x, y)
}
