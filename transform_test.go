package aspen

import (
	"math"
	"testing"
)

const tol = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %g, want %g", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i, g := range got {
		if math.Abs(g-want[i]) > tol {
			t.Errorf("%s[%d] = %g, want %g (full: %v vs %v)", name, i, g, want[i], got, want)
		}
	}
}

// linkedPair returns a parent with one attached child.
func linkedPair() (parent, child *Node) {
	parent = NewContainer("parent")
	child = NewContainer("child")
	parent.AddChild(child)
	return parent, child
}

// offsetPair returns a refreshed pair sitting at world x 120 and 127.
func offsetPair() (parent, child *Node) {
	parent, child = linkedPair()
	parent.X, child.X = 120, 7
	updateWorldTransform(parent, identityTransform, 1.0, false)
	return parent, child
}

// --- Local matrix construction ---

func TestComputeLocalTransform(t *testing.T) {
	for _, tt := range []struct {
		name string
		set  func(n *Node)
		want [6]float64
	}{
		{"identity", func(n *Node) {}, [6]float64{1, 0, 0, 1, 0, 0}},
		{"translation", func(n *Node) {
			n.X, n.Y = 10, 20
		}, [6]float64{1, 0, 0, 1, 10, 20}},
		{"scale", func(n *Node) {
			n.ScaleX, n.ScaleY = 2, 3
		}, [6]float64{2, 0, 0, 3, 0, 0}},
		// cos 90 = 0, sin 90 = 1, so the basis vectors swap with a sign.
		{"quarter turn", func(n *Node) {
			n.Rotation = math.Pi / 2
		}, [6]float64{0, 1, -1, 0, 0, 0}},
		// The pivot shifts the origin before translation: T(100,200)*T(-16,-16).
		{"pivot offset", func(n *Node) {
			n.X, n.Y = 100, 200
			n.PivotX, n.PivotY = 16, 16
		}, [6]float64{1, 0, 0, 1, 84, 184}},
		// tan(pi/4) = 1 lands in the c slot when only SkewX is set.
		{"skew x", func(n *Node) {
			n.SkewX = math.Pi / 4
		}, [6]float64{1, 0, 1, 1, 0, 0}},
		// Scale applies before the rotation, translation last:
		// a = cos*sx = 0, b = sin*sx = 2, c = -sin*sy = -2, d = cos*sy = 0.
		{"scale then rotate", func(n *Node) {
			n.X, n.Y = 50, 100
			n.ScaleX, n.ScaleY = 2, 2
			n.Rotation = math.Pi / 2
		}, [6]float64{0, 2, -2, 0, 50, 100}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			n := NewContainer("n")
			tt.set(n)
			assertMatrix(t, tt.name, computeLocalTransform(n), tt.want)
		})
	}
}

// --- Matrix algebra ---

func TestMultiplyAffine(t *testing.T) {
	m := [6]float64{2, 1, 3, 4, 7, 9}
	assertMatrix(t, "id*m", multiplyAffine(identityTransform, m), m)
	assertMatrix(t, "m*id", multiplyAffine(m, identityTransform), m)

	a := [6]float64{1, 0, 0, 1, 12, 21}
	b := [6]float64{1, 0, 0, 1, 4, 6}
	assertMatrix(t, "translations add", multiplyAffine(a, b), [6]float64{1, 0, 0, 1, 16, 27})
}

func TestInvertAffineRoundtrip(t *testing.T) {
	spun := NewContainer("spun")
	spun.ScaleX = 2
	spun.Rotation = math.Pi / 3

	for _, tt := range []struct {
		name string
		m    [6]float64
	}{
		{"scale and offset", [6]float64{2, 0, 0, 3, 10, 20}},
		{"scale and rotation", computeLocalTransform(spun)},
	} {
		t.Run(tt.name, func(t *testing.T) {
			inv := invertAffine(tt.m)
			assertMatrix(t, "m*inv", multiplyAffine(tt.m, inv), identityTransform)
		})
	}
}

func TestInvertAffineSingular(t *testing.T) {
	// A zero determinant cannot be inverted; the identity stands in so
	// callers never divide by zero.
	for _, tt := range []struct {
		name string
		m    [6]float64
	}{
		{"one zero scale", [6]float64{0, 0, 0, 1, 10, 20}},
		{"both zero scales", [6]float64{0, 0, 0, 0, 50, 100}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			assertMatrix(t, "inverse", invertAffine(tt.m), identityTransform)
		})
	}
}

// --- World transform propagation ---

func TestWorldTransformComposes(t *testing.T) {
	parent, child := offsetPair()

	assertNear(t, "parent.tx", parent.worldTransform[4], 120)
	assertNear(t, "child.tx", child.worldTransform[4], 127)
}

func TestWorldAlphaMultiplies(t *testing.T) {
	parent, child := linkedPair()
	parent.Alpha, child.Alpha = 0.6, 0.4

	updateWorldTransform(parent, identityTransform, 1.0, false)

	assertNear(t, "parent.worldAlpha", parent.worldAlpha, 0.6)
	assertNear(t, "child.worldAlpha", child.worldAlpha, 0.24)
}

func TestCleanNodesAreSkipped(t *testing.T) {
	parent, child := offsetPair()

	// A bare field write leaves the dirty flag down, so the stale world
	// matrix survives the next pass.
	child.X = 999
	updateWorldTransform(parent, identityTransform, 1.0, false)

	assertNear(t, "child.tx (stale)", child.worldTransform[4], 127)
}

func TestSetterTriggersRecompute(t *testing.T) {
	parent, child := offsetPair()

	child.SetPosition(20, 0)
	updateWorldTransform(parent, identityTransform, 1.0, false)

	assertNear(t, "child.tx (updated)", child.worldTransform[4], 140)
}

func TestParentMotionReachesCleanChild(t *testing.T) {
	parent, child := offsetPair()

	// Only the parent is dirty; the child must still pick up the change.
	parent.SetPosition(210, 0)
	updateWorldTransform(parent, identityTransform, 1.0, false)

	assertNear(t, "child.tx (from parent)", child.worldTransform[4], 217)
}

func TestWorldGenAdvancesOnRecompute(t *testing.T) {
	n := NewContainer("n")
	updateWorldTransform(n, identityTransform, 1.0, false)
	gen := n.worldGen

	// Clean pass: generation must not move.
	updateWorldTransform(n, identityTransform, 1.0, false)
	if n.worldGen != gen {
		t.Errorf("worldGen advanced on clean pass: %d -> %d", gen, n.worldGen)
	}

	n.SetPosition(5, 5)
	updateWorldTransform(n, identityTransform, 1.0, false)
	if n.worldGen != gen+1 {
		t.Errorf("worldGen = %d, want %d after recompute", n.worldGen, gen+1)
	}
}

// --- World/local conversion ---

func TestWorldLocalRoundtrip(t *testing.T) {
	parent, child := linkedPair()
	parent.X, parent.Y = 100, 50
	child.X, child.Y = 10, 20
	child.ScaleX, child.ScaleY = 2, 3
	child.Rotation = math.Pi / 5

	updateWorldTransform(parent, identityTransform, 1.0, false)

	lx, ly := child.WorldToLocal(142, 77)
	wx, wy := child.LocalToWorld(lx, ly)
	assertNear(t, "roundtrip.x", wx, 142)
	assertNear(t, "roundtrip.y", wy, 77)
}

func TestLocalToWorldOrigin(t *testing.T) {
	n := NewContainer("n")
	n.X, n.Y = 40, 90
	updateWorldTransform(n, identityTransform, 1.0, false)

	gx, gy := n.LocalToWorld(0, 0)
	assertNear(t, "origin.x", gx, 40)
	assertNear(t, "origin.y", gy, 90)
}

func TestWorldToLocalSingular(t *testing.T) {
	n := NewContainer("n")
	n.ScaleX, n.ScaleY = 0, 0
	updateWorldTransform(n, identityTransform, 1.0, false)

	// The singular world matrix falls back to identity instead of
	// panicking, so the point passes through unchanged.
	lx, ly := n.WorldToLocal(64, 48)
	assertNear(t, "lx", lx, 64)
	assertNear(t, "ly", ly, 48)
}

func TestDeepChainAccumulates(t *testing.T) {
	root := NewContainer("")
	root.X = 10
	tip := root
	for range 9 {
		next := NewContainer("")
		next.X = 10
		tip.AddChild(next)
		tip = next
	}

	updateWorldTransform(root, identityTransform, 1.0, false)

	// Ten links of 10 units each.
	assertNear(t, "deep.tx", tip.worldTransform[4], 100)
}

// --- Setter dirty flags ---

func TestSettersMarkDirty(t *testing.T) {
	for _, tt := range []struct {
		name string
		call func(n *Node)
	}{
		{"SetPosition", func(n *Node) { n.SetPosition(1, 2) }},
		{"SetScale", func(n *Node) { n.SetScale(2, 2) }},
		{"SetRotation", func(n *Node) { n.SetRotation(1) }},
		{"SetSkew", func(n *Node) { n.SetSkew(0.1, 0.2) }},
		{"SetPivot", func(n *Node) { n.SetPivot(5, 5) }},
		{"SetAlpha", func(n *Node) { n.SetAlpha(0.5) }},
		{"MarkDirty", func(n *Node) { n.MarkDirty() }},
	} {
		t.Run(tt.name, func(t *testing.T) {
			n := NewContainer("n")
			n.transformDirty = false
			tt.call(n)
			if !n.transformDirty {
				t.Errorf("%s should set the dirty flag", tt.name)
			}
		})
	}
}

// --- Benchmarks ---

// benchTree10k builds a root with 100 children of 100 leaves each.
func benchTree10k() *Node {
	root := NewContainer("bench")
	for i := range 100 {
		mid := NewContainer("")
		mid.X = float64(i)
		root.AddChild(mid)
		for j := range 100 {
			leaf := NewContainer("")
			leaf.X = float64(j)
			mid.AddChild(leaf)
		}
	}
	return root
}

func BenchmarkLocalTransform(b *testing.B) {
	n := NewContainer("local")
	n.X, n.Y = 100, 200
	n.ScaleX, n.ScaleY = 2, 3
	n.Rotation = 0.4
	n.PivotX, n.PivotY = 16, 16
	b.ReportAllocs()
	for b.Loop() {
		_ = computeLocalTransform(n)
	}
}

func BenchmarkAffineMultiply(b *testing.B) {
	m := [6]float64{2, 0.25, 0.3, 3, 96, 210}
	n := [6]float64{1.5, 0.2, 0.15, 2.5, 48, 36}
	b.ReportAllocs()
	for b.Loop() {
		_ = multiplyAffine(m, n)
	}
}

func BenchmarkWorldRefresh10k(b *testing.B) {
	tree := benchTree10k()
	updateWorldTransform(tree, identityTransform, 1.0, false)

	b.ReportAllocs()
	for b.Loop() {
		// Force the full recomputation path every iteration.
		tree.transformDirty = true
		updateWorldTransform(tree, identityTransform, 1.0, false)
	}
}

func BenchmarkWorldRefreshClean(b *testing.B) {
	tree := benchTree10k()
	updateWorldTransform(tree, identityTransform, 1.0, false)

	b.ReportAllocs()
	for b.Loop() {
		// Every node is clean; this measures the skip path.
		updateWorldTransform(tree, identityTransform, 1.0, false)
	}
}
