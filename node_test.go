package aspen

import (
	"strings"
	"testing"
)

// mustPanic runs fn and fails the test when it completes without panicking.
func mustPanic(t *testing.T, what string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected a panic", what)
		}
	}()
	fn()
}

// childNames joins the Name of every child in list order, e.g. "abc".
func childNames(n *Node) string {
	var sb strings.Builder
	for _, c := range n.Children() {
		sb.WriteString(c.Name)
	}
	return sb.String()
}

// buildFamily creates a parent with one single-letter child per name,
// attached in order.
func buildFamily(names ...string) (*Node, []*Node) {
	parent := NewContainer("family")
	kids := make([]*Node, len(names))
	for i, name := range names {
		kids[i] = NewContainer(name)
		parent.AddChild(kids[i])
	}
	return parent, kids
}

// --- Defaults ---

func TestNodeDefaults(t *testing.T) {
	spr := NewSprite("quad", WhiteTexture)
	for _, tt := range []struct {
		kind string
		node *Node
	}{
		{"container", NewContainer("quad")},
		{"sprite", spr.Node},
	} {
		n := tt.node
		if n.ID == 0 {
			t.Errorf("%s: ID not assigned", tt.kind)
		}
		if n.Name != "quad" {
			t.Errorf("%s: Name = %q, want %q", tt.kind, n.Name, "quad")
		}
		if n.ScaleX != 1 || n.ScaleY != 1 {
			t.Errorf("%s: scale = (%v, %v), want (1, 1)", tt.kind, n.ScaleX, n.ScaleY)
		}
		if n.Alpha != 1 {
			t.Errorf("%s: Alpha = %v, want 1", tt.kind, n.Alpha)
		}
		if !n.Visible || !n.Renderable {
			t.Errorf("%s: Visible/Renderable = %v/%v, want true/true", tt.kind, n.Visible, n.Renderable)
		}
		if !n.transformDirty {
			t.Errorf("%s: new nodes must start transform-dirty", tt.kind)
		}
	}
}

func TestNewSpriteWiring(t *testing.T) {
	spr := NewSprite("spr", WhiteTexture)
	if spr.Texture() != WhiteTexture {
		t.Error("Texture should be the one passed to NewSprite")
	}
	if spr.Color != (Color{1, 1, 1, 1}) {
		t.Errorf("Color = %v, want white", spr.Color)
	}
	if spr.Node.Geometry() != spr {
		t.Error("sprite node's geometry capability should be the sprite itself")
	}
	if NewContainer("c").Geometry() != nil {
		t.Error("container should have no geometry capability")
	}
}

func TestNodeIDsAreUnique(t *testing.T) {
	seen := make(map[uint32]bool)
	for i := 0; i < 16; i++ {
		id := NewContainer("").ID
		if seen[id] {
			t.Fatalf("ID %d issued twice", id)
		}
		seen[id] = true
	}
}

// --- Geometry capability ---

func TestAttachGeometry(t *testing.T) {
	host := NewContainer("host")
	donor := NewSprite("donor", WhiteTexture)

	host.AttachGeometry(donor)
	if host.Geometry() != donor {
		t.Error("Geometry() should return the attached capability")
	}

	host.AttachGeometry(nil)
	if host.Geometry() != nil {
		t.Error("Geometry() should be nil after detaching")
	}
}

// --- Invalid tree operations ---

func TestInvalidTreeOps(t *testing.T) {
	cases := []struct {
		name string
		fn   func()
	}{
		{"nil child", func() {
			NewContainer("n").AddChild(nil)
		}},
		{"self as child", func() {
			n := NewContainer("n")
			n.AddChild(n)
		}},
		{"ancestor as child", func() {
			top, mid, leaf := NewContainer("top"), NewContainer("mid"), NewContainer("leaf")
			top.AddChild(mid)
			mid.AddChild(leaf)
			leaf.AddChild(top)
		}},
		{"remove from wrong parent", func() {
			a, b := NewContainer("a"), NewContainer("b")
			kid := NewContainer("kid")
			a.AddChild(kid)
			b.RemoveChild(kid)
		}},
		{"remove index out of range", func() {
			p, _ := buildFamily("a")
			p.RemoveChildAt(5)
		}},
		{"nil sprite texture", func() {
			NewSprite("bad", nil)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mustPanic(t, tc.name, tc.fn)
		})
	}
}

// --- Attach / detach ---

func TestAddChild(t *testing.T) {
	outer := NewContainer("outer")
	inner := NewContainer("inner")
	outer.AddChild(inner)

	if inner.Parent != outer {
		t.Error("Parent link not set by AddChild")
	}
	if n := outer.NumChildren(); n != 1 {
		t.Errorf("NumChildren = %d, want 1", n)
	}
	if outer.ChildAt(0) != inner {
		t.Error("ChildAt(0) should be the added child")
	}
}

func TestAddChildMovesBetweenParents(t *testing.T) {
	first, kids := buildFamily("kid")
	second := NewContainer("second")

	second.AddChild(kids[0])

	if first.NumChildren() != 0 {
		t.Error("old parent should be empty after the move")
	}
	if second.NumChildren() != 1 || kids[0].Parent != second {
		t.Error("child should now live under the new parent")
	}
}

func TestAddChildAtOrder(t *testing.T) {
	for _, tt := range []struct {
		name  string
		index int
		want  string
	}{
		{"front", 0, "xab"},
		{"between", 1, "axb"},
		{"end", 2, "abx"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			parent, _ := buildFamily("a", "b")
			parent.AddChildAt(NewContainer("x"), tt.index)
			if got := childNames(parent); got != tt.want {
				t.Errorf("order = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRemoveChildUnlinks(t *testing.T) {
	p, kids := buildFamily("a")
	p.RemoveChild(kids[0])

	if n := p.NumChildren(); n != 0 {
		t.Errorf("NumChildren = %d after removal, want 0", n)
	}
	if kids[0].Parent != nil {
		t.Error("removed child should have nil Parent")
	}
}

func TestRemoveChildAtByIndex(t *testing.T) {
	p, kids := buildFamily("a", "b", "c")

	if got := p.RemoveChildAt(1); got != kids[1] {
		t.Errorf("RemoveChildAt(1) returned %q, want %q", got.Name, "b")
	}
	if got := childNames(p); got != "ac" {
		t.Errorf("remaining order = %q, want %q", got, "ac")
	}
	if kids[1].Parent != nil {
		t.Error("removed child should have nil Parent")
	}
}

func TestRemoveFromParentOrphanSafe(t *testing.T) {
	p, kids := buildFamily("kid")
	kids[0].RemoveFromParent()

	if n := p.NumChildren(); n != 0 {
		t.Errorf("NumChildren = %d after removal, want 0", n)
	}
	if kids[0].Parent != nil {
		t.Error("detached child should have nil Parent")
	}

	orphan := NewContainer("orphan")
	orphan.RemoveFromParent() // no-op without a parent
	if orphan.Parent != nil {
		t.Error("an orphan must stay an orphan")
	}
}

func TestRemoveChildrenClearsAll(t *testing.T) {
	p, kids := buildFamily("a", "b")
	p.RemoveChildren()

	if n := p.NumChildren(); n != 0 {
		t.Errorf("NumChildren = %d after RemoveChildren, want 0", n)
	}
	for _, kid := range kids {
		if kid.Parent != nil {
			t.Errorf("detached child %q should have nil Parent", kid.Name)
		}
	}
}

// --- Reordering ---

func TestSetChildIndexOrderings(t *testing.T) {
	for _, tt := range []struct {
		name  string
		start string
		move  string
		to    int
		want  string
	}{
		{"to front", "abc", "c", 0, "cab"},
		{"to back", "abc", "a", 2, "bca"},
		{"swap pair", "ab", "a", 1, "ba"},
		{"forward to middle", "abcd", "a", 2, "bcad"},
		{"backward to middle", "abcd", "d", 1, "adbc"},
		{"same index", "ab", "a", 0, "ab"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			parent, kids := buildFamily(strings.Split(tt.start, "")...)
			parent.SetChildIndex(kids[strings.Index(tt.start, tt.move)], tt.to)
			if got := childNames(parent); got != tt.want {
				t.Errorf("order = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChildAccessorsAgree(t *testing.T) {
	p, _ := buildFamily("a", "b", "c", "d", "e")

	list := p.Children()
	if len(list) != p.NumChildren() {
		t.Errorf("Children() len = %d, NumChildren() = %d", len(list), p.NumChildren())
	}
	for i, c := range list {
		if c != p.ChildAt(i) {
			t.Errorf("Children()[%d] disagrees with ChildAt(%d)", i, i)
		}
	}
}

// --- Dispose semantics ---

func TestDisposeSubtree(t *testing.T) {
	top := NewContainer("top")
	mid, kids := buildFamily("kid")
	grandkid := NewContainer("grandkid")
	top.AddChild(mid)
	kids[0].AddChild(grandkid)

	mid.Dispose()

	for _, n := range []*Node{mid, kids[0], grandkid} {
		if !n.IsDisposed() {
			t.Errorf("%q should be disposed", n.Name)
		}
		if n.ID != 0 {
			t.Errorf("%q: disposed nodes should have ID = 0", n.Name)
		}
	}
	if top.NumChildren() != 0 {
		t.Error("the disposed subtree should leave its parent")
	}
}

func TestDisposeTwice(t *testing.T) {
	box := NewContainer("box")
	box.Dispose()
	box.Dispose() // second call must not panic
	if !box.IsDisposed() {
		t.Error("still disposed after the second Dispose")
	}
}

func TestDisposeClearsCapability(t *testing.T) {
	spr := NewSprite("spr", WhiteTexture)
	spr.Node.HitShape = HitRect{Width: 1, Height: 1}
	spr.OnClick = func(ClickContext) {}
	spr.Node.Dispose()

	if spr.Node.Geometry() != nil {
		t.Error("disposed node should have nil geometry")
	}
	if spr.Node.HitShape != nil {
		t.Error("disposed node should have nil HitShape")
	}
	if spr.OnClick != nil {
		t.Error("disposed node should drop its callbacks")
	}
}

// --- Transform dirtying ---

func TestAttachDetachMarkDirty(t *testing.T) {
	top := NewContainer("top")
	mid, grands := buildFamily("grand")

	// Settle the flags, then reattach and watch them flip back.
	mid.transformDirty = false
	grands[0].transformDirty = false
	top.AddChild(mid)

	if !mid.transformDirty || !grands[0].transformDirty {
		t.Error("whole subtree should be dirty after AddChild")
	}

	mid.transformDirty = false
	top.RemoveChild(mid)
	if !mid.transformDirty {
		t.Error("mid should be dirty after RemoveChild")
	}
}
