package aspen

import "slices"

// Geometry is the optional quad-geometry capability a Node may carry.
// It is injected with [Node.AttachGeometry] rather than expressed through a
// type hierarchy; [Sprite] is the built-in implementation.
//
// ComputeVertices refreshes the capability's world-space geometry from the
// node's current world transform. ComputeBounds returns the world-space
// axis-aligned rectangle of the full logical extent (false if the capability
// has nothing to contribute). HitTest reports containment of a LOCAL-space
// point; callers convert from world space first.
type Geometry interface {
	ComputeVertices()
	ComputeBounds() (Rect, bool)
	HitTest(x, y float64) bool
}

// HitShape overrides hit testing for a node. When set it takes precedence
// over the node's Geometry capability.
type HitShape interface {
	Contains(x, y float64) bool
}

// --- Callback contexts ---

// PointerContext describes one pointer event for callbacks.
type PointerContext struct {
	Node             *Node
	EntityID         uint32
	UserData         any
	GlobalX, GlobalY float64
	LocalX, LocalY   float64
	Button           MouseButton
	Modifiers        KeyModifiers
}

// ClickContext describes a completed click for callbacks.
type ClickContext struct {
	Node             *Node
	EntityID         uint32
	UserData         any
	GlobalX, GlobalY float64
	LocalX, LocalY   float64
	Button           MouseButton
	Modifiers        KeyModifiers
}

// DragContext carries drag event data. Start is the world position where
// the press happened; Delta is the movement since the previous drag event.
type DragContext struct {
	Node             *Node
	EntityID         uint32
	UserData         any
	GlobalX, GlobalY float64
	LocalX, LocalY   float64
	StartX, StartY   float64
	DeltaX, DeltaY   float64
	Button           MouseButton
	Modifiers        KeyModifiers
}

// nodeCallbacks are the optional per-node hooks, grouped so disposal can
// clear them in one assignment. All nil by default; a nil hook costs
// nothing.
type nodeCallbacks struct {
	OnUpdate func(dt float64)

	OnPointerDown, OnPointerUp, OnPointerMove func(PointerContext)
	OnPointerEnter, OnPointerLeave            func(PointerContext)

	OnClick func(ClickContext)

	OnDragStart, OnDrag, OnDragEnd func(DragContext)
}

// --- Scene graph node ---

// lastNodeID hands out node IDs. A plain counter is enough; the whole
// engine runs on the game loop goroutine.
var lastNodeID uint32

func newNodeID() uint32 {
	lastNodeID++
	return lastNodeID
}

// Node is the fundamental scene graph element: a transform, a child list,
// and an optional injected [Geometry] capability. Containers are plain
// Nodes; sprites are Nodes carrying a [Sprite].
type Node struct {
	ID   uint32 // unique per node, zeroed on disposal
	Name string // diagnostic label, quoted in debug warnings

	Parent   *Node   // nil for roots and detached nodes
	children []*Node // insertion order; the ZIndex order is cached separately

	// Local transform, composed into worldTransform during traversal.
	X, Y           float64
	ScaleX, ScaleY float64
	Rotation       float64
	SkewX, SkewY   float64
	PivotX, PivotY float64

	// Visibility, interaction, and draw ordering.
	Alpha       float64
	ZIndex      int   // sibling order under one parent, higher draws later
	RenderLayer uint8 // coarse sort band, beats every finer ordering key
	GlobalOrder int   // cross-parent tiebreak inside a layer

	Visible, Renderable, Interactable bool

	EntityID uint32   // entity mirrored in an attached store, 0 when none
	UserData any      // opaque payload echoed back in event contexts
	HitShape HitShape // overrides geometry-based hit testing when set

	nodeCallbacks

	// Injected capability.
	geometry Geometry

	// World-space state, refreshed during traversal. worldGen bumps on
	// every recompute so bounds memos can validate themselves.
	worldTransform [6]float64 // composed affine: a, b, c, d, tx, ty
	worldAlpha     float64    // alpha accumulated down the parent chain
	worldGen       uint64

	// Memoized world bounds (see bounds.go).
	boundsRect Rect
	boundsHas  bool
	boundsGen  uint64

	transformDirty  bool
	childOrderDirty bool
	disposed        bool

	sortedChildren []*Node // cached ZIndex order, rebuilt while childOrderDirty
}

// NewContainer creates a node with no geometry capability. It renders
// nothing itself and exists to group and transform its children.
func NewContainer(name string) *Node {
	return &Node{
		ID:             newNodeID(),
		Name:           name,
		ScaleX:         1,
		ScaleY:         1,
		Alpha:          1,
		Visible:        true,
		Renderable:     true,
		transformDirty: true,
	}
}

// AttachGeometry injects the geometry capability. Passing nil detaches it.
// The previous capability, if any, is dropped.
func (n *Node) AttachGeometry(g Geometry) {
	n.geometry = g
	bumpBoundsGeneration()
}

// Geometry returns the node's injected capability, or nil.
func (n *Node) Geometry() Geometry { return n.geometry }

// --- Child management ---

// adopt validates child and pulls it out of any previous parent. The
// caller places it in n.children and finishes with attached. op names the
// public operation for debug-mode diagnostics.
func (n *Node) adopt(child *Node, op string) {
	switch {
	case child == nil:
		panic("aspen: cannot add nil child")
	case hasAncestor(n, child):
		panic("aspen: adding child would create a cycle")
	}
	if debugMode {
		assertNotDisposed(n, op+" parent")
		assertNotDisposed(child, op+" child")
	}
	if p := child.Parent; p != nil {
		p.unlink(child)
	}
}

// attached finishes an insertion: the child joins n, ordering and the
// subtree's transforms go stale, and aggregated bounds must recompute.
func (n *Node) attached(child *Node) {
	child.Parent, n.childOrderDirty = n, true
	child.invalidateTransforms()
	bumpBoundsGeneration()
	if debugMode {
		warnDeepTree(child)
		warnManyChildren(n)
	}
}

// detached is the removal counterpart: the child keeps its subtree but
// loses its place in the tree, and everything derived goes stale.
func (n *Node) detached(child *Node) {
	child.Parent, n.childOrderDirty = nil, true
	child.invalidateTransforms()
	bumpBoundsGeneration()
}

// AddChild places child at the end of this node's child list, pulling it
// out of any previous parent. Panics on a nil child or when the insertion
// would create a cycle.
func (n *Node) AddChild(child *Node) {
	n.adopt(child, "AddChild")
	n.children = append(n.children, child)
	n.attached(child)
}

// AddChildAt places child at the given position in the child list, with
// the same reparenting and cycle rules as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if uint(index) > uint(len(n.children)) {
		panic("aspen: child index out of range")
	}
	n.adopt(child, "AddChildAt")
	n.children = slices.Insert(n.children, index, child)
	n.attached(child)
}

// RemoveChild detaches child from this node. Panics when child belongs
// to a different parent.
func (n *Node) RemoveChild(child *Node) {
	if debugMode {
		assertNotDisposed(n, "RemoveChild parent")
		assertNotDisposed(child, "RemoveChild child")
	}
	if !n.unlink(child) {
		panic("aspen: child's parent is not this node")
	}
	n.detached(child)
}

// RemoveChildAt detaches and returns the child at the given position.
func (n *Node) RemoveChildAt(index int) *Node {
	if debugMode {
		assertNotDisposed(n, "RemoveChildAt")
	}
	if uint(index) >= uint(len(n.children)) {
		panic("aspen: child index out of range")
	}
	c := n.children[index]
	n.children = slices.Delete(n.children, index, index+1)
	n.detached(c)
	return c
}

// RemoveFromParent detaches this node from its parent, doing nothing for
// a node that has none.
func (n *Node) RemoveFromParent() {
	if p := n.Parent; p != nil {
		p.RemoveChild(n)
	}
}

// RemoveChildren empties the child list. The children themselves stay
// alive; nothing is disposed.
func (n *Node) RemoveChildren() {
	for _, c := range n.children {
		c.Parent = nil
		c.invalidateTransforms()
	}
	n.children, n.childOrderDirty = n.children[:0], false
	bumpBoundsGeneration()
}

// Children exposes the internal child list. Callers MUST NOT mutate the
// returned slice.
func (n *Node) Children() []*Node { return n.children }

// NumChildren reports how many direct children this node has.
func (n *Node) NumChildren() int { return len(n.children) }

// ChildAt returns the child at the given position.
func (n *Node) ChildAt(index int) *Node { return n.children[index] }

// SetChildIndex repositions child among its siblings.
func (n *Node) SetChildIndex(child *Node, index int) {
	if uint(index) >= uint(len(n.children)) {
		panic("aspen: child index out of range")
	}
	cur := slices.Index(n.children, child)
	if cur < 0 {
		panic("aspen: child's parent is not this node")
	}
	if cur != index {
		n.children = slices.Insert(slices.Delete(n.children, cur, cur+1), index, child)
		n.childOrderDirty = true
	}
}

// SetZIndex updates the node's ZIndex and flags the parent's child order
// as stale so traversal re-sorts it.
func (n *Node) SetZIndex(z int) {
	if n.ZIndex != z {
		n.ZIndex = z
		if p := n.Parent; p != nil {
			p.childOrderDirty = true
		}
	}
}

// --- Teardown ---

// Dispose detaches this node from its parent and permanently retires it
// along with every descendant. Disposing twice is a no-op.
func (n *Node) Dispose() {
	if !n.disposed {
		n.RemoveFromParent()
		n.teardown()
		bumpBoundsGeneration()
	}
}

func (n *Node) teardown() {
	n.disposed, n.ID = true, 0
	for _, c := range n.children {
		c.Parent = nil
		c.teardown()
	}
	n.Parent, n.children, n.sortedChildren = nil, nil, nil

	// Drop everything that can pin other objects in memory.
	n.geometry, n.HitShape, n.UserData = nil, nil, nil
	n.nodeCallbacks = nodeCallbacks{}
}

// IsDisposed reports whether Dispose has run on this node.
func (n *Node) IsDisposed() bool { return n.disposed }

// --- Internal helpers ---

// hasAncestor walks the parent chain of n looking for candidate.
func hasAncestor(n, candidate *Node) bool {
	for ; n != nil; n = n.Parent {
		if n == candidate {
			return true
		}
	}
	return false
}

// unlink removes child from n.children, reporting whether it was present.
// slices.Delete zeroes the vacated tail slot, so no dangling pointer
// survives in the backing array. The cached traversal order goes stale
// even when the removal comes from a reparent rather than a public
// remove operation.
func (n *Node) unlink(child *Node) bool {
	i := slices.Index(n.children, child)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	n.childOrderDirty = true
	return true
}

// invalidateTransforms flags the node and every descendant for transform
// recomputation on the next traversal.
func (n *Node) invalidateTransforms() {
	n.transformDirty = true
	for _, c := range n.children {
		c.invalidateTransforms()
	}
}
