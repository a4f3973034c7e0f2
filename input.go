package aspen

import (
	"math"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
)

// defaultDragDeadZone is the minimum cursor travel in pixels before a
// press turns into a drag.
const defaultDragDeadZone = 4.0

// --- Hit shapes ---

// HitRect declares an axis-aligned rectangle, in local coordinates, as a
// node's clickable region.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point falls inside the rectangle. Edges count.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && y >= r.Y && x <= r.X+r.Width && y <= r.Y+r.Height
}

// HitCircle declares a circle, in local coordinates, as a node's
// clickable region.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether the point falls inside the circle. The boundary
// counts as inside.
func (c HitCircle) Contains(x, y float64) bool {
	dx, dy := x-c.CenterX, y-c.CenterY
	return c.Radius*c.Radius >= dx*dx+dy*dy
}

// HitPolygon declares a convex polygon, in local coordinates, as a node's
// clickable region. Winding order does not matter.
type HitPolygon struct {
	Points []Vec2
}

// Contains runs a cross product sign test against every edge, so the answer
// is only meaningful for convex polygons.
func (p HitPolygon) Contains(x, y float64) bool {
	if len(p.Points) < 3 {
		return false
	}
	// Inside means the point never lands on both sides of the edge loop.
	var pos, neg bool
	for i, a := range p.Points {
		b := p.Points[(i+1)%len(p.Points)]
		switch cross := (b.X-a.X)*(y-a.Y) - (b.Y-a.Y)*(x-a.X); {
		case cross > 0:
			pos = true
		case cross < 0:
			neg = true
		}
		if pos && neg {
			return false
		}
	}
	return true
}

// --- Pointer tracking ---

// pointerState carries one interaction across frames: where it started,
// where it was a frame ago, and which nodes are involved.
type pointerState struct {
	down, dragging bool
	button         MouseButton // captured on the press transition
	start          Vec2        // world position of the press
	last           Vec2        // world position a frame ago
	hitNode        *Node       // node under the press
	hoverNode      *Node       // node under the cursor, for enter and leave
}

// --- Handler lists ---

type handler[Ctx any] struct {
	seq uint32
	fn  func(Ctx)
}

// handlerList is an ordered set of scene-level callbacks for one event.
type handlerList[Ctx any] []handler[Ctx]

func (l handlerList[Ctx]) dispatch(ctx Ctx) {
	for _, h := range l {
		h.fn(ctx)
	}
}

func (l handlerList[Ctx]) remove(seq uint32) handlerList[Ctx] {
	return slices.DeleteFunc(l, func(h handler[Ctx]) bool { return h.seq == seq })
}

// handlerTable keys scene-level handler lists by event type, one map per
// context shape. Lookups tolerate nil maps, so the zero value works;
// registration allocates each map on first use.
type handlerTable struct {
	pointer map[EventType]handlerList[PointerContext]
	click   map[EventType]handlerList[ClickContext]
	drag    map[EventType]handlerList[DragContext]
	nextSeq uint32
}

// register appends fn to m's list for event and hands back a removal handle.
func register[Ctx any](tab *handlerTable, m *map[EventType]handlerList[Ctx], event EventType, fn func(Ctx)) CallbackHandle {
	if *m == nil {
		*m = make(map[EventType]handlerList[Ctx])
	}
	tab.nextSeq++
	(*m)[event] = append((*m)[event], handler[Ctx]{seq: tab.nextSeq, fn: fn})
	return CallbackHandle{seq: tab.nextSeq, tab: tab, kind: event}
}

// unregister drops the handler with the given sequence number from m's
// list for event.
func unregister[Ctx any](m map[EventType]handlerList[Ctx], event EventType, seq uint32) {
	if l, ok := m[event]; ok {
		m[event] = l.remove(seq)
	}
}

// CallbackHandle identifies one registered scene callback so it can be
// detached again.
type CallbackHandle struct {
	seq  uint32
	tab  *handlerTable
	kind EventType
}

// Remove detaches the callback so it never fires again.
func (h CallbackHandle) Remove() {
	if h.tab == nil {
		return
	}
	switch h.kind {
	case EventClick:
		unregister(h.tab.click, h.kind, h.seq)
	case EventDragStart, EventDrag, EventDragEnd:
		unregister(h.tab.drag, h.kind, h.seq)
	default:
		unregister(h.tab.pointer, h.kind, h.seq)
	}
}

// --- Callback registration ---

// OnPointerDown adds a scene-wide listener for pointer presses.
func (s *Scene) OnPointerDown(fn func(PointerContext)) CallbackHandle {
	return register(&s.handlers, &s.handlers.pointer, EventPointerDown, fn)
}

// OnPointerUp adds a scene-wide listener for pointer releases.
func (s *Scene) OnPointerUp(fn func(PointerContext)) CallbackHandle {
	return register(&s.handlers, &s.handlers.pointer, EventPointerUp, fn)
}

// OnPointerMove adds a scene-wide listener for hover movement.
func (s *Scene) OnPointerMove(fn func(PointerContext)) CallbackHandle {
	return register(&s.handlers, &s.handlers.pointer, EventPointerMove, fn)
}

// OnPointerEnter adds a scene-wide listener fired when the pointer moves
// onto a node it was not over a frame ago.
func (s *Scene) OnPointerEnter(fn func(PointerContext)) CallbackHandle {
	return register(&s.handlers, &s.handlers.pointer, EventPointerEnter, fn)
}

// OnPointerLeave adds a scene-wide listener fired when the pointer moves
// off a node, whether onto another node or onto empty space.
func (s *Scene) OnPointerLeave(fn func(PointerContext)) CallbackHandle {
	return register(&s.handlers, &s.handlers.pointer, EventPointerLeave, fn)
}

// OnClick adds a scene-wide listener for clicks, meaning a press and a
// release that land on the same node.
func (s *Scene) OnClick(fn func(ClickContext)) CallbackHandle {
	return register(&s.handlers, &s.handlers.click, EventClick, fn)
}

// OnDragStart adds a scene-wide listener fired once when a drag opens.
func (s *Scene) OnDragStart(fn func(DragContext)) CallbackHandle {
	return register(&s.handlers, &s.handlers.drag, EventDragStart, fn)
}

// OnDrag adds a scene-wide listener fired every frame a drag moves.
func (s *Scene) OnDrag(fn func(DragContext)) CallbackHandle {
	return register(&s.handlers, &s.handlers.drag, EventDrag, fn)
}

// OnDragEnd adds a scene-wide listener fired when a drag is released.
func (s *Scene) OnDragEnd(fn func(DragContext)) CallbackHandle {
	return register(&s.handlers, &s.handlers.drag, EventDragEnd, fn)
}

// CapturePointer routes every pointer event to node until ReleasePointer is
// called or the button comes back up.
func (s *Scene) CapturePointer(node *Node) {
	s.captured = node
}

// ReleasePointer ends a pointer capture.
func (s *Scene) ReleasePointer() {
	s.captured = nil
}

// SetDragDeadZone overrides how far the pointer must travel, in pixels,
// before a press becomes a drag.
func (s *Scene) SetDragDeadZone(pixels float64) {
	s.dragSlop = pixels
}

// --- Hit queries ---

// localHit answers local-space containment for one node. An explicit
// HitShape wins over the geometry capability; a bare container matches
// nothing.
func localHit(n *Node, lx, ly float64) bool {
	switch {
	case n.HitShape != nil:
		return n.HitShape.Contains(lx, ly)
	case n.geometry != nil:
		return n.geometry.HitTest(lx, ly)
	}
	return false
}

// gatherHitTargets appends every hit-testable node to out in painter
// order, depth-first with ZIndex-sorted siblings. Invisible and
// non-interactable nodes prune their whole subtree.
func (s *Scene) gatherHitTargets(n *Node, out []*Node) []*Node {
	if !n.Visible || !n.Interactable {
		return out
	}
	if n.HitShape != nil || n.geometry != nil {
		out = append(out, n)
	}
	for _, child := range n.drawOrder() {
		out = s.gatherHitTargets(child, out)
	}
	return out
}

// HitTest finds the topmost interactable node at (worldX, worldY), nil when
// nothing matches. Results reflect the world transforms of the last
// completed Scene.Update.
func (s *Scene) HitTest(worldX, worldY float64) *Node {
	s.hitStack = s.gatherHitTargets(s.root, s.hitStack[:0])

	// Walk painter order backward so the topmost drawn node wins.
	for _, n := range slices.Backward(s.hitStack) {
		if lx, ly := n.WorldToLocal(worldX, worldY); localHit(n, lx, ly) {
			return n
		}
	}
	return nil
}

// --- Device sampling ---

// modifierKeys maps each KeyModifiers bit to the ebiten keys that set it.
var modifierKeys = [...]struct {
	mod  KeyModifiers
	keys [3]ebiten.Key
}{
	{ModShift, [3]ebiten.Key{ebiten.KeyShift, ebiten.KeyShiftLeft, ebiten.KeyShiftRight}},
	{ModCtrl, [3]ebiten.Key{ebiten.KeyControl, ebiten.KeyControlLeft, ebiten.KeyControlRight}},
	{ModAlt, [3]ebiten.Key{ebiten.KeyAlt, ebiten.KeyAltLeft, ebiten.KeyAltRight}},
	{ModMeta, [3]ebiten.Key{ebiten.KeyMeta, ebiten.KeyMetaLeft, ebiten.KeyMetaRight}},
}

// readModifiers samples which keyboard modifiers are currently held.
func readModifiers() (mods KeyModifiers) {
	for _, m := range modifierKeys {
		if slices.ContainsFunc(m.keys[:], ebiten.IsKeyPressed) {
			mods |= m.mod
		}
	}
	return
}

// readMouseButton reports whether a mouse button is held and which one,
// preferring left over right over middle when several are down.
func readMouseButton() (bool, MouseButton) {
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		return true, MouseButtonLeft
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		return true, MouseButtonRight
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		return true, MouseButtonMiddle
	}
	return false, 0
}

// --- Frame processing ---

// processInput runs once per Scene.Update, after world transforms and the
// test runner have had their turn.
func (s *Scene) processInput() {
	cam, mods := s.primaryCamera(), readModifiers()
	if cam != nil {
		cam.refreshView()
	}

	// Injected events stand in for the real mouse this frame.
	if s.processInjectedInput(cam, mods) {
		return
	}
	s.sampleMouse(cam, mods)
}

// primaryCamera returns the camera input unprojects through, nil when the
// scene renders without one.
func (s *Scene) primaryCamera() *Camera {
	if len(s.cameras) == 0 {
		return nil
	}
	return s.cameras[0]
}

// unproject maps screen coordinates into world space through cam, or passes
// them through unchanged without a camera.
func unproject(cam *Camera, sx, sy float64) (float64, float64) {
	if cam == nil {
		return sx, sy
	}
	return cam.ScreenToWorld(sx, sy)
}

// sampleMouse feeds the real cursor and button state into the pointer
// state machine.
func (s *Scene) sampleMouse(cam *Camera, mods KeyModifiers) {
	cx, cy := ebiten.CursorPosition()
	wx, wy := unproject(cam, float64(cx), float64(cy))
	pressed, button := readMouseButton()
	s.processPointer(wx, wy, pressed, button, mods)
}

// processPointer advances the pointer state machine by one frame of input.
// The button argument matters only on the press transition; afterwards the
// button captured at press time rules the interaction.
func (s *Scene) processPointer(wx, wy float64, pressed bool, button MouseButton, mods KeyModifiers) {
	ps := &s.pointer

	// A captured node preempts hit testing.
	target := s.captured
	if target == nil {
		target = s.HitTest(wx, wy)
	}

	s.updateHover(target, wx, wy, button, mods)

	switch {
	case pressed && !ps.down:
		s.beginPress(target, wx, wy, button, mods)
	case !pressed && ps.down:
		s.endPress(target, wx, wy, mods)
	case pressed && ps.down:
		s.trackHeld(wx, wy, mods)
	default:
		s.trackHover(target, wx, wy, button, mods)
	}
}

// updateHover fires leave and enter when the node under the pointer changes.
func (s *Scene) updateHover(target *Node, wx, wy float64, button MouseButton, mods KeyModifiers) {
	ps := &s.pointer
	if target == ps.hoverNode {
		return
	}
	if ps.hoverNode != nil {
		s.firePointer(EventPointerLeave, ps.hoverNode, wx, wy, button, mods)
	}
	if target != nil {
		s.firePointer(EventPointerEnter, target, wx, wy, button, mods)
	}
	ps.hoverNode = target
}

// beginPress opens an interaction and fires pointer down. The button is
// captured for the rest of the interaction.
func (s *Scene) beginPress(target *Node, wx, wy float64, button MouseButton, mods KeyModifiers) {
	s.pointer = pointerState{
		down:      true,
		button:    button,
		start:     Vec2{wx, wy},
		last:      Vec2{wx, wy},
		hitNode:   target,
		hoverNode: s.pointer.hoverNode,
	}
	s.firePointer(EventPointerDown, target, wx, wy, button, mods)
}

// endPress closes the interaction: drag end if one was running, else click
// when press and release landed on the same node, then pointer up. Any
// pointer capture ends here too.
func (s *Scene) endPress(target *Node, wx, wy float64, mods KeyModifiers) {
	ps := &s.pointer
	if ps.dragging {
		s.fireDragEvent(EventDragEnd, ps.hitNode, wx, wy,
			ps.start.X, ps.start.Y, wx-ps.last.X, wy-ps.last.Y, ps.button, mods)
	} else if ps.hitNode != nil && ps.hitNode == target {
		s.fireClick(target, wx, wy, ps.button, mods)
	}
	s.firePointer(EventPointerUp, target, wx, wy, ps.button, mods)

	s.captured = nil
	ps.down = false
	ps.hitNode = nil
	ps.dragging = false
}

// trackHeld follows a held pointer: a drag opens once the cursor leaves the
// dead zone, after which every further move reports a delta.
func (s *Scene) trackHeld(wx, wy float64, mods KeyModifiers) {
	ps := &s.pointer
	if wx != ps.last.X || wy != ps.last.Y {
		if !ps.dragging && math.Hypot(wx-ps.start.X, wy-ps.start.Y) > s.dragSlop {
			ps.dragging = true
			s.fireDragEvent(EventDragStart, ps.hitNode, wx, wy,
				ps.start.X, ps.start.Y, wx-ps.start.X, wy-ps.start.Y, ps.button, mods)
		}
		if ps.dragging {
			s.fireDragEvent(EventDrag, ps.hitNode, wx, wy,
				ps.start.X, ps.start.Y, wx-ps.last.X, wy-ps.last.Y, ps.button, mods)
		}
	}
	ps.last = Vec2{wx, wy}
}

// trackHover reports pointer movement while nothing is pressed.
func (s *Scene) trackHover(target *Node, wx, wy float64, button MouseButton, mods KeyModifiers) {
	ps := &s.pointer
	if wx != ps.last.X || wy != ps.last.Y {
		s.firePointer(EventPointerMove, target, wx, wy, button, mods)
		ps.last = Vec2{wx, wy}
	}
}

// --- Dispatch ---

// localAt resolves a world point into node-local coordinates plus the
// node's entity binding. All zeros when node is nil.
func localAt(node *Node, wx, wy float64) (lx, ly float64, entityID uint32, userData any) {
	if node == nil {
		return 0, 0, 0, nil
	}
	lx, ly = node.WorldToLocal(wx, wy)
	return lx, ly, node.EntityID, node.UserData
}

func (s *Scene) pointerContext(node *Node, wx, wy float64, button MouseButton, mods KeyModifiers) PointerContext {
	var ctx PointerContext
	ctx.Node = node
	ctx.LocalX, ctx.LocalY, ctx.EntityID, ctx.UserData = localAt(node, wx, wy)
	ctx.GlobalX, ctx.GlobalY = wx, wy
	ctx.Button, ctx.Modifiers = button, mods
	return ctx
}

func (s *Scene) dragContext(node *Node, wx, wy, startX, startY, deltaX, deltaY float64, button MouseButton, mods KeyModifiers) DragContext {
	var ctx DragContext
	ctx.Node = node
	ctx.LocalX, ctx.LocalY, ctx.EntityID, ctx.UserData = localAt(node, wx, wy)
	ctx.GlobalX, ctx.GlobalY = wx, wy
	ctx.StartX, ctx.StartY = startX, startY
	ctx.DeltaX, ctx.DeltaY = deltaX, deltaY
	ctx.Button, ctx.Modifiers = button, mods
	return ctx
}

// pointerHandler picks the node's own callback for a pointer-family event.
func (n *Node) pointerHandler(event EventType) func(PointerContext) {
	switch event {
	case EventPointerDown:
		return n.OnPointerDown
	case EventPointerUp:
		return n.OnPointerUp
	case EventPointerMove:
		return n.OnPointerMove
	case EventPointerEnter:
		return n.OnPointerEnter
	case EventPointerLeave:
		return n.OnPointerLeave
	}
	return nil
}

// dragHandler picks the node's own callback for a drag-family event.
func (n *Node) dragHandler(event EventType) func(DragContext) {
	switch event {
	case EventDragStart:
		return n.OnDragStart
	case EventDrag:
		return n.OnDrag
	case EventDragEnd:
		return n.OnDragEnd
	}
	return nil
}

// firePointer dispatches one pointer-family event: scene handlers first,
// then the node's own callback, then the entity store bridge.
func (s *Scene) firePointer(event EventType, node *Node, wx, wy float64, button MouseButton, mods KeyModifiers) {
	ctx := s.pointerContext(node, wx, wy, button, mods)
	s.handlers.pointer[event].dispatch(ctx)
	if node != nil {
		if fn := node.pointerHandler(event); fn != nil {
			fn(ctx)
		}
	}
	s.emitInteractionEvent(event, ctx.LocalX, ctx.LocalY, ctx, DragContext{})
}

// fireClick dispatches a click in the same order firePointer uses.
func (s *Scene) fireClick(node *Node, wx, wy float64, button MouseButton, mods KeyModifiers) {
	var ctx ClickContext
	ctx.Node = node
	ctx.LocalX, ctx.LocalY, ctx.EntityID, ctx.UserData = localAt(node, wx, wy)
	ctx.GlobalX, ctx.GlobalY = wx, wy
	ctx.Button, ctx.Modifiers = button, mods

	s.handlers.click[EventClick].dispatch(ctx)
	if node != nil {
		if fn := node.OnClick; fn != nil {
			fn(ctx)
		}
	}
	s.emitInteractionEvent(EventClick, ctx.LocalX, ctx.LocalY,
		PointerContext{Node: node, GlobalX: wx, GlobalY: wy, Button: button, Modifiers: mods}, DragContext{})
}

// fireDragEvent dispatches one drag-family event in the same order
// firePointer uses.
func (s *Scene) fireDragEvent(event EventType, node *Node, wx, wy, startX, startY, deltaX, deltaY float64, button MouseButton, mods KeyModifiers) {
	ctx := s.dragContext(node, wx, wy, startX, startY, deltaX, deltaY, button, mods)
	s.handlers.drag[event].dispatch(ctx)
	if node != nil {
		if fn := node.dragHandler(event); fn != nil {
			fn(ctx)
		}
	}
	s.emitInteractionEvent(event, ctx.LocalX, ctx.LocalY,
		PointerContext{Node: node, GlobalX: wx, GlobalY: wy, Button: button, Modifiers: mods}, ctx)
}

// --- Store bridge ---

// emitInteractionEvent mirrors one event into the attached entity store.
// Only nodes bound to an entity produce store events.
func (s *Scene) emitInteractionEvent(eventType EventType, lx, ly float64, p PointerContext, drag DragContext) {
	if s.store == nil || p.Node == nil || p.Node.EntityID == 0 {
		return
	}
	ev := InteractionEvent{Type: eventType, EntityID: p.Node.EntityID}
	ev.GlobalX, ev.GlobalY = p.GlobalX, p.GlobalY
	ev.LocalX, ev.LocalY = lx, ly
	ev.Button, ev.Modifiers = p.Button, p.Modifiers
	ev.StartX, ev.StartY = drag.StartX, drag.StartY
	ev.DeltaX, ev.DeltaY = drag.DeltaX, drag.DeltaY
	s.store.EmitEvent(ev)
}
