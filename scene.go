package aspen

import (
	"image"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// EntityStore receives interaction events for ECS integration. Scenes
// without a store simply skip the forwarding.
type EntityStore interface {
	EmitEvent(InteractionEvent)
}

// InteractionEvent is the flattened form of a pointer interaction handed
// to the entity store. The drag fields carry data only for the drag event
// types.
type InteractionEvent struct {
	Type             EventType
	EntityID         uint32
	GlobalX, GlobalY float64
	LocalX, LocalY   float64
	Button           MouseButton
	Modifiers        KeyModifiers
	StartX, StartY   float64
	DeltaX, DeltaY   float64
}

const initialCommandCap = 1024

// Scene owns the node tree plus everything needed to update and draw it:
// cameras, input state, and the per-frame render buffers.
type Scene struct {
	// ClearColor fills the screen before anything is drawn.
	// The zero value is opaque black on an ebiten screen.
	ClearColor Color

	// ScreenshotDir is where queued screenshots are written as PNG files.
	ScreenshotDir string

	root       *Node
	store      EntityStore
	cameras    []*Camera
	debug      bool
	updateFunc func() error

	screenshotQueue []string
	testRunner      *TestRunner

	// Render state, reused across frames to stay allocation free.
	commands   []RenderCommand
	sortBuf    []RenderCommand
	batchVerts []ebiten.Vertex
	batchInds  []uint32
	cullBounds Rect       // current camera cull bounds in world space
	cullActive bool       // whether culling applies for the current camera
	view32     [6]float32 // current camera view matrix, applied at submission

	geomRecomputed int // sprites whose vertex buffer was recomputed this frame

	// Input state
	handlers    handlerTable
	captured    *Node
	pointer     pointerState
	hitStack    []*Node
	dragSlop    float64
	injectQueue []injectedEvent
}

// NewScene creates a scene with an interactable root container.
func NewScene() *Scene {
	s := &Scene{
		root:          NewContainer("root"),
		commands:      make([]RenderCommand, 0, initialCommandCap),
		sortBuf:       make([]RenderCommand, 0, initialCommandCap),
		view32:        identityTransform32,
		dragSlop:      defaultDragDeadZone,
		ScreenshotDir: "screenshots",
	}
	s.root.Interactable = true
	return s
}

// Root returns the container at the top of the scene tree.
func (s *Scene) Root() *Node { return s.root }

// SetUpdateFunc registers a per-frame game logic callback invoked by Run
// before the scene's own update. Returning a non-nil error stops the game
// loop and Run returns that error.
func (s *Scene) SetUpdateFunc(fn func() error) { s.updateFunc = fn }

// Update advances the scene one frame: world transforms first, then
// cameras, per-node OnUpdate callbacks, the attached test runner, and
// finally input, so callbacks and hit testing always see this frame's
// positions.
func (s *Scene) Update() {
	dt := 1.0 / float64(ebiten.TPS())

	updateWorldTransform(s.root, identityTransform, 1, false)
	for _, c := range s.cameras {
		c.tick(float32(dt))
	}
	s.root.runUpdates(dt)
	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.processInput()
}

// runUpdates invokes OnUpdate across the subtree, parents before children.
func (n *Node) runUpdates(dt float64) {
	if n.OnUpdate != nil {
		n.OnUpdate(dt)
	}
	for _, c := range n.children {
		c.runUpdates(dt)
	}
}

// Draw renders the tree to the screen, once per camera. Scenes that never
// created a camera draw full screen under an identity view.
func (s *Scene) Draw(screen *ebiten.Image) {
	screen.Fill(s.ClearColor.toRGBA())

	if cams := s.cameras; len(cams) == 0 {
		s.drawView(screen, nil)
	} else {
		for _, c := range cams {
			s.drawView(viewportImage(screen, c), c)
		}
	}
	s.saveScreenshots(screen)
}

// viewportImage clips the screen to a camera's viewport rectangle.
func viewportImage(screen *ebiten.Image, cam *Camera) *ebiten.Image {
	vp := cam.Viewport
	return screen.SubImage(image.Rect(
		int(vp.X), int(vp.Y),
		int(vp.X+vp.Width), int(vp.Y+vp.Height),
	)).(*ebiten.Image)
}

// applyView loads a camera's view matrix and cull volume into the
// per-frame render state. A nil camera means identity view, no culling.
func (s *Scene) applyView(cam *Camera) {
	if cam == nil {
		s.view32, s.cullActive = identityTransform32, false
		return
	}
	s.view32, s.cullActive = affine32(cam.refreshView()), cam.CullEnabled
	if cam.CullEnabled {
		s.cullBounds = cam.VisibleBounds()
	}
}

// drawView runs the emit, sort, submit pipeline against one target.
func (s *Scene) drawView(target *ebiten.Image, cam *Camera) {
	s.commands, s.geomRecomputed = s.commands[:0], 0
	s.applyView(cam)

	timed := s.debug
	var stats frameStats
	var start time.Time
	if timed {
		start = time.Now()
	}
	mark := func(d *time.Duration) {
		if timed {
			now := time.Now()
			*d = now.Sub(start)
			start = now
		}
	}

	order := 0
	s.traverse(s.root, identityTransform, 1.0, false, &order)
	mark(&stats.traverse)

	s.mergeSort()
	mark(&stats.sort)

	s.submitBatches(target)
	mark(&stats.submit)

	if timed {
		stats.commands, stats.batches = len(s.commands), countBatches(s.commands)
		stats.recomputes = s.geomRecomputed
		s.logFrameStats(stats)
	}
}

// WorldBounds returns the aggregated world-space bounds of the whole tree.
func (s *Scene) WorldBounds() Rect {
	return s.root.Bounds()
}

// NewCamera adds a camera rendering into vp and returns it.
func (s *Scene) NewCamera(vp Rect) *Camera {
	c := newCamera(vp)
	s.cameras = append(s.cameras, c)
	return c
}

// RemoveCamera drops c from the scene. Absent cameras are a no-op.
func (s *Scene) RemoveCamera(c *Camera) {
	if i := slices.Index(s.cameras, c); i >= 0 {
		s.cameras = slices.Delete(s.cameras, i, i+1)
	}
}

// Cameras returns the scene's camera list. The returned slice MUST NOT be
// mutated.
func (s *Scene) Cameras() []*Camera { return s.cameras }

// SetEntityStore attaches the optional ECS bridge interaction events are
// forwarded to.
func (s *Scene) SetEntityStore(store EntityStore) { s.store = store }

// SetDebugMode switches debug mode on or off. While on, disposed-node
// access panics, suspicious tree shapes print warnings, and per-frame
// timing stats go to stderr.
func (s *Scene) SetDebugMode(on bool) {
	s.debug, debugMode = on, on
}

// debugMode mirrors the most recently set Scene debug flag so node
// operations, which lack a Scene pointer, can check it cheaply. Only valid
// with a single Scene; multiple Scenes with differing debug modes reflect
// whichever called SetDebugMode last.
var debugMode bool
