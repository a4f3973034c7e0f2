// Package aspen is a retained-mode 2D sprite engine for [Ebitengine].
//
// Aspen provides the scene graph, transform hierarchy, textured quad
// geometry, sprite batching, bounds aggregation, hit testing, input
// handling, and camera viewports that 2D games and tools build on.
//
// # Running a scene
//
// Call [Run] to open a window and drive the loop when you do not need
// your own [ebiten.Game]:
//
//	scene := aspen.NewScene()
//	// build the tree here
//	aspen.Run(scene, aspen.RunConfig{Title: "demo", Width: 800, Height: 600})
//
// Or keep your own game type and forward to [Scene.Update] and
// [Scene.Draw]:
//
//	type app struct{ scene *aspen.Scene }
//
//	func (a *app) Update() error              { a.scene.Update(); return nil }
//	func (a *app) Draw(screen *ebiten.Image)  { a.scene.Draw(screen) }
//	func (a *app) Layout(w, h int) (int, int) { return w, h }
//
// # The scene graph
//
// Every element is a [Node]: a transform, a child list, and an optional
// geometry capability. Nodes form a tree rooted at [Scene.Root]. Children
// inherit their parent's transform and alpha.
//
// A plain Node is a container. A [Sprite] is a Node whose geometry
// capability is a textured quad:
//
//	group := aspen.NewContainer("ui")
//	scene.Root().AddChild(group)
//
//	tex, err := atlas.Region("hero_idle")
//	if err != nil {
//		log.Fatal(err)
//	}
//	hero := aspen.NewSprite("hero", tex)
//	hero.X, hero.Y = 100, 50
//	group.AddChild(hero.Node)
//
// For solid-color rectangles, tint the shared 1x1 [WhiteTexture] and size
// the sprite:
//
//	box := aspen.NewSprite("box", aspen.WhiteTexture)
//	box.SetWidth(80)
//	box.SetHeight(40)
//	box.Color = aspen.Color{R: 0.3, G: 0.7, B: 1, A: 1}
//
// # Geometry
//
// Each sprite maintains a 16-float vertex buffer: a render quad carrying
// the world-space corners of the (possibly trimmed) texture region, and a
// bounds quad covering the full untrimmed logical size. Anchors, trim
// offsets, and the transform hierarchy all feed the same buffer, which is
// recomputed lazily and consumed directly by the batcher. World bounds
// aggregate recursively over the tree with generation-counter memoization,
// and hit testing uses the untrimmed quad with exclusive edges.
//
// Textures may resolve asynchronously: a sprite created with
// [NewPendingTexture] renders nothing and reports zero size until
// [Texture.Resolve] supplies the pixels, at which point any size set
// earlier via [Sprite.SetWidth] or [Sprite.SetHeight] is applied.
//
// # Cameras, input, and more
//
// Aspen also ships cameras with follow/scroll/zoom and viewport culling,
// TexturePacker atlas loading (trimmed and rotated frames), mouse input
// with capture and drag tracking, synthetic event injection for tests,
// property tweens built on [gween], and a [Donburi] adapter under
// aspen/ecs for ECS-driven games.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package aspen
