package aspen

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window for Run.
type RunConfig struct {
	// Title is the window title.
	Title string
	// Width and Height set both the window size and the logical screen size.
	// Zero values default to 640x480.
	Width  int
	Height int
	// ShowFPS attaches an FPS/TPS widget to the scene root.
	ShowFPS bool
}

// game adapts a Scene to the ebiten.Game interface.
type game struct {
	scene  *Scene
	width  int
	height int
}

func (g *game) Update() error {
	if g.scene.updateFunc != nil {
		if err := g.scene.updateFunc(); err != nil {
			return err
		}
	}
	g.scene.Update()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// Run opens a window and drives the scene with ebiten's game loop until the
// window is closed or the scene's update function returns an error. Scenes
// can also be driven manually by embedding Update and Draw in a custom
// ebiten.Game; Run is the zero-boilerplate path.
func Run(scene *Scene, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	if cfg.ShowFPS {
		scene.Root().AddChild(NewFPSWidget().Node)
	}
	return ebiten.RunGame(&game{scene: scene, width: cfg.Width, height: cfg.Height})
}
