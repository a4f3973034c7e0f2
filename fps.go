package aspen

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsRedrawInterval is how often the FPS widget refreshes its readout,
// in seconds.
const fpsRedrawInterval = 0.5

// NewFPSWidget creates a sprite showing the current FPS and TPS, redrawn
// into its own small backing image with ebitenutil.DebugPrint. Run adds
// one to the scene root when RunConfig.ShowFPS is set.
func NewFPSWidget() *Sprite {
	// 104x32 fits "FPS: 60.0" and "TPS: 60.0" on two lines.
	backing := ebiten.NewImage(104, 32)

	spr := NewSpriteFromImage("fps_widget", backing)
	spr.RenderLayer = 255 // draw on top of everything

	var sinceRedraw float64
	spr.OnUpdate = func(dt float64) {
		if sinceRedraw += dt; sinceRedraw < fpsRedrawInterval {
			return
		}
		sinceRedraw = 0

		backing.Clear()
		backing.Fill(color.RGBA{0, 0, 0, 128}) // dim backdrop for readability
		ebitenutil.DebugPrint(backing, fmt.Sprintf("FPS: %.1f\nTPS: %.1f",
			ebiten.ActualFPS(), ebiten.ActualTPS()))
	}

	return spr
}
