// sprites10k drifts 10,000 glowing sparks across the screen, each one
// spinning, pulsing, and fading on its own clock. A stress test for the
// Aspen rendering pipeline: every spark shares one texture, so the whole
// scene submits as a single batch.
package main

import (
	"log"
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/aspen"
)

const (
	screenW   = 1600
	screenH   = 900
	numSparks = 10_000
	texSize   = 64
	margin    = 48 // how far past the edge a spark may drift before wrapping
)

// palette tints sparks in a few hue bands instead of uniform noise.
var palette = []aspen.Color{
	{R: 1, G: 0.85, B: 0.6, A: 1},
	{R: 0.6, G: 0.8, B: 1, A: 1},
	{R: 1, G: 0.6, B: 0.75, A: 1},
	{R: 0.7, G: 1, B: 0.8, A: 1},
}

type spark struct {
	node   *aspen.Node
	vx, vy float64 // drift, px/s
	spin   float64 // rad/s
	pulse  float64 // scale oscillation rate, rad/s
	fade   float64 // alpha oscillation rate, rad/s
	base   float64 // resting scale
	seed   float64 // phase offset so the swarm desyncs
}

// makeGlow renders the shared texture: a soft radial falloff, premultiplied
// so the default blend composites it cleanly at any tint.
func makeGlow() *ebiten.Image {
	pix := make([]byte, texSize*texSize*4)
	c := float64(texSize-1) / 2
	for y := range texSize {
		for x := range texSize {
			d := math.Hypot(float64(x)-c, float64(y)-c) / c
			v := math.Max(0, 1-d)
			v *= v
			i := (y*texSize + x) * 4
			pix[i+0] = uint8(210 * v)
			pix[i+1] = uint8(225 * v)
			pix[i+2] = uint8(255 * v)
			pix[i+3] = uint8(255 * v)
		}
	}
	img := ebiten.NewImage(texSize, texSize)
	img.WritePixels(pix)
	return img
}

// wrap teleports v to the far side once it leaves [lo, hi].
func wrap(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return hi
	case v > hi:
		return lo
	}
	return v
}

func main() {
	scene := aspen.NewScene()
	scene.ClearColor = aspen.Color{R: 0.04, G: 0.05, B: 0.1, A: 1}

	// One texture for every spark keeps the batcher on a single draw call.
	tex := aspen.NewTexture(makeGlow())

	// Fixed seed: every run shows the same swarm, which makes FPS numbers
	// comparable between engine changes.
	rnd := rand.New(rand.NewPCG(7, 1))

	sparks := make([]spark, numSparks)
	for i := range sparks {
		sp := aspen.NewSprite("spark", tex)
		sp.SetAnchor(0.5, 0.5)
		sp.Node.X = rnd.Float64() * screenW
		sp.Node.Y = rnd.Float64() * screenH
		sp.Color = palette[rnd.IntN(len(palette))]
		scene.Root().AddChild(sp.Node)

		heading := rnd.Float64() * 2 * math.Pi
		speed := 20 + rnd.Float64()*70
		sparks[i] = spark{
			node:  sp.Node,
			vx:    math.Cos(heading) * speed,
			vy:    math.Sin(heading) * speed,
			spin:  (rnd.Float64() - 0.5) * 3,
			pulse: 1 + rnd.Float64()*3,
			fade:  0.5 + rnd.Float64()*2.5,
			base:  0.3 + rnd.Float64()*0.5,
			seed:  rnd.Float64() * 2 * math.Pi,
		}
	}

	const dt = 1.0 / 60
	var elapsed float64

	scene.SetUpdateFunc(func() error {
		elapsed += dt
		for i := range sparks {
			k := &sparks[i]
			n := k.node

			n.X = wrap(n.X+k.vx*dt, -margin, screenW+margin)
			n.Y = wrap(n.Y+k.vy*dt, -margin, screenH+margin)
			n.Rotation += k.spin * dt

			s := k.base * (1 + 0.25*math.Sin(elapsed*k.pulse+k.seed))
			n.ScaleX, n.ScaleY = s, s
			n.Alpha = 0.65 + 0.35*math.Cos(elapsed*k.fade+k.seed)
			n.MarkDirty()
		}
		return nil
	})

	cfg := aspen.RunConfig{Title: "aspen: 10k sprites", Width: screenW, Height: screenH, ShowFPS: true}
	if err := aspen.Run(scene, cfg); err != nil {
		log.Fatal(err)
	}
}
