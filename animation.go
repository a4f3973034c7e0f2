package aspen

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// tweenChannel eases a single float64 field toward its destination.
type tweenChannel struct {
	tw   *gween.Tween
	dest *float64
}

// channelSpec pairs a field with the value its tween should land on.
type channelSpec struct {
	field *float64
	to    float64
}

// TweenGroup drives a set of field animations on one node. Build one with
// a convenience constructor (TweenPosition, TweenScale, TweenColor,
// TweenSize, TweenAlpha, TweenRotation) and step it with Update(dt) from
// the frame loop; there is no central animation manager. Each Update
// writes the eased values back to the node and marks it dirty. A group
// whose node has been disposed finishes silently on its next Update.
type TweenGroup struct {
	channels []tweenChannel
	target   *Node
	apply    func() // runs after field writes, see TweenSize
	Done     bool
}

// newTweenGroup builds a group easing each spec's field from its current
// value to its target over dur seconds.
func newTweenGroup(target *Node, dur float32, fn ease.TweenFunc, specs ...channelSpec) *TweenGroup {
	g := &TweenGroup{target: target, channels: make([]tweenChannel, 0, len(specs))}
	for _, sp := range specs {
		g.channels = append(g.channels, tweenChannel{
			tw:   gween.New(float32(*sp.field), float32(sp.to), dur, fn),
			dest: sp.field,
		})
	}
	return g
}

// Update advances every channel by dt seconds and applies the results.
// Done flips to true once all channels have finished, or immediately if
// the target node was disposed; further calls are no-ops.
func (g *TweenGroup) Update(dt float32) {
	switch {
	case g.Done:
		return
	case g.target != nil && g.target.IsDisposed():
		g.Done = true
		return
	}

	finished := true
	for _, ch := range g.channels {
		v, done := ch.tw.Update(dt)
		*ch.dest = float64(v)
		finished = finished && done
	}
	g.Done = finished

	if g.apply != nil {
		g.apply()
	}
	if t := g.target; t != nil {
		t.MarkDirty()
	}
}

// TweenPosition eases the node's X and Y to the given coordinates over
// dur seconds.
func TweenPosition(n *Node, toX, toY float64, dur float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(n, dur, fn, channelSpec{&n.X, toX}, channelSpec{&n.Y, toY})
}

// TweenScale eases the node's ScaleX and ScaleY to the given factors.
func TweenScale(n *Node, toSX, toSY float64, dur float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(n, dur, fn, channelSpec{&n.ScaleX, toSX}, channelSpec{&n.ScaleY, toSY})
}

// TweenColor eases all four components of the sprite's Color to the
// target color.
func TweenColor(spr *Sprite, to Color, dur float32, fn ease.TweenFunc) *TweenGroup {
	c := &spr.Color
	return newTweenGroup(spr.Node, dur, fn,
		channelSpec{&c.R, to.R}, channelSpec{&c.G, to.G},
		channelSpec{&c.B, to.B}, channelSpec{&c.A, to.A})
}

// TweenSize eases a sprite's rendered width and height to the target
// values. The eased sizes go through SetWidth/SetHeight rather than the
// scale fields directly, so flip signs survive and writes against a
// texture that is still loading are deferred until it resolves.
func TweenSize(spr *Sprite, toW, toH float64, dur float32, fn ease.TweenFunc) *TweenGroup {
	w, h := spr.Width(), spr.Height()
	g := newTweenGroup(spr.Node, dur, fn, channelSpec{&w, toW}, channelSpec{&h, toH})
	g.apply = func() {
		spr.SetWidth(w)
		spr.SetHeight(h)
	}
	return g
}

// TweenAlpha eases the node's Alpha to the target value.
func TweenAlpha(n *Node, to float64, dur float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(n, dur, fn, channelSpec{&n.Alpha, to})
}

// TweenRotation eases the node's Rotation to the target angle in radians.
func TweenRotation(n *Node, to float64, dur float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(n, dur, fn, channelSpec{&n.Rotation, to})
}
