package aspen

import (
	"encoding/json"
	"fmt"
)

// scriptStep is one scripted action; which fields matter depends on Action.
// The JSON keys (action, label, x, fromX, ...) bind case-insensitively, so
// the fields carry no tags.
type scriptStep struct {
	Action       string
	Label        string
	X, Y         float64
	FromX, FromY float64
	ToX, ToY     float64
	Frames       int
}

// actions maps script action names to their executors. Unknown names fall
// through to a no-op so old engines skip steps they do not know.
var actions = map[string]func(r *TestRunner, s *Scene, a scriptStep){
	"screenshot": func(_ *TestRunner, s *Scene, a scriptStep) { s.Screenshot(a.Label) },
	"click":      func(_ *TestRunner, s *Scene, a scriptStep) { s.InjectClick(a.X, a.Y) },
	"drag": func(_ *TestRunner, s *Scene, a scriptStep) {
		// InjectDrag raises too-small frame counts to press + release.
		s.InjectDrag(a.FromX, a.FromY, a.ToX, a.ToY, a.Frames)
	},
	"wait": func(r *TestRunner, _ *Scene, a scriptStep) {
		if a.Frames > 0 {
			r.wait = a.Frames - 1 // the frame running the action is the first
		}
	},
}

// TestRunner plays a JSON-scripted sequence of pointer input and
// screenshots against a scene, at most one action per frame, so visual
// tests can run without a human at the mouse. Attach with SetTestRunner;
// the scene steps the runner at the start of every update.
type TestRunner struct {
	steps    []scriptStep
	next     int
	wait     int
	finished bool
}

// LoadTestScript parses a JSON script into a runner. Scripts with no
// steps are rejected.
func LoadTestScript(data []byte) (*TestRunner, error) {
	var body struct {
		Steps []scriptStep
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("aspen: parse test script: %w", err)
	}
	if len(body.Steps) == 0 {
		return nil, fmt.Errorf("aspen: parse test script: no steps")
	}
	return &TestRunner{steps: body.Steps}, nil
}

// SetTestRunner attaches a runner to the scene. Scene.Update steps it
// before input processing each frame. Pass nil to detach.
func (s *Scene) SetTestRunner(r *TestRunner) { s.testRunner = r }

// Done reports whether the script has fully played out.
func (r *TestRunner) Done() bool { return r.finished }

// step advances the script by at most one action. Events queued by a
// previous action drain first, one per frame, then pending waits burn
// down, and only then does the next action run.
func (r *TestRunner) step(s *Scene) {
	if r.finished || len(s.injectQueue) > 0 {
		return
	}
	if r.wait > 0 {
		r.wait--
		return
	}
	if r.next >= len(r.steps) {
		r.finished = true
		return
	}

	a := r.steps[r.next]
	r.next++
	if run := actions[a.Action]; run != nil {
		run(r, s, a)
	}

	// The last action may leave injections or waits behind that keep the
	// runner alive a few more frames; if not, finish right away.
	r.finished = r.next >= len(r.steps) && r.wait == 0 && len(s.injectQueue) == 0
}
