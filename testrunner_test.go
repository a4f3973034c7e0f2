package aspen

import (
	"slices"
	"testing"
)

// script parses an inline script body, failing the test on error.
func script(t *testing.T, body string) *TestRunner {
	t.Helper()
	r, err := LoadTestScript([]byte(body))
	if err != nil {
		t.Fatalf("LoadTestScript: %v", err)
	}
	return r
}

// scripted builds a bare scene with the parsed script already attached.
func scripted(t *testing.T, body string) (*Scene, *TestRunner) {
	t.Helper()
	s := NewScene()
	r := script(t, body)
	s.SetTestRunner(r)
	return s, r
}

func TestLoadTestScriptParsesSteps(t *testing.T) {
	r := script(t, `{"steps": [
		{"action": "screenshot", "label": "start"},
		{"action": "click", "x": 120, "y": 80},
		{"action": "wait", "frames": 2},
		{"action": "screenshot", "label": "finish"}
	]}`)

	want := []scriptStep{
		{Action: "screenshot", Label: "start"},
		{Action: "click", X: 120, Y: 80},
		{Action: "wait", Frames: 2},
		{Action: "screenshot", Label: "finish"},
	}
	if !slices.Equal(r.steps, want) {
		t.Errorf("steps = %+v, want %+v", r.steps, want)
	}
}

func TestLoadTestScriptRejects(t *testing.T) {
	tests := []struct{ name, body string }{
		{"malformed JSON", `not json`},
		{"no steps", `{"steps": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadTestScript([]byte(tt.body)); err == nil {
				t.Error("LoadTestScript succeeded, want an error")
			}
		})
	}
}

func TestRunnerClickDrainsBeforeFinish(t *testing.T) {
	s, r := scripted(t, `{"steps": [{"action": "click", "x": 60, "y": 40}]}`)
	addInteractive(s, "pad", 200, 200)
	refreshWorld(s)

	// A click queues a press and a release, one frame apart.
	r.step(s)
	if n := len(s.injectQueue); n != 2 {
		t.Fatalf("queued events = %d, want 2", n)
	}
	if r.Done() {
		t.Error("runner finished with injections still queued")
	}

	for range 2 {
		s.processInput()
	}
	r.step(s)
	if !r.Done() {
		t.Error("runner should finish once the queue drained")
	}
}

func TestRunnerWaitCountsFrames(t *testing.T) {
	s, r := scripted(t, `{"steps": [
		{"action": "wait", "frames": 4},
		{"action": "screenshot", "label": "settled"}
	]}`)

	// Four frames of waiting, then the screenshot runs on the fifth.
	for i := range 4 {
		r.step(s)
		if r.Done() {
			t.Fatalf("done after %d frames, should still wait", i+1)
		}
	}
	r.step(s)
	if !r.Done() {
		t.Error("runner should finish after the screenshot step")
	}
	if got := s.screenshotQueue; len(got) != 1 || got[0] != "settled" {
		t.Errorf("screenshot queue = %v, want [settled]", got)
	}
}

func TestRunnerDragQueuesFrames(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{
			"five frame drag",
			`{"steps": [{"action": "drag", "fromX": 12, "fromY": 12, "toX": 180, "toY": 220, "frames": 5}]}`,
			5,
		},
		{
			"frameless drag still presses and releases",
			`{"steps": [{"action": "drag", "fromX": 0, "fromY": 0, "toX": 96, "toY": 96}]}`,
			2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, r := scripted(t, tt.body)
			r.step(s)
			if n := len(s.injectQueue); n != tt.want {
				t.Fatalf("queued events = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestRunnerSkipsUnknownActions(t *testing.T) {
	s, r := scripted(t, `{"steps": [
		{"action": "teleport", "x": 1, "y": 2},
		{"action": "screenshot", "label": "rest"}
	]}`)

	r.step(s)
	if r.Done() {
		t.Error("skipping an unknown action must not end the script")
	}

	r.step(s)
	if !r.Done() {
		t.Error("runner should finish after the remaining steps")
	}
	if got := s.screenshotQueue; len(got) != 1 || got[0] != "rest" {
		t.Errorf("screenshot queue = %v, want [rest]", got)
	}
}

func TestRunnerDoneLifecycle(t *testing.T) {
	s, r := scripted(t, `{"steps": [{"action": "screenshot", "label": "solo"}]}`)

	if r.Done() {
		t.Error("runner done before any steps ran")
	}
	r.step(s)
	if !r.Done() {
		t.Error("runner should be done after its single step")
	}
}

func TestRunnerHoldsCursorWhileQueueBusy(t *testing.T) {
	s, r := scripted(t, `{"steps": [
		{"action": "click", "x": 30, "y": 70},
		{"action": "screenshot", "label": "later"}
	]}`)

	r.step(s)
	if n := len(s.injectQueue); n != 2 {
		t.Fatalf("queued events = %d, want 2", n)
	}

	r.step(s)
	if r.next != 1 {
		t.Errorf("next step = %d with the queue busy, want 1", r.next)
	}

	s.injectQueue = nil
	r.step(s)
	if got := s.screenshotQueue; len(got) != 1 || got[0] != "later" {
		t.Errorf("screenshot queue = %v, want [later]", got)
	}
	if !r.Done() {
		t.Error("runner should be done")
	}
}

func TestSceneUpdateStepsRunner(t *testing.T) {
	s, r := scripted(t, `{"steps": [{"action": "screenshot", "label": "tick"}]}`)

	s.Update()

	if !r.Done() {
		t.Error("Scene.Update should step the attached runner")
	}
	if n := len(s.screenshotQueue); n != 1 {
		t.Errorf("screenshot queue len = %d, want 1", n)
	}
}
