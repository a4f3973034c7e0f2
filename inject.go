package aspen

// injectedEvent is one frame's worth of scripted pointer input.
// Coordinates are screen-space and go through the same camera unprojection
// as the real mouse, so scripted and live input are indistinguishable to
// the scene. Useful for automation and headless interaction tests.
type injectedEvent struct {
	sx, sy  float64
	pressed bool
	button  MouseButton
}

// inject appends one synthetic left-button event to the queue.
func (s *Scene) inject(sx, sy float64, pressed bool) {
	evt := injectedEvent{sx: sx, sy: sy, pressed: pressed, button: MouseButtonLeft}
	s.injectQueue = append(s.injectQueue, evt)
}

// InjectPress queues a left-button press at the given screen coordinates.
// Queued events play back one per frame through the input pass.
func (s *Scene) InjectPress(sx, sy float64) { s.inject(sx, sy, true) }

// InjectMove queues a move with the button held down. Chain between
// InjectPress and InjectRelease to script a drag by hand; InjectDrag
// does the interpolation for you.
func (s *Scene) InjectMove(sx, sy float64) { s.inject(sx, sy, true) }

// InjectRelease queues a left-button release at the given screen coordinates.
func (s *Scene) InjectRelease(sx, sy float64) { s.inject(sx, sy, false) }

// InjectClick queues a press and a release at the same point. Takes two
// frames to play out.
func (s *Scene) InjectClick(sx, sy float64) {
	s.inject(sx, sy, true)
	s.inject(sx, sy, false)
}

// InjectDrag queues a press at (x0, y0), evenly spaced moves along the
// segment, and a release at (x1, y1), frames events in total. frames
// below 2 is raised to 2 (press and release only).
func (s *Scene) InjectDrag(x0, y0, x1, y1 float64, frames int) {
	frames = max(frames, 2)
	s.inject(x0, y0, true)
	for i := 1; i <= frames-2; i++ {
		t := float64(i) / float64(frames-1)
		s.inject(x0+(x1-x0)*t, y0+(y1-y0)*t, true)
	}
	s.inject(x1, y1, false)
}

// processInjectedInput plays back the oldest queued event, if any:
// unprojects it through cam and runs the pointer state machine on it.
// Reports whether an event was consumed; the caller skips real mouse
// input for the frame when it was.
func (s *Scene) processInjectedInput(cam *Camera, mods KeyModifiers) bool {
	queue := s.injectQueue
	if len(queue) == 0 {
		return false
	}
	evt := queue[0]
	s.injectQueue = queue[:copy(queue, queue[1:])]

	wx, wy := unproject(cam, evt.sx, evt.sy)
	s.processPointer(wx, wy, evt.pressed, evt.button, mods)
	return true
}
