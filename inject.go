package trellis

// syntheticPointerEvent represents a single injected pointer event.
// Screen coordinates are used (matching what a script or test sees) and
// converted to graph coordinates by the same path as real mouse input.
type syntheticPointerEvent struct {
	screenX, screenY float64
	pressed          bool
	button           MouseButton
	mods             KeyModifiers
}

// InjectPress queues a pointer press event at the given screen coordinates
// (left button). The event is consumed on the next Tick.
func (e *Editor) InjectPress(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectMove queues a pointer move event at the given screen coordinates
// with the button held down. Use this between InjectPress and InjectRelease
// to simulate a drag.
func (e *Editor) InjectMove(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectRelease queues a pointer release event at the given screen
// coordinates.
func (e *Editor) InjectRelease(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: false,
		button:  MouseButtonLeft,
	})
}

// InjectClick is a convenience that queues a press followed by a release
// at the same screen coordinates. Consumes two ticks.
func (e *Editor) InjectClick(x, y float64) {
	e.InjectPress(x, y)
	e.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY), moves
// linearly interpolated over frames-2 ticks with the last move landing on
// (toX, toY), and a release there. The total sequence consumes `frames`
// ticks. Minimum useful frames is 3; with 2 the pointer never moves and the
// sequence degenerates to a click.
func (e *Editor) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	steps := frames - 2
	e.InjectPress(fromX, fromY)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		e.InjectMove(x, y)
	}
	e.InjectRelease(toX, toY)
}

// processInjected pops one event from the inject queue and feeds it through
// the pointer state machine. Returns true if an event was consumed (real
// mouse input should be skipped this frame).
func (e *Editor) processInjected() bool {
	if len(e.injectQueue) == 0 {
		return false
	}
	evt := e.injectQueue[0]
	copy(e.injectQueue, e.injectQueue[1:])
	e.injectQueue = e.injectQueue[:len(e.injectQueue)-1]

	e.ProcessPointer(Vec2{X: evt.screenX, Y: evt.screenY}, evt.pressed, evt.button, evt.mods)
	return true
}
