package arbor

type syntheticKind uint8

const (
	syntheticPointer syntheticKind = iota
	syntheticWheel
	syntheticAction
)

// syntheticEvent is a single injected input event. Pointer events use
// screen coordinates, exactly like real mouse input.
type syntheticEvent struct {
	kind             syntheticKind
	screenX, screenY float64
	pressed          bool
	button           MouseButton
	wheel            float64
	action           Action
	mods             KeyModifiers
}

// InjectPress queues a left-button press at the given screen coordinates.
// The event is consumed on the next frame's Update.
func (v *View) InjectPress(x, y float64) {
	v.injectQueue = append(v.injectQueue, syntheticEvent{
		kind:    syntheticPointer,
		screenX: x, screenY: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectMove queues a pointer move with the button held down. Use it
// between InjectPress and InjectRelease to simulate a drag.
func (v *View) InjectMove(x, y float64) {
	v.InjectPress(x, y)
}

// InjectHover queues a pointer move with no button held.
func (v *View) InjectHover(x, y float64) {
	v.injectQueue = append(v.injectQueue, syntheticEvent{
		kind:    syntheticPointer,
		screenX: x, screenY: y,
	})
}

// InjectRelease queues a pointer release at the given screen coordinates.
func (v *View) InjectRelease(x, y float64) {
	v.injectQueue = append(v.injectQueue, syntheticEvent{
		kind:    syntheticPointer,
		screenX: x, screenY: y,
		pressed: false,
		button:  MouseButtonLeft,
	})
}

// InjectClick queues a press followed by a release at the same screen
// coordinates. Consumes two frames.
func (v *View) InjectClick(x, y float64) {
	v.InjectClickWithModifiers(x, y, 0)
}

// InjectClickWithModifiers is InjectClick with modifier keys held.
func (v *View) InjectClickWithModifiers(x, y float64, mods KeyModifiers) {
	v.injectQueue = append(v.injectQueue,
		syntheticEvent{kind: syntheticPointer, screenX: x, screenY: y, pressed: true, button: MouseButtonLeft, mods: mods},
		syntheticEvent{kind: syntheticPointer, screenX: x, screenY: y, button: MouseButtonLeft, mods: mods},
	)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate frames, and
// release at (toX, toY). The total sequence consumes frames frames.
// Minimum frames is 2 (press + release).
func (v *View) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	v.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		v.InjectMove(x, y)
	}
	v.InjectRelease(toX, toY)
}

// InjectWheel queues a wheel delta in pixels, positive scrolling down.
func (v *View) InjectWheel(dy float64) {
	v.InjectWheelWithModifiers(dy, 0)
}

// InjectWheelWithModifiers queues a wheel delta with modifier keys held.
func (v *View) InjectWheelWithModifiers(dy float64, mods KeyModifiers) {
	v.injectQueue = append(v.injectQueue, syntheticEvent{kind: syntheticWheel, wheel: dy, mods: mods})
}

// InjectAction queues a key action.
func (v *View) InjectAction(a Action) {
	v.injectQueue = append(v.injectQueue, syntheticEvent{kind: syntheticAction, action: a})
}

// processInjectedInput pops one event from the inject queue and feeds it
// through the same handlers as real input. Returns true if an event was
// consumed (real input is skipped for the frame).
func (v *View) processInjectedInput() bool {
	if len(v.injectQueue) == 0 {
		return false
	}
	evt := v.injectQueue[0]
	copy(v.injectQueue, v.injectQueue[1:])
	v.injectQueue = v.injectQueue[:len(v.injectQueue)-1]

	switch evt.kind {
	case syntheticPointer:
		v.processPointer(evt.screenX, evt.screenY, evt.pressed, evt.button, evt.mods)
	case syntheticWheel:
		v.processWheel(evt.wheel, evt.mods)
	case syntheticAction:
		v.applyAction(evt.action)
	}
	return true
}
