package arbor

import (
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Action is a camera command bound to a key.
type Action uint8

const (
	ActionNone Action = iota
	ActionRotateCCW
	ActionRotateCW
	ActionPanUp
	ActionPanDown
	ActionPanLeft
	ActionPanRight
	ActionZoomIn
	ActionZoomOut
	ActionReset
)

// keyBinding maps a key to an action. Name is the key's script name.
type keyBinding struct {
	key    ebiten.Key
	name   string
	action Action
}

var keyBindings = [...]keyBinding{
	{ebiten.KeyQ, "q", ActionRotateCCW},
	{ebiten.KeyE, "e", ActionRotateCW},
	{ebiten.KeyW, "w", ActionPanUp},
	{ebiten.KeyS, "s", ActionPanDown},
	{ebiten.KeyA, "a", ActionPanLeft},
	{ebiten.KeyD, "d", ActionPanRight},
	{ebiten.KeyR, "r", ActionZoomIn},
	{ebiten.KeyF, "f", ActionZoomOut},
	{ebiten.KeyT, "t", ActionReset},
}

// ActionForKey returns the action bound to a key name such as "q" or "T".
func ActionForKey(name string) Action {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, b := range keyBindings {
		if b.name == name {
			return b.action
		}
	}
	return ActionNone
}

// Held keys repeat after keyRepeatDelay ticks, every keyRepeatInterval ticks.
const (
	keyRepeatDelay    = 15
	keyRepeatInterval = 3
)

// wheelLineHeight converts one wheel notch into the pixel delta the zoom and
// rotation normalizations expect.
const wheelLineHeight = 4

// --- Per-pointer state ---

type pointerState struct {
	down     bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	dragging bool
	button   MouseButton // button captured at press time
	mods     KeyModifiers
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

// processInput is called from Update to handle keyboard, wheel and pointer
// input. Injected events take precedence over real input for the frame.
func (v *View) processInput() {
	if v.processInjectedInput() {
		return
	}
	v.processKeys()
	mods := readModifiers()
	if _, dy := ebiten.Wheel(); dy != 0 {
		v.processWheel(-dy*wheelLineHeight, mods)
	}
	v.processMousePointer(mods)
}

// processKeys applies the action of every bound key that was just pressed
// or is auto-repeating.
func (v *View) processKeys() {
	for _, b := range keyBindings {
		d := inpututil.KeyPressDuration(b.key)
		if d == 1 || (d >= keyRepeatDelay && (d-keyRepeatDelay)%keyRepeatInterval == 0) {
			v.applyAction(b.action)
		}
	}
}

// applyAction mutates the camera for a key action.
func (v *View) applyAction(a Action) {
	ctl := v.cfg.Controls
	deg := ctl.RotateStep * math.Pi / 180
	switch a {
	case ActionRotateCCW:
		v.camera.Rotate(-deg)
	case ActionRotateCW:
		v.camera.Rotate(deg)
	case ActionPanUp:
		v.camera.Translate(0, ctl.PanStep, v.canvasW, v.canvasH)
	case ActionPanDown:
		v.camera.Translate(0, -ctl.PanStep, v.canvasW, v.canvasH)
	case ActionPanLeft:
		v.camera.Translate(ctl.PanStep, 0, v.canvasW, v.canvasH)
	case ActionPanRight:
		v.camera.Translate(-ctl.PanStep, 0, v.canvasW, v.canvasH)
	case ActionZoomIn:
		v.camera.ScaleBy(1 + ctl.ZoomStep)
	case ActionZoomOut:
		v.camera.ScaleBy(1 - ctl.ZoomStep)
	case ActionReset:
		v.camera.ResetTransformations()
	}
}

// processWheel handles a wheel delta in pixels, positive scrolling down.
// While the pointer is held or Shift is down the wheel rotates; otherwise it
// zooms.
func (v *View) processWheel(dy float64, mods KeyModifiers) {
	ctl := v.cfg.Controls
	if v.pointer.down || mods&ModShift != 0 {
		v.camera.Rotate(dy / ctl.RotationNormalization * math.Pi / 180)
		return
	}
	v.camera.ScaleBy(math.Max(MinScaleFactor, 1-dy/ctl.ZoomNormalization))
}

// processMousePointer feeds the mouse into the pointer state machine.
func (v *View) processMousePointer(mods KeyModifiers) {
	mx, my := ebiten.CursorPosition()

	// If the pointer is already down, keep the stored button.
	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		pressed = true
		if left {
			button = MouseButtonLeft
		} else if right {
			button = MouseButtonRight
		} else {
			button = MouseButtonMiddle
		}
	}
	v.processPointer(float64(mx), float64(my), pressed, button, mods)
}

// processPointer runs the pointer state machine on screen coordinates.
// Dragging pans the camera by the pointer delta; a left press released
// without dragging is a click. Modifiers are captured at press time.
func (v *View) processPointer(sx, sy float64, pressed bool, button MouseButton, mods KeyModifiers) {
	ps := &v.pointer

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.button = button
		ps.mods = mods
		ps.startX, ps.startY = sx, sy
		ps.lastX, ps.lastY = sx, sy
		ps.dragging = false

	case !pressed && ps.down:
		if ps.dragging {
			v.camera.Translate(sx-ps.lastX, sy-ps.lastY, v.canvasW, v.canvasH)
		} else if ps.button == MouseButtonLeft {
			v.click(sx, sy, ps.mods)
		}
		ps.down = false
		ps.dragging = false
		ps.lastX, ps.lastY = sx, sy

	case pressed && ps.down:
		if sx != ps.lastX || sy != ps.lastY {
			if !ps.dragging && math.Hypot(sx-ps.startX, sy-ps.startY) > v.cfg.Controls.DragThreshold {
				ps.dragging = true
				// Catch up with the travel inside the threshold.
				ps.lastX, ps.lastY = ps.startX, ps.startY
			}
			if ps.dragging {
				v.camera.Translate(sx-ps.lastX, sy-ps.lastY, v.canvasW, v.canvasH)
			}
		}
		if ps.dragging {
			ps.lastX, ps.lastY = sx, sy
		}

	default:
		if sx != ps.lastX || sy != ps.lastY {
			v.hover(sx, sy)
			ps.lastX, ps.lastY = sx, sy
		}
	}
}

// click selects the node under the pointer, if any. With Ctrl held the
// camera focuses the node and the selection is left alone. Clicks are
// ignored while the scene on screen belongs to a replaced tree.
func (v *View) click(sx, sy float64, mods KeyModifiers) {
	n := v.PickScreen(sx, sy)
	if n == nil {
		return
	}
	if v.sceneStale() {
		Logger().Debug("click on stale scene ignored", "node", n.ID)
		return
	}
	Logger().Debug("click", "node", n.ID, "label", n.Label, "ctrl", mods&ModCtrl != 0)
	if mods&ModCtrl != 0 {
		v.Focus(n.ID)
		return
	}
	v.Select(n.ID)
}

// hover updates the tooltip for the node under the pointer.
func (v *View) hover(sx, sy float64) {
	n := v.PickScreen(sx, sy)
	if n == nil {
		v.tooltip = tooltip{}
		return
	}
	if !v.tooltip.active || v.tooltip.node != n.ID {
		v.tooltip = tooltip{active: true, node: n.ID, label: n.Label, x: sx, y: sy}
	}
}

// Tooltip returns the hover label and its anchor, if one is showing.
func (v *View) Tooltip() (label string, x, y float64, ok bool) {
	t := v.tooltip
	return t.label, t.x, t.y, t.active
}
