package trellis

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

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

// Update is the per-frame entry point for applications driving the editor
// from an ebiten game loop. It advances viewport animation, consumes
// injected input, and otherwise reads the real mouse, wheel, and keyboard
// state. Headless code (tests, scripts) calls Tick and ProcessPointer
// directly instead.
func (e *Editor) Update() {
	dt := float32(1.0 / float64(ebiten.TPS()))
	injected := e.Tick(dt)

	mods := readModifiers()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		e.CancelDrag()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDelete) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		if !e.pointer.down {
			e.DeleteSelection()
		}
	}

	if injected {
		return
	}

	mx, my := ebiten.CursorPosition()
	screen := Vec2{X: float64(mx), Y: float64(my)}

	if _, dy := ebiten.Wheel(); dy != 0 {
		e.Scroll(dy, screen)
	}

	// Detect which button is pressed. If the pointer is already down, the
	// button captured at press time stays in effect for the interaction.
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

	e.ProcessPointer(screen, pressed, button, mods)
}
