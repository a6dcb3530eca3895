package standalone

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Hotkeys is the result of polling the frontend's global keys for one frame.
type Hotkeys struct {
	Fullscreen    bool // F11 or Ctrl+Alt+PgUp
	CycleRenderer bool // F8
	Screenshot    bool // F9
	StatusBar     bool // F12
	CaptureMouse  bool // left click inside the render surface
	ReleaseMouse  bool // Ctrl+End
}

// keyState abstracts Ebiten's input polling.
type keyState interface {
	KeyJustPressed(k ebiten.Key) bool
	KeyPressed(k ebiten.Key) bool
	ClickedAt() (image.Point, bool)
}

type ebitenKeys struct{}

func (ebitenKeys) KeyJustPressed(k ebiten.Key) bool { return inpututil.IsKeyJustPressed(k) }
func (ebitenKeys) KeyPressed(k ebiten.Key) bool     { return ebiten.IsKeyPressed(k) }

// ClickedAt returns the cursor position in physical pixels when the left
// button was just pressed.
func (ebitenKeys) ClickedAt() (image.Point, bool) {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return image.Point{}, false
	}
	x, y := ebiten.CursorPosition()
	return image.Pt(x, y), true
}

// InputManager polls global hotkeys. Guest keyboard input is the core's
// concern and is not handled here.
type InputManager struct {
	keys     keyState
	captured bool
}

// NewInputManager creates a new input manager
func NewInputManager() *InputManager {
	return &InputManager{keys: ebitenKeys{}}
}

// SetCaptured records the current mouse capture state.
func (im *InputManager) SetCaptured(on bool) {
	im.captured = on
}

// Update polls input state. Should be called once per frame. renderArea is
// the render surface in screen coordinates.
func (im *InputManager) Update(renderArea image.Rectangle) Hotkeys {
	k := im.keys
	ctrl := k.KeyPressed(ebiten.KeyControl)
	alt := k.KeyPressed(ebiten.KeyAlt)

	var h Hotkeys
	h.Fullscreen = k.KeyJustPressed(ebiten.KeyF11) ||
		(ctrl && alt && k.KeyJustPressed(ebiten.KeyPageUp))
	h.CycleRenderer = k.KeyJustPressed(ebiten.KeyF8)
	h.Screenshot = k.KeyJustPressed(ebiten.KeyF9)
	h.StatusBar = k.KeyJustPressed(ebiten.KeyF12)

	if im.captured {
		h.ReleaseMouse = ctrl && k.KeyJustPressed(ebiten.KeyEnd)
	} else if p, ok := k.ClickedAt(); ok && p.In(renderArea) {
		h.CaptureMouse = true
	}
	return h
}
