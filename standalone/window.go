package standalone

import (
	"image"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/SeanRamey/86Box/video"
)

// statusBarHeight is the status bar height in device-independent pixels.
const statusBarHeight = 17

// ebitenWindow implements video.HostWindow on top of Ebiten's window API.
// Rectangles are in physical pixels; Ebiten works in device-independent
// pixels, so values are converted with the monitor's scale factor.
//
// All methods run on the Ebiten goroutine except RenderArea and StatusArea,
// which Draw also calls.
type ebitenWindow struct {
	mu sync.Mutex

	scale       float64
	showStatus  bool
	renderRect  video.Rect
	statusRect  video.Rect
	surfaceOn   bool
	cursorShown bool
	clipped     bool
}

func newEbitenWindow(showStatus bool) *ebitenWindow {
	return &ebitenWindow{
		scale:       1,
		showStatus:  showStatus,
		surfaceOn:   true,
		cursorShown: true,
	}
}

func toPhysical(v int, scale float64) int {
	return int(math.Round(float64(v) * scale))
}

func toLogical(v int, scale float64) int {
	if scale <= 0 {
		return v
	}
	return int(math.Round(float64(v) / scale))
}

// splitClient divides a client area of w x h into render surface and status
// bar. The status bar is hidden in fullscreen.
func splitClient(w, h, statusH int, fullscreen bool) (render, status video.Rect) {
	if fullscreen || statusH <= 0 {
		return video.Rect{W: w, H: h}, video.Rect{Y: h, W: w}
	}
	if statusH > h {
		statusH = h
	}
	return video.Rect{W: w, H: h - statusH}, video.Rect{Y: h - statusH, W: w, H: statusH}
}

// Layout records the new client size and the scale factor. Called from
// ebiten.Game.Layout with physical pixel dimensions.
func (w *ebitenWindow) Layout(width, height int, scale float64, fullscreen bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scale = scale
	w.renderRect, w.statusRect = splitClient(width, height, w.statusHeightLocked(), fullscreen)
}

// SetStatusBarVisible shows or hides the status bar. The next Layout call
// resizes the render surface.
func (w *ebitenWindow) SetStatusBarVisible(on bool) {
	w.mu.Lock()
	w.showStatus = on
	w.mu.Unlock()
}

// StatusBarVisible reports whether the status bar is shown.
func (w *ebitenWindow) StatusBarVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.showStatus
}

// SurfaceVisible reports whether the render surface is shown.
func (w *ebitenWindow) SurfaceVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.surfaceOn
}

// RenderArea returns the render surface in screen image coordinates.
func (w *ebitenWindow) RenderArea() image.Rectangle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return rectToImage(w.renderRect)
}

// StatusArea returns the status bar in screen image coordinates.
func (w *ebitenWindow) StatusArea() image.Rectangle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return rectToImage(w.statusRect)
}

func rectToImage(r video.Rect) image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

func (w *ebitenWindow) ShowWindow(visible bool) {
	w.mu.Lock()
	w.surfaceOn = visible
	w.mu.Unlock()

	if !visible {
		ebiten.MinimizeWindow()
		return
	}
	if ebiten.IsWindowMinimized() {
		ebiten.RestoreWindow()
	}
}

func (w *ebitenWindow) currentScale() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scale
}

func (w *ebitenWindow) WindowRect() video.Rect {
	s := w.currentScale()
	x, y := ebiten.WindowPosition()
	width, height := ebiten.WindowSize()
	return video.Rect{
		X: toPhysical(x, s),
		Y: toPhysical(y, s),
		W: toPhysical(width, s),
		H: toPhysical(height, s),
	}
}

func (w *ebitenWindow) MoveWindow(r video.Rect) {
	s := w.currentScale()
	ebiten.SetWindowPosition(toLogical(r.X, s), toLogical(r.Y, s))
	ebiten.SetWindowSize(toLogical(r.W, s), toLogical(r.H, s))
}

// ClientSize returns the client area. Ebiten windows have no frame inside
// the reported size, so this is the window size.
func (w *ebitenWindow) ClientSize() (int, int) {
	s := w.currentScale()
	width, height := ebiten.WindowSize()
	return toPhysical(width, s), toPhysical(height, s)
}

func (w *ebitenWindow) ResizeClientArea(width, height int) {
	s := w.currentScale()
	ebiten.SetWindowSize(toLogical(width, s), toLogical(height, s))
}

func (w *ebitenWindow) MoveRenderSurface(r video.Rect) {
	w.mu.Lock()
	w.renderRect = r
	w.mu.Unlock()
}

func (w *ebitenWindow) RenderSurfaceRect() video.Rect {
	win := w.WindowRect()
	w.mu.Lock()
	defer w.mu.Unlock()
	return video.Rect{
		X: win.X + w.renderRect.X,
		Y: win.Y + w.renderRect.Y,
		W: w.renderRect.W,
		H: w.renderRect.H,
	}
}

func (w *ebitenWindow) MoveStatusBar(r video.Rect) {
	w.mu.Lock()
	w.statusRect = r
	w.mu.Unlock()
}

func (w *ebitenWindow) StatusBarHeight() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.statusHeightLocked()
}

func (w *ebitenWindow) statusHeightLocked() int {
	if !w.showStatus {
		return 0
	}
	return toPhysical(statusBarHeight, w.scale)
}

func (w *ebitenWindow) SetCursorVisible(visible bool) {
	w.mu.Lock()
	w.cursorShown = visible
	w.mu.Unlock()
	w.applyCursor()
}

// ClipCursor captures the cursor while r is set. Ebiten can only confine
// the cursor to the whole window, which here is the render surface plus
// the status bar.
func (w *ebitenWindow) ClipCursor(r *video.Rect) {
	w.mu.Lock()
	w.clipped = r != nil
	w.mu.Unlock()
	w.applyCursor()
}

func (w *ebitenWindow) applyCursor() {
	w.mu.Lock()
	mode := cursorMode(w.cursorShown, w.clipped)
	w.mu.Unlock()
	ebiten.SetCursorMode(mode)
}

func cursorMode(visible, clipped bool) ebiten.CursorModeType {
	switch {
	case clipped:
		return ebiten.CursorModeCaptured
	case !visible:
		return ebiten.CursorModeHidden
	default:
		return ebiten.CursorModeVisible
	}
}

func (w *ebitenWindow) DPI() int {
	return int(math.Round(w.currentScale() * video.BaseDPI))
}

// deviceScale returns the monitor's device scale factor, or 1 before the
// window exists.
func deviceScale() float64 {
	if m := ebiten.Monitor(); m != nil {
		return m.DeviceScaleFactor()
	}
	return 1
}
