package video

// Rect is a window-space rectangle.
type Rect struct {
	X, Y int
	W, H int
}

// HostWindow is the host windowing surface the controllers drive. The
// application window consists of a render surface with a status bar below it.
type HostWindow interface {
	// ShowWindow shows or hides the render surface. Remote backends render
	// off-host, so the surface is hidden while one is active.
	ShowWindow(visible bool)

	// WindowRect returns the outer window rectangle in screen coordinates.
	WindowRect() Rect
	// MoveWindow moves and sizes the outer window.
	MoveWindow(r Rect)
	// ClientSize returns the size of the window's client area.
	ClientSize() (width, height int)
	// ResizeClientArea resizes the window so its client area is width x height.
	ResizeClientArea(width, height int)

	// MoveRenderSurface positions the render surface inside the client area.
	MoveRenderSurface(r Rect)
	// RenderSurfaceRect returns the render surface rectangle in screen
	// coordinates, suitable for cursor clipping.
	RenderSurfaceRect() Rect
	// MoveStatusBar positions the status bar inside the client area.
	MoveStatusBar(r Rect)
	// StatusBarHeight returns the status bar height in pixels (0 if hidden).
	StatusBarHeight() int

	// SetCursorVisible shows or hides the host cursor.
	SetCursorVisible(visible bool)
	// ClipCursor confines the cursor to r, or releases it when r is nil.
	ClipCursor(r *Rect)

	// DPI returns the window's current DPI (96 at 100% scale).
	DPI() int
}

// Confirmer asks the user a yes/no question. The call is synchronous.
type Confirmer interface {
	// ConfirmOnce shows the prompt identified by promptID and returns true
	// when the user asks not to be prompted again.
	ConfirmOnce(promptID string) bool
}

// Prompt identifiers.
const (
	PromptFullscreenFirst = "fullscreen.first"
)

// BaseDPI is the DPI at 100% scaling.
const BaseDPI = 96

// mulDiv returns a*b/c rounded to the nearest integer.
func mulDiv(a, b, c int) int {
	if c == 0 {
		return 0
	}
	n := a * b
	if (n < 0) != (c < 0) {
		return (n - c/2) / c
	}
	return (n + c/2) / c
}
