package video

import (
	"sync"
	"sync/atomic"

	emucore "github.com/SeanRamey/86Box/api"
)

// ResizeRequester accepts a deferred guest screen resize. The scheduler
// implements it and forwards the request once the window is not fullscreen.
type ResizeRequester interface {
	RequestResize(width, height int)
}

// FullscreenOptions configures the fullscreen controller.
type FullscreenOptions struct {
	// FirstTimeConfirmed suppresses the one-time fullscreen prompt.
	FirstTimeConfirmed bool
	// RememberGeometry restores the saved window rectangle on exit instead
	// of recomputing the size from the unscaled resolution.
	RememberGeometry bool
	// DPIScale scales the unscaled resolution by DPI/96 on exit.
	DPIScale bool

	UnscaledWidth  int
	UnscaledHeight int

	// OnConfirmed is called after the user confirms the first-time prompt,
	// typically to persist the flag.
	OnConfirmed func()
}

// FullscreenController runs the windowed/fullscreen state machine.
// Transitions come from the control goroutine; IsFullscreen may be read from
// any goroutine.
type FullscreenController struct {
	sub     *Subsystem
	window  HostWindow
	confirm Confirmer
	keys    emucore.KeySink
	resizer ResizeRequester
	opts    FullscreenOptions

	fullscreen atomic.Bool
	exiting    atomic.Bool
	busy       atomic.Bool

	// Guards fields updated from outside a transition.
	mu            sync.Mutex
	mouseCaptured bool
	unscaledW     int
	unscaledH     int

	// Only touched inside a transition.
	confirmed  bool
	saved      Rect
	savedValid bool
}

// NewFullscreenController creates a controller in the windowed state.
// confirm and keys may be nil.
func NewFullscreenController(sub *Subsystem, window HostWindow, confirm Confirmer, keys emucore.KeySink, opts FullscreenOptions) *FullscreenController {
	return &FullscreenController{
		sub:       sub,
		window:    window,
		confirm:   confirm,
		keys:      keys,
		opts:      opts,
		confirmed: opts.FirstTimeConfirmed,
		unscaledW: opts.UnscaledWidth,
		unscaledH: opts.UnscaledHeight,
	}
}

// SetResizeRequester sets where the post-exit guest resize is queued.
func (c *FullscreenController) SetResizeRequester(r ResizeRequester) {
	c.resizer = r
}

// IsFullscreen reports the current state. It stays true until an exit
// transition has finished restoring the window, so the scheduler does not
// forward a deferred resize against half-restored geometry.
func (c *FullscreenController) IsFullscreen() bool {
	return c.fullscreen.Load() || c.exiting.Load()
}

// FirstTimeConfirmed reports whether the first-time prompt was confirmed.
func (c *FullscreenController) FirstTimeConfirmed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.confirmed
}

// SetMouseCapture records whether the guest has captured the host mouse so
// the clip region can be restored after leaving fullscreen.
func (c *FullscreenController) SetMouseCapture(on bool) {
	c.mu.Lock()
	c.mouseCaptured = on
	c.mu.Unlock()

	if c.fullscreen.Load() {
		return
	}
	if on {
		r := c.window.RenderSurfaceRect()
		c.window.ClipCursor(&r)
	} else {
		c.window.ClipCursor(nil)
	}
}

// SetUnscaledSize records the guest's unscaled screen size, used when
// restoring the window after fullscreen.
func (c *FullscreenController) SetUnscaledSize(width, height int) {
	c.mu.Lock()
	c.unscaledW = width
	c.unscaledH = height
	c.mu.Unlock()
}

// Enter switches to fullscreen. Returns false if already fullscreen or a
// transition is in progress.
func (c *FullscreenController) Enter() bool {
	return c.Set(true)
}

// Exit returns to windowed mode. Returns false if already windowed or a
// transition is in progress.
func (c *FullscreenController) Exit() bool {
	return c.Set(false)
}

// Toggle flips the current state.
func (c *FullscreenController) Toggle() bool {
	return c.Set(!c.fullscreen.Load())
}

// Set transitions to the requested state. A request for the current state,
// or one made while another transition is running (for example from inside
// the confirmation prompt), is a no-op and returns false.
func (c *FullscreenController) Set(on bool) bool {
	if !c.busy.CompareAndSwap(false, true) {
		return false
	}
	defer c.busy.Store(false)

	if on == c.fullscreen.Load() {
		return false
	}

	if on {
		c.confirmFirstTime()
	} else {
		c.exiting.Store(true)
		defer c.exiting.Store(false)
	}

	// Release the mouse while the mode changes.
	c.window.ClipCursor(nil)

	if on {
		c.saved = c.window.WindowRect()
		c.savedValid = true
	}

	c.fullscreen.Store(on)
	c.sub.SetFullscreen(on)

	if !on {
		c.restoreWindow()
	}

	c.sub.forceRedraw()

	// Mode switches move focus around; make sure CTRL is not left latched
	// in the guest.
	if c.keys != nil {
		c.keys.KeyUp(emucore.ScancodeLeftCtrl)
	}

	c.window.SetCursorVisible(!on)

	c.sub.RefreshKick()

	return true
}

func (c *FullscreenController) confirmFirstTime() {
	c.mu.Lock()
	confirmed := c.confirmed
	c.mu.Unlock()
	if confirmed || c.confirm == nil {
		return
	}

	if !c.confirm.ConfirmOnce(PromptFullscreenFirst) {
		return
	}

	c.mu.Lock()
	c.confirmed = true
	c.mu.Unlock()

	if c.opts.OnConfirmed != nil {
		c.opts.OnConfirmed()
	}
}

// restoreWindow sizes the window, render surface, and status bar after
// leaving fullscreen, in that order.
func (c *FullscreenController) restoreWindow() {
	c.mu.Lock()
	unscaledW, unscaledH := c.unscaledW, c.unscaledH
	captured := c.mouseCaptured
	c.mu.Unlock()

	statusH := c.window.StatusBarHeight()

	var w, h int
	if c.opts.RememberGeometry && c.savedValid {
		c.window.MoveWindow(c.saved)
		w, h = c.window.ClientSize()
		h -= statusH
	} else {
		w, h = unscaledW, unscaledH
		if c.opts.DPIScale {
			dpi := c.window.DPI()
			w = mulDiv(unscaledW, dpi, BaseDPI)
			h = mulDiv(unscaledH, dpi, BaseDPI)
		}
		c.window.ResizeClientArea(w, h+statusH)
	}

	c.window.MoveRenderSurface(Rect{X: 0, Y: 0, W: w, H: h})
	c.window.MoveStatusBar(Rect{X: 0, Y: h, W: w, H: statusH})

	if captured {
		r := c.window.RenderSurfaceRect()
		c.window.ClipCursor(&r)
	}

	if c.resizer != nil {
		c.resizer.RequestResize(unscaledW, unscaledH)
	}
}
