package emucore

// Producer is the interface every emulation core adapter must implement to be
// driven by the video scheduler.
type Producer interface {
	// StepOnce advances emulated state by one fixed time step. Any frame
	// completed during the step is published through the video subsystem,
	// which holds the frame lock as producer for the duration of the publish.
	StepOnce()
}

// Redrawer forces the emulated display device to repaint its whole frame on
// the next step, regardless of dirty tracking.
type Redrawer interface {
	ForceRedraw()
}

// KeySink receives synthetic keyboard events for the emulated machine.
type KeySink interface {
	// KeyUp delivers a break code for the given set 1 scancode.
	KeyUp(scancode uint16)
}

// Persister enables periodic saving of durable machine state (NVRAM, CMOS).
type Persister interface {
	// SaveState writes durable state to disk. Only called when the state has
	// been marked dirty since the last save.
	SaveState() error
}

// Closer releases any resources held by the core.
type Closer interface {
	Close()
}

// Scancode for the left control key. Sent as a break code after fullscreen
// transitions so the modifier does not stay latched in the guest.
const ScancodeLeftCtrl uint16 = 0x1D
