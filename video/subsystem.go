package video

import (
	"log"
	"sync/atomic"

	emucore "github.com/SeanRamey/86Box/api"
)

// Subsystem owns the backend registry, the active backend, and the frame
// lock shared between the producer and the control goroutine.
//
// SwitchTo, SetFullscreen, SetEnabled, and RefreshKick are control-goroutine
// operations: concurrent calls to them must be serialised by the caller.
// Blit is the producer operation. RequestResize may be called from either.
type Subsystem struct {
	registry *Registry
	lock     FrameLock
	window   HostWindow
	redrawer emucore.Redrawer

	active atomic.Int32
	ready  atomic.Bool

	// Written under the consumer lock, consumed under the producer lock.
	captureFn func(Frame)
}

// NewSubsystem creates a subsystem with no ready backend. window and
// redrawer may be nil.
func NewSubsystem(registry *Registry, window HostWindow, redrawer emucore.Redrawer) *Subsystem {
	return &Subsystem{
		registry: registry,
		window:   window,
		redrawer: redrawer,
	}
}

// Registry returns the backend registry.
func (s *Subsystem) Registry() *Registry {
	return s.registry
}

// FrameLock exposes the frame lock for producers that publish outside Blit.
func (s *Subsystem) FrameLock() *FrameLock {
	return &s.lock
}

// ActiveID returns the id of the active (or last attempted) backend.
func (s *Subsystem) ActiveID() int {
	return int(s.active.Load())
}

// Active returns the descriptor of the active backend.
func (s *Subsystem) Active() Descriptor {
	return s.registry.Descriptor(s.ActiveID())
}

// Ready reports whether the active backend initialised successfully.
func (s *Subsystem) Ready() bool {
	return s.ready.Load()
}

// SwitchTo closes the active backend and initialises backend id. The frame
// lock is held across close and init, so no frame is published to a half
// torn-down backend.
//
// If init fails the error is returned and the active id is left pointing at
// the requested backend; the caller decides whether to retry or fall back.
func (s *Subsystem) SwitchTo(id int) error {
	desc := s.registry.Descriptor(id)
	log.Printf("Initializing renderer: %s (id %d)", desc.Name, id)

	s.lock.Lock(RoleConsumer)

	// Close the old backend.
	s.ready.Store(false)
	s.Active().Backend.Close()
	s.active.Store(int32(id))

	if s.window != nil {
		s.window.ShowWindow(desc.Local)
	}

	// Initialise the new backend.
	if err := desc.Backend.Init(); err != nil {
		s.lock.Unlock()
		return &BackendError{Operation: "init", Backend: desc.Name, Err: err}
	}

	s.forceRedraw()
	s.ready.Store(true)
	s.lock.Unlock()

	return nil
}

// RequestResize tells the active backend about a new guest screen size. It
// is a no-op when no backend is ready or the backend cannot resize.
func (s *Subsystem) RequestResize(width, height int) {
	if !s.ready.Load() || !s.Active().Supports(CapResize) {
		return
	}

	s.lock.Lock(RoleConsumer)
	defer s.lock.Unlock()

	if !s.ready.Load() {
		return
	}
	if r, ok := s.Active().Backend.(Resizer); ok {
		r.Resize(width, height)
	}
}

// SetEnabled suspends or resumes the active backend without a close/init
// cycle. Re-enabling forces a full redraw. No-op when unsupported.
func (s *Subsystem) SetEnabled(on bool) {
	if !s.ready.Load() {
		return
	}
	e, ok := s.Active().Backend.(Enabler)
	if !ok {
		return
	}

	s.lock.Lock(RoleConsumer)
	e.Enable(on)
	s.lock.Unlock()

	if on {
		s.forceRedraw()
	}
}

// RefreshKick disables and immediately re-enables the active backend. The
// OpenGL path needs it after a fullscreen transition to recreate its
// presentation surface; other backends treat it as a redraw.
func (s *Subsystem) RefreshKick() {
	s.SetEnabled(false)
	s.SetEnabled(true)
}

// SetFullscreen forwards a fullscreen change to the active backend when it
// manages its own fullscreen presentation.
func (s *Subsystem) SetFullscreen(on bool) {
	if !s.ready.Load() {
		return
	}
	fs, ok := s.Active().Backend.(FullscreenSetter)
	if !ok {
		return
	}

	s.lock.Lock(RoleConsumer)
	fs.SetFullscreen(on)
	s.lock.Unlock()
}

// Paused reports whether the active backend is holding the emulation.
func (s *Subsystem) Paused() bool {
	if !s.ready.Load() {
		return false
	}
	if p, ok := s.Active().Backend.(Pauser); ok {
		return p.Paused()
	}
	return false
}

// Blit publishes one frame to the active backend under the producer lock.
// Frames are dropped while no backend is ready.
func (s *Subsystem) Blit(f Frame) {
	var (
		capture func(Frame)
		shot    Frame
	)

	s.lock.Lock(RoleProducer)
	if s.ready.Load() && f.Valid() {
		s.Active().Backend.Blit(f)
		if s.captureFn != nil {
			capture = s.captureFn
			s.captureFn = nil
			shot = copyFrame(f)
		}
	}
	s.lock.Unlock()

	if capture != nil {
		capture(shot)
	}
}

// RequestCapture arranges for fn to receive a copy of the next published
// frame. fn runs on the producer goroutine after the lock is released and
// should hand heavy work (encoding, disk I/O) to another goroutine.
// Returns ErrNotReady when no backend is ready to receive frames.
func (s *Subsystem) RequestCapture(fn func(Frame)) error {
	if !s.ready.Load() {
		return ErrNotReady
	}

	s.lock.Lock(RoleConsumer)
	s.captureFn = fn
	s.lock.Unlock()

	s.forceRedraw()
	return nil
}

// Close closes the active backend. The producer must already be stopped.
func (s *Subsystem) Close() {
	s.lock.Lock(RoleConsumer)
	defer s.lock.Unlock()

	s.ready.Store(false)
	s.Active().Backend.Close()
}

func (s *Subsystem) forceRedraw() {
	if s.redrawer != nil {
		s.redrawer.ForceRedraw()
	}
}

func copyFrame(f Frame) Frame {
	n := f.Stride * f.Height
	out := f
	out.Pixels = make([]byte, n)
	copy(out.Pixels, f.Pixels[:n])
	return out
}
