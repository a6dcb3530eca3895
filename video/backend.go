// Package video coordinates interchangeable rendering backends with a
// free-running frame producer.
//
// A Subsystem owns the backend registry and the frame lock. The producer
// goroutine publishes frames through Subsystem.Blit while the control
// goroutine (host UI) switches backends, resizes, and changes fullscreen
// state. The frame lock guarantees the two never interleave mid-frame.
package video

// Frame is one completed RGBA frame handed from the producer to a backend.
// Pixels is only valid for the duration of the Blit call; backends that keep
// the frame must copy it.
type Frame struct {
	Pixels []byte
	Stride int // bytes per row
	Width  int
	Height int
}

// Valid reports whether the frame has a consistent size.
func (f Frame) Valid() bool {
	if f.Width <= 0 || f.Height <= 0 || f.Stride < f.Width*4 {
		return false
	}
	return len(f.Pixels) >= f.Stride*f.Height
}

// Backend is the minimal contract every renderer implements.
type Backend interface {
	// Init opens the renderer. It may block briefly (opening a window
	// surface or a network listener); the producer stalls while it runs.
	Init() error

	// Close releases the renderer. Must be safe to call when not open.
	Close()

	// Blit consumes one published frame. Called with the frame lock held
	// by the producer.
	Blit(f Frame)
}

// Optional capabilities. A backend that does not implement one of these
// simply does not support the operation; callers go through Supports or a
// type assertion and never call through a nil.

// Resizer is implemented by backends that need to know the guest screen size.
type Resizer interface {
	Resize(width, height int)
}

// Pauser is implemented by backends that can hold the emulation (for
// example a remote framebuffer with no connected viewer). Paused is called
// from the producer goroutine without the frame lock and must be safe for
// concurrent use.
type Pauser interface {
	Paused() bool
}

// Enabler is implemented by backends that can be suspended without a full
// close/init cycle.
type Enabler interface {
	Enable(on bool)
}

// FullscreenSetter is implemented by backends that manage their own
// fullscreen presentation.
type FullscreenSetter interface {
	SetFullscreen(on bool)
}

// Capability identifies an optional backend operation.
type Capability int

const (
	CapResize Capability = iota
	CapPause
	CapEnable
	CapFullscreen
)

// String returns the capability name.
func (c Capability) String() string {
	switch c {
	case CapResize:
		return "resize"
	case CapPause:
		return "pause"
	case CapEnable:
		return "enable"
	case CapFullscreen:
		return "fullscreen"
	default:
		return "unknown"
	}
}

// Descriptor describes one registered backend.
type Descriptor struct {
	Name       string // Display name, unique (e.g. "SDL_Hardware")
	ConfigName string // Name written to configuration (e.g. "sdl_opengl")
	Local      bool   // Renders into the application window
	Backend    Backend
}

// Supports reports whether the descriptor's backend implements c.
func (d Descriptor) Supports(c Capability) bool {
	if d.Backend == nil {
		return false
	}
	var ok bool
	switch c {
	case CapResize:
		_, ok = d.Backend.(Resizer)
	case CapPause:
		_, ok = d.Backend.(Pauser)
	case CapEnable:
		_, ok = d.Backend.(Enabler)
	case CapFullscreen:
		_, ok = d.Backend.(FullscreenSetter)
	}
	return ok
}

// Capabilities returns the optional capabilities the backend implements.
func (d Descriptor) Capabilities() []Capability {
	var caps []Capability
	for _, c := range []Capability{CapResize, CapPause, CapEnable, CapFullscreen} {
		if d.Supports(c) {
			caps = append(caps, c)
		}
	}
	return caps
}
