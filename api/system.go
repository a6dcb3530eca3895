package emucore

// SystemInfo describes an emulated machine for frontend configuration.
type SystemInfo struct {
	Name        string
	CoreName    string
	CoreVersion string
	DataDirName string

	// Unscaled guest display size used for the initial window and for
	// DPI-based restore after leaving fullscreen.
	ScreenWidth  int
	ScreenHeight int

	// Maximum framebuffer dimensions the core can publish.
	MaxScreenWidth  int
	MaxScreenHeight int
}

// CoreFactory creates producer instances and provides system metadata.
type CoreFactory interface {
	// SystemInfo returns system metadata for UI configuration.
	SystemInfo() SystemInfo

	// CreateProducer creates a new core instance bound to host. The core
	// must not call host before its first StepOnce.
	CreateProducer(host Host) (Producer, error)
}

// Host is the frontend side of a running core. All methods are called from
// the producer goroutine.
type Host interface {
	// Publish hands one completed RGBA frame to the active renderer.
	Publish(pixels []byte, stride, width, height int)

	// SetScreenSize reports a change of the guest's unscaled display size.
	SetScreenSize(width, height int)

	// MarkDirty flags durable state (NVRAM, CMOS) for the next autosave.
	MarkDirty()
}

// FramebufferSize returns the buffer size in bytes for the maximum
// framebuffer dimensions at 4 bytes per pixel.
func (s SystemInfo) FramebufferSize() int {
	w, h := s.MaxScreenWidth, s.MaxScreenHeight
	if w <= 0 {
		w = s.ScreenWidth
	}
	if h <= 0 {
		h = s.ScreenHeight
	}
	return w * h * 4
}
