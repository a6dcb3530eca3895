package storage

// Config represents the application configuration stored in config.json
type Config struct {
	Version int          `json:"version"`
	Video   VideoConfig  `json:"video"`
	Window  WindowConfig `json:"window"`
	Shaders ShaderConfig `json:"shaders"`
}

// VideoConfig contains renderer selection and presentation settings
type VideoConfig struct {
	Renderer            string `json:"renderer"`            // Renderer config name; "default" selects the hardware renderer
	DPIScale            bool   `json:"dpiScale"`            // Scale the restored window by monitor DPI
	RememberWindow      bool   `json:"rememberWindow"`      // Restore the pre-fullscreen window rectangle on exit
	FullscreenConfirmed bool   `json:"fullscreenConfirmed"` // First-time fullscreen prompt answered "don't ask again"
	ShowStatusBar       bool   `json:"showStatusBar"`
	RemoteAddr          string `json:"remoteAddr"`      // Listen address for the remote framebuffer renderer
	RemotePauseIdle     bool   `json:"remotePauseIdle"` // Hold emulation while no remote viewer is connected
}

// ShaderConfig contains shader effect settings for the GPU shader renderer
type ShaderConfig struct {
	Effects []string `json:"effects"` // Shader IDs, applied in weight order
}

// WindowConfig contains window position and size
type WindowConfig struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	X          *int `json:"x,omitempty"` // nil = OS decides position
	Y          *int `json:"y,omitempty"`
	Fullscreen bool `json:"fullscreen"`
}

// Window size limits in device-independent pixels.
const (
	MinWindowWidth  = 320
	MinWindowHeight = 200
)

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Video: VideoConfig{
			Renderer:        "default",
			DPIScale:        true,
			RememberWindow:  false,
			ShowStatusBar:   true,
			RemoteAddr:      "127.0.0.1:5900",
			RemotePauseIdle: true,
		},
		Window: WindowConfig{
			Width:  640,
			Height: 497,
			X:      nil,
			Y:      nil,
		},
		Shaders: ShaderConfig{
			Effects: []string{},
		},
	}
}
