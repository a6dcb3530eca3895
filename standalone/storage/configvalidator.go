package storage

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
)

func unmarshalConfig(jsonBytes []byte, config *Config) error {
	if err := json.Unmarshal(jsonBytes, config); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// detectPresentKeys returns the dotted-path keys (e.g. "video.renderer",
// "window.width") explicitly present in the JSON. Only fields with a
// non-zero default are tracked.
func detectPresentKeys(jsonBytes []byte) map[string]bool {
	present := make(map[string]bool)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonBytes, &raw); err != nil {
		return present
	}

	if _, ok := raw["version"]; ok {
		present["version"] = true
	}

	sections := map[string][]string{
		"video":  {"renderer", "dpiScale", "showStatusBar", "remoteAddr", "remotePauseIdle"},
		"window": {"width", "height"},
	}
	for section, keys := range sections {
		sectionRaw, ok := raw[section]
		if !ok {
			continue
		}
		var fields map[string]json.RawMessage
		if json.Unmarshal(sectionRaw, &fields) != nil {
			continue
		}
		for _, k := range keys {
			if _, ok := fields[k]; ok {
				present[section+"."+k] = true
			}
		}
	}

	return present
}

// ApplyMissingDefaults sets default values for config fields that are absent
// from the JSON file, preserving intentional zero values (e.g. dpiScale=false).
func ApplyMissingDefaults(config *Config, presentKeys map[string]bool) {
	defaults := DefaultConfig()

	if !presentKeys["version"] {
		config.Version = defaults.Version
	}
	if !presentKeys["video.renderer"] {
		config.Video.Renderer = defaults.Video.Renderer
	}
	if !presentKeys["video.dpiScale"] {
		config.Video.DPIScale = defaults.Video.DPIScale
	}
	if !presentKeys["video.showStatusBar"] {
		config.Video.ShowStatusBar = defaults.Video.ShowStatusBar
	}
	if !presentKeys["video.remoteAddr"] {
		config.Video.RemoteAddr = defaults.Video.RemoteAddr
	}
	if !presentKeys["video.remotePauseIdle"] {
		config.Video.RemotePauseIdle = defaults.Video.RemotePauseIdle
	}
	if !presentKeys["window.width"] {
		config.Window.Width = defaults.Window.Width
	}
	if !presentKeys["window.height"] {
		config.Window.Height = defaults.Window.Height
	}
	if config.Shaders.Effects == nil {
		config.Shaders.Effects = []string{}
	}
}

// ValidateConfig checks config fields against valid ranges and returns
// human-readable error descriptions. An empty slice means the config is valid.
// validRenderers lists the renderer names the registry accepts; an unknown
// renderer is reported here even though it would resolve to the default.
func ValidateConfig(config *Config, validRenderers []string) []string {
	var errors []string

	if config.Version != 1 {
		errors = append(errors, fmt.Sprintf("version: %d (valid: 1)", config.Version))
	}

	if !containsFold(validRenderers, config.Video.Renderer) {
		errors = append(errors, fmt.Sprintf("video.renderer: %q (valid: %v)", config.Video.Renderer, validRenderers))
	}

	if _, _, err := net.SplitHostPort(config.Video.RemoteAddr); err != nil {
		errors = append(errors, fmt.Sprintf("video.remoteAddr: %q (valid: host:port)", config.Video.RemoteAddr))
	}

	if config.Window.Width < MinWindowWidth {
		errors = append(errors, fmt.Sprintf("window.width: %d (valid: >= %d)", config.Window.Width, MinWindowWidth))
	}
	if config.Window.Height < MinWindowHeight {
		errors = append(errors, fmt.Sprintf("window.height: %d (valid: >= %d)", config.Window.Height, MinWindowHeight))
	}

	return errors
}

// CorrectConfig resets any invalid fields to their defaults from DefaultConfig().
// Valid fields are preserved.
func CorrectConfig(config *Config, validRenderers []string) *Config {
	defaults := DefaultConfig()

	if config.Version != 1 {
		config.Version = defaults.Version
	}
	if !containsFold(validRenderers, config.Video.Renderer) {
		config.Video.Renderer = defaults.Video.Renderer
	}
	if _, _, err := net.SplitHostPort(config.Video.RemoteAddr); err != nil {
		config.Video.RemoteAddr = defaults.Video.RemoteAddr
	}
	if config.Window.Width < MinWindowWidth {
		config.Window.Width = defaults.Window.Width
	}
	if config.Window.Height < MinWindowHeight {
		config.Window.Height = defaults.Window.Height
	}

	return config
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
