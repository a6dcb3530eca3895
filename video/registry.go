package video

import (
	"fmt"
	"log"
	"strings"
)

// Well-known registry ids.
const (
	// FallbackID is the software renderer. It must always initialise.
	FallbackID = 0
	// DefaultID is the hardware-accelerated renderer selected by the
	// "default" and "system" names and by any unrecognised name.
	DefaultID = 1
)

// defaultConfigName is written to configuration for DefaultID so that the
// legacy "default" value round-trips.
const defaultConfigName = "default"

// aliases map legacy and sentinel configuration values to DefaultID.
var aliases = map[string]bool{
	"default": true,
	"system":  true,
	"ddraw":   true,
	"sdl":     true,
}

// fatalf terminates the process on configuration corruption. Replaced in tests.
var fatalf = log.Fatalf

// Registry is the fixed, ordered table of available backends. The index of
// a descriptor is its id. A Registry is read-only after construction.
type Registry struct {
	descs []Descriptor
}

// NewRegistry builds a registry from descs in id order. It requires both the
// fallback and the default entries to be present and names to be unique.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	if len(descs) <= DefaultID {
		return nil, fmt.Errorf("registry needs at least %d backends, got %d", DefaultID+1, len(descs))
	}

	seen := make(map[string]bool, len(descs)*2)
	for i, d := range descs {
		if d.Name == "" {
			return nil, fmt.Errorf("backend %d has no name", i)
		}
		if d.Backend == nil {
			return nil, fmt.Errorf("backend %s has no implementation", d.Name)
		}
		keys := map[string]bool{strings.ToLower(d.Name): true}
		if d.ConfigName != "" {
			keys[strings.ToLower(d.ConfigName)] = true
		}
		for key := range keys {
			if seen[key] {
				return nil, fmt.Errorf("duplicate backend name: %s", key)
			}
			seen[key] = true
		}
	}

	r := &Registry{descs: make([]Descriptor, len(descs))}
	copy(r.descs, descs)
	return r, nil
}

// Len returns the number of registered backends.
func (r *Registry) Len() int {
	return len(r.descs)
}

// ResolveByName returns the id for a configuration or display name. The
// lookup is case-insensitive and never fails: empty, unknown, and legacy
// names ("default", "system", "ddraw", "sdl") resolve to DefaultID.
func (r *Registry) ResolveByName(name string) int {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || aliases[key] {
		return DefaultID
	}

	for i, d := range r.descs {
		if strings.EqualFold(d.Name, key) || strings.EqualFold(d.ConfigName, key) {
			return i
		}
	}

	return DefaultID
}

// NameOf returns the configuration name for id. An id outside the registry
// means the configuration is corrupt and terminates the process.
func (r *Registry) NameOf(id int) string {
	if id < 0 || id >= len(r.descs) {
		fatalf("Unknown renderer: %d", id)
		return ""
	}
	if id == DefaultID {
		return defaultConfigName
	}
	d := r.descs[id]
	if d.ConfigName != "" {
		return d.ConfigName
	}
	return strings.ToLower(d.Name)
}

// Descriptor returns the descriptor for id. An out-of-range id is fatal.
func (r *Registry) Descriptor(id int) Descriptor {
	if id < 0 || id >= len(r.descs) {
		fatalf("Unknown renderer: %d", id)
		return Descriptor{}
	}
	return r.descs[id]
}

// Names returns the display names in id order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.descs))
	for i, d := range r.descs {
		names[i] = d.Name
	}
	return names
}
