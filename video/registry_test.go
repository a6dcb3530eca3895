package video

import (
	"fmt"
	"strings"
	"testing"
)

func TestResolveByName_Aliases(t *testing.T) {
	rig := newTestRig()
	reg := rig.registry

	names := []string{"default", "system", "sdl", "ddraw", "DEFAULT", "System", "SDL", "DDraw", "", "  ", "nonexistent"}
	for _, name := range names {
		t.Run(fmt.Sprintf("%q", name), func(t *testing.T) {
			if got := reg.ResolveByName(name); got != DefaultID {
				t.Errorf("ResolveByName(%q) = %d, want %d", name, got, DefaultID)
			}
		})
	}
}

func TestResolveByName_CanonicalNames(t *testing.T) {
	reg := newTestRig().registry

	tests := []struct {
		name     string
		expected int
	}{
		{"sdl_software", 0},
		{"SDL_Software", 0},
		{"SDL_SOFTWARE", 0},
		{"sdl_hardware", 1},
		{"SDL_Hardware", 1},
		{"sdl_opengl", 2},
		{"SDL_OpenGL", 2},
		{"vnc", 3},
		{"VNC", 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := reg.ResolveByName(tc.name); got != tc.expected {
				t.Errorf("ResolveByName(%q) = %d, want %d", tc.name, got, tc.expected)
			}
		})
	}
}

func TestNameOf_RoundTrip(t *testing.T) {
	reg := newTestRig().registry

	for id := 0; id < reg.Len(); id++ {
		name := reg.NameOf(id)
		if got := reg.NameOf(reg.ResolveByName(name)); got != name {
			t.Errorf("id %d: NameOf(ResolveByName(%q)) = %q", id, name, got)
		}
		if got := reg.ResolveByName(name); got != id {
			t.Errorf("id %d: ResolveByName(%q) = %d", id, name, got)
		}
	}
}

func TestNameOf_DefaultIsLegacyName(t *testing.T) {
	reg := newTestRig().registry
	if got := reg.NameOf(DefaultID); got != "default" {
		t.Errorf("NameOf(DefaultID) = %q, want %q", got, "default")
	}
}

func TestNameOf_OutOfRangeIsFatal(t *testing.T) {
	reg := newTestRig().registry

	var msgs []string
	orig := fatalf
	fatalf = func(format string, args ...interface{}) {
		msgs = append(msgs, fmt.Sprintf(format, args...))
	}
	defer func() { fatalf = orig }()

	reg.NameOf(-1)
	reg.NameOf(reg.Len())
	reg.Descriptor(99)

	if len(msgs) != 3 {
		t.Fatalf("expected 3 fatal calls, got %d", len(msgs))
	}
	if !strings.Contains(msgs[1], "Unknown renderer: 4") {
		t.Errorf("unexpected diagnostic: %q", msgs[1])
	}
}

func TestNewRegistry_Validation(t *testing.T) {
	b := &testBackend{}

	tests := []struct {
		name  string
		descs []Descriptor
	}{
		{"empty", nil},
		{"only fallback", []Descriptor{{Name: "a", Backend: b}}},
		{"missing name", []Descriptor{{Name: "a", Backend: b}, {Backend: b}}},
		{"missing backend", []Descriptor{{Name: "a", Backend: b}, {Name: "b"}}},
		{"duplicate name", []Descriptor{{Name: "a", Backend: b}, {Name: "A", Backend: b}}},
		{"config name clash", []Descriptor{{Name: "a", ConfigName: "x", Backend: b}, {Name: "x", Backend: b}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewRegistry(tc.descs...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDescriptor_Supports(t *testing.T) {
	rig := newTestRig()
	reg := rig.registry

	tests := []struct {
		id   int
		caps []Capability
	}{
		{0, nil},
		{1, []Capability{CapResize, CapPause, CapEnable, CapFullscreen}},
		{3, []Capability{CapResize, CapPause}},
	}

	for _, tc := range tests {
		d := reg.Descriptor(tc.id)
		got := d.Capabilities()
		if len(got) != len(tc.caps) {
			t.Errorf("%s: capabilities = %v, want %v", d.Name, got, tc.caps)
			continue
		}
		for i := range got {
			if got[i] != tc.caps[i] {
				t.Errorf("%s: capabilities = %v, want %v", d.Name, got, tc.caps)
			}
		}
	}

	if (Descriptor{}).Supports(CapResize) {
		t.Error("empty descriptor should support nothing")
	}
}
