package shader

import (
	"testing"
)

func TestGetShaderWeight(t *testing.T) {
	tests := []struct {
		id       string
		expected int
	}{
		{"gamma", 900},
		{"monochrome", 700},
		{"amber", 650},
		{"scanlines", 400},
		{"lcd", 300},
		{"crt", 25},
		{"unknown", 0},
	}

	for _, tc := range tests {
		if got := GetShaderWeight(tc.id); got != tc.expected {
			t.Errorf("GetShaderWeight(%q) = %d, want %d", tc.id, got, tc.expected)
		}
	}
}

func TestAvailableShadersHaveSources(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range AvailableShaders {
		if seen[s.ID] {
			t.Errorf("duplicate shader ID %q", s.ID)
		}
		seen[s.ID] = true
		if len(shaderSources[s.ID]) == 0 {
			t.Errorf("shader %q has no source", s.ID)
		}
	}
	if len(shaderSources) != len(AvailableShaders) {
		t.Errorf("%d sources for %d shaders", len(shaderSources), len(AvailableShaders))
	}
}

func TestSortByWeight(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"empty", nil, []string{}},
		{"ordered by weight", []string{"crt", "gamma", "scanlines"}, []string{"gamma", "scanlines", "crt"}},
		{"duplicates removed", []string{"lcd", "lcd", "crt"}, []string{"lcd", "crt"}},
		{"unknown last, by name", []string{"zeta", "alpha", "crt"}, []string{"crt", "alpha", "zeta"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SortByWeight(tc.input)
			if len(got) != len(tc.expected) {
				t.Fatalf("SortByWeight(%v) = %v, want %v", tc.input, got, tc.expected)
			}
			for i := range got {
				if got[i] != tc.expected[i] {
					t.Fatalf("SortByWeight(%v) = %v, want %v", tc.input, got, tc.expected)
				}
			}
		})
	}
}

func TestManagerUnknownShader(t *testing.T) {
	m := NewManager()
	if err := m.LoadShader("nope"); err == nil {
		t.Error("expected error for unknown shader")
	}
	if err := m.Preload([]string{"nope"}); err == nil {
		t.Error("expected preload error for unknown shader")
	}
	if err := m.Preload(nil); err != nil {
		t.Errorf("empty preload: %v", err)
	}
}
