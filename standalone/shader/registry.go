package shader

import "sort"

// ShaderInfo describes an available shader effect
type ShaderInfo struct {
	ID          string // Unique identifier used in config
	Name        string // Display name
	Description string // Brief description of the effect
	Weight      int    // Higher weight = applied earlier in chain
}

// AvailableShaders lists all shaders that can be enabled
var AvailableShaders = []ShaderInfo{
	{
		ID:          "crt",
		Name:        "CRT",
		Description: "RGB separation and vignette",
		Weight:      25,
	},
	{
		ID:          "lcd",
		Name:        "LCD Grid",
		Description: "Visible pixel grid like a flat panel",
		Weight:      300,
	},
	{
		ID:          "scanlines",
		Name:        "Scanlines",
		Description: "Horizontal scanline effect aligned to guest rows",
		Weight:      400,
	},
	{
		ID:          "amber",
		Name:        "Amber Monitor",
		Description: "Monochrome amber phosphor",
		Weight:      650,
	},
	{
		ID:          "monochrome",
		Name:        "Monochrome",
		Description: "Black and white conversion",
		Weight:      700,
	},
	{
		ID:          "gamma",
		Name:        "CRT Gamma",
		Description: "Non-linear brightness curve of CRT displays",
		Weight:      900,
	},
}

var shaderWeights map[string]int

func init() {
	shaderWeights = make(map[string]int)
	for _, s := range AvailableShaders {
		shaderWeights[s.ID] = s.Weight
	}
}

// GetShaderWeight returns the weight for a shader ID (0 if unknown)
func GetShaderWeight(id string) int {
	return shaderWeights[id]
}

// IsKnown reports whether id names an available shader.
func IsKnown(id string) bool {
	_, ok := shaderWeights[id]
	return ok
}

// SortByWeight returns a copy of ids ordered by weight (descending), then ID.
// Duplicates are removed.
func SortByWeight(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		wi, wj := GetShaderWeight(out[i]), GetShaderWeight(out[j])
		if wi != wj {
			return wi > wj
		}
		return out[i] < out[j]
	})
	return out
}
