package config

import (
	"sort"

	"github.com/san-kum/nucyield/internal/efficiency"
)

// Presets are common NaI(Tl) detector geometries, lengths in cm.
var Presets = map[string]efficiency.Geometry{
	"nai-3x3": {
		Thickness: 7.62, Gap: 1, Radius: 3.72, SourceRadius: 1,
	},
	"nai-3x3-point": {
		Thickness: 7.62, Gap: 1, Radius: 3.72,
	},
	"nai-3x3-offset": {
		Thickness: 7.62, Gap: 1, Radius: 3.72, Offset: 1.5,
	},
	"nai-3x3-far": {
		Thickness: 7.62, Gap: 10, Radius: 3.72, SourceRadius: 1,
	},
	"nai-2x2": {
		Thickness: 5.08, Gap: 1, Radius: 2.54, SourceRadius: 0.5,
	},
	"nai-2x2-point": {
		Thickness: 5.08, Gap: 1, Radius: 2.54,
	},
}

// GetPreset returns a copy of the named geometry or nil.
func GetPreset(name string) *efficiency.Geometry {
	geo, ok := Presets[name]
	if !ok {
		return nil
	}
	return &geo
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
