package instrument

import (
	"fmt"

	"github.com/probelab/pal/object"
)

// defaultKnobs mirrors the instrument settings a script can reassign.
// Writes to these names are picked up by the VarListener and reflected
// on the settings object.
func defaultKnobs() map[string]object.Value {
	return map[string]object.Value{
		"num_groups":          object.NewNumber(5),
		"minima":              object.NewNumber(0),
		"maxima":              object.NewNumber(255),
		"threshold_inversion": object.False,
		"epsilon":             object.NewNumber(2.5),
		"minimum_samples":     object.NewNumber(4),
		"algorithm":           object.NewAlgorithm("Euclidean"),
		"square":              object.True,
		"power":               object.NewNumber(2),
		"size":                object.NewNumber(16),
		"size_match":          object.NewNumber(80),
		"overlap":             object.NewNumber(10),
		"match":               object.NewNumber(75),
		"padding":             object.NewNumber(4),
		"scan_resolution":     object.NewNumber(1024),
	}
}

// buildGlobals assembles the full pre-seeded surface: image and
// pattern natives, enums, the settings object, the session identity
// paths, and one global per settings knob.
func (b *Bench) buildGlobals() {
	globals := map[string]object.Value{}
	for name, value := range b.imageNatives() {
		globals[name] = value
		b.reserved[name] = true
	}
	for name, value := range b.patternNatives() {
		globals[name] = value
		b.reserved[name] = true
	}

	enums := map[string]map[string]float64{
		"Channel": {
			"Electron":  0,
			"Ion":       1,
			"Spectrum":  2,
			"Composite": 3,
		},
		"Direction": {
			"Horizontal": 0,
			"Vertical":   1,
			"Diagonal":   2,
		},
		"Trigger": {
			"Manual":    0,
			"Timed":     1,
			"Threshold": 2,
		},
	}
	for name, members := range enums {
		globals[name] = object.NewNativeEnum(name, members)
		b.reserved[name] = true
	}

	b.settings = object.NewNativeObject("settings", b)
	for name, value := range defaultKnobs() {
		b.knobs[name] = value
		b.settings.SetField(name, value)
		globals[name] = value
	}
	globals["settings"] = b.settings
	b.reserved["settings"] = true

	globals["session"] = object.NewPath(fmt.Sprintf("sessions/%s", b.sessionID))
	globals["sample"] = object.NewPath(fmt.Sprintf("sessions/%s/samples/%s", b.sessionID, b.sampleID))
	b.reserved["session"] = true
	b.reserved["sample"] = true

	b.globals = globals
}
