package engine

import (
	"fmt"
	"strings"

	"github.com/san-kum/fieldsim/internal/field"
	"github.com/san-kum/fieldsim/internal/tracer"
)

// MarkMode selects how direction marks are spaced along streamlines.
type MarkMode int

const (
	// MarksByDistance spaces marks by arclength (ArrowSpacing, meters).
	MarksByDistance MarkMode = iota
	// MarksByPotential places marks on equipotential crossings (VoltSpacing).
	MarksByPotential
)

func (m MarkMode) String() string {
	if m == MarksByPotential {
		return "potential"
	}
	return "distance"
}

func ParseMarkMode(s string) (MarkMode, error) {
	switch strings.ToLower(s) {
	case "", "distance":
		return MarksByDistance, nil
	case "potential", "voltage":
		return MarksByPotential, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownMarkMode, s)
}

const (
	DefaultSubsteps     = 25
	DefaultStaticCharge = 1e-7
	DefaultDensity      = 16
	DefaultArrowSpacing = 1.0
	DefaultVoltSpacing  = 200.0
	DefaultVoltCeiling  = 5000.0
)

type Settings struct {
	Substeps     int     // substeps per frame
	Guard        float64 // proximity guard, m
	StaticCharge float64 // magnitude of a unit-sign static charge, C
	Interaction  bool    // dynamic bodies feel each other

	Density       int      // tracers per static charge
	ArrowsEnabled bool
	MarkMode      MarkMode
	ArrowSpacing  float64 // m, distance mode
	VoltSpacing   float64 // V, potential mode
	VoltCeiling   float64 // |V| above which potential marks are suppressed
	Tracer        tracer.Settings
}

func DefaultSettings() Settings {
	return Settings{
		Substeps:      DefaultSubsteps,
		Guard:         field.DefaultGuard,
		StaticCharge:  DefaultStaticCharge,
		Interaction:   false,
		Density:       DefaultDensity,
		ArrowsEnabled: true,
		MarkMode:      MarksByDistance,
		ArrowSpacing:  DefaultArrowSpacing,
		VoltSpacing:   DefaultVoltSpacing,
		VoltCeiling:   DefaultVoltCeiling,
		Tracer:        tracer.DefaultSettings(),
	}
}

// markPolicy is nil when arrows are off.
func (s Settings) markPolicy() tracer.MarkPolicy {
	if !s.ArrowsEnabled {
		return nil
	}
	if s.MarkMode == MarksByPotential {
		return tracer.PotentialMarks{Spacing: s.VoltSpacing, Ceiling: s.VoltCeiling}
	}
	return tracer.DistanceMarks{Spacing: s.ArrowSpacing}
}

func (s Settings) tracerSettings() tracer.Settings {
	t := s.Tracer
	t.Marks = s.markPolicy()
	return t
}

func (s Settings) normalized() Settings {
	d := DefaultSettings()
	if s.Substeps < 1 {
		s.Substeps = d.Substeps
	}
	if s.Guard <= 0 {
		s.Guard = d.Guard
	}
	if s.StaticCharge <= 0 {
		s.StaticCharge = d.StaticCharge
	}
	if s.Density < 0 {
		s.Density = 0
	}
	if s.Tracer.StepDistance <= 0 {
		s.Tracer = d.Tracer
	}
	return s
}
