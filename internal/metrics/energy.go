package metrics

import (
	"math"

	"github.com/san-kum/fieldsim/internal/engine"
)

// Energy tracks the total kinetic energy of the dynamic bodies, frame by
// frame. Value is the mean over observed frames.
type Energy struct {
	name    string
	samples int
	total   float64
	history []float64
}

func NewEnergy() *Energy {
	return &Energy{name: "kinetic_energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s *engine.Snapshot) {
	e.total += s.KineticEnergy
	e.samples++
	e.history = append(e.history, s.KineticEnergy)
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

// History is the per-frame kinetic energy, oldest first.
func (e *Energy) History() []float64 { return e.history }

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
	e.history = e.history[:0]
}

// PeakEnergy is the largest kinetic energy seen in any frame.
type PeakEnergy struct {
	name string
	peak float64
}

func NewPeakEnergy() *PeakEnergy {
	return &PeakEnergy{name: "peak_kinetic_energy"}
}

func (p *PeakEnergy) Name() string { return p.name }

func (p *PeakEnergy) Observe(s *engine.Snapshot) {
	p.peak = math.Max(p.peak, s.KineticEnergy)
}

func (p *PeakEnergy) Value() float64 { return p.peak }

func (p *PeakEnergy) Reset() { p.peak = 0 }
