package tracer

import (
	"math"

	"github.com/san-kum/fieldsim/internal/field"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

// Seed places density tracers evenly around every static charge on a circle
// of the given radius. Each inherits the polarity of its charge; neutral
// charges get none. The result depends only on its inputs.
func Seed(statics []field.Source, density int, radius float64) []*Tracer {
	if density <= 0 {
		return nil
	}
	out := make([]*Tracer, 0, len(statics)*density)
	for _, c := range statics {
		sign := polarity(c.Q)
		if sign == 0 {
			continue
		}
		for k := 0; k < density; k++ {
			theta := 2 * math.Pi * float64(k) / float64(density)
			out = append(out, New(c.Pos.Add(vecmath.FromAngle(theta).Scale(radius)), sign))
		}
	}
	return out
}

func polarity(q float64) float64 {
	switch {
	case q > 0:
		return 1
	case q < 0:
		return -1
	}
	return 0
}

// Set is the collection of live tracers for one static configuration.
type Set struct {
	cfg     Settings
	eval    field.Evaluator
	tracers []*Tracer
}

func NewSet(cfg Settings, ev field.Evaluator) *Set {
	return &Set{cfg: cfg, eval: ev}
}

func (s *Set) Settings() Settings { return s.cfg }

// Regenerate discards every tracer and reseeds from statics.
func (s *Set) Regenerate(cfg Settings, statics []field.Source, density int) {
	s.cfg = cfg
	s.tracers = Seed(statics, density, cfg.SeedRadius)
}

func (s *Set) Clear() { s.tracers = nil }

// Advance runs StepsPerFrame micro-steps on every tracer.
func (s *Set) Advance(statics []field.Source) {
	for _, t := range s.tracers {
		for i := 0; i < s.cfg.StepsPerFrame && !t.Done(); i++ {
			t.Step(s.eval, statics, s.cfg)
		}
	}
}

func (s *Set) Tracers() []*Tracer { return s.tracers }

func (s *Set) Streamlines() []Streamline {
	out := make([]Streamline, len(s.tracers))
	for i, t := range s.tracers {
		out[i] = t.Streamline()
	}
	return out
}

// Active counts tracers that are still growing.
func (s *Set) Active() int {
	n := 0
	for _, t := range s.tracers {
		if !t.Done() {
			n++
		}
	}
	return n
}
