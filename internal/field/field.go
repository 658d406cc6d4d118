// Package field evaluates the electrostatic field and potential of a set of
// point charges at a query point.
//
// Evaluation is stateless: callers pass the source set on every call and the
// evaluator only borrows it. The evaluator never divides by a zero distance,
// so samples are always finite; callers decide what to do with a source that
// sits inside the proximity guard by looking at [Sample.Nearest].
package field

import (
	"math"

	"github.com/san-kum/fieldsim/internal/vecmath"
)

// K is the Coulomb constant in N·m²/C².
const K = 8.99e9

const (
	// ParticleRadius is the drawn radius of every charge, in meters.
	ParticleRadius = 0.05
	// DefaultGuard is the proximity guard: closer than this to a source and
	// integration halts.
	DefaultGuard = 2 * ParticleRadius
)

// Owner identifies who a charge location belongs to. Static charges use
// Static; dynamic bodies use their body ID (never zero).
type Owner uint32

const Static Owner = 0

// Source is a charge location: a point charge at a position, tagged with the
// body it belongs to.
type Source struct {
	Pos   vecmath.Vec2
	Q     float64
	Owner Owner
}

// Sample is the result of one evaluation.
type Sample struct {
	E       vecmath.Vec2 // net field, N/C
	V       float64      // net potential, V
	Nearest float64      // distance to the closest source evaluated, m
}

// Evaluator applies the exclusion rules for a given proximity guard.
type Evaluator struct {
	Guard float64
}

func NewEvaluator(guard float64) Evaluator {
	if guard <= 0 {
		guard = DefaultGuard
	}
	return Evaluator{Guard: guard}
}

// Evaluate sums the contributions of sources at p.
//
// Sources owned by self are skipped entirely. Sources owned by another body
// that are inside the guard are left out of the sums but still counted in
// Nearest. Static sources always contribute unless they coincide with p.
// Pass Static as self when the query point belongs to no body.
func (ev Evaluator) Evaluate(sources []Source, p vecmath.Vec2, self Owner) Sample {
	s := Sample{Nearest: math.Inf(1)}
	for i := range sources {
		src := &sources[i]
		if self != Static && src.Owner == self {
			continue
		}
		r := p.Sub(src.Pos)
		dist := r.Len()
		if dist < s.Nearest {
			s.Nearest = dist
		}
		if dist == 0 {
			continue
		}
		if src.Owner != Static && dist < ev.Guard {
			continue
		}
		v := K * src.Q / dist
		s.V += v
		s.E = s.E.Add(r.Scale(v / (dist * dist)))
	}
	return s
}

// Field is Evaluate without the potential or distance, for static queries.
func (ev Evaluator) Field(sources []Source, p vecmath.Vec2) vecmath.Vec2 {
	return ev.Evaluate(sources, p, Static).E
}

func (ev Evaluator) Potential(sources []Source, p vecmath.Vec2) float64 {
	return ev.Evaluate(sources, p, Static).V
}

// TooClose reports whether the sample tripped the proximity guard.
func (ev Evaluator) TooClose(s Sample) bool {
	return s.Nearest < ev.Guard
}

// Force on a charge q sitting in field e.
func Force(q float64, e vecmath.Vec2) vecmath.Vec2 {
	return e.Scale(q)
}
