package tracer

import (
	"math"

	"github.com/san-kum/fieldsim/internal/field"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

// MarkPolicy decides where direction marks go along a streamline. It keeps
// its progress in a single scalar owned by the tracer.
type MarkPolicy interface {
	// Start returns the initial progress for a tracer whose seed sample is s.
	Start(s field.Sample) float64
	// Advance updates progress after a micro-step that travelled dist and
	// ended where the field sample is s, and reports whether a mark is due
	// at that end point.
	Advance(progress *float64, dist float64, s field.Sample) bool
}

// DistanceMarks places a mark every Spacing meters of arclength. The
// accumulator is reduced by Spacing rather than zeroed so marks keep their
// phase regardless of step size.
type DistanceMarks struct {
	Spacing float64
}

// relative slack so that n steps of d land on n*d despite rounding
const spacingTolerance = 1e-9

func (m DistanceMarks) Start(field.Sample) float64 { return 0 }

func (m DistanceMarks) Advance(progress *float64, dist float64, _ field.Sample) bool {
	if m.Spacing <= 0 {
		return false
	}
	*progress += dist
	due := false
	for *progress >= m.Spacing*(1-spacingTolerance) {
		*progress -= m.Spacing
		due = true
	}
	return due
}

// PotentialMarks places a mark whenever the potential crosses a multiple of
// Spacing volts, except where |V| exceeds Ceiling.
type PotentialMarks struct {
	Spacing float64
	Ceiling float64
}

func (m PotentialMarks) Start(s field.Sample) float64 { return s.V }

func (m PotentialMarks) Advance(progress *float64, _ float64, s field.Sample) bool {
	prev := *progress
	*progress = s.V
	if m.Spacing <= 0 || math.Abs(s.V) > m.Ceiling {
		return false
	}
	return math.Floor(prev/m.Spacing) != math.Floor(s.V/m.Spacing)
}

const markHalfAngle = math.Pi / 6

// Chevron returns the two arms of an arrowhead at pos pointing along dir.
func Chevron(pos, dir vecmath.Vec2, size float64) [2]vecmath.Segment {
	back := dir.Scale(-math.Cos(markHalfAngle) * size)
	side := dir.Perp().Scale(math.Sin(markHalfAngle) * size)
	return [2]vecmath.Segment{
		{A: pos, B: pos.Add(back).Add(side)},
		{A: pos, B: pos.Add(back).Sub(side)},
	}
}
