// Package tracer draws streamlines of the static field by walking massless
// sample points along the normalized field direction.
//
// Dynamic bodies never shape streamlines; a [Set] only ever sees the static
// charges. Tracers are disposable: whenever the static configuration or the
// mark settings change the whole set is reseeded.
package tracer

import (
	"math"

	"github.com/san-kum/fieldsim/internal/field"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

type Settings struct {
	StepDistance  float64      // meters per micro-step
	StepsPerFrame int          // micro-steps per rendered frame
	MaxSteps      int          // hard cap on a tracer's length, in micro-steps
	SeedRadius    float64      // seeds sit on a circle this far from each charge
	SinkRadius    float64      // a tracer this close to an opposite charge is finished
	MinField      float64      // |E| below this has no usable direction, N/C
	MarkSize      float64      // chevron arm length
	Bounds        vecmath.Rect // tracers leaving this box are finished
	Marks         MarkPolicy   // nil disables marks
}

func DefaultSettings() Settings {
	return Settings{
		StepDistance:  0.025,
		StepsPerFrame: 20,
		MaxSteps:      2000,
		SeedRadius:    field.ParticleRadius,
		SinkRadius:    0.025,
		MinField:      1e-9,
		MarkSize:      0.06,
		Bounds:        vecmath.Centered(16, 10),
		Marks:         DistanceMarks{Spacing: 1.0},
	}
}

// Tracer is one streamline under construction.
type Tracer struct {
	Pos  vecmath.Vec2
	Sign float64 // +1 leaves positive charges along E, -1 leaves negative ones against it

	sample   field.Sample // field at Pos, valid once sampled is set
	sampled  bool
	progress float64
	started  bool
	steps    int
	skipped  int
	done     bool
	points   []vecmath.Vec2
	marks    []vecmath.Segment
}

func New(pos vecmath.Vec2, sign float64) *Tracer {
	return &Tracer{Pos: pos, Sign: sign, points: []vecmath.Vec2{pos}}
}

func (t *Tracer) Done() bool               { return t.done }
func (t *Tracer) Steps() int               { return t.steps }
func (t *Tracer) Skipped() int             { return t.skipped }
func (t *Tracer) Points() []vecmath.Vec2   { return t.points[:len(t.points):len(t.points)] }
func (t *Tracer) Marks() []vecmath.Segment { return t.marks[:len(t.marks):len(t.marks)] }

// Step performs one micro-step against the static sources. A tracer caches
// its last sample, so statics must not change between calls; the owning
// [Set] is reseeded whenever they do.
func (t *Tracer) Step(ev field.Evaluator, statics []field.Source, cfg Settings) {
	if t.done {
		return
	}
	if cfg.MaxSteps > 0 && t.steps >= cfg.MaxSteps {
		t.done = true
		return
	}
	t.steps++

	if !t.sampled {
		t.sample = ev.Evaluate(statics, t.Pos, field.Static)
		t.sampled = true
	}
	if cfg.Marks != nil && !t.started {
		t.progress = cfg.Marks.Start(t.sample)
		t.started = true
	}
	dir, ok := t.sample.E.Unit(cfg.MinField)
	if !ok {
		t.skipped++
		return
	}
	dir = dir.Scale(t.Sign)
	t.Pos = t.Pos.Add(dir.Scale(cfg.StepDistance))
	t.points = append(t.points, t.Pos)

	// The sample at the new position decides this step's mark and steers the
	// next step, so a mark sits on the point where its level was crossed.
	t.sample = ev.Evaluate(statics, t.Pos, field.Static)
	if cfg.Marks != nil && cfg.Marks.Advance(&t.progress, cfg.StepDistance, t.sample) {
		arms := Chevron(t.Pos, dir, cfg.MarkSize)
		t.marks = append(t.marks, arms[0], arms[1])
	}

	if !cfg.Bounds.Contains(t.Pos) {
		t.done = true
		return
	}
	if sinkDistance(statics, t.Pos, t.Sign) < cfg.SinkRadius {
		t.done = true
	}
}

// sinkDistance is the distance from p to the nearest static charge a tracer
// of the given sign runs into: negative charges for sign +1, positive for -1.
func sinkDistance(statics []field.Source, p vecmath.Vec2, sign float64) float64 {
	d := math.Inf(1)
	for i := range statics {
		if polarity(statics[i].Q) != -sign {
			continue
		}
		if r := p.Dist(statics[i].Pos); r < d {
			d = r
		}
	}
	return d
}

// Streamline is the drawable state of a tracer. Slices are views shared with
// the tracer; they only ever grow, so a view stays valid.
type Streamline struct {
	Sign   float64
	Points []vecmath.Vec2
	Marks  []vecmath.Segment
	Done   bool
}

func (t *Tracer) Streamline() Streamline {
	return Streamline{Sign: t.Sign, Points: t.Points(), Marks: t.Marks(), Done: t.done}
}
