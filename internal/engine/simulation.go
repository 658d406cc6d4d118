package engine

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/san-kum/fieldsim/internal/body"
	"github.com/san-kum/fieldsim/internal/field"
	"github.com/san-kum/fieldsim/internal/tracer"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

// StaticCharge is a fixed point source. It never moves.
type StaticCharge struct {
	Pos vecmath.Vec2
	Q   float64
}

// Metric observes every published snapshot.
type Metric interface {
	Name() string
	Observe(s *Snapshot)
	Value() float64
	Reset()
}

type Options struct {
	Settings Settings
	Logger   *log.Logger
}

// Simulation is the whole mutable state of one session.
type Simulation struct {
	settings Settings
	eval     field.Evaluator
	log      *log.Logger

	statics []StaticCharge
	sources []field.Source // statics as evaluator sources
	bodies  []body.Body
	nextID  body.ID

	tracers *tracer.Set
	metrics []Metric

	frame   int
	time    float64
	removed []Removal

	// per-frame scratch
	alive   []bool
	scratch []field.Source
}

func New(opts Options) *Simulation {
	st := opts.Settings.normalized()
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ev := field.NewEvaluator(st.Guard)
	return &Simulation{
		settings: st,
		eval:     ev,
		log:      logger,
		nextID:   1,
		tracers:  tracer.NewSet(st.tracerSettings(), ev),
	}
}

func (s *Simulation) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }

func (s *Simulation) Settings() Settings         { return s.settings }
func (s *Simulation) Evaluator() field.Evaluator { return s.eval }
func (s *Simulation) Frame() int                 { return s.frame }
func (s *Simulation) Time() float64              { return s.time }

// AddStaticCharge places a static charge of sign × Settings.StaticCharge and
// reseeds the tracers.
func (s *Simulation) AddStaticCharge(x, y, sign float64) StaticCharge {
	c := StaticCharge{Pos: vecmath.V(x, y), Q: sign * s.settings.StaticCharge}
	s.statics = append(s.statics, c)
	s.sources = append(s.sources, field.Source{Pos: c.Pos, Q: c.Q, Owner: field.Static})
	s.regenerate("static charge added")
	return c
}

// AddDynamicBody spawns a body. Parameters left at zero take the body
// package defaults. Only an unknown kind is rejected.
func (s *Simulation) AddDynamicBody(kind body.Kind, x, y float64, p body.Params) (body.ID, error) {
	b, err := body.New(s.nextID, kind, x, y, p)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
	s.nextID++
	s.bodies = append(s.bodies, b)
	return b.ID(), nil
}

func (s *Simulation) ClearStatics() {
	s.statics = nil
	s.sources = nil
	s.regenerate("statics cleared")
}

// ClearDynamics removes every dynamic body. Streamlines only follow static
// charges, so they keep growing where they were.
func (s *Simulation) ClearDynamics() {
	s.bodies = nil
	s.log.Debug("dynamics cleared")
}

func (s *Simulation) ClearAll() {
	s.statics = nil
	s.sources = nil
	s.bodies = nil
	s.regenerate("all cleared")
}

// ResetTracers reseeds the streamlines without touching charges or bodies.
func (s *Simulation) ResetTracers() { s.regenerate("tracers reset") }

// SetTracerDensity sets tracers per static charge. Reseeds.
func (s *Simulation) SetTracerDensity(n int) {
	if n < 0 {
		n = 0
	}
	s.settings.Density = n
	s.regenerate("density changed")
}

// SetArrowSpacing sets the spacing of the active mark mode: meters by
// distance, volts by potential. Reseeds.
func (s *Simulation) SetArrowSpacing(v float64) {
	if s.settings.MarkMode == MarksByPotential {
		s.settings.VoltSpacing = v
	} else {
		s.settings.ArrowSpacing = v
	}
	s.regenerate("arrow spacing changed")
}

// SetArrowsEnabled toggles direction marks. Reseeds.
func (s *Simulation) SetArrowsEnabled(on bool) {
	s.settings.ArrowsEnabled = on
	s.regenerate("arrows toggled")
}

// SetMarkMode switches between distance and potential marks. Reseeds.
func (s *Simulation) SetMarkMode(m MarkMode) {
	s.settings.MarkMode = m
	s.regenerate("mark mode changed")
}

// SetDynamicInteraction toggles body-to-body forces. Streamlines only reflect
// static charges, so this does not reseed.
func (s *Simulation) SetDynamicInteraction(on bool) {
	s.settings.Interaction = on
}

func (s *Simulation) regenerate(reason string) {
	s.tracers.Regenerate(s.settings.tracerSettings(), s.sources, s.settings.Density)
	s.log.Debug("tracers reseeded", "reason", reason, "charges", len(s.statics), "tracers", len(s.tracers.Tracers()))
}

// Probe samples the field at (x, y) from static charges and every body.
func (s *Simulation) Probe(x, y float64) field.Sample {
	src := append([]field.Source(nil), s.sources...)
	for _, b := range s.bodies {
		src = b.Charges(src)
	}
	return s.eval.Evaluate(src, vecmath.V(x, y), field.Static)
}

func (s *Simulation) Statics() []StaticCharge {
	return s.statics[:len(s.statics):len(s.statics)]
}

func (s *Simulation) Bodies() []body.Pose {
	out := make([]body.Pose, len(s.bodies))
	for i, b := range s.bodies {
		out[i] = b.Pose()
	}
	return out
}

func (s *Simulation) NumBodies() int { return len(s.bodies) }

// ActiveTracers is the number of streamlines still growing.
func (s *Simulation) ActiveTracers() int { return s.tracers.Active() }
