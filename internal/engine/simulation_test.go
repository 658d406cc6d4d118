package engine_test

import (
	"bytes"
	"errors"
	"math"

	"github.com/charmbracelet/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fieldsim/internal/body"
	"github.com/san-kum/fieldsim/internal/engine"
	"github.com/san-kum/fieldsim/internal/field"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

const frameDt = 1.0 / 30

func finitePose(p body.Pose) bool {
	return p.Pos.IsFinite() && p.Vel.IsFinite() &&
		!math.IsNaN(p.Angle) && !math.IsInf(p.Angle, 0) &&
		!math.IsNaN(p.Omega) && !math.IsInf(p.Omega, 0)
}

var _ = Describe("Simulation", func() {
	var sim *engine.Simulation

	BeforeEach(func() {
		sim = engine.New(engine.Options{Settings: engine.DefaultSettings()})
	})

	Describe("commands", func() {
		It("scales static charges by the configured magnitude", func() {
			c := sim.AddStaticCharge(1, 2, -1)
			Expect(c.Q).To(Equal(-engine.DefaultStaticCharge))
			Expect(c.Pos).To(Equal(vecmath.V(1, 2)))
			Expect(sim.Statics()).To(HaveLen(1))
		})

		It("reseeds tracers when the static set changes", func() {
			sim.AddStaticCharge(0, 0, 1)
			Expect(sim.Snapshot().Streamlines).To(HaveLen(engine.DefaultDensity))
			sim.AddStaticCharge(1, 0, -1)
			Expect(sim.Snapshot().Streamlines).To(HaveLen(2 * engine.DefaultDensity))
			sim.ClearStatics()
			Expect(sim.Snapshot().Streamlines).To(BeEmpty())
		})

		It("reseeds tracers on density, spacing and arrow changes", func() {
			sim.AddStaticCharge(0, 0, 1)
			sim.StepFrame(frameDt)
			Expect(sim.Snapshot().Streamlines[0].Points).To(HaveLen(21))

			sim.SetTracerDensity(5)
			snap := sim.Snapshot()
			Expect(snap.Streamlines).To(HaveLen(5))
			Expect(snap.Streamlines[0].Points).To(HaveLen(1))

			sim.StepFrame(frameDt)
			sim.SetArrowSpacing(0.5)
			Expect(sim.Snapshot().Streamlines[0].Points).To(HaveLen(1))
			Expect(sim.Settings().ArrowSpacing).To(Equal(0.5))

			sim.StepFrame(frameDt)
			sim.SetArrowsEnabled(false)
			Expect(sim.Snapshot().Streamlines[0].Points).To(HaveLen(1))
		})

		It("keeps streamline progress when dynamics are cleared", func() {
			sim.AddStaticCharge(0, 0, 1)
			_, err := sim.AddDynamicBody(body.KindPoint, 3, 3, body.Params{})
			Expect(err).NotTo(HaveOccurred())
			sim.StepFrame(frameDt)
			before := len(sim.Snapshot().Streamlines[0].Points)
			Expect(before).To(BeNumerically(">", 1))

			sim.ClearDynamics()
			snap := sim.Snapshot()
			Expect(snap.Bodies).To(BeEmpty())
			Expect(snap.Streamlines[0].Points).To(HaveLen(before))
		})

		It("does not reseed when toggling body interaction", func() {
			sim.AddStaticCharge(0, 0, 1)
			sim.StepFrame(frameDt)
			sim.SetDynamicInteraction(true)
			Expect(sim.Snapshot().Streamlines[0].Points).To(HaveLen(21))
			Expect(sim.Settings().Interaction).To(BeTrue())
		})

		It("routes arrow spacing to the active mark mode", func() {
			sim.SetMarkMode(engine.MarksByPotential)
			sim.SetArrowSpacing(50)
			Expect(sim.Settings().VoltSpacing).To(Equal(50.0))
			Expect(sim.Settings().ArrowSpacing).To(Equal(engine.DefaultArrowSpacing))
		})

		It("assigns distinct non-static ids", func() {
			a, err := sim.AddDynamicBody(body.KindPoint, 0, 0, body.Params{})
			Expect(err).NotTo(HaveOccurred())
			b, err := sim.AddDynamicBody(body.KindDipole, 1, 0, body.Params{})
			Expect(err).NotTo(HaveOccurred())
			Expect(a).NotTo(Equal(field.Static))
			Expect(b).NotTo(Equal(a))
			Expect(sim.NumBodies()).To(Equal(2))
		})

		It("rejects unknown kinds", func() {
			_, err := sim.AddDynamicBody(body.Kind(42), 0, 0, body.Params{})
			Expect(errors.Is(err, engine.ErrUnknownKind)).To(BeTrue())
			Expect(sim.NumBodies()).To(BeZero())
		})

		It("clears each collection independently", func() {
			sim.AddStaticCharge(0, 0, 1)
			_, _ = sim.AddDynamicBody(body.KindPoint, 3, 3, body.Params{})

			sim.ClearDynamics()
			Expect(sim.NumBodies()).To(BeZero())
			Expect(sim.Statics()).To(HaveLen(1))

			_, _ = sim.AddDynamicBody(body.KindPoint, 3, 3, body.Params{})
			sim.ClearStatics()
			Expect(sim.NumBodies()).To(Equal(1))
			Expect(sim.Statics()).To(BeEmpty())

			sim.AddStaticCharge(0, 0, 1)
			sim.ClearAll()
			Expect(sim.NumBodies()).To(BeZero())
			Expect(sim.Statics()).To(BeEmpty())
			Expect(sim.Snapshot().Streamlines).To(BeEmpty())
		})
	})

	Describe("StepFrame", func() {
		It("accelerates a body released between opposite charges along their axis", func() {
			sim.AddStaticCharge(-1, 0, 1)
			sim.AddStaticCharge(1, 0, -1)
			_, err := sim.AddDynamicBody(body.KindPoint, 0, 0, body.Params{Charge: 1e-6, Mass: 1e-3})
			Expect(err).NotTo(HaveOccurred())

			snap := sim.StepFrame(frameDt)
			Expect(snap.Bodies).To(HaveLen(1))
			p := snap.Bodies[0]
			Expect(p.Vel.X).To(BeNumerically(">", 0))
			Expect(p.Vel.Y).To(BeZero())
			Expect(p.Pos.Y).To(BeZero())
			Expect(snap.KineticEnergy).To(BeNumerically(">", 0))
		})

		It("removes a body spawned inside the guard within one frame", func() {
			sim.AddStaticCharge(0, 0, 1)
			id, _ := sim.AddDynamicBody(body.KindPoint, field.DefaultGuard/2, 0, body.Params{})

			snap := sim.StepFrame(frameDt)
			Expect(snap.Bodies).To(BeEmpty())
			Expect(snap.Removed).To(HaveLen(1))
			Expect(snap.Removed[0].Pose.ID).To(Equal(id))
			Expect(errors.Is(snap.Removed[0].Err, body.ErrSingularity)).To(BeTrue())

			var re *body.RemovalError
			Expect(errors.As(snap.Removed[0].Err, &re)).To(BeTrue())
			Expect(re.Frame).To(Equal(1))
			Expect(re.Substep).To(Equal(0))
		})

		It("keeps the trajectory finite until a falling body is removed", func() {
			sim.AddStaticCharge(0, 0, 1)
			_, _ = sim.AddDynamicBody(body.KindPoint, 0.5, 0, body.Params{Charge: -1e-6, Mass: 1e-3})

			removed := false
			for i := 0; i < 300 && !removed; i++ {
				snap := sim.StepFrame(frameDt)
				for _, p := range snap.Bodies {
					Expect(finitePose(p)).To(BeTrue())
				}
				for _, r := range snap.Removed {
					Expect(finitePose(r.Pose)).To(BeTrue())
					removed = true
				}
			}
			Expect(removed).To(BeTrue())
			Expect(sim.NumBodies()).To(BeZero())

			sim.StepFrame(frameDt)
			Expect(sim.NumBodies()).To(BeZero(), "removal is permanent")
		})

		It("removes a dipole when either pole enters the guard", func() {
			sim.AddStaticCharge(0, 0, 1)
			_, _ = sim.AddDynamicBody(body.KindDipole, 0.2, 0, body.Params{Spacing: 0.3})

			snap := sim.StepFrame(frameDt)
			Expect(snap.Bodies).To(BeEmpty())
			Expect(snap.Removed).To(HaveLen(1))
			Expect(snap.Removed[0].Pose.Kind).To(Equal(body.KindDipole))
		})

		It("leaves a dipole far from every charge at rest", func() {
			sim.AddStaticCharge(0, 0, 1)
			_, _ = sim.AddDynamicBody(body.KindDipole, 1e8, 1e8, body.Params{Angle: 0.4})

			var snap engine.Snapshot
			for i := 0; i < 10; i++ {
				snap = sim.StepFrame(frameDt)
			}
			p := snap.Bodies[0]
			Expect(p.Vel.Len()).To(BeNumerically("<", 1e-12))
			Expect(math.Abs(p.Omega)).To(BeNumerically("<", 1e-12))
			Expect(p.Angle).To(BeNumerically("~", 0.4, 1e-9))
		})

		It("keeps surviving bodies in order after a removal", func() {
			sim.AddStaticCharge(0, 0, 1)
			a, _ := sim.AddDynamicBody(body.KindPoint, 3, 0, body.Params{})
			_, _ = sim.AddDynamicBody(body.KindPoint, 0.01, 0, body.Params{})
			c, _ := sim.AddDynamicBody(body.KindPoint, -3, 0, body.Params{})

			snap := sim.StepFrame(frameDt)
			Expect(snap.Bodies).To(HaveLen(2))
			Expect(snap.Bodies[0].ID).To(Equal(a))
			Expect(snap.Bodies[1].ID).To(Equal(c))

			snap = sim.StepFrame(frameDt)
			Expect(snap.Removed).To(BeEmpty())
		})

		It("only couples bodies when interaction is enabled", func() {
			run := func(interact bool) vecmath.Vec2 {
				s := engine.New(engine.Options{Settings: engine.DefaultSettings()})
				s.SetDynamicInteraction(interact)
				_, _ = s.AddDynamicBody(body.KindPoint, -0.5, 0, body.Params{Charge: 1e-6, Mass: 1e-3})
				_, _ = s.AddDynamicBody(body.KindPoint, 0.5, 0, body.Params{Charge: -1e-6, Mass: 1e-3})
				snap := s.StepFrame(frameDt)
				return snap.Bodies[0].Vel
			}

			Expect(run(false)).To(Equal(vecmath.Vec2{}))
			v := run(true)
			Expect(v.X).To(BeNumerically(">", 0), "opposite charges attract")
			Expect(v.Y).To(BeZero())
		})

		It("integrates pairs symmetrically regardless of slice order", func() {
			settings := engine.DefaultSettings()
			settings.Interaction = true
			s := engine.New(engine.Options{Settings: settings})
			_, _ = s.AddDynamicBody(body.KindPoint, -0.5, 0, body.Params{Charge: 1e-6, Mass: 1e-3})
			_, _ = s.AddDynamicBody(body.KindPoint, 0.5, 0, body.Params{Charge: 1e-6, Mass: 1e-3})

			snap := s.StepFrame(frameDt)
			Expect(snap.Bodies[0].Vel.X).To(Equal(-snap.Bodies[1].Vel.X))
			Expect(snap.Bodies[0].Pos.X).To(Equal(-snap.Bodies[1].Pos.X))
		})

		It("is reproducible", func() {
			build := func() *engine.Simulation {
				settings := engine.DefaultSettings()
				settings.Interaction = true
				s := engine.New(engine.Options{Settings: settings})
				s.AddStaticCharge(-1, 0.3, 1)
				s.AddStaticCharge(1.2, -0.4, -1)
				_, _ = s.AddDynamicBody(body.KindPoint, 0, 1, body.Params{})
				_, _ = s.AddDynamicBody(body.KindDipole, 0.5, -1, body.Params{Angle: 1})
				_, _ = s.AddDynamicBody(body.KindPoint, -0.4, -0.8, body.Params{Charge: -1e-6})
				return s
			}

			a, b := build(), build()
			for i := 0; i < 30; i++ {
				sa, sb := a.StepFrame(frameDt), b.StepFrame(frameDt)
				Expect(sa.Bodies).To(Equal(sb.Bodies))
			}
		})

		It("advances tracers even with a zero frame interval", func() {
			sim.AddStaticCharge(0, 0, 1)
			snap := sim.StepFrame(0)
			Expect(snap.Time).To(BeZero())
			Expect(snap.Frame).To(Equal(1))
			Expect(snap.Streamlines[0].Points).To(HaveLen(1 + sim.Settings().Tracer.StepsPerFrame))
		})
	})

	Describe("Probe", func() {
		It("includes static charges and bodies", func() {
			sim.AddStaticCharge(0, 0, 1)
			s := sim.Probe(1, 0)
			Expect(s.E.X).To(BeNumerically("~", field.K*engine.DefaultStaticCharge, 1e-6))

			_, _ = sim.AddDynamicBody(body.KindPoint, 2, 0, body.Params{Charge: 1e-6})
			s2 := sim.Probe(1, 0)
			Expect(s2.E.X).To(BeNumerically("<", s.E.X))
			Expect(s2.Nearest).To(BeNumerically("~", 1, 1e-12))
		})

		It("reports an infinite distance with no sources", func() {
			s := sim.Probe(0, 0)
			Expect(math.IsInf(s.Nearest, 1)).To(BeTrue())
			Expect(s.E).To(Equal(vecmath.Vec2{}))
		})
	})

	Describe("logging and metrics", func() {
		It("logs removals to the injected logger", func() {
			var buf bytes.Buffer
			s := engine.New(engine.Options{Settings: engine.DefaultSettings(), Logger: log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})})
			s.AddStaticCharge(0, 0, 1)
			_, _ = s.AddDynamicBody(body.KindPoint, 0, 0.01, body.Params{})
			s.StepFrame(frameDt)
			Expect(buf.String()).To(ContainSubstring("tracers reseeded"))
			Expect(buf.String()).To(ContainSubstring("singularity guard triggered"))
		})

		It("feeds every published snapshot to metrics", func() {
			m := &countingMetric{}
			sim.AddMetric(m)
			sim.StepFrame(frameDt)
			sim.StepFrame(frameDt)
			Expect(m.frames).To(Equal(2))
		})
	})
})

type countingMetric struct{ frames int }

func (c *countingMetric) Name() string               { return "frames" }
func (c *countingMetric) Observe(_ *engine.Snapshot) { c.frames++ }
func (c *countingMetric) Value() float64             { return float64(c.frames) }
func (c *countingMetric) Reset()                     { c.frames = 0 }
