package body

import (
	"errors"
	"math"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/fieldsim/internal/field"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

func ctxWith(sources ...field.Source) Context {
	return Context{Eval: field.NewEvaluator(field.DefaultGuard), Sources: sources}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"point", KindPoint, false},
		{"Particle", KindPoint, false},
		{"dipole", KindDipole, false},
		{"quadrupole", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_FillsDefaults(t *testing.T) {
	g := NewWithT(t)

	b, err := New(3, KindDipole, 1, 2, Params{})
	g.Expect(err).NotTo(HaveOccurred())
	d := b.(*Dipole)
	g.Expect(d.Q).To(Equal([2]float64{DefaultCharge, -DefaultCharge}))
	g.Expect(d.Mass()).To(Equal(2 * DefaultMass))
	g.Expect(d.Center).To(Equal(vecmath.V(1, 2)))

	b, err = New(4, KindPoint, 0, 0, Params{Charge: -2e-6, Mass: -1})
	g.Expect(err).NotTo(HaveOccurred())
	p := b.(*PointParticle)
	g.Expect(p.Q).To(Equal(-2e-6))
	g.Expect(p.Mass).To(Equal(DefaultMass))

	_, err = New(5, Kind(9), 0, 0, Params{})
	g.Expect(err).To(HaveOccurred())
}

func TestDipole_OffsetsAndInertia(t *testing.T) {
	g := NewWithT(t)
	d := NewDipole(1, vecmath.V(0, 0), Params{Charge: 1e-6, Mass: 1, Charge2: -1e-6, Mass2: 3, Spacing: 0.4})
	o := d.Offsets()

	g.Expect(o[1]-o[0]).To(BeNumerically("~", 0.4, 1e-15))
	g.Expect(1*o[0]+3*o[1]).To(BeNumerically("~", 0, 1e-15), "center of mass must be the rotation center")
	g.Expect(d.Inertia()).To(BeNumerically("~", 1*o[0]*o[0]+3*o[1]*o[1], 1e-15))

	// integration never touches the fixed geometry
	ctx := ctxWith(field.Source{Pos: vecmath.V(2, 1), Q: 1e-7})
	for i := 0; i < 50; i++ {
		g.Expect(d.Integrate(0.001, ctx)).To(Succeed())
	}
	g.Expect(d.Offsets()).To(Equal(o))
	g.Expect(d.ChargePos(1).Dist(d.ChargePos(0))).To(BeNumerically("~", 0.4, 1e-12))
}

func TestDipole_ZeroFieldNoLoads(t *testing.T) {
	g := NewWithT(t)
	d := NewDipole(1, vecmath.V(0, 0), DefaultParams(KindDipole))
	d.Angle = 0.7

	force, tau, err := d.Loads(ctxWith())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(force).To(Equal(vecmath.Vec2{}))
	g.Expect(tau).To(BeZero())

	// far from every static charge the loads are negligible
	far := ctxWith(field.Source{Pos: vecmath.V(1e9, 1e9), Q: 1e-9})
	force, tau, err = d.Loads(far)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(force.Len()).To(BeNumerically("<", 1e-20))
	g.Expect(math.Abs(tau)).To(BeNumerically("<", 1e-20))

	g.Expect(d.Integrate(0.01, ctxWith())).To(Succeed())
	g.Expect(d.Center).To(Equal(vecmath.Vec2{}))
	g.Expect(d.Angle).To(Equal(0.7))
}

func TestDipole_UniformFieldAlignsAxis(t *testing.T) {
	g := NewWithT(t)
	// The +q pole is pushed along E and the -q pole against it, so a dipole
	// lying perpendicular to the field turns toward it.
	d := NewDipole(1, vecmath.V(0, 0), Params{Charge: -1e-6, Mass: 1e-3, Charge2: 1e-6, Mass2: 1e-3, Spacing: 0.2})
	d.Angle = math.Pi / 2

	// two distant opposite charges give a nearly uniform +x field at the origin
	ctx := ctxWith(
		field.Source{Pos: vecmath.V(-50, 0), Q: 1e-3},
		field.Source{Pos: vecmath.V(50, 0), Q: -1e-3},
	)
	force, tau, err := d.Loads(ctx)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(force.Len()).To(BeNumerically("<", 1e-9))
	g.Expect(tau).To(BeNumerically("<", 0), "axis at +90° must turn clockwise toward +x")
}

func TestPointParticle_SymmetricRelease(t *testing.T) {
	g := NewWithT(t)
	p := NewPointParticle(1, vecmath.V(0, 0), Params{Charge: 1e-6, Mass: 1e-3})
	ctx := ctxWith(
		field.Source{Pos: vecmath.V(-1, 0), Q: 1e-7},
		field.Source{Pos: vecmath.V(1, 0), Q: -1e-7},
	)

	for i := 0; i < 100; i++ {
		g.Expect(p.Integrate(0.001, ctx)).To(Succeed())
	}
	g.Expect(p.Vel.X).To(BeNumerically(">", 0))
	g.Expect(p.Vel.Y).To(BeZero())
	g.Expect(p.Pos.Y).To(BeZero())
}

func TestPointParticle_SymplecticEulerOrder(t *testing.T) {
	g := NewWithT(t)
	p := NewPointParticle(1, vecmath.V(0, 0), Params{Charge: 1e-6, Mass: 1e-3})
	src := field.Source{Pos: vecmath.V(-1, 0), Q: 1e-7}
	ctx := ctxWith(src)

	e := ctx.Eval.Field(ctx.Sources, p.Pos)
	a := e.Scale(p.Q / p.Mass)
	dt := 0.01

	g.Expect(p.Integrate(dt, ctx)).To(Succeed())
	g.Expect(p.Vel.X).To(BeNumerically("~", a.X*dt, 1e-15))
	g.Expect(p.Pos.X).To(BeNumerically("~", a.X*dt*dt, 1e-15), "position uses the updated velocity")
}

func TestIntegrate_SingularityLeavesStateUntouched(t *testing.T) {
	g := NewWithT(t)
	ctx := ctxWith(field.Source{Pos: vecmath.V(0, 0), Q: 1e-7})

	p := NewPointParticle(1, vecmath.V(field.DefaultGuard/2, 0), DefaultParams(KindPoint))
	before := p.Pose()
	err := p.Integrate(0.01, ctx)
	g.Expect(errors.Is(err, ErrSingularity)).To(BeTrue())
	g.Expect(p.Pose()).To(Equal(before))

	d := NewDipole(2, vecmath.V(0.1, 0), DefaultParams(KindDipole))
	err = d.Integrate(0.01, ctx)
	g.Expect(errors.Is(err, ErrSingularity)).To(BeTrue())
}

func TestIntegrate_OwnChargesIgnored(t *testing.T) {
	g := NewWithT(t)
	d := NewDipole(9, vecmath.V(0, 0), DefaultParams(KindDipole))
	ctx := ctxWith(d.Charges(nil)...)

	force, tau, err := d.Loads(ctx)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(force).To(Equal(vecmath.Vec2{}))
	g.Expect(tau).To(BeZero())
}

func TestKineticEnergy(t *testing.T) {
	g := NewWithT(t)
	p := NewPointParticle(1, vecmath.V(0, 0), Params{Mass: 2, Charge: 1, VX: 3, VY: 4})
	g.Expect(p.KineticEnergy()).To(Equal(25.0))

	d := NewDipole(2, vecmath.V(0, 0), Params{Mass: 1, Mass2: 1, Charge: 1, Spacing: 2, Omega: 2})
	g.Expect(d.KineticEnergy()).To(BeNumerically("~", 0.5*d.Inertia()*4, 1e-15))
}

func TestRemovalError_Unwrap(t *testing.T) {
	err := error(&RemovalError{ID: 4, Kind: KindDipole, Frame: 2, Substep: 7, Wrapped: ErrSingularity})
	if !errors.Is(err, ErrSingularity) {
		t.Error("RemovalError should unwrap to ErrSingularity")
	}
	expected := "dipole #4 removed at frame 2 substep 7: body: singularity guard triggered"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}
