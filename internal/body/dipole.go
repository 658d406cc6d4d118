package body

import (
	"github.com/san-kum/fieldsim/internal/field"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

// Dipole is a rigid rod carrying two charged masses. It rotates about its
// center of mass, which is where Center sits.
type Dipole struct {
	id     ID
	Center vecmath.Vec2
	Vel    vecmath.Vec2
	Angle  float64
	Omega  float64
	Q      [2]float64

	// fixed at construction
	offset  [2]float64
	mass    float64
	inertia float64
}

// NewDipole places the two poles on the body axis so that the center of
// mass coincides with the center of rotation, and derives the moment of
// inertia from those offsets.
func NewDipole(id ID, center vecmath.Vec2, p Params) *Dipole {
	m1, m2 := p.Mass, p.Mass2
	total := m1 + m2
	o1 := -p.Spacing * m2 / total
	o2 := p.Spacing * m1 / total
	return &Dipole{
		id:      id,
		Center:  center,
		Vel:     vecmath.V(p.VX, p.VY),
		Angle:   p.Angle,
		Omega:   p.Omega,
		Q:       [2]float64{p.Charge, p.Charge2},
		offset:  [2]float64{o1, o2},
		mass:    total,
		inertia: m1*o1*o1 + m2*o2*o2,
	}
}

func (d *Dipole) ID() ID              { return d.id }
func (d *Dipole) Kind() Kind          { return KindDipole }
func (d *Dipole) Offsets() [2]float64 { return d.offset }
func (d *Dipole) Mass() float64       { return d.mass }
func (d *Dipole) Inertia() float64    { return d.inertia }
func (d *Dipole) Axis() vecmath.Vec2  { return vecmath.FromAngle(d.Angle) }

// ChargePos is the world position of pole i, derived from the current pose.
func (d *Dipole) ChargePos(i int) vecmath.Vec2 {
	return d.Center.Add(d.Axis().Scale(d.offset[i]))
}

func (d *Dipole) Charges(dst []field.Source) []field.Source {
	for i := range d.Q {
		dst = append(dst, field.Source{Pos: d.ChargePos(i), Q: d.Q[i], Owner: d.id})
	}
	return dst
}

// Loads returns the net force and net torque the sources exert on the dipole
// in its current pose, or ErrSingularity if either pole is inside the guard.
func (d *Dipole) Loads(ctx Context) (vecmath.Vec2, float64, error) {
	axis := d.Axis()
	perp := axis.Perp()
	var force vecmath.Vec2
	var tau float64
	for i := range d.Q {
		at := d.Center.Add(axis.Scale(d.offset[i]))
		s := ctx.Eval.Evaluate(ctx.Sources, at, d.id)
		if ctx.Eval.TooClose(s) {
			return vecmath.Vec2{}, 0, ErrSingularity
		}
		f := field.Force(d.Q[i], s.E)
		force = force.Add(f)
		tau += torque(d.offset[i], f, perp)
	}
	return force, tau, nil
}

func (d *Dipole) Integrate(dt float64, ctx Context) error {
	force, tau, err := d.Loads(ctx)
	if err != nil {
		return err
	}
	center, vel := accelerate(d.Center, d.Vel, force.Scale(1/d.mass), dt)
	omega := d.Omega
	if d.inertia > 0 {
		omega += tau / d.inertia * dt
	}
	angle := d.Angle + omega*dt
	if !finite(center.X, center.Y, vel.X, vel.Y, angle, omega) {
		return ErrNonFinite
	}
	d.Center, d.Vel, d.Angle, d.Omega = center, vel, angle, omega
	return nil
}

func (d *Dipole) Pose() Pose {
	return Pose{
		ID:      d.id,
		Kind:    KindDipole,
		Pos:     d.Center,
		Vel:     d.Vel,
		Angle:   d.Angle,
		Omega:   d.Omega,
		Charges: d.Charges(make([]field.Source, 0, 2)),
	}
}

func (d *Dipole) KineticEnergy() float64 {
	return 0.5*d.mass*d.Vel.LenSq() + 0.5*d.inertia*d.Omega*d.Omega
}
