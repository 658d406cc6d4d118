package body

import (
	"github.com/san-kum/fieldsim/internal/field"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

// PointParticle is a single charged mass.
type PointParticle struct {
	id   ID
	Pos  vecmath.Vec2
	Vel  vecmath.Vec2
	Mass float64
	Q    float64
}

func NewPointParticle(id ID, pos vecmath.Vec2, p Params) *PointParticle {
	return &PointParticle{
		id:   id,
		Pos:  pos,
		Vel:  vecmath.V(p.VX, p.VY),
		Mass: p.Mass,
		Q:    p.Charge,
	}
}

func (p *PointParticle) ID() ID     { return p.id }
func (p *PointParticle) Kind() Kind { return KindPoint }

func (p *PointParticle) Charges(dst []field.Source) []field.Source {
	return append(dst, field.Source{Pos: p.Pos, Q: p.Q, Owner: p.id})
}

func (p *PointParticle) Integrate(dt float64, ctx Context) error {
	s := ctx.Eval.Evaluate(ctx.Sources, p.Pos, p.id)
	if ctx.Eval.TooClose(s) {
		return ErrSingularity
	}
	acc := field.Force(p.Q, s.E).Scale(1 / p.Mass)
	pos, vel := accelerate(p.Pos, p.Vel, acc, dt)
	if !finite(pos.X, pos.Y, vel.X, vel.Y) {
		return ErrNonFinite
	}
	p.Pos, p.Vel = pos, vel
	return nil
}

func (p *PointParticle) Pose() Pose {
	return Pose{
		ID:      p.id,
		Kind:    KindPoint,
		Pos:     p.Pos,
		Vel:     p.Vel,
		Charges: p.Charges(nil),
	}
}

func (p *PointParticle) KineticEnergy() float64 {
	return 0.5 * p.Mass * p.Vel.LenSq()
}
