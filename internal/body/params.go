package body

// Params are the construction parameters of a body. For a point particle only
// Charge, Mass and Vel matter. A dipole uses (Charge, Mass) for its first pole,
// (Charge2, Mass2) for the second, Spacing between them, and the initial
// Angle/Omega.
type Params struct {
	Charge  float64 `yaml:"charge"`
	Mass    float64 `yaml:"mass"`
	Charge2 float64 `yaml:"charge2"`
	Mass2   float64 `yaml:"mass2"`
	Spacing float64 `yaml:"spacing"`
	Angle   float64 `yaml:"angle"`
	Omega   float64 `yaml:"omega"`
	VX      float64 `yaml:"vx"`
	VY      float64 `yaml:"vy"`
}

const (
	DefaultCharge  = 1e-6
	DefaultMass    = 1e-3
	DefaultSpacing = 0.3
)

func DefaultParams(kind Kind) Params {
	p := Params{Charge: DefaultCharge, Mass: DefaultMass}
	if kind == KindDipole {
		p.Charge2 = -DefaultCharge
		p.Mass2 = DefaultMass
		p.Spacing = DefaultSpacing
	}
	return p
}

func (p Params) withDefaults(kind Kind) Params {
	d := DefaultParams(kind)
	if p.Charge == 0 {
		p.Charge = d.Charge
	}
	if p.Mass <= 0 {
		p.Mass = d.Mass
	}
	if kind != KindDipole {
		return p
	}
	if p.Charge2 == 0 {
		p.Charge2 = -p.Charge
	}
	if p.Mass2 <= 0 {
		p.Mass2 = d.Mass2
	}
	if p.Spacing <= 0 {
		p.Spacing = d.Spacing
	}
	return p
}
