package config

import (
	"math"
	"sort"

	"github.com/san-kum/fieldsim/internal/body"
	"github.com/san-kum/fieldsim/internal/field"
	"github.com/san-kum/fieldsim/internal/engine"
)

// Presets builds a fresh scene per call so callers may edit the result.
var Presets = map[string]func() *Config{
	"dipole": func() *Config {
		c := scene("dipole")
		c.Statics = []ChargeConfig{{X: -1.5, Y: 0, Sign: 1}, {X: 1.5, Y: 0, Sign: -1}}
		c.Bodies = []BodyConfig{
			{Kind: "point", X: 0, Y: 2},
			{Kind: "point", X: 0, Y: -2, Params: body.Params{Charge: -body.DefaultCharge}},
		}
		return c
	},
	"quadrupole": func() *Config {
		c := scene("quadrupole")
		c.Statics = []ChargeConfig{
			{X: -1.5, Y: -1.5, Sign: 1}, {X: 1.5, Y: 1.5, Sign: 1},
			{X: -1.5, Y: 1.5, Sign: -1}, {X: 1.5, Y: -1.5, Sign: -1},
		}
		c.Bodies = []BodyConfig{{Kind: "dipole", X: 0, Y: 0.3, Params: body.Params{Angle: 0.5}}}
		return c
	},
	"capacitor": func() *Config {
		c := scene("capacitor")
		c.Settings.Density = 8
		for i := -4; i <= 4; i++ {
			x := float64(i) * 0.5
			c.Statics = append(c.Statics, ChargeConfig{X: x, Y: 1.5, Sign: 1}, ChargeConfig{X: x, Y: -1.5, Sign: -1})
		}
		c.Bodies = []BodyConfig{{Kind: "dipole", X: 0, Y: 0, Params: body.Params{Angle: 0.2}}}
		return c
	},
	"orbit": func() *Config {
		c := scene("orbit")
		c.Settings.MarkMode = engine.MarksByPotential.String()
		c.Statics = []ChargeConfig{{X: 0, Y: 0, Sign: -1}}
		r := 1.5
		v := circularSpeed(body.DefaultCharge, engine.DefaultStaticCharge, body.DefaultMass, r)
		c.Bodies = []BodyConfig{{Kind: "point", X: r, Y: 0, Params: body.Params{VY: v}}}
		return c
	},
	"swarm": func() *Config {
		c := scene("swarm")
		c.Settings.Interaction = true
		c.Statics = []ChargeConfig{{X: 0, Y: 0, Sign: 2}}
		for k := 0; k < 6; k++ {
			theta := 2 * math.Pi * float64(k) / 6
			q := body.DefaultCharge
			if k%2 == 1 {
				q = -q
			}
			c.Bodies = append(c.Bodies, BodyConfig{
				Kind:   "point",
				X:      2.5 * math.Cos(theta),
				Y:      2.5 * math.Sin(theta),
				Params: body.Params{Charge: q},
			})
		}
		return c
	},
}

func scene(name string) *Config {
	c := DefaultConfig()
	c.Name = name
	return c
}

// circularSpeed is the speed at which charge q of mass m circles an opposite
// static charge Q at radius r.
func circularSpeed(q, Q, m, r float64) float64 {
	return math.Sqrt(field.K * math.Abs(q*Q) / (m * r))
}

func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
