package config

import (
	"fmt"
	"sort"
)

var bodyParams = map[string]func(b *BodyConfig, v float64){
	"charge":  func(b *BodyConfig, v float64) { b.Charge = v },
	"mass":    func(b *BodyConfig, v float64) { b.Mass = v },
	"charge2": func(b *BodyConfig, v float64) { b.Charge2 = v },
	"mass2":   func(b *BodyConfig, v float64) { b.Mass2 = v },
	"spacing": func(b *BodyConfig, v float64) { b.Spacing = v },
	"angle":   func(b *BodyConfig, v float64) { b.Angle = v },
	"omega":   func(b *BodyConfig, v float64) { b.Omega = v },
	"vx":      func(b *BodyConfig, v float64) { b.VX = v },
	"vy":      func(b *BodyConfig, v float64) { b.VY = v },
}

var sceneParams = map[string]func(s *SettingsConfig, v float64){
	"static_charge": func(s *SettingsConfig, v float64) { s.StaticCharge = v },
	"guard":         func(s *SettingsConfig, v float64) { s.Guard = v },
	"substeps":      func(s *SettingsConfig, v float64) { s.Substeps = int(v) },
	"density":       func(s *SettingsConfig, v float64) { s.Density = int(v) },
	"arrow_spacing": func(s *SettingsConfig, v float64) { s.ArrowSpacing = v },
	"volt_spacing":  func(s *SettingsConfig, v float64) { s.VoltSpacing = v },
}

// SetParam sets a named scalar on the scene. Body parameters apply to every
// body in the scene.
func (c *Config) SetParam(name string, v float64) error {
	if set, ok := sceneParams[name]; ok {
		set(&c.Settings, v)
		return nil
	}
	set, ok := bodyParams[name]
	if !ok {
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalidConfig, name)
	}
	for i := range c.Bodies {
		set(&c.Bodies[i], v)
	}
	return nil
}

// ParamNames lists every name SetParam accepts.
func ParamNames() []string {
	names := make([]string, 0, len(bodyParams)+len(sceneParams))
	for k := range bodyParams {
		names = append(names, k)
	}
	for k := range sceneParams {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
