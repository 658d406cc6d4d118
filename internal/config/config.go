package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/fieldsim/internal/body"
	"github.com/san-kum/fieldsim/internal/engine"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

const (
	DefaultFps           = 30
	DefaultFrames        = 300
	DefaultWidth         = 16.0
	DefaultHeight        = 10.0
	DefaultStepDistance  = 0.025
	DefaultStepsPerFrame = 20
	DefaultMaxSteps      = 2000
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config describes a scene: engine settings plus the charges and bodies to
// place at start.
type Config struct {
	Name     string         `yaml:"name"`
	Fps      int            `yaml:"fps"`
	Frames   int            `yaml:"frames"`
	Settings SettingsConfig `yaml:"settings"`
	Statics  []ChargeConfig `yaml:"statics"`
	Bodies   []BodyConfig   `yaml:"bodies"`
}

type SettingsConfig struct {
	Substeps      int     `yaml:"substeps"`
	Guard         float64 `yaml:"guard"`
	StaticCharge  float64 `yaml:"static_charge"`
	Interaction   bool    `yaml:"interaction"`
	Density       int     `yaml:"density"`
	Arrows        bool    `yaml:"arrows"`
	MarkMode      string  `yaml:"mark_mode"`
	ArrowSpacing  float64 `yaml:"arrow_spacing"`
	VoltSpacing   float64 `yaml:"volt_spacing"`
	VoltCeiling   float64 `yaml:"volt_ceiling"`
	StepDistance  float64 `yaml:"step_distance"`
	StepsPerFrame int     `yaml:"steps_per_frame"`
	MaxSteps      int     `yaml:"max_steps"`
	Width         float64 `yaml:"width"`
	Height        float64 `yaml:"height"`
}

type ChargeConfig struct {
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Sign float64 `yaml:"sign"`
}

type BodyConfig struct {
	Kind        string  `yaml:"kind"`
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	body.Params `yaml:",inline"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:   "empty",
		Fps:    DefaultFps,
		Frames: DefaultFrames,
		Settings: SettingsConfig{
			Substeps:      engine.DefaultSubsteps,
			StaticCharge:  engine.DefaultStaticCharge,
			Density:       engine.DefaultDensity,
			Arrows:        true,
			MarkMode:      engine.MarksByDistance.String(),
			ArrowSpacing:  engine.DefaultArrowSpacing,
			VoltSpacing:   engine.DefaultVoltSpacing,
			VoltCeiling:   engine.DefaultVoltCeiling,
			StepDistance:  DefaultStepDistance,
			StepsPerFrame: DefaultStepsPerFrame,
			MaxSteps:      DefaultMaxSteps,
			Width:         DefaultWidth,
			Height:        DefaultHeight,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects values the engine cannot run with. Physics never fails on
// its own, so this is the only error surface for a scene.
func (c *Config) Validate() error {
	s := c.Settings
	switch {
	case c.Fps <= 0:
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidConfig, c.Fps)
	case s.Substeps <= 0:
		return fmt.Errorf("%w: substeps must be positive, got %d", ErrInvalidConfig, s.Substeps)
	case s.Density < 0:
		return fmt.Errorf("%w: density must not be negative, got %d", ErrInvalidConfig, s.Density)
	case s.StepDistance <= 0:
		return fmt.Errorf("%w: step_distance must be positive, got %f", ErrInvalidConfig, s.StepDistance)
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("%w: width and height must be positive", ErrInvalidConfig)
	}
	if _, err := engine.ParseMarkMode(s.MarkMode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for i, b := range c.Bodies {
		if _, err := body.ParseKind(b.Kind); err != nil {
			return fmt.Errorf("%w: bodies[%d]: %v", ErrInvalidConfig, i, err)
		}
	}
	return nil
}

// Bounds is the world box, centered on the origin.
func (c *Config) Bounds() vecmath.Rect {
	return vecmath.Centered(c.Settings.Width, c.Settings.Height)
}

// FrameDt is the wall-clock interval of one frame.
func (c *Config) FrameDt() float64 {
	return 1.0 / float64(c.Fps)
}

func (c *Config) EngineSettings() (engine.Settings, error) {
	mode, err := engine.ParseMarkMode(c.Settings.MarkMode)
	if err != nil {
		return engine.Settings{}, err
	}
	st := engine.DefaultSettings()
	s := c.Settings
	st.Substeps = s.Substeps
	if s.Guard > 0 {
		st.Guard = s.Guard
	}
	st.StaticCharge = s.StaticCharge
	st.Interaction = s.Interaction
	st.Density = s.Density
	st.ArrowsEnabled = s.Arrows
	st.MarkMode = mode
	st.ArrowSpacing = s.ArrowSpacing
	st.VoltSpacing = s.VoltSpacing
	st.VoltCeiling = s.VoltCeiling
	st.Tracer.StepDistance = s.StepDistance
	st.Tracer.StepsPerFrame = s.StepsPerFrame
	st.Tracer.MaxSteps = s.MaxSteps
	st.Tracer.Bounds = c.Bounds()
	return st, nil
}

// Build validates the scene and returns a simulation populated with it.
func (c *Config) Build(logger *log.Logger) (*engine.Simulation, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	st, err := c.EngineSettings()
	if err != nil {
		return nil, err
	}
	sim := engine.New(engine.Options{Settings: st, Logger: logger})
	for _, q := range c.Statics {
		sim.AddStaticCharge(q.X, q.Y, q.Sign)
	}
	for _, b := range c.Bodies {
		kind, err := body.ParseKind(b.Kind)
		if err != nil {
			return nil, err
		}
		if _, err := sim.AddDynamicBody(kind, b.X, b.Y, b.Params); err != nil {
			return nil, err
		}
	}
	return sim, nil
}
