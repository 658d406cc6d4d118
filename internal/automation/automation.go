package automation

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/fieldsim/internal/body"
	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/engine"
	"github.com/san-kum/fieldsim/internal/experiment"
)

// Scenario is a scene plus a timeline of commands applied while it runs.
// Scene names a preset; Inline, when present, is a scene document decoded
// over the defaults and replaces it.
type Scenario struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Scene       string    `yaml:"scene"`
	Inline      yaml.Node `yaml:"inline"`
	Frames      int       `yaml:"frames"`
	Events      []Event   `yaml:"events"`
}

// Event is one command. Frame is the number of frames stepped before it
// applies; events sharing a frame run in file order.
type Event struct {
	Frame   int         `yaml:"frame"`
	Command string      `yaml:"command"`
	X       float64     `yaml:"x"`
	Y       float64     `yaml:"y"`
	Sign    float64     `yaml:"sign"`
	Kind    string      `yaml:"kind"`
	Value   float64     `yaml:"value"`
	On      bool        `yaml:"on"`
	Mode    string      `yaml:"mode"`
	Params  body.Params `yaml:"params"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if s.Frames <= 0 {
		return fmt.Errorf("scenario %q: frames must be positive", s.Name)
	}
	for i, ev := range s.Events {
		if ev.Frame < 0 || ev.Frame > s.Frames {
			return fmt.Errorf("scenario %q: events[%d]: frame %d outside 0..%d", s.Name, i, ev.Frame, s.Frames)
		}
		if err := ev.check(); err != nil {
			return fmt.Errorf("scenario %q: events[%d]: %w", s.Name, i, err)
		}
	}
	return nil
}

func (ev Event) check() error {
	switch ev.Command {
	case "add_static", "clear_statics", "clear_dynamics", "clear_all", "reset_tracers",
		"density", "arrow_spacing", "arrows", "interaction":
		return nil
	case "add_body":
		_, err := body.ParseKind(ev.Kind)
		return err
	case "mark_mode":
		_, err := engine.ParseMarkMode(ev.Mode)
		return err
	}
	return fmt.Errorf("unknown command %q", ev.Command)
}

// Apply issues the event's command on sim.
func (ev Event) Apply(sim *engine.Simulation) error {
	switch ev.Command {
	case "add_static":
		sim.AddStaticCharge(ev.X, ev.Y, ev.Sign)
	case "add_body":
		kind, err := body.ParseKind(ev.Kind)
		if err != nil {
			return err
		}
		if _, err := sim.AddDynamicBody(kind, ev.X, ev.Y, ev.Params); err != nil {
			return err
		}
	case "clear_statics":
		sim.ClearStatics()
	case "clear_dynamics":
		sim.ClearDynamics()
	case "clear_all":
		sim.ClearAll()
	case "reset_tracers":
		sim.ResetTracers()
	case "density":
		sim.SetTracerDensity(int(ev.Value))
	case "arrow_spacing":
		sim.SetArrowSpacing(ev.Value)
	case "arrows":
		sim.SetArrowsEnabled(ev.On)
	case "interaction":
		sim.SetDynamicInteraction(ev.On)
	case "mark_mode":
		mode, err := engine.ParseMarkMode(ev.Mode)
		if err != nil {
			return err
		}
		sim.SetMarkMode(mode)
	default:
		return fmt.Errorf("unknown command %q", ev.Command)
	}
	return nil
}

// SceneConfig resolves the scenario's starting scene.
func (s *Scenario) SceneConfig() (*config.Config, error) {
	if !s.Inline.IsZero() {
		cfg := config.DefaultConfig()
		if err := s.Inline.Decode(cfg); err != nil {
			return nil, fmt.Errorf("scenario %q: inline scene: %w", s.Name, err)
		}
		return cfg, cfg.Validate()
	}
	name := s.Scene
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("scenario %q: unknown scene %q", s.Name, name)
	}
	return cfg, nil
}

// RunScenario builds the scene and steps it for s.Frames frames, applying
// every event at its frame.
func RunScenario(ctx context.Context, s *Scenario, logger *log.Logger) (*experiment.Result, *config.Config, error) {
	cfg, err := s.SceneConfig()
	if err != nil {
		return nil, nil, err
	}
	sim, err := cfg.Build(logger)
	if err != nil {
		return nil, nil, err
	}

	events := append([]Event(nil), s.Events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Frame < events[j].Frame })

	next := 0
	var applyErr error
	applyUpTo := func(frame int) {
		for next < len(events) && events[next].Frame <= frame {
			if err := events[next].Apply(sim); err != nil && applyErr == nil {
				applyErr = fmt.Errorf("scenario %q: %s at frame %d: %w", s.Name, events[next].Command, events[next].Frame, err)
			}
			if logger != nil {
				logger.Info("event applied", "scenario", s.Name, "frame", events[next].Frame, "command", events[next].Command)
			}
			next++
		}
	}
	applyUpTo(0)

	name := s.Name
	if name == "" {
		name = cfg.Name
	}
	exp := experiment.New(experiment.Config{Name: name, Frames: s.Frames, Fps: cfg.Fps}, sim)
	for _, m := range experiment.DefaultMetrics() {
		exp.AddMetric(m)
	}
	exp.OnFrame(func(snap *engine.Snapshot) { applyUpTo(snap.Frame) })

	res, err := exp.Run(ctx)
	if err != nil {
		return res, cfg, err
	}
	return res, cfg, applyErr
}
