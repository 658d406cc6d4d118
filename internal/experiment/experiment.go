package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/fieldsim/internal/body"
	"github.com/san-kum/fieldsim/internal/engine"
)

type Config struct {
	Name   string
	Frames int
	Fps    int
}

func (c Config) Dt() float64 {
	if c.Fps <= 0 {
		return 0
	}
	return 1 / float64(c.Fps)
}

// Frame is the per-frame record of a headless run. Track is the pose of the
// tracked body, valid while Tracked is true.
type Frame struct {
	Time          float64
	Kinetic       float64
	Bodies        int
	ActiveTracers int
	Removed       int
	Tracked       bool
	Track         body.Pose
}

type Result struct {
	Name      string
	Fps       int
	TrackedID body.ID
	Frames    []Frame
	Removals  []string
	Metrics   map[string]float64
	Last      engine.Snapshot
}

// Experiment drives a simulation for a fixed number of frames without a
// viewer. The body with the lowest ID at the start of the run is tracked.
type Experiment struct {
	cfg       Config
	sim       *engine.Simulation
	metrics   []engine.Metric
	observers []func(*engine.Snapshot)
}

func New(cfg Config, sim *engine.Simulation) *Experiment {
	return &Experiment{cfg: cfg, sim: sim}
}

func (e *Experiment) AddMetric(m engine.Metric) {
	e.metrics = append(e.metrics, m)
	e.sim.AddMetric(m)
}

// OnFrame registers fn to see every snapshot the run produces.
func (e *Experiment) OnFrame(fn func(*engine.Snapshot)) {
	e.observers = append(e.observers, fn)
}

// Run steps the simulation. Cancellation is checked between frames; a
// cancelled run returns the frames completed so far along with the error.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.sim == nil {
		return nil, fmt.Errorf("experiment has no simulation")
	}
	dt := e.cfg.Dt()
	if dt <= 0 || e.cfg.Frames < 0 {
		return nil, fmt.Errorf("invalid run: %d frames at %d fps", e.cfg.Frames, e.cfg.Fps)
	}

	res := &Result{
		Name:    e.cfg.Name,
		Fps:     e.cfg.Fps,
		Frames:  make([]Frame, 0, e.cfg.Frames),
		Metrics: make(map[string]float64),
	}
	if poses := e.sim.Bodies(); len(poses) > 0 {
		res.TrackedID = poses[0].ID
	}
	res.Last = e.sim.Snapshot()

	var err error
	for i := 0; i < e.cfg.Frames; i++ {
		if err = ctx.Err(); err != nil {
			err = fmt.Errorf("run stopped after %d frames: %w", i, err)
			break
		}
		snap := e.sim.StepFrame(dt)
		for _, fn := range e.observers {
			fn(&snap)
		}
		res.Frames = append(res.Frames, record(&snap, res.TrackedID, e.sim.ActiveTracers()))
		for _, r := range snap.Removed {
			res.Removals = append(res.Removals, r.Err.Error())
		}
		res.Last = snap
	}

	for _, m := range e.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res, err
}

func record(snap *engine.Snapshot, tracked body.ID, active int) Frame {
	f := Frame{
		Time:          snap.Time,
		Kinetic:       snap.KineticEnergy,
		Bodies:        len(snap.Bodies),
		ActiveTracers: active,
		Removed:       len(snap.Removed),
	}
	if tracked == 0 {
		return f
	}
	for _, b := range snap.Bodies {
		if b.ID == tracked {
			f.Tracked, f.Track = true, b
			break
		}
	}
	return f
}
