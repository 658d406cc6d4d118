package engine

import (
	"github.com/san-kum/fieldsim/internal/body"
	"github.com/san-kum/fieldsim/internal/tracer"
)

// Removal records a body dropped during a frame.
type Removal struct {
	Pose body.Pose
	Err  error // *body.RemovalError
}

// Snapshot is everything a renderer needs for one frame. Slices are read-only
// views valid until the next command or StepFrame.
type Snapshot struct {
	Frame         int
	Time          float64
	Statics       []StaticCharge
	Bodies        []body.Pose
	Streamlines   []tracer.Streamline
	Removed       []Removal
	KineticEnergy float64
}

// StepFrame advances every body by dt seconds and every tracer by its fixed
// micro-step count, then publishes a snapshot. dt <= 0 only advances tracers.
func (s *Simulation) StepFrame(dt float64) Snapshot {
	s.removed = s.removed[:0]
	if dt > 0 && len(s.bodies) > 0 {
		s.stepDynamics(dt)
	}
	s.tracers.Advance(s.sources)

	s.frame++
	if dt > 0 {
		s.time += dt
	}

	snap := s.Snapshot()
	for _, m := range s.metrics {
		m.Observe(&snap)
	}
	return snap
}

func (s *Simulation) stepDynamics(dt float64) {
	n := s.settings.Substeps
	sub := dt / float64(n)

	s.alive = s.alive[:0]
	for range s.bodies {
		s.alive = append(s.alive, true)
	}

	for k := 0; k < n; k++ {
		s.scratch = append(s.scratch[:0], s.sources...)
		if s.settings.Interaction {
			for i, b := range s.bodies {
				if s.alive[i] {
					s.scratch = b.Charges(s.scratch)
				}
			}
		}
		ctx := body.Context{Eval: s.eval, Sources: s.scratch}

		for i, b := range s.bodies {
			if !s.alive[i] {
				continue
			}
			if err := b.Integrate(sub, ctx); err != nil {
				s.alive[i] = false
				s.recordRemoval(b, k, err)
			}
		}
	}

	s.compact()
}

func (s *Simulation) recordRemoval(b body.Body, substep int, reason error) {
	err := &body.RemovalError{
		ID:      b.ID(),
		Kind:    b.Kind(),
		Frame:   s.frame + 1,
		Substep: substep,
		Wrapped: reason,
	}
	s.removed = append(s.removed, Removal{Pose: b.Pose(), Err: err})
	s.log.Warn("body removed", "err", err)
}

// compact drops dead bodies in place, keeping the survivors' order.
func (s *Simulation) compact() {
	kept := s.bodies[:0]
	for i, b := range s.bodies {
		if s.alive[i] {
			kept = append(kept, b)
		}
	}
	for i := len(kept); i < len(s.bodies); i++ {
		s.bodies[i] = nil
	}
	s.bodies = kept
}

// Snapshot returns the current drawable state without advancing.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Frame:       s.frame,
		Time:        s.time,
		Statics:     s.Statics(),
		Bodies:      s.Bodies(),
		Streamlines: s.tracers.Streamlines(),
		Removed:     append([]Removal(nil), s.removed...),
	}
	for _, b := range s.bodies {
		snap.KineticEnergy += b.KineticEnergy()
	}
	return snap
}
