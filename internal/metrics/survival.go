package metrics

import (
	"github.com/san-kum/fieldsim/internal/body"
	"github.com/san-kum/fieldsim/internal/engine"
)

// Survival reports the fraction of observed bodies that have not been removed
// by the singularity guard. It also keeps the live-body count per frame.
type Survival struct {
	name    string
	seen    map[body.ID]struct{}
	removed int
	history []float64
}

func NewSurvival() *Survival {
	return &Survival{
		name: "survival",
		seen: make(map[body.ID]struct{}),
	}
}

func (s *Survival) Name() string {
	return s.name
}

func (s *Survival) Observe(snap *engine.Snapshot) {
	for _, b := range snap.Bodies {
		s.seen[b.ID] = struct{}{}
	}
	for _, r := range snap.Removed {
		s.seen[r.Pose.ID] = struct{}{}
		s.removed++
	}
	s.history = append(s.history, float64(len(snap.Bodies)))
}

func (s *Survival) Value() float64 {
	if len(s.seen) == 0 {
		return 1.0
	}
	return 1.0 - float64(s.removed)/float64(len(s.seen))
}

func (s *Survival) Removed() int { return s.removed }

// History is the number of live bodies per frame.
func (s *Survival) History() []float64 { return s.history }

func (s *Survival) Reset() {
	s.seen = make(map[body.ID]struct{})
	s.removed = 0
	s.history = s.history[:0]
}
