package experiment

import (
	"github.com/san-kum/fieldsim/internal/engine"
	"github.com/san-kum/fieldsim/internal/metrics"
)

// DefaultMetrics is the observer set every headless run reports.
func DefaultMetrics() []engine.Metric {
	return []engine.Metric{
		metrics.NewEnergy(),
		metrics.NewPeakEnergy(),
		metrics.NewSurvival(),
	}
}
