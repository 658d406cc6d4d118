package optim

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/experiment"
)

func orbitBuilder(frames int) func(Point) (*experiment.Experiment, error) {
	return func(p Point) (*experiment.Experiment, error) {
		cfg := config.GetPreset("orbit")
		for k, v := range p {
			if err := cfg.SetParam(k, v); err != nil {
				return nil, err
			}
		}
		sim, err := cfg.Build(nil)
		if err != nil {
			return nil, err
		}
		exp := experiment.New(experiment.Config{Name: cfg.Name, Frames: frames, Fps: cfg.Fps}, sim)
		for _, m := range experiment.DefaultMetrics() {
			exp.AddMetric(m)
		}
		return exp, nil
	}
}

func TestGridSearch_Points(t *testing.T) {
	g := NewWithT(t)
	gs := NewGridSearch([]string{"a", "b"}, [][]float64{{1, 2}, {10, 20, 30}})

	points := gs.Points()
	g.Expect(points).To(HaveLen(6))
	g.Expect(points[0]).To(Equal(Point{"a": 1, "b": 10}))
	g.Expect(points[2]).To(Equal(Point{"a": 1, "b": 30}))
	g.Expect(points[5]).To(Equal(Point{"a": 2, "b": 30}))

	g.Expect(NewGridSearch([]string{"a"}, nil).Points()).To(BeNil())
}

func TestGridSearch_RunAndBest(t *testing.T) {
	g := NewWithT(t)
	gs := NewGridSearch([]string{"vx"}, [][]float64{{0, -0.2, 0.2}})
	gs.Workers = 2

	outcomes, err := gs.Run(context.Background(), orbitBuilder(10))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(outcomes).To(HaveLen(3))
	for _, o := range outcomes {
		g.Expect(o.Err).NotTo(HaveOccurred())
		g.Expect(o.Metrics).To(HaveKey("kinetic_energy"))
	}

	// the purely tangential launch carries the least kinetic energy
	best, ok := Best(outcomes, "kinetic_energy", false)
	g.Expect(ok).To(BeTrue())
	g.Expect(best.Params["vx"]).To(Equal(0.0))

	most, ok := Best(outcomes, "kinetic_energy", true)
	g.Expect(ok).To(BeTrue())
	g.Expect(most.Params["vx"]).NotTo(Equal(0.0))

	_, ok = Best(outcomes, "missing", false)
	g.Expect(ok).To(BeFalse())
}

func TestGridSearch_BuildErrorsAreReported(t *testing.T) {
	g := NewWithT(t)
	gs := NewGridSearch([]string{"colour"}, [][]float64{{1}})

	outcomes, err := gs.Run(context.Background(), orbitBuilder(1))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(errors.Is(outcomes[0].Err, config.ErrInvalidConfig)).To(BeTrue())

	_, ok := Best(outcomes, "kinetic_energy", false)
	g.Expect(ok).To(BeFalse())
}

func TestGridSearch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gs := NewGridSearch([]string{"vx"}, [][]float64{{0, 0.1}})
	_, err := gs.Run(ctx, orbitBuilder(50))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
