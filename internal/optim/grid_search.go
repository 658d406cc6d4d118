package optim

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/fieldsim/internal/experiment"
)

// Point is one assignment of every swept parameter.
type Point map[string]float64

type Outcome struct {
	Params  Point
	Metrics map[string]float64
	Err     error
}

// GridSearch runs one experiment per point of the cartesian product of the
// parameter ranges. Each experiment owns its simulation, so runs are
// independent and execute on up to Workers goroutines.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	Workers    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, Workers: runtime.GOMAXPROCS(0)}
}

// Points enumerates the grid with the last parameter varying fastest.
func (g *GridSearch) Points() []Point {
	if len(g.paramNames) == 0 || len(g.paramNames) != len(g.ranges) {
		return nil
	}
	var out []Point
	g.pointsRecursive(0, Point{}, &out)
	return out
}

func (g *GridSearch) pointsRecursive(depth int, current Point, out *[]Point) {
	if depth == len(g.paramNames) {
		p := make(Point, len(current))
		for k, v := range current {
			p[k] = v
		}
		*out = append(*out, p)
		return
	}
	for _, val := range g.ranges[depth] {
		current[g.paramNames[depth]] = val
		g.pointsRecursive(depth+1, current, out)
	}
}

// Run builds an experiment per point and runs them concurrently. Build is
// called from the calling goroutine only. A failing run is reported in its
// Outcome; only cancellation aborts the search.
func (g *GridSearch) Run(ctx context.Context, build func(Point) (*experiment.Experiment, error)) ([]Outcome, error) {
	points := g.Points()
	if points == nil {
		return nil, fmt.Errorf("grid search needs one range per parameter")
	}
	outcomes := make([]Outcome, len(points))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(g.Workers, 1))
	for i, p := range points {
		i := i
		outcomes[i].Params = p
		exp, err := build(p)
		if err != nil {
			outcomes[i].Err = err
			continue
		}
		eg.Go(func() error {
			res, err := exp.Run(ctx)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			outcomes[i].Err = err
			if res != nil {
				outcomes[i].Metrics = res.Metrics
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// Best returns the successful outcome with the lowest metric value, or the
// highest when maximize is set.
func Best(outcomes []Outcome, metric string, maximize bool) (Outcome, bool) {
	best := math.Inf(1)
	if maximize {
		best = math.Inf(-1)
	}
	idx := -1
	for i, o := range outcomes {
		if o.Err != nil {
			continue
		}
		v, ok := o.Metrics[metric]
		if !ok {
			continue
		}
		if (maximize && v > best) || (!maximize && v < best) {
			best, idx = v, i
		}
	}
	if idx < 0 {
		return Outcome{}, false
	}
	return outcomes[idx], true
}
