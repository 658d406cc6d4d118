package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/experiment"
	"github.com/san-kum/fieldsim/internal/optim"
)

var (
	sweepParams []string
	sweepMetric string
	maximize    bool
	workers     int
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "run a scene over a parameter grid",
		Long: "Runs one headless experiment per grid point. Parameters are given as\n" +
			"name=v1,v2,... and apply to every body (or to the scene settings).\n" +
			"Known parameters: " + strings.Join(config.ParamNames(), ", "),
		Args: cobra.MaximumNArgs(1),
		RunE: runSweep,
	}
	cmd.Flags().StringVar(&configFile, "config", "", "scene file path (yaml)")
	cmd.Flags().IntVar(&fps, "fps", config.DefaultFps, "frames per second")
	cmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames per run")
	cmd.Flags().IntVar(&density, "density", 0, "streamlines per static charge")
	cmd.Flags().StringVar(&marks, "marks", "distance", "direction mark mode (distance, potential)")
	cmd.Flags().BoolVar(&interact, "interaction", false, "bodies act on each other")
	cmd.Flags().StringArrayVarP(&sweepParams, "param", "p", nil, "parameter range, e.g. angle=0,0.5,1")
	cmd.Flags().StringVar(&sweepMetric, "metric", "survival", "metric used to pick the best point")
	cmd.Flags().BoolVar(&maximize, "maximize", false, "pick the highest metric instead of the lowest (default on for survival)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")
	return cmd
}

// higherIsBetter lists metrics where a larger value is the better run.
var higherIsBetter = map[string]bool{
	"survival": true,
}

// bestDirection honours an explicit --maximize and otherwise follows the
// metric's natural direction.
func bestDirection(cmd *cobra.Command, metric string) bool {
	if cmd.Flags().Changed("maximize") {
		return maximize
	}
	return higherIsBetter[metric]
}

// parseRange parses name=v1,v2,...
func parseRange(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("invalid parameter %q: want name=v1,v2,...", s)
	}
	var vals []float64
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid parameter %q: %w", s, err)
		}
		vals = append(vals, v)
	}
	return strings.TrimSpace(name), vals, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	if len(sweepParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}
	var names []string
	var ranges [][]float64
	for _, p := range sweepParams {
		name, vals, err := parseRange(p)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	// streamlines do not affect bodies; skip them unless asked
	if !cmd.Flags().Changed("density") {
		density = 0
		if err := cmd.Flags().Set("density", "0"); err != nil {
			return err
		}
	}

	preset := presetArg(args, 0)
	build := func(p optim.Point) (*experiment.Experiment, error) {
		cfg, err := loadScene(cmd, preset)
		if err != nil {
			return nil, err
		}
		for k, v := range p {
			if err := cfg.SetParam(k, v); err != nil {
				return nil, err
			}
		}
		sim, err := cfg.Build(nil)
		if err != nil {
			return nil, err
		}
		exp := experiment.New(experiment.Config{Name: cfg.Name, Frames: cfg.Frames, Fps: cfg.Fps}, sim)
		for _, m := range experiment.DefaultMetrics() {
			exp.AddMetric(m)
		}
		return exp, nil
	}

	gs := optim.NewGridSearch(names, ranges)
	if workers > 0 {
		gs.Workers = workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "sweeping %d points on %d workers...\n\n", len(gs.Points()), gs.Workers)
	outcomes, err := gs.Run(ctx, build)
	if err != nil {
		return err
	}

	var metricNames []string
	for _, o := range outcomes {
		if o.Err == nil {
			for k := range o.Metrics {
				metricNames = append(metricNames, k)
			}
			break
		}
	}
	sort.Strings(metricNames)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(append(append([]string{}, names...), metricNames...), "\t")))
	for _, o := range outcomes {
		cells := make([]string, 0, len(names)+len(metricNames))
		for _, n := range names {
			cells = append(cells, strconv.FormatFloat(o.Params[n], 'g', 6, 64))
		}
		if o.Err != nil {
			cells = append(cells, "error: "+o.Err.Error())
		} else {
			for _, m := range metricNames {
				cells = append(cells, fmt.Sprintf("%.4g", o.Metrics[m]))
			}
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	best, ok := optim.Best(outcomes, sweepMetric, bestDirection(cmd, sweepMetric))
	if !ok {
		return fmt.Errorf("no successful run reported %q", sweepMetric)
	}
	fmt.Fprintf(out, "\nbest %s: %.6g at", sweepMetric, best.Metrics[sweepMetric])
	for _, n := range names {
		fmt.Fprintf(out, " %s=%g", n, best.Params[n])
	}
	fmt.Fprintln(out)
	return nil
}
