package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/engine"
	"github.com/san-kum/fieldsim/internal/experiment"
	"github.com/san-kum/fieldsim/internal/export"
	"github.com/san-kum/fieldsim/internal/metrics"
	"github.com/san-kum/fieldsim/internal/storage"
	"github.com/san-kum/fieldsim/internal/viz"
)

const defaultPreset = "dipole"

var (
	dataDir    string
	configFile string
	verbose    bool
	fps        int
	frames     int
	density    int
	marks      string
	interact   bool
	save       bool
	svgOut     string
	svgWidth   int
	svgHeight  int
	noTrails   bool
	jsonOut    string
	column     string
)

// main registers the commands and flags; with no subcommand it opens the live
// viewer on the default preset.
func main() {
	rootCmd := &cobra.Command{
		Use:          "fieldsim",
		Short:        "electrostatic field and charged body simulator",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fieldsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log engine events to stderr")

	sceneFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&configFile, "config", "", "scene file path (yaml)")
		cmd.Flags().IntVar(&fps, "fps", config.DefaultFps, "frames per second")
		cmd.Flags().IntVar(&density, "density", engine.DefaultDensity, "streamlines per static charge")
		cmd.Flags().StringVar(&marks, "marks", "distance", "direction mark mode (distance, potential)")
		cmd.Flags().BoolVar(&interact, "interaction", false, "bodies act on each other")
	}
	sceneFlags(rootCmd)

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "interactive terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	sceneFlags(liveCmd)

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scene headless and report energy and survival",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHeadless,
	}
	sceneFlags(runCmd)
	runCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	runCmd.Flags().BoolVar(&save, "save", false, "store the run under the data directory")

	svgCmd := &cobra.Command{
		Use:   "svg [preset]",
		Short: "simulate and write the final frame as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSVG,
	}
	sceneFlags(svgCmd)
	svgCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	svgCmd.Flags().StringVarP(&svgOut, "out", "o", "field.svg", "output file (- for stdout)")
	svgCmd.Flags().IntVar(&svgWidth, "width", 960, "image width")
	svgCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")
	svgCmd.Flags().BoolVar(&noTrails, "no-trails", false, "omit body trails")

	probeCmd := &cobra.Command{
		Use:   "probe x y [preset]",
		Short: "sample field and potential at a point",
		Args:  cobra.RangeArgs(2, 3),
		RunE:  runProbe,
	}
	sceneFlags(probeCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scene presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSTATICS\tBODIES\tMARKS")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", name, len(p.Statics), len(p.Bodies), p.Settings.MarkMode)
			}
			return w.Flush()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored run series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "period and phase portrait of the tracked body",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&column, "column", "angle", "series to analyze")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&jsonOut, "out", "o", "-", "output file (- for stdout)")

	rootCmd.AddCommand(liveCmd, runCmd, svgCmd, probeCmd, presetsCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd, newSweepCmd(), newScriptCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *log.Logger {
	if !verbose {
		return nil
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "fieldsim",
		Level:           log.DebugLevel,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
	})
}

// loadScene picks the scene from --config, a preset argument or the default
// preset, then applies flags the user set explicitly.
func loadScene(cmd *cobra.Command, preset string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	default:
		if preset == "" {
			preset = defaultPreset
		}
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	flags := cmd.Flags()
	if flags.Changed("fps") {
		cfg.Fps = fps
	}
	if flags.Lookup("frames") != nil && flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("density") {
		cfg.Settings.Density = density
	}
	if flags.Changed("marks") {
		cfg.Settings.MarkMode = marks
	}
	if flags.Changed("interaction") {
		cfg.Settings.Interaction = interact
	}
	return cfg, cfg.Validate()
}

func presetArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, presetArg(args, 0))
	if err != nil {
		return err
	}
	// no logger: the alt screen owns the terminal
	sim, err := cfg.Build(nil)
	if err != nil {
		return err
	}
	return viz.Run(viz.NewModel(sim, cfg.Name, cfg.Bounds(), cfg.Fps))
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, presetArg(args, 0))
	if err != nil {
		return err
	}
	sim, err := cfg.Build(newLogger())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exp := experiment.New(experiment.Config{Name: cfg.Name, Frames: cfg.Frames, Fps: cfg.Fps}, sim)
	energy, survival := metrics.NewEnergy(), metrics.NewSurvival()
	exp.AddMetric(energy)
	exp.AddMetric(survival)
	exp.AddMetric(metrics.NewPeakEnergy())

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "running %s: %d frames at %d fps...\n", cfg.Name, cfg.Frames, cfg.Fps)
	start := time.Now()
	res, runErr := exp.Run(ctx)
	if res == nil {
		return runErr
	}
	fmt.Fprintf(out, "completed in %v\n\n", time.Since(start))

	printFrames(out, res, cfg.Fps)

	if len(energy.History()) > 1 {
		fmt.Fprintln(out, asciigraph.Plot(energy.History(), asciigraph.Height(8), asciigraph.Width(70), asciigraph.Caption("kinetic energy (J)")))
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(survival.History(), asciigraph.Height(4), asciigraph.Width(70), asciigraph.Caption("live bodies")))
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "metrics:")
	for _, m := range []engine.Metric{energy, survival} {
		fmt.Fprintf(out, "  %s: %.6g\n", m.Name(), m.Value())
	}
	for _, r := range res.Removals {
		fmt.Fprintf(out, "  removed: %s\n", r)
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(res, cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nrun id: %s\n", runID)
	}
	return runErr
}

// printFrames tabulates one row per simulated second plus the last frame.
func printFrames(out io.Writer, res *experiment.Result, fps int) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FRAME\tTIME\tBODIES\tTRACERS\tKINETIC")
	for i, f := range res.Frames {
		if (i+1)%fps != 0 && i != len(res.Frames)-1 {
			continue
		}
		fmt.Fprintf(w, "%d\t%.2fs\t%d\t%d\t%.4g\n", i+1, f.Time, f.Bodies, f.ActiveTracers, f.Kinetic)
	}
	w.Flush()
	fmt.Fprintln(out)
}

func runSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, presetArg(args, 0))
	if err != nil {
		return err
	}
	sim, err := cfg.Build(newLogger())
	if err != nil {
		return err
	}

	trails := export.Trails{}
	exp := experiment.New(experiment.Config{Name: cfg.Name, Frames: cfg.Frames, Fps: cfg.Fps}, sim)
	if !noTrails {
		exp.OnFrame(trails.Record)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	res, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	if svgOut == "-" {
		return export.WriteSVG(cmd.OutOrStdout(), res.Last, trails, cfg.Bounds(), svgWidth, svgHeight)
	}
	f, err := os.Create(svgOut)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.WriteSVG(f, res.Last, trails, cfg.Bounds(), svgWidth, svgHeight); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (frame %d, %d streamlines)\n", svgOut, res.Last.Frame, len(res.Last.Streamlines))
	return nil
}

func runProbe(cmd *cobra.Command, args []string) error {
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid x: %w", err)
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid y: %w", err)
	}
	cfg, err := loadScene(cmd, presetArg(args, 2))
	if err != nil {
		return err
	}
	sim, err := cfg.Build(newLogger())
	if err != nil {
		return err
	}

	s := sim.Probe(x, y)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "scene\t%s\n", cfg.Name)
	fmt.Fprintf(w, "point\t(%g, %g) m\n", x, y)
	fmt.Fprintf(w, "E\t(%.4e, %.4e) N/C\n", s.E.X, s.E.Y)
	fmt.Fprintf(w, "|E|\t%.4e N/C\n", s.E.Len())
	fmt.Fprintf(w, "V\t%.4e V\n", s.V)
	fmt.Fprintf(w, "nearest\t%.4g m\n", s.Nearest)
	if sim.Evaluator().TooClose(s) {
		fmt.Fprintf(w, "guard\tinside %.3g m of a charge\n", sim.Evaluator().Guard)
	}
	return w.Flush()
}
