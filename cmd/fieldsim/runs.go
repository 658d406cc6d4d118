package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/fieldsim/internal/analysis"
	"github.com/san-kum/fieldsim/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tFRAMES\tFPS\tTRACKED\tSURVIVAL")
	for _, run := range runs {
		tracked := run.TrackedKind
		if tracked == "" {
			tracked = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%.2f\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Fps,
			tracked,
			run.Metrics["survival"],
		)
	}
	return w.Flush()
}

type seriesPlot struct {
	column, caption string
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(series.Rows) < 2 {
		return fmt.Errorf("no data to plot")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "scene: %s\n", meta.Name)
	fmt.Fprintf(out, "frames: %d\n\n", len(series.Rows))

	plots := []seriesPlot{
		{"kinetic", "kinetic energy (J)"},
		{"bodies", "live bodies"},
		{"tracers", "growing streamlines"},
	}
	if meta.TrackedKind != "" {
		plots = append(plots,
			seriesPlot{"x", fmt.Sprintf("%s #%d x (m)", meta.TrackedKind, meta.TrackedID)},
			seriesPlot{"y", fmt.Sprintf("%s #%d y (m)", meta.TrackedKind, meta.TrackedID)},
		)
		if meta.TrackedKind == "dipole" {
			plots = append(plots, seriesPlot{"angle", "dipole angle (rad)"})
		}
	}

	for _, p := range plots {
		data, ok := series.Column(p.column)
		if !ok {
			continue
		}
		fmt.Fprintln(out, asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		))
		fmt.Fprintln(out)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	data, ok := series.Column(column)
	if !ok {
		return fmt.Errorf("unknown column %q (available: %v)", column, series.Header)
	}
	if len(data) < 4 {
		return fmt.Errorf("no data")
	}
	if meta.Fps <= 0 {
		return fmt.Errorf("run %s has no frame rate", meta.ID)
	}
	dt := 1 / float64(meta.Fps)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "frequency analysis: %s\n", meta.ID)
	fmt.Fprintf(out, "series: %s\n\n", column)

	ps := analysis.PowerSpectrum(data)
	plotData := ps
	if len(plotData) > 8 {
		plotData = plotData[:len(plotData)/2]
	}
	fmt.Fprintln(out, asciigraph.Plot(plotData,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s)", column)),
	))
	fmt.Fprintln(out)

	if p, ok := analysis.DominantPeriod(data, dt); ok {
		fmt.Fprintf(out, "dominant period: %.4gs (%.4g Hz)\n", p, 1/p)
	} else {
		fmt.Fprintln(out, "dominant period: none")
	}
	if p, ok := analysis.CrossingPeriod(data, dt, analysis.Mean(data)); ok {
		fmt.Fprintf(out, "crossing period: %.4gs\n", p)
	}

	if meta.TrackedKind == "dipole" {
		angle, _ := series.Column("angle")
		omega, _ := series.Column("omega")
		fmt.Fprintln(out, "\nphase portrait (angle vs omega):")
		fmt.Fprint(out, analysis.NewPortrait(angle, omega).ASCII(60, 16))
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if jsonOut == "-" || jsonOut == "" {
		return st.ExportJSON(cmd.OutOrStdout(), args[0])
	}

	f, err := os.Create(jsonOut)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := st.ExportJSON(f, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", args[0], jsonOut)
	return nil
}
