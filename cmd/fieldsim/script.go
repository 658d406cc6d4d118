package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/fieldsim/internal/automation"
	"github.com/san-kum/fieldsim/internal/storage"
)

func newScriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script [scenario.yaml]",
		Short: "run a scripted command timeline headless",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}
	cmd.Flags().BoolVar(&save, "save", false, "store the run under the data directory")
	return cmd
}

func runScript(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scenario %s: %d frames, %d events\n", scenario.Name, scenario.Frames, len(scenario.Events))
	if scenario.Description != "" {
		fmt.Fprintf(out, "  %s\n", scenario.Description)
	}
	fmt.Fprintln(out)

	res, scene, runErr := automation.RunScenario(ctx, scenario, newLogger())
	if res == nil {
		return runErr
	}
	printFrames(out, res, res.Fps)
	for _, r := range res.Removals {
		fmt.Fprintf(out, "removed: %s\n", r)
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(res, scene)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "run id: %s\n", runID)
	}
	return runErr
}
