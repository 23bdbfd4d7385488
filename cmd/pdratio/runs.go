package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/pdratio/internal/config"
	"github.com/san-kum/pdratio/internal/storage"
	"github.com/san-kum/pdratio/internal/sweep"
	"github.com/san-kum/pdratio/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tTIME\tPOINTS\tN\tM\tELAPSED\tFINITE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.0fms\t%v\n",
			run.ID,
			run.Label,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Grid.Points,
			run.Params.N,
			run.Params.M,
			run.ElapsedMs,
			run.Finite,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	records, err := st.LoadValues(runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no data to plot")
	}

	grid, values, stderrs := storage.Split(records)
	title := fmt.Sprintf("v(x), %s (N=%d, M=%d)", meta.Label, meta.Params.N, meta.Params.M)

	if pngPath != "" {
		if err := viz.SavePNG(pngPath, grid, values, stderrs, title); err != nil {
			return err
		}
		fmt.Printf("saved %s\n", pngPath)
		return nil
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("label: %s\n", meta.Label)
	fmt.Printf("points: %d\n\n", len(records))
	fmt.Println(viz.PlotASCII(grid, values, title))
	fmt.Println()
	fmt.Println(viz.Sparkline(values))
	return nil
}

// output returns stdout or the file named by --out.
func output() (io.WriteCloser, error) {
	if outPath == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outPath)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// writeOutput runs write against the output and reports a failed Close of
// the --out file like a failed write.
func writeOutput(write func(w io.Writer) error) error {
	w, err := output()
	if err != nil {
		return err
	}
	return finish(w, write(w))
}

func finish(w io.Closer, err error) error {
	if cerr := w.Close(); cerr != nil && err == nil {
		return cerr
	}
	return err
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return writeOutput(func(w io.Writer) error {
		return storage.New(dataDir).ExportCSV(w, args[0])
	})
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return writeOutput(func(w io.Writer) error {
		return storage.New(dataDir).ExportJSON(w, args[0])
	})
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGAMMA\tRHO\tSIGMA\tN\tM")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name).Model
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%d\t%d\n", name, p.Gamma, p.Rho, p.Sigma, p.N, p.M)
	}
	return w.Flush()
}

func showParams(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Println(viz.ParamsTable(runLabel(), cfg.Model))
	fmt.Printf("grid: %d points from %g to %g\n", cfg.Grid.Points, cfg.Grid.Min, cfg.Grid.Max)
	fmt.Printf("workers: %d\n", cfg.Workers)
	fmt.Printf("seed offset: %d\n", cfg.SeedOffset)
	fmt.Printf("log drift: %g\n", cfg.Model.LogDrift())
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	scenario, err := sweep.LoadScenario(args[0])
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario: %s (%d steps)\n", scenario.Name, len(scenario.Steps))
	if scenario.Description != "" {
		fmt.Printf("%s\n", scenario.Description)
	}

	results, err := scenario.Run(cmd.Context(), st, log)

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN ID\tPOINTS\tELAPSED\tFINITE")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%v\n", r.Name, r.RunID, r.Result.Len(), r.Result.Elapsed, r.Result.AllFinite())
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}
