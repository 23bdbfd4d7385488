package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"runtime"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/pdratio/internal/analysis"
	"github.com/san-kum/pdratio/internal/config"
	"github.com/san-kum/pdratio/internal/estimator"
	"github.com/san-kum/pdratio/internal/logger"
	"github.com/san-kum/pdratio/internal/path"
	"github.com/san-kum/pdratio/internal/storage"
	"github.com/san-kum/pdratio/internal/sweep"
	"github.com/san-kum/pdratio/internal/viz"
)

func newEstimator(cfg *config.Config, log *zap.SugaredLogger) *estimator.Estimator {
	est := estimator.New(cfg.Model)
	est.SetWorkers(cfg.Workers)
	est.SetSeedOffset(cfg.SeedOffset)
	est.SetLogger(log)
	return est
}

func runEstimate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	grid := cfg.GridPoints()
	est := newEstimator(cfg, log)

	fmt.Printf("estimating v(x) at %d states (N=%d, M=%d, workers=%d)...\n",
		len(grid), cfg.Model.N, cfg.Model.M, est.Workers())

	result, err := est.Run(cmd.Context(), grid)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n\n", result.Elapsed)
	if err := printValues(result); err != nil {
		return err
	}
	printSummary(result)

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(runLabel(), cfg, result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func printValues(result *estimator.Result) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tX\tV(X)\tSTDERR")
	for _, pt := range result.Points() {
		fmt.Fprintf(w, "%d\t%.4f\t%.6f\t%.6f\n", pt.Index, pt.X, pt.Value, pt.StdErr)
	}
	return w.Flush()
}

func printSummary(result *estimator.Result) {
	if result.Len() == 0 {
		return
	}
	fmt.Println()
	fmt.Println(viz.PlotASCII(result.Grid, result.Values, "v(x)"))
	fmt.Println()

	if !result.AllFinite() {
		fmt.Println("warning: some estimates overflowed")
		return
	}
	if slope, err := analysis.Slope(result.Grid, result.Values); err == nil {
		fmt.Printf("slope dv/dx: %.4f\n", slope)
	}
}

func runPath(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	stat := path.SimulateStatistic(x0, cfg.Model, seed)
	elapsed := time.Since(start)

	fmt.Printf("x0: %.4f\n", x0)
	fmt.Printf("seed: %d\n", seed)
	fmt.Printf("steps: %d\n", cfg.Model.N)
	fmt.Printf("statistic: %.6f\n", stat)
	fmt.Printf("skeleton: %.6f\n", path.Deterministic(x0, cfg.Model))
	fmt.Printf("elapsed: %v\n", elapsed)
	return nil
}

func runConverge(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("replicating v(%.4f) %d times per M...\n\n", x0, reps)
	rows, err := analysis.Convergence(cmd.Context(), cfg.Model, x0, mValues, reps)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "M\tMEAN\tSTDDEV\tEXPECTED\tRATIO")
	for i, row := range rows {
		ratio := "-"
		if i > 0 {
			ratio = fmt.Sprintf("%.3f (expected %.3f)", analysis.ShrinkRatio(rows[i-1], row), analysis.ExpectedRatio(rows[i-1], row))
		}
		fmt.Fprintf(w, "%d\t%.6f\t%.6f\t%.6f\t%s\n", row.M, row.Mean, row.StdDev, row.Expected, ratio)
	}
	return w.Flush()
}

func runTruncation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	rows, err := analysis.Truncation(cfg.Model, x0, horizons)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tSKELETON\tREL CHANGE")
	for i, row := range rows {
		change := "-"
		if i+1 < len(rows) {
			change = fmt.Sprintf("%.3e", row.RelChange)
		}
		fmt.Fprintf(w, "%d\t%.6f\t%s\n", row.N, row.Value, change)
	}
	return w.Flush()
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ps := &sweep.ParameterSweep{
		Base:      cfg.Model,
		ParamName: args[0],
		ParamMin:  paramFrom,
		ParamMax:  paramTo,
		NumSteps:  numSteps,
		X0:        x0,
		Workers:   cfg.Workers,
	}

	fmt.Printf("scanning %s from %g to %g at x0=%.4f...\n\n", args[0], paramFrom, paramTo, x0)
	results, err := ps.Run(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tV(X0)\tSTDERR\n", args[0])
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%.6f\t%.6f\n", r.ParamValue, r.Value, r.StdErr)
	}
	return w.Flush()
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	grid := cfg.GridPoints()
	if len(grid) == 0 {
		return fmt.Errorf("bench needs at least one grid point")
	}

	counts := []int{}
	for n := 1; n < runtime.GOMAXPROCS(0); n *= 2 {
		counts = append(counts, n)
	}
	counts = append(counts, runtime.GOMAXPROCS(0))

	fmt.Printf("benchmarking %d states, N=%d, M=%d...\n\n", len(grid), cfg.Model.N, cfg.Model.M)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tELAPSED\tSTEPS/SEC\tSPEEDUP\tIDENTICAL")

	var baseline *estimator.Result
	for _, n := range counts {
		est := estimator.New(cfg.Model)
		est.SetWorkers(n)
		est.SetSeedOffset(cfg.SeedOffset)

		res, err := est.Run(cmd.Context(), grid)
		if err != nil {
			return err
		}
		if baseline == nil {
			baseline = res
		}

		rate := float64(res.Simulations()) * float64(res.Steps) / res.Elapsed.Seconds()
		speedup := baseline.Elapsed.Seconds() / res.Elapsed.Seconds()
		fmt.Fprintf(w, "%d\t%v\t%.3g\t%.2fx\t%v\n",
			n, res.Elapsed.Truncate(time.Millisecond), rate, speedup, sameValues(baseline, res))
	}
	return w.Flush()
}

func sameValues(a, b *estimator.Result) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.Values {
		if math.Float64bits(a.Values[i]) != math.Float64bits(b.Values[i]) {
			return false
		}
	}
	return true
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	grid := cfg.GridPoints()
	prog := tea.NewProgram(viz.NewProgress(grid, cfg.Model, cancel))

	// Log lines would interleave with the view.
	est := newEstimator(cfg, logger.Nop())
	est.AddObserver(viz.Forward(prog))

	done := make(chan struct{})
	go func() {
		defer close(done)
		res, err := est.Run(ctx, grid)
		prog.Send(viz.DoneMsg{Result: res, Err: err})
	}()

	final, err := prog.Run()
	cancel()
	<-done
	if err != nil {
		return err
	}

	m := final.(viz.Progress)
	if m.Result() == nil {
		if m.Err() != nil && !m.Quitting() {
			return m.Err()
		}
		fmt.Println("cancelled")
		return nil
	}

	if err := printValues(m.Result()); err != nil {
		return err
	}
	printSummary(m.Result())

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(runLabel(), cfg, m.Result())
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}
