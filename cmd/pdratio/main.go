package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/pdratio/internal/config"
	"github.com/san-kum/pdratio/internal/logger"
)

var (
	dataDir  string
	logLevel string

	configFile string
	preset     string

	beta   float64
	gamma  float64
	rho    float64
	sigma  float64
	muD    float64
	sigmaD float64
	muC    float64
	sigmaC float64
	steps  int
	paths  int

	gridMin    float64
	gridMax    float64
	gridPoints int
	workers    int
	seedOffset uint64

	x0        float64
	seed      uint64
	noSave    bool
	pngPath   string
	outPath   string
	label     string
	mValues   []int
	reps      int
	horizons  []int
	paramFrom float64
	paramTo   float64
	numSteps  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "pdratio",
		Short:        "monte carlo price-dividend ratio estimator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pdratio", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	estimateCmd := &cobra.Command{
		Use:   "estimate",
		Short: "estimate v(x) over the state grid",
		RunE:  runEstimate,
	}
	addModelFlags(estimateCmd)
	addGridFlags(estimateCmd)
	estimateCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	estimateCmd.Flags().StringVar(&label, "label", "", "label stored with the run (defaults to the preset)")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "simulate one path statistic",
		RunE:  runPath,
	}
	addModelFlags(pathCmd)
	pathCmd.Flags().Float64Var(&x0, "x0", 0, "initial state")
	pathCmd.Flags().Uint64Var(&seed, "seed", 0, "path seed")

	convergeCmd := &cobra.Command{
		Use:   "converge",
		Short: "measure how the estimate spread shrinks with M",
		RunE:  runConverge,
	}
	addModelFlags(convergeCmd)
	convergeCmd.Flags().Float64Var(&x0, "x0", 0, "state to estimate at")
	convergeCmd.Flags().IntSliceVar(&mValues, "ms", []int{250, 1000, 4000}, "paths per estimate")
	convergeCmd.Flags().IntVar(&reps, "replicates", 16, "estimates per M")

	truncationCmd := &cobra.Command{
		Use:   "truncation",
		Short: "show how the deterministic skeleton depends on N",
		RunE:  runTruncation,
	}
	addModelFlags(truncationCmd)
	truncationCmd.Flags().Float64Var(&x0, "x0", 0, "initial state")
	truncationCmd.Flags().IntSliceVar(&horizons, "horizons", []int{100, 250, 500, 1000, 2000, 4000}, "path lengths")

	scanCmd := &cobra.Command{
		Use:   "scan [param]",
		Short: "estimate v(x0) across a range of one parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}
	addModelFlags(scanCmd)
	scanCmd.Flags().Float64Var(&x0, "x0", 0, "state to estimate at")
	scanCmd.Flags().Float64Var(&paramFrom, "from", 0, "first parameter value")
	scanCmd.Flags().Float64Var(&paramTo, "to", 1, "last parameter value")
	scanCmd.Flags().IntVar(&numSteps, "steps", 5, "number of parameter values")
	scanCmd.Flags().IntVar(&workers, "workers", 0, "concurrent grid points (0 = GOMAXPROCS)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored value function",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&pngPath, "png", "", "write an image instead of an ascii plot")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run values to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and values to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	paramsCmd := &cobra.Command{
		Use:   "params",
		Short: "show the resolved configuration",
		RunE:  showParams,
	}
	addModelFlags(paramsCmd)
	addGridFlags(paramsCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario.yaml]",
		Short: "run a scripted batch of estimations",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "estimate with a live progress view",
		RunE:  runLive,
	}
	addModelFlags(liveCmd)
	addGridFlags(liveCmd)
	liveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure throughput across worker counts",
		RunE:  runBench,
	}
	addModelFlags(benchCmd)
	addGridFlags(benchCmd)

	rootCmd.AddCommand(estimateCmd, pathCmd, convergeCmd, truncationCmd, scanCmd, listCmd, plotCmd,
		exportCSVCmd, exportJSONCmd, presetsCmd, paramsCmd, sweepCmd, liveCmd, benchCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Float64Var(&beta, "beta", 0, "time discount factor")
	f.Float64Var(&gamma, "gamma", 0, "relative risk aversion")
	f.Float64Var(&rho, "rho", 0, "state persistence")
	f.Float64Var(&sigma, "sigma", 0, "state shock volatility")
	f.Float64Var(&muD, "mu-d", 0, "mean dividend growth")
	f.Float64Var(&sigmaD, "sigma-d", 0, "dividend growth volatility")
	f.Float64Var(&muC, "mu-c", 0, "mean consumption growth")
	f.Float64Var(&sigmaC, "sigma-c", 0, "consumption growth volatility")
	f.IntVar(&steps, "n", 0, "path length N")
	f.IntVar(&paths, "m", 0, "paths per grid point M")
}

func addGridFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&gridMin, "grid-min", 0, "smallest grid state")
	f.Float64Var(&gridMax, "grid-max", 0, "largest grid state")
	f.IntVar(&gridPoints, "points", 0, "number of grid states")
	f.IntVar(&workers, "workers", 0, "concurrent grid points (0 = GOMAXPROCS)")
	f.Uint64Var(&seedOffset, "seed-offset", 0, "first path seed of every batch")
}

// resolveConfig layers flags over the config file over the preset over
// the defaults, then validates the result.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Overlay(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	set := func(name string, apply func()) {
		if f.Lookup(name) != nil && f.Changed(name) {
			apply()
		}
	}
	set("beta", func() { cfg.Model.Beta = beta })
	set("gamma", func() { cfg.Model.Gamma = gamma })
	set("rho", func() { cfg.Model.Rho = rho })
	set("sigma", func() { cfg.Model.Sigma = sigma })
	set("mu-d", func() { cfg.Model.MuD = muD })
	set("sigma-d", func() { cfg.Model.SigmaD = sigmaD })
	set("mu-c", func() { cfg.Model.MuC = muC })
	set("sigma-c", func() { cfg.Model.SigmaC = sigmaC })
	set("n", func() { cfg.Model.N = steps })
	set("m", func() { cfg.Model.M = paths })
	set("grid-min", func() { cfg.Grid.Min = gridMin })
	set("grid-max", func() { cfg.Grid.Max = gridMax })
	set("points", func() { cfg.Grid.Points = gridPoints })
	set("workers", func() { cfg.Workers = workers })
	set("seed-offset", func() { cfg.SeedOffset = seedOffset })

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger() (*zap.SugaredLogger, error) {
	if logLevel == "" {
		return logger.New(), nil
	}
	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	return logger.NewWithLevel(level), nil
}

func runLabel() string {
	if label != "" {
		return label
	}
	if preset != "" {
		return preset
	}
	if configFile != "" {
		return configFile
	}
	return "custom"
}
