package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/gwdetect/internal/config"
	"github.com/san-kum/gwdetect/internal/logging"
	"github.com/san-kum/gwdetect/internal/power"
	"github.com/san-kum/gwdetect/internal/stats"
	"github.com/san-kum/gwdetect/internal/storage"
	"github.com/san-kum/gwdetect/internal/sweep"
	"github.com/san-kum/gwdetect/internal/timing"
	"github.com/san-kum/gwdetect/internal/tui"
	"github.com/san-kum/gwdetect/internal/viz"
)

var (
	dataDir  string
	logLevel string

	// Scenario flags
	initialConc    float64
	targetConc     float64
	slope          float64
	noiseSD        float64
	samplingYears  float64
	samplesPerYear float64
	implYears      float64
	seed           int64

	// Calculator flags
	testName  string
	nsims     int
	alpha     float64
	cores     int
	efficient bool

	// Sweep flags
	configFile string
	preset     string
	outPath    string
	condensed  bool
	live       bool
	save       bool
	sweepName  string

	// Timing flags
	iterations  int
	plannedRuns int

	// Plot flags
	plotParam string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gwdetect",
		Short: "groundwater trend detection power calculator",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gwdetect", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "estimate power for one scenario",
		RunE:  runSingle,
	}
	addScenarioFlags(runCmd)
	addCalculatorFlags(runCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a batch of scenarios in parallel",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&configFile, "config", "", "sweep config file (yaml)")
	sweepCmd.Flags().StringVar(&preset, "preset", "", "use preset sweep")
	sweepCmd.Flags().StringVar(&outPath, "out", "", "save results csv to path")
	sweepCmd.Flags().IntVar(&cores, "cores", 0, "worker count (0 = all cpus)")
	sweepCmd.Flags().IntVar(&nsims, "nsims", 0, "override simulation count")
	sweepCmd.Flags().BoolVar(&condensed, "condense", false, "enable condensed mode")
	sweepCmd.Flags().BoolVar(&live, "live", false, "live progress view")
	sweepCmd.Flags().BoolVar(&save, "save", false, "save sweep to the data directory")
	sweepCmd.Flags().StringVar(&sweepName, "name", "sweep", "sweep name for saved runs")

	timeCmd := &cobra.Command{
		Use:   "time",
		Short: "estimate sweep runtime from a few probe runs",
		RunE:  runTiming,
	}
	addScenarioFlags(timeCmd)
	addCalculatorFlags(timeCmd)
	timeCmd.Flags().IntVar(&iterations, "iterations", 3, "probe iterations")
	timeCmd.Flags().IntVar(&plannedRuns, "runs", 100, "planned run count")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved sweeps",
		RunE:  listSweeps,
	}

	errorsCmd := &cobra.Command{
		Use:   "errors [run_id]",
		Short: "print captured failures per run identifier",
		Args:  cobra.ExactArgs(1),
		RunE:  showErrors,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot power against one swept parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  plotSweep,
	}
	plotCmd.Flags().StringVar(&plotParam, "param", "noise_sd", "parameter for the x axis")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export sweep metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSweep,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset sweeps",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, sweepCmd, timeCmd, listCmd, errorsCmd, plotCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&initialConc, "initial-conc", 10.0, "initial concentration")
	cmd.Flags().Float64Var(&targetConc, "target-conc", 0.0, "target concentration (alternative to slope)")
	cmd.Flags().Float64Var(&slope, "slope", -0.5, "trend slope per year")
	cmd.Flags().Float64Var(&noiseSD, "noise-sd", 2.0, "noise standard deviation")
	cmd.Flags().Float64Var(&samplingYears, "years", 10.0, "sampling years")
	cmd.Flags().Float64Var(&samplesPerYear, "samples-per-year", 4.0, "samples per year")
	cmd.Flags().Float64Var(&implYears, "implementation-years", 0.0, "delay before the trend starts")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
}

func addCalculatorFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&testName, "test", power.DefaultTest, "significance test")
	cmd.Flags().IntVar(&nsims, "nsims", power.DefaultNSims, "simulation count")
	cmd.Flags().Float64Var(&alpha, "alpha", power.DefaultAlpha, "significance level")
	cmd.Flags().IntVar(&cores, "cores", 0, "worker count (0 = all cpus)")
	cmd.Flags().BoolVar(&efficient, "efficient", true, "skip simulation when the noiseless signal fails the test")
}

func flagScenario(id string) power.Scenario {
	return power.Scenario{
		ID:                  id,
		InitialConc:         initialConc,
		TargetConc:          targetConc,
		Slope:               slope,
		NoiseSD:             noiseSD,
		SamplingYears:       samplingYears,
		SamplesPerYear:      samplesPerYear,
		ImplementationYears: implYears,
		Seed:                seed,
	}
}

func flagCalculator() (*power.Calculator, error) {
	cfg := power.DefaultConfig()
	cfg.Test = testName
	cfg.NSims = nsims
	cfg.Alpha = alpha
	cfg.EfficientMode = efficient
	if cores > 0 {
		cfg.Cores = cores
	}
	test, err := stats.New(cfg.Test)
	if err != nil {
		return nil, err
	}
	return power.New(cfg, test)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runSingle(cmd *cobra.Command, args []string) error {
	calc, err := flagCalculator()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := calc.Power(ctx, flagScenario("single"))
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render("detection power"))
	fmt.Printf("  power:     %s\n", viz.Value.Render(fmt.Sprintf("%.1f%%", res.Power)))
	fmt.Printf("  detected:  %d / %d replicates\n", res.Detected, res.NSims)
	fmt.Printf("  noiseless p-value: %.4g\n", res.PValue)
	fmt.Printf("  elapsed:   %s\n", res.Elapsed)
	return nil
}

func loadSweepConfig() (*config.Config, error) {
	switch {
	case configFile != "":
		return config.Load(configFile)
	case preset != "":
		cfg := config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		return cfg, nil
	default:
		return nil, fmt.Errorf("sweep needs --config or --preset")
	}
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadSweepConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("cores") && cores > 0 {
		cfg.Calculator.Cores = cores
	}
	if cmd.Flags().Changed("nsims") && nsims > 0 {
		cfg.Calculator.NSims = nsims
	}
	if cmd.Flags().Changed("out") {
		cfg.Output = outPath
	}

	log := logging.New(os.Stderr, cfg.LogLevel)

	scenarios, err := cfg.Sweep.Scenarios()
	if err != nil {
		return err
	}

	test, err := stats.New(cfg.Calculator.Test)
	if err != nil {
		return err
	}
	calc, err := power.New(cfg.Calculator, test)
	if err != nil {
		return err
	}
	if condensed || len(cfg.Condensed) > 0 {
		if err := calc.SetCondensed(cfg.Condensed); err != nil {
			return err
		}
	}

	runner := sweep.NewRunner(calc, cfg.Calculator.Cores, log)
	if cfg.Output != "" {
		runner.SetOutput(cfg.Output)
	}

	ctx, cancel := signalContext()
	defer cancel()

	var table sweep.Table
	if live {
		table, err = runLiveSweep(ctx, runner, scenarios)
	} else {
		table, err = runner.Run(ctx, scenarios)
	}
	if err != nil {
		return err
	}

	printSweepSummary(calc, table)

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		active, _, _ := calc.Condensed()
		runID, err := st.Save(sweepName, cfg.Calculator, active, table)
		if err != nil {
			return err
		}
		fmt.Printf("saved as %s\n", viz.Value.Render(runID))
	}

	return nil
}

func runLiveSweep(ctx context.Context, runner *sweep.Runner, scenarios []power.Scenario) (sweep.Table, error) {
	prog := tea.NewProgram(tui.New(len(scenarios)))
	runner.OnProgress(func(p sweep.Progress) {
		prog.Send(tui.ProgressMsg(p))
	})

	type outcome struct {
		table sweep.Table
		err   error
	}
	resCh := make(chan outcome, 1)
	go func() {
		table, err := runner.Run(ctx, scenarios)
		prog.Send(tui.DoneMsg{})
		resCh <- outcome{table: table, err: err}
	}()

	if _, err := prog.Run(); err != nil {
		return nil, err
	}
	out := <-resCh
	return out.table, out.err
}

func printSweepSummary(calc *power.Calculator, table sweep.Table) {
	failed := table.Failed()

	fmt.Println(viz.Title.Render("sweep results"))
	fmt.Printf("  runs:   %d\n", len(table))
	if len(failed) == 0 {
		fmt.Printf("  failed: %s\n", viz.Ok.Render("0"))
	} else {
		fmt.Printf("  failed: %s\n", viz.Fail.Render(fmt.Sprintf("%d", len(failed))))
	}
	if active, hits, misses := calc.Condensed(); active {
		fmt.Printf("  condensed: %d simulated, %d shared\n", misses, hits)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPOWER\tDETECTED\tP-VALUE\tSTATUS")
	for _, r := range table {
		status := "ok"
		if r.Failed() {
			status = "error"
		} else if r.Cached {
			status = "shared"
		}
		fmt.Fprintf(w, "%s\t%.1f%%\t%d/%d\t%.3g\t%s\n", r.ID, r.Power, r.Detected, r.NSims, r.PValue, status)
	}
	w.Flush()

	for _, r := range failed {
		fmt.Printf("\n%s %s\n%s\n", viz.Fail.Render("failed:"), r.ID, viz.Subtle.Render(r.Err))
	}
}

func runTiming(cmd *cobra.Command, args []string) error {
	calc, err := flagCalculator()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	est, err := timing.Run(ctx, calc, flagScenario("probe"), iterations, plannedRuns, calc.Config().Cores)
	if err != nil {
		return err
	}
	fmt.Println(est)
	return nil
}

func listSweeps(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no sweeps found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tRUNS\tFAILED\tTEST\tNSIMS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Runs,
			run.Failed,
			run.Calculator.Test,
			run.Calculator.NSims,
		)
	}
	return w.Flush()
}

func showErrors(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	table, err := st.LoadResults(args[0])
	if err != nil {
		return err
	}

	failed := table.Failed()
	if len(failed) == 0 {
		fmt.Println(viz.Ok.Render("no failed runs"))
		return nil
	}

	for _, r := range failed {
		fmt.Printf("%s %s\n%s\n\n", viz.Fail.Render("run"), r.ID, r.Err)
	}
	return nil
}

func plotSweep(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	table, err := st.LoadResults(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("sweep: %s\nruns: %d\n\n", meta.ID, len(table))

	graph, err := viz.PowerCurve(table, plotParam)
	if err != nil {
		return err
	}
	fmt.Println(graph)
	return nil
}

func exportSweep(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
