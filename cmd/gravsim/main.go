package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/logging"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logFormat  string
	configFile string

	dt          float64
	steps       int
	sampleEvery int
	integrator  string
	bounce      bool
	seed        int64
	gravity     float64
	fragment    string

	escapeRadius float64
	showPlot     bool
	saveConfig   string

	outPath   string
	svgWidth  int
	svgHeight int

	stepsPerTick int
	theme        string
	logFile      string
	recordPath   string

	workers int
	asYAML  bool
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "gravsim",
		Short:         "2D n-body gravity simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := sim.DefaultOptions()
			opts.Tag = viz.NewPalette(0).Next
			log, closeLog, err := fileLogger()
			if err != nil {
				return err
			}
			defer closeLog()
			opts.Logger = log
			return viz.RunInteractive(opts, viz.LiveOptions{Theme: theme, Logger: log, RecordPath: recordPath})
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text|json)")
	rootCmd.Flags().StringVar(&theme, "theme", "deepspace", "colour theme ("+strings.Join(viz.ThemeNames(), "|")+")")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")
	rootCmd.Flags().StringVar(&recordPath, "record", "gravsim.gif", "gif recording path")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a simulation and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().Float64Var(&escapeRadius, "escape-radius", 1e8, "distance from the centre of mass counted as escaped")
	runCmd.Flags().BoolVar(&showPlot, "show", false, "draw trajectories after the run")
	runCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the resolved config to this yaml file")

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list built-in scenarios",
		RunE:  listScenarios,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render run trajectories to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.svg)")
	svgCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	svgCmd.Flags().IntVar(&svgHeight, "height", 800, "image height")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerTick, "speed", 1, "ticks per frame")
	liveCmd.Flags().StringVar(&theme, "theme", "deepspace", "colour theme ("+strings.Join(viz.ThemeNames(), "|")+")")
	liveCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")
	liveCmd.Flags().StringVar(&recordPath, "record", "gravsim.gif", "gif recording path")

	compareCmd := &cobra.Command{
		Use:   "compare [scenario] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same scenario",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addSimFlags(compareCmd)
	compareCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = GOMAXPROCS)")

	benchCmd := &cobra.Command{
		Use:   "bench [scenario]",
		Short: "benchmark steppers on a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScenario,
	}
	addSimFlags(benchCmd)

	fragmentCmd := &cobra.Command{
		Use:   "fragment [scenario]",
		Short: "print a scenario as a URL fragment",
		Args:  cobra.MaximumNArgs(1),
		RunE:  printFragment,
	}
	fragmentCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	fragmentCmd.Flags().StringVar(&fragment, "fragment", "", "re-encode bodies from a URL fragment")
	fragmentCmd.Flags().BoolVar(&asYAML, "yaml", false, "print yaml body records instead")

	rootCmd.AddCommand(runCmd, scenariosCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, svgCmd,
		liveCmd, compareCmd, benchCmd, fragmentCmd)
	addStudyCommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// addSimFlags registers the flags that override a scenario's run config.
func addSimFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", def.Dt, "timestep in internal seconds")
	cmd.Flags().IntVar(&steps, "steps", def.Steps, "number of ticks")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", def.SampleEvery, "record a frame every n ticks")
	cmd.Flags().StringVar(&integrator, "integrator", def.Integrator, "integrator ("+strings.Join(integrators.Names(), "|")+")")
	cmd.Flags().BoolVar(&bounce, "bounce", def.Bounce, "resolve collisions")
	cmd.Flags().Int64Var(&seed, "seed", def.Seed, "random seed")
	cmd.Flags().Float64Var(&gravity, "gravity", def.Gravity, "gravitational constant")
	cmd.Flags().StringVar(&fragment, "fragment", "", "load bodies from a URL fragment")
}

// resolveConfig builds the run config: scenario preset, then config file,
// then explicit flags. It returns the bodies the run starts from.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, []dynamo.Body, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if len(args) > 0 {
		preset, err := config.Preset(args[0])
		if err != nil {
			return nil, nil, fmt.Errorf("%w (available: %s)", err, strings.Join(config.ListScenarios(), ", "))
		}
		cfg.Scenario = preset.Scenario
		cfg.Bodies = nil
		if configFile == "" && preset.Steps > 0 {
			cfg.Steps = preset.Steps
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("bounce") {
		cfg.Bounce = bounce
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("gravity") {
		cfg.Gravity = gravity
	}

	if fragment != "" {
		bs, err := storage.DecodeFragment(fragment)
		if err != nil {
			return nil, nil, err
		}
		cfg.Bodies = storage.ToRecords(bs)
		if len(args) == 0 {
			cfg.Scenario = "fragment"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	bodies, err := cfg.InitialBodies()
	if err != nil {
		return nil, nil, err
	}
	return cfg, bodies, nil
}

func newLogger() *logging.Logger {
	return logging.New(os.Stderr, logFormat)
}

// fileLogger logs to --log-file, or nowhere, so the TUI owns the terminal.
func fileLogger() (*logging.Logger, func(), error) {
	if logFile == "" {
		return logging.Discard(), func() {}, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return logging.New(f, logFormat), func() { f.Close() }, nil
}

func newSimulation(cfg *config.Config, bodies []dynamo.Body, log *logging.Logger) (*sim.Simulation, error) {
	opts := cfg.Options()
	opts.Tag = viz.NewPalette(float64(cfg.Seed)).Next
	opts.Logger = log
	s, err := sim.New(opts)
	if err != nil {
		return nil, err
	}
	if err := s.LoadScenario(bodies); err != nil {
		return nil, err
	}
	return s, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, bodies, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return err
		}
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	log := newLogger()
	s, err := newSimulation(cfg, bodies, log.With("scenario", cfg.Scenario))
	if err != nil {
		return err
	}
	for _, m := range metrics.Default(escapeRadius) {
		s.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s (%d bodies, %d steps, %s)...\n", cfg.Scenario, len(bodies), cfg.Steps, cfg.Integrator)
	fmt.Println(viz.Swatches(bodies))
	start := time.Now()
	result, err := s.Run(ctx, cfg.Steps, cfg.SampleEvery)
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("interrupted after %d steps", result.StepsTaken)))
	}
	elapsed := time.Since(start)

	info := storage.RunInfo{
		Scenario:    cfg.Scenario,
		Integrator:  cfg.Integrator,
		Dt:          cfg.Dt,
		Steps:       cfg.Steps,
		SampleEvery: cfg.SampleEvery,
		Seed:        cfg.Seed,
		Bounce:      cfg.Bounce,
	}
	runID, err := st.Save(info, bodies, result)
	if err != nil {
		return logging.WrapError(err, "save run %s", cfg.Scenario)
	}
	log.Info(logging.WithRunID(ctx, runID), "run saved", "dir", filepath.Join(dataDir, runID), "elapsed", elapsed)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d  frames: %d  collisions: %d\n", result.StepsTaken, len(result.Frames), result.Collisions)
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	if len(result.Errors) > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("%d ticks reported errors; first: %v", len(result.Errors), result.Errors[0])))
	}
	printMetrics(os.Stdout, result.Metrics)

	if showPlot {
		fmt.Println()
		fmt.Print(viz.RenderTrajectories(result.Frames, tags(bodies), 60, 20))
	}
	return nil
}

func printMetrics(w io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "\n"+headerStyle.Render("metrics"))
	for _, name := range names {
		fmt.Fprintf(w, "  %s %.6g\n", labelStyle.Render(fmt.Sprintf("%-16s", name)), m[name])
	}
}

func tags(bodies []dynamo.Body) []string {
	out := make([]string, len(bodies))
	for i, b := range bodies {
		out[i] = b.Tag
	}
	return out
}

func listScenarios(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tSTEPS\tDESCRIPTION")
	for _, name := range config.ListScenarios() {
		sc := config.Scenarios[name]
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", name, len(sc.Bodies), sc.Steps, sc.Description)
	}
	return w.Flush()
}

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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tBODIES\tSTEPS\tDT\tINTEG\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%g\t%s\t%.2e\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Bodies,
			run.Steps,
			run.Dt,
			run.Integrator,
			run.EnergyDrift,
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
	bodies, err := st.LoadBodies(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(frames))

	energy := make([]float64, len(frames))
	for i, f := range frames {
		energy[i] = f.Energy
	}
	fmt.Println(asciigraph.Plot(energy,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("total energy"),
	))
	fmt.Println()

	const maxPlots = 4
	for b := 0; b < min(len(frames[0].Bodies), maxPlots); b++ {
		data := make([]float64, 0, len(frames))
		for _, f := range frames {
			if b < len(f.Bodies) {
				data = append(data, f.Bodies[b].Position.X)
			}
		}
		caption := fmt.Sprintf("body %d x", b)
		if b < len(bodies) && bodies[b].Tag != "" {
			caption += " (" + bodies[b].Tag + ")"
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(6),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		))
		fmt.Println()
	}

	fmt.Print(viz.RenderTrajectories(frames, tags(bodies), 60, 20))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if err := st.ExportJSON(args[0], outPath); err != nil {
		return err
	}
	if outPath != "" && outPath != "-" {
		fmt.Fprintf(os.Stderr, "exported to %s\n", outPath)
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	bodies, err := st.LoadBodies(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	svg := export.TrajectoriesToSVG(frames, bodies, svgWidth, svgHeight)
	if svg == "" {
		return fmt.Errorf("run %s has no drawable frames", runID)
	}
	path := outPath
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && fragment == "" && configFile == "" {
		args = []string{"empty"}
	}
	cfg, bodies, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	log, closeLog, err := fileLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	s, err := newSimulation(cfg, bodies, log)
	if err != nil {
		return err
	}
	log.Info(context.Background(), "live view started", "scenario", cfg.Scenario, "bodies", s.Len())
	return viz.RunLive(s, cfg.Scenario, viz.LiveOptions{
		StepsPerTick: stepsPerTick,
		Theme:        theme,
		RecordPath:   recordPath,
		Logger:       log,
	})
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, bodies, err := resolveConfig(cmd, args[:1])
	if err != nil {
		return err
	}
	names := args[1:]
	if len(names) == 0 {
		names = integrators.Names()
	}

	ens := sim.NewEnsemble(workers)
	for _, name := range names {
		opts := cfg.Options()
		opts.Integrator = name
		ens.Add(sim.Job{
			Name:        name,
			Options:     opts,
			Bodies:      bodies,
			Steps:       cfg.Steps,
			SampleEvery: cfg.SampleEvery,
			Metrics: func() []dynamo.Metric {
				return []dynamo.Metric{metrics.NewEnergyDrift(), metrics.NewMomentumDrift()}
			},
		})
	}

	fmt.Printf("comparing integrators for %s (dt=%g, steps=%d)\n\n", cfg.Scenario, cfg.Dt, cfg.Steps)
	outcomes, err := ens.Run(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tENERGY_DRIFT\tMAX_DRIFT\tMOMENTUM_DRIFT\tCOLLISIONS\tTIME")
	for _, o := range outcomes {
		r := o.Result
		fmt.Fprintf(w, "%s\t%.3e\t%.3e\t%.3e\t%d\t%v\n",
			o.Name, r.EnergyDrift, r.Metrics["energy_drift"], r.Metrics["momentum_drift"], r.Collisions, o.Elapsed.Round(time.Microsecond))
	}
	return w.Flush()
}

func benchScenario(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"solar"}
	}
	cfg, bodies, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s (%d bodies, %d steps)\n\n", cfg.Scenario, len(bodies), cfg.Steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tBOUNCE\tSTEPS\tTIME\tNS/STEP\tSTEPS/SEC")

	for _, name := range integrators.Names() {
		for _, b := range []bool{false, true} {
			c := *cfg
			c.Integrator, c.Bounce = name, b
			s, err := newSimulation(&c, bodies, logging.Discard())
			if err != nil {
				return err
			}

			start := time.Now()
			for i := 0; i < c.Steps; i++ {
				s.Step()
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%s\t%v\t%d\t%v\t%.0f\t%.0f\n",
				name, b, c.Steps, elapsed.Round(time.Microsecond),
				float64(elapsed.Nanoseconds())/float64(c.Steps), float64(c.Steps)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func printFragment(cmd *cobra.Command, args []string) error {
	var bodies []dynamo.Body
	switch {
	case fragment != "":
		bs, err := storage.DecodeFragment(fragment)
		if err != nil {
			return err
		}
		bodies = bs
	case configFile != "" && len(args) == 0:
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if bodies, err = cfg.InitialBodies(); err != nil {
			return err
		}
	default:
		name := config.DefaultScenario
		if len(args) > 0 {
			name = args[0]
		}
		sc, err := config.GetScenario(name)
		if err != nil {
			return err
		}
		bodies = sc.Bodies
	}

	if asYAML {
		data, err := storage.EncodeYAML(bodies)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	}
	frag, err := storage.EncodeFragment(bodies)
	if err != nil {
		return err
	}
	fmt.Println(frag)
	return nil
}
