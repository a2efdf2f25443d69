package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/automation"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/optim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
)

var (
	saveRuns bool

	trials int
	jitter float64

	eps    float64
	renorm int

	snapshotOut string

	tuneDts   []float64
	tolerance float64
	duration  float64
)

// addStudyCommands registers the commands that analyse runs or fan out
// over many of them.
func addStudyCommands(root *cobra.Command) {
	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "estimate orbital periods of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov [scenario]",
		Short: "estimate the largest Lyapunov exponent of a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  estimateLyapunov,
	}
	addSimFlags(lyapunovCmd)
	lyapunovCmd.Flags().Float64Var(&eps, "eps", 1, "initial separation in px")
	lyapunovCmd.Flags().IntVar(&renorm, "renorm", 10, "ticks between renormalisations")

	batchCmd := &cobra.Command{
		Use:   "batch [file.yaml]",
		Short: "run every entry of a batch file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = GOMAXPROCS)")
	batchCmd.Flags().Float64Var(&escapeRadius, "escape-radius", 1e8, "distance from the centre of mass counted as escaped")
	batchCmd.Flags().BoolVar(&saveRuns, "save", true, "store each run in the data directory")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [scenario]",
		Short: "check stability under random velocity perturbations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addSimFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of perturbed runs")
	monteCarloCmd.Flags().Float64Var(&jitter, "jitter", 0.01, "velocity perturbation as a fraction of speed")
	monteCarloCmd.Flags().Float64Var(&escapeRadius, "escape-radius", 1e8, "distance from the centre of mass counted as escaped")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = GOMAXPROCS)")

	tuneCmd := &cobra.Command{
		Use:   "tune [scenario]",
		Short: "find the largest timestep within an energy drift budget",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneTimestep,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&tuneDts, "dts", []float64{0.25, 0.5, 1, 2, 4, 8, 16}, "timesteps to try")
	tuneCmd.Flags().Float64Var(&tolerance, "tolerance", 1e-6, "largest acceptable relative energy drift")
	tuneCmd.Flags().Float64Var(&duration, "duration", 0, "simulated seconds per run (0 = steps * dt)")
	tuneCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = GOMAXPROCS)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [scenario]",
		Short: "draw the initial layout of a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  drawSnapshot,
	}
	addSimFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "", "also write the picture as SVG")

	root.AddCommand(analyzeCmd, lyapunovCmd, batchCmd, monteCarloCmd, tuneCmd, snapshotCmd)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
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
	if len(frames) < 4 {
		return fmt.Errorf("run %s has too few frames to analyse", runID)
	}

	periods := analysis.OrbitalPeriods(frames, analysis.Masses(bodies))
	fmt.Println(headerStyle.Render("orbital periods") + labelStyle.Render(" (x about the centre of mass)"))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tTAG\tMASS\tPERIOD")
	for i, p := range periods {
		tag, mass := "", 0.0
		if i < len(bodies) {
			tag, mass = bodies[i].Tag, bodies[i].Mass
		}
		period := "-"
		if p > 0 {
			period = fmt.Sprintf("%.1f", p)
		}
		fmt.Fprintf(w, "%d\t%s\t%.3e\t%s\n", i, tag, mass, period)
	}
	return w.Flush()
}

func estimateLyapunov(cmd *cobra.Command, args []string) error {
	cfg, bodies, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	lambda, err := analysis.Lyapunov(ctx, cfg.Options(), bodies, eps, cfg.Steps, renorm)
	if err != nil {
		return err
	}
	fmt.Printf("%s  %.4e per internal second\n", labelStyle.Render("lyapunov exponent"), lambda)
	if lambda > 0 {
		fmt.Printf("%s  %.1f internal seconds\n", labelStyle.Render("e-folding time   "), 1/lambda)
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	b, err := automation.LoadBatch(args[0])
	if err != nil {
		return err
	}

	opts := automation.BatchOptions{
		Workers:      workers,
		EscapeRadius: escapeRadius,
		Logger:       newLogger(),
	}
	if saveRuns {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		opts.Store = st
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("batch %s: %d runs\n\n", b.Name, len(b.Runs))
	results, err := automation.RunBatch(ctx, b, opts)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSCENARIO\tINTEG\tDT\tSTEPS\tDRIFT\tCOLLISIONS\tRUN ID")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%d\t%.3e\t%d\t%s\n",
			r.Name, r.Config.Scenario, r.Config.Integrator, r.Config.Dt,
			r.Result.StepsTaken, r.Result.EnergyDrift, r.Result.Collisions, r.RunID)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, bodies, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunMonteCarlo(ctx, automation.MonteCarloConfig{
		Bodies:       bodies,
		Options:      cfg.Options(),
		Jitter:       jitter,
		Trials:       trials,
		Steps:        cfg.Steps,
		EscapeRadius: escapeRadius,
		Seed:         cfg.Seed,
		Workers:      workers,
	})
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	drifts := make([]float64, len(results))
	for i, r := range results {
		drifts[i] = r.EnergyDrift
	}
	fmt.Printf("%s: %d trials, jitter %g, %d steps\n", cfg.Scenario, len(results), jitter, cfg.Steps)
	fmt.Printf("%s %s\n", labelStyle.Render("drift"), viz.SparklineChart(drifts, min(len(drifts), 60)))
	fmt.Printf("%s %d  %s %d\n", labelStyle.Render("stable"), stable, labelStyle.Render("unstable"), unstable)
	if unstable > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("%.0f%% of trials lost a body or failed to resolve a collision",
			100*float64(unstable)/float64(len(results)))))
	}
	return nil
}

func tuneTimestep(cmd *cobra.Command, args []string) error {
	cfg, bodies, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	span := duration
	if span <= 0 {
		span = float64(cfg.Steps) * cfg.Dt
	}

	names := integrators.Names()
	g := optim.NewGridSearch(names, tuneDts, workers)
	best, grid, err := g.Search(context.Background(), bodies, cfg.Options(), span, tolerance)
	if err != nil {
		return err
	}

	fmt.Printf("tuning %s over %g internal seconds (tolerance %.1e)\n\n", cfg.Scenario, span, tolerance)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tDT\tSTEPS\tDRIFT")
	for _, p := range grid {
		fmt.Fprintf(w, "%s\t%g\t%d\t%.3e\n", p.Integrator, p.Dt, p.Steps, p.Drift)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	for _, p := range best {
		fmt.Printf("%s %s dt=%g\n", headerStyle.Render("best"), p.Integrator, p.Dt)
	}
	if len(best) == 0 {
		fmt.Println(warnStyle.Render("no timestep met the tolerance"))
	}
	return nil
}

func drawSnapshot(cmd *cobra.Command, args []string) error {
	cfg, bodies, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	const w, h = 60, 20
	canvas := viz.DrawBodies(bodies, w, h)

	fmt.Println(headerStyle.Render(cfg.Scenario) + " " + viz.Swatches(bodies))
	fmt.Print(canvas.Render())

	if snapshotOut == "" {
		return nil
	}
	if err := os.WriteFile(snapshotOut, []byte(export.CanvasToSVG(canvas, 8)), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", snapshotOut)
	return nil
}
