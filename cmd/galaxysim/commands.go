package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/galaxysim/internal/analysis"
	"github.com/san-kum/galaxysim/internal/compute"
	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/experiment"
	"github.com/san-kum/galaxysim/internal/galaxy"
	"github.com/san-kum/galaxysim/internal/sim"
	"github.com/san-kum/galaxysim/internal/storage"
	"github.com/san-kum/galaxysim/internal/vecmath"
	"github.com/san-kum/galaxysim/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// loadConfig resolves the run config: preset or config file first, then
// the environment, then any flags given on the command line.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, config.Env, error) {
	env, err := config.ParseEnv()
	if err != nil {
		return nil, env, err
	}
	if dataDir == "" {
		dataDir = env.DataDir
	}

	var cfg *config.Config
	switch {
	case configFile != "":
		if cfg, err = config.Load(configFile); err != nil {
			return nil, env, fmt.Errorf("failed to load config: %w", err)
		}
	default:
		preset := "single"
		if len(args) > 0 {
			preset = args[0]
		}
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, env, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	env.Apply(cfg)

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("evaluator") {
		cfg.Evaluator = evaluator
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("theta") {
		cfg.Theta = theta
	}
	if flags.Changed("softening") {
		cfg.Softening = softening
	}
	if flags.Lookup("steps") != nil && flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Lookup("frame-every") != nil && flags.Changed("frame-every") {
		cfg.FrameEvery = frameEvery
	}
	if flags.Lookup("name") != nil && flags.Changed("name") {
		cfg.Name = name
	}

	if err := cfg.Validate(); err != nil {
		return nil, env, err
	}
	return cfg, env, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, nil)
	if err := exp.Setup(); err != nil {
		return err
	}

	var writer *storage.Writer
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		if writer, err = st.Create(cfg); err != nil {
			return err
		}
	}

	exp.OnFrame = func(f experiment.Frame) error {
		if cfg.Steps > 0 {
			fmt.Fprintf(os.Stderr, "\r%s %d/%d", viz.ProgressBar(float64(f.Step)/float64(cfg.Steps), 30), f.Step, cfg.Steps)
		}
		if writer != nil {
			return writer.WriteFrame(f)
		}
		return nil
	}
	exp.DiscardPositions = writer == nil

	fmt.Printf("running %s: %d stars, %d steps, %s/%s\n", cfg.Name, cfg.TotalStars(), cfg.Steps, cfg.Evaluator, cfg.Integrator)

	ctx, stop := signalContext()
	defer stop()
	result, runErr := exp.Run(ctx)
	fmt.Fprintln(os.Stderr)

	if writer != nil {
		if err := writer.Close(result); err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", writer.ID())
	}
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			log.Printf("interrupted after %d steps", result.Steps)
			return nil
		}
		return runErr
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("steps: %d (t=%.4g)\n", result.Steps, result.SimTime)
	fmt.Println("\nmetrics:")
	fmt.Printf("  energy_drift: %.3e\n", result.EnergyDrift)
	fmt.Printf("  momentum_error: %.3e\n", result.MomentumError)
	fmt.Printf("  energy_mean: %.6g\n", result.Energy.Mean)
	return nil
}

func buildLive(cfg *config.Config) (viz.Model, error) {
	params := cfg.Params()
	eval, err := experiment.NewRegistry().GetEvaluator(cfg.Evaluator, params)
	if err != nil {
		return viz.Model{}, err
	}
	integ, err := experiment.NewRegistry().GetIntegrator(cfg.Integrator)
	if err != nil {
		return viz.Model{}, err
	}

	ctl := sim.New(eval, integ,
		sim.WithGenerator(galaxy.NewGenerator(params.G)),
		sim.WithSeed(cfg.Seed),
		sim.WithTimestep(cfg.Dt),
	)
	cfgs := cfg.GalaxyConfigs()
	if _, err := ctl.Initialize(cfgs); err != nil {
		return viz.Model{}, err
	}
	return viz.NewModel(ctl, cfgs, params, cfg.Name), nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	model, err := buildLive(cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

func runMenu(cmd *cobra.Command) error {
	env, err := config.ParseEnv()
	if err != nil {
		return err
	}

	names := config.ListPresets()
	items := make([]viz.MenuItem, len(names))
	for i, n := range names {
		p := config.GetPreset(n)
		items[i] = viz.MenuItem{
			Name: n,
			Info: fmt.Sprintf("%d galaxies, %d stars", len(p.Galaxies), p.TotalStars()),
		}
	}

	menu := viz.NewMenu(items, func(n string) (viz.Model, error) {
		cfg := config.GetPreset(n)
		env.Apply(cfg)
		return buildLive(cfg)
	})
	_, err = tea.NewProgram(menu, tea.WithAltScreen()).Run()
	return err
}

func resolveDataDir() (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	env, err := config.ParseEnv()
	if err != nil {
		return "", err
	}
	return env.DataDir, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	dir, err := resolveDataDir()
	if err != nil {
		return err
	}
	runs, err := storage.New(dir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSTARS\tSTEPS\tDT\tEVAL\tINTEG\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.4g\t%s\t%s\t%.2e\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Stars,
			run.Steps,
			run.Dt,
			run.Evaluator,
			run.Integrator,
			run.Metrics["energy_drift"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	dir, err := resolveDataDir()
	if err != nil {
		return err
	}
	st := storage.New(dir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) < 2 {
		return fmt.Errorf("run %s has %d frames, need at least 2 to plot", meta.ID, len(frames))
	}

	energy := make([]float64, len(frames))
	spread := make([]float64, len(frames))
	for i, f := range frames {
		energy[i] = f.Energy
		spread[i] = rmsRadius(f.Positions)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("stars: %d, frames: %d, t=%.4g\n", meta.Stars, len(frames), frames[len(frames)-1].Time)
	if period, ok := analysis.DominantPeriod(spread, frames[1].Time-frames[0].Time); ok {
		fmt.Printf("dominant spread period: %.4g\n", period)
	}
	fmt.Println()

	for _, p := range []struct {
		data    []float64
		caption string
	}{
		{energy, "total energy vs time"},
		{spread, "rms distance from centroid vs time"},
	} {
		graph := asciigraph.Plot(p.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func rmsRadius(pos []float64) float64 {
	n := len(pos) / 3
	if n == 0 {
		return 0
	}
	var c r3.Vec
	for i := 0; i < n; i++ {
		c = r3.Add(c, vecmath.At(pos, i))
	}
	c = r3.Scale(1/float64(n), c)

	sum := 0.0
	for i := 0; i < n; i++ {
		sum += r3.Norm2(r3.Sub(vecmath.At(pos, i), c))
	}
	return math.Sqrt(sum / float64(n))
}

func exportRun(cmd *cobra.Command, args []string) error {
	dir, err := resolveDataDir()
	if err != nil {
		return err
	}
	st := storage.New(dir)
	if outFile == "" {
		return st.Export(args[0], os.Stdout)
	}
	if err := st.ExportFile(args[0], outFile); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", args[0], outFile)
	return nil
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tGALAXIES\tSTARS\tSTEPS\tDT")
	for _, n := range config.ListPresets() {
		p := config.GetPreset(n)
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.4g\n", n, len(p.Galaxies), p.TotalStars(), p.Steps, p.Dt)
	}
	return w.Flush()
}

func benchEvaluators(cmd *cobra.Command, args []string) error {
	p := compute.DefaultParams()
	p.Workers = workers
	p.Theta = benchTheta

	cfg := galaxy.DefaultConfig()
	cfg.Stars = benchStars

	reg := experiment.NewRegistry()
	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("benchmarking %d stars, %d repeats\n\n", benchStars, repeats)
	results, err := experiment.Benchmark(ctx, reg, reg.ListEvaluators(), p, []galaxy.Config{cfg}, benchSeed, repeats)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EVALUATOR\tPER CALL\tMAX REL ERR")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%v\t%.2e\n", r.Evaluator, r.PerCall, r.MaxRelErr)
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	ens := experiment.NewEnsemble(cfg, nil, numRuns, cfg.Seed)
	ens.Parallel = parallel

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("running %d x %s (%d stars, %d steps)\n", numRuns, cfg.Name, cfg.TotalStars(), cfg.Steps)
	results, err := ens.Run(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tDRIFT\tMOMENTUM\tELAPSED")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.3e\t%.3e\t%v\n", r.Seed, r.Steps, r.EnergyDrift, r.MomentumError, r.Elapsed)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	s := experiment.Summarize(results)
	fmt.Printf("\ndrift: mean %.3e, std %.3e, max %.3e\n", s.MeanDrift, s.StdDrift, s.MaxDrift)
	fmt.Printf("momentum error: mean %.3e\n", s.MeanMomentum)
	return nil
}
