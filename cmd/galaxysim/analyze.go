package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/galaxysim/internal/analysis"
	"github.com/san-kum/galaxysim/internal/automation"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/experiment"
	"github.com/san-kum/galaxysim/internal/export"
	"github.com/san-kum/galaxysim/internal/optim"
	"github.com/san-kum/galaxysim/internal/storage"
	"github.com/san-kum/galaxysim/internal/viz"
	"github.com/spf13/cobra"
)

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	obj, ok := optim.Objectives[objective]
	if !ok {
		return fmt.Errorf("unknown objective: %s", objective)
	}

	var names []string
	var ranges [][]float64
	for _, axis := range []struct {
		name   string
		values []float64
	}{
		{"dt", sweepDt},
		{"softening", sweepSoft},
		{"theta", sweepTheta},
	} {
		if len(axis.values) > 0 {
			names = append(names, axis.name)
			ranges = append(ranges, axis.values)
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("nothing to sweep: pass --dts, --softenings or --thetas")
	}

	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	points, err := g.Search(ctx, cfg, nil, obj)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(objective))
	for _, p := range points {
		for _, n := range names {
			fmt.Fprintf(w, "%.4g\t", p.Params[n])
		}
		if p.Err != nil {
			fmt.Fprintf(w, "failed: %v\n", p.Err)
			continue
		}
		fmt.Fprintf(w, "%.3e\n", p.Value)
	}
	return w.Flush()
}

func runChaos(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, nil)
	if err := exp.Setup(); err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	eval, err := reg.GetEvaluator(cfg.Evaluator, cfg.Params())
	if err != nil {
		return err
	}
	newInteg := func() dynamo.Integrator {
		integ, _ := reg.GetIntegrator(cfg.Integrator)
		return integ
	}

	fmt.Printf("lyapunov: %s, %d stars, %d steps, offset %.3g\n", cfg.Name, cfg.TotalStars(), cfg.Steps, perturb)
	lambda, err := analysis.Lyapunov(eval, newInteg, exp.Controller().System(), cfg.Dt, cfg.Steps, perturb)
	if err != nil {
		return err
	}

	fmt.Printf("largest exponent: %.4e per unit time\n", lambda)
	if lambda > 0 {
		fmt.Printf("e-folding time: %.4g\n", 1/lambda)
	}
	return nil
}

func writeSVG(cmd *cobra.Command, args []string) error {
	dir, err := resolveDataDir()
	if err != nil {
		return err
	}
	frames, err := storage.New(dir).LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("run %s has no frames", args[0])
	}

	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	theme := viz.GetTheme("deepspace")
	if seriesSVG {
		times := make([]float64, len(frames))
		energy := make([]float64, len(frames))
		for i, f := range frames {
			times[i], energy[i] = f.Time, f.Energy
		}
		return export.SeriesSVG(w, times, energy, 800, 300, string(theme.Accent))
	}

	i := frameIndex
	if i < 0 {
		i += len(frames)
	}
	if i < 0 || i >= len(frames) {
		return fmt.Errorf("frame %d out of range [0, %d)", frameIndex, len(frames))
	}

	cam := viz.NewCamera()
	cam.Fit(frames[0].Positions)
	return export.FrameSVG(w, frames[i].Positions, cam, 160, 80, string(theme.Stars))
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var st *storage.Store
	if !noSave {
		dir, err := resolveDataDir()
		if err != nil {
			return err
		}
		st = storage.New(dir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("scenario %s: %s\n", scenario.Name, scenario.Description)
	results, err := automation.RunScenario(ctx, scenario, nil, st, os.Stdout)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nRUN\tSTEPS\tDRIFT\tMOMENTUM\tELAPSED")
	for _, r := range results {
		id := r.RunID
		if id == "" {
			id = r.Result.Name
		}
		fmt.Fprintf(w, "%s\t%d\t%.3e\t%.3e\t%v\n", id, r.Result.Steps, r.Result.EnergyDrift, r.Result.MomentumError, r.Result.Elapsed)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}
