package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	name       string
	dt         float64
	steps      int
	frameEvery int
	seed       uint64
	evaluator  string
	integrator string
	workers    int
	theta      float64
	softening  float64
	noSave     bool
	outFile    string
	benchStars int
	benchTheta float64
	benchSeed  uint64
	repeats    int
	numRuns    int
	parallel   int
	sweepDt    []float64
	sweepSoft  []float64
	sweepTheta []float64
	objective  string
	perturb    float64
	frameIndex int
	seriesSVG  bool
)

// main registers the galaxysim commands and opens the preset picker when
// no subcommand is given.
func main() {
	log.SetFlags(0)
	log.SetPrefix("galaxysim: ")

	rootCmd := &cobra.Command{
		Use:           "galaxysim",
		Short:         "galaxy collision n-body simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default $GALAXYSIM_DATA_DIR or ./runs)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation headlessly and store its frames",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().IntVar(&steps, "steps", 0, "number of steps")
	runCmd.Flags().IntVar(&frameEvery, "frame-every", 0, "record a frame every n steps")
	runCmd.Flags().StringVar(&name, "name", "", "run name")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not write the run to the data directory")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a simulation with the terminal viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and disk spread of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [preset]",
		Short: "list presets, or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time force evaluators against direct summation",
		RunE:  benchEvaluators,
	}
	benchCmd.Flags().IntVar(&benchStars, "stars", 2000, "stars in the benchmark disk")
	benchCmd.Flags().IntVar(&repeats, "repeats", 5, "evaluations per evaluator")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = all CPUs)")
	benchCmd.Flags().Float64Var(&benchTheta, "theta", 0.5, "barnes-hut opening angle")
	benchCmd.Flags().Uint64Var(&benchSeed, "seed", 1, "random seed")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [preset]",
		Short: "run seeded copies of a simulation and summarize conservation errors",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&steps, "steps", 0, "number of steps")
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 4, "ensemble size")
	ensembleCmd.Flags().IntVar(&parallel, "parallel", 0, "runs executed at once (0 = all CPUs)")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "grid search over dt, softening and theta",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&steps, "steps", 0, "number of steps per run")
	sweepCmd.Flags().Float64SliceVar(&sweepDt, "dts", nil, "timesteps to try")
	sweepCmd.Flags().Float64SliceVar(&sweepSoft, "softenings", nil, "softening lengths to try")
	sweepCmd.Flags().Float64SliceVar(&sweepTheta, "thetas", nil, "opening angles to try")
	sweepCmd.Flags().StringVar(&objective, "objective", "energy_drift", "score to minimize (energy_drift, momentum_error, elapsed)")

	chaosCmd := &cobra.Command{
		Use:   "chaos [preset]",
		Short: "estimate the largest lyapunov exponent",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runChaos,
	}
	addRunFlags(chaosCmd)
	chaosCmd.Flags().IntVar(&steps, "steps", 0, "number of steps")
	chaosCmd.Flags().Float64Var(&perturb, "perturb", 1e-3, "initial position offset")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "write a stored frame or the energy curve as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  writeSVG,
	}
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	svgCmd.Flags().IntVar(&frameIndex, "frame", -1, "frame index, negative counts from the end")
	svgCmd.Flags().BoolVar(&seriesSVG, "energy", false, "draw the energy curve instead of a frame")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every step of a yaml scenario and store the results",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "do not write the runs to the data directory")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, presetsCmd, benchCmd, ensembleCmd, sweepCmd, chaosCmd, svgCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Print(err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&evaluator, "evaluator", "", "force evaluator (direct, parallel, barneshut)")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator (symplectic, euler)")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = all CPUs)")
	cmd.Flags().Float64Var(&theta, "theta", 0, "barnes-hut opening angle")
	cmd.Flags().Float64Var(&softening, "softening", 0, "gravitational softening length")
}
