package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/galaxy"
	"github.com/san-kum/galaxysim/internal/metrics"
	"github.com/san-kum/galaxysim/internal/sim"
)

// Frame is a recorded copy of the positions at one point in time.
type Frame struct {
	Step      int
	Time      float64
	Energy    float64
	Positions []float64
}

type Result struct {
	Name          string
	Seed          uint64
	Stars         int
	Steps         int
	SimTime       float64
	Frames        []Frame
	Energy        metrics.Summary
	EnergyDrift   float64
	MomentumError float64
	// BoundFraction is 1 unless the config sets a bound radius.
	BoundFraction float64
	Elapsed       time.Duration
}

// Experiment runs one configured simulation headlessly and records frames
// every FrameEvery steps.
type Experiment struct {
	cfg      *config.Config
	reg      *Registry
	ctl      *sim.Controller
	momentum *metrics.Momentum
	bound    *metrics.Bound

	// OnFrame, when set, is called for every recorded frame. Returning an
	// error stops the run.
	OnFrame func(Frame) error

	// DiscardPositions keeps only time and energy in recorded frames.
	DiscardPositions bool
}

func New(cfg *config.Config, reg *Registry) *Experiment {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Experiment{cfg: cfg, reg: reg}
}

// Setup builds the evaluator, integrator and controller and generates the
// initial System.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	params := e.cfg.Params()
	eval, err := e.reg.GetEvaluator(e.cfg.Evaluator, params)
	if err != nil {
		return err
	}
	integ, err := e.reg.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}

	e.momentum = metrics.NewMomentum()
	e.ctl = sim.New(eval, integ,
		sim.WithGenerator(galaxy.NewGenerator(params.G)),
		sim.WithSeed(e.cfg.Seed),
		sim.WithTimestep(e.cfg.Dt),
		sim.WithObserver(e.momentum),
	)
	e.bound = metrics.NewBound(e.cfg.BoundRadius)
	if e.cfg.BoundRadius > 0 {
		e.ctl.AddObserver(e.bound)
	}
	sys, err := e.ctl.Initialize(e.cfg.GalaxyConfigs())
	if err != nil {
		return err
	}
	e.momentum.Baseline(sys)
	return nil
}

func (e *Experiment) Controller() *sim.Controller { return e.ctl }

// Run advances the simulation for the configured number of steps. It
// checks ctx between ticks and returns the partial result with ctx's
// error when cancelled.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.ctl == nil {
		if err := e.Setup(); err != nil {
			return nil, err
		}
	}

	params := e.cfg.Params()
	res := &Result{
		Name:  e.cfg.Name,
		Seed:  e.cfg.Seed,
		Stars: e.ctl.System().Len(),
	}
	// Energy is a full pair sum, so both trackers are fed at frames only.
	energy := metrics.NewEnergy(params)
	drift := metrics.NewEnergyDrift(params)
	start := time.Now()

	record := func() error {
		sys, t := e.ctl.System(), e.ctl.SimTime()
		energy.OnTick(sys, t)
		drift.OnTick(sys, t)

		f := Frame{
			Step:   e.ctl.Steps(),
			Time:   t,
			Energy: energy.Value(),
		}
		if !e.DiscardPositions {
			f.Positions = append([]float64(nil), e.ctl.PositionsBuffer()...)
		}
		res.Frames = append(res.Frames, f)
		if e.OnFrame != nil {
			return e.OnFrame(f)
		}
		return nil
	}

	finish := func() {
		res.Steps = e.ctl.Steps()
		res.SimTime = e.ctl.SimTime()
		res.Energy = energy.Series().Summary()
		res.EnergyDrift = drift.Value()
		res.MomentumError = e.momentum.Value()
		res.BoundFraction = e.bound.Value()
		res.Elapsed = time.Since(start)
	}
	defer finish()

	if err := record(); err != nil {
		return res, err
	}
	if err := e.ctl.Start(); err != nil {
		return res, err
	}
	defer func() { _ = e.ctl.Pause() }()

	every := e.cfg.FrameEvery
	for i := 0; i < e.cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		if err := e.ctl.Tick(e.cfg.Dt); err != nil {
			return res, fmt.Errorf("run %s: %w", e.cfg.Name, err)
		}

		last := i == e.cfg.Steps-1
		if every > 0 && (e.ctl.Steps()%every == 0 || last) {
			if err := record(); err != nil {
				return res, err
			}
		}
	}
	return res, nil
}
