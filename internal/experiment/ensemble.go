package experiment

import (
	"context"
	"runtime"

	"github.com/san-kum/galaxysim/internal/config"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Ensemble runs copies of one config that differ only in seed.
type Ensemble struct {
	base      *config.Config
	reg       *Registry
	numRuns   int
	seedStart uint64

	// Parallel bounds how many runs execute at once; 0 means NumCPU.
	Parallel int
}

func NewEnsemble(cfg *config.Config, reg *Registry, numRuns int, seedStart uint64) *Ensemble {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Ensemble{base: cfg, reg: reg, numRuns: numRuns, seedStart: seedStart}
}

// Run executes every member, each with its own controller. The first
// failure cancels the rest.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	limit := e.Parallel
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	g.SetLimit(limit)

	for i := 0; i < e.numRuns; i++ {
		cfg := *e.base
		cfg.Galaxies = append([]config.GalaxyConfig(nil), e.base.Galaxies...)
		cfg.Seed = e.seedStart + uint64(i)

		g.Go(func() error {
			exp := New(&cfg, e.reg)
			exp.DiscardPositions = true
			res, err := exp.Run(ctx)
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type EnsembleSummary struct {
	Runs           int
	MeanDrift      float64
	StdDrift       float64
	MaxDrift       float64
	MeanMomentum   float64
	MeanElapsedSec float64
}

func Summarize(results []*Result) EnsembleSummary {
	s := EnsembleSummary{Runs: len(results)}
	if len(results) == 0 {
		return s
	}
	drift := make([]float64, len(results))
	mom := make([]float64, len(results))
	elapsed := make([]float64, len(results))
	for i, r := range results {
		drift[i] = r.EnergyDrift
		mom[i] = r.MomentumError
		elapsed[i] = r.Elapsed.Seconds()
		if r.EnergyDrift > s.MaxDrift {
			s.MaxDrift = r.EnergyDrift
		}
	}
	s.MeanDrift, s.StdDrift = stat.MeanStdDev(drift, nil)
	if len(results) == 1 {
		s.StdDrift = 0
	}
	s.MeanMomentum = stat.Mean(mom, nil)
	s.MeanElapsedSec = stat.Mean(elapsed, nil)
	return s
}
