package experiment

import (
	"context"
	"math"
	"time"

	"github.com/san-kum/galaxysim/internal/compute"
	"github.com/san-kum/galaxysim/internal/galaxy"
)

// BenchResult times one evaluator on a fixed System and compares its
// accelerations with serial direct summation.
type BenchResult struct {
	Evaluator string
	Stars     int
	PerCall   time.Duration
	// MaxRelErr is the largest per-particle |a - a_direct| / |a_direct|.
	MaxRelErr float64
}

// Benchmark evaluates every named evaluator repeats times on the System
// generated from cfgs.
func Benchmark(ctx context.Context, reg *Registry, names []string, p compute.Params, cfgs []galaxy.Config, seed uint64, repeats int) ([]BenchResult, error) {
	if reg == nil {
		reg = NewRegistry()
	}
	if repeats <= 0 {
		repeats = 1
	}
	sys, err := galaxy.GenerateSystem(galaxy.NewGenerator(p.G), cfgs, seed)
	if err != nil {
		return nil, err
	}
	ref, err := compute.Compute(compute.NewDirect(p), sys.Pos, sys.Mass)
	if err != nil {
		return nil, err
	}

	out := make([]BenchResult, 0, len(names))
	acc := make([]float64, len(sys.Pos))
	for _, name := range names {
		eval, err := reg.GetEvaluator(name, p)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		for i := 0; i < repeats; i++ {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			if err := eval.Accelerations(sys.Pos, sys.Mass, acc); err != nil {
				return out, err
			}
		}
		out = append(out, BenchResult{
			Evaluator: name,
			Stars:     sys.Len(),
			PerCall:   time.Since(start) / time.Duration(repeats),
			MaxRelErr: maxRelErr(acc, ref),
		})
	}
	return out, nil
}

func maxRelErr(acc, ref []float64) float64 {
	worst := 0.0
	for i := 0; i+2 < len(ref); i += 3 {
		dx, dy, dz := acc[i]-ref[i], acc[i+1]-ref[i+1], acc[i+2]-ref[i+2]
		norm := math.Sqrt(ref[i]*ref[i] + ref[i+1]*ref[i+1] + ref[i+2]*ref[i+2])
		if norm == 0 {
			continue
		}
		worst = math.Max(worst, math.Sqrt(dx*dx+dy*dy+dz*dz)/norm)
	}
	return worst
}
