package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/experiment"
)

// Objective scores a finished run. Lower is better.
type Objective func(*experiment.Result) float64

// Objectives are the scores selectable by name.
var Objectives = map[string]Objective{
	"energy_drift":   func(r *experiment.Result) float64 { return r.EnergyDrift },
	"momentum_error": func(r *experiment.Result) float64 { return r.MomentumError },
	"elapsed":        func(r *experiment.Result) float64 { return r.Elapsed.Seconds() },
}

// Point is one evaluated combination. A run that fails scores +Inf and
// keeps its error.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// GridSearch runs one experiment for every combination of the given
// parameter values.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d parameters for %d ranges", dynamo.ErrInvalidConfiguration, len(params), len(ranges))
	}
	for i, name := range params {
		if err := apply(config.DefaultConfig(), name, 0); err != nil {
			return nil, err
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("%w: no values for %s", dynamo.ErrInvalidConfiguration, name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search evaluates the whole grid against base and returns every point,
// best first. It stops early only when ctx is done.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, reg *experiment.Registry, obj Objective) ([]Point, error) {
	var points []Point
	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, reg, obj, &points)

	sort.SliceStable(points, func(i, j int) bool { return points[i].Value < points[j].Value })
	return points, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	reg *experiment.Registry,
	obj Objective,
	points *[]Point,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		p := Point{Params: current, Value: math.Inf(1)}
		cfg := *base
		for name, v := range current {
			if err := apply(&cfg, name, v); err != nil {
				return err
			}
		}

		exp := experiment.New(&cfg, reg)
		exp.DiscardPositions = true
		res, err := exp.Run(ctx)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			p.Err = err
		default:
			p.Value = obj(res)
		}
		*points = append(*points, p)
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val

		if err := g.searchRecursive(ctx, depth+1, next, base, reg, obj, points); err != nil {
			return err
		}
	}
	return nil
}

func apply(cfg *config.Config, name string, v float64) error {
	switch name {
	case "dt":
		cfg.Dt = v
	case "softening":
		cfg.Softening = v
	case "theta":
		cfg.Theta = v
	case "g":
		cfg.G = v
	default:
		return fmt.Errorf("%w: unknown sweep parameter: %s", dynamo.ErrInvalidConfiguration, name)
	}
	return nil
}
