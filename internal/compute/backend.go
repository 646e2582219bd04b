package compute

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/galaxysim/internal/dynamo"
)

const (
	// DefaultG is the gravitational constant in simulation units.
	DefaultG = 6.674e-11
	// DefaultSoftening is ε with ε² = 10.
	DefaultSoftening = 3.1622776601683795
	// DefaultTheta is the Barnes-Hut opening angle.
	DefaultTheta = 0.5
)

// Params holds the constants of the force law and how the work is spread.
type Params struct {
	G         float64
	Softening float64
	// Theta is the Barnes-Hut opening angle. Zero makes the tree
	// evaluator sum every pair exactly.
	Theta float64
	// Workers bounds the goroutines used per evaluation. Zero means one
	// per CPU.
	Workers int
}

func DefaultParams() Params {
	return Params{
		G:         DefaultG,
		Softening: DefaultSoftening,
		Theta:     DefaultTheta,
	}
}

func (p Params) Validate() error {
	switch {
	case !(p.G > 0) || math.IsInf(p.G, 0):
		return fmt.Errorf("%w: G must be positive and finite, got %g", dynamo.ErrInvalidConfiguration, p.G)
	case !(p.Softening > 0) || math.IsInf(p.Softening, 0):
		return fmt.Errorf("%w: softening must be positive and finite, got %g", dynamo.ErrInvalidConfiguration, p.Softening)
	case !(p.Theta >= 0) || math.IsInf(p.Theta, 0):
		return fmt.Errorf("%w: theta must be non-negative, got %g", dynamo.ErrInvalidConfiguration, p.Theta)
	case p.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", dynamo.ErrInvalidConfiguration, p.Workers)
	}
	return nil
}

// Evaluator computes softened Newtonian accelerations. Implementations
// write acc[3i:3i+3] for particle i and nothing else.
type Evaluator interface {
	dynamo.ForceEvaluator
	Name() string
}

var evaluators = map[string]func(Params) Evaluator{
	"direct":    func(p Params) Evaluator { return NewDirect(p) },
	"parallel":  func(p Params) Evaluator { return NewCPUBackend(p) },
	"barneshut": func(p Params) Evaluator { return NewBarnesHut(p) },
}

// New returns the evaluator registered under name.
func New(name string, p Params) (Evaluator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	fn, ok := evaluators[name]
	if !ok {
		return nil, fmt.Errorf("unknown evaluator: %s (available: %v)", name, Names())
	}
	return fn(p), nil
}

func Names() []string {
	names := make([]string, 0, len(evaluators))
	for name := range evaluators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compute evaluates e into a freshly allocated slice.
func Compute(e dynamo.ForceEvaluator, pos, mass []float64) ([]float64, error) {
	acc := make([]float64, len(pos))
	if err := e.Accelerations(pos, mass, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func checkDims(pos, mass, acc []float64) error {
	n := len(mass)
	if len(pos) != 3*n || len(acc) != 3*n {
		return fmt.Errorf("%w: %d masses, %d positions, %d accelerations", dynamo.ErrDimensionMismatch, n, len(pos), len(acc))
	}
	return nil
}
