package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/galaxysim/internal/dynamo"
)

// Lyapunov estimates the largest Lyapunov exponent of sys. A copy with
// the first position coordinate shifted by perturbation is stepped
// alongside it; after each step the phase space separation is logged and
// rescaled back to perturbation. sys itself is not modified.
//
// Both copies share eval. newInteg is called twice so integrator
// scratch buffers are not shared.
func Lyapunov(
	eval dynamo.ForceEvaluator,
	newInteg func() dynamo.Integrator,
	sys *dynamo.System,
	dt float64,
	steps int,
	perturbation float64,
) (float64, error) {
	if sys.Len() == 0 {
		return 0, fmt.Errorf("%w: empty system", dynamo.ErrInvalidConfiguration)
	}
	if steps <= 0 || dt <= 0 || perturbation <= 0 {
		return 0, fmt.Errorf("%w: steps, dt and perturbation must be positive", dynamo.ErrInvalidConfiguration)
	}

	x := sys.Clone()
	xp := sys.Clone()
	xp.Pos[0] += perturbation
	ix, ixp := newInteg(), newInteg()

	sumLog := 0.0
	for s := 0; s < steps; s++ {
		if err := ix.Step(eval, x, dt); err != nil {
			return 0, stepError(s, err)
		}
		if err := ixp.Step(eval, xp, dt); err != nil {
			return 0, stepError(s, err)
		}

		sep := separation(x, xp)
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / perturbation)
		rescale(x, xp, perturbation/sep)
	}

	return sumLog / (float64(steps) * dt), nil
}

func stepError(step int, err error) error {
	var serr *dynamo.SimulationError
	if errors.As(err, &serr) {
		serr.Step = step + 1
		return serr
	}
	return fmt.Errorf("lyapunov step %d: %w", step+1, err)
}

func separation(a, b *dynamo.System) float64 {
	sum := 0.0
	for i := range a.Pos {
		dp := b.Pos[i] - a.Pos[i]
		dv := b.Vel[i] - a.Vel[i]
		sum += dp*dp + dv*dv
	}
	return math.Sqrt(sum)
}

func rescale(ref, p *dynamo.System, k float64) {
	for i := range ref.Pos {
		p.Pos[i] = ref.Pos[i] + (p.Pos[i]-ref.Pos[i])*k
		p.Vel[i] = ref.Vel[i] + (p.Vel[i]-ref.Vel[i])*k
	}
}
