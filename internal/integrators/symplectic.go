package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/vecmath"
)

// SymplecticEuler is the semi-implicit Euler scheme: accelerations are
// evaluated once from the positions at the start of the step, velocities
// are kicked with them, and positions then drift with the new velocities.
//
//	v += a(x) * dt
//	x += v * dt
type SymplecticEuler struct {
	acc []float64
}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (s *SymplecticEuler) Name() string { return "symplectic" }

func (s *SymplecticEuler) Step(eval dynamo.ForceEvaluator, sys *dynamo.System, dt float64) error {
	if err := checkDt(dt); err != nil {
		return err
	}

	acc, err := accelerations(eval, sys, &s.acc)
	if err != nil {
		return err
	}

	for i := range sys.Vel {
		sys.Vel[i] += acc[i] * dt
	}
	for i := range sys.Pos {
		sys.Pos[i] += sys.Vel[i] * dt
	}

	if i := sys.FirstNonFinite(); i >= 0 {
		return dynamo.Unstable(i)
	}
	return nil
}

// accelerations evaluates every acceleration before anything is updated
// and rejects non-finite results.
func accelerations(eval dynamo.ForceEvaluator, sys *dynamo.System, scratch *[]float64) ([]float64, error) {
	if len(*scratch) != len(sys.Pos) {
		*scratch = make([]float64, len(sys.Pos))
	}
	acc := *scratch

	if err := eval.Accelerations(sys.Pos, sys.Mass, acc); err != nil {
		return nil, err
	}
	if i := vecmath.FirstNonFinite(acc); i >= 0 {
		return nil, dynamo.Unstable(i)
	}
	return acc, nil
}

func checkDt(dt float64) error {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: timestep must be finite and non-negative, got %g", dynamo.ErrInvalidTransition, dt)
	}
	return nil
}
