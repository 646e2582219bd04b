package integrators

import "github.com/san-kum/galaxysim/internal/dynamo"

// Euler is the explicit forward Euler scheme. Positions advance with the
// velocities from the start of the step, so orbits slowly spiral outward;
// it is kept for comparison against SymplecticEuler.
type Euler struct {
	acc []float64
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(eval dynamo.ForceEvaluator, sys *dynamo.System, dt float64) error {
	if err := checkDt(dt); err != nil {
		return err
	}

	acc, err := accelerations(eval, sys, &e.acc)
	if err != nil {
		return err
	}

	for i := range sys.Pos {
		sys.Pos[i] += sys.Vel[i] * dt
		sys.Vel[i] += acc[i] * dt
	}

	if i := sys.FirstNonFinite(); i >= 0 {
		return dynamo.Unstable(i)
	}
	return nil
}
