package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfiguration indicates a galaxy or run configuration that
	// cannot produce a valid particle set.
	ErrInvalidConfiguration = errors.New("dynamo: invalid configuration")

	// ErrNumericInstability indicates an acceleration, velocity or position
	// became NaN or Inf during a step.
	ErrNumericInstability = errors.New("dynamo: numeric instability (NaN or Inf detected)")

	// ErrInvalidTransition indicates a control call that is not allowed in
	// the current state, or a negative timestep.
	ErrInvalidTransition = errors.New("dynamo: invalid transition")

	// ErrDimensionMismatch indicates buffers whose lengths disagree.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between buffers")
)

// SimulationError wraps an error with the step, time and particle it
// occurred at. Particle is -1 when the error is not tied to one particle.
type SimulationError struct {
	Step     int
	Time     float64
	Particle int
	Wrapped  error
}

func (e *SimulationError) Error() string {
	if e.Particle < 0 {
		return fmt.Sprintf("step %d (t=%.4g): %v", e.Step, e.Time, e.Wrapped)
	}
	return fmt.Sprintf("step %d (t=%.4g): particle %d: %v", e.Step, e.Time, e.Particle, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// Unstable returns a SimulationError reporting a non-finite value for
// particle i.
func Unstable(i int) *SimulationError {
	return &SimulationError{Particle: i, Wrapped: ErrNumericInstability}
}
