package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/galaxysim/internal/compute"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/galaxy"
)

const DefaultTimestep = 100.0

type Option func(*Controller)

func WithGenerator(g galaxy.Generator) Option {
	return func(c *Controller) { c.gen = g }
}

func WithSeed(seed uint64) Option {
	return func(c *Controller) { c.seed = seed }
}

func WithTimestep(dt float64) Option {
	return func(c *Controller) { c.dt = dt }
}

func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

// Controller owns the particle System and sequences force evaluation and
// integration for each tick. It is driven by a single caller and holds no
// locks.
type Controller struct {
	eval  dynamo.ForceEvaluator
	integ dynamo.Integrator
	gen   galaxy.Generator
	seed  uint64
	dt    float64

	observers []Observer

	sys   *dynamo.System
	snap  *dynamo.System
	state State
	time  float64
	steps int
}

func New(eval dynamo.ForceEvaluator, integ dynamo.Integrator, opts ...Option) *Controller {
	c := &Controller{
		eval:  eval,
		integ: integ,
		gen:   galaxy.NewGenerator(compute.DefaultG),
		seed:  1,
		dt:    DefaultTimestep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) AddObserver(o Observer) { c.observers = append(c.observers, o) }

// Initialize generates the System from cfgs and leaves the controller Idle
// at time zero. A failed generation keeps the previous System.
func (c *Controller) Initialize(cfgs []galaxy.Config) (*dynamo.System, error) {
	sys, err := galaxy.GenerateSystem(c.gen, cfgs, c.seed)
	if err != nil {
		return nil, err
	}
	if err := sys.Validate(); err != nil {
		return nil, err
	}

	c.sys = sys
	c.snap = sys.Clone()
	c.state = Idle
	c.time = 0
	c.steps = 0
	for _, o := range c.observers {
		if r, ok := o.(Resetter); ok {
			r.Reset()
		}
	}
	return sys, nil
}

// Reset discards the current System and regenerates it from cfgs.
func (c *Controller) Reset(cfgs []galaxy.Config) error {
	_, err := c.Initialize(cfgs)
	return err
}

func (c *Controller) Start() error {
	if c.sys == nil {
		return fmt.Errorf("%w: start before initialize", dynamo.ErrInvalidTransition)
	}
	c.state = Running
	return nil
}

func (c *Controller) Resume() error { return c.Start() }

func (c *Controller) Pause() error {
	if c.sys == nil {
		return fmt.Errorf("%w: pause before initialize", dynamo.ErrInvalidTransition)
	}
	c.state = Paused
	return nil
}

// Tick advances the simulation by dt when Running and is a no-op otherwise.
func (c *Controller) Tick(dt float64) error {
	if c.state != Running {
		return nil
	}
	return c.step(dt)
}

// StepOnce performs exactly one step from Idle or Paused and leaves the
// state as it was.
func (c *Controller) StepOnce(dt float64) error {
	if c.sys == nil {
		return fmt.Errorf("%w: step before initialize", dynamo.ErrInvalidTransition)
	}
	if c.state == Running {
		return fmt.Errorf("%w: step once while running", dynamo.ErrInvalidTransition)
	}
	return c.step(dt)
}

func (c *Controller) step(dt float64) error {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: timestep must be finite and non-negative, got %g", dynamo.ErrInvalidTransition, dt)
	}

	if err := c.snap.CopyFrom(c.sys); err != nil {
		return err
	}

	if err := c.integ.Step(c.eval, c.sys, dt); err != nil {
		// Restoring into the same-sized buffer cannot fail.
		_ = c.sys.CopyFrom(c.snap)
		return c.wrap(err)
	}

	c.time += dt
	c.steps++
	for _, o := range c.observers {
		o.OnTick(c.sys, c.time)
	}
	return nil
}

func (c *Controller) wrap(err error) error {
	var serr *dynamo.SimulationError
	if errors.As(err, &serr) {
		serr.Step = c.steps
		serr.Time = c.time
		return serr
	}
	return &dynamo.SimulationError{Step: c.steps, Time: c.time, Particle: -1, Wrapped: err}
}

// PositionsBuffer returns the live position buffer, 3 floats per particle.
// Callers may read or copy it but must not write to it. The slice stays
// valid until the next Initialize or Reset.
func (c *Controller) PositionsBuffer() []float64 {
	if c.sys == nil {
		return nil
	}
	return c.sys.Pos
}

func (c *Controller) System() *dynamo.System { return c.sys }
func (c *Controller) State() State           { return c.state }
func (c *Controller) SimTime() float64       { return c.time }
func (c *Controller) Steps() int             { return c.steps }
func (c *Controller) Timestep() float64      { return c.dt }

func (c *Controller) SetTimestep(dt float64) error {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: timestep must be positive, got %g", dynamo.ErrInvalidConfiguration, dt)
	}
	c.dt = dt
	return nil
}

// Snapshot is a point-in-time copy of the System and the clock.
type Snapshot struct {
	System *dynamo.System
	Time   float64
	Steps  int
}

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{System: c.sys.Clone(), Time: c.time, Steps: c.steps}
}

// Restore copies snap back into the live System without reallocating the
// position buffer. It is refused while Running.
func (c *Controller) Restore(snap Snapshot) error {
	if c.sys == nil {
		return fmt.Errorf("%w: restore before initialize", dynamo.ErrInvalidTransition)
	}
	if c.state == Running {
		return fmt.Errorf("%w: restore while running", dynamo.ErrInvalidTransition)
	}
	if snap.System == nil {
		return fmt.Errorf("%w: empty snapshot", dynamo.ErrInvalidConfiguration)
	}
	if err := c.sys.CopyFrom(snap.System); err != nil {
		return err
	}
	c.time = snap.Time
	c.steps = snap.Steps
	return nil
}
