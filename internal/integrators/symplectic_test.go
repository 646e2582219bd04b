package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/galaxysim/internal/compute"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/vecmath"
	"gonum.org/v1/gonum/spatial/r3"
)

var kepler = compute.Params{G: 1, Softening: 1e-6}

// binary returns two unit masses one unit apart on a circular orbit
// around their common center, and the orbital period.
func binary() (*dynamo.System, float64) {
	const (
		m = 1.0
		d = 1.0
	)
	vRel := math.Sqrt(kepler.G * 2 * m / d)
	period := 2 * math.Pi * math.Sqrt(d*d*d/(kepler.G*2*m))

	sys := dynamo.FromParticles([]dynamo.Particle{
		{Pos: r3.Vec{X: -d / 2}, Vel: r3.Vec{Y: -vRel / 2}, Mass: m},
		{Pos: r3.Vec{X: d / 2}, Vel: r3.Vec{Y: vRel / 2}, Mass: m},
	})
	return sys, period
}

func separation(sys *dynamo.System) float64 {
	return r3.Norm(r3.Sub(vecmath.At(sys.Pos, 1), vecmath.At(sys.Pos, 0)))
}

func energy(sys *dynamo.System) float64 {
	ke := 0.0
	for i, m := range sys.Mass {
		ke += 0.5 * m * r3.Norm2(vecmath.At(sys.Vel, i))
	}
	r := separation(sys)
	pe := -kepler.G * sys.Mass[0] * sys.Mass[1] / math.Sqrt(r*r+kepler.Softening*kepler.Softening)
	return ke + pe
}

func orbit(t *testing.T, integ dynamo.Integrator, stepsPerPeriod int) (*dynamo.System, float64) {
	t.Helper()
	sys, period := binary()
	e0 := energy(sys)
	eval := compute.NewDirect(kepler)
	dt := period / float64(stepsPerPeriod)

	for i := 0; i < stepsPerPeriod; i++ {
		if err := integ.Step(eval, sys, dt); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	return sys, math.Abs(energy(sys)-e0) / math.Abs(e0)
}

func TestSymplecticEulerKeplerOrbit(t *testing.T) {
	sys, drift := orbit(t, NewSymplecticEuler(), 10000)

	if sep := separation(sys); math.Abs(sep-1) > 1e-2 {
		t.Errorf("separation after one period = %.6f, want ~1", sep)
	}
	if drift > 1e-2 {
		t.Errorf("energy drift %.2e over one period", drift)
	}

	start, _ := binary()
	for i := 0; i < 2; i++ {
		d := r3.Norm(r3.Sub(vecmath.At(sys.Pos, i), vecmath.At(start.Pos, i)))
		if d > 0.05 {
			t.Errorf("particle %d ended %.4f from its start", i, d)
		}
	}
}

func TestSymplecticBeatsForwardEuler(t *testing.T) {
	_, symplectic := orbit(t, NewSymplecticEuler(), 1000)
	_, forward := orbit(t, NewEuler(), 1000)

	t.Logf("energy drift: symplectic %.2e, euler %.2e", symplectic, forward)
	if symplectic >= forward {
		t.Errorf("symplectic drift %.2e not below forward euler %.2e", symplectic, forward)
	}
}

func TestSymplecticEulerOrdering(t *testing.T) {
	// One step from rest: the position must move with the kicked velocity.
	sys := dynamo.FromParticles([]dynamo.Particle{
		{Pos: r3.Vec{X: -1}, Mass: 1},
		{Pos: r3.Vec{X: 1}, Mass: 1},
	})
	eval := compute.NewDirect(kepler)
	acc, err := compute.Compute(eval, sys.Pos, sys.Mass)
	if err != nil {
		t.Fatal(err)
	}

	const dt = 0.1
	if err := NewSymplecticEuler().Step(eval, sys, dt); err != nil {
		t.Fatal(err)
	}

	wantV := acc[0] * dt
	wantX := -1 + wantV*dt
	if math.Abs(sys.Vel[0]-wantV) > 1e-15 || math.Abs(sys.Pos[0]-wantX) > 1e-15 {
		t.Errorf("got x=%v v=%v, want x=%v v=%v", sys.Pos[0], sys.Vel[0], wantX, wantV)
	}

	rest := dynamo.FromParticles([]dynamo.Particle{
		{Pos: r3.Vec{X: -1}, Mass: 1},
		{Pos: r3.Vec{X: 1}, Mass: 1},
	})
	if err := NewEuler().Step(eval, rest, dt); err != nil {
		t.Fatal(err)
	}
	if rest.Pos[0] != -1 {
		t.Errorf("forward euler should not move a particle at rest, got x=%v", rest.Pos[0])
	}
}

func TestStepRejectsBadTimestep(t *testing.T) {
	for _, dt := range []float64{-0.1, math.NaN(), math.Inf(1)} {
		sys, _ := binary()
		before := sys.Clone()
		err := NewSymplecticEuler().Step(compute.NewDirect(kepler), sys, dt)
		if !errors.Is(err, dynamo.ErrInvalidTransition) {
			t.Errorf("dt=%v: expected ErrInvalidTransition, got %v", dt, err)
		}
		if sys.Pos[0] != before.Pos[0] || sys.Vel[1] != before.Vel[1] {
			t.Errorf("dt=%v: system modified", dt)
		}
	}
}

type nanEvaluator struct{ index int }

func (n nanEvaluator) Accelerations(pos, mass, acc []float64) error {
	clear(acc)
	acc[3*n.index+1] = math.NaN()
	return nil
}

func TestStepReportsNonFiniteAcceleration(t *testing.T) {
	sys, _ := binary()
	before := sys.Clone()

	err := NewSymplecticEuler().Step(nanEvaluator{index: 1}, sys, 0.01)

	var serr *dynamo.SimulationError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if serr.Particle != 1 || !errors.Is(err, dynamo.ErrNumericInstability) {
		t.Errorf("got %v, want instability at particle 1", err)
	}
	for i := range sys.Pos {
		if sys.Pos[i] != before.Pos[i] || sys.Vel[i] != before.Vel[i] {
			t.Fatal("system mutated before accelerations were validated")
		}
	}
}

func TestStepReportsNonFinitePosition(t *testing.T) {
	sys, _ := binary()
	sys.Vel[0] = math.MaxFloat64
	sys.Pos[0] = math.MaxFloat64

	err := NewSymplecticEuler().Step(compute.NewDirect(kepler), sys, 10)
	var serr *dynamo.SimulationError
	if !errors.As(err, &serr) || serr.Particle != 0 {
		t.Fatalf("expected instability at particle 0, got %v", err)
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		integ, err := New(name)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if integ.Name() != name {
			t.Errorf("New(%q).Name() = %q", name, integ.Name())
		}
	}
	if _, err := New("rk4"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
