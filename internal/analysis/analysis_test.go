package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/galaxysim/internal/compute"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/integrators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func symplectic() dynamo.Integrator { return integrators.NewSymplecticEuler() }

func TestDominantPeriod(t *testing.T) {
	const (
		n      = 256
		dt     = 0.5
		period = 16.0
	)
	series := make([]float64, n)
	for i := range series {
		series[i] = 3 + math.Sin(2*math.Pi*float64(i)*dt/period)
	}

	got, ok := DominantPeriod(series, dt)
	require.True(t, ok)
	assert.InDelta(t, period, got, 0.5)
}

func TestDominantPeriodFlat(t *testing.T) {
	_, ok := DominantPeriod([]float64{2, 2, 2, 2, 2, 2}, 1)
	assert.False(t, ok)

	_, ok = DominantPeriod([]float64{1}, 1)
	assert.False(t, ok)
}

func TestPowerSpectrumLength(t *testing.T) {
	assert.Len(t, PowerSpectrum(make([]float64, 100)), 50)
	assert.Nil(t, PowerSpectrum(nil))
}

func TestLyapunovFreeParticle(t *testing.T) {
	sys := dynamo.FromParticles([]dynamo.Particle{{Pos: r3.Vec{X: 1}, Mass: 1}})
	eval := compute.NewDirect(compute.DefaultParams())

	lambda, err := Lyapunov(eval, symplectic, sys, 1, 100, 1e-3)
	require.NoError(t, err)
	assert.InDelta(t, 0, lambda, 1e-9)
	assert.Equal(t, 1.0, sys.Pos[0], "input system must not move")
}

func TestLyapunovBinary(t *testing.T) {
	p := compute.Params{G: 1, Softening: 1e-3}
	sys := dynamo.FromParticles([]dynamo.Particle{
		{Pos: r3.Vec{X: -0.5}, Vel: r3.Vec{Y: -0.5}, Mass: 0.5},
		{Pos: r3.Vec{X: 0.5}, Vel: r3.Vec{Y: 0.5}, Mass: 0.5},
	})

	lambda, err := Lyapunov(compute.NewDirect(p), symplectic, sys, 1e-3, 2000, 1e-8)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(lambda))
	assert.Less(t, math.Abs(lambda), 5.0)
}

func TestLyapunovInvalid(t *testing.T) {
	eval := compute.NewDirect(compute.DefaultParams())
	one := dynamo.FromParticles([]dynamo.Particle{{Mass: 1}})

	_, err := Lyapunov(eval, symplectic, dynamo.NewSystem(0), 1, 10, 1e-6)
	assert.True(t, errors.Is(err, dynamo.ErrInvalidConfiguration))

	_, err = Lyapunov(eval, symplectic, one, 0, 10, 1e-6)
	assert.True(t, errors.Is(err, dynamo.ErrInvalidConfiguration))

	_, err = Lyapunov(eval, symplectic, one, 1, 10, 0)
	assert.True(t, errors.Is(err, dynamo.ErrInvalidConfiguration))
}
