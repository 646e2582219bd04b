package compute

import (
	"math"
	"testing"

	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/galaxy"
	"github.com/san-kum/galaxysim/internal/vecmath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func testParams() Params {
	return Params{G: 1, Softening: 0.1, Theta: 0, Workers: 4}
}

func allEvaluators(t *testing.T, p Params) []Evaluator {
	t.Helper()
	var evals []Evaluator
	for _, name := range Names() {
		e, err := New(name, p)
		require.NoError(t, err)
		evals = append(evals, e)
	}
	return evals
}

func testGalaxy(t *testing.T, stars int) *dynamo.System {
	t.Helper()
	cfg := galaxy.DefaultConfig()
	cfg.Stars = stars
	cfg.Mass = 1000
	cfg.Radius = 50
	cfg.InclinationDeg = 20
	sys, err := galaxy.GenerateSystem(galaxy.NewGenerator(1), []galaxy.Config{cfg}, 1)
	require.NoError(t, err)
	return sys
}

func TestTwoBody(t *testing.T) {
	const (
		m1, m2 = 2.0, 3.0
		d      = 4.0
	)
	p := Params{G: 1.5, Softening: 0.5}

	sys := dynamo.FromParticles([]dynamo.Particle{
		{Pos: r3.Vec{X: 1, Y: 1, Z: 1}, Mass: m1},
		{Pos: r3.Vec{X: 1 + d, Y: 1, Z: 1}, Mass: m2},
	})

	r2 := d*d + p.Softening*p.Softening
	want := p.G * d / (r2 * math.Sqrt(r2))

	for _, e := range allEvaluators(t, p) {
		t.Run(e.Name(), func(t *testing.T) {
			acc, err := Compute(e, sys.Pos, sys.Mass)
			require.NoError(t, err)

			a := vecmath.At(acc, 0)
			b := vecmath.At(acc, 1)
			assert.InDelta(t, want*m2, a.X, 1e-12)
			assert.InDelta(t, -want*m1, b.X, 1e-12)
			assert.Zero(t, a.Y)
			assert.Zero(t, a.Z)
			assert.Zero(t, b.Y)
			assert.Zero(t, b.Z)

			// Newton's third law: m1*a1 = -m2*a2
			assert.InDelta(t, 0, m1*a.X+m2*b.X, 1e-12)
		})
	}
}

func TestSingleParticle(t *testing.T) {
	sys := dynamo.FromParticles([]dynamo.Particle{{Pos: r3.Vec{X: 3, Y: -2, Z: 1}, Mass: 5}})

	for _, e := range allEvaluators(t, testParams()) {
		acc := []float64{9, 9, 9}
		require.NoError(t, e.Accelerations(sys.Pos, sys.Mass, acc), e.Name())
		assert.Equal(t, []float64{0, 0, 0}, acc, e.Name())
	}
}

func TestEmptySystem(t *testing.T) {
	for _, e := range allEvaluators(t, testParams()) {
		acc, err := Compute(e, nil, nil)
		require.NoError(t, err, e.Name())
		assert.Empty(t, acc, e.Name())
	}
}

func TestCoincidentParticlesStayFinite(t *testing.T) {
	sys := dynamo.FromParticles([]dynamo.Particle{
		{Pos: r3.Vec{X: 1, Y: 2, Z: 3}, Mass: 1},
		{Pos: r3.Vec{X: 1, Y: 2, Z: 3}, Mass: 1},
		{Pos: r3.Vec{X: 2, Y: 2, Z: 3}, Mass: 1},
	})

	tree := testParams()
	tree.Theta = 0.5
	evaluators := append(allEvaluators(t, testParams()), NewBarnesHut(tree))

	for _, e := range evaluators {
		acc, err := Compute(e, sys.Pos, sys.Mass)
		require.NoError(t, err, e.Name())
		assert.Equal(t, -1, vecmath.FirstNonFinite(acc), "%s produced %v", e.Name(), acc)
		// the third particle pulls both coincident ones equally
		assert.Equal(t, vecmath.At(acc, 0), vecmath.At(acc, 1), e.Name())
	}
}

func TestBarnesHutCoincidentFallsBackToExact(t *testing.T) {
	sys := dynamo.FromParticles([]dynamo.Particle{
		{Pos: r3.Vec{X: 1, Y: 2, Z: 3}, Mass: 1},
		{Pos: r3.Vec{X: 1, Y: 2, Z: 3}, Mass: 1},
		{Pos: r3.Vec{X: 2, Y: 2, Z: 3}, Mass: 1},
		{Pos: r3.Vec{X: 9, Y: 2, Z: 3}, Mass: 1},
	})
	p := Params{G: 1, Softening: 0.1, Theta: 0.5}

	want, err := Compute(NewDirect(p), sys.Pos, sys.Mass)
	require.NoError(t, err)

	bh := NewBarnesHut(p)
	for range 2 {
		got, err := Compute(bh, sys.Pos, sys.Mass)
		require.NoError(t, err)
		assert.Equal(t, -1, vecmath.FirstNonFinite(got), "%v", got)
		for i := range want {
			assert.InDelta(t, want[i], got[i], 1e-12, "component %d", i)
		}
	}

	// Once the stars separate the tree builds again.
	sys.Pos[0] = 0.5
	got, err := Compute(bh, sys.Pos, sys.Mass)
	require.NoError(t, err)
	assert.Equal(t, -1, vecmath.FirstNonFinite(got), "%v", got)
	require.NoError(t, bh.volume.Reset())
}

func TestDimensionMismatch(t *testing.T) {
	for _, e := range allEvaluators(t, testParams()) {
		err := e.Accelerations(make([]float64, 6), make([]float64, 3), make([]float64, 6))
		assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch, e.Name())
	}
}

func TestEvaluatorsAgree(t *testing.T) {
	sys := testGalaxy(t, 300)
	p := testParams()

	want, err := Compute(NewDirect(p), sys.Pos, sys.Mass)
	require.NoError(t, err)

	for _, e := range allEvaluators(t, p) {
		got, err := Compute(e, sys.Pos, sys.Mass)
		require.NoError(t, err)
		for i := range want {
			assert.InDelta(t, want[i], got[i], 1e-9*math.Abs(want[i])+1e-12, "%s component %d", e.Name(), i)
		}
	}
}

func TestParallelIndependentOfWorkers(t *testing.T) {
	sys := testGalaxy(t, 257)

	var ref []float64
	for _, workers := range []int{1, 2, 3, 7, 0} {
		p := testParams()
		p.Workers = workers
		acc, err := Compute(NewCPUBackend(p), sys.Pos, sys.Mass)
		require.NoError(t, err)
		if ref == nil {
			ref = acc
			continue
		}
		assert.Equal(t, ref, acc, "workers=%d", workers)
	}
}

func TestMomentumConserved(t *testing.T) {
	sys := testGalaxy(t, 200)

	for _, e := range []Evaluator{NewDirect(testParams()), NewCPUBackend(testParams())} {
		acc, err := Compute(e, sys.Pos, sys.Mass)
		require.NoError(t, err)

		var net, scale r3.Vec
		for i, m := range sys.Mass {
			a := vecmath.At(acc, i)
			net = r3.Add(net, r3.Scale(m, a))
			scale = r3.Add(scale, r3.Scale(m, r3.Vec{X: math.Abs(a.X), Y: math.Abs(a.Y), Z: math.Abs(a.Z)}))
		}
		assert.Less(t, r3.Norm(net), 1e-10*r3.Norm(scale), e.Name())
	}
}

func TestBarnesHutAccuracy(t *testing.T) {
	sys := testGalaxy(t, 1000)
	p := testParams()

	exact, err := Compute(NewCPUBackend(p), sys.Pos, sys.Mass)
	require.NoError(t, err)

	p.Theta = 0.5
	approx, err := Compute(NewBarnesHut(p), sys.Pos, sys.Mass)
	require.NoError(t, err)

	sum := 0.0
	for i := 0; i < sys.Len(); i++ {
		e := vecmath.At(exact, i)
		d := r3.Sub(vecmath.At(approx, i), e)
		sum += r3.Norm(d) / r3.Norm(e)
	}
	mean := sum / float64(sys.Len())
	assert.Less(t, mean, 0.02, "mean relative error %g", mean)
}

func TestNew(t *testing.T) {
	assert.Equal(t, []string{"barneshut", "direct", "parallel"}, Names())

	_, err := New("gpu", DefaultParams())
	assert.Error(t, err)

	bad := DefaultParams()
	bad.Softening = 0
	_, err = New("direct", bad)
	assert.ErrorIs(t, err, dynamo.ErrInvalidConfiguration)

	bad = DefaultParams()
	bad.G = math.NaN()
	_, err = New("direct", bad)
	assert.ErrorIs(t, err, dynamo.ErrInvalidConfiguration)
}
