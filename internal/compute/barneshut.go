package compute

import (
	"math"

	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/vecmath"
	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r3"
)

type star struct {
	pos  r3.Vec
	mass float64
}

func (s *star) Coord3() r3.Vec { return s.pos }
func (s *star) Mass() float64  { return s.mass }

// BarnesHut approximates distant groups of stars by their center of mass
// using an octree. Cost is O(n log n) per evaluation; accuracy is set by
// Params.Theta.
type BarnesHut struct {
	params    Params
	stars     []star
	particles []barneshut.Particle3
	volume    barneshut.Volume
}

func NewBarnesHut(p Params) *BarnesHut {
	return &BarnesHut{params: p}
}

func (b *BarnesHut) Name() string { return "barneshut" }

func (b *BarnesHut) Accelerations(pos, mass, acc []float64) error {
	if err := checkDims(pos, mass, acc); err != nil {
		return err
	}

	n := len(mass)
	if n <= 1 {
		clear(acc)
		return nil
	}

	if cap(b.stars) < n {
		b.stars = make([]star, n)
		b.particles = make([]barneshut.Particle3, n)
	}
	b.stars = b.stars[:n]
	b.particles = b.particles[:n]
	for i := range b.stars {
		b.stars[i] = star{pos: vecmath.At(pos, i), mass: mass[i]}
		b.particles[i] = &b.stars[i]
	}

	theta := b.params.Theta
	b.volume.Particles = b.particles
	// With theta zero ForceOn walks the particle list directly. Reset
	// fails when the octree cannot split coincident or nearly coincident
	// stars; that evaluation falls back to the exact walk.
	if theta > 0 {
		if err := b.volume.Reset(); err != nil {
			theta = 0
		}
	}

	g := b.params.G
	eps2 := b.params.Softening * b.params.Softening

	// Returns the acceleration per unit G on the first particle; the
	// tree passes aggregated nodes as m2.
	softened := func(_, _ barneshut.Particle3, _, m2 float64, v r3.Vec) r3.Vec {
		r2 := r3.Norm2(v) + eps2
		return r3.Scale(m2/(r2*math.Sqrt(r2)), v)
	}

	dynamo.ParallelFor(n, minChunk, b.params.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			a := b.volume.ForceOn(b.particles[i], theta, softened)
			vecmath.Set(acc, i, r3.Scale(g, a))
		}
	})
	return nil
}
