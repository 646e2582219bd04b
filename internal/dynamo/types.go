package dynamo

import (
	"fmt"

	"github.com/san-kum/galaxysim/internal/vecmath"
	"gonum.org/v1/gonum/spatial/r3"
)

// Particle is a point mass. Its identity is its index in a System.
type Particle struct {
	Pos  r3.Vec
	Vel  r3.Vec
	Mass float64
}

// System stores particles as parallel arrays. Pos and Vel hold three
// values per particle.
type System struct {
	Pos  []float64
	Vel  []float64
	Mass []float64
}

// NewSystem returns an empty System with room for n particles.
func NewSystem(n int) *System {
	return &System{
		Pos:  make([]float64, 0, 3*n),
		Vel:  make([]float64, 0, 3*n),
		Mass: make([]float64, 0, n),
	}
}

// FromParticles builds a System holding ps in order.
func FromParticles(ps []Particle) *System {
	s := NewSystem(len(ps))
	s.Append(ps...)
	return s
}

func (s *System) Len() int { return len(s.Mass) }

// Append adds particles to the end of the System. It must not be called
// once the Pos buffer has been handed out.
func (s *System) Append(ps ...Particle) {
	for _, p := range ps {
		s.Pos = append(s.Pos, p.Pos.X, p.Pos.Y, p.Pos.Z)
		s.Vel = append(s.Vel, p.Vel.X, p.Vel.Y, p.Vel.Z)
		s.Mass = append(s.Mass, p.Mass)
	}
}

// Particle returns a copy of particle i.
func (s *System) Particle(i int) Particle {
	return Particle{
		Pos:  vecmath.At(s.Pos, i),
		Vel:  vecmath.At(s.Vel, i),
		Mass: s.Mass[i],
	}
}

func (s *System) Clone() *System {
	c := &System{
		Pos:  make([]float64, len(s.Pos)),
		Vel:  make([]float64, len(s.Vel)),
		Mass: make([]float64, len(s.Mass)),
	}
	copy(c.Pos, s.Pos)
	copy(c.Vel, s.Vel)
	copy(c.Mass, s.Mass)
	return c
}

// CopyFrom overwrites s with o's contents without reallocating s.
func (s *System) CopyFrom(o *System) error {
	if o.Len() != s.Len() {
		return fmt.Errorf("%w: copy %d particles into %d", ErrDimensionMismatch, o.Len(), s.Len())
	}
	copy(s.Pos, o.Pos)
	copy(s.Vel, o.Vel)
	copy(s.Mass, o.Mass)
	return nil
}

// Validate checks buffer lengths and that every value is finite and every
// mass positive.
func (s *System) Validate() error {
	n := s.Len()
	if len(s.Pos) != 3*n || len(s.Vel) != 3*n {
		return fmt.Errorf("%w: %d masses, %d positions, %d velocities", ErrDimensionMismatch, n, len(s.Pos), len(s.Vel))
	}
	if i := s.FirstNonFinite(); i >= 0 {
		return Unstable(i)
	}
	for i, m := range s.Mass {
		if !(m > 0) {
			return fmt.Errorf("%w: particle %d has mass %g", ErrInvalidConfiguration, i, m)
		}
	}
	return nil
}

// FirstNonFinite returns the index of the first particle with a NaN or
// Inf position or velocity, or -1.
func (s *System) FirstNonFinite() int {
	p := vecmath.FirstNonFinite(s.Pos)
	v := vecmath.FirstNonFinite(s.Vel)
	switch {
	case p < 0:
		return v
	case v < 0 || p < v:
		return p
	default:
		return v
	}
}

func (s *System) TotalMass() float64 {
	m := 0.0
	for _, mi := range s.Mass {
		m += mi
	}
	return m
}

// Momentum returns the total linear momentum.
func (s *System) Momentum() r3.Vec {
	var p r3.Vec
	for i, m := range s.Mass {
		p = r3.Add(p, r3.Scale(m, vecmath.At(s.Vel, i)))
	}
	return p
}

func (s *System) CenterOfMass() r3.Vec {
	var c r3.Vec
	total := 0.0
	for i, m := range s.Mass {
		c = r3.Add(c, r3.Scale(m, vecmath.At(s.Pos, i)))
		total += m
	}
	if total == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/total, c)
}

// ForceEvaluator computes the gravitational acceleration on every
// particle. acc has the same layout as pos and is overwritten.
type ForceEvaluator interface {
	Accelerations(pos, mass, acc []float64) error
}

// Integrator advances sys in place by dt.
type Integrator interface {
	Name() string
	Step(eval ForceEvaluator, sys *System, dt float64) error
}
