package metrics

import (
	"math"

	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/vecmath"
	"gonum.org/v1/gonum/spatial/r3"
)

// Momentum tracks the largest change in total linear momentum relative to
// the sum of |m·v| at the first observation.
type Momentum struct {
	initial r3.Vec
	scale   float64
	maxDev  float64
	samples int
}

func NewMomentum() *Momentum {
	return &Momentum{}
}

func (m *Momentum) Name() string { return "momentum_error" }

func (m *Momentum) Baseline(sys *dynamo.System) {
	m.Reset()
	m.initial = sys.Momentum()
	m.scale = momentumScale(sys)
	m.samples = 1
}

func (m *Momentum) OnTick(sys *dynamo.System, t float64) {
	p := sys.Momentum()
	if m.samples == 0 {
		m.initial = p
		m.scale = momentumScale(sys)
	}
	m.samples++

	dev := r3.Norm(r3.Sub(p, m.initial))
	if m.scale > 0 {
		dev /= m.scale
	}
	m.maxDev = math.Max(m.maxDev, dev)
}

func (m *Momentum) Value() float64 { return m.maxDev }

func (m *Momentum) Reset() {
	*m = Momentum{}
}

func momentumScale(sys *dynamo.System) float64 {
	s := 0.0
	for i, mass := range sys.Mass {
		s += mass * r3.Norm(vecmath.At(sys.Vel, i))
	}
	return s
}
