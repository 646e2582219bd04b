package metrics

import (
	"math"

	"github.com/san-kum/galaxysim/internal/compute"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/vecmath"
	"gonum.org/v1/gonum/spatial/r3"
)

// Kinetic returns the total kinetic energy of sys.
func Kinetic(sys *dynamo.System) float64 {
	ke := 0.0
	for i, m := range sys.Mass {
		ke += 0.5 * m * r3.Norm2(vecmath.At(sys.Vel, i))
	}
	return ke
}

// Potential returns the softened gravitational potential energy, summing
// -G·mi·mj/sqrt(r²+ε²) over unordered pairs.
func Potential(sys *dynamo.System, p compute.Params) float64 {
	eps2 := p.Softening * p.Softening
	n := sys.Len()
	pe := 0.0
	for i := 0; i < n; i++ {
		xi := vecmath.At(sys.Pos, i)
		for j := i + 1; j < n; j++ {
			r2 := r3.Norm2(r3.Sub(vecmath.At(sys.Pos, j), xi)) + eps2
			pe -= sys.Mass[i] * sys.Mass[j] / math.Sqrt(r2)
		}
	}
	return p.G * pe
}

func Total(sys *dynamo.System, p compute.Params) float64 {
	return Kinetic(sys) + Potential(sys, p)
}

// Energy records the total energy at every tick.
type Energy struct {
	params compute.Params
	series Series
}

func NewEnergy(p compute.Params) *Energy {
	return &Energy{params: p}
}

func (e *Energy) Name() string { return "energy" }

func (e *Energy) OnTick(sys *dynamo.System, t float64) {
	e.series.Add(t, Total(sys, e.params))
}

// Value is the most recent total energy.
func (e *Energy) Value() float64 { return e.series.Last() }

func (e *Energy) Series() *Series { return &e.series }

func (e *Energy) Reset() { e.series.Reset() }

// EnergyDrift tracks the largest relative deviation of the total energy
// from its first observed value.
type EnergyDrift struct {
	params   compute.Params
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(p compute.Params) *EnergyDrift {
	return &EnergyDrift{params: p}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

// Baseline sets the reference energy from sys, typically before the first
// step.
func (e *EnergyDrift) Baseline(sys *dynamo.System) {
	e.Reset()
	e.initial = Total(sys, e.params)
	e.samples = 1
}

func (e *EnergyDrift) OnTick(sys *dynamo.System, t float64) {
	energy := Total(sys, e.params)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
