package metrics

import (
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/vecmath"
	"gonum.org/v1/gonum/spatial/r3"
)

// Bound reports the fraction of ticks at which every particle stayed
// within radius of the system's center of mass.
type Bound struct {
	radius     float64
	violations int
	samples    int
}

func NewBound(radius float64) *Bound {
	return &Bound{radius: radius}
}

func (b *Bound) Name() string { return "bound" }

func (b *Bound) OnTick(sys *dynamo.System, t float64) {
	b.samples++
	com := sys.CenterOfMass()
	r2 := b.radius * b.radius
	for i := 0; i < sys.Len(); i++ {
		if r3.Norm2(r3.Sub(vecmath.At(sys.Pos, i), com)) > r2 {
			b.violations++
			return
		}
	}
}

func (b *Bound) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bound) Reset() {
	b.violations = 0
	b.samples = 0
}
