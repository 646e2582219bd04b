package compute

import (
	"math"

	"github.com/san-kum/galaxysim/internal/vecmath"
	"gonum.org/v1/gonum/spatial/r3"
)

// Direct sums every unordered pair once on the calling goroutine, applying
// each interaction to both particles.
type Direct struct {
	params Params
}

func NewDirect(p Params) *Direct {
	return &Direct{params: p}
}

func (d *Direct) Name() string { return "direct" }

func (d *Direct) Accelerations(pos, mass, acc []float64) error {
	if err := checkDims(pos, mass, acc); err != nil {
		return err
	}
	clear(acc)

	n := len(mass)
	g := d.params.G
	eps2 := d.params.Softening * d.params.Softening

	for i := 0; i < n; i++ {
		xi, yi, zi := pos[i*3], pos[i*3+1], pos[i*3+2]

		for j := i + 1; j < n; j++ {
			rx := pos[j*3] - xi
			ry := pos[j*3+1] - yi
			rz := pos[j*3+2] - zi
			r2 := rx*rx + ry*ry + rz*rz + eps2

			rInv := 1.0 / math.Sqrt(r2)
			r3Inv := rInv * rInv * rInv

			r := r3.Vec{X: rx, Y: ry, Z: rz}
			vecmath.AddScaled(acc, i, r, g*mass[j]*r3Inv)
			vecmath.AddScaled(acc, j, r, -g*mass[i]*r3Inv)
		}
	}
	return nil
}
