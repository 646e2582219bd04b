package compute

import (
	"math"

	"github.com/san-kum/galaxysim/internal/dynamo"
)

// minChunk keeps goroutine overhead below the work of one chunk.
const minChunk = 16

// CPUBackend spreads direct summation across goroutines. Each worker owns
// a contiguous range of particles and is the only writer of their
// accelerations; every particle sums its partners in index order, so the
// result does not depend on the number of workers.
type CPUBackend struct {
	params Params
}

func NewCPUBackend(p Params) *CPUBackend {
	return &CPUBackend{params: p}
}

func (c *CPUBackend) Name() string { return "parallel" }

func (c *CPUBackend) Accelerations(pos, mass, acc []float64) error {
	if err := checkDims(pos, mass, acc); err != nil {
		return err
	}

	n := len(mass)
	g := c.params.G
	eps2 := c.params.Softening * c.params.Softening

	dynamo.ParallelFor(n, minChunk, c.params.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			xi, yi, zi := pos[i*3], pos[i*3+1], pos[i*3+2]
			var ax, ay, az float64

			for j := 0; j < n; j++ {
				if i == j {
					continue
				}

				rx := pos[j*3] - xi
				ry := pos[j*3+1] - yi
				rz := pos[j*3+2] - zi
				r2 := rx*rx + ry*ry + rz*rz + eps2

				rInv := 1.0 / math.Sqrt(r2)
				f := g * mass[j] * rInv * rInv * rInv
				ax += f * rx
				ay += f * ry
				az += f * rz
			}

			acc[i*3] = ax
			acc[i*3+1] = ay
			acc[i*3+2] = az
		}
	})
	return nil
}
