// Package vecmath holds the small amount of 3D vector arithmetic the
// simulation core needs on top of gonum's r3 package.
//
// Particle state is stored in flat []float64 buffers (x, y, z per
// particle); At, Set and AddScaled read and write a single particle's
// triple in such a buffer without allocating.
package vecmath

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec is a 3D vector.
type Vec = r3.Vec

// XAxis is the in-plane axis galaxy disks are tilted about.
var XAxis = Vec{X: 1}

// At returns the i'th triple of buf.
func At(buf []float64, i int) Vec {
	return Vec{X: buf[3*i], Y: buf[3*i+1], Z: buf[3*i+2]}
}

// Set stores v as the i'th triple of buf.
func Set(buf []float64, i int, v Vec) {
	buf[3*i] = v.X
	buf[3*i+1] = v.Y
	buf[3*i+2] = v.Z
}

// AddScaled adds s*v to the i'th triple of buf.
func AddScaled(buf []float64, i int, v Vec, s float64) {
	buf[3*i] += s * v.X
	buf[3*i+1] += s * v.Y
	buf[3*i+2] += s * v.Z
}

// Finite reports whether every component of v is neither NaN nor Inf.
func Finite(v Vec) bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

// FirstNonFinite returns the index of the first triple in buf holding a
// NaN or Inf, or -1.
func FirstNonFinite(buf []float64) int {
	for i, v := range buf {
		if !finite(v) {
			return i / 3
		}
	}
	return -1
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
