package vecmath

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Inclination returns the rotation tilting the z=0 plane by rad about
// the X axis.
func Inclination(rad float64) r3.Rotation {
	return r3.NewRotation(rad, XAxis)
}
