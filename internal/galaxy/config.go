package galaxy

import (
	"fmt"
	"math"

	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/vecmath"
)

const (
	DefaultRadius    = 500.0
	DefaultThickness = 5.0
)

// Profile selects how star radii are distributed across the disk.
type Profile string

const (
	// Uniform spreads stars with constant surface density (r = R*sqrt(U)).
	Uniform Profile = "uniform"
	// Exponential concentrates stars toward the center with surface
	// density proportional to exp(-r/h), truncated at the disk radius.
	Exponential Profile = "exponential"
)

// Config describes one galaxy disk.
type Config struct {
	Stars          int
	Center         vecmath.Vec
	Velocity       vecmath.Vec
	InclinationDeg float64
	Mass           float64

	// Radius bounds the in-plane distance of every star from Center. Zero
	// means DefaultRadius.
	Radius float64
	// Thickness is the full vertical extent of the untilted disk; stars
	// are placed within ±Thickness/2 of the midplane.
	Thickness float64

	Profile Profile
	// ScaleLength is the exponential profile's h. Zero means Radius/4.
	ScaleLength float64
}

// DefaultConfig returns a 1000 star disk with the default radius and
// thickness.
func DefaultConfig() Config {
	return Config{
		Stars:     1000,
		Mass:      1e10,
		Radius:    DefaultRadius,
		Thickness: DefaultThickness,
		Profile:   Uniform,
	}
}

// InclinationRad returns the inclination in radians.
func (c Config) InclinationRad() float64 {
	return vecmath.Radians(c.InclinationDeg)
}

func (c Config) radius() float64 {
	if c.Radius == 0 {
		return DefaultRadius
	}
	return c.Radius
}

func (c Config) scaleLength() float64 {
	if c.ScaleLength == 0 {
		return c.radius() / 4
	}
	return c.ScaleLength
}

func (c Config) profile() Profile {
	if c.Profile == "" {
		return Uniform
	}
	return c.Profile
}

// Validate reports the first problem that would stop c from producing a
// valid particle set.
func (c Config) Validate() error {
	switch {
	case c.Stars <= 0:
		return invalid("star count must be positive, got %d", c.Stars)
	case !(c.Mass > 0) || math.IsInf(c.Mass, 0):
		return invalid("total mass must be positive and finite, got %g", c.Mass)
	case !(c.radius() > 0) || math.IsInf(c.radius(), 0):
		return invalid("radius must be positive and finite, got %g", c.Radius)
	case !(c.Thickness >= 0) || math.IsInf(c.Thickness, 0):
		return invalid("thickness must be non-negative and finite, got %g", c.Thickness)
	case !vecmath.Finite(c.Center):
		return invalid("center is not finite: %v", c.Center)
	case !vecmath.Finite(c.Velocity):
		return invalid("velocity is not finite: %v", c.Velocity)
	case math.IsNaN(c.InclinationDeg) || math.IsInf(c.InclinationDeg, 0):
		return invalid("inclination is not finite: %g", c.InclinationDeg)
	}

	switch c.profile() {
	case Uniform:
	case Exponential:
		if h := c.scaleLength(); !(h > 0) || math.IsInf(h, 0) {
			return invalid("scale length must be positive and finite, got %g", c.ScaleLength)
		}
	default:
		return invalid("unknown profile %q", c.Profile)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", dynamo.ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
