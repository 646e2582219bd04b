package galaxy

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// maxRejections bounds the gamma draws per star before the sampler falls
// back to inverting the enclosed mass.
const maxRejections = 64

// enclosedFraction returns the share of the disk's mass inside radius r.
func (c Config) enclosedFraction(r float64) float64 {
	R := c.radius()
	if r >= R {
		return 1
	}
	if r <= 0 {
		return 0
	}

	switch c.profile() {
	case Exponential:
		h := c.scaleLength()
		return expCumulative(r/h) / expCumulative(R/h)
	default:
		x := r / R
		return x * x
	}
}

// expCumulative is the unnormalized mass of an exponential disk inside
// x scale lengths.
func expCumulative(x float64) float64 {
	return -math.Expm1(-x) - x*math.Exp(-x)
}

// radiusSampler draws in-plane radii from src. Uniform disks use
// R·sqrt(U); exponential disks draw r ~ Gamma(2, h) and reject draws
// outside R.
func (c Config) radiusSampler(src rand.Source) func() float64 {
	R := c.radius()
	unit := distuv.Uniform{Min: 0, Max: 1, Src: src}
	if c.profile() != Exponential {
		return func() float64 { return R * math.Sqrt(unit.Rand()) }
	}

	gamma := distuv.Gamma{Alpha: 2, Beta: 1 / c.scaleLength(), Src: src}
	return func() float64 {
		for range maxRejections {
			if r := gamma.Rand(); r < R {
				return r
			}
		}
		return c.sampleRadius(unit.Rand())
	}
}

// sampleRadius maps u in [0, 1) to a radius distributed according to the
// profile by inverting enclosedFraction.
func (c Config) sampleRadius(u float64) float64 {
	R := c.radius()
	if c.profile() != Exponential {
		return R * math.Sqrt(u)
	}

	lo, hi := 0.0, R
	for i := 0; i < 64; i++ {
		mid := 0.5 * (lo + hi)
		if c.enclosedFraction(mid) < u {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}
