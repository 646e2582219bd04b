package galaxy

import (
	"fmt"
	"math"

	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/vecmath"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

// Generator places stars into galaxy disks. G must match the gravitational
// constant of the force evaluator so that initial orbits are balanced.
type Generator struct {
	G float64
}

func NewGenerator(g float64) Generator {
	return Generator{G: g}
}

// Generate returns cfg.Stars particles for one galaxy. The result depends
// only on cfg and the sequence produced by src.
func (g Generator) Generate(cfg Config, src rand.Source) ([]dynamo.Particle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !(g.G > 0) || math.IsInf(g.G, 0) {
		return nil, invalid("gravitational constant must be positive, got %g", g.G)
	}

	drawRadius := cfg.radiusSampler(src)
	angle := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: src}
	half := cfg.Thickness / 2
	var height distuv.Triangle
	if half > 0 {
		height = distuv.NewTriangle(-half, half, 0, src)
	}

	rad := cfg.InclinationRad()
	tilt := vecmath.Inclination(rad)
	starMass := cfg.Mass / float64(cfg.Stars)

	stars := make([]dynamo.Particle, cfg.Stars)
	for i := range stars {
		r := drawRadius()
		theta := angle.Rand()
		z := 0.0
		if half > 0 {
			z = height.Rand()
		}

		sin, cos := math.Sincos(theta)
		pos := r3.Vec{X: r * cos, Y: r * sin, Z: z}

		speed := 0.0
		if r > 0 {
			speed = math.Sqrt(g.G * cfg.Mass * cfg.enclosedFraction(r) / r)
		}
		vel := r3.Vec{X: -sin * speed, Y: cos * speed}

		if rad != 0 {
			pos = tilt.Rotate(pos)
			vel = tilt.Rotate(vel)
		}

		p := dynamo.Particle{
			Pos:  r3.Add(pos, cfg.Center),
			Vel:  r3.Add(vel, cfg.Velocity),
			Mass: starMass,
		}
		if !vecmath.Finite(p.Pos) || !vecmath.Finite(p.Vel) || !(p.Mass > 0) {
			return nil, invalid("star %d is not finite (pos=%v vel=%v mass=%g)", i, p.Pos, p.Vel, p.Mass)
		}
		stars[i] = p
	}

	return stars, nil
}

// GenerateSystem generates every galaxy in order and concatenates them.
// Galaxy k draws from a source seeded with seed+k.
func GenerateSystem(g Generator, cfgs []Config, seed uint64) (*dynamo.System, error) {
	if len(cfgs) == 0 {
		return nil, invalid("no galaxies configured")
	}

	total := 0
	for _, c := range cfgs {
		if c.Stars > 0 {
			total += c.Stars
		}
	}

	sys := dynamo.NewSystem(total)
	for k, c := range cfgs {
		stars, err := g.Generate(c, rand.NewSource(seed+uint64(k)))
		if err != nil {
			return nil, fmt.Errorf("galaxy %d: %w", k, err)
		}
		sys.Append(stars...)
	}
	return sys, nil
}
