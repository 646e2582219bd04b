package integrators

import (
	"testing"

	"github.com/san-kum/galaxysim/internal/compute"
	"github.com/san-kum/galaxysim/internal/galaxy"
)

func BenchmarkSymplecticEuler1000(b *testing.B) {
	cfg := galaxy.DefaultConfig()
	sys, err := galaxy.GenerateSystem(galaxy.NewGenerator(compute.DefaultG), []galaxy.Config{cfg}, 1)
	if err != nil {
		b.Fatal(err)
	}
	eval := compute.NewCPUBackend(compute.DefaultParams())
	integ := NewSymplecticEuler()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := integ.Step(eval, sys, 100); err != nil {
			b.Fatal(err)
		}
	}
}
