// Package analysis characterizes simulation output.
//
//   - [PowerSpectrum] and [DominantPeriod]: periodicity of a sampled
//     series such as the disk spread, via an FFT
//   - [Lyapunov]: largest Lyapunov exponent from two nearby systems
//     stepped side by side
//
// A positive exponent means nearby initial conditions separate
// exponentially:
//
//	newInteg := func() dynamo.Integrator { return integrators.NewSymplecticEuler() }
//	lambda, err := analysis.Lyapunov(eval, newInteg, sys, dt, steps, 1e-6)
package analysis
