// Package dynamo provides the core types shared by the galaxy simulation.
//
// The package defines:
//
//   - [Particle]: a single star (position, velocity, mass)
//   - [System]: every particle in structure-of-arrays layout
//   - [ForceEvaluator]: computes gravitational accelerations
//   - [Integrator]: advances a System by one timestep
//
// # Buffer layout
//
// System.Pos is the buffer handed to renderers. It holds x, y, z for
// particle i at indices 3i, 3i+1 and 3i+2 and is never reallocated for
// the lifetime of the System; restoring a snapshot copies into it.
//
// # Thread Safety
//
// A System is owned by a single caller. Force evaluators may fan work out
// across goroutines internally (see [ParallelFor]) but return only after
// every worker has finished.
package dynamo
