// Package compute provides the gravitational force evaluators.
//
// Every evaluator applies the same softened law: for particles i and j,
//
//	r  = x_j - x_i
//	r2 = |r|^2 + eps^2
//	a_i += G * m_j * r / (r2 * sqrt(r2))
//
// Three implementations are registered with [New]:
//
//   - direct: serial O(n^2) summation over unordered pairs
//   - parallel: O(n^2) summation split by particle across goroutines
//   - barneshut: O(n log n) octree approximation controlled by theta
//
// # Choosing an evaluator
//
// Up to a few thousand stars parallel direct summation is exact and fast
// enough for interactive use. Beyond that, barneshut trades a small,
// theta-controlled error for much better scaling:
//
//	eval, err := compute.New("barneshut", compute.DefaultParams())
//	acc, err := compute.Compute(eval, sys.Pos, sys.Mass)
package compute
