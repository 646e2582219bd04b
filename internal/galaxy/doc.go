// Package galaxy generates the initial stars of galaxy disks.
//
// Stars are placed on a disk whose radial distribution follows a
// [Profile], given a small vertical spread, and started on circular orbits
// balanced against the mass enclosed by their radius. The whole disk is
// then tilted by its inclination about the X axis and moved to its center
// and bulk velocity.
//
//	gen := galaxy.NewGenerator(compute.DefaultG)
//	stars, err := gen.Generate(cfg, rand.NewSource(seed))
package galaxy
