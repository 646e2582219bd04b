// Package viz is the terminal viewer for a running simulation.
//
// It consumes only the controller's public surface: the position buffer,
// simulation time and state, and the step/pause/reset calls. Stars are
// drawn as Braille dots through a rotatable orthographic camera:
//
//   - [Model]: live Bubble Tea model driving a [sim.Controller]
//   - [Menu]: preset picker that launches a [Model]
//   - [Canvas]: Braille canvas, 2x4 dots per terminal cell
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Step once (paused)
//	B     - Step back (paused)
//	R     - Regenerate galaxies
//	X/Y   - Rotate camera
//	+/-   - Zoom
//	,/.   - Halve/double the timestep
//	C     - Follow center of mass
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
