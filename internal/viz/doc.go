// Package viz draws gravity simulations in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Menu]: scenario picker that opens the live view
//   - [LiveModel]: runs a simulation at 60 Hz with trails and an energy plot
//   - [Canvas]: Braille-based pixel canvas with per-cell colour
//   - [Palette]: hex colour tags for new bodies
//
// [RenderBodies] and [RenderTrajectories] produce one-shot pictures for
// non-interactive output.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	a / A - Add a body at the cursor (A: random heading on an empty field)
//	click - Add a body at the pointer
//	b     - Toggle collision bounce
//	r     - Reset to initial state
//	t     - Cycle color themes
//	g     - Toggle GIF recording
//	?     - Show help overlay
//
// # Recording
//
// The live view can record a session as a GIF animation with the g key.
// Recordings are written to LiveOptions.RecordPath.
package viz
