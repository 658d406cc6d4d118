// Package viz renders a running field simulation in the terminal.
//
// The live view is a Bubble Tea program drawing streamlines and bodies on a
// Braille canvas next to a stats panel:
//
//   - [Model]: the interactive viewer; it owns the simulation and steps it
//     once per tick
//   - [Canvas]: Braille dot grid with a glyph layer for charges and bodies
//   - [Projection]: world meters to canvas dots and back
//
// # Key Bindings
//
//	Arrows/hjkl - Move the cursor
//	+ / -       - Drop a positive / negative static charge at the cursor
//	p / d       - Spawn a point particle / dipole at the cursor
//	x / s / c   - Clear bodies / statics / everything
//	i           - Toggle body-to-body interaction
//	a           - Toggle direction marks
//	m           - Switch mark mode (distance / potential)
//	[ ]         - Fewer / more streamlines per charge
//	{ }         - Tighter / looser mark spacing
//	r           - Reseed streamlines
//	Space       - Pause/Resume
//	T           - Cycle themes
//	?           - Show help overlay
//
// Left click drops a positive charge, right click a negative one.
package viz
