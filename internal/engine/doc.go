// Package engine owns the simulation state: static charges, dynamic bodies
// and streamline tracers, and advances them one rendered frame at a time.
//
// The engine is driven by discrete commands ([Simulation.AddStaticCharge],
// [Simulation.AddDynamicBody], the Clear* and Set* methods) and by
// [Simulation.StepFrame], which returns a [Snapshot] for drawing.
//
// # Stepping order
//
// A frame is split into Settings.Substeps equal substeps. Iteration is
// substep-major: for each substep the charge locations of every live body are
// captured first, then each body is integrated once against the static charges
// plus that capture. A body therefore sees the others as they were at the end
// of the previous substep, independent of slice order, and runs are
// reproducible.
//
// A body whose integration fails (proximity guard or non-finite state) is
// dead for the rest of the frame and dropped from the active set when the
// frame completes. Removal is permanent.
//
// # Thread Safety
//
// Simulation is NOT safe for concurrent use. All calls must come from the
// goroutine driving the frame loop.
package engine
