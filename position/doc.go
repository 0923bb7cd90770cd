// Package position implements the Type II position-based on-line
// trajectory generator: the per-tick orchestrator that turns a set of
// per-axis current/target states into the next control-cycle's motion
// state, synchronized across every selected axis.
//
// What:
//
//   - Generator owns one rml.Trajectory per axis plus the previous
//     tick's Input, pre-allocated once by NewGenerator.
//   - NextState runs the full kernel (rml Step 1, Synchronize, optional
//     phase-sync detection, Step 2) only when the new Input differs from
//     the last one by more than rml.InputValueEpsilon; otherwise it
//     samples the already-computed trajectories at the next control
//     cycle, exactly mirroring the "no recomputation needed" fast path
//     of the data model.
//   - A three-layer safety cascade degrades gracefully: Layer 3 is the
//     full synchronized kernel; Layer 2 is rml.VelocityKernel applied
//     independently per axis when synchronization or re-parameterization
//     fails; Layer 1 freezes every selected axis at constant velocity
//     (zero acceleration) when even the limits themselves are invalid.
//
// Why: a servo control loop calls NextState once per cycle and must
// always receive a valid, safe motion state — it can never observe a
// half-computed Output, and it cannot afford to re-solve the kernel from
// scratch every cycle when nothing has changed.
//
// Complexity: O(K log K) per recomputation (K = selected axis count,
// dominated by rml.Synchronize's sort); O(K) per cached-trajectory tick.
//
// Concurrency: a Generator is not safe for concurrent use; one control
// loop owns it and calls NextState serially, following rml's own
// single-threaded tick model.
package position
