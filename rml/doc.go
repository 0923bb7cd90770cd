// Package rml implements the position- and velocity-based trajectory
// synthesis kernel of an on-line trajectory generator (OTG) for
// multi-axis mechanical systems.
//
// What:
//
//   - Polynomial holds a single degree-≤2 segment; Trajectory is an
//     ordered sequence of at most seven segments per axis.
//   - Step 1 computes, per axis, the minimum execution time and any
//     inoperative time interval during which no profile can reach the
//     target.
//   - Synchronize combines per-axis Step 1 output into one common
//     synchronization time.
//   - DetectPhaseSync/GeneratePhaseSyncTrajectory recognize and produce
//     homothetic (straight-line) multi-axis motion.
//   - Step 2 re-parameterizes each axis's polynomial sequence to land
//     exactly on the synchronization time.
//   - VelocityKernel is the closed-form, position-agnostic fallback
//     kernel, reused by the position orchestrator's Safety Layer 2 and
//     by the velocity-only orchestrator.
//   - ExtremaOf scans a trajectory's velocity polynomials for sign
//     changes to report positional extrema.
//
// Why:
//
//   - Servo and robot control loops need a new, continuous set-point
//     every tick even when the target changes discontinuously between
//     ticks; re-planning a time-optimal trajectory in closed form (no
//     iteration, no allocation) is the only way to do that within a
//     millisecond-scale control cycle.
//
// Complexity: every exported function here is O(1) per axis; the only
// data-dependent cost is Synchronize's sort over at most 3K+1 values.
//
// Concurrency: nothing in this package is safe for concurrent use. A
// Trajectory is built by Step2 or VelocityKernel and rewritten in place by
// GeneratePhaseSyncTrajectory; callers own one Trajectory
// per axis and must serialize access to it, matching the single-threaded,
// non-suspending tick model described by the orchestrator packages
// position and velocity.
//
// Errors:
//
//   - ErrInvalidLimits: a selected axis has MaxVelocity or MaxAcceleration ≤ 0.
//   - ErrNoSynchronization: every synchronization candidate lies inside
//     some axis's inoperative interval.
//   - ErrExecutionTimeTooBig: the computed synchronization time exceeds 1e10.
//   - ErrPhaseSyncNotPossible: phase synchronization was required but the
//     input direction vectors are not collinear.
package rml
