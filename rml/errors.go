package rml

import "errors"

// ErrInvalidLimits indicates a selected axis has a non-positive MaxVelocity
// or MaxAcceleration. Callers degrade to Safety Layer 1 (coasting).
var ErrInvalidLimits = errors.New("rml: max velocity and max acceleration must be positive on every selected axis")

// ErrNoSynchronization indicates every candidate synchronization time lies
// inside some axis's inoperative interval. Callers degrade to Safety Layer 2
// (the velocity-based kernel).
var ErrNoSynchronization = errors.New("rml: no synchronization time outside all inoperative intervals")

// ErrExecutionTimeTooBig indicates the computed synchronization time exceeds
// MaxExecutionTime.
var ErrExecutionTimeTooBig = errors.New("rml: synchronization time exceeds MaxExecutionTime")

// ErrPhaseSyncNotPossible indicates phase synchronization was requested
// (SyncPhaseOnly) but the position/velocity/target-velocity direction
// vectors are not collinear within tolerance.
var ErrPhaseSyncNotPossible = errors.New("rml: phase synchronization is not possible for the given input vectors")

// ErrOutOfRange indicates SampleAt was called with a negative time or with
// an output slice too short to hold every axis. Times past t_sync are not
// rejected; they sample the final coast segment.
var ErrOutOfRange = errors.New("rml: sample time outside the stored trajectory's domain")

// ErrStep2Infeasible indicates Step 2 could not re-parameterize an axis's
// profile to land on the target state at exactly t_sync. Callers degrade
// to Safety Layer 2 (the velocity-based kernel).
var ErrStep2Infeasible = errors.New("rml: no profile reparameterization lands on the target state at the synchronization time")
