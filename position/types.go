package position

import "trajgen/rml"

// FinalStatePolicy selects what Generator does once an axis has reached
// its target state.
type FinalStatePolicy int

const (
	// KeepTargetVelocity leaves the axis coasting at its target velocity
	// forever (the default): the last trajectory segment is an indefinite
	// coast phase, per rml.Trajectory's own convention.
	KeepTargetVelocity FinalStatePolicy = iota
	// RecomputeTrajectory forces a fresh recomputation on the tick after
	// the final state is reached, even if the caller's Input did not
	// change — useful when external state (e.g. a new target fed in by a
	// higher-level planner) is expected imminently.
	RecomputeTrajectory
)

// Options toggles optional, non-default-path behavior.
type Options struct {
	// EnableExtrema requests Output.Extrema be populated from the
	// freshly computed trajectory. Ignored on cached-trajectory ticks
	// (Extrema is only ever recomputed alongside the trajectory itself).
	EnableExtrema bool
	// KeepCurrentVelocityInCaseOfFallbackStrategy changes Safety Layer
	// 2's target velocity from the default of 0 to the axis's current
	// velocity (i.e. "keep coasting at whatever speed you had"), for
	// every selected axis that does not have an AltTargetVel entry.
	KeepCurrentVelocityInCaseOfFallbackStrategy bool
}

// Input is one control cycle's complete request to the generator.
type Input struct {
	Current         []rml.MotionState
	MaxVelocity     []float64
	MaxAcceleration []float64
	Target          []rml.Target
	Selected        []bool
	// MinSyncTime is the caller-supplied floor on the synchronization
	// time; 0 means unset.
	MinSyncTime float64
	// AltTargetVel is the caller-supplied fallback target velocity used
	// by Safety Layer 2 in place of the 0/current-velocity default; nil
	// means unset for every axis.
	AltTargetVel []float64
	SyncMode     rml.SyncMode
	FinalState   FinalStatePolicy
	Options      Options
}

// Status mirrors the original Reflexxes return-code convention: positive
// is "still moving", zero is "done", negative is an error condition that
// the orchestrator has already degraded gracefully from.
type Status int

const (
	StatusWorking                     Status = 1
	StatusFinalStateReached           Status = 0
	StatusErrorInvalidInput           Status = -100
	StatusErrorExecutionTimeTooBig    Status = -101
	StatusErrorSynchronizationFailure Status = -102
	StatusErrorPhaseSyncNotPossible   Status = -103
)

func (s Status) String() string {
	switch s {
	case StatusWorking:
		return "working"
	case StatusFinalStateReached:
		return "final_state_reached"
	case StatusErrorInvalidInput:
		return "error_invalid_input"
	case StatusErrorExecutionTimeTooBig:
		return "error_execution_time_too_big"
	case StatusErrorSynchronizationFailure:
		return "error_synchronization_failure"
	case StatusErrorPhaseSyncNotPossible:
		return "error_phase_sync_not_possible"
	default:
		return "unknown"
	}
}

// Output is the result of one control cycle. NewState, SyncTime and
// RecalculationPerformed are written on every call regardless of Status.
// PhaseSynchronized is written only on ticks that recompute or take the
// Layer 1 fallback, and Extrema only on ticks whose recomputation reaches
// Step 2; on other ticks both keep whatever out already held.
type Output struct {
	NewState               []rml.MotionState
	SyncTime               float64
	RecalculationPerformed bool
	PhaseSynchronized      bool
	Extrema                [][]rml.Extremum // per axis, only when Options.EnableExtrema
}
