package rml

import (
	"math"
	"testing"
)

func TestExtremaOfFindsVelocityZeroCrossing(t *testing.T) {
	var traj Trajectory
	// Decelerate from v=10 to v=-10 over 2s at -10 m/s^2, crossing zero at t=1.
	traj.Append(accelSegment(0, 10, -10, 0, 2))
	traj.Append(accelSegment(traj.Last().Position.Evaluate(2), -10, 0, 2, 0))

	extrema := ExtremaOf(&traj)
	if len(extrema) != 1 {
		t.Fatalf("len(extrema) = %d, want 1", len(extrema))
	}
	if math.Abs(extrema[0].Time-1.0) > 1e-6 {
		t.Errorf("extremum time = %v, want 1.0", extrema[0].Time)
	}
}

func TestExtremaOfEmptyForConstantVelocity(t *testing.T) {
	var traj Trajectory
	traj.Append(accelSegment(0, 5, 0, 0, 3))

	extrema := ExtremaOf(&traj)
	if len(extrema) != 0 {
		t.Errorf("len(extrema) = %d, want 0 for constant-velocity segment", len(extrema))
	}
}
