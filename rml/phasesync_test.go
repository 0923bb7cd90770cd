package rml

import (
	"math"
	"testing"
)

func TestDetectPhaseSyncCollinearMotion(t *testing.T) {
	// Two axes moving along the same direction, axis 1 at twice the
	// distance/velocity of axis 0: collinear, phase sync should hold.
	dp := []float64{10, 20}
	v := []float64{1, 2}
	vt := []float64{0, 0}
	selected := []bool{true, true}

	ps, ok := DetectPhaseSync(dp, v, vt, selected)
	if !ok {
		t.Fatal("expected phase synchronization to be possible")
	}
	if ps.Driver != 1 {
		t.Errorf("Driver = %d, want 1 (largest reference component)", ps.Driver)
	}
	if math.Abs(ps.Scale[0]-0.5) > 1e-6 {
		t.Errorf("Scale[0] = %v, want ~0.5", ps.Scale[0])
	}
	if math.Abs(ps.Scale[1]-1.0) > 1e-6 {
		t.Errorf("Scale[1] = %v, want 1.0", ps.Scale[1])
	}
}

func TestDetectPhaseSyncNonCollinearMotion(t *testing.T) {
	dp := []float64{10, 5}
	v := []float64{1, 7}
	vt := []float64{0, 0}
	selected := []bool{true, true}

	_, ok := DetectPhaseSync(dp, v, vt, selected)
	if ok {
		t.Error("expected phase synchronization to be rejected for non-collinear motion")
	}
}

func TestDetectPhaseSyncRequiresTwoSelectedAxes(t *testing.T) {
	dp := []float64{10, 20, 30}
	v := []float64{1, 2, 3}
	vt := []float64{0, 0, 0}
	selected := []bool{true, false, false}

	_, ok := DetectPhaseSync(dp, v, vt, selected)
	if ok {
		t.Error("expected phase synchronization to be impossible with a single selected axis")
	}
}

func TestGeneratePhaseSyncTrajectoryScalesSegments(t *testing.T) {
	var driver Trajectory
	driver.Append(Segment{
		Position:     Polynomial{A2: 1, A1: 2, A0: 3},
		Velocity:     Polynomial{A1: 2, A0: 4},
		Acceleration: Polynomial{A0: 2},
		EndTime:      1.0,
	})

	ps := &PhaseSync{Driver: 0, Reference: []float64{1, 2}, Scale: []float64{1, 2}}

	var follower Trajectory
	out := []*Trajectory{nil, &follower}
	GeneratePhaseSyncTrajectory(ps, &driver, out)

	got := follower.Segments()
	if len(got) != 1 {
		t.Fatalf("len(Segments()) = %d, want 1", len(got))
	}
	if got[0].Position.A2 != 2 || got[0].Position.A1 != 4 || got[0].Position.A0 != 6 {
		t.Errorf("scaled position polynomial = %+v, want A2=2 A1=4 A0=6", got[0].Position)
	}
	if got[0].EndTime != 1.0 {
		t.Errorf("EndTime = %v, want 1.0 (shared across phase-synchronized axes)", got[0].EndTime)
	}
}
