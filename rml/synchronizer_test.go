package rml

import (
	"errors"
	"math"
	"testing"
)

func TestSynchronizeSingleAxis(t *testing.T) {
	axes := []AxisTimes{{Axis: 0, TMin: 3.5, TBegin: Infinity, TEnd: Infinity}}

	got, err := Synchronize(axes, 0)
	if err != nil {
		t.Fatalf("Synchronize() error = %v", err)
	}
	if math.Abs(got-3.5) > 1e-9 {
		t.Errorf("Synchronize() = %v, want 3.5", got)
	}
}

func TestSynchronizePicksLargestTMin(t *testing.T) {
	axes := []AxisTimes{
		{Axis: 0, TMin: 1.0, TBegin: Infinity, TEnd: Infinity},
		{Axis: 1, TMin: 4.2, TBegin: Infinity, TEnd: Infinity},
		{Axis: 2, TMin: 2.7, TBegin: Infinity, TEnd: Infinity},
	}

	got, err := Synchronize(axes, 0)
	if err != nil {
		t.Fatalf("Synchronize() error = %v", err)
	}
	if math.Abs(got-4.2) > 1e-9 {
		t.Errorf("Synchronize() = %v, want 4.2", got)
	}
}

func TestSynchronizeSkipsInoperativeInterval(t *testing.T) {
	// axis 2's own tMin (the largest among all three, so the scan starts
	// there) happens to land inside axis 1's inoperative interval; the
	// synchronizer must keep scanning past it to the interval's tEnd.
	axes := []AxisTimes{
		{Axis: 0, TMin: 1.0, TBegin: Infinity, TEnd: Infinity},
		{Axis: 1, TMin: 2.0, HasBlocked: true, TBegin: 2.5, TEnd: 5.0},
		{Axis: 2, TMin: 3.0, TBegin: Infinity, TEnd: Infinity},
	}

	got, err := Synchronize(axes, 0)
	if err != nil {
		t.Fatalf("Synchronize() error = %v", err)
	}
	if got < 5.0-1e-9 {
		t.Errorf("Synchronize() = %v, want a time at or beyond the blocked interval's end (5.0)", got)
	}
}

func TestSynchronizeHonorsMinimumSyncTime(t *testing.T) {
	axes := []AxisTimes{{Axis: 0, TMin: 1.0, TBegin: Infinity, TEnd: Infinity}}

	got, err := Synchronize(axes, 10.0)
	if err != nil {
		t.Fatalf("Synchronize() error = %v", err)
	}
	if math.Abs(got-10.0) > 1e-9 {
		t.Errorf("Synchronize() = %v, want 10.0 (the caller-supplied minimum)", got)
	}
}

func TestSynchronizeExecutionTimeTooBig(t *testing.T) {
	axes := []AxisTimes{{Axis: 0, TMin: MaxExecutionTime + 1, TBegin: Infinity, TEnd: Infinity}}

	_, err := Synchronize(axes, 0)
	if !errors.Is(err, ErrExecutionTimeTooBig) {
		t.Errorf("Synchronize() error = %v, want ErrExecutionTimeTooBig", err)
	}
}

func TestSynchronizeNoValidCandidate(t *testing.T) {
	// No axes and no caller-supplied minimum leaves no candidate to scan at
	// all: every inoperative interval's own tEnd is itself unblocked (the
	// interval with the largest tEnd can never be covered by another, since
	// that other interval's tEnd would then be larger still), so a blocked
	// interval alone can never exhaust every candidate - only the absence
	// of any candidate can.
	_, err := Synchronize(nil, 0)
	if !errors.Is(err, ErrNoSynchronization) {
		t.Errorf("Synchronize() error = %v, want ErrNoSynchronization", err)
	}
}
