package dxl

import (
	"context"
	"fmt"
	"math"
	"time"

	"trajgen/position"
	"trajgen/rml"
)

// MultiAxisExecutor drives a set of motor IDs from a position.Generator:
// each tick it asks the kernel for the next synchronized motion state
// across every axis, maps the resulting positions through a per-axis
// encoder scale, and sends them down the Controller's existing
// CommandChan. It replaces the single-axis TrapezoidalProfile/
// TrajectoryExecutor this package used to carry: the teacher's own
// sync-write path (Controller.SetMotorIDs enabling useSyncReadWrite) is
// exercised unchanged, now fed by the multi-axis kernel instead of one
// hand-rolled trapezoid.
type MultiAxisExecutor struct {
	controller *Controller
	motorIDs   []uint8
	generator  *position.Generator

	// CountsPerUnit converts a kernel position unit (radians, mm,
	// whatever the caller's axis convention is) into raw encoder counts
	// for SyncWrite4Byte, one scale per axis in motorIDs order.
	CountsPerUnit []float64
}

// NewMultiAxisExecutor builds an executor for len(motorIDs) axes. It
// also calls controller.SetMotorIDs(motorIDs), enabling sync read/write
// whenever more than one motor is given.
func NewMultiAxisExecutor(controller *Controller, motorIDs []uint8, countsPerUnit []float64, cycle time.Duration) (*MultiAxisExecutor, error) {
	if len(motorIDs) == 0 {
		return nil, fmt.Errorf("dxl: at least one motor ID is required")
	}
	if len(countsPerUnit) != len(motorIDs) {
		return nil, fmt.Errorf("dxl: countsPerUnit length %d must match motorIDs length %d", len(countsPerUnit), len(motorIDs))
	}

	controller.SetMotorIDs(motorIDs)

	return &MultiAxisExecutor{
		controller:    controller,
		motorIDs:      motorIDs,
		generator:     position.NewGenerator(len(motorIDs), cycle, nil),
		CountsPerUnit: countsPerUnit,
	}, nil
}

// Tick runs one control cycle: it feeds in the kernel input, samples the
// next motion state for every axis, and writes the resulting goal
// positions to the motors via the controller's command channel.
func (e *MultiAxisExecutor) Tick(in position.Input) (position.Output, position.Status, error) {
	var out position.Output
	status := e.generator.NextState(in, &out)

	cmds := make([]Command, len(e.motorIDs))
	for i, id := range e.motorIDs {
		cmds[i] = Command{ID: id, Value: clampToUint32(out.NewState[i].Position * e.CountsPerUnit[i])}
	}

	select {
	case e.controller.CommandChan <- cmds:
	default:
		return out, status, fmt.Errorf("dxl: command channel full")
	}

	return out, status, nil
}

// clampToUint32 converts an encoder count to a register value, clamping
// negative counts to 0 and counts above math.MaxUint32 to math.MaxUint32.
func clampToUint32(v float64) uint32 {
	if v <= 0 {
		return 0
	}
	if v >= math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

// SyncTime returns the synchronization time of the most recently
// computed trajectory (spec.md §6's Output.SyncTime, as last observed).
func (e *MultiAxisExecutor) SyncTime(out position.Output) float64 {
	return out.SyncTime
}

// SampleAt evaluates every axis's currently held trajectory at absolute
// time t, without driving the motors or advancing the generator's tick.
func (e *MultiAxisExecutor) SampleAt(t float64) ([]rml.MotionState, error) {
	states := make([]rml.MotionState, len(e.motorIDs))
	if err := e.generator.SampleAt(t, states); err != nil {
		return nil, err
	}
	return states, nil
}

// Run drives the executor at rateHz until every selected axis reaches
// its final state or ctx is cancelled, replacing the teacher's
// ExecuteWithContext loop over a single TrapezoidalProfile with one over
// the synchronized multi-axis kernel.
func (e *MultiAxisExecutor) Run(ctx context.Context, in position.Input, rateHz float64) error {
	interval := time.Duration(int64(time.Second) / int64(rateHz))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_, status, err := e.Tick(in)
			if err != nil {
				return err
			}
			if status == position.StatusFinalStateReached {
				return nil
			}
		}
	}
}

// RunAsync runs Run in a background goroutine, mirroring the teacher's
// ExecuteAsync: the returned channel receives exactly one error (nil on
// a clean finish) when the run ends.
func (e *MultiAxisExecutor) RunAsync(ctx context.Context, in position.Input, rateHz float64) (<-chan error, error) {
	if rateHz <= 0 {
		return nil, fmt.Errorf("dxl: rateHz must be positive, got %v", rateHz)
	}
	errChan := make(chan error, 1)
	go func() {
		errChan <- e.Run(ctx, in, rateHz)
	}()
	return errChan, nil
}
