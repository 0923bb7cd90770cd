package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"trajgen/dxl"
	"trajgen/position"
	"trajgen/rml"
)

// main drives a multi-axis position move across whatever motor IDs are
// given on the command line, reaching every target in one synchronized
// trajectory instead of driving each motor through its own profile.
func main() {
	portVal := flag.String("port", "COM3", "Serial port name")
	baudVal := flag.Int("baud", 1000000, "Baudrate")
	ids := flag.String("ids", "1", "Comma-separated motor IDs, e.g. 1,2,3")
	targets := flag.String("targets", "4095", "Comma-separated target positions, one per motor ID")
	maxVel := flag.Float64("vel", 500, "Max velocity (units/sec), shared across all axes")
	accel := flag.Float64("accel", 2000, "Acceleration (units/sec^2), shared across all axes")
	countsPerUnit := flag.Float64("counts-per-unit", 1, "Encoder counts per kernel position unit")
	rate := flag.Float64("rate", 100, "Control loop rate in Hz")
	sync := flag.String("sync", "time", "Synchronization mode: time, phase, or phase-only")
	flag.Parse()

	motorIDs, err := parseIDs(*ids)
	if err != nil {
		fmt.Printf("Invalid -ids: %v\n", err)
		os.Exit(1)
	}
	targetValues, err := parseFloats(*targets)
	if err != nil {
		fmt.Printf("Invalid -targets: %v\n", err)
		os.Exit(1)
	}
	if len(targetValues) != len(motorIDs) {
		fmt.Printf("-targets must give one value per motor ID (%d ids, %d targets)\n", len(motorIDs), len(targetValues))
		os.Exit(1)
	}

	syncMode, err := parseSyncMode(*sync)
	if err != nil {
		fmt.Printf("Invalid -sync: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Multi-Axis Trajectory Demo\n")
	fmt.Printf("Port: %s, Baud: %d, Motor IDs: %v\n", *portVal, *baudVal, motorIDs)
	fmt.Printf("Targets: %v, MaxVel: %.0f, Accel: %.0f, Rate: %.0f Hz, Sync: %s\n\n",
		targetValues, *maxVel, *accel, *rate, *sync)

	ctrl := dxl.NewController(*portVal, *baudVal, dxl.ModelXSeries)
	ctrl.SetMotorIDs(motorIDs)

	if err := ctrl.Start(); err != nil {
		fmt.Printf("Error starting controller: %v\n", err)
		os.Exit(1)
	}
	defer ctrl.Stop()

	for _, id := range motorIDs {
		if err := ctrl.SetOperatingMode(id, dxl.OpModePosition); err != nil {
			fmt.Printf("Failed to set Position Mode for motor %d: %v\n", id, err)
			os.Exit(1)
		}
	}

	countsPerAxis := make([]float64, len(motorIDs))
	for i := range countsPerAxis {
		countsPerAxis[i] = *countsPerUnit
	}
	cycle := time.Duration(float64(time.Second) / *rate)
	executor, err := dxl.NewMultiAxisExecutor(ctrl, motorIDs, countsPerAxis, cycle)
	if err != nil {
		fmt.Printf("Failed to create executor: %v\n", err)
		os.Exit(1)
	}

	current := make([]rml.MotionState, len(motorIDs))
	targetState := make([]rml.Target, len(motorIDs))
	maxVelAxis := make([]float64, len(motorIDs))
	maxAccelAxis := make([]float64, len(motorIDs))
	selected := make([]bool, len(motorIDs))
	for i := range motorIDs {
		targetState[i] = rml.Target{Position: targetValues[i]}
		maxVelAxis[i] = *maxVel
		maxAccelAxis[i] = *accel
		selected[i] = true
	}

	in := position.Input{
		Current:         current,
		MaxVelocity:     maxVelAxis,
		MaxAcceleration: maxAccelAxis,
		Target:          targetState,
		Selected:        selected,
		SyncMode:        syncMode,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Stopping...")
		cancel()
	}()

	go func() {
		for fbs := range ctrl.FeedbackChan {
			for _, fb := range fbs {
				if fb.Error == nil {
					fmt.Printf("  motor %d: position=%d\n", fb.ID, fb.Value)
				}
			}
		}
	}()

	if err := executor.Run(ctx, in, *rate); err != nil && err != context.Canceled {
		fmt.Printf("Run error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Trajectory complete.")
}

func parseIDs(s string) ([]uint8, error) {
	parts := strings.Split(s, ",")
	ids := make([]uint8, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("motor id %q: %w", p, err)
		}
		ids[i] = uint8(v)
	}
	return ids, nil
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", p, err)
		}
		vals[i] = v
	}
	return vals, nil
}

func parseSyncMode(s string) (rml.SyncMode, error) {
	switch s {
	case "time":
		return rml.SyncTimeOnly, nil
	case "phase":
		return rml.SyncPhaseIfPossible, nil
	case "phase-only":
		return rml.SyncPhaseOnly, nil
	default:
		return 0, fmt.Errorf("unknown sync mode %q (want time, phase, or phase-only)", s)
	}
}
