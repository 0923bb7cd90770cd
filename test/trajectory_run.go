package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"trajgen/dxl"
	"trajgen/position"
	"trajgen/rml"
)

func main() {
	// Command line flags
	portVal := flag.String("port", "COM4", "Serial port name")
	baudVal := flag.Int("baud", 1000000, "Baudrate")
	idVal := flag.Int("id", 1, "Motor ID")
	startPos := flag.Float64("start", 0, "Start position (0-4095)")
	targetPos := flag.Float64("target", 2048, "Target position (0-4095)")
	maxVel := flag.Float64("vel", 500, "Max velocity (units/sec)")
	accel := flag.Float64("accel", 2000, "Acceleration (units/sec^2)")
	updateRate := flag.Float64("rate", 100, "Update rate in Hz")
	loop := flag.Bool("loop", false, "Loop back and forth continuously")
	flag.Parse()

	fmt.Println("=== Single-Axis Trajectory Test ===")
	fmt.Printf("Port: %s, Baud: %d, Motor ID: %d\n", *portVal, *baudVal, *idVal)
	fmt.Printf("Start: %.0f -> Target: %.0f\n", *startPos, *targetPos)
	fmt.Printf("Max Velocity: %.0f, Acceleration: %.0f\n", *maxVel, *accel)
	fmt.Printf("Update Rate: %.0f Hz\n", *updateRate)
	fmt.Println()

	cycle := time.Duration(float64(time.Second) / *updateRate)
	preview := position.NewGenerator(1, cycle, nil)
	previewIn := position.Input{
		Current:         []rml.MotionState{{Position: *startPos}},
		MaxVelocity:     []float64{*maxVel},
		MaxAcceleration: []float64{*accel},
		Target:          []rml.Target{{Position: *targetPos}},
		Selected:        []bool{true},
	}
	var previewOut position.Output
	preview.NextState(previewIn, &previewOut)
	fmt.Printf("Trajectory calculated:\n")
	fmt.Printf("  Sync time: %.3f seconds\n", previewOut.SyncTime)
	fmt.Println()

	fmt.Println("Trajectory preview (first 10 ticks):")
	states := make([]rml.MotionState, 1)
	for i := 0; i < 10; i++ {
		t := float64(i) * cycle.Seconds()
		if t > previewOut.SyncTime {
			break
		}
		if err := preview.SampleAt(t, states); err != nil {
			break
		}
		fmt.Printf("  t=%.3fs: pos=%.1f, vel=%.1f\n", t, states[0].Position, states[0].Velocity)
	}
	fmt.Println()

	fmt.Print("Start motor control? (y/n): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "y" && confirm != "Y" {
		fmt.Println("Cancelled.")
		return
	}

	ctrl := dxl.NewController(*portVal, *baudVal, dxl.ModelXSeries)
	ctrl.SetMotorIDs([]uint8{uint8(*idVal)})

	if err := ctrl.Start(); err != nil {
		fmt.Printf("Error starting controller: %v\n", err)
		os.Exit(1)
	}
	defer ctrl.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	if err := ctrl.SetOperatingMode(uint8(*idVal), dxl.OpModePosition); err != nil {
		fmt.Printf("Failed to set Position Mode: %v\n", err)
		return
	}
	fmt.Println("Mode set to Position Control.")

	fmt.Printf("Moving to start position: %.0f\n", *startPos)
	ctrl.CommandChan <- []dxl.Command{{ID: uint8(*idVal), Value: uint32(*startPos)}}
	time.Sleep(2 * time.Second) // Wait for initial positioning

	executor, err := dxl.NewMultiAxisExecutor(ctrl, []uint8{uint8(*idVal)}, []float64{1}, cycle)
	if err != nil {
		fmt.Printf("Failed to create executor: %v\n", err)
		os.Exit(1)
	}

	running := true
	forward := true
	iteration := 0
	current := *startPos

	for running {
		iteration++
		var target float64
		if forward {
			target = *targetPos
			fmt.Printf("\n[Iteration %d] Forward: %.0f -> %.0f\n", iteration, current, target)
		} else {
			target = *startPos
			fmt.Printf("\n[Iteration %d] Backward: %.0f -> %.0f\n", iteration, current, target)
		}

		in := position.Input{
			Current:         []rml.MotionState{{Position: current}},
			MaxVelocity:     []float64{*maxVel},
			MaxAcceleration: []float64{*accel},
			Target:          []rml.Target{{Position: target}},
			Selected:        []bool{true},
		}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- executor.Run(ctx, in, *updateRate)
		}()

		startTime := time.Now()
	executeLoop:
		for {
			select {
			case <-sigChan:
				fmt.Println("\nInterrupted! Stopping...")
				cancel()
				<-done
				running = false
				break executeLoop

			case err := <-done:
				elapsed := time.Since(startTime)
				if err != nil && err != context.Canceled {
					fmt.Printf("Trajectory error: %v\n", err)
				}
				fmt.Printf("Trajectory complete! Elapsed: %.3f seconds\n", elapsed.Seconds())
				break executeLoop

			case fbs := <-ctrl.FeedbackChan:
				for _, fb := range fbs {
					if fb.ID == uint8(*idVal) && fb.Error == nil {
						elapsed := time.Since(startTime)
						fmt.Printf("\r  t=%.2fs: position=%d", elapsed.Seconds(), fb.Value)
					}
				}
			}
		}
		cancel()
		current = target

		if !running {
			break
		}

		if *loop {
			forward = !forward
			time.Sleep(500 * time.Millisecond) // Brief pause between iterations
		} else {
			running = false
		}
	}

	fmt.Println("\nTest complete.")
}
