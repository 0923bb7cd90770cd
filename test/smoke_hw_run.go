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
	portVal := flag.String("port", "COM4", "Serial port name")
	baudVal := flag.Int("baud", 1000000, "Baudrate")
	idVal := flag.Int("id", 1, "Motor ID")
	flag.Parse()

	motorID := uint8(*idVal)
	passed := 0
	failed := 0

	pass := func(name string) {
		passed++
		fmt.Printf("  [PASS] %s\n", name)
	}
	fail := func(name string, err interface{}) {
		failed++
		fmt.Printf("  [FAIL] %s: %v\n", name, err)
	}

	fmt.Println("=== Hardware Smoke Test ===")
	fmt.Printf("Port: %s, Baud: %d, Motor ID: %d\n\n", *portVal, *baudVal, motorID)

	// Capture interrupt
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	// --- Test 1: Controller Start (pings motor ID 1) ---
	fmt.Println("[Test 1] Controller Start - ping motor ID 1")
	ctrl := dxl.NewController(*portVal, *baudVal, dxl.ModelXSeries)
	ctrl.SetMotorIDs([]uint8{motorID})

	if err := ctrl.Start(); err != nil {
		fail("Controller Start", err)
		fmt.Println("\nCannot continue without controller. Exiting.")
		os.Exit(1)
	}
	pass("Controller Start")
	defer ctrl.Stop()

	// --- Test 2: SetOperatingMode with read-back verification ---
	fmt.Println("[Test 2] SetOperatingMode - position mode with verification")
	if err := ctrl.SetOperatingMode(motorID, dxl.OpModePosition); err != nil {
		fail("SetOperatingMode(Position)", err)
	} else {
		pass("SetOperatingMode(Position)")
	}

	// --- Test 3: Basic command/feedback loop ---
	fmt.Println("[Test 3] Command/Feedback round-trip")
	testPos := uint32(2048)
	ctrl.CommandChan <- []dxl.Command{{ID: motorID, Value: testPos}}

	feedbackReceived := false
	timeout := time.After(2 * time.Second)
feedbackLoop:
	for {
		select {
		case fbs := <-ctrl.FeedbackChan:
			for _, fb := range fbs {
				if fb.ID == motorID && fb.Error == nil {
					fmt.Printf("    Position feedback: %d\n", fb.Value)
					feedbackReceived = true
					break feedbackLoop
				}
			}
		case <-timeout:
			break feedbackLoop
		}
	}
	if feedbackReceived {
		pass("Command/Feedback round-trip")
	} else {
		fail("Command/Feedback round-trip", "no feedback received within 2s")
	}

	// --- Test 4: Trajectory execution with context cancel ---
	fmt.Println("[Test 4] Trajectory execution (short move)")
	executor, err := dxl.NewMultiAxisExecutor(ctrl, []uint8{motorID}, []float64{1}, 20*time.Millisecond)
	if err != nil {
		fail("Trajectory executor creation", err)
	} else {
		in := position.Input{
			Current:         []rml.MotionState{{Position: 2048}},
			MaxVelocity:     []float64{300},
			MaxAcceleration: []float64{1000},
			Target:          []rml.Target{{Position: 2500}},
			Selected:        []bool{true},
		}
		execErr := executor.Run(context.Background(), in, 50)
		if execErr != nil {
			fail("Trajectory Run", execErr)
		} else {
			pass("Trajectory Run")
		}
	}

	// Wait for motor to settle
	time.Sleep(500 * time.Millisecond)

	// --- Test 5: Trajectory return (reverse) ---
	fmt.Println("[Test 5] Trajectory return (reverse move)")
	if executor == nil {
		fail("Reverse trajectory Run", "no executor available")
	} else {
		inBack := position.Input{
			Current:         []rml.MotionState{{Position: 2500}},
			MaxVelocity:     []float64{300},
			MaxAcceleration: []float64{1000},
			Target:          []rml.Target{{Position: 2048}},
			Selected:        []bool{true},
		}
		execErr := executor.Run(context.Background(), inBack, 50)
		if execErr != nil {
			fail("Reverse trajectory Run", execErr)
		} else {
			pass("Reverse trajectory Run")
		}
	}

	// --- Test 6: Velocity mode switch ---
	fmt.Println("[Test 6] SetOperatingMode - velocity mode switch")
	if err := ctrl.SetOperatingMode(motorID, dxl.OpModeVelocity); err != nil {
		fail("SetOperatingMode(Velocity)", err)
	} else {
		pass("SetOperatingMode(Velocity)")
	}

	// Switch back to position for safety
	time.Sleep(100 * time.Millisecond)
	ctrl.SetOperatingMode(motorID, dxl.OpModePosition)

	// --- Summary ---
	fmt.Printf("\n=== Results: %d passed, %d failed ===\n", passed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
