package dxl

import (
	"math"
	"testing"
	"time"

	"trajgen/position"
	"trajgen/rml"
)

func TestNewMultiAxisExecutor(t *testing.T) {
	tests := []struct {
		name          string
		motorIDs      []uint8
		countsPerUnit []float64
		wantErr       bool
	}{
		{
			name:          "single motor",
			motorIDs:      []uint8{1},
			countsPerUnit: []float64{4096 / (2 * math.Pi)},
			wantErr:       false,
		},
		{
			name:          "multiple motors",
			motorIDs:      []uint8{1, 2, 3},
			countsPerUnit: []float64{651, 651, 651},
			wantErr:       false,
		},
		{
			name:          "no motors",
			motorIDs:      []uint8{},
			countsPerUnit: []float64{},
			wantErr:       true,
		},
		{
			name:          "mismatched scale length",
			motorIDs:      []uint8{1, 2},
			countsPerUnit: []float64{651},
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController("/dev/null", 1000000, ModelXSeries)
			exec, err := NewMultiAxisExecutor(c, tt.motorIDs, tt.countsPerUnit, 10*time.Millisecond)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewMultiAxisExecutor() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMultiAxisExecutor() error = %v", err)
			}
			if exec == nil {
				t.Fatal("NewMultiAxisExecutor() returned nil executor")
			}
		})
	}
}

func TestNewMultiAxisExecutorEnablesSyncModeForMultipleMotors(t *testing.T) {
	c := NewController("/dev/null", 1000000, ModelXSeries)
	if _, err := NewMultiAxisExecutor(c, []uint8{1, 2}, []float64{1, 1}, 10*time.Millisecond); err != nil {
		t.Fatalf("NewMultiAxisExecutor() error = %v", err)
	}
	if !c.isSyncMode() {
		t.Error("isSyncMode() = false, want true after registering two motor IDs")
	}
}

func TestMultiAxisExecutorTickSendsScaledCommand(t *testing.T) {
	c := NewController("/dev/null", 1000000, ModelXSeries)
	exec, err := NewMultiAxisExecutor(c, []uint8{5}, []float64{100}, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewMultiAxisExecutor() error = %v", err)
	}

	in := position.Input{
		Current:         []rml.MotionState{{Position: 0, Velocity: 0}},
		MaxVelocity:     []float64{10},
		MaxAcceleration: []float64{10},
		Target:          []rml.Target{{Position: 5, Velocity: 0}},
		Selected:        []bool{true},
	}

	out, status, err := exec.Tick(in)
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if status != position.StatusWorking {
		t.Fatalf("Tick() status = %v, want StatusWorking", status)
	}

	select {
	case cmds := <-c.CommandChan:
		if len(cmds) != 1 {
			t.Fatalf("len(cmds) = %d, want 1", len(cmds))
		}
		if cmds[0].ID != 5 {
			t.Errorf("cmds[0].ID = %d, want 5", cmds[0].ID)
		}
	default:
		t.Fatal("no command was sent on CommandChan")
	}

	if out.SyncTime <= 0 {
		t.Errorf("out.SyncTime = %v, want > 0", out.SyncTime)
	}
}

func TestMultiAxisExecutorTickRejectsWhenChannelFull(t *testing.T) {
	c := NewController("/dev/null", 1000000, ModelXSeries)
	exec, err := NewMultiAxisExecutor(c, []uint8{1}, []float64{1}, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewMultiAxisExecutor() error = %v", err)
	}
	c.CommandChan <- []Command{{ID: 1, Value: 0}}

	in := position.Input{
		Current:         []rml.MotionState{{Position: 0, Velocity: 0}},
		MaxVelocity:     []float64{10},
		MaxAcceleration: []float64{10},
		Target:          []rml.Target{{Position: 5, Velocity: 0}},
		Selected:        []bool{true},
	}

	if _, _, err := exec.Tick(in); err == nil {
		t.Fatal("Tick() error = nil, want error for a full command channel")
	}
}

func TestMultiAxisExecutorSampleAtMirrorsLastTick(t *testing.T) {
	c := NewController("/dev/null", 1000000, ModelXSeries)
	exec, err := NewMultiAxisExecutor(c, []uint8{1}, []float64{1}, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewMultiAxisExecutor() error = %v", err)
	}

	in := position.Input{
		Current:         []rml.MotionState{{Position: 0, Velocity: 0}},
		MaxVelocity:     []float64{10},
		MaxAcceleration: []float64{10},
		Target:          []rml.Target{{Position: 100, Velocity: 0}},
		Selected:        []bool{true},
	}
	out, _, err := exec.Tick(in)
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}

	states, err := exec.SampleAt(out.SyncTime)
	if err != nil {
		t.Fatalf("SampleAt() error = %v", err)
	}
	if math.Abs(states[0].Position-100) > 1e-6 {
		t.Errorf("SampleAt(syncTime).Position = %v, want 100", states[0].Position)
	}
}

func BenchmarkMultiAxisExecutorTick(b *testing.B) {
	c := NewController("/dev/null", 1000000, ModelXSeries)
	exec, err := NewMultiAxisExecutor(c, []uint8{1, 2, 3}, []float64{651, 651, 651}, 10*time.Millisecond)
	if err != nil {
		b.Fatalf("NewMultiAxisExecutor() error = %v", err)
	}
	in := position.Input{
		Current: []rml.MotionState{
			{Position: 0, Velocity: 0},
			{Position: 0, Velocity: 0},
			{Position: 0, Velocity: 0},
		},
		MaxVelocity:     []float64{10, 10, 10},
		MaxAcceleration: []float64{10, 10, 10},
		Target: []rml.Target{
			{Position: 5, Velocity: 0},
			{Position: 3, Velocity: 0},
			{Position: 8, Velocity: 0},
		},
		Selected: []bool{true, true, true},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		exec.Tick(in)
		<-c.CommandChan
	}
}
