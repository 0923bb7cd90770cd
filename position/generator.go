package position

import (
	"time"

	"go.uber.org/zap"

	"trajgen/internal/otglog"
	"trajgen/rml"
)

// Generator is the Type II position-based orchestrator: one instance per
// independently synchronized group of axes.
type Generator struct {
	dof          int
	cycleSeconds float64

	traj    []rml.Trajectory
	elapsed float64

	prev    Input
	hasPrev bool

	log *zap.Logger
}

// NewGenerator pre-allocates every per-axis rml.Trajectory up front, so a
// NextState tick that reuses the stored trajectories allocates nothing
// once out.NewState has room for every axis; a tick that recomputes
// allocates its own scratch slices (mirrors the teacher's NewController
// pattern of allocating all channels/state at construction time).
func NewGenerator(dof int, cycle time.Duration, log *zap.Logger) *Generator {
	if log == nil {
		log = otglog.Nop()
	}
	return &Generator{
		dof:          dof,
		cycleSeconds: cycle.Seconds(),
		traj:         make([]rml.Trajectory, dof),
		log:          log,
	}
}

func validInput(in Input, dof int) bool {
	if len(in.Current) != dof || len(in.MaxVelocity) != dof || len(in.MaxAcceleration) != dof {
		return false
	}
	if len(in.Target) != dof || len(in.Selected) != dof {
		return false
	}
	for i := 0; i < dof; i++ {
		if !in.Selected[i] {
			continue
		}
		if in.MaxVelocity[i] <= 0 || in.MaxAcceleration[i] <= 0 {
			return false
		}
	}
	return true
}

func inputsEqual(a, b Input) bool {
	if len(a.Current) != len(b.Current) {
		return false
	}
	for i := range a.Current {
		if a.Selected[i] != b.Selected[i] {
			return false
		}
		if !a.Selected[i] {
			continue
		}
		if !closeEnough(a.Current[i].Position, b.Current[i].Position) ||
			!closeEnough(a.Current[i].Velocity, b.Current[i].Velocity) ||
			!closeEnough(a.MaxVelocity[i], b.MaxVelocity[i]) ||
			!closeEnough(a.MaxAcceleration[i], b.MaxAcceleration[i]) ||
			!closeEnough(a.Target[i].Position, b.Target[i].Position) ||
			!closeEnough(a.Target[i].Velocity, b.Target[i].Velocity) ||
			!closeEnough(altTargetVelOf(a, i), altTargetVelOf(b, i)) {
			return false
		}
	}
	return a.SyncMode == b.SyncMode && closeEnough(a.MinSyncTime, b.MinSyncTime) &&
		a.Options.KeepCurrentVelocityInCaseOfFallbackStrategy == b.Options.KeepCurrentVelocityInCaseOfFallbackStrategy
}

func altTargetVelOf(in Input, idx int) float64 {
	if idx < len(in.AltTargetVel) {
		return in.AltTargetVel[idx]
	}
	return 0
}

func closeEnough(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= rml.InputValueEpsilon
}

// NextState implements spec.md §6's per-tick entry point. NewState,
// SyncTime and RecalculationPerformed are written on every call,
// regardless of Status; see Output for the fields written only on some
// ticks.
func (g *Generator) NextState(in Input, out *Output) Status {
	if !validInput(in, g.dof) {
		g.coastFallback(in, out)
		return StatusErrorInvalidInput
	}

	recompute := !g.hasPrev || !inputsEqual(g.prev, in)
	if !recompute && in.FinalState == RecomputeTrajectory && g.elapsed >= g.maxSyncTime()-rml.InputValueEpsilon {
		recompute = true
	}

	if !recompute {
		g.elapsed += g.cycleSeconds
		g.sample(out)
		out.RecalculationPerformed = false
		return g.status()
	}

	status := g.recompute(in, out)
	g.prev = in
	g.hasPrev = true
	g.elapsed = g.cycleSeconds
	out.RecalculationPerformed = true
	g.sampleInto(out)
	return status
}

func (g *Generator) maxSyncTime() float64 {
	max := 0.0
	for i := 0; i < g.dof; i++ {
		if t := g.traj[i].SyncTime(); t > max {
			max = t
		}
	}
	return max
}

func (g *Generator) status() Status {
	if g.elapsed >= g.maxSyncTime()-rml.InputValueEpsilon {
		return StatusFinalStateReached
	}
	return StatusWorking
}

func (g *Generator) sample(out *Output) {
	g.ensureOutput(out)
	for i := 0; i < g.dof; i++ {
		out.NewState[i] = g.traj[i].Sample(g.elapsed)
	}
	out.SyncTime = g.maxSyncTime()
}

func (g *Generator) sampleInto(out *Output) {
	g.sample(out)
}

func (g *Generator) ensureOutput(out *Output) {
	if cap(out.NewState) < g.dof {
		out.NewState = make([]rml.MotionState, g.dof)
	} else {
		out.NewState = out.NewState[:g.dof]
	}
}

// coastFallback implements Safety Layer 1: every selected axis freezes
// at its current velocity (zero acceleration), used when the input
// itself is invalid (e.g. a non-positive limit).
func (g *Generator) coastFallback(in Input, out *Output) {
	g.ensureOutput(out)
	for i := 0; i < g.dof; i++ {
		if i < len(in.Current) {
			s := in.Current[i]
			out.NewState[i] = rml.MotionState{
				Position: s.Position + s.Velocity*g.cycleSeconds,
				Velocity: s.Velocity,
			}
		}
	}
	out.SyncTime = 0
	out.RecalculationPerformed = true
	out.PhaseSynchronized = false
}

// recompute runs the full kernel (Layer 3), degrading to Layer 2 per
// axis when synchronization or Step 2 re-parameterization fails.
func (g *Generator) recompute(in Input, out *Output) Status {
	axes := make([]rml.AxisTimes, 0, g.dof)
	selectedIdx := make([]int, 0, g.dof)
	for i := 0; i < g.dof; i++ {
		if !in.Selected[i] {
			g.traj[i].Reset()
			g.traj[i].Append(coastSegment(in.Current[i]))
			continue
		}
		at := rml.AxisStep1(i, in.Current[i].Position, in.Current[i].Velocity,
			in.Target[i].Position, in.Target[i].Velocity, in.MaxVelocity[i], in.MaxAcceleration[i])
		axes = append(axes, at)
		selectedIdx = append(selectedIdx, i)
	}

	if len(selectedIdx) == 0 {
		out.PhaseSynchronized = false
		return StatusFinalStateReached
	}

	tSync, err := rml.Synchronize(axes, in.MinSyncTime)
	if err != nil {
		g.log.Warn("synchronization failed, degrading to velocity kernel", zap.Error(err))
		g.velocityFallback(in, selectedIdx)
		out.PhaseSynchronized = false
		if err == rml.ErrExecutionTimeTooBig {
			return StatusErrorExecutionTimeTooBig
		}
		return StatusErrorSynchronizationFailure
	}

	phaseSynced := false
	if in.SyncMode == rml.SyncPhaseIfPossible || in.SyncMode == rml.SyncPhaseOnly {
		dp := make([]float64, len(selectedIdx))
		v := make([]float64, len(selectedIdx))
		vt := make([]float64, len(selectedIdx))
		sel := make([]bool, len(selectedIdx))
		for k, idx := range selectedIdx {
			dp[k] = in.Target[idx].Position - in.Current[idx].Position
			v[k] = in.Current[idx].Velocity
			vt[k] = in.Target[idx].Velocity
			sel[k] = true
		}
		if ps, ok := rml.DetectPhaseSync(dp, v, vt, sel); ok {
			driverIdx := selectedIdx[ps.Driver]
			traj, err := rml.Step2(in.Current[driverIdx].Position, in.Current[driverIdx].Velocity,
				in.Target[driverIdx].Position, in.Target[driverIdx].Velocity,
				in.MaxVelocity[driverIdx], in.MaxAcceleration[driverIdx], tSync)
			if err == nil {
				g.traj[driverIdx] = traj
				others := make([]*rml.Trajectory, len(selectedIdx))
				for k, idx := range selectedIdx {
					if idx != driverIdx {
						others[k] = &g.traj[idx]
					}
				}
				rml.GeneratePhaseSyncTrajectory(ps, &g.traj[driverIdx], others)
				// Scaling also scales the driver's absolute position; shift
				// each other axis so it starts from its own current position.
				for k, idx := range selectedIdx {
					if idx == driverIdx {
						continue
					}
					offset := in.Current[idx].Position - ps.Scale[k]*in.Current[driverIdx].Position
					segs := g.traj[idx].Segments()
					for s := range segs {
						segs[s].Position.A0 += offset
					}
				}
				phaseSynced = true
			}
		} else if in.SyncMode == rml.SyncPhaseOnly {
			g.velocityFallback(in, selectedIdx)
			out.PhaseSynchronized = false
			return StatusErrorPhaseSyncNotPossible
		}
	}

	if !phaseSynced {
		for _, idx := range selectedIdx {
			traj, err := rml.Step2(in.Current[idx].Position, in.Current[idx].Velocity,
				in.Target[idx].Position, in.Target[idx].Velocity,
				in.MaxVelocity[idx], in.MaxAcceleration[idx], tSync)
			if err != nil {
				g.log.Warn("step2 infeasible for axis, degrading to velocity kernel", zap.Int("axis", idx), zap.Error(err))
				traj, _ = rml.VelocityKernel(in.Current[idx], fallbackTargetVelocity(in, idx), in.MaxAcceleration[idx])
			}
			g.traj[idx] = traj
		}
	}

	if in.Options.EnableExtrema {
		out.Extrema = make([][]rml.Extremum, g.dof)
		for _, idx := range selectedIdx {
			out.Extrema[idx] = rml.ExtremaOf(&g.traj[idx])
		}
	} else {
		out.Extrema = nil
	}

	out.PhaseSynchronized = phaseSynced
	return StatusWorking
}

// velocityFallback implements Safety Layer 2 for every selected axis:
// the closed-form velocity kernel, ignoring the position target. Per
// spec.md §4.8, the fallback target velocity is 0 by default, the
// axis's current velocity when
// Options.KeepCurrentVelocityInCaseOfFallbackStrategy is set, or the
// caller-supplied Input.AltTargetVel when present.
func (g *Generator) velocityFallback(in Input, selectedIdx []int) {
	for _, idx := range selectedIdx {
		traj, _ := rml.VelocityKernel(in.Current[idx], fallbackTargetVelocity(in, idx), in.MaxAcceleration[idx])
		g.traj[idx] = traj
	}
}

// fallbackTargetVelocity resolves Safety Layer 2's target velocity for
// one axis: 0 by default, the axis's current velocity when
// Options.KeepCurrentVelocityInCaseOfFallbackStrategy is set, or
// Input.AltTargetVel[idx] when the caller supplied one.
func fallbackTargetVelocity(in Input, idx int) float64 {
	vTarget := 0.0
	if in.Options.KeepCurrentVelocityInCaseOfFallbackStrategy {
		vTarget = in.Current[idx].Velocity
	}
	if idx < len(in.AltTargetVel) {
		vTarget = in.AltTargetVel[idx]
	}
	return vTarget
}

func coastSegment(state rml.MotionState) rml.Segment {
	var seg rml.Segment
	seg.Position.Set(0, state.Velocity, state.Position, 0)
	seg.Velocity.Set(0, 0, state.Velocity, 0)
	seg.Acceleration.Set(0, 0, 0, 0)
	seg.EndTime = rml.Infinity
	return seg
}

// SampleAt implements spec.md §6's "sampling at an arbitrary time":
// evaluates the most recently computed trajectories at absolute time t
// without advancing the generator's own tick cursor.
func (g *Generator) SampleAt(t float64, out []rml.MotionState) error {
	if t < 0 {
		return rml.ErrOutOfRange
	}
	if cap(out) < g.dof {
		return rml.ErrOutOfRange
	}
	out = out[:g.dof]
	for i := 0; i < g.dof; i++ {
		out[i] = g.traj[i].Sample(t)
	}
	return nil
}
