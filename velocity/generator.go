package velocity

import (
	"time"

	"go.uber.org/zap"

	"trajgen/internal/otglog"
	"trajgen/rml"
)

// Generator is the Type II velocity-based orchestrator.
type Generator struct {
	dof          int
	cycleSeconds float64

	traj    []rml.Trajectory
	elapsed float64

	prev    Input
	hasPrev bool

	log *zap.Logger
}

// NewGenerator pre-allocates every per-axis rml.Trajectory up front.
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

func valid(in Input, dof int) bool {
	if len(in.Current) != dof || len(in.MaxAcceleration) != dof ||
		len(in.TargetVelocity) != dof || len(in.Selected) != dof {
		return false
	}
	for i := 0; i < dof; i++ {
		if in.Selected[i] && in.MaxAcceleration[i] <= 0 {
			return false
		}
	}
	return true
}

func equal(a, b Input) bool {
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
		if !closeEnough(a.Current[i].Velocity, b.Current[i].Velocity) ||
			!closeEnough(a.MaxAcceleration[i], b.MaxAcceleration[i]) ||
			!closeEnough(a.TargetVelocity[i], b.TargetVelocity[i]) {
			return false
		}
	}
	return true
}

func closeEnough(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= rml.InputValueEpsilon
}

// NextState implements the velocity-only per-tick entry point.
func (g *Generator) NextState(in Input, out *Output) Status {
	if !valid(in, g.dof) {
		if cap(out.NewState) < g.dof {
			out.NewState = make([]rml.MotionState, g.dof)
		}
		for i := 0; i < g.dof && i < len(in.Current); i++ {
			out.NewState[i] = in.Current[i]
		}
		out.RecalculationPerformed = true
		return StatusErrorInvalidInput
	}

	if g.hasPrev && equal(g.prev, in) {
		g.elapsed += g.cycleSeconds
		g.sample(out)
		out.RecalculationPerformed = false
		return g.status()
	}

	for i := 0; i < g.dof; i++ {
		if !in.Selected[i] {
			g.traj[i].Reset()
			g.traj[i].Append(coastSegment(in.Current[i]))
			continue
		}
		traj, _ := rml.VelocityKernel(in.Current[i], in.TargetVelocity[i], in.MaxAcceleration[i])
		g.traj[i] = traj
	}

	g.prev = in
	g.hasPrev = true
	g.elapsed = 0
	g.sample(out)
	out.RecalculationPerformed = true
	return g.status()
}

func (g *Generator) status() Status {
	for i := 0; i < g.dof; i++ {
		if g.traj[i].SyncTime() > g.elapsed+rml.InputValueEpsilon {
			return StatusWorking
		}
	}
	return StatusFinalStateReached
}

func (g *Generator) sample(out *Output) {
	if cap(out.NewState) < g.dof {
		out.NewState = make([]rml.MotionState, g.dof)
	} else {
		out.NewState = out.NewState[:g.dof]
	}
	for i := 0; i < g.dof; i++ {
		out.NewState[i] = g.traj[i].Sample(g.elapsed)
	}
}

func coastSegment(state rml.MotionState) rml.Segment {
	var seg rml.Segment
	seg.Position.Set(0, state.Velocity, state.Position, 0)
	seg.Velocity.Set(0, 0, state.Velocity, 0)
	seg.Acceleration.Set(0, 0, 0, 0)
	seg.EndTime = rml.Infinity
	return seg
}

// SampleAt evaluates the most recently computed trajectories at absolute
// time t without advancing the generator's own tick cursor.
func (g *Generator) SampleAt(t float64, out []rml.MotionState) error {
	if t < 0 || cap(out) < g.dof {
		return rml.ErrOutOfRange
	}
	out = out[:g.dof]
	for i := 0; i < g.dof; i++ {
		out[i] = g.traj[i].Sample(t)
	}
	return nil
}
