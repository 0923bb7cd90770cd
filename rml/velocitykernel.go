package rml

// VelocityKernel computes the closed-form, single-phase trajectory that
// brings one axis from its current state to vTarget at the signed rate
// implied by aMax (spec.md §4.7). It never fails for any finite aMax > 0:
// there is always exactly one feasible profile, an acceleration ramp
// followed by an indefinite coast at vTarget, which is what makes this
// kernel suitable as Safety Layer 2 beneath the full position kernel and
// as the standalone engine behind the velocity-only Type II mode.
//
// Returns the built trajectory and its execution time (the ramp's
// duration; the coast phase that follows has no defined end).
func VelocityKernel(state MotionState, vTarget, aMax float64) (Trajectory, float64) {
	var traj Trajectory

	accel := aMax
	if vTarget < state.Velocity {
		accel = -aMax
	}

	dur := 0.0
	if accel != 0 {
		dur = (vTarget - state.Velocity) / accel
	}
	if dur < 0 {
		dur = 0
	}

	p, v, t := state.Position, state.Velocity, 0.0
	if dur > PositionExtremsTimeEpsilon {
		seg := accelSegment(p, v, accel, t, dur)
		traj.Append(seg)
		p = seg.Position.Evaluate(dur)
		v = vTarget
		t = dur
	}

	coast := accelSegment(p, v, 0, t, 0)
	coast.EndTime = Infinity
	traj.Append(coast)

	return traj, t
}
