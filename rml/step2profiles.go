package rml

// Step 2 re-parameterizes one axis's motion so that it lands on the
// target state at exactly tSync (spec.md §4.6), rather than at its own
// unconstrained minimum execution time. The six-profile enumeration of
// Step 1 is collapsed here into a single closed-form trapezoid solver:
// every feasible Step-1 profile is a special case of accelerate-cruise-
// decelerate with the cruise phase possibly empty, so re-deriving the
// peak (cruise) velocity that makes the trapezoid take exactly tSync
// covers PosLinHldNegLin, PosLinNegLin and PosTrapNegLin uniformly. This
// is the first-principles re-derivation the REDESIGN FLAGS call for,
// rather than a transcription of TypeIIRMLStep2IntermediateProfiles.cpp's
// own six-profile split.
//
// Given v, vt, aMax, a target distance D and total time tSync, the
// trapezoid's peak velocity vPeak satisfies (derived by integrating the
// three phases and eliminating the two ramp durations):
//
//	2*vPeak^2 - vPeak*(2*aMax*tSync + 2*(v+vt)) + (v^2+vt^2) + 2*aMax*D = 0
//
// a quadratic in vPeak solved directly. The smaller root is tried first,
// then the larger; a root is kept only if both ramp durations are
// non-negative (vPeak >= v and vPeak >= vt) and vPeak <= vMax. When
// neither root passes, no accelerate-cruise-decelerate shape fits tSync
// and the solver reports failure; a decelerate-first shape is not tried.
type trapezoidPlan struct {
	vPeak      float64
	t1, t2, t3 float64 // accel, cruise, decel phase durations
}

// solveTrapezoid finds the peak velocity and phase durations for an
// accelerate-cruise-decelerate move from v to vt covering distance dist
// in exactly tSync seconds at acceleration magnitude aMax, subject to
// spec.md §8 Invariant 3: vPeak must never exceed vMax. ok is false when
// no real, non-negative-phase-duration, vMax-respecting solution exists
// (the caller falls back to the velocity kernel in that case).
func solveTrapezoid(v, vt, dist, tSync, aMax, vMax float64) (plan trapezoidPlan, ok bool) {
	if tSync <= DenominatorEpsilon || aMax <= DenominatorEpsilon {
		return plan, false
	}

	a := 2.0
	b := -(2.0*aMax*tSync + 2.0*(v+vt))
	c := pow2(v) + pow2(vt) + 2.0*aMax*dist

	discriminant := pow2(b) - 4.0*a*c
	if discriminant < -ValidSolutionEpsilon {
		return plan, false
	}
	if discriminant < 0 {
		discriminant = 0
	}
	sqrtDisc := rmlSqrt(discriminant)

	root1 := (-b - sqrtDisc) / (2.0 * a)
	root2 := (-b + sqrtDisc) / (2.0 * a)

	// Prefer the smaller non-negative root: it is the one that keeps the
	// cruise phase as long as possible rather than over-accelerating.
	candidates := []float64{root1, root2}
	for _, vPeak := range candidates {
		if vPeak > vMax+ValidSolutionEpsilon {
			continue
		}
		t1 := (vPeak - v) / aMax
		t3 := (vPeak - vt) / aMax
		t2 := tSync - t1 - t3
		if t1 < -ValidSolutionEpsilon || t3 < -ValidSolutionEpsilon || t2 < -ValidSolutionEpsilon {
			continue
		}
		if t1 < 0 {
			t1 = 0
		}
		if t3 < 0 {
			t3 = 0
		}
		if t2 < 0 {
			t2 = 0
		}
		if vPeak > vMax {
			vPeak = vMax
		}
		return trapezoidPlan{vPeak: vPeak, t1: t1, t2: t2, t3: t3}, true
	}
	return plan, false
}

// buildTrapezoidSegments appends the polynomial segments of a
// solveTrapezoid plan to traj, starting at absolute time t0 with position
// p. It returns the absolute end time of the last appended segment.
func buildTrapezoidSegments(traj *Trajectory, plan trapezoidPlan, p, v, aMax float64, t0 float64) float64 {
	t := t0

	if plan.t1 > PositionExtremsTimeEpsilon {
		seg := accelSegment(p, v, aMax, t, plan.t1)
		traj.Append(seg)
		p = seg.Position.Evaluate(t + plan.t1)
		v = plan.vPeak
		t += plan.t1
	}

	if plan.t2 > PositionExtremsTimeEpsilon {
		seg := accelSegment(p, v, 0, t, plan.t2)
		traj.Append(seg)
		p = seg.Position.Evaluate(t + plan.t2)
		t += plan.t2
	}

	if plan.t3 > PositionExtremsTimeEpsilon {
		seg := accelSegment(p, v, -aMax, t, plan.t3)
		traj.Append(seg)
		t += plan.t3
	}

	return t
}

// accelSegment builds one constant-acceleration Segment starting at
// absolute time t0 with state (p, v), covering duration dur at
// acceleration accel. The polynomial's own DeltaT is t0, so Evaluate is
// called with absolute time throughout.
func accelSegment(p, v, accel, t0, dur float64) Segment {
	var seg Segment
	seg.Position.Set(0.5*accel, v, p, t0)
	seg.Velocity.Set(0, accel, v, t0)
	seg.Acceleration.Set(0, 0, accel, t0)
	seg.EndTime = t0 + dur
	return seg
}
