package rml

// Step2 re-parameterizes one axis's motion (spec.md §4.6) so it lands on
// (pt, vt) at exactly tSync, the time the synchronizer picked across all
// selected axes. It mirrors Step 1's sign-normalization trick
// (step1tree.go's normalizeStep1): the whole computation below runs in a
// "frame" where the axis's current velocity is non-negative, and the
// caller's original sign is restored once at the very end by negating
// every appended segment's polynomial coefficients.
//
// Returns ErrStep2Infeasible when no trapezoid reparameterization exists
// for the requested tSync. That happens when tSync lies below this axis's
// own tMin, and also when landing at tSync would need a first phase that
// slows the axis below its current velocity (for example an axis already
// cruising at vMax whose tSync was stretched by a slower axis): the
// trapezoid solver only ramps up from v to its peak, so such a tSync is
// reported infeasible even though it is not below tMin.
func Step2(p, v, pt, vt, vMax, aMax, tSync float64) (Trajectory, error) {
	var traj Trajectory

	sign := 1.0
	if v < 0.0 {
		p, v, pt, vt = -p, -v, -pt, -vt
		sign = -1.0
	}

	t := 0.0
	if v > vMax {
		dt, _ := vToVMaxTime(v, vMax, aMax)
		traj.Append(accelSegment(p, v, -aMax, t, dt))
		p = traj.Last().Position.Evaluate(t + dt)
		v = vMax
		t += dt
	}

	if pt >= p {
		plan, ok := solveTrapezoid(v, vt, pt-p, tSync-t, aMax, vMax)
		if !ok {
			return traj, ErrStep2Infeasible
		}
		buildTrapezoidSegments(&traj, plan, p, v, aMax, t)
	} else {
		// Reversal: brake to a standstill first (a forced, non-adjustable
		// phase), then solve the remainder as a trapezoid in a locally
		// flipped sub-frame (since solveTrapezoid assumes the distance
		// covered is non-negative in the direction of travel).
		tBrake := v / aMax
		traj.Append(accelSegment(p, v, -aMax, t, tBrake))
		p = traj.Last().Position.Evaluate(t + tBrake)
		t += tBrake

		plan, ok := solveTrapezoid(0, -vt, p-pt, tSync-t, aMax, vMax)
		if !ok {
			return traj, ErrStep2Infeasible
		}

		var local Trajectory
		buildTrapezoidSegments(&local, plan, -p, 0, aMax, t)
		appendNegated(&traj, &local)
	}

	if sign < 0 {
		negateInPlace(&traj)
	}

	last := traj.Last()
	coast := accelSegment(last.Position.Evaluate(last.EndTime), vt*sign, 0, last.EndTime, 0)
	coast.EndTime = Infinity
	traj.Append(coast)

	return traj, nil
}

// appendNegated appends every segment of src into dst with its Position,
// Velocity and Acceleration polynomials negated (used to transform a
// locally flipped sub-frame solution back into the caller's frame).
func appendNegated(dst *Trajectory, src *Trajectory) {
	for _, seg := range src.Segments() {
		dst.Append(Segment{
			Position:     scalePolynomial(seg.Position, -1),
			Velocity:     scalePolynomial(seg.Velocity, -1),
			Acceleration: scalePolynomial(seg.Acceleration, -1),
			EndTime:      seg.EndTime,
		})
	}
}

// negateInPlace flips the sign of every appended segment's Position,
// Velocity and Acceleration polynomials, restoring the caller's original
// sign convention after Step2 computed everything in the v >= 0 frame.
func negateInPlace(traj *Trajectory) {
	for i := 0; i < traj.valid; i++ {
		seg := &traj.segments[i]
		seg.Position = scalePolynomial(seg.Position, -1)
		seg.Velocity = scalePolynomial(seg.Velocity, -1)
		seg.Acceleration = scalePolynomial(seg.Acceleration, -1)
	}
}
