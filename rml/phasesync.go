package rml

import "gonum.org/v1/gonum/floats"

// PhaseSync describes a homothetic (straight-line) trajectory shared by a
// set of selected axes (spec.md §4.5). All axes move along the same
// direction vector, scaled by their own distance-to-target, so every
// selected axis's polynomial is a constant multiple of the driving axis's.
type PhaseSync struct {
	// Driver is the index, among the selected axes, whose reference
	// component has the largest magnitude. Its polynomial is computed
	// directly by Step 2; every other selected axis scales it.
	Driver int
	// Reference is the normalized direction vector (one component per
	// selected axis, in selection order) that all axes' motion is
	// collinear with.
	Reference []float64
	// Scale[i] = Reference[i] / Reference[Driver], so that axis i's
	// polynomial coefficients are axis Driver's scaled by Scale[i].
	Scale []float64
}

// DetectPhaseSync implements spec.md §4.5's phase-synchronization
// detector. dp, v and vt are, respectively, the per-axis position delta
// (target - current), current velocity and target velocity of every
// selected axis, in the same order; selected axes are the only ones
// considered. Phase synchronization requires all three candidate
// direction vectors (position, velocity, target velocity) to be
// collinear: each is normalized independently, the longest is kept as
// the reference, and the others are sign-aligned and compared against it
// within PhaseSyncCollinearityRelEpsilon.
//
// Returns (nil, false) when fewer than two axes are selected (phase sync
// is only meaningful across multiple axes) or when no non-degenerate
// reference direction exists.
func DetectPhaseSync(dp, v, vt []float64, selected []bool) (*PhaseSync, bool) {
	n := len(dp)
	idx := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if selected[i] {
			idx = append(idx, i)
		}
	}
	if len(idx) < 2 {
		return nil, false
	}

	candidates := [][]float64{
		gather(dp, idx),
		gather(v, idx),
		gather(vt, idx),
	}

	var reference []float64
	var referenceNorm float64
	for _, c := range candidates {
		norm := floats.Norm(c, 2)
		if norm <= AbsolutePhaseSyncEpsilon {
			continue
		}
		if norm > referenceNorm {
			reference = c
			referenceNorm = norm
		}
	}
	if reference == nil {
		return nil, false
	}

	normalizedRef := make([]float64, len(reference))
	copy(normalizedRef, reference)
	floats.Scale(1.0/referenceNorm, normalizedRef)

	for _, c := range candidates {
		norm := floats.Norm(c, 2)
		if norm <= AbsolutePhaseSyncEpsilon {
			continue
		}
		normalized := make([]float64, len(c))
		copy(normalized, c)
		floats.Scale(1.0/norm, normalized)

		dot := floats.Dot(normalized, normalizedRef)
		if dot < 0 {
			floats.Scale(-1, normalized)
			dot = -dot
		}
		if (1.0 - dot) > PhaseSyncCollinearityRelEpsilon {
			return nil, false
		}
		for i := range normalized {
			if isEpsilonEqual(normalizedRef[i], 0, RelativePhaseSyncEpsilon) {
				continue
			}
			rel := (normalized[i] - normalizedRef[i]) / normalizedRef[i]
			if rel > PhaseSyncCollinearityRelEpsilon || rel < -PhaseSyncCollinearityRelEpsilon {
				return nil, false
			}
		}
	}

	driver := 0
	largest := 0.0
	for i, val := range normalizedRef {
		abs := val
		if abs < 0 {
			abs = -abs
		}
		if abs > largest {
			largest = abs
			driver = i
		}
	}
	if largest <= AbsolutePhaseSyncEpsilon {
		return nil, false
	}

	scale := make([]float64, len(normalizedRef))
	for i, val := range normalizedRef {
		scale[i] = val / normalizedRef[driver]
	}

	return &PhaseSync{Driver: driver, Reference: normalizedRef, Scale: scale}, true
}

func gather(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

// GeneratePhaseSyncTrajectory scales the driving axis's already-computed
// Step 2 trajectory into every other selected axis's own trajectory, per
// the detected PhaseSync. driverTraj is the trajectory already computed
// for ps.Driver; out[i] receives axis i's scaled trajectory for every i
// other than the driver (out[ps.Driver] is left untouched — the caller
// already owns it).
func GeneratePhaseSyncTrajectory(ps *PhaseSync, driverTraj *Trajectory, out []*Trajectory) {
	for i, traj := range out {
		if i == ps.Driver || traj == nil {
			continue
		}
		scaleTrajectory(driverTraj, ps.Scale[i], traj)
	}
}

// scaleTrajectory copies src into dst, scaling every position/velocity/
// acceleration polynomial coefficient (but not DeltaT or EndTime, which
// are shared across all phase-synchronized axes) by factor.
func scaleTrajectory(src *Trajectory, factor float64, dst *Trajectory) {
	dst.Reset()
	for _, seg := range src.Segments() {
		scaled := Segment{
			Position:     scalePolynomial(seg.Position, factor),
			Velocity:     scalePolynomial(seg.Velocity, factor),
			Acceleration: scalePolynomial(seg.Acceleration, factor),
			EndTime:      seg.EndTime,
		}
		dst.Append(scaled)
	}
}

func scalePolynomial(p Polynomial, factor float64) Polynomial {
	return Polynomial{
		A2:     p.A2 * factor,
		A1:     p.A1 * factor,
		A0:     p.A0 * factor,
		DeltaT: p.DeltaT,
	}
}
