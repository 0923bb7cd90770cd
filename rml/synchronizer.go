package rml

// Synchronize combines the per-axis Step 1 outputs into a single
// synchronization time, skipping any inoperative interval (spec.md
// §4.4). tMinimum is the caller-supplied optional minimum synchronization
// time; pass 0 when unset.
//
// Algorithm: collect every tMin, tBegin, tEnd (and tMinimum) into one
// sequence, sort it ascending, then scan upward from the largest tMin
// looking for the first candidate that lies in no inoperative interval.
func Synchronize(axes []AxisTimes, tMinimum float64) (float64, error) {
	candidates := make([]float64, 0, 3*len(axes)+1)

	largestTMin := 0.0
	for _, a := range axes {
		candidates = append(candidates, a.TMin)
		if a.TMin > largestTMin {
			largestTMin = a.TMin
		}
		if a.HasBlocked {
			candidates = append(candidates, a.TBegin, a.TEnd)
		}
	}
	if tMinimum > 0 {
		candidates = append(candidates, tMinimum)
		if tMinimum > largestTMin {
			largestTMin = tMinimum
		}
	}

	sortFloat64(candidates)

	for _, t := range candidates {
		if t < largestTMin {
			continue
		}
		if !liesInAnyInoperativeInterval(t, axes) {
			if t > MaxExecutionTime {
				return 0, ErrExecutionTimeTooBig
			}
			return t, nil
		}
	}

	// Second look at the tail end of each inoperative interval. Every tEnd
	// is already in candidates and this pass applies the same ">=
	// largestTMin" and "not blocked" tests, so it returns only a time the
	// scan above would already have returned.
	for _, a := range axes {
		if a.HasBlocked && !liesInAnyInoperativeInterval(a.TEnd, axes) && a.TEnd >= largestTMin {
			if a.TEnd > MaxExecutionTime {
				return 0, ErrExecutionTimeTooBig
			}
			return a.TEnd, nil
		}
	}

	return 0, ErrNoSynchronization
}

// liesInAnyInoperativeInterval reports whether t falls inside some axis's
// inoperative interval. Both boundaries are treated as operative: t_begin
// is itself realizable (step1Tree1B never reports a t_begin at or below
// that axis's own t_min), and the moment t_end is reached the axis's
// profile becomes feasible again. So only the open interval strictly
// between the two is blocked.
func liesInAnyInoperativeInterval(t float64, axes []AxisTimes) bool {
	for _, a := range axes {
		if a.HasBlocked && t > a.TBegin && t < a.TEnd {
			return true
		}
	}
	return false
}
