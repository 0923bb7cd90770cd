package rml

// Extremum is one local extremum (velocity sign change) found while
// scanning a trajectory's position profile (spec.md §4.9).
type Extremum struct {
	Time     float64
	Position float64
}

// ExtremaOf scans every segment of traj for a zero of its velocity
// polynomial, a necessary condition for a local extremum of the position
// profile. Each segment's own time interval is widened by
// PositionExtremsTimeEpsilon on both sides before the root is accepted,
// so roots that fall exactly on a segment boundary are not missed due to
// floating point noise (TypeIIRMLVelocityCalculatePositionalExtrems.cpp
// applies the same widening).
func ExtremaOf(traj *Trajectory) []Extremum {
	var extrema []Extremum

	segments := traj.Segments()
	start := 0.0
	for _, seg := range segments {
		lo := start - PositionExtremsTimeEpsilon
		hi := seg.EndTime + PositionExtremsTimeEpsilon

		count, r1, r2 := seg.Velocity.RealRoots()
		for i := 0; i < count; i++ {
			root := r1
			if i == 1 {
				root = r2
			}
			if root < lo || root > hi {
				continue
			}
			clamped := root
			if clamped < start {
				clamped = start
			}
			if clamped > seg.EndTime {
				clamped = seg.EndTime
			}
			extrema = append(extrema, Extremum{
				Time:     clamped,
				Position: seg.Position.Evaluate(clamped),
			})
		}

		start = seg.EndTime
	}

	return extrema
}
