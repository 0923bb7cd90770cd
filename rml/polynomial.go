package rml

// Polynomial represents f(t) = a2*(t-DeltaT)^2 + a1*(t-DeltaT) + a0, a
// single segment of an axis's motion profile, valid on whatever interval
// the owning Trajectory assigns it. Degree is derived from the nonzero
// leading coefficient: 2 when A2 != 0, 1 when A1 != 0, 0 otherwise.
type Polynomial struct {
	A2, A1, A0, DeltaT float64
}

// Set installs the coefficients of a segment f(t) = a2*(t-dt)^2 + a1*(t-dt) + a0.
func (p *Polynomial) Set(a2, a1, a0, dt float64) {
	p.A2, p.A1, p.A0, p.DeltaT = a2, a1, a0, dt
}

// Degree reports the polynomial's degree: 2 if A2 != 0, 1 if A1 != 0 (and
// A2 == 0), 0 otherwise.
func (p *Polynomial) Degree() int {
	if p.A2 != 0.0 {
		return 2
	}
	if p.A1 != 0.0 {
		return 1
	}
	return 0
}

// Evaluate returns f(t).
func (p *Polynomial) Evaluate(t float64) float64 {
	dt := t - p.DeltaT
	switch p.Degree() {
	case 2:
		return p.A2*dt*dt + p.A1*dt + p.A0
	case 1:
		return p.A1*dt + p.A0
	default:
		return p.A0
	}
}

// RealRoots returns the real roots of f(t) = 0 in the polynomial's own
// (unshifted) time domain. The discriminant test happens before the
// guarded square root is applied, so a negative discriminant yields
// exactly zero roots rather than a near-zero spurious one.
func (p *Polynomial) RealRoots() (count int, root1, root2 float64) {
	switch p.Degree() {
	case 2:
		b0 := p.A0 / p.A2
		b1 := p.A1 / p.A2
		squareRootTerm := 0.25*pow2(b1) - b0
		if squareRootTerm < 0.0 {
			return 0, 0, 0
		}
		squareRootTerm = rmlSqrt(squareRootTerm)
		root1 = -0.5*b1 + squareRootTerm + p.DeltaT
		root2 = -0.5*b1 - squareRootTerm + p.DeltaT
		return 2, root1, root2
	case 1:
		root1 = -p.A0/p.A1 + p.DeltaT
		return 1, root1, 0
	default:
		return 0, 0, 0
	}
}

// Segment is one (position, velocity, acceleration) polynomial triple,
// valid up to EndTime. Degree is monotone-nonincreasing across the
// triple: Velocity is the derivative of Position, Acceleration the
// derivative of Velocity.
type Segment struct {
	Position     Polynomial
	Velocity     Polynomial
	Acceleration Polynomial
	EndTime      float64
}

// Trajectory is the per-axis ordered sequence of at most MaxSegments
// polynomial triples produced by Step 1/2. The last segment always
// models the post-completion coast phase at the target velocity.
type Trajectory struct {
	segments [MaxSegments]Segment
	valid    int
}

// Reset clears the trajectory back to zero valid segments, without
// reallocating the backing array.
func (t *Trajectory) Reset() {
	t.valid = 0
}

// ValidSegments reports how many of the (up to MaxSegments) segments are
// currently populated.
func (t *Trajectory) ValidSegments() int {
	return t.valid
}

// Append adds one segment to the trajectory. It panics if the trajectory
// already holds MaxSegments segments — Step 1/2 are proven to never
// produce more than seven, so this is a programmer-error guard, not a
// runtime condition callers need to handle.
func (t *Trajectory) Append(s Segment) {
	if t.valid >= MaxSegments {
		panic("rml: trajectory segment count exceeds MaxSegments")
	}
	t.segments[t.valid] = s
	t.valid++
}

// Segments returns the valid, ordered segment slice. The returned slice
// aliases the trajectory's own backing array and must not be retained
// past the next call that mutates the trajectory.
func (t *Trajectory) Segments() []Segment {
	return t.segments[:t.valid]
}

// Last returns the most recently appended segment. It panics on an empty
// trajectory.
func (t *Trajectory) Last() *Segment {
	return &t.segments[t.valid-1]
}

// segmentIndexAt returns the index of the smallest segment j with
// t <= EndTime_j, per Step 3's sampling rule. If t is beyond every
// segment's end time, the last segment's index is returned.
func (t *Trajectory) segmentIndexAt(at float64) int {
	for i := 0; i < t.valid; i++ {
		if at <= t.segments[i].EndTime {
			return i
		}
	}
	return t.valid - 1
}

// Sample evaluates the trajectory at absolute time t, returning the
// motion state reproduced by the segment whose interval contains t (Step
// 3 of spec.md §4.8).
func (t *Trajectory) Sample(at float64) MotionState {
	idx := t.segmentIndexAt(at)
	seg := &t.segments[idx]
	return MotionState{
		Position:     seg.Position.Evaluate(at),
		Velocity:     seg.Velocity.Evaluate(at),
		Acceleration: seg.Acceleration.Evaluate(at),
	}
}

// SyncTime returns the trajectory's synchronization time: the end time of
// the second-to-last segment, at which the target state is first reached
// (the final segment models the indefinite coast phase afterward).
func (t *Trajectory) SyncTime() float64 {
	if t.valid < 2 {
		// A lone segment is the coast phase itself: the axis is already
		// in its final state at time 0.
		return 0
	}
	return t.segments[t.valid-2].EndTime
}
