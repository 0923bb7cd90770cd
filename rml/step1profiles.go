package rml

// step1ProfileName identifies which of the six Step 1 acceleration
// profiles produced a given execution time (spec.md §4.2).
type step1ProfileName int

const (
	profileNone step1ProfileName = iota
	profilePosLinHldNegLin
	profilePosLinNegLin
	profilePosTriNegLin
	profilePosTrapNegLin
	profileNegLinPosLin
)

func (n step1ProfileName) String() string {
	switch n {
	case profilePosLinHldNegLin:
		return "PosLinHldNegLin"
	case profilePosLinNegLin:
		return "PosLinNegLin"
	case profilePosTriNegLin:
		return "PosTriNegLin"
	case profilePosTrapNegLin:
		return "PosTrapNegLin"
	case profileNegLinPosLin:
		return "NegLinPosLin"
	default:
		return "none"
	}
}

const sqrt2 = 1.4142135623730950488016887242096980785696718753769480731766

// profileStep1PosLinHldNegLin: accelerate at +aMax, hold at vMax, decelerate
// at -aMax onto the target. (TypeIIRMLStep1Profiles.cpp::ProfileStep1PosLinHldNegLin)
func profileStep1PosLinHldNegLin(p, v, pt, vt, vMax, aMax float64) float64 {
	return (2.0*aMax*(pt-p) + pow2(v) + pow2(vt) + 2.0*vMax*(vMax-v-vt)) / (2.0 * aMax * vMax)
}

// profileStep1PosLinNegLin: accelerate then decelerate, triangular profile
// cresting below vMax.
func profileStep1PosLinNegLin(p, v, pt, vt, aMax float64) float64 {
	return (sqrt2*rmlSqrt(pow2(aMax)*(2.0*aMax*(pt-p)+pow2(v)+pow2(vt))) - aMax*(v+vt)) / pow2(aMax)
}

// profileStep1PosTriNegLin: same triangular shape, used when the target
// lies behind the crest (sign convention differs from PosLinNegLin only
// in which branch of Tree 1A selects it).
func profileStep1PosTriNegLin(p, v, pt, vt, aMax float64) float64 {
	return (sqrt2*rmlSqrt(pow2(aMax)*(pow2(v)+pow2(vt)+2.0*aMax*(pt-p))) - aMax*(v+vt)) / pow2(aMax)
}

// profileStep1PosTrapNegLin: trapezoid capped at vMax, cruise then decelerate.
func profileStep1PosTrapNegLin(p, v, pt, vt, vMax, aMax float64) float64 {
	return (pt-p)/vMax + (0.5*(pow2(v)+pow2(vt))+vMax*(vMax-v-vt))/(aMax*vMax)
}

// profileStep1NegLinPosLin is the closed form used by Tree 1B to find the
// start of an axis's inoperative interval (TypeIIRMLDecisionTree1B.cpp
// calls ProfileStep1NegLinPosLin directly, without any intermediate
// "bring v to zero" segment). It is never called from Tree 1A: Tree 1A's
// own reversal handling brakes to zero and recurses into the same
// PosLinNegLin/PosLinHldNegLin/PosTrapNegLin family used for non-reversal
// targets (see step1tree.go's solveBrakedReversal). TypeIIRMLStep1Profiles.cpp
// returns the negative of this, a sign the caller there immediately negates
// back; this function returns the positive value directly.
func profileStep1NegLinPosLin(p, v, pt, vt, aMax float64) float64 {
	return (sqrt2*rmlSqrt(2.0*aMax*(p-pt)+pow2(v)+pow2(vt)) - v - vt) / aMax
}

// isSolutionPosLinHldNegLinPossible checks feasibility per
// IsSolutionForProfile_PosLinHldNegLin_Possible: both velocities must lie
// in [0, vMax], and the discriminant-like term must be non-negative up
// to ValidSolutionEpsilon.
func isSolutionPosLinHldNegLinPossible(p, v, pt, vt, vMax, aMax float64) bool {
	if v > vMax || v < 0.0 {
		return false
	}
	if vt > vMax || vt < 0.0 {
		return false
	}
	if (2.0*aMax*(pt-p) + pow2(v) - 2.0*pow2(vMax) + pow2(vt)) < -ValidSolutionEpsilon {
		return false
	}
	return true
}

// isSolutionPosLinNegLinPossible checks feasibility and that the
// triangular profile's peak velocity stays within [current, vMax] and
// [target, vMax] (IsSolutionForProfile_PosLinNegLin_Possible).
func isSolutionPosLinNegLinPossible(p, v, pt, vt, vMax, aMax float64) (bool, float64) {
	if v > vMax || v < 0.0 {
		return false, 0
	}
	if vt > vMax || vt < 0.0 {
		return false, 0
	}

	buf := pow2(aMax) * (2.0*aMax*(pt-p) + pow2(v) + pow2(vt))
	if buf < -ValidSolutionEpsilon {
		return false, 0
	}

	sqrtBuf := rmlSqrt(buf)
	peak := sqrtBuf / (sqrt2 * aMax)

	if peak > vMax || peak < v || peak < vt {
		return false, peak
	}
	return true, peak
}

// isSolutionPosTrapNegLinPossible requires both velocities in [0, vMax]
// and forward motion towards the target; Tree 1A only reaches this
// predicate once the triangular profile has already been rejected for
// cresting above vMax, so no additional peak check is needed here.
func isSolutionPosTrapNegLinPossible(p, v, pt, vt, vMax float64) bool {
	if v > vMax || v < 0.0 {
		return false
	}
	if vt > vMax || vt < 0.0 {
		return false
	}
	return (pt - p) >= -ValidSolutionEpsilon
}

// isSolutionNegLinPosLinPossible requires that the radicand of the
// reversal profile be non-negative: the axis can always, in principle,
// brake to a stop and re-accelerate, provided aMax > 0.
func isSolutionNegLinPosLinPossible(p, v, pt, vt, aMax float64) bool {
	radicand := 2.0*aMax*(p-pt) + pow2(v) + pow2(vt)
	return radicand >= -ValidSolutionEpsilon
}

// vToVMaxTime returns the time and position delta to decelerate |v| down
// to vMax when the axis enters Step 1 already exceeding its velocity
// limit (Type II accepts this on input).
func vToVMaxTime(v, vMax, aMax float64) (dt, dp float64) {
	dt = (v - vMax) / aMax
	// distance covered while decelerating from v to vMax at -aMax
	dp = (pow2(v) - pow2(vMax)) / (2.0 * aMax)
	return dt, dp
}
