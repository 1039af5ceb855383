package simulator

import "math"

// AdverseSelectionPenalty returns the expected dollar cost per filled share
// from trading against better-informed flow, proxied as alpha * vol * mid.
// The penalty is charged identically whether the fill bought or sold.
//
// Degenerate inputs are guard clauses, not errors: the penalty is 0.0 when
// alpha <= 0, when vol or mid is non-positive, or when either is non-finite.
func AdverseSelectionPenalty(mid, vol, alpha float64) float64 {
	if alpha <= 0.0 {
		return 0.0
	}
	if vol <= 0.0 || math.IsNaN(vol) || math.IsInf(vol, 0) {
		return 0.0
	}
	if mid <= 0.0 || math.IsNaN(mid) || math.IsInf(mid, 0) {
		return 0.0
	}
	return alpha * vol * mid
}
