package simulator

import "math"

// FillModel computes the probability that a resting quote is executed given
// that the next bar's mid has already crossed it. Crossing is necessary but
// not sufficient: wider spreads sit further from the crossing flow and fill
// less often, while higher volatility brings more (and noisier) flow.
//
//	P(fill | crossed) = sigmoid(A - B*delta + C*vol)
type FillModel struct {
	A float64 // intercept
	B float64 // spread sensitivity (wider spread -> lower probability)
	C float64 // volatility sensitivity (higher vol -> higher probability)
}

// DefaultFillModel returns the calibration used throughout the project.
func DefaultFillModel() FillModel {
	return FillModel{A: 5.0, B: 50.0, C: 20.0}
}

// Probability returns the conditional fill probability for the given
// half-spread and volatility forecast. Strictly inside (0,1) for finite
// inputs of ordinary magnitude.
func (m FillModel) Probability(delta, volatility float64) float64 {
	return sigmoid(m.A - m.B*delta + m.C*volatility)
}

// sigmoid is the standard logistic function, branched on the sign of x so
// math.Exp never receives a large positive argument.
func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1.0 / (1.0 + math.Exp(-x))
	}
	ex := math.Exp(x)
	return ex / (1.0 + ex)
}
