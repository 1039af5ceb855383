package simulator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillProbability_DefaultCalibration(t *testing.T) {
	// sigmoid(5 - 50*0.03 + 20*0.02) = sigmoid(3.9)
	m := DefaultFillModel()
	want := 1.0 / (1.0 + math.Exp(-3.9))
	assert.InDelta(t, want, m.Probability(0.03, 0.02), 1e-12)
}

func TestFillProbability_DecreasesWithSpread(t *testing.T) {
	m := DefaultFillModel()
	vol := 0.02
	prev := m.Probability(0.0, vol)
	for _, delta := range []float64{0.01, 0.02, 0.05, 0.1, 0.5} {
		p := m.Probability(delta, vol)
		assert.Less(t, p, prev, "probability should strictly decrease at delta=%v", delta)
		prev = p
	}
}

func TestFillProbability_IncreasesWithVolatility(t *testing.T) {
	m := DefaultFillModel()
	delta := 0.05
	prev := m.Probability(delta, 0.0)
	for _, vol := range []float64{0.01, 0.05, 0.1, 0.2, 0.5} {
		p := m.Probability(delta, vol)
		assert.Greater(t, p, prev, "probability should strictly increase at vol=%v", vol)
		prev = p
	}
}

func TestFillProbability_BoundedForExtremeInputs(t *testing.T) {
	m := DefaultFillModel()
	cases := []struct{ delta, vol float64 }{
		{0, 0},
		{1e6, 0},     // enormous spread -> probability ~0, no overflow
		{0, 1e6},     // enormous vol -> probability ~1, no overflow
		{1e300, 0},   // sigmoid argument far beyond exp range
		{0, 1e300},
	}
	for _, c := range cases {
		p := m.Probability(c.delta, c.vol)
		assert.False(t, math.IsNaN(p), "NaN at delta=%v vol=%v", c.delta, c.vol)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestSigmoid_SymmetryAndMidpoint(t *testing.T) {
	assert.InDelta(t, 0.5, sigmoid(0), 1e-12)
	// sigmoid(-x) = 1 - sigmoid(x)
	for _, x := range []float64{0.1, 1, 3.7, 10} {
		assert.InDelta(t, 1.0-sigmoid(x), sigmoid(-x), 1e-12, "x=%v", x)
	}
}
