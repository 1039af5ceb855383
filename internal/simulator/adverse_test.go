package simulator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdverseSelectionPenalty_KnownValue(t *testing.T) {
	// 0.02 * 0.005 * 470 = 0.047
	assert.InDelta(t, 0.047, AdverseSelectionPenalty(470, 0.005, 0.02), 1e-12)
}

func TestAdverseSelectionPenalty_LinearInAlpha(t *testing.T) {
	mid, vol := 123.45, 0.0123
	base := AdverseSelectionPenalty(mid, vol, 0.01)
	assert.InDelta(t, 2*base, AdverseSelectionPenalty(mid, vol, 0.02), 1e-12)
	assert.InDelta(t, 10*base, AdverseSelectionPenalty(mid, vol, 0.1), 1e-12)
}

func TestAdverseSelectionPenalty_LinearInVolAndMid(t *testing.T) {
	assert.InDelta(t,
		2*AdverseSelectionPenalty(100, 0.01, 0.05),
		AdverseSelectionPenalty(100, 0.02, 0.05), 1e-12)
	assert.InDelta(t,
		2*AdverseSelectionPenalty(100, 0.01, 0.05),
		AdverseSelectionPenalty(200, 0.01, 0.05), 1e-12)
}

func TestAdverseSelectionPenalty_GuardClauses(t *testing.T) {
	cases := []struct {
		name            string
		mid, vol, alpha float64
	}{
		{"zero alpha", 100, 0.01, 0},
		{"negative alpha", 100, 0.01, -0.5},
		{"zero vol", 100, 0, 0.02},
		{"negative vol", 100, -0.01, 0.02},
		{"zero mid", 0, 0.01, 0.02},
		{"negative mid", -100, 0.01, 0.02},
		{"NaN vol", 100, math.NaN(), 0.02},
		{"Inf vol", 100, math.Inf(1), 0.02},
		{"NaN mid", math.NaN(), 0.01, 0.02},
		{"Inf mid", math.Inf(1), 0.01, 0.02},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, 0.0, AdverseSelectionPenalty(c.mid, c.vol, c.alpha))
		})
	}
}
