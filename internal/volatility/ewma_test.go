package volatility

import (
	"math"
	"testing"
	"time"

	"github.com/atlasmm/atlas/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minuteStamps(n int) []time.Time {
	base := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = base.Add(time.Duration(i) * time.Minute)
	}
	return out
}

func TestEWMAVarianceForecast_KnownRecursion(t *testing.T) {
	// rv = [0.04, 0.01, 0.09], lam = 0.5, seed = rv[0]
	// sigma2[0] = 0.04
	// sigma2[1] = 0.5*0.04 + 0.5*0.04 = 0.04
	// sigma2[2] = 0.5*0.04 + 0.5*0.01 = 0.025
	rv := series.MustNew(minuteStamps(3), []float64{0.04, 0.01, 0.09})
	fc, err := EWMAVarianceForecast(rv, 0.5)
	require.NoError(t, err)

	require.Equal(t, 3, fc.Len())
	assert.InDelta(t, 0.04, fc.At(0), 1e-12)
	assert.InDelta(t, 0.04, fc.At(1), 1e-12)
	assert.InDelta(t, 0.025, fc.At(2), 1e-12)
}

func TestEWMAVarianceForecast_UsesPriorOutputNotPriorInput(t *testing.T) {
	// With lam=0.9 the forecast smooths: a single spike in rv decays
	// geometrically instead of disappearing after one step.
	rv := series.MustNew(minuteStamps(5), []float64{0.01, 1.0, 0.01, 0.01, 0.01})
	fc, err := EWMAVarianceForecast(rv, 0.9)
	require.NoError(t, err)

	// sigma2[2] = 0.9*sigma2[1] + 0.1*rv[1] = 0.9*0.01 + 0.1*1.0 = 0.109
	assert.InDelta(t, 0.109, fc.At(2), 1e-12)
	// sigma2[3] = 0.9*0.109 + 0.1*0.01 = 0.0991
	assert.InDelta(t, 0.0991, fc.At(3), 1e-12)
}

func TestEWMAVarianceForecastFrom_ExplicitSeed(t *testing.T) {
	rv := series.MustNew(minuteStamps(2), []float64{0.04, 0.02})
	fc, err := EWMAVarianceForecastFrom(rv, 0.5, 0.16)
	require.NoError(t, err)

	assert.InDelta(t, 0.16, fc.At(0), 1e-12)
	// 0.5*0.16 + 0.5*0.04 = 0.1
	assert.InDelta(t, 0.1, fc.At(1), 1e-12)
}

func TestEWMAVarianceForecast_LambdaOutOfRange(t *testing.T) {
	rv := series.MustNew(minuteStamps(2), []float64{0.04, 0.02})
	for _, lam := range []float64{0, 1, -0.5, 1.5} {
		_, err := EWMAVarianceForecast(rv, lam)
		assert.Error(t, err, "lam=%v", lam)
	}
}

func TestEWMAVarianceForecast_Empty(t *testing.T) {
	rv := series.MustNew(nil, nil)
	fc, err := EWMAVarianceForecast(rv, 0.94)
	require.NoError(t, err)
	assert.Equal(t, 0, fc.Len())
}

func TestEWMAVolatilityForecast_IsSqrtOfVariance(t *testing.T) {
	rv := series.MustNew(minuteStamps(4), []float64{0.04, 0.01, 0.09, 0.02})
	varFc, err := EWMAVarianceForecast(rv, 0.7)
	require.NoError(t, err)
	volFc, err := EWMAVolatilityForecast(rv, 0.7)
	require.NoError(t, err)

	for i := 0; i < varFc.Len(); i++ {
		assert.InDelta(t, math.Sqrt(varFc.At(i)), volFc.At(i), 1e-12)
	}
}
