package volatility

import (
	"fmt"
	"math"

	"github.com/atlasmm/atlas/internal/series"
)

// EWMAVarianceForecast produces an exponentially-weighted variance forecast
// with realized variance as the innovation input:
//
//	sigma²[i] = lam * sigma²[i-1] + (1 - lam) * RVAR[i-1]
//
// sigma²[0] seeds from the first realized-variance value. The recursion
// depends on its own prior output, so it runs as an explicit forward loop.
// The output shares the input index: entry i is the forecast for bar i using
// information up to bar i-1.
func EWMAVarianceForecast(realizedVar *series.Series, lam float64) (*series.Series, error) {
	if realizedVar.Len() == 0 {
		return realizedVar, nil
	}
	return EWMAVarianceForecastFrom(realizedVar, lam, realizedVar.At(0))
}

// EWMAVarianceForecastFrom is EWMAVarianceForecast with an explicit starting
// variance instead of seeding from the first observation.
func EWMAVarianceForecastFrom(realizedVar *series.Series, lam float64, initialVar float64) (*series.Series, error) {
	if lam <= 0.0 || lam >= 1.0 {
		return nil, fmt.Errorf("volatility: ewma lambda must be in (0,1), got %v", lam)
	}

	n := realizedVar.Len()
	if n == 0 {
		return realizedVar, nil
	}

	sigma2 := make([]float64, n)
	sigma2[0] = initialVar
	for i := 1; i < n; i++ {
		sigma2[i] = lam*sigma2[i-1] + (1.0-lam)*realizedVar.At(i-1)
	}

	return series.New(realizedVar.Index(), sigma2)
}

// EWMAVolatilityForecast returns sqrt(EWMAVarianceForecast).
func EWMAVolatilityForecast(realizedVar *series.Series, lam float64) (*series.Series, error) {
	varFc, err := EWMAVarianceForecast(realizedVar, lam)
	if err != nil {
		return nil, err
	}
	return varFc.Map(math.Sqrt), nil
}
