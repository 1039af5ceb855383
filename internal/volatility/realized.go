package volatility

import (
	"math"
	"time"

	"github.com/atlasmm/atlas/internal/series"
)

// RealizedVariance buckets tick-level log returns into fixed intervals and
// sums squared returns per bucket:
//
//	RVAR_t = sum_{i in bucket t} r_{t,i}^2
//
// Buckets with fewer than minObs observations are dropped, as are buckets
// containing non-finite returns only. The output index carries the bucket
// start times.
func RealizedVariance(logReturns *series.Series, interval time.Duration, minObs int) *series.Series {
	if minObs < 1 {
		minObs = 1
	}
	n := logReturns.Len()

	var bucketIdx []time.Time
	var bucketVar []float64
	var bucketCount []int

	for i := 0; i < n; i++ {
		r := logReturns.At(i)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		bucket := logReturns.TimeAt(i).Truncate(interval)

		if len(bucketIdx) == 0 || !bucketIdx[len(bucketIdx)-1].Equal(bucket) {
			bucketIdx = append(bucketIdx, bucket)
			bucketVar = append(bucketVar, 0)
			bucketCount = append(bucketCount, 0)
		}
		last := len(bucketIdx) - 1
		bucketVar[last] += r * r
		bucketCount[last]++
	}

	// Keep only buckets meeting the observation cutoff.
	outIdx := make([]time.Time, 0, len(bucketIdx))
	outVar := make([]float64, 0, len(bucketVar))
	for i := range bucketIdx {
		if bucketCount[i] >= minObs {
			outIdx = append(outIdx, bucketIdx[i])
			outVar = append(outVar, bucketVar[i])
		}
	}

	return series.MustNew(outIdx, outVar)
}

// RealizedVolatility is the square root of RealizedVariance per bucket.
func RealizedVolatility(logReturns *series.Series, interval time.Duration, minObs int) *series.Series {
	return RealizedVariance(logReturns, interval, minObs).Map(math.Sqrt)
}

// RollingRealizedVolatility sums realized variance over a trailing time
// window and takes the square root:
//
//	rolling_rv_t = sqrt(sum of RVAR over (t-window, t])
//
// When annualize is true the result is scaled by sqrt(periodsPerYear); for
// per-minute variance on US equities that is 252*390.
func RollingRealizedVolatility(realizedVar *series.Series, window time.Duration, minPeriods int, annualize bool, periodsPerYear float64) *series.Series {
	if minPeriods < 1 {
		minPeriods = 1
	}
	n := realizedVar.Len()
	idx := realizedVar.Index()
	vals := realizedVar.Values()

	outIdx := make([]time.Time, 0, n)
	outVals := make([]float64, 0, n)

	start := 0
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += vals[i]
		for idx[start].Add(window).Before(idx[i]) || idx[start].Add(window).Equal(idx[i]) {
			sum -= vals[start]
			start++
		}
		count := i - start + 1
		if count < minPeriods {
			continue
		}
		rv := math.Sqrt(sum)
		if annualize {
			rv *= math.Sqrt(periodsPerYear)
		}
		outIdx = append(outIdx, idx[i])
		outVals = append(outVals, rv)
	}

	return series.MustNew(outIdx, outVals)
}
