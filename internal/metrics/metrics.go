package metrics

import (
	"math"

	"github.com/atlasmm/atlas/internal/simulator"
)

// Summary holds performance statistics computed from one simulation trace.
type Summary struct {
	TotalPnL          float64 // final portfolio value minus initial
	MeanPnLPerBar     float64 // mean of per-bar portfolio value changes
	StdPnLPerBar      float64 // sample std of per-bar portfolio value changes
	SharpeRatio       float64 // annualized: mean/std * sqrt(barsPerYear)
	InventoryVariance float64 // sample variance of the inventory path
	MaxAbsInventory   int64   // largest absolute position held
	MeanAbsInventory  float64 // average absolute position
	MaxDrawdown       float64 // peak-to-trough decline of portfolio value
	MaxDrawdownPct    float64 // same, relative to the running peak
	Trades            int64   // total accepted fills
}

// BarsPerYearUSEquities is the annualization factor for 1-minute bars on a
// US equity session: 252 trading days * 390 minutes.
const BarsPerYearUSEquities = 252.0 * 390.0

// Summarize computes a Summary from a trace. barsPerYear annualizes the
// Sharpe ratio; pass BarsPerYearUSEquities for 1-minute equity bars.
// Deterministic, no I/O.
func Summarize(trace *simulator.Trace, barsPerYear float64) Summary {
	s := Summary{}
	n := trace.Len()
	if n == 0 {
		return s
	}

	s.Trades = trace.TradeCount[n-1]
	s.TotalPnL = trace.PortfolioValue[n-1] - trace.PortfolioValue[0]

	// Per-bar PnL steps from the portfolio value curve.
	steps := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		steps = append(steps, trace.PortfolioValue[i]-trace.PortfolioValue[i-1])
	}
	s.MeanPnLPerBar = mean(steps)
	s.StdPnLPerBar = stddev(steps, s.MeanPnLPerBar)
	s.SharpeRatio = SharpeFromReturns(steps, barsPerYear)

	// Inventory statistics.
	inv := make([]float64, n)
	var sumAbs float64
	for i, pos := range trace.Inventory {
		inv[i] = float64(pos)
		if pos < 0 {
			pos = -pos
		}
		sumAbs += float64(pos)
		if pos > s.MaxAbsInventory {
			s.MaxAbsInventory = pos
		}
	}
	invMean := mean(inv)
	invStd := stddev(inv, invMean)
	s.InventoryVariance = invStd * invStd
	s.MeanAbsInventory = sumAbs / float64(n)

	s.MaxDrawdown, s.MaxDrawdownPct = MaxDrawdownFromEquity(trace.PortfolioValue)

	return s
}

// SharpeFromReturns computes the annualized Sharpe ratio from periodic PnL
// steps or returns: mean/std * sqrt(periodsPerYear). Returns 0 when there
// are fewer than 2 observations or the std is zero.
func SharpeFromReturns(returns []float64, periodsPerYear float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	m := mean(returns)
	sd := stddev(returns, m)
	if sd == 0 {
		return 0
	}
	return (m / sd) * math.Sqrt(periodsPerYear)
}

// MaxDrawdownFromEquity computes the maximum peak-to-trough decline from an
// equity curve, in absolute terms and relative to the running peak.
func MaxDrawdownFromEquity(equity []float64) (drawdown float64, drawdownPct float64) {
	if len(equity) < 2 {
		return 0, 0
	}

	peak := equity[0]
	maxDD := 0.0
	maxDDPct := 0.0

	for _, eq := range equity {
		if eq > peak {
			peak = eq
		}
		dd := peak - eq
		if dd > maxDD {
			maxDD = dd
		}
		if peak > 0 {
			ddPct := dd / peak
			if ddPct > maxDDPct {
				maxDDPct = ddPct
			}
		}
	}

	return maxDD, maxDDPct
}

// mean returns the arithmetic mean of a slice.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev returns the sample standard deviation of a slice given its mean.
func stddev(xs []float64, m float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sumSq := 0.0
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}
