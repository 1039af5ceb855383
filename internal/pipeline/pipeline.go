// Package pipeline wires the data, volatility, quoting, and simulation
// stages into the standard backtest flow shared by the binaries.
package pipeline

import (
	"fmt"
	"time"

	"github.com/atlasmm/atlas/internal/config"
	"github.com/atlasmm/atlas/internal/marketdata"
	"github.com/atlasmm/atlas/internal/metrics"
	"github.com/atlasmm/atlas/internal/observability"
	"github.com/atlasmm/atlas/internal/quoting"
	"github.com/atlasmm/atlas/internal/report"
	"github.com/atlasmm/atlas/internal/series"
	"github.com/atlasmm/atlas/internal/simulator"
	"github.com/atlasmm/atlas/internal/volatility"
	"github.com/rs/zerolog/log"
)

// Session holds one prepared trading session: resampled bars, the mid path,
// and the EWMA volatility forecast aligned to the bar index.
type Session struct {
	Bars    *marketdata.Bars
	Mids    *series.Series
	EWMAVol *series.Series
}

// Prepare loads and cleans the quote file, resamples to bars, computes
// realized variance from tick returns, and produces the bar-aligned EWMA
// volatility forecast.
func Prepare(cfg *config.Config) (*Session, error) {
	ticks, err := marketdata.LoadQuotes(cfg.Data.Path)
	if err != nil {
		return nil, fmt.Errorf("load quotes: %w", err)
	}
	if ticks.Len() < 2 {
		return nil, fmt.Errorf("quote file %s: not enough ticks (%d)", cfg.Data.Path, ticks.Len())
	}

	interval := time.Duration(cfg.Data.BarIntervalSeconds) * time.Second
	bars := ticks.Resample(interval)
	log.Info().
		Int("ticks", ticks.Len()).
		Int("bars", bars.Len()).
		Time("session_start", bars.Time[0]).
		Time("session_end", bars.Time[bars.Len()-1]).
		Msg("session prepared")

	rvar := volatility.RealizedVariance(ticks.LogReturnSeries(), interval, cfg.Data.MinObsPerBucket)
	ewmaVol, err := volatility.EWMAVolatilityForecast(rvar, cfg.Volatility.EWMALambda)
	if err != nil {
		return nil, fmt.Errorf("ewma forecast: %w", err)
	}

	// Align the forecast to the bar index; bars before the first forecast
	// bucket fall back to the forecast mean.
	mids := bars.MidSeries()
	aligned := ewmaVol.ReindexFFill(mids.Index(), meanOf(ewmaVol))

	log.Info().
		Float64("ewma_vol_mean", meanOf(aligned)).
		Float64("ewma_lambda", cfg.Volatility.EWMALambda).
		Msg("volatility forecast ready")

	return &Session{Bars: bars, Mids: mids, EWMAVol: aligned}, nil
}

// StrategyResult is one strategy's trace and summary.
type StrategyResult struct {
	Name    string
	Trace   *simulator.Trace
	Summary metrics.Summary
}

// RunStrategies executes the three standard quoting policies over the
// session with the given adverse-selection coefficient: constant baseline
// spread, vol-adaptive spread, and vol-adaptive spread with inventory skew.
// Each strategy gets a fresh engine constructed with the same seed, so draws
// are independent yet individually reproducible.
func RunStrategies(cfg *config.Config, s *Session, alphaAS float64) ([]StrategyResult, error) {
	deltaSeries := quoting.ComputeSpread(s.EWMAVol, cfg.Spread.K0, cfg.Spread.K1, cfg.Spread.MinSpread)

	specs := []struct {
		name  string
		delta simulator.Spread
		phi   float64
	}{
		{fmt.Sprintf("baseline d=%v", cfg.Spread.BaselineDelta), simulator.ConstantSpread(cfg.Spread.BaselineDelta), 0},
		{"vol-adaptive", simulator.SpreadSeries(deltaSeries), 0},
		{fmt.Sprintf("vol+inv phi=%v", cfg.Spread.Phi), simulator.SpreadSeries(deltaSeries), cfg.Spread.Phi},
	}

	results := make([]StrategyResult, 0, len(specs))
	for _, spec := range specs {
		engine := simulator.New(
			simulator.WithInitialCash(cfg.Engine.InitialCash),
			simulator.WithSeed(cfg.Engine.Seed),
		)

		start := time.Now()
		trace, err := engine.Run(simulator.RunInput{
			Mids:       s.Mids,
			Delta:      spec.delta,
			Phi:        spec.phi,
			Volatility: s.EWMAVol,
			AlphaAS:    alphaAS,
		})
		if err != nil {
			return nil, fmt.Errorf("strategy %q: %w", spec.name, err)
		}
		wall := time.Since(start)

		summary := metrics.Summarize(trace, metrics.BarsPerYearUSEquities)
		observability.RecordRun(spec.name, trace.Len(), summary.Trades, wall)

		log.Info().
			Str("strategy", spec.name).
			Str("run_id", trace.RunID).
			Int("bars", trace.Len()).
			Int64("trades", summary.Trades).
			Float64("total_pnl", summary.TotalPnL).
			Float64("sharpe", summary.SharpeRatio).
			Dur("wall_time", wall).
			Msg("strategy run complete")

		results = append(results, StrategyResult{Name: spec.name, Trace: trace, Summary: summary})
	}
	return results, nil
}

// Columns converts strategy results into report columns, baseline first.
func Columns(results []StrategyResult) []report.Column {
	cols := make([]report.Column, len(results))
	for i, r := range results {
		cols[i] = report.Column{Name: r.Name, Summary: r.Summary}
	}
	return cols
}

func meanOf(s *series.Series) float64 {
	if s.Len() == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < s.Len(); i++ {
		sum += s.At(i)
	}
	return sum / float64(s.Len())
}
