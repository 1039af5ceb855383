package simulator

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/atlasmm/atlas/internal/series"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	// ErrConfiguration covers missing or inconsistent run inputs: no mid
	// series, or an adverse-selection coefficient without a volatility input.
	ErrConfiguration = errors.New("simulator: invalid configuration")

	// ErrAlignment covers spread or volatility series whose index does not
	// match the mid series exactly.
	ErrAlignment = errors.New("simulator: misaligned input")

	// ErrInputShape covers a value supplied in the wrong shape where a
	// scalar-or-series was expected.
	ErrInputShape = errors.New("simulator: unexpected input shape")
)

// ---------------------------------------------------------------------------
// Spread input: constant or per-bar
// ---------------------------------------------------------------------------

// Spread is the half-spread input to a run: either a single constant applied
// to every bar, or a per-bar series index-aligned with the mid series.
// The zero value is invalid and rejected at run time.
type Spread struct {
	scalar   float64
	perBar   *series.Series
	isSeries bool
	set      bool
}

// ConstantSpread returns a Spread that applies the same half-spread to every bar.
func ConstantSpread(delta float64) Spread {
	return Spread{scalar: delta, set: true}
}

// SpreadSeries returns a Spread driven by a per-bar series. The series index
// must match the mid series exactly; this is checked when the run starts.
func SpreadSeries(s *series.Series) Spread {
	return Spread{perBar: s, isSeries: true, set: true}
}

// resolve materializes per-bar delta values aligned with mids.
func (sp Spread) resolve(mids *series.Series) ([]float64, error) {
	if !sp.set {
		return nil, fmt.Errorf("%w: spread input not set (use ConstantSpread or SpreadSeries)", ErrInputShape)
	}
	n := mids.Len()
	if !sp.isSeries {
		deltas := make([]float64, n)
		for i := range deltas {
			deltas[i] = sp.scalar
		}
		return deltas, nil
	}
	if sp.perBar == nil {
		return nil, fmt.Errorf("%w: nil spread series", ErrInputShape)
	}
	if err := sp.perBar.AlignedWith(mids); err != nil {
		return nil, fmt.Errorf("%w: delta series vs mids: %v", ErrAlignment, err)
	}
	return sp.perBar.Values(), nil
}

// ---------------------------------------------------------------------------
// Engine
// ---------------------------------------------------------------------------

// Engine runs market-making simulations over a mid-price path. It owns the
// pseudo-random source used for probabilistic fills; two engines constructed
// with the same seed replay identical draws, so comparing strategies on one
// path requires a fresh engine (or a fresh seed) per strategy. All run state
// (inventory, cash, trade count) is created inside Run and discarded with the
// returned trace; the only state that survives across runs is the random
// source, which advances with every probabilistic draw.
type Engine struct {
	initialCash float64
	rng         *rand.Rand
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	initialCash float64
	seed        int64
	seeded      bool
}

// WithInitialCash sets the starting cash balance for every run.
func WithInitialCash(cash float64) Option {
	return func(c *engineConfig) { c.initialCash = cash }
}

// WithSeed fixes the random source so probabilistic fills are reproducible.
// Without it the engine seeds from the wall clock and runs are not
// reproducible.
func WithSeed(seed int64) Option {
	return func(c *engineConfig) {
		c.seed = seed
		c.seeded = true
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	cfg := engineConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	seed := cfg.seed
	if !cfg.seeded {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		initialCash: cfg.initialCash,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// ---------------------------------------------------------------------------
// Run input and trace
// ---------------------------------------------------------------------------

// RunInput bundles everything a single simulation consumes.
type RunInput struct {
	// Mids is the mid-price path. Required.
	Mids *series.Series

	// Delta is the half-spread, constant or per-bar.
	Delta Spread

	// Phi is the inventory-skew coefficient: both quotes shift down by
	// phi * inventory, biasing the engine toward offloading a position.
	Phi float64

	// Volatility is the per-bar forecast. When nil, fills are deterministic:
	// any crossed quote fills with certainty. When supplied it must align
	// with Mids exactly and fills become probabilistic.
	Volatility *series.Series

	// AlphaAS scales the adverse-selection charge per fill. Requires
	// Volatility when positive.
	AlphaAS float64

	// Fill overrides the fill-probability calibration. Zero value means
	// DefaultFillModel. Only consulted in probabilistic mode.
	Fill FillModel
}

// Trace is the engine's sole output: one row per input bar, index-aligned
// with the mid series. Columns are parallel slices rather than per-bar
// structs; the run is a strict left-to-right scan and downstream consumers
// (metrics, reporting) read whole columns.
type Trace struct {
	RunID string

	Index          []time.Time
	Mid            []float64
	Bid            []float64
	Ask            []float64
	Inventory      []int64
	Cash           []float64
	PortfolioValue []float64
	TradeCount     []int64
}

// Len returns the number of bars in the trace.
func (t *Trace) Len() int { return len(t.Mid) }

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

// Run executes one simulation and returns the full bar-by-bar trace.
//
// Per bar t (for t < n-1; the final bar never trades):
//  1. base_bid = mid[t] - delta[t], base_ask = mid[t] + delta[t]
//  2. skew = phi * inventory (inventory before this bar's decision)
//  3. bid = base_bid - skew, ask = base_ask - skew
//  4. buy check:  next_mid <= bid -> fill with probability p (1 when
//     volatility is nil): inventory++, cash -= bid, minus adverse selection
//  5. sell check: next_mid >= ask -> symmetric: inventory--, cash += ask,
//     minus adverse selection
//
// The two checks are evaluated independently every bar; with degenerate
// skew/delta geometry both can fire in the same bar, and the engine does not
// special-case that. Quote sanity (ask > bid) is the quoting policy's job
// before the series gets here.
//
// All validation happens before any state mutates: the call either returns a
// complete trace or an error and nothing else.
func (e *Engine) Run(in RunInput) (*Trace, error) {
	if in.Mids == nil {
		return nil, fmt.Errorf("%w: mid series is required", ErrConfiguration)
	}
	n := in.Mids.Len()

	deltas, err := in.Delta.resolve(in.Mids)
	if err != nil {
		return nil, err
	}

	var vols []float64
	if in.Volatility != nil {
		if err := in.Volatility.AlignedWith(in.Mids); err != nil {
			return nil, fmt.Errorf("%w: volatility series vs mids: %v", ErrAlignment, err)
		}
		vols = in.Volatility.Values()
	}
	if in.AlphaAS > 0 && vols == nil {
		return nil, fmt.Errorf("%w: alpha_as > 0 requires a volatility series to scale adverse selection", ErrConfiguration)
	}

	fill := in.Fill
	if fill == (FillModel{}) {
		fill = DefaultFillModel()
	}

	runID := uuid.New().String()
	mids := in.Mids.Values()

	tr := &Trace{
		RunID:          runID,
		Index:          in.Mids.Index(),
		Mid:            mids,
		Bid:            make([]float64, n),
		Ask:            make([]float64, n),
		Inventory:      make([]int64, n),
		Cash:           make([]float64, n),
		PortfolioValue: make([]float64, n),
		TradeCount:     make([]int64, n),
	}

	var inventory int64
	cash := e.initialCash
	var tradeCount int64

	for t := 0; t < n; t++ {
		skew := in.Phi * float64(inventory)
		bid := mids[t] - deltas[t] - skew
		ask := mids[t] + deltas[t] - skew

		if t < n-1 {
			nextMid := mids[t+1]

			if nextMid <= bid {
				if e.accept(deltas[t], vols, t, fill) {
					inventory++
					cash -= bid
					if in.AlphaAS > 0 {
						cash -= AdverseSelectionPenalty(mids[t], vols[t], in.AlphaAS)
					}
					tradeCount++
				}
			}

			if nextMid >= ask {
				if e.accept(deltas[t], vols, t, fill) {
					inventory--
					cash += ask
					if in.AlphaAS > 0 {
						cash -= AdverseSelectionPenalty(mids[t], vols[t], in.AlphaAS)
					}
					tradeCount++
				}
			}
		}

		tr.Bid[t] = bid
		tr.Ask[t] = ask
		tr.Inventory[t] = inventory
		tr.Cash[t] = cash
		tr.PortfolioValue[t] = cash + float64(inventory)*mids[t]
		tr.TradeCount[t] = tradeCount
	}

	log.Debug().
		Str("run_id", runID).
		Int("bars", n).
		Int64("trades", tradeCount).
		Int64("final_inventory", inventory).
		Float64("final_cash", cash).
		Bool("probabilistic", vols != nil).
		Msg("simulation run complete")

	return tr, nil
}

// accept resolves one crossing into a fill decision. Deterministic mode
// (no volatility input) accepts every crossing; probabilistic mode draws
// against the fill model.
func (e *Engine) accept(delta float64, vols []float64, t int, fill FillModel) bool {
	if vols == nil {
		return true
	}
	return e.rng.Float64() < fill.Probability(delta, vols[t])
}
