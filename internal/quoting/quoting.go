package quoting

import (
	"fmt"
	"time"

	"github.com/atlasmm/atlas/internal/series"
)

// Quotes holds per-bar bid/ask quotes as index-aligned columns.
type Quotes struct {
	Index   []time.Time
	Bid     []float64
	Ask     []float64
	Delta   []float64
	InvSkew []float64 // populated by ApplyInventorySkew
}

// Len returns the number of quoted bars.
func (q *Quotes) Len() int { return len(q.Bid) }

// ComputeSpread maps a volatility forecast to a per-bar half-spread:
//
//	delta_t = k0 + k1 * sigma_t
//
// clipped below at minSpread.
func ComputeSpread(sigmaHat *series.Series, k0, k1, minSpread float64) *series.Series {
	return sigmaHat.Map(func(v float64) float64 {
		d := k0 + k1*v
		if d < minSpread {
			return minSpread
		}
		return d
	})
}

// MakeQuotes builds symmetric quotes around the mid: bid = mid - delta,
// ask = mid + delta. The delta series must share the mid index exactly.
func MakeQuotes(mid, delta *series.Series) (*Quotes, error) {
	if err := delta.AlignedWith(mid); err != nil {
		return nil, fmt.Errorf("quoting: delta series vs mids: %w", err)
	}
	n := mid.Len()
	q := &Quotes{
		Index: mid.Index(),
		Bid:   make([]float64, n),
		Ask:   make([]float64, n),
		Delta: delta.Values(),
	}
	for i := 0; i < n; i++ {
		m := mid.At(i)
		q.Bid[i] = m - q.Delta[i]
		q.Ask[i] = m + q.Delta[i]
	}
	return q, nil
}

// ApplyInventorySkew shifts both sides of each quote down by phi * I_t to
// bias the desk toward offloading its position: long inventory lowers both
// quotes, short inventory raises them. When enforceNoCross is true the ask is
// raised where necessary so ask >= bid + minSpread after the shift; this is
// the only place quote geometry is enforced -- the simulation engine takes
// quotes as given.
//
// The inventory series must share the quote index exactly. A new Quotes is
// returned; the input is not mutated.
func ApplyInventorySkew(q *Quotes, inventory *series.Series, phi float64, enforceNoCross bool, minSpread float64) (*Quotes, error) {
	n := q.Len()
	if inventory.Len() != n {
		return nil, fmt.Errorf("quoting: inventory series vs quotes: %w: length %d vs %d",
			series.ErrMisaligned, inventory.Len(), n)
	}
	for i := 0; i < n; i++ {
		if !inventory.TimeAt(i).Equal(q.Index[i]) {
			return nil, fmt.Errorf("quoting: inventory series vs quotes: %w: index differs at position %d",
				series.ErrMisaligned, i)
		}
	}

	out := &Quotes{
		Index:   append([]time.Time(nil), q.Index...),
		Bid:     make([]float64, n),
		Ask:     make([]float64, n),
		Delta:   append([]float64(nil), q.Delta...),
		InvSkew: make([]float64, n),
	}

	for i := 0; i < n; i++ {
		skew := phi * inventory.At(i)
		out.InvSkew[i] = skew
		out.Bid[i] = q.Bid[i] - skew
		out.Ask[i] = q.Ask[i] - skew
		if enforceNoCross {
			if floor := out.Bid[i] + minSpread; out.Ask[i] < floor {
				out.Ask[i] = floor
			}
		}
	}
	return out, nil
}
