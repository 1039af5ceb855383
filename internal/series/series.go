package series

import (
	"errors"
	"fmt"
	"time"
)

// ErrMisaligned is returned when two series that must share an index do not
// match exactly: different lengths, different timestamps, or different order.
// Alignment is all-or-nothing; there is no interpolation or partial overlap.
var ErrMisaligned = errors.New("series index misaligned")

// Series is a column of float64 values aligned to an ordered timestamp index.
// Index and values are stored as parallel slices; the index must be
// monotonically non-decreasing (tick data may carry duplicate timestamps).
// A Series is immutable once constructed.
type Series struct {
	index  []time.Time
	values []float64
}

// New builds a Series from parallel index/value slices. The slices are
// copied. The index must be ordered and the same length as values.
func New(index []time.Time, values []float64) (*Series, error) {
	if len(index) != len(values) {
		return nil, fmt.Errorf("series: index length %d != values length %d", len(index), len(values))
	}
	for i := 1; i < len(index); i++ {
		if index[i].Before(index[i-1]) {
			return nil, fmt.Errorf("series: index out of order at position %d (%s -> %s)",
				i, index[i-1].Format(time.RFC3339Nano), index[i].Format(time.RFC3339Nano))
		}
	}
	idx := make([]time.Time, len(index))
	vals := make([]float64, len(values))
	copy(idx, index)
	copy(vals, values)
	return &Series{index: idx, values: vals}, nil
}

// MustNew is New but panics on error. For tests and literals.
func MustNew(index []time.Time, values []float64) *Series {
	s, err := New(index, values)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of entries.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// At returns the value at position i.
func (s *Series) At(i int) float64 { return s.values[i] }

// TimeAt returns the timestamp at position i.
func (s *Series) TimeAt(i int) time.Time { return s.index[i] }

// Index returns a copy of the timestamp index.
func (s *Series) Index() []time.Time {
	out := make([]time.Time, len(s.index))
	copy(out, s.index)
	return out
}

// Values returns a copy of the value column.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// AlignedWith reports whether s shares an identical index with other.
// Both length and every timestamp (including order) must match exactly.
func (s *Series) AlignedWith(other *Series) error {
	if s.Len() != other.Len() {
		return fmt.Errorf("%w: length %d vs %d", ErrMisaligned, s.Len(), other.Len())
	}
	for i := range s.index {
		if !s.index[i].Equal(other.index[i]) {
			return fmt.Errorf("%w: index differs at position %d (%s vs %s)",
				ErrMisaligned, i,
				s.index[i].Format(time.RFC3339Nano),
				other.index[i].Format(time.RFC3339Nano))
		}
	}
	return nil
}

// ReindexFFill projects the series onto a new index, forward-filling each
// target timestamp with the latest value at or before it. Targets before the
// first observation take fallback. This is an explicit projection used when
// preparing inputs; the simulation engine itself never interpolates.
func (s *Series) ReindexFFill(index []time.Time, fallback float64) *Series {
	vals := make([]float64, len(index))
	j := 0
	last := fallback
	seen := false
	for i, target := range index {
		for j < s.Len() && !s.index[j].After(target) {
			last = s.values[j]
			seen = true
			j++
		}
		if seen {
			vals[i] = last
		} else {
			vals[i] = fallback
		}
	}
	idx := make([]time.Time, len(index))
	copy(idx, index)
	return &Series{index: idx, values: vals}
}

// Map returns a new Series with fn applied to every value, same index.
func (s *Series) Map(fn func(float64) float64) *Series {
	vals := make([]float64, len(s.values))
	for i, v := range s.values {
		vals[i] = fn(v)
	}
	idx := make([]time.Time, len(s.index))
	copy(idx, s.index)
	return &Series{index: idx, values: vals}
}
