package marketdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/atlasmm/atlas/internal/series"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// maxRelativeSpread rejects quotes whose spread exceeds 1% of the mid;
// wider prints in TAQ data are almost always microstructure noise.
var maxRelativeSpread = decimal.NewFromFloat(0.01)

var two = decimal.NewFromInt(2)

// TickSet holds cleaned quote ticks as index-aligned columns.
// LogReturn[0] is NaN (no prior mid to difference against).
type TickSet struct {
	Time      []time.Time
	Bid       []float64
	Ask       []float64
	BidSize   []float64
	AskSize   []float64
	Mid       []float64
	LogReturn []float64
}

// Len returns the number of ticks.
func (ts *TickSet) Len() int { return len(ts.Mid) }

// MidSeries returns the mid-price column as a Series.
func (ts *TickSet) MidSeries() *series.Series {
	return series.MustNew(ts.Time, ts.Mid)
}

// LogReturnSeries returns the tick log returns, dropping the leading NaN.
func (ts *TickSet) LogReturnSeries() *series.Series {
	if ts.Len() == 0 {
		return series.MustNew(nil, nil)
	}
	return series.MustNew(ts.Time[1:], ts.LogReturn[1:])
}

// Bars holds resampled quote bars.
type Bars struct {
	Time      []time.Time
	Bid       []float64
	Ask       []float64
	Mid       []float64
	LogReturn []float64
}

// Len returns the number of bars.
func (b *Bars) Len() int { return len(b.Mid) }

// MidSeries returns the bar mid prices as a Series.
func (b *Bars) MidSeries() *series.Series {
	return series.MustNew(b.Time, b.Mid)
}

// requiredColumns are the TAQ quote columns the loader expects (after
// lowercasing the header).
var requiredColumns = []string{"date", "time_m", "bid", "bidsiz", "ask", "asksiz"}

// timestampLayouts cover WRDS exports with and without sub-second precision.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"20060102 15:04:05.999999999",
}

// LoadQuotes reads a TAQ-style quote CSV and returns a cleaned tick set:
// timestamps parsed, restricted to regular trading hours (09:30-16:00),
// non-positive and crossed quotes dropped, relative spreads above 1% of mid
// rejected, mid and log returns computed. Quote prices go through decimal
// arithmetic so the mid is exact before conversion to float64.
func LoadQuotes(path string) (*TickSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open quote file: %w", err)
	}
	defer f.Close()

	ts, err := ReadQuotes(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	log.Info().
		Str("path", path).
		Int("ticks", ts.Len()).
		Msg("quote data loaded")
	return ts, nil
}

// ReadQuotes parses TAQ quote CSV from r. See LoadQuotes for the cleaning
// rules applied.
func ReadQuotes(r io.Reader) (*TickSet, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing required column: %s", name)
		}
	}

	ts := &TickSet{}
	dropped := 0

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		t, err := parseTimestamp(rec[col["date"]], rec[col["time_m"]])
		if err != nil {
			dropped++
			continue
		}
		if !inRegularHours(t) {
			continue
		}

		bid, err1 := decimal.NewFromString(strings.TrimSpace(rec[col["bid"]]))
		ask, err2 := decimal.NewFromString(strings.TrimSpace(rec[col["ask"]]))
		if err1 != nil || err2 != nil {
			dropped++
			continue
		}

		// Drop bad quotes: non-positive sides or crossed markets.
		if !bid.IsPositive() || !ask.IsPositive() || ask.LessThan(bid) {
			dropped++
			continue
		}

		// Reject extreme spreads relative to mid.
		mid := bid.Add(ask).Div(two)
		spread := ask.Sub(bid)
		if spread.Div(mid).GreaterThanOrEqual(maxRelativeSpread) {
			dropped++
			continue
		}

		bidSize, _ := strconv.ParseFloat(strings.TrimSpace(rec[col["bidsiz"]]), 64)
		askSize, _ := strconv.ParseFloat(strings.TrimSpace(rec[col["asksiz"]]), 64)

		ts.Time = append(ts.Time, t)
		ts.Bid = append(ts.Bid, bid.InexactFloat64())
		ts.Ask = append(ts.Ask, ask.InexactFloat64())
		ts.BidSize = append(ts.BidSize, bidSize)
		ts.AskSize = append(ts.AskSize, askSize)
		ts.Mid = append(ts.Mid, mid.InexactFloat64())
	}

	sortByTime(ts)
	ts.LogReturn = computeLogReturns(ts.Mid)

	if dropped > 0 {
		log.Debug().Int("dropped", dropped).Msg("quote rows rejected during cleaning")
	}
	return ts, nil
}

// Resample reduces the tick set to fixed-interval bars using the last quote
// in each bucket. Empty buckets are dropped and log returns are recomputed
// over bar mids.
func (ts *TickSet) Resample(interval time.Duration) *Bars {
	b := &Bars{}
	n := ts.Len()
	for i := 0; i < n; i++ {
		bucket := ts.Time[i].Truncate(interval)
		if len(b.Time) > 0 && b.Time[len(b.Time)-1].Equal(bucket) {
			// Same bucket: keep the last quote.
			last := len(b.Time) - 1
			b.Bid[last] = ts.Bid[i]
			b.Ask[last] = ts.Ask[i]
			b.Mid[last] = ts.Mid[i]
			continue
		}
		b.Time = append(b.Time, bucket)
		b.Bid = append(b.Bid, ts.Bid[i])
		b.Ask = append(b.Ask, ts.Ask[i])
		b.Mid = append(b.Mid, ts.Mid[i])
	}
	b.LogReturn = computeLogReturns(b.Mid)

	log.Debug().
		Dur("interval", interval).
		Int("ticks", n).
		Int("bars", b.Len()).
		Msg("resampled tick data")
	return b
}

func parseTimestamp(date, timeOfDay string) (time.Time, error) {
	raw := strings.TrimSpace(date) + " " + strings.TrimSpace(timeOfDay)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}

// inRegularHours keeps 09:30:00.000000000 through 15:59:59.999999999.
func inRegularHours(t time.Time) bool {
	h, m := t.Hour(), t.Minute()
	if h < 9 || (h == 9 && m < 30) {
		return false
	}
	return h < 16
}

func sortByTime(ts *TickSet) {
	n := ts.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return ts.Time[order[i]].Before(ts.Time[order[j]])
	})

	reorderTimes(ts.Time, order)
	for _, colRef := range []*[]float64{&ts.Bid, &ts.Ask, &ts.BidSize, &ts.AskSize, &ts.Mid} {
		reorderFloats(*colRef, order)
	}
}

func reorderTimes(xs []time.Time, order []int) {
	out := make([]time.Time, len(xs))
	for i, j := range order {
		out[i] = xs[j]
	}
	copy(xs, out)
}

func reorderFloats(xs []float64, order []int) {
	out := make([]float64, len(xs))
	for i, j := range order {
		out[i] = xs[j]
	}
	copy(xs, out)
}

func computeLogReturns(mids []float64) []float64 {
	returns := make([]float64, len(mids))
	if len(mids) > 0 {
		returns[0] = math.NaN()
	}
	for i := 1; i < len(mids); i++ {
		returns[i] = math.Log(mids[i] / mids[i-1])
	}
	return returns
}
