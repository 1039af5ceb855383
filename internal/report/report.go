// Package report renders side-by-side strategy comparisons for terminal
// output. The first column is treated as the baseline; subsequent columns
// carry percent deltas against it.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/atlasmm/atlas/internal/metrics"
)

// Column is one strategy's metrics under a display name.
type Column struct {
	Name    string
	Summary metrics.Summary
}

const (
	labelWidth = 25
	colWidth   = 18
)

// row is one metric line: how to read it out of a Summary and how many
// decimals to print.
type row struct {
	label    string
	decimals int
	integer  bool
	value    func(metrics.Summary) float64
}

var rows = []row{
	{"trades", 0, true, func(s metrics.Summary) float64 { return float64(s.Trades) }},
	{"total_pnl", 4, false, func(s metrics.Summary) float64 { return s.TotalPnL }},
	{"mean_pnl_per_bar", 6, false, func(s metrics.Summary) float64 { return s.MeanPnLPerBar }},
	{"std_pnl_per_bar", 6, false, func(s metrics.Summary) float64 { return s.StdPnLPerBar }},
	{"sharpe_ratio", 4, false, func(s metrics.Summary) float64 { return s.SharpeRatio }},
	{"inventory_variance", 4, false, func(s metrics.Summary) float64 { return s.InventoryVariance }},
	{"max_abs_inventory", 0, true, func(s metrics.Summary) float64 { return float64(s.MaxAbsInventory) }},
	{"mean_abs_inventory", 2, false, func(s metrics.Summary) float64 { return s.MeanAbsInventory }},
	{"max_drawdown", 4, false, func(s metrics.Summary) float64 { return s.MaxDrawdown }},
}

// WriteComparison writes a fixed-width comparison table for any number of
// strategies. Percent deltas vs the first (baseline) column are appended to
// every later column where the baseline value is non-zero.
func WriteComparison(w io.Writer, title string, cols []Column) {
	if len(cols) == 0 {
		return
	}

	width := labelWidth + colWidth*len(cols)
	line := strings.Repeat("=", width)

	fmt.Fprintln(w)
	fmt.Fprintln(w, line)
	if title != "" {
		fmt.Fprintln(w, title)
		fmt.Fprintln(w, line)
	}

	header := fmt.Sprintf("%-*s", labelWidth, "METRIC")
	for _, c := range cols {
		header += fmt.Sprintf("%*s", colWidth, truncate(c.Name, colWidth-1))
	}
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, line)

	base := cols[0].Summary
	for _, r := range rows {
		out := fmt.Sprintf("  %-*s", labelWidth-2, r.label)
		baseVal := r.value(base)
		for i, c := range cols {
			v := r.value(c.Summary)
			out += fmt.Sprintf("%*s", colWidth, formatValue(v, r))
			if i > 0 && !r.integer && baseVal != 0 {
				diffPct := (v - baseVal) / abs(baseVal) * 100
				out += fmt.Sprintf(" (%+.1f%%)", diffPct)
			}
		}
		fmt.Fprintln(w, out)
	}
	fmt.Fprintln(w, line)
}

func formatValue(v float64, r row) string {
	if r.integer {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.*f", r.decimals, v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
