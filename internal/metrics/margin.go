package metrics

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/copilot/internal/period"
)

var hundred = decimal.NewFromInt(100)

// PeriodValue is one point of a monthly series.
type PeriodValue struct {
	Period period.Period
	Value  decimal.Decimal
}

// GrossMargin is a monthly gross-margin series, ascending by period.
type GrossMargin []PeriodValue

// Map returns the series keyed by canonical period string.
func (g GrossMargin) Map() map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(g))
	for _, pv := range g {
		m[pv.Period.String()] = pv.Value
	}
	return m
}

// GrossMarginPct returns (revenue - cogs) / revenue * 100, rounded to two
// places, for every actuals period in [start, end]. A period with zero
// revenue reports 0.
func (e *Engine) GrossMarginPct(start, end period.Period) GrossMargin {
	rows := e.actuals()

	var periods []period.Period
	seen := make(map[period.Period]bool)
	for _, r := range rows {
		if r.Period.Within(start, end) && !seen[r.Period] {
			seen[r.Period] = true
			periods = append(periods, r.Period)
		}
	}
	slices.SortFunc(periods, period.Period.Compare)

	out := make(GrossMargin, 0, len(periods))
	for _, p := range periods {
		rev := sum(rows, inPeriod(p), isRevenue)
		cogs := sum(rows, inPeriod(p), isCOGS)
		out = append(out, PeriodValue{Period: p, Value: marginPct(rev, cogs)})
	}
	return out
}

func marginPct(rev, cogs decimal.Decimal) decimal.Decimal {
	if rev.IsZero() {
		return decimal.Zero
	}
	return rev.Sub(cogs).Mul(hundred).Div(rev).Round(2)
}
