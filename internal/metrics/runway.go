package metrics

import (
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/copilot/internal/period"
)

// Runway is the number of months the cash balance lasts at the average net
// burn of a trailing window.
type Runway struct {
	Months      float64 // +Inf when AvgBurn <= 0
	AvgBurn     decimal.Decimal
	CashBalance decimal.Decimal
	AsOf        period.Period
	Burns       []PeriodValue // net burn per window period, ascending
}

// Infinite reports whether the business is not burning cash over the window.
func (r Runway) Infinite() bool {
	return math.IsInf(r.Months, 1)
}

// Window returns the periods the average burn was taken over.
func (r Runway) Window() []period.Period {
	w := make([]period.Period, len(r.Burns))
	for i, b := range r.Burns {
		w[i] = b.Period
	}
	return w
}

// CashRunway divides the cash balance at asOf by the average net burn
// (COGS + Opex - Revenue) of the last lastN actuals periods strictly before
// asOf. A zero asOf selects the latest cash period; lastN <= 0 selects
// DefaultRunwayMonths. Fewer periods than lastN are used when that is all
// there is. Zero or negative average burn yields +Inf.
func (e *Engine) CashRunway(asOf period.Period, lastN int) Runway {
	if lastN <= 0 {
		lastN = DefaultRunwayMonths
	}

	cash := e.store.Cash()
	if asOf.IsZero() {
		for _, c := range cash {
			if c.Period.After(asOf) {
				asOf = c.Period
			}
		}
	}

	balance := decimal.Zero
	for _, c := range cash {
		if c.Period == asOf {
			balance = balance.Add(c.Amount)
		}
	}

	rows := e.actuals()
	var earlier []period.Period
	seen := make(map[period.Period]bool)
	for _, r := range rows {
		if r.Period.Before(asOf) && !seen[r.Period] {
			seen[r.Period] = true
			earlier = append(earlier, r.Period)
		}
	}
	slices.SortFunc(earlier, period.Period.Compare)
	if len(earlier) > lastN {
		earlier = earlier[len(earlier)-lastN:]
	}

	burns := make([]PeriodValue, 0, len(earlier))
	total := decimal.Zero
	for _, p := range earlier {
		rev := sum(rows, inPeriod(p), isRevenue)
		cogs := sum(rows, inPeriod(p), isCOGS)
		opex := sum(rows, inPeriod(p), isOpex)
		burn := cogs.Add(opex).Sub(rev)
		burns = append(burns, PeriodValue{Period: p, Value: burn})
		total = total.Add(burn)
	}

	avg := decimal.Zero
	if len(burns) > 0 {
		avg = total.Div(decimal.NewFromInt(int64(len(burns))))
	}

	months := math.Inf(1)
	if avg.IsPositive() {
		months = balance.Div(avg).InexactFloat64()
	}

	return Runway{
		Months:      months,
		AvgBurn:     avg,
		CashBalance: balance,
		AsOf:        asOf,
		Burns:       burns,
	}
}
