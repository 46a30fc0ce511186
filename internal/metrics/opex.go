package metrics

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/copilot/internal/model"
	"github.com/cleared-dev/copilot/internal/period"
)

// OpexBreakdown maps each operating-expense category present in a range to its
// total. Categories without rows have no entry.
type OpexBreakdown map[model.Category]decimal.Decimal

// Total sums all categories.
func (o OpexBreakdown) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range o {
		total = total.Add(v)
	}
	return total
}

// Categories returns the keys in lexical order.
func (o OpexBreakdown) Categories() []model.Category {
	cats := make([]model.Category, 0, len(o))
	for c := range o {
		cats = append(cats, c)
	}
	slices.Sort(cats)
	return cats
}

// OpexBreakdown totals actuals whose category starts with "Opex" over
// [start, end], per category.
func (e *Engine) OpexBreakdown(start, end period.Period) OpexBreakdown {
	out := make(OpexBreakdown)
	for _, r := range e.actuals() {
		if !r.Period.Within(start, end) || !isOpex(r) {
			continue
		}
		out[r.Category] = out[r.Category].Add(r.ReportingAmount)
	}
	return out
}
