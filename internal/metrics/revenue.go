package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/copilot/internal/period"
)

// Variance compares actual against budgeted revenue.
type Variance struct {
	Variance decimal.Decimal // Actual - Budget
	Actual   decimal.Decimal
	Budget   decimal.Decimal
}

// RevenueVariance sums Revenue over [start, end] in the actuals and budget
// tables. An inverted or empty range yields all zeros.
func (e *Engine) RevenueVariance(start, end period.Period) Variance {
	actual := sum(e.actuals(), inRange(start, end), isRevenue)
	budget := sum(e.budget(), inRange(start, end), isRevenue)
	return Variance{
		Variance: actual.Sub(budget),
		Actual:   actual,
		Budget:   budget,
	}
}
