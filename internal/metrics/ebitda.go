package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/copilot/internal/period"
)

// EBITDA is the proxy Revenue - COGS - Opex with its components.
type EBITDA struct {
	Value   decimal.Decimal
	Revenue decimal.Decimal
	COGS    decimal.Decimal
	Opex    decimal.Decimal
}

// EBITDAProxy computes the proxy over actuals in [start, end].
func (e *Engine) EBITDAProxy(start, end period.Period) EBITDA {
	rows := e.actuals()
	rev := sum(rows, inRange(start, end), isRevenue)
	cogs := sum(rows, inRange(start, end), isCOGS)
	opex := sum(rows, inRange(start, end), isOpex)
	return EBITDA{
		Value:   rev.Sub(cogs).Sub(opex),
		Revenue: rev,
		COGS:    cogs,
		Opex:    opex,
	}
}
