package model

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/copilot/internal/period"
)

// Posting is one row of the actuals or budget table.
type Posting struct {
	Period   period.Period
	Entity   string
	Category Category
	Amount   decimal.Decimal // in Currency
	Currency string
}

// CashBalance is one row of the cash table. Amount is already expressed in
// the reporting currency.
type CashBalance struct {
	Period period.Period
	Entity string
	Amount decimal.Decimal
}

// FxRate converts one unit of Currency into the reporting currency for Period.
type FxRate struct {
	Period   period.Period
	Currency string
	Rate     decimal.Decimal
}

// NormalizedPosting is a Posting converted into the reporting currency.
type NormalizedPosting struct {
	Posting
	Rate            decimal.Decimal
	ReportingAmount decimal.Decimal
	RateDefaulted   bool // no FX row matched; Rate is 1
}
