// Package fx converts ledger postings into the reporting currency.
package fx

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/copilot/internal/model"
	"github.com/cleared-dev/copilot/internal/period"
)

// DefaultRate is applied when no FX row matches a posting's (period, currency).
var DefaultRate = decimal.NewFromInt(1)

// Key identifies an FX rate.
type Key struct {
	Period   period.Period
	Currency string
}

func (k Key) String() string {
	return k.Currency + "@" + k.Period.String()
}

// Table indexes FX rates by (period, currency).
type Table struct {
	rates map[Key]decimal.Decimal
}

// NewTable builds a lookup table. Later rows win over earlier ones with the
// same key; the ledger loader already rejects conflicting duplicates.
func NewTable(rates []model.FxRate) *Table {
	m := make(map[Key]decimal.Decimal, len(rates))
	for _, r := range rates {
		m[Key{r.Period, r.Currency}] = r.Rate
	}
	return &Table{rates: m}
}

// Rate returns the rate for (p, currency) and whether one was found.
func (t *Table) Rate(p period.Period, currency string) (decimal.Decimal, bool) {
	r, ok := t.rates[Key{p, currency}]
	return r, ok
}

// ToReportingCurrency left-joins rows against the table. Unmatched rows use
// DefaultRate and are marked RateDefaulted. The input is not modified.
func ToReportingCurrency(rows []model.Posting, t *Table) []model.NormalizedPosting {
	out := make([]model.NormalizedPosting, len(rows))
	for i, row := range rows {
		rate, ok := t.Rate(row.Period, row.Currency)
		if !ok {
			rate = DefaultRate
		}
		out[i] = model.NormalizedPosting{
			Posting:         row,
			Rate:            rate,
			ReportingAmount: row.Amount.Mul(rate),
			RateDefaulted:   !ok,
		}
	}
	return out
}

// Fallbacks returns the distinct keys that fell back to DefaultRate, ordered
// by period then currency.
func Fallbacks(rows []model.NormalizedPosting) []Key {
	seen := make(map[Key]bool)
	var keys []Key
	for _, row := range rows {
		if !row.RateDefaulted {
			continue
		}
		k := Key{row.Period, row.Currency}
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b Key) int {
		if c := a.Period.Compare(b.Period); c != 0 {
			return c
		}
		return strings.Compare(a.Currency, b.Currency)
	})
	return keys
}
