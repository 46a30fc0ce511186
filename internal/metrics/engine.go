// Package metrics computes financial KPIs over an immutable ledger.
//
// Every operation is a pure read: rows are converted to the reporting currency
// on each call and aggregated with explicit guards for empty ranges, zero
// revenue and non-positive burn. No operation returns an error.
package metrics

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/copilot/internal/fx"
	"github.com/cleared-dev/copilot/internal/ledger"
	"github.com/cleared-dev/copilot/internal/model"
	"github.com/cleared-dev/copilot/internal/period"
)

// DefaultRunwayMonths is the trailing burn window used by CashRunway.
const DefaultRunwayMonths = 3

// DefaultReportingCurrency is used when Options leaves it empty.
const DefaultReportingCurrency = "USD"

// Options configures an Engine.
type Options struct {
	ReportingCurrency string
	Logger            *zerolog.Logger // nil disables logging
}

// Engine computes metrics over a Store.
type Engine struct {
	store    *ledger.Store
	rates    *fx.Table
	currency string
	log      zerolog.Logger
}

// New creates an Engine. The FX index is built once; normalized rows are not
// cached.
func New(store *ledger.Store, opts Options) *Engine {
	cur := opts.ReportingCurrency
	if cur == "" {
		cur = DefaultReportingCurrency
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Engine{
		store:    store,
		rates:    fx.NewTable(store.FX()),
		currency: cur,
		log:      log.With().Str("component", "metrics").Logger(),
	}
}

// ReportingCurrency returns the currency all results are expressed in.
func (e *Engine) ReportingCurrency() string {
	return e.currency
}

func (e *Engine) actuals() []model.NormalizedPosting {
	return e.normalize(ledger.TableActuals, e.store.Actuals())
}

func (e *Engine) budget() []model.NormalizedPosting {
	return e.normalize(ledger.TableBudget, e.store.Budget())
}

// normalize converts rows and reports every FX fallback. A missing rate for
// the reporting currency is expected; for any other currency it likely
// misstates the amount.
func (e *Engine) normalize(table string, rows []model.Posting) []model.NormalizedPosting {
	out := fx.ToReportingCurrency(rows, e.rates)
	for _, k := range fx.Fallbacks(out) {
		ev := e.log.Warn()
		if k.Currency == e.currency {
			ev = e.log.Debug()
		}
		ev.Str("table", table).
			Str("period", k.Period.String()).
			Str("currency", k.Currency).
			Msg("no fx rate, using 1.0")
	}
	return out
}

type rowFilter func(model.NormalizedPosting) bool

func isRevenue(r model.NormalizedPosting) bool { return r.Category == model.CategoryRevenue }
func isCOGS(r model.NormalizedPosting) bool    { return r.Category == model.CategoryCOGS }
func isOpex(r model.NormalizedPosting) bool    { return r.Category.IsOpex() }

func inRange(start, end period.Period) rowFilter {
	return func(r model.NormalizedPosting) bool { return r.Period.Within(start, end) }
}

func inPeriod(p period.Period) rowFilter {
	return func(r model.NormalizedPosting) bool { return r.Period == p }
}

// sum adds ReportingAmount over rows matching every filter.
func sum(rows []model.NormalizedPosting, filters ...rowFilter) decimal.Decimal {
	total := decimal.Zero
next:
	for _, r := range rows {
		for _, f := range filters {
			if !f(r) {
				continue next
			}
		}
		total = total.Add(r.ReportingAmount)
	}
	return total
}
