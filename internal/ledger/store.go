package ledger

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cleared-dev/copilot/internal/model"
	"github.com/cleared-dev/copilot/internal/period"
)

// Store holds the four ledger tables. It is built once and never mutated, so
// it is safe for concurrent readers. Accessors return copies.
type Store struct {
	actuals []model.Posting
	budget  []model.Posting
	cash    []model.CashBalance
	fx      []model.FxRate
}

// NewStore creates a Store from already-normalized rows.
func NewStore(actuals, budget []model.Posting, cash []model.CashBalance, fx []model.FxRate) *Store {
	return &Store{
		actuals: slices.Clone(actuals),
		budget:  slices.Clone(budget),
		cash:    slices.Clone(cash),
		fx:      slices.Clone(fx),
	}
}

// Load reads a ledger source and returns a Store. An empty format is inferred
// from path. Every failure, including an absent or unreadable source, is
// reported as *DataLoadError.
func Load(path, format string) (*Store, error) {
	if format == "" {
		f, err := InferFormat(path)
		if err != nil {
			return nil, sourceError(err)
		}
		format = f
	}

	rd := DefaultRegistry().Get(format)
	if rd == nil {
		return nil, sourceError(fmt.Errorf("unknown ledger format %q", format))
	}

	sheets, err := rd.Read(path)
	if err != nil {
		return nil, sourceError(err)
	}
	return FromSheets(sheets)
}

// sourceError wraps a failure that concerns the whole source.
func sourceError(err error) error {
	var dle *DataLoadError
	if errors.As(err, &dle) {
		return err
	}
	return &DataLoadError{Err: err}
}

// FromSheets decodes raw tables into a Store.
func FromSheets(sheets Sheets) (*Store, error) {
	actuals, err := ReadPostings(sheets, TableActuals)
	if err != nil {
		return nil, err
	}
	budget, err := ReadPostings(sheets, TableBudget)
	if err != nil {
		return nil, err
	}
	cash, err := ReadCash(sheets)
	if err != nil {
		return nil, err
	}
	fx, err := ReadFx(sheets)
	if err != nil {
		return nil, err
	}
	return &Store{actuals: actuals, budget: budget, cash: cash, fx: fx}, nil
}

// Actuals returns the actual postings.
func (s *Store) Actuals() []model.Posting {
	return slices.Clone(s.actuals)
}

// Budget returns the budgeted postings.
func (s *Store) Budget() []model.Posting {
	return slices.Clone(s.budget)
}

// Cash returns the cash balances.
func (s *Store) Cash() []model.CashBalance {
	return slices.Clone(s.cash)
}

// FX returns the FX rates.
func (s *Store) FX() []model.FxRate {
	return slices.Clone(s.fx)
}

// Summary describes the extent of a loaded ledger.
type Summary struct {
	Actuals, Budget, Cash, FX int
	First, Last               period.Period // span of actuals periods
	LatestCash                period.Period
	Currencies                []string // distinct posting currencies, sorted
}

// Summary reports row counts and period coverage.
func (s *Store) Summary() Summary {
	sum := Summary{
		Actuals: len(s.actuals),
		Budget:  len(s.budget),
		Cash:    len(s.cash),
		FX:      len(s.fx),
	}

	curs := make(map[string]bool)
	for i, row := range s.actuals {
		if i == 0 || row.Period.Before(sum.First) {
			sum.First = row.Period
		}
		if i == 0 || row.Period.After(sum.Last) {
			sum.Last = row.Period
		}
		curs[row.Currency] = true
	}
	for _, row := range s.budget {
		curs[row.Currency] = true
	}
	for _, row := range s.cash {
		if row.Period.After(sum.LatestCash) {
			sum.LatestCash = row.Period
		}
	}
	for c := range curs {
		sum.Currencies = append(sum.Currencies, c)
	}
	slices.Sort(sum.Currencies)
	return sum
}
