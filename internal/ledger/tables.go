package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/copilot/internal/model"
	"github.com/cleared-dev/copilot/internal/period"
)

// Logical table names. Sheet and file names are matched case-insensitively.
const (
	TableActuals = "actuals"
	TableBudget  = "budget"
	TableCash    = "cash"
	TableFx      = "fx"
)

// Column names.
const (
	colMonth    = "month"
	colEntity   = "entity"
	colCategory = "account_category"
	colAmount   = "amount"
	colCurrency = "currency"
	colCash     = "cash_in_reporting_currency"
	colRate     = "rate_to_reporting_currency"
)

// Header lines written by WriteSheets and by `copilot init`.
var (
	PostingHeader = []string{colMonth, colEntity, colCategory, colAmount, colCurrency}
	CashHeader    = []string{colMonth, colEntity, colCash}
	FxHeader      = []string{colMonth, colCurrency, colRate}
)

// columnAliases maps legacy USD-specific headers onto canonical names.
var columnAliases = map[string]string{
	"cash_usd":    colCash,
	"rate_to_usd": colRate,
}

// Sheets holds raw records per table name; the first record of each table is
// its header.
type Sheets map[string][][]string

// TableNames returns the four required tables in load order.
func TableNames() []string {
	return []string{TableActuals, TableBudget, TableCash, TableFx}
}

// columns locates named columns in a table by header.
type columns struct {
	table string
	index map[string]int
}

func newColumns(table string, header []string, required []string) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	for _, r := range required {
		if _, ok := idx[r]; !ok {
			return columns{}, &DataLoadError{Table: table, Row: 1, Column: r, Err: ErrMissingColumn}
		}
	}
	return columns{table: table, index: idx}, nil
}

// get returns the trimmed cell for column name. Spreadsheet rows drop trailing
// empty cells, so short records read as blank.
func (c columns) get(rec []string, name string) string {
	i := c.index[name]
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func records(sheets Sheets, table string) ([][]string, error) {
	recs, ok := sheets[table]
	if !ok || len(recs) == 0 {
		return nil, &DataLoadError{Table: table, Err: ErrMissingTable}
	}
	return recs, nil
}

// ReadPostings decodes the actuals or budget table.
func ReadPostings(sheets Sheets, table string) ([]model.Posting, error) {
	recs, err := records(sheets, table)
	if err != nil {
		return nil, err
	}
	cols, err := newColumns(table, recs[0], PostingHeader)
	if err != nil {
		return nil, err
	}

	var rows []model.Posting
	for i, rec := range recs[1:] {
		if blankRecord(rec) {
			continue
		}
		row, err := unmarshalPosting(cols, rec)
		if err != nil {
			return nil, rowError(table, i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadCash decodes the cash table.
func ReadCash(sheets Sheets) ([]model.CashBalance, error) {
	recs, err := records(sheets, TableCash)
	if err != nil {
		return nil, err
	}
	cols, err := newColumns(TableCash, recs[0], CashHeader)
	if err != nil {
		return nil, err
	}

	var rows []model.CashBalance
	for i, rec := range recs[1:] {
		if blankRecord(rec) {
			continue
		}
		p, err := parsePeriod(cols, rec)
		if err != nil {
			return nil, rowError(TableCash, i+2, err)
		}
		amount, err := parseAmount(cols, rec, colCash)
		if err != nil {
			return nil, rowError(TableCash, i+2, err)
		}
		rows = append(rows, model.CashBalance{
			Period: p,
			Entity: cols.get(rec, colEntity),
			Amount: amount,
		})
	}
	return rows, nil
}

// ReadFx decodes the fx table. Two rows for the same (period, currency) with
// different rates are rejected: a join against them would double-count.
func ReadFx(sheets Sheets) ([]model.FxRate, error) {
	recs, err := records(sheets, TableFx)
	if err != nil {
		return nil, err
	}
	cols, err := newColumns(TableFx, recs[0], FxHeader)
	if err != nil {
		return nil, err
	}

	type key struct {
		p   period.Period
		cur string
	}
	seen := make(map[key]decimal.Decimal)

	var rows []model.FxRate
	for i, rec := range recs[1:] {
		if blankRecord(rec) {
			continue
		}
		p, err := parsePeriod(cols, rec)
		if err != nil {
			return nil, rowError(TableFx, i+2, err)
		}
		rate, err := parseAmount(cols, rec, colRate)
		if err != nil {
			return nil, rowError(TableFx, i+2, err)
		}
		cur := normalizeCurrency(cols.get(rec, colCurrency))

		k := key{p, cur}
		if prev, ok := seen[k]; ok {
			if !prev.Equal(rate) {
				return nil, &DataLoadError{
					Table:  TableFx,
					Row:    i + 2,
					Column: colRate,
					Err:    fmt.Errorf("conflicting rates for %s %s: %s and %s", cur, p, prev, rate),
				}
			}
			continue
		}
		seen[k] = rate
		rows = append(rows, model.FxRate{Period: p, Currency: cur, Rate: rate})
	}
	return rows, nil
}

func unmarshalPosting(cols columns, rec []string) (model.Posting, error) {
	p, err := parsePeriod(cols, rec)
	if err != nil {
		return model.Posting{}, err
	}
	amount, err := parseAmount(cols, rec, colAmount)
	if err != nil {
		return model.Posting{}, err
	}
	return model.Posting{
		Period:   p,
		Entity:   cols.get(rec, colEntity),
		Category: model.Category(cols.get(rec, colCategory)),
		Amount:   amount,
		Currency: normalizeCurrency(cols.get(rec, colCurrency)),
	}, nil
}

// cellError carries the column a row-level failure came from.
type cellError struct {
	column string
	err    error
}

func (e *cellError) Error() string { return e.err.Error() }
func (e *cellError) Unwrap() error { return e.err }

func rowError(table string, row int, err error) error {
	if ce, ok := err.(*cellError); ok {
		return &DataLoadError{Table: table, Row: row, Column: ce.column, Err: ce.err}
	}
	return &DataLoadError{Table: table, Row: row, Err: err}
}

func parsePeriod(cols columns, rec []string) (period.Period, error) {
	p, err := period.Parse(cols.get(rec, colMonth))
	if err != nil {
		return period.Period{}, &cellError{column: colMonth, err: err}
	}
	return p, nil
}

// parseAmount accepts thousands separators and accounting-style negatives
// such as "(1,200.00)". Blank cells are zero.
func parseAmount(cols columns, rec []string, col string) (decimal.Decimal, error) {
	raw := cols.get(rec, col)
	s := strings.ReplaceAll(raw, ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &cellError{column: col, err: fmt.Errorf("parsing %s %q: %w", col, raw, err)}
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

func normalizeCurrency(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
