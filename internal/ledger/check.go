package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cleared-dev/copilot/internal/model"
	"github.com/cleared-dev/copilot/internal/period"
)

// IssueKind classifies a ledger check finding.
type IssueKind string

const (
	// IssueMissingRate: a non-reporting currency has no FX row for a period it
	// is posted in. Conversion will fall back to a rate of 1.0.
	IssueMissingRate IssueKind = "missing-fx-rate"
	// IssueUnknownCategory: a category outside the fixed enumeration.
	IssueUnknownCategory IssueKind = "unknown-category"
	// IssueNoBurnHistory: a cash period has no earlier actuals to derive burn from.
	IssueNoBurnHistory IssueKind = "no-burn-history"
)

// Issue is one advisory finding. Issues never block loading.
type Issue struct {
	Kind        IssueKind
	Table       string
	Description string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s [%s]: %s", i.Kind, i.Table, i.Description)
}

// Check audits a loaded Store for data that the metrics would silently absorb.
func Check(s *Store, reportingCurrency string) []Issue {
	var issues []Issue

	type rateKey struct {
		p   period.Period
		cur string
	}
	rates := make(map[rateKey]bool, len(s.fx))
	for _, r := range s.fx {
		rates[rateKey{r.Period, r.Currency}] = true
	}

	tables := []struct {
		name string
		rows []model.Posting
	}{
		{TableActuals, s.actuals},
		{TableBudget, s.budget},
	}
	for _, t := range tables {
		missing := make(map[rateKey]bool)
		unknown := make(map[model.Category]bool)
		for _, row := range t.rows {
			k := rateKey{row.Period, row.Currency}
			if row.Currency != reportingCurrency && !rates[k] {
				missing[k] = true
			}
			if !row.Category.Known() {
				unknown[row.Category] = true
			}
		}

		keys := make([]rateKey, 0, len(missing))
		for k := range missing {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, func(a, b rateKey) int {
			if c := a.p.Compare(b.p); c != 0 {
				return c
			}
			return strings.Compare(a.cur, b.cur)
		})
		for _, k := range keys {
			issues = append(issues, Issue{
				Kind:        IssueMissingRate,
				Table:       t.name,
				Description: fmt.Sprintf("no %s rate for %s; amounts will be taken as %s", k.cur, k.p, reportingCurrency),
			})
		}

		cats := make([]string, 0, len(unknown))
		for c := range unknown {
			cats = append(cats, string(c))
		}
		slices.Sort(cats)
		for _, c := range cats {
			desc := fmt.Sprintf("category %q is not in the chart of categories", c)
			if model.Category(c).IsOpex() {
				desc += " (aggregated as opex)"
			}
			issues = append(issues, Issue{Kind: IssueUnknownCategory, Table: t.name, Description: desc})
		}
	}

	seen := make(map[period.Period]bool)
	for _, c := range s.cash {
		if seen[c.Period] {
			continue
		}
		seen[c.Period] = true
		if !hasEarlier(s.actuals, c.Period) {
			issues = append(issues, Issue{
				Kind:        IssueNoBurnHistory,
				Table:       TableCash,
				Description: fmt.Sprintf("no actuals before %s; runway as of that month is infinite", c.Period),
			})
		}
	}

	return issues
}

func hasEarlier(rows []model.Posting, p period.Period) bool {
	for _, r := range rows {
		if r.Period.Before(p) {
			return true
		}
	}
	return false
}
