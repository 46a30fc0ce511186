package commands

import (
	"slices"
	"strconv"

	"github.com/cleared-dev/copilot/internal/ledger"
)

func emptyLedger() ledger.Sheets {
	return ledger.Sheets{
		ledger.TableActuals: {slices.Clone(ledger.PostingHeader)},
		ledger.TableBudget:  {slices.Clone(ledger.PostingHeader)},
		ledger.TableCash:    {slices.Clone(ledger.CashHeader)},
		ledger.TableFx:      {slices.Clone(ledger.FxHeader)},
	}
}

// sampleLedger is a two-entity, six-month ledger with a foreign subsidiary
// reporting in EUR (or USD when EUR is the reporting currency).
func sampleLedger(reporting string) ledger.Sheets {
	foreign := "EUR"
	if reporting == foreign {
		foreign = "USD"
	}
	months := []string{"2025-01", "2025-02", "2025-03", "2025-04", "2025-05", "2025-06"}
	rates := []string{"1.10", "1.08", "1.09", "1.12", "1.13", "1.15"}

	s := emptyLedger()
	for i, m := range months {
		grow := func(base, step int) string { return strconv.Itoa(base + step*i) }

		s[ledger.TableActuals] = append(s[ledger.TableActuals],
			[]string{m, "ParentCo", "Revenue", grow(42000, 1500), reporting},
			[]string{m, "ParentCo", "COGS", grow(15500, 400), reporting},
			[]string{m, "ParentCo", "Opex:Marketing", grow(6000, 250), reporting},
			[]string{m, "ParentCo", "Opex:R&D", "21000", reporting},
			[]string{m, "ParentCo", "Opex:Admin", "4200", reporting},
			[]string{m, "EMEA", "Revenue", grow(9000, 300), foreign},
			[]string{m, "EMEA", "COGS", grow(3600, 100), foreign},
			[]string{m, "EMEA", "Opex:Sales", "7800", foreign},
		)
		s[ledger.TableBudget] = append(s[ledger.TableBudget],
			[]string{m, "ParentCo", "Revenue", grow(44000, 1200), reporting},
			[]string{m, "ParentCo", "COGS", grow(15000, 350), reporting},
			[]string{m, "ParentCo", "Opex:Marketing", "6500", reporting},
			[]string{m, "ParentCo", "Opex:R&D", "10500", reporting},
			[]string{m, "ParentCo", "Opex:Admin", "4000", reporting},
			[]string{m, "EMEA", "Revenue", grow(9500, 250), foreign},
			[]string{m, "EMEA", "COGS", "3500", foreign},
			[]string{m, "EMEA", "Opex:Sales", "7500", foreign},
		)
		s[ledger.TableCash] = append(s[ledger.TableCash],
			[]string{m, "ParentCo", grow(310000, -6500)},
			[]string{m, "EMEA", grow(45000, -1200)},
		)
		s[ledger.TableFx] = append(s[ledger.TableFx], []string{m, foreign, rates[i]})
	}
	return s
}
