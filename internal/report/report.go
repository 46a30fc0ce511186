// Package report assembles the five KPIs for a range into a Markdown summary.
package report

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/copilot/internal/metrics"
	"github.com/cleared-dev/copilot/internal/period"
)

// Report is a KPI snapshot over [Start, End] with runway as of AsOf.
type Report struct {
	Currency string
	Start    period.Period
	End      period.Period
	Variance metrics.Variance
	Margin   metrics.GrossMargin
	Opex     metrics.OpexBreakdown
	EBITDA   metrics.EBITDA
	Runway   metrics.Runway
	Charts   []string // image paths to reference
}

// Build computes every metric. A zero asOf uses the latest cash period.
func Build(e *metrics.Engine, start, end, asOf period.Period, runwayMonths int) *Report {
	return &Report{
		Currency: e.ReportingCurrency(),
		Start:    start,
		End:      end,
		Variance: e.RevenueVariance(start, end),
		Margin:   e.GrossMarginPct(start, end),
		Opex:     e.OpexBreakdown(start, end),
		EBITDA:   e.EBITDAProxy(start, end),
		Runway:   e.CashRunway(asOf, runwayMonths),
	}
}

// Format renders an amount in the report currency, e.g. "$1,234.50".
// Codes go-money does not know are printed as "1234.50 XYZ".
func Format(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

// Markdown renders the report.
func (r *Report) Markdown() string {
	var b strings.Builder
	m := func(d decimal.Decimal) string { return Format(d, r.Currency) }

	fmt.Fprintf(&b, "# KPI summary %s to %s\n\n", r.Start, r.End)
	fmt.Fprintf(&b, "All amounts in %s.\n\n", r.Currency)

	b.WriteString("## Revenue\n\n")
	b.WriteString("| Actual | Budget | Variance |\n|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %s | %s | %s |\n\n", m(r.Variance.Actual), m(r.Variance.Budget), m(r.Variance.Variance))

	b.WriteString("## Gross margin\n\n")
	if len(r.Margin) == 0 {
		b.WriteString("No actuals in range.\n\n")
	} else {
		b.WriteString("| Month | Margin |\n|---|---:|\n")
		for _, pv := range r.Margin {
			fmt.Fprintf(&b, "| %s | %s%% |\n", pv.Period, pv.Value.StringFixed(2))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Operating expenses\n\n")
	if len(r.Opex) == 0 {
		b.WriteString("No operating expenses in range.\n\n")
	} else {
		b.WriteString("| Category | Total |\n|---|---:|\n")
		for _, c := range r.Opex.Categories() {
			fmt.Fprintf(&b, "| %s | %s |\n", c, m(r.Opex[c]))
		}
		fmt.Fprintf(&b, "| **Total** | **%s** |\n\n", m(r.Opex.Total()))
	}

	b.WriteString("## EBITDA proxy\n\n")
	fmt.Fprintf(&b, "%s (revenue %s, COGS %s, opex %s)\n\n",
		m(r.EBITDA.Value), m(r.EBITDA.Revenue), m(r.EBITDA.COGS), m(r.EBITDA.Opex))

	b.WriteString("## Cash runway\n\n")
	fmt.Fprintf(&b, "Cash at %s: %s. ", r.Runway.AsOf, m(r.Runway.CashBalance))
	window := "no prior months"
	if n := len(r.Runway.Burns); n > 0 {
		window = fmt.Sprintf("%s to %s", r.Runway.Burns[0].Period, r.Runway.Burns[n-1].Period)
	}
	fmt.Fprintf(&b, "Average net burn over %s: %s.\n\n", window, m(r.Runway.AvgBurn))
	if r.Runway.Infinite() {
		b.WriteString("Runway: **infinite** (not burning cash).\n")
	} else {
		fmt.Fprintf(&b, "Runway: **%.1f months**.\n", r.Runway.Months)
	}

	if len(r.Charts) > 0 {
		b.WriteString("\n## Charts\n\n")
		for _, path := range r.Charts {
			fmt.Fprintf(&b, "![%s](%s)\n", path, path)
		}
	}
	return b.String()
}
