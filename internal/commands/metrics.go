package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/copilot/internal/logging"
	"github.com/cleared-dev/copilot/internal/report"
	"github.com/cleared-dev/copilot/internal/tools"
)

// metricCommand describes a subcommand that calls one tool and prints its
// result as text or JSON.
type metricCommand struct {
	use   string
	short string
	tool  string
	args  cobra.PositionalArgs
	text  func(w io.Writer, currency string, result map[string]any)
}

func (m metricCommand) build(g *globalFlags) *cobra.Command {
	var asJSON bool
	var months int

	cmd := &cobra.Command{
		Use:   m.use,
		Short: m.short,
		Args:  m.args,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			e, err := a.engine()
			if err != nil {
				return err
			}

			params := tools.Params{Args: make([]any, len(args))}
			for i, v := range args {
				params.Args[i] = v
			}
			if m.tool == tools.ToolCashRunway {
				params.Kwargs = map[string]any{"last_n_months": months}
			}

			ctx := logging.WithContext(context.Background(), a.log)
			result, err := a.runtime(e).Call(ctx, "cli", m.tool, params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, result)
			}
			res, _ := result.(map[string]any)
			m.text(out, e.ReportingCurrency(), res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	if m.tool == tools.ToolCashRunway {
		cmd.Flags().IntVar(&months, "months", 0, "trailing months to average burn over (default from config)")
	}
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func amount(v any, currency string) string {
	f, _ := v.(float64)
	return report.Format(decimal.NewFromFloat(f), currency)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func newVarianceCommand(g *globalFlags) *cobra.Command {
	return metricCommand{
		use:   "variance <start-month> <end-month>",
		short: "Actual vs budgeted revenue",
		tool:  tools.ToolRevenueVariance,
		args:  cobra.ExactArgs(2),
		text: func(w io.Writer, cur string, r map[string]any) {
			fmt.Fprintf(w, "Actual:   %s\n", amount(r["actual"], cur))
			fmt.Fprintf(w, "Budget:   %s\n", amount(r["budget"], cur))
			fmt.Fprintf(w, "Variance: %s\n", amount(r["variance"], cur))
		},
	}.build(g)
}

func newMarginCommand(g *globalFlags) *cobra.Command {
	return metricCommand{
		use:   "margin <start-month> <end-month>",
		short: "Gross margin % per month",
		tool:  tools.ToolGrossMargin,
		args:  cobra.ExactArgs(2),
		text: func(w io.Writer, _ string, r map[string]any) {
			if len(r) == 0 {
				fmt.Fprintln(w, "No actuals in range.")
				return
			}
			for _, k := range sortedKeys(r) {
				pct, _ := r[k].(float64)
				fmt.Fprintf(w, "%s  %6.2f%%\n", k, pct)
			}
		},
	}.build(g)
}

func newOpexCommand(g *globalFlags) *cobra.Command {
	return metricCommand{
		use:   "opex <start-month> <end-month>",
		short: "Operating expenses by category",
		tool:  tools.ToolOpexBreakdown,
		args:  cobra.ExactArgs(2),
		text: func(w io.Writer, cur string, r map[string]any) {
			if len(r) == 0 {
				fmt.Fprintln(w, "No operating expenses in range.")
				return
			}
			total := 0.0
			for _, k := range sortedKeys(r) {
				v, _ := r[k].(float64)
				total += v
				fmt.Fprintf(w, "%-20s %s\n", k, amount(v, cur))
			}
			fmt.Fprintf(w, "%-20s %s\n", "Total", amount(total, cur))
		},
	}.build(g)
}

func newEBITDACommand(g *globalFlags) *cobra.Command {
	return metricCommand{
		use:   "ebitda <start-month> <end-month>",
		short: "EBITDA proxy: revenue less COGS less opex",
		tool:  tools.ToolEBITDAProxy,
		args:  cobra.ExactArgs(2),
		text: func(w io.Writer, cur string, r map[string]any) {
			fmt.Fprintf(w, "Revenue: %s\n", amount(r["revenue"], cur))
			fmt.Fprintf(w, "COGS:    %s\n", amount(r["cogs"], cur))
			fmt.Fprintf(w, "Opex:    %s\n", amount(r["opex"], cur))
			fmt.Fprintf(w, "EBITDA:  %s\n", amount(r["ebitda"], cur))
		},
	}.build(g)
}

func newRunwayCommand(g *globalFlags) *cobra.Command {
	return metricCommand{
		use:   "runway [as-of-month]",
		short: "Months of cash left at the recent average burn",
		tool:  tools.ToolCashRunway,
		args:  cobra.MaximumNArgs(1),
		text: func(w io.Writer, cur string, r map[string]any) {
			fmt.Fprintf(w, "Cash at %v: %s\n", r["as_of"], amount(r["cash_balance"], cur))
			fmt.Fprintf(w, "Average burn: %s over %v\n", amount(r["avg_burn"], cur), r["window"])
			if months, ok := r["runway"].(float64); ok {
				fmt.Fprintf(w, "Runway: %.1f months\n", months)
			} else {
				fmt.Fprintln(w, "Runway: infinite (not burning cash)")
			}
		},
	}.build(g)
}
