package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/copilot/internal/ledger"
)

func newCheckCommand(g *globalFlags) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load the ledger and report data problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			path := a.cfg.Resolve(a.cfg.Ledger.Path)
			store, err := ledger.Load(path, a.cfg.Ledger.Format)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			sum := store.Summary()
			fmt.Fprintf(out, "Ledger %s\n", path)
			fmt.Fprintf(out, "  actuals: %d rows, %s to %s\n", sum.Actuals, sum.First, sum.Last)
			fmt.Fprintf(out, "  budget:  %d rows\n", sum.Budget)
			fmt.Fprintf(out, "  cash:    %d rows, latest %s\n", sum.Cash, sum.LatestCash)
			fmt.Fprintf(out, "  fx:      %d rates\n", sum.FX)
			fmt.Fprintf(out, "  currencies: %s (reporting %s)\n", strings.Join(sum.Currencies, ", "), a.cfg.ReportingCurrency)

			issues := ledger.Check(store, a.cfg.ReportingCurrency)
			if len(issues) == 0 {
				fmt.Fprintln(out, "No issues found.")
				return nil
			}
			fmt.Fprintf(out, "%d issue(s):\n", len(issues))
			for _, is := range issues {
				fmt.Fprintf(out, "  %s\n", is)
			}
			if strict {
				return fmt.Errorf("ledger check found %d issue(s)", len(issues))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when issues are found")
	return cmd
}
