package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/copilot/internal/logging"
	"github.com/cleared-dev/copilot/internal/period"
	"github.com/cleared-dev/copilot/internal/report"
)

func newReportCommand(g *globalFlags) *cobra.Command {
	var asOf string
	var months int
	var withCharts bool
	var raw bool
	var style string
	var output string

	cmd := &cobra.Command{
		Use:   "report <start-month> <end-month>",
		Short: "Print a KPI summary for a range of months",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := period.Parse(args[0])
			if err != nil {
				return fmt.Errorf("start month: %w", err)
			}
			end, err := period.Parse(args[1])
			if err != nil {
				return fmt.Errorf("end month: %w", err)
			}
			var asOfPeriod period.Period
			if asOf != "" {
				if asOfPeriod, err = period.Parse(asOf); err != nil {
					return fmt.Errorf("as-of month: %w", err)
				}
			}

			a, err := g.load()
			if err != nil {
				return err
			}
			e, err := a.engine()
			if err != nil {
				return err
			}
			if months <= 0 {
				months = a.cfg.Runway.DefaultMonths
			}

			r := report.Build(e, start, end, asOfPeriod, months)

			if withCharts {
				ctx := logging.WithContext(context.Background(), a.log)
				rt := a.runtime(e)
				for _, name := range seriesNames {
					s, err := buildSeries(e, name, start, end)
					if err != nil {
						return err
					}
					path, err := renderSeries(ctx, rt, s, fmt.Sprintf("report-%s-%s-%s.png", name, start, end))
					if err != nil {
						a.log.Warn().Err(err).Str("series", name).Msg("skipping chart")
						continue
					}
					if output != "" {
						if rel, err := filepath.Rel(filepath.Dir(output), path); err == nil {
							path = rel
						}
					}
					r.Charts = append(r.Charts, path)
				}
			}

			md := r.Markdown()
			if output != "" {
				if err := os.WriteFile(output, []byte(md), 0o644); err != nil {
					return fmt.Errorf("writing report: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), output)
				return nil
			}
			if raw {
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}

			rendered, err := glamour.Render(md, style)
			if err != nil {
				return fmt.Errorf("rendering report: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "month to compute runway as of (default latest cash month)")
	cmd.Flags().IntVar(&months, "months", 0, "trailing months to average burn over (default from config)")
	cmd.Flags().BoolVar(&withCharts, "charts", false, "render charts into the charts dir and link them")
	cmd.Flags().BoolVar(&raw, "raw", false, "print Markdown without terminal styling")
	cmd.Flags().StringVar(&style, "style", "dark", "terminal style: dark, light, notty or ascii")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the Markdown report to a file")

	return cmd
}
