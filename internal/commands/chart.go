package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/copilot/internal/chart"
	"github.com/cleared-dev/copilot/internal/logging"
	"github.com/cleared-dev/copilot/internal/metrics"
	"github.com/cleared-dev/copilot/internal/period"
	"github.com/cleared-dev/copilot/internal/tools"
)

// Chartable metrics.
const (
	seriesRevenue = "revenue"
	seriesMargin  = "margin"
	seriesOpex    = "opex"
	seriesEBITDA  = "ebitda"
)

var seriesNames = []string{seriesRevenue, seriesMargin, seriesOpex, seriesEBITDA}

func newChartCommand(g *globalFlags) *cobra.Command {
	var kind string
	var output string
	var title string

	cmd := &cobra.Command{
		Use:   "chart <revenue|margin|opex|ebitda> <start-month> <end-month>",
		Short: "Render a metric series as an image",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := period.Parse(args[1])
			if err != nil {
				return fmt.Errorf("start month: %w", err)
			}
			end, err := period.Parse(args[2])
			if err != nil {
				return fmt.Errorf("end month: %w", err)
			}

			a, err := g.load()
			if err != nil {
				return err
			}
			e, err := a.engine()
			if err != nil {
				return err
			}

			s, err := buildSeries(e, args[0], start, end)
			if err != nil {
				return err
			}
			if kind != "" {
				s.kind = chart.Kind(kind)
			}
			if title != "" {
				s.title = title
			}
			if output == "" {
				output = fmt.Sprintf("%s-%s-%s.png", args[0], start, end)
			}

			ctx := logging.WithContext(context.Background(), a.log)
			path, err := renderSeries(ctx, a.runtime(e), s, output)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "type", "", "chart type: line, bar, scatter or pie (default depends on metric)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output image path, relative to the charts dir")
	cmd.Flags().StringVar(&title, "title", "", "chart title")

	return cmd
}

// series is a chart-ready view of one metric.
type series struct {
	kind    chart.Kind
	title   string
	xLabel  string
	yLabel  string
	x       []any
	y       []any
	legends []string
}

func monthsBetween(start, end period.Period) []period.Period {
	var out []period.Period
	for p := start; !p.After(end); p = p.AddMonths(1) {
		out = append(out, p)
	}
	return out
}

func buildSeries(e *metrics.Engine, name string, start, end period.Period) (series, error) {
	if start.After(end) {
		return series{}, fmt.Errorf("start month %s is after end month %s", start, end)
	}
	cur := e.ReportingCurrency()

	switch name {
	case seriesRevenue:
		var x, actual, budget []any
		for _, p := range monthsBetween(start, end) {
			v := e.RevenueVariance(p, p)
			x = append(x, p.String())
			actual = append(actual, v.Actual.InexactFloat64())
			budget = append(budget, v.Budget.InexactFloat64())
		}
		return series{
			kind: chart.Bar, title: "Revenue: actual vs budget",
			xLabel: "Month", yLabel: cur,
			x: x, y: []any{actual, budget}, legends: []string{"Actual", "Budget"},
		}, nil

	case seriesMargin:
		var x, y []any
		for _, pv := range e.GrossMarginPct(start, end) {
			x = append(x, pv.Period.String())
			y = append(y, pv.Value.InexactFloat64())
		}
		return series{
			kind: chart.Line, title: "Gross margin",
			xLabel: "Month", yLabel: "%",
			x: x, y: y, legends: []string{"Gross margin %"},
		}, nil

	case seriesOpex:
		o := e.OpexBreakdown(start, end)
		var x, y []any
		for _, c := range o.Categories() {
			x = append(x, string(c))
			y = append(y, o[c].InexactFloat64())
		}
		return series{
			kind: chart.Pie, title: fmt.Sprintf("Operating expenses %s to %s", start, end),
			x: x, y: y,
		}, nil

	case seriesEBITDA:
		var x, y []any
		for _, p := range monthsBetween(start, end) {
			x = append(x, p.String())
			y = append(y, e.EBITDAProxy(p, p).Value.InexactFloat64())
		}
		return series{
			kind: chart.Line, title: "EBITDA proxy",
			xLabel: "Month", yLabel: cur,
			x: x, y: y,
		}, nil
	}
	return series{}, fmt.Errorf("unknown series %q (want one of %v)", name, seriesNames)
}

// renderSeries renders s through the render_chart tool and returns the path.
func renderSeries(ctx context.Context, rt *tools.Runtime, s series, output string) (string, error) {
	result, err := rt.Call(ctx, "cli", tools.ToolRenderChart, tools.Params{Kwargs: map[string]any{
		"chart_type":  string(s.kind),
		"x":           s.x,
		"y":           s.y,
		"title":       s.title,
		"x_label":     s.xLabel,
		"y_label":     s.yLabel,
		"output_path": output,
		"legends":     s.legends,
	}})
	if err != nil {
		return "", err
	}
	res, _ := result.(map[string]any)
	if ok, _ := res["ok"].(bool); !ok {
		msg, _ := res["diagnostic"].(string)
		return "", errors.New(msg)
	}
	path, _ := res["path"].(string)
	return path, nil
}
