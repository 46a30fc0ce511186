// Package tools exposes the metric engine and chart renderer as named
// function calls, over JSON-RPC on stdio or over HTTP.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/copilot/internal/chart"
	"github.com/cleared-dev/copilot/internal/logging"
	"github.com/cleared-dev/copilot/internal/metrics"
	"github.com/cleared-dev/copilot/internal/toollog"
)

// Tool names.
const (
	ToolRevenueVariance = "revenue_variance"
	ToolGrossMargin     = "gross_margin_pct"
	ToolOpexBreakdown   = "opex_breakdown"
	ToolEBITDAProxy     = "ebitda_proxy"
	ToolCashRunway      = "cash_runway"
	ToolRenderChart     = "render_chart"
)

// ErrUnknownTool is returned by Call for a name that is not registered.
var ErrUnknownTool = errors.New("unknown tool")

// Params carries positional and named arguments of a call.
type Params struct {
	Args   []any          `json:"args,omitempty"`
	Kwargs map[string]any `json:"kwargs,omitempty"`
}

// Handler handles one tool call.
type Handler func(args []any, kwargs map[string]any) (any, error)

// Options configures a Runtime.
type Options struct {
	ChartDir     string       // relative chart paths resolve here
	RunwayMonths int          // default last_n_months for cash_runway
	Log          *toollog.Log // nil disables the audit trail
}

// Runtime holds the engine and dispatches tool calls to it.
type Runtime struct {
	engine       *metrics.Engine
	chartDir     string
	runwayMonths int
	log          *toollog.Log
	handlers     map[string]Handler
}

// NewRuntime creates a Runtime with every tool registered.
func NewRuntime(engine *metrics.Engine, opts Options) *Runtime {
	months := opts.RunwayMonths
	if months <= 0 {
		months = metrics.DefaultRunwayMonths
	}
	rt := &Runtime{
		engine:       engine,
		chartDir:     opts.ChartDir,
		runwayMonths: months,
		log:          opts.Log,
		handlers:     make(map[string]Handler),
	}
	rt.Register(ToolRevenueVariance, rt.revenueVariance)
	rt.Register(ToolGrossMargin, rt.grossMargin)
	rt.Register(ToolOpexBreakdown, rt.opexBreakdown)
	rt.Register(ToolEBITDAProxy, rt.ebitdaProxy)
	rt.Register(ToolCashRunway, rt.cashRunway)
	rt.Register(ToolRenderChart, rt.renderChart)
	return rt
}

// Register adds or replaces a handler.
func (rt *Runtime) Register(name string, h Handler) {
	rt.handlers[name] = h
}

// Names returns the registered tool names, sorted.
func (rt *Runtime) Names() []string {
	names := make([]string, 0, len(rt.handlers))
	for name := range rt.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Call runs the named tool. transport identifies the caller in logs.
func (rt *Runtime) Call(ctx context.Context, transport, name string, p Params) (any, error) {
	log := callLogger(ctx, transport)

	h, ok := rt.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	start := time.Now()
	result, err := h(p.Args, p.Kwargs)
	elapsed := time.Since(start)

	entry := toollog.Entry{
		Timestamp: start,
		CallID:    toollog.NewCallID(),
		Transport: transport,
		Tool:      name,
		Args:      encodeParams(p),
		Status:    toollog.StatusOK,
		Duration:  elapsed,
	}
	ev := log.Debug()
	if err != nil {
		entry.Status = toollog.StatusError
		entry.Detail = err.Error()
		ev = log.Warn().Err(err)
	} else if res, ok := result.(map[string]any); ok {
		if path, ok := res["path"].(string); ok {
			entry.Detail = path
		}
	}
	ev.Str("tool", name).
		Str("call_id", entry.CallID).
		Dur("elapsed", elapsed).
		Msg("tool call")

	if lerr := rt.log.Append(entry); lerr != nil {
		log.Error().Err(lerr).Msg("writing tool log")
	}
	return result, err
}

func encodeParams(p Params) string {
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(data)
}

func (rt *Runtime) revenueVariance(args []any, kwargs map[string]any) (any, error) {
	start, end, err := monthRange(args, kwargs)
	if err != nil {
		return nil, err
	}
	v := rt.engine.RevenueVariance(start, end)
	return map[string]any{
		"variance": v.Variance.InexactFloat64(),
		"actual":   v.Actual.InexactFloat64(),
		"budget":   v.Budget.InexactFloat64(),
	}, nil
}

func (rt *Runtime) grossMargin(args []any, kwargs map[string]any) (any, error) {
	start, end, err := monthRange(args, kwargs)
	if err != nil {
		return nil, err
	}
	result := make(map[string]any)
	for _, pv := range rt.engine.GrossMarginPct(start, end) {
		result[pv.Period.String()] = pv.Value.InexactFloat64()
	}
	return result, nil
}

func (rt *Runtime) opexBreakdown(args []any, kwargs map[string]any) (any, error) {
	start, end, err := monthRange(args, kwargs)
	if err != nil {
		return nil, err
	}
	result := make(map[string]any)
	for cat, total := range rt.engine.OpexBreakdown(start, end) {
		result[string(cat)] = total.InexactFloat64()
	}
	return result, nil
}

func (rt *Runtime) ebitdaProxy(args []any, kwargs map[string]any) (any, error) {
	start, end, err := monthRange(args, kwargs)
	if err != nil {
		return nil, err
	}
	e := rt.engine.EBITDAProxy(start, end)
	return map[string]any{
		"ebitda":  e.Value.InexactFloat64(),
		"revenue": e.Revenue.InexactFloat64(),
		"cogs":    e.COGS.InexactFloat64(),
		"opex":    e.Opex.InexactFloat64(),
	}, nil
}

func (rt *Runtime) cashRunway(args []any, kwargs map[string]any) (any, error) {
	asOf, err := optionalMonth(args, kwargs, 0, "as_of_month")
	if err != nil {
		return nil, err
	}
	n, err := intParam(args, kwargs, 1, "last_n_months", rt.runwayMonths)
	if err != nil {
		return nil, err
	}

	r := rt.engine.CashRunway(asOf, n)
	window := make([]string, 0, len(r.Burns))
	for _, p := range r.Window() {
		window = append(window, p.String())
	}
	var months any
	if !r.Infinite() {
		months = r.Months
	}
	return map[string]any{
		"runway":       months,
		"avg_burn":     r.AvgBurn.InexactFloat64(),
		"cash_balance": r.CashBalance.InexactFloat64(),
		"as_of":        r.AsOf.String(),
		"window":       window,
		"infinite":     r.Infinite(),
	}, nil
}

func (rt *Runtime) renderChart(args []any, kwargs map[string]any) (any, error) {
	kind := stringParam(args, kwargs, 0, "chart_type")
	x, _ := param(args, kwargs, 1, "x")
	y, _ := param(args, kwargs, 2, "y")

	req := chart.Request{
		Kind:       chart.Kind(kind),
		X:          sequence(x),
		Y:          sequence(y),
		Title:      stringParam(args, kwargs, 3, "title"),
		XLabel:     stringParam(args, kwargs, 4, "x_label"),
		YLabel:     stringParam(args, kwargs, 5, "y_label"),
		OutputPath: stringParam(args, kwargs, 6, "output_path"),
		Legends:    stringsParam(args, kwargs, 7, "legends"),
	}
	if req.OutputPath == "" {
		req.OutputPath = chart.DefaultOutputPath
	}
	if rt.chartDir != "" && !filepath.IsAbs(req.OutputPath) {
		req.OutputPath = filepath.Join(rt.chartDir, req.OutputPath)
	}

	res := chart.Render(req)
	if !res.OK() {
		return map[string]any{"ok": false, "diagnostic": res.Diagnostic()}, nil
	}
	return map[string]any{"ok": true, "path": res.Path}, nil
}

func callLogger(ctx context.Context, transport string) zerolog.Logger {
	return logging.FromContext(ctx).With().Str("transport", transport).Logger()
}
