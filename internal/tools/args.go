package tools

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/cleared-dev/copilot/internal/period"
)

// param returns the argument at position i, or the keyword name. Keywords
// win when both are given.
func param(args []any, kwargs map[string]any, i int, name string) (any, bool) {
	if v, ok := kwargs[name]; ok {
		return v, true
	}
	if i < len(args) {
		return args[i], true
	}
	return nil, false
}

func stringParam(args []any, kwargs map[string]any, i int, name string) string {
	v, ok := param(args, kwargs, i, name)
	if !ok || v == nil {
		return ""
	}
	return cast.ToString(v)
}

func stringsParam(args []any, kwargs map[string]any, i int, name string) []string {
	v, ok := param(args, kwargs, i, name)
	if !ok || v == nil {
		return nil
	}
	return cast.ToStringSlice(v)
}

// intParam returns def when the argument is absent, null or zero. Negative
// values are rejected.
func intParam(args []any, kwargs map[string]any, i int, name string, def int) (int, error) {
	v, ok := param(args, kwargs, i, name)
	if !ok || v == nil {
		return def, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("%s: expected an integer, got %v", name, v)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s: must not be negative, got %d", name, n)
	}
	if n == 0 {
		return def, nil
	}
	return n, nil
}

func month(args []any, kwargs map[string]any, i int, name string) (period.Period, error) {
	v, ok := param(args, kwargs, i, name)
	if !ok || v == nil {
		return period.Period{}, fmt.Errorf("%s is required", name)
	}
	return parseMonth(name, v)
}

// optionalMonth returns the zero Period when the argument is absent or empty.
func optionalMonth(args []any, kwargs map[string]any, i int, name string) (period.Period, error) {
	v, ok := param(args, kwargs, i, name)
	if !ok || v == nil || v == "" {
		return period.Period{}, nil
	}
	return parseMonth(name, v)
}

func parseMonth(name string, v any) (period.Period, error) {
	s, ok := v.(string)
	if !ok {
		return period.Period{}, fmt.Errorf("%s: expected a month string, got %T", name, v)
	}
	p, err := period.Parse(s)
	if err != nil {
		return period.Period{}, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

func monthRange(args []any, kwargs map[string]any) (start, end period.Period, err error) {
	if start, err = month(args, kwargs, 0, "start_month"); err != nil {
		return
	}
	end, err = month(args, kwargs, 1, "end_month")
	return
}

// sequence turns a decoded JSON array into []any. Anything else becomes a
// one-element sequence so the renderer reports a shape error.
func sequence(v any) []any {
	switch s := v.(type) {
	case nil:
		return nil
	case []any:
		return s
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	case []float64:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	}
	return []any{v}
}
