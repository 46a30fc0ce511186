package chart

import (
	"errors"
	"fmt"

	"github.com/spf13/cast"
)

// data is a normalized chart input: one x sequence and one or more y series.
type data struct {
	x      []any
	series [][]float64
}

func (d data) multi() bool { return len(d.series) > 1 }

// categories renders x as tick labels.
func (d data) categories() []string {
	out := make([]string, len(d.x))
	for i, v := range d.x {
		out[i] = cast.ToString(v)
	}
	return out
}

// numericX returns x as floats when every value is numeric.
func (d data) numericX() ([]float64, bool) {
	out := make([]float64, len(d.x))
	for i, v := range d.x {
		f, ok := number(v)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// detect works out the series layout. When Y holds sequences and there is
// more than one, each is a series over the categories in X (or X[0] when X is
// itself nested). Otherwise one level of nesting is unwrapped from X and Y.
func detect(x, y []any) (data, error) {
	if len(y) == 0 {
		return data{}, errors.New("y is empty")
	}

	if _, nested := y[0].([]any); nested && len(y) > 1 {
		cats := x
		if len(x) > 0 {
			if inner, ok := x[0].([]any); ok {
				cats = inner
			}
		}
		var d data
		d.x = cats
		for i, s := range y {
			vals, ok := s.([]any)
			if !ok {
				return data{}, fmt.Errorf("y[%d] is not a sequence", i)
			}
			fs, err := floats(vals)
			if err != nil {
				return data{}, fmt.Errorf("y[%d]: %w", i, err)
			}
			if len(fs) != len(cats) {
				return data{}, fmt.Errorf("y[%d] has %d values for %d categories", i, len(fs), len(cats))
			}
			d.series = append(d.series, fs)
		}
		return d, nil
	}

	xs, ys := unwrap(x), unwrap(y)
	fs, err := floats(ys)
	if err != nil {
		return data{}, fmt.Errorf("y: %w", err)
	}
	if len(xs) != len(fs) {
		return data{}, fmt.Errorf("x has %d values but y has %d", len(xs), len(fs))
	}
	return data{x: xs, series: [][]float64{fs}}, nil
}

// unwrap turns [[a, b, c]] into [a, b, c].
func unwrap(v []any) []any {
	if len(v) == 1 {
		if inner, ok := v[0].([]any); ok {
			return inner
		}
	}
	return v
}

func floats(vs []any) ([]float64, error) {
	out := make([]float64, len(vs))
	for i, v := range vs {
		f, ok := number(v)
		if !ok {
			return nil, fmt.Errorf("value %d (%v) is not a number", i, v)
		}
		out[i] = f
	}
	return out, nil
}

func number(v any) (float64, bool) {
	switch v.(type) {
	case nil, bool, []any, map[string]any:
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	return f, err == nil
}
