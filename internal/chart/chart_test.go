package chart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func months() []any {
	return []any{"2025-01", "2025-02", "2025-03"}
}

func assertWritten(t *testing.T, res Result) {
	t.Helper()
	require.True(t, res.OK(), res.Diagnostic())
	assert.Empty(t, res.Diagnostic())
	info, err := os.Stat(res.Path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRenderSingleSeries(t *testing.T) {
	dir := t.TempDir()
	for _, kind := range Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			res := Render(Request{
				Kind:       kind,
				X:          months(),
				Y:          []any{74.19, 58.33, 50.0},
				Title:      "Gross margin",
				XLabel:     "Month",
				YLabel:     "%",
				OutputPath: filepath.Join(dir, string(kind)+".png"),
				Legends:    []string{"margin"},
			})
			assertWritten(t, res)
		})
	}
}

func TestRenderUnwrapsNestedSingleSeries(t *testing.T) {
	res := Render(Request{
		Kind:       Line,
		X:          []any{months()},
		Y:          []any{[]any{1.0, 2.0, 3.0}},
		OutputPath: filepath.Join(t.TempDir(), "nested.png"),
	})
	assertWritten(t, res)
}

func TestRenderNumericX(t *testing.T) {
	res := Render(Request{
		Kind:       Scatter,
		X:          []any{1.0, 2.5, "4"},
		Y:          []any{10, 20, 15},
		OutputPath: filepath.Join(t.TempDir(), "scatter.png"),
	})
	assertWritten(t, res)
}

func TestRenderMultiSeries(t *testing.T) {
	dir := t.TempDir()
	y := []any{
		[]any{1000.0, 1200.0, 900.0},
		[]any{1400.0, 1300.0, 1050.0},
	}
	for _, kind := range []Kind{Bar, Line} {
		res := Render(Request{
			Kind:       kind,
			X:          months(),
			Y:          y,
			OutputPath: filepath.Join(dir, "multi-"+string(kind)+".jpg"),
			Legends:    []string{"Actual", "Budget"},
		})
		assertWritten(t, res)
	}
}

func TestRenderDefaultsOutputPath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	res := Render(Request{Kind: Bar, X: months(), Y: []any{1, 2, 3}})
	assertWritten(t, res)
	assert.Equal(t, DefaultOutputPath, res.Path)
}

func TestRenderCreatesOutputDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "q1", "opex.png")
	res := Render(Request{Kind: Pie, X: []any{"Sales", "R&D"}, Y: []any{1200, 300}, OutputPath: path})
	assertWritten(t, res)
	assert.Equal(t, path, res.Path)
}

func TestRenderFailures(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "x.png")
	tests := []struct {
		name string
		req  Request
	}{
		{"unsupported kind", Request{Kind: "histogram", X: months(), Y: []any{1, 2, 3}, OutputPath: out}},
		{"empty y", Request{Kind: Line, X: months(), OutputPath: out}},
		{"length mismatch", Request{Kind: Line, X: months(), Y: []any{1, 2}, OutputPath: out}},
		{"non-numeric y", Request{Kind: Bar, X: months(), Y: []any{1, "lots", 3}, OutputPath: out}},
		{"ragged series", Request{Kind: Bar, X: months(), Y: []any{[]any{1, 2, 3}, []any{1}}, OutputPath: out}},
		{"multi-series pie", Request{Kind: Pie, X: months(), Y: []any{[]any{1, 2, 3}, []any{4, 5, 6}}, OutputPath: out}},
		{"multi-series scatter", Request{Kind: Scatter, X: months(), Y: []any{[]any{1, 2, 3}, []any{4, 5, 6}}, OutputPath: out}},
		{"negative pie slice", Request{Kind: Pie, X: months(), Y: []any{1, -2, 3}, OutputPath: out}},
		{"zero pie", Request{Kind: Pie, X: months(), Y: []any{0, 0, 0}, OutputPath: out}},
		{"vector output", Request{Kind: Line, X: months(), Y: []any{1, 2, 3}, OutputPath: filepath.Join(dir, "x.svg")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res Result
			require.NotPanics(t, func() { res = Render(tt.req) })
			assert.False(t, res.OK())
			assert.Empty(t, res.Path)
			assert.Contains(t, res.Diagnostic(), "custom code")
		})
	}
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "no file is written on failure")
}

func TestRenderUnsupportedKindIs(t *testing.T) {
	res := Render(Request{Kind: "radar", X: months(), Y: []any{1, 2, 3}})
	assert.ErrorIs(t, res.Err, ErrUnsupportedKind)
}

func TestSingleBarFloorsAxisAtZero(t *testing.T) {
	p, err := build(Request{Kind: Bar, X: []any{"a", "b", "c"}, Y: []any{10, -5, 20}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Y.Min)
	assert.Equal(t, 20.0, p.Y.Max)

	p, err = build(Request{Kind: Bar, X: []any{"a", "b"}, Y: []any{-3, -7}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Y.Min)
	assert.Greater(t, p.Y.Max, p.Y.Min)

	res := Render(Request{Kind: Bar, X: []any{"a", "b", "c"}, Y: []any{10, -5, 20},
		OutputPath: filepath.Join(t.TempDir(), "bar.png")})
	assertWritten(t, res)
}

func TestGroupedBarsKeepNegativeRange(t *testing.T) {
	p, err := build(Request{Kind: Bar, X: []any{"a", "b"}, Y: []any{[]any{4, -2}, []any{1, 3}}})
	require.NoError(t, err)
	assert.Equal(t, -2.0, p.Y.Min)
}

func TestRenderShortLegends(t *testing.T) {
	y := []any{
		[]any{1.0, 2.0, 3.0},
		[]any{2.0, 3.0, 4.0},
		[]any{3.0, 4.0, 5.0},
	}
	dir := t.TempDir()
	for _, kind := range []Kind{Bar, Line} {
		res := Render(Request{
			Kind:       kind,
			X:          months(),
			Y:          y,
			OutputPath: filepath.Join(dir, "legends-"+string(kind)+".png"),
			Legends:    []string{"Actual"},
		})
		assertWritten(t, res)
	}
}

func TestPieSliceLabels(t *testing.T) {
	w := &wedges{values: []float64{1200, 300}, names: []string{"Opex:Sales", "Opex:R&D"}, total: 1500}
	assert.Equal(t, "Opex:Sales\n80.0%", w.sliceLabel(0))
	assert.Equal(t, "Opex:R&D\n20.0%", w.sliceLabel(1))

	w.names = nil
	assert.Equal(t, "80.0%", w.sliceLabel(0))
}

func TestSeriesLabel(t *testing.T) {
	legends := []string{"Actual"}
	assert.Equal(t, "Actual", seriesLabel(legends, 0))
	assert.Equal(t, "Series 2", seriesLabel(legends, 1))
	assert.Equal(t, "Series 3", seriesLabel(nil, 2))
	assert.Equal(t, "Series 1", seriesLabel([]string{""}, 0))
}

func TestDetect(t *testing.T) {
	d, err := detect([]any{months()}, []any{[]any{1, 2, 3}, []any{4, 5, 6}})
	require.NoError(t, err)
	assert.True(t, d.multi())
	assert.Equal(t, []string{"2025-01", "2025-02", "2025-03"}, d.categories())
	assert.Equal(t, []float64{4, 5, 6}, d.series[1])

	d, err = detect([]any{1, 2}, []any{[]any{3.5, 4.5}})
	require.NoError(t, err)
	assert.False(t, d.multi())
	xs, ok := d.numericX()
	assert.True(t, ok)
	assert.Equal(t, []float64{1, 2}, xs)

	d, err = detect(months(), []any{1, 2, 3})
	require.NoError(t, err)
	_, ok = d.numericX()
	assert.False(t, ok)
}
