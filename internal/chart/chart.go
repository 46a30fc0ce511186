// Package chart renders computed series as raster images.
//
// Render never panics and never returns an error: every failure, including
// one raised inside the plotting library, comes back as a Result carrying a
// diagnostic for the caller to relay.
package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// Kind selects the chart type.
type Kind string

const (
	Line    Kind = "line"
	Bar     Kind = "bar"
	Scatter Kind = "scatter"
	Pie     Kind = "pie"
)

// Kinds returns the supported chart types.
func Kinds() []Kind {
	return []Kind{Line, Bar, Scatter, Pie}
}

// DefaultOutputPath is used when Request.OutputPath is empty.
const DefaultOutputPath = "chart.png"

// Image size.
const (
	Width  = 7 * vg.Inch
	Height = 4 * vg.Inch
)

var rasterExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
}

// Request describes a chart. X and Y are loosely typed because they usually
// arrive from decoded JSON: either flat sequences for a single series, or Y as
// a sequence of sequences for several series sharing the categories in X.
type Request struct {
	Kind       Kind
	X          []any
	Y          []any
	Title      string
	XLabel     string
	YLabel     string
	OutputPath string
	Legends    []string
}

// Result is the outcome of Render. Exactly one of Path and Err is set.
type Result struct {
	Path string
	Err  error
}

// OK reports whether the chart was written.
func (r Result) OK() bool {
	return r.Err == nil
}

// Diagnostic explains a failed render in terms a caller can act on.
func (r Result) Diagnostic() string {
	if r.Err == nil {
		return ""
	}
	return fmt.Sprintf("could not render the chart from the data provided (%v). "+
		"Check that x and y have matching lengths and numeric y values, "+
		"or write custom code that builds and saves the chart instead.", r.Err)
}

// ErrUnsupportedKind is returned for a chart type outside Kinds.
var ErrUnsupportedKind = errors.New("unsupported chart type")

// Render draws req and saves it to req.OutputPath.
func Render(req Request) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("plotting: %v", r)}
		}
	}()

	path := req.OutputPath
	if path == "" {
		path = DefaultOutputPath
	}
	if !rasterExts[strings.ToLower(filepath.Ext(path))] {
		return Result{Err: fmt.Errorf("output %q: want a .png, .jpg, .jpeg, .tif or .tiff file", path)}
	}

	p, err := build(req)
	if err != nil {
		return Result{Err: err}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{Err: fmt.Errorf("creating %s: %w", dir, err)}
		}
	}
	if err := p.Save(Width, Height, path); err != nil {
		return Result{Err: fmt.Errorf("saving %s: %w", path, err)}
	}
	return Result{Path: path}
}

func build(req Request) (*plot.Plot, error) {
	switch req.Kind {
	case Line, Bar, Scatter, Pie:
	default:
		return nil, fmt.Errorf("%w %q (want line, bar, scatter or pie)", ErrUnsupportedKind, req.Kind)
	}

	d, err := detect(req.X, req.Y)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = req.Title
	p.X.Label.Text = req.XLabel
	p.Y.Label.Text = req.YLabel

	if d.multi() {
		switch req.Kind {
		case Bar:
			err = groupedBars(p, d, req.Legends)
		case Line:
			err = multiLine(p, d, req.Legends)
		default:
			err = fmt.Errorf("%s chart takes a single series, got %d", req.Kind, len(d.series))
		}
	} else {
		label := ""
		if len(req.Legends) > 0 {
			label = req.Legends[0]
		}
		switch req.Kind {
		case Line:
			err = singleLine(p, d, label)
		case Bar:
			err = singleBar(p, d, label)
		case Scatter:
			err = singleScatter(p, d, label)
		case Pie:
			err = pie(p, d)
		}
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// seriesLabel returns legends[i] or the default "Series i+1".
func seriesLabel(legends []string, i int) string {
	if i < len(legends) && legends[i] != "" {
		return legends[i]
	}
	return fmt.Sprintf("Series %d", i+1)
}
