package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var palette = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
}

func paletteColor(i int) color.Color {
	return palette[i%len(palette)]
}

// categorical puts names on the x axis at 0..n-1 with rotated labels.
func categorical(p *plot.Plot, names []string) {
	if len(names) == 0 {
		return
	}
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

func indexed(ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(ys))
	for i, y := range ys {
		pts[i].X = float64(i)
		pts[i].Y = y
	}
	return pts
}

// points pairs y with numeric x when available, else with category indexes.
func points(p *plot.Plot, d data) plotter.XYs {
	ys := d.series[0]
	xs, ok := d.numericX()
	if !ok {
		categorical(p, d.categories())
		return indexed(ys)
	}
	pts := make(plotter.XYs, len(ys))
	for i := range ys {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

func singleLine(p *plot.Plot, d data, label string) error {
	l, s, err := plotter.NewLinePoints(points(p, d))
	if err != nil {
		return err
	}
	l.Color = paletteColor(0)
	l.Width = vg.Points(2)
	s.Color = paletteColor(0)
	s.Shape = draw.CircleGlyph{}
	s.Radius = vg.Points(3)
	p.Add(l, s)
	if label != "" {
		p.Legend.Add(label, l, s)
	}
	return nil
}

func singleScatter(p *plot.Plot, d data, label string) error {
	s, err := plotter.NewScatter(points(p, d))
	if err != nil {
		return err
	}
	s.Color = paletteColor(0)
	s.Shape = draw.CircleGlyph{}
	s.Radius = vg.Points(3)
	p.Add(s)
	if label != "" {
		p.Legend.Add(label, s)
	}
	return nil
}

// singleBar floors the y axis at zero. Negative bars fall below the plot
// area and are clipped.
func singleBar(p *plot.Plot, d data, label string) error {
	b := &bars{values: d.series[0], width: 0.8, color: paletteColor(0)}
	p.Add(b)
	p.Y.Min = 0
	if p.Y.Max <= 0 {
		p.Y.Max = 1
	}
	categorical(p, d.categories())
	if label != "" {
		p.Legend.Add(label, b)
	}
	return nil
}

func groupedBars(p *plot.Plot, d data, legends []string) error {
	n := len(d.series)
	width := 0.8 / float64(n)
	for i, ys := range d.series {
		b := &bars{
			values: ys,
			width:  width,
			offset: (float64(i) - float64(n)/2 + 0.5) * width,
			color:  paletteColor(i),
		}
		p.Add(b)
		p.Legend.Add(seriesLabel(legends, i), b)
	}
	categorical(p, d.categories())
	p.Add(plotter.NewGrid())
	return nil
}

func multiLine(p *plot.Plot, d data, legends []string) error {
	for i, ys := range d.series {
		l, s, err := plotter.NewLinePoints(indexed(ys))
		if err != nil {
			return fmt.Errorf("series %d: %w", i+1, err)
		}
		l.Color = paletteColor(i)
		l.Width = vg.Points(2)
		s.Color = paletteColor(i)
		s.Shape = draw.CircleGlyph{}
		p.Add(l, s)
		p.Legend.Add(seriesLabel(legends, i), l, s)
	}
	categorical(p, d.categories())
	p.Add(plotter.NewGrid())
	return nil
}

func pie(p *plot.Plot, d data) error {
	values := d.series[0]
	total := 0.0
	for i, v := range values {
		if v < 0 {
			return fmt.Errorf("pie slice %d is negative (%g)", i, v)
		}
		total += v
	}
	if total <= 0 {
		return errors.New("pie slices sum to zero")
	}

	w := &wedges{values: values, names: d.categories(), total: total, label: p.X.Tick.Label}
	w.label.XAlign = draw.XCenter
	w.label.YAlign = draw.YCenter
	p.Add(w)
	p.HideAxes()
	return nil
}
