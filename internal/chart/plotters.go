package chart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// bars draws one bar per value at x = index + offset, in data units, so
// several series can sit side by side on a shared category axis.
type bars struct {
	values []float64
	width  float64
	offset float64
	color  color.Color
}

func (b *bars) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for i, v := range b.values {
		x := float64(i) + b.offset
		x0, x1 := trX(x-b.width/2), trX(x+b.width/2)
		y0, y1 := trY(0), trY(v)
		pts := []vg.Point{
			{X: x0, Y: y0},
			{X: x0, Y: y1},
			{X: x1, Y: y1},
			{X: x1, Y: y0},
		}
		c.FillPolygon(b.color, c.ClipPolygonXY(pts))
	}
}

func (b *bars) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin = b.offset - b.width/2
	xmax = float64(len(b.values)-1) + b.offset + b.width/2
	for _, v := range b.values {
		ymin = math.Min(ymin, v)
		ymax = math.Max(ymax, v)
	}
	return xmin, xmax, ymin, ymax
}

func (b *bars) Thumbnail(c *draw.Canvas) {
	swatch{b.color}.Thumbnail(c)
}

// swatch is a solid legend entry.
type swatch struct {
	color color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.color, c.ClipPolygonY(pts))
}

// wedges draws a pie centred in the data area, starting at 12 o'clock and
// running counter-clockwise, with each slice's name and share printed on it.
type wedges struct {
	values []float64
	names  []string
	total  float64
	label  text.Style
}

// sliceLabel is the text drawn on slice i.
func (w *wedges) sliceLabel(i int) string {
	share := fmt.Sprintf("%.1f%%", 100*w.values[i]/w.total)
	if i < len(w.names) && w.names[i] != "" {
		return w.names[i] + "\n" + share
	}
	return share
}

func (w *wedges) Plot(c draw.Canvas, _ *plot.Plot) {
	size := c.Size()
	center := vg.Point{X: c.Min.X + size.X/2, Y: c.Min.Y + size.Y/2}
	radius := vg.Length(math.Min(float64(size.X), float64(size.Y))) / 2 * 0.9

	start := math.Pi / 2
	for i, v := range w.values {
		sweep := 2 * math.Pi * v / w.total
		var path vg.Path
		path.Move(center)
		path.Arc(center, radius, start, sweep)
		path.Close()
		c.SetColor(paletteColor(i))
		c.Fill(path)

		mid := start + sweep/2
		at := vg.Point{
			X: center.X + vg.Length(math.Cos(mid))*radius*0.6,
			Y: center.Y + vg.Length(math.Sin(mid))*radius*0.6,
		}
		c.FillText(w.label, at, w.sliceLabel(i))
		start += sweep
	}
}
