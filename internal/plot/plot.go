// Package plot renders price histories to PNG.
package plot

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Figure size of a single plot, matching the usual 6.4x4.8in chart.
const (
	Width  = 6.4 * vg.Inch
	Height = 4.8 * vg.Inch
)

var printer = message.NewPrinter(language.English)

// Point is one sample of a series.
type Point struct {
	Time  time.Time
	Value float64
}

// Series is a named line.
type Series struct {
	Name   string
	Points []Point
}

func (s Series) xys() plotter.XYs {
	xys := make(plotter.XYs, len(s.Points))
	for i, p := range s.Points {
		xys[i].X = float64(p.Time.Unix())
		xys[i].Y = p.Value
	}
	return xys
}

// Stats returns the integer mean, maximum and minimum of s.
func (s Series) Stats() (avg, max, min int64) {
	if len(s.Points) == 0 {
		return 0, 0, 0
	}
	var sum float64
	mx, mn := s.Points[0].Value, s.Points[0].Value
	for _, p := range s.Points {
		sum += p.Value
		mx = maxf(mx, p.Value)
		mn = minf(mn, p.Value)
	}
	return int64(sum) / int64(len(s.Points)), int64(mx), int64(mn)
}

// Title is the single-graph heading: "name: avg=1,234gp, max=...gp, min=...gp".
func Title(s Series) string {
	avg, max, min := s.Stats()
	return printer.Sprintf("%s: avg=%dgp, max=%dgp, min=%dgp", s.Name, avg, max, min)
}

func newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Prices"
	p.X.Tick.Marker = plot.TimeTicks{Format: "02-01"}
	p.Y.Tick.Marker = priceTicks{}
	p.Add(plotter.NewGrid())
	return p
}

// Single draws one series titled with its statistics.
func Single(s Series) ([]byte, error) {
	if len(s.Points) == 0 {
		return nil, errors.New("plot: empty series")
	}
	p := newPlot(Title(s))
	line, err := plotter.NewLine(s.xys())
	if err != nil {
		return nil, fmt.Errorf("plot %s: %w", s.Name, err)
	}
	p.Add(line)
	return encode(p, Width, Height)
}

// Combined draws every series on one set of axes with a legend.
func Combined(series []Series, title string) ([]byte, error) {
	if len(series) == 0 {
		return nil, errors.New("plot: no series")
	}
	p := newPlot(title)

	args := make([]interface{}, 0, 2*len(series))
	for _, s := range series {
		args = append(args, s.Name, s.xys())
	}
	if err := plotutil.AddLines(p, args...); err != nil {
		return nil, fmt.Errorf("plot lines: %w", err)
	}
	p.Legend.Top = true
	return encode(p, Width, Height)
}

// GridShape returns rows and columns for n tiles at most cols wide.
func GridShape(n, cols int) (rows, c int) {
	if cols < 1 {
		cols = 1
	}
	if n <= cols {
		return 1, max(n, 1)
	}
	return (n + cols - 1) / cols, cols
}

// Grid draws each series in its own tile, at most cols tiles per row.
func Grid(series []Series, cols int) ([]byte, error) {
	if len(series) == 0 {
		return nil, errors.New("plot: no series")
	}
	rows, cols := GridShape(len(series), cols)

	plots := make([][]*plot.Plot, rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, cols)
	}
	for i, s := range series {
		p := newPlot(s.Name)
		p.X.Label.Text = ""
		p.Y.Label.Text = ""
		line, err := plotter.NewLine(s.xys())
		if err != nil {
			return nil, fmt.Errorf("plot %s: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		plots[i/cols][i%cols] = p
	}

	w := vg.Length(cols) * Width * 0.75
	h := vg.Length(rows) * Height * 0.75
	img := vgimg.New(w, h)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: rows, Cols: cols,
		PadX: vg.Millimeter, PadY: vg.Millimeter,
		PadTop: vg.Points(4), PadBottom: vg.Points(4),
		PadLeft: vg.Points(4), PadRight: vg.Points(4),
	}

	canvases := plot.Align(plots, tiles, dc)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if plots[r][c] != nil {
				plots[r][c].Draw(canvases[r][c])
			}
		}
	}

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode grid: %w", err)
	}
	return buf.Bytes(), nil
}

func encode(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("render plot: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode plot: %w", err)
	}
	return buf.Bytes(), nil
}

// priceTicks labels the default ticks with thousands separators.
type priceTicks struct{}

func (priceTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = printer.Sprintf("%d", int64(ticks[i].Value))
		}
	}
	return ticks
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
