// Package plots builds the diagnostic figures of geotools with gonum/plot.
package plots

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Figure sizes.
var (
	SmallSize = Size{Width: 4 * vg.Inch, Height: 2 * vg.Inch}
	WideSize  = Size{Width: 8 * vg.Inch, Height: 4 * vg.Inch}
	BoxSize   = Size{Width: 4 * vg.Inch, Height: 4 * vg.Inch}
)

// Size is the size of a saved figure.
type Size struct {
	Width, Height vg.Length
}

// FigureFormats are the formats SaveFigure writes.
var FigureFormats = []string{".pdf", ".png"}

// New returns an empty plot with its axis labels.
func New(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

// Save writes p to path, the format is chosen by the extension.
func Save(p *plot.Plot, size Size, path string) error {
	if filepath.Ext(path) == "" {
		return errors.Errorf("%q has no extension to pick a format from", path)
	}
	return errors.Wrapf(p.Save(size.Width, size.Height, path), "cannot save plot %q", path)
}

// SaveFigure writes p next to base once per FigureFormats and returns the written paths.
func SaveFigure(p *plot.Plot, size Size, base string) ([]string, error) {
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var err error
	var paths []string
	for _, ext := range FigureFormats {
		path := base + ext
		if saveErr := Save(p, size, path); saveErr != nil {
			err = multierr.Append(err, saveErr)
			continue
		}
		paths = append(paths, path)
	}
	return paths, err
}

// Histogram plots values in bins. With density the bar areas sum to one.
func Histogram(values []float64, bins int, density bool, xLabel, yLabel string) (*plot.Plot, error) {
	if len(values) == 0 {
		return nil, errors.New("cannot histogram zero values")
	}
	h, err := plotter.NewHist(plotter.Values(values), max(1, bins))
	if err != nil {
		return nil, err
	}
	if density {
		h.Normalize(1)
	}
	p := New("", xLabel, yLabel)
	p.Add(h)
	return p, nil
}

// Series plots values against their index.
func Series(values []float64, xLabel, yLabel string) (*plot.Plot, error) {
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i] = plotter.XY{X: float64(i), Y: v}
	}
	l, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	p := New("", xLabel, yLabel)
	p.Add(l)
	return p, nil
}

// Scatter plots points as dots, or as crosses when cross is set.
func Scatter(xs, ys []float64, cross bool, xLabel, yLabel string) (*plot.Plot, error) {
	if len(xs) != len(ys) {
		return nil, errors.Errorf("scatter has %d x values and %d y values", len(xs), len(ys))
	}
	xys := make(plotter.XYs, len(xs))
	for i := range xs {
		xys[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	if cross {
		s.GlyphStyle.Shape = draw.PlusGlyph{}
		s.GlyphStyle.Radius = vg.Points(3)
	} else {
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(1)
	}
	p := New("", xLabel, yLabel)
	p.Add(s)
	return p, nil
}

// SetYRange fixes the vertical extent of p.
func SetYRange(p *plot.Plot, lo, hi float64) {
	p.Y.Min = lo
	p.Y.Max = hi
}

// Stems draws one vertical line per value, from zero to the value, at the value index.
type Stems struct {
	Values plotter.Values
	draw.LineStyle
}

// NewStems returns stems drawn with the default line style.
func NewStems(values []float64) (*Stems, error) {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Errorf("stem %d is not finite", i)
		}
	}
	return &Stems{Values: values, LineStyle: plotter.DefaultLineStyle}, nil
}

// Plot implements plot.Plotter.
func (s *Stems) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	lines := make([][]vg.Point, len(s.Values))
	for i, v := range s.Values {
		x := trX(float64(i))
		lines[i] = []vg.Point{{X: x, Y: trY(0)}, {X: x, Y: trY(v)}}
	}
	c.StrokeLines(s.LineStyle, c.ClipLinesXY(lines...)...)
}

// DataRange implements plot.DataRanger.
func (s *Stems) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmax = math.Max(0, float64(len(s.Values)-1))
	for _, v := range s.Values {
		ymin = math.Min(ymin, v)
		ymax = math.Max(ymax, v)
	}
	return 0, xmax, ymin, ymax
}

// StemPlot plots values as stems.
func StemPlot(values []float64, xLabel, yLabel string) (*plot.Plot, error) {
	s, err := NewStems(values)
	if err != nil {
		return nil, err
	}
	p := New("", xLabel, yLabel)
	p.Add(s)
	return p, nil
}
