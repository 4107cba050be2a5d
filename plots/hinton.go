package plots

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const hintonFontSize = 18

// Hinton draws a correlation matrix as a grid of squares whose area is the magnitude of each
// coefficient, each labelled with its value. Entry (i, j) sits at x = i, y = j.
type Hinton struct {
	Matrix    mat.Matrix
	TextStyle text.Style
}

// Plot implements plot.Plotter.
func (h *Hinton) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	rows, cols := h.Matrix.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := h.Matrix.At(i, j)
			x, y := float64(i), float64(j)
			if area := math.Abs(v); area > 0 {
				hs := math.Sqrt(area) / 2
				square := []vg.Point{
					{X: trX(x - hs), Y: trY(y - hs)},
					{X: trX(x + hs), Y: trY(y - hs)},
					{X: trX(x + hs), Y: trY(y + hs)},
					{X: trX(x - hs), Y: trY(y + hs)},
				}
				c.FillPolygon(cellColor(v), c.ClipPolygonXY(square))
			}
			sty := h.TextStyle
			sty.Color = labelColor(v)
			c.FillText(sty, vg.Point{X: trX(x), Y: trY(y)}, FormatCorrelation(v))
		}
	}
}

// DataRange implements plot.DataRanger.
func (h *Hinton) DataRange() (xmin, xmax, ymin, ymax float64) {
	rows, cols := h.Matrix.Dims()
	return -0.5, float64(rows) - 0.5, -0.5, float64(cols) - 0.5
}

// cellColor is a gray that darkens with the magnitude of the coefficient.
func cellColor(v float64) color.Color {
	g := uint8(math.Round(255 * math.Max(0, 1-math.Abs(v))))
	return color.Gray{Y: g}
}

func labelColor(v float64) color.Color {
	if math.Abs(v) > 0.5 {
		return color.White
	}
	return color.Black
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= 1e-8+1e-5*math.Abs(b)
}

// FormatCorrelation prints a coefficient compactly: 0, 1 and -1 exactly, two decimals
// without the leading zero otherwise.
func FormatCorrelation(v float64) string {
	switch {
	case closeTo(v, 0):
		return "0"
	case closeTo(v, 1):
		return "1"
	case closeTo(v, -1):
		return "-1"
	}
	s := strings.Replace(fmt.Sprintf("%0.2f", v), "-0", "-", 1)
	return strings.TrimLeft(s, "0")
}

// HintonPlot returns the plot of a square matrix with labelled rows and columns. The
// vertical axis runs downwards like the rows of a matrix.
func HintonPlot(m mat.Matrix, labels []string) (*plot.Plot, error) {
	rows, cols := m.Dims()
	if rows != cols {
		return nil, errors.Errorf("correlation matrix must be square, got %dx%d", rows, cols)
	}
	if len(labels) != rows {
		return nil, errors.Errorf("%d labels for a %dx%d matrix", len(labels), rows, cols)
	}

	p := New("", "", "")
	ticks := make(plot.ConstantTicks, len(labels))
	for i, l := range labels {
		ticks[i] = plot.Tick{Value: float64(i), Label: l}
	}
	for _, axis := range []*plot.Axis{&p.X, &p.Y} {
		axis.Tick.Marker = ticks
		axis.Tick.Label.Font.Size = vg.Points(hintonFontSize)
		axis.Tick.Length = 0
		axis.LineStyle.Width = 0
	}
	p.Y.Scale = plot.InvertedScale{Normalizer: p.Y.Scale}

	sty := p.X.Tick.Label
	sty.XAlign = text.XCenter
	sty.YAlign = text.YCenter
	p.Add(&Hinton{Matrix: m, TextStyle: sty})
	return p, nil
}
