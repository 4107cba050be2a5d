// Package analysis computes the diagnostics of a solve: reprojection residuals, terrain
// initialisation, and the statistics of feature matches.
package analysis

import (
	"fmt"
	"io"
	"math"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/geosolve/geotools/rimage/transform"
	"github.com/geosolve/geotools/utils"
)

// ComputeResiduals projects every terrain point into the view and subtracts the matching
// observation. Residuals are in pixels, I along rows and J along columns.
func ComputeResiduals(view transform.View, observations []transform.Pixel, terrain []r3.Vector) ([]transform.Pixel, error) {
	if len(observations) != len(terrain) {
		return nil, utils.NewLengthMismatchError("observations and terrain", len(terrain), len(observations))
	}
	out := make([]transform.Pixel, len(terrain))
	for k, w := range terrain {
		p, ok := view.WorldToPixel(w)
		if !ok {
			return nil, errors.Errorf("terrain point %d (%g, %g, %g) lies on the camera plane", k, w.X, w.Y, w.Z)
		}
		out[k] = transform.Pixel{I: p.I - observations[k].I, J: p.J - observations[k].J}
	}
	return out, nil
}

// ResidualNorms is the length of every residual.
func ResidualNorms(residuals []transform.Pixel) []float64 {
	return lo.Map(residuals, func(r transform.Pixel, _ int) float64 {
		return math.Hypot(r.I, r.J)
	})
}

// ResidualStats summarises a set of residuals.
type ResidualStats struct {
	Count  int
	MeanI  float64
	MeanJ  float64
	RMS    float64
	Median float64
	P95    float64
	Max    float64
}

// SummarizeResiduals computes ResidualStats. The median, percentile and maximum are taken
// over the residual norms.
func SummarizeResiduals(residuals []transform.Pixel) (ResidualStats, error) {
	if len(residuals) == 0 {
		return ResidualStats{}, errors.New("no residuals to summarize")
	}
	is := lo.Map(residuals, func(r transform.Pixel, _ int) float64 { return r.I })
	js := lo.Map(residuals, func(r transform.Pixel, _ int) float64 { return r.J })
	norms := ResidualNorms(residuals)
	squares := lo.Map(norms, func(n float64, _ int) float64 { return n * n })

	s := ResidualStats{Count: len(residuals)}
	var err error
	if s.MeanI, err = stats.Mean(is); err != nil {
		return s, err
	}
	if s.MeanJ, err = stats.Mean(js); err != nil {
		return s, err
	}
	meanSquare, err := stats.Mean(squares)
	if err != nil {
		return s, err
	}
	s.RMS = math.Sqrt(meanSquare)
	if s.Median, err = stats.Median(norms); err != nil {
		return s, err
	}
	if s.P95, err = stats.Percentile(norms, 95); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(norms); err != nil {
		return s, err
	}
	return s, nil
}

// String renders the summary as a table.
func (s ResidualStats) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Count", "Mean I", "Mean J", "RMS", "Median", "P95", "Max"})
	t.AppendRow(table.Row{
		s.Count,
		fmt.Sprintf("%.3f", s.MeanI),
		fmt.Sprintf("%.3f", s.MeanJ),
		fmt.Sprintf("%.3f", s.RMS),
		fmt.Sprintf("%.3f", s.Median),
		fmt.Sprintf("%.3f", s.P95),
		fmt.Sprintf("%.3f", s.Max),
	})
	return t.Render()
}

// FprintHistogram writes a terminal histogram of values.
func FprintHistogram(w io.Writer, values []float64, bins, width int) error {
	if len(values) == 0 {
		return errors.New("no values to plot")
	}
	hist := histogram.Hist(bins, values)
	return histogram.Fprint(w, hist, histogram.Linear(width))
}
