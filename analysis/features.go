package analysis

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/geosolve/geotools/utils"
)

// DistanceThresholds are the descriptor distances below which match angles are histogrammed.
var DistanceThresholds = []float64{10, 50, 100, 200, 300}

// MatchAngle is the angle in degrees of the line joining both keypoints of a match when the
// two images are put side by side. Correct matches of a pure translation share one angle.
func MatchAngle(m Match, shape Shape) float64 {
	return utils.RadToDeg(math.Atan((m.Y2 - m.Y1) / (m.X2 - m.X1 + shape.Cols)))
}

// MatchAngles applies MatchAngle to every match.
func MatchAngles(matches []Match, shape Shape) []float64 {
	return lo.Map(matches, func(m Match, _ int) float64 { return MatchAngle(m, shape) })
}

// Distances returns the descriptor distance of every match.
func Distances(matches []Match) []float64 {
	return lo.Map(matches, func(m Match, _ int) float64 { return m.Distance })
}

// BelowDistance keeps the values whose match is closer than threshold.
func BelowDistance(matches []Match, values []float64, threshold float64) []float64 {
	return lo.Filter(values, func(_ float64, i int) bool { return matches[i].Distance < threshold })
}

// OutlierFlags marks the angles larger in magnitude than threshold.
func OutlierFlags(angles []float64, threshold float64) []bool {
	return lo.Map(angles, func(a float64, _ int) bool { return math.Abs(a) > threshold })
}

// FirstOutlier returns the index of the first outlier angle.
func FirstOutlier(angles []float64, threshold float64) (int, bool) {
	_, idx, ok := lo.FindIndexOf(angles, func(a float64) bool { return math.Abs(a) > threshold })
	return idx, ok
}

// OutlierFrequency is, for every k, the number of outliers among the first k+1 matches as a
// percentage of all matches.
func OutlierFrequency(angles []float64, threshold float64) []float64 {
	return lo.Map(utils.CumulativeFraction(OutlierFlags(angles, threshold)), func(f float64, _ int) float64 {
		return 100 * f
	})
}

// GridCount is the side of the coverage grid used for n matches.
func GridCount(n int) int {
	return int(math.Sqrt(float64(n)))
}

// cellOf returns the grid cell of the first keypoint of a match.
func cellOf(m Match, shape Shape, count int) (row, col int) {
	clamp := func(v int) int { return max(0, min(count-1, v)) }
	row = clamp(int(math.Floor(m.Y1 / (shape.Rows / float64(count)))))
	col = clamp(int(math.Floor(m.X1 / (shape.Cols / float64(count)))))
	return row, col
}

// CellCounts divides the first image in a count x count grid and counts the keypoints of
// each cell, row-major.
func CellCounts(matches []Match, shape Shape, count int) []int {
	if count <= 0 {
		return nil
	}
	cells := make([]int, count*count)
	for _, m := range matches {
		row, col := cellOf(m, shape, count)
		cells[row*count+col]++
	}
	return cells
}

// SpatialCoverage is, after every match, the fraction of the cells of a GridCount(n) grid
// that hold at least one keypoint of the first image.
func SpatialCoverage(matches []Match, shape Shape) []float64 {
	count := GridCount(len(matches))
	if count == 0 {
		return nil
	}
	cells := make([]bool, count*count)
	covered := 0
	coverage := make([]float64, len(matches))
	for i, m := range matches {
		row, col := cellOf(m, shape, count)
		if k := row*count + col; !cells[k] {
			cells[k] = true
			covered++
		}
		coverage[i] = float64(covered) / float64(len(cells))
	}
	return coverage
}

// FeaturesRow summarises the matches of one detector: how many matches come before the first
// outlier and how much of the image they cover.
type FeaturesRow struct {
	Algorithm    string
	FirstOutlier int
	Coverage     float64
}

// NewFeaturesRow computes the row of one algorithm. Without any outlier, FirstOutlier is the
// number of matches and Coverage the final coverage.
func NewFeaturesRow(algorithm string, matches []Match, shape Shape, threshold float64) (FeaturesRow, error) {
	if len(matches) == 0 {
		return FeaturesRow{}, errors.Errorf("%s has no matches", algorithm)
	}
	angles := MatchAngles(matches, shape)
	coverage := SpatialCoverage(matches, shape)
	first, ok := FirstOutlier(angles, threshold)
	if !ok {
		first = len(matches)
	}
	return FeaturesRow{
		Algorithm:    algorithm,
		FirstOutlier: first,
		Coverage:     coverage[min(first, len(coverage)-1)],
	}, nil
}

// FeaturesTable reads every algorithm directory of an image pair directory.
func FeaturesTable(root string, subdirs []string, threshold float64) ([]FeaturesRow, error) {
	rows := make([]FeaturesRow, 0, len(subdirs))
	for _, sub := range subdirs {
		dir := filepath.Join(root, sub)
		shape, err := ReadShape(filepath.Join(dir, ShapeFilename))
		if err != nil {
			return nil, err
		}
		matches, err := ReadMatches(filepath.Join(dir, MatchesFilename))
		if err != nil {
			return nil, err
		}
		row, err := NewFeaturesRow(sub, matches, shape, threshold)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// PairDirectories lists the image pair directories under root: those whose first
// subdirectory holds a match file. Subdirectories are returned sorted for every pair.
func PairDirectories(root string) (map[string][]string, error) {
	pairs := map[string][]string{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return err
		}
		var subdirs []string
		for _, e := range entries {
			if e.IsDir() {
				subdirs = append(subdirs, e.Name())
			}
		}
		if len(subdirs) == 0 {
			return nil
		}
		sort.Strings(subdirs)
		if utils.FileExists(filepath.Join(path, subdirs[0], MatchesFilename)) {
			pairs[path] = subdirs
		}
		return nil
	})
	return pairs, err
}

// FormatLatexTable writes one LaTeX table row per algorithm.
func FormatLatexTable(rows []FeaturesRow) string {
	var sb strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&sb, "%s & %d & %0.1f\\%% \\\\\n", r.Algorithm, r.FirstOutlier, 100*r.Coverage)
	}
	return sb.String()
}

// RenderFeaturesTable renders the rows for a terminal.
func RenderFeaturesTable(rows []FeaturesRow) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Algorithm", "First outlier", "Coverage"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Algorithm, r.FirstOutlier, fmt.Sprintf("%0.1f%%", 100*r.Coverage)})
	}
	return t.Render()
}
