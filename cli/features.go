package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/plot"

	"github.com/geosolve/geotools/analysis"
	"github.com/geosolve/geotools/features"
	"github.com/geosolve/geotools/logging"
	"github.com/geosolve/geotools/plots"
	"github.com/geosolve/geotools/rimage"
	"github.com/geosolve/geotools/utils"
)

// Plot files written next to the matches.
const (
	DistancesHistogramFilename = "histogram_distances.pdf"
	DistancesPlotFilename      = "plot_distances.pdf"
	AngleSpreadFilename        = "plot_angle_spread.pdf"
	CoveragePlotFilename       = "plot_spatial_coverage.pdf"
	OutliersPlotFilename       = "plot_outliers.pdf"
	ViewAnglePlotFilename      = "plot_view_angle.pdf"
	FeaturesTableFilename      = "features_list.tex"

	distanceBins = 50
	angleBins    = 100
)

// AnglesHistogramFilename names the match angle histogram of the matches closer than
// threshold. A zero threshold keeps every match.
func AnglesHistogramFilename(threshold float64) string {
	if threshold == 0 {
		return "histogram_angles_all.pdf"
	}
	return fmt.Sprintf("histogram_angles_%g.pdf", threshold)
}

func saveFigure(logger logging.Logger, p *plot.Plot, size plots.Size, base string) error {
	paths, err := plots.SaveFigure(p, size, base)
	if err != nil {
		return err
	}
	logger.Debugw("figure saved", "paths", paths)
	return nil
}

func savePlot(logger logging.Logger, p *plot.Plot, size plots.Size, path string) error {
	if err := plots.Save(p, size, path); err != nil {
		return err
	}
	logger.Debugw("figure saved", "path", path)
	return nil
}

// readMatchDir loads the matches of a directory and the size of the first image, from the
// shape file or else from the keypoints image.
func readMatchDir(dir string) ([]analysis.Match, analysis.Shape, error) {
	matches, err := analysis.ReadMatches(filepath.Join(dir, analysis.MatchesFilename))
	if err != nil {
		return nil, analysis.Shape{}, err
	}
	shapePath := filepath.Join(dir, analysis.ShapeFilename)
	if utils.FileExists(shapePath) {
		shape, err := analysis.ReadShape(shapePath)
		return matches, shape, err
	}
	kp, err := rimage.ReadImageFromFile(filepath.Join(dir, features.Keypoints1Filename))
	if err != nil {
		return nil, analysis.Shape{}, errors.Wrapf(err, "%s has neither %s nor %s",
			dir, analysis.ShapeFilename, features.Keypoints1Filename)
	}
	return matches, analysis.Shape{Rows: float64(kp.Height()), Cols: float64(kp.Width())}, nil
}

// FeaturesAnalysisAction is the corresponding action for 'features-analysis'.
func FeaturesAnalysisAction(c *cli.Context) error {
	if err := requireArgs(c, "<dir>"); err != nil {
		return err
	}
	env, err := newCommandEnv(c)
	if err != nil {
		return err
	}
	dir := c.Args().First()
	matches, shape, err := readMatchDir(dir)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return errors.Errorf("%s holds no matches", dir)
	}
	distances := analysis.Distances(matches)
	angles := analysis.MatchAngles(matches, shape)

	p, err := plots.Histogram(distances, distanceBins, false, "Distance", "Count")
	if err != nil {
		return err
	}
	if err := savePlot(env.logger, p, plots.WideSize, filepath.Join(dir, DistancesHistogramFilename)); err != nil {
		return err
	}

	for _, threshold := range append([]float64{0}, analysis.DistanceThresholds...) {
		selected := angles
		if threshold > 0 {
			selected = analysis.BelowDistance(matches, angles, threshold)
		}
		if len(selected) == 0 {
			env.logger.Debugw("no match below distance", "threshold", threshold)
			continue
		}
		p, err := plots.Histogram(selected, angleBins, false, "Match line angle", "Frequency")
		if err != nil {
			return err
		}
		if err := savePlot(env.logger, p, plots.WideSize, filepath.Join(dir, AnglesHistogramFilename(threshold))); err != nil {
			return err
		}
	}

	p, err = plots.Series(distances, "Match number", "Distance")
	if err != nil {
		return err
	}
	plots.SetYRange(p, 0, lo.Max(distances))
	if err := savePlot(env.logger, p, plots.SmallSize, filepath.Join(dir, DistancesPlotFilename)); err != nil {
		return err
	}

	p, err = plots.StemPlot(angles, "Feature number", "Angle")
	if err != nil {
		return err
	}
	plots.SetYRange(p, -3, 3)
	if err := savePlot(env.logger, p, plots.SmallSize, filepath.Join(dir, AngleSpreadFilename)); err != nil {
		return err
	}

	coverage := lo.Map(analysis.SpatialCoverage(matches, shape), func(f float64, _ int) float64 { return 100 * f })
	p, err = plots.Series(coverage, "Match number", "Spatial coverage (%)")
	if err != nil {
		return err
	}
	plots.SetYRange(p, 0, 100)
	if err := savePlot(env.logger, p, plots.SmallSize, filepath.Join(dir, CoveragePlotFilename)); err != nil {
		return err
	}
	printf(c.App.Writer, "%d matches analysed in %s", len(matches), dir)
	return nil
}

// OutlierAnalysisAction is the corresponding action for 'outlier-analysis'.
func OutlierAnalysisAction(c *cli.Context) error {
	if err := requireArgs(c, "<dir>"); err != nil {
		return err
	}
	env, err := newCommandEnv(c)
	if err != nil {
		return err
	}
	return analysis.WalkMatchDirs(c.Args().First(), func(dir string) error {
		thresholdPath := filepath.Join(dir, analysis.ThresholdFilename)
		if !utils.FileExists(thresholdPath) {
			printf(c.App.Writer, "%s --- no %s", dir, analysis.ThresholdFilename)
			return nil
		}
		threshold, ok, err := analysis.ReadThreshold(thresholdPath)
		if err != nil {
			return err
		}
		if !ok {
			printf(c.App.Writer, "%s --- empty %s", dir, analysis.ThresholdFilename)
			return nil
		}
		matches, shape, err := readMatchDir(dir)
		if err != nil {
			return err
		}
		frequency := analysis.OutlierFrequency(analysis.MatchAngles(matches, shape), threshold)
		p, err := plots.Series(frequency, "Match number (by distance)", "Outlier fraction (%)")
		if err != nil {
			return err
		}
		if err := savePlot(env.logger, p, plots.SmallSize, filepath.Join(dir, OutliersPlotFilename)); err != nil {
			return err
		}
		printf(c.App.Writer, "%s", dir)
		return nil
	})
}

// FeaturesTableAction is the corresponding action for 'features-table'.
func FeaturesTableAction(c *cli.Context) error {
	if err := requireArgs(c, "<dir>"); err != nil {
		return err
	}
	env, err := newCommandEnv(c)
	if err != nil {
		return err
	}
	pairs, err := analysis.PairDirectories(c.Args().First())
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return errors.Errorf("no image pair directory under %s", c.Args().First())
	}
	roots := lo.Keys(pairs)
	sort.Strings(roots)
	threshold := c.Float64(featuresFlagThreshold)
	for _, root := range roots {
		rows, err := analysis.FeaturesTable(root, pairs[root], threshold)
		if err != nil {
			return errors.Wrapf(err, "features table of %s", root)
		}
		out := filepath.Join(root, FeaturesTableFilename)
		if err := os.WriteFile(out, []byte(analysis.FormatLatexTable(rows)), 0o600); err != nil {
			return err
		}
		env.logger.Infow("features table written", "path", out)
		printf(c.App.Writer, "%s\n%s", root, analysis.RenderFeaturesTable(rows))
	}
	return nil
}

// ViewAngleAction is the corresponding action for 'view-angle'.
func ViewAngleAction(c *cli.Context) error {
	if err := requireArgs(c, "[dir]"); err != nil {
		return err
	}
	env, err := newCommandEnv(c)
	if err != nil {
		return err
	}
	dir := argOr(c, 0, ".")
	matches, shape, err := readMatchDir(dir)
	if err != nil {
		return err
	}
	angles := analysis.MatchAngles(matches, shape)
	if err := analysis.FprintHistogram(c.App.Writer, angles, residualHistogramBins, residualHistogramWidth); err != nil {
		return err
	}
	p, err := plots.Series(angles, "Feature number (by distance)", "Angle")
	if err != nil {
		return err
	}
	return savePlot(env.logger, p, plots.WideSize, filepath.Join(dir, ViewAnglePlotFilename))
}

// SpatialChi2Action is the corresponding action for 'spatial-chi2'.
func SpatialChi2Action(c *cli.Context) error {
	if err := requireArgs(c, "<dir>"); err != nil {
		return err
	}
	env, err := newCommandEnv(c)
	if err != nil {
		return err
	}
	matches, shape, err := readMatchDir(c.Args().First())
	if err != nil {
		return err
	}
	count := c.Int(featuresFlagCount)
	if count == 0 {
		count = analysis.GridCount(len(matches))
	}
	res, err := analysis.SpatialChi2(matches, shape, count)
	if err != nil {
		return err
	}
	env.logger.Debugw("spatial chi2", "count", count, "mean", res.Mean, "df", res.DF)

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Keypoints per cell", "Observed", "Expected"})
	for k := range res.Observed {
		label := fmt.Sprint(k)
		if k == len(res.Observed)-1 {
			label += "+"
		}
		t.AppendRow(table.Row{label, res.Observed[k], fmt.Sprintf("%.2f", res.Expected[k])})
	}
	t.AppendFooter(table.Row{"chi2", fmt.Sprintf("%.3f", res.Stat), fmt.Sprintf("p = %.4g", res.PValue)})
	printf(c.App.Writer, "%s", t.Render())
	return nil
}

// MatchFeaturesAction is the corresponding action for 'match-features'.
func MatchFeaturesAction(c *cli.Context) error {
	if err := requireArgs(c, "<image1>", "<image2>", "<out_dir>"); err != nil {
		return err
	}
	env, err := newCommandEnv(c)
	if err != nil {
		return err
	}
	algorithms := make([]features.Algorithm, 0, len(c.StringSlice(featuresFlagAlgorithms)))
	for _, name := range c.StringSlice(featuresFlagAlgorithms) {
		a, err := features.ParseAlgorithm(name)
		if err != nil {
			return err
		}
		algorithms = append(algorithms, a)
	}
	outDir := c.Args().Get(2)
	if err := features.MatchPair(env.logger, c.Args().Get(0), c.Args().Get(1), outDir, algorithms); err != nil {
		return err
	}
	printf(c.App.Writer, "matches written to %s", outDir)
	return nil
}
