package cli

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"github.com/geosolve/geotools/analysis"
	"github.com/geosolve/geotools/testutils"
)

// writeMatchDir writes 20 matches spread over a 100x100 image whose angles grow with their
// distance, so that only the last two are above one degree.
func writeMatchDir(t *testing.T, dir, threshold string) {
	t.Helper()
	test.That(t, os.MkdirAll(dir, 0o750), test.ShouldBeNil)
	matches := make([]analysis.Match, 20)
	for i := range matches {
		x, y := float64(i%5)*20+5, float64(i/5)*25+5
		matches[i] = analysis.Match{X1: x, Y1: y, X2: x, Y2: y + 0.1*float64(i), Distance: float64(i + 1)}
	}
	test.That(t, analysis.WriteMatches(filepath.Join(dir, analysis.MatchesFilename), matches), test.ShouldBeNil)
	test.That(t, analysis.WriteShape(filepath.Join(dir, analysis.ShapeFilename), analysis.Shape{Rows: 100, Cols: 100}),
		test.ShouldBeNil)
	if threshold != "" {
		testutils.WriteFile(t, dir, analysis.ThresholdFilename, threshold)
	}
}

func TestAnglesHistogramFilename(t *testing.T) {
	test.That(t, AnglesHistogramFilename(0), test.ShouldEqual, "histogram_angles_all.pdf")
	test.That(t, AnglesHistogramFilename(50), test.ShouldEqual, "histogram_angles_50.pdf")
}

func TestFeaturesAnalysisAction(t *testing.T) {
	dir := testutils.TempDir(t, "", "cli")
	cfg := writeConfig(t, dir, "{}")
	matchDir := filepath.Join(dir, "ORB")
	writeMatchDir(t, matchDir, "")

	out, _, err := runApp(t, cfg, "features-analysis", matchDir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "20 matches")
	for _, name := range []string{
		DistancesHistogramFilename, DistancesPlotFilename, AngleSpreadFilename, CoveragePlotFilename,
		AnglesHistogramFilename(0), AnglesHistogramFilename(10), AnglesHistogramFilename(300),
	} {
		fileExists(t, filepath.Join(matchDir, name))
	}

	_, _, err = runApp(t, cfg, "features-analysis", filepath.Join(dir, "missing"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestOutlierAnalysisAction(t *testing.T) {
	dir := testutils.TempDir(t, "", "cli")
	cfg := writeConfig(t, dir, "{}")
	writeMatchDir(t, filepath.Join(dir, "lake", "BRISK"), "\n")
	writeMatchDir(t, filepath.Join(dir, "lake", "KAZE"), "")
	writeMatchDir(t, filepath.Join(dir, "lake", "ORB"), "1\n")

	out, _, err := runApp(t, cfg, "outlier-analysis", dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "--- empty "+analysis.ThresholdFilename)
	test.That(t, out, test.ShouldContainSubstring, "--- no "+analysis.ThresholdFilename)
	fileExists(t, filepath.Join(dir, "lake", "ORB", OutliersPlotFilename))
	_, err = os.Stat(filepath.Join(dir, "lake", "BRISK", OutliersPlotFilename))
	test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
}

func TestFeaturesTableAction(t *testing.T) {
	dir := testutils.TempDir(t, "", "cli")
	cfg := writeConfig(t, dir, "{}")
	writeMatchDir(t, filepath.Join(dir, "lake", "BRISK"), "")
	writeMatchDir(t, filepath.Join(dir, "lake", "ORB"), "")

	out, _, err := runApp(t, cfg, "features-table", dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "ORB")
	tex, err := os.ReadFile(filepath.Join(dir, "lake", FeaturesTableFilename))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(tex), test.ShouldStartWith, "BRISK & 18 & ")

	_, _, err = runApp(t, cfg, "features-table", testutils.TempDir(t, "", "empty"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no image pair directory")
}

func TestViewAngleAction(t *testing.T) {
	dir := testutils.TempDir(t, "", "cli")
	cfg := writeConfig(t, dir, "{}")
	writeMatchDir(t, dir, "")

	_, _, err := runApp(t, cfg, "view-angle", dir)
	test.That(t, err, test.ShouldBeNil)
	fileExists(t, filepath.Join(dir, ViewAnglePlotFilename))
}

func TestSpatialChi2Action(t *testing.T) {
	dir := testutils.TempDir(t, "", "cli")
	cfg := writeConfig(t, dir, "{}")
	writeMatchDir(t, dir, "")

	out, _, err := runApp(t, cfg, "spatial-chi2", dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "CHI2")
	test.That(t, out, test.ShouldContainSubstring, "P = ")

	_, _, err = runApp(t, cfg, "spatial-chi2", "--count", "-2", dir)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestMatchFeaturesUnknownAlgorithm(t *testing.T) {
	dir := testutils.TempDir(t, "", "cli")
	cfg := writeConfig(t, dir, "{}")
	_, _, err := runApp(t, cfg, "match-features", "--algorithms", "SURF", "a.jpg", "b.jpg", dir)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "SURF")
}
