package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"

	"github.com/geosolve/geotools/testutils"
)

var square = Shape{Rows: 100, Cols: 100}

func TestMatchAngle(t *testing.T) {
	test.That(t, MatchAngle(Match{X1: 10, Y1: 20, X2: 10, Y2: 20}, square), test.ShouldEqual, 0.)
	test.That(t, MatchAngle(Match{X1: 10, Y1: 0, X2: 10, Y2: 100}, square), test.ShouldAlmostEqual, 45)
	test.That(t, MatchAngle(Match{X1: 50, Y1: 100, X2: 0, Y2: 50}, square), test.ShouldAlmostEqual, -45)

	matches := []Match{{Distance: 5}, {Y2: 100, Distance: 20}, {Distance: 70}}
	angles := MatchAngles(matches, square)
	test.That(t, angles, test.ShouldHaveLength, 3)
	test.That(t, Distances(matches), test.ShouldResemble, []float64{5, 20, 70})
	test.That(t, BelowDistance(matches, angles, 50), test.ShouldHaveLength, 2)
	test.That(t, BelowDistance(matches, angles, 10), test.ShouldResemble, []float64{0})
}

func TestOutliers(t *testing.T) {
	angles := []float64{0, 0.5, 2, -3}
	test.That(t, OutlierFlags(angles, 1), test.ShouldResemble, []bool{false, false, true, true})

	first, ok := FirstOutlier(angles, 1)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, first, test.ShouldEqual, 2)
	_, ok = FirstOutlier(angles, 5)
	test.That(t, ok, test.ShouldBeFalse)

	freq := OutlierFrequency(angles, 1)
	test.That(t, freq, test.ShouldHaveLength, 4)
	test.That(t, freq[1], test.ShouldEqual, 0.)
	test.That(t, freq[2], test.ShouldAlmostEqual, 25)
	test.That(t, freq[3], test.ShouldAlmostEqual, 50)
}

func TestSpatialCoverage(t *testing.T) {
	matches := []Match{{X1: 10, Y1: 10}, {X1: 20, Y1: 20}, {X1: 60, Y1: 10}, {X1: 60, Y1: 60}}
	test.That(t, GridCount(len(matches)), test.ShouldEqual, 2)
	test.That(t, SpatialCoverage(matches, square), test.ShouldResemble, []float64{0.25, 0.25, 0.5, 0.75})
	test.That(t, CellCounts(matches, square, 2), test.ShouldResemble, []int{2, 1, 0, 1})

	// keypoints on the far border stay in the last cell
	test.That(t, CellCounts([]Match{{X1: 100, Y1: 100}}, square, 2), test.ShouldResemble, []int{0, 0, 0, 1})
	test.That(t, SpatialCoverage(nil, square), test.ShouldBeEmpty)
	test.That(t, CellCounts(matches, square, 0), test.ShouldBeEmpty)
}

func TestNewFeaturesRow(t *testing.T) {
	matches := []Match{
		{X1: 10, Y1: 10, X2: 10, Y2: 10},
		{X1: 60, Y1: 10, X2: 60, Y2: 10},
		{X1: 10, Y1: 60, X2: 10, Y2: 90},
		{X1: 60, Y1: 60, X2: 60, Y2: 60},
	}
	row, err := NewFeaturesRow("ORB", matches, square, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, row, test.ShouldResemble, FeaturesRow{Algorithm: "ORB", FirstOutlier: 2, Coverage: 0.75})

	row, err = NewFeaturesRow("SIFT", matches[:2], square, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, row.FirstOutlier, test.ShouldEqual, 2)
	test.That(t, row.Coverage, test.ShouldEqual, 1.)

	_, err = NewFeaturesRow("none", nil, square, 1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFormatTables(t *testing.T) {
	rows := []FeaturesRow{{"ORB", 12, 0.5}, {"SURF-400", 3, 0.125}}
	test.That(t, FormatLatexTable(rows), test.ShouldEqual,
		"ORB & 12 & 50.0\\% \\\\\nSURF-400 & 3 & 12.5\\% \\\\\n")
	rendered := RenderFeaturesTable(rows)
	test.That(t, rendered, test.ShouldContainSubstring, "SURF-400")
	test.That(t, rendered, test.ShouldContainSubstring, "12.5%")
}

func writeAlgorithm(t *testing.T, dir string, matches string) {
	t.Helper()
	testutils.WriteFile(t, dir, MatchesFilename, "# Keypoints matches file, x y x y dist\n"+matches)
	testutils.WriteFile(t, dir, ShapeFilename, "100 100\n")
}

func TestFeaturesTableFromDirectories(t *testing.T) {
	root := testutils.TempDir(t, "", "features")
	pair := filepath.Join(root, "lake")
	writeAlgorithm(t, filepath.Join(pair, "ORB"), "10 10 10 10 1\n60 60 60 90 2\n")
	writeAlgorithm(t, filepath.Join(pair, "BRISK"), "10 10 10 10 1\n60 60 60 60 2\n60 10 60 10 3\n10 60 10 60 4\n")

	pairs, err := PairDirectories(root)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pairs, test.ShouldHaveLength, 1)
	test.That(t, pairs[pair], test.ShouldResemble, []string{"BRISK", "ORB"})

	rows, err := FeaturesTable(pair, pairs[pair], 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rows, test.ShouldResemble, []FeaturesRow{
		{Algorithm: "BRISK", FirstOutlier: 4, Coverage: 1},
		{Algorithm: "ORB", FirstOutlier: 1, Coverage: 1},
	})

	var visited []string
	err = WalkMatchDirs(root, func(dir string) error {
		visited = append(visited, filepath.Base(dir))
		return nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, visited, test.ShouldResemble, []string{"BRISK", "ORB"})

	test.That(t, os.Remove(filepath.Join(pair, "ORB", ShapeFilename)), test.ShouldBeNil)
	_, err = FeaturesTable(pair, pairs[pair], 1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestParseMatches(t *testing.T) {
	matches, err := ParseMatches(strings.NewReader("# header\n\n1 2 3 4 5\n 6 7 8 9 10 \n"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, matches, test.ShouldResemble, []Match{{1, 2, 3, 4, 5}, {6, 7, 8, 9, 10}})

	_, err = ParseMatches(strings.NewReader("1 2 3 4\n"))
	test.That(t, err, test.ShouldNotBeNil)
	_, err = ParseMatches(strings.NewReader("1 2 3 4 x\n"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestMatchFilesRoundTrip(t *testing.T) {
	dir := testutils.TempDir(t, "", "matches")
	matches := []Match{{1.5, 2, 3, 4, 5.25}, {6, 7, 8, 9, 10}}
	path := filepath.Join(dir, MatchesFilename)
	test.That(t, WriteMatches(path, matches), test.ShouldBeNil)
	read, err := ReadMatches(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, read, test.ShouldResemble, matches)

	shapePath := filepath.Join(dir, ShapeFilename)
	test.That(t, WriteShape(shapePath, Shape{Rows: 2832, Cols: 4256}), test.ShouldBeNil)
	shape, err := ReadShape(shapePath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, shape, test.ShouldResemble, Shape{Rows: 2832, Cols: 4256})

	// a three value shape carries the channel count
	shape, err = ReadShape(testutils.WriteFile(t, dir, "shape3.txt", "10\n20\n3\n"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, shape, test.ShouldResemble, Shape{Rows: 10, Cols: 20})
	_, err = ReadShape(testutils.WriteFile(t, dir, "bad.txt", "10\n"))
	test.That(t, err, test.ShouldNotBeNil)
	_, err = ReadMatches(filepath.Join(dir, "missing.txt"))
	test.That(t, err, test.ShouldNotBeNil)

	threshold, ok, err := ReadThreshold(testutils.WriteFile(t, dir, ThresholdFilename, "1.5\n"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, threshold, test.ShouldEqual, 1.5)
	_, ok, err = ReadThreshold(testutils.WriteFile(t, dir, "empty.txt", ""))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestMatchImages(t *testing.T) {
	test.That(t, MatchImageName(1e9), test.ShouldEqual, "1e+09.jpg")
	test.That(t, MatchImageName(50), test.ShouldEqual, "50.jpg")

	matches := []Match{{X1: 1, Distance: 30}, {X1: 2, Distance: 10}, {X1: 3, Distance: 30}, {X1: 4, Distance: 0}}
	SortByDistance(matches)
	test.That(t, Distances(matches), test.ShouldResemble, []float64{0, 10, 30, 30})
	test.That(t, matches[2].X1, test.ShouldEqual, 1.)
}
