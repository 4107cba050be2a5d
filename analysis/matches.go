package analysis

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
)

// File names of a features analysis directory.
const (
	MatchesFilename   = "matches.txt"
	ShapeFilename     = "shape.txt"
	ThresholdFilename = "outlier_threshold.txt"
)

// MatchImageThresholds are the distance thresholds match images are drawn for. The first
// one keeps every match.
var MatchImageThresholds = []float64{1e9, 500, 400, 300, 200, 100, 50, 10}

// MatchImageName is the file name of the match image drawn for a distance threshold.
func MatchImageName(threshold float64) string {
	return strconv.FormatFloat(threshold, 'g', -1, 64) + ".jpg"
}

// SortByDistance orders matches by increasing descriptor distance, keeping the order of
// equal distances.
func SortByDistance(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
}

// Match is a keypoint correspondence between two images, sorted by descriptor distance in
// match files.
type Match struct {
	X1, Y1   float64
	X2, Y2   float64
	Distance float64
}

// Shape is the size of the images a match file was computed on.
type Shape struct {
	Rows float64
	Cols float64
}

// readFloatRows parses whitespace separated numbers, one record per line. Blank lines and
// lines starting with # are skipped.
func readFloatRows(r io.Reader) ([][]float64, error) {
	var rows [][]float64
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", line)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, scanner.Err()
}

func readFloatFile(path string) ([][]float64, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer goutils.UncheckedErrorFunc(f.Close)
	rows, err := readFloatRows(f)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse %q", path)
	}
	return rows, nil
}

// ParseMatches reads "x1 y1 x2 y2 dist" records.
func ParseMatches(r io.Reader) ([]Match, error) {
	rows, err := readFloatRows(r)
	if err != nil {
		return nil, err
	}
	matches := make([]Match, len(rows))
	for i, row := range rows {
		if len(row) != 5 {
			return nil, errors.Errorf("match %d has %d values, expected 5", i, len(row))
		}
		matches[i] = Match{X1: row[0], Y1: row[1], X2: row[2], Y2: row[3], Distance: row[4]}
	}
	return matches, nil
}

// ReadMatches reads a match file.
func ReadMatches(path string) ([]Match, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer goutils.UncheckedErrorFunc(f.Close)
	matches, err := ParseMatches(f)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse %q", path)
	}
	return matches, nil
}

// WriteMatches writes a match file.
func WriteMatches(path string, matches []Match) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintln(w, "# Keypoints matches file, x y x y dist"); err != nil {
		return err
	}
	for _, m := range matches {
		if _, err := fmt.Fprintf(w, "%g %g %g %g %g\n", m.X1, m.Y1, m.X2, m.Y2, m.Distance); err != nil {
			return err
		}
	}
	return w.Flush()
}

// ReadShape reads the image size of a shape file: rows then columns, optionally followed by
// the channel count.
func ReadShape(path string) (Shape, error) {
	rows, err := readFloatFile(path)
	if err != nil {
		return Shape{}, err
	}
	var values []float64
	for _, r := range rows {
		values = append(values, r...)
	}
	if len(values) < 2 {
		return Shape{}, errors.Errorf("%q needs rows and cols, got %d values", path, len(values))
	}
	if values[0] <= 0 || values[1] <= 0 {
		return Shape{}, errors.Errorf("%q has an empty image shape %gx%g", path, values[0], values[1])
	}
	return Shape{Rows: values[0], Cols: values[1]}, nil
}

// WriteShape writes a shape file.
func WriteShape(path string, shape Shape) error {
	return os.WriteFile(path, []byte(fmt.Sprintf("%g %g\n", shape.Rows, shape.Cols)), 0o600)
}

// ReadThreshold reads an outlier threshold file. ok is false when the file holds no value.
func ReadThreshold(path string) (threshold float64, ok bool, err error) {
	rows, err := readFloatFile(path)
	if err != nil {
		return 0, false, err
	}
	var values []float64
	for _, r := range rows {
		values = append(values, r...)
	}
	if len(values) != 1 {
		return 0, false, nil
	}
	return values[0], true, nil
}

// WalkMatchDirs calls fn for every directory under root holding a match file, in lexical order.
func WalkMatchDirs(root string, fn func(dir string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if _, err := os.Stat(filepath.Join(path, MatchesFilename)); err != nil {
			return nil
		}
		return fn(path)
	})
}
