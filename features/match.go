//go:build !no_cgo

package features

import (
	"image/color"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/geosolve/geotools/analysis"
	"github.com/geosolve/geotools/logging"
)

// detector is the part of the gocv feature detectors geotools uses.
type detector interface {
	DetectAndCompute(src gocv.Mat, mask gocv.Mat) ([]gocv.KeyPoint, gocv.Mat)
	Close() error
}

func newDetector(a Algorithm) (detector, gocv.NormType, error) {
	switch a {
	case ORB:
		d := gocv.NewORB()
		return &d, gocv.NormHamming, nil
	case BRISK:
		d := gocv.NewBRISK()
		return &d, gocv.NormHamming, nil
	case KAZE:
		d := gocv.NewKAZE()
		return &d, gocv.NormL2, nil
	case AKAZE:
		d := gocv.NewAKAZE()
		return &d, gocv.NormHamming, nil
	default:
		return nil, 0, errors.Errorf("unknown feature algorithm %q", a)
	}
}

func readImage(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return img, errors.Errorf("cannot read image %q", path)
	}
	return img, nil
}

func writeImage(path string, img gocv.Mat) error {
	if !gocv.IMWrite(path, img) {
		return errors.Errorf("cannot write image %q", path)
	}
	return nil
}

// MatchPair runs every algorithm on two images and writes one directory per algorithm under
// outDir.
func MatchPair(logger logging.Logger, path1, path2, outDir string, algorithms []Algorithm) error {
	img1, err := readImage(path1)
	if err != nil {
		return err
	}
	defer img1.Close()
	img2, err := readImage(path2)
	if err != nil {
		return err
	}
	defer img2.Close()

	for _, a := range algorithms {
		dir := filepath.Join(outDir, string(a))
		n, err := analyze(dir, img1, img2, a)
		if err != nil {
			return errors.Wrapf(err, "%s", a)
		}
		logger.Infow("matched features", "algorithm", a, "matches", n, "dir", dir)
	}
	return nil
}

// analyze detects, describes and matches keypoints with one algorithm. Matches are written
// sorted by descriptor distance together with the image shape, the keypoint images and one
// match image per distance threshold.
func analyze(dir string, img1, img2 gocv.Mat, a Algorithm) (int, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return 0, err
	}
	det, norm, err := newDetector(a)
	if err != nil {
		return 0, err
	}
	defer det.Close()

	mask := gocv.NewMat()
	defer mask.Close()
	kp1, desc1 := det.DetectAndCompute(img1, mask)
	defer desc1.Close()
	kp2, desc2 := det.DetectAndCompute(img2, mask)
	defer desc2.Close()

	if err := writeKeypoints(filepath.Join(dir, Keypoints1Filename), img1, kp1); err != nil {
		return 0, err
	}
	if err := writeKeypoints(filepath.Join(dir, Keypoints2Filename), img2, kp2); err != nil {
		return 0, err
	}
	if desc1.Empty() || desc2.Empty() {
		return 0, errors.New("no descriptors to match")
	}

	bf := gocv.NewBFMatcherWithParams(norm, false)
	defer bf.Close()
	var dmatches []gocv.DMatch
	for _, m := range bf.KnnMatch(desc1, desc2, 1) {
		if len(m) > 0 {
			dmatches = append(dmatches, m[0])
		}
	}

	matches := make([]analysis.Match, len(dmatches))
	for i, m := range dmatches {
		p1, p2 := kp1[m.QueryIdx], kp2[m.TrainIdx]
		matches[i] = analysis.Match{X1: p1.X, Y1: p1.Y, X2: p2.X, Y2: p2.Y, Distance: m.Distance}
	}
	analysis.SortByDistance(matches)
	if err := analysis.WriteMatches(filepath.Join(dir, analysis.MatchesFilename), matches); err != nil {
		return 0, err
	}
	shape := analysis.Shape{Rows: float64(img1.Rows()), Cols: float64(img1.Cols())}
	if err := analysis.WriteShape(filepath.Join(dir, analysis.ShapeFilename), shape); err != nil {
		return 0, err
	}

	for _, threshold := range analysis.MatchImageThresholds {
		if err := writeMatchImage(dir, img1, img2, kp1, kp2, dmatches, threshold); err != nil {
			return 0, err
		}
	}
	return len(matches), nil
}

func writeKeypoints(path string, img gocv.Mat, kp []gocv.KeyPoint) error {
	drawn := gocv.NewMat()
	defer drawn.Close()
	gocv.DrawKeyPoints(img, kp, &drawn, color.RGBA{0, 255, 0, 0}, gocv.DrawDefault)
	return writeImage(path, drawn)
}

func writeMatchImage(
	dir string,
	img1, img2 gocv.Mat,
	kp1, kp2 []gocv.KeyPoint,
	matches []gocv.DMatch,
	threshold float64,
) error {
	var good []gocv.DMatch
	for _, m := range matches {
		if m.Distance <= threshold {
			good = append(good, m)
		}
	}
	if len(good) == 0 {
		return nil
	}
	out := gocv.NewMat()
	defer out.Close()
	green := color.RGBA{0, 255, 0, 255}
	gocv.DrawMatches(img1, kp1, img2, kp2, good, &out, green, green, nil, gocv.NotDrawSinglePoints)
	return writeImage(filepath.Join(dir, analysis.MatchImageName(threshold)), out)
}
