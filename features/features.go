// Package features detects and matches keypoints between two images and writes the match
// directories the analysis commands read.
package features

import (
	"github.com/pkg/errors"
)

// Algorithm names a detector and descriptor pair.
type Algorithm string

// Supported algorithms. Each one gets its own directory under the pair directory.
const (
	ORB   Algorithm = "ORB"
	BRISK Algorithm = "BRISK"
	KAZE  Algorithm = "KAZE"
	AKAZE Algorithm = "AKAZE"
)

// Algorithms lists every supported algorithm.
var Algorithms = []Algorithm{ORB, BRISK, KAZE, AKAZE}

// Keypoint image names.
const (
	Keypoints1Filename = "kp1.jpg"
	Keypoints2Filename = "kp2.jpg"
)

var errNotSupported = errors.New("feature matching is not supported on this build")

// ParseAlgorithm validates an algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	for _, a := range Algorithms {
		if string(a) == name {
			return a, nil
		}
	}
	return "", errors.Errorf("unknown feature algorithm %q, expected one of %v", name, Algorithms)
}
