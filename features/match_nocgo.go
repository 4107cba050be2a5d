//go:build no_cgo

package features

import (
	"github.com/geosolve/geotools/logging"
)

// MatchPair needs OpenCV.
func MatchPair(logger logging.Logger, path1, path2, outDir string, algorithms []Algorithm) error {
	return errNotSupported
}
