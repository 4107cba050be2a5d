package analysis

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/geosolve/geotools/rimage/transform"
	"github.com/geosolve/geotools/utils"
)

// InverseFeaturesAverage brings both observations of every correspondence down to the
// elevation and returns the midpoint of the two ground positions. It is the initial terrain
// of a terrain solve.
func InverseFeaturesAverage(
	viewA, viewB transform.View,
	obsA, obsB []transform.Pixel,
	elevation float64,
) ([]r3.Vector, error) {
	if len(obsA) != len(obsB) {
		return nil, utils.NewLengthMismatchError("observation pair", len(obsA), len(obsB))
	}
	worldA, err := viewA.PixelsToWorld(obsA, elevation)
	if err != nil {
		return nil, errors.Wrap(err, "camera a")
	}
	worldB, err := viewB.PixelsToWorld(obsB, elevation)
	if err != nil {
		return nil, errors.Wrap(err, "camera b")
	}
	points := make([]r3.Vector, len(worldA))
	for k := range points {
		mid := worldA[k].Add(worldB[k]).Mul(0.5)
		points[k] = r3.Vector{X: mid.X, Y: mid.Y, Z: elevation}
	}
	return points, nil
}
