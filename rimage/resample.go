package rimage

import (
	"github.com/pkg/errors"

	"github.com/geosolve/geotools/rimage/transform"
	"github.com/geosolve/geotools/utils"
)

// InBounds is true when a continuous pixel rounds to a valid index of a rows x cols image.
// The upper limits are shape - 0.5 so that the nearest neighbor never lands past the last
// row or column. NaN coordinates are out of bounds.
func InBounds(p transform.Pixel, rows, cols int) bool {
	return p.I >= 0 && p.I < float64(rows)-0.5 &&
		p.J >= 0 && p.J < float64(cols)-0.5
}

// ImageBoundsMask reports InBounds for every point.
func ImageBoundsMask(points []transform.Pixel, rows, cols int) []bool {
	mask := make([]bool, len(points))
	for k, p := range points {
		mask[k] = InBounds(p, rows, cols)
	}
	return mask
}

// PixelColor is the nearest neighbor color of a pixel that passed InBounds.
func PixelColor(img *Image, p transform.Pixel) Color {
	return img.GetXY(utils.RoundIndex(p.J), utils.RoundIndex(p.I))
}

// PixelColors samples img at every point with nearest neighbor rounding. Every point must be
// within bounds; an error names the first one that is not.
func PixelColors(img *Image, points []transform.Pixel) ([]Color, error) {
	out := make([]Color, len(points))
	for k, p := range points {
		if !InBounds(p, img.Height(), img.Width()) {
			return nil, errors.Errorf("pixel %d at (%g, %g) is outside the %dx%d image", k, p.I, p.J, img.Height(), img.Width())
		}
		out[k] = PixelColor(img, p)
	}
	return out, nil
}
