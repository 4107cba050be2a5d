package pointcloud

import (
	"image/color"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/geosolve/geotools/rimage"
	"github.com/geosolve/geotools/rimage/transform"
)

// DTMFilename is the name of the terrain export PotreeConverter is pointed at.
const DTMFilename = "dtm.xyz"

// DTMOptions configures NewDTM.
type DTMOptions struct {
	// Flatten replaces the height of every terrain point with Elevation.
	Flatten   bool
	Elevation float64
}

// NewDTM colors terrain points with the image of one camera. Every point is projected into
// the view and takes the nearest source pixel. Points that fall outside the image are
// skipped and counted.
func NewDTM(view transform.View, img *rimage.Image, terrain []r3.Vector, opts DTMOptions) (PointCloud, int, error) {
	if img == nil {
		return nil, 0, errors.New("source image is nil")
	}
	if img.Height() != view.Geometry.Rows || img.Width() != view.Geometry.Cols {
		return nil, 0, errors.Errorf("source image is %dx%d but the camera expects %dx%d",
			img.Height(), img.Width(), view.Geometry.Rows, view.Geometry.Cols)
	}

	points := make([]r3.Vector, len(terrain))
	copy(points, terrain)
	if opts.Flatten {
		for k := range points {
			points[k].Z = opts.Elevation
		}
	}
	pixels := view.WorldToPixels(points)
	mask := rimage.ImageBoundsMask(pixels, img.Height(), img.Width())
	inside := make([]transform.Pixel, 0, len(pixels))
	kept := make([]r3.Vector, 0, len(points))
	for k, ok := range mask {
		if ok {
			inside = append(inside, pixels[k])
			kept = append(kept, points[k])
		}
	}
	colors, err := rimage.PixelColors(img, inside)
	if err != nil {
		return nil, 0, err
	}

	pc := NewWithPrealloc(len(kept))
	for k, p := range kept {
		c := colors[k]
		if err := pc.Set(p, NewColoredData(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})); err != nil {
			return nil, 0, err
		}
	}
	return pc, len(points) - len(kept), nil
}
