package ortho

import (
	"image"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/geosolve/geotools/rimage"
	"github.com/geosolve/geotools/rimage/transform"
	"github.com/geosolve/geotools/utils"
)

const (
	overlayLineWidth    = 2
	overlayMarkerRadius = 3
	overlayLabelSize    = 14
)

// canvasPoint is where a world point lands on a drawing context. Pixel (row, col) of the tile
// covers [col, col+1) x [row, row+1) of the canvas.
func canvasPoint(g TileGeometry, w r2.Point) (x, y float64) {
	row, col := g.WorldToImageFloat(w)
	return col + 0.5, row + 0.5
}

// DrawCamTrace draws the segments between every pair of the four footprint corners of a camera.
func DrawCamTrace(g TileGeometry, footprint [4]r2.Point, c rimage.Color, name string) *Layer {
	dc := rimage.NewTransparentContext(g.Cols, g.Rows)
	for a := 0; a < len(footprint); a++ {
		for b := a + 1; b < len(footprint); b++ {
			xa, ya := canvasPoint(g, footprint[a])
			xb, yb := canvasPoint(g, footprint[b])
			rimage.DrawLine(dc, xa, ya, xb, yb, c, overlayLineWidth)
		}
	}
	return layerFromContext(name, g, dc)
}

// DrawObservations brings image observations of one camera down to the elevation and marks
// them on the tile.
func DrawObservations(
	g TileGeometry,
	view transform.View,
	obs []transform.Pixel,
	elevation float64,
	c rimage.Color,
	name string,
) (*Layer, error) {
	world, err := view.PixelsToWorld(obs, elevation)
	if err != nil {
		return nil, err
	}
	dc := rimage.NewTransparentContext(g.Cols, g.Rows)
	for _, w := range world {
		x, y := canvasPoint(g, w)
		rimage.DrawMarker(dc, x, y, overlayMarkerRadius, c)
	}
	return layerFromContext(name, g, dc), nil
}

// DrawObsPair draws, for every correspondence of an observation pair, the line joining the
// ground positions of both observations. A perfect solution collapses each line to a point.
func DrawObsPair(
	g TileGeometry,
	viewA, viewB transform.View,
	obsA, obsB []transform.Pixel,
	elevation float64,
	c rimage.Color,
	name string,
) (*Layer, error) {
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

	dc := rimage.NewTransparentContext(g.Cols, g.Rows)
	for k := range worldA {
		xa, ya := canvasPoint(g, worldA[k])
		xb, yb := canvasPoint(g, worldB[k])
		rimage.DrawLine(dc, xa, ya, xb, yb, c, overlayLineWidth)
	}
	return layerFromContext(name, g, dc), nil
}

// DrawLabel writes text with its top left corner at a world position.
func DrawLabel(g TileGeometry, text string, at r2.Point, c rimage.Color) *Layer {
	dc := rimage.NewTransparentContext(g.Cols, g.Rows)
	row, col := g.WorldToImage(at)
	rimage.DrawString(dc, text, image.Point{X: col, Y: row}, c, overlayLabelSize)
	return layerFromContext("label "+text, g, dc)
}
