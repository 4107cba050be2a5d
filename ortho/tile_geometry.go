// Package ortho builds orthoimage tiles: ground aligned rasters painted by back-projecting
// every tile pixel into the source cameras.
package ortho

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/geosolve/geotools/utils"
)

// MarginPixels is the padding, in tile pixels, added on every side of the world rectangle.
const MarginPixels = 5

// WorldRect is an axis aligned box in world coordinates.
type WorldRect struct {
	Low  r2.Point
	High r2.Point
}

// NewWorldRect returns the bounding box of the points.
func NewWorldRect(points []r2.Point) (WorldRect, error) {
	if len(points) == 0 {
		return WorldRect{}, errors.New("cannot bound an empty point set")
	}
	rect := WorldRect{Low: points[0], High: points[0]}
	for _, p := range points {
		if !utils.IsFinite(p.X) || !utils.IsFinite(p.Y) {
			return WorldRect{}, errors.Errorf("cannot bound non finite point (%g, %g)", p.X, p.Y)
		}
		rect = rect.Extend(p)
	}
	return rect, nil
}

// Extend grows the rectangle to include p.
func (r WorldRect) Extend(p r2.Point) WorldRect {
	return WorldRect{
		Low:  r2.Point{X: math.Min(r.Low.X, p.X), Y: math.Min(r.Low.Y, p.Y)},
		High: r2.Point{X: math.Max(r.High.X, p.X), Y: math.Max(r.High.Y, p.Y)},
	}
}

// Union is the smallest rectangle containing both.
func (r WorldRect) Union(other WorldRect) WorldRect {
	return r.Extend(other.Low).Extend(other.High)
}

// Size is the extent along X and Y.
func (r WorldRect) Size() r2.Point {
	return r.High.Sub(r.Low)
}

// TileGeometry maps between tile pixels and world coordinates. Origin is the world position of
// pixel (0, 0); world y grows up while rows grow down.
type TileGeometry struct {
	Origin r2.Point
	GSD    float64
	Rows   int
	Cols   int
}

// NewTileGeometry sizes a tile covering rect at the given ground sample distance with a margin
// of MarginPixels * gsd on every side. A zero area rectangle still yields a positive size.
func NewTileGeometry(rect WorldRect, gsd float64) (TileGeometry, error) {
	if gsd <= 0 || !utils.IsFinite(gsd) {
		return TileGeometry{}, errors.Errorf("ground sample distance must be positive, got %g", gsd)
	}
	size := rect.Size()
	if size.X < 0 || size.Y < 0 || !utils.IsFinite(size.X) || !utils.IsFinite(size.Y) {
		return TileGeometry{}, errors.Errorf("invalid world rectangle %v", rect)
	}
	margin := MarginPixels * gsd
	return TileGeometry{
		Origin: r2.Point{X: rect.Low.X - margin, Y: rect.High.Y + margin},
		GSD:    gsd,
		Rows:   int(math.Ceil((size.Y + 2*margin) / gsd)),
		Cols:   int(math.Ceil((size.X + 2*margin) / gsd)),
	}, nil
}

// Size returns the tile size as an image.Point of (cols, rows).
func (g TileGeometry) Size() image.Point {
	return image.Point{X: g.Cols, Y: g.Rows}
}

// WorldToImage returns the nearest tile pixel of a world point. The result may lie outside
// the tile.
func (g TileGeometry) WorldToImage(p r2.Point) (row, col int) {
	col = utils.RoundIndex((p.X - g.Origin.X) / g.GSD)
	row = utils.RoundIndex(-(p.Y - g.Origin.Y) / g.GSD)
	return row, col
}

// WorldToImageFloat is WorldToImage without rounding.
func (g TileGeometry) WorldToImageFloat(p r2.Point) (row, col float64) {
	return -(p.Y - g.Origin.Y) / g.GSD, (p.X - g.Origin.X) / g.GSD
}

// ImageToWorld is the inverse of WorldToImageFloat.
func (g TileGeometry) ImageToWorld(row, col float64) r2.Point {
	return r2.Point{
		X: g.Origin.X + col*g.GSD,
		Y: g.Origin.Y - row*g.GSD,
	}
}

// ImageToWorldGrid returns the world coordinate of every tile pixel in row-major order.
func (g TileGeometry) ImageToWorldGrid() []r2.Point {
	grid := utils.MeshGrid2D(g.Rows, g.Cols)
	if grid.IsEmpty() {
		return nil
	}
	n, _ := grid.Dims()
	out := make([]r2.Point, n)
	for k := range out {
		out[k] = g.ImageToWorld(grid.At(k, 0), grid.At(k, 1))
	}
	return out
}

// NativeGSD is the ground sample distance of a nadir image taken at height above the terrain.
func NativeGSD(pixelSize, focal, height float64) float64 {
	return pixelSize * math.Abs(height) / focal
}
