package ortho

import (
	"context"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/geosolve/geotools/rimage"
	"github.com/geosolve/geotools/rimage/transform"
	"github.com/geosolve/geotools/utils"
)

// ProjectionStats counts what happened to the tile pixels of one camera projection.
type ProjectionStats struct {
	Total    int
	Written  int
	Filtered int
}

// ProjectCamera paints src into a new layer by back-projection. Every tile pixel is brought to
// world at the given elevation, projected into the view, and sampled with nearest neighbor
// when it falls inside the source image. Pixels whose projection misses the source are
// counted as filtered and left unwritten.
//
// TODO: overlapping cameras overwrite each other in composite order; blend or pick the best
// exposed source instead.
func ProjectCamera(
	ctx context.Context,
	g TileGeometry,
	src *rimage.Image,
	view transform.View,
	elevation float64,
	name string,
) (*Layer, ProjectionStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, ProjectionStats{}, err
	}
	if src == nil {
		return nil, ProjectionStats{}, errors.New("source image is nil")
	}
	if src.Height() != view.Geometry.Rows || src.Width() != view.Geometry.Cols {
		return nil, ProjectionStats{}, errors.Errorf("source image is %dx%d but the camera expects %dx%d",
			src.Height(), src.Width(), view.Geometry.Rows, view.Geometry.Cols)
	}

	layer := NewLayer(name, g)
	grid := g.ImageToWorldGrid()
	utils.ParallelForEachPixel(g.Size(), func(col, row int) {
		w := grid[row*g.Cols+col]
		p, ok := view.WorldToPixel(r3.Vector{X: w.X, Y: w.Y, Z: elevation})
		if !ok || !rimage.InBounds(p, src.Height(), src.Width()) {
			return
		}
		layer.Set(row, col, rimage.PixelColor(src, p))
	})

	stats := ProjectionStats{Total: len(grid), Written: layer.Count()}
	stats.Filtered = stats.Total - stats.Written
	return layer, stats, nil
}
