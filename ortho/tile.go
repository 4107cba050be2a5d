package ortho

import (
	"github.com/pkg/errors"

	"github.com/geosolve/geotools/rimage"
)

// ErrTileSaved is returned when compositing into a tile that was already written to disk.
var ErrTileSaved = errors.New("tile has already been saved")

// Tile is an orthoimage raster together with its world mapping.
type Tile struct {
	Geometry TileGeometry
	raster   *rimage.Image
	saved    bool
}

// NewTile returns a black tile.
func NewTile(g TileGeometry) *Tile {
	return &Tile{Geometry: g, raster: rimage.NewImage(g.Cols, g.Rows)}
}

// Composite applies the layers in order. Later layers overwrite earlier ones and the tile
// itself where they write.
func (t *Tile) Composite(layers ...*Layer) error {
	if t.saved {
		return ErrTileSaved
	}
	for _, l := range layers {
		if l == nil {
			continue
		}
		if l.rows != t.Geometry.Rows || l.cols != t.Geometry.Cols {
			return errors.Errorf("layer %q is %dx%d but the tile is %dx%d",
				l.Name, l.rows, l.cols, t.Geometry.Rows, t.Geometry.Cols)
		}
		for k, written := range l.mask {
			if written {
				t.raster.SetXY(k%l.cols, k/l.cols, l.colors[k])
			}
		}
	}
	return nil
}

// Image returns a copy of the raster.
func (t *Tile) Image() *rimage.Image {
	return t.raster.Clone()
}

// Save writes the raster and freezes the tile.
func (t *Tile) Save(path string, quality int) error {
	if t.saved {
		return ErrTileSaved
	}
	if err := rimage.WriteImageToFileWithQuality(path, t.raster, quality); err != nil {
		return err
	}
	t.saved = true
	return nil
}

// SavePreview writes a copy of the raster scaled down to width. It does not freeze the tile.
func (t *Tile) SavePreview(path string, width, quality int) error {
	return rimage.WriteImageToFileWithQuality(path, rimage.Preview(t.raster, width), quality)
}

// Saved is true once Save succeeded.
func (t *Tile) Saved() bool {
	return t.saved
}
