package ortho

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/geosolve/geotools/rimage"
)

// Layer is a sparse set of writes to a tile. Layers are composited in order onto a Tile; where
// two layers write the same pixel the later one wins.
type Layer struct {
	Name   string
	rows   int
	cols   int
	mask   []bool
	colors []rimage.Color
}

// NewLayer returns an empty layer sized for the tile.
func NewLayer(name string, g TileGeometry) *Layer {
	n := g.Rows * g.Cols
	if n < 0 {
		n = 0
	}
	return &Layer{
		Name:   name,
		rows:   g.Rows,
		cols:   g.Cols,
		mask:   make([]bool, n),
		colors: make([]rimage.Color, n),
	}
}

// Set records a write at (row, col). Writes outside the tile are ignored. Distinct pixels may
// be set concurrently.
func (l *Layer) Set(row, col int, c rimage.Color) {
	if row < 0 || col < 0 || row >= l.rows || col >= l.cols {
		return
	}
	k := row*l.cols + col
	l.mask[k] = true
	l.colors[k] = c
}

// Get returns the color written at (row, col), if any.
func (l *Layer) Get(row, col int) (rimage.Color, bool) {
	if row < 0 || col < 0 || row >= l.rows || col >= l.cols {
		return rimage.Color{}, false
	}
	k := row*l.cols + col
	return l.colors[k], l.mask[k]
}

// Count is the number of pixels the layer writes.
func (l *Layer) Count() int {
	n := 0
	for _, m := range l.mask {
		if m {
			n++
		}
	}
	return n
}

// layerFromContext turns the opaque enough pixels of a drawing into writes. Anti-aliased edges
// below half coverage are dropped so that overlays never blend with what is underneath.
func layerFromContext(name string, g TileGeometry, dc *gg.Context) *Layer {
	l := NewLayer(name, g)
	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		return l
	}
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			px := img.RGBAAt(col, row)
			if px.A < 0x80 {
				continue
			}
			nrgba := color.NRGBAModel.Convert(px).(color.NRGBA)
			l.Set(row, col, rimage.NewColor(nrgba.R, nrgba.G, nrgba.B))
		}
	}
	return l
}
