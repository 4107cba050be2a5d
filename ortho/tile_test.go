package ortho

import (
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/geosolve/geotools/rimage"
	"github.com/geosolve/geotools/testutils"
	"github.com/geosolve/geotools/utils"
)

func smallGeometry() TileGeometry {
	return TileGeometry{Origin: r2.Point{X: 0, Y: 0}, GSD: 1, Rows: 4, Cols: 6}
}

func TestLayerSetGet(t *testing.T) {
	l := NewLayer("l", smallGeometry())
	test.That(t, l.Count(), test.ShouldEqual, 0)

	red := rimage.NewColor(255, 0, 0)
	l.Set(1, 2, red)
	l.Set(-1, 0, red)
	l.Set(0, 6, red)
	l.Set(4, 0, red)
	test.That(t, l.Count(), test.ShouldEqual, 1)

	c, ok := l.Get(1, 2)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, c, test.ShouldResemble, red)
	_, ok = l.Get(2, 1)
	test.That(t, ok, test.ShouldBeFalse)
	_, ok = l.Get(10, 10)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestCompositeLastWriteWins(t *testing.T) {
	g := smallGeometry()
	red, green, blue := rimage.NewColor(255, 0, 0), rimage.NewColor(0, 255, 0), rimage.NewColor(0, 0, 255)

	first := NewLayer("first", g)
	first.Set(0, 0, red)
	first.Set(1, 1, red)
	second := NewLayer("second", g)
	second.Set(1, 1, green)
	second.Set(2, 2, green)
	third := NewLayer("third", g)
	third.Set(2, 2, blue)

	tile := NewTile(g)
	test.That(t, tile.Composite(first, nil, second), test.ShouldBeNil)
	test.That(t, tile.Composite(third), test.ShouldBeNil)

	img := tile.Image()
	test.That(t, img.GetXY(0, 0), test.ShouldResemble, red)
	test.That(t, img.GetXY(1, 1), test.ShouldResemble, green)
	test.That(t, img.GetXY(2, 2), test.ShouldResemble, blue)
	test.That(t, img.GetXY(5, 3), test.ShouldResemble, rimage.Black)

	// same layers in the other order
	tile = NewTile(g)
	test.That(t, tile.Composite(third, second, first), test.ShouldBeNil)
	img = tile.Image()
	test.That(t, img.GetXY(1, 1), test.ShouldResemble, red)
	test.That(t, img.GetXY(2, 2), test.ShouldResemble, green)
}

func TestCompositeSizeMismatch(t *testing.T) {
	tile := NewTile(smallGeometry())
	other := smallGeometry()
	other.Rows++
	err := tile.Composite(NewLayer("big", other))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "big")
}

func TestTileImageIsACopy(t *testing.T) {
	tile := NewTile(smallGeometry())
	img := tile.Image()
	img.SetXY(0, 0, rimage.NewColor(1, 2, 3))
	test.That(t, tile.Image().GetXY(0, 0), test.ShouldResemble, rimage.Black)
}

func TestTileSaveFreezes(t *testing.T) {
	dir := testutils.TempDir(t, "", "ortho_tile")
	g := smallGeometry()
	tile := NewTile(g)
	l := NewLayer("l", g)
	l.Set(3, 5, rimage.NewColor(10, 200, 30))
	test.That(t, tile.Composite(l), test.ShouldBeNil)
	test.That(t, tile.Saved(), test.ShouldBeFalse)

	path := filepath.Join(dir, "tile.png")
	test.That(t, tile.Save(path, rimage.DefaultJPEGQuality), test.ShouldBeNil)
	test.That(t, tile.Saved(), test.ShouldBeTrue)
	test.That(t, utils.FileExists(path), test.ShouldBeTrue)

	err := tile.Composite(l)
	test.That(t, errors.Is(err, ErrTileSaved), test.ShouldBeTrue)
	err = tile.Save(path, rimage.DefaultJPEGQuality)
	test.That(t, errors.Is(err, ErrTileSaved), test.ShouldBeTrue)

	preview := filepath.Join(dir, "preview.png")
	test.That(t, tile.SavePreview(preview, 3, rimage.DefaultJPEGQuality), test.ShouldBeNil)
	read, err := rimage.ReadImageFromFile(preview)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, read.Width(), test.ShouldEqual, 3)

	read, err = rimage.ReadImageFromFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, read.GetXY(5, 3), test.ShouldResemble, rimage.NewColor(10, 200, 30))
}

func TestLayerFromContext(t *testing.T) {
	g := TileGeometry{GSD: 1, Rows: 20, Cols: 20}
	dc := rimage.NewTransparentContext(g.Cols, g.Rows)
	c := rimage.NewColor(200, 100, 50)
	rimage.DrawMarker(dc, 10, 10, 4, c)

	l := layerFromContext("marker", g, dc)
	got, ok := l.Get(10, 10)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, got, test.ShouldResemble, c)
	_, ok = l.Get(0, 0)
	test.That(t, ok, test.ShouldBeFalse)
	_, ok = l.Get(10, 18)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, l.Count(), test.ShouldBeBetween, 30, 70)
}
