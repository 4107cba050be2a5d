package ortho

import (
	"context"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"github.com/geosolve/geotools/logging"
	"github.com/geosolve/geotools/rimage"
	"github.com/geosolve/geotools/rimage/transform"
)

func overlayGeometry(t *testing.T, views ...transform.View) TileGeometry {
	t.Helper()
	rect, err := FootprintsRect(views, 0)
	test.That(t, err, test.ShouldBeNil)
	g, err := NewTileGeometry(rect, 0.01)
	test.That(t, err, test.ShouldBeNil)
	return g
}

func TestDrawCamTrace(t *testing.T) {
	view := nadirView(50, -20)
	g := overlayGeometry(t, view)
	fp, err := view.Footprint(0)
	test.That(t, err, test.ShouldBeNil)
	c := rimage.NewColor(0, 255, 0)

	l := DrawCamTrace(g, fp, c, "trace")
	test.That(t, l.Name, test.ShouldEqual, "trace")
	for _, corner := range fp {
		row, col := g.WorldToImage(corner)
		got, ok := l.Get(row, col)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, got, test.ShouldResemble, c)
	}
	// the diagonals cross at the nadir point
	row, col := g.WorldToImage(r2.Point{X: 50, Y: -20})
	_, ok := l.Get(row, col)
	test.That(t, ok, test.ShouldBeTrue)
	_, ok = l.Get(row, col+20)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestDrawObservations(t *testing.T) {
	view := nadirView(50, -20)
	g := overlayGeometry(t, view)
	c := rimage.NewColor(255, 255, 0)

	l, err := DrawObservations(g, view, []transform.Pixel{{I: 50, J: 50}}, 0, c, "obs")
	test.That(t, err, test.ShouldBeNil)
	row, col := g.WorldToImage(r2.Point{X: 50, Y: -20})
	got, ok := l.Get(row, col)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, got, test.ShouldResemble, c)
	test.That(t, l.Count(), test.ShouldBeLessThan, 60)

	empty, err := DrawObservations(g, view, nil, 0, c, "none")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, empty.Count(), test.ShouldEqual, 0)

	_, err = DrawObservations(g, view, []transform.Pixel{{I: 1, J: 1}}, 1000, c, "singular")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDrawObsPair(t *testing.T) {
	a, b := nadirView(50, -20), nadirView(50.5, -20)
	g := overlayGeometry(t, a, b)
	c := rimage.NewColor(255, 0, 255)

	// center of a and the center of b, half a unit apart on the ground
	l, err := DrawObsPair(g, a, b, []transform.Pixel{{I: 50, J: 50}}, []transform.Pixel{{I: 50, J: 50}}, 0, c, "pair")
	test.That(t, err, test.ShouldBeNil)
	for _, x := range []float64{50, 50.25, 50.5} {
		row, col := g.WorldToImage(r2.Point{X: x, Y: -20})
		got, ok := l.Get(row, col)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, got, test.ShouldResemble, c)
	}

	_, err = DrawObsPair(g, a, b, []transform.Pixel{{I: 1, J: 1}}, nil, 0, c, "bad")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDrawLabel(t *testing.T) {
	g := TileGeometry{Origin: r2.Point{X: 0, Y: 100}, GSD: 1, Rows: 100, Cols: 100}
	l := DrawLabel(g, "cam 7", r2.Point{X: 10, Y: 90}, rimage.NewColor(255, 255, 255))
	test.That(t, l.Count(), test.ShouldBeGreaterThan, 0)
	test.That(t, l.Name, test.ShouldEqual, "label cam 7")
	_, ok := l.Get(90, 90)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestOrthorectifyOverlays(t *testing.T) {
	logger := logging.NewTestLogger(t)
	sources := []Source{
		{Name: "a", View: nadirView(50, -20), Image: gradientWithCenter()},
		{Name: "b", View: nadirView(50.5, -20), Image: gradientWithCenter()},
	}
	// pixel (50, 0) of b lands on the nadir point of a
	pairs := []Pair{{
		CamA: 0, CamB: 1,
		ObsA: []transform.Pixel{{I: 50, J: 50}},
		ObsB: []transform.Pixel{{I: 50, J: 0}},
	}}
	tile, err := Orthorectify(context.Background(), logger, sources, pairs, Options{Overlays: true})
	test.That(t, err, test.ShouldBeNil)

	palette := rimage.Palette(len(sources) + 1)
	row, col := tile.Geometry.WorldToImage(r2.Point{X: 50, Y: -20})
	// markers of camera b are composited last
	test.That(t, tile.Image().GetXY(col, row), test.ShouldResemble, palette[1])

	pairs[0].CamB = 2
	_, err = Orthorectify(context.Background(), logger, sources, pairs, Options{Overlays: true})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "only 2 are loaded")
}
