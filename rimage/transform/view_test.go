package transform

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestViewPixelWorldRoundTrip(t *testing.T) {
	in, ext := nadirCamera()
	v := NewView(in, ext, 100, 100)
	test.That(t, v.Geometry.PixelSize, test.ShouldEqual, 0.01)

	center, ok := v.WorldToPixel(r3.Vector{X: 50, Y: -20})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, center.I, test.ShouldAlmostEqual, 50)
	test.That(t, center.J, test.ShouldAlmostEqual, 50)

	for _, p := range []Pixel{{0, 0}, {12.5, 80}, {99, 3}} {
		w, err := v.PixelToWorld(p, 0)
		test.That(t, err, test.ShouldBeNil)
		back, ok := v.WorldToPixel(r3.Vector{X: w.X, Y: w.Y})
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, back.I, test.ShouldAlmostEqual, p.I, 1e-9)
		test.That(t, back.J, test.ShouldAlmostEqual, p.J, 1e-9)
	}
}

func TestViewFootprint(t *testing.T) {
	in, ext := nadirCamera()
	v := NewView(in, ext, 100, 200)

	// a 2x1 sensor at f/H = 1 covers 2x1 world units around the nadir point
	corners, err := v.Footprint(0)
	test.That(t, err, test.ShouldBeNil)
	minX, maxX := corners[0].X, corners[0].X
	minY, maxY := corners[0].Y, corners[0].Y
	for _, c := range corners[1:] {
		minX, maxX = min(minX, c.X), max(maxX, c.X)
		minY, maxY = min(minY, c.Y), max(maxY, c.Y)
	}
	test.That(t, maxX-minX, test.ShouldAlmostEqual, 2, 1e-9)
	test.That(t, maxY-minY, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, (maxX+minX)/2, test.ShouldAlmostEqual, 50, 1e-9)
	test.That(t, (maxY+minY)/2, test.ShouldAlmostEqual, -20, 1e-9)

	_, err = v.Footprint(ext[2])
	test.That(t, err, test.ShouldNotBeNil)
}

func TestViewPixelsToWorld(t *testing.T) {
	in, ext := nadirCamera()
	v := NewView(in, ext, 100, 100)
	out, err := v.PixelsToWorld([]Pixel{{50, 50}, {0, 0}}, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldHaveLength, 2)
	test.That(t, out[0].X, test.ShouldAlmostEqual, 50)
	test.That(t, out[0].Y, test.ShouldAlmostEqual, -20)

	_, err = v.PixelsToWorld([]Pixel{{1, 1}}, ext[2])
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "observation 0")
}

func TestInternalJSON(t *testing.T) {
	var in Internal
	test.That(t, in.UnmarshalJSON([]byte(`[1000, 0.1, -0.2]`)), test.ShouldBeNil)
	test.That(t, in, test.ShouldResemble, Internal{Focal: 1000, Ppx: 0.1, Ppy: -0.2})

	test.That(t, in.UnmarshalJSON([]byte(`[1000, 0.1, -0.2, 0.01]`)), test.ShouldBeNil)
	test.That(t, in.PixelSize, test.ShouldEqual, 0.01)

	err := in.UnmarshalJSON([]byte(`[1, 2]`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "3 or 4 values")

	test.That(t, in.UnmarshalJSON([]byte(`{"f": 1}`)), test.ShouldNotBeNil)
}

func TestInternalCheckValid(t *testing.T) {
	var nilInternal *Internal
	test.That(t, nilInternal.CheckValid(), test.ShouldNotBeNil)

	in := &Internal{Focal: 0, PixelSize: 0.01}
	err := in.CheckValid()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid focal length")

	in.Focal = 12
	test.That(t, in.CheckValid(), test.ShouldBeNil)
}

func TestViewWorldToPixels(t *testing.T) {
	in, ext := nadirCamera()
	v := NewView(in, ext, 100, 100)
	pixels := v.WorldToPixels([]r3.Vector{{X: 50.3, Y: -20.4}, {X: 0, Y: 0, Z: ext[2]}})
	test.That(t, pixels, test.ShouldHaveLength, 2)
	test.That(t, pixels[0].I, test.ShouldAlmostEqual, 10)
	test.That(t, pixels[0].J, test.ShouldAlmostEqual, 80)
	test.That(t, math.IsNaN(pixels[1].I), test.ShouldBeTrue)
}
