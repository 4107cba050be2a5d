package transform

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

const roundTripTolerance = 1e-9

func TestPixelSensorRoundTrip(t *testing.T) {
	g := SensorGeometry{PixelSize: 5e-6, Rows: 2000, Cols: 4000}

	for _, p := range []Pixel{{0, 0}, {31.456, 40.5}, {1000, 2000}, {2000, 4000}} {
		t.Run(fmt.Sprintf("pixel %v", p), func(t *testing.T) {
			back := g.ToPixel(g.ToSensor(p))
			test.That(t, back.I, test.ShouldAlmostEqual, p.I, roundTripTolerance)
			test.That(t, back.J, test.ShouldAlmostEqual, p.J, roundTripTolerance)
		})
	}

	for _, s := range []r2.Point{{X: 0, Y: 0}, {X: -0.001, Y: -0.001}, {X: 2.5, Y: 0.00698}, {X: -45, Y: 0}} {
		t.Run(fmt.Sprintf("sensor %v", s), func(t *testing.T) {
			back := g.ToSensor(g.ToPixel(s))
			test.That(t, back.X, test.ShouldAlmostEqual, s.X, roundTripTolerance)
			test.That(t, back.Y, test.ShouldAlmostEqual, s.Y, roundTripTolerance)
		})
	}
}

func TestPixelSensorRandomRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 200; n++ {
		g := SensorGeometry{
			PixelSize: 1e-3 + rng.Float64()*0.02,
			Rows:      1 + rng.Intn(5000),
			Cols:      1 + rng.Intn(5000),
		}
		p := Pixel{I: rng.Float64()*6000 - 500, J: rng.Float64()*6000 - 500}
		back := g.ToPixel(g.ToSensor(p))
		test.That(t, back.I, test.ShouldAlmostEqual, p.I, roundTripTolerance)
		test.That(t, back.J, test.ShouldAlmostEqual, p.J, roundTripTolerance)
	}
}

func TestPixelSensorExpectedValues(t *testing.T) {
	g := SensorGeometry{PixelSize: 0.01, Rows: 2000, Cols: 4000}

	for _, tc := range []struct {
		pixel  Pixel
		sensor r2.Point
	}{
		{Pixel{1000, 2000}, r2.Point{X: 0, Y: 0}},
		{Pixel{2000, 4000}, r2.Point{X: 20, Y: -10}},
		{Pixel{0, 0}, r2.Point{X: -20, Y: 10}},
	} {
		s := g.ToSensor(tc.pixel)
		test.That(t, s.X, test.ShouldAlmostEqual, tc.sensor.X, 1e-12)
		test.That(t, s.Y, test.ShouldAlmostEqual, tc.sensor.Y, 1e-12)

		p := g.ToPixel(tc.sensor)
		test.That(t, p.I, test.ShouldAlmostEqual, tc.pixel.I, 1e-12)
		test.That(t, p.J, test.ShouldAlmostEqual, tc.pixel.J, 1e-12)
	}
}

func TestOddDimensionsUseExactCenter(t *testing.T) {
	g := SensorGeometry{PixelSize: 1, Rows: 3, Cols: 5}
	s := g.ToSensor(Pixel{1.5, 2.5})
	test.That(t, s.X, test.ShouldEqual, 0.0)
	test.That(t, s.Y, test.ShouldEqual, 0.0)
}

func TestBatchConversions(t *testing.T) {
	g := SensorGeometry{PixelSize: 0.01, Rows: 2000, Cols: 4000}
	pixels := []Pixel{{0, 0}, {1000, 2000}, {2000, 4000}}
	sensor := g.PixelsToSensor(pixels)
	test.That(t, sensor, test.ShouldHaveLength, 3)
	test.That(t, sensor[1], test.ShouldResemble, r2.Point{X: 0, Y: 0})
	back := g.SensorToPixels(sensor)
	test.That(t, back, test.ShouldHaveLength, 3)
	for i := range pixels {
		test.That(t, back[i].I, test.ShouldAlmostEqual, pixels[i].I, roundTripTolerance)
		test.That(t, back[i].J, test.ShouldAlmostEqual, pixels[i].J, roundTripTolerance)
	}

	test.That(t, g.PixelsToSensor(nil), test.ShouldBeEmpty)
}

func TestCorners(t *testing.T) {
	g := SensorGeometry{PixelSize: 0.01, Rows: 20, Cols: 40}
	corners := g.Corners()
	test.That(t, corners[0], test.ShouldResemble, Pixel{0, 0})
	test.That(t, corners[2], test.ShouldResemble, Pixel{20, 40})
}
