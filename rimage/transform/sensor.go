// Package transform converts between pixel, sensor and world coordinates of a frame camera.
package transform

import (
	"github.com/golang/geo/r2"
)

// Pixel is a continuous image coordinate. I grows down the rows, J grows along the columns.
type Pixel struct {
	I float64 `json:"i"`
	J float64 `json:"j"`
}

// SensorGeometry describes the physical layout of an image on the focal plane.
// PixelSize is in sensor units (mm) per pixel.
type SensorGeometry struct {
	PixelSize float64 `json:"pixel_size"`
	Rows      int     `json:"rows"`
	Cols      int     `json:"cols"`
}

// ToSensor maps a pixel to sensor coordinates. The sensor origin is the image center and its
// y axis points up, so rows are flipped.
func (g SensorGeometry) ToSensor(p Pixel) r2.Point {
	return r2.Point{
		X: (p.J - float64(g.Cols)/2) * g.PixelSize,
		Y: (float64(g.Rows)/2 - p.I) * g.PixelSize,
	}
}

// ToPixel is the inverse of ToSensor.
func (g SensorGeometry) ToPixel(s r2.Point) Pixel {
	return Pixel{
		I: float64(g.Rows)/2 - s.Y/g.PixelSize,
		J: s.X/g.PixelSize + float64(g.Cols)/2,
	}
}

// PixelsToSensor applies ToSensor to every pixel.
func (g SensorGeometry) PixelsToSensor(pixels []Pixel) []r2.Point {
	out := make([]r2.Point, len(pixels))
	for i, p := range pixels {
		out[i] = g.ToSensor(p)
	}
	return out
}

// SensorToPixels applies ToPixel to every sensor coordinate.
func (g SensorGeometry) SensorToPixels(sensor []r2.Point) []Pixel {
	out := make([]Pixel, len(sensor))
	for i, s := range sensor {
		out[i] = g.ToPixel(s)
	}
	return out
}

// Corners returns the four outer corners of the image in pixel coordinates, clockwise from the
// top left.
func (g SensorGeometry) Corners() [4]Pixel {
	rows, cols := float64(g.Rows), float64(g.Cols)
	return [4]Pixel{{0, 0}, {0, cols}, {rows, cols}, {rows, 0}}
}
