// Package rimage holds the RGB rasters used for source imagery and orthoimage tiles.
package rimage

import (
	"image"
	"image/color"
)

// Image is a mutable RGB raster. Distinct pixels may be written from different goroutines.
type Image struct {
	data          []Color
	width, height int
}

// NewImage returns a black image of the given size.
func NewImage(width, height int) *Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Image{
		data:   make([]Color, width*height),
		width:  width,
		height: height,
	}
}

// NewImageFromStdImage copies any image.Image into an Image anchored at (0, 0).
func NewImageFromStdImage(img image.Image) *Image {
	if ri, ok := img.(*Image); ok {
		return ri.Clone()
	}
	bounds := img.Bounds()
	out := NewImage(bounds.Dx(), bounds.Dy())
	for y := 0; y < out.height; y++ {
		for x := 0; x < out.width; x++ {
			out.setXY(x, y, NewColorFromColor(img.At(bounds.Min.X+x, bounds.Min.Y+y)))
		}
	}
	return out
}

// ColorModel implements image.Image.
func (i *Image) ColorModel() color.Model {
	return color.ModelFunc(func(c color.Color) color.Color {
		return NewColorFromColor(c)
	})
}

// Bounds implements image.Image.
func (i *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.width, i.height)
}

// At implements image.Image. Points outside the image are black.
func (i *Image) At(x, y int) color.Color {
	if !i.In(x, y) {
		return Black
	}
	return i.data[i.kxy(x, y)]
}

// In is true when (x, y) indexes a pixel.
func (i *Image) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < i.width && y < i.height
}

func (i *Image) kxy(x, y int) int {
	return (y * i.width) + x
}

// Width is the number of columns.
func (i *Image) Width() int {
	return i.width
}

// Height is the number of rows.
func (i *Image) Height() int {
	return i.height
}

// GetXY returns the color at column x and row y.
func (i *Image) GetXY(x, y int) Color {
	return i.data[i.kxy(x, y)]
}

// SetXY sets the color at column x and row y.
func (i *Image) SetXY(x, y int, c Color) {
	i.setXY(x, y, c)
}

func (i *Image) setXY(x, y int, c Color) {
	i.data[i.kxy(x, y)] = c
}

// Set implements draw.Image so the standard library and gg can paint into an Image.
func (i *Image) Set(x, y int, c color.Color) {
	if !i.In(x, y) {
		return
	}
	i.setXY(x, y, NewColorFromColor(c))
}

// Fill paints every pixel with c.
func (i *Image) Fill(c Color) {
	for k := range i.data {
		i.data[k] = c
	}
}

// Clone returns a deep copy.
func (i *Image) Clone() *Image {
	out := &Image{data: make([]Color, len(i.data)), width: i.width, height: i.height}
	copy(out.data, i.data)
	return out
}

// Equal is true when both images have the same size and pixels.
func (i *Image) Equal(other *Image) bool {
	if i.width != other.width || i.height != other.height {
		return false
	}
	for k := range i.data {
		if i.data[k] != other.data[k] {
			return false
		}
	}
	return true
}
