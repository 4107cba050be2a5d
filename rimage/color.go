package rimage

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Color is an opaque 8 bit RGB color.
type Color struct {
	R, G, B uint8
}

// Black is the background of every new raster.
var Black = Color{}

func (c Color) String() string {
	return c.Hex()
}

// Hex returns the #rrggbb form of the color.
func (c Color) Hex() string {
	return fmt.Sprintf("#%.2x%.2x%.2x", c.R, c.G, c.B)
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	a = 0xffff
	return
}

// NewColor returns a color from its components.
func NewColor(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// NewColorFromHex parses a #rrggbb string.
func NewColorFromHex(hex string) (Color, error) {
	var r, g, b uint8
	n, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b)
	if n != 3 || err != nil {
		return Color{}, errors.Errorf("couldn't parse hex (%s) n: %d err: %v", hex, n, err)
	}
	return NewColor(r, g, b), nil
}

// NewColorFromColor converts any color.Color, dropping alpha.
func NewColorFromColor(c color.Color) Color {
	if cc, ok := c.(Color); ok {
		return cc
	}
	cc, ok := colorful.MakeColor(c)
	if !ok {
		// fully transparent
		return Black
	}
	r, g, b := cc.RGB255()
	return Color{R: r, G: g, B: b}
}

// NewColorFromHSV builds a color from hue in degrees, saturation and value in [0, 1].
func NewColorFromHSV(h, s, v float64) Color {
	r, g, b := colorful.Hsv(h, s, v).Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

// Palette returns n visually distinct colors spread evenly around the hue circle.
func Palette(n int) []Color {
	out := make([]Color, n)
	for i := range out {
		out[i] = NewColorFromHSV(360*float64(i)/float64(n), 0.85, 0.95)
	}
	return out
}
