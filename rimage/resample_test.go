package rimage

import (
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/geosolve/geotools/rimage/transform"
)

func TestImageBoundsMask(t *testing.T) {
	const rows, cols = 10, 20

	t.Run("strictly inside", func(t *testing.T) {
		var inside []transform.Pixel
		for i := 0.0; i <= rows-1; i += 0.75 {
			for j := 0.0; j <= cols-1; j += 1.25 {
				inside = append(inside, transform.Pixel{I: i, J: j})
			}
		}
		for _, ok := range ImageBoundsMask(inside, rows, cols) {
			test.That(t, ok, test.ShouldBeTrue)
		}
	})

	t.Run("each axis independently", func(t *testing.T) {
		for _, tc := range []struct {
			name  string
			pixel transform.Pixel
		}{
			{"row at shape-0.5", transform.Pixel{I: rows - 0.5, J: 3}},
			{"row past shape", transform.Pixel{I: rows + 4, J: 3}},
			{"negative row", transform.Pixel{I: -0.01, J: 3}},
			{"col at shape-0.5", transform.Pixel{I: 3, J: cols - 0.5}},
			{"col past shape", transform.Pixel{I: 3, J: cols}},
			{"negative col", transform.Pixel{I: 3, J: -1}},
			{"nan", transform.Pixel{I: math.NaN(), J: 3}},
		} {
			t.Run(tc.name, func(t *testing.T) {
				test.That(t, ImageBoundsMask([]transform.Pixel{tc.pixel}, rows, cols), test.ShouldResemble, []bool{false})
			})
		}
	})

	t.Run("just below the limit", func(t *testing.T) {
		mask := ImageBoundsMask([]transform.Pixel{{I: rows - 0.5001, J: cols - 0.5001}}, rows, cols)
		test.That(t, mask, test.ShouldResemble, []bool{true})
	})

	test.That(t, ImageBoundsMask(nil, rows, cols), test.ShouldBeEmpty)
}

func gradientImage(width, height int) *Image {
	img := NewImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetXY(x, y, NewColor(uint8(x), uint8(y), 7))
		}
	}
	return img
}

func TestPixelColors(t *testing.T) {
	img := gradientImage(20, 10)

	colors, err := PixelColors(img, []transform.Pixel{{I: 0, J: 0}, {I: 2.4, J: 5.6}, {I: 9.49, J: 19.49}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, colors, test.ShouldResemble, []Color{
		NewColor(0, 0, 7),
		NewColor(6, 2, 7),
		NewColor(19, 9, 7),
	})

	_, err = PixelColors(img, []transform.Pixel{{I: 1, J: 1}, {I: 9.5, J: 1}})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "pixel 1")
}
