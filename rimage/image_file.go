package rimage

import (
	"bytes"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lmittmann/ppm"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"github.com/xfmoulet/qoi"
	"go.viam.com/utils"
	// register bmp and tiff.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// DefaultJPEGQuality is the quality used when saving tiles as JPEG.
const DefaultJPEGQuality = 95

// ReadImageFromFile reads any registered image format (jpeg, png, gif, tiff, bmp, ppm, qoi).
// EXIF orientation is applied.
func ReadImageFromFile(path string) (*Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read image %q", path)
	}
	return NewImageFromStdImage(img), nil
}

// WriteImageToFile writes img with an encoder chosen from the file extension.
func WriteImageToFile(path string, img image.Image) error {
	return WriteImageToFileWithQuality(path, img, DefaultJPEGQuality)
}

// WriteImageToFileWithQuality is WriteImageToFile with an explicit JPEG quality. Nothing is
// left at path when encoding fails.
func WriteImageToFileWithQuality(path string, img image.Image, quality int) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".ppm", ".qoi":
		var buf bytes.Buffer
		var err error
		if ext == ".ppm" {
			err = ppm.Encode(&buf, toRGBA(img))
		} else {
			err = qoi.Encode(&buf, img)
		}
		if err != nil {
			return errors.Wrapf(err, "cannot encode image %q", path)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
			return errors.Wrapf(err, "cannot write image %q", path)
		}
		return nil
	default:
		if err := imaging.Save(img, path, imaging.JPEGQuality(quality)); err != nil {
			if !errors.Is(err, imaging.ErrUnsupportedFormat) {
				utils.UncheckedError(os.Remove(path))
			}
			return errors.Wrapf(err, "cannot write image %q", path)
		}
		return nil
	}
}

// toRGBA returns img as an *image.RGBA, the only model the ppm encoder accepts.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Preview returns a copy of img scaled to the given width, keeping the aspect ratio.
// A width of zero or one larger than the image returns the image itself.
func Preview(img image.Image, width int) image.Image {
	if width <= 0 || width >= img.Bounds().Dx() {
		return img
	}
	return resize.Resize(uint(width), 0, img, resize.Lanczos3)
}
