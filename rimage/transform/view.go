package transform

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// View is one camera of a solution: a projector bound to its calibration, pose and image layout.
type View struct {
	Projector Projector
	Internal  Internal
	External  External
	Geometry  SensorGeometry
}

// NewView returns a View using the Model0Camera projector. The sensor geometry takes its pixel
// size from the calibration.
func NewView(in Internal, ext External, rows, cols int) View {
	return View{
		Projector: Model0Camera{},
		Internal:  in,
		External:  ext,
		Geometry:  SensorGeometry{PixelSize: in.PixelSize, Rows: rows, Cols: cols},
	}
}

// WorldToPixel projects a world point into the image of the view.
func (v View) WorldToPixel(world r3.Vector) (Pixel, bool) {
	s, ok := v.Projector.Project(v.Internal, v.External, world)
	if !ok {
		return Pixel{}, false
	}
	return v.Geometry.ToPixel(s), true
}

// WorldToPixels projects every world point. Points the camera cannot see get NaN coordinates.
func (v View) WorldToPixels(world []r3.Vector) []Pixel {
	return v.Geometry.SensorToPixels(ProjectAll(v.Projector, v.Internal, v.External, world))
}

// PixelToWorld brings an image pixel down to the plane Z = elevation.
func (v View) PixelToWorld(p Pixel, elevation float64) (r2.Point, error) {
	return v.Projector.Inverse(v.Internal, v.External, v.Geometry.ToSensor(p), elevation)
}

// PixelsToWorld applies PixelToWorld to every pixel.
func (v View) PixelsToWorld(pixels []Pixel, elevation float64) ([]r2.Point, error) {
	out := make([]r2.Point, len(pixels))
	for i, p := range pixels {
		w, err := v.PixelToWorld(p, elevation)
		if err != nil {
			return nil, errors.Wrapf(err, "observation %d at (%g, %g)", i, p.I, p.J)
		}
		out[i] = w
	}
	return out, nil
}

// Footprint is the ground trace of the four image corners at the given elevation.
func (v View) Footprint(elevation float64) ([4]r2.Point, error) {
	var out [4]r2.Point
	for i, c := range v.Geometry.Corners() {
		w, err := v.PixelToWorld(c, elevation)
		if err != nil {
			return out, errors.Wrap(err, "cannot compute camera footprint")
		}
		out[i] = w
	}
	return out, nil
}
