package transform

import (
	"encoding/json"
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrNoIntrinsics is when a camera does not have a usable internal calibration.
var ErrNoIntrinsics = errors.New("camera internal calibration is not available")

// NewNoIntrinsicsError is used when the internal calibration is missing or invalid.
func NewNoIntrinsicsError(msg string) error {
	return errors.Wrap(ErrNoIntrinsics, msg)
}

// Internal is the internal calibration shared by every camera of a model.
// Focal, Ppx and Ppy are in sensor units (mm). PixelSize is mm per pixel.
type Internal struct {
	Focal     float64
	Ppx       float64
	Ppy       float64
	PixelSize float64
}

// CheckValid checks if the fields of Internal have valid inputs.
func (in *Internal) CheckValid() error {
	if in == nil {
		return NewNoIntrinsicsError("internal calibration does not exist")
	}
	if in.Focal <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("invalid focal length f = %#v", in.Focal))
	}
	if in.PixelSize <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("invalid pixel size = %#v", in.PixelSize))
	}
	return nil
}

// CameraMatrix is the 3x4 pinhole projection [[f 0 ppx 0] [0 f ppy 0] [0 0 1 0]].
func (in Internal) CameraMatrix() *mat.Dense {
	return mat.NewDense(3, 4, []float64{
		in.Focal, 0, in.Ppx, 0,
		0, in.Focal, in.Ppy, 0,
		0, 0, 1, 0,
	})
}

// MarshalJSON writes the calibration as [f, ppx, ppy, pixel_size].
func (in Internal) MarshalJSON() ([]byte, error) {
	return json.Marshal([]float64{in.Focal, in.Ppx, in.Ppy, in.PixelSize})
}

// UnmarshalJSON reads [f, ppx, ppy] or [f, ppx, ppy, pixel_size]. The three element form leaves
// PixelSize for the caller to fill from the model.
func (in *Internal) UnmarshalJSON(data []byte) error {
	var values []float64
	if err := json.Unmarshal(data, &values); err != nil {
		return errors.Wrap(err, "internal calibration must be an array of numbers")
	}
	return in.SetFromSlice(values)
}

// SetFromSlice fills the calibration from its array form.
func (in *Internal) SetFromSlice(values []float64) error {
	switch len(values) {
	case 3:
		in.Focal, in.Ppx, in.Ppy = values[0], values[1], values[2]
	case 4:
		in.Focal, in.Ppx, in.Ppy, in.PixelSize = values[0], values[1], values[2], values[3]
	default:
		return errors.Errorf("internal calibration needs 3 or 4 values, got %d", len(values))
	}
	return nil
}

// External is a camera pose: X, Y, Z position followed by the three orientation angles
// (roll, pitch, yaw) in radians.
type External [6]float64

// Position is the projection center of the camera.
func (e External) Position() r3.Vector {
	return r3.Vector{X: e[0], Y: e[1], Z: e[2]}
}

// Angles returns roll, pitch and yaw.
func (e External) Angles() (float64, float64, float64) {
	return e[3], e[4], e[5]
}

// NewExternal is a helper to build a pose from a position and its angles.
func NewExternal(position r3.Vector, roll, pitch, yaw float64) External {
	return External{position.X, position.Y, position.Z, roll, pitch, yaw}
}
