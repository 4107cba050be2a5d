package transform

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrSingularProjection is returned when a sensor coordinate cannot be brought down to the
// requested elevation, e.g. a ray parallel to the ground.
var ErrSingularProjection = errors.New("projection is singular at this elevation")

// Projector maps world points to sensor coordinates for a camera and back.
type Projector interface {
	// Project returns the sensor coordinate of a world point. ok is false when the point lies
	// in the plane of the camera center and has no image.
	Project(in Internal, ext External, world r3.Vector) (sensor r2.Point, ok bool)
	// Inverse intersects the ray through a sensor coordinate with the plane Z = elevation.
	Inverse(in Internal, ext External, sensor r2.Point, elevation float64) (r2.Point, error)
}

// Model0Camera is the frame camera model of the bundle adjustment: a distortion free pinhole
// looking down the -Z axis, oriented by roll, pitch and yaw.
type Model0Camera struct{}

// RotationMatrix returns R = Pitch * Roll * Yaw for the pose. Roll carries the flip that makes
// the camera look down.
func RotationMatrix(ext External) *mat.Dense {
	roll, pitch, yaw := ext.Angles()
	cy, sy := math.Cos(yaw), math.Sin(yaw)
	cp, sp := math.Cos(pitch), math.Sin(pitch)
	cr, sr := math.Cos(roll), math.Sin(roll)

	yawM := mat.NewDense(3, 3, []float64{
		cy, -sy, 0,
		sy, cy, 0,
		0, 0, 1,
	})
	pitchM := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, cp, sp,
		0, -sp, cp,
	})
	rollM := mat.NewDense(3, 3, []float64{
		-cr, 0, -sr,
		0, 1, 0,
		sr, 0, -cr,
	})

	var pr, r mat.Dense
	pr.Mul(pitchM, rollM)
	r.Mul(&pr, yawM)
	return &r
}

// Project implements Projector.
func (Model0Camera) Project(in Internal, ext External, world r3.Vector) (r2.Point, bool) {
	r := RotationMatrix(ext)
	q := mat.NewVecDense(3, []float64{world.X - ext[0], world.Y - ext[1], ext[2] - world.Z})
	var cam mat.VecDense
	cam.MulVec(r, q)

	if cam.AtVec(2) == 0 {
		return r2.Point{X: math.NaN(), Y: math.NaN()}, false
	}
	x := cam.AtVec(0) / cam.AtVec(2)
	y := cam.AtVec(1) / cam.AtVec(2)
	return r2.Point{X: in.Focal*x + in.Ppx, Y: in.Focal*y + in.Ppy}, true
}

// Inverse implements Projector by solving the plane to sensor homography
// A = P * R * T * B with a LU decomposition.
func (Model0Camera) Inverse(in Internal, ext External, sensor r2.Point, elevation float64) (r2.Point, error) {
	a := homography(in, ext, elevation)

	var lu mat.LU
	lu.Factorize(a)
	if cond := lu.Cond(); math.IsInf(cond, 1) || cond > 1e15 {
		return r2.Point{}, ErrSingularProjection
	}

	b := mat.NewVecDense(3, []float64{sensor.X, sensor.Y, 1})
	var sol mat.VecDense
	if err := lu.SolveVecTo(&sol, false, b); err != nil {
		return r2.Point{}, errors.Wrap(ErrSingularProjection, err.Error())
	}
	w := sol.AtVec(2)
	if w == 0 {
		return r2.Point{}, ErrSingularProjection
	}
	return r2.Point{X: sol.AtVec(0) / w, Y: sol.AtVec(1) / w}, nil
}

// homography maps homogeneous ground coordinates (X, Y, 1) at the given elevation to
// homogeneous sensor coordinates.
func homography(in Internal, ext External, elevation float64) *mat.Dense {
	r3x3 := RotationMatrix(ext)
	r := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.Set(i, j, r3x3.At(i, j))
		}
	}
	r.Set(3, 3, 1)

	t := mat.NewDense(4, 4, []float64{
		1, 0, 0, -ext[0],
		0, 1, 0, -ext[1],
		0, 0, -1, ext[2],
		0, 0, 0, 1,
	})
	b := mat.NewDense(4, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, elevation,
		0, 0, 1,
	})

	var pr, prt, a mat.Dense
	pr.Mul(in.CameraMatrix(), r)
	prt.Mul(&pr, t)
	a.Mul(&prt, b)
	return &a
}

// ProjectAll forward projects every world point. Points without an image get NaN coordinates.
func ProjectAll(p Projector, in Internal, ext External, world []r3.Vector) []r2.Point {
	out := make([]r2.Point, len(world))
	for i, w := range world {
		out[i], _ = p.Project(in, ext, w)
	}
	return out
}
