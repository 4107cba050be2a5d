package project

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/geosolve/geotools/rimage/transform"
	"github.com/geosolve/geotools/utils"
)

// Polymorphic names of the model kinds.
const (
	Model0Name       = "Model0"
	ModelTerrainName = "ModelTerrain"
)

// Solution is one iteration of a solve: a pose per camera and the terrain points.
type Solution struct {
	Cameras []transform.External
	Terrain []r3.Vector
}

// Model is a solved model. It is implemented by *Model0 and *ModelTerrain only; use a type
// switch to tell them apart.
type Model interface {
	modelName() string
}

// Model0 solves for camera poses and a flat 2D terrain with fixed internals.
type Model0 struct {
	Internal  transform.Internal
	Solutions []Solution
}

func (*Model0) modelName() string { return Model0Name }

// ModelTerrain refines 3D terrain points with the cameras and internals of its parent.
type ModelTerrain struct {
	Features  *ImageGraph
	Cameras   []transform.External
	Internal  transform.Internal
	Parent    Model
	Solutions []Solution
}

func (*ModelTerrain) modelName() string { return ModelTerrainName }

// ModelName is the polymorphic name of a model.
func ModelName(m Model) string {
	if m == nil {
		return ""
	}
	return m.modelName()
}

// Calibration is the internal calibration of a model. A terrain model without a pixel size
// inherits it from its parent chain.
func Calibration(m Model) (transform.Internal, error) {
	switch model := m.(type) {
	case *Model0:
		return model.Internal, model.Internal.CheckValid()
	case *ModelTerrain:
		in := model.Internal
		if in.PixelSize == 0 && model.Parent != nil {
			parent, err := Calibration(model.Parent)
			if err != nil {
				return in, errors.Wrap(err, "parent model")
			}
			in.PixelSize = parent.PixelSize
		}
		return in, in.CheckValid()
	case nil:
		return transform.Internal{}, errors.New("no model")
	default:
		return transform.Internal{}, utils.NewUnexpectedTypeError(&Model0{}, m)
	}
}

// Solutions is the solution history of a model, oldest first.
func Solutions(m Model) []Solution {
	switch model := m.(type) {
	case *Model0:
		return model.Solutions
	case *ModelTerrain:
		return model.Solutions
	default:
		return nil
	}
}

// SolutionAt returns solution n of a model. Negative n counts from the end, so -1 is the
// final solution.
func SolutionAt(m Model, n int) (Solution, error) {
	sols := Solutions(m)
	k := n
	if k < 0 {
		k += len(sols)
	}
	if k < 0 || k >= len(sols) {
		return Solution{}, utils.NewOutOfRangeError("solution", n, len(sols))
	}
	return sols[k], nil
}

type solutionData struct {
	Cameras [][]float64 `json:"cameras"`
	Terrain [][]float64 `json:"terrain"`
}

type model0Data struct {
	Internal  []float64      `json:"internal"`
	PixelSize float64        `json:"pixel_size"`
	Solutions []solutionData `json:"solutions"`
	Cameras   [][]float64    `json:"cameras"`
	Terrain   [][]float64    `json:"terrain"`
}

type modelTerrainData struct {
	Base struct {
		Features interface{} `json:"features"`
	} `json:"base"`
	Cameras   [][]float64    `json:"cameras"`
	Internal  []float64      `json:"internal"`
	PixelSize float64        `json:"pixel_size"`
	Parent    interface{}    `json:"parent"`
	Solutions []solutionData `json:"solutions"`
}

// resolveModel decodes a polymorphic model pointer. A null pointer yields a nil Model.
func (t *refTable) resolveModel(v interface{}, what string) (Model, error) {
	ptr, err := asObject(v, what)
	if err != nil {
		return nil, err
	}
	name, ok, err := t.polymorphicName(ptr, what)
	if err != nil || !ok {
		return nil, err
	}
	switch name {
	case Model0Name:
		m, err := resolvePtr(t, ptr, what, t.decodeModel0)
		if err != nil || m == nil {
			return nil, err
		}
		return m, nil
	case ModelTerrainName:
		m, err := resolvePtr(t, ptr, what, t.decodeModelTerrain)
		if err != nil || m == nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, errors.Errorf("%s has unknown model type %q", what, name)
	}
}

func (t *refTable) decodeModel0(data map[string]interface{}) (*Model0, error) {
	var raw model0Data
	if err := decodeInto(data, &raw); err != nil {
		return nil, err
	}
	m := &Model0{}
	if err := m.Internal.SetFromSlice(raw.Internal); err != nil {
		return nil, err
	}
	if raw.PixelSize != 0 {
		m.Internal.PixelSize = raw.PixelSize
	}

	// a bare model carries a single solution at the top level
	if len(raw.Solutions) == 0 && (len(raw.Cameras) > 0 || len(raw.Terrain) > 0) {
		raw.Solutions = []solutionData{{Cameras: raw.Cameras, Terrain: raw.Terrain}}
	}
	for i, s := range raw.Solutions {
		sol, err := decodeSolution(s, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "solution %d", i)
		}
		m.Solutions = append(m.Solutions, sol)
	}
	return m, nil
}

func (t *refTable) decodeModelTerrain(data map[string]interface{}) (*ModelTerrain, error) {
	var raw modelTerrainData
	if err := decodeInto(data, &raw); err != nil {
		return nil, err
	}
	m := &ModelTerrain{}
	if raw.Base.Features != nil {
		features, err := resolvePtr(t, raw.Base.Features, "base.features", t.decodeImageGraph)
		if err != nil {
			return nil, err
		}
		m.Features = features
	}
	if err := m.Internal.SetFromSlice(raw.Internal); err != nil {
		return nil, err
	}
	if raw.PixelSize != 0 {
		m.Internal.PixelSize = raw.PixelSize
	}
	cameras, err := decodeCameras(raw.Cameras)
	if err != nil {
		return nil, err
	}
	m.Cameras = cameras
	if raw.Parent != nil {
		parent, err := t.resolveModel(raw.Parent, "parent")
		if err != nil {
			return nil, err
		}
		m.Parent = parent
	}

	// terrain solutions share the cameras of the model
	for i, s := range raw.Solutions {
		sol, err := decodeSolution(s, cameras)
		if err != nil {
			return nil, errors.Wrapf(err, "solution %d", i)
		}
		m.Solutions = append(m.Solutions, sol)
	}
	return m, nil
}

func decodeSolution(s solutionData, cameras []transform.External) (Solution, error) {
	var sol Solution
	if s.Cameras != nil {
		decoded, err := decodeCameras(s.Cameras)
		if err != nil {
			return sol, err
		}
		cameras = decoded
	}
	sol.Cameras = cameras
	terrain, err := decodeTerrain(s.Terrain)
	if err != nil {
		return sol, err
	}
	sol.Terrain = terrain
	return sol, nil
}

func decodeCameras(rows [][]float64) ([]transform.External, error) {
	out := make([]transform.External, len(rows))
	for i, row := range rows {
		if len(row) != len(out[i]) {
			return nil, errors.Errorf("camera %d has %d values, expected %d", i, len(row), len(out[i]))
		}
		copy(out[i][:], row)
	}
	return out, nil
}

// decodeTerrain reads 3D points. 2D points lie on the Z = 0 plane.
func decodeTerrain(rows [][]float64) ([]r3.Vector, error) {
	out := make([]r3.Vector, len(rows))
	for i, row := range rows {
		switch len(row) {
		case 2:
			out[i] = r3.Vector{X: row[0], Y: row[1]}
		case 3:
			out[i] = r3.Vector{X: row[0], Y: row[1], Z: row[2]}
		default:
			return nil, errors.Errorf("terrain point %d has %d values, expected 2 or 3", i, len(row))
		}
	}
	return out, nil
}
