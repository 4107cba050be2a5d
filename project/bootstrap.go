package project

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/geosolve/geotools/rimage/transform"
)

// BootstrapSample is the solution of one resampled solve.
type BootstrapSample struct {
	Internal []float64
	Cameras  []transform.External
}

// Bootstrap is a set of solves of BaseModel on resampled observations.
type Bootstrap struct {
	BaseModel Model
	Samples   []BootstrapSample
}

// Internals stacks the internal parameters of every sample, one sample per row.
func (b *Bootstrap) Internals() (*mat.Dense, error) {
	if len(b.Samples) == 0 {
		return nil, errors.New("bootstrap has no samples")
	}
	width := len(b.Samples[0].Internal)
	if width == 0 {
		return nil, errors.New("bootstrap samples have no internal parameters")
	}
	out := mat.NewDense(len(b.Samples), width, nil)
	for i, s := range b.Samples {
		if len(s.Internal) != width {
			return nil, errors.Errorf("sample %d has %d internal parameters, expected %d", i, len(s.Internal), width)
		}
		out.SetRow(i, s.Internal)
	}
	return out, nil
}

// Cameras returns, for every camera, the 6 pose parameters of every sample, one sample per row.
func (b *Bootstrap) Cameras() ([]*mat.Dense, error) {
	if len(b.Samples) == 0 {
		return nil, errors.New("bootstrap has no samples")
	}
	n := len(b.Samples[0].Cameras)
	out := make([]*mat.Dense, n)
	for c := range out {
		out[c] = mat.NewDense(len(b.Samples), len(transform.External{}), nil)
	}
	for i, s := range b.Samples {
		if len(s.Cameras) != n {
			return nil, errors.Errorf("sample %d has %d cameras, expected %d", i, len(s.Cameras), n)
		}
		for c, ext := range s.Cameras {
			out[c].SetRow(i, ext[:])
		}
	}
	return out, nil
}

type bootstrapData struct {
	BaseModel interface{} `json:"base_model"`
	Samples   []struct {
		Internal []float64   `json:"internal"`
		Cameras  [][]float64 `json:"cameras"`
	} `json:"samples"`
}

func (t *refTable) decodeBootstrap(data map[string]interface{}) (*Bootstrap, error) {
	var raw bootstrapData
	if err := decodeInto(data, &raw); err != nil {
		return nil, err
	}
	b := &Bootstrap{}
	if raw.BaseModel != nil {
		m, err := t.resolveModel(raw.BaseModel, "base_model")
		if err != nil {
			return nil, err
		}
		b.BaseModel = m
	}
	for i, s := range raw.Samples {
		cameras, err := decodeCameras(s.Cameras)
		if err != nil {
			return nil, errors.Wrapf(err, "sample %d", i)
		}
		b.Samples = append(b.Samples, BootstrapSample{Internal: s.Internal, Cameras: cameras})
	}
	return b, nil
}
