package project

import (
	"github.com/pkg/errors"

	"github.com/geosolve/geotools/rimage/transform"
	"github.com/geosolve/geotools/utils"
)

// ObsPair is the set of matches between two images: ObsA[k] in camera CamA and ObsB[k] in
// camera CamB see the same ground point.
type ObsPair struct {
	CamA int
	CamB int
	ObsA []transform.Pixel
	ObsB []transform.Pixel
}

// Len is the number of correspondences.
func (p ObsPair) Len() int {
	return len(p.ObsA)
}

// ImageGraph holds the feature matches of a data set as edges between images.
type ImageGraph struct {
	NumberOfMatches int
	ComputeScale    float64
	Computed        bool
	DataSet         *DataSet
	Edges           []ObsPair
}

// Edge returns edge n.
func (g *ImageGraph) Edge(n int) (ObsPair, error) {
	if g == nil {
		return ObsPair{}, errors.New("project has no features")
	}
	if n < 0 || n >= len(g.Edges) {
		return ObsPair{}, utils.NewOutOfRangeError("edge", n, len(g.Edges))
	}
	return g.Edges[n], nil
}

type obsPairData struct {
	CamA int         `json:"cam_a"`
	CamB int         `json:"cam_b"`
	ObsA [][]float64 `json:"obs_a"`
	ObsB [][]float64 `json:"obs_b"`
}

type imageGraphData struct {
	NumberOfMatches int           `json:"number_of_matches"`
	ComputeScale    float64       `json:"compute_scale"`
	Computed        bool          `json:"computed"`
	DataSet         interface{}   `json:"data_set"`
	Edges           []obsPairData `json:"edges"`
	// rows of [i_a, j_a, i_b, j_b] between the first two images
	Observations [][]float64 `json:"observations"`
}

func (t *refTable) decodeImageGraph(data map[string]interface{}) (*ImageGraph, error) {
	var raw imageGraphData
	if err := decodeInto(data, &raw); err != nil {
		return nil, err
	}
	g := &ImageGraph{
		NumberOfMatches: raw.NumberOfMatches,
		ComputeScale:    raw.ComputeScale,
		Computed:        raw.Computed,
	}
	if raw.DataSet != nil {
		ds, err := resolvePtr(t, raw.DataSet, "data_set", decodeDataSet)
		if err != nil {
			return nil, err
		}
		g.DataSet = ds
	}

	for i, e := range raw.Edges {
		pair, err := decodeObsPair(e)
		if err != nil {
			return nil, errors.Wrapf(err, "edge %d", i)
		}
		g.Edges = append(g.Edges, pair)
	}
	if len(raw.Observations) > 0 {
		pair := ObsPair{CamA: 0, CamB: 1}
		for i, row := range raw.Observations {
			if len(row) != 4 {
				return nil, errors.Errorf("observation %d has %d values, expected 4", i, len(row))
			}
			pair.ObsA = append(pair.ObsA, transform.Pixel{I: row[0], J: row[1]})
			pair.ObsB = append(pair.ObsB, transform.Pixel{I: row[2], J: row[3]})
		}
		g.Edges = append(g.Edges, pair)
	}
	return g, nil
}

func decodeObsPair(e obsPairData) (ObsPair, error) {
	if len(e.ObsA) != len(e.ObsB) {
		return ObsPair{}, utils.NewLengthMismatchError("observation pair", len(e.ObsA), len(e.ObsB))
	}
	obsA, err := decodePixels(e.ObsA)
	if err != nil {
		return ObsPair{}, errors.Wrap(err, "obs_a")
	}
	obsB, err := decodePixels(e.ObsB)
	if err != nil {
		return ObsPair{}, errors.Wrap(err, "obs_b")
	}
	return ObsPair{CamA: e.CamA, CamB: e.CamB, ObsA: obsA, ObsB: obsB}, nil
}

func decodePixels(rows [][]float64) ([]transform.Pixel, error) {
	out := make([]transform.Pixel, len(rows))
	for k, row := range rows {
		if len(row) != 2 {
			return nil, errors.Errorf("pixel %d has %d values, expected 2", k, len(row))
		}
		out[k] = transform.Pixel{I: row[0], J: row[1]}
	}
	return out, nil
}
