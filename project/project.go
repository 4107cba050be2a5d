// Package project loads the project files written by the solver: the data set, the feature
// matches, the solved models and their bootstraps.
//
// Files use the cereal JSON archive layout, where shared objects are written once and then
// referenced by id. Loading resolves every reference in a single pass over the document, in
// the order the solver writes it.
package project

import (
	"encoding/json"
	"fmt"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"github.com/geosolve/geotools/rimage/transform"
	"github.com/geosolve/geotools/utils"
)

// DefaultFilename is the name of the project file inside a project directory.
const DefaultFilename = "project.json"

// Project is a loaded project file.
type Project struct {
	DataSet      *DataSet
	FeaturesList []*ImageGraph
	Models       []Model
	Bootstraps   []*Bootstrap
}

// Load reads a project file. Environment variables referenced as ${VAR} are expanded first.
func Load(path string) (*Project, error) {
	buf, err := envsubst.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read project %q", path)
	}
	p, err := Parse(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot load project %q", path)
	}
	return p, nil
}

// Parse decodes a project document. It accepts both the single model layout (data_set,
// features, model) and the multi model layout (data_set, features_list, models, bootstraps).
func Parse(data []byte) (*Project, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "malformed project JSON")
	}
	t := newRefTable()
	p := &Project{}

	if v, ok := doc["data_set"]; ok {
		ds, err := resolvePtr(t, v, "data_set", decodeDataSet)
		if err != nil {
			return nil, err
		}
		p.DataSet = ds
	}

	if v, ok := doc["features"]; ok {
		g, err := resolvePtr(t, v, "features", t.decodeImageGraph)
		if err != nil {
			return nil, err
		}
		p.FeaturesList = append(p.FeaturesList, g)
	}
	if err := eachElement(doc, "features_list", func(what string, v interface{}) error {
		g, err := resolvePtr(t, v, what, t.decodeImageGraph)
		p.FeaturesList = append(p.FeaturesList, g)
		return err
	}); err != nil {
		return nil, err
	}

	if v, ok := doc["model"]; ok {
		m, err := t.resolveModelOrPlain(v, "model")
		if err != nil {
			return nil, err
		}
		p.Models = append(p.Models, m)
	}
	if err := eachElement(doc, "models", func(what string, v interface{}) error {
		m, err := t.resolveModel(v, what)
		p.Models = append(p.Models, m)
		return err
	}); err != nil {
		return nil, err
	}

	if err := eachElement(doc, "bootstraps", func(what string, v interface{}) error {
		b, err := resolvePtr(t, v, what, t.decodeBootstrap)
		p.Bootstraps = append(p.Bootstraps, b)
		return err
	}); err != nil {
		return nil, err
	}

	if len(p.Models) == 0 && len(p.FeaturesList) == 0 && p.DataSet == nil {
		return nil, errors.New("project has no data_set, features or models")
	}
	return p, nil
}

func eachElement(doc map[string]interface{}, key string, f func(what string, v interface{}) error) error {
	v, ok := doc[key]
	if !ok || v == nil {
		return nil
	}
	list, ok := v.([]interface{})
	if !ok {
		return errors.Errorf("%s must be an array", key)
	}
	for i, elem := range list {
		if err := f(fmt.Sprintf("%s[%d]", key, i), elem); err != nil {
			return err
		}
	}
	return nil
}

// resolveModelOrPlain accepts a polymorphic model pointer or, as written by older solvers, a
// plain pointer to a Model0.
func (t *refTable) resolveModelOrPlain(v interface{}, what string) (Model, error) {
	ptr, err := asObject(v, what)
	if err != nil {
		return nil, err
	}
	if _, ok := ptr["polymorphic_id"]; ok {
		return t.resolveModel(ptr, what)
	}
	m, err := resolvePtr(t, ptr, what, t.decodeModel0)
	if err != nil || m == nil {
		return nil, err
	}
	return m, nil
}

// Features returns the feature graph n.
func (p *Project) Features(n int) (*ImageGraph, error) {
	if n < 0 || n >= len(p.FeaturesList) {
		return nil, utils.NewOutOfRangeError("features", n, len(p.FeaturesList))
	}
	if p.FeaturesList[n] == nil {
		return nil, errors.Errorf("features %d is null", n)
	}
	return p.FeaturesList[n], nil
}

// Model returns model n. Negative n counts from the end, so -1 is the most refined model.
func (p *Project) Model(n int) (Model, error) {
	k := n
	if k < 0 {
		k += len(p.Models)
	}
	if k < 0 || k >= len(p.Models) {
		return nil, utils.NewOutOfRangeError("model", n, len(p.Models))
	}
	if p.Models[k] == nil {
		return nil, errors.Errorf("model %d is null", n)
	}
	return p.Models[k], nil
}

// Views builds one view per camera of a solution, sized from the data set.
func (p *Project) Views(m Model, solution int) ([]transform.View, error) {
	if p.DataSet == nil {
		return nil, errors.New("project has no data set")
	}
	in, err := Calibration(m)
	if err != nil {
		return nil, err
	}
	sol, err := SolutionAt(m, solution)
	if err != nil {
		return nil, err
	}
	views := make([]transform.View, len(sol.Cameras))
	for i, ext := range sol.Cameras {
		rows, cols, err := p.DataSet.ImageSize(i)
		if err != nil {
			return nil, errors.Wrapf(err, "camera %d", i)
		}
		views[i] = transform.NewView(in, ext, rows, cols)
	}
	return views, nil
}
