package project

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/geosolve/geotools/utils"
)

// DataSet lists the images of a project. Rows and Cols hold either one size shared by every
// image or one size per image.
type DataSet struct {
	Filenames []string `json:"filenames"`
	Rows      []int    `json:"rows"`
	Cols      []int    `json:"cols"`
}

// Len is the number of images.
func (ds *DataSet) Len() int {
	return len(ds.Filenames)
}

// ImageSize returns the size of image i.
func (ds *DataSet) ImageSize(i int) (rows, cols int, err error) {
	if i < 0 || i >= len(ds.Filenames) {
		return 0, 0, utils.NewOutOfRangeError("image", i, len(ds.Filenames))
	}
	pick := func(sizes []int, what string) (int, error) {
		switch len(sizes) {
		case 0:
			return 0, errors.Errorf("data set has no image %s", what)
		case 1:
			return sizes[0], nil
		default:
			if i >= len(sizes) {
				return 0, utils.NewOutOfRangeError(what, i, len(sizes))
			}
			return sizes[i], nil
		}
	}
	if rows, err = pick(ds.Rows, "rows"); err != nil {
		return 0, 0, err
	}
	if cols, err = pick(ds.Cols, "cols"); err != nil {
		return 0, 0, err
	}
	return rows, cols, nil
}

// ImagePath resolves image i under dataRoot.
func (ds *DataSet) ImagePath(dataRoot string, i int) (string, error) {
	if i < 0 || i >= len(ds.Filenames) {
		return "", utils.NewOutOfRangeError("image", i, len(ds.Filenames))
	}
	return filepath.Join(dataRoot, ds.Filenames[i]), nil
}

func decodeDataSet(data map[string]interface{}) (*DataSet, error) {
	ds := &DataSet{}
	if err := decodeInto(data, ds); err != nil {
		return nil, err
	}
	return ds, nil
}
