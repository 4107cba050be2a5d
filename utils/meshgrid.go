package utils

import "gonum.org/v1/gonum/mat"

// MeshGrid2D enumerates every (row, col) index of a rows x cols grid in row-major order.
// Row k of the result holds the pair for linear index k.
func MeshGrid2D(rows, cols int) *mat.Dense {
	if rows <= 0 || cols <= 0 {
		return &mat.Dense{}
	}
	rowValues := make([]float64, rows)
	for i := range rowValues {
		rowValues[i] = float64(i)
	}
	colValues := make([]float64, cols)
	for j := range colValues {
		colValues[j] = float64(j)
	}
	return Multiple2D([][]float64{rowValues, colValues})
}

// Multiple2D generates a grid using a specified set of locations in each dimension.
// The last dimension varies fastest.
func Multiple2D(x [][]float64) *mat.Dense {
	dim := len(x)
	dims := make([]int, dim)
	for i := range x {
		dims[i] = len(x[i])
	}
	sz := size(dims)
	sub := make([]int, dim)
	matOut := mat.NewDense(sz, dim, nil)
	for i := 0; i < sz; i++ {
		SubFor(sub, i, dims)
		for j := 0; j < dim; j++ {
			matOut.Set(i, j, x[j][sub[j]])
		}
	}
	return matOut
}

func size(dims []int) int {
	n := 1
	for _, v := range dims {
		n *= v
	}
	return n
}

// SubFor constructs the multi-dimensional subscript for the input linear index.
// Dims specifies the maximum size in each dimension.
//
// If sub is non-nil the result is stored in-place into sub. If it is nil a new
// slice of the appropriate length is allocated.
func SubFor(sub []int, idx int, dims []int) []int {
	for _, v := range dims {
		if v <= 0 {
			panic("bad dims")
		}
	}
	if sub == nil {
		sub = make([]int, len(dims))
	}
	if len(sub) != len(dims) {
		panic("size mismatch")
	}
	if idx < 0 {
		panic("bad index")
	}
	stride := 1
	for i := len(dims) - 1; i >= 1; i-- {
		stride *= dims[i]
	}
	for i := 0; i < len(dims)-1; i++ {
		v := idx / stride
		if v >= dims[i] {
			panic("bad index")
		}
		sub[i] = v
		idx -= v * stride
		stride /= dims[i+1]
	}
	if idx >= dims[len(sub)-1] {
		panic("bad index")
	}
	sub[len(sub)-1] = idx
	return sub
}
