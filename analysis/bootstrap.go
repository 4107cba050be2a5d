package analysis

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Labels of the bootstrap correlation matrices.
var (
	PositionLabels = []string{"X", "Y", "Z"}
	AngleLabels    = []string{"ang1", "ang2", "ang3"}
)

// InternalLabels names the columns of a bootstrap internals matrix.
func InternalLabels(width int) []string {
	switch width {
	case 5:
		return []string{"fx", "fy", "ppx", "ppy", "ps"}
	case 4:
		return []string{"f", "ppx", "ppy", "ps"}
	case 3:
		return []string{"f", "ppx", "ppy"}
	default:
		labels := make([]string, width)
		for i := range labels {
			labels[i] = fmt.Sprintf("p%d", i)
		}
		return labels
	}
}

// Correlation returns the correlation matrix of the columns of samples, one observation per
// row. Constant columns have NaN correlations.
func Correlation(samples mat.Matrix) (*mat.SymDense, error) {
	r, c := samples.Dims()
	if r < 2 {
		return nil, errors.Errorf("need at least 2 samples for a correlation, got %d", r)
	}
	corr := mat.NewSymDense(c, nil)
	stat.CorrelationMatrix(corr, samples, nil)
	return corr, nil
}

// SubCorrelation extracts the block of a correlation matrix between columns [from, to).
func SubCorrelation(s *mat.SymDense, from, to int) (*mat.SymDense, error) {
	if n := s.SymmetricDim(); from < 0 || to > n || from >= to {
		return nil, errors.Errorf("invalid block [%d, %d) of a %dx%d matrix", from, to, n, n)
	}
	return s.SliceSym(from, to).(*mat.SymDense), nil
}

// Column returns column j of m.
func Column(m mat.Matrix, j int) []float64 {
	return mat.Col(nil, j, m)
}
