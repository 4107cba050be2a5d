package analysis

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// Chi2Result is the outcome of a chi-square test of uniformity of keypoints over a grid.
type Chi2Result struct {
	// Observed[k] is the number of cells holding exactly k keypoints. The last entry is open
	// ended and counts every cell with at least len(Observed)-1 keypoints.
	Observed []float64
	// Expected is the matching cell count under a Poisson distribution of the mean density.
	Expected []float64
	Mean     float64
	Stat     float64
	DF       int
	PValue   float64
}

// poissonQuantile is the smallest k with P(X <= k) >= p.
func poissonQuantile(dist distuv.Poisson, p float64) int {
	k := 0
	for dist.CDF(float64(k)) < p {
		k++
	}
	return k
}

// SpatialChi2 tests whether the first image keypoints are spread uniformly over a
// count x count grid. Under uniformity the per cell counts follow a Poisson law whose mean is
// estimated from the data. The number of bins is chosen so that the open ended last one
// expects about half a match.
func SpatialChi2(matches []Match, shape Shape, count int) (Chi2Result, error) {
	n := len(matches)
	if n == 0 {
		return Chi2Result{}, errors.New("no matches to test")
	}
	if count <= 0 {
		return Chi2Result{}, errors.Errorf("grid count must be positive, got %d", count)
	}
	cells := count * count
	mu := float64(n) / float64(cells)
	dist := distuv.Poisson{Lambda: mu}
	last := poissonQuantile(dist, 1-0.5/float64(n))

	observed := make([]float64, last+1)
	for _, c := range CellCounts(matches, shape, count) {
		observed[min(c, last)]++
	}
	expected := make([]float64, last+1)
	for k := 0; k < last; k++ {
		expected[k] = dist.Prob(float64(k)) * float64(cells)
	}
	// P(X >= last)
	expected[last] = float64(cells)
	if last > 0 {
		expected[last] = dist.Survival(float64(last-1)) * float64(cells)
	}

	// one degree of freedom for the total and one for the estimated mean
	df := len(observed) - 2
	if df <= 0 {
		return Chi2Result{}, errors.Errorf("%d matches over %d cells leave no degree of freedom", n, cells)
	}
	var stat float64
	for k := range observed {
		d := observed[k] - expected[k]
		stat += d * d / expected[k]
	}
	return Chi2Result{
		Observed: observed,
		Expected: expected,
		Mean:     mu,
		Stat:     stat,
		DF:       df,
		PValue:   distuv.ChiSquared{K: float64(df)}.Survival(stat),
	}, nil
}
