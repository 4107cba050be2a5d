package utils

import (
	"math"
)

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// IsFinite is true when v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// RoundIndex rounds v to the nearest integer index, halves away from zero.
func RoundIndex(v float64) int {
	return int(math.Round(v))
}

// CumulativeFraction returns, for every prefix of flags, the fraction of all flags that are set
// within that prefix. The denominator is len(flags), not the prefix length.
func CumulativeFraction(flags []bool) []float64 {
	out := make([]float64, len(flags))
	count := 0
	for i, f := range flags {
		if f {
			count++
		}
		out[i] = float64(count) / float64(len(flags))
	}
	return out
}
