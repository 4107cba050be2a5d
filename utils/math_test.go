package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestRadToDeg(t *testing.T) {
	test.That(t, RadToDeg(math.Pi), test.ShouldEqual, 180.)
	test.That(t, RadToDeg(-math.Pi/4), test.ShouldAlmostEqual, -45)
}

func TestRoundIndex(t *testing.T) {
	test.That(t, RoundIndex(0.49), test.ShouldEqual, 0)
	test.That(t, RoundIndex(0.5), test.ShouldEqual, 1)
	test.That(t, RoundIndex(99.4999), test.ShouldEqual, 99)
	test.That(t, RoundIndex(-0.4), test.ShouldEqual, 0)
}

func TestIsFinite(t *testing.T) {
	test.That(t, IsFinite(1.5), test.ShouldBeTrue)
	test.That(t, IsFinite(math.NaN()), test.ShouldBeFalse)
	test.That(t, IsFinite(math.Inf(-1)), test.ShouldBeFalse)
}

func TestCumulativeFraction(t *testing.T) {
	out := CumulativeFraction([]bool{false, true, false, true})
	test.That(t, out, test.ShouldResemble, []float64{0, 0.25, 0.25, 0.5})
	test.That(t, CumulativeFraction(nil), test.ShouldBeEmpty)
}
