package pointcloud

import (
	"image/color"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestPointCloudBasic(t *testing.T) {
	pc := New()

	p0 := r3.Vector{X: 0, Y: 0, Z: 0}
	d0 := NewColoredData(color.NRGBA{R: 5, A: 255})

	test.That(t, pc.Set(p0, d0), test.ShouldBeNil)
	d, got := pc.At(0, 0, 0)
	test.That(t, got, test.ShouldBeTrue)
	test.That(t, d, test.ShouldResemble, d0)

	_, got = pc.At(1, 0, 1)
	test.That(t, got, test.ShouldBeFalse)

	p1 := r3.Vector{X: 1, Y: 0, Z: 1}
	d1 := NewBasicData()
	test.That(t, pc.Set(p1, d1), test.ShouldBeNil)
	p2 := r3.Vector{X: -1, Y: -2, Z: 1}
	test.That(t, pc.Set(p2, NewBasicData()), test.ShouldBeNil)

	// setting an existing point replaces its data but keeps its place
	d3 := NewColoredData(color.NRGBA{G: 9, A: 255})
	test.That(t, pc.Set(p1, d3), test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 3)

	var order []r3.Vector
	pc.Iterate(0, 0, func(p r3.Vector, d Data) bool {
		order = append(order, p)
		return true
	})
	test.That(t, order, test.ShouldResemble, []r3.Vector{p0, p1, p2})
	d, _ = pc.At(1, 0, 1)
	test.That(t, d, test.ShouldResemble, d3)

	_, got = pc.At(1, 1, 1)
	test.That(t, got, test.ShouldBeFalse)

	meta := pc.MetaData()
	test.That(t, meta.HasColor, test.ShouldBeTrue)
	test.That(t, meta.MinX, test.ShouldEqual, -1.)
	test.That(t, meta.MaxX, test.ShouldEqual, 1.)
	test.That(t, meta.MinY, test.ShouldEqual, -2.)
	test.That(t, meta.MaxZ, test.ShouldEqual, 1.)

	pMax := r3.Vector{X: minPreciseFloat64, Y: maxPreciseFloat64, Z: minPreciseFloat64}
	test.That(t, pc.Set(pMax, nil), test.ShouldBeNil)

	err := pc.Set(r3.Vector{X: minPreciseFloat64 * 2}, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "x component")
	err = pc.Set(r3.Vector{Y: maxPreciseFloat64 * 2}, nil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "y component")
	err = pc.Set(r3.Vector{Z: minPreciseFloat64 * 2}, nil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "z component")
}

func TestPointCloudIterateBatches(t *testing.T) {
	pc := New()
	for i := 0; i < 5; i++ {
		test.That(t, pc.Set(r3.Vector{X: float64(i)}, NewBasicData()), test.ShouldBeNil)
	}
	var xs []float64
	for batch := 0; batch < 2; batch++ {
		pc.Iterate(2, batch, func(p r3.Vector, d Data) bool {
			xs = append(xs, p.X)
			return true
		})
	}
	test.That(t, xs, test.ShouldResemble, []float64{0, 1, 2, 3, 4})

	count := 0
	pc.Iterate(0, 0, func(p r3.Vector, d Data) bool {
		count++
		return count < 2
	})
	test.That(t, count, test.ShouldEqual, 2)
}

func TestBasicData(t *testing.T) {
	d := NewBasicData()
	test.That(t, d.HasColor(), test.ShouldBeFalse)
	d.SetColor(color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	test.That(t, d.HasColor(), test.ShouldBeTrue)
	r, g, b := d.RGB255()
	test.That(t, []uint8{r, g, b}, test.ShouldResemble, []uint8{1, 2, 3})
	test.That(t, d.Color(), test.ShouldResemble, &color.NRGBA{R: 1, G: 2, B: 3, A: 255})
}
