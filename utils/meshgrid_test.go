package utils

import (
	"testing"

	"go.viam.com/test"
)

func TestMeshGrid2D(t *testing.T) {
	mesh := MeshGrid2D(2, 3)
	r, c := mesh.Dims()
	test.That(t, r, test.ShouldEqual, 6)
	test.That(t, c, test.ShouldEqual, 2)

	// row-major: the column index varies fastest
	expected := [][2]float64{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}
	for k, e := range expected {
		test.That(t, mesh.At(k, 0), test.ShouldEqual, e[0])
		test.That(t, mesh.At(k, 1), test.ShouldEqual, e[1])
	}

	empty := MeshGrid2D(0, 4)
	test.That(t, empty.IsEmpty(), test.ShouldBeTrue)
}

func TestSubFor(t *testing.T) {
	dims := []int{4, 5}
	test.That(t, SubFor(nil, 0, dims), test.ShouldResemble, []int{0, 0})
	test.That(t, SubFor(nil, 7, dims), test.ShouldResemble, []int{1, 2})
	test.That(t, SubFor(nil, 19, dims), test.ShouldResemble, []int{3, 4})
	test.That(t, func() { SubFor(nil, 20, dims) }, test.ShouldPanic)
	test.That(t, func() { SubFor(nil, -1, dims) }, test.ShouldPanic)
}
