package pointcloud

import (
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestSampleSmallCloud(t *testing.T) {
	points := MakeUnitCube()
	sampled, err := Sample(points, 8, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sampled, test.ShouldResemble, points)

	sampled, err = Sample(points, 400, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(sampled), test.ShouldEqual, 8)

	// the sample is a copy
	sampled[0] = r3.Vector{X: 9, Y: 9, Z: 9}
	test.That(t, points[0], test.ShouldResemble, r3.Vector{})
}

func TestSampleErrors(t *testing.T) {
	points := MakeUnitCube()
	_, err := Sample(points, 0, nil)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = Sample(points, 3, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "random source")
}

func TestSampleLargeCloud(t *testing.T) {
	points := MakeRandomCube(5000, rand.New(rand.NewSource(3)))
	meta, err := ComputeMetaData(points)
	test.That(t, err, test.ShouldBeNil)

	indices, err := SampleIndices(points, &meta, 200, rand.New(rand.NewSource(42)))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(indices), test.ShouldBeLessThanOrEqualTo, 200)
	test.That(t, len(indices), test.ShouldBeGreaterThanOrEqualTo, 194)

	seen := map[int]bool{}
	for _, idx := range indices {
		test.That(t, idx, test.ShouldBeBetweenOrEqual, 0, len(points)-1)
		test.That(t, seen[idx], test.ShouldBeFalse)
		seen[idx] = true
	}
	for axis := 0; axis < 3; axis++ {
		test.That(t, seen[meta.MinIndex[axis]], test.ShouldBeTrue)
		test.That(t, seen[meta.MaxIndex[axis]], test.ShouldBeTrue)
	}

	again, err := SampleIndices(points, &meta, 200, rand.New(rand.NewSource(42)))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again, test.ShouldResemble, indices)

	other, err := SampleIndices(points, &meta, 200, rand.New(rand.NewSource(43)))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, other, test.ShouldNotResemble, indices)
}

func TestSampleSizeSmallerThanExtremes(t *testing.T) {
	points := MakeRandomCube(100, rand.New(rand.NewSource(5)))
	meta, err := ComputeMetaData(points)
	test.That(t, err, test.ShouldBeNil)
	indices, err := SampleIndices(points, &meta, 2, rand.New(rand.NewSource(1)))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, indices, test.ShouldResemble, []int{meta.MinIndex[0], meta.MaxIndex[0]})
}

func TestSampleWithoutMetaData(t *testing.T) {
	points := MakeRandomCube(50, rand.New(rand.NewSource(5)))
	indices, err := SampleIndices(points, nil, 10, rand.New(rand.NewSource(1)))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(indices), test.ShouldEqual, 10)
	for i := 1; i < len(indices); i++ {
		test.That(t, indices[i], test.ShouldBeGreaterThan, indices[i-1])
	}
}
