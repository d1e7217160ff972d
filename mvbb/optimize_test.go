package mvbb

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/mvbb/pointcloud"
	"go.viam.com/mvbb/spatialmath"
)

func TestOptimizeBox(t *testing.T) {
	aa := &spatialmath.R4AA{Theta: 0.9, RX: 1, RY: -2, RZ: 0.5}
	rot := aa.RotationMatrix()
	points := pointcloud.ApplyRigidTransform(pointcloud.MakeUnitCube(), rot, r3.Vector{X: 1, Y: 2, Z: 3})
	params := defaultParams()

	// tilt the first axis away from a cube edge within the plane of two cube axes
	tilted := rot.Mul(r3.Vector{X: math.Cos(0.1), Y: math.Sin(0.1), Z: 0})
	start, err := SearchOrientation(points, tilted, params)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, start.Volume(), test.ShouldBeGreaterThan, 1.05)

	unchanged, improvements, err := OptimizeBox(points, start, 0, params)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, improvements, test.ShouldEqual, 0)
	test.That(t, unchanged, test.ShouldResemble, start)

	best, improvements, err := OptimizeBox(points, start, 5, params)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, improvements, test.ShouldBeGreaterThanOrEqualTo, 1)
	test.That(t, best.Volume(), test.ShouldAlmostEqual, 1., 1e-9)
	test.That(t, best.Rotation().IsOrthonormal(1e-9), test.ShouldBeTrue)
	for i := 0; i < 3; i++ {
		axis := best.Axes[i]
		aligned := math.Max(math.Abs(axis.Dot(rot.Col(0))), math.Max(math.Abs(axis.Dot(rot.Col(1))), math.Abs(axis.Dot(rot.Col(2)))))
		test.That(t, aligned, test.ShouldAlmostEqual, 1., 1e-9)
	}
}
