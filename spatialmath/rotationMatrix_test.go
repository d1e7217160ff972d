package spatialmath

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func TestQuaternionRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		aa := &R4AA{Theta: r.Float64() * math.Pi, RX: r.NormFloat64(), RY: r.NormFloat64(), RZ: r.NormFloat64()}
		q := aa.ToQuat()
		rm := QuatToRotationMatrix(q)
		test.That(t, rm.IsOrthonormal(1e-9), test.ShouldBeTrue)
		test.That(t, rm.Det(), test.ShouldAlmostEqual, 1.0, 1e-9)
		test.That(t, QuaternionAlmostEqual(rm.Quaternion(), q, 1e-9), test.ShouldBeTrue)

		v := r3.Vector{X: r.Float64(), Y: r.Float64(), Z: r.Float64()}
		rotated := rm.Mul(v)
		test.That(t, rotated.Sub(RotateVector(q, v)).Norm(), test.ShouldBeLessThan, 1e-9)
		test.That(t, rm.TransposeMul(rotated).Sub(v).Norm(), test.ShouldBeLessThan, 1e-9)
		test.That(t, rm.Transpose().Mul(rotated).Sub(v).Norm(), test.ShouldBeLessThan, 1e-9)
	}
}

func TestRotationMatrixAccessors(t *testing.T) {
	rm, err := NewRotationMatrix([]float64{0, -1, 0, 1, 0, 0, 0, 0, 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rm.At(1, 0), test.ShouldEqual, 1.)
	test.That(t, rm.Row(0), test.ShouldResemble, r3.Vector{X: 0, Y: -1, Z: 0})
	test.That(t, rm.Col(0), test.ShouldResemble, r3.Vector{X: 0, Y: 1, Z: 0})
	test.That(t, rm.IsOrthonormal(1e-12), test.ShouldBeTrue)

	q := rm.Quaternion()
	expected := (&R4AA{Theta: math.Pi / 2, RZ: 1}).ToQuat()
	test.That(t, QuaternionAlmostEqual(q, expected, 1e-9), test.ShouldBeTrue)

	_, err = NewRotationMatrix([]float64{1, 2})
	test.That(t, err, test.ShouldNotBeNil)

	reflection := NewRotationMatrixFromColumns(r3.Vector{X: 1}, r3.Vector{Y: 1}, r3.Vector{Z: -1})
	test.That(t, reflection.IsOrthonormal(1e-9), test.ShouldBeFalse)
	test.That(t, NewIdentityRotationMatrix().Quaternion(), test.ShouldResemble, quat.Number{Real: 1})
}

func TestPlaneBasis(t *testing.T) {
	normals := []r3.Vector{
		{X: 1}, {Y: 1}, {Z: -1}, {X: 1, Y: 1, Z: 1}, {X: 0.3, Y: -2, Z: 0.01}, {},
	}
	for _, n := range normals {
		u, v := PlaneBasis(n)
		nn := n.Normalize()
		if n.Norm2() == 0 {
			nn = r3.Vector{X: 1}
		}
		test.That(t, u.Norm(), test.ShouldAlmostEqual, 1.0)
		test.That(t, v.Norm(), test.ShouldAlmostEqual, 1.0)
		test.That(t, u.Dot(nn), test.ShouldAlmostEqual, 0.0)
		test.That(t, v.Dot(nn), test.ShouldAlmostEqual, 0.0)
		test.That(t, u.Cross(v).Sub(nn).Norm(), test.ShouldBeLessThan, 1e-12)
	}
	u, v := PlaneBasis(r3.Vector{X: 1})
	test.That(t, u, test.ShouldResemble, r3.Vector{Y: 1})
	test.That(t, v, test.ShouldResemble, r3.Vector{Z: 1})
}

func TestNewFrame(t *testing.T) {
	x, y, z := NewFrame(r3.Vector{X: 2}, r3.Vector{X: 1, Y: 3})
	test.That(t, x, test.ShouldResemble, r3.Vector{X: 1})
	test.That(t, y, test.ShouldResemble, r3.Vector{Y: 1})
	test.That(t, z, test.ShouldResemble, r3.Vector{Z: 1})

	x, y, z = NewFrame(r3.Vector{Z: 1}, r3.Vector{Z: 5})
	rm := NewRotationMatrixFromColumns(x, y, z)
	test.That(t, rm.IsOrthonormal(1e-12), test.ShouldBeTrue)
}

func TestComponents(t *testing.T) {
	v := r3.Vector{X: 1, Y: 5, Z: 5}
	idx, val := MaxComponent(v)
	test.That(t, idx, test.ShouldEqual, 1)
	test.That(t, val, test.ShouldEqual, 5.)
	test.That(t, WithComponent(v, 2, -1), test.ShouldResemble, r3.Vector{X: 1, Y: 5, Z: -1})
	test.That(t, Component(v, 0), test.ShouldEqual, 1.)
	test.That(t, MinVector(v, r3.Vector{X: 2, Y: 0, Z: 9}), test.ShouldResemble, r3.Vector{X: 1, Y: 0, Z: 5})
	test.That(t, MaxVector(v, r3.Vector{X: 2, Y: 0, Z: 9}), test.ShouldResemble, r3.Vector{X: 2, Y: 5, Z: 9})
}
