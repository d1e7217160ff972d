package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/samber/lo"

	"go.viam.com/mvbb/spatialmath"
)

// UniformSource produces floats uniformly distributed in [0, 1). *rand.Rand satisfies it.
type UniformSource interface {
	Float64() float64
}

// MakeUnitCube returns the 8 corners of the unit cube.
func MakeUnitCube() []r3.Vector {
	return []r3.Vector{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	}
}

// MakeRandomCube returns n points uniformly distributed in the unit cube.
func MakeRandomCube(n int, r UniformSource) []r3.Vector {
	return lo.Times(n, func(int) r3.Vector {
		return r3.Vector{X: r.Float64(), Y: r.Float64(), Z: r.Float64()}
	})
}

// RandomRigidTransform draws a rotation (uniform axis direction, angle in [0, π)) and a
// translation in [0, 1)^3.
func RandomRigidTransform(r UniformSource) (*spatialmath.RotationMatrix, r3.Vector) {
	axis := r3.Vector{X: r.Float64() - 0.5, Y: r.Float64() - 0.5, Z: r.Float64() - 0.5}
	if axis.Norm2() == 0 {
		axis = r3.Vector{Z: 1}
	}
	aa := &spatialmath.R4AA{Theta: r.Float64() * math.Pi, RX: axis.X, RY: axis.Y, RZ: axis.Z}
	return aa.RotationMatrix(), r3.Vector{X: r.Float64(), Y: r.Float64(), Z: r.Float64()}
}

// ApplyRigidTransform returns rot*p + trans for every point.
func ApplyRigidTransform(points []r3.Vector, rot *spatialmath.RotationMatrix, trans r3.Vector) []r3.Vector {
	return lo.Map(points, func(p r3.Vector, _ int) r3.Vector {
		return rot.Mul(p).Add(trans)
	})
}
