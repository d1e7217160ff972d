package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

var canonicalAxes = [3]r3.Vector{{X: 1}, {Y: 1}, {Z: 1}}

// PlaneBasis returns two unit vectors u, v spanning the plane orthogonal to n such that
// (u, v, n̂) is right handed, i.e. u × v = n̂ and n̂ × u = v. The result depends only on n, so
// repeated calls with the same normal project onto identical 2D coordinates. A zero normal is
// treated as the X axis.
func PlaneBasis(n r3.Vector) (u, v r3.Vector) {
	n = n.Normalize()
	if n.Norm2() == 0 {
		n = canonicalAxes[0]
	}
	// Gram-Schmidt against the canonical axis least aligned with n; lowest index wins ties.
	best := 0
	for i := 1; i < 3; i++ {
		if math.Abs(component(n, i)) < math.Abs(component(n, best)) {
			best = i
		}
	}
	e := canonicalAxes[best]
	u = e.Sub(n.Mul(e.Dot(n))).Normalize()
	v = n.Cross(u).Normalize()
	return u, v
}

// NewFrame builds a right-handed orthonormal frame whose first axis is a1 and whose second axis
// is the component of a2 orthogonal to a1. If a2 is parallel to a1 (or zero) the second axis is
// taken from PlaneBasis(a1).
func NewFrame(a1, a2 r3.Vector) (x, y, z r3.Vector) {
	x = a1.Normalize()
	if x.Norm2() == 0 {
		x = canonicalAxes[0]
	}
	y = a2.Sub(x.Mul(a2.Dot(x)))
	if y.Norm() <= 1e-12*math.Max(1, a2.Norm()) {
		y, _ = PlaneBasis(x)
	}
	y = y.Normalize()
	z = x.Cross(y).Normalize()
	return x, y, z
}

// Component returns the i'th coordinate of v (0 = X, 1 = Y, 2 = Z).
func Component(v r3.Vector, i int) float64 {
	return component(v, i)
}

// WithComponent returns a copy of v with its i'th coordinate replaced by value.
func WithComponent(v r3.Vector, i int, value float64) r3.Vector {
	switch i {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	default:
		v.Z = value
	}
	return v
}

func component(v r3.Vector, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// MinVector returns the componentwise minimum of a and b.
func MinVector(a, b r3.Vector) r3.Vector {
	return r3.Vector{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxVector returns the componentwise maximum of a and b.
func MaxVector(a, b r3.Vector) r3.Vector {
	return r3.Vector{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// MaxComponent returns the index and value of the largest coordinate of v. Lowest index wins ties.
func MaxComponent(v r3.Vector) (int, float64) {
	idx := 0
	for i := 1; i < 3; i++ {
		if component(v, i) > component(v, idx) {
			idx = i
		}
	}
	return idx, component(v, idx)
}
