package mvbb

import (
	"github.com/golang/geo/r3"

	"go.viam.com/mvbb/pointcloud"
	"go.viam.com/mvbb/spatialmath"
)

// Diameter is an approximation of the two most distant points of a set.
type Diameter struct {
	P, Q r3.Vector
	// Direction is the unit vector from P to Q, or the X axis when P and Q coincide.
	Direction r3.Vector
	// Iterations counts the refinement passes that changed the pair.
	Iterations int
}

// Length returns the distance between the diameter pair.
func (d Diameter) Length() float64 {
	return d.Q.Sub(d.P).Norm()
}

// EstimateDiameter approximates the diameter pair of points. It starts from the extremal points
// along the longest side of the axis aligned box, then up to loops times projects every point
// onto the current direction and takes the extremal pair, stopping as soon as the pair repeats.
// Each pass can only lengthen the pair. Pairs shorter than tol are treated as coincident points.
func EstimateDiameter(points []r3.Vector, loops int, tol float64) Diameter {
	d := Diameter{Direction: r3.Vector{X: 1}}
	if len(points) == 0 {
		return d
	}
	meta := pointcloud.NewMetaData()
	for i, p := range points {
		meta.Merge(i, p)
	}
	axis, _ := spatialmath.MaxComponent(meta.Extent())
	pIdx, qIdx := meta.MinIndex[axis], meta.MaxIndex[axis]
	d.P, d.Q = points[pIdx], points[qIdx]
	if d.Length() <= tol {
		return d
	}
	d.Direction = d.Q.Sub(d.P).Normalize()

	for loop := 0; loop < loops; loop++ {
		minIdx, maxIdx := extremalPair(points, d.Direction)
		if minIdx == pIdx && maxIdx == qIdx {
			break
		}
		pIdx, qIdx = minIdx, maxIdx
		d.P, d.Q = points[pIdx], points[qIdx]
		d.Direction = d.Q.Sub(d.P).Normalize()
		d.Iterations++
	}
	return d
}

// extremalPair returns the indices of the first points with the smallest and largest projection
// onto dir.
func extremalPair(points []r3.Vector, dir r3.Vector) (minIdx, maxIdx int) {
	lo, hi := points[0].Dot(dir), points[0].Dot(dir)
	for i := 1; i < len(points); i++ {
		d := points[i].Dot(dir)
		if d < lo {
			lo, minIdx = d, i
		}
		if d > hi {
			hi, maxIdx = d, i
		}
	}
	return minIdx, maxIdx
}
