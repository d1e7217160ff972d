// Package convexhull builds planar convex hulls of 3D points projected along an axis.
package convexhull

import (
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/mvbb/spatialmath"
)

// Kind tells how degenerate a hull is.
type Kind int

const (
	// Empty hulls come from empty input.
	Empty Kind = iota
	// Point hulls have a single vertex: every input point coincides within tolerance.
	Point
	// Segment hulls have two vertices: the input is collinear within tolerance.
	Segment
	// Polygon hulls have at least three vertices in counter-clockwise order.
	Polygon
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Point:
		return "point"
	case Segment:
		return "segment"
	case Polygon:
		return "polygon"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Hull is a convex polygon in the plane orthogonal to Normal, expressed in the (U, V) basis
// returned by spatialmath.PlaneBasis(Normal). Vertices are counter-clockwise with no three
// consecutive vertices collinear within Tolerance.
type Hull struct {
	Vertices  []r2.Point
	Normal    r3.Vector
	U, V      r3.Vector
	Tolerance float64
}

// Kind returns the degeneracy class of the hull.
func (h *Hull) Kind() Kind {
	switch len(h.Vertices) {
	case 0:
		return Empty
	case 1:
		return Point
	case 2:
		return Segment
	default:
		return Polygon
	}
}

// Len returns the number of hull vertices.
func (h *Hull) Len() int {
	return len(h.Vertices)
}

// Project maps a 3D point to the hull's 2D coordinates.
func (h *Hull) Project(p r3.Vector) r2.Point {
	return r2.Point{X: p.Dot(h.U), Y: p.Dot(h.V)}
}

// EdgeDirection returns the unit direction of edge i, from vertex i to vertex i+1. A segment hull
// has a single edge; point and empty hulls have none.
func (h *Hull) EdgeDirection(i int) r2.Point {
	n := len(h.Vertices)
	return h.Vertices[(i+1)%n].Sub(h.Vertices[i]).Normalize()
}

// NumEdges returns how many edge directions the hull has.
func (h *Hull) NumEdges() int {
	switch h.Kind() {
	case Segment:
		return 1
	case Polygon:
		return len(h.Vertices)
	default:
		return 0
	}
}

// Extent returns the minimum and maximum projection of the hull vertices onto dir.
func (h *Hull) Extent(dir r2.Point) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range h.Vertices {
		d := v.Dot(dir)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

// OfProjection projects points onto the plane orthogonal to normal and returns their convex hull.
// tol is an absolute length: points within tol of a hull edge, or of another point, do not become
// hull vertices.
func OfProjection(points []r3.Vector, normal r3.Vector, tol float64) *Hull {
	u, v := spatialmath.PlaneBasis(normal)
	h := &Hull{Normal: normal, U: u, V: v, Tolerance: tol}
	projected := make([]r2.Point, len(points))
	for i, p := range points {
		projected[i] = h.Project(p)
	}
	h.Vertices = Compute(projected, tol)
	return h
}

// Compute returns the convex hull of points in counter-clockwise order using Andrew's monotone
// chain. The input slice is not modified. A middle vertex is dropped when it lies within tol of the
// chord joining its neighbours, which also removes duplicates. Collinear input yields the two
// extreme points; coincident input yields one point.
func Compute(points []r2.Point, tol float64) []r2.Point {
	if len(points) == 0 {
		return nil
	}
	if tol < 0 {
		tol = 0
	}
	sorted := make([]r2.Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	hull := make([]r2.Point, 0, 2*len(sorted))
	// lower chain
	for _, p := range sorted {
		for len(hull) >= 2 && !convexTurn(hull[len(hull)-2], hull[len(hull)-1], p, tol) {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// upper chain
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && !convexTurn(hull[len(hull)-2], hull[len(hull)-1], p, tol) {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// the last point repeats the first
	hull = hull[:len(hull)-1]

	switch {
	case len(hull) == 0:
		return []r2.Point{sorted[0]}
	case len(hull) == 2:
		if hull[0].Sub(hull[1]).Norm() <= tol {
			return hull[:1]
		}
	case len(hull) > 2:
		hull = dropClosingCollinear(hull, tol)
	}
	return hull
}

// convexTurn reports whether a->b->c turns counter-clockwise with b more than tol away from the
// chord a->c.
func convexTurn(a, b, c r2.Point, tol float64) bool {
	ac := c.Sub(a)
	length := ac.Norm()
	if length == 0 {
		return false
	}
	return b.Sub(a).Cross(ac)/length > tol
}

// dropClosingCollinear removes vertices that became collinear across the wrap-around point where
// the lower and upper chains meet, and collapses hulls that turned out to be segments.
func dropClosingCollinear(hull []r2.Point, tol float64) []r2.Point {
	for len(hull) > 2 {
		n := len(hull)
		removed := false
		for i := 0; i < n; i++ {
			prev, cur, next := hull[(i+n-1)%n], hull[i], hull[(i+1)%n]
			if !convexTurn(prev, cur, next, tol) {
				hull = append(hull[:i], hull[i+1:]...)
				removed = true
				break
			}
		}
		if !removed {
			break
		}
	}
	if len(hull) == 2 && hull[0].Sub(hull[1]).Norm() <= tol {
		return hull[:1]
	}
	return hull
}
