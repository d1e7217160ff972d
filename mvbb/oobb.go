package mvbb

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/mvbb/spatialmath"
	"go.viam.com/mvbb/utils"
)

// orthonormalTol bounds how far a rotation handed to NewOOBB may drift from a proper rotation.
const orthonormalTol = 1e-6

// Ordered list of box corner signs, -1 picks the min corner and +1 the max corner per axis.
var cornerSigns = [8][3]int{
	{-1, -1, -1},
	{1, -1, -1},
	{1, 1, -1},
	{-1, 1, -1},
	{-1, -1, 1},
	{1, -1, 1},
	{1, 1, 1},
	{-1, 1, 1},
}

// OOBB is an oriented bounding box. The box frame K is rotated by qKI relative to the world frame
// I, and the box spans [minPoint, maxPoint] in K coordinates. Columns of the rotation matrix are
// the box axes expressed in world coordinates.
//
// An OOBB is not safe for concurrent mutation.
type OOBB struct {
	qKI      quat.Number
	rot      *spatialmath.RotationMatrix
	minPoint r3.Vector
	maxPoint r3.Vector
}

// NewOOBB builds a box from a proper rotation and its corners in the box frame. It fails with
// ErrInvalidBoxExtent if minPoint exceeds maxPoint on any axis or a corner is not finite.
func NewOOBB(rot *spatialmath.RotationMatrix, minPoint, maxPoint r3.Vector) (*OOBB, error) {
	if rot == nil {
		return nil, errors.Wrap(ErrInvalidInput, "rotation is nil")
	}
	if !rot.IsOrthonormal(orthonormalTol) {
		return nil, errors.Wrapf(ErrInvalidInput, "rotation %v is not a proper rotation", rot)
	}
	if !finiteVector(minPoint) || !finiteVector(maxPoint) {
		return nil, newBadExtentError(minPoint, maxPoint)
	}
	if minPoint.X > maxPoint.X || minPoint.Y > maxPoint.Y || minPoint.Z > maxPoint.Z {
		return nil, newBadExtentError(minPoint, maxPoint)
	}
	b := &OOBB{minPoint: minPoint, maxPoint: maxPoint}
	b.setRotation(rot)
	return b, nil
}

// NewDegenerateOOBB returns the zero volume, axis aligned box holding only p.
func NewDegenerateOOBB(p r3.Vector) *OOBB {
	return &OOBB{
		qKI:      spatialmath.NewZeroOrientation(),
		rot:      spatialmath.NewIdentityRotationMatrix(),
		minPoint: p,
		maxPoint: p,
	}
}

// NewEmptyOOBB returns a box with orientation q that contains nothing. Its corners are inverted
// infinities so that the first Unite sets them.
func NewEmptyOOBB(q quat.Number) *OOBB {
	q = spatialmath.Normalize(q)
	b := &OOBB{qKI: q, rot: spatialmath.QuatToRotationMatrix(q)}
	b.Reset()
	return b
}

func (b *OOBB) setRotation(rot *spatialmath.RotationMatrix) {
	b.rot = spatialmath.NewRotationMatrixFromColumns(rot.Col(0), rot.Col(1), rot.Col(2))
	b.qKI = rot.Quaternion()
}

// Reset empties the box, keeping its orientation.
func (b *OOBB) Reset() {
	inf := math.Inf(1)
	b.minPoint = r3.Vector{X: inf, Y: inf, Z: inf}
	b.maxPoint = r3.Vector{X: -inf, Y: -inf, Z: -inf}
}

// MinPoint returns the minimum corner in the box frame.
func (b *OOBB) MinPoint() r3.Vector {
	return b.minPoint
}

// MaxPoint returns the maximum corner in the box frame.
func (b *OOBB) MaxPoint() r3.Vector {
	return b.maxPoint
}

// Orientation returns q_KI, the rotation taking box coordinates to world coordinates.
func (b *OOBB) Orientation() quat.Number {
	return b.qKI
}

// RotationMatrix returns a copy of the box rotation; its columns are the box axes.
func (b *OOBB) RotationMatrix() *spatialmath.RotationMatrix {
	return spatialmath.NewRotationMatrixFromColumns(b.rot.Col(0), b.rot.Col(1), b.rot.Col(2))
}

// Direction returns box axis i (0, 1 or 2) in world coordinates.
func (b *OOBB) Direction(i int) r3.Vector {
	return b.rot.Col(i)
}

// IsEmpty reports whether the box contains no point at all.
func (b *OOBB) IsEmpty() bool {
	return b.minPoint.X > b.maxPoint.X || b.minPoint.Y > b.maxPoint.Y || b.minPoint.Z > b.maxPoint.Z
}

// Extent returns the side lengths of the box; zero for an empty box.
func (b *OOBB) Extent() r3.Vector {
	if b.IsEmpty() {
		return r3.Vector{}
	}
	return b.maxPoint.Sub(b.minPoint)
}

// MaxExtent returns the index and length of the longest side. Lowest index wins ties.
func (b *OOBB) MaxExtent() (int, float64) {
	return spatialmath.MaxComponent(b.Extent())
}

// Volume returns the product of the side lengths, zero when any side is degenerate.
func (b *OOBB) Volume() float64 {
	e := b.Extent()
	if e.X <= 0 || e.Y <= 0 || e.Z <= 0 {
		return 0
	}
	return e.X * e.Y * e.Z
}

// Center returns the center of the box in world coordinates.
func (b *OOBB) Center() r3.Vector {
	return b.ToWorld(b.minPoint.Add(b.maxPoint).Mul(0.5))
}

// Corners returns the 8 vertices of the box in world coordinates.
func (b *OOBB) Corners() []r3.Vector {
	corners := make([]r3.Vector, 0, len(cornerSigns))
	for _, signs := range cornerSigns {
		var k r3.Vector
		for axis, sign := range signs {
			value := spatialmath.Component(b.minPoint, axis)
			if sign > 0 {
				value = spatialmath.Component(b.maxPoint, axis)
			}
			k = spatialmath.WithComponent(k, axis, value)
		}
		corners = append(corners, b.ToWorld(k))
	}
	return corners
}

// ToBoxFrame expresses the world point p in box coordinates.
func (b *OOBB) ToBoxFrame(p r3.Vector) r3.Vector {
	return b.rot.TransposeMul(p)
}

// ToWorld expresses the box frame point p in world coordinates.
func (b *OOBB) ToWorld(p r3.Vector) r3.Vector {
	return b.rot.Mul(p)
}

// Unite grows the box to include p, given in the box frame. Uniting a contained point is a no-op.
func (b *OOBB) Unite(p r3.Vector) {
	b.minPoint = spatialmath.MinVector(b.minPoint, p)
	b.maxPoint = spatialmath.MaxVector(b.maxPoint, p)
}

// UniteWorld grows the box to include the world point p.
func (b *OOBB) UniteWorld(p r3.Vector) {
	b.Unite(b.ToBoxFrame(p))
}

// Fit empties the box and unites every world point, keeping the orientation.
func (b *OOBB) Fit(points []r3.Vector) {
	b.Reset()
	for _, p := range points {
		b.UniteWorld(p)
	}
}

// Contains reports whether p, given in the box frame, is inside the box grown by tol.
func (b *OOBB) Contains(p r3.Vector, tol float64) bool {
	return p.X >= b.minPoint.X-tol && p.X <= b.maxPoint.X+tol &&
		p.Y >= b.minPoint.Y-tol && p.Y <= b.maxPoint.Y+tol &&
		p.Z >= b.minPoint.Z-tol && p.Z <= b.maxPoint.Z+tol
}

// ContainsWorld is Contains for a world point.
func (b *OOBB) ContainsWorld(p r3.Vector, tol float64) bool {
	return b.Contains(b.ToBoxFrame(p), tol)
}

// Expand moves every face outwards by d.
func (b *OOBB) Expand(d float64) {
	if b.IsEmpty() {
		return
	}
	delta := r3.Vector{X: d, Y: d, Z: d}
	b.minPoint = b.minPoint.Sub(delta)
	b.maxPoint = b.maxPoint.Add(delta)
	for i := 0; i < 3; i++ {
		if spatialmath.Component(b.minPoint, i) > spatialmath.Component(b.maxPoint, i) {
			b.setAxisAround(i, b.axisCenter(i), 0)
		}
	}
}

// ExpandToMinExtentAbsolute grows every side shorter than minExtent to minExtent, symmetrically
// about its center.
func (b *OOBB) ExpandToMinExtentAbsolute(minExtent float64) {
	if b.IsEmpty() {
		return
	}
	e := b.Extent()
	for i := 0; i < 3; i++ {
		if spatialmath.Component(e, i) < minExtent {
			b.setAxisAround(i, b.axisCenter(i), minExtent)
		}
	}
}

// ExpandToMinExtentRelative grows every side shorter than p times the longest side to that
// length. When p times the longest side is below 1e-10 the box becomes a cube of side p around
// its center instead. Both of those are absolute lengths, so this is not scale invariant: a cloud
// measured at sub-nanometre scale is replaced by a cube far larger than itself. Use
// ExpandToMinExtentRelativeWithDefault with a cube side and threshold in the cloud's units for
// such clouds.
func (b *OOBB) ExpandToMinExtentRelative(p float64) {
	b.ExpandToMinExtentRelativeWithDefault(p, p, defaultDegenerateEps)
}

const defaultDegenerateEps = 1e-10

// ExpandToMinExtentRelativeWithDefault is ExpandToMinExtentRelative with an explicit cube side
// for boxes whose longest side times p is below eps. defaultExtent and eps are absolute lengths.
func (b *OOBB) ExpandToMinExtentRelativeWithDefault(p, defaultExtent, eps float64) {
	if b.IsEmpty() || !(p > 0) {
		return
	}
	_, maxExt := b.MaxExtent()
	target := maxExt * p
	if target < eps {
		for i := 0; i < 3; i++ {
			b.setAxisAround(i, b.axisCenter(i), defaultExtent)
		}
		return
	}
	e := b.Extent()
	for i := 0; i < 3; i++ {
		if spatialmath.Component(e, i) < target {
			b.setAxisAround(i, b.axisCenter(i), target)
		}
	}
}

func (b *OOBB) axisCenter(i int) float64 {
	return 0.5 * (spatialmath.Component(b.minPoint, i) + spatialmath.Component(b.maxPoint, i))
}

func (b *OOBB) setAxisAround(i int, center, extent float64) {
	b.minPoint = spatialmath.WithComponent(b.minPoint, i, center-0.5*extent)
	b.maxPoint = spatialmath.WithComponent(b.maxPoint, i, center+0.5*extent)
}

// SetZAxisLongest cyclically relabels the box axes so that the longest side becomes the z axis.
// The box itself does not move and the frame stays right handed.
func (b *OOBB) SetZAxisLongest() {
	idx, _ := b.MaxExtent()
	x, y, z := b.rot.Col(0), b.rot.Col(1), b.rot.Col(2)
	lo, hi := b.minPoint, b.maxPoint
	switch idx {
	case 0:
		// (x, y, z) -> (y, z, x)
		b.setRotation(spatialmath.NewRotationMatrixFromColumns(y, z, x))
		b.minPoint = r3.Vector{X: lo.Y, Y: lo.Z, Z: lo.X}
		b.maxPoint = r3.Vector{X: hi.Y, Y: hi.Z, Z: hi.X}
	case 1:
		// (x, y, z) -> (z, x, y)
		b.setRotation(spatialmath.NewRotationMatrixFromColumns(z, x, y))
		b.minPoint = r3.Vector{X: lo.Z, Y: lo.X, Z: lo.Y}
		b.maxPoint = r3.Vector{X: hi.Z, Y: hi.X, Z: hi.Y}
	}
}

// AlmostEqual compares two boxes corner by corner and rotation by rotation within tol.
func (b *OOBB) AlmostEqual(other *OOBB, tol float64) bool {
	if other == nil {
		return false
	}
	return spatialmath.QuaternionAlmostEqual(b.qKI, other.qKI, tol) &&
		utils.Float64AlmostEqual(b.minPoint.Distance(other.minPoint), 0, tol) &&
		utils.Float64AlmostEqual(b.maxPoint.Distance(other.maxPoint), 0, tol)
}

func (b *OOBB) String() string {
	return fmt.Sprintf("OOBB{q_KI: %v, min: %v, max: %v, extent: %v, volume: %g}",
		b.qKI, b.minPoint, b.maxPoint, b.Extent(), b.Volume())
}

type jsonVector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type jsonQuaternion struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type jsonOOBB struct {
	Orientation jsonQuaternion `json:"orientation"`
	Min         jsonVector     `json:"min"`
	Max         jsonVector     `json:"max"`
	Extent      jsonVector     `json:"extent"`
	Center      jsonVector     `json:"center"`
	Volume      float64        `json:"volume"`
}

func newJSONVector(v r3.Vector) jsonVector {
	return jsonVector{X: v.X, Y: v.Y, Z: v.Z}
}

// MarshalJSON encodes the orientation, corners in the box frame, extent, world center and volume.
func (b *OOBB) MarshalJSON() ([]byte, error) {
	if b.IsEmpty() {
		return nil, errors.Wrap(ErrInvalidBoxExtent, "cannot encode an empty box")
	}
	return json.Marshal(jsonOOBB{
		Orientation: jsonQuaternion{W: b.qKI.Real, X: b.qKI.Imag, Y: b.qKI.Jmag, Z: b.qKI.Kmag},
		Min:         newJSONVector(b.minPoint),
		Max:         newJSONVector(b.maxPoint),
		Extent:      newJSONVector(b.Extent()),
		Center:      newJSONVector(b.Center()),
		Volume:      b.Volume(),
	})
}

func finiteVector(v r3.Vector) bool {
	return utils.IsFinite(v.X) && utils.IsFinite(v.Y) && utils.IsFinite(v.Z)
}
