// Package pointcloud holds the point cloud types consumed by the bounding box approximation:
// a plain indexable slice of positions, its axis aligned metadata, sampling and text I/O.
package pointcloud

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/mvbb/spatialmath"
	"go.viam.com/mvbb/utils"
)

var (
	// ErrEmptyCloud is returned when a computation needs at least one point.
	ErrEmptyCloud = errors.New("point cloud is empty")
	// ErrNonFinitePoint is returned when a point has a NaN or infinite coordinate.
	ErrNonFinitePoint = errors.New("point has a non-finite coordinate")
)

// NewVector convenience method for creating a vector.
func NewVector(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}

// Vectors is a series of three-dimensional vectors.
type Vectors []r3.Vector

// Len returns the number of vectors.
func (vs Vectors) Len() int {
	return len(vs)
}

// Swap swaps two vectors positionally.
func (vs Vectors) Swap(i, j int) {
	vs[i], vs[j] = vs[j], vs[i]
}

// Less returns which vector is less than the other based on
// r3.Vector.Cmp.
func (vs Vectors) Less(i, j int) bool {
	cmp := vs[i].Cmp(vs[j])
	if cmp == 0 {
		return false
	}
	return cmp < 0
}

// MetaData is the axis aligned extent of a set of points.
type MetaData struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64

	// MinIndex and MaxIndex hold, per axis, the index of the first point attaining the minimum
	// and maximum coordinate.
	MinIndex [3]int
	MaxIndex [3]int

	count int
}

// NewMetaData creates a new MetaData with inverted bounds so the first merged point sets them.
func NewMetaData() MetaData {
	return MetaData{
		MinX:     math.MaxFloat64,
		MinY:     math.MaxFloat64,
		MinZ:     math.MaxFloat64,
		MaxX:     -math.MaxFloat64,
		MaxY:     -math.MaxFloat64,
		MaxZ:     -math.MaxFloat64,
		MinIndex: [3]int{-1, -1, -1},
		MaxIndex: [3]int{-1, -1, -1},
	}
}

// Merge updates the bounds with the point at index idx. Strict comparisons keep the first index
// on ties.
func (meta *MetaData) Merge(idx int, v r3.Vector) {
	meta.count++
	if v.X > meta.MaxX || meta.MaxIndex[0] < 0 {
		meta.MaxX, meta.MaxIndex[0] = v.X, idx
	}
	if v.Y > meta.MaxY || meta.MaxIndex[1] < 0 {
		meta.MaxY, meta.MaxIndex[1] = v.Y, idx
	}
	if v.Z > meta.MaxZ || meta.MaxIndex[2] < 0 {
		meta.MaxZ, meta.MaxIndex[2] = v.Z, idx
	}
	if v.X < meta.MinX || meta.MinIndex[0] < 0 {
		meta.MinX, meta.MinIndex[0] = v.X, idx
	}
	if v.Y < meta.MinY || meta.MinIndex[1] < 0 {
		meta.MinY, meta.MinIndex[1] = v.Y, idx
	}
	if v.Z < meta.MinZ || meta.MinIndex[2] < 0 {
		meta.MinZ, meta.MinIndex[2] = v.Z, idx
	}
}

// Count returns the number of merged points.
func (meta *MetaData) Count() int {
	return meta.count
}

// Min returns the minimum corner.
func (meta *MetaData) Min() r3.Vector {
	return r3.Vector{X: meta.MinX, Y: meta.MinY, Z: meta.MinZ}
}

// Max returns the maximum corner.
func (meta *MetaData) Max() r3.Vector {
	return r3.Vector{X: meta.MaxX, Y: meta.MaxY, Z: meta.MaxZ}
}

// Extent returns the side lengths of the axis aligned box, zero when no point was merged.
func (meta *MetaData) Extent() r3.Vector {
	if meta.count == 0 {
		return r3.Vector{}
	}
	return meta.Max().Sub(meta.Min())
}

// Center returns the center of the axis aligned box.
func (meta *MetaData) Center() r3.Vector {
	return meta.Min().Add(meta.Max()).Mul(0.5)
}

// CharacteristicLength is the largest side of the axis aligned box. Tolerances are scaled by it so
// that behavior does not depend on the units of the cloud.
func (meta *MetaData) CharacteristicLength() float64 {
	_, l := spatialmath.MaxComponent(meta.Extent())
	return l
}

// ComputeMetaData validates every point and returns the cloud's axis aligned metadata.
func ComputeMetaData(points []r3.Vector) (MetaData, error) {
	meta := NewMetaData()
	if len(points) == 0 {
		return meta, ErrEmptyCloud
	}
	for i, p := range points {
		if !utils.IsFinite(p.X) || !utils.IsFinite(p.Y) || !utils.IsFinite(p.Z) {
			return meta, errors.Wrapf(ErrNonFinitePoint, "point %d is %v", i, p)
		}
		meta.Merge(i, p)
	}
	return meta, nil
}

func (meta MetaData) String() string {
	return fmt.Sprintf("MetaData{min: %v, max: %v, count: %d}", meta.Min(), meta.Max(), meta.count)
}
