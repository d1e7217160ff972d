package mvbb

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/mvbb/convexhull"
	"go.viam.com/mvbb/spatialmath"
	"go.viam.com/mvbb/utils"
)

// anglePeriod is the period of a box's extents under rotation about its first axis.
const anglePeriod = math.Pi / 2

// Candidate is a scored box orientation. Axes are a right handed orthonormal frame and Min/Max
// bound the searched points in that frame.
type Candidate struct {
	Axes     [3]r3.Vector
	Min, Max r3.Vector
	// Score is the product of the extents, each floored at the length tolerance.
	Score float64
	// Angle locates Axes[1] in the plane basis of Axes[0].
	Angle float64
}

// Rotation returns the matrix whose columns are the candidate axes.
func (c Candidate) Rotation() *spatialmath.RotationMatrix {
	return spatialmath.NewRotationMatrixFromColumns(c.Axes[0], c.Axes[1], c.Axes[2])
}

// Extent returns the side lengths of the candidate box.
func (c Candidate) Extent() r3.Vector {
	return c.Max.Sub(c.Min)
}

// Volume returns the unfloored volume of the candidate box.
func (c Candidate) Volume() float64 {
	e := c.Extent()
	return e.X * e.Y * e.Z
}

// better reports whether c beats best by more than volumeTol.
func (c Candidate) better(best Candidate, volumeTol float64) bool {
	return c.Score < best.Score-volumeTol
}

// SearchParams bound a grid search.
type SearchParams struct {
	GridSize           int
	OptLoops           int
	HullEdgeCandidates bool
	LengthTol          float64
	VolumeTol          float64
}

func (params SearchParams) validate() error {
	if params.GridSize < 1 {
		return errors.Wrapf(ErrInvalidInput, "grid size must be at least 1, got %d", params.GridSize)
	}
	if params.OptLoops < 0 {
		return errors.Wrapf(ErrInvalidInput, "grid search loops must not be negative, got %d", params.OptLoops)
	}
	return nil
}

func (params SearchParams) score(e r3.Vector) float64 {
	return math.Max(e.X, params.LengthTol) * math.Max(e.Y, params.LengthTol) * math.Max(e.Z, params.LengthTol)
}

// planeSearch scores second axes in the plane orthogonal to a fixed first axis.
type planeSearch struct {
	params SearchParams
	axis1  r3.Vector
	lo1    float64
	hi1    float64
	hull   *convexhull.Hull
}

func (s *planeSearch) evaluate(angle float64) Candidate {
	sin, cos := math.Sincos(angle)
	// in hull coordinates axis2 is (cos, sin) and axis3 = axis1 × axis2 is (-sin, cos)
	lo2, hi2 := s.hull.Extent(r2.Point{X: cos, Y: sin})
	lo3, hi3 := s.hull.Extent(r2.Point{X: -sin, Y: cos})
	c := Candidate{
		Axes: [3]r3.Vector{
			s.axis1,
			s.hull.U.Mul(cos).Add(s.hull.V.Mul(sin)),
			s.hull.U.Mul(-sin).Add(s.hull.V.Mul(cos)),
		},
		Min:   r3.Vector{X: s.lo1, Y: lo2, Z: lo3},
		Max:   r3.Vector{X: s.hi1, Y: hi2, Z: hi3},
		Angle: angle,
	}
	c.Score = s.params.score(c.Extent())
	return c
}

// evaluateAll scores every angle in parallel and returns the first best candidate in index order.
func (s *planeSearch) evaluateAll(angles []float64) (Candidate, error) {
	candidates := make([]Candidate, len(angles))
	if err := utils.ParallelForEach(len(angles), func(i int) {
		candidates[i] = s.evaluate(angles[i])
	}); err != nil {
		return Candidate{}, err
	}
	return bestCandidate(candidates, s.params.VolumeTol), nil
}

// bestCandidate reduces in index order; a later candidate wins only by more than volumeTol.
func bestCandidate(candidates []Candidate, volumeTol float64) Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.better(best, volumeTol) {
			best = c
		}
	}
	return best
}

// initialAngles returns gridSize equally spaced angles in [0, π/2), followed by the angle of every
// hull edge when requested.
func (s *planeSearch) initialAngles() []float64 {
	g := s.params.GridSize
	angles := make([]float64, 0, g+s.hull.NumEdges())
	for i := 0; i < g; i++ {
		angles = append(angles, float64(i)*anglePeriod/float64(g))
	}
	if s.params.HullEdgeCandidates {
		for i := 0; i < s.hull.NumEdges(); i++ {
			dir := s.hull.EdgeDirection(i)
			angles = append(angles, utils.WrapAngle(math.Atan2(dir.Y, dir.X), anglePeriod))
		}
	}
	return angles
}

// SearchOrientation finds a box orientation for points whose first axis is axis1. The second axis
// is chosen among GridSize equally spaced angles in the plane orthogonal to axis1 (and the hull
// edge angles). Then up to OptLoops times the window around the best angle is narrowed to the
// span between its neighbours and resampled with about GridSize angles, stopping at the first
// pass that brings no improvement. Equal scores keep the lowest index.
func SearchOrientation(points []r3.Vector, axis1 r3.Vector, params SearchParams) (Candidate, error) {
	if len(points) == 0 {
		return Candidate{}, errors.Wrap(ErrInvalidInput, "cannot search the orientation of an empty point set")
	}
	if err := params.validate(); err != nil {
		return Candidate{}, err
	}
	axis1 = axis1.Normalize()
	if axis1.Norm2() == 0 {
		axis1 = r3.Vector{X: 1}
	}

	s := &planeSearch{params: params, axis1: axis1}
	s.lo1, s.hi1 = math.Inf(1), math.Inf(-1)
	for _, p := range points {
		d := p.Dot(axis1)
		s.lo1 = math.Min(s.lo1, d)
		s.hi1 = math.Max(s.hi1, d)
	}
	s.hull = convexhull.OfProjection(points, axis1, params.LengthTol)

	best, err := s.evaluateAll(s.initialAngles())
	if err != nil {
		return Candidate{}, err
	}

	// each pass resamples the open window between the best angle's neighbours, without the best
	// angle itself
	half := (params.GridSize + 1) / 2
	step := anglePeriod / float64(params.GridSize)
	for loop := 0; loop < params.OptLoops; loop++ {
		step /= float64(half + 1)
		angles := make([]float64, 0, 2*half)
		for k := half; k >= 1; k-- {
			angles = append(angles, utils.WrapAngle(best.Angle-float64(k)*step, anglePeriod))
		}
		for k := 1; k <= half; k++ {
			angles = append(angles, utils.WrapAngle(best.Angle+float64(k)*step, anglePeriod))
		}
		refined, err := s.evaluateAll(angles)
		if err != nil {
			return Candidate{}, err
		}
		if !refined.better(best, params.VolumeTol) {
			break
		}
		best = refined
	}
	return best, nil
}
