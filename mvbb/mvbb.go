// Package mvbb approximates the minimum volume oriented bounding box of a 3D point cloud.
//
// The search runs on a bounded random sample of the cloud: an approximate diameter gives the
// first box axis, a grid search over angles in the orthogonal plane gives the other two, and the
// best box is refined by searching around an integer lattice of directions and around each of
// its own axes. The winning orientation is finally fitted to the whole cloud, so every input
// point is inside the returned box.
package mvbb

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/mvbb/logging"
	"go.viam.com/mvbb/pointcloud"
	"go.viam.com/mvbb/spatialmath"
	"go.viam.com/mvbb/utils"
)

// ApproximateMVBB returns an approximate minimum volume box enclosing points. sampleSize bounds
// the points used for the search, gridSize is the number of angles per grid search pass (and the
// size of the direction lattice), diamOptLoops bounds the diameter refinement and
// gridSearchOptLoops bounds both the grid window narrowing and the box optimization passes.
// rng drives the sampling; it is only used when the cloud has more than sampleSize points.
func ApproximateMVBB(
	points []r3.Vector,
	epsilon float64,
	sampleSize, gridSize, diamOptLoops, gridSearchOptLoops int,
	rng pointcloud.RandomSource,
) (*OOBB, error) {
	cfg := DefaultConfig()
	cfg.Epsilon = epsilon
	cfg.SampleSize = sampleSize
	cfg.GridSize = gridSize
	cfg.DiameterOptLoops = diamOptLoops
	cfg.GridSearchOptLoops = gridSearchOptLoops
	cfg.DirectionGridSize = gridSize
	cfg.BoxOptLoops = gridSearchOptLoops
	return ApproximateMVBBWithConfig(points, cfg, rng)
}

// ApproximateMVBBWithConfig is ApproximateMVBB driven by a Config. A cloud with a single point
// yields a zero volume box at that point with no rotation.
func ApproximateMVBBWithConfig(points []r3.Vector, cfg Config, rng pointcloud.RandomSource) (*OOBB, error) {
	if err := cfg.Validate(""); err != nil {
		return nil, newInvalidInputError(err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewBlankLogger("mvbb")
	}

	meta, err := pointcloud.ComputeMetaData(points)
	if err != nil {
		return nil, newInvalidInputError(err)
	}
	if len(points) == 1 {
		logger.Debugw("single point cloud", "point", points[0])
		return NewDegenerateOOBB(points[0]), nil
	}

	tol := newTolerances(cfg.Epsilon, meta.CharacteristicLength())
	params := SearchParams{
		GridSize:           cfg.GridSize,
		OptLoops:           cfg.GridSearchOptLoops,
		HullEdgeCandidates: cfg.HullEdgeCandidates,
		LengthTol:          tol.length,
		VolumeTol:          tol.volume,
	}

	sample, err := pointcloud.SampleWithMetaData(points, &meta, cfg.SampleSize, rng)
	if err != nil {
		return nil, newInvalidInputError(err)
	}
	logger.Debugw("sampled cloud", "points", len(points), "sample", len(sample),
		"length_tol", tol.length, "volume_tol", tol.volume)

	diam := EstimateDiameter(sample, cfg.DiameterOptLoops, tol.length)
	logger.Debugw("estimated diameter", "length", diam.Length(), "direction", diam.Direction,
		"iterations", diam.Iterations)

	best, err := SearchOrientation(sample, diam.Direction, params)
	if err != nil {
		return nil, err
	}
	logger.Debugw("grid search", "volume", best.Volume(), "score", best.Score)

	if cfg.DirectionGridSize > 0 {
		best, err = SearchDirections(sample, best, cfg.DirectionGridSize, params)
		if err != nil {
			return nil, err
		}
		logger.Debugw("direction lattice search", "volume", best.Volume(), "score", best.Score)
	}

	best, improvements, err := OptimizeBox(sample, best, cfg.BoxOptLoops, params)
	if err != nil {
		return nil, err
	}
	logger.Debugw("optimized box", "volume", best.Volume(), "improvements", improvements)

	rot := best.Rotation()
	minPoint, maxPoint, err := projectExtents(points, rot)
	if err != nil {
		return nil, err
	}
	box, err := NewOOBB(rot, minPoint, maxPoint)
	if err != nil {
		return nil, err
	}
	logger.Debugw("fitted cloud", "extent", box.Extent(), "volume", box.Volume())
	return box, nil
}

// projectExtents returns the componentwise bounds of every point expressed in the frame of rot.
// Groups reduce their own slice of the cloud and the group bounds are merged in order.
func projectExtents(points []r3.Vector, rot *spatialmath.RotationMatrix) (r3.Vector, r3.Vector, error) {
	inf := math.Inf(1)
	var mins, maxs []r3.Vector
	err := utils.GroupWorkParallel(
		len(points),
		func(numGroups int) {
			mins = make([]r3.Vector, numGroups)
			maxs = make([]r3.Vector, numGroups)
		},
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			lo := r3.Vector{X: inf, Y: inf, Z: inf}
			hi := lo.Mul(-1)
			return func(memberNum, workNum int) {
					p := rot.TransposeMul(points[workNum])
					lo = spatialmath.MinVector(lo, p)
					hi = spatialmath.MaxVector(hi, p)
				}, func() {
					mins[groupNum] = lo
					maxs[groupNum] = hi
				}
		},
	)
	if err != nil {
		return r3.Vector{}, r3.Vector{}, err
	}
	lo, hi := mins[0], maxs[0]
	for i := 1; i < len(mins); i++ {
		lo = spatialmath.MinVector(lo, mins[i])
		hi = spatialmath.MaxVector(hi, maxs[i])
	}
	return lo, hi, nil
}
