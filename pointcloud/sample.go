package pointcloud

import (
	"sort"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// RandomSource produces uniformly distributed integers in [0, n). *rand.Rand from math/rand
// satisfies it; callers seed it to make sampling reproducible.
type RandomSource interface {
	Intn(n int) int
}

// Sample returns at most n points of the cloud. See SampleIndices.
func Sample(points []r3.Vector, n int, rng RandomSource) ([]r3.Vector, error) {
	meta := NewMetaData()
	for i, p := range points {
		meta.Merge(i, p)
	}
	return SampleWithMetaData(points, &meta, n, rng)
}

// SampleWithMetaData is Sample with precomputed metadata for the same points.
func SampleWithMetaData(points []r3.Vector, meta *MetaData, n int, rng RandomSource) ([]r3.Vector, error) {
	indices, err := SampleIndices(points, meta, n, rng)
	if err != nil {
		return nil, err
	}
	sampled := make([]r3.Vector, len(indices))
	for i, idx := range indices {
		sampled[i] = points[idx]
	}
	return sampled, nil
}

// SampleIndices selects at most n distinct indices of points. When the cloud has no more than n
// points every index is returned in order and rng is not consulted. Otherwise the first indices
// are the axis aligned extremal points from meta (deduplicated, in min/max X, Y, Z order), and the
// rest are drawn uniformly without replacement with Floyd's algorithm and returned in ascending
// order. The input is never modified.
func SampleIndices(points []r3.Vector, meta *MetaData, n int, rng RandomSource) ([]int, error) {
	if n <= 0 {
		return nil, errors.Errorf("sample size must be positive, got %d", n)
	}
	total := len(points)
	if total <= n {
		all := make([]int, total)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	if rng == nil {
		return nil, errors.New("a random source is required to sample the point cloud")
	}

	chosen := make(map[int]struct{}, n)
	indices := make([]int, 0, n)
	if meta != nil {
		for axis := 0; axis < 3; axis++ {
			for _, idx := range [2]int{meta.MinIndex[axis], meta.MaxIndex[axis]} {
				if idx < 0 || idx >= total || len(indices) == n {
					continue
				}
				if _, ok := chosen[idx]; ok {
					continue
				}
				chosen[idx] = struct{}{}
				indices = append(indices, idx)
			}
		}
	}

	remaining := n - len(indices)
	random := make([]int, 0, remaining)
	for j := total - remaining; j < total; j++ {
		t := rng.Intn(j + 1)
		if _, ok := chosen[t]; ok {
			t = j
		}
		if _, ok := chosen[t]; ok {
			// j was already taken as an extremal point
			continue
		}
		chosen[t] = struct{}{}
		random = append(random, t)
	}
	sort.Ints(random)
	return append(indices, random...), nil
}
