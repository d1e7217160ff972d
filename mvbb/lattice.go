package mvbb

import (
	"github.com/golang/geo/r3"
	"go.uber.org/multierr"

	"go.viam.com/mvbb/utils"
)

// LatticeDirections enumerates the primitive integer directions (x, y, z) with x, y in [-g, g] and
// z in [0, g], expressed as x*frame[0] + y*frame[1] + z*frame[2]. Each line through the origin
// appears once: for z == 0 only the half plane y > 0, or y == 0 with x > 0, is kept. The order is
// z, then y, then x ascending.
func LatticeDirections(frame [3]r3.Vector, g int) []r3.Vector {
	if g <= 0 {
		return nil
	}
	var dirs []r3.Vector
	for z := 0; z <= g; z++ {
		for y := -g; y <= g; y++ {
			for x := -g; x <= g; x++ {
				if z == 0 && (y < 0 || (y == 0 && x <= 0)) {
					continue
				}
				if utils.GCD3(x, y, z) != 1 {
					continue
				}
				dir := frame[0].Mul(float64(x)).Add(frame[1].Mul(float64(y))).Add(frame[2].Mul(float64(z)))
				dirs = append(dirs, dir.Normalize())
			}
		}
	}
	return dirs
}

// SearchDirections runs SearchOrientation with every lattice direction around the axes of best as
// the first axis. Directions are searched in parallel and reduced in lattice order; best is only
// replaced by a candidate that improves on it by more than params.VolumeTol.
func SearchDirections(points []r3.Vector, best Candidate, g int, params SearchParams) (Candidate, error) {
	dirs := LatticeDirections(best.Axes, g)
	if len(dirs) == 0 {
		return best, nil
	}
	candidates := make([]Candidate, len(dirs))
	searchErrs := make([]error, len(dirs))
	if err := utils.ParallelForEach(len(dirs), func(i int) {
		candidates[i], searchErrs[i] = SearchOrientation(points, dirs[i], params)
	}); err != nil {
		return Candidate{}, err
	}
	if err := multierr.Combine(searchErrs...); err != nil {
		return Candidate{}, err
	}
	for _, c := range candidates {
		if c.better(best, params.VolumeTol) {
			best = c
		}
	}
	return best, nil
}
