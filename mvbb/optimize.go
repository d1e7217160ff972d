package mvbb

import (
	"github.com/golang/geo/r3"
)

// OptimizeBox re-runs the orientation search with each axis of the current best box as the fixed
// first axis. A pass takes the axes of the box it started from; the best candidate is kept only
// when it improves by more than params.VolumeTol. It stops after loops passes or the first pass
// without improvement, and returns the number of passes that improved.
func OptimizeBox(points []r3.Vector, best Candidate, loops int, params SearchParams) (Candidate, int, error) {
	improvements := 0
	for loop := 0; loop < loops; loop++ {
		axes := best.Axes
		improved := false
		for _, axis := range axes {
			c, err := SearchOrientation(points, axis, params)
			if err != nil {
				return Candidate{}, improvements, err
			}
			if c.better(best, params.VolumeTol) {
				best = c
				improved = true
			}
		}
		if !improved {
			break
		}
		improvements++
	}
	return best, improvements, nil
}
