package mvbb

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/mvbb/logging"
	"go.viam.com/mvbb/utils"
)

// Config tunes the approximation. The zero value is not usable; start from DefaultConfig.
type Config struct {
	// Epsilon scales every tolerance by the largest side of the cloud's axis aligned box.
	Epsilon float64 `json:"epsilon"`
	// SampleSize bounds the number of points used by the search stages.
	SampleSize int `json:"sample_size"`
	// GridSize is the number of angles scored per pass of the orientation grid search.
	GridSize int `json:"grid_size"`
	// DiameterOptLoops bounds the directional refinement of the diameter pair.
	DiameterOptLoops int `json:"diameter_opt_loops"`
	// GridSearchOptLoops bounds the window narrowing passes of the orientation grid search.
	GridSearchOptLoops int `json:"grid_search_opt_loops"`
	// DirectionGridSize is the half width of the integer direction lattice tried as first axes.
	// Zero disables the lattice.
	DirectionGridSize int `json:"direction_grid_size"`
	// BoxOptLoops bounds the passes that re-search around each axis of the best box.
	BoxOptLoops int `json:"box_opt_loops"`
	// HullEdgeCandidates adds every hull edge direction to the angles scored by the grid search.
	HullEdgeCandidates bool `json:"hull_edge_candidates"`

	Logger logging.Logger `json:"-"`
}

// DefaultConfig returns the parameters used for general purpose clouds.
func DefaultConfig() Config {
	return Config{
		Epsilon:            0.001,
		SampleSize:         400,
		GridSize:           5,
		DiameterOptLoops:   2,
		GridSearchOptLoops: 10,
		DirectionGridSize:  5,
		BoxOptLoops:        10,
		HullEdgeCandidates: true,
	}
}

// Validate checks every field and reports all violations at once.
func (cfg *Config) Validate(path string) error {
	if path == "" {
		path = "config"
	}
	var err error
	if !(cfg.Epsilon > 0) || !utils.IsFinite(cfg.Epsilon) {
		err = multierr.Append(err, errors.Errorf("%s: epsilon must be positive and finite, got %v", path, cfg.Epsilon))
	}
	if cfg.SampleSize < 1 {
		err = multierr.Append(err, errors.Errorf("%s: sample_size must be at least 1, got %d", path, cfg.SampleSize))
	}
	if cfg.GridSize < 1 {
		err = multierr.Append(err, errors.Errorf("%s: grid_size must be at least 1, got %d", path, cfg.GridSize))
	}
	for _, field := range []struct {
		name  string
		value int
	}{
		{"diameter_opt_loops", cfg.DiameterOptLoops},
		{"grid_search_opt_loops", cfg.GridSearchOptLoops},
		{"direction_grid_size", cfg.DirectionGridSize},
		{"box_opt_loops", cfg.BoxOptLoops},
	} {
		if field.value < 0 {
			err = multierr.Append(err, errors.Errorf("%s: %s must not be negative, got %d", path, field.name, field.value))
		}
	}
	return err
}

// tolerances are the absolute thresholds derived from Epsilon and the size of a cloud.
type tolerances struct {
	length float64
	volume float64
}

func newTolerances(epsilon, characteristicLength float64) tolerances {
	return tolerances{
		length: epsilon * characteristicLength,
		volume: utils.Square(epsilon) * utils.Cube(characteristicLength),
	}
}
