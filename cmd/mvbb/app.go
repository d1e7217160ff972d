package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/mvbb/logging"
	"go.viam.com/mvbb/mvbb"
	"go.viam.com/mvbb/pointcloud"
	"go.viam.com/mvbb/utils"
)

const (
	// Flags.
	flagInput           = "input"
	flagConfig          = "config"
	flagEpsilon         = "epsilon"
	flagSampleSize      = "sample-size"
	flagGridSize        = "grid-size"
	flagDiamOptLoops    = "diam-opt-loops"
	flagGridOptLoops    = "grid-opt-loops"
	flagDirectionGrid   = "direction-grid-size"
	flagBoxOptLoops     = "box-opt-loops"
	flagNoHullEdges     = "no-hull-edges"
	flagSeed            = "seed"
	flagMinExtent       = "min-extent-relative"
	flagZLongest        = "z-longest"
	flagFormat          = "format"
	flagDebug           = "debug"
	flagLogLevel        = "log-level"
	flagParallelFactor  = "parallel"
	formatTable         = "table"
	formatJSON          = "json"
	defaultSeed         = 1
	defaultMinExtentRel = 0
)

func newApp(out, errOut io.Writer) *cli.App {
	var logger logging.Logger
	return &cli.App{
		Name:      "mvbb",
		Usage:     "approximate the minimum volume oriented bounding box of a point cloud",
		UsageText: "mvbb --input cloud.{xyz,pcd,las} [options]",
		Writer:    out,
		ErrWriter: errOut,

		// main reports the error and picks the exit code
		ExitErrHandler: func(*cli.Context, error) {},

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagInput,
				Aliases:  []string{"i"},
				Usage:    "read points from `FILE` (.las, .pcd or \"x y z\" text; - reads text from stdin)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load parameters from a JSON `FILE`; flags override it",
			},
			&cli.Float64Flag{Name: flagEpsilon, Usage: "tolerance relative to the cloud size"},
			&cli.IntFlag{Name: flagSampleSize, Usage: "points used by the search"},
			&cli.IntFlag{Name: flagGridSize, Usage: "angles per grid search pass"},
			&cli.IntFlag{Name: flagDiamOptLoops, Usage: "diameter refinement passes"},
			&cli.IntFlag{Name: flagGridOptLoops, Usage: "grid search refinement passes"},
			&cli.IntFlag{Name: flagDirectionGrid, Usage: "direction lattice half width, 0 disables it"},
			&cli.IntFlag{Name: flagBoxOptLoops, Usage: "box optimization passes"},
			&cli.BoolFlag{Name: flagNoHullEdges, Usage: "do not score hull edge angles"},
			&cli.Int64Flag{Name: flagSeed, Value: defaultSeed, Usage: "seed of the sampling generator"},
			&cli.Float64Flag{
				Name:  flagMinExtent,
				Value: defaultMinExtentRel,
				Usage: "grow sides shorter than this fraction of the longest side",
			},
			&cli.BoolFlag{Name: flagZLongest, Usage: "relabel the box axes so z is the longest side"},
			&cli.StringFlag{Name: flagFormat, Value: formatTable, Usage: "output format: table or json"},
			&cli.IntFlag{Name: flagParallelFactor, Usage: "maximum parallel groups, 0 keeps GOMAXPROCS"},
			&cli.BoolFlag{Name: flagDebug, Aliases: []string{"vvv"}, Usage: "enable debug logging"},
			&cli.StringFlag{Name: flagLogLevel, Value: "info", Usage: "log level: debug, info, warn or error"},
		},
		Before: func(c *cli.Context) error {
			// logs go to stderr so that stdout only carries the box
			level, err := logging.LevelFromString(c.String(flagLogLevel))
			if err != nil {
				return err
			}
			if c.Bool(flagDebug) {
				level = logging.DEBUG
			}
			logger = logging.NewBlankLogger("mvbb")
			logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
			logger.SetLevel(level)
			logging.ReplaceGlobal(logger)
			if n := c.Int(flagParallelFactor); n > 0 {
				utils.ParallelFactor = n
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			return runAction(c, logger)
		},
	}
}

func runAction(c *cli.Context, logger logging.Logger) (err error) {
	defer func() {
		err = multierr.Combine(err, logger.Sync())
	}()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	cfg.Logger = logger.Sublogger("approx")

	points, err := readPoints(c.String(flagInput))
	if err != nil {
		return err
	}
	logger.Debugw("read point cloud", "points", len(points), "input", c.String(flagInput))

	box, err := mvbb.ApproximateMVBBWithConfig(points, cfg, rand.New(rand.NewSource(c.Int64(flagSeed))))
	if err != nil {
		return err
	}
	if rel := c.Float64(flagMinExtent); rel > 0 {
		box.ExpandToMinExtentRelative(rel)
	}
	if c.Bool(flagZLongest) {
		box.SetZAxisLongest()
	}

	switch strings.ToLower(c.String(flagFormat)) {
	case formatJSON:
		return writeJSON(c.App.Writer, box)
	case formatTable:
		writeTable(c.App.Writer, box, len(points))
		return nil
	default:
		return errors.Errorf("unknown format %q, expected %q or %q", c.String(flagFormat), formatTable, formatJSON)
	}
}

// loadConfig starts from the defaults, overlays the JSON file and then every flag the user set.
func loadConfig(c *cli.Context) (mvbb.Config, error) {
	cfg := mvbb.DefaultConfig()
	if fn := c.String(flagConfig); fn != "" {
		//nolint:gosec
		data, err := os.ReadFile(fn)
		if err != nil {
			return cfg, errors.Wrapf(err, "reading config %q", fn)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parsing config %q", fn)
		}
	}
	if c.IsSet(flagEpsilon) {
		cfg.Epsilon = c.Float64(flagEpsilon)
	}
	for name, field := range map[string]*int{
		flagSampleSize:    &cfg.SampleSize,
		flagGridSize:      &cfg.GridSize,
		flagDiamOptLoops:  &cfg.DiameterOptLoops,
		flagGridOptLoops:  &cfg.GridSearchOptLoops,
		flagDirectionGrid: &cfg.DirectionGridSize,
		flagBoxOptLoops:   &cfg.BoxOptLoops,
	} {
		if c.IsSet(name) {
			*field = c.Int(name)
		}
	}
	if c.Bool(flagNoHullEdges) {
		cfg.HullEdgeCandidates = false
	}
	// a bare multierr satisfies cli.MultiError, which makes App.Run exit the process itself
	return cfg, errors.Wrap(cfg.Validate(flagConfig), "invalid config")
}

func readPoints(input string) ([]r3.Vector, error) {
	if input == "-" {
		return pointcloud.ReadXYZ(os.Stdin)
	}
	return pointcloud.NewFromFile(input)
}

func writeJSON(w io.Writer, box *mvbb.OOBB) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(box)
}

func writeTable(w io.Writer, box *mvbb.OOBB, numPoints int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("MVBB of %d points", numPoints))
	t.AppendHeader(table.Row{"", "X", "Y", "Z"})
	row := func(name string, x, y, z float64) {
		t.AppendRow(table.Row{name, fmt.Sprintf("%.6g", x), fmt.Sprintf("%.6g", y), fmt.Sprintf("%.6g", z)})
	}
	minPoint, maxPoint, extent, center := box.MinPoint(), box.MaxPoint(), box.Extent(), box.Center()
	row("min (box frame)", minPoint.X, minPoint.Y, minPoint.Z)
	row("max (box frame)", maxPoint.X, maxPoint.Y, maxPoint.Z)
	row("extent", extent.X, extent.Y, extent.Z)
	row("center (world)", center.X, center.Y, center.Z)
	for i := 0; i < 3; i++ {
		d := box.Direction(i)
		row(fmt.Sprintf("axis %d", i), d.X, d.Y, d.Z)
	}
	t.AppendSeparator()
	q := box.Orientation()
	t.AppendRow(table.Row{"q_KI (w x y z)", fmt.Sprintf("%.6g %.6g %.6g %.6g", q.Real, q.Imag, q.Jmag, q.Kmag)})
	t.AppendFooter(table.Row{"volume", fmt.Sprintf("%.6g", box.Volume())})
	t.Render()
}
