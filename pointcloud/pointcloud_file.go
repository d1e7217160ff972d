package pointcloud

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/edaniels/lidario"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
)

// NewFromFile returns the points read in from the given file. The format is picked from the
// extension: ".las", ".pcd", and anything else is read as XYZ text.
func NewFromFile(fn string) ([]r3.Vector, error) {
	switch strings.ToLower(filepath.Ext(fn)) {
	case ".las":
		return NewFromLASFile(fn)
	case ".pcd":
		return readFile(fn, ReadPCD)
	default:
		return readFile(fn, ReadXYZ)
	}
}

// WriteToFile writes the points to fn, picking the format from the extension like NewFromFile.
// PCD files are written in binary.
func WriteToFile(points []r3.Vector, fn string) error {
	switch strings.ToLower(filepath.Ext(fn)) {
	case ".las":
		return WriteToLASFile(points, fn)
	case ".pcd":
		return writeFile(fn, func(out io.Writer) error { return ToPCD(points, out, PCDBinary) })
	default:
		return writeFile(fn, func(out io.Writer) error { return WriteXYZ(points, out) })
	}
}

func readFile(fn string, read func(io.Reader) ([]r3.Vector, error)) (_ []r3.Vector, err error) {
	//nolint:gosec
	f, err := os.Open(filepath.Clean(fn))
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return read(f)
}

func writeFile(fn string, write func(io.Writer) error) (err error) {
	//nolint:gosec
	f, err := os.Create(filepath.Clean(fn))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return write(f)
}

// ReadXYZ parses whitespace or comma separated "x y z" lines. Empty lines and lines starting
// with '#' are skipped. Extra columns after the third are ignored.
func ReadXYZ(in io.Reader) ([]r3.Vector, error) {
	var points []r3.Vector
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ' ' || r == '\t' || r == ','
		})
		if len(fields) < 3 {
			return nil, errors.Errorf("line %d: expected 3 coordinates, got %d", lineNum, len(fields))
		}
		var coords [3]float64
		for i := 0; i < 3; i++ {
			f, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNum)
			}
			coords[i] = f
		}
		points = append(points, r3.Vector{X: coords[0], Y: coords[1], Z: coords[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return points, nil
}

// WriteXYZ writes one "x y z" line per point.
func WriteXYZ(points []r3.Vector, out io.Writer) error {
	w := bufio.NewWriter(out)
	lines := lo.Map(points, func(p r3.Vector, _ int) string {
		return strconv.FormatFloat(p.X, 'g', -1, 64) + " " +
			strconv.FormatFloat(p.Y, 'g', -1, 64) + " " +
			strconv.FormatFloat(p.Z, 'g', -1, 64)
	})
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return w.Flush()
}

// NewFromLASFile returns the positions stored in a LAS file. Colors and intensities are dropped.
func NewFromLASFile(fn string) (_ []r3.Vector, err error) {
	lf, err := lidario.NewLasFile(fn, "r")
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, lf.Close())
	}()

	points := make([]r3.Vector, 0, lf.Header.NumberPoints)
	for i := 0; i < lf.Header.NumberPoints; i++ {
		p, err := lf.LasPoint(i)
		if err != nil {
			return nil, errors.Wrapf(err, "reading LAS point %d", i)
		}
		data := p.PointData()
		points = append(points, r3.Vector{X: data.X, Y: data.Y, Z: data.Z})
	}
	return points, nil
}

// WriteToLASFile writes the points out to a LAS file using point format 0.
func WriteToLASFile(points []r3.Vector, fn string) (err error) {
	lf, err := lidario.NewLasFile(fn, "w")
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, lf.Close())
	}()

	if err := lf.AddHeader(lidario.LasHeader{PointFormatID: 0}); err != nil {
		return err
	}
	for i, pos := range points {
		pr0 := &lidario.PointRecord0{
			X: pos.X,
			Y: pos.Y,
			Z: pos.Z,
			BitField: lidario.PointBitField{
				Value: (1) | (1 << 3) | (0 << 6) | (0 << 7),
			},
			ClassBitField: lidario.ClassificationBitField{
				Value: 0,
			},
			PointSourceID: 1,
		}
		if err := lf.AddLasPoint(pr0); err != nil {
			return errors.Wrapf(err, "writing LAS point %d", i)
		}
	}
	return nil
}
