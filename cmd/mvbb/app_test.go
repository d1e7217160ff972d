package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/test"

	"go.viam.com/mvbb/pointcloud"
)

func writeCube(t *testing.T) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "cube.xyz")
	test.That(t, pointcloud.WriteToFile(pointcloud.MakeUnitCube(), fn), test.ShouldBeNil)
	return fn
}

func TestAppJSON(t *testing.T) {
	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).Run([]string{"mvbb", "--input", writeCube(t), "--format", "json"})
	test.That(t, err, test.ShouldBeNil)

	var decoded struct {
		Volume float64 `json:"volume"`
		Extent struct {
			X, Y, Z float64
		} `json:"extent"`
	}
	test.That(t, json.Unmarshal(out.Bytes(), &decoded), test.ShouldBeNil)
	test.That(t, decoded.Volume, test.ShouldAlmostEqual, 1., 1e-9)
	test.That(t, decoded.Extent.X, test.ShouldAlmostEqual, 1., 1e-9)
}

func TestAppTable(t *testing.T) {
	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).Run([]string{"mvbb", "-i", writeCube(t), "--debug", "--z-longest"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "MVBB of 8 points")
	test.That(t, out.String(), test.ShouldContainSubstring, "VOLUME")
	test.That(t, errOut.String(), test.ShouldContainSubstring, "read point cloud")
}

func TestAppConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "cfg.json")
	test.That(t, os.WriteFile(cfgFile, []byte(`{"epsilon": 0.01, "grid_size": 3}`), 0o600), test.ShouldBeNil)

	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).Run([]string{
		"mvbb", "-i", writeCube(t), "-c", cfgFile, "--sample-size", "4", "--format", "json",
	})
	test.That(t, err, test.ShouldBeNil)

	bad := filepath.Join(dir, "bad.json")
	test.That(t, os.WriteFile(bad, []byte(`{"epsilon": -1, "sample_size": 0}`), 0o600), test.ShouldBeNil)
	err = newApp(&out, &errOut).Run([]string{"mvbb", "-i", writeCube(t), "-c", bad})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "epsilon")
	test.That(t, err.Error(), test.ShouldContainSubstring, "sample_size")
	test.That(t, err.Error(), test.ShouldStartWith, "invalid config")
	test.That(t, multierr.Errors(errors.Cause(err)), test.ShouldHaveLength, 2)
}

func TestAppCombinedErrorsReturn(t *testing.T) {
	// several failing parameters at once must come back from Run rather than exit the process
	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).Run([]string{
		"mvbb", "-i", writeCube(t), "--epsilon", "-1", "--grid-size", "0", "--box-opt-loops", "-2",
	})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, multierr.Errors(errors.Cause(err)), test.ShouldHaveLength, 3)
	test.That(t, out.Len(), test.ShouldEqual, 0)
}

func TestAppErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).Run([]string{"mvbb", "-i", writeCube(t), "--format", "yaml"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown format")

	err = newApp(&out, &errOut).Run([]string{"mvbb", "-i", filepath.Join(t.TempDir(), "missing.xyz")})
	test.That(t, err, test.ShouldNotBeNil)

	err = newApp(&out, &errOut).Run([]string{"mvbb", "-i", writeCube(t), "--log-level", "loud"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown log level")
}

func TestAppLogLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).Run([]string{"mvbb", "-i", writeCube(t), "--log-level", "debug", "--format", "json"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut.String(), test.ShouldContainSubstring, "mvbb.approx")
	test.That(t, errOut.String(), test.ShouldContainSubstring, "fitted cloud")
}

func TestAppPCDInput(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "cube.pcd")
	test.That(t, pointcloud.WriteToFile(pointcloud.MakeUnitCube(), fn), test.ShouldBeNil)

	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).Run([]string{"mvbb", "-i", fn, "--format", "json"})
	test.That(t, err, test.ShouldBeNil)
	var decoded struct {
		Volume float64 `json:"volume"`
	}
	test.That(t, json.Unmarshal(out.Bytes(), &decoded), test.ShouldBeNil)
	test.That(t, decoded.Volume, test.ShouldAlmostEqual, 1., 1e-9)
}
