package pointcloud

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestReadXYZ(t *testing.T) {
	in := strings.NewReader("# header\n1 2 3\n\n4,5,6\n7\t8\t9 extra\n")
	points, err := ReadXYZ(in)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, points, test.ShouldResemble, []r3.Vector{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}, {X: 7, Y: 8, Z: 9}})

	_, err = ReadXYZ(strings.NewReader("1 2\n"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "line 1")

	_, err = ReadXYZ(strings.NewReader("1 2 3\n1 x 3\n"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "line 2")
}

func TestWriteReadXYZ(t *testing.T) {
	rot, trans := RandomRigidTransform(rand.New(rand.NewSource(7)))
	points := ApplyRigidTransform(MakeRandomCube(20, rand.New(rand.NewSource(8))), rot, trans)

	var buf bytes.Buffer
	test.That(t, WriteXYZ(points, &buf), test.ShouldBeNil)
	back, err := ReadXYZ(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back, test.ShouldResemble, points)

	fn := filepath.Join(t.TempDir(), "cloud.xyz")
	test.That(t, WriteToFile(points, fn), test.ShouldBeNil)
	fromFile, err := NewFromFile(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fromFile, test.ShouldResemble, points)

	_, err = NewFromFile(filepath.Join(t.TempDir(), "missing.xyz"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRandomRigidTransform(t *testing.T) {
	rot, _ := RandomRigidTransform(rand.New(rand.NewSource(11)))
	test.That(t, rot.IsOrthonormal(1e-9), test.ShouldBeTrue)
}

func TestPCDRoundTrip(t *testing.T) {
	rot, trans := RandomRigidTransform(rand.New(rand.NewSource(2)))
	points := ApplyRigidTransform(MakeRandomCube(30, rand.New(rand.NewSource(3))), rot, trans)
	for _, pcdType := range []PCDType{PCDAscii, PCDBinary} {
		var buf bytes.Buffer
		test.That(t, ToPCD(points, &buf, pcdType), test.ShouldBeNil)
		back, err := ReadPCD(&buf)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, back, test.ShouldResemble, points)
	}

	var buf bytes.Buffer
	err := ToPCD(points, &buf, PCDCompressed)
	test.That(t, err, test.ShouldNotBeNil)

	fn := filepath.Join(t.TempDir(), "cloud.pcd")
	test.That(t, WriteToFile(points, fn), test.ShouldBeNil)
	fromFile, err := NewFromFile(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fromFile, test.ShouldResemble, points)
}

func TestReadPCDFloat32(t *testing.T) {
	header := "# written by a scanner\n" +
		"VERSION .7\n" +
		"FIELDS x y z rgb\n" +
		"SIZE 4 4 4 4\n" +
		"TYPE F F F U\n" +
		"COUNT 1 1 1 1\n" +
		"WIDTH 2\n" +
		"HEIGHT 1\n" +
		"VIEWPOINT 0 0 0 1 0 0 0\n" +
		"POINTS 2\n"

	ascii := header + "DATA ascii\n0.5 1 -2 16711680\n3 4 5.25 0"
	points, err := ReadPCD(strings.NewReader(ascii))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, points, test.ShouldResemble, []r3.Vector{{X: 0.5, Y: 1, Z: -2}, {X: 3, Y: 4, Z: 5.25}})

	var buf bytes.Buffer
	buf.WriteString(header + "DATA binary\n")
	for _, f := range []float32{0.5, 1, -2, 0, 3, 4, 5.25, 0} {
		test.That(t, binary.Write(&buf, binary.LittleEndian, math.Float32bits(f)), test.ShouldBeNil)
	}
	points, err = ReadPCD(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, points, test.ShouldResemble, []r3.Vector{{X: 0.5, Y: 1, Z: -2}, {X: 3, Y: 4, Z: 5.25}})
}

func TestReadPCDErrors(t *testing.T) {
	valid := []string{
		"VERSION .7", "FIELDS x y z", "SIZE 8 8 8", "TYPE F F F", "COUNT 1 1 1",
		"WIDTH 1", "HEIGHT 1", "VIEWPOINT 0 0 0 1 0 0 0", "POINTS 1", "DATA ascii",
	}
	withLine := func(idx int, line string) string {
		lines := append([]string{}, valid...)
		lines[idx] = line
		return strings.Join(lines, "\n") + "\n1 2 3\n"
	}

	_, err := ReadPCD(strings.NewReader(withLine(0, "VERSION .7")))
	test.That(t, err, test.ShouldBeNil)

	for _, tc := range []struct {
		idx  int
		line string
		msg  string
	}{
		{0, "VERSION .6", "unsupported pcd version"},
		{1, "FIELDS x y", "unsupported pcd fields"},
		{3, "TYPE F I F", "coordinate 1"},
		{4, "COUNT 1 2 1", "unsupported COUNT"},
		{7, "VIEWPOINT 0 0 0", "VIEWPOINT"},
		{8, "POINTS 2", "does not match"},
		{9, "DATA binary_compressed", "compressed"},
		{2, "WIDTH 1", "supposed to start with SIZE"},
	} {
		_, err := ReadPCD(strings.NewReader(withLine(tc.idx, tc.line)))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, tc.msg)
	}

	_, err = ReadPCD(strings.NewReader(strings.Join(valid[:5], "\n")))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLASRoundTrip(t *testing.T) {
	points := []r3.Vector{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 2, Z: 3}, {X: -4.5, Y: 6.25, Z: 10}, {X: 100, Y: -100, Z: 0.5}}
	fn := filepath.Join(t.TempDir(), "cloud.las")
	test.That(t, WriteToFile(points, fn), test.ShouldBeNil)

	back, err := NewFromFile(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(back), test.ShouldEqual, len(points))
	for i, p := range points {
		test.That(t, back[i].Distance(p), test.ShouldBeLessThan, 1e-2)
	}
}
