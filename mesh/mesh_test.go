package mesh

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/hydroconv/hydro"
)

// box returns an open-topped 2 x 2 x 1 box hanging below the waterplane,
// with outward normals.
func box() *Mesh {
	return &Mesh{
		Nodes: []Vec{
			{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
			{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0},
		},
		Panels: [][4]int{
			{0, 3, 2, 1}, {0, 1, 5, 4}, {1, 2, 6, 5}, {2, 3, 7, 6}, {3, 0, 4, 7},
		},
	}
}

// halfBox is the x >= 0 half of box, stored with a y0z symmetry.
func halfBox() *Mesh {
	return &Mesh{
		Nodes: []Vec{
			{0, -1, -1}, {1, -1, -1}, {1, 1, -1}, {0, 1, -1},
			{0, -1, 0}, {1, -1, 0}, {1, 1, 0}, {0, 1, 0},
		},
		Panels: [][4]int{{0, 3, 2, 1}, {0, 1, 5, 4}, {1, 2, 6, 5}, {2, 3, 7, 6}},
		SymX:   true,
	}
}

func TestVolume(t *testing.T) {
	table := []struct {
		m         *Mesh
		vol, area float64
	}{
		{box(), 4, 12},
		{halfBox(), 4, 6},
		{&Mesh{
			Nodes:  []Vec{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, -1}},
			Panels: [][4]int{{0, 2, 1, 1}, {0, 1, 3, 3}, {0, 3, 2, 2}, {1, 2, 3, 3}},
		}, 1.0 / 6, 1.5 + 0.5*1.7320508075688772},
	}

	for i, test := range table {
		if vol := test.m.Volume(); !almostEqual(vol, test.vol) {
			t.Errorf("%d) Expected volume %g, got %g.", i, test.vol, vol)
		}
		if area := test.m.Area(); !almostEqual(area, test.area) {
			t.Errorf("%d) Expected area %g, got %g.", i, test.area, area)
		}
	}
}

func almostEqual(x, y float64) bool {
	d := x - y
	return d < 1e-9 && d > -1e-9
}

func TestBounds(t *testing.T) {
	min, max := box().Bounds()
	assert.Equal(t, Vec{-1, -1, -1}, min)
	assert.Equal(t, Vec{1, 1, 0}, max)
}

func TestPnlRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "hull.pnl")
	m := halfBox()
	require.NoError(t, m.Save(file, Pnl))

	got, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, m.Nodes, got.Nodes)
	assert.Equal(t, m.Panels, got.Panels)
	assert.Equal(t, Info{Nodes: 8, Panels: 4, SymX: true}, got.Info())
}

func TestDatUnfoldsX(t *testing.T) {
	file := filepath.Join(t.TempDir(), "hull.dat")
	require.NoError(t, halfBox().Save(file, Dat))

	got, err := Load(file)
	require.NoError(t, err)
	assert.False(t, got.SymX)
	assert.False(t, got.SymY)
	assert.Len(t, got.Nodes, 12, "nodes on the symmetry plane are shared")
	assert.Len(t, got.Panels, 8)
	assert.InDelta(t, 4.0, got.Volume(), 1e-9)
	min, max := got.Bounds()
	assert.Equal(t, Vec{-1, -1, -1}, min)
	assert.Equal(t, Vec{1, 1, 0}, max)
}

func TestDatSymmetryY(t *testing.T) {
	file := filepath.Join(t.TempDir(), "hull.dat")
	m := box()
	m.SymY = true
	require.NoError(t, m.Save(file, Dat))

	got, err := Load(file)
	require.NoError(t, err)
	assert.True(t, got.SymY)
	assert.Equal(t, m.Panels, got.Panels)
}

func TestGdfTriangles(t *testing.T) {
	text := "title\n 1.0 9.81\n 0 1\n 2\n" +
		" 0 0 -1  1 0 -1  1 1 -1  0 1 -1\n" +
		" 0 0 -1  1 0 -1  1 0 0  1 0 0\n"
	file := filepath.Join(t.TempDir(), "hull.gdf")
	require.NoError(t, os.WriteFile(file, []byte(text), 0644))

	m, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, Info{Nodes: 5, Panels: 2, SymY: true}, m.Info())
	assert.False(t, m.IsTriangle(0))
	assert.True(t, m.IsTriangle(1))
	assert.Equal(t, [4]int{0, 1, 4, 4}, m.Panels[1])
}

func TestSaveInFormat(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hull.pnl")
	require.NoError(t, box().Save(src, Pnl))
	f := NewFiles(logr.Discard())

	copied := filepath.Join(dir, "copy.pnl")
	require.NoError(t, f.SaveInFormat(src, copied, Pnl))
	want, _ := os.ReadFile(src)
	got, _ := os.ReadFile(copied)
	assert.Equal(t, want, got)

	converted := filepath.Join(dir, "hull.dat")
	require.NoError(t, f.SaveInFormat(src, converted, Dat))
	info, err := f.Load(converted)
	require.NoError(t, err)
	assert.Equal(t, Info{Nodes: 8, Panels: 5}, info)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, text string) string {
		file := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(file, []byte(text), 0644))
		return file
	}

	_, err := Load(write("bad.stl", "solid"))
	assert.Error(t, err)

	undefined := write("undefined.pnl",
		"# Number of Panels, Nodes, X-Symmetry and Y-Symmetry\n 1 3 0 0\n"+
			"#Start Definition of Node Coordinates\n 1 0 0 0\n 2 1 0 0\n 3 0 1 0\n"+
			"#End Definition of Node Coordinates\n"+
			"#Start Definition of Node Relations\n 1 3 1 2 9\n"+
			"#End Definition of Node Relations\n")
	_, err = Load(undefined)
	var ferr *hydro.FormatError
	require.True(t, errors.As(err, &ferr), "error %v", err)
	assert.Equal(t, 9, ferr.Line)

	counts := write("counts.pnl",
		"# Number of Panels, Nodes, X-Symmetry and Y-Symmetry\n 2 3 0 0\n"+
			"#Start Definition of Node Coordinates\n 1 0 0 0\n 2 1 0 0\n 3 0 1 0\n"+
			"#End Definition of Node Coordinates\n"+
			"#Start Definition of Node Relations\n 1 3 1 2 3\n"+
			"#End Definition of Node Relations\n")
	_, err = Load(counts)
	assert.Error(t, err)
}
