package bemcal

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/hydroconv/mesh"
)

// fakeMesher serves mesh summaries from memory.
type fakeMesher map[string]mesh.Info

func (f fakeMesher) Load(path string) (mesh.Info, error) {
	info, ok := f[path]
	if !ok { return mesh.Info{}, fmt.Errorf("Cannot open mesh '%s'.", path) }
	return info, nil
}

func (f fakeMesher) SaveInFormat(src, dst string, format mesh.Format) error {
	return os.WriteFile(dst, []byte(src), 0644)
}

// writeBox writes an open-topped box mesh in the given format.
func writeBox(t *testing.T, file string, symX bool) string {
	t.Helper()
	m := &mesh.Mesh{
		Nodes: []mesh.Vec{
			{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
			{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0},
		},
		Panels: [][4]int{
			{0, 3, 2, 1}, {0, 1, 5, 4}, {1, 2, 6, 5}, {2, 3, 7, 6}, {3, 0, 4, 7},
		},
		SymX: symX,
	}
	require.NoError(t, m.Save(file, mesh.FormatOf(file)))
	return file
}

func validBase() BemCal {
	return BemCal{
		H: 100, Nf: 10, MinF: 0.1, MaxF: 1.0, Nh: 3, MinH: -90, MaxH: 90,
		Log: logr.Discard(),
	}
}

func TestBaseCheck(t *testing.T) {
	table := []struct {
		edit func(c *BemCal)
		n    int
	}{
		{func(c *BemCal) {}, 0},
		{func(c *BemCal) { c.H = -1 }, 0},
		{func(c *BemCal) { c.H = 0 }, 1},
		{func(c *BemCal) { c.Nf = 0 }, 1},
		{func(c *BemCal) { c.Nf = MaxFrequencies + 1 }, 1},
		{func(c *BemCal) { c.MinF, c.MaxF = 2, 1 }, 1},
		{func(c *BemCal) { c.MinF, c.MaxF = -1, -2 }, 2},
		{func(c *BemCal) { c.Nh = 0 }, 1},
		{func(c *BemCal) { c.MinH = -200 }, 1},
		{func(c *BemCal) { c.MinH, c.MaxH = 90, -90 }, 1},
	}

	for i, test := range table {
		c := validBase()
		test.edit(&c)
		if ret := c.Check(); len(ret) != test.n {
			t.Errorf("%d) Expected %d problems, got %d: %q.", i, test.n, len(ret), ret)
		}
	}
}

func TestHamsCheckSymmetry(t *testing.T) {
	table := []struct {
		hull, lid mesh.Info
		want      []string
	}{
		{mesh.Info{SymX: true}, mesh.Info{SymX: true}, nil},
		{mesh.Info{SymX: true}, mesh.Info{},
			[]string{"The symmetry of the X-axis (y0z) in the hull and the lid has to match"}},
		{mesh.Info{SymY: true}, mesh.Info{},
			[]string{"The symmetry of the Y-axis (x0z) in the hull and the lid has to match"}},
		{mesh.Info{SymX: true}, mesh.Info{SymY: true}, []string{
			"The symmetry of the X-axis (y0z) in the hull and the lid has to match",
			"The symmetry of the Y-axis (x0z) in the hull and the lid has to match",
		}},
	}

	for i, test := range table {
		c := &HamsCal{BemCal: validBase()}
		c.Mesher = fakeMesher{"hull.pnl": test.hull, "lid.pnl": test.lid}
		b := NewBody("hull.pnl")
		b.LidFile = "lid.pnl"
		c.Bodies = []BemBody{b}
		assert.Equal(t, test.want, c.Check(), "%d", i)
	}
}

func TestHamsCheckBodies(t *testing.T) {
	c := &HamsCal{BemCal: validBase()}
	c.Mesher = fakeMesher{"hull.pnl": {}}
	assert.Equal(t, []string{"HAMS just allows one body"}, c.Check())

	c.Bodies = []BemBody{NewBody("hull.pnl"), NewBody("hull.pnl")}
	assert.Equal(t, []string{"HAMS just allows one body"}, c.Check())

	c.Bodies = []BemBody{NewBody("missing.pnl")}
	assert.Len(t, c.Check(), 1)
}

func TestNemohCheck(t *testing.T) {
	c := NewNemohCal(logr.Discard())
	c.BemCal = validBase()
	c.Mesher = fakeMesher{"a.dat": {Nodes: 8, Panels: 5}}
	assert.Equal(t, []string{"No bodies found"}, c.Check())

	b := NewBody("a.dat")
	c.Bodies = []BemBody{b}
	assert.Empty(t, c.Check())

	b.Dof = [6]bool{}
	c.Bodies = []BemBody{b, NewBody("missing.dat")}
	assert.Len(t, c.Check(), 2)

	c.Bodies = []BemBody{NewBody("a.dat")}
	c.Irf, c.IrfStep, c.IrfDuration = true, 0.1, 0.05
	assert.Len(t, c.Check(), 1)
}

func TestNemohMeshNames(t *testing.T) {
	c := NewNemohCal(logr.Discard())
	c.Bodies = []BemBody{
		NewBody(filepath.Join("a", "hull.pnl")),
		NewBody(filepath.Join("b", "Hull.pnl")),
		NewBody(filepath.Join("c", "hull_2.pnl")),
		NewBody(filepath.Join("d", "float.gdf")),
	}
	assert.Equal(t, []string{
		"hull.dat", "Hull_2.dat", "hull_2_3.dat", "float.dat",
	}, c.meshNames())
}

func TestPartition(t *testing.T) {
	c := validBase()
	parts := c.partition("out", "Nemoh", c.MinF, 3)
	require.Len(t, parts, 3)

	want := []part{
		{filepath.Join("out", "Nemoh_Part_1"), 4, 0.1, 0.4},
		{filepath.Join("out", "Nemoh_Part_2"), 3, 0.5, 0.7},
		{filepath.Join("out", "Nemoh_Part_3"), 3, 0.8, 1.0},
	}
	for i := range want {
		assert.Equal(t, want[i].Folder, parts[i].Folder)
		assert.Equal(t, want[i].Nf, parts[i].Nf)
		assert.InDelta(t, want[i].MinF, parts[i].MinF, 1e-12)
		assert.InDelta(t, want[i].MaxF, parts[i].MaxF, 1e-12)
	}
}

func TestSaveFolderNumCases(t *testing.T) {
	dir := t.TempDir()
	c := NewNemohCal(logr.Discard())
	c.BemCal = validBase()
	c.Bodies = []BemBody{NewBody(writeBox(t, filepath.Join(dir, "box.pnl"), false))}

	for _, n := range []int{0, 11} {
		folder := filepath.Join(dir, fmt.Sprintf("case%d", n))
		assert.Error(t, c.SaveFolder(folder, false, n))
		_, err := os.Stat(folder)
		assert.True(t, os.IsNotExist(err), "folder %s was created", folder)
	}
}

func TestNemohSaveFolderParts(t *testing.T) {
	dir := t.TempDir()
	c := NewNemohCal(logr.Discard())
	c.BemCal = validBase()
	c.H = -1
	c.Bodies = []BemBody{NewBody(writeBox(t, filepath.Join(dir, "box.pnl"), false))}
	c.Version = NemohV115

	folder := filepath.Join(dir, "case")
	require.NoError(t, os.MkdirAll(filepath.Join(folder, "stale"), 0755))
	require.NoError(t, c.SaveFolder(folder, false, 3))

	assert.NoDirExists(t, filepath.Join(folder, "stale"))
	for _, name := range []string{"Nemoh.cal", "ID.dat", "input.txt", "Nemoh.bat",
		"Mesh/box.dat", "Nemoh_Part_1.bat", "Nemoh_Part_3.bat", "Nemoh_Parts.bat"} {
		assert.FileExists(t, filepath.Join(folder, name))
	}
	assert.DirExists(t, filepath.Join(folder, "results"))

	root, err := LoadFolder(folder, logr.Discard())
	require.NoError(t, err)
	rc := root.(*NemohCal)
	assert.Equal(t, 10, rc.Nf)
	assert.Equal(t, -1.0, rc.H)
	require.Len(t, rc.Bodies, 1)
	assert.Equal(t, 8, rc.Bodies[0].NPoints)
	assert.Equal(t, 5, rc.Bodies[0].NPanels)
	assert.Equal(t, [6]bool{true, true, true, true, true, true}, rc.Bodies[0].Dof)
	assert.Equal(t, filepath.Join(folder, "Mesh", "box.dat"), rc.Bodies[0].MeshFile)

	want := []struct {
		nf         int
		minF, maxF float64
	}{{4, 0.1, 0.4}, {3, 0.5, 0.7}, {3, 0.8, 1.0}}
	for i, w := range want {
		sub := filepath.Join(folder, fmt.Sprintf("Nemoh_Part_%d", i+1))
		assert.FileExists(t, filepath.Join(sub, "Mesh", "box.dat"))
		pc, err := LoadFolder(filepath.Join(sub, "Nemoh.cal"), logr.Discard())
		require.NoError(t, err)
		base := pc.Base()
		assert.Equal(t, w.nf, base.Nf, "part %d", i+1)
		assert.InDelta(t, w.minF, base.MinF, 1e-9, "part %d", i+1)
		assert.InDelta(t, w.maxF, base.MaxF, 1e-9, "part %d", i+1)
		assert.Equal(t, 3, base.Nh)
	}
}

func TestNemohCalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := NewNemohCal(logr.Discard())
	c.BemCal = validBase()
	c.Rho, c.G = 1025, 9.80665
	c.Xeff, c.Yeff = 1, -2
	c.Irf, c.IrfStep, c.IrfDuration = true, 0.1, 30
	c.NKochin, c.MinK, c.MaxK = 10, 0, 180
	c.NFreeX, c.NFreeY, c.DomainX, c.DomainY = 50, 40, 400, 300
	b := NewBody(writeBox(t, filepath.Join(dir, "box.pnl"), false))
	b.Dof = [6]bool{false, false, true, false, true, false}
	b.C0 = [3]float64{0, 0, -0.5}
	c.Bodies = []BemBody{b}

	folder := filepath.Join(dir, "case")
	require.NoError(t, c.SaveFolder(folder, false, 1))
	assert.NoFileExists(t, filepath.Join(folder, "input.txt"))

	got := NewNemohCal(logr.Discard())
	require.NoError(t, got.Load(filepath.Join(folder, "Nemoh.cal")))
	assert.Equal(t, c.Rho, got.Rho)
	assert.Equal(t, c.G, got.G)
	assert.Equal(t, c.H, got.H)
	assert.Equal(t, [2]float64{1, -2}, [2]float64{got.Xeff, got.Yeff})
	assert.True(t, got.Irf)
	assert.Equal(t, 30.0, got.IrfDuration)
	assert.False(t, got.ShowPressure)
	assert.Equal(t, 10, got.NKochin)
	assert.Equal(t, 180.0, got.MaxK)
	assert.Equal(t, 50, got.NFreeX)
	assert.Equal(t, 300.0, got.DomainY)
	assert.Equal(t, -90.0, got.MinH)
	require.Len(t, got.Bodies, 1)
	assert.Equal(t, b.Dof, got.Bodies[0].Dof)
	assert.Equal(t, b.C0, got.Bodies[0].C0)
}

func TestHamsSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := NewHamsCal(logr.Discard())
	c.BemCal = validBase()
	c.H, c.Nf, c.MinF, c.MaxF = 50, 4, 0, 1.51
	c.Nh, c.MinH, c.MaxH = 3, 0, 90
	c.Threads = 4

	b := NewBody(writeBox(t, filepath.Join(dir, "hull.gdf"), false))
	b.LidFile = writeBox(t, filepath.Join(dir, "lid.pnl"), false)
	b.C0 = [3]float64{0, 0, -2}
	b.Cg = [3]float64{0, 0, -1.5}
	b.Mass.Set(0, 0, 1.5e6)
	b.Mass.Set(3, 3, 2.25e7)
	b.HydrostaticRestoring.Set(2, 4, -3.125e4)
	c.Bodies = []BemBody{b}

	folder := filepath.Join(dir, "case")
	require.NoError(t, c.SaveFolder(folder, false, 1))
	for _, name := range []string{
		"Input/ControlFile.in", "Input/Hydrostatic.in", "Input/HullMesh.pnl",
		"Input/WaterplaneMesh.pnl", "HAMS.bat",
	} {
		assert.FileExists(t, filepath.Join(folder, name))
	}
	for _, name := range []string{"Hams_format", "Hydrostar_format", "Wamit_format"} {
		assert.DirExists(t, filepath.Join(folder, "Output", name))
	}

	loaded, err := LoadFolder(folder, logr.Discard())
	require.NoError(t, err)
	got, ok := loaded.(*HamsCal)
	require.True(t, ok)
	assert.Equal(t, Hams, got.Solver())

	assert.Equal(t, 50.0, got.H)
	assert.Equal(t, 4, got.Nf)
	assert.InDelta(t, MinHamsFrequency, got.MinF, 1e-9)
	assert.InDelta(t, 1.51, got.MaxF, 1e-9)
	assert.Equal(t, 3, got.Nh)
	assert.InDelta(t, 90, got.MaxH, 1e-9)
	assert.Equal(t, 4, got.Threads)

	require.Len(t, got.Bodies, 1)
	gb := got.Bodies[0]
	assert.Equal(t, filepath.Join(folder, "Input", "HullMesh.pnl"), gb.MeshFile)
	assert.Equal(t, filepath.Join(folder, "Input", "WaterplaneMesh.pnl"), gb.LidFile)
	assert.Equal(t, b.C0, gb.C0)
	assert.Equal(t, b.Cg, gb.Cg)
	assert.Equal(t, 1.5e6, gb.Mass.At(0, 0))
	assert.Equal(t, 2.25e7, gb.Mass.At(3, 3))
	assert.Equal(t, -3.125e4, gb.HydrostaticRestoring.At(2, 4))
	assert.Equal(t, 0.0, gb.LinearDamping.At(1, 1))

	info, err := mesh.NewFiles(logr.Discard()).Load(gb.MeshFile)
	require.NoError(t, err)
	assert.Equal(t, mesh.Info{Nodes: 8, Panels: 5}, info)
}

func TestHamsLoadEncodings(t *testing.T) {
	dir := t.TempDir()
	hydrostatic := " Center of Gravity:\n 0.0 0.0 -1.0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Hydrostatic.in"), []byte(hydrostatic), 0644))
	write := func(text string) string {
		file := filepath.Join(dir, "ControlFile.in")
		require.NoError(t, os.WriteFile(file, []byte(text), 0644))
		return file
	}

	c := NewHamsCal(logr.Discard())
	require.NoError(t, c.Load(write(
		"   Waterdepth  -1.0D0\n"+
			"    Input_frequency_type        3\n"+
			"    Number_of_frequencies      -5\n"+
			"    Minimum_frequency_Wmin     0.1\n"+
			"    Frequency_step             0.1\n"+
			"    Number_of_headings         -3\n"+
			"    Minimum_heading            0\n"+
			"    Heading_step               45\n"+
			"    ----------End HAMS Control file---------------\n"+
			"    Number_of_headings         7\n")))
	assert.Equal(t, -1.0, c.H)
	assert.Equal(t, 5, c.Nf)
	assert.InDelta(t, 0.1, c.MinF, 1e-12)
	assert.InDelta(t, 0.5, c.MaxF, 1e-12)
	assert.Equal(t, 3, c.Nh)
	assert.InDelta(t, 90, c.MaxH, 1e-12)
	require.Len(t, c.Bodies, 1)
	assert.Equal(t, [3]float64{0, 0, -1}, c.Bodies[0].Cg)

	c = NewHamsCal(logr.Discard())
	require.NoError(t, c.Load(write(
		"    Input_frequency_type        4\n"+
			"    Number_of_frequencies       3\n"+
			"    6.283185307 3.141592654 2.094395102\n")))
	assert.Equal(t, 3, c.Nf)
	assert.InDelta(t, 1, c.MinF, 1e-6)
	assert.InDelta(t, 3, c.MaxF, 1e-6)

	c = NewHamsCal(logr.Discard())
	require.NoError(t, c.Load(write(
		"    Input_frequency_type        4\n"+
			"    Number_of_frequencies      -3\n"+
			"    Minimum_frequency_Wmin     2.0\n"+
			"    Frequency_step             1.0\n")))
	assert.Equal(t, 3, c.Nf)
	assert.InDelta(t, math.Pi/2, c.MinF, 1e-12)
	assert.InDelta(t, math.Pi, c.MaxF, 1e-12)

	c = NewHamsCal(logr.Discard())
	assert.Error(t, c.Load(write(
		"    Input_frequency_type        4\n"+
			"    Number_of_frequencies       2\n    0.0 1.0\n")))

	c = NewHamsCal(logr.Discard())
	assert.Error(t, c.Load(write(
		"    Number_of_frequencies       3\n    0.1 0.2 0.4\n")))

	c = NewHamsCal(logr.Discard())
	assert.Error(t, c.Load(write("    Input_frequency_type        1\n")))

	c = NewHamsCal(logr.Discard())
	assert.Error(t, c.Load(write(
		"    Number_of_frequencies      -5\n    Frequency_step 0.1\n")))
}

func TestSaveFolderBinaries(t *testing.T) {
	dir := t.TempDir()
	c := NewHamsCal(logr.Discard())
	c.BemCal = validBase()
	c.Bodies = []BemBody{NewBody(writeBox(t, filepath.Join(dir, "hull.pnl"), false))}

	c.BinPath = filepath.Join(dir, "missing")
	assert.Error(t, c.SaveFolder(filepath.Join(dir, "a"), true, 2))

	c.BinPath = filepath.Join(dir, "hams")
	require.NoError(t, os.MkdirAll(c.BinPath, 0755))
	for _, name := range hamsBinaries {
		require.NoError(t, os.WriteFile(filepath.Join(c.BinPath, name), []byte(name), 0755))
	}
	folder := filepath.Join(dir, "b")
	require.NoError(t, c.SaveFolder(folder, true, 2))
	for _, sub := range []string{"", "HAMS_Part_1", "HAMS_Part_2"} {
		assert.FileExists(t, filepath.Join(folder, sub, hamsExe))
		assert.FileExists(t, filepath.Join(folder, sub, "Input", "ControlFile.in"))
	}

	n := NewNemohCal(logr.Discard())
	n.BemCal = c.BemCal
	n.Version = Capytaine
	assert.Error(t, n.SaveFolder(filepath.Join(dir, "c"), true, 1))
}

func TestParseSolver(t *testing.T) {
	s, err := ParseSolver("nemohv115")
	require.NoError(t, err)
	assert.Equal(t, NemohV115, s)
	_, err = ParseSolver("aqwa")
	assert.Error(t, err)
}
