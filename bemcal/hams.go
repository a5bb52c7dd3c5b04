package bemcal

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/go-logr/logr"
	"gonum.org/v1/gonum/mat"

	"github.com/phil-mansfield/hydroconv/math/numeric"
	"github.com/phil-mansfield/hydroconv/mesh"
)

// MinHamsFrequency is the lowest frequency written to a HAMS case.
const MinHamsFrequency = 0.01

const hamsExe = "HAMS_x64.exe"

var hamsBinaries = []string{hamsExe, "libiomp5md.dll"}

// HamsCal is a HAMS run. HAMS solves a single body.
type HamsCal struct {
	BemCal
	Threads int
	// BinPath is the HAMS installation folder used when binaries are
	// included in a saved case.
	BinPath string
}

func NewHamsCal(log logr.Logger) *HamsCal {
	return &HamsCal{BemCal: BemCal{H: -1, Log: log}, Threads: runtime.NumCPU()}
}

func (c *HamsCal) Solver() Solver { return Hams }
func (c *HamsCal) Base() *BemCal  { return &c.BemCal }

func (c *HamsCal) Check() []string {
	ret := c.BemCal.Check()
	if len(c.Bodies) != 1 {
		return append(ret, "HAMS just allows one body")
	}

	m, b := c.mesher(), &c.Bodies[0]
	hull, err := m.Load(b.MeshFile)
	if err != nil { return append(ret, err.Error()) }
	if b.LidFile == "" { return ret }
	lid, err := m.Load(b.LidFile)
	if err != nil { return append(ret, err.Error()) }

	if hull.SymX != lid.SymX {
		ret = append(ret, "The symmetry of the X-axis (y0z) in the hull and the lid has to match")
	}
	if hull.SymY != lid.SymY {
		ret = append(ret, "The symmetry of the Y-axis (x0z) in the hull and the lid has to match")
	}
	return ret
}

// SaveFolder writes the case to folder, deleting anything already there.
// If numCases > 1 the frequency range is also split into numCases
// HAMS_Part_<i> folders with scripts to run them.
func (c *HamsCal) SaveFolder(folder string, bin bool, numCases int) error {
	if len(c.Bodies) == 0 { return fmt.Errorf("No bodies found.") }
	if err := c.prepare(folder, numCases); err != nil { return err }

	minF := math.Max(c.MinF, MinHamsFrequency)
	c.Log.V(1).Info("Saving HAMS case", "folder", folder, "cases", numCases)
	root := part{Folder: folder, Nf: c.Nf, MinF: minF, MaxF: c.MaxF}
	if err := c.saveCase(root, bin); err != nil { return err }
	if numCases == 1 { return nil }

	parts := c.partition(folder, "HAMS", minF, numCases)
	if err := saveParts(parts, func(p part) error { return c.saveCase(p, bin) }); err != nil {
		return err
	}
	return writeDrivers(folder, "HAMS", parts, quote(hamsExe))
}

func quote(s string) string { return "\"" + s + "\"" }

func (c *HamsCal) saveCase(p part, bin bool) error {
	in, out := filepath.Join(p.Folder, "Input"), filepath.Join(p.Folder, "Output")
	err := mkdirs(in, filepath.Join(out, "Hams_format"),
		filepath.Join(out, "Hydrostar_format"), filepath.Join(out, "Wamit_format"))
	if err != nil { return err }

	if err := c.writeControlFile(filepath.Join(in, "ControlFile.in"), p); err != nil {
		return err
	}
	if err := c.writeHydrostatic(filepath.Join(in, "Hydrostatic.in")); err != nil {
		return err
	}

	b := &c.Bodies[0]
	m := c.mesher()
	if err := m.SaveInFormat(b.MeshFile, filepath.Join(in, "HullMesh.pnl"), mesh.Pnl); err != nil {
		return err
	}
	if b.LidFile != "" {
		err := m.SaveInFormat(b.LidFile, filepath.Join(in, "WaterplaneMesh.pnl"), mesh.Pnl)
		if err != nil { return err }
	}

	if err := writeScript(filepath.Join(p.Folder, "HAMS.bat"), "", quote(hamsExe)); err != nil {
		return err
	}
	if bin { return copyBinaries(Hams, c.BinPath, p.Folder, hamsBinaries) }
	return nil
}

func (c *HamsCal) writeControlFile(file string, p part) error {
	f, err := os.Create(file)
	if err != nil { return err }
	defer f.Close()
	w := bufio.NewWriter(f)
	b := &c.Bodies[0]

	fmt.Fprintf(w, "   --------------HAMS Control file---------------\n\n")
	fmt.Fprintf(w, "   Waterdepth  %.4fD0\n\n", c.H)
	fmt.Fprintf(w, "   #Start Definition of Wave Frequencies\n")
	fmt.Fprintf(w, "    Input_frequency_type        3\n")
	fmt.Fprintf(w, "    Output_frequency_type       3\n")
	fmt.Fprintf(w, "    Number_of_frequencies      %d\n    ", p.Nf)
	for _, x := range numeric.LinSpaced(p.Nf, p.MinF, p.MaxF) {
		fmt.Fprintf(w, "%.4f ", x)
	}
	fmt.Fprintf(w, "\n   #End Definition of Wave Frequencies\n\n")
	fmt.Fprintf(w, "   #Start Definition of Wave Headings\n")
	fmt.Fprintf(w, "    Number_of_headings         %d\n    ", c.Nh)
	for _, x := range c.Headings() {
		fmt.Fprintf(w, "%.4f ", x)
	}
	fmt.Fprintf(w, "\n   #End Definition of Wave Headings\n\n")
	fmt.Fprintf(w, "    Reference_body_center   %.3f   %.3f   %.3f\n", b.C0[0], b.C0[1], b.C0[2])
	fmt.Fprintf(w, "    Reference_body_length   1.D0\n")
	fmt.Fprintf(w, "    Wave_diffrac_solution    2\n")
	fmt.Fprintf(w, "    If_remove_irr_freq      %d\n", boolInt(b.LidFile != ""))
	fmt.Fprintf(w, "    Number of threads       %d\n\n", c.Threads)
	fmt.Fprintf(w, "   #Start Definition of Pressure and/or Elevation (PE)\n")
	fmt.Fprintf(w, "    Number_of_field_points     1                           "+
		"# number of field points where to calculate PE\n")
	fmt.Fprintf(w, " 0.000000    0.000000    0.000000    Global_coords_point_1\n")
	fmt.Fprintf(w, "   #End Definition of Pressure and/or Elevation\n\n")
	fmt.Fprintf(w, "    ----------End HAMS Control file---------------\n")
	fmt.Fprintf(w, "   Input_frequency_type options:\n")
	fmt.Fprintf(w, "   1--deepwater wave number; 2--finite-depth wave number; "+
		"3--wave frequency; 4--wave period; 5--wave length\n")
	fmt.Fprintf(w, "   Output_frequency_type options: same as Input_frequency_type options\n")

	if err := w.Flush(); err != nil { return err }
	return f.Close()
}

func boolInt(b bool) int {
	if b { return 1 }
	return 0
}

func (c *HamsCal) writeHydrostatic(file string) error {
	f, err := os.Create(file)
	if err != nil { return err }
	defer f.Close()
	w := bufio.NewWriter(f)
	b := &c.Bodies[0]

	fmt.Fprintf(w, " Center of Gravity:\n %.15E %.15E %.15E\n", b.Cg[0], b.Cg[1], b.Cg[2])
	for _, m := range b.matrices() {
		fmt.Fprintf(w, "\n %s:\n", m.label)
		d := *m.m
		for i := 0; i < 6; i++ {
			for j := 0; j < 6; j++ {
				x := 0.0
				if d != nil { x = d.At(i, j) }
				fmt.Fprintf(w, "   %.5E", x)
			}
			fmt.Fprintf(w, "\n")
		}
	}

	if err := w.Flush(); err != nil { return err }
	return f.Close()
}

// Load reads a HAMS ControlFile.in and the Hydrostatic.in next to it. Mesh
// files named HullMesh.pnl and WaterplaneMesh.pnl in the same folder become
// the body's mesh and lid.
func (c *HamsCal) Load(file string) error {
	l, err := readCaseFile(file)
	if err != nil { return err }
	dir := filepath.Dir(file)

	inputType := 3
	for !l.EOF() {
		fs := l.NextData()
		if fs == nil { break }
		if strings.Contains(strings.Join(fs, " "), "End HAMS Control file") { break }
		if len(fs) < 2 || strings.HasPrefix(fs[0], "#") { continue }

		switch fs[0] {
		case "Waterdepth":
			if c.H, err = l.Float(fs, 1); err != nil { return err }
		case "Input_frequency_type", "Output_frequency_type":
			n, err := l.Int(fs, 1)
			if err != nil { return err }
			if n != 3 && n != 4 {
				return l.Errorf("HAMS loader just allows loading %s = 3 "+
					"wave frequency or 4 wave period", fs[0])
			}
			if fs[0] == "Input_frequency_type" { inputType = n }
		case "Number_of_frequencies":
			err = c.loadRange(l, fs, "Minimum_frequency_Wmin", "Frequency_step",
				inputType == 4, &c.Nf, &c.MinF, &c.MaxF)
			if err != nil { return err }
		case "Number_of_headings":
			err = c.loadRange(l, fs, "Minimum_heading", "Heading_step",
				false, &c.Nh, &c.MinH, &c.MaxH)
			if err != nil { return err }
		case "Reference_body_center":
			if len(fs) < 4 { return l.Errorf("Lack of data in Reference_body_center") }
			b := NewBody("")
			for k := 0; k < 3; k++ {
				if b.C0[k], err = l.Float(fs, k+1); err != nil { return err }
			}
			if hull := filepath.Join(dir, "HullMesh.pnl"); exists(hull) {
				b.MeshFile = hull
			}
			if lid := filepath.Join(dir, "WaterplaneMesh.pnl"); exists(lid) {
				b.LidFile = lid
			}
			c.Bodies = []BemBody{b}
		case "Number":
			if len(fs) >= 4 && fs[1] == "of" && fs[2] == "threads" {
				if c.Threads, err = l.Int(fs, 3); err != nil { return err }
			}
		}
	}
	return c.loadHydrostatic(filepath.Join(dir, "Hydrostatic.in"))
}

func exists(file string) bool {
	_, err := os.Stat(file)
	return err == nil
}

// loadRange reads a frequency or heading grid in either of its encodings:
// a positive count followed by the explicit list of values, or a negative
// count followed by minimum and step lines. Periods are converted to
// frequencies.
func (c *HamsCal) loadRange(
	l *lines, fs []string, minKey, stepKey string, periods bool,
	n *int, min, max *float64,
) error {
	count, err := l.Int(fs, 1)
	if err != nil { return err }

	if count < 0 {
		*n = -count
		vals := [2]float64{}
		for k, key := range []string{minKey, stepKey} {
			fs := l.NextData()
			if len(fs) < 2 || fs[0] != key { return l.Errorf("%s not found", key) }
			if vals[k], err = l.Float(fs, 1); err != nil { return err }
		}
		*min = vals[0]
		*max = vals[0] + vals[1]*float64(*n-1)
		if periods {
			if *min <= 0 || *max <= 0 {
				return l.Errorf("Periods must be positive")
			}
			*min, *max = numeric.PeriodToFreq(*max), numeric.PeriodToFreq(*min)
		}
		return nil
	}

	*n = count
	data, err := l.Floats(l.NextData(), 0)
	if err != nil { return err }
	if len(data) != count {
		return l.Errorf("Expected %d values, found %d.", count, len(data))
	}
	if periods {
		for i, t := range data {
			if t <= 0 { return l.Errorf("Periods must be positive") }
			data[i] = numeric.PeriodToFreq(t)
		}
		sort.Float64s(data)
	}
	for i := 2; i < len(data); i++ {
		if !numeric.EqualDecimals(data[1]-data[0], data[i]-data[i-1], 3) {
			return l.Errorf("HAMS loader just allows equidistant values")
		}
	}
	if len(data) > 0 {
		*min, *max = data[0], data[len(data)-1]
	}
	return nil
}

func (c *HamsCal) loadHydrostatic(file string) error {
	l, err := readCaseFile(file)
	if err != nil { return err }
	if len(c.Bodies) == 0 { c.Bodies = []BemBody{NewBody("")} }
	b := &c.Bodies[0]

	for !l.EOF() {
		line := strings.TrimSpace(l.Next())
		if line == "Center of Gravity:" {
			fs := l.NextData()
			if len(fs) < 3 { return l.Errorf("Center of Gravity data is not complete") }
			for k := 0; k < 3; k++ {
				if b.Cg[k], err = l.Float(fs, k); err != nil { return err }
			}
			continue
		}
		for _, m := range b.matrices() {
			if line != m.label+":" { continue }
			if *m.m, err = readMatrix(l); err != nil { return err }
		}
	}
	return nil
}

func readMatrix(l *lines) (*mat.Dense, error) {
	d := mat.NewDense(6, 6, nil)
	for i := 0; i < 6; i++ {
		fs := l.NextData()
		if len(fs) < 6 { return nil, l.Errorf("Matrix rows need 6 values.") }
		for j := 0; j < 6; j++ {
			x, err := l.Float(fs, j)
			if err != nil { return nil, err }
			d.Set(i, j, x)
		}
	}
	return d, nil
}
