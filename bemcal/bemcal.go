/*Package bemcal describes BEM solver runs and writes them out as input
folders which HAMS or NEMOH can execute directly.

A BemCal holds the parts of a run shared by every solver: water depth, the
bodies, and equidistant frequency and heading grids. HamsCal and NemohCal add
the solver-specific settings and know how to check, save and load their own
case files. Long frequency sweeps can be split into several independent
cases which are written concurrently.
*/
package bemcal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/phil-mansfield/hydroconv/math/numeric"
	"github.com/phil-mansfield/hydroconv/mesh"
)

// Solver identifies the program a case is written for.
type Solver int

const (
	Hams Solver = iota
	Nemoh
	NemohV115
	Capytaine
)

func (s Solver) String() string {
	switch s {
	case Hams: return "HAMS"
	case Nemoh: return "Nemoh"
	case NemohV115: return "NemohV115"
	case Capytaine: return "Capytaine"
	}
	return "unknown"
}

// ParseSolver returns the Solver with the given (case-insensitive) name.
func ParseSolver(name string) (Solver, error) {
	for s := Hams; s <= Capytaine; s++ {
		if strings.EqualFold(s.String(), name) { return s, nil }
	}
	return 0, fmt.Errorf(
		"Unrecognized solver '%s'. Options are HAMS, Nemoh, NemohV115 "+
			"and Capytaine.", name,
	)
}

// Mesher loads and converts mesh files.
type Mesher interface {
	Load(path string) (mesh.Info, error)
	SaveInFormat(src, dst string, format mesh.Format) error
}

// BemBody is one floating body.
type BemBody struct {
	MeshFile, LidFile string
	NPoints, NPanels  int
	Dof               [6]bool
	C0                [3]float64 // rotation centre

	Cg                   [3]float64
	Mass                 *mat.Dense
	LinearDamping        *mat.Dense
	QuadraticDamping     *mat.Dense
	HydrostaticRestoring *mat.Dense
	ExternalRestoring    *mat.Dense
}

// NewBody returns a body with every degree of freedom active and zeroed
// 6 x 6 matrices.
func NewBody(meshFile string) BemBody {
	return BemBody{
		MeshFile:             meshFile,
		Dof:                  [6]bool{true, true, true, true, true, true},
		Mass:                 mat.NewDense(6, 6, nil),
		LinearDamping:        mat.NewDense(6, 6, nil),
		QuadraticDamping:     mat.NewDense(6, 6, nil),
		HydrostaticRestoring: mat.NewDense(6, 6, nil),
		ExternalRestoring:    mat.NewDense(6, 6, nil),
	}
}

// matrices returns the body's matrices with their Hydrostatic.in labels.
func (b *BemBody) matrices() []struct {
	label string
	m     **mat.Dense
} {
	return []struct {
		label string
		m     **mat.Dense
	}{
		{"Body Mass Matrix", &b.Mass},
		{"External Linear Damping Matrix", &b.LinearDamping},
		{"External Quadratic Damping Matrix", &b.QuadraticDamping},
		{"Hydrostatic Restoring Matrix", &b.HydrostaticRestoring},
		{"External Restoring Matrix", &b.ExternalRestoring},
	}
}

// NDof returns the number of active degrees of freedom.
func (b *BemBody) NDof() int {
	n := 0
	for _, ok := range b.Dof {
		if ok { n++ }
	}
	return n
}

// BemCal is the solver-independent part of a run. H < 0 is infinite depth.
type BemCal struct {
	H      float64
	Bodies []BemBody

	Nf         int
	MinF, MaxF float64 // rad/s
	Nh         int
	MinH, MaxH float64 // degrees

	Mesher Mesher
	Log    logr.Logger
}

const (
	MaxFrequencies = 1000
	MaxHeadings    = 1000
	MaxDepth       = 100000.0
)

// Check returns the problems which would prevent the run from being
// solved. An empty list means the case can be saved.
func (c *BemCal) Check() []string {
	var ret []string
	if c.H == 0 || c.H > MaxDepth {
		ret = append(ret, fmt.Sprintf("Incorrect depth %g", c.H))
	}
	if c.Nf < 1 || c.Nf > MaxFrequencies {
		ret = append(ret, fmt.Sprintf("Incorrect number of frequencies %d", c.Nf))
	}
	if c.MinF < 0 {
		ret = append(ret, fmt.Sprintf("Incorrect frequency %g", c.MinF))
	}
	if c.MaxF < c.MinF {
		ret = append(ret, fmt.Sprintf(
			"Minimum frequency %g has to be lower than maximum frequency %g",
			c.MinF, c.MaxF,
		))
	}
	if c.Nh < 1 || c.Nh > MaxHeadings {
		ret = append(ret, fmt.Sprintf("Incorrect number of headings %d", c.Nh))
	}
	if c.MinH < -180 {
		ret = append(ret, fmt.Sprintf("Incorrect direction %g", c.MinH))
	}
	if c.MaxH > 180 {
		ret = append(ret, fmt.Sprintf("Incorrect direction %g", c.MaxH))
	}
	if c.MaxH < c.MinH {
		ret = append(ret, fmt.Sprintf(
			"Minimum direction %g has to be lower than maximum direction %g",
			c.MinH, c.MaxH,
		))
	}
	return ret
}

// Frequencies returns the frequency grid.
func (c *BemCal) Frequencies() []float64 { return numeric.LinSpaced(c.Nf, c.MinF, c.MaxF) }

// Headings returns the heading grid.
func (c *BemCal) Headings() []float64 { return numeric.LinSpaced(c.Nh, c.MinH, c.MaxH) }

func (c *BemCal) mesher() Mesher {
	if c.Mesher == nil { return mesh.NewFiles(c.Log) }
	return c.Mesher
}

// Case is a run which can be validated and written to disk.
type Case interface {
	Check() []string
	SaveFolder(folder string, bin bool, numCases int) error
	Solver() Solver
	Base() *BemCal
}

// part is the frequency range handled by one case folder.
type part struct {
	Folder     string
	Nf         int
	MinF, MaxF float64
}

// partition splits the frequency grid starting at minF into numCases
// contiguous blocks, one per sub-folder <prefix>_Part_<i>.
func (c *BemCal) partition(folder, prefix string, minF float64, numCases int) []part {
	freqs := numeric.LinSpaced(c.Nf, minF, c.MaxF)
	sizes := numeric.NumSets(c.Nf, numCases)
	parts := make([]part, numCases)
	ifr := 0
	for i, n := range sizes {
		parts[i] = part{
			Folder: filepath.Join(folder, fmt.Sprintf("%s_Part_%d", prefix, i+1)),
			Nf:     n,
			MinF:   freqs[ifr],
			MaxF:   freqs[ifr+n-1],
		}
		ifr += n
	}
	return parts
}

// prepare validates the number of cases and replaces folder with an empty
// directory.
func (c *BemCal) prepare(folder string, numCases int) error {
	if numCases < 1 {
		return fmt.Errorf("Number of cases must be at least 1, not %d.", numCases)
	} else if numCases > c.Nf {
		return fmt.Errorf(
			"Number of split cases %d must not be higher than number of "+
				"frequencies %d.", numCases, c.Nf,
		)
	}
	if err := os.RemoveAll(folder); err != nil {
		return fmt.Errorf("Problem deleting '%s' folder: %w", folder, err)
	}
	return mkdirs(folder)
}

// saveParts writes one case per part concurrently.
func saveParts(parts []part, save func(p part) error) error {
	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for _, p := range parts {
		p := p
		g.Go(func() error {
			if err := mkdirs(p.Folder); err != nil { return err }
			return save(p)
		})
	}
	return g.Wait()
}

func mkdirs(folders ...string) error {
	for _, f := range folders {
		if err := os.MkdirAll(f, 0755); err != nil {
			return fmt.Errorf("Problem creating '%s' folder: %w", f, err)
		}
	}
	return nil
}

// copyBinaries copies the named files from the solver installation folder.
func copyBinaries(solver Solver, from, to string, names []string) error {
	if from == "" {
		return fmt.Errorf("No installation folder configured for %s.", solver)
	}
	for _, name := range names {
		if err := copyFile(filepath.Join(from, name), filepath.Join(to, name)); err != nil {
			return fmt.Errorf("Problem copying %s file from '%s': %w", solver, from, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil { return err }
	defer in.Close()
	info, err := in.Stat()
	if err != nil { return err }
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil { return err }
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// writeScript writes a batch file running cmds, after changing into dir if
// it is not empty.
func writeScript(file, dir string, cmds ...string) error {
	var sb strings.Builder
	if dir != "" { fmt.Fprintf(&sb, "cd \"%s\"\n", dir) }
	for _, cmd := range cmds { fmt.Fprintf(&sb, "%s\n", cmd) }
	return os.WriteFile(file, []byte(sb.String()), 0755)
}

// writeDrivers writes one script per part in folder and a top-level script
// which starts all of them.
func writeDrivers(folder, prefix string, parts []part, cmds ...string) error {
	var all []string
	for i, p := range parts {
		bat := fmt.Sprintf("%s_Part_%d.bat", prefix, i+1)
		err := writeScript(filepath.Join(folder, bat), filepath.Base(p.Folder), cmds...)
		if err != nil { return err }
		all = append(all, fmt.Sprintf("start \"%s_Part_%d\" cmd /c \"%s\"", prefix, i+1, bat))
	}
	return writeScript(filepath.Join(folder, prefix+"_Parts.bat"), "", all...)
}

// LoadFolder loads the case stored in folder, which may also be the path of
// a Nemoh.cal or ControlFile.in file.
func LoadFolder(folder string, log logr.Logger) (Case, error) {
	candidates := []struct {
		file string
		load func(string) (Case, error)
	}{
		{filepath.Join(folder, "Nemoh.cal"), loadNemoh(log)},
		{filepath.Join(folder, "Input", "ControlFile.in"), loadHams(log)},
		{filepath.Join(folder, "ControlFile.in"), loadHams(log)},
	}
	if info, err := os.Stat(folder); err == nil && !info.IsDir() {
		switch filepath.Base(folder) {
		case "Nemoh.cal": return loadNemoh(log)(folder)
		case "ControlFile.in": return loadHams(log)(folder)
		}
	}
	for _, cand := range candidates {
		if _, err := os.Stat(cand.file); err == nil {
			log.V(1).Info("Loading case", "file", cand.file)
			return cand.load(cand.file)
		}
	}
	return nil, fmt.Errorf("No HAMS or NEMOH case found in '%s'.", folder)
}

func loadNemoh(log logr.Logger) func(string) (Case, error) {
	return func(file string) (Case, error) {
		c := NewNemohCal(log)
		if err := c.Load(file); err != nil { return nil, err }
		return c, nil
	}
}

func loadHams(log logr.Logger) func(string) (Case, error) {
	return func(file string) (Case, error) {
		c := NewHamsCal(log)
		if err := c.Load(file); err != nil { return nil, err }
		return c, nil
	}
}
