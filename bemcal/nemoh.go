package bemcal

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"

	"github.com/phil-mansfield/hydroconv/mesh"
)

var (
	nemohBinaries = map[Solver][]string{
		Nemoh:     {"preProcessor.exe", "Solver.exe", "postProcessor.exe"},
		NemohV115: {"preProc.exe", "hydrosCal.exe", "solver.exe", "postProc.exe"},
	}
	nemohCommands = map[Solver][]string{
		Nemoh:     {"preProcessor.exe", "Solver.exe", "postProcessor.exe"},
		NemohV115: {"preProc.exe", "hydrosCal.exe", "solver.exe", "postProc.exe"},
		Capytaine: {"capytaine Nemoh.cal"},
	}

	dofNames = [6]string{"Surge", "Sway", "Heave", "Roll", "Pitch", "Yaw"}
)

// NemohCal is a NEMOH run, also used for the NEMOH-compatible solvers
// selected by Version.
type NemohCal struct {
	BemCal
	Version Solver

	G, Rho     float64
	Xeff, Yeff float64 // wave measurement point

	Irf                  bool
	IrfStep, IrfDuration float64
	ShowPressure         bool

	NKochin    int // 0 disables Kochin functions
	MinK, MaxK float64

	NFreeX, NFreeY   int // 0 disables free surface elevation
	DomainX, DomainY float64

	// BinPath is the NEMOH installation folder used when binaries are
	// included in a saved case.
	BinPath string
}

func NewNemohCal(log logr.Logger) *NemohCal {
	return &NemohCal{
		BemCal:  BemCal{H: -1, Log: log},
		Version: Nemoh,
		G:       9.81,
		Rho:     1000,
	}
}

func (c *NemohCal) Solver() Solver { return c.Version }
func (c *NemohCal) Base() *BemCal  { return &c.BemCal }

func (c *NemohCal) Check() []string {
	ret := c.BemCal.Check()
	if c.Version == Hams {
		ret = append(ret, "A NEMOH case cannot be solved by HAMS")
	}
	if len(c.Bodies) == 0 {
		return append(ret, "No bodies found")
	}
	m := c.mesher()
	for i := range c.Bodies {
		b := &c.Bodies[i]
		if _, err := m.Load(b.MeshFile); err != nil {
			ret = append(ret, fmt.Sprintf("Body %d: %s", i+1, err))
		}
		if b.NDof() == 0 {
			ret = append(ret, fmt.Sprintf("Body %d has no active degrees of freedom", i+1))
		}
	}
	if c.G <= 0 { ret = append(ret, fmt.Sprintf("Incorrect gravity %g", c.G)) }
	if c.Rho <= 0 { ret = append(ret, fmt.Sprintf("Incorrect density %g", c.Rho)) }
	if c.Irf && (c.IrfStep <= 0 || c.IrfDuration <= c.IrfStep) {
		ret = append(ret, fmt.Sprintf(
			"Incorrect IRF time step %g or duration %g", c.IrfStep, c.IrfDuration,
		))
	}
	if c.NKochin < 0 || (c.NKochin > 0 && c.MaxK < c.MinK) {
		ret = append(ret, fmt.Sprintf(
			"Incorrect Kochin function directions %d, %g to %g",
			c.NKochin, c.MinK, c.MaxK,
		))
	}
	if c.NFreeX < 0 || c.NFreeY < 0 {
		ret = append(ret, fmt.Sprintf(
			"Incorrect number of free surface points %d x %d", c.NFreeX, c.NFreeY,
		))
	}
	return ret
}

// SaveFolder writes the case to folder, deleting anything already there.
// If numCases > 1 the frequency range is also split into numCases
// Nemoh_Part_<i> folders with scripts to run them.
func (c *NemohCal) SaveFolder(folder string, bin bool, numCases int) error {
	if len(c.Bodies) == 0 { return fmt.Errorf("No bodies found.") }
	if bin && nemohBinaries[c.Version] == nil {
		return fmt.Errorf("%s binaries cannot be included in a case.", c.Version)
	}
	if err := c.prepare(folder, numCases); err != nil { return err }

	c.Log.V(1).Info("Saving NEMOH case", "folder", folder,
		"solver", c.Version.String(), "cases", numCases)
	root := part{Folder: folder, Nf: c.Nf, MinF: c.MinF, MaxF: c.MaxF}
	if err := c.saveCase(root, bin); err != nil { return err }
	if numCases == 1 { return nil }

	parts := c.partition(folder, "Nemoh", c.MinF, numCases)
	if err := saveParts(parts, func(p part) error { return c.saveCase(p, bin) }); err != nil {
		return err
	}
	return writeDrivers(folder, "Nemoh", parts, nemohCommands[c.Version]...)
}

// meshNames returns a distinct .dat file name for each body. Names are
// compared case-insensitively since the cases are usually run on Windows.
func (c *NemohCal) meshNames() []string {
	names := make([]string, len(c.Bodies))
	seen := map[string]bool{}
	for i, b := range c.Bodies {
		base := strings.TrimSuffix(filepath.Base(b.MeshFile), filepath.Ext(b.MeshFile))
		name := base + ".dat"
		for k := i + 1; seen[strings.ToLower(name)]; k++ {
			name = fmt.Sprintf("%s_%d.dat", base, k)
		}
		seen[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func (c *NemohCal) saveCase(p part, bin bool) error {
	meshDir := filepath.Join(p.Folder, "Mesh")
	if err := mkdirs(meshDir, filepath.Join(p.Folder, "results")); err != nil {
		return err
	}

	m := c.mesher()
	names := c.meshNames()
	infos := make([]mesh.Info, len(c.Bodies))
	for i, b := range c.Bodies {
		dst := filepath.Join(meshDir, names[i])
		if err := m.SaveInFormat(b.MeshFile, dst, mesh.Dat); err != nil { return err }
		info, err := m.Load(dst)
		if err != nil { return err }
		infos[i] = info
	}

	if err := c.writeCal(filepath.Join(p.Folder, "Nemoh.cal"), p, names, infos); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(p.Folder, "ID.dat"), []byte("1\n.\n"), 0644); err != nil {
		return err
	}
	if c.Version != Nemoh {
		if err := writeInput(filepath.Join(p.Folder, "input.txt")); err != nil { return err }
	}
	err := writeScript(filepath.Join(p.Folder, "Nemoh.bat"), "", nemohCommands[c.Version]...)
	if err != nil { return err }
	if bin { return copyBinaries(c.Version, c.BinPath, p.Folder, nemohBinaries[c.Version]) }
	return nil
}

// dofLine returns the Nemoh.cal description of a motion or generalised force.
func dofLine(idof int, c0 [3]float64) string {
	axis := [3]float64{}
	axis[idof%3] = 1
	typ := 1 + idof/3
	if typ == 1 { c0 = [3]float64{} }
	return fmt.Sprintf("%d %.1f %.1f %.1f %g %g %g", typ,
		axis[0], axis[1], axis[2], c0[0], c0[1], c0[2])
}

func (c *NemohCal) writeCal(file string, p part, names []string, infos []mesh.Info) error {
	f, err := os.Create(file)
	if err != nil { return err }
	defer f.Close()
	w := bufio.NewWriter(f)

	rule := func(title string) {
		fmt.Fprintf(w, "--- %s %s\n", title, strings.Repeat("-", 100-len(title)))
	}
	depth := c.H
	if depth < 0 { depth = 0 }

	rule("Environment")
	fmt.Fprintf(w, "%-32s! RHO             ! KG/M**3   ! Fluid specific volume\n", fmt.Sprintf("%g", c.Rho))
	fmt.Fprintf(w, "%-32s! G               ! M/S**2    ! Gravity\n", fmt.Sprintf("%g", c.G))
	fmt.Fprintf(w, "%-32s! DEPTH           ! M         ! Water depth\n", fmt.Sprintf("%g", depth))
	fmt.Fprintf(w, "%-32s! XEFF YEFF       ! M         ! Wave measurement point\n",
		fmt.Sprintf("%g %g", c.Xeff, c.Yeff))

	rule("Description of floating bodies")
	fmt.Fprintf(w, "%-32s! Number of bodies\n", fmt.Sprintf("%d", len(c.Bodies)))
	for i, b := range c.Bodies {
		rule(fmt.Sprintf("Body %d", i+1))
		fmt.Fprintf(w, "%-32s! Name of mesh file\n", "Mesh/"+names[i])
		fmt.Fprintf(w, "%-32s! Number of points and number of panels\n",
			fmt.Sprintf("%d %d", infos[i].Nodes, infos[i].Panels))
		for _, kind := range []string{"degrees of freedom", "resulting generalised forces"} {
			fmt.Fprintf(w, "%-32s! Number of %s\n", fmt.Sprintf("%d", b.NDof()), kind)
			for idof, ok := range b.Dof {
				if !ok { continue }
				fmt.Fprintf(w, "%-32s! %s\n", dofLine(idof, b.C0), dofNames[idof])
			}
		}
		fmt.Fprintf(w, "%-32s! Number of lines of additional information\n", "0")
	}

	rule("Load cases to be solved")
	fmt.Fprintf(w, "%-32s! Number of wave frequencies, Min, and Max (rad/s)\n",
		fmt.Sprintf("%d %g %g", p.Nf, p.MinF, p.MaxF))
	fmt.Fprintf(w, "%-32s! Number of wave directions, Min and Max (degrees)\n",
		fmt.Sprintf("%d %g %g", c.Nh, c.MinH, c.MaxH))

	rule("Post processing")
	fmt.Fprintf(w, "%-32s! IRF calculation (0 for no calculation), time step and duration\n",
		fmt.Sprintf("%d %g %g", boolInt(c.Irf), c.IrfStep, c.IrfDuration))
	fmt.Fprintf(w, "%-32s! Show pressure\n", fmt.Sprintf("%d", boolInt(c.ShowPressure)))
	fmt.Fprintf(w, "%-32s! Kochin function: number of directions (0 for no calculations), Min and Max (degrees)\n",
		fmt.Sprintf("%d %g %g", c.NKochin, c.MinK, c.MaxK))
	fmt.Fprintf(w, "%-32s! Free surface elevation: points in x and y (0 for no calculations), domain in x and y\n",
		fmt.Sprintf("%d %d %g %g", c.NFreeX, c.NFreeY, c.DomainX, c.DomainY))
	rule("End of file")

	if err := w.Flush(); err != nil { return err }
	return f.Close()
}

func writeInput(file string) error {
	text := "--- Calculation parameters ---------------------------------------------\n" +
		"0          ! Indiq_solver  ! Solver (0) Direct Gauss (1) GMRES (2) GMRES with FMM acceleration\n" +
		"20         ! IRES          ! Restart parameter for GMRES\n" +
		"5.E-07     ! TOL_GMRES     ! Stopping criterion for GMRES\n" +
		"100        ! MAXIT         ! Maximum iterations for GMRES\n" +
		"1          ! Sav_potential ! Save potential for visualization\n"
	return os.WriteFile(file, []byte(text), 0644)
}

// values returns the fields of the next line which is not a "---" rule.
func (l *lines) values() []string {
	for {
		fs := l.NextData()
		if fs == nil || !strings.HasPrefix(fs[0], "---") { return fs }
	}
}

// floatsN parses the first len(out) fields of the next value line.
func (l *lines) floatsN(out ...*float64) error {
	fs := l.values()
	for i, x := range out {
		v, err := l.Float(fs, i)
		if err != nil { return err }
		*x = v
	}
	return nil
}

func (l *lines) intValue() (int, error) { return l.Int(l.values(), 0) }

// Load reads a Nemoh.cal file. Relative mesh paths are taken relative to
// the file's folder.
func (c *NemohCal) Load(file string) error {
	l, err := readCaseFile(file)
	if err != nil { return err }
	dir := filepath.Dir(file)

	if err := l.floatsN(&c.Rho); err != nil { return err }
	if err := l.floatsN(&c.G); err != nil { return err }
	if err := l.floatsN(&c.H); err != nil { return err }
	if c.H == 0 { c.H = -1 }
	if err := l.floatsN(&c.Xeff, &c.Yeff); err != nil { return err }

	nb, err := l.intValue()
	if err != nil { return err }
	c.Bodies = make([]BemBody, nb)
	for ib := range c.Bodies {
		if c.Bodies[ib], err = l.loadBody(dir); err != nil { return err }
	}

	var nf, nh, irf, pressure, nk, nx, ny float64
	if err := l.floatsN(&nf, &c.MinF, &c.MaxF); err != nil { return err }
	if err := l.floatsN(&nh, &c.MinH, &c.MaxH); err != nil { return err }
	c.Nf, c.Nh = int(nf), int(nh)

	if err := l.floatsN(&irf, &c.IrfStep, &c.IrfDuration); err != nil { return err }
	if err := l.floatsN(&pressure); err != nil { return err }
	if err := l.floatsN(&nk, &c.MinK, &c.MaxK); err != nil { return err }
	if err := l.floatsN(&nx, &ny, &c.DomainX, &c.DomainY); err != nil { return err }
	c.Irf, c.ShowPressure = irf != 0, pressure != 0
	c.NKochin, c.NFreeX, c.NFreeY = int(nk), int(nx), int(ny)
	return nil
}

func (l *lines) loadBody(dir string) (BemBody, error) {
	fs := l.values()
	if fs == nil { return BemBody{}, l.Errorf("Mesh file name not found.") }
	b := NewBody(fs[0])
	if !filepath.IsAbs(b.MeshFile) { b.MeshFile = filepath.Join(dir, b.MeshFile) }

	fs = l.values()
	var err error
	if b.NPoints, err = l.Int(fs, 0); err != nil { return b, err }
	if b.NPanels, err = l.Int(fs, 1); err != nil { return b, err }

	ndof, err := l.intValue()
	if err != nil { return b, err }
	b.Dof = [6]bool{}
	for i := 0; i < ndof; i++ {
		var typ float64
		var axis, c0 [3]float64
		err := l.floatsN(&typ, &axis[0], &axis[1], &axis[2], &c0[0], &c0[1], &c0[2])
		if err != nil { return b, err }
		k := 0
		for j := 1; j < 3; j++ {
			if math.Abs(axis[j]) > math.Abs(axis[k]) { k = j }
		}
		switch typ {
		case 1:
			b.Dof[k] = true
		case 2:
			b.Dof[3+k] = true
			b.C0 = c0
		default:
			return b, l.Errorf("Unknown degree of freedom type %g.", typ)
		}
	}

	// Generalised forces mirror the degrees of freedom, and additional
	// information lines are not used.
	for _, what := range []string{"forces", "additional lines"} {
		n, err := l.intValue()
		if err != nil { return b, err }
		if n < 0 { return b, l.Errorf("Negative number of %s.", what) }
		for i := 0; i < n; i++ { l.values() }
	}
	return b, nil
}
