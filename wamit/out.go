package wamit

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/phil-mansfield/hydroconv/hydro"
	"github.com/phil-mansfield/hydroconv/math/numeric"
)

// Markers which end the sections of one period in a .out file.
var outSectionEnds = []string{
	"SURGE, SWAY & YAW DRIFT FORCES",
	"SURGE, SWAY, HEAVE, ROLL, PITCH & YAW DRIFT FORCES",
	"VELOCITY VECTOR IN FLUID DOMAIN",
	"HYDRODYNAMIC PRESSURE IN FLUID DOMAIN",
	"*************************************",
}

func baseName(file string) string {
	base := filepath.Base(strings.TrimSpace(file))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// loadOut reads the body parameters of a .out report in a single pass and
// then hands the results section to loadOutResults.
func (l *loader) loadOut(file string) error {
	r, err := readLines(file)
	if err != nil { return err }

	hd := l.hd
	hd.Dimen = false
	var names []string
	allocated := false
	ibody := -1
	var offset [3]float64

	// body makes sure per-body storage exists and returns the current body.
	body := func() (int, error) {
		if !allocated {
			if len(names) == 0 { return 0, r.Errorf("No bodies declared.") }
			if err := hd.SetNb(len(names)); err != nil { return 0, r.Locate(err) }
			hd.InitBodies()
			copy(hd.Names, names)
			hd.InitGeometry()
			allocated = true
		}
		if ibody < 0 { return 0, nil }
		return ibody, nil
	}

	for !r.EOF() {
		line := r.Next()
		f := r.Fields(line)
		switch {
		case strings.Contains(line, "N=") && !strings.Contains(line, "Body number:"):
			names = append(names, baseName(f.Text(2)))

		case strings.Contains(line, "Input from Geometric Data File:"):
			_, after, _ := strings.Cut(line, "Input from Geometric Data File:")
			names = []string{baseName(after)}

		case strings.Contains(line, "POTEN run date and starting time:"):
			if _, err := body(); err != nil { return err }

		case strings.Contains(line, "Gravity:"):
			g, err := f.Float(1)
			if err != nil { return err }
			length, err := f.Float(4)
			if err != nil { return err }
			hd.G, hd.Len = hydro.Some(g), hydro.Some(length)

		case strings.Contains(line, "Water depth:"):
			if strings.EqualFold(f.Text(2), "infinite") {
				hd.H = hydro.Some(-1)
			} else {
				h, err := f.Float(2)
				if err != nil { return err }
				if h < 0 { return r.Errorf("Water depth has to be positive.") }
				hd.H = hydro.Some(h)
			}
			if strings.Contains(line, "Water density:") {
				rho, err := f.Float(5)
				if err != nil { return err }
				hd.Rho = hydro.Some(rho)
			}

		case strings.Contains(line, "XBODY ="):
			if _, err := body(); err != nil { return err }
			ibody++
			if ibody >= hd.Nb {
				return r.Errorf("Found additional bodies over %d.", hd.Nb)
			}
			for k, idx := range []int{2, 5, 8} {
				if offset[k], err = f.Float(idx); err != nil { return err }
			}

		case strings.Contains(line, "Volumes (VOLX,VOLY,VOLZ):"):
			ib, err := body()
			if err != nil { return err }
			_, after, _ := strings.Cut(line, "Volumes (VOLX,VOLY,VOLZ):")
			vo, ok := scanFloat(after)
			if !ok { return r.Errorf("Volume is not a number.") }
			hd.Vo[ib] = hydro.Some(vo)

		case strings.Contains(line, "Center of Gravity  (Xg,Yg,Zg):"),
			strings.Contains(line, "Center of Buoyancy (Xb,Yb,Zb):"):
			ib, err := body()
			if err != nil { return err }
			var x [3]float64
			if err := f.Floats(4, x[:]); err != nil { return err }
			dst := &hd.Cb[ib]
			if strings.Contains(line, "Gravity") { dst = &hd.Cg[ib] }
			for k := range x { dst[k] = hydro.Some(x[k] + offset[k]) }

		case strings.Contains(line, "Hydrostatic and gravitational"):
			ib, err := body()
			if err != nil { return err }
			if !hd.IsLoadedC() { hd.InitC() }
			if err := l.loadOutRestoring(r, &hd.C[ib]); err != nil { return err }

		case strings.Contains(line, "Output from  WAMIT"):
			if _, err := body(); err != nil { return err }
			return l.loadOutResults(r)
		}
	}
	return r.Errorf("The results section 'Output from  WAMIT' was not found.")
}

// loadOutRestoring reads the three restoring lines, whose numbers may be
// written without separating spaces.
func (l *loader) loadOutRestoring(r *lineReader, c *hydro.Matrix6) error {
	for i := range c {
		for j := range c[i] { c[i][j] = hydro.Some(0) }
	}
	rows := []struct{ i, j0, n int }{{2, 2, 3}, {3, 3, 3}, {4, 4, 2}}
	for _, row := range rows {
		f := r.JoinedFields(r.Next())
		for k := 0; k < row.n; k++ {
			x, err := f.Float(1 + k)
			if err != nil { return err }
			j := row.j0 + k
			c[row.i][j], c[j][row.i] = hydro.Some(x), hydro.Some(x)
		}
	}
	return nil
}

// find advances r past the next line containing s and returns it.
func find(r *lineReader, s string) (string, bool) {
	for !r.EOF() {
		if line := r.Next(); strings.Contains(line, s) { return line, true }
	}
	return "", false
}

// loadOutResults counts the periods and headings of the results section,
// then rewinds and fills the tensors.
func (l *loader) loadOutResults(r *lineReader) error {
	hd := l.hd
	start := r.Pos()

	nf := 0
	var heads []float64
	foundNh := false
	for !r.EOF() {
		line := r.Next()
		switch {
		case strings.Contains(line, "Wave period (sec)"):
			nf++
			if len(heads) > 0 { foundNh = true }
		case foundNh:
		case len(heads) > 0 && (strings.Contains(line, "*********************") ||
			strings.Contains(line, "FORCES AND MOMENTS")):
			foundNh = true
		case strings.Contains(line, "Wave Heading (deg) :"):
			h, err := r.Fields(line).Float(4)
			if err != nil { return err }
			heads = numeric.FindAddDelta(heads, numeric.FixHeading(h), 0.001)
		}
	}
	if nf == 0 { return r.Errorf("No 'Wave period (sec)' blocks found.") }
	if err := hd.SetNf(nf); err != nil { return r.Locate(err) }
	if len(heads) > 0 {
		if err := hd.SetHeadings(heads, 0.001); err != nil { return r.Locate(err) }
	}
	hd.InitAB()

	r.Seek(start)
	if _, ok := find(r, "Wave period = infinite"); ok {
		hd.InitAw0()
		if err := l.loadOutA(r, hd.Aw0); err != nil { return err }
	}
	r.Seek(start)
	if _, ok := find(r, "Wave period = zero"); ok {
		hd.InitAwinf()
		if err := l.loadOutA(r, hd.Awinf); err != nil { return err }
	}

	r.Seek(start)
	w, T := make([]float64, nf), make([]float64, nf)
	for ifr := 0; ; ifr++ {
		line, ok := find(r, "Wave period (sec)")
		if !ok { break }
		if ifr >= nf { return r.Errorf("Found additional periods over %d.", nf) }
		per, err := r.Fields(line).Float(4)
		if err != nil { return err }
		T[ifr], w[ifr] = per, numeric.PeriodToFreq(per)
		if err := l.loadOutPeriod(r, ifr); err != nil { return err }
	}
	if err := hd.SetAxis(w, T, false, 0.001); err != nil { return r.Locate(err) }
	return nil
}

// loadOutPeriod reads the sections of one period.
func (l *loader) loadOutPeriod(r *lineReader, ifr int) error {
	hd := l.hd
	for !r.EOF() {
		p := r.Pos()
		line := r.Next()
		switch {
		case strings.Contains(line, "ADDED-MASS AND DAMPING COEFFICIENTS"):
			r.Skip(2)
			for !r.EOF() {
				line := strings.TrimSpace(r.Next())
				if line == "" { break }
				f := r.Fields(line)
				i, err := f.Int(0)
				if err != nil { return err }
				j, err := f.Int(1)
				if err != nil { return err }
				var ab [2]float64
				if err := f.Floats(2, ab[:]); err != nil { return err }
				if i, err = l.dofIndex(i); err != nil { return r.Locate(err) }
				if j, err = l.dofIndex(j); err != nil { return r.Locate(err) }
				hd.A[i][j][ifr] = hydro.Some(ab[0])
				hd.B[i][j][ifr] = hydro.Some(ab[1])
			}
		case strings.Contains(line, "DIFFRACTION EXCITING FORCES AND MOMENTS"):
			if !hd.Ex.IsLoaded() { hd.InitForces(&hd.Ex) }
			if err := l.loadOutForces(r, &hd.Ex, ifr); err != nil { return err }
		case strings.Contains(line, "RESPONSE AMPLITUDE OPERATORS"):
			if !hd.Rao.IsLoaded() { hd.InitForces(&hd.Rao) }
			if err := l.loadOutForces(r, &hd.Rao, ifr); err != nil { return err }
		case strings.Contains(line, "Wave period (sec)"):
			r.Seek(p)
			return nil
		default:
			for _, end := range outSectionEnds {
				if strings.Contains(line, end) { return nil }
			}
		}
	}
	return nil
}

// loadOutForces reads one "Wave Heading" table per heading. Phases are
// given in degrees.
func (l *loader) loadOutForces(r *lineReader, forces *hydro.Forces, ifr int) error {
	hd := l.hd
	for ih := 0; ih < hd.Nh && !r.EOF(); {
		p := r.Pos()
		line := r.Next()
		if strings.Contains(line, "Wave period (sec)") ||
			strings.Contains(line, "*********************") {
			r.Seek(p)
			return nil
		}
		if !strings.Contains(line, "Wave Heading (deg) :") { continue }

		h, err := r.Fields(line).Float(4)
		if err != nil { return err }
		jh := hydro.HeadingIndex(hd.Head, numeric.FixHeading(h), 0.001)
		if jh < 0 {
			return r.Locate(&hydro.ConsistencyError{
				Field: "heading", Expected: hd.Head, Found: h,
			})
		}
		r.Skip(3)
		for !r.EOF() {
			line := strings.TrimSpace(r.Next())
			if line == "" { break }
			f := r.Fields(line)
			i, err := f.Int(0)
			if err != nil { return err }
			var mp [2]float64
			if err := f.Floats(1, mp[:]); err != nil { return err }
			if i < 0 { i = -i }
			idof, err := l.dofIndex(i)
			if err != nil { return r.Locate(err) }
			forces.SetPolar(jh, ifr, idof, mp[0], mp[1]*math.Pi/180)
		}
		ih++
	}
	return nil
}

// loadOutA reads an added mass table at a limiting period.
func (l *loader) loadOutA(r *lineReader, a [][]hydro.Opt) error {
	r.Skip(6)
	for !r.EOF() {
		line := strings.TrimSpace(r.Next())
		if line == "" { break }
		f := r.Fields(line)
		i, err := f.Int(0)
		if err != nil { return err }
		j, err := f.Int(1)
		if err != nil { return err }
		x, err := f.Float(2)
		if err != nil { return err }
		if i, err = l.dofIndex(i); err != nil { return r.Locate(err) }
		if j, err = l.dofIndex(j); err != nil { return r.Locate(err) }
		a[i][j] = hydro.Some(x)
	}
	return nil
}

// wam formats a number the way WAMIT does.
func wam(x float64) string { return fmt.Sprintf("%13.6E", x) }

const outRule = " ------------------------------------------------------------------------\n"
const outStars = " ************************************************************************\n"

// SaveOut writes hd as a .out report which Load can read back. Scattering
// and Froude-Krylov forces, if loaded, go to .3sc and .3fk siblings.
func (c *Codec) SaveOut(hd *hydro.Hydro, file string) error {
	err := c.saveOut(hd, file)
	if err == nil && hd.IsLoadedFsc() {
		err = c.saveForceFile(hd, &hd.Sc, withExt(file, ".3sc"))
	}
	if err == nil && hd.IsLoadedFfk() {
		err = c.saveForceFile(hd, &hd.Fk, withExt(file, ".3fk"))
	}
	if err != nil {
		c.Log.Error(err, "Failed to save WAMIT .out file", "file", file)
	}
	return err
}

func (c *Codec) saveOut(hd *hydro.Hydro, file string) error {
	if hd.Nb == 0 || hd.Nf == 0 {
		return fmt.Errorf("There is no data to write to %s.", file)
	}
	fout, err := c.create(file)
	if err != nil { return err }
	defer fout.Close()
	w := bufio.NewWriter(fout)

	c.writeOutHeader(w, hd)
	for ib := 0; ib < hd.Nb; ib++ { writeOutBody(w, hd, ib) }

	fmt.Fprint(w, outRule, "                    Output from  WAMIT\n", outRule, "\n")
	if hd.IsLoadedAw0() { writeOutA(w, hd, hd.Aw0, hd.NdimAw0, "infinite") }
	if hd.IsLoadedAwinf() { writeOutA(w, hd, hd.Awinf, hd.NdimAwinf, "zero") }

	for ifr := 0; ifr < hd.Nf; ifr++ {
		fmt.Fprintf(w, "%s\n Wave period (sec) = %s\n%s\n\n",
			outStars, wam(hd.T[ifr]), outRule)
		if hd.IsLoadedA() && hd.IsLoadedB() { writeOutAB(w, hd, ifr) }
		if hd.IsLoadedFex() {
			writeOutForces(w, hd, &hd.Ex, ifr, "DIFFRACTION EXCITING FORCES AND MOMENTS")
		}
		if hd.IsLoadedRAO() {
			writeOutForces(w, hd, &hd.Rao, ifr, "RESPONSE AMPLITUDE OPERATORS")
		}
	}
	fmt.Fprint(w, outStars)

	if err := w.Flush(); err != nil { return err }
	return fout.Close()
}

func (c *Codec) writeOutHeader(w io.Writer, hd *hydro.Hydro) {
	fmt.Fprintf(w, " %s\n\n", strings.Repeat("-", 72))
	fmt.Fprint(w, "                   hydroconv generated .out format\n\n")
	fmt.Fprintf(w, " %s\n\n\n", strings.Repeat("-", 72))
	fmt.Fprint(w, " Low-order panel method  (ILOWHI=0)\n\n")
	if hd.Nb == 1 {
		fmt.Fprintf(w, " Input from Geometric Data File:         %s.gdf\n", bodyName(hd, 0))
		fmt.Fprint(w, " Unknown gdf file source\n\n")
	} else {
		fmt.Fprint(w, " Input from Geometric Data Files:\n")
		for ib := 0; ib < hd.Nb; ib++ {
			fmt.Fprintf(w, "                               N=  %d     %s.gdf\n", ib+1, bodyName(hd, ib))
			fmt.Fprint(w, " Unknown gdf file source\n\n")
		}
	}
	fmt.Fprint(w,
		" Input from Potential Control File:      unknown.pot\n",
		" unknown.pot -- file type .gdf, ILOWHI=0, IRR=1\n\n\n",
		" POTEN run date and starting time:        01-Jan-2000  --  00:00:00\n",
		"   Period       Time           RAD      DIFF  (max iterations)\n",
	)
	if hd.IsLoadedAw0() { fmt.Fprint(w, "   -1.0000    00:00:00          -1\n") }
	if hd.IsLoadedAwinf() { fmt.Fprint(w, "    0.0000    00:00:00          -1\n") }
	for _, T := range hd.T {
		fmt.Fprintf(w, " %9.4f    00:00:00          -1      -1\n", T)
	}

	depth := "infinite"
	if h := hd.H; h.Ok && h.Val >= 0 { depth = fmt.Sprintf("%g", h.Val) }
	fmt.Fprintf(w, "\n Gravity:     %g                Length scale:        %g\n",
		hd.G.Or(c.G), hd.Len.Or(c.Len))
	fmt.Fprintf(w, " Water depth:        %s     Water density:      %g\n",
		depth, hd.Rho.Or(c.Rho))
	fmt.Fprint(w,
		" Logarithmic singularity index:              ILOG =     1\n",
		" Source formulation index:                   ISOR =     0\n",
		" Diffraction/scattering formulation index: ISCATT =     0\n",
		" Number of blocks used in linear system:   ISOLVE =     1\n\n",
		" BODY PARAMETERS:\n\n",
	)
}

func bodyName(hd *hydro.Hydro, ib int) string {
	if ib < len(hd.Names) && hd.Names[ib] != "" { return hd.Names[ib] }
	return fmt.Sprintf("body%d", ib+1)
}

func or0(xs []hydro.Opt, i int) float64 {
	if i >= len(xs) { return 0 }
	return xs[i].Or(0)
}

// hasRestoring reports whether any coefficient of c has been loaded.
func hasRestoring(c *hydro.Matrix6) bool {
	for i := range c {
		for j := range c[i] {
			if c[i][j].Ok { return true }
		}
	}
	return false
}

func writeOutBody(w io.Writer, hd *hydro.Hydro, ib int) {
	if hd.Nb > 1 { fmt.Fprintf(w, " Body number: N= %d   ", ib+1) }
	fmt.Fprint(w,
		" Total panels:     0    Waterline panels:    0      Symmetries: none\n",
		" Irregular frequency index: IRR =1\n\n",
		" XBODY =    0.0000 YBODY =    0.0000 ZBODY =    0.0000 PHIBODY =   0.0\n",
	)
	vo := or0(hd.Vo, ib)
	fmt.Fprintf(w, " Volumes (VOLX,VOLY,VOLZ):      %s %s %s\n", wam(vo), wam(vo), wam(vo))

	var cb, cg [3]hydro.Opt
	if ib < len(hd.Cb) { cb = hd.Cb[ib] }
	if ib < len(hd.Cg) { cg = hd.Cg[ib] }
	fmt.Fprintf(w, " Center of Buoyancy (Xb,Yb,Zb): %s %s %s\n",
		wam(cb[0].Or(0)), wam(cb[1].Or(0)), wam(cb[2].Or(0)))

	if ib < len(hd.C) && hasRestoring(&hd.C[ib]) {
		C := &hd.C[ib]
		nd := func(i, j int) string {
			if !C[i][j].Ok { return wam(0) }
			return wam(hd.NdimC(ib, i, j))
		}
		fmt.Fprint(w, " Hydrostatic and gravitational restoring coefficients:\n")
		fmt.Fprintf(w, " C(3,3),C(3,4),C(3,5): %s %s %s\n", nd(2, 2), nd(2, 3), nd(2, 4))
		fmt.Fprintf(w, " C(4,4),C(4,5),C(4,6):               %s %s %s\n", nd(3, 3), nd(3, 4), nd(3, 5))
		fmt.Fprintf(w, "        C(5,5),C(5,6):                             %s %s\n", nd(4, 4), nd(4, 5))
	}
	fmt.Fprintf(w, " Center of Gravity  (Xg,Yg,Zg): %s %s %s\n",
		wam(cg[0].Or(0)), wam(cg[1].Or(0)), wam(cg[2].Or(0)))
	fmt.Fprint(w,
		" Radii of gyration:     0.000000     0.000000     0.000000\n",
		"                        0.000000     0.000000     0.000000\n",
		"                        0.000000     0.000000     0.000000\n\n",
	)
}

func writeOutA(
	w io.Writer, hd *hydro.Hydro, a [][]hydro.Opt,
	ndim func(i, j int) float64, period string,
) {
	fmt.Fprintf(w, "%s\n Wave period = %s\n%s\n\n", outStars, period, outRule)
	fmt.Fprint(w, "    ADDED-MASS COEFFICIENTS\n     I     J         A(I,J)\n\n")
	for i := range a {
		for j := range a[i] {
			if a[i][j].Ok { fmt.Fprintf(w, "%6d%6d %s\n", i+1, j+1, wam(ndim(i, j))) }
		}
	}
	fmt.Fprint(w, "\n\n")
}

func writeOutAB(w io.Writer, hd *hydro.Hydro, ifr int) {
	fmt.Fprint(w, "    ADDED-MASS AND DAMPING COEFFICIENTS\n")
	fmt.Fprint(w, "     I     J         A(I,J)         B(I,J)\n\n")
	for i := range hd.A {
		for j := range hd.A[i] {
			if !hd.A[i][j][ifr].Ok || !hd.B[i][j][ifr].Ok { continue }
			fmt.Fprintf(w, "%6d%6d %s %s\n", i+1, j+1,
				wam(hd.NdimA(ifr, i, j)), wam(hd.NdimB(ifr, i, j)))
		}
	}
	fmt.Fprint(w, "\n\n\n\n")
}

func writeOutForces(w io.Writer, hd *hydro.Hydro, f *hydro.Forces, ifr int, title string) {
	fmt.Fprintf(w, "    %s\n\n", title)
	for ih := 0; ih < hd.Nh; ih++ {
		fmt.Fprintf(w, "  Wave Heading (deg) :      %s\n\n", wam(hd.Head[ih]))
		fmt.Fprint(w, "     I     Mod[Xh(I)]     Pha[Xh(I)]\n\n")
		for idof := range f.Ma[ih][ifr] {
			if !f.Ma[ih][ifr][idof].Ok { continue }
			ma, _, _ := hd.NdimForce(f, ih, ifr, idof)
			fmt.Fprintf(w, " %7d   %s   %f\n", idof+1, wam(ma),
				f.Ph[ih][ifr][idof].Val*180/math.Pi)
		}
		fmt.Fprint(w, "\n\n\n\n")
	}
}

// saveForceFile writes the .3sc/.3fk companion of a .out report.
func (c *Codec) saveForceFile(hd *hydro.Hydro, f *hydro.Forces, file string) error {
	fout, err := c.create(file)
	if err != nil { return err }
	defer fout.Close()
	w := bufio.NewWriter(fout)

	fmt.Fprintf(w, " WAMIT %s forces -- %s\n", f.Kind, filepath.Base(file))
	for ifr := 0; ifr < hd.Nf; ifr++ {
		for ih := 0; ih < hd.Nh; ih++ {
			for idof := range f.Ma[ih][ifr] {
				if !f.Ma[ih][ifr][idof].Ok { continue }
				ma, re, im := hd.NdimForce(f, ih, ifr, idof)
				fmt.Fprintf(w, " %s %s %5d %s %s %s %s\n",
					wam(hd.T[ifr]), wam(hd.Head[ih]), idof+1, wam(ma),
					wam(f.Ph[ih][ifr][idof].Val*180/math.Pi), wam(re), wam(im))
			}
		}
	}
	if err := w.Flush(); err != nil { return err }
	return fout.Close()
}
