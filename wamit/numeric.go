package wamit

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/hydroconv/hydro"
	"github.com/phil-mansfield/hydroconv/math/numeric"
)

// firstColumn converts the raw first column of a numeric file into
// frequencies and periods according to IPEROUT:
//
//	1: periods
//	2: frequencies
//	3: infinite-depth non-dimensional wavenumbers
//	4: finite-depth non-dimensional wavenumbers
//
// If IPEROUT is unknown, a decreasing column is read as periods.
func (l *loader) firstColumn(raw []float64) (w, T []float64, fromW bool, err error) {
	n := len(raw)
	w, T = make([]float64, n), make([]float64, n)
	g, length := l.hd.G.Or(l.G), l.hd.Len.Or(l.Len)

	switch l.iperout {
	case 0:
		fromW = !(n >= 2 && raw[0] > raw[1])
		if fromW { copy(w, raw) } else { copy(T, raw) }
	case 1:
		copy(T, raw)
	case 2:
		fromW = true
		copy(w, raw)
	case 3:
		fromW = true
		for i := range raw { w[i] = numeric.DeepWaterFreq(raw[i], g, length) }
	case 4:
		fromW = true
		if l.hd.H.IsNull() {
			return nil, nil, false, fmt.Errorf(
				"Finite-depth wavenumbers (IPEROUT = 4) require the water " +
					"depth from a .pot file.",
			)
		}
		h := l.hd.H.Val
		for i := range raw {
			if h < 0 {
				w[i] = numeric.DeepWaterFreq(raw[i], g, length)
				continue
			}
			w[i], err = numeric.FiniteDepthFreq(raw[i], g, length, h)
			if err != nil { return nil, nil, false, err }
		}
	default:
		return nil, nil, false, fmt.Errorf(
			"IPEROUT = %d is not supported.", l.iperout,
		)
	}

	for i := range w {
		if fromW {
			T[i] = numeric.FreqToPeriod(w[i])
		} else {
			w[i] = numeric.PeriodToFreq(T[i])
		}
	}
	return w, T, fromW, nil
}

func (l *loader) unknownAxis(fromW bool, x float64) error {
	field := "period"
	if fromW { field = "frequency" }
	return &hydro.ConsistencyError{Field: field, Expected: "a known value", Found: x}
}

// dofIndex converts a 1-based global DOF into a 0-based one, checking it
// against the body count.
func (l *loader) dofIndex(dof int) (int, error) {
	if dof < 1 || dof > l.hd.NDof() {
		return 0, &hydro.ConsistencyError{
			Field: "DOF", Expected: fmt.Sprintf("1..%d", l.hd.NDof()), Found: dof,
		}
	}
	return dof - 1, nil
}

// bodies returns the body count implied by a maximum 1-based DOF.
func bodies(maxDof int) int { return 1 + (maxDof-1)/6 }

// setLen records the length scale numeric files are normalized by.
func (l *loader) setLen() {
	l.hd.Dimen = false
	if l.hd.Len.IsNull() { l.hd.Len = hydro.Some(l.Len) }
}

// load1 reads added mass and damping. Rows with a negative period give the
// zero-frequency added mass and rows with a zero period the
// infinite-frequency one.
func (l *loader) load1(file string) error {
	r, err := readLines(file)
	if err != nil { return err }
	if !r.skipHeader() { return errEmpty }
	start := r.Pos()

	var raw []float64
	maxDof, hasAw0, hasAwinf := 0, false, false
	for !r.EOF() {
		line := r.Next()
		f := r.Fields(line)
		if !f.IsFloat(3) {
			l.warnTrailing(r, line)
			break
		}
		freq, err := f.Float(0)
		if err != nil { return err }
		i, err := f.Int(1)
		if err != nil { return err }
		j, err := f.Int(2)
		if err != nil { return err }

		switch {
		case freq < 0:
			hasAw0 = true
		case freq == 0:
			hasAwinf = true
		default:
			raw = numeric.FindAdd(raw, freq)
		}
		maxDof = maxInt(maxDof, i, j)
	}
	if maxDof == 0 { return errEmpty }

	hd := l.hd
	if err := hd.SetNb(bodies(maxDof)); err != nil {
		return hydro.Locate(err, file, 0, "")
	}
	hd.InitBodies()
	if len(raw) > 0 {
		if err := hd.SetNf(len(raw)); err != nil {
			return hydro.Locate(err, file, 0, "")
		}
		w, T, fromW, err := l.firstColumn(raw)
		if err != nil { return err }
		if err := hd.SetAxis(w, T, fromW, 0.001); err != nil {
			return hydro.Locate(err, file, 0, "")
		}
		hd.InitAB()
	}
	if hasAw0 { hd.InitAw0() }
	if hasAwinf { hd.InitAwinf() }
	l.setLen()

	r.Seek(start)
	for !r.EOF() {
		f := r.Fields(r.Next())
		if !f.IsFloat(3) { break }
		freq, _ := f.Float(0)
		i, _ := f.Int(1)
		j, _ := f.Int(2)
		a, _ := f.Float(3)
		if i, err = l.dofIndex(i); err != nil { return r.Locate(err) }
		if j, err = l.dofIndex(j); err != nil { return r.Locate(err) }

		switch {
		case freq < 0:
			hd.Aw0[i][j] = hydro.Some(a)
		case freq == 0:
			hd.Awinf[i][j] = hydro.Some(a)
		default:
			ifr := numeric.FindRatio(raw, freq, 0.001)
			if ifr < 0 { return r.Locate(l.unknownAxis(hd.DataFromW, freq)) }
			b, err := f.Float(4)
			if err != nil { return err }
			hd.A[i][j][ifr] = hydro.Some(a)
			hd.B[i][j][ifr] = hydro.Some(b)
		}
	}
	return nil
}

// loadForces reads excitation forces (.2, .3) or RAOs (.4). ratio is the
// tolerance used when comparing the axis with the one already loaded.
func (l *loader) loadForces(file string, forces *hydro.Forces, ratio float64) error {
	r, err := readLines(file)
	if err != nil { return err }
	if !r.skipHeader() { return errEmpty }
	start := r.Pos()

	var raw, heads []float64
	maxDof := 0
	for !r.EOF() {
		line := r.Next()
		f := r.Fields(line)
		if !f.IsFloat(3) {
			l.warnTrailing(r, line)
			break
		}
		freq, err := f.Float(0)
		if err != nil { return err }
		head, err := f.Float(1)
		if err != nil { return err }
		dof, err := f.Int(2)
		if err != nil { return err }
		raw = numeric.FindAdd(raw, freq)
		heads = numeric.FindAdd(heads, numeric.FixHeading(head))
		maxDof = maxInt(maxDof, dof)
	}
	if maxDof == 0 { return errEmpty }

	hd := l.hd
	if err := hd.SetNb(bodies(maxDof)); err != nil {
		return hydro.Locate(err, file, 0, "")
	}
	hd.InitBodies()
	if err := hd.SetHeadings(heads, 0.001); err != nil {
		return hydro.Locate(err, file, 0, "")
	}
	if err := hd.SetNf(len(raw)); err != nil {
		return hydro.Locate(err, file, 0, "")
	}
	w, T, fromW, err := l.firstColumn(raw)
	if err != nil { return err }
	if err := hd.SetAxis(w, T, fromW, ratio); err != nil {
		return hydro.Locate(err, file, 0, "")
	}
	hd.InitForces(forces)
	l.setLen()

	r.Seek(start)
	for !r.EOF() {
		f := r.Fields(r.Next())
		if !f.IsFloat(3) { break }
		var row [7]float64
		if err := f.Floats(0, row[:]); err != nil { return err }
		ifr := numeric.FindRatio(raw, row[0], 0.001)
		if ifr < 0 { return r.Locate(l.unknownAxis(hd.DataFromW, row[0])) }
		ih := hydro.HeadingIndex(hd.Head, numeric.FixHeading(row[1]), 0.001)
		if ih < 0 {
			return r.Locate(&hydro.ConsistencyError{
				Field: "heading", Expected: hd.Head, Found: row[1],
			})
		}
		idof, err := l.dofIndex(int(row[2]))
		if err != nil { return r.Locate(err) }
		forces.Set(ih, ifr, idof, row[3], row[4]*math.Pi/180, row[5], row[6])
	}
	return nil
}

// loadForceFile reads the scattering (.3sc) or Froude-Krylov (.3fk)
// companion of a .out file. The axes must already be known.
func (l *loader) loadForceFile(file string, forces *hydro.Forces) error {
	r, err := readLines(file)
	if err != nil { return err }
	hd := l.hd
	if hd.Nf == 0 || hd.Nh == 0 {
		return fmt.Errorf(
			"%s can only be read after the frequencies and headings are known.",
			file,
		)
	}
	if !r.skipHeader() { return errEmpty }
	hd.InitForces(forces)
	axis := hd.T
	if hd.DataFromW { axis = hd.W }

	for !r.EOF() {
		f := r.Fields(r.Next())
		if !f.IsFloat(3) { break }
		var row [7]float64
		if err := f.Floats(0, row[:]); err != nil { return err }
		ifr := numeric.FindRatio(axis, row[0], 0.001)
		if ifr < 0 { return r.Locate(l.unknownAxis(hd.DataFromW, row[0])) }
		ih := hydro.HeadingIndex(hd.Head, numeric.FixHeading(row[1]), 0.001)
		if ih < 0 {
			return r.Locate(&hydro.ConsistencyError{
				Field: "heading", Expected: hd.Head, Found: row[1],
			})
		}
		idof, err := l.dofIndex(int(row[2]))
		if err != nil { return r.Locate(err) }
		forces.Set(ih, ifr, idof, row[3], row[4]*math.Pi/180, row[5], row[6])
	}
	return nil
}

// loadHst reads the restoring matrix. Cross-body terms are ignored.
func (l *loader) loadHst(file string) error {
	if _, err := os.Stat(file); err != nil { return err }
	cols, err := table.ReadTable(file, []int{0, 1, 2}, nil)
	if err != nil { return fmt.Errorf("Could not read %s: %w", file, err) }
	is, js, cs := cols[0], cols[1], cols[2]
	if len(is) == 0 { return errEmpty }

	maxDof := 0
	for k := range is { maxDof = maxInt(maxDof, int(is[k]), int(js[k])) }

	hd := l.hd
	if err := hd.SetNb(bodies(maxDof)); err != nil {
		return hydro.Locate(err, file, 0, "")
	}
	hd.InitBodies()
	hd.InitC()
	l.setLen()

	for k := range is {
		i, err := l.dofIndex(int(is[k]))
		if err != nil { return hydro.Locate(err, file, 0, "") }
		j, err := l.dofIndex(int(js[k]))
		if err != nil { return hydro.Locate(err, file, 0, "") }
		if i/6 != j/6 { continue }
		hd.C[i/6][i%6][j%6] = hydro.Some(cs[k])
	}
	return nil
}

// loadCfg takes the description from the first line and IPEROUT from an
// "IPEROUT = n" line.
func (l *loader) loadCfg(file string) error {
	r, err := readLines(file)
	if err != nil { return err }
	l.hd.Description = strings.TrimSpace(r.Next())
	for !r.EOF() {
		line := r.Next()
		key, val, ok := strings.Cut(line, "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "IPEROUT") {
			continue
		}
		f := r.Fields(strings.TrimSpace(val))
		n, err := f.Int(0)
		if err != nil { return err }
		l.iperout = n
	}
	return nil
}

// loadPot takes the water depth from the second line.
func (l *loader) loadPot(file string) error {
	r, err := readLines(file)
	if err != nil { return err }
	r.Skip(1)
	h, err := r.Fields(r.Next()).Float(0)
	if err != nil { return err }
	if h < 0 { h = -1 }
	l.hd.H = hydro.Some(h)
	return nil
}

// loadGdf takes the length scale and gravity from the second line.
func (l *loader) loadGdf(file string) error {
	r, err := readLines(file)
	if err != nil { return err }
	r.Skip(1)
	f := r.Fields(r.Next())
	length, err := f.Float(0)
	if err != nil { return err }
	g, err := f.Float(1)
	if err != nil { return err }
	l.hd.Len, l.hd.G = hydro.Some(length), hydro.Some(g)
	return nil
}

func (l *loader) warnTrailing(r *lineReader, line string) {
	if strings.TrimSpace(line) == "" { return }
	n, _ := r.current()
	l.Log.Info("Warning: unexpected data before the end of the file",
		"file", r.file, "line", n)
}

func maxInt(x int, ys ...int) int {
	for _, y := range ys {
		if y > x { x = y }
	}
	return x
}
