/*Package hydro contains the in-memory representation of one BEM solver's
result set: frequency and heading axes, per-body geometry, radiation
coefficients, wave force sets and second-order transfer functions.

Tensors use global degree of freedom indices, d = 6*body + local, with local
running over surge, sway, heave, roll, pitch and yaw. Cells which have not
been loaded hold Null.
*/
package hydro

import (
	"path/filepath"
	"strings"

	"github.com/phil-mansfield/hydroconv/math/numeric"
)

// Code identifies the solver which produced a dataset.
type Code int

const (
	Unknown Code = iota
	Wamit
	Hams
	Nemoh
	NemohV115
	Capytaine
)

func (c Code) String() string {
	switch c {
	case Wamit:
		return "Wamit"
	case Hams:
		return "HAMS"
	case Nemoh:
		return "Nemoh"
	case NemohV115:
		return "Nemoh v115"
	case Capytaine:
		return "Capytaine"
	}
	return "Unknown"
}

const (
	DefaultG   = 9.81
	DefaultRho = 1000.0
	DefaultLen = 1.0
)

// Hydro is a hydrodynamic dataset. Counts are zero until a file establishes
// them and may then only be confirmed (Nf, Nh) or grown (Nb).
type Hydro struct {
	Code        Code
	File        string
	Name        string
	Description string

	Nb, Nf, Nh int
	// H is the water depth. Negative values mean infinite depth.
	G, Rho, Len, H Opt
	// Dimen is true when stored values are dimensional.
	Dimen bool
	// DataFromW is true when W, rather than T, is the authoritative axis.
	DataFromW bool

	W, T  []float64
	Head  []float64
	Names []string

	Cg, Cb [][3]Opt
	Vo     []Opt
	C      []Matrix6

	A, B       [][][]Opt // [d][d'][ifr]
	Aw0, Awinf [][]Opt   // [d][d']

	Ex, Sc, Fk, Rao Forces

	QtfSum, QtfDif QTFSet
	QtfW, QtfT     []float64
	QtfHead        []float64
	QtfDataFromW   bool
}

// New returns an empty dataset for the given solver and source file.
func New(code Code, file string) *Hydro {
	base := filepath.Base(file)
	hd := &Hydro{
		Code: code, File: file,
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
	}
	hd.Ex.Kind = Excitation
	hd.Sc.Kind = Scattering
	hd.Fk.Kind = FroudeKrylov
	hd.Rao.Kind = RAO
	return hd
}

// NDof returns the number of global degrees of freedom, 6*Nb.
func (hd *Hydro) NDof() int { return 6 * hd.Nb }

// SetNb establishes the body count. Growing the count resizes any tensor
// which has already been allocated; shrinking it is an error.
func (hd *Hydro) SetNb(nb int) error {
	if nb < hd.Nb {
		return &ConsistencyError{
			Field: "number of bodies", Expected: hd.Nb, Found: nb,
		}
	}
	if nb > hd.Nb {
		old := hd.Nb
		hd.Nb = nb
		hd.growBodies(old)
	}
	return nil
}

// SetNf establishes the frequency count.
func (hd *Hydro) SetNf(nf int) error {
	if hd.Nf != 0 && hd.Nf != nf {
		return &ConsistencyError{
			Field: "number of frequencies", Expected: hd.Nf, Found: nf,
		}
	}
	hd.Nf = nf
	return nil
}

// SetNh establishes the heading count.
func (hd *Hydro) SetNh(nh int) error {
	if hd.Nh != 0 && hd.Nh != nh {
		return &ConsistencyError{
			Field: "number of headings", Expected: hd.Nh, Found: nh,
		}
	}
	hd.Nh = nh
	return nil
}

// SetAxis establishes the frequency and period axes. If they are already
// known, the new ones must agree with them to within ratio. The direction of
// an established axis is kept.
func (hd *Hydro) SetAxis(w, T []float64, fromW bool, ratio float64) error {
	if len(hd.W) == 0 {
		hd.W, hd.T, hd.DataFromW = w, T, fromW
		return nil
	}
	if !numeric.CompareRatio(hd.W, w, ratio) {
		return &ConsistencyError{Field: "frequencies", Expected: hd.W, Found: w}
	}
	if !numeric.CompareRatio(hd.T, T, ratio) {
		return &ConsistencyError{Field: "periods", Expected: hd.T, Found: T}
	}
	return nil
}

// SetHeadings establishes the heading axis, or checks heads against it.
func (hd *Hydro) SetHeadings(heads []float64, ratio float64) error {
	if len(hd.Head) == 0 {
		hd.Head = heads
		return hd.SetNh(len(heads))
	}
	if len(heads) != len(hd.Head) {
		return &ConsistencyError{
			Field: "number of headings", Expected: len(hd.Head), Found: len(heads),
		}
	}
	for _, h := range heads {
		if HeadingIndex(hd.Head, h, ratio) < 0 {
			return &ConsistencyError{
				Field: "headings", Expected: hd.Head, Found: heads,
			}
		}
	}
	return nil
}

// HeadingIndex returns the index of the heading in heads matching h within
// ratio, or -1. Headings near zero are compared with an absolute floor.
func HeadingIndex(heads []float64, h, ratio float64) int {
	for i, x := range heads {
		if numeric.EqualRatio(x, h, ratio, 1e-4) { return i }
	}
	return -1
}

// InitBodies makes sure that the per-body slices have Nb entries.
func (hd *Hydro) InitBodies() {
	for len(hd.Names) < hd.Nb { hd.Names = append(hd.Names, "") }
}

// InitGeometry allocates empty Cg, Cb and Vo entries for every body.
func (hd *Hydro) InitGeometry() {
	hd.Cg = make([][3]Opt, hd.Nb)
	hd.Cb = make([][3]Opt, hd.Nb)
	hd.Vo = make([]Opt, hd.Nb)
}

// InitC allocates an empty restoring matrix for every body.
func (hd *Hydro) InitC() { hd.C = make([]Matrix6, hd.Nb) }

// InitAB allocates empty added mass and damping tensors.
func (hd *Hydro) InitAB() {
	hd.A = newOptCube(hd.NDof(), hd.NDof(), hd.Nf)
	hd.B = newOptCube(hd.NDof(), hd.NDof(), hd.Nf)
}

func (hd *Hydro) InitAw0()   { hd.Aw0 = newOptGrid(hd.NDof(), hd.NDof()) }
func (hd *Hydro) InitAwinf() { hd.Awinf = newOptGrid(hd.NDof(), hd.NDof()) }

// InitForces allocates empty tensors in f for the current axes.
func (hd *Hydro) InitForces(f *Forces) { f.Init(hd.Nh, hd.Nf, hd.NDof()) }

// InitQTF clears one of the QTF stores and returns it.
func (hd *Hydro) InitQTF(sum bool) QTFSet {
	if sum {
		hd.QtfSum = QTFSet{}
		return hd.QtfSum
	}
	hd.QtfDif = QTFSet{}
	return hd.QtfDif
}

func (hd *Hydro) IsLoadedA() bool     { return len(hd.A) > 0 }
func (hd *Hydro) IsLoadedB() bool     { return len(hd.B) > 0 }
func (hd *Hydro) IsLoadedAw0() bool   { return len(hd.Aw0) > 0 }
func (hd *Hydro) IsLoadedAwinf() bool { return len(hd.Awinf) > 0 }
func (hd *Hydro) IsLoadedC() bool     { return len(hd.C) > 0 }
func (hd *Hydro) IsLoadedFex() bool   { return hd.Ex.IsLoaded() }
func (hd *Hydro) IsLoadedFsc() bool   { return hd.Sc.IsLoaded() }
func (hd *Hydro) IsLoadedFfk() bool   { return hd.Fk.IsLoaded() }
func (hd *Hydro) IsLoadedRAO() bool   { return hd.Rao.IsLoaded() }

func (hd *Hydro) IsLoadedQTF() bool {
	return len(hd.QtfSum) > 0 || len(hd.QtfDif) > 0
}

// IsLoadedCg reports whether any centre of gravity has been read.
func (hd *Hydro) IsLoadedCg() bool {
	for _, cg := range hd.Cg {
		if anySet(cg[:]) { return true }
	}
	return false
}

// growBodies resizes allocated tensors after Nb has grown from old.
func (hd *Hydro) growBodies(old int) {
	ndof := hd.NDof()
	hd.InitBodies()
	if hd.IsLoadedA() { hd.A = growCube(hd.A, ndof, hd.Nf) }
	if hd.IsLoadedB() { hd.B = growCube(hd.B, ndof, hd.Nf) }
	if hd.IsLoadedAw0() { hd.Aw0 = growGrid(hd.Aw0, ndof) }
	if hd.IsLoadedAwinf() { hd.Awinf = growGrid(hd.Awinf, ndof) }
	if hd.IsLoadedC() {
		hd.C = append(hd.C, make([]Matrix6, hd.Nb-old)...)
	}
	if len(hd.Cg) > 0 {
		hd.Cg = append(hd.Cg, make([][3]Opt, hd.Nb-old)...)
		hd.Cb = append(hd.Cb, make([][3]Opt, hd.Nb-old)...)
		hd.Vo = append(hd.Vo, make([]Opt, hd.Nb-old)...)
	}
	for _, f := range []*Forces{&hd.Ex, &hd.Sc, &hd.Fk, &hd.Rao} {
		f.resize(ndof)
	}
}

func growGrid(g [][]Opt, n int) [][]Opt {
	out := newOptGrid(n, n)
	for i := range g { copy(out[i], g[i]) }
	return out
}

func growCube(c [][][]Opt, n, nf int) [][][]Opt {
	out := newOptCube(n, n, nf)
	for i := range c {
		for j := range c[i] { copy(out[i][j], c[i][j]) }
	}
	return out
}
