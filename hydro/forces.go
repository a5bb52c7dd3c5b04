package hydro

import (
	"math"
)

// ForceKind identifies which wave-induced quantity a Forces value holds.
type ForceKind int

const (
	Excitation ForceKind = iota
	FroudeKrylov
	Scattering
	RAO
)

func (k ForceKind) String() string {
	switch k {
	case Excitation:
		return "excitation"
	case FroudeKrylov:
		return "Froude-Krylov"
	case Scattering:
		return "scattering"
	case RAO:
		return "RAO"
	}
	return "unknown"
}

// Forces holds one force set. Each of Ma, Ph, Re and Im is indexed as
// [heading][frequency][dof]. Phases are in radians.
type Forces struct {
	Kind           ForceKind
	Ma, Ph, Re, Im [][][]Opt
}

// PhaseTolerance is the largest allowed distance, in force units, between a
// stored real/imaginary part and the one implied by its magnitude and phase.
const PhaseTolerance = 0.1

func (f *Forces) IsLoaded() bool { return len(f.Ma) > 0 }

// Init allocates empty tensors for nh headings, nf frequencies and ndof
// degrees of freedom.
func (f *Forces) Init(nh, nf, ndof int) {
	f.Ma = newOptCube(nh, nf, ndof)
	f.Ph = newOptCube(nh, nf, ndof)
	f.Re = newOptCube(nh, nf, ndof)
	f.Im = newOptCube(nh, nf, ndof)
}

func (f *Forces) Clear() { f.Ma, f.Ph, f.Re, f.Im = nil, nil, nil, nil }

// Set stores all four components of one entry.
func (f *Forces) Set(ih, ifr, idof int, ma, ph, re, im float64) {
	f.Ma[ih][ifr][idof] = Some(ma)
	f.Ph[ih][ifr][idof] = Some(ph)
	f.Re[ih][ifr][idof] = Some(re)
	f.Im[ih][ifr][idof] = Some(im)
}

// SetPolar stores an entry given in magnitude and phase, deriving the real
// and imaginary parts.
func (f *Forces) SetPolar(ih, ifr, idof int, ma, ph float64) {
	f.Set(ih, ifr, idof, ma, ph, ma*math.Cos(ph), ma*math.Sin(ph))
}

// Consistent reports whether a stored entry satisfies re = ma cos(ph) and
// im = ma sin(ph) within PhaseTolerance. Unset entries are consistent.
func (f *Forces) Consistent(ih, ifr, idof int) bool {
	ma := f.Ma[ih][ifr][idof]
	if !ma.Ok { return true }
	ph := f.Ph[ih][ifr][idof].Val
	return math.Abs(ma.Val*math.Cos(ph)-f.Re[ih][ifr][idof].Val) <= PhaseTolerance &&
		math.Abs(ma.Val*math.Sin(ph)-f.Im[ih][ifr][idof].Val) <= PhaseTolerance
}

// resize grows the dof dimension to ndof, keeping stored entries.
func (f *Forces) resize(ndof int) {
	if !f.IsLoaded() { return }
	for _, t := range [][][][]Opt{f.Ma, f.Ph, f.Re, f.Im} {
		for ih := range t {
			for ifr := range t[ih] {
				row := make([]Opt, ndof)
				copy(row, t[ih][ifr])
				t[ih][ifr] = row
			}
		}
	}
}
