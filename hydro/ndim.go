package hydro

import (
	"math"
)

// GOr returns the dataset's gravity, or DefaultG if it is unknown.
func (hd *Hydro) GOr() float64   { return hd.G.Or(DefaultG) }
func (hd *Hydro) RhoOr() float64 { return hd.Rho.Or(DefaultRho) }
func (hd *Hydro) LenOr() float64 { return hd.Len.Or(DefaultLen) }

// KAB returns the length exponent used to scale added mass and damping
// between global degrees of freedom i and j.
func KAB(i, j int) int {
	ri, rj := i%6 >= 3, j%6 >= 3
	switch {
	case !ri && !rj:
		return 3
	case ri && rj:
		return 5
	}
	return 4
}

// KC returns the length exponent used to scale restoring coefficient (i, j)
// of a body.
func KC(i, j int) int {
	if i > j { i, j = j, i }
	switch {
	case i == 2 && j == 2:
		return 2
	case i == 2 && (j == 3 || j == 4):
		return 3
	}
	return 4
}

// KF returns the length exponent used to scale a force on degree of freedom
// idof.
func KF(idof int) int {
	if idof%6 < 3 { return 2 }
	return 3
}

// KRAO returns the length exponent used to scale a RAO on degree of freedom
// idof.
func KRAO(idof int) int {
	if idof%6 < 3 { return 0 }
	return -1
}

func (hd *Hydro) pow(k int) float64 { return math.Pow(hd.LenOr(), float64(k)) }

func (hd *Hydro) ndimAB(a float64, i, j int) float64 {
	if !hd.Dimen { return a }
	return a / (hd.RhoOr() * hd.pow(KAB(i, j)))
}

// NdimA returns A[i][j][ifr] in non-dimensional form.
func (hd *Hydro) NdimA(ifr, i, j int) float64 {
	return hd.ndimAB(hd.A[i][j][ifr].Val, i, j)
}

// NdimB returns B[i][j][ifr] in non-dimensional form. Damping is also divided
// by the angular frequency.
func (hd *Hydro) NdimB(ifr, i, j int) float64 {
	b := hd.B[i][j][ifr].Val
	if !hd.Dimen { return b }
	return hd.ndimAB(b, i, j) / hd.W[ifr]
}

func (hd *Hydro) NdimAw0(i, j int) float64 {
	return hd.ndimAB(hd.Aw0[i][j].Val, i, j)
}

func (hd *Hydro) NdimAwinf(i, j int) float64 {
	return hd.ndimAB(hd.Awinf[i][j].Val, i, j)
}

// NdimC returns the restoring coefficient (i, j) of body ib in
// non-dimensional form.
func (hd *Hydro) NdimC(ib, i, j int) float64 {
	c := hd.C[ib][i][j].Val
	if !hd.Dimen { return c }
	return c / (hd.RhoOr() * hd.GOr() * hd.pow(KC(i, j)))
}

// NdimF returns a force component on degree of freedom idof in
// non-dimensional form. It is used for magnitudes, real and imaginary parts,
// never for phases.
func (hd *Hydro) NdimF(f float64, idof int) float64 {
	if !hd.Dimen { return f }
	return f / (hd.RhoOr() * hd.GOr() * hd.pow(KF(idof)))
}

// NdimRAO returns a RAO component on degree of freedom idof in
// non-dimensional form.
func (hd *Hydro) NdimRAO(r float64, idof int) float64 {
	if !hd.Dimen { return r }
	return r / hd.pow(KRAO(idof))
}

// NdimForce returns the non-dimensional magnitude, real and imaginary part
// of one entry of f, using the RAO scaling for RAO sets.
func (hd *Hydro) NdimForce(f *Forces, ih, ifr, idof int) (ma, re, im float64) {
	scale := hd.NdimF
	if f.Kind == RAO { scale = hd.NdimRAO }
	return scale(f.Ma[ih][ifr][idof].Val, idof),
		scale(f.Re[ih][ifr][idof].Val, idof),
		scale(f.Im[ih][ifr][idof].Val, idof)
}
