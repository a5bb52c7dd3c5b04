package hydro

import (
	"math"
	"sort"
)

// QTFKey identifies one second-order entry: the body, both heading indices and
// both frequency indices. Indices refer to the QTF axes of the dataset
// (QtfHead, QtfW), not to the first-order ones.
type QTFKey struct {
	Body   int
	H1, H2 int
	F1, F2 int
}

// QTF holds the six per-DOF force components of one key. Phases are in
// radians.
type QTF struct {
	Ma, Ph, Re, Im [6]Opt
}

// Set stores the components of local degree of freedom idof.
func (q *QTF) Set(idof int, ma, ph, re, im float64) {
	q.Ma[idof], q.Ph[idof] = Some(ma), Some(ph)
	q.Re[idof], q.Im[idof] = Some(re), Some(im)
}

// Consistent reports whether component idof satisfies the phase relations
// within PhaseTolerance.
func (q *QTF) Consistent(idof int) (dRe, dIm float64, ok bool) {
	ma, ph := q.Ma[idof].Val, q.Ph[idof].Val
	dRe = ma*math.Cos(ph) - q.Re[idof].Val
	dIm = ma*math.Sin(ph) - q.Im[idof].Val
	return dRe, dIm, math.Abs(dRe) <= PhaseTolerance &&
		math.Abs(dIm) <= PhaseTolerance
}

// QTFSet is a sum- or difference-frequency QTF store. Lookup is by exact key.
type QTFSet map[QTFKey]*QTF

func (s QTFSet) Get(key QTFKey) (*QTF, bool) {
	q, ok := s[key]
	return q, ok
}

// Ensure returns the entry for key, creating an empty one if needed.
func (s QTFSet) Ensure(key QTFKey) *QTF {
	if q, ok := s[key]; ok { return q }
	q := &QTF{}
	s[key] = q
	return q
}

// Keys returns the keys of the set in (Body, H1, H2, F1, F2) order.
func (s QTFSet) Keys() []QTFKey {
	keys := make([]QTFKey, 0, len(s))
	for k := range s { keys = append(keys, k) }
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		switch {
		case a.Body != b.Body:
			return a.Body < b.Body
		case a.H1 != b.H1:
			return a.H1 < b.H1
		case a.H2 != b.H2:
			return a.H2 < b.H2
		case a.F1 != b.F1:
			return a.F1 < b.F1
		}
		return a.F2 < b.F2
	})
	return keys
}
