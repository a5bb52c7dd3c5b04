package hydro

import (
	"fmt"
)

// Opt is a tensor cell which may be unset. Its zero value is Null, so freshly
// allocated tensors start out empty rather than zero: zero is a valid
// coefficient.
type Opt struct {
	Val float64
	Ok  bool
}

// Null is the unset cell.
var Null = Opt{}

// Some returns a set cell holding x.
func Some(x float64) Opt { return Opt{x, true} }

func (o Opt) IsNull() bool { return !o.Ok }

// Or returns the held value, or def if the cell is unset.
func (o Opt) Or(def float64) float64 {
	if o.Ok { return o.Val }
	return def
}

func (o Opt) String() string {
	if !o.Ok { return "null" }
	return fmt.Sprintf("%g", o.Val)
}

// Matrix6 is a 6x6 per-body matrix of optional values.
type Matrix6 [6][6]Opt

func newOptGrid(rows, cols int) [][]Opt {
	out := make([][]Opt, rows)
	for i := range out { out[i] = make([]Opt, cols) }
	return out
}

func newOptCube(n0, n1, n2 int) [][][]Opt {
	out := make([][][]Opt, n0)
	for i := range out { out[i] = newOptGrid(n1, n2) }
	return out
}

func anySet(xs []Opt) bool {
	for _, x := range xs {
		if x.Ok { return true }
	}
	return false
}
