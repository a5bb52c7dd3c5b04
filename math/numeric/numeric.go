/*Package numeric contains the small numerical helpers shared by the result
and case codecs: tolerant searches over axis values, frequency/period
conversion, linear spacing and the partitioning used to split a case into
parallel jobs.
*/
package numeric

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// PeriodToFreq converts a wave period in seconds to an angular frequency
// in rad/s.
func PeriodToFreq(T float64) float64 { return 2 * math.Pi / T }

// FreqToPeriod converts an angular frequency in rad/s to a period in
// seconds.
func FreqToPeriod(w float64) float64 { return 2 * math.Pi / w }

// EqualRatio returns true if a and b differ by less than ratio relative to
// their magnitude, or if both are within zero of each other.
func EqualRatio(a, b, ratio, zero float64) bool {
	return scalar.EqualWithinAbsOrRel(a, b, zero, ratio)
}

// EqualDecimals returns true if a and b agree when rounded to the given
// number of decimals.
func EqualDecimals(a, b float64, decimals int) bool {
	return scalar.Round(a, decimals) == scalar.Round(b, decimals)
}

// FindAdd appends val to xs unless an identical value is already present.
// Order of first appearance is kept.
func FindAdd(xs []float64, val float64) []float64 {
	for _, x := range xs {
		if x == val { return xs }
	}
	return append(xs, val)
}

// FindAddDelta is FindAdd with an absolute tolerance.
func FindAddDelta(xs []float64, val, delta float64) []float64 {
	for _, x := range xs {
		if math.Abs(x-val) <= delta { return xs }
	}
	return append(xs, val)
}

// FindRatio returns the index of the first element of xs equal to val within
// the relative tolerance ratio, or -1.
func FindRatio(xs []float64, val, ratio float64) int {
	for i, x := range xs {
		if EqualRatio(x, val, ratio, 0) { return i }
	}
	return -1
}

// FindClosest returns the index of the element of xs nearest to val, or -1
// if xs is empty.
func FindClosest(xs []float64, val float64) int {
	idx, minDist := -1, math.Inf(+1)
	for i, x := range xs {
		if d := math.Abs(x - val); d < minDist {
			idx, minDist = i, d
		}
	}
	return idx
}

// CompareRatio returns true if xs and ys have the same length and are
// element-wise equal within ratio.
func CompareRatio(xs, ys []float64, ratio float64) bool {
	if len(xs) != len(ys) { return false }
	for i := range xs {
		if !EqualRatio(xs[i], ys[i], ratio, 0) { return false }
	}
	return true
}

// FixHeading maps a heading in degrees onto (-180, 180], so that -180 and
// 180 name the same direction.
func FixHeading(head float64) float64 {
	head = math.Mod(head, 360)
	if head > 180 {
		head -= 360
	} else if head <= -180 {
		head += 360
	}
	return head
}

// LinSpaced returns n values evenly spaced over [min, max]. A single value
// is min.
func LinSpaced(n int, min, max float64) []float64 {
	switch {
	case n <= 0:
		return []float64{}
	case n == 1:
		return []float64{min}
	}
	return floats.Span(make([]float64, n), min, max)
}

// NumSets splits num items into sets contiguous blocks. The first num % sets
// blocks receive one extra item, so the sizes sum to num and differ by at
// most one.
func NumSets(num, sets int) []int {
	if sets <= 0 { return nil }
	out := make([]int, sets)
	delta, rem := num/sets, num%sets
	for i := range out {
		out[i] = delta
		if i < rem { out[i]++ }
	}
	return out
}

// DeepWaterFreq converts a non-dimensional infinite-depth wavenumber KL into
// an angular frequency.
func DeepWaterFreq(KL, g, length float64) float64 {
	return math.Sqrt(KL * g / length)
}

// FiniteDepthFreq converts a non-dimensional finite-depth wavenumber nuL into
// an angular frequency through the dispersion relation
// w^2 = g*nu*tanh(nu*h), with nu = nuL/length.
func FiniteDepthFreq(nuL, g, length, h float64) (float64, error) {
	nu := nuL / length
	w2 := g * nu * math.Tanh(nu*h)
	if w2 < 0 || math.IsNaN(w2) || math.IsInf(w2, 0) {
		return 0, fmt.Errorf(
			"Wavenumber %g has no real frequency at depth %g.", nuL, h,
		)
	}
	return math.Sqrt(w2), nil
}
