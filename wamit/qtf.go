package wamit

import (
	"bufio"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/phil-mansfield/hydroconv/hydro"
	"github.com/phil-mansfield/hydroconv/math/numeric"
)

// qtfDofOrder is the order in which DOFs are written in .12s/.12d files.
var qtfDofOrder = [6]int{0, 2, 4, 1, 3, 5}

// closest returns the index of the element of xs matching x within 1% (or
// 0.001 absolutely), or -1.
func closest(xs []float64, x float64) int {
	i := numeric.FindClosest(xs, x)
	if i < 0 || !numeric.EqualRatio(xs[i], x, 0.01, 0.001) { return -1 }
	return i
}

// load12 reads a sum (.12s) or difference (.12d) frequency QTF file. The
// columns are: freq1 freq2 head1 head2 dof mod phase re im. Phases are
// assumed to be in degrees if any of them is larger than pi.
func (l *loader) load12(file string, sum bool) error {
	r, err := readLines(file)
	if err != nil { return err }
	if !r.skipHeader() { return errEmpty }
	start := r.Pos()

	var raw, heads []float64
	maxDof, isRad := 0, true
	for !r.EOF() {
		f := r.Fields(r.Next())
		if f.Len() == 0 { continue }
		var row [9]float64
		if err := f.Floats(0, row[:]); err != nil { return err }
		raw = numeric.FindAdd(raw, row[0])
		raw = numeric.FindAdd(raw, row[1])
		row[2], row[3] = numeric.FixHeading(row[2]), numeric.FixHeading(row[3])
		heads = numeric.FindAdd(heads, row[2])
		heads = numeric.FindAdd(heads, row[3])
		maxDof = maxInt(maxDof, int(row[4]))
		if math.Abs(row[6]) > math.Pi+0.01 { isRad = false }
	}
	if maxDof == 0 { return errEmpty }

	hd := l.hd
	if err := hd.SetNb(bodies(maxDof)); err != nil {
		return hydro.Locate(err, file, 0, "")
	}
	hd.InitBodies()

	if len(hd.QtfHead) == 0 {
		hd.QtfHead = heads
	} else {
		for _, h := range heads {
			if hydro.HeadingIndex(hd.QtfHead, h, 0.001) < 0 {
				return &hydro.ConsistencyError{
					File: file, Field: "QTF heading", Expected: hd.QtfHead, Found: h,
				}
			}
		}
	}

	w, T, fromW, err := l.firstColumn(raw)
	if err != nil { return err }
	if len(hd.QtfW) == 0 {
		hd.QtfW, hd.QtfT, hd.QtfDataFromW = w, T, fromW
	} else if !numeric.CompareRatio(hd.QtfW, w, 0.01) {
		return &hydro.ConsistencyError{
			File: file, Field: "QTF frequencies", Expected: hd.QtfW, Found: w,
		}
	} else if !numeric.CompareRatio(hd.QtfT, T, 0.01) {
		return &hydro.ConsistencyError{
			File: file, Field: "QTF periods", Expected: hd.QtfT, Found: T,
		}
	}

	set := hd.InitQTF(sum)
	r.Seek(start)
	for !r.EOF() {
		f := r.Fields(r.Next())
		if f.Len() == 0 { continue }
		var row [9]float64
		if err := f.Floats(0, row[:]); err != nil { return err }
		row[2], row[3] = numeric.FixHeading(row[2]), numeric.FixHeading(row[3])

		var key hydro.QTFKey
		idx := []*int{&key.F1, &key.F2, &key.H1, &key.H2}
		for k, name := range []string{"frequency 1", "frequency 2", "heading 1", "heading 2"} {
			axis := raw
			if k >= 2 { axis = hd.QtfHead }
			if *idx[k] = closest(axis, row[k]); *idx[k] < 0 {
				return r.Locate(&hydro.ConsistencyError{
					Field: "QTF " + name, Expected: axis, Found: row[k],
				})
			}
		}
		idof, err := l.dofIndex(int(row[4]))
		if err != nil { return r.Locate(err) }
		key.Body = idof / 6

		ph := row[6]
		if !isRad { ph *= math.Pi / 180 }
		q := set.Ensure(key)
		q.Set(idof%6, row[5], ph, row[7], row[8])
		if dRe, dIm, ok := q.Consistent(idof % 6); !ok {
			field, expected, found := "QTF real part", row[7]+dRe, row[7]
			if math.Abs(dRe) <= hydro.PhaseTolerance {
				field, expected, found = "QTF imaginary part", row[8]+dIm, row[8]
			}
			return r.Locate(&hydro.ConsistencyError{
				Field: field, Expected: expected, Found: found,
			})
		}
	}
	return nil
}

// save12 writes one QTF store. If qtfHeading is not negative, only the
// entries whose two headings both have that index are written, with heading
// columns set to zero.
func (c *Codec) save12(
	hd *hydro.Hydro, file string, sum, forceT bool, qtfHeading int,
) error {
	if err := needFrequencies(len(hd.QtfW)); err != nil { return err }
	set := hd.QtfDif
	if sum { set = hd.QtfSum }

	fout, err := c.create(file)
	if err != nil { return err }
	defer fout.Close()
	w := bufio.NewWriter(fout)

	fmt.Fprintf(w, " WAMIT Numeric Output -- Filename  %-20s  %s\n",
		filepath.Base(file), time.Now().Format("2006-01-02 15:04:05"))

	data := firstColumnOut(hd.QtfW, hd.QtfT, hd.QtfDataFromW, forceT)
	order := ascending(hd.QtfW)
	nh := len(hd.QtfHead)
	for _, ifr1 := range order {
		for _, ifr2 := range order {
			for ih1 := 0; ih1 < nh; ih1++ {
				if qtfHeading >= 0 && ih1 != qtfHeading { continue }
				for ih2 := 0; ih2 < nh; ih2++ {
					if qtfHeading >= 0 && ih2 != qtfHeading { continue }
					h1, h2 := hd.QtfHead[ih1], hd.QtfHead[ih2]
					if qtfHeading >= 0 { h1, h2 = 0, 0 }
					for ib := 0; ib < hd.Nb; ib++ {
						q, ok := set.Get(hydro.QTFKey{
							Body: ib, H1: ih1, H2: ih2, F1: ifr1, F2: ifr2,
						})
						if !ok { continue }
						for _, idf := range qtfDofOrder {
							if !q.Ma[idf].Ok { continue }
							fmt.Fprintf(w, "   %s   %s   %s   %s   %2d   %s   %s   %s   %s\n",
								wam(data[ifr1]), wam(data[ifr2]), wam(h1), wam(h2),
								6*ib+idf+1,
								wam(hd.NdimF(q.Ma[idf].Val, idf)),
								wam(q.Ph[idf].Val*180/math.Pi),
								wam(hd.NdimF(q.Re[idf].Val, idf)),
								wam(hd.NdimF(q.Im[idf].Val, idf)))
						}
					}
				}
			}
		}
	}

	if err := w.Flush(); err != nil { return err }
	return fout.Close()
}
