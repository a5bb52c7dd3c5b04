package wamit

import (
	"bufio"
	"fmt"
	"math"
	"sort"

	"github.com/phil-mansfield/hydroconv/hydro"
)

// ascending returns the indices of w ordered by increasing frequency.
func ascending(w []float64) []int {
	order := make([]int, len(w))
	for i := range order { order[i] = i }
	sort.SliceStable(order, func(a, b int) bool { return w[order[a]] < w[order[b]] })
	return order
}

// firstColumnOut returns the values written in the first column of numeric
// files: periods if forceT is set or the data was read as periods.
func firstColumnOut(w, T []float64, fromW, forceT bool) []float64 {
	if fromW && !forceT { return w }
	return T
}

func needFrequencies(nf int) error {
	if nf < 2 {
		return fmt.Errorf("Not enough data to save (at least 2 frequencies).")
	}
	return nil
}

func (c *Codec) save1(hd *hydro.Hydro, file string, forceT bool) error {
	if err := needFrequencies(hd.Nf); err != nil { return err }
	fout, err := c.create(file)
	if err != nil { return err }
	defer fout.Close()
	w := bufio.NewWriter(fout)

	limits := []struct {
		a    [][]hydro.Opt
		per  float64
		ndim func(i, j int) float64
	}{{hd.Aw0, -1, hd.NdimAw0}, {hd.Awinf, 0, hd.NdimAwinf}}
	for _, lim := range limits {
		for i := range lim.a {
			for j := range lim.a[i] {
				if !lim.a[i][j].Ok { continue }
				fmt.Fprintf(w, " %s %5d %5d %s\n",
					wam(lim.per), i+1, j+1, wam(lim.ndim(i, j)))
			}
		}
	}

	data := firstColumnOut(hd.W, hd.T, hd.DataFromW, forceT)
	for _, ifr := range ascending(hd.W) {
		for i := range hd.A {
			for j := range hd.A[i] {
				if !hd.A[i][j][ifr].Ok || !hd.B[i][j][ifr].Ok { continue }
				fmt.Fprintf(w, " %s %5d %5d %s %s\n", wam(data[ifr]), i+1, j+1,
					wam(hd.NdimA(ifr, i, j)), wam(hd.NdimB(ifr, i, j)))
			}
		}
	}

	if err := w.Flush(); err != nil { return err }
	return fout.Close()
}

// saveForces writes excitation forces (.3) or RAOs (.4). Phases are written
// in degrees.
func (c *Codec) saveForces(hd *hydro.Hydro, f *hydro.Forces, file string, forceT bool) error {
	if err := needFrequencies(hd.Nf); err != nil { return err }
	fout, err := c.create(file)
	if err != nil { return err }
	defer fout.Close()
	w := bufio.NewWriter(fout)

	data := firstColumnOut(hd.W, hd.T, hd.DataFromW, forceT)
	for _, ifr := range ascending(hd.W) {
		for ih := 0; ih < hd.Nh; ih++ {
			for idof := range f.Ma[ih][ifr] {
				if !f.Ma[ih][ifr][idof].Ok { continue }
				ma, re, im := hd.NdimForce(f, ih, ifr, idof)
				fmt.Fprintf(w, " %s %s %5d %s %s %s %s\n",
					wam(data[ifr]), wam(hd.Head[ih]), idof+1, wam(ma),
					wam(f.Ph[ih][ifr][idof].Val*180/math.Pi), wam(re), wam(im))
			}
		}
	}

	if err := w.Flush(); err != nil { return err }
	return fout.Close()
}

func (c *Codec) saveHst(hd *hydro.Hydro, file string) error {
	fout, err := c.create(file)
	if err != nil { return err }
	defer fout.Close()
	w := bufio.NewWriter(fout)

	for ib := range hd.C {
		for i := 0; i < 6; i++ {
			for j := 0; j < 6; j++ {
				if !hd.C[ib][i][j].Ok { continue }
				fmt.Fprintf(w, " %5d %5d  %s\n", 6*ib+i+1, 6*ib+j+1, wam(hd.NdimC(ib, i, j)))
			}
		}
	}

	if err := w.Flush(); err != nil { return err }
	return fout.Close()
}
