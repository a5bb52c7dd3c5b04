/*Package hydroconv merges BEM solver result files into a single dataset and
writes it back out in the WAMIT formats.*/
package hydroconv

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"

	"github.com/phil-mansfield/hydroconv/hydro"
	"github.com/phil-mansfield/hydroconv/wamit"
)

// Manager assembles one dataset from a list of result files.
type Manager struct {
	Codec *wamit.Codec
	Log   logr.Logger
}

func NewManager(log logr.Logger) *Manager {
	return &Manager{Codec: wamit.NewCodec(log), Log: log}
}

// Load reads the first file together with its siblings, then adds each of
// the remaining files on its own. The counts of later files must agree
// with those already read.
func (man *Manager) Load(files []string) (*hydro.Hydro, error) {
	if len(files) == 0 { return nil, fmt.Errorf("No input files given.") }
	for _, file := range files {
		if !wamit.IsWamitFile(file) && !isExtraFile(file) {
			return nil, fmt.Errorf("Cannot read the format of %s.", file)
		}
	}

	hd, err := man.Codec.Load(files[0])
	if err != nil { return nil, err }
	for _, file := range files[1:] {
		man.Log.V(1).Info("Adding file", "file", file)
		if err := man.Codec.LoadFile(hd, file); err != nil { return nil, err }
	}
	return hd, nil
}

func isExtraFile(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".3sc", ".3fk", ".cfg", ".pot", ".gdf":
		return true
	}
	return false
}

// Save writes hd to file: a .out report if file has that extension and the
// numeric files otherwise.
func (man *Manager) Save(hd *hydro.Hydro, file string, forceT bool, qtfHeading int) error {
	if strings.ToLower(filepath.Ext(file)) == ".out" {
		return man.Codec.SaveOut(hd, file)
	}
	return man.Codec.Save(hd, file, forceT, qtfHeading)
}

type summaryRow struct {
	label, value string
}

func yesNo(b bool) string {
	if b { return "yes" }
	return "no"
}

func axisRange(xs []float64, unit string) string {
	if len(xs) == 0 { return "-" }
	lo, hi := xs[0], xs[0]
	for _, x := range xs {
		if x < lo { lo = x }
		if x > hi { hi = x }
	}
	return fmt.Sprintf("%d values, %.4g to %.4g %s", len(xs), lo, hi, unit)
}

func depth(hd *hydro.Hydro) string {
	switch {
	case hd.H.IsNull():
		return "-"
	case hd.H.Val < 0:
		return "infinite"
	}
	return fmt.Sprintf("%g m", hd.H.Val)
}

func summaryRows(hd *hydro.Hydro) []summaryRow {
	rows := []summaryRow{
		{"Name", hd.Name},
		{"File", hd.File},
		{"Solver", hd.Code.String()},
		{"Bodies", fmt.Sprintf("%d", hd.Nb)},
		{"Depth", depth(hd)},
		{"g", hd.G.String()},
		{"rho", hd.Rho.String()},
		{"Length", hd.Len.String()},
		{"Dimensional", yesNo(hd.Dimen)},
		{"Frequencies", axisRange(hd.W, "rad/s")},
		{"Headings", axisRange(hd.Head, "deg")},
	}
	if hd.Description != "" {
		rows = append(rows, summaryRow{"Description", hd.Description})
	}

	loaded := []struct {
		label string
		ok    bool
	}{
		{"Added mass", hd.IsLoadedA()},
		{"Radiation damping", hd.IsLoadedB()},
		{"Zero freq. added mass", hd.IsLoadedAw0()},
		{"Inf. freq. added mass", hd.IsLoadedAwinf()},
		{"Hydrostatic restoring", hd.IsLoadedC()},
		{"Excitation", hd.IsLoadedFex()},
		{"Scattering", hd.IsLoadedFsc()},
		{"Froude-Krylov", hd.IsLoadedFfk()},
		{"RAO", hd.IsLoadedRAO()},
	}
	for _, l := range loaded {
		rows = append(rows, summaryRow{l.label, yesNo(l.ok)})
	}

	rows = append(rows,
		summaryRow{"QTF sum", fmt.Sprintf("%d entries", len(hd.QtfSum))},
		summaryRow{"QTF difference", fmt.Sprintf("%d entries", len(hd.QtfDif))},
	)
	if hd.IsLoadedQTF() {
		rows = append(rows, summaryRow{"QTF frequencies", axisRange(hd.QtfW, "rad/s")})
	}

	for ib := 0; ib < hd.Nb; ib++ {
		name := ""
		if ib < len(hd.Names) { name = hd.Names[ib] }
		value := name
		if ib < len(hd.Vo) && !hd.Vo[ib].IsNull() {
			value = fmt.Sprintf("%s volume %s", name, hd.Vo[ib])
		}
		if ib < len(hd.Cg) {
			cg := hd.Cg[ib]
			value = fmt.Sprintf("%s cg (%s, %s, %s)", value, cg[0], cg[1], cg[2])
		}
		rows = append(rows, summaryRow{fmt.Sprintf("Body %d", ib+1), strings.TrimSpace(value)})
	}
	return rows
}

// PrintSummary writes an aligned description of hd to w.
func PrintSummary(w io.Writer, hd *hydro.Hydro) error {
	rows := summaryRows(hd)
	width := 0
	for _, row := range rows {
		if len(row.label) > width { width = len(row.label) }
	}
	for _, row := range rows {
		_, err := fmt.Fprintf(w, "%-*s  %s\n", width+1, row.label+":", row.value)
		if err != nil { return err }
	}
	return nil
}
