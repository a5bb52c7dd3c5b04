package mesh

import (
	"bufio"
	"fmt"
	"os"
)

// readGdf reads a low-order WAMIT geometric data file: a title line, ULEN
// and GRAV, ISX and ISY, the panel count, and then the four vertices of
// every panel as a free-format stream of coordinates. Shared vertices are
// merged into single nodes.
func readGdf(file string) (*Mesh, error) {
	t, err := readText(file)
	if err != nil { return nil, err }
	t.Next()
	t.NextData()

	var sym [2]int
	if err := t.Ints(t.NextData(), 0, sym[:]); err != nil { return nil, err }
	var npan [1]int
	if err := t.Ints(t.NextData(), 0, npan[:]); err != nil { return nil, err }
	m := &Mesh{SymX: sym[0] != 0, SymY: sym[1] != 0}

	var xs []float64
	for len(xs) < 12*npan[0] {
		fs := t.NextData()
		if fs == nil {
			return nil, t.Errorf("Expected %d panels, found %d.", npan[0], len(xs)/12)
		}
		row := make([]float64, len(fs))
		if err := t.Floats(fs, 0, row); err != nil { return nil, err }
		xs = append(xs, row...)
	}

	index := make(map[Vec]int, 4*npan[0])
	for i := 0; i < npan[0]; i++ {
		var p [4]int
		for j := range p {
			k := 12*i + 3*j
			p[j] = m.addNode(index, Vec{xs[k], xs[k+1], xs[k+2]})
		}
		// Degenerate quadrilaterals are triangles with a doubled vertex.
		switch {
		case p[3] == p[0]:
			p[3] = p[2]
		case p[1] == p[0]:
			p = [4]int{p[0], p[2], p[3], p[3]}
		case p[2] == p[1]:
			p = [4]int{p[0], p[1], p[3], p[3]}
		}
		m.Panels = append(m.Panels, p)
	}
	return m, nil
}

func writeGdf(file string, m *Mesh) error {
	f, err := os.Create(file)
	if err != nil { return err }
	defer f.Close()
	w := bufio.NewWriter(f)

	fmt.Fprintf(w, "hydroconv mesh\n")
	fmt.Fprintf(w, "  1.0  9.80665     ULEN GRAV\n")
	fmt.Fprintf(w, "  %d  %d     ISX ISY\n", flag(m.SymX), flag(m.SymY))
	fmt.Fprintf(w, "  %d\n", len(m.Panels))
	for _, p := range m.Panels {
		for _, n := range p {
			v := m.Nodes[n]
			fmt.Fprintf(w, "  %14.6f %14.6f %14.6f\n", v[0], v[1], v[2])
		}
	}

	if err := w.Flush(); err != nil { return err }
	return f.Close()
}
