package mesh

import (
	"bufio"
	"fmt"
	"os"
)

// readDat reads a NEMOH mesh: a "2 isym" line, "id x y z" node lines closed
// by a zero id, and four node ids per panel closed by a line of zeros. isym
// marks symmetry about the x0z plane.
func readDat(file string) (*Mesh, error) {
	t, err := readText(file)
	if err != nil { return nil, err }

	var header [2]int
	if err := t.Ints(t.NextData(), 0, header[:]); err != nil { return nil, err }
	m := &Mesh{SymY: header[1] != 0}

	ids := map[int]int{}
	for {
		fs := t.NextData()
		if fs == nil { return nil, t.Errorf("Unterminated node list.") }
		var id [1]int
		if err := t.Ints(fs, 0, id[:]); err != nil { return nil, err }
		if id[0] == 0 { break }
		var v Vec
		if err := t.Floats(fs, 1, v[:]); err != nil { return nil, err }
		ids[id[0]] = len(m.Nodes)
		m.Nodes = append(m.Nodes, v)
	}

	for {
		fs := t.NextData()
		if fs == nil { break }
		var vs [4]int
		if err := t.Ints(fs, 0, vs[:]); err != nil { return nil, err }
		if vs == [4]int{} { break }
		var p [4]int
		for j, id := range vs {
			idx, ok := ids[id]
			if !ok { return nil, t.Errorf("Node %d is not defined.", id) }
			p[j] = idx
		}
		m.Panels = append(m.Panels, p)
	}
	return m, nil
}

func writeDat(file string, m *Mesh) error {
	if m.SymX {
		return fmt.Errorf("NEMOH meshes cannot be symmetric about the y0z plane.")
	}
	f, err := os.Create(file)
	if err != nil { return err }
	defer f.Close()
	w := bufio.NewWriter(f)

	fmt.Fprintf(w, "    2 %d\n", flag(m.SymY))
	for i, v := range m.Nodes {
		fmt.Fprintf(w, "%10d %14.6f %14.6f %14.6f\n", i+1, v[0], v[1], v[2])
	}
	fmt.Fprintf(w, "%10d %14.6f %14.6f %14.6f\n", 0, 0.0, 0.0, 0.0)
	for _, p := range m.Panels {
		fmt.Fprintf(w, "%10d %10d %10d %10d\n", p[0]+1, p[1]+1, p[2]+1, p[3]+1)
	}
	fmt.Fprintf(w, "%10d %10d %10d %10d\n", 0, 0, 0, 0)

	if err := w.Flush(); err != nil { return err }
	return f.Close()
}
