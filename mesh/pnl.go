package mesh

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

func readPnl(file string) (*Mesh, error) {
	t, err := readText(file)
	if err != nil { return nil, err }

	if !t.Find("Number of Panels") {
		return nil, t.Errorf("Panel and node counts not found.")
	}
	var header [4]int
	if err := t.Ints(t.NextData(), 0, header[:]); err != nil { return nil, err }
	npan, nnode := header[0], header[1]
	m := &Mesh{SymX: header[2] != 0, SymY: header[3] != 0}

	if !t.Find("#Start Definition of Node Coordinates") {
		return nil, t.Errorf("Node coordinates not found.")
	}
	ids := make(map[int]int, nnode)
	for {
		fs := t.NextData()
		if fs == nil { return nil, t.Errorf("Unterminated node coordinates.") }
		if strings.HasPrefix(fs[0], "#End") { break }
		var id [1]int
		var v Vec
		if err := t.Ints(fs, 0, id[:]); err != nil { return nil, err }
		if err := t.Floats(fs, 1, v[:]); err != nil { return nil, err }
		ids[id[0]] = len(m.Nodes)
		m.Nodes = append(m.Nodes, v)
	}

	if !t.Find("#Start Definition of Node Relations") {
		return nil, t.Errorf("Panel definitions not found.")
	}
	for {
		fs := t.NextData()
		if fs == nil { return nil, t.Errorf("Unterminated panel definitions.") }
		if strings.HasPrefix(fs[0], "#End") { break }
		var head [2]int
		if err := t.Ints(fs, 0, head[:]); err != nil { return nil, err }
		nv := head[1]
		if nv != 3 && nv != 4 {
			return nil, t.Errorf("Panels must have 3 or 4 vertices, not %d.", nv)
		}
		vs := make([]int, nv)
		if err := t.Ints(fs, 2, vs); err != nil { return nil, err }
		var p [4]int
		for j := range p {
			id := vs[nv-1]
			if j < nv { id = vs[j] }
			idx, ok := ids[id]
			if !ok { return nil, t.Errorf("Node %d is not defined.", id) }
			p[j] = idx
		}
		m.Panels = append(m.Panels, p)
	}

	if len(m.Nodes) != nnode || len(m.Panels) != npan {
		return nil, fmt.Errorf(
			"%s: header gives %d panels and %d nodes, but %d and %d were read.",
			file, npan, nnode, len(m.Panels), len(m.Nodes),
		)
	}
	return m, nil
}

func flag(b bool) int {
	if b { return 1 }
	return 0
}

func writePnl(file string, m *Mesh) error {
	f, err := os.Create(file)
	if err != nil { return err }
	defer f.Close()
	w := bufio.NewWriter(f)

	fmt.Fprintf(w, "    --------------Hull Mesh File---------------\n\n")
	fmt.Fprintf(w, "    # Number of Panels, Nodes, X-Symmetry and Y-Symmetry\n")
	fmt.Fprintf(w, "    %8d    %8d    %8d    %8d\n\n",
		len(m.Panels), len(m.Nodes), flag(m.SymX), flag(m.SymY))

	fmt.Fprintf(w, "    #Start Definition of Node Coordinates     ! node_number   x   y   z\n")
	for i, v := range m.Nodes {
		fmt.Fprintf(w, "%8d %18.6f %18.6f %18.6f\n", i+1, v[0], v[1], v[2])
	}
	fmt.Fprintf(w, "    #End Definition of Node Coordinates\n\n")

	fmt.Fprintf(w, "    #Start Definition of Node Relations   ! panel_number  "+
		"number_of_vertices   Vertex1_ID   Vertex2_ID   Vertex3_ID   (Vertex4_ID)\n")
	for i, p := range m.Panels {
		if m.IsTriangle(i) {
			fmt.Fprintf(w, "%8d %4d %8d %8d %8d\n", i+1, 3, p[0]+1, p[1]+1, p[2]+1)
		} else {
			fmt.Fprintf(w, "%8d %4d %8d %8d %8d %8d\n",
				i+1, 4, p[0]+1, p[1]+1, p[2]+1, p[3]+1)
		}
	}
	fmt.Fprintf(w, "    #End Definition of Node Relations\n\n")
	fmt.Fprintf(w, "    --------------End Hull Mesh File---------------\n")

	if err := w.Flush(); err != nil { return err }
	return f.Close()
}
