package mesh

import (
	"math"
)

// Vec is a point or displacement in body coordinates.
type Vec [3]float64

func (v Vec) Sub(u Vec) Vec { return Vec{v[0] - u[0], v[1] - u[1], v[2] - u[2]} }

func (v Vec) Dot(u Vec) float64 { return v[0]*u[0] + v[1]*u[1] + v[2]*u[2] }

func (v Vec) Cross(u Vec) Vec {
	return Vec{
		v[1]*u[2] - v[2]*u[1],
		v[2]*u[0] - v[0]*u[2],
		v[0]*u[1] - v[1]*u[0],
	}
}

// signedVolume is the volume of the tetrahedron c1 c2 c3 c4, positive when
// c2 c3 c4 wind counter-clockwise seen from c1.
func signedVolume(c1, c2, c3, c4 Vec) float64 {
	return c2.Sub(c1).Dot(c3.Sub(c1).Cross(c4.Sub(c1))) / 6.0
}

// triangles calls f on each triangle of a panel. Quadrilaterals are split
// along the 0-2 diagonal.
func (m *Mesh) triangles(i int, f func(a, b, c Vec)) {
	p := m.Panels[i]
	f(m.Nodes[p[0]], m.Nodes[p[1]], m.Nodes[p[2]])
	if !m.IsTriangle(i) {
		f(m.Nodes[p[0]], m.Nodes[p[2]], m.Nodes[p[3]])
	}
}

// Volume returns the volume enclosed by the mesh and the waterplane, taking
// stored symmetries into account. It sums the tetrahedra spanned by each
// triangle and a point on the waterplane, which the open lid contributes
// nothing to.
func (m *Mesh) Volume() float64 {
	var origin Vec
	vol := 0.0
	for i := range m.Panels {
		m.triangles(i, func(a, b, c Vec) {
			vol += signedVolume(origin, a, b, c)
		})
	}
	if m.SymX { vol *= 2 }
	if m.SymY { vol *= 2 }
	return math.Abs(vol)
}

// Area returns the wetted surface of the stored panels.
func (m *Mesh) Area() float64 {
	area := 0.0
	for i := range m.Panels {
		m.triangles(i, func(a, b, c Vec) {
			n := b.Sub(a).Cross(c.Sub(a))
			area += math.Sqrt(n.Dot(n)) / 2
		})
	}
	return area
}

// Bounds returns the corners of the axis-aligned box containing every node.
func (m *Mesh) Bounds() (min, max Vec) {
	if len(m.Nodes) == 0 { return min, max }
	min, max = m.Nodes[0], m.Nodes[0]
	for _, v := range m.Nodes[1:] {
		for k := 0; k < 3; k++ {
			min[k], max[k] = minMax(v[k], min[k], max[k])
		}
	}
	return min, max
}

func minMax(x, oldMin, oldMax float64) (min, max float64) {
	if x > oldMax {
		return oldMin, x
	} else if x < oldMin {
		return x, oldMax
	} else {
		return oldMin, oldMax
	}
}

// Unfold returns a copy of the mesh with the requested stored symmetries
// mirrored into explicit panels.
func (m *Mesh) Unfold(x, y bool) *Mesh {
	out := &Mesh{
		Nodes:  append([]Vec(nil), m.Nodes...),
		Panels: append([][4]int(nil), m.Panels...),
		SymX:   m.SymX && !x,
		SymY:   m.SymY && !y,
	}
	if x && m.SymX { out.mirror(0) }
	if y && m.SymY { out.mirror(1) }
	return out
}

// mirror reflects every panel across the plane normal to axis k, reversing
// the winding so that normals keep pointing out of the body. Nodes on the
// plane are shared.
func (m *Mesh) mirror(k int) {
	index := make(map[Vec]int, 2*len(m.Nodes))
	for i, v := range m.Nodes { index[v] = i }
	panels := len(m.Panels)
	for i := 0; i < panels; i++ {
		p := m.Panels[i]
		var q [4]int
		for j := range p {
			v := m.Nodes[p[j]]
			v[k] = -v[k]
			q[j] = m.addNode(index, v)
		}
		if q[3] == q[2] {
			q = [4]int{q[0], q[2], q[1], q[1]}
		} else {
			q = [4]int{q[0], q[3], q[2], q[1]}
		}
		m.Panels = append(m.Panels, q)
	}
}
