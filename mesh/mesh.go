/*Package mesh reads and writes the panel meshes handed to BEM solvers: HAMS
.pnl files, NEMOH .dat files and WAMIT .gdf files.

A Mesh stores a de-duplicated node list and quadrilateral panels. Triangles
are stored as quadrilaterals whose fourth vertex repeats the third.
*/
package mesh

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
)

// Format is a mesh file format.
type Format int

const (
	Unknown Format = iota
	// Pnl is the HAMS panel format.
	Pnl
	// Dat is the NEMOH mesh format.
	Dat
	// Gdf is the WAMIT geometric data file.
	Gdf
)

func (f Format) String() string {
	switch f {
	case Pnl: return "HAMS .pnl"
	case Dat: return "NEMOH .dat"
	case Gdf: return "WAMIT .gdf"
	}
	return "unknown"
}

// Ext returns the file extension used by a format.
func (f Format) Ext() string {
	switch f {
	case Pnl: return ".pnl"
	case Dat: return ".dat"
	case Gdf: return ".gdf"
	}
	return ""
}

// FormatOf returns the format implied by a file's extension.
func FormatOf(file string) Format {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".pnl": return Pnl
	case ".dat": return Dat
	case ".gdf": return Gdf
	}
	return Unknown
}

// Mesh is a panel mesh. SymX means that only the x >= 0 half is stored and
// the body is symmetric about the y0z plane; SymY is the same for the x0z
// plane.
type Mesh struct {
	Nodes  []Vec
	Panels [][4]int

	SymX, SymY bool
}

// Info is the summary of a mesh needed by a case definition.
type Info struct {
	Nodes, Panels int
	SymX, SymY    bool
}

// Info returns the mesh's summary.
func (m *Mesh) Info() Info {
	return Info{
		Nodes: len(m.Nodes), Panels: len(m.Panels), SymX: m.SymX, SymY: m.SymY,
	}
}

// IsTriangle returns true if panel i has three distinct vertices.
func (m *Mesh) IsTriangle(i int) bool {
	p := m.Panels[i]
	return p[3] == p[2]
}

// addNode returns the index of v, appending it if it has not been seen.
func (m *Mesh) addNode(index map[Vec]int, v Vec) int {
	if i, ok := index[v]; ok { return i }
	index[v] = len(m.Nodes)
	m.Nodes = append(m.Nodes, v)
	return len(m.Nodes) - 1
}

// Check returns an error if a panel references a node which does not exist.
func (m *Mesh) Check() error {
	for i, p := range m.Panels {
		for _, n := range p {
			if n < 0 || n >= len(m.Nodes) {
				return fmt.Errorf(
					"Panel %d references node %d, but there are only %d nodes.",
					i+1, n+1, len(m.Nodes),
				)
			}
		}
	}
	return nil
}

// Load reads a mesh, choosing the reader by file extension.
func Load(file string) (*Mesh, error) {
	var (
		m   *Mesh
		err error
	)
	switch FormatOf(file) {
	case Pnl:
		m, err = readPnl(file)
	case Dat:
		m, err = readDat(file)
	case Gdf:
		m, err = readGdf(file)
	default:
		return nil, fmt.Errorf("Unknown mesh format for file '%s'.", file)
	}
	if err != nil { return nil, err }
	if err := m.Check(); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return m, nil
}

// Save writes a mesh in the given format. Symmetries which the format cannot
// express are unfolded first.
func (m *Mesh) Save(file string, format Format) error {
	switch format {
	case Pnl:
		return writePnl(file, m)
	case Dat:
		if m.SymX {
			m = m.Unfold(true, false)
		}
		return writeDat(file, m)
	case Gdf:
		return writeGdf(file, m)
	}
	return fmt.Errorf("Cannot write meshes in %s format.", format)
}

// Files implements the mesh collaborator used by case definitions on top of
// the file system.
type Files struct {
	Log logr.Logger
}

func NewFiles(log logr.Logger) *Files { return &Files{Log: log} }

// Load returns the node and panel counts and symmetry flags of a mesh file.
func (f *Files) Load(path string) (Info, error) {
	m, err := Load(path)
	if err != nil { return Info{}, err }
	return m.Info(), nil
}

// SaveInFormat writes the mesh in src to dst in the given format. Files
// already in that format are copied unchanged.
func (f *Files) SaveInFormat(src, dst string, format Format) error {
	if FormatOf(src) == format {
		f.Log.V(1).Info("Copying mesh", "src", src, "dst", dst)
		return copyFile(src, dst)
	}
	f.Log.V(1).Info("Converting mesh", "src", src, "dst", dst, "format", format.String())
	m, err := Load(src)
	if err != nil { return err }
	return m.Save(dst, format)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil { return fmt.Errorf("Problem copying mesh file from '%s': %w", src, err) }
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil { return err }
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
