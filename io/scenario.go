package io

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/phil-mansfield/hydroconv/bemcal"
)

var dofNames = []string{"surge", "sway", "heave", "roll", "pitch", "yaw"}

// Range is an evenly spaced axis with N points from Min to Max.
type Range struct {
	N   int     `yaml:"n"`
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Body describes one floating body in a Scenario. Mesh paths are relative to
// the scenario file.
type Body struct {
	Mesh string     `yaml:"mesh"`
	Lid  string     `yaml:"lid"`
	Dof  []string   `yaml:"dof"`
	C0   [3]float64 `yaml:"c0"`
	Cg   [3]float64 `yaml:"cg"`

	Mass                 [][]float64 `yaml:"mass"`
	LinearDamping        [][]float64 `yaml:"linearDamping"`
	QuadraticDamping     [][]float64 `yaml:"quadraticDamping"`
	HydrostaticRestoring [][]float64 `yaml:"hydrostaticRestoring"`
	ExternalRestoring    [][]float64 `yaml:"externalRestoring"`
}

type NemohOptions struct {
	G   float64 `yaml:"g"`
	Rho float64 `yaml:"rho"`

	Irf *struct {
		Step     float64 `yaml:"step"`
		Duration float64 `yaml:"duration"`
	} `yaml:"irf"`
	ShowPressure bool   `yaml:"showPressure"`
	Kochin       *Range `yaml:"kochin"`

	FreeSurface *struct {
		NX      int     `yaml:"nx"`
		NY      int     `yaml:"ny"`
		DomainX float64 `yaml:"domainX"`
		DomainY float64 `yaml:"domainY"`
	} `yaml:"freeSurface"`
}

// Scenario is the YAML description of a run which Case turns into a solver
// case.
type Scenario struct {
	Solver      string        `yaml:"solver"`
	Depth       *float64      `yaml:"depth"`
	Frequencies Range         `yaml:"frequencies"`
	Headings    Range         `yaml:"headings"`
	Threads     int           `yaml:"threads"`
	Bodies      []Body        `yaml:"bodies"`
	Nemoh       *NemohOptions `yaml:"nemoh"`

	dir string
}

// ReadScenario parses a YAML scenario file.
func ReadScenario(file string) (*Scenario, error) {
	b, err := os.ReadFile(file)
	if err != nil { return nil, err }
	sc := &Scenario{}
	if err := yaml.Unmarshal(b, sc); err != nil {
		return nil, fmt.Errorf("Could not parse scenario file %s: %s", file, err)
	}
	sc.dir = filepath.Dir(file)
	return sc, nil
}

func (sc *Scenario) path(file string) string {
	if file == "" || filepath.IsAbs(file) { return file }
	return filepath.Join(sc.dir, file)
}

// Case builds the solver case described by the scenario. Values missing from
// the scenario are taken from con.
func (sc *Scenario) Case(con *HydroconvConfig, log logr.Logger) (bemcal.Case, error) {
	solver, err := bemcal.ParseSolver(sc.Solver)
	if err != nil { return nil, err }

	var (
		c    bemcal.Case
		base *bemcal.BemCal
	)
	switch solver {
	case bemcal.Hams:
		hams := bemcal.NewHamsCal(log)
		hams.Threads = con.Threads
		if sc.Threads > 0 { hams.Threads = sc.Threads }
		hams.BinPath = con.HamsPath
		c, base = hams, &hams.BemCal
	default:
		nemoh := bemcal.NewNemohCal(log)
		nemoh.Version = solver
		nemoh.G, nemoh.Rho = con.G, con.Rho
		nemoh.BinPath = con.NemohPath
		if err := sc.Nemoh.apply(nemoh); err != nil { return nil, err }
		c, base = nemoh, &nemoh.BemCal
	}

	base.H = con.Depth
	if sc.Depth != nil { base.H = *sc.Depth }
	base.Nf, base.MinF, base.MaxF =
		sc.Frequencies.N, sc.Frequencies.Min, sc.Frequencies.Max
	base.Nh, base.MinH, base.MaxH =
		sc.Headings.N, sc.Headings.Min, sc.Headings.Max
	if base.Nh == 0 { base.Nh = 1 }

	for i := range sc.Bodies {
		body, err := sc.Bodies[i].body(sc)
		if err != nil { return nil, fmt.Errorf("Body %d: %s", i+1, err) }
		base.Bodies = append(base.Bodies, body)
	}

	return c, nil
}

func (opt *NemohOptions) apply(c *bemcal.NemohCal) error {
	if opt == nil { return nil }
	if opt.G != 0 { c.G = opt.G }
	if opt.Rho != 0 { c.Rho = opt.Rho }
	if opt.Irf != nil {
		c.Irf = true
		c.IrfStep, c.IrfDuration = opt.Irf.Step, opt.Irf.Duration
	}
	c.ShowPressure = opt.ShowPressure
	if opt.Kochin != nil {
		c.NKochin, c.MinK, c.MaxK = opt.Kochin.N, opt.Kochin.Min, opt.Kochin.Max
	}
	if fs := opt.FreeSurface; fs != nil {
		c.NFreeX, c.NFreeY = fs.NX, fs.NY
		c.DomainX, c.DomainY = fs.DomainX, fs.DomainY
	}
	return nil
}

func (b *Body) body(sc *Scenario) (bemcal.BemBody, error) {
	if b.Mesh == "" { return bemcal.BemBody{}, fmt.Errorf("No mesh given.") }
	body := bemcal.NewBody(sc.path(b.Mesh))
	body.LidFile = sc.path(b.Lid)
	body.C0, body.Cg = b.C0, b.Cg

	if len(b.Dof) > 0 {
		body.Dof = [6]bool{}
		for _, name := range b.Dof {
			i := dofIndex(name)
			if i < 0 {
				return body, fmt.Errorf("Unrecognized degree of freedom '%s'.", name)
			}
			body.Dof[i] = true
		}
	}

	ms := []struct {
		name string
		rows [][]float64
		m    **mat.Dense
	}{
		{"mass", b.Mass, &body.Mass},
		{"linearDamping", b.LinearDamping, &body.LinearDamping},
		{"quadraticDamping", b.QuadraticDamping, &body.QuadraticDamping},
		{"hydrostaticRestoring", b.HydrostaticRestoring, &body.HydrostaticRestoring},
		{"externalRestoring", b.ExternalRestoring, &body.ExternalRestoring},
	}
	for _, m := range ms {
		if m.rows == nil { continue }
		dense, err := matrix6(m.rows)
		if err != nil { return body, fmt.Errorf("In '%s': %s", m.name, err) }
		*m.m = dense
	}

	return body, nil
}

func dofIndex(name string) int {
	for i := range dofNames {
		if strings.EqualFold(dofNames[i], name) { return i }
	}
	return -1
}

func matrix6(rows [][]float64) (*mat.Dense, error) {
	if len(rows) != 6 {
		return nil, fmt.Errorf("Matrix has %d rows instead of 6.", len(rows))
	}
	data := make([]float64, 0, 36)
	for i, row := range rows {
		if len(row) != 6 {
			return nil, fmt.Errorf(
				"Row %d has %d columns instead of 6.", i+1, len(row),
			)
		}
		data = append(data, row...)
	}
	return mat.NewDense(6, 6, data), nil
}
