package io

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/hydroconv/bemcal"
)

func writeFile(t *testing.T, dir, name, text string) string {
	file := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(file, []byte(text), 0644))
	return file
}

func TestReadConvertConfig(t *testing.T) {
	t.Setenv(HamsDirEnv, "")
	t.Setenv(NemohDirEnv, "/opt/nemoh")

	file := writeFile(t, t.TempDir(), "convert.config", `[Convert]
Input = a.1
Input = a.out
Output = b
ForceT = true

[Hydroconv]
NemohPath = somewhere/else
Rho = 1025
`)
	wrap := DefaultConvertWrapper()
	require.NoError(t, ReadConfig(file, wrap))

	assert.Equal(t, []string{"a.1", "a.out"}, wrap.Convert.Input)
	assert.Equal(t, "b", wrap.Convert.Output)
	assert.True(t, wrap.Convert.ForceT)
	assert.Equal(t, -1, wrap.Convert.QtfHeading)
	assert.True(t, wrap.Convert.ValidIPerOut())

	assert.Equal(t, 1025.0, wrap.Hydroconv.Rho)
	assert.Equal(t, 9.81, wrap.Hydroconv.G)
	assert.Equal(t, "/opt/nemoh", wrap.Hydroconv.NemohPath)
	assert.NoError(t, wrap.Hydroconv.Check())
}

func TestHydroconvCheck(t *testing.T) {
	table := []struct {
		edit func(con *HydroconvConfig)
		msg  string
	}{
		{func(con *HydroconvConfig) {}, ""},
		{func(con *HydroconvConfig) { con.Threads = 0 }, "Threads"},
		{func(con *HydroconvConfig) { con.G = -1 }, "'G'"},
		{func(con *HydroconvConfig) { con.Rho = 0 }, "Rho"},
		{func(con *HydroconvConfig) { con.Length = 0 }, "Length"},
		{func(con *HydroconvConfig) { con.Depth = 0 }, "Depth"},
	}

	for i := range table {
		con := &DefaultHydroconvWrapper().Hydroconv
		table[i].edit(con)
		err := con.Check()
		if table[i].msg == "" {
			if err != nil { t.Errorf("%d) unexpected error %s", i, err) }
		} else if err == nil || !strings.Contains(err.Error(), table[i].msg) {
			t.Errorf("%d) expected error about %s, got %v", i, table[i].msg, err)
		}
	}
}

func TestReadCaseConfig(t *testing.T) {
	file := writeFile(t, t.TempDir(), "case.config", `[Case]
Scenario = run.yaml
Output = out
NumCases = 4
`)
	wrap := DefaultCaseWrapper()
	require.NoError(t, ReadConfig(file, wrap))
	assert.Equal(t, 4, wrap.Case.NumCases)
	assert.True(t, wrap.Case.ValidScenario())
	assert.False(t, wrap.Case.IncludeBinary)

	bad := writeFile(t, t.TempDir(), "bad.config", "[Case]\nNoSuchField = 1\n")
	assert.Error(t, ReadConfig(bad, DefaultCaseWrapper()))
}

const nemohScenario = `solver: NemohV115
depth: 50
frequencies: {n: 10, min: 0.2, max: 2.0}
headings: {n: 3, min: 0, max: 90}
bodies:
  - mesh: hull.dat
    dof: [Heave, pitch]
    c0: [0, 0, -1]
    mass:
      - [1, 0, 0, 0, 0, 0]
      - [0, 1, 0, 0, 0, 0]
      - [0, 0, 1, 0, 0, 0]
      - [0, 0, 0, 2, 0, 0]
      - [0, 0, 0, 0, 2, 0]
      - [0, 0, 0, 0, 0, 2]
nemoh:
  rho: 1025
  irf: {step: 0.1, duration: 50}
  kochin: {n: 36, min: 0, max: 350}
`

func TestScenarioNemoh(t *testing.T) {
	dir := t.TempDir()
	sc, err := ReadScenario(writeFile(t, dir, "run.yaml", nemohScenario))
	require.NoError(t, err)

	con := &DefaultHydroconvWrapper().Hydroconv
	con.NemohPath = "/opt/nemoh"
	c, err := sc.Case(con, logr.Discard())
	require.NoError(t, err)

	nemoh, ok := c.(*bemcal.NemohCal)
	require.True(t, ok)
	assert.Equal(t, bemcal.NemohV115, c.Solver())
	assert.Equal(t, 50.0, nemoh.H)
	assert.Equal(t, 10, nemoh.Nf)
	assert.Equal(t, 2.0, nemoh.MaxF)
	assert.Equal(t, 3, nemoh.Nh)
	assert.Equal(t, 9.81, nemoh.G)
	assert.Equal(t, 1025.0, nemoh.Rho)
	assert.True(t, nemoh.Irf)
	assert.Equal(t, 50.0, nemoh.IrfDuration)
	assert.Equal(t, 36, nemoh.NKochin)
	assert.Equal(t, "/opt/nemoh", nemoh.BinPath)

	require.Len(t, nemoh.Bodies, 1)
	body := nemoh.Bodies[0]
	assert.Equal(t, filepath.Join(dir, "hull.dat"), body.MeshFile)
	assert.Equal(t, [6]bool{false, false, true, false, true, false}, body.Dof)
	assert.Equal(t, [3]float64{0, 0, -1}, body.C0)
	assert.Equal(t, 2.0, body.Mass.At(5, 5))
	assert.Equal(t, 0.0, body.LinearDamping.At(0, 0))
}

func TestScenarioHams(t *testing.T) {
	sc, err := ReadScenario(writeFile(t, t.TempDir(), "run.yaml", `solver: hams
frequencies: {n: 5, min: 0.1, max: 0.5}
bodies:
  - mesh: /abs/hull.pnl
    lid: /abs/lid.pnl
`))
	require.NoError(t, err)

	con := &DefaultHydroconvWrapper().Hydroconv
	con.Threads, con.Depth = 3, 20
	c, err := sc.Case(con, logr.Discard())
	require.NoError(t, err)

	hams := c.(*bemcal.HamsCal)
	assert.Equal(t, 3, hams.Threads)
	assert.Equal(t, 20.0, hams.H)
	assert.Equal(t, 1, hams.Nh)
	assert.Equal(t, "/abs/lid.pnl", hams.Bodies[0].LidFile)
	assert.Equal(t, 6, hams.Bodies[0].NDof())
}

func TestScenarioErrors(t *testing.T) {
	table := []struct {
		yaml, msg string
	}{
		{"solver: wamit\n", "Unrecognized solver"},
		{"solver: Nemoh\nbodies:\n  - lid: a.dat\n", "No mesh"},
		{"solver: Nemoh\nbodies:\n  - mesh: a.dat\n    dof: [bob]\n", "bob"},
		{"solver: Nemoh\nbodies:\n  - mesh: a.dat\n    mass: [[1, 2]]\n", "rows"},
	}

	con := &DefaultHydroconvWrapper().Hydroconv
	for i := range table {
		dir := t.TempDir()
		sc, err := ReadScenario(writeFile(t, dir, "run.yaml", table[i].yaml))
		if err != nil { t.Fatalf("%d) %s", i, err) }
		_, err = sc.Case(con, logr.Discard())
		if err == nil || !strings.Contains(err.Error(), table[i].msg) {
			t.Errorf("%d) expected error about %s, got %v", i, table[i].msg, err)
		}
	}

	_, err := ReadScenario(writeFile(t, t.TempDir(), "run.yaml", "bodies: [1, 2\n"))
	assert.Error(t, err)
}

func TestExampleScenarioParses(t *testing.T) {
	sc, err := ReadScenario(writeFile(t, t.TempDir(), "run.yaml", ExampleScenarioFile))
	require.NoError(t, err)
	c, err := sc.Case(&DefaultHydroconvWrapper().Hydroconv, logr.Discard())
	require.NoError(t, err)
	assert.Equal(t, bemcal.Nemoh, c.Solver())
	assert.Equal(t, 30, c.Base().Nf)
}

func TestNewLogger(t *testing.T) {
	file := filepath.Join(t.TempDir(), "log.out")
	con := &DefaultHydroconvWrapper().Hydroconv
	con.LogFile = file

	log, sync, err := NewLogger(con)
	require.NoError(t, err)
	log.Info("visible", "n", 3)
	log.V(DEBUG).Info("hidden")
	sync()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "visible")
	assert.NotContains(t, string(b), "hidden")

	con.Verbose = true
	log, sync, err = NewLogger(con)
	require.NoError(t, err)
	log.V(DEBUG).Info("shown")
	sync()

	b, err = os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "shown")
}
