package io

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/gcfg.v1"
)

const (
	ExampleConvertFile = `[Convert]

#######################
# Required Parameters #
#######################

# Result files to read. Repeat the line to merge several files into one
# dataset: a .out report, or any of .1 .2 .3 .4 .hst .12s .12d. When a .1 file
# is given, the other numeric files with the same base name are read too.
Input = path/to/case.1

# File to write. A .out extension writes a single report, anything else is
# used as the base name of the numeric files.
Output = path/to/converted

#######################
# Optional Parameters #
#######################

# Write periods in the first column even if the data was given as
# frequencies.
# ForceT = false

# Only write QTF entries for this heading index. -1 writes every heading.
# QtfHeading = -1

# WAMIT IPEROUT used when no .cfg file is found: 1 for periods, 2 for
# frequencies. 0 guesses from the ordering of the first column.
# IPerOut = 0

[Hydroconv]
# HamsPath = path/to/hams/install
# NemohPath = path/to/nemoh/install
# Threads = 8
# G = 9.81
# Rho = 1000
# Length = 1
# LogFile = log.out
# Verbose = false`

	ExampleCaseFile = `[Case]

#######################
# Required Parameters #
#######################

# YAML description of the run. Print an example with -ExampleConfig Scenario.
Scenario = path/to/scenario.yaml

# Folder which will contain the solver input files. Its contents are deleted.
Output = path/to/case/folder

#######################
# Optional Parameters #
#######################

# Split the frequency range into this many independent cases.
# NumCases = 1

# Copy the solver executables from HamsPath or NemohPath into the case.
# IncludeBinary = false

# Write the case even if the checks find problems.
# Force = false

[Hydroconv]
# HamsPath = path/to/hams/install
# NemohPath = path/to/nemoh/install
# Threads = 8
# Depth = -1
# LogFile = log.out
# Verbose = false`

	ExampleScenarioFile = `# Solver: HAMS, Nemoh, NemohV115 or Capytaine.
solver: Nemoh
# Water depth in metres. Negative values mean infinite depth.
depth: -1
frequencies: {n: 30, min: 0.1, max: 3.0}
headings: {n: 1, min: 0, max: 0}
bodies:
  - mesh: cylinder.pnl
    # lid: lid.pnl
    dof: [surge, sway, heave, roll, pitch, yaw]
    c0: [0, 0, -2]
    # HAMS only.
    # cg: [0, 0, -2]
    # mass:
    #   - [1.0e6, 0, 0, 0, 0, 0]
    #   ...
# NEMOH only.
nemoh:
  g: 9.81
  rho: 1025
  irf: {step: 0.1, duration: 100}
  kochin: {n: 0, min: 0, max: 180}
  freeSurface: {nx: 0, ny: 0, domainX: 0, domainY: 0}`
)

const (
	HamsDirEnv  = "HYDROCONV_HAMS_DIR"
	NemohDirEnv = "HYDROCONV_NEMOH_DIR"
)

// HydroconvConfig holds the settings shared by every mode.
type HydroconvConfig struct {
	HamsPath, NemohPath string
	Threads             int
	G, Rho, Length      float64
	Depth               float64

	LogFile string
	Verbose bool
}

func (con *HydroconvConfig) setDefaults() {
	con.Threads = runtime.NumCPU()
	con.G = 9.81
	con.Rho = 1000
	con.Length = 1
	con.Depth = -1
}

// ApplyEnv replaces the installation paths with those given in the
// environment.
func (con *HydroconvConfig) ApplyEnv() {
	if dir := os.Getenv(HamsDirEnv); dir != "" { con.HamsPath = dir }
	if dir := os.Getenv(NemohDirEnv); dir != "" { con.NemohPath = dir }
}

func (con *HydroconvConfig) ValidThreads() bool { return con.Threads > 0 }
func (con *HydroconvConfig) ValidG() bool       { return con.G > 0 }
func (con *HydroconvConfig) ValidRho() bool     { return con.Rho > 0 }
func (con *HydroconvConfig) ValidLength() bool  { return con.Length > 0 }
func (con *HydroconvConfig) ValidDepth() bool   { return con.Depth != 0 }
func (con *HydroconvConfig) ValidLogFile() bool { return con.LogFile != "" }

// Check returns an error naming the first invalid value.
func (con *HydroconvConfig) Check() error {
	switch {
	case !con.ValidThreads():
		return fmt.Errorf("Invalid 'Threads' value, %d.", con.Threads)
	case !con.ValidG():
		return fmt.Errorf("Invalid 'G' value, %g.", con.G)
	case !con.ValidRho():
		return fmt.Errorf("Invalid 'Rho' value, %g.", con.Rho)
	case !con.ValidLength():
		return fmt.Errorf("Invalid 'Length' value, %g.", con.Length)
	case !con.ValidDepth():
		return fmt.Errorf("Invalid 'Depth' value, %g.", con.Depth)
	}
	return nil
}

type ConvertConfig struct {
	// Required
	Input  []string
	Output string

	// Optional
	ForceT     bool
	QtfHeading int
	IPerOut    int
}

func (con *ConvertConfig) ValidInput() bool  { return len(con.Input) > 0 }
func (con *ConvertConfig) ValidOutput() bool { return con.Output != "" }
func (con *ConvertConfig) ValidIPerOut() bool {
	return con.IPerOut >= 0 && con.IPerOut <= 4
}
func (con *ConvertConfig) ValidQtfHeading() bool { return con.QtfHeading >= -1 }

type CaseConfig struct {
	// Required
	Scenario, Output string

	// Optional
	NumCases      int
	IncludeBinary bool
	Force         bool
}

func (con *CaseConfig) ValidScenario() bool { return con.Scenario != "" }
func (con *CaseConfig) ValidOutput() bool   { return con.Output != "" }
func (con *CaseConfig) ValidNumCases() bool { return con.NumCases > 0 }

type ConvertWrapper struct {
	Convert   ConvertConfig
	Hydroconv HydroconvConfig
}

type CaseWrapper struct {
	Case      CaseConfig
	Hydroconv HydroconvConfig
}

// HydroconvWrapper reads files containing only a [Hydroconv] section.
type HydroconvWrapper struct {
	Hydroconv HydroconvConfig
}

func DefaultConvertWrapper() *ConvertWrapper {
	wrap := &ConvertWrapper{}
	wrap.Convert.QtfHeading = -1
	wrap.Hydroconv.setDefaults()
	return wrap
}

func DefaultCaseWrapper() *CaseWrapper {
	wrap := &CaseWrapper{}
	wrap.Case.NumCases = 1
	wrap.Hydroconv.setDefaults()
	return wrap
}

func DefaultHydroconvWrapper() *HydroconvWrapper {
	wrap := &HydroconvWrapper{}
	wrap.Hydroconv.setDefaults()
	return wrap
}

// ReadConfig reads an INI file into a wrapper created by one of the
// Default*Wrapper functions and applies environment overrides.
func ReadConfig(file string, wrap interface{}) error {
	if err := gcfg.ReadFileInto(wrap, file); err != nil { return err }
	switch w := wrap.(type) {
	case *ConvertWrapper:
		w.Hydroconv.ApplyEnv()
	case *CaseWrapper:
		w.Hydroconv.ApplyEnv()
	case *HydroconvWrapper:
		w.Hydroconv.ApplyEnv()
	}
	return nil
}
