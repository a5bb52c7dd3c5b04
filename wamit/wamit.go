/*Package wamit reads and writes WAMIT results.

Two layouts are supported. The .out report holds every first-order quantity
in one human-readable file, with optional .3sc and .3fk siblings. The numeric
layout spreads results over .1 (added mass and damping), .2/.3 (excitation),
.hst (restoring), .4 (RAOs) and .12s/.12d (QTFs), refined by the .cfg, .pot
and .gdf inputs of the run.
*/
package wamit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"

	"github.com/phil-mansfield/hydroconv/hydro"
)

// errEmpty is returned by loaders which found a file without data rows.
var errEmpty = errors.New("no data found")

// Codec loads and saves WAMIT files. The zero value is not usable; use
// NewCodec.
type Codec struct {
	Log logr.Logger
	// G, Rho and Len are used when the files do not give them.
	G, Rho, Len float64
	// IPerOut is the first-column convention assumed when no .cfg file
	// gives one. Zero means unknown.
	IPerOut int
}

// NewCodec returns a Codec with standard defaults. A zero logr.Logger
// discards everything.
func NewCodec(log logr.Logger) *Codec {
	return &Codec{
		Log: log, G: hydro.DefaultG, Rho: hydro.DefaultRho, Len: hydro.DefaultLen,
	}
}

// loader holds the state of a single Load call.
type loader struct {
	*Codec
	hd      *hydro.Hydro
	iperout int
}

func withExt(file, ext string) string {
	return strings.TrimSuffix(file, filepath.Ext(file)) + ext
}

// IsWamitFile reports whether Load knows how to read file.
func IsWamitFile(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".out", ".1", ".2", ".3", ".hst", ".4", ".12s", ".12d":
		return true
	}
	return false
}

// Load reads file, and the siblings which belong with it, into a new dataset.
func (c *Codec) Load(file string) (*hydro.Hydro, error) {
	hd := hydro.New(hydro.Wamit, file)
	l := &loader{Codec: c, hd: hd, iperout: c.IPerOut}
	if err := l.load(file); err != nil {
		c.Log.Error(err, "Failed to load WAMIT files", "file", file)
		return nil, err
	}
	return hd, nil
}

func (l *loader) load(file string) error {
	ext := strings.ToLower(filepath.Ext(file))
	switch ext {
	case ".out":
		l.Log.V(1).Info("Loading .out file", "file", file)
		if err := l.loadOut(file); err != nil { return err }
		if err := l.optional("scattering", withExt(file, ".3sc"), func(f string) error {
			return l.loadForceFile(f, &l.hd.Sc)
		}); err != nil { return err }
		return l.optional("Froude-Krylov", withExt(file, ".3fk"), func(f string) error {
			return l.loadForceFile(f, &l.hd.Fk)
		})
	case ".1", ".2", ".3", ".hst", ".4", ".12s", ".12d":
	default:
		return fmt.Errorf("Unrecognized WAMIT extension '%s' in file %s.", ext, file)
	}

	steps := []struct {
		desc, ext string
		load      func(string) error
	}{
		{"configuration", ".cfg", l.loadCfg},
		{"potential control", ".pot", l.loadPot},
		{"geometric data", ".gdf", l.loadGdf},
		{"added mass and damping", ".1", l.load1},
		{"diffraction exciting", excitingExt(file), func(f string) error {
			return l.loadForces(f, &l.hd.Ex, 0.001)
		}},
		{"hydrostatic restoring", ".hst", l.loadHst},
		{"RAO", ".4", func(f string) error {
			return l.loadForces(f, &l.hd.Rao, 0.01)
		}},
		{"second order sum", ".12s", func(f string) error {
			return l.load12(f, true)
		}},
		{"second order difference", ".12d", func(f string) error {
			return l.load12(f, false)
		}},
	}
	for _, step := range steps {
		err := l.optional(step.desc, withExt(file, step.ext), step.load)
		if err != nil { return err }
	}

	if l.hd.Nb == 0 {
		return fmt.Errorf("No WAMIT data could be read from %s.", file)
	}
	return nil
}

// excitingExt returns .2 if it was asked for or if it is the only exciting
// force file present, and .3 otherwise.
func excitingExt(file string) string {
	if strings.ToLower(filepath.Ext(file)) == ".2" { return ".2" }
	if !exists(withExt(file, ".3")) && exists(withExt(file, ".2")) {
		return ".2"
	}
	return ".3"
}

func exists(file string) bool {
	_, err := os.Stat(file)
	return err == nil
}

// optional runs load on file, turning a missing or empty file into a warning.
func (l *loader) optional(desc, file string, load func(string) error) error {
	err := load(file)
	switch {
	case err == nil:
		l.Log.V(1).Info("Loaded file", "kind", desc, "file", file)
		return nil
	case errors.Is(err, fs.ErrNotExist):
		l.Log.Info("Warning: file not found", "kind", desc, "file", file)
		return nil
	case errors.Is(err, errEmpty):
		l.Log.Info("Warning: file is empty", "kind", desc, "file", file)
		return nil
	}
	return err
}

// LoadFile reads a single WAMIT file into hd without looking at its
// siblings. It can be used to assemble a dataset from files in any order:
// counts which disagree with earlier files are reported as
// ConsistencyErrors.
func (c *Codec) LoadFile(hd *hydro.Hydro, file string) error {
	l := &loader{Codec: c, hd: hd, iperout: c.IPerOut}
	var err error
	switch ext := strings.ToLower(filepath.Ext(file)); ext {
	case ".out":
		err = l.loadOut(file)
	case ".1":
		err = l.load1(file)
	case ".2", ".3":
		err = l.loadForces(file, &hd.Ex, 0.001)
	case ".hst":
		err = l.loadHst(file)
	case ".4":
		err = l.loadForces(file, &hd.Rao, 0.01)
	case ".12s", ".12d":
		err = l.load12(file, ext == ".12s")
	case ".3sc":
		err = l.loadForceFile(file, &hd.Sc)
	case ".3fk":
		err = l.loadForceFile(file, &hd.Fk)
	case ".cfg":
		err = l.loadCfg(file)
		c.IPerOut = l.iperout
	case ".pot":
		err = l.loadPot(file)
	case ".gdf":
		err = l.loadGdf(file)
	default:
		err = fmt.Errorf("Unrecognized WAMIT extension '%s' in file %s.", ext, file)
	}
	if err != nil {
		c.Log.Error(err, "Failed to load WAMIT file", "file", file)
	}
	return err
}

// Save writes the loaded parts of hd in the numeric layout next to file:
// .1, .3, .hst, .4, .12s and .12d. Periods are written instead of
// frequencies if forceT is set or the data was given in periods. If
// qtfHeading is not negative, only the QTFs of that heading index with
// itself are written.
func (c *Codec) Save(hd *hydro.Hydro, file string, forceT bool, qtfHeading int) error {
	err := c.save(hd, file, forceT, qtfHeading)
	if err != nil {
		c.Log.Error(err, "Failed to save WAMIT files", "file", file)
	}
	return err
}

func (c *Codec) save(hd *hydro.Hydro, file string, forceT bool, qtfHeading int) error {
	if hd.IsLoadedA() && hd.IsLoadedB() {
		if err := c.save1(hd, withExt(file, ".1"), forceT); err != nil { return err }
	}
	if hd.IsLoadedFex() {
		err := c.saveForces(hd, &hd.Ex, withExt(file, ".3"), forceT)
		if err != nil { return err }
	}
	if hd.IsLoadedC() {
		if err := c.saveHst(hd, withExt(file, ".hst")); err != nil { return err }
	}
	if hd.IsLoadedRAO() {
		err := c.saveForces(hd, &hd.Rao, withExt(file, ".4"), forceT)
		if err != nil { return err }
	}
	if len(hd.QtfSum) > 0 {
		err := c.save12(hd, withExt(file, ".12s"), true, forceT, qtfHeading)
		if err != nil { return err }
	}
	if len(hd.QtfDif) > 0 {
		err := c.save12(hd, withExt(file, ".12d"), false, forceT, qtfHeading)
		if err != nil { return err }
	}
	return nil
}

// create opens file for writing and logs it.
func (c *Codec) create(file string) (*os.File, error) {
	f, err := os.Create(file)
	if err != nil { return nil, fmt.Errorf("Impossible to open '%s': %w", file, err) }
	c.Log.V(1).Info("Writing file", "file", file)
	return f, nil
}
