package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/go-logr/logr"
	flag "github.com/spf13/pflag"

	"github.com/phil-mansfield/hydroconv"
	"github.com/phil-mansfield/hydroconv/bemcal"
	"github.com/phil-mansfield/hydroconv/io"
)

func main() {
	var (
		convert, info, caseFile, check string
		exampleConfig, config          string
	)
	vars := map[string]*string{
		"Convert":       &convert,
		"Info":          &info,
		"Case":          &caseFile,
		"Check":         &check,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(
		&convert, "Convert", "",
		"Configuration file for [Convert] mode.",
	)
	flag.StringVar(
		&info, "Info", "",
		"Result file to summarize. Further files given as arguments are "+
			"merged into the same dataset.",
	)
	flag.StringVar(
		&caseFile, "Case", "",
		"Configuration file for [Case] mode.",
	)
	flag.StringVar(
		&check, "Check", "",
		"HAMS or NEMOH case folder to load and check.",
	)
	flag.StringVar(
		&exampleConfig, "ExampleConfig", "",
		"Prints an example configuration file of the specified type to "+
			"stdout. Accepted arguments are 'Convert', 'Case' and 'Scenario'.",
	)
	flag.StringVar(
		&config, "Config", "",
		"Optional file with a [Hydroconv] section, used by the Info and "+
			"Check modes.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil { log.Fatal(err.Error()) }

	switch modeName {
	case "Convert":
		wrap := io.DefaultConvertWrapper()
		err := io.ReadConfig(convert, wrap)
		if err != nil { log.Fatal(err.Error()) }
		con := &wrap.Convert

		if !con.ValidInput() {
			log.Fatal("Invalid/non-existent 'Input' value.")
		} else if !con.ValidOutput() {
			log.Fatal("Invalid/non-existent 'Output' value.")
		} else if !con.ValidIPerOut() {
			log.Fatal("Invalid 'IPerOut' value.")
		} else if !con.ValidQtfHeading() {
			log.Fatal("Invalid 'QtfHeading' value.")
		}
		if err := wrap.Hydroconv.Check(); err != nil { log.Fatal(err.Error()) }

		run(&wrap.Hydroconv, func(logger logr.Logger) error {
			return convertMain(con, &wrap.Hydroconv, logger)
		})

	case "Info":
		con := readHydroconv(config)
		files := append([]string{info}, flag.Args()...)
		run(con, func(logger logr.Logger) error {
			return infoMain(files, con, logger)
		})

	case "Case":
		wrap := io.DefaultCaseWrapper()
		err := io.ReadConfig(caseFile, wrap)
		if err != nil { log.Fatal(err.Error()) }
		con := &wrap.Case

		if !con.ValidScenario() {
			log.Fatal("Invalid/non-existent 'Scenario' value.")
		} else if !con.ValidOutput() {
			log.Fatal("Invalid/non-existent 'Output' value.")
		} else if !con.ValidNumCases() {
			log.Fatal("Invalid 'NumCases' value.")
		}
		if err := wrap.Hydroconv.Check(); err != nil { log.Fatal(err.Error()) }

		run(&wrap.Hydroconv, func(logger logr.Logger) error {
			return caseMain(con, &wrap.Hydroconv, logger)
		})

	case "Check":
		con := readHydroconv(config)
		run(con, func(logger logr.Logger) error {
			return checkMain(check, logger)
		})

	case "ExampleConfig":
		switch exampleConfig {
		case "Convert":
			fmt.Println(io.ExampleConvertFile)
		case "Case":
			fmt.Println(io.ExampleCaseFile)
		case "Scenario":
			fmt.Println(io.ExampleScenarioFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. Only recognized " +
					"arguments are 'Convert', 'Case', and 'Scenario'.",
			)
		}
	default:
		panic("Impossible")
	}
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" { setNames = append(setNames, name) }
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but hydroconv "+
				"only accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

func readHydroconv(file string) *io.HydroconvConfig {
	wrap := io.DefaultHydroconvWrapper()
	if file == "" {
		wrap.Hydroconv.ApplyEnv()
		return &wrap.Hydroconv
	}
	if err := io.ReadConfig(file, wrap); err != nil { log.Fatal(err.Error()) }
	if err := wrap.Hydroconv.Check(); err != nil { log.Fatal(err.Error()) }
	return &wrap.Hydroconv
}

// run builds the logger described by con, calls mode and exits with a
// non-zero status if it fails.
func run(con *io.HydroconvConfig, mode func(logr.Logger) error) {
	logger, sync, err := io.NewLogger(con)
	if err != nil { log.Fatal(err.Error()) }

	err = mode(logger)
	if err != nil { logger.Error(err, "hydroconv failed") }
	sync()
	if err != nil { os.Exit(1) }
}

func newManager(con *io.HydroconvConfig, logger logr.Logger) *hydroconv.Manager {
	man := hydroconv.NewManager(logger)
	man.Codec.G, man.Codec.Rho, man.Codec.Len = con.G, con.Rho, con.Length
	return man
}

func convertMain(
	con *io.ConvertConfig, hcon *io.HydroconvConfig, logger logr.Logger,
) error {
	man := newManager(hcon, logger)
	man.Codec.IPerOut = con.IPerOut

	hd, err := man.Load(con.Input)
	if err != nil { return err }
	logger.Info("Loaded dataset", "bodies", hd.Nb,
		"frequencies", hd.Nf, "headings", hd.Nh)

	if err := man.Save(hd, con.Output, con.ForceT, con.QtfHeading); err != nil {
		return err
	}
	logger.Info("Wrote dataset", "output", con.Output)
	return nil
}

func infoMain(files []string, con *io.HydroconvConfig, logger logr.Logger) error {
	hd, err := newManager(con, logger).Load(files)
	if err != nil { return err }
	return hydroconv.PrintSummary(os.Stdout, hd)
}

func caseMain(
	con *io.CaseConfig, hcon *io.HydroconvConfig, logger logr.Logger,
) error {
	sc, err := io.ReadScenario(con.Scenario)
	if err != nil { return err }
	c, err := sc.Case(hcon, logger)
	if err != nil { return err }

	if problems := c.Check(); len(problems) > 0 {
		for _, p := range problems { logger.Info("Check failed", "problem", p) }
		if !con.Force {
			return fmt.Errorf(
				"The %s case has %d problem(s). Set 'Force' to write it anyway.",
				c.Solver(), len(problems),
			)
		}
	}

	err = c.SaveFolder(con.Output, con.IncludeBinary, con.NumCases)
	if err != nil { return err }
	logger.Info("Wrote case", "solver", c.Solver().String(),
		"folder", con.Output, "parts", con.NumCases)
	return nil
}

func checkMain(folder string, logger logr.Logger) error {
	c, err := bemcal.LoadFolder(folder, logger)
	if err != nil { return err }

	problems := c.Check()
	for _, p := range problems { fmt.Println(p) }
	if len(problems) > 0 {
		return fmt.Errorf("Found %d problem(s) in %s.", len(problems), folder)
	}

	base := c.Base()
	fmt.Printf("%s case with %d body(ies), %d frequencies and %d headings: OK\n",
		c.Solver(), len(base.Bodies), base.Nf, base.Nh)
	return nil
}
