package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	cli "github.com/urfave/cli/v2"

	"sixtyfiveoh"
	_ "sixtyfiveoh/plugins"
)

func main() {
	app := &cli.App{
		Name:  "sixtyfiveoh",
		Usage: "Static code/data reachability analyzer and disassembler for 6502 binary images",
		// Keep "--plugin name:arg1,arg2" whole; parsePluginSpec splits the args.
		DisableSliceFlagSeparator: true,
		Commands: []*cli.Command{
			analyzeCommand(),
			disasmCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.UintFlag{Name: "org", Usage: "bank origin address", Value: 0x8000},
		&cli.StringFlag{Name: "db", Usage: "existing annotation script to load before analysis"},
		&cli.StringFlag{Name: "out", Usage: "output file (default stdout)"},
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze a 6502 binary image and emit an annotation script",
		ArgsUsage: "infile",
		Flags: append(sharedFlags(),
			&cli.StringFlag{Name: "nmi", Usage: "NMI vector: auto or a hex address"},
			&cli.StringFlag{Name: "reset", Usage: "RESET vector: auto or a hex address"},
			&cli.StringFlag{Name: "irq", Usage: "IRQ vector: auto or a hex address"},
			&cli.StringSliceFlag{Name: "plugin", Usage: "plugin name[:arg,arg,...], repeatable, applied in order"},
		),
		Action: runAnalyze,
	}
}

func disasmCommand() *cli.Command {
	return &cli.Command{
		Name:      "disasm",
		Usage:     "Disassemble a 6502 binary image against a (possibly finalized) database",
		ArgsUsage: "infile",
		Flags:     sharedFlags(),
		Action:    runDisasm,
	}
}

func runAnalyze(c *cli.Context) error {
	infile := c.Args().First()
	if infile == "" {
		return cli.Exit("missing infile", 1)
	}

	bank, db, err := loadBankAndDB(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	opsValid := sixtyfiveoh.DefaultOpsValid()
	perms := sixtyfiveoh.NewPermissions()

	for _, spec := range c.StringSlice("plugin") {
		name, args := parsePluginSpec(spec)
		if err := sixtyfiveoh.RunPlugin(name, args, bank.Org(), bank.Len(), db, opsValid, perms); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	nmi, err := parseVectorFlag(c.String("nmi"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	reset, err := parseVectorFlag(c.String("reset"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	irq, err := parseVectorFlag(c.String("irq"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	resolved, err := sixtyfiveoh.ResolveInterruptVectors(db, bank, nmi, reset, irq)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	sixtyfiveoh.NewAnalyzer().Analyze(db, bank, opsValid, perms, resolved.IRQ)

	return writeOutput(c, func(w *os.File) error {
		return db.SaveScript(w)
	})
}

func runDisasm(c *cli.Context) error {
	infile := c.Args().First()
	if infile == "" {
		return cli.Exit("missing infile", 1)
	}

	bank, db, err := loadBankAndDB(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	return writeOutput(c, func(w *os.File) error {
		return sixtyfiveoh.NewDisassembler(bank, db).Disassemble(w)
	})
}

// loadBankAndDB reads infile into a Bank at --org, and applies --db's
// annotation script to a fresh Database if given.
func loadBankAndDB(c *cli.Context) (*sixtyfiveoh.Bank, *sixtyfiveoh.Database, error) {
	infile := c.Args().First()
	body, err := os.ReadFile(infile)
	if err != nil {
		return nil, nil, err
	}

	org := uint16(c.Uint("org"))
	bank, err := sixtyfiveoh.NewBank(body, org)
	if err != nil {
		return nil, nil, err
	}

	db := sixtyfiveoh.NewDatabase(org)
	if dbPath := c.String("db"); dbPath != "" {
		f, err := os.Open(dbPath)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		if err := db.ApplyScript(f); err != nil {
			return nil, nil, err
		}
	}

	return bank, db, nil
}

func writeOutput(c *cli.Context, emit func(w *os.File) error) error {
	out := os.Stdout
	if path := c.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		defer f.Close()
		out = f
	}
	if err := emit(out); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

// parsePluginSpec splits "name:arg1,arg2" into its name and argument
// list. A bare name with no ':' has no arguments.
func parsePluginSpec(spec string) (string, []string) {
	name, rest, found := strings.Cut(spec, ":")
	if !found || rest == "" {
		return name, nil
	}
	return name, strings.Split(rest, ",")
}

// parseVectorFlag turns a --nmi/--reset/--irq value into a VectorSpec:
// "" means not supplied, "auto" means read from the bank, anything else
// is parsed as a hexadecimal address, with or without a "0x" prefix.
func parseVectorFlag(s string) (sixtyfiveoh.VectorSpec, error) {
	if s == "" {
		return sixtyfiveoh.VectorSpec{}, nil
	}
	if strings.EqualFold(s, "auto") {
		return sixtyfiveoh.AutoVector(), nil
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 16)
	if err != nil {
		return sixtyfiveoh.VectorSpec{}, fmt.Errorf("invalid vector address %q: %w", s, err)
	}
	return sixtyfiveoh.FixedVector(uint16(v)), nil
}
