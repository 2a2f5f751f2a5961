package gen

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/broady/typepoet/ktgen"
)

// DefaultConfigFile is read from the working directory unless --no-config
// is given.
const DefaultConfigFile = "typepoet.toml"

// Options select the packages to analyze and the configuration file.
// They are shared by gen and check.
type Options struct {
	Packages []string `help:"Go package to analyze (repeatable)." short:"p" name:"package"`
	Config   string   `help:"Path to a typepoet.toml file (default: ./typepoet.toml if present)." short:"c"`
	NoConfig bool     `help:"Ignore ./typepoet.toml."`
	PerDecl  bool     `help:"Write one file per declaration." name:"per-decl"`
}

// Generator builds a ktgen.Generator from the configuration file, if any,
// with the flags applied on top.
func (o *Options) Generator(logger *slog.Logger) (*ktgen.Generator, error) {
	path := o.Config
	if path == "" && !o.NoConfig {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var g *ktgen.Generator
	if path != "" {
		cfg, err := ktgen.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		g = ktgen.FromConfig(cfg)
		logger.Debug("loaded config", slog.String("path", path))
	} else {
		g = ktgen.FromPackages()
	}
	g.Packages(o.Packages...)
	if o.PerDecl {
		g.FilePerDecl()
	}
	return g.WithLogger(logger), nil
}

type Cmd struct {
	Out string `arg:"" optional:"" help:"Output directory (default: out_dir from the config file)."`
	Options `embed:""`
}

func (c *Cmd) Run(logger *slog.Logger) error {
	return c.run(os.Stdout, logger)
}

func (c *Cmd) run(stdout io.Writer, logger *slog.Logger) error {
	g, err := c.Generator(logger)
	if err != nil {
		return err
	}

	out := c.Out
	if out == "" {
		out = g.Config().OutDir
	}
	if out == "" {
		return errors.New("no output directory: pass OUT or set out_dir in the config file")
	}
	outDir, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	result, err := g.ToDir(outDir)
	if err != nil {
		return err
	}
	for _, f := range result.Files {
		fmt.Fprintf(stdout, "wrote %s\n", filepath.Join(outDir, filepath.FromSlash(f.Path)))
	}
	fmt.Fprintf(stdout, "✓ %d types, %d files, %d warnings\n", result.TypesGenerated, len(result.Files), len(result.Warnings))
	return nil
}
