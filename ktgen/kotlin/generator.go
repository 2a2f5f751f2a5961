package kotlin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/broady/typepoet/ktgen/sink"
	"github.com/broady/typepoet/poet/codewriter"
)

// Generator transforms a schema into target language source code.
type Generator interface {
	// Name returns the generator's identifier.
	Name() string

	// Generate produces source code for the given schema.
	Generate(ctx context.Context, schema *Schema, opts GenerateOptions) (*GenerateResult, error)
}

// GenerateOptions configures generation behavior.
type GenerateOptions struct {
	// Sink receives generated output files.
	Sink sink.OutputSink

	// Config contains generator configuration.
	Config GeneratorConfig
}

// GenerateResult contains generation output metadata.
type GenerateResult struct {
	// Files lists all files that were written.
	Files []OutputFile

	// TypesGenerated is the count of declarations successfully generated.
	TypesGenerated int

	// Warnings contains non-fatal issues encountered.
	Warnings []Warning
}

// OutputFile describes a generated file.
type OutputFile struct {
	// Path is the relative path of the generated file.
	Path string

	// Size is the number of bytes written.
	Size int64
}

// GeneratorConfig provides common configuration options.
type GeneratorConfig struct {
	// Formatting
	IndentStyle     string // "space" or "tab"
	IndentSize      int    // Spaces per indent level (when IndentStyle is "space")
	LineEnding      string // "lf" or "crlf"
	TrailingNewline bool   // Ensure files end with a newline

	// Layout
	FileName    string // File name for per-package output (default "Types.kt")
	FilePerDecl bool   // One file per declaration instead of per package
	Header      string // Comment placed at the top of every file

	// Features
	EmitComments bool // Include KDoc comments in output

	// Custom contains Kotlin-specific options (see KotlinConfig).
	Custom map[string]any
}

// KotlinConfig contains Kotlin-specific options, read from
// GeneratorConfig.Custom.
type KotlinConfig struct {
	// Serializable adds kotlinx.serialization annotations.
	Serializable bool

	// OptionalDefaults gives optional properties a "= null" default.
	OptionalDefaults bool
}

func parseKotlinConfig(custom map[string]any) KotlinConfig {
	var c KotlinConfig
	if v, ok := custom["Serializable"].(bool); ok {
		c.Serializable = v
	}
	if v, ok := custom["OptionalDefaults"].(bool); ok {
		c.OptionalDefaults = v
	}
	return c
}

// KotlinGenerator writes one Kotlin file per package, or per declaration.
type KotlinGenerator struct{}

// Name returns "kotlin".
func (g *KotlinGenerator) Name() string { return "kotlin" }

// Generate validates schema, renders its declarations and writes the files
// to opts.Sink.
func (g *KotlinGenerator) Generate(ctx context.Context, schema *Schema, opts GenerateOptions) (*GenerateResult, error) {
	if opts.Sink == nil {
		return nil, errors.New("no output sink")
	}
	cfg, err := normalizeConfig(opts.Config)
	if err != nil {
		return nil, err
	}
	if errs := schema.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid schema: %w", errors.Join(errs...))
	}

	result := &GenerateResult{}
	emitter := NewEmitter(cfg)

	for _, unit := range planFiles(schema, cfg) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var fileWarnings []Warning
		file := &codewriter.File{
			Package:  unit.pkg,
			Header:   cfg.Header,
			Declared: unit.declared,
			Indent:   indentUnit(cfg),
			Body: func(w *codewriter.CodeWriter) error {
				fileWarnings = fileWarnings[:0]
				for i, d := range unit.decls {
					if i > 0 {
						if err := w.Emit("\n\n"); err != nil {
							return err
						}
					}
					warnings, err := emitter.EmitDecl(w, d)
					if err != nil {
						return fmt.Errorf("failed to emit %s: %w", d.ClassName().CanonicalName(), err)
					}
					fileWarnings = append(fileWarnings, warnings...)
				}
				return nil
			},
		}
		content, err := file.Render()
		if err != nil {
			return nil, err
		}
		content = finishContent(content, cfg)

		if err := opts.Sink.WriteFile(ctx, unit.path, content); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", unit.path, err)
		}
		result.Files = append(result.Files, OutputFile{Path: unit.path, Size: int64(len(content))})
		result.TypesGenerated += len(unit.decls)
		result.Warnings = append(result.Warnings, fileWarnings...)
	}

	result.Warnings = append(result.Warnings, schema.Warnings...)
	return result, nil
}

// fileUnit is one output file and the declarations it holds.
type fileUnit struct {
	path     string
	pkg      string
	decls    []Decl
	declared []string // every simple name declared in pkg
}

func planFiles(schema *Schema, cfg GeneratorConfig) []fileUnit {
	byPkg := make(map[string][]Decl)
	for _, d := range schema.Decls {
		p := d.ClassName().PackageName()
		byPkg[p] = append(byPkg[p], d)
	}

	var units []fileUnit
	for _, pkg := range schema.Packages() {
		decls := byPkg[pkg]
		declared := make([]string, len(decls))
		for i, d := range decls {
			declared[i] = d.ClassName().SimpleName()
		}
		dir := strings.ReplaceAll(pkg, ".", "/")
		if !cfg.FilePerDecl {
			units = append(units, fileUnit{
				path:     path.Join(dir, cfg.FileName),
				pkg:      pkg,
				decls:    decls,
				declared: declared,
			})
			continue
		}
		for _, d := range decls {
			units = append(units, fileUnit{
				path:     path.Join(dir, d.ClassName().SimpleName()+".kt"),
				pkg:      pkg,
				decls:    []Decl{d},
				declared: declared,
			})
		}
	}
	return units
}

func normalizeConfig(cfg GeneratorConfig) (GeneratorConfig, error) {
	switch cfg.IndentStyle {
	case "", "space":
		cfg.IndentStyle = "space"
		if cfg.IndentSize == 0 {
			cfg.IndentSize = 4
		}
		if cfg.IndentSize < 0 {
			return cfg, fmt.Errorf("invalid IndentSize: %d", cfg.IndentSize)
		}
	case "tab":
	default:
		return cfg, fmt.Errorf("invalid IndentStyle: %q (expected \"space\" or \"tab\")", cfg.IndentStyle)
	}
	switch cfg.LineEnding {
	case "":
		cfg.LineEnding = "lf"
	case "lf", "crlf":
	default:
		return cfg, fmt.Errorf("invalid LineEnding: %q (expected \"lf\" or \"crlf\")", cfg.LineEnding)
	}
	if cfg.FileName == "" {
		cfg.FileName = "Types.kt"
	}
	if !strings.HasSuffix(cfg.FileName, ".kt") || strings.Contains(cfg.FileName, "/") {
		return cfg, fmt.Errorf("invalid FileName: %q", cfg.FileName)
	}
	return cfg, nil
}

func indentUnit(cfg GeneratorConfig) string {
	if cfg.IndentStyle == "tab" {
		return "\t"
	}
	return strings.Repeat(" ", cfg.IndentSize)
}

func finishContent(content []byte, cfg GeneratorConfig) []byte {
	if !cfg.TrailingNewline {
		content = bytes.TrimRight(content, "\n")
	}
	if cfg.LineEnding == "crlf" {
		content = bytes.ReplaceAll(content, []byte("\n"), []byte("\r\n"))
	}
	return content
}
