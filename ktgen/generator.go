// Package ktgen generates Kotlin declarations for Go types.
//
// Create a Generator with FromPackages, FromTypes or FromConfig and
// configure it with method chaining:
//
//	ktgen.FromPackages("github.com/acme/api").
//	    PackageMap("github.com/acme/api", "com.acme.api").
//	    Serializable().
//	    ToDir("./android/src/main/kotlin")
package ktgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"time"

	"github.com/broady/typepoet/ktgen/kotlin"
	"github.com/broady/typepoet/ktgen/provider"
	"github.com/broady/typepoet/ktgen/sink"
)

// Generator provides a fluent API for code generation.
type Generator struct {
	types  []any // for FromTypes
	cfg    Config
	logger *slog.Logger
}

// FromPackages creates a Generator that analyzes the given Go packages
// with the source provider.
func FromPackages(pkgs ...string) *Generator {
	return &Generator{cfg: Config{Packages: slices.Clone(pkgs)}}
}

// FromTypes creates a Generator for the given types. Pass zero values of
// the types to generate Kotlin for:
//
//	ktgen.FromTypes(User{}, CreateUserRequest{}).ToDir("./gen")
//
// By default, this uses the source provider on the packages that declare
// the types, for enum and comment support. Use .Provider("reflection") to
// skip source analysis.
func FromTypes(types ...any) *Generator {
	return &Generator{types: types}
}

// FromConfig creates a Generator from a loaded configuration. Setters
// called afterwards override the file's values.
func FromConfig(cfg *Config) *Generator {
	c := *cfg
	c.Packages = slices.Clone(cfg.Packages)
	c.RootTypes = slices.Clone(cfg.RootTypes)
	c.PackageMap = maps.Clone(cfg.PackageMap)
	return &Generator{cfg: c}
}

// Provider sets the type extraction strategy.
// Valid values: "source" (default), "reflection".
func (g *Generator) Provider(p string) *Generator {
	g.cfg.Provider = p
	return g
}

// Packages adds Go packages to analyze.
func (g *Generator) Packages(pkgs ...string) *Generator {
	g.cfg.Packages = append(g.cfg.Packages, pkgs...)
	return g
}

// Roots limits generation to the named types and the types they reach.
func (g *Generator) Roots(names ...string) *Generator {
	g.cfg.RootTypes = append(g.cfg.RootTypes, names...)
	return g
}

// PackageMap maps a Go import path to a Kotlin package.
func (g *Generator) PackageMap(importPath, kotlinPackage string) *Generator {
	if g.cfg.PackageMap == nil {
		g.cfg.PackageMap = make(map[string]string)
	}
	g.cfg.PackageMap[importPath] = kotlinPackage
	return g
}

// Indent sets the indentation: style "space" with size spaces per level,
// or "tab".
func (g *Generator) Indent(style string, size int) *Generator {
	g.cfg.IndentStyle = style
	g.cfg.IndentSize = size
	return g
}

// LineEnding sets "lf" or "crlf".
func (g *Generator) LineEnding(ending string) *Generator {
	g.cfg.LineEnding = ending
	return g
}

// FilePerDecl writes one file per declaration.
func (g *Generator) FilePerDecl() *Generator {
	g.cfg.FilePerDecl = true
	return g
}

// FileName sets the name of the per-package file.
func (g *Generator) FileName(name string) *Generator {
	g.cfg.FileName = name
	return g
}

// PreserveComments controls whether Go doc comments are preserved.
// Valid values: "default", "none".
func (g *Generator) PreserveComments(mode string) *Generator {
	g.cfg.PreserveComments = mode
	return g
}

// Header sets the comment placed at the top of every generated file.
func (g *Generator) Header(text string) *Generator {
	g.cfg.Header = text
	return g
}

// Serializable adds kotlinx.serialization annotations.
func (g *Generator) Serializable() *Generator {
	g.cfg.Serializable = true
	return g
}

// OptionalDefaults gives omitempty properties a "= null" default.
func (g *Generator) OptionalDefaults() *Generator {
	g.cfg.OptionalDefaults = true
	return g
}

// WithLogger sets the logger for progress and warnings.
// Default: slog.Default()
func (g *Generator) WithLogger(logger *slog.Logger) *Generator {
	g.logger = logger
	return g
}

// Config returns the configuration the generator will run with, with
// defaults applied.
func (g *Generator) Config() Config {
	return *applyConfigDefaults(&g.cfg)
}

// GenerateResult contains generation output metadata.
type GenerateResult struct {
	// Files lists the generated files. Content is only set by Generate.
	Files []GeneratedFile

	// TypesGenerated is the count of declarations generated.
	TypesGenerated int

	// Warnings contains non-fatal issues encountered.
	Warnings []kotlin.Warning
}

// GeneratedFile is one generated file.
type GeneratedFile struct {
	// Path is slash-separated and relative to the output directory.
	Path string

	// Size is the number of bytes written.
	Size int64

	// Content is the file content when generated in memory.
	Content []byte
}

// ToDir generates files to the specified directory.
// This is a terminal operation that writes files to disk.
func (g *Generator) ToDir(dir string) (*GenerateResult, error) {
	if dir == "" {
		dir = g.cfg.OutDir
	}
	if dir == "" {
		return nil, errors.New("no output directory")
	}
	return g.Run(context.Background(), sink.NewFilesystemSink(dir))
}

// Generate returns generated files in memory without writing to disk.
// Use ToDir() to write files to disk instead.
func (g *Generator) Generate() (*GenerateResult, error) {
	mem := sink.NewMemorySink()
	result, err := g.Run(context.Background(), mem)
	if err != nil {
		return nil, err
	}
	for i := range result.Files {
		result.Files[i].Content = mem.Get(result.Files[i].Path)
	}
	return result, nil
}

// Run builds the schema and writes the generated files to out.
func (g *Generator) Run(ctx context.Context, out sink.OutputSink) (*GenerateResult, error) {
	logger := g.logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	schema, cfg, err := g.Schema(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("schema built",
		slog.String("provider", cfg.Provider),
		slog.Int("decls", len(schema.Decls)))
	for _, d := range schema.Decls {
		logger.Debug("declaration",
			slog.String("name", d.ClassName().CanonicalName()),
			slog.String("kind", d.Kind().String()))
	}

	gen := &kotlin.KotlinGenerator{}
	res, err := gen.Generate(ctx, schema, kotlin.GenerateOptions{
		Sink:   out,
		Config: generatorConfig(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate Kotlin: %w", err)
	}

	result := &GenerateResult{
		TypesGenerated: res.TypesGenerated,
		Warnings:       res.Warnings,
	}
	for _, f := range res.Files {
		logger.Debug("wrote file", slog.String("path", f.Path), slog.Int64("size", f.Size))
		result.Files = append(result.Files, GeneratedFile{Path: f.Path, Size: f.Size})
	}
	for _, w := range res.Warnings {
		attrs := []any{slog.String("code", w.Code)}
		if w.TypeName != "" {
			attrs = append(attrs, slog.String("type", w.TypeName))
		}
		if w.Source != nil {
			attrs = append(attrs, slog.String("source", fmt.Sprintf("%s:%d", w.Source.File, w.Source.Line)))
		}
		logger.Warn(w.Message, attrs...)
	}
	logger.Info("generated Kotlin",
		slog.Int("files", len(result.Files)),
		slog.Int("types", result.TypesGenerated),
		slog.Duration("duration", time.Since(start)))
	return result, nil
}

// Schema builds and validates the declaration schema without rendering
// it. The returned Config has defaults applied.
func (g *Generator) Schema(ctx context.Context) (*kotlin.Schema, *Config, error) {
	cfg := applyConfigDefaults(&g.cfg)
	if cfg.Provider == "source" && len(g.types) > 0 {
		pkgs, roots, err := sourceRoots(g.types)
		if err != nil {
			return nil, nil, err
		}
		cfg.Packages = appendUnique(slices.Clone(cfg.Packages), pkgs...)
		cfg.RootTypes = appendUnique(slices.Clone(cfg.RootTypes), roots...)
	}
	if cfg.Provider == "reflection" && len(g.types) == 0 {
		return nil, nil, errors.New("reflection provider requires FromTypes")
	}
	if err := validateConfig(cfg); err != nil {
		return nil, nil, err
	}

	var (
		schema *kotlin.Schema
		err    error
	)
	switch cfg.Provider {
	case "source":
		p := &provider.SourceProvider{PackageMap: cfg.PackageMap}
		schema, err = p.BuildSchema(ctx, provider.SourceInputOptions{
			Packages:  cfg.Packages,
			RootTypes: cfg.RootTypes,
		})
	case "reflection":
		var roots []reflect.Type
		for _, v := range g.types {
			roots = append(roots, reflect.TypeOf(v))
		}
		p := &provider.ReflectionProvider{PackageMap: cfg.PackageMap}
		schema, err = p.BuildSchema(ctx, provider.ReflectionInputOptions{RootTypes: roots})
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build schema: %w", err)
	}
	if errs := schema.Validate(); len(errs) > 0 {
		return nil, nil, fmt.Errorf("invalid schema: %w", errors.Join(errs...))
	}
	return schema, cfg, nil
}

// sourceRoots returns the packages declaring the types of values and the
// type names to use as roots.
func sourceRoots(values []any) (pkgs, roots []string, err error) {
	for _, v := range values {
		t := reflect.TypeOf(v)
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t == nil || t.Name() == "" || t.PkgPath() == "" {
			return nil, nil, fmt.Errorf("%T is not a named type", v)
		}
		pkgs = appendUnique(pkgs, t.PkgPath())
		roots = appendUnique(roots, t.Name())
	}
	return pkgs, roots, nil
}

func appendUnique(s []string, vs ...string) []string {
	for _, v := range vs {
		if !slices.Contains(s, v) {
			s = append(s, v)
		}
	}
	return s
}

// generatorConfig maps Config onto the Kotlin generator options.
func generatorConfig(cfg *Config) kotlin.GeneratorConfig {
	return kotlin.GeneratorConfig{
		IndentStyle:     cfg.IndentStyle,
		IndentSize:      cfg.IndentSize,
		LineEnding:      cfg.LineEnding,
		TrailingNewline: true,
		FileName:        cfg.FileName,
		FilePerDecl:     cfg.FilePerDecl,
		Header:          cfg.Header,
		EmitComments:    cfg.PreserveComments != "none",
		Custom: map[string]any{
			"Serializable":     cfg.Serializable,
			"OptionalDefaults": cfg.OptionalDefaults,
		},
	}
}
