package provider

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"reflect"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/broady/typepoet/ktgen/kotlin"
	"github.com/broady/typepoet/poet"
)

// SourceProvider extracts declarations by analyzing Go source code.
type SourceProvider struct {
	// PackageMap overrides the Kotlin package of individual import paths.
	PackageMap PackageMap
}

// SourceInputOptions configures source-based type extraction.
type SourceInputOptions struct {
	// Packages are the Go package paths to analyze.
	Packages []string

	// RootTypes are the type names to extract (e.g., "User", "CreateRequest").
	// If empty, all exported types in the packages are extracted.
	RootTypes []string

	// Dir is the working directory for the package loader. Empty means
	// the current directory.
	Dir string
}

// BuildSchema loads the packages and returns a schema holding the root
// types and every named type they reach within the loaded packages.
func (p *SourceProvider) BuildSchema(ctx context.Context, opts SourceInputOptions) (*kotlin.Schema, error) {
	if len(opts.Packages) == 0 {
		return nil, errors.New("no packages specified")
	}

	cfg := &packages.Config{
		Context: ctx,
		Dir:     opts.Dir,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedImports |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo,
	}
	pkgs, err := packages.Load(cfg, opts.Packages...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, errors.New("no packages found")
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s has errors: %v", pkg.PkgPath, pkg.Errors)
		}
	}

	b := newSchemaBuilder(pkgs, p.PackageMap)

	// packages.Load does not keep input order.
	mainPkg := pkgs[0]
	for _, pkg := range pkgs {
		if pkg.PkgPath == opts.Packages[0] {
			mainPkg = pkg
			break
		}
	}
	b.schema.Package = kotlin.PackageInfo{
		Path: mainPkg.PkgPath,
		Name: mainPkg.Name,
		Dir:  mainPkg.Dir,
	}

	if len(opts.RootTypes) > 0 {
		for _, name := range opts.RootTypes {
			tn, err := b.lookupRoot(name)
			if err != nil {
				return nil, err
			}
			b.enqueue(tn)
		}
	} else {
		for _, pkg := range pkgs {
			scope := pkg.Types.Scope()
			for _, name := range scope.Names() {
				if tn, ok := scope.Lookup(name).(*types.TypeName); ok && tn.Exported() && !tn.IsAlias() {
					b.enqueue(tn)
				}
			}
		}
	}

	for len(b.pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tn := b.pending[0]
		b.pending = b.pending[1:]
		if err := b.extractNamedType(tn); err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", tn.Name(), err)
		}
	}
	return b.schema, nil
}

// schemaBuilder accumulates declarations. Named types referenced from
// extracted declarations are queued for extraction when they live in a
// loaded package.
type schemaBuilder struct {
	pkgs    []*packages.Package
	byPath  map[string]*packages.Package
	schema  *kotlin.Schema
	mirrors *Mirrors
	docs    map[token.Pos]*ast.CommentGroup

	queued  map[*types.TypeName]bool
	pending []*types.TypeName
	foreign map[string]bool
}

func newSchemaBuilder(pkgs []*packages.Package, pm PackageMap) *schemaBuilder {
	b := &schemaBuilder{
		pkgs:    pkgs,
		byPath:  make(map[string]*packages.Package),
		schema:  &kotlin.Schema{},
		mirrors: NewMirrors(pm),
		docs:    make(map[token.Pos]*ast.CommentGroup),
		queued:  make(map[*types.TypeName]bool),
		foreign: make(map[string]bool),
	}
	for _, pkg := range pkgs {
		b.byPath[pkg.PkgPath] = pkg
		for _, file := range pkg.Syntax {
			indexDocs(file, b.docs)
		}
	}
	b.mirrors.onNamed = b.referenced
	return b
}

func (b *schemaBuilder) lookupRoot(name string) (*types.TypeName, error) {
	for _, pkg := range b.pkgs {
		if tn, ok := pkg.Types.Scope().Lookup(name).(*types.TypeName); ok {
			return tn, nil
		}
	}
	return nil, fmt.Errorf("type %s not found in any package", name)
}

func (b *schemaBuilder) enqueue(tn *types.TypeName) {
	if b.queued[tn] {
		return
	}
	b.queued[tn] = true
	b.pending = append(b.pending, tn)
}

// referenced queues named types of loaded packages and warns once about
// the others, which the output can only refer to.
func (b *schemaBuilder) referenced(named *types.Named) {
	obj := named.Origin().Obj()
	if _, ok := b.byPath[obj.Pkg().Path()]; ok {
		b.enqueue(obj)
		return
	}
	key := obj.Pkg().Path() + "." + obj.Name()
	if b.foreign[key] {
		return
	}
	b.foreign[key] = true
	b.schema.AddWarning(kotlin.Warning{
		Code:     "external_type",
		Message:  fmt.Sprintf("type %s is outside the analyzed packages and is referenced but not generated", key),
		TypeName: obj.Name(),
	})
}

func (b *schemaBuilder) className(tn *types.TypeName) *poet.ClassName {
	return poet.ClassNameOf(b.mirrors.packages.Kotlin(tn.Pkg().Path()), tn.Name())
}

// extractNamedType adds the declaration for tn.
func (b *schemaBuilder) extractNamedType(tn *types.TypeName) error {
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil
	}
	name := b.className(tn)
	doc := b.documentation(tn.Pos())
	src := b.source(tn.Pos())
	vars := make(map[poet.TypeParameterElement]*poet.TypeVariableName)

	if consts := b.enumConstants(named); len(consts) > 0 {
		return b.addEnum(tn, named, consts, doc, src)
	}

	if hasCustomMarshaler(named) {
		b.schema.AddWarning(kotlin.Warning{
			Code:     "custom_marshaler",
			Message:  fmt.Sprintf("type %s implements a custom marshaler, mapped to Any", tn.Name()),
			Source:   &src,
			TypeName: tn.Name(),
		})
		alias := kotlin.NewTypeAlias(name, poet.Any)
		alias.Documentation, alias.Source = doc, src
		b.schema.AddDecl(alias)
		return nil
	}

	typeVars, err := b.mirrors.TypeParameters(tn.Name(), named.TypeParams(), vars)
	if err != nil {
		return err
	}

	switch underlying := named.Underlying().(type) {
	case *types.Struct:
		d := kotlin.NewDataClass(name)
		d.Documentation, d.Source = doc, src
		d.TypeVariables = typeVars
		if err := b.addProperties(d, tn.Name(), underlying, vars, 0); err != nil {
			return err
		}
		if len(d.Properties) == 0 {
			// A data class needs at least one property.
			b.schema.AddWarning(kotlin.Warning{
				Code:     "empty_struct",
				Message:  fmt.Sprintf("struct %s has no serialized fields, mapped to Unit", tn.Name()),
				Source:   &src,
				TypeName: tn.Name(),
			})
			alias := kotlin.NewTypeAlias(name, poet.Unit)
			alias.Documentation, alias.Source = doc, src
			alias.TypeVariables = typeVars
			b.schema.AddDecl(alias)
			return nil
		}
		b.schema.AddDecl(d)

	case *types.Interface:
		b.schema.AddWarning(kotlin.Warning{
			Code:     "interface_type",
			Message:  fmt.Sprintf("interface type %s mapped to Any", tn.Name()),
			Source:   &src,
			TypeName: tn.Name(),
		})
		alias := kotlin.NewTypeAlias(name, poet.Any)
		alias.Documentation, alias.Source = doc, src
		alias.TypeVariables = typeVars
		b.schema.AddDecl(alias)

	default:
		target, err := b.mirrors.TypeName(underlying, vars)
		if err != nil {
			return err
		}
		alias := kotlin.NewTypeAlias(name, target)
		alias.Documentation, alias.Source = doc, src
		alias.TypeVariables = typeVars
		b.schema.AddDecl(alias)
	}
	return nil
}

// addProperties appends one property per JSON-visible field of st.
// Embedded structs without a JSON name contribute their own fields, as
// encoding/json promotes them.
func (b *schemaBuilder) addProperties(d *kotlin.DataClass, owner string, st *types.Struct, vars map[poet.TypeParameterElement]*poet.TypeVariableName, depth int) error {
	if depth > 8 {
		return fmt.Errorf("embedding in %s is too deep", owner)
	}
	for i := range st.NumFields() {
		field := st.Field(i)
		if !field.Exported() && !field.Embedded() {
			continue
		}
		jsonName, opts := parseJSONTag(st.Tag(i))
		if jsonName == "-" && len(opts) == 0 {
			continue
		}

		if field.Embedded() && jsonName == "" {
			ft := field.Type()
			if ptr, ok := ft.(*types.Pointer); ok {
				ft = ptr.Elem()
			}
			if embedded, ok := ft.Underlying().(*types.Struct); ok {
				if err := b.addProperties(d, owner, embedded, vars, depth+1); err != nil {
					return err
				}
				continue
			}
		}
		if !field.Exported() {
			continue
		}

		if jsonName == "" {
			jsonName = field.Name()
		}
		t, err := b.mirrors.TypeName(field.Type(), vars)
		if err != nil {
			if errors.Is(err, poet.ErrUnsupported) {
				b.schema.AddWarning(kotlin.Warning{
					Code:     "unsupported_field",
					Message:  fmt.Sprintf("field %s.%s skipped: %v", owner, field.Name(), err),
					Source:   ptrTo(b.source(field.Pos())),
					TypeName: owner,
				})
				continue
			}
			return fmt.Errorf("field %s: %w", field.Name(), err)
		}

		_, isPtr := types.Unalias(field.Type()).(*types.Pointer)
		d.Properties = append(d.Properties, kotlin.Property{
			Name:          kotlin.PropertyName(jsonName),
			SerialName:    jsonName,
			GoName:        field.Name(),
			Type:          t,
			Nullable:      isPtr,
			Optional:      slices.Contains(opts, "omitempty") || slices.Contains(opts, "omitzero"),
			Documentation: b.documentation(field.Pos()),
		})
	}
	return nil
}

type enumConstant struct {
	obj   *types.Const
	value constant.Value
}

// enumConstants returns the package-level constants of type named, in
// source order. Only types with a basic underlying type qualify.
func (b *schemaBuilder) enumConstants(named *types.Named) []enumConstant {
	if _, ok := named.Underlying().(*types.Basic); !ok {
		return nil
	}
	pkg := named.Obj().Pkg()
	scope := pkg.Scope()
	var consts []enumConstant
	for _, name := range scope.Names() {
		c, ok := scope.Lookup(name).(*types.Const)
		if !ok || !types.Identical(c.Type(), named) {
			continue
		}
		consts = append(consts, enumConstant{obj: c, value: c.Val()})
	}
	slices.SortFunc(consts, func(x, y enumConstant) int {
		return int(x.obj.Pos() - y.obj.Pos())
	})
	return consts
}

func (b *schemaBuilder) addEnum(tn *types.TypeName, named *types.Named, consts []enumConstant, doc kotlin.Documentation, src kotlin.Source) error {
	basic := named.Underlying().(*types.Basic)
	valueType := basicClass(basic)
	if valueType == nil {
		return fmt.Errorf("enum %s has unsupported underlying type %s", tn.Name(), basic)
	}
	unsigned := basic.Info()&types.IsUnsigned != 0

	e := kotlin.NewEnumClass(b.className(tn), valueType)
	e.Documentation, e.Source = doc, src
	for _, c := range consts {
		e.Entries = append(e.Entries, kotlin.EnumEntry{
			Name:          kotlin.EnumEntryName(c.obj.Name(), tn.Name()),
			Value:         constantValue(c.value, unsigned),
			Documentation: b.documentation(c.obj.Pos()),
		})
	}
	b.schema.AddDecl(e)
	return nil
}

// constantValue converts a constant to string, int64, uint64, float64 or bool.
func constantValue(v constant.Value, unsigned bool) any {
	switch v.Kind() {
	case constant.String:
		return constant.StringVal(v)
	case constant.Int:
		if unsigned {
			u, _ := constant.Uint64Val(v)
			return u
		}
		i, _ := constant.Int64Val(v)
		return i
	case constant.Float:
		f, _ := constant.Float64Val(v)
		return f
	case constant.Bool:
		return constant.BoolVal(v)
	default:
		return v.String()
	}
}

// hasCustomMarshaler reports whether named has a MarshalJSON or MarshalText
// method, which makes its Go structure meaningless for the wire format.
func hasCustomMarshaler(named *types.Named) bool {
	for i := range named.NumMethods() {
		m := named.Method(i)
		if m.Name() != "MarshalJSON" && m.Name() != "MarshalText" {
			continue
		}
		sig := m.Type().(*types.Signature)
		if sig.Params().Len() == 0 && sig.Results().Len() == 2 {
			return true
		}
	}
	return false
}

// indexDocs records the doc comment of every type, const and field
// declared in file, keyed by the position of its name.
func indexDocs(file *ast.File, docs map[token.Pos]*ast.CommentGroup) {
	ast.Inspect(file, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.GenDecl:
			for _, spec := range n.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					doc := s.Doc
					if doc == nil && len(n.Specs) == 1 {
						doc = n.Doc
					}
					docs[s.Name.Pos()] = doc
				case *ast.ValueSpec:
					doc := s.Doc
					if doc == nil {
						doc = s.Comment
					}
					if doc == nil && len(n.Specs) == 1 {
						doc = n.Doc
					}
					for _, name := range s.Names {
						docs[name.Pos()] = doc
					}
				}
			}
		case *ast.Field:
			doc := n.Doc
			if doc == nil {
				doc = n.Comment
			}
			for _, name := range n.Names {
				docs[name.Pos()] = doc
			}
		case *ast.FuncDecl:
			return false
		}
		return true
	})
}

func (b *schemaBuilder) documentation(pos token.Pos) kotlin.Documentation {
	return parseDocumentation(b.docs[pos])
}

// parseDocumentation splits a comment group into summary, body and the
// "Deprecated:" paragraph.
func parseDocumentation(cg *ast.CommentGroup) kotlin.Documentation {
	if cg == nil {
		return kotlin.Documentation{}
	}
	lines := strings.Split(strings.TrimSpace(cg.Text()), "\n")

	var deprecated *string
	for i, line := range lines {
		if msg, ok := strings.CutPrefix(line, "Deprecated:"); ok {
			msg = strings.TrimSpace(msg)
			deprecated = &msg
			lines = slices.Delete(lines, i, i+1)
			break
		}
	}

	var summary string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			summary = trimmed
			break
		}
	}
	return kotlin.Documentation{
		Summary:    summary,
		Body:       strings.TrimSpace(strings.Join(lines, "\n")),
		Deprecated: deprecated,
	}
}

func (b *schemaBuilder) source(pos token.Pos) kotlin.Source {
	if !pos.IsValid() {
		return kotlin.Source{}
	}
	for _, pkg := range b.pkgs {
		if pkg.Fset != nil {
			position := pkg.Fset.Position(pos)
			return kotlin.Source{File: position.Filename, Line: position.Line, Column: position.Column}
		}
	}
	return kotlin.Source{}
}

// parseJSONTag returns the name and options of the json struct tag.
func parseJSONTag(tag string) (name string, opts []string) {
	v, ok := reflect.StructTag(tag).Lookup("json")
	if !ok {
		return "", nil
	}
	parts := strings.Split(v, ",")
	return parts[0], parts[1:]
}

func ptrTo[T any](v T) *T { return &v }
