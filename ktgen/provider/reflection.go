package provider

import (
	"context"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/broady/typepoet/ktgen/kotlin"
	"github.com/broady/typepoet/poet"
)

// ReflectionProvider extracts declarations using runtime reflection. It
// sees neither doc comments nor constants, so it produces no KDoc and no
// enum classes; prefer SourceProvider where the source is available.
type ReflectionProvider struct {
	// PackageMap overrides the Kotlin package of individual import paths.
	PackageMap PackageMap
}

// ReflectionInputOptions configures reflection-based type extraction.
type ReflectionInputOptions struct {
	// RootTypes are the types to extract, specified as reflect.Type values.
	RootTypes []reflect.Type
}

// BuildSchema extracts the root types and every named type they reach.
func (p *ReflectionProvider) BuildSchema(ctx context.Context, opts ReflectionInputOptions) (*kotlin.Schema, error) {
	if len(opts.RootTypes) == 0 {
		return nil, errors.New("no root types provided")
	}

	b := &reflectionSchemaBuilder{
		schema:  &kotlin.Schema{},
		mirrors: NewReflectMirrors(p.PackageMap),
		queued:  make(map[reflect.Type]bool),
	}
	b.mirrors.onNamed = b.enqueue

	for _, t := range opts.RootTypes {
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t == nil || !isNamed(t) {
			return nil, fmt.Errorf("root type %v is not a named type", t)
		}
		if strings.Contains(t.Name(), "[") {
			return nil, fmt.Errorf("root type %v is a generic instantiation", t)
		}
		b.enqueue(t)
	}
	if pkg := opts.RootTypes[0]; pkg != nil {
		for pkg.Kind() == reflect.Pointer {
			pkg = pkg.Elem()
		}
		b.schema.Package = kotlin.PackageInfo{Path: pkg.PkgPath(), Name: lastElem(pkg.PkgPath())}
	}

	for len(b.pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t := b.pending[0]
		b.pending = b.pending[1:]
		if err := b.extractType(t); err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", t, err)
		}
	}
	return b.schema, nil
}

type reflectionSchemaBuilder struct {
	schema  *kotlin.Schema
	mirrors *ReflectMirrors
	queued  map[reflect.Type]bool
	pending []reflect.Type
}

func (b *reflectionSchemaBuilder) enqueue(t reflect.Type) {
	if b.queued[t] {
		return
	}
	b.queued[t] = true
	b.pending = append(b.pending, t)
}

var (
	jsonMarshaler = reflect.TypeFor[json.Marshaler]()
	textMarshaler = reflect.TypeFor[encoding.TextMarshaler]()
)

func (b *reflectionSchemaBuilder) extractType(t reflect.Type) error {
	name := b.mirrors.className(t)

	if pt := reflect.PointerTo(t); pt.Implements(jsonMarshaler) || pt.Implements(textMarshaler) {
		b.schema.AddWarning(kotlin.Warning{
			Code:     "custom_marshaler",
			Message:  fmt.Sprintf("type %s implements a custom marshaler, mapped to Any", t.Name()),
			TypeName: t.Name(),
		})
		b.schema.AddDecl(kotlin.NewTypeAlias(name, poet.Any))
		return nil
	}

	switch t.Kind() {
	case reflect.Struct:
		d := kotlin.NewDataClass(name)
		if err := b.addProperties(d, t, 0); err != nil {
			return err
		}
		if len(d.Properties) == 0 {
			b.schema.AddWarning(kotlin.Warning{
				Code:     "empty_struct",
				Message:  fmt.Sprintf("struct %s has no serialized fields, mapped to Unit", t.Name()),
				TypeName: t.Name(),
			})
			b.schema.AddDecl(kotlin.NewTypeAlias(name, poet.Unit))
			return nil
		}
		b.schema.AddDecl(d)

	case reflect.Interface:
		b.schema.AddWarning(kotlin.Warning{
			Code:     "interface_type",
			Message:  fmt.Sprintf("interface type %s mapped to Any", t.Name()),
			TypeName: t.Name(),
		})
		b.schema.AddDecl(kotlin.NewTypeAlias(name, poet.Any))

	default:
		target, err := poet.FromReflect(b.mirrors.structure(t))
		if err != nil {
			return err
		}
		b.schema.AddDecl(kotlin.NewTypeAlias(name, target))
	}
	return nil
}

func (b *reflectionSchemaBuilder) addProperties(d *kotlin.DataClass, t reflect.Type, depth int) error {
	if depth > 8 {
		return fmt.Errorf("embedding in %s is too deep", t.Name())
	}
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() && !field.Anonymous {
			continue
		}
		jsonName, opts := parseJSONTag(string(field.Tag))
		if jsonName == "-" && len(opts) == 0 {
			continue
		}

		if field.Anonymous && jsonName == "" {
			ft := field.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if err := b.addProperties(d, ft, depth+1); err != nil {
					return err
				}
				continue
			}
		}
		if !field.IsExported() {
			continue
		}

		if jsonName == "" {
			jsonName = field.Name
		}
		typ, err := poet.FromReflect(b.mirrors.Of(field.Type))
		if err != nil {
			if errors.Is(err, poet.ErrUnsupported) {
				b.schema.AddWarning(kotlin.Warning{
					Code:     "unsupported_field",
					Message:  fmt.Sprintf("field %s.%s skipped: %v", t.Name(), field.Name, err),
					TypeName: t.Name(),
				})
				continue
			}
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
		d.Properties = append(d.Properties, kotlin.Property{
			Name:       kotlin.PropertyName(jsonName),
			SerialName: jsonName,
			GoName:     field.Name,
			Type:       typ,
			Nullable:   field.Type.Kind() == reflect.Pointer,
			Optional:   slices.Contains(opts, "omitempty") || slices.Contains(opts, "omitzero"),
		})
	}
	return nil
}

// ReflectMirrors wraps reflect types as poet reflective descriptions.
type ReflectMirrors struct {
	packages PackageMap
	onNamed  func(reflect.Type)
}

// NewReflectMirrors returns a ReflectMirrors that maps import paths
// through packages.
func NewReflectMirrors(packages PackageMap) *ReflectMirrors {
	return &ReflectMirrors{packages: packages}
}

// TypeName converts t.
func (m *ReflectMirrors) TypeName(t reflect.Type) (poet.TypeName, error) {
	return poet.FromReflect(m.Of(t))
}

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
	errorIface   = reflect.TypeFor[error]()
)

// Of returns the description of t. Named types become class references;
// types with no Kotlin counterpart yield a description that
// poet.FromReflect rejects with *poet.UnsupportedError.
func (m *ReflectMirrors) Of(t reflect.Type) poet.ReflectType {
	switch t {
	case nil:
		return nil
	case timeType:
		return reflectClass(instant)
	case durationType:
		return reflectClass(duration)
	case errorIface:
		return reflectClass(poet.Throwable)
	}
	if isNamed(t) {
		if strings.Contains(t.Name(), "[") {
			return unsupportedReflect("generic instantiation " + t.String())
		}
		if m.onNamed != nil {
			m.onNamed(t)
		}
		return &rClass{pkg: m.packages.Kotlin(t.PkgPath()), names: []string{t.Name()}}
	}
	return m.structure(t)
}

// structure describes t by its kind, ignoring its name.
func (m *ReflectMirrors) structure(t reflect.Type) poet.ReflectType {
	if c := kindClass(t.Kind()); c != nil {
		return reflectClass(c)
	}
	switch t.Kind() {
	case reflect.Pointer:
		return m.Of(t.Elem())

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 && !isNamed(t.Elem()) {
			return reflectClass(poet.ByteArray)
		}
		return parameterized(poet.List, m.Of(t.Elem()))

	case reflect.Array:
		return &rArray{component: m.Of(t.Elem())}

	case reflect.Map:
		return parameterized(poet.Map, m.Of(t.Key()), m.Of(t.Elem()))

	case reflect.Chan:
		elem := m.Of(t.Elem())
		switch t.ChanDir() {
		case reflect.SendDir:
			return parameterized(sendChannel, &rWildcard{upper: []poet.ReflectType{reflectClass(poet.Any)}, lower: []poet.ReflectType{elem}})
		case reflect.RecvDir:
			return parameterized(receiveChannel, &rWildcard{upper: []poet.ReflectType{elem}})
		default:
			return parameterized(channel, elem)
		}

	case reflect.Func:
		return m.function(t)

	case reflect.Interface:
		if t.NumMethod() == 0 {
			return reflectClass(poet.Any)
		}
		return unsupportedReflect(t.String())

	case reflect.Struct:
		if t.NumField() == 0 {
			return reflectClass(poet.Unit)
		}
		return unsupportedReflect("anonymous " + t.String())

	default:
		return unsupportedReflect(t.String())
	}
}

func (m *ReflectMirrors) function(t reflect.Type) poet.ReflectType {
	f := &rFunc{desc: t.String()}
	for i := range t.NumIn() {
		in := t.In(i)
		if t.IsVariadic() && i == t.NumIn()-1 {
			f.params = append(f.params, parameterized(poet.Array, &rWildcard{upper: []poet.ReflectType{m.Of(in.Elem())}}))
			continue
		}
		f.params = append(f.params, m.Of(in))
	}

	var results []reflect.Type
	for i := range t.NumOut() {
		results = append(results, t.Out(i))
	}
	if n := len(results); n > 0 && results[n-1] == errorIface {
		results = results[:n-1]
	}
	switch len(results) {
	case 0:
	case 1:
		f.result = m.Of(results[0])
	case 2:
		f.result = parameterized(poet.Pair, m.Of(results[0]), m.Of(results[1]))
	case 3:
		f.result = parameterized(poet.Triple, m.Of(results[0]), m.Of(results[1]), m.Of(results[2]))
	default:
		return unsupportedReflect(t.String())
	}
	return f
}

func (m *ReflectMirrors) className(t reflect.Type) *poet.ClassName {
	return poet.ClassNameOf(m.packages.Kotlin(t.PkgPath()), t.Name())
}

func kindClass(k reflect.Kind) *poet.ClassName {
	switch k {
	case reflect.Bool:
		return poet.Boolean
	case reflect.String:
		return poet.String
	case reflect.Int, reflect.Int64:
		return poet.Long
	case reflect.Int32:
		return poet.Int
	case reflect.Int16:
		return poet.Short
	case reflect.Int8:
		return poet.Byte
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return poet.ULong
	case reflect.Uint32:
		return poet.UInt
	case reflect.Uint16:
		return poet.UShort
	case reflect.Uint8:
		return poet.UByte
	case reflect.Float32:
		return poet.Float
	case reflect.Float64:
		return poet.Double
	default:
		return nil
	}
}

// isNamed reports whether t is a defined type outside the universe scope.
func isNamed(t reflect.Type) bool {
	return t.Name() != "" && t.PkgPath() != ""
}

func lastElem(importPath string) string {
	if i := strings.LastIndexByte(importPath, '/'); i >= 0 {
		return importPath[i+1:]
	}
	return importPath
}

type rClass struct {
	pkg   string
	names []string
}

func reflectClass(c *poet.ClassName) *rClass {
	return &rClass{pkg: c.PackageName(), names: c.SimpleNames()}
}

func (c *rClass) String() string        { return c.pkg + "." + strings.Join(c.names, ".") }
func (c *rClass) Package() string       { return c.pkg }
func (c *rClass) SimpleNames() []string { return c.names }

type rParameterized struct {
	raw  *rClass
	args []poet.ReflectType
}

func parameterized(raw *poet.ClassName, args ...poet.ReflectType) *rParameterized {
	return &rParameterized{raw: reflectClass(raw), args: args}
}

func (p *rParameterized) String() string                { return p.raw.String() + "<...>" }
func (p *rParameterized) Raw() poet.ReflectClass        { return p.raw }
func (p *rParameterized) Arguments() []poet.ReflectType { return p.args }

type rWildcard struct {
	upper, lower []poet.ReflectType
}

func (w *rWildcard) String() string                  { return "?" }
func (w *rWildcard) UpperBounds() []poet.ReflectType { return w.upper }
func (w *rWildcard) LowerBounds() []poet.ReflectType { return w.lower }

type rArray struct {
	component poet.ReflectType
}

func (a *rArray) String() string              { return "[]" + a.component.String() }
func (a *rArray) Component() poet.ReflectType { return a.component }

type rFunc struct {
	params []poet.ReflectType
	result poet.ReflectType
	desc   string
}

func (f *rFunc) String() string                 { return f.desc }
func (f *rFunc) Receiver() poet.ReflectType     { return nil }
func (f *rFunc) Parameters() []poet.ReflectType { return f.params }
func (f *rFunc) Result() poet.ReflectType       { return f.result }

type unsupportedReflect string

func (u unsupportedReflect) String() string { return string(u) }
