// Package kotlin holds the Kotlin declaration model produced by the
// providers and the emitter that renders it to source files.
package kotlin

import (
	"github.com/broady/typepoet/poet"
)

// DeclKind identifies the category of a top-level declaration.
type DeclKind int

const (
	KindDataClass DeclKind = iota // data class with a primary constructor
	KindTypeAlias                 // typealias X = Y
	KindEnumClass                 // enum class with a value property
)

// String returns the string representation of the declaration kind.
func (k DeclKind) String() string {
	switch k {
	case KindDataClass:
		return "DataClass"
	case KindTypeAlias:
		return "TypeAlias"
	case KindEnumClass:
		return "EnumClass"
	default:
		return "Unknown"
	}
}

// Decl is a top-level Kotlin declaration.
type Decl interface {
	// Kind returns the declaration kind for type switching.
	Kind() DeclKind

	// ClassName returns the fully qualified name being declared.
	ClassName() *poet.ClassName

	// Doc returns the documentation carried over from Go.
	Doc() Documentation

	// Src returns the Go source location of the original type.
	Src() Source

	sealed()
}

// declBase holds the fields every declaration has.
type declBase struct {
	Name          *poet.ClassName
	Documentation Documentation
	Source        Source
}

func (d declBase) ClassName() *poet.ClassName { return d.Name }
func (d declBase) Doc() Documentation         { return d.Documentation }
func (d declBase) Src() Source                { return d.Source }
func (declBase) sealed()                      {}

// DataClass is a Kotlin data class generated from a Go struct.
type DataClass struct {
	declBase
	TypeVariables []*poet.TypeVariableName
	Properties    []Property
}

// NewDataClass returns a data class declaration.
func NewDataClass(name *poet.ClassName, props ...Property) *DataClass {
	return &DataClass{declBase: declBase{Name: name}, Properties: props}
}

// Kind returns KindDataClass.
func (*DataClass) Kind() DeclKind { return KindDataClass }

// Property is a val in a data class primary constructor.
type Property struct {
	// Name is the Kotlin property name.
	Name string

	// SerialName is the wire name when it differs from Name.
	SerialName string

	// GoName is the Go field the property came from.
	GoName string

	Type poet.TypeName

	// Nullable renders the type with a trailing '?'.
	Nullable bool

	// Optional gives the property a default of null. It implies Nullable.
	Optional bool

	Documentation Documentation
}

// TypeAlias is a Kotlin typealias generated from a named non-struct type.
type TypeAlias struct {
	declBase
	TypeVariables []*poet.TypeVariableName
	Target        poet.TypeName
}

// NewTypeAlias returns a typealias declaration.
func NewTypeAlias(name *poet.ClassName, target poet.TypeName) *TypeAlias {
	return &TypeAlias{declBase: declBase{Name: name}, Target: target}
}

// Kind returns KindTypeAlias.
func (*TypeAlias) Kind() DeclKind { return KindTypeAlias }

// EnumClass is a Kotlin enum class generated from a typed const group.
type EnumClass struct {
	declBase

	// ValueType is the type of the value property (String, Long, ...).
	ValueType poet.TypeName

	Entries []EnumEntry
}

// NewEnumClass returns an enum class declaration.
func NewEnumClass(name *poet.ClassName, valueType poet.TypeName, entries ...EnumEntry) *EnumClass {
	return &EnumClass{declBase: declBase{Name: name}, ValueType: valueType, Entries: entries}
}

// Kind returns KindEnumClass.
func (*EnumClass) Kind() DeclKind { return KindEnumClass }

// EnumEntry is one constant of an enum class.
type EnumEntry struct {
	// Name is the Kotlin entry name (SCREAMING_CASE).
	Name string

	// Value is a string, int64, uint64, float64 or bool.
	Value any

	Documentation Documentation
}

// Documentation is a doc comment split the way KDoc renders it.
type Documentation struct {
	Summary    string
	Body       string
	Deprecated *string
}

// IsZero reports whether the documentation is empty.
func (d Documentation) IsZero() bool {
	return d.Summary == "" && d.Body == "" && d.Deprecated == nil
}

// Source is a position in Go source.
type Source struct {
	File   string
	Line   int
	Column int
}

// IsZero reports whether the source location is unknown.
func (s Source) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}

// Warning represents a non-fatal issue encountered during generation.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string

	// Message is a human-readable description.
	Message string

	// Source is the location that triggered the warning, if applicable.
	Source *Source

	// TypeName names the affected Go type, if applicable.
	TypeName string
}

// PackageInfo describes the Go package a schema was built from.
type PackageInfo struct {
	Path string
	Name string
	Dir  string
}
