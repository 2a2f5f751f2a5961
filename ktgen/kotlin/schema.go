package kotlin

import (
	"sort"
	"strings"

	"github.com/broady/typepoet/poet"
)

// Schema is a complete set of declarations to generate.
type Schema struct {
	// Package is the Go package the declarations came from.
	Package PackageInfo

	// Decls are the top-level declarations, in provider order. Generators
	// group them by Kotlin package and keep the relative order.
	Decls []Decl

	// Warnings contains non-fatal issues encountered during schema building.
	Warnings []Warning
}

// AddDecl adds a declaration to the schema.
func (s *Schema) AddDecl(d Decl) {
	s.Decls = append(s.Decls, d)
}

// AddWarning adds a warning to the schema.
func (s *Schema) AddWarning(w Warning) {
	s.Warnings = append(s.Warnings, w)
}

// FindDecl looks up a declaration by canonical name. Returns nil if not found.
func (s *Schema) FindDecl(canonical string) Decl {
	for _, d := range s.Decls {
		if d.ClassName().CanonicalName() == canonical {
			return d
		}
	}
	return nil
}

// Packages returns the distinct Kotlin packages of the declarations, sorted.
func (s *Schema) Packages() []string {
	seen := make(map[string]bool)
	var pkgs []string
	for _, d := range s.Decls {
		p := d.ClassName().PackageName()
		if !seen[p] {
			seen[p] = true
			pkgs = append(pkgs, p)
		}
	}
	sort.Strings(pkgs)
	return pkgs
}

// Validate checks the schema for structural issues.
// Returns all validation errors found (not just the first).
func (s *Schema) Validate() []error {
	var errors []*ValidationError

	names := make(map[string]bool)
	for _, d := range s.Decls {
		if d.ClassName() == nil {
			errors = append(errors, &ValidationError{
				Code:    "missing_name",
				Message: "declaration of kind " + d.Kind().String() + " has no name",
			})
			continue
		}
		name := d.ClassName().CanonicalName()
		if names[name] {
			errors = append(errors, &ValidationError{
				Code:    "duplicate_decl",
				Message: "duplicate declaration: " + name,
			})
		}
		names[name] = true
	}

	for _, d := range s.Decls {
		if d.ClassName() == nil {
			continue
		}
		switch d := d.(type) {
		case *DataClass:
			errors = append(errors, validateDataClass(d)...)
		case *TypeAlias:
			if d.Target == nil {
				errors = append(errors, &ValidationError{
					Code:    "missing_target",
					Message: "typealias " + d.Name.CanonicalName() + " has no target",
				})
			}
		case *EnumClass:
			if len(d.Entries) == 0 {
				errors = append(errors, &ValidationError{
					Code:    "empty_enum",
					Message: "enum class " + d.Name.CanonicalName() + " has no entries",
				})
			}
			entries := make(map[string]bool)
			for _, e := range d.Entries {
				if entries[e.Name] {
					errors = append(errors, &ValidationError{
						Code:    "duplicate_entry",
						Message: "duplicate entry in enum class " + d.Name.CanonicalName() + ": " + e.Name,
					})
				}
				entries[e.Name] = true
			}
		}
	}

	errors = append(errors, s.detectAliasCycles()...)

	var result []error
	for _, e := range errors {
		result = append(result, e)
	}
	return result
}

func validateDataClass(d *DataClass) []*ValidationError {
	var errors []*ValidationError
	if len(d.Properties) == 0 {
		errors = append(errors, &ValidationError{
			Code:    "empty_data_class",
			Message: "data class " + d.Name.CanonicalName() + " has no properties",
		})
	}
	props := make(map[string]bool)
	for _, p := range d.Properties {
		if p.Type == nil {
			errors = append(errors, &ValidationError{
				Code:    "missing_type",
				Message: "property " + d.Name.SimpleName() + "." + p.Name + " has no type",
			})
		}
		if props[p.Name] {
			errors = append(errors, &ValidationError{
				Code:    "duplicate_property",
				Message: "duplicate property in data class " + d.Name.CanonicalName() + ": " + p.Name,
			})
		}
		props[p.Name] = true
	}
	return errors
}

// detectAliasCycles reports typealiases that expand to themselves, which
// Kotlin rejects.
func (s *Schema) detectAliasCycles() []*ValidationError {
	aliases := make(map[string]*TypeAlias)
	for _, d := range s.Decls {
		if a, ok := d.(*TypeAlias); ok && a.Name != nil && a.Target != nil {
			aliases[a.Name.CanonicalName()] = a
		}
	}

	var errors []*ValidationError
	reported := make(map[string]bool)
	visited := make(map[string]bool)
	inStack := make(map[string]bool)

	var visit func(name string, path []string)
	visit = func(name string, path []string) {
		if inStack[name] {
			cycle := append(path, name)
			if !reported[name] {
				reported[name] = true
				errors = append(errors, &ValidationError{
					Code:    "alias_cycle",
					Message: "recursive typealias: " + strings.Join(cycle, " -> "),
				})
			}
			return
		}
		if visited[name] {
			return
		}
		visited[name] = true
		inStack[name] = true
		for _, ref := range referencedClasses(aliases[name].Target) {
			if _, ok := aliases[ref]; ok {
				visit(ref, append(path, name))
			}
		}
		inStack[name] = false
	}

	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		visit(k, nil)
	}
	return errors
}

// referencedClasses lists the canonical names of every class mentioned in t.
func referencedClasses(t poet.TypeName) []string {
	var out []string
	var walk func(t poet.TypeName)
	walk = func(t poet.TypeName) {
		switch t := t.(type) {
		case *poet.ClassName:
			out = append(out, t.CanonicalName())
		case *poet.ParameterizedTypeName:
			out = append(out, t.RawType().CanonicalName())
			for _, a := range t.TypeArguments() {
				walk(a)
			}
		case *poet.WildcardTypeName:
			for _, b := range t.UpperBounds() {
				walk(b)
			}
			for _, b := range t.LowerBounds() {
				walk(b)
			}
		case *poet.LambdaTypeName:
			if r := t.Receiver(); r != nil {
				walk(r)
			}
			for _, p := range t.Parameters() {
				walk(p)
			}
			walk(t.ReturnType())
		}
	}
	walk(t)
	return out
}

// ValidationError represents a schema validation error.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
