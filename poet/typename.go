// Package poet models references to Kotlin types as immutable values.
// A TypeName can be annotated, compared structurally, and rendered into an
// emission context (a Writer) that decides how class names are spelled.
package poet

import (
	"slices"
	"strings"
)

// Kind identifies the concrete variant of a TypeName.
type Kind int

const (
	KindClass         Kind = iota // Named type (kotlin.String, com.example.User)
	KindParameterized             // Generic type with arguments (List<String>)
	KindTypeVariable              // Type variable (T)
	KindWildcard                  // Variance projection (out T, in T, *)
	KindLambda                    // Function type ((A) -> B)
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindClass:
		return "Class"
	case KindParameterized:
		return "Parameterized"
	case KindTypeVariable:
		return "TypeVariable"
	case KindWildcard:
		return "Wildcard"
	case KindLambda:
		return "Lambda"
	default:
		return "Unknown"
	}
}

// TypeName is a reference to some type.
// Only types in this package implement it; switch on Kind or on the
// concrete type to handle every variant.
type TypeName interface {
	// Kind returns the variant tag for type switching.
	Kind() Kind

	// Annotations returns a copy of the attached annotations, in order.
	Annotations() []Annotation

	// Annotated returns a copy of this type with anns appended to its
	// annotations. The result has the same concrete type as the receiver.
	Annotated(anns ...Annotation) TypeName

	// WithoutAnnotations returns a copy of this type with no annotations.
	WithoutAnnotations() TypeName

	// Emit renders this type into w, annotations first.
	Emit(w Writer) error

	// Equal reports whether other has the same variant and structure,
	// including annotations.
	Equal(other TypeName) bool

	// Hash returns a hash consistent with Equal.
	Hash() uint64

	// String renders this type with fully qualified class names.
	String() string

	sealed()
}

// annotated holds the annotation list shared by every variant.
type annotated struct {
	annotations []Annotation
}

func (a annotated) Annotations() []Annotation {
	return slices.Clone(a.annotations)
}

// concat returns existing ++ added as a fresh slice.
func (a annotated) concat(added []Annotation) []Annotation {
	if len(a.annotations)+len(added) == 0 {
		return nil
	}
	out := make([]Annotation, 0, len(a.annotations)+len(added))
	out = append(out, a.annotations...)
	return append(out, added...)
}

// emitAnnotations writes each annotation followed by a space.
func (a annotated) emitAnnotations(w Writer) error {
	for _, ann := range a.annotations {
		if err := ann.Emit(w); err != nil {
			return err
		}
		if err := w.Emit(" "); err != nil {
			return err
		}
	}
	return nil
}

func (a annotated) writeKey(b *strings.Builder) {
	for _, ann := range a.annotations {
		ann.writeKey(b)
	}
}

func (annotated) sealed() {}

// cloneTypes copies a TypeName slice so callers cannot alias internal state.
func cloneTypes(ts []TypeName) []TypeName {
	if len(ts) == 0 {
		return nil
	}
	return slices.Clone(ts)
}

// render is the shared implementation of String.
func render(t TypeName) string {
	var w detachedWriter
	if err := t.Emit(&w); err != nil {
		return "<" + err.Error() + ">"
	}
	return w.String()
}
