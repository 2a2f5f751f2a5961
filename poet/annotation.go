package poet

import (
	"slices"
	"strings"
)

// Annotation is an annotation attached to a type use, such as
// @JvmSuppressWildcards or @Size(max = 10).
type Annotation struct {
	// Type is the annotation class.
	Type *ClassName `json:"type"`

	// Members are pre-rendered arguments, emitted verbatim between
	// parentheses and separated by ", ". Empty means no parentheses.
	Members []string `json:"members,omitempty"`
}

// AnnotationOf returns an annotation of class t with the given members.
func AnnotationOf(t *ClassName, members ...string) Annotation {
	return Annotation{Type: t, Members: slices.Clone(members)}
}

// Emit renders the annotation without a trailing space.
func (a Annotation) Emit(w Writer) error {
	if err := w.Emit("@$T", a.Type); err != nil {
		return err
	}
	if len(a.Members) == 0 {
		return nil
	}
	return w.Emit("($L)", strings.Join(a.Members, ", "))
}

// Equal reports whether a and b have the same class and members.
func (a Annotation) Equal(b Annotation) bool {
	return a.key() == b.key()
}

// String renders the annotation with a fully qualified class name.
func (a Annotation) String() string {
	var w detachedWriter
	if err := a.Emit(&w); err != nil {
		return "<" + err.Error() + ">"
	}
	return w.String()
}

func (a Annotation) key() string {
	var b strings.Builder
	a.writeKey(&b)
	return b.String()
}

func (a Annotation) writeKey(b *strings.Builder) {
	b.WriteString("@(")
	if a.Type != nil {
		a.Type.writeKey(b, false)
	}
	b.WriteString(")(")
	for _, m := range a.Members {
		writeString(b, m)
	}
	b.WriteString(")")
}
