package poet

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// ClassName is a fully qualified reference to a named type, possibly nested
// (com.example.Outer.Inner).
type ClassName struct {
	annotated
	pkg   string
	names []string // outermost first
}

// ClassNameOf returns the class simple[0].simple[1]... in package pkg.
// It panics if no simple name is given or a simple name is empty or
// contains a dot; nesting is expressed by passing several simple names.
func ClassNameOf(pkg string, simple ...string) *ClassName {
	if len(simple) == 0 {
		panic(invariantf("ClassNameOf", "%q: no simple names", pkg))
	}
	for _, s := range simple {
		if err := checkSimpleName(s); err != "" {
			panic(invariantf("ClassNameOf", "%q: %s in %q", pkg, err, simple))
		}
	}
	return &ClassName{pkg: pkg, names: slices.Clone(simple)}
}

// checkSimpleName returns a description of what is wrong with s, or "".
func checkSimpleName(s string) string {
	switch {
	case s == "":
		return "empty simple name"
	case strings.Contains(s, "."):
		return fmt.Sprintf("simple name %q contains a dot", s)
	}
	return ""
}

// ValidSimpleName reports whether s can be passed to ClassNameOf.
func ValidSimpleName(s string) bool {
	return checkSimpleName(s) == ""
}

// BestGuess parses a canonical name such as "java.util.Map.Entry". Package
// segments are the leading lower-case segments; the first segment starting
// with an upper-case letter begins the simple names.
func BestGuess(qualified string) (*ClassName, error) {
	parts := strings.Split(qualified, ".")
	i := 0
	for i < len(parts) && parts[i] != "" && !unicode.IsUpper(firstRune(parts[i])) {
		i++
	}
	if i == len(parts) {
		return nil, fmt.Errorf("couldn't make a guess for %q", qualified)
	}
	for _, p := range parts[i:] {
		if p == "" {
			return nil, fmt.Errorf("couldn't make a guess for %q", qualified)
		}
	}
	return &ClassName{pkg: strings.Join(parts[:i], "."), names: parts[i:]}, nil
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

// Kind returns KindClass.
func (c *ClassName) Kind() Kind { return KindClass }

// PackageName returns the package, empty for the default package.
func (c *ClassName) PackageName() string { return c.pkg }

// SimpleName returns the innermost simple name.
func (c *ClassName) SimpleName() string { return c.names[len(c.names)-1] }

// SimpleNames returns the simple names, outermost first.
func (c *ClassName) SimpleNames() []string { return slices.Clone(c.names) }

// CanonicalName returns pkg.Outer.Inner (or Outer.Inner in the default package).
func (c *ClassName) CanonicalName() string {
	if c.pkg == "" {
		return strings.Join(c.names, ".")
	}
	return c.pkg + "." + strings.Join(c.names, ".")
}

// TopLevel returns the outermost class enclosing c (c itself if top level).
func (c *ClassName) TopLevel() *ClassName {
	return &ClassName{pkg: c.pkg, names: c.names[:1:1]}
}

// Enclosing returns the class directly enclosing c, or nil.
func (c *ClassName) Enclosing() *ClassName {
	if len(c.names) == 1 {
		return nil
	}
	return &ClassName{pkg: c.pkg, names: slices.Clone(c.names[:len(c.names)-1])}
}

// Nested returns the class named name nested inside c. It panics if name
// is empty or contains a dot.
func (c *ClassName) Nested(name string) *ClassName {
	if err := checkSimpleName(name); err != "" {
		panic(invariantf("Nested", "%s: %s", c.CanonicalName(), err))
	}
	names := make([]string, 0, len(c.names)+1)
	names = append(names, c.names...)
	return &ClassName{pkg: c.pkg, names: append(names, name)}
}

// Annotated returns a copy of c with anns appended.
func (c *ClassName) Annotated(anns ...Annotation) TypeName {
	return &ClassName{annotated: annotated{c.concat(anns)}, pkg: c.pkg, names: c.names}
}

// WithoutAnnotations returns c with no annotations.
func (c *ClassName) WithoutAnnotations() TypeName {
	return &ClassName{pkg: c.pkg, names: c.names}
}

// Emit renders the annotations and then the name chosen by w.
func (c *ClassName) Emit(w Writer) error {
	if err := c.emitAnnotations(w); err != nil {
		return err
	}
	return w.Emit("$L", w.LookupName(c))
}

// Equal reports structural equality.
func (c *ClassName) Equal(other TypeName) bool { return equal(c, other) }

// Hash returns a hash consistent with Equal.
func (c *ClassName) Hash() uint64 { return hash(c) }

func (c *ClassName) String() string { return render(c) }

// MarshalJSON implements json.Marshaler.
func (c *ClassName) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind        string       `json:"kind"`
		Package     string       `json:"package,omitempty"`
		Names       []string     `json:"names"`
		Annotations []Annotation `json:"annotations,omitempty"`
	}{
		Kind:        "class",
		Package:     c.pkg,
		Names:       c.names,
		Annotations: c.annotations,
	})
}

// Built-in Kotlin types. Any is the top type: the default upper bound of a
// wildcard and the bound that renders as the star projection.
var (
	Any          = ClassNameOf("kotlin", "Any")
	Unit         = ClassNameOf("kotlin", "Unit")
	Nothing      = ClassNameOf("kotlin", "Nothing")
	Boolean      = ClassNameOf("kotlin", "Boolean")
	Byte         = ClassNameOf("kotlin", "Byte")
	Short        = ClassNameOf("kotlin", "Short")
	Int          = ClassNameOf("kotlin", "Int")
	Long         = ClassNameOf("kotlin", "Long")
	Float        = ClassNameOf("kotlin", "Float")
	Double       = ClassNameOf("kotlin", "Double")
	Char         = ClassNameOf("kotlin", "Char")
	String       = ClassNameOf("kotlin", "String")
	CharSequence = ClassNameOf("kotlin", "CharSequence")
	Throwable    = ClassNameOf("kotlin", "Throwable")
	Comparable   = ClassNameOf("kotlin", "Comparable")
	Array        = ClassNameOf("kotlin", "Array")
	ByteArray    = ClassNameOf("kotlin", "ByteArray")
	Pair         = ClassNameOf("kotlin", "Pair")
	Triple       = ClassNameOf("kotlin", "Triple")
	UByte        = ClassNameOf("kotlin", "UByte")
	UShort       = ClassNameOf("kotlin", "UShort")
	UInt         = ClassNameOf("kotlin", "UInt")
	ULong        = ClassNameOf("kotlin", "ULong")
	List         = ClassNameOf("kotlin.collections", "List")
	MutableList  = ClassNameOf("kotlin.collections", "MutableList")
	Set          = ClassNameOf("kotlin.collections", "Set")
	Map          = ClassNameOf("kotlin.collections", "Map")
	MutableMap   = ClassNameOf("kotlin.collections", "MutableMap")
)

// IsAny reports whether t is exactly the top type, with no annotations.
func IsAny(t TypeName) bool {
	return Any.Equal(t)
}
