// Package codewriter renders poet type names into Kotlin source files.
//
// Rendering a file takes two passes over the same body: the first records
// every class the body mentions, the second writes the body with class
// names shortened wherever an import or a default import makes the simple
// name unambiguous.
package codewriter

import (
	"bytes"
	"strings"

	"github.com/hashicorp/go-set/v3"

	"github.com/broady/typepoet/poet"
)

// DefaultIndent is the indentation unit used when none is configured.
const DefaultIndent = "    "

// CodeWriter is a poet.Writer that writes Kotlin text into a buffer.
// It is not safe for concurrent use.
type CodeWriter struct {
	buf         bytes.Buffer
	indent      string
	depth       int
	atLineStart bool

	imports *Imports

	// Set only while collecting.
	collecting bool
	seen       *set.Set[string]
	refs       []*poet.ClassName
}

// New returns a writer that spells class names according to imports.
// A nil imports fully qualifies every class. An empty indent selects
// DefaultIndent.
func New(imports *Imports, indent string) *CodeWriter {
	if indent == "" {
		indent = DefaultIndent
	}
	return &CodeWriter{indent: indent, imports: imports, atLineStart: true}
}

func newCollector() *CodeWriter {
	w := New(nil, "")
	w.collecting = true
	w.seen = set.New[string](0)
	return w
}

// CollectImports runs body against a recording writer and resolves the
// imports for a file in package pkg. Classes in explicit are imported even
// if body never mentions them. Simple names in local are declared by the
// file itself and take precedence over default imports.
func CollectImports(pkg string, explicit []*poet.ClassName, local []string, body func(w *CodeWriter) error) (*Imports, error) {
	c := newCollector()
	if err := body(c); err != nil {
		return nil, err
	}
	locals := make([]*poet.ClassName, 0, len(local))
	for _, name := range local {
		locals = append(locals, poet.ClassNameOf(pkg, name))
	}
	return resolveImports(pkg, explicit, locals, c.refs), nil
}

// Emit expands format and writes the result.
func (w *CodeWriter) Emit(format string, args ...any) error {
	return poet.ExpandFormat(w, format, args...)
}

// LookupName returns the spelling of c chosen by the import pass.
func (w *CodeWriter) LookupName(c *poet.ClassName) string {
	if w.collecting {
		if w.seen.Insert(c.CanonicalName()) {
			w.refs = append(w.refs, c)
		}
		return c.CanonicalName()
	}
	return w.imports.Spelling(c)
}

// Literal writes s, indenting each non-empty line.
func (w *CodeWriter) Literal(s string) error {
	for s != "" {
		line, rest, newline := strings.Cut(s, "\n")
		if line != "" {
			if w.atLineStart {
				w.buf.WriteString(strings.Repeat(w.indent, w.depth))
			}
			w.buf.WriteString(line)
			w.atLineStart = false
		}
		if newline {
			w.buf.WriteByte('\n')
			w.atLineStart = true
		}
		s = rest
	}
	return nil
}

// Type emits t into w.
func (w *CodeWriter) Type(t poet.TypeName) error {
	return t.Emit(w)
}

// Annotation emits a into w.
func (w *CodeWriter) Annotation(a poet.Annotation) error {
	return a.Emit(w)
}

// Indent changes the indentation depth. It never goes below zero.
func (w *CodeWriter) Indent(delta int) {
	w.depth = max(w.depth+delta, 0)
}

// Bytes returns the text written so far.
func (w *CodeWriter) Bytes() []byte {
	return w.buf.Bytes()
}

// String returns the text written so far.
func (w *CodeWriter) String() string {
	return w.buf.String()
}

// EmitTypeVariables writes a declaration-position type parameter list such
// as <in T : Comparable<T>, reified R>. A variable with more than one bound
// is written bare; its bounds belong in EmitWhereClause.
func EmitTypeVariables(w poet.Writer, vars []*poet.TypeVariableName) error {
	if len(vars) == 0 {
		return nil
	}
	if err := w.Emit("<"); err != nil {
		return err
	}
	for i, v := range vars {
		if i > 0 {
			if err := w.Emit(",$W"); err != nil {
				return err
			}
		}
		if v.IsReified() {
			if err := w.Emit("reified "); err != nil {
				return err
			}
		}
		if v.Variance() != poet.VarianceNone {
			if err := w.Emit("$L ", v.Variance()); err != nil {
				return err
			}
		}
		if err := w.Emit("$T", v); err != nil {
			return err
		}
		if bounds := v.Bounds(); len(bounds) == 1 {
			if err := w.Emit(" : $T", bounds[0]); err != nil {
				return err
			}
		}
	}
	return w.Emit(">")
}

// EmitWhereClause writes " where T : A, T : B" for every variable with
// more than one bound, or nothing.
func EmitWhereClause(w poet.Writer, vars []*poet.TypeVariableName) error {
	first := true
	for _, v := range vars {
		bounds := v.Bounds()
		if len(bounds) < 2 {
			continue
		}
		for _, b := range bounds {
			prefix := ",$W"
			if first {
				prefix = " where "
				first = false
			}
			if err := w.Emit(prefix+"$N : $T", v.Name(), b); err != nil {
				return err
			}
		}
	}
	return nil
}

// RenderType renders t as it would appear in a file of package pkg and
// returns the imports that file would need.
func RenderType(pkg string, t poet.TypeName) (string, []string, error) {
	body := func(w *CodeWriter) error { return w.Type(t) }
	imports, err := CollectImports(pkg, nil, nil, body)
	if err != nil {
		return "", nil, err
	}
	w := New(imports, "")
	if err := body(w); err != nil {
		return "", nil, err
	}
	return w.String(), imports.Lines(), nil
}
