package poet

import (
	"fmt"
	"strings"
)

// Writer is the emission context a TypeName renders into.
//
// Format strings use '$' placeholders:
//
//	$T  a TypeName (or Annotation), rendered recursively
//	$L  a literal, formatted with %v
//	$S  a string, rendered as a Kotlin string literal
//	$N  a name: a string, or any value with a Name() string method
//	$$  a dollar sign
//	$>  increase indentation
//	$<  decrease indentation
//	$W  a space that a line wrapper may break
type Writer interface {
	Emit(format string, args ...any) error

	// LookupName returns how c should be spelled at the current position,
	// either its simple names or its canonical name.
	LookupName(c *ClassName) string
}

// FormatHandler receives the expanded pieces of a format string.
// Writer implementations build on ExpandFormat with one of these.
type FormatHandler interface {
	Literal(s string) error
	Type(t TypeName) error
	Annotation(a Annotation) error
	Indent(delta int)
}

// ExpandFormat walks format, passing literal text and arguments to h.
func ExpandFormat(h FormatHandler, format string, args ...any) error {
	next := 0
	arg := func(verb byte) (any, error) {
		if next >= len(args) {
			return nil, fmt.Errorf("format %q: missing argument for $%c", format, verb)
		}
		a := args[next]
		next++
		return a, nil
	}

	start := 0
	for i := 0; i < len(format); i++ {
		if format[i] != '$' {
			continue
		}
		if i+1 >= len(format) {
			return fmt.Errorf("format %q: dangling '$'", format)
		}
		if start < i {
			if err := h.Literal(format[start:i]); err != nil {
				return err
			}
		}
		verb := format[i+1]
		i++
		start = i + 1

		switch verb {
		case '$':
			if err := h.Literal("$"); err != nil {
				return err
			}
		case '>':
			h.Indent(1)
		case '<':
			h.Indent(-1)
		case 'W':
			if err := h.Literal(" "); err != nil {
				return err
			}
		case 'L':
			a, err := arg(verb)
			if err != nil {
				return err
			}
			if err := h.Literal(fmt.Sprint(a)); err != nil {
				return err
			}
		case 'S':
			a, err := arg(verb)
			if err != nil {
				return err
			}
			s, ok := a.(string)
			if !ok {
				return fmt.Errorf("format %q: $S expects a string, got %T", format, a)
			}
			if err := h.Literal(StringLiteral(s)); err != nil {
				return err
			}
		case 'N':
			a, err := arg(verb)
			if err != nil {
				return err
			}
			name, err := nameOf(a)
			if err != nil {
				return fmt.Errorf("format %q: %w", format, err)
			}
			if err := h.Literal(name); err != nil {
				return err
			}
		case 'T':
			a, err := arg(verb)
			if err != nil {
				return err
			}
			switch v := a.(type) {
			case TypeName:
				if err := h.Type(v); err != nil {
					return err
				}
			case Annotation:
				if err := h.Annotation(v); err != nil {
					return err
				}
			default:
				return fmt.Errorf("format %q: $T expects a TypeName, got %T", format, a)
			}
		default:
			return fmt.Errorf("format %q: unknown placeholder $%c", format, verb)
		}
	}
	if start < len(format) {
		if err := h.Literal(format[start:]); err != nil {
			return err
		}
	}
	if next != len(args) {
		return fmt.Errorf("format %q: %d unused arguments", format, len(args)-next)
	}
	return nil
}

func nameOf(a any) (string, error) {
	switch v := a.(type) {
	case string:
		return v, nil
	case interface{ Name() string }:
		return v.Name(), nil
	default:
		return "", fmt.Errorf("$N expects a name, got %T", a)
	}
}

// StringLiteral quotes s as a Kotlin string literal, escaping '$'.
func StringLiteral(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '$':
			b.WriteString(`\$`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// detachedWriter renders without an enclosing file: every class name is
// fully qualified and indentation is ignored.
type detachedWriter struct {
	b strings.Builder
}

func (w *detachedWriter) Emit(format string, args ...any) error {
	return ExpandFormat(w, format, args...)
}

func (w *detachedWriter) LookupName(c *ClassName) string {
	return c.CanonicalName()
}

func (w *detachedWriter) Literal(s string) error {
	w.b.WriteString(s)
	return nil
}

func (w *detachedWriter) Type(t TypeName) error {
	return t.Emit(w)
}

func (w *detachedWriter) Annotation(a Annotation) error {
	return a.Emit(w)
}

func (w *detachedWriter) Indent(int) {}

func (w *detachedWriter) String() string {
	return w.b.String()
}
