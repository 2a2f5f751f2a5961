package codewriter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/broady/typepoet/poet"
)

// File is a Kotlin source file whose body is produced by a callback.
// Body is called twice: once to collect imports and once to write.
type File struct {
	// Package is the Kotlin package, empty for the default package.
	Package string

	// Header is emitted first as // comment lines. Empty means none.
	Header string

	// Imports are imported even when the body does not mention them.
	Imports []*poet.ClassName

	// Declared lists the simple names the body declares at top level.
	// They shadow default imports of the same name.
	Declared []string

	// Indent is the indentation unit. Empty selects DefaultIndent.
	Indent string

	Body func(w *CodeWriter) error
}

// Render writes the header, package clause, imports and body.
func (f *File) Render() ([]byte, error) {
	if f.Body == nil {
		return nil, fmt.Errorf("file %q: no body", f.Package)
	}
	imports, err := CollectImports(f.Package, f.Imports, f.Declared, f.Body)
	if err != nil {
		return nil, fmt.Errorf("collecting imports: %w", err)
	}

	var out bytes.Buffer
	if f.Header != "" {
		for _, line := range strings.Split(strings.TrimRight(f.Header, "\n"), "\n") {
			if line == "" {
				out.WriteString("//\n")
				continue
			}
			out.WriteString("// ")
			out.WriteString(line)
			out.WriteByte('\n')
		}
		out.WriteByte('\n')
	}
	if f.Package != "" {
		fmt.Fprintf(&out, "package %s\n\n", EscapeQualified(f.Package))
	}
	if lines := imports.Lines(); len(lines) > 0 {
		for _, l := range lines {
			fmt.Fprintf(&out, "import %s\n", EscapeQualified(l))
		}
		out.WriteByte('\n')
	}

	w := New(imports, f.Indent)
	if err := f.Body(w); err != nil {
		return nil, err
	}
	out.Write(w.Bytes())
	if b := out.Bytes(); len(b) > 0 && b[len(b)-1] != '\n' {
		out.WriteByte('\n')
	}
	return out.Bytes(), nil
}
