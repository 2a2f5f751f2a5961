package render

import (
	"fmt"
	"io"
	"os"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/broady/typepoet/poet"
	"github.com/broady/typepoet/poet/codewriter"
	"github.com/broady/typepoet/typespec"
)

type Cmd struct {
	File    string `arg:"" help:"Type-spec document (.json or .toml)." type:"existingfile"`
	JSON    bool   `help:"Print the JSON form instead of Kotlin." name:"json"`
	Package string `help:"Kotlin package the types are rendered in; names from it and default imports are left unqualified." short:"P"`
}

func (c *Cmd) Run() error {
	return c.run(os.Stdout)
}

func (c *Cmd) run(stdout io.Writer) error {
	doc, err := typespec.ReadFile(c.File)
	if err != nil {
		return err
	}
	resolved, err := doc.Resolve()
	if err != nil {
		return fmt.Errorf("%s: %w", c.File, err)
	}

	if c.JSON {
		return writeJSON(stdout, resolved)
	}

	f := &codewriter.File{
		Package: c.Package,
		Body: func(w *codewriter.CodeWriter) error {
			if len(resolved.Params) > 0 {
				if err := codewriter.EmitTypeVariables(w, resolved.Params); err != nil {
					return err
				}
				if err := codewriter.EmitWhereClause(w, resolved.Params); err != nil {
					return err
				}
				if err := w.Emit("\n\n"); err != nil {
					return err
				}
			}
			for _, n := range resolved.Types {
				if err := w.Emit("$L: $T\n", n.Name, n.Type); err != nil {
					return err
				}
			}
			return nil
		},
	}
	out, err := f.Render()
	if err != nil {
		return err
	}
	_, err = stdout.Write(out)
	return err
}

type jsonNamed struct {
	Name string        `json:"name"`
	Type poet.TypeName `json:"type"`
}

type jsonDocument struct {
	Params []*poet.TypeVariableName `json:"params,omitempty"`
	Types  []jsonNamed              `json:"types"`
}

func writeJSON(w io.Writer, r *typespec.Resolved) error {
	doc := jsonDocument{Params: r.Params, Types: []jsonNamed{}}
	for _, n := range r.Types {
		doc.Types = append(doc.Types, jsonNamed{Name: n.Name, Type: n.Type})
	}
	if err := json.MarshalWrite(w, &doc, jsontext.Multiline(true)); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
