// Package typespec reads type names from declarative JSON or TOML
// documents and converts them to poet type names.
//
// A document declares shared type parameters and a list of named types:
//
//	[[params]]
//	name = "T"
//	bounds = [{ class = "kotlin.Comparable", args = [{ var = "T" }] }]
//
//	[[types]]
//	name = "producer"
//	type = { class = "kotlin.collections.List", args = [{ wildcard = { extends = { class = "kotlin.CharSequence" } } }] }
//
// Every node is exposed through the poet mirror interfaces, so a document
// converts with poet.FromMirrorWith like any other front end.
package typespec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-json-experiment/json"

	"github.com/broady/typepoet/poet"
)

// Document is a parsed type-spec document.
type Document struct {
	// Params are type parameters shared by every type in the document.
	Params []*Param `json:"params,omitempty" toml:"params"`

	// Types are the named type names, in document order.
	Types []*NamedType `json:"types" toml:"types"`
}

// Param declares a type parameter.
type Param struct {
	Name   string  `json:"name" toml:"name"`
	Bounds []*Node `json:"bounds,omitempty" toml:"bounds"`

	// Variance is "", "in" or "out".
	Variance string `json:"variance,omitempty" toml:"variance"`
	Reified  bool   `json:"reified,omitempty" toml:"reified"`
}

// NamedType pairs a name with a type node.
type NamedType struct {
	Name string `json:"name" toml:"name"`
	Type *Node  `json:"type" toml:"type"`
}

// Node describes one type. Exactly one of Class, Var, Wildcard, Star, Func
// and Array is set.
type Node struct {
	// Class is a canonical class name such as "kotlin.collections.Map.Entry".
	Class string  `json:"class,omitempty" toml:"class"`
	Args  []*Node `json:"args,omitempty" toml:"args"`

	// Var refers to a type parameter declared in Document.Params.
	Var string `json:"var,omitempty" toml:"var"`

	Wildcard *Wildcard `json:"wildcard,omitempty" toml:"wildcard"`

	// Star is shorthand for a wildcard without bounds.
	Star bool `json:"star,omitempty" toml:"star"`

	Func  *Func `json:"func,omitempty" toml:"func"`
	Array *Node `json:"array,omitempty" toml:"array"`

	// Annotations apply to the type use, whatever its kind.
	Annotations []*Annotation `json:"annotations,omitempty" toml:"annotations"`

	class *poet.ClassName
	anns  []poet.Annotation
}

// Wildcard is a use-site projection. Extends gives "out T", Super gives
// "in T" and neither gives "*".
type Wildcard struct {
	Extends *Node `json:"extends,omitempty" toml:"extends"`
	Super   *Node `json:"super,omitempty" toml:"super"`
}

// Func is a function type. A nil Returns means Unit.
type Func struct {
	Receiver *Node   `json:"receiver,omitempty" toml:"receiver"`
	Params   []*Node `json:"params,omitempty" toml:"params"`
	Returns  *Node   `json:"returns,omitempty" toml:"returns"`
}

// Annotation is a type-use annotation with pre-rendered members.
type Annotation struct {
	Class   string   `json:"class" toml:"class"`
	Members []string `json:"members,omitempty" toml:"members"`
}

// ReadFile reads and parses the document at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// Parse parses data as JSON or TOML depending on the extension of name.
func Parse(name string, data []byte) (*Document, error) {
	var (
		doc *Document
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json":
		doc, err = ParseJSON(data)
	case ".toml":
		doc, err = ParseTOML(data)
	default:
		return nil, fmt.Errorf("%s: unsupported document type %q", name, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return doc, nil
}

// ParseJSON parses a JSON document. Unknown members are rejected.
func ParseJSON(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc, json.RejectUnknownMembers(true)); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if err := doc.check(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ParseTOML parses a TOML document. Unknown keys are rejected.
func ParseTOML(data []byte) (*Document, error) {
	var doc Document
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("decode toml: unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := doc.check(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Error reports a malformed node.
type Error struct {
	// Path locates the node, e.g. "types[0].type.args[1]".
	Path    string
	Message string
}

func (e *Error) Error() string {
	return e.Path + ": " + e.Message
}

func errorf(path, format string, args ...any) *Error {
	return &Error{Path: path, Message: fmt.Sprintf(format, args...)}
}

// check validates the document and resolves class names.
func (d *Document) check() error {
	params := make(map[string]bool, len(d.Params))
	for i, p := range d.Params {
		path := fmt.Sprintf("params[%d]", i)
		if p == nil || p.Name == "" {
			return errorf(path, "missing name")
		}
		if params[p.Name] {
			return errorf(path, "duplicate type parameter %q", p.Name)
		}
		params[p.Name] = true
		switch p.Variance {
		case "", "in", "out":
		default:
			return errorf(path, "variance must be one of: in out")
		}
	}
	for i, p := range d.Params {
		for j, b := range p.Bounds {
			path := fmt.Sprintf("params[%d].bounds[%d]", i, j)
			if isProjection(b) {
				return errorf(path, "a type parameter cannot be bounded by a wildcard")
			}
			if err := checkNode(b, path, params); err != nil {
				return err
			}
		}
	}

	names := make(map[string]bool, len(d.Types))
	for i, t := range d.Types {
		path := fmt.Sprintf("types[%d]", i)
		if t == nil || t.Name == "" {
			return errorf(path, "missing name")
		}
		if names[t.Name] {
			return errorf(path, "duplicate type name %q", t.Name)
		}
		names[t.Name] = true
		if err := checkNode(t.Type, path+".type", params); err != nil {
			return err
		}
	}
	return nil
}

type nodeAt struct {
	path string
	node *Node
}

// isProjection reports whether n is a wildcard, which is only valid as a
// type argument.
func isProjection(n *Node) bool {
	return n != nil && (n.Wildcard != nil || n.Star)
}

func checkNode(n *Node, path string, params map[string]bool) error {
	if n == nil {
		return errorf(path, "missing type")
	}
	kinds := 0
	for _, set := range []bool{n.Class != "", n.Var != "", n.Wildcard != nil, n.Star, n.Func != nil, n.Array != nil} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return errorf(path, "exactly one of class, var, wildcard, star, func, array must be set")
	}
	if len(n.Args) > 0 && n.Class == "" {
		return errorf(path, "args require class")
	}

	n.anns = nil
	for i, a := range n.Annotations {
		apath := fmt.Sprintf("%s.annotations[%d]", path, i)
		if a == nil {
			return errorf(apath, "missing class")
		}
		c, err := poet.BestGuess(a.Class)
		if err != nil {
			return errorf(apath, "%v", err)
		}
		n.anns = append(n.anns, poet.AnnotationOf(c, a.Members...))
	}

	switch {
	case n.Class != "":
		c, err := poet.BestGuess(n.Class)
		if err != nil {
			return errorf(path, "%v", err)
		}
		n.class = c
		for i, a := range n.Args {
			if err := checkNode(a, fmt.Sprintf("%s.args[%d]", path, i), params); err != nil {
				return err
			}
		}
	case n.Var != "":
		if !params[n.Var] {
			return errorf(path, "undeclared type parameter %q", n.Var)
		}
	case n.Wildcard != nil:
		w := n.Wildcard
		if w.Extends != nil && w.Super != nil {
			return errorf(path+".wildcard", "extends and super are mutually exclusive")
		}
		for _, b := range []struct {
			name string
			node *Node
		}{{"extends", w.Extends}, {"super", w.Super}} {
			if b.node == nil {
				continue
			}
			if isProjection(b.node) {
				return errorf(path+".wildcard."+b.name, "a wildcard cannot bound a wildcard")
			}
			if err := checkNode(b.node, path+".wildcard."+b.name, params); err != nil {
				return err
			}
		}
	case n.Func != nil:
		f := n.Func
		parts := []nodeAt{{path + ".func.receiver", f.Receiver}}
		for i, p := range f.Params {
			ppath := fmt.Sprintf("%s.func.params[%d]", path, i)
			if p == nil {
				return errorf(ppath, "missing type")
			}
			parts = append(parts, nodeAt{ppath, p})
		}
		parts = append(parts, nodeAt{path + ".func.returns", f.Returns})
		for _, part := range parts {
			if part.node == nil {
				continue
			}
			if isProjection(part.node) {
				return errorf(part.path, "a function type cannot use a wildcard")
			}
			if err := checkNode(part.node, part.path, params); err != nil {
				return err
			}
		}
	case n.Array != nil:
		if err := checkNode(n.Array, path+".array", params); err != nil {
			return err
		}
	}
	return nil
}
