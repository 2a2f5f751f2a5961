package typespec

import (
	"strings"

	"github.com/broady/typepoet/poet"
)

// Named is a converted document type.
type Named struct {
	Name string
	Type poet.TypeName
}

// Resolved holds the type names of a document.
type Resolved struct {
	// Params are the document's type parameters with their declaration-site
	// variance and reified flag applied.
	Params []*poet.TypeVariableName

	// Types are the named types, in document order.
	Types []Named
}

// Resolve converts every parameter and type of d. All conversions share
// one type-variable map, so every use of a parameter, including uses in
// its own bounds, yields the same *poet.TypeVariableName.
func (d *Document) Resolve() (*Resolved, error) {
	vars := make(map[poet.TypeParameterElement]*poet.TypeVariableName)
	out := &Resolved{}
	for _, p := range d.Params {
		t, err := poet.FromMirrorWith(varMirror{node{d, &Node{Var: p.Name}}}, vars)
		if err != nil {
			return nil, err
		}
		tv := t.(*poet.TypeVariableName)
		switch p.Variance {
		case "in":
			tv = tv.WithVariance(poet.VarianceIn)
		case "out":
			tv = tv.WithVariance(poet.VarianceOut)
		}
		if p.Reified {
			tv = tv.AsReified()
		}
		out.Params = append(out.Params, tv)
	}
	for _, nt := range d.Types {
		t, err := poet.FromMirrorWith(d.mirror(nt.Type), vars)
		if err != nil {
			return nil, err
		}
		out.Types = append(out.Types, Named{Name: nt.Name, Type: t})
	}
	return out, nil
}

// Lookup returns the converted type called name.
func (r *Resolved) Lookup(name string) (poet.TypeName, bool) {
	for _, n := range r.Types {
		if n.Name == name {
			return n.Type, true
		}
	}
	return nil, false
}

func (d *Document) param(name string) *Param {
	for _, p := range d.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// mirror returns the poet mirror for n. The document must have been
// checked.
func (d *Document) mirror(n *Node) poet.TypeMirror {
	base := node{d, n}
	switch {
	case n.Class != "":
		return declaredMirror{base}
	case n.Var != "":
		return varMirror{base}
	case n.Wildcard != nil, n.Star:
		return wildcardMirror{base}
	case n.Func != nil:
		return funcMirror{base}
	default:
		return arrayMirror{base}
	}
}

func (d *Document) mirrors(ns []*Node) []poet.TypeMirror {
	if len(ns) == 0 {
		return nil
	}
	out := make([]poet.TypeMirror, len(ns))
	for i, n := range ns {
		out[i] = d.mirror(n)
	}
	return out
}

// node carries what every mirror kind shares.
type node struct {
	doc *Document
	n   *Node
}

func (m node) String() string { return m.n.String() }

func (m node) MirrorAnnotations() []poet.Annotation { return m.n.anns }

type declaredMirror struct{ node }

func (m declaredMirror) Package() string { return m.n.class.PackageName() }

func (m declaredMirror) SimpleNames() []string { return m.n.class.SimpleNames() }

func (m declaredMirror) TypeArguments() []poet.TypeMirror { return m.doc.mirrors(m.n.Args) }

type varMirror struct{ node }

func (m varMirror) Element() poet.TypeParameterElement {
	return paramElement{doc: m.doc, name: m.n.Var}
}

type wildcardMirror struct{ node }

func (m wildcardMirror) ExtendsBound() poet.TypeMirror {
	if w := m.n.Wildcard; w != nil && w.Extends != nil {
		return m.doc.mirror(w.Extends)
	}
	return nil
}

func (m wildcardMirror) SuperBound() poet.TypeMirror {
	if w := m.n.Wildcard; w != nil && w.Super != nil {
		return m.doc.mirror(w.Super)
	}
	return nil
}

type funcMirror struct{ node }

func (m funcMirror) Receiver() poet.TypeMirror {
	if r := m.n.Func.Receiver; r != nil {
		return m.doc.mirror(r)
	}
	return nil
}

func (m funcMirror) Parameters() []poet.TypeMirror { return m.doc.mirrors(m.n.Func.Params) }

func (m funcMirror) Result() poet.TypeMirror {
	if r := m.n.Func.Returns; r != nil {
		return m.doc.mirror(r)
	}
	return nil
}

type arrayMirror struct{ node }

func (m arrayMirror) Component() poet.TypeMirror { return m.doc.mirror(m.n.Array) }

// paramElement identifies a document type parameter by name.
type paramElement struct {
	doc  *Document
	name string
}

func (e paramElement) Name() string { return e.name }

func (e paramElement) Bounds() []poet.TypeMirror {
	if p := e.doc.param(e.name); p != nil {
		return e.doc.mirrors(p.Bounds)
	}
	return nil
}

func (e paramElement) GenericElement() string { return "document" }

// String renders n in a compact notation for error messages.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if n == nil {
		b.WriteString("<nil>")
		return
	}
	for _, a := range n.Annotations {
		if a != nil {
			b.WriteString("@" + a.Class + " ")
		}
	}
	switch {
	case n.Class != "":
		b.WriteString(n.Class)
		if len(n.Args) > 0 {
			b.WriteByte('<')
			writeList(b, n.Args)
			b.WriteByte('>')
		}
	case n.Var != "":
		b.WriteString(n.Var)
	case n.Star:
		b.WriteByte('*')
	case n.Wildcard != nil:
		switch {
		case n.Wildcard.Extends != nil:
			b.WriteString("out ")
			n.Wildcard.Extends.write(b)
		case n.Wildcard.Super != nil:
			b.WriteString("in ")
			n.Wildcard.Super.write(b)
		default:
			b.WriteByte('*')
		}
	case n.Func != nil:
		if n.Func.Receiver != nil {
			n.Func.Receiver.write(b)
			b.WriteByte('.')
		}
		b.WriteByte('(')
		writeList(b, n.Func.Params)
		b.WriteString(") -> ")
		if n.Func.Returns != nil {
			n.Func.Returns.write(b)
		} else {
			b.WriteString("Unit")
		}
	case n.Array != nil:
		b.WriteString("array<")
		n.Array.write(b)
		b.WriteByte('>')
	default:
		b.WriteString("<empty>")
	}
}

func writeList(b *strings.Builder, ns []*Node) {
	for i, n := range ns {
		if i > 0 {
			b.WriteString(", ")
		}
		n.write(b)
	}
}
