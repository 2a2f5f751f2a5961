package poet

import "encoding/json"

// ParameterizedTypeName is a generic class applied to type arguments,
// such as Map<String, out Number>.
type ParameterizedTypeName struct {
	annotated
	enclosing *ParameterizedTypeName // for Outer<T>.Inner<U>; nil for top level
	raw       *ClassName
	args      []TypeName
}

// NewParameterized returns raw<args...>. It fails if args is empty or
// contains nil.
func NewParameterized(raw *ClassName, args ...TypeName) (*ParameterizedTypeName, error) {
	if raw == nil {
		return nil, invariantf("NewParameterized", "nil raw type")
	}
	if len(args) == 0 {
		return nil, invariantf("NewParameterized", "no type arguments for %s", raw.CanonicalName())
	}
	for _, a := range args {
		if a == nil {
			return nil, invariantf("NewParameterized", "nil type argument for %s: %s", raw.CanonicalName(), formatList(args))
		}
	}
	return &ParameterizedTypeName{raw: raw, args: cloneTypes(args)}, nil
}

// Parameterized is like NewParameterized but panics on error.
func Parameterized(raw *ClassName, args ...TypeName) *ParameterizedTypeName {
	p, err := NewParameterized(raw, args...)
	if err != nil {
		panic(err)
	}
	return p
}

// NewNestedClass returns the inner class name of p applied to args,
// rendered as Outer<T>.Inner<U>. With no args the inner class is rendered
// bare. It fails if name is not a valid simple name or an arg is nil.
func (p *ParameterizedTypeName) NewNestedClass(name string, args ...TypeName) (*ParameterizedTypeName, error) {
	if !ValidSimpleName(name) {
		return nil, invariantf("NestedClass", "invalid simple name %q in %s", name, p)
	}
	for _, a := range args {
		if a == nil {
			return nil, invariantf("NestedClass", "nil type argument for %s.%s: %s", p, name, formatList(args))
		}
	}
	return &ParameterizedTypeName{
		enclosing: p,
		raw:       p.raw.Nested(name),
		args:      cloneTypes(args),
	}, nil
}

// NestedClass is like NewNestedClass but panics on error.
func (p *ParameterizedTypeName) NestedClass(name string, args ...TypeName) *ParameterizedTypeName {
	n, err := p.NewNestedClass(name, args...)
	if err != nil {
		panic(err)
	}
	return n
}

// Kind returns KindParameterized.
func (p *ParameterizedTypeName) Kind() Kind { return KindParameterized }

// RawType returns the generic class.
func (p *ParameterizedTypeName) RawType() *ClassName { return p.raw }

// TypeArguments returns the type arguments.
func (p *ParameterizedTypeName) TypeArguments() []TypeName { return cloneTypes(p.args) }

// Annotated returns a copy of p with anns appended.
func (p *ParameterizedTypeName) Annotated(anns ...Annotation) TypeName {
	return &ParameterizedTypeName{annotated: annotated{p.concat(anns)}, enclosing: p.enclosing, raw: p.raw, args: p.args}
}

// WithoutAnnotations returns a copy of p with no annotations.
func (p *ParameterizedTypeName) WithoutAnnotations() TypeName {
	return &ParameterizedTypeName{enclosing: p.enclosing, raw: p.raw, args: p.args}
}

// Emit renders Raw<A, B>, or Outer<T>.Inner<A> for nested classes.
func (p *ParameterizedTypeName) Emit(w Writer) error {
	if err := p.emitAnnotations(w); err != nil {
		return err
	}
	if p.enclosing != nil {
		if err := p.enclosing.Emit(w); err != nil {
			return err
		}
		if err := w.Emit(".$L", p.raw.SimpleName()); err != nil {
			return err
		}
	} else if err := p.raw.Emit(w); err != nil {
		return err
	}
	if len(p.args) == 0 {
		return nil
	}
	if err := w.Emit("<"); err != nil {
		return err
	}
	for i, a := range p.args {
		if i > 0 {
			if err := w.Emit(",$W"); err != nil {
				return err
			}
		}
		if err := w.Emit("$T", a); err != nil {
			return err
		}
	}
	return w.Emit(">")
}

// Equal reports structural equality.
func (p *ParameterizedTypeName) Equal(other TypeName) bool { return equal(p, other) }

// Hash returns a hash consistent with Equal.
func (p *ParameterizedTypeName) Hash() uint64 { return hash(p) }

func (p *ParameterizedTypeName) String() string { return render(p) }

// MarshalJSON implements json.Marshaler.
func (p *ParameterizedTypeName) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind        string                 `json:"kind"`
		Enclosing   *ParameterizedTypeName `json:"enclosing,omitempty"`
		Raw         *ClassName             `json:"raw"`
		Arguments   []TypeName             `json:"arguments"`
		Annotations []Annotation           `json:"annotations,omitempty"`
	}{
		Kind:        "parameterized",
		Enclosing:   p.enclosing,
		Raw:         p.raw,
		Arguments:   nonNil(p.args),
		Annotations: p.annotations,
	})
}
