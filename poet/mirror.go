package poet

// Compile-time type mirrors.
//
// A front end that analyzes source code (go/types, a schema document, ...)
// describes the types it found through these capability interfaces, and
// FromMirror turns them into TypeName values. A mirror implements exactly
// one of DeclaredMirror, WildcardMirror, TypeVariableMirror,
// ExecutableMirror or ArrayMirror, and optionally AnnotatedMirror.

// TypeMirror is any compile-time type description.
type TypeMirror interface {
	// String describes the type in the host's own syntax, for errors.
	String() string
}

// DeclaredMirror describes a named type, possibly applied to arguments.
type DeclaredMirror interface {
	TypeMirror
	Package() string
	SimpleNames() []string
	TypeArguments() []TypeMirror
}

// WildcardMirror describes a wildcard. At most one bound is non-nil.
type WildcardMirror interface {
	TypeMirror
	ExtendsBound() TypeMirror // nil when absent
	SuperBound() TypeMirror   // nil when absent
}

// TypeVariableMirror describes a use of a type parameter.
type TypeVariableMirror interface {
	TypeMirror
	Element() TypeParameterElement
}

// TypeParameterElement is the declaration of a type parameter. It is used
// as a map key, so implementations must be comparable, and two uses of the
// same parameter must return equal elements.
type TypeParameterElement interface {
	Name() string
	Bounds() []TypeMirror

	// GenericElement names the declaration that owns the parameter.
	GenericElement() string
}

// ExecutableMirror describes a function type.
type ExecutableMirror interface {
	TypeMirror
	Receiver() TypeMirror // nil when absent
	Parameters() []TypeMirror
	Result() TypeMirror // nil means Unit
}

// ArrayMirror describes an array type, converted to Array<Component>.
type ArrayMirror interface {
	TypeMirror
	Component() TypeMirror
}

// AnnotatedMirror is implemented by mirrors that carry type-use annotations.
type AnnotatedMirror interface {
	MirrorAnnotations() []Annotation
}

// FromMirror converts m with a fresh type-variable map.
func FromMirror(m TypeMirror) (TypeName, error) {
	return FromMirrorWith(m, nil)
}

// FromMirrorWith converts m, recording every type variable it meets in vars
// so that self-referential bounds (T : Comparable<T>) resolve to the same
// TypeVariableName. Pass the same map to convert several related mirrors
// consistently. vars may be nil. The map is not synchronized. When the
// conversion fails, the variables it added are removed from vars again.
func FromMirrorWith(m TypeMirror, vars map[TypeParameterElement]*TypeVariableName) (TypeName, error) {
	if vars == nil {
		vars = make(map[TypeParameterElement]*TypeVariableName)
	}
	c := &mirrorConverter{vars: vars}
	t, err := c.convert(m)
	if err != nil {
		for _, el := range c.added {
			delete(vars, el)
		}
		return nil, err
	}
	return t, nil
}

// WildcardFromMirror converts a wildcard mirror with a fresh type-variable map.
func WildcardFromMirror(m WildcardMirror) (TypeName, error) {
	return FromMirrorWith(m, nil)
}

type mirrorConverter struct {
	vars  map[TypeParameterElement]*TypeVariableName
	added []TypeParameterElement
}

func (c *mirrorConverter) convert(m TypeMirror) (TypeName, error) {
	t, err := c.convertBare(m)
	if err != nil {
		return nil, err
	}
	if am, ok := m.(AnnotatedMirror); ok {
		if anns := am.MirrorAnnotations(); len(anns) > 0 {
			t = t.Annotated(anns...)
		}
	}
	return t, nil
}

func (c *mirrorConverter) convertBare(m TypeMirror) (TypeName, error) {
	switch mt := m.(type) {
	case nil:
		return nil, &UnsupportedError{Description: "<nil>"}
	case WildcardMirror:
		return c.wildcard(mt)
	case TypeVariableMirror:
		return c.typeVariable(mt)
	case ExecutableMirror:
		return c.lambda(mt)
	case ArrayMirror:
		component, err := c.convert(mt.Component())
		if err != nil {
			return nil, err
		}
		return asType(NewParameterized(Array, component))
	case DeclaredMirror:
		return c.declared(mt)
	default:
		return nil, &UnsupportedError{Description: m.String()}
	}
}

func (c *mirrorConverter) wildcard(m WildcardMirror) (TypeName, error) {
	if extends := m.ExtendsBound(); extends != nil {
		upper, err := c.convert(extends)
		if err != nil {
			return nil, err
		}
		return asType(NewWildcard([]TypeName{upper}, nil))
	}
	if super := m.SuperBound(); super != nil {
		lower, err := c.convert(super)
		if err != nil {
			return nil, err
		}
		return asType(NewWildcard([]TypeName{Any}, []TypeName{lower}))
	}
	return SubtypeOf(Any), nil
}

func (c *mirrorConverter) typeVariable(m TypeVariableMirror) (TypeName, error) {
	el := m.Element()
	if tv, ok := c.vars[el]; ok {
		return tv, nil
	}
	// Register before converting bounds: a bound may mention el again.
	// The bounds are filled in before tv escapes this conversion.
	tv := &TypeVariableName{name: el.Name()}
	c.vars[el] = tv
	c.added = append(c.added, el)
	for _, b := range el.Bounds() {
		bound, err := c.convert(b)
		if err != nil {
			return nil, err
		}
		if err := checkBounds(tv.name, []TypeName{bound}); err != nil {
			return nil, err
		}
		if !IsAny(bound) {
			tv.bounds = append(tv.bounds, bound)
		}
	}
	return tv, nil
}

func (c *mirrorConverter) lambda(m ExecutableMirror) (TypeName, error) {
	var receiver, returns TypeName
	var err error
	if r := m.Receiver(); r != nil {
		if receiver, err = c.convert(r); err != nil {
			return nil, err
		}
	}
	if r := m.Result(); r != nil {
		if returns, err = c.convert(r); err != nil {
			return nil, err
		}
	}
	params, err := c.list(m.Parameters())
	if err != nil {
		return nil, err
	}
	return asType(NewLambda(receiver, returns, params...))
}

func (c *mirrorConverter) declared(m DeclaredMirror) (TypeName, error) {
	names := m.SimpleNames()
	if len(names) == 0 {
		return nil, &UnsupportedError{Description: m.String()}
	}
	for _, n := range names {
		if !ValidSimpleName(n) {
			return nil, &UnsupportedError{Description: m.String()}
		}
	}
	raw := ClassNameOf(m.Package(), names...)
	args, err := c.list(m.TypeArguments())
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return raw, nil
	}
	return asType(NewParameterized(raw, args...))
}

func (c *mirrorConverter) list(ms []TypeMirror) ([]TypeName, error) {
	if len(ms) == 0 {
		return nil, nil
	}
	out := make([]TypeName, len(ms))
	for i, m := range ms {
		t, err := c.convert(m)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// asType converts a constructor result without producing a non-nil
// interface holding a nil pointer.
func asType[T TypeName](t T, err error) (TypeName, error) {
	if err != nil {
		return nil, err
	}
	return t, nil
}
