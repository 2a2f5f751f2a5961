package poet

// Runtime reflective descriptions.
//
// These mirror what a running program can learn about a type: bound lists
// are reported as lists, whatever their length, so a malformed description
// is rejected by the same checks as direct construction.

// ReflectType is any runtime type description.
type ReflectType interface {
	String() string
}

// ReflectClass describes a named, non-generic type.
type ReflectClass interface {
	ReflectType
	Package() string
	SimpleNames() []string
}

// ReflectParameterized describes a generic type applied to arguments.
type ReflectParameterized interface {
	ReflectType
	Raw() ReflectClass
	Arguments() []ReflectType
}

// ReflectWildcard describes a wildcard by its bound lists.
type ReflectWildcard interface {
	ReflectType
	UpperBounds() []ReflectType
	LowerBounds() []ReflectType
}

// ReflectTypeVariable describes a type variable. It is used as a map key,
// so implementations must be comparable.
type ReflectTypeVariable interface {
	ReflectType
	Name() string
	Bounds() []ReflectType

	// GenericDeclaration names the declaration that owns the variable.
	GenericDeclaration() string
}

// ReflectGenericArray describes an array whose component is generic.
type ReflectGenericArray interface {
	ReflectType
	Component() ReflectType
}

// ReflectFunc describes a function type.
type ReflectFunc interface {
	ReflectType
	Receiver() ReflectType // nil when absent
	Parameters() []ReflectType
	Result() ReflectType // nil means Unit
}

// FromReflect converts t with a fresh type-variable map.
func FromReflect(t ReflectType) (TypeName, error) {
	return FromReflectWith(t, nil)
}

// FromReflectWith converts t, sharing type variables through vars. vars may
// be nil. The map is not synchronized. When the conversion fails, the
// variables it added are removed from vars again.
func FromReflectWith(t ReflectType, vars map[ReflectType]*TypeVariableName) (TypeName, error) {
	if vars == nil {
		vars = make(map[ReflectType]*TypeVariableName)
	}
	c := &reflectConverter{vars: vars}
	n, err := c.convert(t)
	if err != nil {
		for _, v := range c.added {
			delete(vars, v)
		}
		return nil, err
	}
	return n, nil
}

// WildcardFromReflect converts a reflective wildcard with a fresh map.
func WildcardFromReflect(t ReflectWildcard) (TypeName, error) {
	return FromReflectWith(t, nil)
}

type reflectConverter struct {
	vars  map[ReflectType]*TypeVariableName
	added []ReflectType
}

func (c *reflectConverter) convert(t ReflectType) (TypeName, error) {
	switch rt := t.(type) {
	case nil:
		return nil, &UnsupportedError{Description: "<nil>"}
	case ReflectWildcard:
		return c.wildcard(rt)
	case ReflectTypeVariable:
		return c.typeVariable(rt)
	case ReflectFunc:
		return c.lambda(rt)
	case ReflectGenericArray:
		component, err := c.convert(rt.Component())
		if err != nil {
			return nil, err
		}
		return asType(NewParameterized(Array, component))
	case ReflectParameterized:
		raw, err := classFromReflect(rt.Raw())
		if err != nil {
			return nil, err
		}
		args, err := c.list(rt.Arguments())
		if err != nil {
			return nil, err
		}
		return asType(NewParameterized(raw, args...))
	case ReflectClass:
		return classFromReflect(rt)
	default:
		return nil, &UnsupportedError{Description: t.String()}
	}
}

func classFromReflect(c ReflectClass) (*ClassName, error) {
	if c == nil {
		return nil, &UnsupportedError{Description: "<nil>"}
	}
	names := c.SimpleNames()
	if len(names) == 0 {
		return nil, &UnsupportedError{Description: c.String()}
	}
	for _, n := range names {
		if !ValidSimpleName(n) {
			return nil, &UnsupportedError{Description: c.String()}
		}
	}
	return ClassNameOf(c.Package(), names...), nil
}

func (c *reflectConverter) wildcard(t ReflectWildcard) (TypeName, error) {
	upper, err := c.list(t.UpperBounds())
	if err != nil {
		return nil, err
	}
	lower, err := c.list(t.LowerBounds())
	if err != nil {
		return nil, err
	}
	return asType(NewWildcard(upper, lower))
}

func (c *reflectConverter) typeVariable(t ReflectTypeVariable) (TypeName, error) {
	if tv, ok := c.vars[t]; ok {
		return tv, nil
	}
	tv := &TypeVariableName{name: t.Name()}
	c.vars[t] = tv
	c.added = append(c.added, t)
	for _, b := range t.Bounds() {
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

func (c *reflectConverter) lambda(t ReflectFunc) (TypeName, error) {
	var receiver, returns TypeName
	var err error
	if r := t.Receiver(); r != nil {
		if receiver, err = c.convert(r); err != nil {
			return nil, err
		}
	}
	if r := t.Result(); r != nil {
		if returns, err = c.convert(r); err != nil {
			return nil, err
		}
	}
	params, err := c.list(t.Parameters())
	if err != nil {
		return nil, err
	}
	return asType(NewLambda(receiver, returns, params...))
}

func (c *reflectConverter) list(ts []ReflectType) ([]TypeName, error) {
	if len(ts) == 0 {
		return nil, nil
	}
	out := make([]TypeName, len(ts))
	for i, t := range ts {
		n, err := c.convert(t)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
