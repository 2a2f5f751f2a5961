package poet

import "encoding/json"

// Variance is the declaration-site variance of a type variable.
type Variance int

const (
	VarianceNone Variance = iota
	VarianceIn
	VarianceOut
)

// String returns the Kotlin modifier, or "" for VarianceNone.
func (v Variance) String() string {
	switch v {
	case VarianceIn:
		return "in"
	case VarianceOut:
		return "out"
	default:
		return ""
	}
}

// TypeVariableName is a type variable such as T.
//
// In use position it renders as its bare name. Rendering the bounds in a
// declaration (<T : Comparable<T>>) is up to the caller; see
// codewriter.EmitTypeVariables.
type TypeVariableName struct {
	annotated
	name     string
	bounds   []TypeName
	variance Variance
	reified  bool
}

// NewTypeVariable returns the type variable name with the given bounds.
// Bounds equal to Any are dropped since Any is the implicit bound. It fails
// if name is empty or a bound is nil or a wildcard.
func NewTypeVariable(name string, bounds ...TypeName) (*TypeVariableName, error) {
	if name == "" {
		return nil, invariantf("TypeVariable", "empty name")
	}
	if err := checkBounds(name, bounds); err != nil {
		return nil, err
	}
	return &TypeVariableName{name: name, bounds: withoutAny(bounds)}, nil
}

// TypeVariable is like NewTypeVariable but panics on error.
func TypeVariable(name string, bounds ...TypeName) *TypeVariableName {
	v, err := NewTypeVariable(name, bounds...)
	if err != nil {
		panic(err)
	}
	return v
}

// checkBounds rejects bounds that cannot follow "T :" in a declaration.
func checkBounds(name string, bounds []TypeName) error {
	for _, b := range bounds {
		switch {
		case b == nil:
			return invariantf("TypeVariable", "nil bound for %s: %s", name, formatList(bounds))
		case b.Kind() == KindWildcard:
			return invariantf("TypeVariable", "%s bounded by wildcard %s", name, b)
		}
	}
	return nil
}

func withoutAny(bounds []TypeName) []TypeName {
	var out []TypeName
	for _, b := range bounds {
		if IsAny(b) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Kind returns KindTypeVariable.
func (v *TypeVariableName) Kind() Kind { return KindTypeVariable }

// Name returns the variable name.
func (v *TypeVariableName) Name() string { return v.name }

// Bounds returns the explicit upper bounds.
func (v *TypeVariableName) Bounds() []TypeName { return cloneTypes(v.bounds) }

// Variance returns the declaration-site variance.
func (v *TypeVariableName) Variance() Variance { return v.variance }

// IsReified reports whether the variable is declared reified.
func (v *TypeVariableName) IsReified() bool { return v.reified }

func (v *TypeVariableName) copy() *TypeVariableName {
	c := *v
	return &c
}

// WithBounds returns a copy of v with bounds appended. It panics if a
// bound is nil or a wildcard.
func (v *TypeVariableName) WithBounds(bounds ...TypeName) *TypeVariableName {
	if err := checkBounds(v.name, bounds); err != nil {
		panic(err)
	}
	c := v.copy()
	c.bounds = append(cloneTypes(v.bounds), withoutAny(bounds)...)
	return c
}

// WithVariance returns a copy of v with the given variance.
func (v *TypeVariableName) WithVariance(variance Variance) *TypeVariableName {
	c := v.copy()
	c.variance = variance
	return c
}

// AsReified returns a reified copy of v.
func (v *TypeVariableName) AsReified() *TypeVariableName {
	c := v.copy()
	c.reified = true
	return c
}

// Annotated returns a copy of v with anns appended.
func (v *TypeVariableName) Annotated(anns ...Annotation) TypeName {
	c := v.copy()
	c.annotations = v.concat(anns)
	return c
}

// WithoutAnnotations returns a copy of v with no annotations.
func (v *TypeVariableName) WithoutAnnotations() TypeName {
	c := v.copy()
	c.annotations = nil
	return c
}

// Emit renders the annotations and the bare name.
func (v *TypeVariableName) Emit(w Writer) error {
	if err := v.emitAnnotations(w); err != nil {
		return err
	}
	return w.Emit("$L", v.name)
}

// Equal reports structural equality. Type variables inside the bounds are
// compared by name.
func (v *TypeVariableName) Equal(other TypeName) bool { return equal(v, other) }

// Hash returns a hash consistent with Equal.
func (v *TypeVariableName) Hash() uint64 { return hash(v) }

func (v *TypeVariableName) String() string { return render(v) }

// MarshalJSON implements json.Marshaler. Bounds are written as their
// rendered text because they may refer back to v.
func (v *TypeVariableName) MarshalJSON() ([]byte, error) {
	bounds := make([]string, len(v.bounds))
	for i, b := range v.bounds {
		bounds[i] = b.String()
	}
	return json.Marshal(&struct {
		Kind        string       `json:"kind"`
		Name        string       `json:"name"`
		Bounds      []string     `json:"bounds,omitempty"`
		Variance    string       `json:"variance,omitempty"`
		Reified     bool         `json:"reified,omitempty"`
		Annotations []Annotation `json:"annotations,omitempty"`
	}{
		Kind:        "typeVariable",
		Name:        v.name,
		Bounds:      bounds,
		Variance:    v.variance.String(),
		Reified:     v.reified,
		Annotations: v.annotations,
	})
}
