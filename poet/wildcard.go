package poet

import "encoding/json"

// WildcardTypeName is a variance projection: an unknown type bounded from
// above (out T), from below (in T), or unconstrained (*).
//
// It always has exactly one upper bound and at most one lower bound. A
// lower-bounded wildcard has Any as its upper bound.
type WildcardTypeName struct {
	annotated
	upper []TypeName
	lower []TypeName
}

// NewWildcard returns a wildcard with the given bound lists. It fails unless
// upper has exactly one element and lower has at most one. Wildcards may not
// be bounded by other wildcards.
func NewWildcard(upper, lower []TypeName) (*WildcardTypeName, error) {
	return newWildcard(upper, lower, nil)
}

// MustWildcard is like NewWildcard but panics on error.
func MustWildcard(upper, lower []TypeName) *WildcardTypeName {
	w, err := NewWildcard(upper, lower)
	if err != nil {
		panic(err)
	}
	return w
}

func newWildcard(upper, lower []TypeName, anns []Annotation) (*WildcardTypeName, error) {
	if len(upper) != 1 {
		return nil, invariantf("NewWildcard", "unexpected extends bounds: %s", formatList(upper))
	}
	if len(lower) > 1 {
		return nil, invariantf("NewWildcard", "unexpected super bounds: %s", formatList(lower))
	}
	for _, b := range append(cloneTypes(upper), lower...) {
		if b == nil {
			return nil, invariantf("NewWildcard", "nil bound in %s / %s", formatList(upper), formatList(lower))
		}
		if b.Kind() == KindWildcard {
			return nil, invariantf("NewWildcard", "wildcard bounded by wildcard %s", b)
		}
	}
	return &WildcardTypeName{
		annotated: annotated{anns},
		upper:     cloneTypes(upper),
		lower:     cloneTypes(lower),
	}, nil
}

// SubtypeOf returns a wildcard for an unknown subtype of upper: out upper,
// or * when upper is Any. It panics if upper is nil or a wildcard.
func SubtypeOf(upper TypeName) *WildcardTypeName {
	return MustWildcard([]TypeName{upper}, nil)
}

// SupertypeOf returns a wildcard for an unknown supertype of lower: in lower.
// It panics if lower is nil or a wildcard.
func SupertypeOf(lower TypeName) *WildcardTypeName {
	return MustWildcard([]TypeName{Any}, []TypeName{lower})
}

// Star returns the unconstrained wildcard, SubtypeOf(Any).
func Star() *WildcardTypeName {
	return SubtypeOf(Any)
}

// Kind returns KindWildcard.
func (w *WildcardTypeName) Kind() Kind { return KindWildcard }

// UpperBounds returns the single-element upper bound list.
func (w *WildcardTypeName) UpperBounds() []TypeName { return cloneTypes(w.upper) }

// LowerBounds returns the lower bound list, empty or single-element.
func (w *WildcardTypeName) LowerBounds() []TypeName { return cloneTypes(w.lower) }

// Annotated returns a copy of w with anns appended and the same bounds.
func (w *WildcardTypeName) Annotated(anns ...Annotation) TypeName {
	return &WildcardTypeName{annotated: annotated{w.concat(anns)}, upper: w.upper, lower: w.lower}
}

// WithoutAnnotations returns a copy of w with no annotations and the same bounds.
func (w *WildcardTypeName) WithoutAnnotations() TypeName {
	return &WildcardTypeName{upper: w.upper, lower: w.lower}
}

// Emit renders in L if there is a lower bound, * if the upper bound is Any,
// and out U otherwise.
func (w *WildcardTypeName) Emit(out Writer) error {
	if err := w.emitAnnotations(out); err != nil {
		return err
	}
	if len(w.lower) == 1 {
		return out.Emit("in $T", w.lower[0])
	}
	if IsAny(w.upper[0]) {
		return out.Emit("*")
	}
	return out.Emit("out $T", w.upper[0])
}

// Equal reports structural equality.
func (w *WildcardTypeName) Equal(other TypeName) bool { return equal(w, other) }

// Hash returns a hash consistent with Equal.
func (w *WildcardTypeName) Hash() uint64 { return hash(w) }

func (w *WildcardTypeName) String() string { return render(w) }

// MarshalJSON implements json.Marshaler.
func (w *WildcardTypeName) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind        string       `json:"kind"`
		UpperBounds []TypeName   `json:"upperBounds"`
		LowerBounds []TypeName   `json:"lowerBounds"`
		Annotations []Annotation `json:"annotations,omitempty"`
	}{
		Kind:        "wildcard",
		UpperBounds: w.upper,
		LowerBounds: nonNil(w.lower),
		Annotations: w.annotations,
	})
}

func nonNil(ts []TypeName) []TypeName {
	if ts == nil {
		return []TypeName{}
	}
	return ts
}
