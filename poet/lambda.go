package poet

import "encoding/json"

// LambdaTypeName is a Kotlin function type: (A, B) -> R, or with a
// receiver, Recv.(A) -> R.
type LambdaTypeName struct {
	annotated
	receiver   TypeName // nil when absent
	params     []TypeName
	returns    TypeName
	suspending bool
}

// NewLambda returns the function type receiver.(params) -> returns. A nil
// receiver means none; a nil returns means Unit. It fails if a parameter is
// nil or if the receiver, a parameter or the result is a wildcard, which
// is only valid as a type argument.
func NewLambda(receiver TypeName, returns TypeName, params ...TypeName) (*LambdaTypeName, error) {
	if receiver != nil && receiver.Kind() == KindWildcard {
		return nil, invariantf("NewLambda", "wildcard receiver %s", receiver)
	}
	if returns == nil {
		returns = Unit
	} else if returns.Kind() == KindWildcard {
		return nil, invariantf("NewLambda", "wildcard return type %s", returns)
	}
	for i, p := range params {
		switch {
		case p == nil:
			return nil, invariantf("NewLambda", "nil parameter %d in %s", i, formatList(params))
		case p.Kind() == KindWildcard:
			return nil, invariantf("NewLambda", "wildcard parameter %d in %s", i, formatList(params))
		}
	}
	return &LambdaTypeName{receiver: receiver, params: cloneTypes(params), returns: returns}, nil
}

// Lambda is like NewLambda but panics on error.
func Lambda(receiver TypeName, returns TypeName, params ...TypeName) *LambdaTypeName {
	l, err := NewLambda(receiver, returns, params...)
	if err != nil {
		panic(err)
	}
	return l
}

// Kind returns KindLambda.
func (l *LambdaTypeName) Kind() Kind { return KindLambda }

// Receiver returns the receiver type, or nil.
func (l *LambdaTypeName) Receiver() TypeName { return l.receiver }

// Parameters returns the parameter types.
func (l *LambdaTypeName) Parameters() []TypeName { return cloneTypes(l.params) }

// ReturnType returns the result type.
func (l *LambdaTypeName) ReturnType() TypeName { return l.returns }

// IsSuspending reports whether the function type is suspending.
func (l *LambdaTypeName) IsSuspending() bool { return l.suspending }

// Suspending returns a suspending copy of l.
func (l *LambdaTypeName) Suspending() *LambdaTypeName {
	c := *l
	c.suspending = true
	return &c
}

// Annotated returns a copy of l with anns appended.
func (l *LambdaTypeName) Annotated(anns ...Annotation) TypeName {
	c := *l
	c.annotations = l.concat(anns)
	return &c
}

// WithoutAnnotations returns a copy of l with no annotations.
func (l *LambdaTypeName) WithoutAnnotations() TypeName {
	c := *l
	c.annotations = nil
	return &c
}

// Emit renders [suspend ][Recv.](A, B) -> R.
func (l *LambdaTypeName) Emit(w Writer) error {
	if err := l.emitAnnotations(w); err != nil {
		return err
	}
	if l.suspending {
		if err := w.Emit("suspend "); err != nil {
			return err
		}
	}
	if l.receiver != nil {
		format := "$T."
		if l.receiver.Kind() == KindLambda {
			format = "($T)."
		}
		if err := w.Emit(format, l.receiver); err != nil {
			return err
		}
	}
	if err := w.Emit("("); err != nil {
		return err
	}
	for i, p := range l.params {
		if i > 0 {
			if err := w.Emit(",$W"); err != nil {
				return err
			}
		}
		if err := w.Emit("$T", p); err != nil {
			return err
		}
	}
	return w.Emit(") -> $T", l.returns)
}

// Equal reports structural equality.
func (l *LambdaTypeName) Equal(other TypeName) bool { return equal(l, other) }

// Hash returns a hash consistent with Equal.
func (l *LambdaTypeName) Hash() uint64 { return hash(l) }

func (l *LambdaTypeName) String() string { return render(l) }

// MarshalJSON implements json.Marshaler.
func (l *LambdaTypeName) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind        string       `json:"kind"`
		Receiver    TypeName     `json:"receiver,omitempty"`
		Parameters  []TypeName   `json:"parameters"`
		Returns     TypeName     `json:"returns"`
		Suspending  bool         `json:"suspending,omitempty"`
		Annotations []Annotation `json:"annotations,omitempty"`
	}{
		Kind:        "lambda",
		Receiver:    l.receiver,
		Parameters:  nonNil(l.params),
		Returns:     l.returns,
		Suspending:  l.suspending,
		Annotations: l.annotations,
	})
}
