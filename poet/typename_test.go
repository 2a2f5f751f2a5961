package poet

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindClass, "Class"},
		{KindParameterized, "Parameterized"},
		{KindTypeVariable, "TypeVariable"},
		{KindWildcard, "Wildcard"},
		{KindLambda, "Lambda"},
		{Kind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestTypeName_String(t *testing.T) {
	outer := Parameterized(ClassNameOf("com.example", "Outer"), TypeVariable("T"))
	tests := []struct {
		name string
		typ  TypeName
		want string
	}{
		{"class", ClassNameOf("com.example", "User"), "com.example.User"},
		{"nested class", ClassNameOf("com.example", "Outer", "Inner"), "com.example.Outer.Inner"},
		{"default package", ClassNameOf("", "Local"), "Local"},
		{"annotated class", String.Annotated(testAnnB), `@com.example.B(value = "b") kotlin.String`},
		{"parameterized", Parameterized(Map, String, SubtypeOf(Int)), "kotlin.collections.Map<kotlin.String, out kotlin.Int>"},
		{"nested parameterized", outer.NestedClass("Inner", String), "com.example.Outer<T>.Inner<kotlin.String>"},
		{"nested bare", outer.NestedClass("Inner"), "com.example.Outer<T>.Inner"},
		{"annotated parameterized", Parameterized(List, Star()).Annotated(testAnnA), "@com.example.A kotlin.collections.List<*>"},
		{"type variable", TypeVariable("T", Parameterized(Comparable, TypeVariable("T"))), "T"},
		{"lambda", Lambda(nil, Boolean, String, Int), "(kotlin.String, kotlin.Int) -> kotlin.Boolean"},
		{"lambda unit", Lambda(nil, nil), "() -> kotlin.Unit"},
		{"lambda receiver", Lambda(String, nil, Int), "kotlin.String.(kotlin.Int) -> kotlin.Unit"},
		{"lambda lambda receiver", Lambda(Lambda(nil, Int), nil), "(() -> kotlin.Int).() -> kotlin.Unit"},
		{"suspend lambda", Lambda(nil, String).Suspending(), "suspend () -> kotlin.String"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAnnotated_PreservesVariant(t *testing.T) {
	types := []TypeName{
		String,
		Parameterized(List, String),
		TypeVariable("T"),
		SubtypeOf(CharSequence),
		Lambda(nil, Int),
	}
	for _, typ := range types {
		got := typ.Annotated(testAnnA)
		if got.Kind() != typ.Kind() {
			t.Errorf("%v.Annotated().Kind() = %v, want %v", typ, got.Kind(), typ.Kind())
		}
		if !got.WithoutAnnotations().Equal(typ) {
			t.Errorf("%v.Annotated().WithoutAnnotations() = %v", typ, got.WithoutAnnotations())
		}
		if got.Equal(typ) {
			t.Errorf("%v annotated should differ from the bare type", typ)
		}
		if len(typ.Annotations()) != 0 {
			t.Errorf("%v was mutated by Annotated", typ)
		}
	}
}

func TestAnnotations_ReturnsCopy(t *testing.T) {
	typ := String.Annotated(testAnnA)
	anns := typ.Annotations()
	anns[0] = testAnnB
	if !typ.Annotations()[0].Equal(testAnnA) {
		t.Error("Annotations() aliases internal state")
	}
}

func TestEqual_AcrossVariants(t *testing.T) {
	// A type variable and a class with the same spelling are different types.
	if TypeVariable("String").Equal(ClassNameOf("", "String")) {
		t.Error("type variable equals class")
	}
	if !ClassNameOf("kotlin", "String").Equal(String) {
		t.Error("ClassNameOf(kotlin, String) != String")
	}
	a := Parameterized(Map, String, TypeVariable("V"))
	b := Parameterized(Map, String, TypeVariable("V"))
	if !a.Equal(b) || a.Hash() != b.Hash() {
		t.Errorf("%v != %v", a, b)
	}
	if a.Equal(Parameterized(Map, String, TypeVariable("K"))) {
		t.Error("different type arguments compare equal")
	}
}

func TestEqual_DistinguishesSpelling(t *testing.T) {
	x := ClassNameOf("com.example", "X")
	y := ClassNameOf("com.example", "Y")
	tests := []struct {
		name string
		a, b TypeName
	}{
		{
			name: "comma inside a member",
			a:    String.Annotated(AnnotationOf(x, "a,b")),
			b:    String.Annotated(AnnotationOf(x, "a", "b")),
		},
		{
			name: "member spelling a second annotation",
			a:    SubtypeOf(CharSequence).Annotated(AnnotationOf(x, "a)@com.example.Y(")),
			b:    SubtypeOf(CharSequence).Annotated(AnnotationOf(x, "a"), AnnotationOf(y)),
		},
		{
			name: "annotation class package split",
			a:    String.Annotated(AnnotationOf(ClassNameOf("a", "B"))),
			b:    String.Annotated(AnnotationOf(ClassNameOf("", "a", "B"))),
		},
		{
			name: "package split",
			a:    ClassNameOf("com.example", "Outer", "Inner"),
			b:    ClassNameOf("com", "example", "Outer", "Inner"),
		},
		{
			name: "variable name with separators",
			a:    TypeVariable("T;in"),
			b:    TypeVariable("T").WithVariance(VarianceIn),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.a.Equal(tt.b) {
				t.Errorf("%v equals %v", tt.a, tt.b)
			}
			if tt.a.Hash() == tt.b.Hash() {
				t.Errorf("%v and %v hash equal", tt.a, tt.b)
			}
		})
	}
}

func TestNewLambda_Errors(t *testing.T) {
	tests := []struct {
		name     string
		receiver TypeName
		returns  TypeName
		params   []TypeName
	}{
		{"nil parameter", nil, nil, []TypeName{String, nil}},
		{"wildcard receiver", SubtypeOf(String), nil, nil},
		{"wildcard return", nil, SubtypeOf(String), nil},
		{"wildcard parameter", nil, nil, []TypeName{SupertypeOf(Int)}},
		{"star parameter", nil, Unit, []TypeName{Star()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewLambda(tt.receiver, tt.returns, tt.params...)
			if !errors.Is(err, ErrInvariant) {
				t.Errorf("NewLambda() = %v, %v; want ErrInvariant", got, err)
			}
		})
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("Lambda(nil, nil, nil) did not panic")
		}
	}()
	Lambda(nil, nil, nil)
}

func TestNewNestedClass_Errors(t *testing.T) {
	outer := Parameterized(ClassNameOf("com.example", "Outer"), TypeVariable("T"))
	tests := []struct {
		name  string
		inner string
		args  []TypeName
	}{
		{"nil arg", "Inner", []TypeName{nil}},
		{"empty name", "", nil},
		{"dotted name", "A.B", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := outer.NewNestedClass(tt.inner, tt.args...)
			if !errors.Is(err, ErrInvariant) {
				t.Errorf("NewNestedClass() = %v, %v; want ErrInvariant", got, err)
			}
		})
	}
}

func TestNewTypeVariable_Errors(t *testing.T) {
	tests := []struct {
		name   string
		tv     string
		bounds []TypeName
	}{
		{"empty name", "", nil},
		{"nil bound", "T", []TypeName{nil}},
		{"star bound", "T", []TypeName{Star()}},
		{"out bound", "T", []TypeName{CharSequence, SubtypeOf(String)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTypeVariable(tt.tv, tt.bounds...)
			if !errors.Is(err, ErrInvariant) {
				t.Errorf("NewTypeVariable() = %v, %v; want ErrInvariant", got, err)
			}
		})
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("WithBounds(Star()) did not panic")
		}
	}()
	TypeVariable("T").WithBounds(Star())
}

func TestTypeVariable_SelfReferentialBound(t *testing.T) {
	// T : Comparable<T>, built the way the converters build it.
	tv := &TypeVariableName{name: "T"}
	tv.bounds = []TypeName{Parameterized(Comparable, tv)}

	other := &TypeVariableName{name: "T"}
	other.bounds = []TypeName{Parameterized(Comparable, other)}

	if !tv.Equal(other) || tv.Hash() != other.Hash() {
		t.Errorf("self-referential variables differ")
	}
	if got := tv.String(); got != "T" {
		t.Errorf("String() = %q, want %q", got, "T")
	}
	if tv.Equal(TypeVariable("T")) {
		t.Error("bounded T equals unbounded T")
	}
}

func TestTypeVariable_Builders(t *testing.T) {
	tv := TypeVariable("T", Any, CharSequence)
	if got := tv.Bounds(); len(got) != 1 || !got[0].Equal(CharSequence) {
		t.Errorf("Bounds() = %v, want [kotlin.CharSequence]", got)
	}
	out := tv.WithVariance(VarianceOut).AsReified()
	if out.Variance() != VarianceOut || !out.IsReified() {
		t.Errorf("variance = %v, reified = %v", out.Variance(), out.IsReified())
	}
	if tv.Variance() != VarianceNone || tv.IsReified() {
		t.Error("builders mutated the receiver")
	}
	if tv.Equal(out) {
		t.Error("variance and reified are ignored by Equal")
	}
	more := tv.WithBounds(Comparable)
	if len(more.Bounds()) != 2 || len(tv.Bounds()) != 1 {
		t.Errorf("WithBounds() = %v, receiver = %v", more.Bounds(), tv.Bounds())
	}
}

func TestNewParameterized_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  *ClassName
		args []TypeName
	}{
		{"nil raw", nil, []TypeName{String}},
		{"no args", List, nil},
		{"nil arg", Map, []TypeName{String, nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParameterized(tt.raw, tt.args...)
			if !errors.Is(err, ErrInvariant) {
				t.Errorf("NewParameterized() error = %v, want ErrInvariant", err)
			}
		})
	}
}

func TestBestGuess(t *testing.T) {
	tests := []struct {
		in      string
		pkg     string
		names   []string
		wantErr bool
	}{
		{in: "java.util.Map.Entry", pkg: "java.util", names: []string{"Map", "Entry"}},
		{in: "kotlin.String", pkg: "kotlin", names: []string{"String"}},
		{in: "Local", pkg: "", names: []string{"Local"}},
		{in: "com.example.Outer.Inner.Leaf", pkg: "com.example", names: []string{"Outer", "Inner", "Leaf"}},
		{in: "java.util", wantErr: true},
		{in: "", wantErr: true},
		{in: "com.example.Outer..Inner", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := BestGuess(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("BestGuess(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("BestGuess(%q): %v", tt.in, err)
			}
			if got.PackageName() != tt.pkg || strings.Join(got.SimpleNames(), ".") != strings.Join(tt.names, ".") {
				t.Errorf("BestGuess(%q) = %q %v, want %q %v", tt.in, got.PackageName(), got.SimpleNames(), tt.pkg, tt.names)
			}
		})
	}
}

func TestClassName_Navigation(t *testing.T) {
	c := ClassNameOf("com.example", "Outer", "Middle", "Inner")
	if got := c.SimpleName(); got != "Inner" {
		t.Errorf("SimpleName() = %q, want Inner", got)
	}
	if got := c.TopLevel().CanonicalName(); got != "com.example.Outer" {
		t.Errorf("TopLevel() = %q", got)
	}
	if got := c.Enclosing().CanonicalName(); got != "com.example.Outer.Middle" {
		t.Errorf("Enclosing() = %q", got)
	}
	if c.TopLevel().Enclosing() != nil {
		t.Error("top-level Enclosing() != nil")
	}
	if got := c.Enclosing().Nested("Other").CanonicalName(); got != "com.example.Outer.Middle.Other" {
		t.Errorf("Nested() = %q", got)
	}
	// Nested must not share storage with its receiver.
	top := c.TopLevel()
	a, b := top.Nested("A"), top.Nested("B")
	if a.SimpleName() != "A" || b.SimpleName() != "B" {
		t.Errorf("Nested() aliasing: %v %v", a, b)
	}
}

func TestClassNameOf_Panics(t *testing.T) {
	for _, names := range [][]string{nil, {"Outer", ""}, {"Outer.Inner"}} {
		func() {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("ClassNameOf(%q) did not panic", names)
				}
			}()
			ClassNameOf("com.example", names...)
		}()
	}
}

func TestMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		typ  TypeName
		want string
	}{
		{
			name: "class",
			typ:  String,
			want: `{"kind":"class","package":"kotlin","names":["String"]}`,
		},
		{
			name: "star",
			typ:  Star(),
			want: `{"kind":"wildcard","upperBounds":[{"kind":"class","package":"kotlin","names":["Any"]}],"lowerBounds":[]}`,
		},
		{
			name: "supertype",
			typ:  SupertypeOf(String),
			want: `{"kind":"wildcard","upperBounds":[{"kind":"class","package":"kotlin","names":["Any"]}],"lowerBounds":[{"kind":"class","package":"kotlin","names":["String"]}]}`,
		},
		{
			name: "type variable",
			typ:  TypeVariable("T", CharSequence).WithVariance(VarianceIn),
			want: `{"kind":"typeVariable","name":"T","bounds":["kotlin.CharSequence"],"variance":"in"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.typ)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s\nwant %s", got, tt.want)
			}
		})
	}
}
