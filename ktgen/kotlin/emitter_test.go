package kotlin

import (
	"math"
	"strings"
	"testing"

	"github.com/broady/typepoet/poet"
	"github.com/broady/typepoet/poet/codewriter"
)

// renderDecl renders d alone in a file of its own package.
func renderDecl(t *testing.T, cfg GeneratorConfig, d Decl) (string, []Warning) {
	t.Helper()
	var warnings []Warning
	emitter := NewEmitter(cfg)
	f := &codewriter.File{
		Package:  d.ClassName().PackageName(),
		Declared: []string{d.ClassName().SimpleName()},
		Body: func(w *codewriter.CodeWriter) error {
			var err error
			warnings, err = emitter.EmitDecl(w, d)
			return err
		},
	}
	out, err := f.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return string(out), warnings
}

func serializableConfig() GeneratorConfig {
	return GeneratorConfig{Custom: map[string]any{"Serializable": true, "OptionalDefaults": true}}
}

func TestEmitter_DataClass(t *testing.T) {
	user := NewDataClass(apiClass("User"),
		Property{Name: "id", Type: poet.String},
		Property{Name: "displayName", SerialName: "display_name", Type: poet.String},
		Property{Name: "tags", Type: poet.Parameterized(poet.List, poet.SubtypeOf(poet.CharSequence))},
		Property{Name: "manager", Type: apiClass("User"), Nullable: true},
		Property{Name: "nickname", Type: poet.String, Optional: true},
	)

	tests := []struct {
		name string
		cfg  GeneratorConfig
		want string
	}{
		{
			name: "plain",
			want: `package com.acme.api

data class User(
    val id: String,
    val displayName: String,
    val tags: List<out CharSequence>,
    val manager: User?,
    val nickname: String?
)
`,
		},
		{
			name: "serializable",
			cfg:  serializableConfig(),
			want: `package com.acme.api

import kotlinx.serialization.SerialName
import kotlinx.serialization.Serializable

@Serializable
data class User(
    val id: String,
    @SerialName("display_name")
    val displayName: String,
    val tags: List<out CharSequence>,
    val manager: User?,
    val nickname: String? = null
)
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings := renderDecl(t, tt.cfg, user)
			if got != tt.want {
				t.Errorf("EmitDecl() =\n%s\nwant\n%s", got, tt.want)
			}
			if len(warnings) != 0 {
				t.Errorf("warnings = %v, want none", warnings)
			}
		})
	}
}

func TestEmitter_DataClassTypeVariables(t *testing.T) {
	node := poet.ClassNameOf("com.acme.tree", "Node")
	tv := poet.TypeVariable("T", poet.Parameterized(poet.Comparable, poet.TypeVariable("T")))
	multi := poet.TypeVariable("K", poet.CharSequence, poet.Parameterized(poet.Comparable, poet.TypeVariable("K")))

	d := NewDataClass(node,
		Property{Name: "value", Type: poet.TypeVariable("T")},
		Property{Name: "key", Type: poet.TypeVariable("K")},
		Property{Name: "children", Type: poet.Parameterized(poet.List, poet.Parameterized(node, poet.TypeVariable("T"), poet.TypeVariable("K")))},
	)
	d.TypeVariables = []*poet.TypeVariableName{tv, multi.AsReified()}

	got, warnings := renderDecl(t, GeneratorConfig{}, d)
	want := `package com.acme.tree

data class Node<T : Comparable<T>, K>(
    val value: T,
    val key: K,
    val children: List<Node<T, K>>
) where K : CharSequence, K : Comparable<K>
`
	if got != want {
		t.Errorf("EmitDecl() =\n%s\nwant\n%s", got, want)
	}
	if len(warnings) != 1 || warnings[0].Code != "reified_class_parameter" {
		t.Errorf("warnings = %v, want one reified_class_parameter", warnings)
	}
}

func TestEmitter_TypeAlias(t *testing.T) {
	handler := NewTypeAlias(apiClass("Handler"),
		poet.Lambda(nil, poet.Unit, poet.Parameterized(poet.Map, poet.String, poet.TypeVariable("T"))).Suspending())
	handler.TypeVariables = []*poet.TypeVariableName{poet.TypeVariable("T", poet.CharSequence)}

	got, _ := renderDecl(t, GeneratorConfig{}, handler)
	want := `package com.acme.api

typealias Handler<T> = suspend (Map<String, T>) -> Unit
`
	if got != want {
		t.Errorf("EmitDecl() =\n%s\nwant\n%s", got, want)
	}
}

func TestEmitter_TypeAliasImportsForeignClass(t *testing.T) {
	alias := NewTypeAlias(apiClass("Timestamp"), poet.ClassNameOf("java.time", "Instant"))
	got, _ := renderDecl(t, GeneratorConfig{}, alias)
	want := `package com.acme.api

import java.time.Instant

typealias Timestamp = Instant
`
	if got != want {
		t.Errorf("EmitDecl() =\n%s\nwant\n%s", got, want)
	}
}

func TestEmitter_EnumClass(t *testing.T) {
	status := NewEnumClass(apiClass("Status"), poet.String,
		EnumEntry{Name: "ACTIVE", Value: "active"},
		EnumEntry{Name: "IN_PROGRESS", Value: "in-progress"},
	)

	t.Run("plain", func(t *testing.T) {
		got, _ := renderDecl(t, GeneratorConfig{}, status)
		want := `package com.acme.api

enum class Status(val value: String) {
    ACTIVE("active"),
    IN_PROGRESS("in-progress")
}
`
		if got != want {
			t.Errorf("EmitDecl() =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("serializable", func(t *testing.T) {
		got, warnings := renderDecl(t, serializableConfig(), status)
		want := `package com.acme.api

import kotlinx.serialization.SerialName
import kotlinx.serialization.Serializable

@Serializable
enum class Status(val value: String) {
    @SerialName("active")
    ACTIVE("active"),
    @SerialName("in-progress")
    IN_PROGRESS("in-progress")
}
`
		if got != want {
			t.Errorf("EmitDecl() =\n%s\nwant\n%s", got, want)
		}
		if len(warnings) != 0 {
			t.Errorf("warnings = %v, want none", warnings)
		}
	})
}

func TestEmitter_NumericEnum(t *testing.T) {
	level := NewEnumClass(apiClass("Level"), poet.Long,
		EnumEntry{Name: "LOW", Value: int64(-1)},
		EnumEntry{Name: "HIGH", Value: int64(10)},
	)
	got, warnings := renderDecl(t, serializableConfig(), level)
	if !strings.Contains(got, "enum class Level(val value: Long) {\n    LOW(-1),\n    HIGH(10)\n}") {
		t.Errorf("EmitDecl() =\n%s", got)
	}
	if strings.Contains(got, "SerialName") {
		t.Errorf("numeric enum has @SerialName:\n%s", got)
	}
	if len(warnings) != 1 || warnings[0].Code != "enum_serial_name" {
		t.Errorf("warnings = %v, want one enum_serial_name", warnings)
	}
}

func TestEnumLiteral(t *testing.T) {
	tests := []struct {
		value     any
		valueType poet.TypeName
		want      string
		wantErr   bool
	}{
		{"a\"b", poet.String, `"a\"b"`, false},
		{int64(-3), poet.Long, "-3", false},
		{uint64(7), poet.ULong, "7u", false},
		{float64(2), poet.Double, "2.0", false},
		{float64(2.5), poet.Double, "2.5", false},
		{float64(1e21), poet.Double, "1e+21", false},
		{float64(1.5), poet.Float, "1.5f", false},
		{float64(2), poet.Float, "2.0f", false},
		{float64(float32(0.1)), poet.Float, "0.1f", false},
		{math.NaN(), poet.Double, "Double.NaN", false},
		{math.Inf(-1), poet.Float, "Float.NEGATIVE_INFINITY", false},
		{true, poet.Boolean, "true", false},
		{struct{}{}, poet.String, "", true},
	}
	for _, tt := range tests {
		got, err := enumLiteral(tt.value, tt.valueType)
		if (err != nil) != tt.wantErr {
			t.Errorf("enumLiteral(%v, %v) error = %v, wantErr %v", tt.value, tt.valueType, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("enumLiteral(%v, %v) = %q, want %q", tt.value, tt.valueType, got, tt.want)
		}
	}
}

func TestEmitter_FloatEnum(t *testing.T) {
	ratio := NewEnumClass(apiClass("Ratio"), poet.Float,
		EnumEntry{Name: "HALF", Value: float64(0.5)},
		EnumEntry{Name: "ONE", Value: float64(1)},
	)
	got, _ := renderDecl(t, GeneratorConfig{}, ratio)
	if !strings.Contains(got, "enum class Ratio(val value: Float) {\n    HALF(0.5f),\n    ONE(1.0f)\n}") {
		t.Errorf("EmitDecl() =\n%s", got)
	}
}

func TestEmitter_Documentation(t *testing.T) {
	dep := "use Account"
	d := NewDataClass(apiClass("User"),
		Property{Name: "id", Type: poet.String, Documentation: Documentation{Summary: "Stable identifier."}},
	)
	d.Documentation = Documentation{
		Summary:    "User is a person.",
		Body:       "User is a person.\n\nIt never contains */ sequences.",
		Deprecated: &dep,
	}

	t.Run("comments", func(t *testing.T) {
		got, _ := renderDecl(t, GeneratorConfig{EmitComments: true}, d)
		want := `package com.acme.api

/**
 * User is a person.
 *
 * It never contains *&#47; sequences.
 */
@Deprecated("use Account")
data class User(
    /** Stable identifier. */
    val id: String
)
`
		if got != want {
			t.Errorf("EmitDecl() =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("no comments", func(t *testing.T) {
		got, _ := renderDecl(t, GeneratorConfig{}, d)
		if strings.Contains(got, "/**") {
			t.Errorf("EmitDecl() wrote KDoc with EmitComments off:\n%s", got)
		}
		if !strings.Contains(got, "@Deprecated(\"use Account\")\n") {
			t.Errorf("EmitDecl() dropped @Deprecated:\n%s", got)
		}
	})
}

func TestEmitter_KeywordNames(t *testing.T) {
	d := NewDataClass(poet.ClassNameOf("com.acme.in", "Range"),
		Property{Name: "in", Type: poet.Int},
	)
	got, _ := renderDecl(t, GeneratorConfig{}, d)
	want := "package com.acme.`in`\n\ndata class Range(\n    val `in`: Int\n)\n"
	if got != want {
		t.Errorf("EmitDecl() = %q, want %q", got, want)
	}
}

func TestEmitter_BadEnumValue(t *testing.T) {
	e := NewEmitter(GeneratorConfig{})
	bad := NewEnumClass(apiClass("Bad"), poet.String, EnumEntry{Name: "X", Value: []int{1}})
	w := codewriter.New(nil, "")
	if _, err := e.EmitDecl(w, bad); err == nil {
		t.Error("EmitDecl() succeeded for an unsupported enum value")
	}
}
