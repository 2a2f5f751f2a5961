package kotlin

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/broady/typepoet/poet"
	"github.com/broady/typepoet/poet/codewriter"
)

var (
	serializable = poet.ClassNameOf("kotlinx.serialization", "Serializable")
	serialName   = poet.ClassNameOf("kotlinx.serialization", "SerialName")
	deprecated   = poet.ClassNameOf("kotlin", "Deprecated")
)

// Emitter handles Kotlin code emission for declarations.
type Emitter struct {
	config   GeneratorConfig
	ktConfig KotlinConfig
}

// NewEmitter returns an emitter for the given configuration.
func NewEmitter(config GeneratorConfig) *Emitter {
	return &Emitter{config: config, ktConfig: parseKotlinConfig(config.Custom)}
}

// EmitDecl emits a top-level declaration, without a trailing newline.
func (e *Emitter) EmitDecl(w *codewriter.CodeWriter, d Decl) ([]Warning, error) {
	if e.config.EmitComments {
		if err := e.emitKDoc(w, d.Doc()); err != nil {
			return nil, err
		}
	}
	if dep := d.Doc().Deprecated; dep != nil {
		if err := w.Emit("@$T($S)\n", deprecated, *dep); err != nil {
			return nil, err
		}
	}

	switch d := d.(type) {
	case *DataClass:
		return e.emitDataClass(w, d)
	case *TypeAlias:
		return e.emitTypeAlias(w, d)
	case *EnumClass:
		return e.emitEnumClass(w, d)
	default:
		return nil, fmt.Errorf("unsupported declaration kind: %s", d.Kind())
	}
}

// emitDataClass emits a data class with one val per property.
func (e *Emitter) emitDataClass(w *codewriter.CodeWriter, d *DataClass) ([]Warning, error) {
	var warnings []Warning

	// Only inline functions may declare reified parameters.
	vars := make([]*poet.TypeVariableName, len(d.TypeVariables))
	for i, v := range d.TypeVariables {
		vars[i] = v
		if v.IsReified() {
			vars[i] = poet.TypeVariable(v.Name(), v.Bounds()...).WithVariance(v.Variance())
			warnings = append(warnings, Warning{
				Code:     "reified_class_parameter",
				Message:  "type parameter " + v.Name() + " of " + d.Name.SimpleName() + " cannot be reified; dropped the modifier",
				TypeName: d.Name.SimpleName(),
			})
		}
	}

	if e.ktConfig.Serializable {
		if err := w.Emit("@$T\n", serializable); err != nil {
			return nil, err
		}
	}
	if err := w.Emit("data class $N", codewriter.EscapeName(d.Name.SimpleName())); err != nil {
		return nil, err
	}
	if err := codewriter.EmitTypeVariables(w, vars); err != nil {
		return nil, err
	}
	if err := w.Emit("(\n$>"); err != nil {
		return nil, err
	}

	for i, p := range d.Properties {
		if e.config.EmitComments && !p.Documentation.IsZero() {
			if err := e.emitKDoc(w, p.Documentation); err != nil {
				return nil, err
			}
		}
		if e.ktConfig.Serializable && p.SerialName != "" && p.SerialName != p.Name {
			if err := w.Emit("@$T($S)\n", serialName, p.SerialName); err != nil {
				return nil, err
			}
		}
		if err := w.Emit("val $N: $T", codewriter.EscapeName(p.Name), p.Type); err != nil {
			return nil, fmt.Errorf("failed to emit property %s: %w", p.Name, err)
		}
		if p.Nullable || p.Optional {
			if err := w.Emit("?"); err != nil {
				return nil, err
			}
		}
		if p.Optional && e.ktConfig.OptionalDefaults {
			if err := w.Emit(" = null"); err != nil {
				return nil, err
			}
		}
		sep := ",\n"
		if i == len(d.Properties)-1 {
			sep = "\n"
		}
		if err := w.Emit(sep); err != nil {
			return nil, err
		}
	}

	if err := w.Emit("$<)"); err != nil {
		return nil, err
	}
	if err := codewriter.EmitWhereClause(w, vars); err != nil {
		return nil, err
	}
	return warnings, nil
}

// emitTypeAlias emits a typealias. Kotlin does not allow bounds on
// typealias parameters, so only their names are written.
func (e *Emitter) emitTypeAlias(w *codewriter.CodeWriter, a *TypeAlias) ([]Warning, error) {
	if err := w.Emit("typealias $N", codewriter.EscapeName(a.Name.SimpleName())); err != nil {
		return nil, err
	}
	if len(a.TypeVariables) > 0 {
		bare := make([]*poet.TypeVariableName, len(a.TypeVariables))
		for i, v := range a.TypeVariables {
			bare[i] = poet.TypeVariable(v.Name())
		}
		if err := codewriter.EmitTypeVariables(w, bare); err != nil {
			return nil, err
		}
	}
	if err := w.Emit(" = $T", a.Target); err != nil {
		return nil, fmt.Errorf("failed to emit typealias target: %w", err)
	}
	return nil, nil
}

// emitEnumClass emits an enum class carrying each constant's Go value.
func (e *Emitter) emitEnumClass(w *codewriter.CodeWriter, c *EnumClass) ([]Warning, error) {
	var warnings []Warning

	valueType := c.ValueType
	if valueType == nil {
		valueType = poet.String
	}
	stringValued := poet.String.Equal(valueType)

	if e.ktConfig.Serializable {
		if !stringValued {
			warnings = append(warnings, Warning{
				Code:     "enum_serial_name",
				Message:  "enum class " + c.Name.SimpleName() + " has non-string values; entries are serialized by name",
				TypeName: c.Name.SimpleName(),
			})
		}
		if err := w.Emit("@$T\n", serializable); err != nil {
			return nil, err
		}
	}
	if err := w.Emit("enum class $N(val value: $T) {\n$>", codewriter.EscapeName(c.Name.SimpleName()), valueType); err != nil {
		return nil, err
	}

	for i, entry := range c.Entries {
		if e.config.EmitComments && !entry.Documentation.IsZero() {
			if err := e.emitKDoc(w, entry.Documentation); err != nil {
				return nil, err
			}
		}
		if e.ktConfig.Serializable && stringValued {
			if s, ok := entry.Value.(string); ok {
				if err := w.Emit("@$T($S)\n", serialName, s); err != nil {
					return nil, err
				}
			}
		}
		lit, err := enumLiteral(entry.Value, c.ValueType)
		if err != nil {
			return nil, fmt.Errorf("enum class %s entry %s: %w", c.Name.SimpleName(), entry.Name, err)
		}
		sep := ",\n"
		if i == len(c.Entries)-1 {
			sep = "\n"
		}
		if err := w.Emit("$N($L)"+sep, entry.Name, lit); err != nil {
			return nil, err
		}
	}

	if err := w.Emit("$<}"); err != nil {
		return nil, err
	}
	return warnings, nil
}

// enumLiteral formats an enum value as a Kotlin literal of type valueType.
func enumLiteral(value any, valueType poet.TypeName) (string, error) {
	switch v := value.(type) {
	case string:
		return poet.StringLiteral(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10) + "u", nil
	case float64:
		return floatLiteral(v, poet.Float.Equal(valueType)), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("unsupported enum value %v (%T)", value, value)
	}
}

// floatLiteral formats v as a Double literal, or as a Float literal with an
// f suffix. Non-finite values use the Double/Float constants.
func floatLiteral(v float64, isFloat bool) string {
	typ, bits, suffix := "Double", 64, ""
	if isFloat {
		typ, bits, suffix = "Float", 32, "f"
	}
	switch {
	case math.IsNaN(v):
		return typ + ".NaN"
	case math.IsInf(v, 1):
		return typ + ".POSITIVE_INFINITY"
	case math.IsInf(v, -1):
		return typ + ".NEGATIVE_INFINITY"
	}
	s := strconv.FormatFloat(v, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s + suffix
}

// emitKDoc emits a KDoc comment. A single line is kept on one line.
func (e *Emitter) emitKDoc(w *codewriter.CodeWriter, doc Documentation) error {
	text := doc.Body
	if text == "" {
		text = doc.Summary
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	// Closing the comment early would break the file.
	text = strings.ReplaceAll(text, "*/", "*&#47;")

	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		return w.Emit("/** $L */\n", strings.TrimSpace(lines[0]))
	}
	if err := w.Emit("/**\n"); err != nil {
		return err
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if err := w.Emit(" *\n"); err != nil {
				return err
			}
			continue
		}
		if err := w.Emit(" * $L\n", line); err != nil {
			return err
		}
	}
	return w.Emit(" */\n")
}
