package ktgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds the configuration for code generation. It is usually read
// from a typepoet.toml file with LoadConfig; the fluent setters on
// Generator override individual values.
type Config struct {
	// OutDir is the directory where generated files will be written.
	// e.g. "./android/src/main/kotlin"
	OutDir string `toml:"out_dir"`

	// Provider selects the type extraction strategy.
	// "source" (default) - uses go/packages for enums and doc comments
	// "reflection" - uses runtime reflection (no enums, no comments)
	Provider string `toml:"provider" validate:"oneof=source reflection"`

	// Packages are the Go package paths to analyze when using the source
	// provider. e.g. []string{"github.com/myorg/myapp/api"}
	Packages []string `toml:"packages" validate:"required_if=Provider source,dive,required"`

	// RootTypes limits extraction to these type names and what they reach.
	// Empty means every exported type of Packages.
	RootTypes []string `toml:"root_types" validate:"dive,required"`

	// PackageMap maps Go import paths to Kotlin packages. Unmapped paths
	// derive their package from the import path.
	PackageMap map[string]string `toml:"package_map" validate:"dive,keys,required,endkeys,required"`

	// PreserveComments controls whether Go doc comments become KDoc.
	// Supported values: "default" (preserve), "none".
	PreserveComments string `toml:"preserve_comments" validate:"oneof=default none"`

	// IndentStyle is "space" (default) or "tab".
	IndentStyle string `toml:"indent_style" validate:"oneof=space tab"`

	// IndentSize is the number of spaces per level. Default: 4
	IndentSize int `toml:"indent_size" validate:"min=1,max=8"`

	// LineEnding is "lf" (default) or "crlf".
	LineEnding string `toml:"line_ending" validate:"oneof=lf crlf"`

	// FilePerDecl writes one file per declaration instead of one per
	// Kotlin package.
	FilePerDecl bool `toml:"file_per_decl"`

	// FileName names the per-package file. Default: "Types.kt"
	FileName string `toml:"file_name" validate:"endswith=.kt,excludes=/"`

	// Header is placed as a line comment at the top of every file.
	Header string `toml:"header"`

	// Serializable adds kotlinx.serialization annotations.
	Serializable bool `toml:"serializable"`

	// OptionalDefaults gives omitempty properties a "= null" default.
	OptionalDefaults bool `toml:"optional_defaults"`
}

// LoadConfig reads a typepoet.toml file. Unknown keys are rejected so
// typos do not silently fall back to defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("read config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return &cfg, nil
}

// applyConfigDefaults applies default values to Config.
func applyConfigDefaults(cfg *Config) *Config {
	// Make a copy to avoid mutating the input
	result := *cfg

	if result.Provider == "" {
		result.Provider = "source"
	}
	if result.PreserveComments == "" {
		result.PreserveComments = "default"
	}
	if result.IndentStyle == "" {
		result.IndentStyle = "space"
	}
	if result.IndentSize == 0 {
		result.IndentSize = 4
	}
	if result.LineEnding == "" {
		result.LineEnding = "lf"
	}
	if result.FileName == "" {
		result.FileName = "Types.kt"
	}

	return &result
}

// validateConfig checks cfg after defaults have been applied.
func validateConfig(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return err
	}
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		messages = append(messages, ve.Field()+": "+formatValidationError(ve))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(messages, "; "))
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required", "required_if":
		return "required"
	case "min":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "endswith":
		return fmt.Sprintf("must end with %s", ve.Param())
	case "excludes":
		return "must be a bare file name"
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
