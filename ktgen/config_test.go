package ktgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestApplyConfigDefaults(t *testing.T) {
	tests := []struct {
		name   string
		input  *Config
		check  func(*Config) bool
		errMsg string
	}{
		{
			name:  "empty config gets defaults",
			input: &Config{},
			check: func(c *Config) bool {
				return c.Provider == "source" &&
					c.PreserveComments == "default" &&
					c.IndentStyle == "space" &&
					c.IndentSize == 4 &&
					c.LineEnding == "lf" &&
					c.FileName == "Types.kt"
			},
			errMsg: "defaults not applied correctly",
		},
		{
			name: "explicit values preserved",
			input: &Config{
				Provider:         "reflection",
				PreserveComments: "none",
				IndentStyle:      "tab",
				IndentSize:       2,
				FileName:         "Model.kt",
			},
			check: func(c *Config) bool {
				return c.Provider == "reflection" &&
					c.PreserveComments == "none" &&
					c.IndentStyle == "tab" &&
					c.IndentSize == 2 &&
					c.FileName == "Model.kt"
			},
			errMsg: "explicit values not preserved",
		},
		{
			name:  "preserves PackageMap",
			input: &Config{PackageMap: map[string]string{"github.com/acme/api": "com.acme.api"}},
			check: func(c *Config) bool {
				return c.PackageMap["github.com/acme/api"] == "com.acme.api"
			},
			errMsg: "PackageMap not preserved",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := applyConfigDefaults(tt.input)
			if !tt.check(result) {
				t.Errorf("%s: got %+v", tt.errMsg, result)
			}
			if result == tt.input {
				t.Error("applyConfigDefaults returned its input")
			}
		})
	}
}

func TestApplyConfigDefaults_DoesNotMutate(t *testing.T) {
	cfg := &Config{}
	applyConfigDefaults(cfg)
	if cfg.Provider != "" || cfg.IndentSize != 0 {
		t.Errorf("input mutated: %+v", cfg)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := func(mod func(*Config)) *Config {
		c := applyConfigDefaults(&Config{Packages: []string{"github.com/acme/api"}})
		mod(c)
		return c
	}

	tests := []struct {
		name   string
		cfg    *Config
		errMsg string
	}{
		{"valid", valid(func(*Config) {}), ""},
		{"reflection without packages", valid(func(c *Config) { c.Provider = "reflection"; c.Packages = nil }), ""},
		{"unknown provider", valid(func(c *Config) { c.Provider = "ast" }), "Provider: must be one of: source reflection"},
		{"source without packages", valid(func(c *Config) { c.Packages = nil }), "Packages: required"},
		{"empty package", valid(func(c *Config) { c.Packages = []string{""} }), "Packages[0]: required"},
		{"empty root", valid(func(c *Config) { c.RootTypes = []string{"User", ""} }), "RootTypes[1]: required"},
		{"empty kotlin package", valid(func(c *Config) { c.PackageMap = map[string]string{"github.com/acme/api": ""} }), "required"},
		{"comments", valid(func(c *Config) { c.PreserveComments = "types" }), "PreserveComments: must be one of: default none"},
		{"indent style", valid(func(c *Config) { c.IndentStyle = "mixed" }), "IndentStyle"},
		{"indent size", valid(func(c *Config) { c.IndentSize = 12 }), "IndentSize: must be at most 8"},
		{"line ending", valid(func(c *Config) { c.LineEnding = "cr" }), "LineEnding"},
		{"file extension", valid(func(c *Config) { c.FileName = "Types.java" }), "FileName: must end with .kt"},
		{"file dir", valid(func(c *Config) { c.FileName = "gen/Types.kt" }), "FileName: must be a bare file name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(tt.cfg)
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("validateConfig() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("validateConfig() error = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "typepoet.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
out_dir = "gen/kotlin"
packages = ["github.com/acme/api", "github.com/acme/auth"]
root_types = ["User"]
preserve_comments = "none"
indent_style = "tab"
file_per_decl = true
header = "Code generated by typepoet. DO NOT EDIT."
serializable = true

[package_map]
"github.com/acme/api" = "com.acme.api"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.OutDir != "gen/kotlin" {
		t.Errorf("OutDir = %q, want %q", cfg.OutDir, "gen/kotlin")
	}
	if len(cfg.Packages) != 2 || cfg.Packages[1] != "github.com/acme/auth" {
		t.Errorf("Packages = %v", cfg.Packages)
	}
	if len(cfg.RootTypes) != 1 || cfg.RootTypes[0] != "User" {
		t.Errorf("RootTypes = %v, want [User]", cfg.RootTypes)
	}
	if cfg.PreserveComments != "none" || cfg.IndentStyle != "tab" || !cfg.FilePerDecl || !cfg.Serializable {
		t.Errorf("LoadConfig() = %+v", cfg)
	}
	if got := cfg.PackageMap["github.com/acme/api"]; got != "com.acme.api" {
		t.Errorf("PackageMap[github.com/acme/api] = %q, want %q", got, "com.acme.api")
	}
	if cfg.Provider != "" {
		t.Errorf("Provider = %q, want defaults left to applyConfigDefaults", cfg.Provider)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"unknown key", "packges = [\"x\"]\n", "unknown keys: packges"},
		{"wrong type", "indent_size = \"four\"\n", "indent_size"},
		{"syntax", "packages = [\n", "read config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("LoadConfig() error = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("LoadConfig(missing) succeeded")
	}
}
