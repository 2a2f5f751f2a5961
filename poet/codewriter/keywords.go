package codewriter

import "strings"

// hardKeywords cannot be used as identifiers in Kotlin without backticks.
var hardKeywords = map[string]bool{
	"as": true, "break": true, "class": true, "continue": true, "do": true,
	"else": true, "false": true, "for": true, "fun": true, "if": true,
	"in": true, "interface": true, "is": true, "null": true, "object": true,
	"package": true, "return": true, "super": true, "this": true, "throw": true,
	"true": true, "try": true, "typealias": true, "typeof": true, "val": true,
	"var": true, "when": true, "while": true,
}

// IsKeyword reports whether name is a Kotlin hard keyword.
func IsKeyword(name string) bool {
	return hardKeywords[name]
}

// EscapeName back-quotes name if it is a hard keyword.
func EscapeName(name string) string {
	if hardKeywords[name] {
		return "`" + name + "`"
	}
	return name
}

// EscapeQualified back-quotes each keyword segment of a dotted name.
func EscapeQualified(name string) string {
	if name == "" {
		return ""
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = EscapeName(p)
	}
	return strings.Join(parts, ".")
}
