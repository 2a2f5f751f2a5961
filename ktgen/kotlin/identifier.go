package kotlin

import (
	"strings"
	"unicode"

	"github.com/broady/typepoet/poet/codewriter"
)

// SanitizeIdentifier makes name a valid Kotlin identifier: invalid runes
// become '_', a leading digit gets a '_' prefix, and hard keywords are
// back-quoted.
func SanitizeIdentifier(name string) string {
	if name == "" {
		return "_"
	}

	var result strings.Builder
	for i, r := range name {
		if i == 0 && unicode.IsDigit(r) {
			result.WriteRune('_')
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			result.WriteRune(r)
		} else {
			result.WriteRune('_')
		}
	}
	return codewriter.EscapeName(result.String())
}

// PropertyName converts a wire or Go field name to lowerCamelCase:
// "created_at" and "CreatedAt" both become "createdAt", "ID" becomes "id".
func PropertyName(name string) string {
	words := splitWords(name)
	if len(words) == 0 {
		return "_"
	}
	var b strings.Builder
	for i, w := range words {
		if i == 0 {
			b.WriteString(strings.ToLower(w))
			continue
		}
		b.WriteString(capitalize(strings.ToLower(w)))
	}
	return SanitizeIdentifier(b.String())
}

// EnumEntryName converts a Go constant name to SCREAMING_SNAKE_CASE after
// removing the enum type's name as a prefix: StatusInProgress of type
// Status becomes IN_PROGRESS.
func EnumEntryName(constName, typeName string) string {
	trimmed := strings.TrimPrefix(constName, typeName)
	if trimmed == "" || unicode.IsLower(firstRune(trimmed)) {
		trimmed = constName
	}
	trimmed = strings.TrimLeft(trimmed, "_")
	words := splitWords(trimmed)
	for i, w := range words {
		words[i] = strings.ToUpper(w)
	}
	return SanitizeIdentifier(strings.Join(words, "_"))
}

// splitWords breaks name at separators and case changes. A run of capitals
// is one word, except that its last capital starts the next word when a
// lower-case letter follows (URLPath -> URL, Path).
func splitWords(name string) []string {
	runes := []rune(name)
	var words []string
	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(runes[start:end]))
		}
		start = -1
	}
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		prev := runes[i-1]
		switch {
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush(i)
			start = i
		case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			flush(i)
			start = i
		}
	}
	flush(len(runes))
	return words
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
