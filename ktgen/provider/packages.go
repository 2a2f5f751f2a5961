// Package provider extracts type information from Go code and converts it
// to Kotlin declarations.
package provider

import (
	"strings"
	"unicode"
)

// PackageMap overrides the Kotlin package chosen for individual Go import
// paths. Paths without an entry use KotlinPackage.
type PackageMap map[string]string

// Kotlin returns the Kotlin package for importPath.
func (m PackageMap) Kotlin(importPath string) string {
	if pkg, ok := m[importPath]; ok {
		return pkg
	}
	return KotlinPackage(importPath)
}

// KotlinPackage derives a Kotlin package name from a Go import path. The
// host labels of the first element are reversed and the remaining path
// elements appended, so "github.com/acme/api/v1" becomes
// "com.github.acme.api.v1". Runes that cannot appear in an identifier are
// replaced by '_'. Keywords are left bare; the code writer quotes them.
func KotlinPackage(importPath string) string {
	if importPath == "" {
		return ""
	}
	elems := strings.Split(importPath, "/")

	var segs []string
	if host := elems[0]; strings.Contains(host, ".") {
		labels := strings.Split(host, ".")
		for i := len(labels) - 1; i >= 0; i-- {
			segs = append(segs, labels[i])
		}
		elems = elems[1:]
	}
	segs = append(segs, elems...)

	out := segs[:0]
	for _, s := range segs {
		if s == "" {
			continue
		}
		out = append(out, packageSegment(s))
	}
	return strings.Join(out, ".")
}

func packageSegment(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
