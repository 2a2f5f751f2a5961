package codewriter

import (
	"slices"
	"strings"

	"github.com/hashicorp/go-set/v3"

	"github.com/broady/typepoet/poet"
)

// defaultPackages are imported into every Kotlin file.
var defaultPackages = []string{
	"kotlin",
	"kotlin.annotation",
	"kotlin.collections",
	"kotlin.comparisons",
	"kotlin.io",
	"kotlin.ranges",
	"kotlin.sequences",
	"kotlin.text",
}

// IsDefaultImport reports whether classes in pkg need no import.
func IsDefaultImport(pkg string) bool {
	return slices.Contains(defaultPackages, pkg)
}

// Imports is the outcome of the collection pass: the import lines a file
// needs and how each collected class is spelled in its body.
type Imports struct {
	pkg     string
	spelled map[string]string // canonical name -> spelling
	lines   []string          // canonical names to import, sorted
}

// Lines returns the canonical names to import, sorted.
func (im *Imports) Lines() []string {
	return slices.Clone(im.lines)
}

// Spelling returns how c is written in the body. Classes that were never
// collected are fully qualified.
func (im *Imports) Spelling(c *poet.ClassName) string {
	if im != nil {
		if s, ok := im.spelled[c.CanonicalName()]; ok {
			return s
		}
	}
	return EscapeQualified(c.CanonicalName())
}

// resolveImports assigns spellings. Names are claimed in Kotlin's
// resolution order: explicit imports, then classes of the file package,
// then default imports, then everything else in order of first use. A
// class whose simple name is already claimed by another class stays fully
// qualified.
func resolveImports(pkg string, explicit, local, refs []*poet.ClassName) *Imports {
	im := &Imports{pkg: pkg, spelled: make(map[string]string)}
	claimed := make(map[string]string) // identifier -> canonical name
	imported := set.New[string](len(explicit))

	claim := func(ident, canonical string) bool {
		if owner, ok := claimed[ident]; ok {
			return owner == canonical
		}
		claimed[ident] = canonical
		return true
	}
	spellLocal := func(c *poet.ClassName) {
		canonical := c.CanonicalName()
		if _, ok := im.spelled[canonical]; ok {
			return
		}
		names := c.SimpleNames()
		if claim(names[0], c.TopLevel().CanonicalName()) {
			im.spelled[canonical] = escapeNames(names)
		}
	}
	importClass := func(c *poet.ClassName) {
		canonical := c.CanonicalName()
		if _, ok := im.spelled[canonical]; ok {
			return
		}
		if claim(c.SimpleName(), canonical) {
			im.spelled[canonical] = EscapeName(c.SimpleName())
			imported.Insert(canonical)
		}
	}

	for _, c := range explicit {
		importClass(c)
	}
	for _, c := range local {
		spellLocal(c)
	}
	for _, c := range refs {
		if c.PackageName() == pkg {
			spellLocal(c)
		}
	}
	for _, c := range refs {
		if IsDefaultImport(c.PackageName()) && c.PackageName() != pkg {
			spellLocal(c)
		}
	}
	for _, c := range refs {
		if c.PackageName() != pkg && !IsDefaultImport(c.PackageName()) && c.PackageName() != "" {
			importClass(c)
		}
	}

	im.lines = imported.Slice()
	slices.Sort(im.lines)
	return im
}

func escapeNames(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = EscapeName(n)
	}
	return strings.Join(out, ".")
}
