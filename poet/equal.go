package poet

import (
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// keyWriter is implemented by every variant. It writes a canonical form
// that is identical for structurally equal values and different otherwise:
// every free-form string is written quoted. inBound is set while
// writing the bounds of a type variable; nested type variables then write
// only their name, which keeps self-referential bounds finite.
type keyWriter interface {
	writeKey(b *strings.Builder, inBound bool)
}

func key(t TypeName) string {
	var b strings.Builder
	writeKey(&b, t, false)
	return b.String()
}

func writeKey(b *strings.Builder, t TypeName, inBound bool) {
	if t == nil {
		b.WriteString("nil")
		return
	}
	t.(keyWriter).writeKey(b, inBound)
}

func writeString(b *strings.Builder, s string) {
	b.WriteString(strconv.Quote(s))
}

func writeNames(b *strings.Builder, pkg string, names []string) {
	writeString(b, pkg)
	for _, n := range names {
		b.WriteByte('.')
		writeString(b, n)
	}
}

func writeKeys(b *strings.Builder, ts []TypeName, inBound bool) {
	b.WriteByte('[')
	for i, t := range ts {
		if i > 0 {
			b.WriteByte(',')
		}
		writeKey(b, t, inBound)
	}
	b.WriteByte(']')
}

func equal(a, b TypeName) bool {
	if b == nil {
		return false
	}
	if a.Kind() != b.Kind() {
		return false
	}
	return key(a) == key(b)
}

func hash(t TypeName) uint64 {
	return xxh3.HashString(key(t))
}

func (c *ClassName) writeKey(b *strings.Builder, _ bool) {
	b.WriteString("C(")
	c.annotated.writeKey(b)
	writeNames(b, c.pkg, c.names)
	b.WriteByte(')')
}

func (p *ParameterizedTypeName) writeKey(b *strings.Builder, inBound bool) {
	b.WriteString("P(")
	p.annotated.writeKey(b)
	if p.enclosing != nil {
		p.enclosing.writeKey(b, inBound)
		b.WriteByte('.')
	}
	p.raw.writeKey(b, inBound)
	writeKeys(b, p.args, inBound)
	b.WriteByte(')')
}

func (v *TypeVariableName) writeKey(b *strings.Builder, inBound bool) {
	b.WriteString("V(")
	v.annotated.writeKey(b)
	writeString(b, v.name)
	if inBound {
		b.WriteByte(')')
		return
	}
	b.WriteByte(';')
	b.WriteString(v.variance.String())
	if v.reified {
		b.WriteString(";reified")
	}
	writeKeys(b, v.bounds, true)
	b.WriteByte(')')
}

func (w *WildcardTypeName) writeKey(b *strings.Builder, inBound bool) {
	b.WriteString("W(")
	w.annotated.writeKey(b)
	writeKeys(b, w.upper, inBound)
	writeKeys(b, w.lower, inBound)
	b.WriteByte(')')
}

func (l *LambdaTypeName) writeKey(b *strings.Builder, inBound bool) {
	b.WriteString("L(")
	l.annotated.writeKey(b)
	if l.suspending {
		b.WriteString("suspend;")
	}
	writeKey(b, l.receiver, inBound)
	writeKeys(b, l.params, inBound)
	writeKey(b, l.returns, inBound)
	b.WriteByte(')')
}
