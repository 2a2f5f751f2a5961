package provider

import (
	"fmt"
	"go/types"

	"github.com/broady/typepoet/poet"
)

// Kotlin classes with no poet built-in.
var (
	instant        = poet.ClassNameOf("java.time", "Instant")
	duration       = poet.ClassNameOf("kotlin.time", "Duration")
	channel        = poet.ClassNameOf("kotlinx.coroutines.channels", "Channel")
	sendChannel    = poet.ClassNameOf("kotlinx.coroutines.channels", "SendChannel")
	receiveChannel = poet.ClassNameOf("kotlinx.coroutines.channels", "ReceiveChannel")
)

// Mirrors wraps go/types types as poet mirrors. A Mirrors is not safe for
// concurrent use.
type Mirrors struct {
	packages PackageMap
	owners   map[*types.TypeParam]string

	// onNamed is called for every named type that becomes a class
	// reference, so the caller can extract its declaration too.
	onNamed func(*types.Named)
}

// NewMirrors returns a Mirrors that maps import paths through packages.
func NewMirrors(packages PackageMap) *Mirrors {
	return &Mirrors{packages: packages, owners: make(map[*types.TypeParam]string)}
}

// TypeName converts t, sharing type variables through vars.
func (m *Mirrors) TypeName(t types.Type, vars map[poet.TypeParameterElement]*poet.TypeVariableName) (poet.TypeName, error) {
	return poet.FromMirrorWith(m.Of(t), vars)
}

// TypeParameters converts the type parameters of the declaration owner.
// Bounds that mention other parameters of the list resolve through vars.
func (m *Mirrors) TypeParameters(owner string, list *types.TypeParamList, vars map[poet.TypeParameterElement]*poet.TypeVariableName) ([]*poet.TypeVariableName, error) {
	var out []*poet.TypeVariableName
	for i := range list.Len() {
		tp := list.At(i)
		m.owners[tp] = owner
		t, err := poet.FromMirrorWith(typeParamMirror{typeParamElement{tp: tp, m: m}}, vars)
		if err != nil {
			return nil, fmt.Errorf("type parameter %s of %s: %w", tp.Obj().Name(), owner, err)
		}
		out = append(out, t.(*poet.TypeVariableName))
	}
	return out, nil
}

// Of returns the mirror of t. Types with no Kotlin counterpart yield a
// mirror that poet.FromMirror rejects with *poet.UnsupportedError.
func (m *Mirrors) Of(t types.Type) poet.TypeMirror {
	switch t := t.(type) {
	case *types.Alias:
		return m.Of(types.Unalias(t))

	case *types.Basic:
		if c := basicClass(t); c != nil {
			return classMirror(c, t.String())
		}
		return unsupportedMirror(t.String())

	case *types.Named:
		return m.named(t)

	case *types.TypeParam:
		return typeParamMirror{typeParamElement{tp: t, m: m}}

	case *types.Pointer:
		return m.Of(t.Elem())

	case *types.Slice:
		if isByte(t.Elem()) {
			return classMirror(poet.ByteArray, t.String())
		}
		return classMirror(poet.List, t.String(), m.Of(t.Elem()))

	case *types.Array:
		return classMirror(poet.Array, t.String(), &wildcardMirror{extends: m.Of(t.Elem())})

	case *types.Map:
		return classMirror(poet.Map, t.String(), m.Of(t.Key()), m.Of(t.Elem()))

	case *types.Chan:
		switch t.Dir() {
		case types.SendOnly:
			return classMirror(sendChannel, t.String(), &wildcardMirror{super: m.Of(t.Elem())})
		case types.RecvOnly:
			return classMirror(receiveChannel, t.String(), &wildcardMirror{extends: m.Of(t.Elem())})
		default:
			return classMirror(channel, t.String(), m.Of(t.Elem()))
		}

	case *types.Signature:
		return m.signature(t)

	case *types.Interface:
		if t.Empty() {
			return classMirror(poet.Any, t.String())
		}
		return unsupportedMirror(t.String())

	case *types.Struct:
		if t.NumFields() == 0 {
			return classMirror(poet.Unit, t.String())
		}
		return unsupportedMirror("anonymous " + t.String())

	default:
		return unsupportedMirror(t.String())
	}
}

func (m *Mirrors) named(t *types.Named) poet.TypeMirror {
	obj := t.Obj()
	if obj.Pkg() == nil {
		if obj.Name() == "error" {
			return classMirror(poet.Throwable, "error")
		}
		return unsupportedMirror(obj.Name())
	}
	switch obj.Pkg().Path() + "." + obj.Name() {
	case "time.Time":
		return classMirror(instant, "time.Time")
	case "time.Duration":
		return classMirror(duration, "time.Duration")
	}

	if m.onNamed != nil {
		m.onNamed(t)
	}
	var args []poet.TypeMirror
	targs := t.TypeArgs()
	for i := range targs.Len() {
		args = append(args, m.Of(targs.At(i)))
	}
	return &declaredMirror{
		pkg:   m.packages.Kotlin(obj.Pkg().Path()),
		names: []string{obj.Name()},
		args:  args,
		desc:  t.String(),
	}
}

// signature maps a func type to a Kotlin function type. A trailing error
// result is dropped; the rest collapse to Unit, T, Pair or Triple.
func (m *Mirrors) signature(sig *types.Signature) poet.TypeMirror {
	s := &signatureMirror{desc: sig.String()}
	if recv := sig.Recv(); recv != nil {
		s.receiver = m.Of(recv.Type())
	}

	params := sig.Params()
	for i := range params.Len() {
		pt := params.At(i).Type()
		if sig.Variadic() && i == params.Len()-1 {
			if sl, ok := pt.Underlying().(*types.Slice); ok {
				s.params = append(s.params, classMirror(poet.Array, pt.String(), &wildcardMirror{extends: m.Of(sl.Elem())}))
				continue
			}
		}
		s.params = append(s.params, m.Of(pt))
	}

	var results []types.Type
	for i := range sig.Results().Len() {
		results = append(results, sig.Results().At(i).Type())
	}
	if n := len(results); n > 0 && isError(results[n-1]) {
		results = results[:n-1]
	}
	switch len(results) {
	case 0:
	case 1:
		s.result = m.Of(results[0])
	case 2:
		s.result = classMirror(poet.Pair, sig.Results().String(), m.Of(results[0]), m.Of(results[1]))
	case 3:
		s.result = classMirror(poet.Triple, sig.Results().String(), m.Of(results[0]), m.Of(results[1]), m.Of(results[2]))
	default:
		return unsupportedMirror(sig.String())
	}
	return s
}

// constraintBounds returns the upper bounds expressible in Kotlin: named
// interfaces with methods. Type sets, unions and comparable have no
// counterpart and are dropped.
func (m *Mirrors) constraintBounds(c types.Type) []poet.TypeMirror {
	c = types.Unalias(c)
	iface, ok := c.Underlying().(*types.Interface)
	if !ok {
		return nil
	}
	if named, ok := c.(*types.Named); ok {
		if named.Obj().Pkg() != nil && iface.IsMethodSet() && iface.NumMethods() > 0 {
			return []poet.TypeMirror{m.Of(named)}
		}
		return nil
	}
	var bounds []poet.TypeMirror
	for i := range iface.NumEmbeddeds() {
		bounds = append(bounds, m.constraintBounds(iface.EmbeddedType(i))...)
	}
	return bounds
}

func basicClass(b *types.Basic) *poet.ClassName {
	switch b.Kind() {
	case types.Bool, types.UntypedBool:
		return poet.Boolean
	case types.String, types.UntypedString:
		return poet.String
	case types.Int, types.Int64, types.UntypedInt:
		return poet.Long
	case types.Int32, types.UntypedRune:
		return poet.Int
	case types.Int16:
		return poet.Short
	case types.Int8:
		return poet.Byte
	case types.Uint, types.Uint64, types.Uintptr:
		return poet.ULong
	case types.Uint32:
		return poet.UInt
	case types.Uint16:
		return poet.UShort
	case types.Uint8:
		return poet.UByte
	case types.Float32:
		return poet.Float
	case types.Float64, types.UntypedFloat:
		return poet.Double
	default:
		return nil
	}
}

func isByte(t types.Type) bool {
	b, ok := types.Unalias(t).(*types.Basic)
	return ok && b.Kind() == types.Uint8
}

var errorType = types.Universe.Lookup("error").Type()

func isError(t types.Type) bool {
	return types.Identical(t, errorType)
}

type declaredMirror struct {
	pkg   string
	names []string
	args  []poet.TypeMirror
	desc  string
}

func classMirror(c *poet.ClassName, desc string, args ...poet.TypeMirror) *declaredMirror {
	return &declaredMirror{pkg: c.PackageName(), names: c.SimpleNames(), args: args, desc: desc}
}

func (d *declaredMirror) String() string                   { return d.desc }
func (d *declaredMirror) Package() string                  { return d.pkg }
func (d *declaredMirror) SimpleNames() []string            { return d.names }
func (d *declaredMirror) TypeArguments() []poet.TypeMirror { return d.args }

type wildcardMirror struct {
	extends poet.TypeMirror
	super   poet.TypeMirror
}

func (w *wildcardMirror) String() string {
	switch {
	case w.extends != nil:
		return "out " + w.extends.String()
	case w.super != nil:
		return "in " + w.super.String()
	default:
		return "*"
	}
}

func (w *wildcardMirror) ExtendsBound() poet.TypeMirror { return w.extends }
func (w *wildcardMirror) SuperBound() poet.TypeMirror   { return w.super }

type typeParamMirror struct {
	el typeParamElement
}

func (v typeParamMirror) String() string                     { return v.el.Name() }
func (v typeParamMirror) Element() poet.TypeParameterElement { return v.el }

// typeParamElement is keyed by the *types.TypeParam, which go/types shares
// between every use of the parameter.
type typeParamElement struct {
	tp *types.TypeParam
	m  *Mirrors
}

func (e typeParamElement) Name() string              { return e.tp.Obj().Name() }
func (e typeParamElement) Bounds() []poet.TypeMirror { return e.m.constraintBounds(e.tp.Constraint()) }
func (e typeParamElement) GenericElement() string    { return e.m.owners[e.tp] }

type signatureMirror struct {
	receiver poet.TypeMirror
	params   []poet.TypeMirror
	result   poet.TypeMirror
	desc     string
}

func (s *signatureMirror) String() string                { return s.desc }
func (s *signatureMirror) Receiver() poet.TypeMirror     { return s.receiver }
func (s *signatureMirror) Parameters() []poet.TypeMirror { return s.params }
func (s *signatureMirror) Result() poet.TypeMirror       { return s.result }

// unsupportedMirror implements no capability, so conversion fails.
type unsupportedMirror string

func (u unsupportedMirror) String() string { return string(u) }
