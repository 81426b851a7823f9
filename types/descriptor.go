package types

import (
	"strings"
)

// Descriptor names one host value shape. Implementations are the tagged
// variants of the descriptor algebra: Primitive, Nullable, Array, Named,
// Variable and Wildcard. Descriptors are immutable once constructed.
type Descriptor interface {
	// String returns the canonical spelling. Equal shapes produce equal
	// strings, which is what the adapter cache keys on.
	String() string

	isDescriptor()
}

// Primitive is a non-nullable primitive shape.
type Primitive struct {
	Kind Kind
}

// Nullable wraps a descriptor whose host representation admits absence
// (a pointer in Go terms). Engine null/undefined convert to host absence
// only through a nullable shape.
type Nullable struct {
	Elem Descriptor
}

// Array is a host slice/array of a component shape.
type Array struct {
	Elem Descriptor
}

// Named is a named, possibly parameterized type. Params lists the declared
// type parameter names; Args carries the actual arguments when the type is
// instantiated. len(Args) is either 0 (raw) or len(Params).
type Named struct {
	Name   string
	Params []string
	Args   []Descriptor
}

// Variable is a type variable needing substitution against an owner type.
type Variable struct {
	Name string
}

// Wildcard is a bounded wildcard argument. An upper bound canonicalizes to
// the bound itself; a lower-bound-only wildcard is not representable in the
// engine's value model and is rejected during canonicalization.
type Wildcard struct {
	Upper Descriptor
	Lower Descriptor
}

func (Primitive) isDescriptor() {}
func (Nullable) isDescriptor()  {}
func (Array) isDescriptor()     {}
func (Named) isDescriptor()     {}
func (Variable) isDescriptor()  {}
func (Wildcard) isDescriptor()  {}

func (p Primitive) String() string { return p.Kind.String() }

func (n Nullable) String() string { return "*" + n.Elem.String() }

func (a Array) String() string { return "[]" + a.Elem.String() }

func (n Named) String() string {
	if len(n.Args) == 0 {
		return n.Name
	}
	var b strings.Builder
	b.WriteString(n.Name)
	b.WriteByte('<')
	for i, arg := range n.Args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(arg.String())
	}
	b.WriteByte('>')
	return b.String()
}

func (v Variable) String() string { return "$" + v.Name }

func (w Wildcard) String() string {
	if w.Upper != nil {
		return "? extends " + w.Upper.String()
	}
	if w.Lower != nil {
		return "? super " + w.Lower.String()
	}
	return "?"
}

// Shared primitive descriptors.
var (
	VoidType    = Primitive{Kind: KindVoid}
	BoolType    = Primitive{Kind: KindBool}
	Int8Type    = Primitive{Kind: KindInt8}
	Int16Type   = Primitive{Kind: KindInt16}
	Int32Type   = Primitive{Kind: KindInt32}
	Int64Type   = Primitive{Kind: KindInt64}
	Float32Type = Primitive{Kind: KindFloat32}
	Float64Type = Primitive{Kind: KindFloat64}
	RuneType    = Primitive{Kind: KindRune}
	StringType  = Primitive{Kind: KindString}
	AnyType     = Primitive{Kind: KindAny}
)

// NewNullable returns the nullable wrapping of elem.
func NewNullable(elem Descriptor) Nullable { return Nullable{Elem: elem} }

// NewArray returns an array descriptor with the given element shape.
func NewArray(elem Descriptor) Array { return Array{Elem: elem} }

// NewNamed returns an instantiated named type. Params and args are paired
// positionally for variable substitution.
func NewNamed(name string, params []string, args ...Descriptor) Named {
	return Named{Name: name, Params: params, Args: args}
}

// NewVariable returns a type variable descriptor.
func NewVariable(name string) Variable { return Variable{Name: name} }

// Key returns the canonical cache identity for d. It is only valid for
// descriptors that have been canonicalized or resolved.
func Key(d Descriptor) string { return d.String() }
