package types

import (
	"strings"
)

// Method is a host callable with its parameter and return shapes resolved
// against the declaring type. Methods are immutable once constructed.
type Method struct {
	Name   string
	Return Descriptor
	Params []Descriptor
}

// NewMethod resolves the declared return and parameter descriptors against
// the owner type. It declines with an unresolved-type error when any
// descriptor still contains an unsubstitutable variable.
func NewMethod(owner Descriptor, name string, ret Descriptor, params ...Descriptor) (*Method, error) {
	resolvedRet, err := Resolve(owner, ret)
	if err != nil {
		return nil, err
	}

	resolvedParams := make([]Descriptor, len(params))
	for i, p := range params {
		rp, err := Resolve(owner, p)
		if err != nil {
			return nil, err
		}
		resolvedParams[i] = rp
	}

	return &Method{
		Name:   name,
		Return: resolvedRet,
		Params: resolvedParams,
	}, nil
}

// Signature returns the binary-compatible descriptor string used to locate
// the callable across the foreign-function boundary, e.g. "(I[J)Lstring;".
func (m *Method) Signature() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, p := range m.Params {
		b.WriteString(typeSignature(p))
	}
	b.WriteByte(')')
	b.WriteString(typeSignature(m.Return))
	return b.String()
}

func (m *Method) String() string {
	var b strings.Builder
	b.WriteString(m.Return.String())
	b.WriteByte(' ')
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i, p := range m.Params {
		if i != 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	return b.String()
}

func typeSignature(d Descriptor) string {
	switch t := d.(type) {
	case Primitive:
		if int(t.Kind) < len(kindSignatures) {
			return kindSignatures[t.Kind]
		}
		return "Lany;"
	case Nullable:
		// Nullability is a host-side concern; the boundary signature names
		// the underlying shape.
		return typeSignature(t.Elem)
	case Array:
		return "[" + typeSignature(t.Elem)
	case Named:
		return "L" + t.Name + ";"
	default:
		return "Lany;"
	}
}
