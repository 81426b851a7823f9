package types

// Kind identifies a primitive host value shape.
type Kind uint8

const (
	KindVoid Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindRune
	KindString
	KindAny
)

var kindNames = [...]string{
	KindVoid:    "void",
	KindBool:    "bool",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindRune:    "rune",
	KindString:  "string",
	KindAny:     "any",
}

// Signature letters locate a callable across the foreign-function boundary.
// The encoding follows the binary descriptor convention: one letter per
// primitive, '[' prefixing arrays, L<name>; for named types.
var kindSignatures = [...]string{
	KindVoid:    "V",
	KindBool:    "Z",
	KindInt8:    "B",
	KindInt16:   "S",
	KindInt32:   "I",
	KindInt64:   "J",
	KindFloat32: "F",
	KindFloat64: "D",
	KindRune:    "C",
	KindString:  "Lstring;",
	KindAny:     "Lany;",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}
