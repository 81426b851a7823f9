package engine

// Ref is an opaque reference to a value in the engine's heap.
// Ref 0 is reserved and always invalid.
type Ref uint64

// Tag identifies the runtime category of an engine value. Classification
// is a single ordered step: object subcategories (function, array, buffer)
// are folded into the tag rather than probed separately.
type Tag uint8

const (
	TagInvalid Tag = iota
	TagSymbol
	TagString
	TagObject
	TagFunction
	TagArray
	TagArrayBuffer
	TagInt
	TagBool
	TagNull
	TagUndefined
	TagFloat64
	TagInternal
)

var tagNames = [...]string{
	TagInvalid:     "invalid",
	TagSymbol:      "symbol",
	TagString:      "string",
	TagObject:      "object",
	TagFunction:    "function",
	TagArray:       "array",
	TagArrayBuffer: "arraybuffer",
	TagInt:         "int",
	TagBool:        "boolean",
	TagNull:        "null",
	TagUndefined:   "undefined",
	TagFloat64:     "float64",
	TagInternal:    "internal",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "unknown"
}

// EvalKind selects the evaluation mode for a script.
type EvalKind int

const (
	// EvalGlobal evaluates global code.
	EvalGlobal EvalKind = iota

	// EvalModule evaluates module code.
	EvalModule
)

// EvalFlags adjust evaluation behavior.
type EvalFlags int

const (
	// FlagStrict forces 'strict' mode.
	FlagStrict EvalFlags = 0b01000

	// FlagStrip removes debug information to save memory.
	FlagStrip EvalFlags = 0b10000

	flagMask = FlagStrict | FlagStrip
)

// Valid reports whether flags contains only known bits.
func (f EvalFlags) Valid() bool {
	return f&^flagMask == 0
}
