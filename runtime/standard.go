package runtime

import (
	"fmt"
	"math"

	"github.com/wippyai/js-runtime/errors"
	"github.com/wippyai/js-runtime/types"
)

// standardFactory serves the primitive shapes and their nullable (boxed)
// variants. It declines everything else.
type standardFactory struct{}

func (standardFactory) Create(depot *Depot, desc types.Descriptor) (TypeAdapter, error) {
	switch t := desc.(type) {
	case types.Primitive:
		return primitiveAdapter(t.Kind), nil
	case types.Nullable:
		inner, err := depot.Adapter(t.Elem)
		if err != nil {
			return nil, err
		}
		return Nullable(inner), nil
	}
	return nil, nil
}

func primitiveAdapter(k types.Kind) TypeAdapter {
	switch k {
	case types.KindBool:
		return boolAdapter{}
	case types.KindInt8:
		return int8Adapter{}
	case types.KindInt16:
		return int16Adapter{}
	case types.KindInt32:
		return int32Adapter{}
	case types.KindRune:
		return runeAdapter{}
	case types.KindInt64:
		return int64Adapter{}
	case types.KindFloat32:
		return float32Adapter{}
	case types.KindFloat64:
		return float64Adapter{}
	case types.KindString:
		return stringAdapter{}
	case types.KindAny:
		return anyAdapter{}
	}
	return nil // void has no value shape
}

func hostMismatch(expected string, got any) error {
	return errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
		HostType(fmt.Sprintf("%T", got)).
		Detail("expected host %s, got %T", expected, got).
		Value(got).
		Build()
}

type boolAdapter struct{}

func (boolAdapter) ToEngine(s *Scope, value any) (JSValue, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, hostMismatch("bool", value)
	}
	return s.Boolean(b)
}

func (boolAdapter) FromEngine(s *Scope, value JSValue) (any, error) {
	v, ok := value.(*JSBoolean)
	if !ok {
		return nil, errors.TypeMismatch("boolean", value.Tag().String())
	}
	return v.Value(), nil
}

type int8Adapter struct{}

func (int8Adapter) ToEngine(s *Scope, value any) (JSValue, error) {
	n, ok := value.(int8)
	if !ok {
		return nil, hostMismatch("int8", value)
	}
	return s.Int(int32(n))
}

func (int8Adapter) FromEngine(s *Scope, value JSValue) (any, error) {
	switch v := value.(type) {
	case *JSInt:
		return v.Byte()
	case *JSFloat64:
		return v.Byte()
	}
	return nil, errors.TypeMismatch("number", value.Tag().String())
}

type int16Adapter struct{}

func (int16Adapter) ToEngine(s *Scope, value any) (JSValue, error) {
	n, ok := value.(int16)
	if !ok {
		return nil, hostMismatch("int16", value)
	}
	return s.Int(int32(n))
}

func (int16Adapter) FromEngine(s *Scope, value JSValue) (any, error) {
	switch v := value.(type) {
	case *JSInt:
		return v.Int16()
	case *JSFloat64:
		return v.Int16()
	}
	return nil, errors.TypeMismatch("number", value.Tag().String())
}

type int32Adapter struct{}

func (int32Adapter) ToEngine(s *Scope, value any) (JSValue, error) {
	n, ok := value.(int32)
	if !ok {
		return nil, hostMismatch("int32", value)
	}
	return s.Int(n)
}

func (int32Adapter) FromEngine(s *Scope, value JSValue) (any, error) {
	switch v := value.(type) {
	case *JSInt:
		return v.Int32(), nil
	case *JSFloat64:
		return v.Int32()
	}
	return nil, errors.TypeMismatch("number", value.Tag().String())
}

type int64Adapter struct{}

func (int64Adapter) ToEngine(s *Scope, value any) (JSValue, error) {
	n, ok := value.(int64)
	if !ok {
		return nil, hostMismatch("int64", value)
	}
	if n >= math.MinInt32 && n <= math.MaxInt32 {
		return s.Int(int32(n))
	}
	// Large magnitudes travel as float64; reject ones it cannot hold
	// exactly rather than silently rounding.
	f := float64(n)
	if int64(f) != n {
		return nil, errors.Range(n, "float64")
	}
	return s.Float64(f)
}

func (int64Adapter) FromEngine(s *Scope, value JSValue) (any, error) {
	switch v := value.(type) {
	case *JSInt:
		return v.Int64(), nil
	case *JSFloat64:
		return v.Int64()
	}
	return nil, errors.TypeMismatch("number", value.Tag().String())
}

type float32Adapter struct{}

func (float32Adapter) ToEngine(s *Scope, value any) (JSValue, error) {
	f, ok := value.(float32)
	if !ok {
		return nil, hostMismatch("float32", value)
	}
	return s.Float64(float64(f))
}

func (float32Adapter) FromEngine(s *Scope, value JSValue) (any, error) {
	switch v := value.(type) {
	case *JSInt:
		return v.Float32()
	case *JSFloat64:
		return v.Float32()
	}
	return nil, errors.TypeMismatch("number", value.Tag().String())
}

type float64Adapter struct{}

func (float64Adapter) ToEngine(s *Scope, value any) (JSValue, error) {
	f, ok := value.(float64)
	if !ok {
		return nil, hostMismatch("float64", value)
	}
	return s.Float64(f)
}

func (float64Adapter) FromEngine(s *Scope, value JSValue) (any, error) {
	switch v := value.(type) {
	case *JSInt:
		return v.Float64(), nil
	case *JSFloat64:
		return v.Value(), nil
	}
	return nil, errors.TypeMismatch("number", value.Tag().String())
}

// runeAdapter carries a single character as a one-character engine
// string. Reading a string of any other length is a range error.
type runeAdapter struct{}

func (runeAdapter) ToEngine(s *Scope, value any) (JSValue, error) {
	r, ok := value.(rune)
	if !ok {
		return nil, hostMismatch("rune", value)
	}
	return s.String(string(r))
}

func (runeAdapter) FromEngine(s *Scope, value JSValue) (any, error) {
	v, ok := value.(*JSString)
	if !ok {
		return nil, errors.TypeMismatch("string", value.Tag().String())
	}
	runes := []rune(v.Value())
	if len(runes) != 1 {
		return nil, errors.Range(v.Value(), "rune")
	}
	return runes[0], nil
}

type stringAdapter struct{}

func (stringAdapter) ToEngine(s *Scope, value any) (JSValue, error) {
	str, ok := value.(string)
	if !ok {
		return nil, hostMismatch("string", value)
	}
	return s.String(str)
}

func (stringAdapter) FromEngine(s *Scope, value JSValue) (any, error) {
	v, ok := value.(*JSString)
	if !ok {
		return nil, errors.TypeMismatch("string", value.Tag().String())
	}
	return v.Value(), nil
}
