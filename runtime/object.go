package runtime

import (
	"reflect"

	"github.com/wippyai/js-runtime/errors"
	"github.com/wippyai/js-runtime/types"
)

// objectFactory is the fallback for named types the other factories do
// not recognize: they convert as plain objects, map[string]any on the
// host side.
type objectFactory struct{}

func (objectFactory) Create(depot *Depot, desc types.Descriptor) (TypeAdapter, error) {
	if _, ok := desc.(types.Named); !ok {
		return nil, nil
	}
	return Nullable(objectAdapter{}), nil
}

type objectAdapter struct{}

func (objectAdapter) ToEngine(s *Scope, value any) (JSValue, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, hostMismatch("map[string]any", value)
	}
	out, err := s.NewObject()
	if err != nil {
		return nil, err
	}
	dyn := anyAdapter{}
	for k, v := range m {
		ev, err := dyn.ToEngine(s, v)
		if err != nil {
			return nil, err
		}
		if err := s.SetProperty(out, k, ev); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (objectAdapter) FromEngine(s *Scope, value JSValue) (any, error) {
	obj, ok := value.(*JSObject)
	if !ok {
		return nil, errors.TypeMismatch("object", value.Tag().String())
	}
	keys, err := s.Keys(obj)
	if err != nil {
		return nil, err
	}
	dyn := anyAdapter{}
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		pv, err := s.GetProperty(obj, k)
		if err != nil {
			return nil, err
		}
		hv, err := dyn.FromEngine(s, pv)
		if err != nil {
			return nil, err
		}
		out[k] = hv
	}
	return out, nil
}

// anyAdapter is the dynamic adapter: conversion is driven by the value's
// runtime shape instead of a declared type. Numbers always surface as
// float64, the engine's native number width. Functions and symbols have
// no host mapping and pass through as their wrappers.
type anyAdapter struct{}

func (anyAdapter) ToEngine(s *Scope, value any) (JSValue, error) {
	switch v := value.(type) {
	case nil:
		return s.Null()
	case JSValue:
		return v, nil
	case bool:
		return s.Boolean(v)
	case int:
		return int64Adapter{}.ToEngine(s, int64(v))
	case int8:
		return s.Int(int32(v))
	case int16:
		return s.Int(int32(v))
	case int32:
		return s.Int(v)
	case int64:
		return int64Adapter{}.ToEngine(s, v)
	case float32:
		return s.Float64(float64(v))
	case float64:
		return s.Float64(v)
	case string:
		return s.String(v)
	case []byte:
		return s.NewArrayBuffer(v)
	case map[string]any:
		return objectAdapter{}.ToEngine(s, v)
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out, err := s.NewArray()
		if err != nil {
			return nil, err
		}
		dyn := anyAdapter{}
		for i := 0; i < rv.Len(); i++ {
			ev, err := dyn.ToEngine(s, rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			if err := s.SetIndex(out, i, ev); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return s.Null()
		}
		return anyAdapter{}.ToEngine(s, rv.Elem().Interface())
	}
	return nil, errors.InvalidInput(errors.PhaseConvert, "no dynamic conversion for host type %T", value)
}

func (anyAdapter) FromEngine(s *Scope, value JSValue) (any, error) {
	switch v := value.(type) {
	case *JSNull, *JSUndefined:
		return nil, nil
	case *JSBoolean:
		return v.Value(), nil
	case *JSInt:
		return v.Float64(), nil
	case *JSFloat64:
		return v.Value(), nil
	case *JSString:
		return v.Value(), nil
	case *JSArrayBuffer:
		return s.Bytes(v)
	case *JSArray:
		n, err := s.Length(v)
		if err != nil {
			return nil, err
		}
		out := make([]any, n)
		dyn := anyAdapter{}
		for i := 0; i < n; i++ {
			ev, err := s.GetIndex(v, i)
			if err != nil {
				return nil, err
			}
			if out[i], err = dyn.FromEngine(s, ev); err != nil {
				return nil, err
			}
		}
		return out, nil
	case *JSObject:
		return objectAdapter{}.FromEngine(s, v)
	}
	// Functions, symbols and engine-internal values keep their wrappers.
	return value, nil
}
