package runtime

import (
	"reflect"

	"github.com/wippyai/js-runtime/errors"
	"github.com/wippyai/js-runtime/types"
)

// arrayFactory serves array shapes: element-wise conversion through the
// element's own adapter, in index order. Array adapters are nullable by
// construction, matching the host slice's ability to be nil.
type arrayFactory struct{}

func (arrayFactory) Create(depot *Depot, desc types.Descriptor) (TypeAdapter, error) {
	arr, ok := desc.(types.Array)
	if !ok {
		return nil, nil
	}
	elem, err := depot.Adapter(arr.Elem)
	if err != nil {
		return nil, err
	}
	return Nullable(&arrayAdapter{
		elem:     elem,
		elemType: goType(arr.Elem),
	}), nil
}

type arrayAdapter struct {
	elem     TypeAdapter
	elemType reflect.Type
}

func (a *arrayAdapter) ToEngine(s *Scope, value any) (JSValue, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, hostMismatch("slice", value)
	}

	out, err := s.NewArray()
	if err != nil {
		return nil, err
	}
	for i := 0; i < rv.Len(); i++ {
		ev, err := a.elem.ToEngine(s, rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		if err := s.SetIndex(out, i, ev); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (a *arrayAdapter) FromEngine(s *Scope, value JSValue) (any, error) {
	arr, ok := value.(*JSArray)
	if !ok {
		return nil, errors.TypeMismatch("array", value.Tag().String())
	}

	// Length is read once; elements appended by the script mid-conversion
	// are not picked up.
	n, err := s.Length(arr)
	if err != nil {
		return nil, err
	}

	out := reflect.MakeSlice(reflect.SliceOf(a.elemType), n, n)
	for i := 0; i < n; i++ {
		ev, err := s.GetIndex(arr, i)
		if err != nil {
			return nil, err
		}
		hv, err := a.elem.FromEngine(s, ev)
		if err != nil {
			return nil, err
		}
		if hv == nil {
			continue // nil element keeps the slot's zero value
		}
		rv := reflect.ValueOf(hv)
		if !rv.Type().AssignableTo(a.elemType) {
			if a.elemType.Kind() == reflect.Pointer && rv.Type() == a.elemType.Elem() {
				p := reflect.New(a.elemType.Elem())
				p.Elem().Set(rv)
				rv = p
			} else {
				return nil, errors.TypeMismatch(a.elemType.String(), rv.Type().String())
			}
		}
		out.Index(i).Set(rv)
	}
	return out.Interface(), nil
}
