package runtime

import (
	"reflect"

	"github.com/wippyai/js-runtime/errors"
	"github.com/wippyai/js-runtime/types"
)

// Scope is the view of a context handed to adapters. Adapter methods run
// while the runtime lock is already held, so they must not call public
// Context or wrapper methods; the scope exposes the same operations
// without locking.
type Scope struct {
	c *Context
}

func (c *Context) scope() *Scope { return &Scope{c: c} }

// Context returns the owning context.
func (s *Scope) Context() *Context { return s.c }

// Adapter resolves an adapter from the runtime's depot.
func (s *Scope) Adapter(desc types.Descriptor) (TypeAdapter, error) {
	return s.c.rt.depot.Adapter(desc)
}

func (s *Scope) Null() (JSValue, error) {
	ref, err := s.c.ec.CreateNull()
	if err != nil {
		return nil, err
	}
	return s.c.wrap(ref)
}

func (s *Scope) Undefined() (JSValue, error) {
	ref, err := s.c.ec.CreateUndefined()
	if err != nil {
		return nil, err
	}
	return s.c.wrap(ref)
}

func (s *Scope) Boolean(b bool) (JSValue, error) {
	ref, err := s.c.ec.CreateBool(b)
	if err != nil {
		return nil, err
	}
	return s.c.wrap(ref)
}

func (s *Scope) Int(n int32) (JSValue, error) {
	ref, err := s.c.ec.CreateInt(n)
	if err != nil {
		return nil, err
	}
	return s.c.wrap(ref)
}

// Float64 creates a number value. Integral floats classify as ints.
func (s *Scope) Float64(f float64) (JSValue, error) {
	ref, err := s.c.ec.CreateFloat64(f)
	if err != nil {
		return nil, err
	}
	return s.c.wrap(ref)
}

func (s *Scope) String(str string) (JSValue, error) {
	ref, err := s.c.ec.CreateString(str)
	if err != nil {
		return nil, err
	}
	return s.c.wrap(ref)
}

func (s *Scope) NewObject() (*JSObject, error) {
	ref, err := s.c.ec.CreateObject()
	if err != nil {
		return nil, err
	}
	return s.c.wrapObject(ref)
}

func (s *Scope) NewArray() (*JSArray, error) {
	ref, err := s.c.ec.CreateArray()
	if err != nil {
		return nil, err
	}
	v, err := s.c.wrap(ref)
	if err != nil {
		return nil, err
	}
	arr, ok := v.(*JSArray)
	if !ok {
		return nil, errors.TypeMismatch("array", v.Tag().String())
	}
	return arr, nil
}

func (s *Scope) NewArrayBuffer(data []byte) (*JSArrayBuffer, error) {
	ref, err := s.c.ec.CreateArrayBuffer(data)
	if err != nil {
		return nil, err
	}
	v, err := s.c.wrap(ref)
	if err != nil {
		return nil, err
	}
	buf, ok := v.(*JSArrayBuffer)
	if !ok {
		return nil, errors.TypeMismatch("arraybuffer", v.Tag().String())
	}
	return buf, nil
}

func (s *Scope) Length(a *JSArray) (int, error) {
	return s.c.arrayLength(a)
}

func (s *Scope) GetIndex(a *JSArray, i int) (JSValue, error) {
	return s.c.getIndex(a, i)
}

func (s *Scope) SetIndex(a *JSArray, i int, v JSValue) error {
	return s.c.setIndex(a, i, v)
}

func (s *Scope) GetProperty(o *JSObject, name string) (JSValue, error) {
	return s.c.getProperty(o, name)
}

func (s *Scope) SetProperty(o *JSObject, name string, v JSValue) error {
	return s.c.setProperty(o, name, v)
}

func (s *Scope) Keys(o *JSObject) ([]string, error) {
	return s.c.keys(o)
}

func (s *Scope) Call(f *JSFunction, this JSValue, args ...JSValue) (JSValue, error) {
	return s.c.invoke(f, this, args...)
}

func (s *Scope) Bytes(b *JSArrayBuffer) ([]byte, error) {
	return s.c.arrayBufferBytes(b)
}

// TypeAdapter converts between one host type and its engine
// representation. Adapters are stateless and shared; the depot caches
// one instance per type key.
type TypeAdapter interface {
	ToEngine(s *Scope, value any) (JSValue, error)
	FromEngine(s *Scope, value JSValue) (any, error)
}

// Nullable wraps an adapter so that engine null and undefined convert to
// host nil, and host nil converts to engine null. Without the wrapper,
// null and undefined are conversion errors. Wrapping twice is a no-op.
func Nullable(inner TypeAdapter) TypeAdapter {
	if _, ok := inner.(*nullableAdapter); ok {
		return inner
	}
	return &nullableAdapter{inner: inner}
}

type nullableAdapter struct {
	inner TypeAdapter
}

func (a *nullableAdapter) ToEngine(s *Scope, value any) (JSValue, error) {
	if value == nil {
		return s.Null()
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		if rv.IsNil() {
			return s.Null()
		}
	}
	if rv.Kind() == reflect.Pointer {
		value = rv.Elem().Interface()
	}
	return a.inner.ToEngine(s, value)
}

func (a *nullableAdapter) FromEngine(s *Scope, value JSValue) (any, error) {
	switch value.(type) {
	case *JSNull, *JSUndefined:
		return nil, nil
	}
	return a.inner.FromEngine(s, value)
}

// AdapterFactory produces adapters for the types it recognizes. A
// factory declines a type by returning (nil, nil) or an unresolved-type
// error; any other error aborts the lookup.
type AdapterFactory interface {
	Create(depot *Depot, desc types.Descriptor) (TypeAdapter, error)
}

// Depot caches one adapter per canonical type key and builds missing
// ones through an ordered factory chain. Not safe for concurrent use on
// its own; the owning runtime's lock serializes access.
type Depot struct {
	factories []AdapterFactory
	cache     map[string]TypeAdapter
	inflight  map[string]*deferredAdapter
}

// NewDepot creates a depot. Custom factories are consulted before the
// built-in standard, array, and object-fallback factories.
func NewDepot(custom ...AdapterFactory) *Depot {
	factories := make([]AdapterFactory, 0, len(custom)+3)
	factories = append(factories, custom...)
	factories = append(factories, standardFactory{}, arrayFactory{}, objectFactory{})
	return &Depot{
		factories: factories,
		cache:     make(map[string]TypeAdapter),
		inflight:  make(map[string]*deferredAdapter),
	}
}

// Adapter returns the adapter for the described type, building and
// caching it on first use. Self-referential types resolve through a
// deferred placeholder that binds once construction completes.
func (d *Depot) Adapter(desc types.Descriptor) (TypeAdapter, error) {
	canon, err := types.Canonicalize(desc)
	if err != nil {
		return nil, err
	}
	key := types.Key(canon)

	if a, ok := d.cache[key]; ok {
		return a, nil
	}
	if p, ok := d.inflight[key]; ok {
		return p, nil
	}

	placeholder := &deferredAdapter{key: key}
	d.inflight[key] = placeholder
	defer delete(d.inflight, key)

	for _, f := range d.factories {
		a, err := f.Create(d, canon)
		if err != nil {
			if errors.IsUnresolved(err) {
				continue
			}
			return nil, err
		}
		if a == nil {
			continue
		}
		placeholder.bind(a)
		d.cache[key] = a
		return a, nil
	}
	return nil, errors.NoAdapter(key)
}

// deferredAdapter stands in for an adapter that is still being
// constructed, terminating self-referential lookups.
type deferredAdapter struct {
	key      string
	delegate TypeAdapter
}

func (d *deferredAdapter) bind(a TypeAdapter) { d.delegate = a }

func (d *deferredAdapter) ToEngine(s *Scope, value any) (JSValue, error) {
	if d.delegate == nil {
		return nil, errors.InvalidInput(errors.PhaseAdapt, "adapter for %s used before construction completed", d.key)
	}
	return d.delegate.ToEngine(s, value)
}

func (d *deferredAdapter) FromEngine(s *Scope, value JSValue) (any, error) {
	if d.delegate == nil {
		return nil, errors.InvalidInput(errors.PhaseAdapt, "adapter for %s used before construction completed", d.key)
	}
	return d.delegate.FromEngine(s, value)
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// descriptorFor maps a host type to its descriptor. Pointer types map to
// nullable descriptors, slices to arrays, the empty interface to any.
func descriptorFor(t reflect.Type) (types.Descriptor, error) {
	switch t.Kind() {
	case reflect.Bool:
		return types.BoolType, nil
	case reflect.Int8:
		return types.Int8Type, nil
	case reflect.Int16:
		return types.Int16Type, nil
	case reflect.Int32:
		return types.Int32Type, nil
	case reflect.Int64:
		return types.Int64Type, nil
	case reflect.Float32:
		return types.Float32Type, nil
	case reflect.Float64:
		return types.Float64Type, nil
	case reflect.String:
		return types.StringType, nil
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return types.AnyType, nil
		}
	case reflect.Pointer:
		elem, err := descriptorFor(t.Elem())
		if err != nil {
			return nil, err
		}
		return types.NewNullable(elem), nil
	case reflect.Slice:
		elem, err := descriptorFor(t.Elem())
		if err != nil {
			return nil, err
		}
		return types.NewArray(elem), nil
	case reflect.Map:
		if t.Key().Kind() == reflect.String && t.Elem() == anyType {
			return types.AnyType, nil
		}
	}
	return nil, errors.InvalidInput(errors.PhaseResolve, "no descriptor for host type %s", t.String())
}

// goType maps a descriptor to the host type its adapter produces.
func goType(d types.Descriptor) reflect.Type {
	switch t := d.(type) {
	case types.Primitive:
		switch t.Kind {
		case types.KindBool:
			return reflect.TypeOf(false)
		case types.KindInt8:
			return reflect.TypeOf(int8(0))
		case types.KindInt16:
			return reflect.TypeOf(int16(0))
		case types.KindInt32, types.KindRune:
			return reflect.TypeOf(int32(0))
		case types.KindInt64:
			return reflect.TypeOf(int64(0))
		case types.KindFloat32:
			return reflect.TypeOf(float32(0))
		case types.KindFloat64:
			return reflect.TypeOf(float64(0))
		case types.KindString:
			return reflect.TypeOf("")
		}
		return anyType
	case types.Nullable:
		elem := goType(t.Elem)
		switch elem.Kind() {
		case reflect.Interface, reflect.Slice, reflect.Map, reflect.Pointer:
			return elem
		}
		return reflect.PointerTo(elem)
	case types.Array:
		return reflect.SliceOf(goType(t.Elem))
	default:
		return anyType
	}
}
