package runtime

import (
	"math"

	"github.com/wippyai/js-runtime/cleaner"
	"github.com/wippyai/js-runtime/engine"
	"github.com/wippyai/js-runtime/errors"
)

// JSValue is a host-side handle to one engine value. Every JSValue is
// registered with its context's tracker at wrap time; the underlying
// engine ref is released exactly once, either when the wrapper is
// collected or when the context closes, whichever comes first.
type JSValue interface {
	// Ref is the engine reference behind this handle.
	Ref() engine.Ref
	// Tag is the value's runtime category, fixed at wrap time.
	Tag() engine.Tag
	// Context returns the owning context.
	Context() *Context
}

type base struct {
	ctx *Context
	ref engine.Ref
	tag engine.Tag
}

func (b *base) Ref() engine.Ref { return b.ref }
func (b *base) Tag() engine.Tag { return b.tag }
func (b *base) Context() *Context {
	return b.ctx
}

// locked runs op under the runtime lock with the standard prologue.
func (b *base) locked(op func() error) error {
	b.ctx.rt.mu.Lock()
	defer b.ctx.rt.mu.Unlock()

	if err := b.ctx.begin(); err != nil {
		return err
	}
	return op()
}

// JSSymbol is a symbol value.
type JSSymbol struct{ base }

// JSString is a string value. The payload is read once at wrap time.
type JSString struct {
	base
	value string
}

// Value returns the string payload.
func (v *JSString) Value() string { return v.value }

// JSBoolean is a boolean value.
type JSBoolean struct {
	base
	value bool
}

// Value returns the boolean payload.
func (v *JSBoolean) Value() bool { return v.value }

// JSNull is the null value.
type JSNull struct{ base }

// JSUndefined is the undefined value.
type JSUndefined struct{ base }

// JSInternal is a value with no host-side mapping (engine-internal
// representations). It can be passed back to the engine but carries no
// readable payload.
type JSInternal struct{ base }

// JSInt is a number that fits int32 exactly.
type JSInt struct {
	base
	value int32
}

// Int32 returns the payload.
func (v *JSInt) Int32() int32 { return v.value }

// Int64 returns the payload widened to int64.
func (v *JSInt) Int64() int64 { return int64(v.value) }

// Byte narrows the payload to int8, rejecting out-of-range values.
func (v *JSInt) Byte() (int8, error) {
	if v.value < math.MinInt8 || v.value > math.MaxInt8 {
		return 0, errors.Range(v.value, "int8")
	}
	return int8(v.value), nil
}

// Int16 narrows the payload to int16, rejecting out-of-range values.
func (v *JSInt) Int16() (int16, error) {
	if v.value < math.MinInt16 || v.value > math.MaxInt16 {
		return 0, errors.Range(v.value, "int16")
	}
	return int16(v.value), nil
}

// Float32 converts the payload, rejecting values float32 cannot hold
// exactly.
func (v *JSInt) Float32() (float32, error) {
	f := float32(v.value)
	if int32(f) != v.value {
		return 0, errors.Range(v.value, "float32")
	}
	return f, nil
}

// Float64 returns the payload widened to float64.
func (v *JSInt) Float64() float64 { return float64(v.value) }

// JSFloat64 is a number carried as float64. All narrowing getters are
// exact: a conversion that would lose information is an error naming
// the value and the target type.
type JSFloat64 struct {
	base
	value float64
}

// Value returns the float64 payload.
func (v *JSFloat64) Value() float64 { return v.value }

func (v *JSFloat64) integral(target string, min, max int64) (int64, error) {
	n := int64(v.value)
	if float64(n) != v.value || n < min || n > max {
		return 0, errors.Range(v.value, target)
	}
	return n, nil
}

// Byte narrows to int8 exactly.
func (v *JSFloat64) Byte() (int8, error) {
	n, err := v.integral("int8", math.MinInt8, math.MaxInt8)
	return int8(n), err
}

// Int16 narrows to int16 exactly.
func (v *JSFloat64) Int16() (int16, error) {
	n, err := v.integral("int16", math.MinInt16, math.MaxInt16)
	return int16(n), err
}

// Int32 narrows to int32 exactly.
func (v *JSFloat64) Int32() (int32, error) {
	n, err := v.integral("int32", math.MinInt32, math.MaxInt32)
	return int32(n), err
}

// Int64 narrows to int64 exactly.
func (v *JSFloat64) Int64() (int64, error) {
	return v.integral("int64", math.MinInt64, math.MaxInt64)
}

// Float32 narrows to float32 exactly.
func (v *JSFloat64) Float32() (float32, error) {
	f := float32(v.value)
	if float64(f) != v.value {
		return 0, errors.Range(v.value, "float32")
	}
	return f, nil
}

// JSObject is an object value.
type JSObject struct{ base }

// GetProperty reads a named property.
func (o *JSObject) GetProperty(name string) (out JSValue, err error) {
	err = o.locked(func() error {
		out, err = o.ctx.getProperty(o, name)
		return err
	})
	return out, err
}

// SetProperty writes a named property.
func (o *JSObject) SetProperty(name string, value JSValue) error {
	return o.locked(func() error {
		return o.ctx.setProperty(o, name, value)
	})
}

// Keys returns the object's enumerable own property names.
func (o *JSObject) Keys() (keys []string, err error) {
	err = o.locked(func() error {
		keys, err = o.ctx.keys(o)
		return err
	})
	return keys, err
}

// JSFunction is a callable value.
type JSFunction struct{ base }

// Call invokes the function. A nil this calls with undefined.
func (f *JSFunction) Call(this JSValue, args ...JSValue) (out JSValue, err error) {
	err = f.locked(func() error {
		out, err = f.ctx.invoke(f, this, args...)
		return err
	})
	return out, err
}

// JSArray is an array value.
type JSArray struct{ base }

// Length reads the array's current length.
func (a *JSArray) Length() (n int, err error) {
	err = a.locked(func() error {
		n, err = a.ctx.arrayLength(a)
		return err
	})
	return n, err
}

// GetIndex reads element i.
func (a *JSArray) GetIndex(i int) (out JSValue, err error) {
	err = a.locked(func() error {
		out, err = a.ctx.getIndex(a, i)
		return err
	})
	return out, err
}

// SetIndex writes element i.
func (a *JSArray) SetIndex(i int, value JSValue) error {
	return a.locked(func() error {
		return a.ctx.setIndex(a, i, value)
	})
}

// JSArrayBuffer is a binary buffer value.
type JSArrayBuffer struct{ base }

// Bytes returns a copy of the buffer's contents.
func (b *JSArrayBuffer) Bytes() (out []byte, err error) {
	err = b.locked(func() error {
		out, err = b.ctx.arrayBufferBytes(b)
		return err
	})
	return out, err
}

// wrap builds the host wrapper for ref in a single classification step
// and registers it for release. Caller must hold the runtime lock. On
// readout failure the ref is destroyed; wrap never leaks.
func (c *Context) wrap(ref engine.Ref) (JSValue, error) {
	tag, err := c.ec.TagOf(ref)
	if err != nil {
		c.ec.Destroy(ref)
		return nil, err
	}
	b := base{ctx: c, ref: ref, tag: tag}

	switch tag {
	case engine.TagSymbol:
		return register(c, &JSSymbol{base: b}, ref), nil
	case engine.TagString:
		s, err := c.ec.StringValue(ref)
		if err != nil {
			c.ec.Destroy(ref)
			return nil, err
		}
		return register(c, &JSString{base: b, value: s}, ref), nil
	case engine.TagFunction:
		return register(c, &JSFunction{base: b}, ref), nil
	case engine.TagArray:
		return register(c, &JSArray{base: b}, ref), nil
	case engine.TagArrayBuffer:
		return register(c, &JSArrayBuffer{base: b}, ref), nil
	case engine.TagObject:
		return register(c, &JSObject{base: b}, ref), nil
	case engine.TagInt:
		n, err := c.ec.IntValue(ref)
		if err != nil {
			c.ec.Destroy(ref)
			return nil, err
		}
		return register(c, &JSInt{base: b, value: n}, ref), nil
	case engine.TagBool:
		v, err := c.ec.BoolValue(ref)
		if err != nil {
			c.ec.Destroy(ref)
			return nil, err
		}
		return register(c, &JSBoolean{base: b, value: v}, ref), nil
	case engine.TagNull:
		return register(c, &JSNull{base: b}, ref), nil
	case engine.TagUndefined:
		return register(c, &JSUndefined{base: b}, ref), nil
	case engine.TagFloat64:
		f, err := c.ec.Float64Value(ref)
		if err != nil {
			c.ec.Destroy(ref)
			return nil, err
		}
		return register(c, &JSFloat64{base: b, value: f}, ref), nil
	default:
		return register(c, &JSInternal{base: b}, ref), nil
	}
}

func register[T any](c *Context, v *T, ref engine.Ref) *T {
	cleaner.Register(c.tracker, v, uint64(ref))
	return v
}

// Unlocked cores shared by wrapper methods and Scope. Caller must hold
// the runtime lock.

// own rejects handles that belong to a different context. Refs are
// per-context; a foreign ref would silently address the wrong value.
func (c *Context) own(v JSValue) error {
	if v.Context() != c {
		return errors.InvalidInput(errors.PhaseConvert, "value belongs to a different context")
	}
	return nil
}

func (c *Context) getProperty(o *JSObject, name string) (JSValue, error) {
	ref, err := c.ec.GetProperty(o.ref, name)
	if err != nil {
		return nil, err
	}
	return c.wrap(ref)
}

func (c *Context) setProperty(o *JSObject, name string, value JSValue) error {
	if value == nil {
		return errors.InvalidInput(errors.PhaseConvert, "nil value for property %q", name)
	}
	if err := c.own(value); err != nil {
		return err
	}
	return c.ec.SetProperty(o.ref, name, value.Ref())
}

func (c *Context) keys(o *JSObject) ([]string, error) {
	return c.ec.Keys(o.ref)
}

func (c *Context) invoke(f *JSFunction, this JSValue, args ...JSValue) (JSValue, error) {
	var thisRef engine.Ref
	if this != nil {
		if err := c.own(this); err != nil {
			return nil, err
		}
		thisRef = this.Ref()
	}
	argRefs := make([]engine.Ref, len(args))
	for i, a := range args {
		if a == nil {
			return nil, errors.InvalidInput(errors.PhaseConvert, "nil argument at index %d", i)
		}
		if err := c.own(a); err != nil {
			return nil, err
		}
		argRefs[i] = a.Ref()
	}
	ref, err := c.ec.Invoke(f.ref, thisRef, argRefs...)
	if err != nil {
		return nil, err
	}
	return c.wrap(ref)
}

func (c *Context) arrayLength(a *JSArray) (int, error) {
	return c.ec.ArrayLength(a.ref)
}

func (c *Context) getIndex(a *JSArray, i int) (JSValue, error) {
	ref, err := c.ec.GetIndex(a.ref, i)
	if err != nil {
		return nil, err
	}
	return c.wrap(ref)
}

func (c *Context) setIndex(a *JSArray, i int, value JSValue) error {
	if value == nil {
		return errors.InvalidInput(errors.PhaseConvert, "nil value for index %d", i)
	}
	if err := c.own(value); err != nil {
		return err
	}
	return c.ec.SetIndex(a.ref, i, value.Ref())
}

func (c *Context) arrayBufferBytes(b *JSArrayBuffer) ([]byte, error) {
	return c.ec.ArrayBufferBytes(b.ref)
}
