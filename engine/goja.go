package engine

import (
	"math"
	"reflect"
	"strconv"

	"github.com/dop251/goja"

	"github.com/wippyai/js-runtime/errors"
)

// Engine owns the shared configuration from which evaluation contexts are
// created. Contexts created from one Engine are independent evaluation
// environments; the caller provides the lock that serializes access.
type Engine struct {
	closed bool
}

// New creates an engine.
func New() *Engine {
	return &Engine{}
}

// NewContext creates a fresh evaluation context with its own global scope.
func (e *Engine) NewContext() (*Context, error) {
	if e.closed {
		return nil, errors.Closed("engine")
	}
	return &Context{
		vm:   goja.New(),
		refs: make(map[Ref]goja.Value),
	}, nil
}

// Close shuts the engine down. Idempotent.
func (e *Engine) Close() error {
	e.closed = true
	return nil
}

// HostFunc is a host callable exposed to the engine as a function value.
// Arguments arrive as live Refs owned by the context; the returned Ref
// (or 0 for undefined) becomes the call result.
type HostFunc func(args []Ref) (Ref, error)

// Program is an opaque precompiled form of a script.
type Program struct {
	prog *goja.Program
}

// Context is one engine evaluation context. None of its methods lock;
// the caller must serialize all access.
type Context struct {
	vm     *goja.Runtime
	refs   map[Ref]goja.Value
	next   Ref
	jobs   []func() error
	closed bool
}

func (c *Context) alloc(v goja.Value) Ref {
	c.next++
	c.refs[c.next] = v
	debugf("alloc ref %d (%s)", c.next, c.classify(v))
	return c.next
}

func (c *Context) lookup(ref Ref) (goja.Value, error) {
	if c.closed {
		return nil, errors.Closed("context")
	}
	v, ok := c.refs[ref]
	if !ok {
		return nil, errors.Leak("ref %d is not live", uint64(ref))
	}
	return v, nil
}

// guard converts engine throws escaping as panics into evaluation errors.
func (c *Context) guard(err *error) {
	if r := recover(); r != nil {
		ex, ok := r.(*goja.Exception)
		if !ok {
			panic(r)
		}
		*err = errors.Evaluation(ex.Error(), ex)
	}
}

// engineErr maps an error returned by the backing engine to the structured
// evaluation error carrying the engine's diagnostic text.
func engineErr(err error) error {
	if err == nil {
		return nil
	}
	if ex, ok := err.(*goja.Exception); ok {
		return errors.Evaluation(ex.Error(), ex)
	}
	return errors.Evaluation(err.Error(), err)
}

// Destroy releases the engine-side value behind ref. It reports false when
// ref is not live, which callers treat as a double-release defect.
func (c *Context) Destroy(ref Ref) bool {
	if _, ok := c.refs[ref]; !ok {
		return false
	}
	delete(c.refs, ref)
	debugf("destroy ref %d", uint64(ref))
	return true
}

// Live returns the number of refs currently held by the context.
func (c *Context) Live() int {
	return len(c.refs)
}

// Close destroys the context. All refs become invalid. Idempotent.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.refs = make(map[Ref]goja.Value)
	c.jobs = nil
	c.vm = nil
	return nil
}

// Value creation

func (c *Context) CreateUndefined() (Ref, error) {
	if c.closed {
		return 0, errors.Closed("context")
	}
	return c.alloc(goja.Undefined()), nil
}

func (c *Context) CreateNull() (Ref, error) {
	if c.closed {
		return 0, errors.Closed("context")
	}
	return c.alloc(goja.Null()), nil
}

func (c *Context) CreateBool(v bool) (Ref, error) {
	if c.closed {
		return 0, errors.Closed("context")
	}
	return c.alloc(c.vm.ToValue(v)), nil
}

func (c *Context) CreateInt(v int32) (Ref, error) {
	if c.closed {
		return 0, errors.Closed("context")
	}
	return c.alloc(c.vm.ToValue(int64(v))), nil
}

func (c *Context) CreateFloat64(v float64) (Ref, error) {
	if c.closed {
		return 0, errors.Closed("context")
	}
	return c.alloc(c.vm.ToValue(v)), nil
}

func (c *Context) CreateString(v string) (Ref, error) {
	if c.closed {
		return 0, errors.Closed("context")
	}
	return c.alloc(c.vm.ToValue(v)), nil
}

func (c *Context) CreateObject() (Ref, error) {
	if c.closed {
		return 0, errors.Closed("context")
	}
	return c.alloc(c.vm.NewObject()), nil
}

func (c *Context) CreateArray() (Ref, error) {
	if c.closed {
		return 0, errors.Closed("context")
	}
	return c.alloc(c.vm.NewArray()), nil
}

// CreateArrayBuffer creates an ArrayBuffer backed by a copy of data.
func (c *Context) CreateArrayBuffer(data []byte) (Ref, error) {
	if c.closed {
		return 0, errors.Closed("context")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return c.alloc(c.vm.ToValue(c.vm.NewArrayBuffer(buf))), nil
}

// CreateFunction exposes fn to the engine as a callable function value.
// A host error surfaces in the engine as a thrown TypeError.
func (c *Context) CreateFunction(name string, fn HostFunc) (Ref, error) {
	if c.closed {
		return 0, errors.Closed("context")
	}
	wrapped := func(call goja.FunctionCall) goja.Value {
		args := make([]Ref, len(call.Arguments))
		for i, a := range call.Arguments {
			args[i] = c.alloc(a)
		}
		ref, err := fn(args)
		if err != nil {
			panic(c.vm.NewTypeError("%s: %s", name, err.Error()))
		}
		if ref == 0 {
			return goja.Undefined()
		}
		v, lerr := c.lookup(ref)
		if lerr != nil {
			panic(c.vm.NewTypeError("%s: %s", name, lerr.Error()))
		}
		return v
	}
	return c.alloc(c.vm.ToValue(wrapped)), nil
}

// CreatePromise creates a promise plus its resolve and reject functions.
// Invoking resolve/reject enqueues the settlement as a pending job; the
// promise settles when RunPendingJob executes it.
func (c *Context) CreatePromise() (promise, resolve, reject Ref, err error) {
	if c.closed {
		return 0, 0, 0, errors.Closed("context")
	}
	defer c.guard(&err)

	p, res, rej := c.vm.NewPromise()
	promise = c.alloc(c.vm.ToValue(p))
	resolve = c.alloc(c.vm.ToValue(c.settler(res)))
	reject = c.alloc(c.vm.ToValue(c.settler(rej)))
	return promise, resolve, reject, nil
}

func (c *Context) settler(settle func(any)) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var arg goja.Value = goja.Undefined()
		if len(call.Arguments) > 0 {
			arg = call.Arguments[0]
		}
		c.jobs = append(c.jobs, func() error {
			settle(arg)
			return nil
		})
		return goja.Undefined()
	}
}

// Classification and readout

// TagOf returns the runtime category of the value behind ref.
func (c *Context) TagOf(ref Ref) (Tag, error) {
	v, err := c.lookup(ref)
	if err != nil {
		return TagInvalid, err
	}
	return c.classify(v), nil
}

func (c *Context) classify(v goja.Value) Tag {
	if v == nil || goja.IsUndefined(v) {
		return TagUndefined
	}
	if goja.IsNull(v) {
		return TagNull
	}
	switch o := v.(type) {
	case *goja.Symbol:
		return TagSymbol
	case *goja.Object:
		if _, ok := goja.AssertFunction(o); ok {
			return TagFunction
		}
		switch o.ClassName() {
		case "Array":
			return TagArray
		case "ArrayBuffer":
			return TagArrayBuffer
		}
		return TagObject
	}
	et := v.ExportType()
	if et == nil {
		return TagInternal
	}
	switch et.Kind() {
	case reflect.Bool:
		return TagBool
	case reflect.String:
		return TagString
	case reflect.Int64:
		n := v.ToInteger()
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			return TagInt
		}
		return TagFloat64
	case reflect.Float64:
		return TagFloat64
	}
	return TagInternal
}

// IntValue reads the payload of an int-tagged value.
func (c *Context) IntValue(ref Ref) (int32, error) {
	v, err := c.lookup(ref)
	if err != nil {
		return 0, err
	}
	return int32(v.ToInteger()), nil
}

// Float64Value reads the numeric payload of a value.
func (c *Context) Float64Value(ref Ref) (float64, error) {
	v, err := c.lookup(ref)
	if err != nil {
		return 0, err
	}
	return v.ToFloat(), nil
}

// StringValue reads the payload of a string-tagged value.
func (c *Context) StringValue(ref Ref) (string, error) {
	v, err := c.lookup(ref)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// BoolValue reads the payload of a boolean-tagged value.
func (c *Context) BoolValue(ref Ref) (bool, error) {
	v, err := c.lookup(ref)
	if err != nil {
		return false, err
	}
	return v.ToBoolean(), nil
}

// ArrayBufferBytes returns a copy of an ArrayBuffer's contents.
func (c *Context) ArrayBufferBytes(ref Ref) ([]byte, error) {
	v, err := c.lookup(ref)
	if err != nil {
		return nil, err
	}
	ab, ok := v.Export().(goja.ArrayBuffer)
	if !ok {
		return nil, errors.TypeMismatch("arraybuffer", c.classify(v).String())
	}
	src := ab.Bytes()
	out := make([]byte, len(src))
	copy(out, src)
	return out, nil
}

// Object and array access

func (c *Context) object(ref Ref) (*goja.Object, error) {
	v, err := c.lookup(ref)
	if err != nil {
		return nil, err
	}
	o, ok := v.(*goja.Object)
	if !ok {
		return nil, errors.TypeMismatch("object", c.classify(v).String())
	}
	return o, nil
}

// ArrayLength reads an array's length once. Callers snapshot it; a length
// changing mid-conversion is not re-checked.
func (c *Context) ArrayLength(ref Ref) (n int, err error) {
	defer c.guard(&err)
	o, err := c.object(ref)
	if err != nil {
		return 0, err
	}
	return int(o.Get("length").ToInteger()), nil
}

// GetIndex reads element i of an array value into a new ref.
func (c *Context) GetIndex(ref Ref, i int) (out Ref, err error) {
	defer c.guard(&err)
	o, err := c.object(ref)
	if err != nil {
		return 0, err
	}
	v := o.Get(strconv.Itoa(i))
	if v == nil {
		v = goja.Undefined()
	}
	return c.alloc(v), nil
}

// SetIndex writes the value behind val to element i of an array value.
func (c *Context) SetIndex(ref Ref, i int, val Ref) (err error) {
	defer c.guard(&err)
	o, err := c.object(ref)
	if err != nil {
		return err
	}
	v, err := c.lookup(val)
	if err != nil {
		return err
	}
	return o.Set(strconv.Itoa(i), v)
}

// GetProperty reads a named property into a new ref.
func (c *Context) GetProperty(ref Ref, name string) (out Ref, err error) {
	defer c.guard(&err)
	o, err := c.object(ref)
	if err != nil {
		return 0, err
	}
	v := o.Get(name)
	if v == nil {
		v = goja.Undefined()
	}
	return c.alloc(v), nil
}

// Keys returns the enumerable own property names of an object value.
func (c *Context) Keys(ref Ref) (keys []string, err error) {
	defer c.guard(&err)
	o, err := c.object(ref)
	if err != nil {
		return nil, err
	}
	return o.Keys(), nil
}

// SetProperty writes the value behind val to a named property.
func (c *Context) SetProperty(ref Ref, name string, val Ref) (err error) {
	defer c.guard(&err)
	o, err := c.object(ref)
	if err != nil {
		return err
	}
	v, err := c.lookup(val)
	if err != nil {
		return err
	}
	return o.Set(name, v)
}

// Invoke calls the function behind fn with the given this and arguments.
func (c *Context) Invoke(fn Ref, this Ref, args ...Ref) (out Ref, err error) {
	v, err := c.lookup(fn)
	if err != nil {
		return 0, err
	}
	callable, ok := goja.AssertFunction(v)
	if !ok {
		return 0, errors.TypeMismatch("function", c.classify(v).String())
	}

	var thisVal goja.Value = goja.Undefined()
	if this != 0 {
		if thisVal, err = c.lookup(this); err != nil {
			return 0, err
		}
	}
	callArgs := make([]goja.Value, len(args))
	for i, a := range args {
		if callArgs[i], err = c.lookup(a); err != nil {
			return 0, err
		}
	}

	res, err := callable(thisVal, callArgs...)
	if err != nil {
		return 0, engineErr(err)
	}
	if res == nil {
		res = goja.Undefined()
	}
	return c.alloc(res), nil
}

// Evaluation

// Evaluate runs source text and returns the completion value. An engine
// throw surfaces as an evaluation error; no ref is allocated for it.
func (c *Context) Evaluate(src, name string, kind EvalKind, flags EvalFlags) (Ref, error) {
	if c.closed {
		return 0, errors.Closed("context")
	}
	if kind != EvalGlobal && kind != EvalModule {
		return 0, errors.InvalidInput(errors.PhaseEval, "invalid eval kind: %d", int(kind))
	}
	if !flags.Valid() {
		return 0, errors.InvalidInput(errors.PhaseEval, "invalid eval flags: %b", int(flags))
	}
	if kind == EvalModule {
		return 0, errors.Unsupported(errors.PhaseEval, "module evaluation is not supported by the backing engine")
	}

	prog, err := goja.Compile(name, src, flags&FlagStrict != 0)
	if err != nil {
		return 0, engineErr(err)
	}
	res, err := c.vm.RunProgram(prog)
	if err != nil {
		return 0, engineErr(err)
	}
	if res == nil {
		res = goja.Undefined()
	}
	return c.alloc(res), nil
}

// Compile produces the opaque precompiled form of a script.
func (c *Context) Compile(src, name string, flags EvalFlags) (*Program, error) {
	if c.closed {
		return nil, errors.Closed("context")
	}
	if !flags.Valid() {
		return nil, errors.InvalidInput(errors.PhaseEval, "invalid eval flags: %b", int(flags))
	}
	prog, err := goja.Compile(name, src, flags&FlagStrict != 0)
	if err != nil {
		return nil, engineErr(err)
	}
	return &Program{prog: prog}, nil
}

// EvaluateProgram runs a precompiled script for its side effects and
// returns the global object. Evaluation errors always propagate.
func (c *Context) EvaluateProgram(p *Program) (Ref, error) {
	if c.closed {
		return 0, errors.Closed("context")
	}
	if p == nil || p.prog == nil {
		return 0, errors.InvalidInput(errors.PhaseEval, "nil program")
	}
	if _, err := c.vm.RunProgram(p.prog); err != nil {
		return 0, engineErr(err)
	}
	return c.alloc(c.vm.GlobalObject()), nil
}

// GlobalObject returns a ref to the context's global object.
func (c *Context) GlobalObject() (Ref, error) {
	if c.closed {
		return 0, errors.Closed("context")
	}
	return c.alloc(c.vm.GlobalObject()), nil
}

// RunPendingJob executes at most one pending job. It reports whether a job
// ran; a job failure surfaces as an evaluation error.
func (c *Context) RunPendingJob() (ran bool, err error) {
	if c.closed {
		return false, errors.Closed("context")
	}
	if len(c.jobs) == 0 {
		return false, nil
	}
	job := c.jobs[0]
	c.jobs = c.jobs[1:]

	defer c.guard(&err)
	if err := job(); err != nil {
		return true, engineErr(err)
	}
	return true, nil
}
