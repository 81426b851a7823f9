package runtime

import (
	"reflect"

	"github.com/wippyai/js-runtime/cleaner"
	"github.com/wippyai/js-runtime/engine"
	"github.com/wippyai/js-runtime/errors"
)

// Context is one evaluation context: an isolated global scope plus the
// liveness bookkeeping for every value wrapper handed out from it.
//
// All methods serialize on the owning runtime's lock. Before each
// operation the context drains the tracker's pending queue, so handles
// whose wrappers were collected are released while the engine is
// quiescent (and on the calling goroutine, never the collector's).
type Context struct {
	rt      *Runtime
	ec      *engine.Context
	tracker *cleaner.Tracker
	closed  bool
}

func newTracker(c *Context) *cleaner.Tracker {
	return cleaner.New(func(id uint64) {
		if !c.ec.Destroy(engine.Ref(id)) {
			engine.Logger().Sugar().Warnf("release of unknown ref %d", id)
		}
	})
}

// begin is the per-operation prologue. Caller must hold the runtime lock.
func (c *Context) begin() error {
	if c.rt.closed {
		return errors.Closed("runtime")
	}
	if c.closed {
		return errors.Closed("context")
	}
	c.tracker.Poll()
	return nil
}

// Callback is a host function exposed to scripts. It runs while the
// runtime lock is held; use the scope, not public Context methods.
type Callback func(s *Scope, args []JSValue) (JSValue, error)

// Evaluate runs global code and converts the completion value with the
// dynamic adapter: primitives map to their host kinds, arrays to []any,
// objects to map[string]any.
func (c *Context) Evaluate(src, name string) (any, error) {
	return c.EvaluateWith(anyAdapter{}, src, name, engine.EvalGlobal, 0)
}

// EvaluateWith runs code and converts the completion value with adapter.
// An engine throw surfaces as an evaluation error and no handle is
// registered for the failed evaluation.
func (c *Context) EvaluateWith(adapter TypeAdapter, src, name string, kind engine.EvalKind, flags engine.EvalFlags) (any, error) {
	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()

	if err := c.begin(); err != nil {
		return nil, err
	}
	ref, err := c.ec.Evaluate(src, name, kind, flags)
	if err != nil {
		return nil, err
	}
	val, err := c.wrap(ref)
	if err != nil {
		return nil, err
	}
	return adapter.FromEngine(c.scope(), val)
}

// Evaluate runs global code in ctx and converts the completion value to
// T. Pointer types are nullable: engine null and undefined convert to a
// nil pointer.
func Evaluate[T any](ctx *Context, src, name string) (T, error) {
	var zero T

	desc, err := descriptorFor(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	adapter, err := ctx.rt.Adapter(desc)
	if err != nil {
		return zero, err
	}
	out, err := ctx.EvaluateWith(adapter, src, name, engine.EvalGlobal, 0)
	if err != nil {
		return zero, err
	}
	if out == nil {
		return zero, nil
	}
	if v, ok := out.(T); ok {
		return v, nil
	}

	// A nullable adapter unboxes to the element type; re-box it.
	tt := reflect.TypeFor[T]()
	rv := reflect.ValueOf(out)
	if tt.Kind() == reflect.Pointer && rv.Type() == tt.Elem() {
		p := reflect.New(tt.Elem())
		p.Elem().Set(rv)
		return p.Interface().(T), nil
	}
	return zero, errors.TypeMismatch(tt.String(), rv.Type().String())
}

// Compile produces the opaque precompiled form of a script. The program
// is bound to no context and may be evaluated in any context of the
// runtime.
func (c *Context) Compile(src, name string, flags engine.EvalFlags) (*engine.Program, error) {
	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()

	if err := c.begin(); err != nil {
		return nil, err
	}
	return c.ec.Compile(src, name, flags)
}

// EvaluateProgram runs a precompiled script for its side effects and
// returns the global object. Evaluation errors propagate to the caller.
func (c *Context) EvaluateProgram(p *engine.Program) (*JSObject, error) {
	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()

	if err := c.begin(); err != nil {
		return nil, err
	}
	ref, err := c.ec.EvaluateProgram(p)
	if err != nil {
		return nil, err
	}
	return c.wrapObject(ref)
}

// ExecutePendingJob runs at most one pending engine job (such as a
// promise settlement). It reports whether a job ran.
func (c *Context) ExecutePendingJob() (bool, error) {
	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()

	if err := c.begin(); err != nil {
		return false, err
	}
	return c.ec.RunPendingJob()
}

// Global returns the context's global object.
func (c *Context) Global() (*JSObject, error) {
	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()

	if err := c.begin(); err != nil {
		return nil, err
	}
	ref, err := c.ec.GlobalObject()
	if err != nil {
		return nil, err
	}
	return c.wrapObject(ref)
}

// Value constructors

func (c *Context) CreateNull() (*JSNull, error) {
	v, err := c.create(func() (engine.Ref, error) { return c.ec.CreateNull() })
	if err != nil {
		return nil, err
	}
	return v.(*JSNull), nil
}

func (c *Context) CreateUndefined() (*JSUndefined, error) {
	v, err := c.create(func() (engine.Ref, error) { return c.ec.CreateUndefined() })
	if err != nil {
		return nil, err
	}
	return v.(*JSUndefined), nil
}

func (c *Context) CreateBoolean(b bool) (*JSBoolean, error) {
	v, err := c.create(func() (engine.Ref, error) { return c.ec.CreateBool(b) })
	if err != nil {
		return nil, err
	}
	return v.(*JSBoolean), nil
}

func (c *Context) CreateInt(n int32) (*JSInt, error) {
	v, err := c.create(func() (engine.Ref, error) { return c.ec.CreateInt(n) })
	if err != nil {
		return nil, err
	}
	return v.(*JSInt), nil
}

func (c *Context) CreateFloat64(f float64) (JSValue, error) {
	// Integral floats classify as ints, mirroring the engine's own
	// number representation.
	return c.create(func() (engine.Ref, error) { return c.ec.CreateFloat64(f) })
}

func (c *Context) CreateString(s string) (*JSString, error) {
	v, err := c.create(func() (engine.Ref, error) { return c.ec.CreateString(s) })
	if err != nil {
		return nil, err
	}
	return v.(*JSString), nil
}

func (c *Context) CreateObject() (*JSObject, error) {
	v, err := c.create(func() (engine.Ref, error) { return c.ec.CreateObject() })
	if err != nil {
		return nil, err
	}
	return v.(*JSObject), nil
}

func (c *Context) CreateArray() (*JSArray, error) {
	v, err := c.create(func() (engine.Ref, error) { return c.ec.CreateArray() })
	if err != nil {
		return nil, err
	}
	return v.(*JSArray), nil
}

func (c *Context) create(op func() (engine.Ref, error)) (JSValue, error) {
	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()

	if err := c.begin(); err != nil {
		return nil, err
	}
	ref, err := op()
	if err != nil {
		return nil, err
	}
	return c.wrap(ref)
}

// CreateFunction exposes fn to scripts under the given diagnostic name.
func (c *Context) CreateFunction(name string, fn Callback) (*JSFunction, error) {
	v, err := c.create(func() (engine.Ref, error) {
		return c.ec.CreateFunction(name, func(args []engine.Ref) (engine.Ref, error) {
			wrapped := make([]JSValue, len(args))
			for i, a := range args {
				w, err := c.wrap(a)
				if err != nil {
					return 0, err
				}
				wrapped[i] = w
			}
			out, err := fn(c.scope(), wrapped)
			if err != nil {
				return 0, err
			}
			if out == nil {
				return 0, nil
			}
			return out.Ref(), nil
		})
	})
	if err != nil {
		return nil, err
	}
	return v.(*JSFunction), nil
}

// CreatePromise creates a promise and hands its resolve and reject
// functions to executor. The executor runs after the runtime lock is
// released, so it may call public methods freely; settlement takes
// effect when ExecutePendingJob runs the queued job.
func (c *Context) CreatePromise(executor func(resolve, reject *JSFunction)) (*JSObject, error) {
	promise, resolve, reject, err := c.createPromise()
	if err != nil {
		return nil, err
	}
	if executor != nil {
		executor(resolve, reject)
	}
	return promise, nil
}

func (c *Context) createPromise() (*JSObject, *JSFunction, *JSFunction, error) {
	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()

	if err := c.begin(); err != nil {
		return nil, nil, nil, err
	}
	pRef, resRef, rejRef, err := c.ec.CreatePromise()
	if err != nil {
		return nil, nil, nil, err
	}
	promise, err := c.wrapObject(pRef)
	if err != nil {
		return nil, nil, nil, err
	}
	res, err := c.wrap(resRef)
	if err != nil {
		return nil, nil, nil, err
	}
	rej, err := c.wrap(rejRef)
	if err != nil {
		return nil, nil, nil, err
	}
	resFn, ok := res.(*JSFunction)
	if !ok {
		return nil, nil, nil, errors.TypeMismatch("function", res.Tag().String())
	}
	rejFn, ok := rej.(*JSFunction)
	if !ok {
		return nil, nil, nil, errors.TypeMismatch("function", rej.Tag().String())
	}
	return promise, resFn, rejFn, nil
}

// ToEngine converts a host value with adapter.
func (c *Context) ToEngine(adapter TypeAdapter, value any) (JSValue, error) {
	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()

	if err := c.begin(); err != nil {
		return nil, err
	}
	return adapter.ToEngine(c.scope(), value)
}

// FromEngine converts an engine value with adapter.
func (c *Context) FromEngine(adapter TypeAdapter, value JSValue) (any, error) {
	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()

	if err := c.begin(); err != nil {
		return nil, err
	}
	return adapter.FromEngine(c.scope(), value)
}

// TrackedValues returns the number of live value handles held by this
// context's wrappers. Diagnostic; useful for leak tests.
func (c *Context) TrackedValues() int {
	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()
	return c.tracker.Size()
}

// Close releases every live handle and destroys the context. Wrappers
// created from it become invalid. Idempotent.
func (c *Context) Close() error {
	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()

	err := c.closeLocked()
	if c.rt.contexts != nil {
		delete(c.rt.contexts, c)
	}
	return err
}

func (c *Context) closeLocked() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.tracker.Poll()
	if n := c.tracker.ForceReleaseAll(); n > 0 {
		engine.Logger().Sugar().Debugf("released %d live handles on close", n)
	}
	return c.ec.Close()
}

func (c *Context) wrapObject(ref engine.Ref) (*JSObject, error) {
	v, err := c.wrap(ref)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*JSObject)
	if !ok {
		return nil, errors.TypeMismatch("object", v.Tag().String())
	}
	return obj, nil
}
