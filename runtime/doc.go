// Package runtime provides the high-level API for embedding the
// scripting engine: evaluation contexts, typed value handles, and the
// adapter machinery that marshals values across the host/engine
// boundary.
//
// # Quick Start
//
//	rt, err := runtime.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	ctx, err := rt.NewContext()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	// Dynamic result: numbers as float64, objects as map[string]any
//	out, err := ctx.Evaluate("1 + 1", "calc.js")
//	fmt.Println(out) // 2
//
//	// Typed result
//	n, err := runtime.Evaluate[int32](ctx, "6 * 7", "calc.js")
//	fmt.Println(n) // 42
//
// # Typed Conversion
//
// Host types map to engine values through type adapters, resolved from
// a per-runtime depot and cached by canonical type key:
//
//	Go Type          Engine Value
//	────────────────────────────────
//	bool             boolean
//	int8..int64      number (exact)
//	float32/float64  number
//	string           string
//	[]T              array of T
//	*T               T or null
//	[]byte           ArrayBuffer (explicit constructors)
//	any              dynamic by runtime shape
//
// Narrowing conversions are exact: evaluating "3.5" as int32 is an
// error naming the value and the target type, while "4" converts
// cleanly. Engine null and undefined convert to host nil only through
// pointer (nullable) types.
//
// # Value Handles
//
// Evaluation results and explicitly created values are handed out as
// JSValue wrappers (JSString, JSObject, JSFunction, ...). Each wrapper
// owns one engine reference, released exactly once: when the wrapper is
// garbage collected, a cleanup queues the handle and the next operation
// on the context releases it; closing the context releases everything
// still live. TrackedValues reports the live count.
//
// # Thread Safety
//
// A Runtime and all contexts and values created from it share one lock;
// methods may be called from any goroutine and are serialized. Type
// adapters run with that lock held and therefore use the Scope passed
// to them instead of public methods.
//
// # Promises
//
// CreatePromise hands the resolve/reject functions to an executor that
// runs outside the runtime lock. Settlements queue as pending jobs;
// ExecutePendingJob runs one at a time.
package runtime
