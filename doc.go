// Package jsruntime embeds a JavaScript engine behind a typed
// marshalling layer: scripts run in isolated contexts, results convert
// to host types through pluggable adapters, and every engine-side value
// handle is tracked and released exactly once.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	js-runtime/
//	├── runtime/         High-level API: Runtime, Context, value handles, adapters
//	├── engine/          Low-level goja integration behind an opaque ref table
//	├── types/           Type-descriptor algebra, resolution, method signatures
//	├── cleaner/         Exactly-once release of collected value handles
//	└── errors/          Structured error types for debugging
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
//	n, err := runtime.Evaluate[int32](ctx, "6 * 7", "calc.js")
//	fmt.Println(n) // 42
//
// # Type Mapping
//
// Host types convert through adapters resolved by type shape:
//
//	Go Type          Engine Value
//	────────────────────────────────
//	bool             boolean
//	int8..int64      number (exact narrowing)
//	float32/float64  number
//	string           string
//	[]T              array of T
//	*T               T or null
//	map[string]any   object
//	any              dynamic by runtime shape
//
// Conversions never lose information silently: narrowing a number that
// does not fit the target type is an error naming both.
//
// # Handle Lifecycle
//
// Every value obtained from a context holds one engine reference. The
// reference is released exactly once: a garbage-collection cleanup
// queues it when the wrapper becomes unreachable and the next context
// operation releases it, or the context's Close releases everything
// still live. Wrappers cache primitive payloads at creation, so reading
// a payload never races the release path.
//
// # Thread Safety
//
// A Runtime serializes all operations on itself, its contexts, and
// their values behind one lock; everything may be called from any
// goroutine. Type adapters run with that lock held and use the Scope
// they are passed instead of the public API.
package jsruntime
