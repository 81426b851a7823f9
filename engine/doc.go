// Package engine is the boundary to the embedded scripting engine.
//
// The engine is backed by goja, a pure-Go ECMAScript implementation. Every
// engine-side value obtained through this package is identified by an
// opaque Ref registered in a per-context table; a Ref stays valid until
// Destroy releases it. Exactly one Destroy per live Ref is the caller's
// contract, enforced one layer up by the handle tracker.
//
// Engine exceptions never materialize as values here: any operation that
// makes the engine throw returns a structured evaluation error carrying
// the engine's diagnostic text, and no Ref is allocated for the failed
// operation.
//
// # Thread Safety
//
// Nothing in this package locks. The backing engine is not safe for
// concurrent use; callers must serialize all operations on a Context,
// which the runtime package does behind its runtime-wide mutex.
package engine
