// Package cleaner tracks native handles held by host-side wrapper objects
// and releases them exactly once.
//
// Each wrapper registered with a Tracker carries a garbage-collection
// cleanup: when the wrapper becomes unreachable, its handle id is pushed
// onto a pending queue. The queue is drained by Poll, which the owning
// runtime calls under its own lock before every operation, so the actual
// release always happens on the caller's goroutine while the engine is
// quiescent. ForceReleaseAll releases everything still live when the
// owning context closes; ids queued by cleanups that fire afterwards are
// recognized as stale and skipped.
//
// The pending queue has its own mutex because cleanups run on the garbage
// collector's schedule. Everything else is touched only under the owning
// runtime's lock.
package cleaner
