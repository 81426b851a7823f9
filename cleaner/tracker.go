package cleaner

import (
	"runtime"
	"sync"
)

// ReleaseFunc releases one native handle. It runs on the goroutine that
// calls Poll or ForceReleaseAll, never on the collector's.
type ReleaseFunc func(id uint64)

// Tracker owns the liveness bookkeeping for a set of native handles.
// Except for the pending queue, a Tracker must only be used under the
// owning runtime's lock.
type Tracker struct {
	release ReleaseFunc
	entries map[uint64]struct{}

	mu      sync.Mutex
	pending []uint64
	closed  bool
}

// New creates a tracker that releases handles through release.
func New(release ReleaseFunc) *Tracker {
	return &Tracker{
		release: release,
		entries: make(map[uint64]struct{}),
	}
}

// Register associates wrapper with the native handle id. When wrapper
// becomes unreachable the id is queued for release by a later Poll.
func Register[T any](t *Tracker, wrapper *T, id uint64) {
	t.entries[id] = struct{}{}
	runtime.AddCleanup(wrapper, t.enqueue, id)
}

func (t *Tracker) enqueue(id uint64) {
	t.mu.Lock()
	if !t.closed {
		t.pending = append(t.pending, id)
	}
	t.mu.Unlock()
}

// Poll drains the pending queue, releasing each handle that is still
// live. Ids already released by ForceReleaseAll are skipped. It returns
// the number of handles released.
func (t *Tracker) Poll() int {
	t.mu.Lock()
	batch := t.pending
	t.pending = nil
	t.mu.Unlock()

	released := 0
	for _, id := range batch {
		if _, ok := t.entries[id]; !ok {
			continue // stale: force-released before the cleanup fired
		}
		delete(t.entries, id)
		t.release(id)
		released++
	}
	return released
}

// ForceReleaseAll releases every live handle immediately and retires the
// tracker. Used on context close. Idempotent; cleanups firing afterwards
// are dropped at enqueue, so the pending queue cannot grow after close.
func (t *Tracker) ForceReleaseAll() int {
	t.mu.Lock()
	t.closed = true
	t.pending = nil
	t.mu.Unlock()

	released := 0
	for id := range t.entries {
		t.release(id)
		released++
	}
	t.entries = make(map[uint64]struct{})
	return released
}

// Size returns the number of live tracked handles.
func (t *Tracker) Size() int {
	return len(t.entries)
}
