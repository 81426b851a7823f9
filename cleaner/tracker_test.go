package cleaner

import (
	"runtime"
	"testing"
	"time"
)

type wrapper struct {
	id uint64
}

func TestPollReleasesUnreachable(t *testing.T) {
	var released []uint64
	tr := New(func(id uint64) { released = append(released, id) })

	func() {
		w := &wrapper{id: 7}
		Register(tr, w, w.id)
	}()
	if got := tr.Size(); got != 1 {
		t.Fatalf("Size() = %d, want 1", got)
	}

	// Cleanups run on the collector's schedule; give it a few rounds.
	deadline := time.Now().Add(2 * time.Second)
	for tr.Poll() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("cleanup never fired")
		}
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}

	if len(released) != 1 || released[0] != 7 {
		t.Errorf("released = %v, want [7]", released)
	}
	if got := tr.Size(); got != 0 {
		t.Errorf("Size() = %d after release, want 0", got)
	}
}

func TestPollKeepsReachable(t *testing.T) {
	var released []uint64
	tr := New(func(id uint64) { released = append(released, id) })

	w := &wrapper{id: 3}
	Register(tr, w, w.id)

	runtime.GC()
	if n := tr.Poll(); n != 0 {
		t.Fatalf("Poll() = %d while wrapper is reachable, want 0", n)
	}
	if len(released) != 0 {
		t.Errorf("released = %v while wrapper is reachable, want none", released)
	}
	runtime.KeepAlive(w)
}

func TestForceReleaseAll(t *testing.T) {
	var released []uint64
	tr := New(func(id uint64) { released = append(released, id) })

	w1 := &wrapper{id: 1}
	w2 := &wrapper{id: 2}
	Register(tr, w1, w1.id)
	Register(tr, w2, w2.id)

	if n := tr.ForceReleaseAll(); n != 2 {
		t.Fatalf("ForceReleaseAll() = %d, want 2", n)
	}
	if got := tr.Size(); got != 0 {
		t.Fatalf("Size() = %d after force release, want 0", got)
	}

	// Idempotent: nothing left to release.
	if n := tr.ForceReleaseAll(); n != 0 {
		t.Errorf("second ForceReleaseAll() = %d, want 0", n)
	}
	if len(released) != 2 {
		t.Errorf("released %d handles, want 2", len(released))
	}
	runtime.KeepAlive(w1)
	runtime.KeepAlive(w2)
}

func TestLateCleanupDropped(t *testing.T) {
	var released []uint64
	tr := New(func(id uint64) { released = append(released, id) })

	w := &wrapper{id: 9}
	Register(tr, w, w.id)

	tr.ForceReleaseAll()
	released = released[:0]

	// Simulate the cleanup firing after the force release: the id must
	// not accumulate on the pending queue, and nothing is re-released.
	tr.enqueue(9)
	if got := len(tr.pending); got != 0 {
		t.Fatalf("pending length = %d after late enqueue, want 0", got)
	}
	if n := tr.Poll(); n != 0 {
		t.Fatalf("Poll() = %d for late cleanup, want 0", n)
	}
	if len(released) != 0 {
		t.Errorf("released = %v for late cleanup, want none", released)
	}
	runtime.KeepAlive(w)
}
