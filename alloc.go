package rt

import (
	"github.com/novalang/rt/internal/debug"
	"github.com/novalang/rt/internal/xunsafe"
)

// allocPayload bump-allocates size bytes from the active heap semispace and
// zeroes it. Returns ok=false immediately on exhaustion of either the heap
// or the header free list; it never triggers a collection itself — callers
// that want to retry after reclaiming space call RunGC explicitly.
func (rt *Runtime) allocPayload(size int) (addr xunsafe.Addr, ok bool) {
	if rt.pool.free == nil {
		return 0, false
	}

	a := rt.arena.AllocHeap(size)
	if a == 0 {
		return 0, false
	}

	// Zero the fresh payload so a caller never observes a prior tenant's
	// bytes; the semispace this came from may have held anything before the
	// bump cursor reached here.
	buf := rt.arena.Bytes(a, size)
	for i := range buf {
		buf[i] = 0
	}
	return a, true
}

// AllocTrivial reserves size bytes of unmanaged payload (no child headers to
// visit) and returns the fresh header. Used for boxed primitives.
func (rt *Runtime) AllocTrivial(size int) (*Header, error) {
	return rt.alloc(size, listTrivial, TrivialOps)
}

// AllocTrivialOps reserves size bytes governed by a caller-supplied Ops
// whose Visit still visits nothing, but whose Bytes may vary with payload
// contents (a trivial kind with a variable-length representation).
func (rt *Runtime) AllocTrivialOps(size int, ops *Ops) (*Header, error) {
	return rt.alloc(size, listTrivial, ops)
}

// AllocNontrivial reserves size bytes governed by ops and places the header
// on the nontrivial-roots list, making it a participant in cycle collection.
func (rt *Runtime) AllocNontrivial(size int, ops *Ops) (*Header, error) {
	return rt.alloc(size, listNontrivial, ops)
}

// alloc is the shared implementation behind the Alloc family. It does not
// collect on exhaustion; a caller that wants to retry calls RunGC itself and
// calls alloc again.
func (rt *Runtime) alloc(size int, l list, ops *Ops) (*Header, error) {
	rt.guard.Check()

	addr, ok := rt.allocPayload(size)
	if !ok {
		if rt.pool.free == nil {
			debug.Log(nil, "alloc", "header pool exhausted, capacity=%d, size=%d", rt.pool.Capacity(), size)
			return nil, wrapf(ErrFreeListExhausted, "pool capacity %d", rt.pool.Capacity())
		}
		debug.Log(nil, "alloc", "heap exhausted, size=%d", size)
		return nil, wrapf(ErrHeapExhausted, "requested %d bytes", size)
	}

	h := rt.pool.allocHeader(l, addr, ops)
	if h == nil {
		// allocPayload already confirmed a free header existed; a concurrent
		// mutator call would be the only way to lose it, and that violates
		// the single-mutator contract that guard.Check() already enforces.
		return nil, wrapf(ErrFreeListExhausted, "pool capacity %d", rt.pool.Capacity())
	}
	debug.Log(nil, "alloc", "list=%d size=%d addr=%#x", l, size, addr)
	return h, nil
}
