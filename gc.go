package rt

import "github.com/novalang/rt/internal/debug"

// RunGC performs one full collection cycle: trial deletion over the
// nontrivial-roots list to reclaim reference cycles that Unref's eager
// reclamation can never see, followed by a compacting relocation pass that
// copies every surviving payload into the currently-inactive semispace.
//
// Trial deletion proceeds in five steps, matching the reference algorithm
// exactly:
//  1. copy   — shadow count := live reference count, for every nontrivial header.
//  2. subtract — for every internal edge (nontrivial parent -> nontrivial child),
//     decrement the child's shadow count once.
//  3. recover — any header whose shadow count is still positive after step 2
//     is reachable from outside the candidate set; walk its nontrivial
//     children and restore (increment) their shadow counts, recursing into
//     any child this restores from zero back to positive.
//  4. mark    — any header whose shadow count is still zero after recovery
//     is part of a garbage cycle with no external reachability.
//  5. break-and-free — visit every unreachable header's children once to
//     sever edges (unref children that survive; simply decrement the count
//     of children that are themselves unreachable, since they're freed in
//     this same pass), then return every unreachable header to the free list.
func (rt *Runtime) RunGC() {
	rt.guard.Check()
	debug.Log(nil, "gc", "starting cycle collection, %d headers in use", rt.pool.InUseCount())
	rt.collectCycles()
	debug.Log(nil, "gc", "starting compaction")
	rt.compact()
	debug.Log(nil, "gc", "finished, %d headers in use, %d heap bytes in use", rt.pool.InUseCount(), rt.arena.HeapUsage())
}

func (rt *Runtime) collectCycles() {
	// Step 1: copy.
	rt.pool.eachNontrivial(func(h *Header) {
		h.setShadowCount(uint32(h.refCount))
	})

	// Step 2: subtract internal edges.
	rt.pool.eachNontrivial(func(h *Header) {
		payload := rt.arena.Pointer(h.obj)
		h.ops.Visit(payload, func(child *Header) {
			if child.isNontrivial() && child.shadowCount() > 0 {
				child.setShadowCount(child.shadowCount() - 1)
			}
		})
	})

	// Step 3: restore shadow counts reachable from every header with a
	// surviving external reference. This recurses into the live subgraph
	// (not the whole nontrivial list), which is bounded by the object graph's
	// actual depth rather than the full header count; the original
	// trial-deletion presentation makes the same recursive call here.
	var restore func(h *Header)
	restore = func(h *Header) {
		payload := rt.arena.Pointer(h.obj)
		h.ops.Visit(payload, func(child *Header) {
			if !child.isNontrivial() {
				return
			}
			wasZero := child.shadowCount() == 0
			child.setShadowCount(child.shadowCount() + 1)
			if wasZero {
				restore(child)
			}
		})
	}
	rt.pool.eachNontrivial(func(h *Header) {
		if h.shadowCount() > 0 {
			restore(h)
		}
	})

	// Step 4: mark.
	var garbage []*Header
	rt.pool.eachNontrivial(func(h *Header) {
		if h.shadowCount() == 0 {
			h.markUnreachable()
			garbage = append(garbage, h)
		}
	})
	debug.Log(nil, "gc", "mark phase found %d unreachable headers", len(garbage))
	if len(garbage) == 0 {
		return
	}

	// Step 5: break, then free. Breaking must finish for every garbage
	// header before any of them is deallocated, since a still-unreachable
	// child's Visit callback below depends on every cycle member still
	// being a valid, addressable header.
	for _, h := range garbage {
		payload := rt.arena.Pointer(h.obj)
		h.ops.Visit(payload, func(child *Header) {
			if child.isNontrivial() && child.isUnreachable() {
				child.refCount--
				return
			}
			rt.Unref(child)
		})
	}
	for _, h := range garbage {
		rt.pool.remove(h)
		rt.pool.dealloc(h)
	}
}
