package rt

import (
	"fmt"

	"github.com/novalang/rt/internal/debug"
)

// Ref increments h's reference count. Panics if the count would reach
// maxRefCount, which the shadow-count field of metaRefCount cannot hold: a
// count that large means a counting bug elsewhere, not a legitimate
// workload, so it is treated as fatal rather than a recoverable error.
func (rt *Runtime) Ref(h *Header) {
	rt.guard.Check()
	if h == nil {
		return
	}
	if h.refCount+1 >= maxRefCount {
		panic(fmt.Errorf("rt: ref count overflow on header at %#x\n%s", h.obj, stackTrace()))
	}
	h.refCount++
	debug.Log(nil, "ref", "addr=%#x count=%d", h.obj, h.refCount)
}

// Unref decrements h's reference count. If the count reaches zero, h's
// payload is visited to unref every managed child, then h is returned to the
// free list. Children are processed via an explicit worklist rather than
// recursion: a deeply nested structure (e.g. a long cons-list built from
// tuples) must not blow the Go call stack just because its reference graph
// is deep.
func (rt *Runtime) Unref(h *Header) {
	rt.guard.Check()
	if h == nil {
		return
	}
	if h.refCount <= 0 {
		panic(fmt.Errorf("rt: ref count underflow on header at %#x\n%s", h.obj, stackTrace()))
	}

	h.refCount--
	debug.Log(nil, "unref", "addr=%#x count=%d", h.obj, h.refCount)
	if h.refCount > 0 {
		return
	}

	work := []*Header{h}
	for len(work) > 0 {
		n := len(work) - 1
		cur := work[n]
		work = work[:n]

		ops := cur.ops
		payload := rt.arena.Pointer(cur.obj)
		rt.pool.remove(cur)

		ops.Visit(payload, func(child *Header) {
			if child.refCount <= 0 {
				panic(fmt.Errorf("rt: ref count underflow on child header at %#x\n%s", child.obj, stackTrace()))
			}
			child.refCount--
			debug.Log(nil, "unref", "child addr=%#x count=%d (cascaded from %#x)", child.obj, child.refCount, cur.obj)
			if child.refCount == 0 {
				work = append(work, child)
			}
		})

		debug.Log(nil, "dealloc", "addr=%#x", cur.obj)
		rt.pool.dealloc(cur)
	}
}
