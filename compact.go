package rt

// compact performs the stop-the-world relocation pass: swap which semispace
// is active, then copy every surviving header's payload into the new
// semispace in list order (trivial list first, then nontrivial), updating
// each header's recorded address as it moves. Garbage has already been
// removed from both lists by collectCycles and by Unref's eager reclamation,
// so every header visited here survives the copy.
func (rt *Runtime) compact() {
	rt.arena.SwapSemispaces()

	relocate := func(h *Header) {
		old := rt.arena.Pointer(h.obj)
		size := h.ops.Bytes(old)

		dst := rt.arena.AllocHeap(size)
		if dst == 0 {
			panic("rt: compaction ran out of room in the freshly-swapped semispace; configured heap size is too small for the live set")
		}

		copy(rt.arena.Bytes(dst, size), unsafeBytes(old, size))
		h.obj = dst
	}

	rt.pool.eachTrivial(relocate)
	rt.pool.eachNontrivial(relocate)
}
