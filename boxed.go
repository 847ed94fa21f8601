package rt

// ReadInt64 and WriteInt64 access an 8-byte trivial payload as a signed
// integer — the representation AllocTrivial(8) is meant for: a boxed machine
// word with no children to visit.
func ReadInt64(rt *Runtime, h *Header) int64 {
	rt.guard.Check()
	return *(*int64)(rt.arena.Pointer(h.obj))
}

func WriteInt64(rt *Runtime, h *Header, v int64) {
	rt.guard.Check()
	*(*int64)(rt.arena.Pointer(h.obj)) = v
}
