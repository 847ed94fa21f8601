package rt

import "unsafe"

// Value is a uniform machine word: it either holds a primitive payload (an
// integer, a small code pointer) or the address of a [Header], depending on
// whether the slot holding it is declared managed by its container.
//
// Value itself carries no tag bit; the container is responsible for
// remembering, per slot, whether a word is managed or trivial.
type Value uint64

// headerToValue and valueToHeader convert between a Header's identity and
// the bit pattern stored in a managed slot. The Header pool is a
// permanently-rooted Go slice (see Pool in header.go), so the *Header value
// hidden inside these bits stays valid for the lifetime of the Runtime even
// though it is invisible to the Go garbage collector while sitting in a
// slot's raw bytes.
func headerToValue(h *Header) Value {
	return Value(uintptr(unsafe.Pointer(h)))
}

func valueToHeader(v Value) *Header {
	return (*Header)(unsafe.Pointer(uintptr(v)))
}

// unsafeBytes views n bytes starting at p as a byte slice, for copying
// payloads during compaction.
func unsafeBytes(p unsafe.Pointer, n int) []byte {
	return unsafe.Slice((*byte)(p), n)
}

// HeaderValue and ValueHeader expose the Value<->*Header conversion to
// callers outside this package that need to store a managed child's
// identity into a container slot (e.g. a tuple) or read one back out.
func HeaderValue(h *Header) Value { return headerToValue(h) }
func ValueHeader(v Value) *Header { return valueToHeader(v) }

// Ops is the per-object-kind vtable the GC consults to size and traverse a
// payload. A client registers one Ops
// value per compound kind it introduces (tuples, closures, boxed records);
// the runtime itself only ships [TrivialOps].
type Ops struct {
	// Bytes returns the current size, in bytes, of the payload at this
	// address. Variable-sized kinds (e.g. a tuple) must derive this from
	// the payload's own header fields rather than a fixed constant.
	Bytes func(payload unsafe.Pointer) int

	// Visit invokes f once for every managed child header reachable one
	// hop from payload. Trivial (unmanaged) slots must be skipped.
	// Iteration order is irrelevant to correctness.
	Visit func(payload unsafe.Pointer, f func(*Header))
}

// TrivialOps is the canonical trivial operator: it reports a single
// machine-word payload and visits nothing. Boxed primitives (integers,
// code pointers with no captured state) use it.
var TrivialOps = &Ops{
	Bytes: func(unsafe.Pointer) int { return int(unsafe.Sizeof(Value(0))) },
	Visit: func(unsafe.Pointer, func(*Header)) {},
}
