// Package arena implements the runtime's single contiguous backing buffer:
// one host allocation carved, at construction, into a
// reserved region, N fixed-size task stacks, and two equal-sized heap
// semispaces. Unlike a conventional bump arena, this one never grows — every
// bump allocator fails closed when its segment is exhausted, and the only
// mutation a compaction pass makes is swapping which semispace is active.
package arena

import (
	"errors"
	"unsafe"

	"github.com/novalang/rt/internal/xunsafe"
)

// ErrExhausted is returned by New when the host allocator cannot satisfy
// the requested backing buffer.
var ErrExhausted = errors.New("arena: host allocation failed")

// Sizes configures New. All byte sizes (every field but NumStacks) are
// rounded up to a multiple of 8 before the backing buffer is sized.
type Sizes struct {
	Reserved  int // bytes reserved for runtime-lifetime metadata
	PerStack  int // bytes per task stack
	NumStacks int // number of task stack slots
	Heap      int // bytes per semispace (there are two)
}

// Arena is the runtime's one backing buffer. It performs no concurrency
// control of its own: callers are responsible for the runtime's
// single-mutator contract (enforced by internal/mutator).
type Arena struct {
	buf  []byte
	base xunsafe.Addr

	reservedBase, reservedEnd, reservedCur xunsafe.Addr

	stacksBase xunsafe.Addr
	perStack   int
	numStacks  int
	heapBase   xunsafe.Addr // first byte after the stacks segment

	heapSize           int // size of a single semispace
	semispace          [2]xunsafe.Addr
	active             int // index into semispace of the currently-active heap
	heapCur, heapEnd   xunsafe.Addr
}

// New allocates the backing buffer and computes segment bases. The buffer
// is a plain Go byte slice: heap semispace contents are opaque payload
// bytes with no Go-pointer shape, so the slice never needs special GC
// handling, and it is reclaimed by Go's allocator once Teardown drops the
// last reference.
func New(sz Sizes) (arena *Arena, err error) {
	reserved := xunsafe.RoundUp8(sz.Reserved)
	perStack := xunsafe.RoundUp8(sz.PerStack)
	heap := xunsafe.RoundUp8(sz.Heap)

	const alignSlack = 8
	total := reserved + perStack*sz.NumStacks + 2*heap + alignSlack

	// make() panics rather than returning nil when the host allocator
	// refuses a request this size; recover and report it the way every
	// other exhaustion path in this package does.
	defer func() {
		if recover() != nil {
			arena, err = nil, ErrExhausted
		}
	}()
	buf := make([]byte, total)

	base := xunsafe.AddrOf(unsafe.Pointer(unsafe.SliceData(buf))).RoundUp(8)

	a := &Arena{
		buf:          buf,
		base:         base,
		reservedBase: base,
		reservedEnd:  base.Add(reserved),
		reservedCur:  base,
		perStack:     perStack,
		numStacks:    sz.NumStacks,
		heapSize:     heap,
	}
	a.stacksBase = a.reservedEnd
	a.heapBase = a.stacksBase.Add(perStack * sz.NumStacks)
	a.semispace[0] = a.heapBase
	a.semispace[1] = a.heapBase.Add(heap)
	a.active = 0
	a.heapCur = a.semispace[0]
	a.heapEnd = a.heapCur.Add(heap)

	return a, nil
}

// Teardown releases the backing buffer. No further calls on a are valid
// afterward.
func (a *Arena) Teardown() {
	a.buf = nil
}

// StackTop returns the inclusive-high address of task stack i (stacks grow
// downward, so the top is the higher address). Returns 0 if the stack
// would reach past the heap segment's base.
func (a *Arena) StackTop(i int) xunsafe.Addr {
	top := a.stacksBase.Add(a.perStack * (i + 1))
	if top > a.heapBase {
		return 0
	}
	return top
}

// StackBottom returns the inclusive-low address of task stack i.
func (a *Arena) StackBottom(i int) xunsafe.Addr {
	return a.stacksBase.Add(a.perStack * i)
}

// AllocReserved bump-allocates size bytes (rounded up to 8) from the
// reserved region. Returns 0 on exhaustion; the reserved region is never
// freed except at Teardown.
func (a *Arena) AllocReserved(size int) xunsafe.Addr {
	size = xunsafe.RoundUp8(size)
	next := a.reservedCur.Add(size)
	if next > a.reservedEnd {
		return 0
	}
	p := a.reservedCur
	a.reservedCur = next
	return p
}

// AllocHeap bump-allocates size bytes (rounded up to 8) from the active
// semispace. Returns 0 on exhaustion; allocation never grows the arena.
func (a *Arena) AllocHeap(size int) xunsafe.Addr {
	size = xunsafe.RoundUp8(size)
	next := a.heapCur.Add(size)
	if next > a.heapEnd {
		return 0
	}
	p := a.heapCur
	a.heapCur = next
	return p
}

// HeapUsage returns the bytes advanced in the active semispace since the
// last compaction swap.
func (a *Arena) HeapUsage() int {
	return a.heapCur.Sub(a.semispace[a.active])
}

// HeapCapacity returns the size, in bytes, of a single semispace.
func (a *Arena) HeapCapacity() int {
	return a.heapSize
}

// SwapSemispaces exchanges the active/inactive semispace roles and resets
// the heap bump cursor to the base of the newly-active one. Exposed only to
// the GC's compactor.
func (a *Arena) SwapSemispaces() {
	a.active ^= 1
	a.heapCur = a.semispace[a.active]
	a.heapEnd = a.heapCur.Add(a.heapSize)
}

// Bytes returns a byte slice view of the size bytes at addr, which must lie
// within the arena's backing buffer.
func (a *Arena) Bytes(addr xunsafe.Addr, size int) []byte {
	off := addr.Sub(a.base)
	return a.buf[off : off+size : off+size]
}

// Pointer returns an unsafe.Pointer to addr, for handing payload addresses
// to an Ops vtable call without first knowing the payload's size.
func (a *Arena) Pointer(addr xunsafe.Addr) unsafe.Pointer {
	return addr.Ptr()
}
