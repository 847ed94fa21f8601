package rt

import (
	"unsafe"

	"github.com/novalang/rt/internal/debug"
	"github.com/novalang/rt/internal/xunsafe"
)

// Header bits: meta_ref_count packs two flag bits plus a shadow-count field.
// The layout below mirrors the reference runtime's gc_header_t bit-for-bit.
const (
	nontrivialFlag  uint32 = 1 << 31
	unreachableFlag uint32 = 1 << 30
	maxRefCount     int32  = 1 << 28
	shadowMask      uint32 = uint32(maxRefCount) - 1
)

// list identifies which of the three header lists currently owns a header.
// It is stored explicitly rather than inferred solely from the nontrivial
// flag, since free headers have neither flag meaningfully set.
type list int8

const (
	listFree list = iota
	listTrivial
	listNontrivial
)

// Header is the fixed-size, out-of-band record that owns one heap payload.
// Headers live in a [Pool] allocated once at init_gc and are never
// individually freed back to the host allocator; only their Go-level
// identity within the pool is reused.
type Header struct {
	obj xunsafe.Addr // address of the payload in the active semispace
	ops *Ops

	prev, next *Header
	onList     list

	refCount     int32
	metaRefCount uint32 // flags + shadow count; meaningful only mid-GC for nontrivial headers
}

// RefCount returns the header's current incoming-edge count.
func (h *Header) RefCount() int32 { return h.refCount }

// Addr returns the payload's current address. It is only valid until the
// next run_gc, which may relocate the payload during compaction.
func (h *Header) Addr() xunsafe.Addr { return h.obj }

func (h *Header) isNontrivial() bool {
	return h.onList == listNontrivial
}

func (h *Header) isUnreachable() bool {
	return h.metaRefCount&unreachableFlag != 0
}

func (h *Header) shadowCount() uint32 {
	return h.metaRefCount & shadowMask
}

func (h *Header) setShadowCount(n uint32) {
	h.metaRefCount = nontrivialFlag | (n & shadowMask)
}

func (h *Header) markUnreachable() {
	h.metaRefCount = nontrivialFlag | unreachableFlag
}

// Pool is the fixed-count array of [Header] values reserved at init_gc.
// It is a plain Go slice rather than raw arena bytes: a
// Header's prev/next/ops fields are real Go pointers, and the pool is
// permanently rooted by the owning [Runtime] for the process lifetime, so
// those pointers never need the arena's own unsafe bookkeeping. The fixed
// bump-allocation discipline the header pool describes (exhaustion is a hard
// failure, never grown) is preserved via reservedBudget below, matching
// init_gc's call to alloc_runtime_reserved in the reference runtime.
type Pool struct {
	headers []Header
	free    *Header
	inUse   int

	trivialHead, nontrivialHead *Header
}

// NewPool allocates a pool of numHeaders headers and chains them onto the
// free list. ok is false if the reserved region could not accommodate the
// pool.
func NewPool(reservedBudget func(size int) xunsafe.Addr, numHeaders int) (p *Pool, ok bool) {
	const headerSize = int(unsafe.Sizeof(Header{}))
	if reservedBudget(headerSize*numHeaders) == 0 {
		return nil, false
	}

	p = &Pool{headers: make([]Header, numHeaders)}
	for i := range p.headers {
		p.headers[i].onList = listFree
		if i > 0 {
			p.headers[i].prev = &p.headers[i-1]
		}
		if i+1 < len(p.headers) {
			p.headers[i].next = &p.headers[i+1]
		}
	}
	if numHeaders > 0 {
		p.free = &p.headers[0]
	}
	return p, true
}

// InUseCount returns the number of headers not currently on the free list.
func (p *Pool) InUseCount() int { return p.inUse }

// Capacity returns the total number of headers in the pool.
func (p *Pool) Capacity() int { return len(p.headers) }

func (p *Pool) listHead(l list) *Header {
	switch l {
	case listTrivial:
		return p.trivialHead
	case listNontrivial:
		return p.nontrivialHead
	default:
		return p.free
	}
}

func (p *Pool) setListHead(l list, h *Header) {
	switch l {
	case listTrivial:
		p.trivialHead = h
	case listNontrivial:
		p.nontrivialHead = h
	default:
		p.free = h
	}
}

func (p *Pool) pushFront(l list, h *Header) {
	head := p.listHead(l)
	h.prev = nil
	h.next = head
	if head != nil {
		head.prev = h
	}
	p.setListHead(l, h)
	h.onList = l
}

func (p *Pool) remove(h *Header) {
	debug.Assert(h.prev == nil || h.prev.next == h, "header at %#x: prev link does not point back", h.obj)
	debug.Assert(h.next == nil || h.next.prev == h, "header at %#x: next link does not point back", h.obj)

	if h.prev != nil {
		h.prev.next = h.next
	} else {
		p.setListHead(h.onList, h.next)
	}
	if h.next != nil {
		h.next.prev = h.prev
	}
	h.prev, h.next = nil, nil
}

// allocHeader detaches a header from the free list and places it on l.
// Returns nil if the pool is exhausted.
func (p *Pool) allocHeader(l list, obj xunsafe.Addr, ops *Ops) *Header {
	h := p.free
	if h == nil {
		return nil
	}
	p.remove(h)
	p.inUse++

	h.obj = obj
	h.ops = ops
	h.refCount = 1
	h.metaRefCount = 0
	if l == listNontrivial {
		h.metaRefCount = nontrivialFlag
	}
	p.pushFront(l, h)
	return h
}

// dealloc returns h to the free list. h must already have been removed from
// whichever of trivial/nontrivial owned it.
func (p *Pool) dealloc(h *Header) {
	h.obj = 0
	h.ops = nil
	h.refCount = 0
	h.metaRefCount = 0
	p.pushFront(listFree, h)
	p.inUse--
}

// eachTrivial and eachNontrivial call f for every header currently on the
// corresponding list, in list order. f must not change the list membership
// of any header, including the one it is called with: the walk reads h.next
// after f returns, and remove clears it. The cycle collector and compactor
// rely on this.
func (p *Pool) eachTrivial(f func(*Header)) {
	for h := p.trivialHead; h != nil; h = h.next {
		f(h)
	}
}

func (p *Pool) eachNontrivial(f func(*Header)) {
	for h := p.nontrivialHead; h != nil; h = h.next {
		f(h)
	}
}
