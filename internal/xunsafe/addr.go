// Package xunsafe provides small address-arithmetic helpers shared by the
// arena and header pool. It exists so that bump-pointer math happens in one
// place instead of being re-derived with raw uintptr casts at every call
// site.
package xunsafe

import "unsafe"

// Addr is a raw byte address into arena-owned memory. Unlike a Go pointer, it
// carries no GC visibility and no type: the arena is the only thing that
// interprets the bytes at an Addr.
type Addr uintptr

// AddrOf returns the address of p.
func AddrOf(p unsafe.Pointer) Addr {
	return Addr(uintptr(p))
}

// Ptr reinterprets this address as an unsafe.Pointer.
//
// Callers must ensure the address still falls within live arena memory;
// Ptr performs no bounds checking.
func (a Addr) Ptr() unsafe.Pointer {
	return unsafe.Pointer(uintptr(a))
}

// Add returns a + n.
func (a Addr) Add(n int) Addr {
	return a + Addr(n)
}

// Sub returns a - b, in bytes.
func (a Addr) Sub(b Addr) int {
	return int(a - b)
}

// RoundUp rounds a up to the next multiple of align, which must be a power
// of two.
func (a Addr) RoundUp(align int) Addr {
	mask := Addr(align - 1)
	return (a + mask) &^ mask
}

// RoundUp8 rounds n up to the next multiple of 8, the alignment used
// throughout the arena (every allocation is rounded up to an 8-byte
// multiple).
func RoundUp8(n int) int {
	return (n + 7) &^ 7
}
