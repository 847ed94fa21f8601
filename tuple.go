package rt

import (
	"fmt"
	"unsafe"
)

// tupleHeader is the fixed prefix of every tuple payload: its slot count,
// followed by a bitset recording which slots hold a managed Value (a
// Header address) versus a trivial one. The bitset lives inline so that
// Visit can answer "which children does this payload have" without any
// side table.
type tupleHeader struct {
	num  uint64
	mask uint64 // bit i set => slot i is managed; supports up to 64 slots
}

const maxTupleSlots = 64

func tupleBytes(num int) int {
	return int(unsafe.Sizeof(tupleHeader{})) + num*int(unsafe.Sizeof(Value(0)))
}

func tupleSlots(payload unsafe.Pointer) []Value {
	th := (*tupleHeader)(payload)
	base := unsafe.Add(payload, unsafe.Sizeof(tupleHeader{}))
	return unsafe.Slice((*Value)(base), th.num)
}

// tupleOps is the Ops vtable every tuple header is allocated with.
var tupleOps = &Ops{
	Bytes: func(payload unsafe.Pointer) int {
		th := (*tupleHeader)(payload)
		return tupleBytes(int(th.num))
	},
	Visit: func(payload unsafe.Pointer, f func(*Header)) {
		th := (*tupleHeader)(payload)
		slots := tupleSlots(payload)
		for i, v := range slots {
			if th.mask&(1<<uint(i)) != 0 {
				f(valueToHeader(v))
			}
		}
	},
}

// AllocTuple allocates a tuple with num slots, all initially trivial zero
// values. num must not exceed 64, the width of the inline managed-slot
// bitset.
func (rt *Runtime) AllocTuple(num int) (*Header, error) {
	rt.guard.Check()
	if num < 0 || num > maxTupleSlots {
		panic(fmt.Errorf("rt: tuple slot count out of range\n%s", stackTrace()))
	}

	h, err := rt.AllocNontrivial(tupleBytes(num), tupleOps)
	if err != nil {
		return nil, err
	}

	th := (*tupleHeader)(rt.arena.Pointer(h.obj))
	th.num = uint64(num)
	th.mask = 0
	return h, nil
}

// TupleLen returns the number of slots in the tuple at h.
func (rt *Runtime) TupleLen(h *Header) int {
	rt.guard.Check()
	th := (*tupleHeader)(rt.arena.Pointer(h.obj))
	return int(th.num)
}

// GetTupleAt returns the raw Value stored at slot i, along with whether that
// slot is currently managed (and so the Value must be passed through
// valueToHeader rather than interpreted directly).
func (rt *Runtime) GetTupleAt(h *Header, i int) (v Value, managed bool) {
	rt.guard.Check()
	payload := rt.arena.Pointer(h.obj)
	th := (*tupleHeader)(payload)
	if i < 0 || i >= int(th.num) {
		panic(fmt.Errorf("rt: tuple index out of range\n%s", stackTrace()))
	}
	slots := tupleSlots(payload)
	return slots[i], th.mask&(1<<uint(i)) != 0
}

// SetTupleAt stores v into slot i. If managed is true, v must be the
// address of a live Header the caller holds an independent reference to;
// SetTupleAt refs it on the tuple's behalf, so the caller's own reference
// remains theirs to drop separately. Whether the new value is managed or
// trivial, the slot's previous occupant — if it was managed — is unref'd
// after the new value is installed, so a caller never needs to unref the old
// occupant manually.
func (rt *Runtime) SetTupleAt(h *Header, i int, v Value, managed bool) {
	rt.guard.Check()
	payload := rt.arena.Pointer(h.obj)
	th := (*tupleHeader)(payload)
	if i < 0 || i >= int(th.num) {
		panic(fmt.Errorf("rt: tuple index out of range\n%s", stackTrace()))
	}

	slots := tupleSlots(payload)
	prev := slots[i]
	prevManaged := th.mask&(1<<uint(i)) != 0

	if managed {
		rt.Ref(valueToHeader(v))
	}

	slots[i] = v
	if managed {
		th.mask |= 1 << uint(i)
	} else {
		th.mask &^= 1 << uint(i)
	}

	if prevManaged {
		rt.Unref(valueToHeader(prev))
	}
}
