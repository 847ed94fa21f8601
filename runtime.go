// Package rt implements a small managed-memory runtime: a fixed-size arena
// split into a reserved region, per-task stacks, and twin heap semispaces; a
// pool of out-of-band GC headers; a reference-counting allocation protocol;
// a trial-deletion cycle collector for reference cycles; and a stop-the-world
// compacting relocation pass between semispaces.
package rt

import (
	"github.com/novalang/rt/internal/arena"
	"github.com/novalang/rt/internal/mutator"
)

// Runtime is the single facade over one arena and its header pool. A process
// normally owns exactly one Runtime; nothing about the design prevents more,
// but each is independent and none may be touched from more than one
// goroutine (see internal/mutator).
type Runtime struct {
	arena *arena.Arena
	pool  *Pool
	guard mutator.Guard
}

// New constructs a Runtime from an explicit Config, allocating its backing
// arena and header pool up front. There is no growth path afterward: every
// exhaustion is a hard failure reported through the returned error or, for
// kinds that can only mean a bug (e.g. a negative header count), a panic.
func New(cfg Config) (*Runtime, error) {
	a, err := arena.New(arena.Sizes{
		Reserved:  cfg.ReservedSize,
		PerStack:  cfg.PerStackSize,
		NumStacks: cfg.NumStacks,
		Heap:      cfg.HeapSize,
	})
	if err != nil {
		return nil, wrapf(ErrArenaExhausted, "%v", err)
	}

	p, ok := NewPool(a.AllocReserved, cfg.NumHeaders)
	if !ok {
		a.Teardown()
		return nil, wrapf(ErrHeaderPoolExhausted, "requested %d headers", cfg.NumHeaders)
	}

	rt := &Runtime{arena: a, pool: p}
	rt.guard.Bind()
	return rt, nil
}

// Close releases the runtime's backing arena. No further calls on rt are
// valid afterward.
func (rt *Runtime) Close() {
	rt.guard.Check()
	rt.arena.Teardown()
}

// StackTop and StackBottom expose task stack bounds for a bytecode
// interpreter or similar caller that manages its own stack pointer within
// the reserved slot.
func (rt *Runtime) StackTop(task int) uintptr {
	rt.guard.Check()
	return uintptr(rt.arena.StackTop(task))
}

func (rt *Runtime) StackBottom(task int) uintptr {
	rt.guard.Check()
	return uintptr(rt.arena.StackBottom(task))
}

// AllocReserved bump-allocates size bytes (rounded up to 8) from the
// reserved region, for long-lived runtime structures. Returns 0 on
// exhaustion; reserved memory is never freed before Close.
func (rt *Runtime) AllocReserved(size int) uintptr {
	rt.guard.Check()
	return uintptr(rt.arena.AllocReserved(size))
}

// InUseCount returns the number of live headers (trivial plus nontrivial).
func (rt *Runtime) InUseCount() int { rt.guard.Check(); return rt.pool.InUseCount() }

// HeapUsage returns bytes advanced in the active semispace since the last
// compaction.
func (rt *Runtime) HeapUsage() int { rt.guard.Check(); return rt.arena.HeapUsage() }

// Stats reports a richer diagnostic snapshot than InUseCount/HeapUsage
// alone, the Go analogue of the original runtime's print_gc_mem_stats.
type Stats struct {
	InUseHeaders      int
	FreeHeaders       int
	TotalHeaders      int
	HeapUsageBytes    int
	HeapCapacityBytes int
}

// Stats returns a snapshot of pool and heap occupancy.
func (rt *Runtime) Stats() Stats {
	rt.guard.Check()
	total := rt.pool.Capacity()
	inUse := rt.pool.InUseCount()
	return Stats{
		InUseHeaders:      inUse,
		FreeHeaders:       total - inUse,
		TotalHeaders:      total,
		HeapUsageBytes:    rt.arena.HeapUsage(),
		HeapCapacityBytes: rt.arena.HeapCapacity(),
	}
}
