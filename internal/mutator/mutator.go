// Package mutator enforces the runtime's single-mutator-goroutine contract:
// every call that touches the arena, header pool, or lists must come from
// the same goroutine that initialized the runtime. This is a correctness
// precondition (the allocator and collector keep no locks), not a
// performance knob, so the guard runs in every build; only the cost of
// capturing the calling goroutine's id is paid unconditionally, while the
// assertion failure itself carries a debug-style stack trace.
package mutator

import (
	"fmt"

	"github.com/timandy/routine"

	"github.com/novalang/rt/internal/debug"
)

// Guard remembers which goroutine owns a runtime instance and panics if a
// different goroutine calls in.
type Guard struct {
	owner int64
	bound bool
}

// Bind records the calling goroutine as the guard's owner. Called once, from
// the runtime's constructor.
func (g *Guard) Bind() {
	g.owner = routine.Goid()
	g.bound = true
}

// Check panics if the calling goroutine is not the one that called Bind.
func (g *Guard) Check() {
	if !g.bound {
		return
	}
	if id := routine.Goid(); id != g.owner {
		panic(fmt.Errorf("rt: mutator violation: runtime bound to goroutine %d, called from %d\n%s",
			g.owner, id, debug.Stack(2)))
	}
}
