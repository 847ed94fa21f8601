package rt

import (
	"fmt"

	"github.com/novalang/rt/internal/debug"
)

// stackTrace renders the caller's stack for a fatal panic, mirroring the
// original runtime's print_stack/CHECK pairing.
func stackTrace() string {
	return debug.Stack(3)
}

// errCode enumerates the closed set of recoverable error kinds a caller can
// expect back from a constructor or allocator. Anything not in this set is a
// programming error and is reported via debug.Assert/panic instead.
type errCode int

const (
	// errArenaExhausted means the host allocator refused the single backing
	// buffer a runtime asked for.
	errArenaExhausted errCode = iota
	// errHeaderPoolExhausted means the reserved region could not fit the
	// requested number of GC headers.
	errHeaderPoolExhausted
	// errHeapExhausted means a bump allocation in the active semispace ran
	// past its segment boundary.
	errHeapExhausted
	// errFreeListExhausted means every header in the pool is already in use.
	errFreeListExhausted
)

func (c errCode) String() string {
	switch c {
	case errArenaExhausted:
		return "arena exhausted"
	case errHeaderPoolExhausted:
		return "header pool exhausted"
	case errHeapExhausted:
		return "heap exhausted"
	case errFreeListExhausted:
		return "free list exhausted"
	default:
		return "unknown error"
	}
}

// runtimeError wraps one of the errCode values with the call's concrete
// arguments.
type runtimeError struct {
	code errCode
	msg  string
}

func (e *runtimeError) Error() string {
	if e.msg == "" {
		return "rt: " + e.code.String()
	}
	return fmt.Sprintf("rt: %s: %s", e.code, e.msg)
}

// Is lets errors.Is(err, ErrHeapExhausted) and friends work without exposing
// errCode or runtimeError themselves.
func (e *runtimeError) Is(target error) bool {
	sentinel, ok := target.(*runtimeError)
	return ok && sentinel.code == e.code
}

var (
	// ErrArenaExhausted is returned by New when the host allocator cannot
	// satisfy the requested backing buffer.
	ErrArenaExhausted = &runtimeError{code: errArenaExhausted}
	// ErrHeaderPoolExhausted is returned by New when the reserved region is
	// too small for the requested header count.
	ErrHeaderPoolExhausted = &runtimeError{code: errHeaderPoolExhausted}
	// ErrHeapExhausted is returned by the Alloc family when the active
	// semispace has no room left. The runtime never collects on a caller's
	// behalf; a caller that wants to retry calls RunGC itself first.
	ErrHeapExhausted = &runtimeError{code: errHeapExhausted}
	// ErrFreeListExhausted is returned by the Alloc family when every header
	// in the pool is already in use. As with ErrHeapExhausted, retrying
	// after a RunGC call is the caller's decision, not something Alloc does
	// automatically.
	ErrFreeListExhausted = &runtimeError{code: errFreeListExhausted}
)

func wrapf(sentinel *runtimeError, format string, args ...any) *runtimeError {
	return &runtimeError{code: sentinel.code, msg: fmt.Sprintf(format, args...)}
}
