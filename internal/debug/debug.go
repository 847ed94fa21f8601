//go:build debug

// Package debug includes debugging helpers compiled in only under the
// "debug" build tag. Production builds get the zero-cost stubs in nodbg.go
// instead.
package debug

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/timandy/routine"
)

// Enabled is true when the binary was built with the debug tag.
const Enabled = true

var (
	pattern  *regexp.Regexp
	modulePfx = flag.String("rt.modprefix", "github.com/novalang/rt/", "module prefix stripped from debug log package names")
)

func init() {
	flag.Func("rt.filter", "regexp to filter debug logs by", func(s string) (err error) {
		pattern, err = regexp.Compile(s)
		return err
	})
}

// Log prints a debug trace line to stderr, tagged with the calling
// goroutine's id (via [routine.Goid]) so that interleaved single-mutator
// traces can still be told apart during development.
//
// context, if non-empty, is a Printf-style (format, args...) pair that is
// rendered before operation; callers use it to attach identifying state
// (e.g. a header address) to a group of related log lines.
func Log(context []any, operation string, format string, args ...any) {
	pc, file, line, ok := runtime.Caller(1)
	fn := "?"
	if ok {
		if f := runtime.FuncForPC(pc); f != nil {
			fn = strings.TrimPrefix(f.Name(), *modulePfx)
		}
		file = filepath.Base(file)
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "%s:%d [g%04d", file, line, routine.Goid())
	if len(context) >= 1 {
		fmt.Fprintf(&buf, ", "+context[0].(string), context[1:]...)
	}
	fmt.Fprintf(&buf, "] %s %s: ", fn, operation)
	fmt.Fprintf(&buf, format, args...)

	if pattern != nil && !pattern.MatchString(buf.String()) {
		return
	}

	buf.WriteByte('\n')
	os.Stderr.WriteString(buf.String())
}

// Assert panics, with a captured stack trace attached, if cond is false.
// Compiled out entirely (to a no-op) in non-debug builds.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("rt: internal assertion failed: "+format+"\n%s", append(args, Stack(2))...))
	}
}

// Value holds a value of type T that exists only in debug builds; in
// production builds it is replaced with an empty struct so it costs nothing.
type Value[T any] struct {
	x T
}

// Get returns a pointer to the wrapped value.
func (v *Value[T]) Get() *T { return &v.x }
