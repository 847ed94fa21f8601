// Command vmrun is a small driver that exercises the runtime the way a
// compiled closure would: a tuple whose slot 0 holds a trivial code pointer
// and whose remaining slots hold managed boxes for captured variables.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"

	rt "github.com/novalang/rt"
)

func main() {
	cfgPath := flag.String("config", "", "path to a YAML runtime config; if empty, built-in defaults are used")
	flag.Parse()

	cfg := rt.Config{
		ReservedSize: 1 << 16,
		PerStackSize: 1 << 12,
		NumStacks:    4,
		HeapSize:     1 << 20,
		NumHeaders:   4096,
	}
	if *cfgPath != "" {
		loaded, err := rt.LoadConfig(*cfgPath)
		if err != nil {
			log.Fatalf("vmrun: %v", err)
		}
		cfg = loaded
	}

	runtime, err := rt.New(cfg)
	if err != nil {
		log.Fatalf("vmrun: starting runtime: %v", err)
	}
	defer runtime.Close()

	taskID := uuid.New()
	fmt.Printf("task %s: building a counter closure\n", taskID)

	counter := newCounter(runtime)
	for i := 0; i < 3; i++ {
		v := callCounter(runtime, counter)
		fmt.Printf("task %s: counter() = %d\n", taskID, v)
	}

	runtime.Unref(counter)
	runtime.RunGC()

	stats := runtime.Stats()
	fmt.Printf("task %s: done; %d/%d headers in use, %d/%d heap bytes used\n",
		taskID, stats.InUseHeaders, stats.TotalHeaders, stats.HeapUsageBytes, stats.HeapCapacityBytes)
}

// counterCode is the trivial "code pointer" slot 0 of a closure tuple. A
// real compiler would emit a bytecode offset here; this demo just tags the
// closure's kind.
const counterCode rt.Value = 1

// newCounter allocates a 2-slot tuple: slot 0 is the trivial counterCode
// value, slot 1 is a managed boxed integer starting at zero.
func newCounter(runtime *rt.Runtime) *rt.Header {
	box, err := runtime.AllocTrivial(8)
	if err != nil {
		log.Fatalf("vmrun: allocating capture cell: %v", err)
	}

	closure, err := runtime.AllocTuple(2)
	if err != nil {
		log.Fatalf("vmrun: allocating closure: %v", err)
	}
	runtime.SetTupleAt(closure, 0, counterCode, false)
	runtime.SetTupleAt(closure, 1, rt.HeaderValue(box), true)
	// SetTupleAt took its own reference on box; drop the allocation's, so
	// the closure ends up holding the capture cell's only reference.
	runtime.Unref(box)
	return closure
}

// callCounter reads the closure's captured box, increments it, writes it
// back, and returns the new value — the shape every call to a compiled
// "counter()" closure would take. The box's identity in the closure's slot
// never changes across calls, so there's no need to re-store it.
func callCounter(runtime *rt.Runtime, closure *rt.Header) int64 {
	v, managed := runtime.GetTupleAt(closure, 1)
	if !managed {
		log.Fatal("vmrun: closure capture slot was not managed")
	}
	box := rt.ValueHeader(v)

	n := rt.ReadInt64(runtime, box)
	n++
	rt.WriteInt64(runtime, box, n)
	return n
}
