package mutator_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/novalang/rt/internal/mutator"
)

func TestCheckBeforeBindIsANoOp(t *testing.T) {
	var g mutator.Guard
	assert.NotPanics(t, g.Check)
}

func TestCheckFromBoundGoroutineDoesNotPanic(t *testing.T) {
	var g mutator.Guard
	g.Bind()
	assert.NotPanics(t, g.Check)
}

func TestCheckFromOtherGoroutinePanics(t *testing.T) {
	var g mutator.Guard
	g.Bind()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.Panics(t, g.Check)
	}()
	wg.Wait()
}
