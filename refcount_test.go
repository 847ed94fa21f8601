package rt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rt "github.com/novalang/rt"
)

func TestUnrefOnAFreshAllocationGoesToZero(t *testing.T) {
	runtime := newTestRuntime(t)

	h, err := runtime.AllocTrivial(8)
	require.NoError(t, err)

	runtime.Unref(h)
	assert.Equal(t, 0, runtime.InUseCount())
}

func TestDoubleUnrefPanics(t *testing.T) {
	runtime := newTestRuntime(t)

	h, err := runtime.AllocTrivial(8)
	require.NoError(t, err)

	runtime.Unref(h)
	assert.Panics(t, func() { runtime.Unref(h) }, "unref below zero is a counting bug, not a recoverable condition")
}

func TestNilHeaderIsANoOpForRefAndUnref(t *testing.T) {
	runtime := newTestRuntime(t)
	assert.NotPanics(t, func() {
		runtime.Ref(nil)
		runtime.Unref(nil)
	})
}
