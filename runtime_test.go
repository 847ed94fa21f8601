package rt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rt "github.com/novalang/rt"
)

func newTestRuntime(t *testing.T) *rt.Runtime {
	t.Helper()
	runtime, err := rt.New(rt.Config{
		ReservedSize: 1 << 12,
		PerStackSize: 256,
		NumStacks:    2,
		HeapSize:     1 << 14,
		NumHeaders:   64,
	})
	require.NoError(t, err)
	t.Cleanup(runtime.Close)
	return runtime
}

func TestAllocTrivialRoundTripsInt64(t *testing.T) {
	runtime := newTestRuntime(t)

	box, err := runtime.AllocTrivial(8)
	require.NoError(t, err)

	rt.WriteInt64(runtime, box, 42)
	assert.EqualValues(t, 42, rt.ReadInt64(runtime, box))
	assert.Equal(t, 1, runtime.InUseCount())
}

func TestUnrefFreesAtZero(t *testing.T) {
	runtime := newTestRuntime(t)

	box, err := runtime.AllocTrivial(8)
	require.NoError(t, err)
	require.Equal(t, 1, runtime.InUseCount())

	runtime.Unref(box)
	assert.Equal(t, 0, runtime.InUseCount())
}

func TestRefKeepsAliveAcrossOneUnref(t *testing.T) {
	runtime := newTestRuntime(t)

	box, err := runtime.AllocTrivial(8)
	require.NoError(t, err)

	runtime.Ref(box)
	runtime.Unref(box)
	assert.Equal(t, 1, runtime.InUseCount())

	runtime.Unref(box)
	assert.Equal(t, 0, runtime.InUseCount())
}

func TestUnrefCascadesThroughTupleChildren(t *testing.T) {
	runtime := newTestRuntime(t)

	box, err := runtime.AllocTrivial(8)
	require.NoError(t, err)
	pair, err := runtime.AllocTuple(1)
	require.NoError(t, err)

	runtime.SetTupleAt(pair, 0, rt.HeaderValue(box), true)
	runtime.Unref(box) // hand our allocation ref off; the tuple now holds the only one
	require.Equal(t, 2, runtime.InUseCount())

	runtime.Unref(pair)
	assert.Equal(t, 0, runtime.InUseCount(), "freeing the tuple must unref its managed slot")
}

func TestRunGCCollectsAReferenceCycle(t *testing.T) {
	runtime := newTestRuntime(t)

	a, err := runtime.AllocTuple(1)
	require.NoError(t, err)
	b, err := runtime.AllocTuple(1)
	require.NoError(t, err)

	// a -> b -> a. SetTupleAt takes its own ref for each edge, on top of
	// each tuple's initial allocation ref.
	runtime.SetTupleAt(a, 0, rt.HeaderValue(b), true)
	runtime.SetTupleAt(b, 0, rt.HeaderValue(a), true)

	// Drop the external (allocation) references; only the cycle's own
	// internal edges keep both alive now.
	runtime.Unref(a)
	runtime.Unref(b)
	require.Equal(t, 2, runtime.InUseCount(), "a naive refcount drop alone must not free a cycle")

	runtime.RunGC()
	assert.Equal(t, 0, runtime.InUseCount(), "trial deletion must reclaim the unreachable cycle")
}

func TestRunGCPreservesExternallyReferencedCycle(t *testing.T) {
	runtime := newTestRuntime(t)

	a, err := runtime.AllocTuple(1)
	require.NoError(t, err)
	b, err := runtime.AllocTuple(1)
	require.NoError(t, err)

	runtime.SetTupleAt(a, 0, rt.HeaderValue(b), true)
	runtime.SetTupleAt(b, 0, rt.HeaderValue(a), true)

	// a is still externally held (its original allocation ref); only drop b's.
	runtime.Unref(b)

	runtime.RunGC()
	assert.Equal(t, 2, runtime.InUseCount(), "a cycle reachable from an external root must survive")
}

// TestRunGCReclaimsCycleButKeepsExternallyHeldSatellite is named scenario S3:
// a two-tuple cycle (T1 <-> T2) where T1 also holds a reference to a third
// tuple, T3, that the caller keeps an independent hold on throughout. Only
// T1 and T2 are garbage once the cycle's external references are dropped;
// T3 must survive because it is still externally reachable.
func TestRunGCReclaimsCycleButKeepsExternallyHeldSatellite(t *testing.T) {
	runtime := newTestRuntime(t)

	t1, err := runtime.AllocTuple(2)
	require.NoError(t, err)
	t2, err := runtime.AllocTuple(2)
	require.NoError(t, err)
	t3, err := runtime.AllocTuple(4)
	require.NoError(t, err)

	runtime.SetTupleAt(t1, 0, rt.HeaderValue(t2), true)
	runtime.SetTupleAt(t2, 0, rt.HeaderValue(t1), true)
	runtime.SetTupleAt(t1, 1, rt.HeaderValue(t3), true)

	// Drop the cycle's own external (allocation) references; t3's
	// allocation reference is deliberately kept.
	runtime.Unref(t1)
	runtime.Unref(t2)
	require.Equal(t, 3, runtime.InUseCount(), "t1/t2/t3 must all still be live before collection")

	runtime.RunGC()
	assert.Equal(t, 1, runtime.InUseCount(), "only the externally-held satellite must survive")

	stats := runtime.Stats()
	// A 4-slot tuple's payload is its 16-byte header prefix plus 4 8-byte
	// slots: 48 bytes, already 8-byte aligned.
	assert.Equal(t, 48, stats.HeapUsageBytes, "the surviving tuple's payload size must be exactly t3's own footprint")
}

// TestRunGCReclaimsSelfLoop is named scenario S4: a tuple whose own slot 0
// points back at itself. Dropping the caller's one external reference
// leaves only the self-edge alive; a naive refcount drop cannot free it,
// but trial deletion must.
func TestRunGCReclaimsSelfLoop(t *testing.T) {
	runtime := newTestRuntime(t)

	self, err := runtime.AllocTuple(2)
	require.NoError(t, err)

	runtime.SetTupleAt(self, 0, rt.HeaderValue(self), true)

	runtime.Unref(self)
	require.Equal(t, 1, runtime.InUseCount(), "the self-edge must keep the tuple alive across one unref")

	runtime.RunGC()
	assert.Equal(t, 0, runtime.InUseCount(), "trial deletion must reclaim a self-loop")
}

func TestStatsReportsHeaderAndHeapOccupancy(t *testing.T) {
	runtime := newTestRuntime(t)

	_, err := runtime.AllocTrivial(8)
	require.NoError(t, err)

	stats := runtime.Stats()
	assert.Equal(t, 1, stats.InUseHeaders)
	assert.Equal(t, 63, stats.FreeHeaders)
	assert.Greater(t, stats.HeapUsageBytes, 0)
	assert.Equal(t, 1<<14, stats.HeapCapacityBytes)
}

func TestCompactionRelocatesSurvivingPayload(t *testing.T) {
	runtime := newTestRuntime(t)

	box, err := runtime.AllocTrivial(8)
	require.NoError(t, err)
	rt.WriteInt64(runtime, box, 7)

	runtime.RunGC()
	assert.EqualValues(t, 7, rt.ReadInt64(runtime, box), "a surviving value must read back unchanged after compaction moves it")
}
