package slab

import (
	"math/rand"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test_Heap_FirstFitReusesFreedSlot walks the four-slot scenario: fill a
// node, free the second object, and get that same address back.
func Test_Heap_FirstFitReusesFreedSlot(t *testing.T) {
	h, rec := newTestHeap(t, 4)

	var ptrs []unsafe.Pointer
	for range 4 {
		ptrs = append(ptrs, mustAlloc(t, h, 16))
	}
	usage := h.Snapshot()
	require.Len(t, usage, 1)
	assert.Equal(t, Usage{ObjectSize: 16, Capacity: 4, Available: 0}, usage[0])

	h.Free(ptrs[1])
	assert.Equal(t, 1, h.Snapshot()[0].Available)

	again := mustAlloc(t, h, 16)
	assert.Equal(t, ptrs[1], again)
	assert.Zero(t, rec.count())
}

func Test_Heap_SlotAddressesAreContiguous(t *testing.T) {
	h, _ := newTestHeap(t, 8)

	first := uintptr(mustAlloc(t, h, 24))
	for i := 1; i < 8; i++ {
		p := uintptr(mustAlloc(t, h, 24))
		assert.Equal(t, first+uintptr(i*24), p, "slot %d", i)
	}
}

func Test_Heap_SizeClassBindingOrder(t *testing.T) {
	h, _ := newTestHeap(t, 32)

	for _, size := range []int{16, 64, 16, 8, 64, 128, 8} {
		mustAlloc(t, h, size)
	}
	assert.Equal(t, []int{16, 64, 8, 128}, boundSizes(h))

	h.mu.Lock()
	assert.Len(t, h.nodes, 5, "one unbound tail after four bound nodes")
	assert.False(t, h.nodes[4].bound())
	h.mu.Unlock()
}

func Test_Heap_RequestsRouteOnlyToTheirClass(t *testing.T) {
	h, _ := newTestHeap(t, 32)

	a := uintptr(mustAlloc(t, h, 16))
	mustAlloc(t, h, 48)
	for range 10 {
		mustAlloc(t, h, 16)
	}

	usage := h.Snapshot()
	require.Len(t, usage, 2)
	assert.Equal(t, 11, usage[0].InUse())
	assert.Equal(t, 1, usage[1].InUse())

	h.mu.Lock()
	assert.True(t, h.nodes[0].contains(a))
	h.mu.Unlock()
}

func Test_Heap_ExhaustionAppendsNodeForSameSize(t *testing.T) {
	const capacity = 64
	h, _ := newTestHeap(t, capacity)

	for range capacity + 1 {
		mustAlloc(t, h, 32)
	}

	usage := h.Snapshot()
	require.Len(t, usage, 2)
	assert.Equal(t, 32, usage[0].ObjectSize)
	assert.Equal(t, 32, usage[1].ObjectSize)
	assert.Equal(t, 0, usage[0].Available)
	assert.Equal(t, 1, usage[1].InUse())
}

func Test_Heap_FreedSlotInFirstNodeIsPreferred(t *testing.T) {
	h, _ := newTestHeap(t, 4)

	var ptrs []unsafe.Pointer
	for range 6 {
		ptrs = append(ptrs, mustAlloc(t, h, 16))
	}
	require.Len(t, h.Snapshot(), 2)

	h.Free(ptrs[2])
	assert.Equal(t, ptrs[2], mustAlloc(t, h, 16))
	next := mustAlloc(t, h, 16)
	assert.Equal(t, uintptr(ptrs[4])+2*16, uintptr(next))
}

func Test_Heap_AddressesStableAndNeverReissued(t *testing.T) {
	h, _ := newTestHeap(t, 16)

	live := make(map[unsafe.Pointer]byte)
	for i := range 40 {
		p := mustAlloc(t, h, 40)
		_, dup := live[p]
		require.False(t, dup, "address %p reissued while live", p)
		fill(p, 40, byte(i))
		live[p] = byte(i)
	}
	for p, seed := range live {
		assert.True(t, intact(p, 40, seed), "slot %p corrupted", p)
	}
}

func Test_Heap_ClassesNeverOverlap(t *testing.T) {
	h, _ := newTestHeap(t, 16)

	rng := rand.New(rand.NewSource(7))
	sizes := []int{8, 24, 100, 4096, 8, 24}
	for range 200 {
		mustAlloc(t, h, sizes[rng.Intn(len(sizes))])
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for i, a := range h.nodes {
		if !a.bound() {
			continue
		}
		for j, b := range h.nodes {
			if i == j || !b.bound() {
				continue
			}
			aEnd := a.base + uintptr(len(a.region))
			bEnd := b.base + uintptr(len(b.region))
			overlap := a.base < bEnd && b.base < aEnd
			assert.False(t, overlap, "node %d [%#x,%#x) overlaps node %d [%#x,%#x)", i, a.base, aEnd, j, b.base, bEnd)
		}
	}
}

func Test_Heap_RoundTripRestoresOccupancy(t *testing.T) {
	h, _ := newTestHeap(t, 64)

	keep := mustAlloc(t, h, 16)
	before := cloneOccupancy(h, 0)

	p := mustAlloc(t, h, 16)
	require.NotEqual(t, before, cloneOccupancy(h, 0))
	h.Free(p)
	assert.Equal(t, before, cloneOccupancy(h, 0))

	h.Free(keep)
	assert.Equal(t, newOccupancy(64), cloneOccupancy(h, 0))
}

func Test_Heap_AccountingMatchesLiveObjects(t *testing.T) {
	const capacity = 32
	h, _ := newTestHeap(t, capacity)

	rng := rand.New(rand.NewSource(42)) // Fixed seed for reproducibility
	live := make(map[int][]unsafe.Pointer)
	sizes := []int{16, 48, 200}

	for step := range 2000 {
		size := sizes[rng.Intn(len(sizes))]
		if rng.Intn(3) > 0 || len(live[size]) == 0 {
			live[size] = append(live[size], mustAlloc(t, h, size))
		} else {
			k := rng.Intn(len(live[size]))
			h.Free(live[size][k])
			live[size] = append(live[size][:k], live[size][k+1:]...)
		}

		if step%97 == 0 {
			inUse := make(map[int]int)
			h.Walk(func(u Usage) {
				require.Equal(t, capacity, u.Capacity)
				inUse[u.ObjectSize] += u.InUse()
			})
			for _, size := range sizes {
				require.Equal(t, len(live[size]), inUse[size], "step %d size %d", step, size)
			}
		}
	}

	total := 0
	for _, ptrs := range live {
		total += len(ptrs)
	}
	st := h.Stats()
	assert.Equal(t, uint64(total), st.Live)
	assert.Equal(t, st.Allocs-st.Frees, st.Live)
	assert.Zero(t, st.Faults)
}

func Test_Heap_NAllocsMFreesSingleNode(t *testing.T) {
	const capacity = 128
	h, _ := newTestHeap(t, capacity)

	var ptrs []unsafe.Pointer
	for range 100 {
		ptrs = append(ptrs, mustAlloc(t, h, 12))
	}
	for _, p := range ptrs[:37] {
		h.Free(p)
	}

	usage := h.Snapshot()
	require.Len(t, usage, 1)
	assert.Equal(t, capacity-(100-37), usage[0].Available)
}

func Test_Heap_FreeNilIsNoop(t *testing.T) {
	h, rec := newTestHeap(t, 4)
	mustAlloc(t, h, 8)
	before := cloneOccupancy(h, 0)

	h.Free(nil)

	assert.Equal(t, before, cloneOccupancy(h, 0))
	assert.Zero(t, rec.count())
	assert.Zero(t, h.Stats().Frees)
}

func Test_Heap_ZeroSizeServedAsOneByte(t *testing.T) {
	h, _ := newTestHeap(t, 4)

	a := mustAlloc(t, h, 0)
	b := mustAlloc(t, h, 0)
	assert.NotEqual(t, a, b)
	assert.Equal(t, []int{1}, boundSizes(h))
}

func Test_Heap_AllocBytes(t *testing.T) {
	h, rec := newTestHeap(t, 8)

	buf := h.AllocBytes(20)
	require.Len(t, buf, 20)
	require.Equal(t, 20, cap(buf))
	copy(buf, "slab allocated bytes")
	assert.Equal(t, "slab allocated bytes", string(buf))

	empty := h.AllocBytes(0)
	require.NotNil(t, empty)
	assert.Empty(t, empty)
	assert.Equal(t, 1, cap(empty))

	assert.Equal(t, []int{20, 1}, boundSizes(h))

	h.FreeBytes(buf)
	h.FreeBytes(empty)
	h.FreeBytes(nil)
	for _, u := range h.Snapshot() {
		assert.Equal(t, 8, u.Available)
	}
	assert.Zero(t, rec.count())
}

func Test_Heap_RegionIsZeroFilled(t *testing.T) {
	h, _ := newTestHeap(t, 16)

	buf := h.AllocBytes(64)
	for i, b := range buf {
		require.Zero(t, b, "byte %d", i)
	}
}

func Test_Heap_WalkStopsAtUnboundTail(t *testing.T) {
	h, _ := newTestHeap(t, 4)

	calls := 0
	h.Walk(func(Usage) { calls++ })
	assert.Zero(t, calls, "fresh heap has no bound nodes")

	mustAlloc(t, h, 16)
	mustAlloc(t, h, 32)
	h.Walk(func(Usage) { calls++ })
	assert.Equal(t, 2, calls)
}

func Test_Heap_WalkCallbackMayAllocate(t *testing.T) {
	h, _ := newTestHeap(t, 4)
	mustAlloc(t, h, 16)

	h.Walk(func(u Usage) {
		mustAlloc(t, h, u.ObjectSize)
	})
	assert.Equal(t, 2, h.Snapshot()[0].InUse())
}

func Test_Heap_Stats(t *testing.T) {
	h, _ := newTestHeap(t, 4)

	var ptrs []unsafe.Pointer
	for range 5 {
		ptrs = append(ptrs, mustAlloc(t, h, 16))
	}
	mustAlloc(t, h, 100)
	h.Free(ptrs[0])

	st := h.Stats()
	assert.Equal(t, 3, st.Nodes)
	assert.Equal(t, 2, st.Classes)
	assert.Equal(t, int64(2*4*16+4*100), st.MappedBytes)
	assert.Equal(t, uint64(6), st.Allocs)
	assert.Equal(t, uint64(1), st.Frees)
	assert.Equal(t, uint64(5), st.Live)
}

func Test_Heap_OwnerCacheDisabled(t *testing.T) {
	rec := &faultRecorder{}
	h, err := New(Config{Capacity: 4, OnFault: rec.handle})
	require.NoError(t, err)
	require.Nil(t, h.owners)

	var ptrs []unsafe.Pointer
	for i := range 12 {
		ptrs = append(ptrs, mustAlloc(t, h, 8*(1+i%3)))
	}
	for _, p := range ptrs {
		h.Free(p)
	}
	assert.Zero(t, rec.count())
	assert.Zero(t, h.Stats().Live)
}

func Test_Heap_OwnerCacheResolvesAcrossNodes(t *testing.T) {
	h, rec := newTestHeap(t, 4)
	require.NotNil(t, h.owners)

	var ptrs []unsafe.Pointer
	for range 20 {
		ptrs = append(ptrs, mustAlloc(t, h, 64))
	}
	// Free twice over: the second pass hits cached pages.
	for _, p := range ptrs {
		h.Free(p)
	}
	for range 20 {
		mustAlloc(t, h, 64)
	}
	for _, p := range ptrs {
		h.Free(p)
	}
	assert.Zero(t, rec.count())
	assert.Positive(t, h.owners.Len())
	for _, u := range h.Snapshot() {
		assert.Equal(t, 4, u.Available)
	}
}

func Test_Heap_NewDefaults(t *testing.T) {
	h, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultCapacity, h.Capacity())
	assert.NotNil(t, h.cfg.Mapper)
	assert.NotNil(t, h.cfg.OnFault)
}

func Test_Heap_NewRejectsNegativeCapacity(t *testing.T) {
	_, err := New(Config{Capacity: -1})
	require.ErrorIs(t, err, ErrBadCapacity)

	assert.Panics(t, func() { MustNew(Config{Capacity: -5}) })
}
