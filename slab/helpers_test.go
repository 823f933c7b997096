package slab

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// faultRecorder is a fault handler that records instead of aborting.
type faultRecorder struct {
	mu     sync.Mutex
	faults []*Fault
}

func (r *faultRecorder) handle(f *Fault) {
	r.mu.Lock()
	r.faults = append(r.faults, f)
	r.mu.Unlock()
}

func (r *faultRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.faults)
}

func (r *faultRecorder) last(t *testing.T) *Fault {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.faults, "expected a fault")
	return r.faults[len(r.faults)-1]
}

// newTestHeap builds a heap with the given capacity and a recording fault handler.
func newTestHeap(t *testing.T, capacity int) (*Heap, *faultRecorder) {
	t.Helper()
	rec := &faultRecorder{}
	cfg := DefaultConfig()
	cfg.Capacity = capacity
	cfg.OnFault = rec.handle
	h, err := New(cfg)
	require.NoError(t, err)
	return h, rec
}

// mustAlloc allocates and fails the test on a nil result.
func mustAlloc(t *testing.T, h *Heap, size int) unsafe.Pointer {
	t.Helper()
	p := h.Alloc(size)
	require.NotNil(t, p, "Alloc(%d) returned nil", size)
	return p
}

// boundSizes returns the object size of every bound node in chain order.
func boundSizes(h *Heap) []int {
	var sizes []int
	h.Walk(func(u Usage) { sizes = append(sizes, u.ObjectSize) })
	return sizes
}

// cloneOccupancy copies the bitmap of node i.
func cloneOccupancy(h *Heap, i int) occupancy {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append(occupancy(nil), h.nodes[i].occ...)
}

// fill writes a recognizable pattern over a slot.
func fill(p unsafe.Pointer, size int, seed byte) {
	b := unsafe.Slice((*byte)(p), size)
	for i := range b {
		b[i] = seed + byte(i)
	}
}

// intact reports whether fill's pattern is still present.
func intact(p unsafe.Pointer, size int, seed byte) bool {
	b := unsafe.Slice((*byte)(p), size)
	for i := range b {
		if b[i] != seed+byte(i) {
			return false
		}
	}
	return true
}
