package slab

import (
	"context"
	"fmt"
	"log/slog"
	"math/bits"
	"sync"
	"unsafe"

	lru "github.com/hashicorp/golang-lru"

	"github.com/joshuapare/slabkit/internal/region"
)

// Heap is a chain of size-segregated slab nodes guarded by one mutex.
//
// A Heap is constructed once and lives for the rest of the process; its
// regions are never unmapped.
type Heap struct {
	mu  sync.Mutex
	cfg Config

	// nodes is the chain in order; nodes[i+1] is the successor of nodes[i].
	// The last node is always unbound.
	nodes []*node

	// owners maps a page number to the index of the node owning that page.
	owners    *lru.Cache
	pageShift uint

	mapped int64
	allocs uint64
	frees  uint64
	faults uint64
}

// New returns an empty heap with a single unbound node.
func New(cfg Config) (*Heap, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	h := &Heap{
		cfg:       cfg,
		nodes:     []*node{{}},
		pageShift: uint(bits.TrailingZeros(uint(region.PageSize()))),
	}
	if cfg.OwnerCacheSize > 0 {
		h.owners, err = lru.New(cfg.OwnerCacheSize)
		if err != nil {
			return nil, fmt.Errorf("slab: owner cache: %w", err)
		}
	}
	return h, nil
}

// MustNew is like New but panics on an invalid configuration.
func MustNew(cfg Config) *Heap {
	h, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return h
}

// Capacity returns the number of slots per node.
func (h *Heap) Capacity() int {
	return h.cfg.Capacity
}

// Alloc returns the address of a free object slot of exactly size bytes.
// A size of zero is served as one byte. The result is nil only when a fault
// handler returns instead of terminating the process.
func (h *Heap) Alloc(size int) unsafe.Pointer {
	h.mu.Lock()
	p, f := h.allocate(size)
	h.mu.Unlock()

	if f != nil {
		h.raise(f)
		return nil
	}
	return p
}

// Free returns the slot holding p to its node. Freeing nil does nothing.
func (h *Heap) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}

	h.mu.Lock()
	f := h.free(uintptr(p))
	h.mu.Unlock()

	if f != nil {
		h.raise(f)
	}
}

// AllocBytes returns an n byte slice backed by a slot of max(n, 1) bytes.
func (h *Heap) AllocBytes(n int) []byte {
	size := n
	if n == 0 {
		size = 1
	}
	p := h.Alloc(size)
	if p == nil {
		return nil
	}
	return unsafe.Slice((*byte)(p), size)[:n:size]
}

// FreeBytes frees a slice returned by AllocBytes.
func (h *Heap) FreeBytes(b []byte) {
	if cap(b) == 0 {
		return
	}
	h.Free(unsafe.Pointer(unsafe.SliceData(b)))
}

// Walk calls fn for every bound node in chain order. fn runs on a snapshot
// taken under the lock, so it may allocate from h.
func (h *Heap) Walk(fn func(Usage)) {
	for _, u := range h.Snapshot() {
		fn(u)
	}
}

// Snapshot returns the usage of every bound node in chain order.
func (h *Heap) Snapshot() []Usage {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Usage, 0, len(h.nodes)-1)
	for _, n := range h.nodes {
		if !n.bound() {
			break
		}
		out = append(out, Usage{
			ObjectSize: n.size,
			Capacity:   h.cfg.Capacity,
			Available:  n.occ.available(),
		})
	}
	return out
}

// Stats returns counters for the whole chain.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	classes := make(map[int]struct{})
	st := Stats{
		MappedBytes: h.mapped,
		Allocs:      h.allocs,
		Frees:       h.frees,
		Live:        h.allocs - h.frees,
		Faults:      h.faults,
	}
	for _, n := range h.nodes {
		if !n.bound() {
			break
		}
		st.Nodes++
		classes[n.size] = struct{}{}
	}
	st.Classes = len(classes)
	return st
}

// allocate walks the chain. Callers hold h.mu.
func (h *Heap) allocate(size int) (unsafe.Pointer, *Fault) {
	if size < 0 {
		h.faults++
		return nil, &Fault{Kind: FaultExhausted, Size: size, Entry: -1, Err: ErrBadSize}
	}
	if size == 0 {
		size = 1
	}

	log := h.cfg.logger()
	for i := 0; i < len(h.nodes); i++ {
		n := h.nodes[i]
		if !n.bound() {
			if err := n.bind(size, h.cfg.Capacity, h.cfg.Mapper); err != nil {
				h.faults++
				return nil, &Fault{Kind: FaultExhausted, Size: size, Entry: -1, Err: err}
			}
			h.mapped += int64(len(n.region))
			h.nodes = append(h.nodes, &node{})
			log.Info("slab: allocated memory region",
				"kb", len(n.region)/1024, "object_size", size, "capacity", h.cfg.Capacity, "node", i)
		}
		if n.size != size {
			continue
		}

		p, entry, ok := n.take()
		if !ok {
			log.Debug("slab: node full, looking for another", "node", i, "object_size", size)
			continue
		}
		h.allocs++
		if log.Enabled(context.Background(), slog.LevelDebug) {
			log.Debug("slab: allocate entry", "node", i, "entry", entry, "object_size", size)
		}
		return p, nil
	}
	panic("slab: chain has no unbound tail")
}

// free marks addr's slot free. Callers hold h.mu.
func (h *Heap) free(addr uintptr) *Fault {
	i := h.owner(addr)
	if i < 0 {
		h.faults++
		return &Fault{Kind: FaultInvalidFree, Addr: addr, Entry: -1}
	}

	n := h.nodes[i]
	entry, ok := n.release(addr)
	if !ok {
		h.faults++
		return &Fault{Kind: FaultDoubleFree, Addr: addr, Size: n.size, Entry: entry, Word: n.occ.word(entry)}
	}
	h.frees++

	log := h.cfg.logger()
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("slab: free entry", "node", i, "entry", entry, "object_size", n.size)
	}
	return nil
}

// owner returns the index of the node whose region holds addr, or -1.
func (h *Heap) owner(addr uintptr) int {
	page := addr >> h.pageShift
	if h.owners != nil {
		if v, ok := h.owners.Get(page); ok {
			if i := v.(int); h.nodes[i].contains(addr) {
				return i
			}
		}
	}

	for i, n := range h.nodes {
		if !n.bound() {
			break
		}
		if n.contains(addr) {
			if h.owners != nil {
				h.owners.Add(page, i)
			}
			return i
		}
	}
	return -1
}

// raise reports f to the configured handler. Callers must not hold h.mu.
func (h *Heap) raise(f *Fault) {
	f.record(1)
	h.cfg.logger().Error("slab: fatal fault",
		"kind", f.Kind.String(),
		"addr", fmt.Sprintf("%#x", f.Addr),
		"size", f.Size,
		"entry", f.Entry,
		"err", f.Error(),
	)
	h.cfg.OnFault(f)
}
