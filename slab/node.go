package slab

import (
	"fmt"
	"math"
	"unsafe"
)

// node is one slab in the chain. A zero size means the node is unbound.
type node struct {
	size   int
	region []byte
	base   uintptr
	occ    occupancy
}

func (n *node) bound() bool {
	return n.size != 0
}

// regionLength returns capacity*size, or false if it does not fit in an int.
func regionLength(size, capacity int) (int, bool) {
	if size <= 0 || capacity <= 0 || size > math.MaxInt/capacity {
		return 0, false
	}
	return size * capacity, true
}

// bind maps the node's region and marks every slot free.
func (n *node) bind(size, capacity int, mapper Mapper) error {
	length, ok := regionLength(size, capacity)
	if !ok {
		return fmt.Errorf("%w: %d slots of %d bytes", ErrBadSize, capacity, size)
	}
	region, err := mapper(length)
	if err != nil {
		return err
	}
	if len(region) < length {
		return fmt.Errorf("short mapping: got %d bytes, want %d", len(region), length)
	}

	n.size = size
	n.region = region[:length:length]
	n.base = uintptr(unsafe.Pointer(unsafe.SliceData(n.region)))
	n.occ = newOccupancy(capacity)
	return nil
}

func (n *node) contains(addr uintptr) bool {
	return addr >= n.base && addr-n.base < uintptr(len(n.region))
}

func (n *node) entry(addr uintptr) int {
	return int((addr - n.base) / uintptr(n.size))
}

// take claims the lowest free slot. ok is false when the node is full.
func (n *node) take() (p unsafe.Pointer, entry int, ok bool) {
	entry = n.occ.first()
	if entry < 0 {
		return nil, -1, false
	}
	n.occ.take(entry)
	return unsafe.Add(unsafe.Pointer(unsafe.SliceData(n.region)), entry*n.size), entry, true
}

// release marks the slot holding addr free. ok is false when the slot was
// already free, in which case nothing changes.
func (n *node) release(addr uintptr) (entry int, ok bool) {
	entry = n.entry(addr)
	if n.occ.free(entry) {
		return entry, false
	}
	n.occ.release(entry)
	return entry, true
}
