// Package slab provides an off-heap, size-segregated slab allocator.
//
// # Overview
//
// A Heap serves fixed-size objects from a chain of slab nodes. Each node is
// bound permanently to one object size the first time an allocation reaches
// it, and owns a dedicated anonymous memory mapping of Capacity*size bytes.
// Memory returned by the Heap lives outside the Go heap: it never moves, is
// never scanned by the garbage collector, and is never returned to the
// operating system.
//
// # Chain Layout
//
// Nodes form a singly linked chain kept in an append-only arena. The last
// node is always unbound; binding it appends a fresh unbound tail so the
// chain stays one node ahead of demand:
//
//	[16B: 512 slots] -> [64B: 512 slots] -> [16B: 512 slots] -> [unbound]
//
// An allocation walks the chain from the head and is served by the first
// node bound to exactly the requested size that still has a free slot. A
// size that has never been seen binds the tail. A full node simply passes
// the request on, so a size class grows by gaining additional nodes and no
// live object is ever relocated.
//
// # Occupancy Bitmap
//
// Each node tracks its slots in a bitmap of 32-bit words where a SET bit
// means FREE and a CLEAR bit means ALLOCATED. Slots are handed out first-fit,
// lowest index first, scanning word-major then bit-minor. Available slots are
// counted with a SWAR population count (see PopCount32).
//
// # Faults
//
// Three conditions are fatal:
//
//   - FaultExhausted: the operating system refused a region mapping
//   - FaultInvalidFree: the address belongs to no node
//   - FaultDoubleFree: the address's slot is already free
//
// Each is reported as a *Fault carrying the call stack and passed to
// Config.OnFault. The default handler, Abort, prints the fault and a
// backtrace to stderr and terminates the process. Handlers that return
// (tests use them as a fault-injection harness) leave the heap unchanged:
// Alloc returns nil and Free does nothing.
//
// # Usage Example
//
//	h, err := slab.New(slab.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//
//	buf := h.AllocBytes(48)
//	copy(buf, payload)
//	...
//	h.FreeBytes(buf)
//
//	h.Walk(func(u slab.Usage) {
//	    fmt.Println(u.ObjectSize, u.Available, u.InUse())
//	})
//
// # Thread Safety
//
// Every Heap method is safe for concurrent use. A single mutex serializes
// the whole chain, including region mapping when a node binds.
//
// Memory handed out by a Heap must never hold Go pointers.
package slab
