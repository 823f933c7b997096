package slab

import "errors"

var (
	// ErrExhausted indicates that a region for a new node could not be mapped.
	ErrExhausted = errors.New("slab: region exhausted")

	// ErrInvalidFree indicates an address that no node in the chain owns.
	ErrInvalidFree = errors.New("slab: invalid free")

	// ErrDoubleFree indicates an address whose slot is already free.
	ErrDoubleFree = errors.New("slab: double free")

	// ErrBadCapacity indicates a negative slot count per node.
	ErrBadCapacity = errors.New("slab: capacity must be positive")

	// ErrBadSize indicates a negative object size or one whose region length overflows.
	ErrBadSize = errors.New("slab: bad object size")
)
