// Package region acquires the raw memory regions that back slab nodes.
//
// Regions are dedicated anonymous mappings obtained straight from the
// operating system rather than carved out of the Go heap, so the memory they
// cover is invisible to the garbage collector and never moves. Regions are
// never returned: the allocator keeps them for the life of the process.
package region

import (
	"errors"
	"os"
)

// ErrBadLength is returned when a mapping of zero or negative length is requested.
var ErrBadLength = errors.New("region: length must be greater than zero")

// PageSize reports the operating system page size. Mappings are rounded up
// to a whole number of pages by the kernel, so two regions never share a page.
func PageSize() int {
	return os.Getpagesize()
}
