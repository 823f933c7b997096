//go:build windows

package region

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Map returns a zero-filled, read/write region of length bytes committed
// with VirtualAlloc.
func Map(length int) ([]byte, error) {
	if length <= 0 {
		return nil, ErrBadLength
	}
	addr, err := windows.VirtualAlloc(0, uintptr(length), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("region: VirtualAlloc %d bytes: %w", length, err)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), length), nil
}
