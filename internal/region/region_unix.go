//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package region

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Map returns a zero-filled, read/write anonymous mapping of length bytes.
func Map(length int) ([]byte, error) {
	if length <= 0 {
		return nil, ErrBadLength
	}
	data, err := unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("region: mmap %d bytes: %w", length, err)
	}
	return data, nil
}
