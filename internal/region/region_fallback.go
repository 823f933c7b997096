//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly && !windows

package region

// Map allocates length zeroed bytes on the Go heap when no anonymous mapping
// primitive is available. The slice is kept reachable by the caller.
func Map(length int) ([]byte, error) {
	if length <= 0 {
		return nil, ErrBadLength
	}
	return make([]byte, length), nil
}
