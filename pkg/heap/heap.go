package heap

import (
	"errors"
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/joshuapare/slabkit/slab"
)

var (
	// ErrAlreadyInitialized is returned by Init once the default heap exists.
	ErrAlreadyInitialized = errors.New("heap: already initialized")

	// ErrAlreadyPublished is returned by Publish for a taken expvar name.
	ErrAlreadyPublished = errors.New("heap: expvar name already published")
)

var (
	mu      sync.Mutex
	current atomic.Pointer[slab.Heap]
)

// Init creates the default heap from cfg. It fails if the default heap was
// already created, explicitly or by a previous allocation.
func Init(cfg slab.Config) error {
	mu.Lock()
	defer mu.Unlock()

	if current.Load() != nil {
		return ErrAlreadyInitialized
	}
	h, err := slab.New(cfg)
	if err != nil {
		return err
	}
	current.Store(h)
	return nil
}

// Default returns the default heap, creating it on first use.
func Default() *slab.Heap {
	if h := current.Load(); h != nil {
		return h
	}

	mu.Lock()
	defer mu.Unlock()
	if h := current.Load(); h != nil {
		return h
	}
	h := slab.MustNew(slab.DefaultConfig())
	current.Store(h)
	return h
}

// Alloc allocates size bytes from the default heap.
func Alloc(size int) unsafe.Pointer {
	return Default().Alloc(size)
}

// Free releases p to the default heap. Freeing nil does nothing.
func Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	Default().Free(p)
}

// Make returns an n byte slice from the default heap.
func Make(n int) []byte {
	return Default().AllocBytes(n)
}

// Release frees a slice returned by Make.
func Release(b []byte) {
	Default().FreeBytes(b)
}

// Usage reports every bound node of the default heap in chain order.
func Usage() []slab.Usage {
	return Default().Snapshot()
}

// Stats reports counters of the default heap.
func Stats() slab.Stats {
	return Default().Stats()
}

type published struct {
	Usage []slab.Usage `json:"usage"`
	Stats slab.Stats   `json:"stats"`
}

// Publish registers an expvar variable named name that reports the default
// heap's usage and stats on every read.
func Publish(name string) error {
	if expvar.Get(name) != nil {
		return fmt.Errorf("%w: %q", ErrAlreadyPublished, name)
	}
	expvar.Publish(name, expvar.Func(func() any {
		h := Default()
		return published{Usage: h.Snapshot(), Stats: h.Stats()}
	}))
	return nil
}
