package main

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/joshuapare/slabkit/slab"
)

var errAllocFailed = errors.New("allocation failed")

// churnResult counts what a churn run left behind.
type churnResult struct {
	Allocated int
	Freed     int
}

// churn allocates count objects of every size, then frees every freeEvery-th
// object. freeEvery <= 0 keeps everything.
func churn(h *slab.Heap, sizes []int, count, freeEvery int) (churnResult, error) {
	var res churnResult
	live := make([]unsafe.Pointer, 0, len(sizes)*count)

	for _, size := range sizes {
		for range count {
			p := h.Alloc(size)
			if p == nil {
				return res, fmt.Errorf("%w: %d bytes", errAllocFailed, size)
			}
			live = append(live, p)
			res.Allocated++
		}
	}

	if freeEvery > 0 {
		for i := 0; i < len(live); i += freeEvery {
			h.Free(live[i])
			res.Freed++
		}
	}
	return res, nil
}

// stressOptions configures a concurrent stress run.
type stressOptions struct {
	Workers int
	Ops     int
	Sizes   []int
	Seed    int64
}

// stressReport summarizes a stress run.
type stressReport struct {
	Workers   int           `json:"workers"`
	Ops       int           `json:"ops_per_worker"`
	Allocs    uint64        `json:"allocs"`
	Frees     uint64        `json:"frees"`
	Failed    uint64        `json:"failed_allocs"`
	Corrupted uint64        `json:"corrupted"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

type stamped struct {
	p    unsafe.Pointer
	size int
	seed byte
}

func (s stamped) bytes() []byte {
	return unsafe.Slice((*byte)(s.p), s.size)
}

func (s stamped) fill() {
	b := s.bytes()
	for i := range b {
		b[i] = s.seed + byte(i)
	}
}

func (s stamped) intact() bool {
	for i, b := range s.bytes() {
		if b != s.seed+byte(i) {
			return false
		}
	}
	return true
}

// stress runs opts.Workers goroutines that randomly allocate, stamp, verify
// and free objects. Every object is freed before stress returns.
func stress(h *slab.Heap, opts stressOptions) stressReport {
	rep := stressReport{Workers: opts.Workers, Ops: opts.Ops}
	var allocs, frees, failed, corrupted atomic.Uint64

	start := time.Now()
	var wg sync.WaitGroup
	for w := range opts.Workers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(opts.Seed + int64(id)))
			var mine []stamped

			release := func(k int) {
				s := mine[k]
				if !s.intact() {
					corrupted.Add(1)
				}
				h.Free(s.p)
				frees.Add(1)
				mine[k] = mine[len(mine)-1]
				mine = mine[:len(mine)-1]
			}

			for i := range opts.Ops {
				if len(mine) > 0 && rng.Intn(2) == 0 {
					release(rng.Intn(len(mine)))
					continue
				}
				size := opts.Sizes[rng.Intn(len(opts.Sizes))]
				p := h.Alloc(size)
				if p == nil {
					failed.Add(1)
					continue
				}
				allocs.Add(1)
				s := stamped{p: p, size: size, seed: byte(id*7 + i)}
				s.fill()
				mine = append(mine, s)
			}
			for len(mine) > 0 {
				release(len(mine) - 1)
			}
		}(w)
	}
	wg.Wait()

	rep.Elapsed = time.Since(start)
	rep.Allocs = allocs.Load()
	rep.Frees = frees.Load()
	rep.Failed = failed.Load()
	rep.Corrupted = corrupted.Load()
	return rep
}
